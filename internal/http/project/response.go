package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/project"
)

type projectResponse struct {
	ID                             uuid.UUID  `json:"id"`
	Name                           string     `json:"name"`
	PlannedBudget                  int64      `json:"planned_budget"`
	ActualBudget                   int64      `json:"actual_budget"`
	PlannedRevenue                 int64      `json:"planned_revenue"`
	ActualRevenue                  int64      `json:"actual_revenue"`
	USNTax                         int64      `json:"usn_tax"`
	NDSTax                         int64      `json:"nds_tax"`
	TotalNonCancelledInvoiceAmount int64      `json:"total_non_cancelled_invoice_amount"`
	CreatedAt                      time.Time  `json:"created_at"`
	UpdatedAt                      *time.Time `json:"updated_at,omitempty"`
}

func toResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:                             p.ID,
		Name:                           p.Name,
		PlannedBudget:                  p.Financials.PlannedBudget,
		ActualBudget:                   p.Financials.ActualBudget,
		PlannedRevenue:                 p.Financials.PlannedRevenue,
		ActualRevenue:                  p.Financials.ActualRevenue,
		USNTax:                         p.Financials.USNTax,
		NDSTax:                         p.Financials.NDSTax,
		TotalNonCancelledInvoiceAmount: p.TotalNonCancelledInvoiceAmount,
		CreatedAt:                      p.CreatedAt,
		UpdatedAt:                      p.UpdatedAt,
	}
}

func toResponseList(ps []*project.Project) []projectResponse {
	resp := make([]projectResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}

// Percentages are null when their base figure is zero.
type summaryResponse struct {
	ProjectID              uuid.UUID `json:"project_id"`
	InvoiceCount           int       `json:"invoice_count"`
	InvoiceTotal           int64     `json:"invoice_total"`
	TotalSpent             int64     `json:"total_spent"`
	RemainingCost          int64     `json:"remaining_cost"`
	BudgetVariance         int64     `json:"budget_variance"`
	BudgetVariancePercent  *float64  `json:"budget_variance_percent"`
	RevenueVariance        int64     `json:"revenue_variance"`
	RevenueVariancePercent *float64  `json:"revenue_variance_percent"`
	PlannedMargin          *float64  `json:"planned_margin"`
	ActualMargin           *float64  `json:"actual_margin"`
	MarginVariancePercent  *float64  `json:"margin_variance_percent"`
	EstimatedNetProfit     int64     `json:"estimated_net_profit"`
}

func toSummaryResponse(s *project.Summary) summaryResponse {
	return summaryResponse{
		ProjectID:              s.ProjectID,
		InvoiceCount:           s.InvoiceCount,
		InvoiceTotal:           s.InvoiceTotal,
		TotalSpent:             s.TotalSpent,
		RemainingCost:          s.RemainingCost,
		BudgetVariance:         s.BudgetVariance,
		BudgetVariancePercent:  s.BudgetVariancePercent,
		RevenueVariance:        s.RevenueVariance,
		RevenueVariancePercent: s.RevenueVariancePercent,
		PlannedMargin:          s.PlannedMargin,
		ActualMargin:           s.ActualMargin,
		MarginVariancePercent:  s.MarginVariancePercent,
		EstimatedNetProfit:     s.EstimatedNetProfit,
	}
}
