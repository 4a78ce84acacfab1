package finance

// Financials holds the planned and actual figures of a project, in cents.
// Zero means the figure was never set.
type Financials struct {
	PlannedBudget  int64
	ActualBudget   int64
	PlannedRevenue int64
	ActualRevenue  int64
	USNTax         int64
	NDSTax         int64
}

// Summary holds the derived metrics of a project.
// A nil percentage means it could not be computed because its base is zero.
type Summary struct {
	TotalSpent             int64    `json:"total_spent"`
	RemainingCost          int64    `json:"remaining_cost"`
	BudgetVariance         int64    `json:"budget_variance"`
	BudgetVariancePercent  *float64 `json:"budget_variance_percent"`
	RevenueVariance        int64    `json:"revenue_variance"`
	RevenueVariancePercent *float64 `json:"revenue_variance_percent"`
	PlannedMargin          *float64 `json:"planned_margin"`
	ActualMargin           *float64 `json:"actual_margin"`
	MarginVariancePercent  *float64 `json:"margin_variance_percent"`
	EstimatedNetProfit     int64    `json:"estimated_net_profit"`
}

// Compute derives the summary from project figures and the amounts of its
// non-cancelled invoices.
func Compute(f Financials, nonCancelledAmounts []int64) Summary {
	var spent int64
	for _, a := range nonCancelledAmounts {
		spent += a
	}

	s := Summary{
		TotalSpent:      spent + f.USNTax + f.NDSTax,
		BudgetVariance:  f.ActualBudget - f.PlannedBudget,
		RevenueVariance: f.ActualRevenue - f.PlannedRevenue,
	}

	s.RemainingCost = f.ActualBudget - s.TotalSpent
	s.BudgetVariancePercent = percent(s.BudgetVariance, f.PlannedBudget)
	s.RevenueVariancePercent = percent(s.RevenueVariance, f.PlannedRevenue)
	s.PlannedMargin = percent(f.PlannedRevenue-f.PlannedBudget, f.PlannedRevenue)
	s.ActualMargin = percent(f.ActualRevenue-f.ActualBudget, f.ActualRevenue)

	if s.PlannedMargin != nil && s.ActualMargin != nil {
		s.MarginVariancePercent = new(*s.ActualMargin - *s.PlannedMargin)
	}

	grossProfit := f.ActualRevenue - f.ActualBudget
	s.EstimatedNetProfit = grossProfit - f.USNTax - f.NDSTax

	return s
}

func percent(part, base int64) *float64 {
	if base == 0 {
		return nil
	}

	return new(float64(part) / float64(base) * 100)
}
