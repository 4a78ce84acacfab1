package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

type Response struct {
	ID           uuid.UUID      `json:"id"`
	ProjectID    *uuid.UUID     `json:"project_id"`
	SupplierID   *uuid.UUID     `json:"supplier_id"`
	SupplierName string         `json:"supplier_name,omitempty"`
	Number       string         `json:"number"`
	Description  string         `json:"description,omitempty"`
	Amount       int64          `json:"amount"`
	Status       invoice.Status `json:"status"`
	IssueDate    time.Time      `json:"issue_date"`
	DueDate      *time.Time     `json:"due_date,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at,omitempty"`
}

// NewResponse converts inv. supplierName may be empty.
func NewResponse(inv *invoice.Invoice, supplierName string) Response {
	return Response{
		ID:           inv.ID,
		ProjectID:    inv.ProjectID,
		SupplierID:   inv.SupplierID,
		SupplierName: supplierName,
		Number:       inv.Number,
		Description:  inv.Description,
		Amount:       inv.Amount,
		Status:       inv.Status,
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}
