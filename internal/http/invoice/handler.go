package invoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createInvoiceRequest struct {
	ProjectID   *uuid.UUID     `json:"project_id"`
	SupplierID  *uuid.UUID     `json:"supplier_id"`
	Number      string         `json:"number"`
	Description string         `json:"description"`
	Amount      int64          `json:"amount"`
	Status      invoice.Status `json:"status"`
	IssueDate   time.Time      `json:"issue_date"`
	DueDate     *time.Time     `json:"due_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Invoices may exist without a project, but not when created over the API.
	if req.ProjectID == nil {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		ProjectID:   req.ProjectID,
		SupplierID:  req.SupplierID,
		Number:      req.Number,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      req.Status,
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, NewResponse(inv, ""))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, NewResponse(inv, ""))
}

type updateInvoiceRequest struct {
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	ClearProject  bool            `json:"clear_project,omitempty"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	ClearSupplier bool            `json:"clear_supplier,omitempty"`
	Number        *string         `json:"number,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Amount        *int64          `json:"amount,omitempty"`
	Status        *invoice.Status `json:"status,omitempty"`
	IssueDate     *time.Time      `json:"issue_date,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.Update(r.Context(), id, invoice.UpdateParams{
		ProjectID:     req.ProjectID,
		ClearProject:  req.ClearProject,
		SupplierID:    req.SupplierID,
		ClearSupplier: req.ClearSupplier,
		Number:        req.Number,
		Description:   req.Description,
		Amount:        req.Amount,
		Status:        req.Status,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, NewResponse(inv, ""))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps invoice service errors to status codes.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *invoice.ValidationError

	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, invoice.ErrNotFound):
		http.Error(w, "invoice not found", http.StatusNotFound)
	default:
		respond.Internal(w, r, err)
	}
}
