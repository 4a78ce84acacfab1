package project

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/tally/internal/finance"
	invoiceHTTP "github.com/MrJamesThe3rd/tally/internal/http/invoice"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
	"github.com/MrJamesThe3rd/tally/internal/project"
	"github.com/MrJamesThe3rd/tally/internal/supplier"
)

const maxUploadSize = 10 << 20

type InvoiceParser interface {
	Parse(r io.Reader) ([]invoice.CreateParams, error)
}

type Handler struct {
	projects  *project.Service
	invoices  *invoice.Service
	suppliers *supplier.Service
	parser    InvoiceParser
}

func NewHandler(
	projects *project.Service,
	invoices *invoice.Service,
	suppliers *supplier.Service,
	parser InvoiceParser,
) *Handler {
	return &Handler{
		projects:  projects,
		invoices:  invoices,
		suppliers: suppliers,
		parser:    parser,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Get("/{id}/summary", h.summary)
	r.Get("/{id}/invoices", h.listInvoices)
	r.Post("/{id}/invoices/import", h.importInvoices)
}

type createProjectRequest struct {
	Name           string `json:"name"`
	PlannedBudget  int64  `json:"planned_budget"`
	ActualBudget   int64  `json:"actual_budget"`
	PlannedRevenue int64  `json:"planned_revenue"`
	ActualRevenue  int64  `json:"actual_revenue"`
	USNTax         int64  `json:"usn_tax"`
	NDSTax         int64  `json:"nds_tax"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.projects.Create(r.Context(), project.CreateParams{
		Name: req.Name,
		Financials: finance.Financials{
			PlannedBudget:  req.PlannedBudget,
			ActualBudget:   req.ActualBudget,
			PlannedRevenue: req.PlannedRevenue,
			ActualRevenue:  req.ActualRevenue,
			USNTax:         req.USNTax,
			NDSTax:         req.NDSTax,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.projects.List(r.Context())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponseList(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.projects.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(p))
}

type updateProjectRequest struct {
	Name           *string `json:"name,omitempty"`
	PlannedBudget  *int64  `json:"planned_budget,omitempty"`
	ActualBudget   *int64  `json:"actual_budget,omitempty"`
	PlannedRevenue *int64  `json:"planned_revenue,omitempty"`
	ActualRevenue  *int64  `json:"actual_revenue,omitempty"`
	USNTax         *int64  `json:"usn_tax,omitempty"`
	NDSTax         *int64  `json:"nds_tax,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.projects.Update(r.Context(), id, project.UpdateParams{
		Name:           req.Name,
		PlannedBudget:  req.PlannedBudget,
		ActualBudget:   req.ActualBudget,
		PlannedRevenue: req.PlannedRevenue,
		ActualRevenue:  req.ActualRevenue,
		USNTax:         req.USNTax,
		NDSTax:         req.NDSTax,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(p))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	s, err := h.projects.Summary(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toSummaryResponse(s))
}

// listInvoices returns the project's invoices with supplier names. Names are
// best effort: a failed lookup leaves them empty.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	invs, err := h.invoices.ListByProject(r.Context(), id)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	var supplierIDs []uuid.UUID

	for _, inv := range invs {
		if inv.SupplierID != nil {
			supplierIDs = append(supplierIDs, *inv.SupplierID)
		}
	}

	names := h.suppliers.NewCache()
	if _, err := names.Resolve(r.Context(), supplierIDs); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("supplier names unavailable")
	}

	resp := make([]invoiceHTTP.Response, len(invs))

	for i, inv := range invs {
		var name string
		if inv.SupplierID != nil {
			name = names.Name(*inv.SupplierID)
		}

		resp[i] = invoiceHTTP.NewResponse(inv, name)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

type importResponse struct {
	Imported int                    `json:"imported"`
	Invoices []invoiceHTTP.Response `json:"invoices"`
}

func (h *Handler) importInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.projects.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.parser.Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	invs, err := h.invoices.Import(r.Context(), id, params)
	if err != nil {
		invoiceHTTP.WriteError(w, r, err)
		return
	}

	resp := importResponse{
		Imported: len(invs),
		Invoices: make([]invoiceHTTP.Response, len(invs)),
	}
	for i, inv := range invs {
		resp.Invoices[i] = invoiceHTTP.NewResponse(inv, "")
	}

	respond.JSON(w, r, http.StatusCreated, resp)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		http.Error(w, "project not found", http.StatusNotFound)
	case errors.Is(err, project.ErrNameRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		respond.Internal(w, r, err)
	}
}
