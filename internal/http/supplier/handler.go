package supplier

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/supplier"
)

type Handler struct {
	svc *supplier.Service
}

func NewHandler(svc *supplier.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.resolve)
	r.Get("/{id}", h.get)
}

type supplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(s *supplier.Supplier) supplierResponse {
	return supplierResponse{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
}

type createSupplierRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.svc.Create(r.Context(), supplier.CreateParams{Name: req.Name})
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(s))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			http.Error(w, "supplier not found", http.StatusNotFound)
			return
		}

		respond.Internal(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(s))
}

type resolveResponse struct {
	Suppliers map[uuid.UUID]supplierResponse `json:"suppliers"`
	Missing   []uuid.UUID                    `json:"missing"`
}

// resolve looks up a comma-separated ids list. Unknown ids and ids from
// failed lookup batches are reported as missing.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	found, err := h.svc.Resolve(r.Context(), ids)
	if err != nil {
		var partial *supplier.PartialResolutionError
		if errors.As(err, &partial) {
			http.Error(w, "supplier lookup failed", http.StatusBadGateway)
			return
		}

		respond.Internal(w, r, err)

		return
	}

	resp := resolveResponse{
		Suppliers: make(map[uuid.UUID]supplierResponse, len(found)),
		Missing:   []uuid.UUID{},
	}

	for _, id := range ids {
		s, ok := found[id]
		if !ok {
			resp.Missing = append(resp.Missing, id)
			continue
		}

		resp.Suppliers[id] = toResponse(s)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("ids query parameter is required")
	}

	seen := make(map[uuid.UUID]bool)

	var ids []uuid.UUID

	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := uuid.Parse(part)
		if err != nil {
			return nil, errors.New("invalid id: " + part)
		}

		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}
