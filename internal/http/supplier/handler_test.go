package supplier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	supplierHTTP "github.com/MrJamesThe3rd/tally/internal/http/supplier"
	"github.com/MrJamesThe3rd/tally/internal/supplier"
)

func newRouter(repo supplier.Repository) http.Handler {
	r := chi.NewRouter()
	supplierHTTP.NewHandler(supplier.NewService(repo, 1)).Routes(r)

	return r
}

type resolveBody struct {
	Suppliers map[uuid.UUID]struct {
		ID   uuid.UUID `json:"id"`
		Name *string   `json:"name"`
	} `json:"suppliers"`
	Missing []uuid.UUID `json:"missing"`
}

func TestHandler_Resolve(t *testing.T) {
	known := uuid.New()
	unknown := uuid.New()

	type testCase struct {
		name       string
		query      string
		setupMock  func(repo *supplier.MockRepository)
		wantStatus int
		verify     func(t *testing.T, body string)
	}

	tests := []testCase{
		{
			name:  "FoundAndMissing",
			query: "?ids=" + known.String() + "," + unknown.String() + "," + known.String(),
			setupMock: func(repo *supplier.MockRepository) {
				repo.EXPECT().GetByIDs(gomock.Any(), []uuid.UUID{known, unknown}).
					Return([]*supplier.Supplier{{ID: known, Name: new("Acme")}}, nil)
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, body string) {
				var resp resolveBody
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				require.Contains(t, resp.Suppliers, known)
				assert.Equal(t, "Acme", *resp.Suppliers[known].Name)
				assert.Equal(t, []uuid.UUID{unknown}, resp.Missing)
			},
		},
		{
			name:  "AllBatchesFailed",
			query: "?ids=" + known.String(),
			setupMock: func(repo *supplier.MockRepository) {
				repo.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "InvalidID",
			query:      "?ids=nope",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingQuery",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := supplier.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := httptest.NewRecorder()
			newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.verify != nil {
				tt.verify(t, rec.Body.String())
			}
		})
	}
}

func TestHandler_CreateAndGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := supplier.NewMockRepository(ctrl)
	repo.EXPECT().CreateSupplier(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *supplier.Supplier) error {
			s.ID = id
			return nil
		})
	repo.EXPECT().GetSupplier(gomock.Any(), id).Return(nil, supplier.ErrNotFound)

	router := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":" Acme "}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Acme"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
