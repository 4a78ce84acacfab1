package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	tallyHTTP "github.com/MrJamesThe3rd/tally/internal/http"
	invoiceHTTP "github.com/MrJamesThe3rd/tally/internal/http/invoice"
	projectHTTP "github.com/MrJamesThe3rd/tally/internal/http/project"
	supplierHTTP "github.com/MrJamesThe3rd/tally/internal/http/supplier"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
	"github.com/MrJamesThe3rd/tally/internal/project"
	"github.com/MrJamesThe3rd/tally/internal/supplier"
)

func newRouter(t *testing.T) (http.Handler, *project.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)

	projects := project.NewMockRepository(ctrl)

	var (
		projectSvc  = project.NewService(projects, project.NewMockInvoiceAmounts(ctrl))
		invoiceSvc  = invoice.NewService(invoice.NewMockRepository(ctrl), invoice.NewMockPublisher(ctrl))
		supplierSvc = supplier.NewService(supplier.NewMockRepository(ctrl), 1)
	)

	router := tallyHTTP.New(
		projectHTTP.NewHandler(projectSvc, invoiceSvc, supplierSvc, importer.NewParser()),
		invoiceHTTP.NewHandler(invoiceSvc),
		supplierHTTP.NewHandler(supplierSvc),
		tallyHTTP.Options{AllowedOrigins: []string{"https://app.example.com"}},
	)

	return router, projects
}

func TestRouter_ListProjects(t *testing.T) {
	router, projects := newRouter(t)
	projects.EXPECT().ListProjects(gomock.Any()).Return(nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/invoices", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_InvoicesRequireJSON(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.ContentLength = 2

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
