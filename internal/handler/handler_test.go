package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/middleware"
	"github.com/Dan9191/payfirst/internal/models"
	"github.com/Dan9191/payfirst/internal/service"
)

// fakeService implements only what the tests call; other methods panic via the nil embed.
type fakeService struct {
	Service

	computed   *health.Input
	loanErr    error
	closedLoan int64
	listFrom   time.Time
	listTo     time.Time
}

func (f *fakeService) ComputeHealth(_ context.Context, in health.Input, withBreakdown bool) (*models.HealthReport, error) {
	f.computed = &in
	res, err := health.Compute(in)
	if err != nil {
		return nil, err
	}
	return models.NewHealthReport(res, models.FallbackNarrative(), false, withBreakdown, time.Time{}), nil
}

func (f *fakeService) FinancialHealth(_ context.Context, userID int64, _ bool) (*models.HealthReport, error) {
	if userID != 7 {
		return nil, errors.New("unexpected user")
	}
	res, _ := health.Compute(health.Input{})
	return models.NewHealthReport(res, models.Narrative{Summary: "ok"}, true, false, time.Time{}), nil
}

func (f *fakeService) CreateLoan(context.Context, int64, service.LoanInput) (*models.Loan, error) {
	return nil, f.loanErr
}

func (f *fakeService) CloseLoan(_ context.Context, _ int64, loanID int64) error {
	if loanID == 404 {
		return fmt.Errorf("loan 404: %w", service.ErrNotFound)
	}
	f.closedLoan = loanID
	return nil
}

func (f *fakeService) Login(_ context.Context, email, password string) (string, error) {
	if email == "anna@example.com" && password == "correct-horse" {
		return "token-123", nil
	}
	return "", service.ErrInvalidCredentials
}

func (f *fakeService) ListTransactions(_ context.Context, _ int64, from, to time.Time) ([]models.Transaction, error) {
	f.listFrom, f.listTo = from, to
	return []models.Transaction{}, nil
}

type fakeKeyRate struct {
	rate float64
	err  error
}

func (f fakeKeyRate) GetKeyRate(context.Context) (float64, error) { return f.rate, f.err }

// fakeAuth authenticates every request as user 7.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), 7)))
	})
}

func newRouter(svc Service, kr KeyRateSource) *mux.Router {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := mux.NewRouter()
	NewHandler(svc, kr, log).Routes(r, fakeAuth)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestComputeHealth_Endpoint(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, nil)

	body := `{"monthly_income":0,"monthly_expense":0,"last_3_months_expenses":[],"liquid_assets":0,
		"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":0}`
	rec := do(r, http.MethodPost, "/financial-health/compute?breakdown=true", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 57.0, report.FinalScore)
	assert.Equal(t, health.StatusModerateRisk, report.Status)
	require.NotNil(t, report.Breakdown)
	assert.Equal(t, -5.0, report.Breakdown.Deductions)
	require.NotNil(t, report.Metrics.CashRunwayMonths)
	assert.Equal(t, 0.0, *report.Metrics.CashRunwayMonths)
}

func TestComputeHealth_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		reachesCore bool
	}{
		{"missing field", `{"monthly_income":100,"monthly_expense":0,"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0}`, false},
		{"null amount", `{"monthly_income":null,"monthly_expense":0,"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":0}`, false},
		{"null history entry", `{"monthly_income":1,"monthly_expense":0,"last_3_months_expenses":[null,500],"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":0}`, false},
		{"string amount", `{"monthly_income":"lots"}`, false},
		{"unknown field", `{"salary":100}`, false},
		{"negative limit", `{"monthly_income":100,"monthly_expense":0,"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":-1}`, true},
		{"four months", `{"monthly_income":1,"monthly_expense":0,"last_3_months_expenses":[1,2,3,4],"liquid_assets":0,"total_monthly_emi":0,"total_credit_outstanding":0,"total_credit_limit":0}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(newRouter(svc, nil), http.MethodPost, "/financial-health/compute", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Equal(t, tc.reachesCore, svc.computed != nil)
		})
	}
}

func TestFinancialHealth_Endpoint(t *testing.T) {
	rec := do(newRouter(&fakeService{}, nil), http.MethodGet, "/financial-health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"narrative_available":true`)
	assert.Contains(t, rec.Body.String(), `"status":"Moderate Risk"`)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: lender is required", service.ErrValidation), http.StatusBadRequest},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(newRouter(&fakeService{loanErr: tc.err}, nil), http.MethodPost, "/loans", `{"lender":""}`)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}

	rec := do(newRouter(&fakeService{loanErr: errors.New("pq: secret detail")}, nil), http.MethodPost, "/loans", `{}`)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestCloseLoan_Endpoint(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, nil)

	rec := do(r, http.MethodPost, "/loans/12/close", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(12), svc.closedLoan)

	rec = do(r, http.MethodPost, "/loans/404/close", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/loans/abc/close", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin_Endpoint(t *testing.T) {
	r := newRouter(&fakeService{}, nil)

	rec := do(r, http.MethodPost, "/login", `{"email":"anna@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"token-123"}`, rec.Body.String())

	rec = do(r, http.MethodPost, "/login", `{"email":"anna@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListTransactions_DateParams(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, nil)

	rec := do(r, http.MethodGet, "/transactions?from=2026-09-01&to=2026-10-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), svc.listFrom)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), svc.listTo)

	rec = do(r, http.MethodGet, "/transactions?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKeyRate_Endpoint(t *testing.T) {
	rec := do(newRouter(&fakeService{}, fakeKeyRate{rate: 16.5}), http.MethodGet, "/key-rate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key_rate":16.5}`, rec.Body.String())

	rec = do(newRouter(&fakeService{}, fakeKeyRate{err: errors.New("down")}), http.MethodGet, "/key-rate", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(newRouter(&fakeService{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection closed") }

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	h := NewHandler(&fakeService{}, nil, log)

	h.writeJSON(brokenWriter{httptest.NewRecorder()}, http.StatusOK, map[string]string{"status": "ok"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Contains(t, entry.Message, "connection closed")
}
