package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/middleware"
	"github.com/Dan9191/payfirst/internal/models"
	"github.com/Dan9191/payfirst/internal/service"
)

// Service is the business logic the handlers call; *service.Service implements it.
type Service interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)

	CreateAccount(ctx context.Context, userID int64, in service.AccountInput) (*models.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	CreateCreditCard(ctx context.Context, userID int64, in service.CreditCardInput) (*models.CreditCard, error)
	ListCreditCards(ctx context.Context, userID int64) ([]models.CreditCard, error)
	CreateLoan(ctx context.Context, userID int64, in service.LoanInput) (*models.Loan, error)
	ListLoans(ctx context.Context, userID int64) ([]models.Loan, error)
	CloseLoan(ctx context.Context, userID, loanID int64) error
	CreateDebt(ctx context.Context, userID int64, in service.DebtInput) (*models.Debt, error)
	ListDebts(ctx context.Context, userID int64) ([]models.Debt, error)
	SettleDebt(ctx context.Context, userID, debtID int64) error
	CreateTransaction(ctx context.Context, userID int64, in service.TransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error)

	FinancialHealth(ctx context.Context, userID int64, withBreakdown bool) (*models.HealthReport, error)
	ComputeHealth(ctx context.Context, in health.Input, withBreakdown bool) (*models.HealthReport, error)
}

// KeyRateSource provides the central bank key rate.
type KeyRateSource interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

type Handler struct {
	svc     Service
	keyRate KeyRateSource
	log     *logrus.Logger
}

func NewHandler(svc Service, keyRate KeyRateSource, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, keyRate: keyRate, log: log}
}

// Routes registers every endpoint on r. Routes other than /healthz, /register,
// /login and /key-rate go through auth.
func (h *Handler) Routes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/key-rate", h.KeyRate).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(auth)
	api.HandleFunc("/accounts", h.CreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/credit-cards", h.CreateCreditCard).Methods(http.MethodPost)
	api.HandleFunc("/credit-cards", h.ListCreditCards).Methods(http.MethodGet)
	api.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id:[0-9]+}/close", h.CloseLoan).Methods(http.MethodPost)
	api.HandleFunc("/debts", h.CreateDebt).Methods(http.MethodPost)
	api.HandleFunc("/debts", h.ListDebts).Methods(http.MethodGet)
	api.HandleFunc("/debts/{id:[0-9]+}/settle", h.SettleDebt).Methods(http.MethodPost)
	api.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/financial-health", h.FinancialHealth).Methods(http.MethodGet)
	api.HandleFunc("/financial-health/compute", h.ComputeHealth).Methods(http.MethodPost)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debugf("Failed to write response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// fail maps service errors to HTTP statuses. Unexpected errors are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, health.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.WithField("request_id", middleware.RequestID(r.Context())).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthenticated")
	}
	return id, ok
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// Healthz is a liveness probe
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// KeyRate returns the central bank key rate
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.keyRate.GetKeyRate(r.Context())
	if err != nil {
		h.log.Errorf("Failed to get key rate: %v", err)
		h.writeError(w, http.StatusBadGateway, "key rate is unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"key_rate": rate})
}
