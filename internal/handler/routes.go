package handler

import (
	"net/http"
	"time"

	"github.com/Dan9191/payfirst/internal/models"
	"github.com/Dan9191/payfirst/internal/service"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in service.AccountInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := h.svc.CreateAccount(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	accounts, err := h.svc.ListAccounts(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) CreateCreditCard(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in service.CreditCardInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	card, err := h.svc.CreateCreditCard(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, card)
}

func (h *Handler) ListCreditCards(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	cards, err := h.svc.ListCreditCards(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in service.LoanInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loan, err := h.svc.CreateLoan(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, loan)
}

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	loans, err := h.svc.ListLoans(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, loans)
}

func (h *Handler) CloseLoan(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.CloseLoan(r.Context(), uid, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in service.DebtInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	debt, err := h.svc.CreateDebt(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, debt)
}

func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	debts, err := h.svc.ListDebts(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, debts)
}

func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.SettleDebt(r.Context(), uid, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var in service.TransactionInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := h.svc.CreateTransaction(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// ListTransactions accepts optional from/to query parameters as YYYY-MM-DD
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	var from, to time.Time
	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid "+name+" date, expected YYYY-MM-DD")
			return
		}
		*dst = t
	}

	txs, err := h.svc.ListTransactions(r.Context(), uid, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txs)
}

// FinancialHealth scores the caller's current month. ?breakdown=true adds bucket points.
func (h *Handler) FinancialHealth(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r)
	if !ok {
		return
	}
	report, err := h.svc.FinancialHealth(r.Context(), uid, r.URL.Query().Get("breakdown") == "true")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// ComputeHealth scores a snapshot posted in the request body without touching storage
func (h *Handler) ComputeHealth(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}
	var req models.ScoreRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.Input()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.ComputeHealth(r.Context(), in, r.URL.Query().Get("breakdown") == "true")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}
