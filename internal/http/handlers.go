package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
	"bilancio/internal/services"
)

// handleBalances returns the current balance of every account.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	balances := ledger.ComputeBalances(snapshot)

	type accountBalance struct {
		AccountID string `json:"account_id"`
		Name      string `json:"name"`
		Currency  string `json:"currency"`
		Balance   string `json:"balance"`
	}
	out := make([]accountBalance, 0, len(snapshot.Accounts))
	for _, acc := range snapshot.Accounts {
		out = append(out, accountBalance{
			AccountID: acc.ID,
			Name:      acc.Name,
			Currency:  acc.Currency,
			Balance:   balances[acc.ID].String(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"balances": out})
}

type solvencyRequest struct {
	AccountID            string `json:"account_id"`
	Amount               string `json:"amount"`
	ExcludeTransactionID string `json:"exclude_transaction_id"`
}

// handleSolvencyCheck answers whether an account can afford a proposed
// outgoing amount without going negative.
func (s *Server) handleSolvencyCheck(w http.ResponseWriter, r *http.Request) {
	var req solvencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid amount", err)
		return
	}

	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}
	if _, ok := snapshot.Account(req.AccountID); !ok {
		writeError(w, r, http.StatusNotFound, "account not found", nil)
		return
	}

	check := ledger.CanAfford(snapshot, req.AccountID, amount, req.ExcludeTransactionID)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        check.OK,
		"available": check.Available.String(),
	})
}

// handleBudgetStatus reports cap consumption for a category and period.
// Query parameters: category_id (required), period (YYYY-MM, optional),
// pending (amount, optional), exclude_transaction_id (optional).
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID := q.Get("category_id")
	if categoryID == "" {
		writeError(w, r, http.StatusBadRequest, "category_id is required", nil)
		return
	}

	period := core.Period(q.Get("period"))
	if err := period.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid period", err)
		return
	}

	pending := decimal.Zero
	if v := q.Get("pending"); v != "" {
		parsed, err := core.ParseAmount(v)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid pending amount", err)
			return
		}
		pending = parsed
	}

	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}
	if _, ok := snapshot.Category(categoryID); !ok {
		writeError(w, r, http.StatusNotFound, "category not found", nil)
		return
	}

	status := ledger.BudgetStatusFor(snapshot, categoryID, period, pending, q.Get("exclude_transaction_id"))

	resp := map[string]any{
		"category_id":   status.CategoryID,
		"period":        string(status.Period),
		"current_spent": status.CurrentSpent.String(),
		"projected":     status.Projected.String(),
		"tier":          string(status.Tier),
	}
	if status.Cap != nil {
		resp["cap"] = status.Cap.String()
	}
	if status.Remaining != nil {
		resp["remaining"] = status.Remaining.String()
	}
	if status.OverAmount != nil {
		resp["over_amount"] = status.OverAmount.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefundTotals returns per-transaction refunded totals.
func (s *Server) handleRefundTotals(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	totals := ledger.RefundTotals(snapshot.Refunds)

	type refundTotal struct {
		TransactionID string `json:"transaction_id"`
		Amount        string `json:"amount"`
		Currency      string `json:"currency"`
	}
	out := make([]refundTotal, 0, len(totals))
	for txID, total := range totals {
		out = append(out, refundTotal{
			TransactionID: txID,
			Amount:        total.Amount.String(),
			Currency:      total.Currency,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"totals": out})
}

type categoryNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Icon     string         `json:"icon"`
	Children []categoryNode `json:"children,omitempty"`
}

// handleCategoryTree returns the full category hierarchy with display icons.
func (s *Server) handleCategoryTree(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to load ledger", err)
		return
	}

	idx := ledger.NewCategoryIndex(snapshot.Categories)

	var build func(c core.Category) categoryNode
	build = func(c core.Category) categoryNode {
		node := categoryNode{
			ID:   c.ID,
			Name: c.Name,
			Type: string(c.Type),
			Icon: idx.Icon(c.ID),
		}
		for _, child := range idx.Children(c.ID) {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	roots := idx.Roots()
	out := make([]categoryNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root))
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

type transactionRequest struct {
	Type       string   `json:"type"`
	Flow       string   `json:"flow"`
	AccountID  string   `json:"account_id"`
	CategoryID string   `json:"category_id"`
	Amount     string   `json:"amount"`
	Currency   string   `json:"currency"`
	Date       string   `json:"date"`
	Note       string   `json:"note"`
	Tags       []string `json:"tags"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Type:       core.TransactionType(req.Type),
		Flow:       core.Flow(req.Flow),
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Currency:   req.Currency,
		Date:       date,
		Note:       sanitizeInput(req.Note),
		Tags:       req.Tags,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid transaction", err)
		return
	}

	id, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid transaction", err)
		return
	}
	tx.ID = r.PathValue("id")

	if err := s.transactions.Update(r.Context(), tx); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": tx.ID})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Note          string `json:"note"`
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid amount", err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date", err)
		return
	}

	pair, err := s.transfers.Create(r.Context(), req.FromAccountID, req.ToAccountID, amount, date, sanitizeInput(req.Note))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"outgoing_id": pair.Outgoing.ID,
		"incoming_id": pair.Incoming.ID,
	})
}

// handleCreateRefund accepts a multipart form with the refund fields and an
// optional receipt photo.
func (s *Server) handleCreateRefund(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form", err)
		return
	}

	amount, err := core.ParseAmount(r.FormValue("amount"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid amount", err)
		return
	}
	date, err := parseDate(r.FormValue("date"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date", err)
		return
	}

	req := services.RefundRequest{
		TransactionID: r.FormValue("transaction_id"),
		AccountID:     r.FormValue("account_id"),
		Amount:        amount,
		Date:          date,
		Note:          sanitizeInput(r.FormValue("note")),
		PhotoOptional: r.FormValue("photo_optional") == "true",
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		req.Photo = file
		req.PhotoName = header.Filename
	}

	id, err := s.refunds.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// writeDomainError maps engine rejections onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *ledger.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      insufficient.Error(),
			"account_id": insufficient.AccountID,
			"available":  insufficient.Available.String(),
			"requested":  insufficient.Requested.String(),
		})
	case errors.Is(err, ledger.ErrInvalidTransfer),
		errors.Is(err, ledger.ErrMissingTransferCategory),
		errors.Is(err, core.ErrInvalidAmount):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error", nil)
	}
}
