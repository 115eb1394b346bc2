// Package ledger is the aggregation engine of the tracker. Every function
// here is a pure computation over a Snapshot: no mutation, no hidden state,
// no I/O. Callers fetch a snapshot from storage, ask the engine for derived
// views (balances, solvency, budget status, refund totals) and only then
// issue writes through the persistence layer.
package ledger

import (
	"strings"

	"bilancio/internal/core"
)

// Snapshot is a read-only view of the whole ledger at one point in time.
// The engine never owns entity lifecycles; it recomputes every derived view
// from scratch on each call.
type Snapshot struct {
	Accounts     []core.Account
	Categories   []core.Category
	Transactions []core.Transaction
	Refunds      []core.Refund
	Budgets      []core.CategoryBudget
}

// Account returns the account with the given id, if present.
func (s Snapshot) Account(id string) (core.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return core.Account{}, false
}

// Category returns the category with the given id, if present.
func (s Snapshot) Category(id string) (core.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// CategoryByName returns the first category whose name matches, ignoring
// case and surrounding whitespace. Reserved system categories (transfers,
// refund, balance correction) are resolved through this lookup using the
// core.*CategoryName constants.
func (s Snapshot) CategoryByName(name string) (core.Category, bool) {
	want := normalizeCategoryName(name)
	for _, c := range s.Categories {
		if normalizeCategoryName(c.Name) == want {
			return c, true
		}
	}
	return core.Category{}, false
}

// Transaction returns the transaction with the given id, if present.
func (s Snapshot) Transaction(id string) (core.Transaction, bool) {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

func normalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// isBalanceCorrection reports whether the transaction is a manual ledger
// adjustment. Corrections count toward account balances but are excluded
// from spend rollups.
func (s Snapshot) isBalanceCorrection(tx core.Transaction) bool {
	cat, ok := s.Category(tx.CategoryID)
	if !ok {
		return false
	}
	return normalizeCategoryName(cat.Name) == normalizeCategoryName(core.BalanceCorrectionCategoryName)
}
