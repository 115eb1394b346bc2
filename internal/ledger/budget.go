package ledger

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// BudgetTier classifies how close projected spend is to the effective cap.
type BudgetTier string

const (
	TierUnconstrained BudgetTier = "unconstrained"
	TierWithin        BudgetTier = "within"
	TierWarning       BudgetTier = "warning"
	TierOver          BudgetTier = "over"
)

// warnThreshold is the projected/cap ratio at which the warning tier starts.
var warnThreshold = decimal.RequireFromString("0.8")

// BudgetStatus is the consumption of a category's cap within a period.
// Cap, Remaining and OverAmount are nil when no cap constrains the
// category.
type BudgetStatus struct {
	CategoryID   string
	Period       core.Period
	Cap          *decimal.Decimal
	CurrentSpent decimal.Decimal
	Projected    decimal.Decimal
	Remaining    *decimal.Decimal
	OverAmount   *decimal.Decimal
	Tier         BudgetTier
}

// BudgetStatusFor computes spend consumed against a category's cap.
//
// Spend is the sum of expense transactions within the period whose category
// is the target or any of its descendants: a movement recorded on a leaf
// rolls up into every ancestor on the path to the root. Balance corrections
// are excluded, as is the transaction named by excludingTxID (an in-place
// edit in progress).
//
// The effective cap is resolved per category as the budget entry scoped to
// the period, falling back to an "always" entry, and then tightened to the
// minimum across the category's own cap and its ancestors' caps: an
// ancestor cap constrains its whole subtree, but never redistributes budget
// among children.
//
// pending is the amount the caller is about to record; negative values are
// treated as zero for projection.
func BudgetStatusFor(s Snapshot, categoryID string, period core.Period, pending decimal.Decimal, excludingTxID string) BudgetStatus {
	idx := NewCategoryIndex(s.Categories)

	status := BudgetStatus{
		CategoryID: categoryID,
		Period:     period,
		Cap:        effectiveCap(s, idx, categoryID, period),
	}

	subtree := idx.SubtreeIDs(categoryID)
	spent := decimal.Zero
	for _, tx := range s.Transactions {
		if tx.Type != core.Expense {
			continue
		}
		if tx.ID == excludingTxID && excludingTxID != "" {
			continue
		}
		if !subtree[tx.CategoryID] {
			continue
		}
		if !period.Contains(tx.Date) {
			continue
		}
		if s.isBalanceCorrection(tx) {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	status.CurrentSpent = spent

	projectedPending := pending
	if projectedPending.IsNegative() {
		projectedPending = decimal.Zero
	}
	status.Projected = spent.Add(projectedPending)

	if status.Cap == nil {
		status.Tier = TierUnconstrained
		return status
	}

	cap := *status.Cap
	remaining := cap.Sub(status.Projected)
	status.Remaining = &remaining

	over := status.Projected.Sub(cap)
	if over.IsNegative() {
		over = decimal.Zero
	}
	status.OverAmount = &over

	switch {
	case status.Projected.GreaterThanOrEqual(cap):
		status.Tier = TierOver
	case cap.IsPositive() && status.Projected.GreaterThanOrEqual(cap.Mul(warnThreshold)):
		status.Tier = TierWarning
	default:
		status.Tier = TierWithin
	}

	return status
}

// effectiveCap resolves the binding cap for a category: its own cap and
// every ancestor's cap all apply, and the tightest one wins. Returns nil
// when nothing along the chain is constrained.
func effectiveCap(s Snapshot, idx *CategoryIndex, categoryID string, period core.Period) *decimal.Decimal {
	var effective *decimal.Decimal

	chain := append([]string{categoryID}, idx.Ancestors(categoryID)...)
	for _, id := range chain {
		cap := resolveCap(s, id, period)
		if cap == nil {
			continue
		}
		if effective == nil || cap.LessThan(*effective) {
			c := *cap
			effective = &c
		}
	}
	return effective
}

// resolveCap picks the budget entry for one category: the entry scoped to
// the period wins over an unscoped "always" entry. A nil Cap on the chosen
// entry means explicitly unconstrained.
func resolveCap(s Snapshot, categoryID string, period core.Period) *decimal.Decimal {
	var fallback *core.CategoryBudget
	for i := range s.Budgets {
		b := s.Budgets[i]
		if b.CategoryID != categoryID {
			continue
		}
		if core.Period(b.Period) == period && !period.IsAlways() {
			return b.Cap
		}
		if b.Period == "" && fallback == nil {
			fallback = &s.Budgets[i]
		}
	}
	if fallback != nil {
		return fallback.Cap
	}
	return nil
}
