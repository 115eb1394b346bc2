package ledger

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// RefundTotal is the aggregated refunded amount for one transaction.
// The currency is the one of the first refund seen; refunds against a
// single transaction are assumed same-currency.
type RefundTotal struct {
	Amount   decimal.Decimal
	Currency string
}

// RefundTotals groups refunds by their originating transaction and sums the
// refunded amounts. The result is a display annotation only: a refund is
// recorded separately as an income transaction for balance purposes, so
// these totals never feed balance or budget computations.
//
// Over-refund (total above the original amount) stays representable and is
// not flagged here.
func RefundTotals(refunds []core.Refund) map[string]RefundTotal {
	totals := make(map[string]RefundTotal)
	for _, r := range refunds {
		if r.TransactionID == "" {
			continue
		}
		total, ok := totals[r.TransactionID]
		if !ok {
			total = RefundTotal{Amount: decimal.Zero, Currency: r.Currency}
		}
		total.Amount = total.Amount.Add(r.Amount)
		totals[r.TransactionID] = total
	}
	return totals
}
