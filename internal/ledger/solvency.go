package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientFundsError is returned when a proposed outgoing movement
// exceeds the account's available balance. Callers must surface Available
// to the user and must not proceed to write.
type InsufficientFundsError struct {
	AccountID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: requested %s, available %s",
		e.AccountID, e.Requested, e.Available)
}

// SolvencyCheck is the result of a pre-write solvency validation.
type SolvencyCheck struct {
	OK        bool
	Available decimal.Decimal
}

// Err returns the rejection as an error, or nil when the check passed.
func (c SolvencyCheck) Err(accountID string, requested decimal.Decimal) error {
	if c.OK {
		return nil
	}
	return &InsufficientFundsError{AccountID: accountID, Requested: requested, Available: c.Available}
}

// CanAfford validates that a proposed outgoing amount does not exceed the
// account's available balance. It is used before any write whose flow is
// "out", never for incoming movements.
//
// When the caller is editing an existing transaction, excludingTxID names
// it and its own signed contribution is reversed out of the balance first,
// so the check reflects the balance as if the edit had not happened yet.
//
// The check is advisory: it takes no lock, so concurrent sessions can still
// overdraw between check and write. Acceptable for a single-user ledger.
func CanAfford(s Snapshot, accountID string, proposed decimal.Decimal, excludingTxID string) SolvencyCheck {
	available := AccountBalance(s, accountID)

	if excludingTxID != "" {
		if tx, ok := s.Transaction(excludingTxID); ok && tx.AccountID == accountID {
			available = available.Sub(tx.Signed())
		}
	}

	if proposed.GreaterThan(available) {
		return SolvencyCheck{OK: false, Available: available}
	}
	return SolvencyCheck{OK: true, Available: available}
}
