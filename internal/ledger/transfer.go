package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

var (
	// ErrInvalidTransfer rejects a transfer whose source and destination
	// are the same account, or whose accounts hold different currencies.
	ErrInvalidTransfer = errors.New("invalid transfer")

	// ErrMissingTransferCategory means the reserved transfers category is
	// absent from the snapshot. Recoverable by seeding default categories;
	// the engine never creates it on its own.
	ErrMissingTransferCategory = errors.New("transfer category not found")
)

// TransferPair is the double entry produced for an internal transfer: an
// outgoing record on the source account and an incoming record on the
// destination. Both carry the same amount, currency, category and note and
// must be persisted together.
type TransferPair struct {
	Outgoing core.Transaction
	Incoming core.Transaction
}

// ComposeTransfer builds the paired records for an account-to-account
// transfer. The currency is taken from the source account; cross-currency
// transfers are not supported. When note is empty it defaults to
// "Transfer from <source> to <destination>".
//
// The composed records carry no IDs or creation timestamps; the caller
// assigns those when persisting the pair as one batch.
func ComposeTransfer(s Snapshot, from, to core.Account, amount decimal.Decimal, date core.Date, note string) (TransferPair, error) {
	if from.ID == to.ID {
		return TransferPair{}, fmt.Errorf("%w: source and destination are the same account", ErrInvalidTransfer)
	}
	if from.Currency != to.Currency {
		return TransferPair{}, fmt.Errorf("%w: cross-currency transfer from %s to %s", ErrInvalidTransfer, from.Currency, to.Currency)
	}
	if !amount.IsPositive() {
		return TransferPair{}, fmt.Errorf("%w: amount must be positive", ErrInvalidTransfer)
	}

	category, ok := s.CategoryByName(core.TransferCategoryName)
	if !ok {
		return TransferPair{}, ErrMissingTransferCategory
	}

	if note == "" {
		note = fmt.Sprintf("Transfer from %s to %s", from.Name, to.Name)
	}

	outgoing := core.Transaction{
		Type:       core.Transfer,
		Flow:       core.FlowOut,
		AccountID:  from.ID,
		CategoryID: category.ID,
		Amount:     amount,
		Currency:   from.Currency,
		Date:       date,
		Note:       note,
	}
	incoming := core.Transaction{
		Type:       core.Transfer,
		Flow:       core.FlowIn,
		AccountID:  to.ID,
		CategoryID: category.ID,
		Amount:     amount,
		Currency:   from.Currency,
		Date:       date,
		Note:       note,
	}

	return TransferPair{Outgoing: outgoing, Incoming: incoming}, nil
}
