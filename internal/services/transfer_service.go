package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/events"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
)

// TransferService builds and persists the double entry for internal
// account-to-account transfers.
type TransferService struct {
	store     Store
	publisher Publisher
	txService *TransactionService
}

func NewTransferService(store Store, publisher Publisher) *TransferService {
	return &TransferService{
		store:     store,
		publisher: publisher,
		txService: NewTransactionService(store, publisher),
	}
}

// Create composes the transfer pair, checks solvency on the source account
// and writes both legs as one batch so a transfer is never observably
// half-written.
func (s *TransferService) Create(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, date core.Date, note string) (ledger.TransferPair, error) {
	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return ledger.TransferPair{}, fmt.Errorf("load snapshot: %w", err)
	}

	from, ok := snapshot.Account(fromAccountID)
	if !ok {
		return ledger.TransferPair{}, fmt.Errorf("source account %s not found", fromAccountID)
	}
	to, ok := snapshot.Account(toAccountID)
	if !ok {
		return ledger.TransferPair{}, fmt.Errorf("destination account %s not found", toAccountID)
	}

	pair, err := ledger.ComposeTransfer(snapshot, from, to, amount, date, note)
	if err != nil {
		return ledger.TransferPair{}, err
	}

	check := ledger.CanAfford(snapshot, from.ID, amount, "")
	if err := check.Err(from.ID, amount); err != nil {
		return ledger.TransferPair{}, err
	}

	now := time.Now().UTC()
	pair.Outgoing.ID = uuid.NewString()
	pair.Outgoing.CreatedAt = now
	pair.Incoming.ID = uuid.NewString()
	pair.Incoming.CreatedAt = now

	if err := s.store.InsertTransactionBatch(ctx, []core.Transaction{pair.Outgoing, pair.Incoming}); err != nil {
		return ledger.TransferPair{}, err
	}

	s.txService.moves.LogMovementRecorded(ctx, applog.OpTransfer,
		pair.Outgoing.AccountID, pair.Outgoing.CategoryID,
		pair.Outgoing.Amount.String(), pair.Outgoing.Currency)
	s.txService.publish(ctx, events.NewLedgerEvent(events.KindTransferCreated, pair.Outgoing.ID, pair.Incoming.ID))
	return pair, nil
}
