package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/events"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
)

// TransactionService guards and persists single money movements.
type TransactionService struct {
	store     Store
	publisher Publisher
	moves     *applog.StructuredLogger
}

func NewTransactionService(store Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		moves:     applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentServices})),
	}
}

// Create validates the transaction, runs the solvency check for outgoing
// flows, persists the record and publishes a best-effort event. Returns
// the assigned id.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("load snapshot: %w", err)
	}

	if tx.Flow == core.FlowOut {
		check := ledger.CanAfford(snapshot, tx.AccountID, tx.Amount, "")
		if err := check.Err(tx.AccountID, tx.Amount); err != nil {
			return "", err
		}
	}

	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now().UTC()

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return "", err
	}

	s.moves.LogMovementRecorded(ctx, applog.OpCreate, tx.AccountID, tx.CategoryID, tx.Amount.String(), tx.Currency)
	s.publish(ctx, events.NewLedgerEvent(events.KindTransactionCreated, tx.ID))
	return tx.ID, nil
}

// Update replaces an existing transaction record in full. The solvency
// check excludes the transaction's own prior contribution, so it reflects
// the balance as if the edit had not happened yet.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("update transaction: missing id")
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if tx.Flow == core.FlowOut {
		check := ledger.CanAfford(snapshot, tx.AccountID, tx.Amount, tx.ID)
		if err := check.Err(tx.AccountID, tx.Amount); err != nil {
			return err
		}
	}

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return err
	}

	s.moves.LogMovementRecorded(ctx, applog.OpUpdate, tx.AccountID, tx.CategoryID, tx.Amount.String(), tx.Currency)
	s.publish(ctx, events.NewLedgerEvent(events.KindTransactionUpdated, tx.ID))
	return nil
}

// Delete removes a transaction and publishes the deletion.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	s.publish(ctx, events.NewLedgerEvent(events.KindTransactionDeleted, id))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, event *events.LedgerEvent) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping", "kind", event.Kind)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The write already succeeded; the event feed is best-effort.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind,
			"entity_ids", event.EntityIDs,
			"error", err)
	}
}
