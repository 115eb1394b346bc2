// Package services sequences writes around the ledger engine: every
// mutation first asks the engine (solvency, transfer composition) over a
// fresh snapshot, then issues explicit calls to the persistence
// collaborator, then publishes a best-effort event.
package services

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/events"
	"bilancio/internal/ledger"
)

// Store is the slice of the persistence collaborator the services need.
// Implemented by storage.SQLiteRepository.
type Store interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
	InsertTransaction(ctx context.Context, tx core.Transaction) error
	InsertTransactionBatch(ctx context.Context, txs []core.Transaction) error
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	InsertRefund(ctx context.Context, ref core.Refund) error
	InsertCategory(ctx context.Context, c core.Category) error
}

// Publisher emits post-write notifications. Implemented by events.Client;
// nil-able, publishing never fails a write.
type Publisher interface {
	Publish(ctx context.Context, event *events.LedgerEvent) error
}
