// Package worker archives ledger activity to object storage. It consumes
// the event feed and writes one JSON document per event, plus periodic
// full-ledger exports as a backup in case events are lost.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/blob"
	"bilancio/internal/core"
	"bilancio/internal/events"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
)

// Archiver writes event and snapshot documents to the blob store.
type Archiver struct {
	store    services.Store
	uploader blob.Uploader
}

func NewArchiver(store services.Store, uploader blob.Uploader) *Archiver {
	return &Archiver{
		store:    store,
		uploader: uploader,
	}
}

// eventDocument is the archived form of a single ledger event, enriched
// with the entities it names so the archive is readable on its own.
type eventDocument struct {
	Kind         string             `json:"kind"`
	Timestamp    time.Time          `json:"timestamp"`
	EntityIDs    []string           `json:"entity_ids"`
	Transactions []core.Transaction `json:"transactions,omitempty"`
	Refunds      []core.Refund      `json:"refunds,omitempty"`
}

// HandleEvent archives a single ledger event. Entities that no longer
// exist (a deletion, or a lost race with another writer) are archived by
// id only.
func (a *Archiver) HandleEvent(ctx context.Context, event *events.LedgerEvent) error {
	slog.InfoContext(ctx, "Archiving ledger event",
		applog.FieldOperation, applog.OpArchive,
		applog.FieldEventKind, event.Kind,
		"entity_ids", event.EntityIDs)

	doc := eventDocument{
		Kind:      string(event.Kind),
		Timestamp: event.Timestamp,
		EntityIDs: event.EntityIDs,
	}

	snapshot, err := a.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	for _, id := range event.EntityIDs {
		if tx, ok := snapshot.Transaction(id); ok {
			doc.Transactions = append(doc.Transactions, tx)
			continue
		}
		for _, ref := range snapshot.Refunds {
			if ref.ID == id {
				doc.Refunds = append(doc.Refunds, ref)
				break
			}
		}
	}

	name := fmt.Sprintf("%s-%d.json", event.Kind, event.Timestamp.UnixMilli())
	if err := a.upload(ctx, "events", name, doc); err != nil {
		return fmt.Errorf("archive event %s: %w", event.Kind, err)
	}

	return nil
}

// snapshotDocument is a full-ledger export.
type snapshotDocument struct {
	ExportedAt   time.Time             `json:"exported_at"`
	Accounts     []core.Account        `json:"accounts"`
	Categories   []core.Category       `json:"categories"`
	Transactions []core.Transaction    `json:"transactions"`
	Refunds      []core.Refund         `json:"refunds"`
	Budgets      []core.CategoryBudget `json:"budgets"`
}

// ExportSnapshot archives the entire ledger as one document. Called
// periodically as a catch-up mechanism in case event messages are lost.
func (a *Archiver) ExportSnapshot(ctx context.Context) error {
	snapshot, err := a.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	now := time.Now().UTC()
	doc := snapshotDocument{
		ExportedAt:   now,
		Accounts:     snapshot.Accounts,
		Categories:   snapshot.Categories,
		Transactions: snapshot.Transactions,
		Refunds:      snapshot.Refunds,
		Budgets:      snapshot.Budgets,
	}

	name := fmt.Sprintf("ledger-%s.json", now.Format("2006-01-02T15-04-05"))
	if err := a.upload(ctx, "snapshots", name, doc); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot exported",
		"transactions", len(snapshot.Transactions),
		"refunds", len(snapshot.Refunds))

	return nil
}

// RunPeriodicExport exports the ledger on the given interval until the
// context is cancelled.
func (a *Archiver) RunPeriodicExport(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.ExportSnapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *Archiver) upload(ctx context.Context, folder, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	path, err := a.uploader.Upload(ctx, folder, name, bytes.NewReader(raw))
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Document archived", applog.FieldObjectPath, path, "bytes", len(raw))
	return nil
}
