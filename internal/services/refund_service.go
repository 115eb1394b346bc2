package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bilancio/internal/blob"
	"bilancio/internal/core"
	"bilancio/internal/events"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
)

// RefundRequest carries everything needed to record a refund. Photo is
// optional; when PhotoOptional is set an upload failure is logged and the
// refund proceeds without it.
type RefundRequest struct {
	TransactionID string
	AccountID     string
	Amount        decimal.Decimal
	Date          core.Date
	Note          string
	Photo         io.Reader
	PhotoName     string
	PhotoOptional bool
}

// RefundService sequences the compound refund flow: resolve (or create)
// the reserved refund income category, upload the photo, persist the
// Refund record, persist the companion income transaction. The two writes
// have no atomicity guarantee; a partial failure leaves a dangling refund
// or orphaned income record, which is logged and surfaced, not repaired.
type RefundService struct {
	store     Store
	uploader  blob.Uploader
	publisher Publisher
	moves     *applog.StructuredLogger
}

func NewRefundService(store Store, uploader blob.Uploader, publisher Publisher) *RefundService {
	return &RefundService{
		store:     store,
		uploader:  uploader,
		publisher: publisher,
		moves:     applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentServices})),
	}
}

// Create runs the refund workflow and returns the refund id.
func (s *RefundService) Create(ctx context.Context, req RefundRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", core.ErrInvalidAmount
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("load snapshot: %w", err)
	}

	original, ok := snapshot.Transaction(req.TransactionID)
	if !ok {
		return "", fmt.Errorf("originating transaction %s not found", req.TransactionID)
	}
	account, ok := snapshot.Account(req.AccountID)
	if !ok {
		return "", fmt.Errorf("account %s not found", req.AccountID)
	}

	refundCategory, err := s.resolveRefundCategory(ctx, snapshot)
	if err != nil {
		return "", err
	}

	// The photo must be uploaded (or explicitly skipped) before the
	// refund record is written.
	photoPath := ""
	if req.Photo != nil {
		photoPath, err = s.uploadPhoto(ctx, req)
		if err != nil {
			return "", err
		}
	}

	refund := core.Refund{
		ID:            uuid.NewString(),
		TransactionID: original.ID,
		AccountID:     account.ID,
		Amount:        req.Amount,
		Currency:      account.Currency,
		Date:          req.Date,
		Note:          req.Note,
		PhotoPath:     photoPath,
	}
	if err := refund.Validate(); err != nil {
		return "", fmt.Errorf("validate refund: %w", err)
	}

	if err := s.store.InsertRefund(ctx, refund); err != nil {
		return "", err
	}

	note := req.Note
	if note == "" {
		categoryName := "?"
		if cat, ok := snapshot.Category(original.CategoryID); ok {
			categoryName = cat.Name
		}
		note = fmt.Sprintf("Rimborso: %s", categoryName)
	}

	income := core.Transaction{
		ID:         uuid.NewString(),
		Type:       core.Income,
		Flow:       core.FlowIn,
		AccountID:  account.ID,
		CategoryID: refundCategory.ID,
		Amount:     req.Amount,
		Currency:   account.Currency,
		Date:       req.Date,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertTransaction(ctx, income); err != nil {
		// The refund record already exists without its income leg.
		slog.ErrorContext(ctx, "Refund persisted without its income transaction",
			applog.FieldRefundID, refund.ID,
			applog.FieldTransactionID, original.ID,
			applog.FieldError, err.Error())
		return "", fmt.Errorf("insert refund income transaction: %w", err)
	}

	s.moves.LogMovementRecorded(ctx, applog.OpRefund, income.AccountID, income.CategoryID, income.Amount.String(), income.Currency)
	s.publishEvent(ctx, events.NewLedgerEvent(events.KindRefundCreated, refund.ID, income.ID))

	slog.InfoContext(ctx, "Refund recorded",
		applog.FieldRefundID, refund.ID,
		applog.FieldTransactionID, original.ID,
		applog.FieldAmount, req.Amount.String(),
		"photo", photoPath != "")

	return refund.ID, nil
}

// resolveRefundCategory finds the reserved refund income category or
// creates it when the seed is missing.
func (s *RefundService) resolveRefundCategory(ctx context.Context, snapshot ledger.Snapshot) (core.Category, error) {
	if cat, ok := snapshot.CategoryByName(core.RefundCategoryName); ok {
		return cat, nil
	}

	cat := core.Category{
		ID:   uuid.NewString(),
		Name: core.RefundCategoryName,
		Type: core.Income,
	}
	if err := s.store.InsertCategory(ctx, cat); err != nil {
		return core.Category{}, fmt.Errorf("create refund category: %w", err)
	}

	slog.InfoContext(ctx, "Created missing refund category", "category_id", cat.ID)
	return cat, nil
}

func (s *RefundService) uploadPhoto(ctx context.Context, req RefundRequest) (string, error) {
	if s.uploader == nil {
		if req.PhotoOptional {
			slog.WarnContext(ctx, "No uploader configured, skipping refund photo")
			return "", nil
		}
		return "", fmt.Errorf("photo upload requested but no uploader configured")
	}

	path, err := s.uploader.Upload(ctx, req.TransactionID, req.PhotoName, req.Photo)
	if err != nil {
		if req.PhotoOptional {
			slog.WarnContext(ctx, "Refund photo upload failed, proceeding without it",
				"transaction_id", req.TransactionID,
				"error", err)
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func (s *RefundService) publishEvent(ctx context.Context, event *events.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refund event", "error", err)
	}
}
