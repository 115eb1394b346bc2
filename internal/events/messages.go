package events

import (
	"encoding/json"
	"time"
)

// Event kinds published after successful writes.
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionUpdated = "transaction.updated"
	KindTransactionDeleted = "transaction.deleted"
	KindTransferCreated    = "transfer.created"
	KindRefundCreated      = "refund.created"
)

// LedgerEvent is a lightweight post-write notification. It carries only
// the entity ids and kind; consumers fetch full records from storage when
// they need them.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	EntityIDs []string  `json:"entity_ids"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(kind string, entityIDs ...string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		EntityIDs: entityIDs,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
