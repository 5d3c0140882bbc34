package amqp

import (
	"encoding/json"
	"time"
)

// EventKind tags what changed in the ledger.
type EventKind string

const (
	EventTxnUpserted     EventKind = "txn_upserted"
	EventTxnDeleted      EventKind = "txn_deleted"
	EventBudgetSet       EventKind = "budget_set"
	EventImportCompleted EventKind = "import_completed"
)

// LedgerEvent is a lightweight change notification. It carries only the
// ids involved; consumers reload the full state from the shared backend.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	TxnID     string    `json:"txn_id,omitempty"`
	Month     string    `json:"month,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind EventKind, txnID, month string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		TxnID:     txnID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
