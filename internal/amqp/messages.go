package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the ledger stream.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
	EventAccountUpdated     = "account.updated"
)

// LedgerEvent announces a committed ledger mutation. AccountIDs lists every
// account whose balance the mutation touched, which is all the audit worker
// needs to re-verify them.
type LedgerEvent struct {
	Kind       string    `json:"kind"`
	EntityID   string    `json:"entity_id"`
	AccountIDs []string  `json:"account_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLedgerEvent builds an event stamped with the current time.
func NewLedgerEvent(kind, entityID string, accountIDs ...string) LedgerEvent {
	return LedgerEvent{
		Kind:       kind,
		EntityID:   entityID,
		AccountIDs: accountIDs,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON serializes the event for the wire.
func (e LedgerEvent) ToJSON() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger event: %w", err)
	}
	return body, nil
}

// LedgerEventFromJSON deserializes a wire message.
func LedgerEventFromJSON(body []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("unmarshal ledger event: %w", err)
	}
	return &e, nil
}
