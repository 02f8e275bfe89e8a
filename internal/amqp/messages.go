package amqp

import (
	"encoding/json"
	"time"

	"penjualan/internal/ledger"
)

// LedgerEventMessage is the wire form of a ledger change event.
type LedgerEventMessage struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transactionId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewLedgerEventMessage(e ledger.Event) LedgerEventMessage {
	return LedgerEventMessage{
		Kind:          string(e.Kind),
		TransactionID: e.TransactionID,
		OccurredAt:    time.Now().UTC(),
	}
}

func (m LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (LedgerEventMessage, error) {
	var m LedgerEventMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return LedgerEventMessage{}, err
	}
	return m, nil
}
