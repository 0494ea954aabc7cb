package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// LedgerChangedMessage announces a committed mutation. It carries no ledger
// content; consumers reload whatever they need for the owner.
type LedgerChangedMessage struct {
	EventID   string    `json:"eventId"`
	Owner     string    `json:"owner"`
	Kind      string    `json:"kind"`
	LedgerID  string    `json:"ledgerId"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(owner, kind, ledgerID, operation string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		EventID:   uuid.NewString(),
		Owner:     owner,
		Kind:      kind,
		LedgerID:  ledgerID,
		Operation: operation,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) Validate() error {
	if m.Owner == "" {
		return errors.New("ledger changed message: missing owner")
	}
	if m.LedgerID == "" {
		return errors.New("ledger changed message: missing ledger id")
	}
	return nil
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
