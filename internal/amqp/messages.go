package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"smartledger/internal/core"
)

// MirrorMessage carries one entry's sync record to the worker.
type MirrorMessage struct {
	Record    core.SyncRecord `json:"record"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMirrorMessage(rec core.SyncRecord) *MirrorMessage {
	return &MirrorMessage{Record: rec, Timestamp: time.Now().UTC()}
}

func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MirrorMessageFromJSON decodes a message and rejects ones with no amount.
func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Record.Income == "" && msg.Record.Expense == "" {
		return nil, errors.New("mirror message has neither income nor expense")
	}
	return &msg, nil
}
