package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces that a new snapshot was persisted. It
// carries counts only; consumers reload the snapshot from storage.
type SnapshotSavedMessage struct {
	Namespace    string    `json:"namespace"`
	Revision     uint64    `json:"revision"`
	Operation    string    `json:"operation,omitempty"`
	Transactions int       `json:"transactions"`
	Categories   int       `json:"categories"`
	Budgets      int       `json:"budgets"`
	Timestamp    time.Time `json:"timestamp"`
}

func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
