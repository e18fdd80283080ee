package domain

import (
	"encoding/json"
	"time"
)

// Event is an outbox record. It is written in the same transaction as the
// state change it describes and published later.
type Event struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
}
