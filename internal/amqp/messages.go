package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

const (
	KindNotificationCreated EventKind = "notification.created"
	KindTransactionRecorded EventKind = "transaction.recorded"
)

func (k EventKind) Valid() bool {
	return k == KindNotificationCreated || k == KindTransactionRecorded
}

// Event is a lightweight pointer to a stored record. The worker loads the
// record itself, so events never carry amounts or descriptions.
type Event struct {
	Kind      EventKind `json:"kind"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(kind EventKind, id, userID string, now time.Time) Event {
	return Event{Kind: kind, ID: id, UserID: userID, Timestamp: now.UTC()}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if !e.Kind.Valid() {
		return Event{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.ID == "" {
		return Event{}, fmt.Errorf("event %s without id", e.Kind)
	}
	return e, nil
}
