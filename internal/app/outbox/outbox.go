package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is a domain occurrence worth publishing outside the process.
type Event interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecord is the persisted form of an event awaiting publication.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox stores event records for asynchronous delivery.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

// Encoder turns events into records.
type Encoder interface {
	Encode(ev Event) (EventRecord, error)
}

// JSONEncoder marshals the event value itself as the record payload.
type JSONEncoder struct {
	IDGenerator func() string
}

func (e JSONEncoder) Encode(ev Event) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = defaultIDGenerator
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// Record encodes and stores a single event. A nil outbox is a no-op so the
// commit path works without messaging infrastructure.
func Record(ctx context.Context, box Outbox, encoder Encoder, ev Event) error {
	if box == nil || ev == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEncoder{}
	}
	rec, err := encoder.Encode(ev)
	if err != nil {
		return err
	}
	return box.Add(ctx, rec)
}

func defaultIDGenerator() string {
	return fmt.Sprintf("evt-%d", time.Now().UnixNano())
}
