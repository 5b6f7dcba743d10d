package outbox

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatPayloadIsCloudEvent(t *testing.T) {
	w := &Worker{Source: "tripdesk"}
	doc := &EventDocument{
		ID:         "evt-1",
		Name:       "hotel.selection.committed",
		Payload:    []byte(`{"hotelCode":"H1"}`),
		OccurredAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Aggregate:  "itin-1",
		Headers:    map[string]string{"x-tenant": "t1"},
	}

	payload, headers, err := w.formatPayload(doc)
	if err != nil {
		t.Fatalf("formatPayload: %v", err)
	}
	if headers["content-type"] != "application/cloudevents+json" {
		t.Fatalf("content-type = %q", headers["content-type"])
	}
	if headers["x-tenant"] != "t1" {
		t.Fatal("record headers not forwarded")
	}

	var evt map[string]any
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if evt["specversion"] != "1.0" {
		t.Fatalf("specversion = %v", evt["specversion"])
	}
	if evt["type"] != "hotel.selection.committed.v1" {
		t.Fatalf("type = %v", evt["type"])
	}
	if evt["source"] != "tripdesk" {
		t.Fatalf("source = %v", evt["source"])
	}
	data, ok := evt["data"].(map[string]any)
	if !ok || data["hotelCode"] != "H1" {
		t.Fatalf("data = %v", evt["data"])
	}
}

func TestFormatPayloadRejectsBrokenJSON(t *testing.T) {
	w := &Worker{}
	doc := &EventDocument{ID: "evt-2", Name: "hotel.selection.committed", Payload: []byte("{")}
	if _, _, err := w.formatPayload(doc); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	if got := w.topicFor("hotel.selection.committed"); got != "hotel.events.v1" {
		t.Fatalf("topic = %q", got)
	}
	w.TopicPrefix = "stage."
	if got := w.topicFor("hotel.selection.committed"); got != "stage.hotel.events.v1" {
		t.Fatalf("prefixed topic = %q", got)
	}
}

func TestNextRetryClampsToLastBackoff(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}
	before := time.Now().UTC()
	next := w.nextRetry(7)
	if next.Sub(before) < 50*time.Second {
		t.Fatalf("next retry %v too soon, want about a minute out", next.Sub(before))
	}
}
