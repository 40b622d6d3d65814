package queue

import (
	"testing"
)

func TestGameEvent_MapRoundTrip(t *testing.T) {
	event := NewJoinRequestedEvent("game-123", "tennis", "The Meadows", 2, 1, 42)

	values, err := event.ToMap()
	if err != nil {
		t.Fatalf("ToMap failed: %v", err)
	}

	// The type rides alongside the payload so consumers can route cheaply
	if values["type"] != EventJoinRequested {
		t.Errorf("type = %v, want %q", values["type"], EventJoinRequested)
	}

	parsed, err := ParseGameEvent(values)
	if err != nil {
		t.Fatalf("ParseGameEvent failed: %v", err)
	}

	if parsed.Type != event.Type {
		t.Errorf("Type = %q, want %q", parsed.Type, event.Type)
	}
	if parsed.GameID != "game-123" {
		t.Errorf("GameID = %q, want %q", parsed.GameID, "game-123")
	}
	if parsed.Sport != "tennis" || parsed.Location != "The Meadows" {
		t.Errorf("snapshot fields = %q/%q, want tennis/The Meadows", parsed.Sport, parsed.Location)
	}
	if parsed.ActorID != 2 || parsed.RecipientID != 1 {
		t.Errorf("actor/recipient = %d/%d, want 2/1", parsed.ActorID, parsed.RecipientID)
	}
	if parsed.JoinRequestID != 42 {
		t.Errorf("JoinRequestID = %d, want 42", parsed.JoinRequestID)
	}
}

func TestParseGameEvent_MissingData(t *testing.T) {
	_, err := ParseGameEvent(map[string]interface{}{"type": EventJoinRequested})
	if err == nil {
		t.Fatal("expected error for missing data field, got nil")
	}
}

func TestParseGameEvent_InvalidJSON(t *testing.T) {
	_, err := ParseGameEvent(map[string]interface{}{"data": "{not json"})
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestNewJoinDecidedEvent_TypeSelection(t *testing.T) {
	accepted := NewJoinDecidedEvent("g1", "tennis", "The Meadows", 1, 2, 42, true)
	if accepted.Type != EventJoinAccepted {
		t.Errorf("accepted event type = %q, want %q", accepted.Type, EventJoinAccepted)
	}

	rejected := NewJoinDecidedEvent("g1", "tennis", "The Meadows", 1, 2, 42, false)
	if rejected.Type != EventJoinRejected {
		t.Errorf("rejected event type = %q, want %q", rejected.Type, EventJoinRejected)
	}

	// Decisions flow host -> requester
	if accepted.ActorID != 1 || accepted.RecipientID != 2 {
		t.Errorf("actor/recipient = %d/%d, want 1/2", accepted.ActorID, accepted.RecipientID)
	}
}

func TestNewGameCancelledEvent_NoJoinRequestID(t *testing.T) {
	event := NewGameCancelledEvent("g1", "tennis", "The Meadows", 1, 2)
	if event.Type != EventGameCancelled {
		t.Errorf("type = %q, want %q", event.Type, EventGameCancelled)
	}
	if event.JoinRequestID != 0 {
		t.Errorf("JoinRequestID = %d, want 0 (cancellations cover the whole game)", event.JoinRequestID)
	}
}
