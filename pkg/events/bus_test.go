package events

import (
	"sync"
	"testing"

	"github.com/swampgate/swampmud/pkg/mud"
)

// mockSubscriber implements Subscriber for testing.
type mockSubscriber struct {
	mu       sync.Mutex
	events   []Event
	isClosed bool
}

func (m *mockSubscriber) Receive(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockSubscriber) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isClosed
}

func (m *mockSubscriber) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Event, len(m.events))
	copy(cp, m.events)
	return cp
}

func TestBusEmitToChar(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}

	char := mud.ID(1)
	bus.Subscribe(char, sub)

	ev := Event{
		Type: EvSay,
		Char: char,
		Text: "Hello world",
	}
	bus.Emit(ev)

	events := sub.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Text != "Hello world" {
		t.Errorf("expected text %q, got %q", "Hello world", events[0].Text)
	}
	if events[0].Type != EvSay {
		t.Errorf("expected type EvSay, got %v", events[0].Type)
	}
}

func TestBusGlobalSubscriber(t *testing.T) {
	bus := NewBus()
	global := &mockSubscriber{}
	bus.SubscribeGlobal(global)

	bus.Emit(Event{Type: EvInfo, Char: mud.ID(5), Text: "test msg"})

	events := global.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 global event, got %d", len(events))
	}
	if events[0].Text != "test msg" {
		t.Errorf("expected text %q, got %q", "test msg", events[0].Text)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{}
	char := mud.ID(1)

	bus.Subscribe(char, sub)
	bus.Unsubscribe(char, sub)

	bus.Emit(Event{Type: EvText, Char: char, Text: "should not arrive"})

	if len(sub.Events()) != 0 {
		t.Error("expected no events after unsubscribe")
	}
}

func TestBusClosedSubscriberSkipped(t *testing.T) {
	bus := NewBus()
	sub := &mockSubscriber{isClosed: true}
	char := mud.ID(1)

	bus.Subscribe(char, sub)
	bus.Emit(Event{Type: EvText, Char: char, Text: "no delivery"})

	if len(sub.Events()) != 0 {
		t.Error("closed subscriber should not receive events")
	}
}

func TestBusEmitToMany(t *testing.T) {
	bus := NewBus()
	sub1 := &mockSubscriber{}
	sub2 := &mockSubscriber{}
	c1, c2 := mud.ID(1), mud.ID(2)
	bus.Subscribe(c1, sub1)
	bus.Subscribe(c2, sub2)

	bus.EmitToMany([]mud.ID{c1, c2}, Event{Type: EvSay, Text: "Hello room"})

	if len(sub1.Events()) != 1 {
		t.Errorf("char 1: expected 1 event, got %d", len(sub1.Events()))
	}
	if len(sub2.Events()) != 1 {
		t.Errorf("char 2: expected 1 event, got %d", len(sub2.Events()))
	}
	if got := sub1.Events()[0].Char; got != c1 {
		t.Errorf("delivered event should be addressed, Char = %d", got)
	}
}

func TestBusCleanup(t *testing.T) {
	bus := NewBus()
	active := &mockSubscriber{}
	closed := &mockSubscriber{isClosed: true}
	char := mud.ID(1)

	bus.Subscribe(char, active)
	bus.Subscribe(char, closed)
	bus.SubscribeGlobal(&mockSubscriber{isClosed: true})

	bus.Cleanup()

	if bus.CharSubscribers(char) != 1 {
		t.Errorf("expected 1 active subscriber, got %d", bus.CharSubscribers(char))
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		t    EventType
		want string
	}{
		{EvText, "text"},
		{EvSay, "say"},
		{EvMove, "move"},
		{EvDeath, "death"},
		{EventType(999), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
