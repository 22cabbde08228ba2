package server

import (
	"testing"
	"time"

	"github.com/swampgate/swampmud/pkg/events"
	"github.com/swampgate/swampmud/pkg/mud"
)

func newTestDescriptor(cm *ConnManager, sent *[]string) *Descriptor {
	d := &Descriptor{
		ID:       cm.NextID(),
		State:    ConnLogin,
		ConnTime: time.Now(),
		LastCmd:  time.Now(),
	}
	d.SendFunc = func(msg string) { *sent = append(*sent, msg) }
	cm.Add(d)
	return d
}

func TestLoginRoutesBusEvents(t *testing.T) {
	bus := events.NewBus()
	cm := NewConnManager(bus)

	var sent []string
	d := newTestDescriptor(cm, &sent)
	char := mud.ID(42)

	// Before login nothing is delivered.
	bus.EmitToChar(char, events.Event{Type: events.EvText, Char: char, Text: "early"})
	if len(sent) != 0 {
		t.Fatalf("got %v before login", sent)
	}

	cm.Login(d, char, "Fern")
	if d.State != ConnPlaying || d.CharName != "Fern" {
		t.Errorf("descriptor = %+v after login", d)
	}
	bus.EmitToChar(char, events.Event{Type: events.EvText, Char: char, Text: "hello"})
	if len(sent) != 1 || sent[0] != "hello" {
		t.Errorf("sent = %v", sent)
	}
	if !cm.IsConnected(char) {
		t.Error("IsConnected = false")
	}

	cm.Remove(d)
	bus.EmitToChar(char, events.Event{Type: events.EvText, Char: char, Text: "late"})
	if len(sent) != 1 {
		t.Errorf("event delivered after remove: %v", sent)
	}
	if cm.IsConnected(char) || cm.Count() != 0 {
		t.Error("descriptor still tracked after remove")
	}
	if !d.Closed() {
		t.Error("removed descriptor should report closed")
	}
}

func TestMultipleDescriptorsPerCharacter(t *testing.T) {
	bus := events.NewBus()
	cm := NewConnManager(bus)
	char := mud.ID(7)

	var sentA, sentB []string
	a := newTestDescriptor(cm, &sentA)
	b := newTestDescriptor(cm, &sentB)
	cm.Login(a, char, "Fern")
	cm.Login(b, char, "Fern")

	bus.EmitToChar(char, events.Event{Type: events.EvText, Char: char, Text: "both"})
	if len(sentA) != 1 || len(sentB) != 1 {
		t.Errorf("sentA = %v, sentB = %v", sentA, sentB)
	}

	cm.Remove(a)
	if !cm.IsConnected(char) {
		t.Error("character should stay connected while one descriptor remains")
	}
	bus.EmitToChar(char, events.Event{Type: events.EvText, Char: char, Text: "only b"})
	if len(sentA) != 1 || len(sentB) != 2 {
		t.Errorf("sentA = %v, sentB = %v", sentA, sentB)
	}

	cm.Remove(b)
	if cm.IsConnected(char) {
		t.Error("character still connected after last descriptor removed")
	}
}

func TestReceiveSkipsEmptyText(t *testing.T) {
	var sent []string
	d := &Descriptor{}
	d.SendFunc = func(msg string) { sent = append(sent, msg) }

	d.Receive(events.Event{Type: events.EvConnect, Data: map[string]any{"name": "Fern"}})
	if len(sent) != 0 {
		t.Errorf("text-less event produced output: %v", sent)
	}
	d.Receive(events.Event{Type: events.EvText, Text: "hi"})
	if len(sent) != 1 {
		t.Errorf("sent = %v", sent)
	}
}
