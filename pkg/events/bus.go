package events

import (
	"sync"

	"github.com/swampgate/swampmud/pkg/mud"
)

// Subscriber receives events from the bus.
type Subscriber interface {
	Receive(ev Event)
	Closed() bool
}

// Bus is a per-character pub/sub event bus with support for global
// subscribers. Game code emits structured events; each subscriber
// (a telnet descriptor, a websocket session, a logger) encodes them
// per-transport.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[mud.ID][]Subscriber
	global      []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[mud.ID][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific character's events.
func (b *Bus) Subscribe(char mud.ID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[char] = append(b.subscribers[char], sub)
}

// Unsubscribe removes a subscriber for a specific character.
func (b *Bus) Unsubscribe(char mud.ID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[char]
	for i, s := range subs {
		if s == sub {
			b.subscribers[char] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[char]) == 0 {
		delete(b.subscribers, char)
	}
}

// SubscribeGlobal registers a subscriber that receives all events.
func (b *Bus) SubscribeGlobal(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, sub)
}

// Emit sends an event to the character named in ev.Char and to all
// global subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.subscribers[ev.Char]
	globals := b.global
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
	for _, s := range globals {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
}

// EmitToChar sends an event to a specific character, overriding ev.Char.
func (b *Bus) EmitToChar(char mud.ID, ev Event) {
	ev.Char = char
	b.Emit(ev)
}

// EmitToMany delivers one event to each listed character. Global
// subscribers see the event once, unaddressed.
func (b *Bus) EmitToMany(chars []mud.ID, ev Event) {
	b.mu.RLock()
	globals := b.global
	b.mu.RUnlock()

	for _, id := range chars {
		perChar := ev
		perChar.Char = id

		b.mu.RLock()
		subs := b.subscribers[id]
		b.mu.RUnlock()

		for _, s := range subs {
			if !s.Closed() {
				s.Receive(perChar)
			}
		}
	}
	for _, s := range globals {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
}

// CharSubscribers returns the number of subscribers for a character.
func (b *Bus) CharSubscribers(char mud.ID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[char])
}

// Cleanup removes closed subscribers from all lists.
func (b *Bus) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for char, subs := range b.subscribers {
		var active []Subscriber
		for _, s := range subs {
			if !s.Closed() {
				active = append(active, s)
			}
		}
		if len(active) == 0 {
			delete(b.subscribers, char)
		} else {
			b.subscribers[char] = active
		}
	}

	var activeGlobal []Subscriber
	for _, s := range b.global {
		if !s.Closed() {
			activeGlobal = append(activeGlobal, s)
		}
	}
	b.global = activeGlobal
}
