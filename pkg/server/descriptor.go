package server

import (
	"net"
	"sync"
	"time"

	"github.com/swampgate/swampmud/pkg/events"
	"github.com/swampgate/swampmud/pkg/mud"
)

// TransportType identifies how a descriptor is connected.
type TransportType int

const (
	TransportTCP TransportType = iota
	TransportWebSocket
)

// ConnState is the login state of a descriptor.
type ConnState int

const (
	ConnLogin   ConnState = iota // Awaiting connect/create
	ConnPlaying                  // Bound to a character
)

// Descriptor represents one client connection. It implements
// events.Subscriber so bus events reach the client directly.
type Descriptor struct {
	ID        uint64
	Conn      net.Conn
	State     ConnState
	Char      mud.ID // Bound character, 0 while logging in
	CharName  string
	Addr      string
	ConnTime  time.Time
	LastCmd   time.Time
	Retries   int
	Transport TransportType
	CmdCount  int

	// SendFunc and ReceiveFunc, when set, override the raw TCP path.
	// The WebSocket transport uses them to emit JSON frames.
	SendFunc    func(msg string)
	ReceiveFunc func(ev events.Event)

	mu     sync.Mutex
	closed bool
}

// Send writes a line of text to the client, appending CRLF for raw
// telnet-style connections.
func (d *Descriptor) Send(msg string) {
	if d.SendFunc != nil {
		d.SendFunc(msg)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.Conn == nil {
		return
	}
	d.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	d.Conn.Write([]byte(msg + "\r\n"))
}

// Receive implements events.Subscriber. Text-bearing events go out as
// plain lines; transports with structured encodings override ReceiveFunc.
func (d *Descriptor) Receive(ev events.Event) {
	if d.ReceiveFunc != nil {
		d.ReceiveFunc(ev)
		return
	}
	if ev.Text != "" {
		d.Send(ev.Text)
	}
}

// Closed implements events.Subscriber.
func (d *Descriptor) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// MarkClosed flags the descriptor so the bus stops delivering to it.
func (d *Descriptor) MarkClosed() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// ConnManager tracks all live descriptors and their character bindings.
// A character may have several descriptors (multiple clients logged in
// to the same player).
type ConnManager struct {
	mu     sync.Mutex
	nextID uint64
	all    map[uint64]*Descriptor
	byChar map[mud.ID][]*Descriptor
	bus    *events.Bus
}

// NewConnManager creates a connection manager that subscribes logged-in
// descriptors to the given event bus.
func NewConnManager(bus *events.Bus) *ConnManager {
	return &ConnManager{
		all:    make(map[uint64]*Descriptor),
		byChar: make(map[mud.ID][]*Descriptor),
		bus:    bus,
	}
}

// NextID allocates a descriptor ID.
func (cm *ConnManager) NextID() uint64 {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.nextID++
	return cm.nextID
}

// Add registers a new descriptor.
func (cm *ConnManager) Add(d *Descriptor) {
	cm.mu.Lock()
	cm.all[d.ID] = d
	cm.mu.Unlock()
}

// Login binds a descriptor to a character and subscribes it to the bus.
func (cm *ConnManager) Login(d *Descriptor, char mud.ID, name string) {
	cm.mu.Lock()
	d.State = ConnPlaying
	d.Char = char
	d.CharName = name
	cm.byChar[char] = append(cm.byChar[char], d)
	cm.mu.Unlock()
	cm.bus.Subscribe(char, d)
}

// Remove drops a descriptor and unsubscribes it from the bus.
func (cm *ConnManager) Remove(d *Descriptor) {
	cm.mu.Lock()
	delete(cm.all, d.ID)
	if d.Char != 0 {
		descs := cm.byChar[d.Char]
		for i, dd := range descs {
			if dd == d {
				cm.byChar[d.Char] = append(descs[:i], descs[i+1:]...)
				break
			}
		}
		if len(cm.byChar[d.Char]) == 0 {
			delete(cm.byChar, d.Char)
		}
	}
	cm.mu.Unlock()
	if d.Char != 0 {
		cm.bus.Unsubscribe(d.Char, d)
	}
	d.MarkClosed()
}

// ByChar returns the descriptors bound to a character.
func (cm *ConnManager) ByChar(char mud.ID) []*Descriptor {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	descs := cm.byChar[char]
	out := make([]*Descriptor, len(descs))
	copy(out, descs)
	return out
}

// IsConnected reports whether a character has at least one descriptor.
func (cm *ConnManager) IsConnected(char mud.ID) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.byChar[char]) > 0
}

// ConnectedChars returns the IDs of all characters with live descriptors.
func (cm *ConnManager) ConnectedChars() []mud.ID {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	chars := make([]mud.ID, 0, len(cm.byChar))
	for id := range cm.byChar {
		chars = append(chars, id)
	}
	return chars
}

// Count returns the number of live descriptors.
func (cm *ConnManager) Count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.all)
}
