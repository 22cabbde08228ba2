package events

import "github.com/swampgate/swampmud/pkg/mud"

// EventType classifies events for transport-specific encoding.
type EventType int

const (
	EvText       EventType = iota // Raw text (universal fallback)
	EvSay                         // Speech
	EvMove                        // Arrive/depart
	EvSpawn                       // Character spawned
	EvDeath                       // Character died
	EvConnect                     // Client connected
	EvDisconnect                  // Client disconnected
	EvPrompt                      // Prompt/status update
	EvInfo                        // Server notice
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvText:
		return "text"
	case EvSay:
		return "say"
	case EvMove:
		return "move"
	case EvSpawn:
		return "spawn"
	case EvDeath:
		return "death"
	case EvConnect:
		return "connect"
	case EvDisconnect:
		return "disconnect"
	case EvPrompt:
		return "prompt"
	case EvInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Event is a structured game event that flows through the event bus.
// Transports decide how to encode each event: telnet uses Text,
// WebSocket clients get the full structured data.
type Event struct {
	Type EventType
	Char mud.ID         // Recipient (0 for broadcast)
	Text string         // Pre-formatted text (telnet uses this)
	Data map[string]any // Structured data for JSON clients
}
