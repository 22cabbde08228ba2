package inventory

import "strings"

// Slot identifies an equipment position ("Right hand", "Torso").
// Construction normalizes case so "right hand" and "Right Hand" are
// the same slot.
type Slot string

// NewSlot returns the normalized slot for name.
func NewSlot(name string) Slot {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ""
	}
	return Slot(strings.ToUpper(name[:1]) + name[1:])
}

// NoSlot marks an item that cannot be equipped anywhere.
const NoSlot Slot = ""

func (s Slot) String() string { return string(s) }
