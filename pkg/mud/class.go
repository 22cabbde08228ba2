package mud

import (
	"fmt"
	"sort"

	"github.com/swampgate/swampmud/pkg/inventory"
)

// Class is the action table shared by every instance of a character,
// item, or entity type. Commands are declared on a class with Declare
// before Finalize seals it; after that the table is immutable and safe
// to read from anywhere.
type Class struct {
	name    string
	label   string // provenance stamped onto declared commands
	parents []*Class
	local   map[string]*Command
	all     map[string]*Command
	sealed  bool

	// equipSlots is the slot list for character classes; nil means
	// "inherit from the nearest ancestor that declares one".
	equipSlots []inventory.Slot
}

// NewClass creates a class deriving from the given parents. The first
// parent is the most specific, mirroring declaration order.
func NewClass(name string, parents ...*Class) *Class {
	return &Class{
		name:    name,
		label:   name + " Commands",
		parents: parents,
		local:   make(map[string]*Command),
	}
}

// Name returns the class's display name.
func (c *Class) Name() string { return c.name }

func (c *Class) String() string { return c.name }

// CommandLabel returns the provenance label stamped on declared commands.
func (c *Class) CommandLabel() string { return c.label }

// SetCommandLabel overrides the label shown in help menus for commands
// declared on this class. Must be called before Declare.
func (c *Class) SetCommandLabel(label string) *Class {
	c.label = label
	return c
}

// Declare registers cmd as a local command of this class under its
// display name, stamping the class's label as its provenance.
func (c *Class) Declare(cmd *Command) *Class {
	if c.sealed {
		panic(fmt.Sprintf("mud: class %s: Declare after Finalize", c.name))
	}
	cmd.label = c.label
	c.local[cmd.Name()] = cmd
	return c
}

// Finalize builds the merged action table from the linearized ancestry
// and seals the class. Finalizing twice is harmless.
func (c *Class) Finalize() *Class {
	if c.sealed {
		return c
	}
	c.all = make(map[string]*Command)
	for _, ancestor := range Linearize(c) {
		for name, cmd := range ancestor.local {
			c.all[name] = cmd
		}
	}
	// A class's own declarations always win, even against a
	// same-named entry inherited from a more specific sibling.
	for name, cmd := range c.local {
		c.all[name] = cmd
	}
	c.sealed = true
	return c
}

// Commands returns the full merged action table. The map is shared and
// read-only.
func (c *Class) Commands() map[string]*Command {
	if !c.sealed {
		panic(fmt.Sprintf("mud: class %s: Commands before Finalize", c.name))
	}
	return c.all
}

// LocalCommands returns the commands declared directly on this class.
func (c *Class) LocalCommands() map[string]*Command { return c.local }

// CommandNames returns the merged table's names in sorted order.
func (c *Class) CommandNames() []string {
	names := make([]string, 0, len(c.Commands()))
	for n := range c.all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetEquipSlots declares the equipment slots instances of this class
// carry, overriding anything inherited.
func (c *Class) SetEquipSlots(names ...string) *Class {
	c.equipSlots = make([]inventory.Slot, 0, len(names))
	for _, n := range names {
		c.equipSlots = append(c.equipSlots, inventory.NewSlot(n))
	}
	return c
}

// EquipSlots returns the slot list from the most specific class in the
// ancestry that declares one.
func (c *Class) EquipSlots() []inventory.Slot {
	lin := Linearize(c)
	for i := len(lin) - 1; i >= 0; i-- {
		if lin[i].equipSlots != nil {
			return lin[i].equipSlots
		}
	}
	return nil
}

// IsA reports whether c is other or derives from it.
func (c *Class) IsA(other *Class) bool {
	for _, ancestor := range Linearize(c) {
		if ancestor == other {
			return true
		}
	}
	return false
}

// Linearize returns c's ancestry ordered most general first, ending
// with c itself. Parents are visited in reverse declaration order and
// duplicates keep their earliest position, so folding the result with
// later-entries-win gives each class's commands to its most specific
// descendant: in a diamond D(B, C) the order is A, C, B, D and B's
// declarations beat C's.
func Linearize(c *Class) []*Class {
	var order []*Class
	seen := make(map[*Class]bool)
	var visit func(cls *Class)
	visit = func(cls *Class) {
		if seen[cls] {
			return
		}
		seen[cls] = true
		for i := len(cls.parents) - 1; i >= 0; i-- {
			visit(cls.parents[i])
		}
		order = append(order, cls)
	}
	visit(c)
	return order
}
