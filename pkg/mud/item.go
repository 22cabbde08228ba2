package mud

import (
	"github.com/swampgate/swampmud/pkg/inventory"
)

// ItemClass defines a type of item: its action table, the equipment
// slot it occupies (if any), and lifecycle hooks. It implements
// inventory.ItemType so stacks can reconstruct items from saved state.
type ItemClass struct {
	*Class

	// Target is the equipment slot this item occupies. NoSlot means
	// the item cannot be equipped.
	Target inventory.Slot

	// Lifecycle hooks, all optional.
	OnEquip   func(it *Item, ch *Character)
	OnUnequip func(it *Item, ch *Character)
	OnUse     func(it *Item, ch *Character, argv []string)
}

// NewItemClass creates an item class. Commands declared on it are
// labeled "Equipped" in help menus; they only reach a character while
// the item sits in a slot.
func NewItemClass(name string, target inventory.Slot, parents ...*ItemClass) *ItemClass {
	bases := make([]*Class, len(parents))
	for i, p := range parents {
		bases[i] = p.Class
	}
	c := NewClass(name, bases...).SetCommandLabel("Equipped")
	return &ItemClass{Class: c, Target: target}
}

// TypeName implements inventory.ItemType.
func (ic *ItemClass) TypeName() string { return ic.Name() }

// IsSubtypeOf implements inventory.ItemType over the class ancestry.
func (ic *ItemClass) IsSubtypeOf(other inventory.ItemType) bool {
	oc, ok := other.(*ItemClass)
	if !ok {
		return false
	}
	return ic.Class.IsA(oc.Class)
}

// Make implements inventory.ItemType: it builds a fresh item of this
// class carrying the given state.
func (ic *ItemClass) Make(data inventory.Data) (inventory.Item, error) {
	return NewItem(ic, data), nil
}

// Item is one in-world item instance. Its serialized state
// participates in stack equality, so two items of the same class with
// different state never merge.
type Item struct {
	class *ItemClass
	state inventory.Data
}

// NewItem creates an item of the given class and state.
func NewItem(class *ItemClass, state inventory.Data) *Item {
	if len(state) == 0 {
		state = nil
	}
	return &Item{class: class, state: state}
}

// Name returns the item's display name (its class name).
func (it *Item) Name() string { return it.class.Name() }

func (it *Item) String() string { return it.Name() }

// Class implements inventory.Item.
func (it *Item) Class() inventory.ItemType { return it.class }

// ItemClass returns the item's concrete class.
func (it *Item) ItemClass() *ItemClass { return it.class }

// Target returns the slot this item equips to, NoSlot if none.
func (it *Item) Target() inventory.Slot { return it.class.Target }

// Save implements inventory.Item; the returned map is a copy.
func (it *Item) Save() inventory.Data {
	if it.state == nil {
		return nil
	}
	cp := make(inventory.Data, len(it.state))
	for k, v := range it.state {
		cp[k] = v
	}
	return cp
}

// Field returns one state value.
func (it *Item) Field(key string) (any, bool) {
	v, ok := it.state[key]
	return v, ok
}

// SetField updates one state value.
func (it *Item) SetField(key string, val any) {
	if it.state == nil {
		it.state = inventory.Data{}
	}
	it.state[key] = val
}

// Source interface, for command registration while equipped.

// SourceName implements Source; items disambiguate colliding verbs
// with their display name.
func (it *Item) SourceName() string { return it.Name() }

// ActionTable implements Source.
func (it *Item) ActionTable() *Class { return it.class.Class }

// colocated returns the character's other equipped items, the sources
// an equipped item can collide with.
func (it *Item) colocated(ch *Character) []Source {
	var others []Source
	for _, slot := range ch.equipSlots() {
		eq := ch.equipment[slot]
		if eq != nil && eq.item != it {
			others = append(others, eq.item)
		}
	}
	return others
}
