// Package inventory implements counted stacks of structurally-identical
// items and the bucketed container that holds them. Items of the same
// type collapse into one stack only when their serialized state is
// equal, so a charged wand and a drained wand of the same type occupy
// separate stacks.
package inventory

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrItemNotFound is returned when no stack matches the item being removed.
	ErrItemNotFound = errors.New("inventory: item not found")
	// ErrInsufficient is returned when a removal asks for more than a stack holds.
	ErrInsufficient = errors.New("inventory: not enough items in stack")
)

// Data is the opaque serialized state of an item. A nil Data and an
// empty Data mean the same thing and compare equal everywhere.
type Data map[string]any

// ItemType describes an item class: it can name itself, report its
// ancestry, and reconstruct an item from serialized state.
type ItemType interface {
	TypeName() string
	// IsSubtypeOf reports whether this type is other or derives from it.
	IsSubtypeOf(other ItemType) bool
	// Make builds a fresh item carrying the given state.
	Make(data Data) (Item, error)
}

// Item is anything an Inventory can store.
type Item interface {
	Name() string
	Class() ItemType
	Save() Data
}

// Stack is a counted pile of identical items: same type, same state.
type Stack struct {
	typ    ItemType
	amount int
	data   Data // nil when the items carry no state
}

// NewStack creates a stack of amount items of the given type and state.
func NewStack(typ ItemType, amount int, data Data) *Stack {
	if len(data) == 0 {
		data = nil
	}
	return &Stack{typ: typ, amount: amount, data: data}
}

// StackOf creates a stack from a live item by serializing its state.
func StackOf(it Item, amount int) *Stack {
	return NewStack(it.Class(), amount, it.Save())
}

// Type returns the stack's item type.
func (s *Stack) Type() ItemType { return s.typ }

// Amount returns how many items the stack holds.
func (s *Stack) Amount() int { return s.amount }

// Data returns a copy of the stack's serialized state, nil if empty.
func (s *Stack) Data() Data {
	if s.data == nil {
		return nil
	}
	cp := make(Data, len(s.data))
	for k, v := range s.data {
		cp[k] = v
	}
	return cp
}

// Item reconstructs a fresh item from the stack's state. The returned
// item is never the stored state itself, so callers cannot mutate the
// stack through it.
func (s *Stack) Item() (Item, error) {
	it, err := s.typ.Make(s.Data())
	if err != nil {
		return nil, fmt.Errorf("inventory: rebuild %s: %w", s.typ.TypeName(), err)
	}
	return it, nil
}

// Query describes a partial match against a stack.
type Query struct {
	// Type, if set, requires the stack's type to be a subtype of it.
	Type ItemType
	// Exact, if non-nil, requires the stack's data to equal it exactly.
	// An empty (but non-nil) Exact matches only stacks with no data.
	Exact Data
	// Optional keys that are present in the stack's data must agree;
	// keys the stack lacks are ignored.
	Optional Data
	// MustHave keys must all be present in the stack's data and agree.
	MustHave Data
}

// Matches reports whether the stack satisfies every constraint in q.
// A zero Query matches everything.
func (s *Stack) Matches(q Query) bool {
	if q.Type != nil && !s.typ.IsSubtypeOf(q.Type) {
		return false
	}
	if q.Exact != nil && !dataEqual(s.data, q.Exact) {
		return false
	}
	for k, want := range q.Optional {
		if got, ok := s.data[k]; ok && !valueEqual(got, want) {
			return false
		}
	}
	if len(q.MustHave) > 0 {
		if s.data == nil {
			return false
		}
		for k, want := range q.MustHave {
			got, ok := s.data[k]
			if !ok || !valueEqual(got, want) {
				return false
			}
		}
	}
	return true
}

// sameKind reports whether the stack stores exactly this type and state.
// Used for merging on add and lookup on remove, where subtype matching
// would wrongly collapse distinct classes into one stack.
func (s *Stack) sameKind(typ ItemType, data Data) bool {
	return s.typ == typ && dataEqual(s.data, data)
}

// dataEqual compares serialized state, treating nil and empty as equal.
func dataEqual(a, b Data) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

// valueEqual compares two opaque state values. State comes from YAML
// and gob decoding, so nested maps and slices must compare by content.
func valueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// StackRecord is the save form of a stack.
type StackRecord struct {
	ItemType string `yaml:"item_type" json:"item_type"`
	Amount   int    `yaml:"amount" json:"amount"`
	Data     Data   `yaml:"data,omitempty" json:"data,omitempty"`
}

// Save returns the stack's wire form.
func (s *Stack) Save() StackRecord {
	return StackRecord{
		ItemType: s.typ.TypeName(),
		Amount:   s.amount,
		Data:     s.Data(),
	}
}
