// Package shadow provides a stack-per-key table in which setting an
// existing key shadows the previous value instead of replacing it.
// Deleting a key pops the most recent value, restoring whatever it
// shadowed. Values can also be removed by equality regardless of their
// position in the stack, which is what makes out-of-order teardown
// (unequip an item while a later one is still equipped) possible.
package shadow

import "errors"

var (
	// ErrNotFound is returned when a key has no stack at all.
	ErrNotFound = errors.New("shadow: key not found")
	// ErrValueNotFound is returned by RemoveValue when the key exists
	// but none of its stacked values compare equal.
	ErrValueNotFound = errors.New("shadow: value not stored under key")
)

// Table maps keys to stacks of values. Get always yields the top of a
// stack. A key with an empty stack never exists: the last pop deletes
// the key.
//
// Table is not internally synchronized; callers serialize access.
type Table[K comparable, V any] struct {
	stacks map[K][]V
	eq     func(a, b V) bool
}

// New creates an empty Table using eq to compare values in RemoveValue.
func New[K comparable, V any](eq func(a, b V) bool) *Table[K, V] {
	return &Table[K, V]{
		stacks: make(map[K][]V),
		eq:     eq,
	}
}

// Set pushes val onto the stack for key, shadowing any current value.
func (t *Table[K, V]) Set(key K, val V) {
	t.stacks[key] = append(t.stacks[key], val)
}

// Get returns the most recent value for key.
func (t *Table[K, V]) Get(key K) (V, bool) {
	stack, ok := t.stacks[key]
	if !ok {
		var zero V
		return zero, false
	}
	return stack[len(stack)-1], true
}

// Contains reports whether key currently has any value.
func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.stacks[key]
	return ok
}

// Delete pops the most recent value for key. If that empties the
// stack, the key is removed entirely.
func (t *Table[K, V]) Delete(key K) error {
	stack, ok := t.stacks[key]
	if !ok {
		return ErrNotFound
	}
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(t.stacks, key)
	} else {
		t.stacks[key] = stack
	}
	return nil
}

// RemoveValue deletes the first value equal to val from key's stack,
// wherever it sits. Commands are granted in a deterministic order but
// revoked in arbitrary order, so plain LIFO deletion is not enough.
func (t *Table[K, V]) RemoveValue(key K, val V) error {
	stack, ok := t.stacks[key]
	if !ok {
		return ErrNotFound
	}
	for i, v := range stack {
		if t.eq(v, val) {
			stack = append(stack[:i], stack[i+1:]...)
			if len(stack) == 0 {
				delete(t.stacks, key)
			} else {
				t.stacks[key] = stack
			}
			return nil
		}
	}
	return ErrValueNotFound
}

// Len returns the number of live keys.
func (t *Table[K, V]) Len() int {
	return len(t.stacks)
}

// Depth returns how many values are stacked under key.
func (t *Table[K, V]) Depth(key K) int {
	return len(t.stacks[key])
}

// Keys returns the live keys in unspecified order.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, len(t.stacks))
	for k := range t.stacks {
		keys = append(keys, k)
	}
	return keys
}

// Items calls fn for each key with its currently visible value.
func (t *Table[K, V]) Items(fn func(key K, val V)) {
	for k, stack := range t.stacks {
		fn(k, stack[len(stack)-1])
	}
}
