package inventory

import (
	"fmt"
	"sort"
	"strings"
)

// Inventory stores item stacks in buckets keyed by the item's
// lower-cased display name. Within a bucket no two stacks share the
// same (type, data) pair, and a bucket is deleted the moment its last
// stack empties.
type Inventory struct {
	buckets map[string][]*Stack
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{buckets: make(map[string][]*Stack)}
}

// Add inserts amount copies of item, merging into an existing stack
// with identical type and state when one exists.
func (inv *Inventory) Add(it Item, amount int) error {
	if amount < 1 {
		return fmt.Errorf("inventory: add %s: amount must be positive, got %d", it.Name(), amount)
	}
	name := strings.ToLower(it.Name())
	typ := it.Class()
	data := it.Save()
	if len(data) == 0 {
		data = nil
	}
	for _, stack := range inv.buckets[name] {
		if stack.sameKind(typ, data) {
			stack.amount += amount
			return nil
		}
	}
	inv.buckets[name] = append(inv.buckets[name], NewStack(typ, amount, data))
	return nil
}

// Remove deletes amount copies of item from its stack. Removing more
// than the stack holds is a bookkeeping bug, not a user mistake, and
// comes back as ErrInsufficient with the inventory unchanged.
func (inv *Inventory) Remove(it Item, amount int) error {
	if amount < 1 {
		return fmt.Errorf("inventory: remove %s: amount must be positive, got %d", it.Name(), amount)
	}
	name := strings.ToLower(it.Name())
	bucket, ok := inv.buckets[name]
	if !ok {
		return fmt.Errorf("inventory: remove %s: %w", it.Name(), ErrItemNotFound)
	}
	typ := it.Class()
	data := it.Save()
	if len(data) == 0 {
		data = nil
	}
	for i, stack := range bucket {
		if !stack.sameKind(typ, data) {
			continue
		}
		if amount > stack.amount {
			return fmt.Errorf("inventory: remove %d of %s: only %d held: %w",
				amount, it.Name(), stack.amount, ErrInsufficient)
		}
		stack.amount -= amount
		if stack.amount == 0 {
			inv.buckets[name] = append(bucket[:i], bucket[i+1:]...)
			if len(inv.buckets[name]) == 0 {
				delete(inv.buckets, name)
			}
		}
		return nil
	}
	return fmt.Errorf("inventory: remove %s: %w", it.Name(), ErrItemNotFound)
}

// Match is one Find result: a freshly reconstructed item and the count
// of the stack it came from.
type Match struct {
	Item   Item
	Amount int
}

// Find returns a match for every stack satisfying q. If name is
// non-empty only that bucket is searched. Stacks whose state cannot be
// rebuilt into an item simply yield nothing.
func (inv *Inventory) Find(name string, q Query) []Match {
	var stacks []*Stack
	if name != "" {
		stacks = inv.buckets[strings.ToLower(name)]
	} else {
		for _, n := range inv.bucketNames() {
			stacks = append(stacks, inv.buckets[n]...)
		}
	}
	var found []Match
	for _, stack := range stacks {
		if !stack.Matches(q) {
			continue
		}
		it, err := stack.Item()
		if err != nil {
			// Malformed stack data is "no match", not a failure.
			continue
		}
		found = append(found, Match{Item: it, Amount: stack.amount})
	}
	return found
}

// Empty reports whether the inventory holds nothing at all.
func (inv *Inventory) Empty() bool {
	return len(inv.buckets) == 0
}

// Stacks returns every stack in name order. The stacks are live;
// callers must not mutate them.
func (inv *Inventory) Stacks() []*Stack {
	var all []*Stack
	for _, n := range inv.bucketNames() {
		all = append(all, inv.buckets[n]...)
	}
	return all
}

// Save returns the wire form of the whole inventory.
func (inv *Inventory) Save() []StackRecord {
	stacks := inv.Stacks()
	records := make([]StackRecord, len(stacks))
	for i, s := range stacks {
		records[i] = s.Save()
	}
	return records
}

// Load rebuilds an inventory from its wire form, resolving type names
// through resolve. An unknown type name fails the whole load.
func Load(records []StackRecord, resolve func(string) (ItemType, bool)) (*Inventory, error) {
	inv := New()
	for _, rec := range records {
		typ, ok := resolve(rec.ItemType)
		if !ok {
			return nil, fmt.Errorf("inventory: load: unknown item type %q", rec.ItemType)
		}
		if rec.Amount < 1 {
			return nil, fmt.Errorf("inventory: load %s: bad amount %d", rec.ItemType, rec.Amount)
		}
		it, err := typ.Make(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("inventory: load %s: %w", rec.ItemType, err)
		}
		if err := inv.Add(it, rec.Amount); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// Equal reports whether two inventories hold the same stacks,
// regardless of stack order within buckets.
func (inv *Inventory) Equal(other *Inventory) bool {
	if len(inv.buckets) != len(other.buckets) {
		return false
	}
	for name, bucket := range inv.buckets {
		otherBucket, ok := other.buckets[name]
		if !ok || len(bucket) != len(otherBucket) {
			return false
		}
		for _, stack := range bucket {
			matched := false
			for _, os := range otherBucket {
				if os.sameKind(stack.typ, stack.data) && os.amount == stack.amount {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

// Readable returns a player-facing listing, one "name: amount" per line.
func (inv *Inventory) Readable() string {
	var lines []string
	for _, stack := range inv.Stacks() {
		it, err := stack.Item()
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d", it.Name(), stack.amount))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func (inv *Inventory) bucketNames() []string {
	names := make([]string, 0, len(inv.buckets))
	for n := range inv.buckets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
