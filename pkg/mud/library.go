package mud

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/swampgate/swampmud/pkg/inventory"
)

// Library is the registry of everything content code defines: the
// character, item, and entity classes the world loader resolves names
// against. It replaces runtime introspection with explicit
// registration at startup.
type Library struct {
	base          *Class
	charClasses   map[string]*Class
	itemClasses   map[string]*ItemClass
	entityClasses map[string]*EntityClass
	frequencies   map[string]float64
}

// NewLibrary creates a library seeded with the base character class.
func NewLibrary() *Library {
	l := &Library{
		charClasses:   make(map[string]*Class),
		itemClasses:   make(map[string]*ItemClass),
		entityClasses: make(map[string]*EntityClass),
		frequencies:   make(map[string]float64),
	}
	l.base = BaseCharacterClass()
	l.charClasses[l.base.Name()] = l.base
	l.frequencies[l.base.Name()] = 1
	return l
}

// BaseClass returns the root character class.
func (l *Library) BaseClass() *Class { return l.base }

// RegisterCharClass adds a character class with a spawn frequency
// weight. The class must already be finalized.
func (l *Library) RegisterCharClass(c *Class, frequency float64) error {
	if !c.sealed {
		return fmt.Errorf("mud: library: class %s registered before Finalize", c.Name())
	}
	if _, dup := l.charClasses[c.Name()]; dup {
		return fmt.Errorf("mud: library: duplicate character class %q", c.Name())
	}
	l.charClasses[c.Name()] = c
	l.frequencies[c.Name()] = frequency
	return nil
}

// RegisterItemClass adds an item class.
func (l *Library) RegisterItemClass(ic *ItemClass) error {
	if !ic.sealed {
		return fmt.Errorf("mud: library: item class %s registered before Finalize", ic.Name())
	}
	if _, dup := l.itemClasses[ic.Name()]; dup {
		return fmt.Errorf("mud: library: duplicate item class %q", ic.Name())
	}
	l.itemClasses[ic.Name()] = ic
	return nil
}

// RegisterEntityClass adds an entity class.
func (l *Library) RegisterEntityClass(ec *EntityClass) error {
	if !ec.sealed {
		return fmt.Errorf("mud: library: entity class %s registered before Finalize", ec.Name())
	}
	if _, dup := l.entityClasses[ec.Name()]; dup {
		return fmt.Errorf("mud: library: duplicate entity class %q", ec.Name())
	}
	l.entityClasses[ec.Name()] = ec
	return nil
}

// CharClass looks up a character class by name.
func (l *Library) CharClass(name string) (*Class, bool) {
	c, ok := l.charClasses[name]
	return c, ok
}

// ItemClassByName looks up an item class by name.
func (l *Library) ItemClassByName(name string) (*ItemClass, bool) {
	ic, ok := l.itemClasses[name]
	return ic, ok
}

// EntityClassByName looks up an entity class by name.
func (l *Library) EntityClassByName(name string) (*EntityClass, bool) {
	ec, ok := l.entityClasses[name]
	return ec, ok
}

// ItemType resolves an item class as an inventory.ItemType, the hook
// the persistence layer uses to rebuild stacks from records.
func (l *Library) ItemType(name string) (inventory.ItemType, bool) {
	ic, ok := l.itemClasses[name]
	if !ok {
		return nil, false
	}
	return ic, true
}

// AnyClass resolves a name against every class namespace, for filter
// wire forms that do not say which kind they mean.
func (l *Library) AnyClass(name string) (*Class, bool) {
	if c, ok := l.charClasses[name]; ok {
		return c, true
	}
	if ic, ok := l.itemClasses[name]; ok {
		return ic.Class, true
	}
	if ec, ok := l.entityClasses[name]; ok {
		return ec.Class, true
	}
	return nil, false
}

// PickCharClass draws a character class weighted by spawn frequency.
func (l *Library) PickCharClass(rng *rand.Rand) *Class {
	names := make([]string, 0, len(l.charClasses))
	total := 0.0
	for name := range l.charClasses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		total += l.frequencies[name]
	}
	if total <= 0 {
		return l.base
	}
	roll := rng.Float64() * total
	for _, name := range names {
		roll -= l.frequencies[name]
		if roll < 0 {
			return l.charClasses[name]
		}
	}
	return l.base
}
