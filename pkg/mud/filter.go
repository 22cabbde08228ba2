package mud

import (
	"fmt"
	"sort"
)

// FilterMode selects whether a filter's class set grants or denies.
type FilterMode int

const (
	// Blacklist permits everyone except the tracked classes.
	Blacklist FilterMode = iota
	// Whitelist permits only the tracked classes.
	Whitelist
)

func (m FilterMode) String() string {
	if m == Whitelist {
		return "whitelist"
	}
	return "blacklist"
}

// ParseFilterMode recognizes the two wire-form mode names.
func ParseFilterMode(s string) (FilterMode, error) {
	switch s {
	case "whitelist":
		return Whitelist, nil
	case "blacklist":
		return Blacklist, nil
	default:
		return 0, fmt.Errorf("mud: unrecognized filter mode %q", s)
	}
}

// Filter screens characters and classes. Specific characters named in
// the include/exclude sets always win over the class check. Characters
// are tracked by ID, never by reference: IDs are issued once and never
// reused, so a destroyed character's entry can no longer match anyone
// and the filter never extends a character's lifetime.
type Filter struct {
	mode    FilterMode
	classes map[*Class]struct{}
	include map[ID]struct{}
	exclude map[ID]struct{}
}

// NewFilter creates an empty filter. An empty blacklist permits
// everyone; an empty whitelist permits no one.
func NewFilter(mode FilterMode) *Filter {
	return &Filter{
		mode:    mode,
		classes: make(map[*Class]struct{}),
		include: make(map[ID]struct{}),
		exclude: make(map[ID]struct{}),
	}
}

// NewFilterWith creates a filter pre-populated with classes and
// character include/exclude sets. A character requested in both sets
// is a configuration error.
func NewFilterWith(mode FilterMode, classes []*Class, include, exclude []*Character) (*Filter, error) {
	f := NewFilter(mode)
	for _, c := range classes {
		f.classes[c] = struct{}{}
	}
	excluded := make(map[ID]struct{}, len(exclude))
	for _, ch := range exclude {
		excluded[ch.id] = struct{}{}
	}
	for _, ch := range include {
		if _, both := excluded[ch.id]; both {
			return nil, fmt.Errorf("mud: filter: character %s in both include and exclude", ch)
		}
		f.include[ch.id] = struct{}{}
	}
	f.exclude = excluded
	return f, nil
}

// Mode returns the filter's mode.
func (f *Filter) Mode() FilterMode { return f.mode }

// Permits reports whether ch may pass the filter. The specific
// character is checked first, then the character's class ancestry.
func (f *Filter) Permits(ch *Character) bool {
	if _, ok := f.include[ch.id]; ok {
		return true
	}
	if _, ok := f.exclude[ch.id]; ok {
		return false
	}
	return f.PermitsClass(ch.class)
}

// PermitsClass applies the class rule alone: if any ancestor of c is
// tracked, a whitelist permits and a blacklist denies; when nothing
// matches the answer flips, so an empty blacklist lets everyone
// through and an empty whitelist no one.
func (f *Filter) PermitsClass(c *Class) bool {
	for _, ancestor := range Linearize(c) {
		if _, ok := f.classes[ancestor]; ok {
			return f.mode == Whitelist
		}
	}
	return f.mode == Blacklist
}

// IncludeChar makes the filter permit ch regardless of class, removing
// any standing exclusion first.
func (f *Filter) IncludeChar(ch *Character) {
	delete(f.exclude, ch.id)
	f.include[ch.id] = struct{}{}
}

// ExcludeChar makes the filter deny ch regardless of class, removing
// any standing inclusion first.
func (f *Filter) ExcludeChar(ch *Character) {
	delete(f.include, ch.id)
	f.exclude[ch.id] = struct{}{}
}

// IncludeClass makes the filter permit c. A whitelist starts tracking
// the class; a blacklist merely stops tracking it, since blacklists
// record only denials.
func (f *Filter) IncludeClass(c *Class) {
	if f.mode == Whitelist {
		f.classes[c] = struct{}{}
	} else {
		delete(f.classes, c)
	}
}

// ExcludeClass makes the filter deny c, with the mirror-image logic of
// IncludeClass.
func (f *Filter) ExcludeClass(c *Class) {
	if f.mode == Whitelist {
		delete(f.classes, c)
	} else {
		f.classes[c] = struct{}{}
	}
}

// FilterSpec is the wire form of a Filter, consumed and produced by
// the world loader. Everything but the mode defaults to empty.
type FilterSpec struct {
	Mode         string   `yaml:"mode"`
	Classes      []string `yaml:"classes,omitempty"`
	IncludeChars []string `yaml:"include_chars,omitempty"`
	ExcludeChars []string `yaml:"exclude_chars,omitempty"`
}

// FilterFromSpec builds a Filter from its wire form, resolving class
// and character names through the supplied lookup functions.
func FilterFromSpec(spec FilterSpec, classByName func(string) (*Class, bool), charByName func(string) (*Character, bool)) (*Filter, error) {
	mode, err := ParseFilterMode(spec.Mode)
	if err != nil {
		return nil, err
	}
	var classes []*Class
	for _, name := range spec.Classes {
		c, ok := classByName(name)
		if !ok {
			return nil, fmt.Errorf("mud: filter: unknown class %q", name)
		}
		classes = append(classes, c)
	}
	resolve := func(names []string) ([]*Character, error) {
		var chars []*Character
		for _, name := range names {
			ch, ok := charByName(name)
			if !ok {
				return nil, fmt.Errorf("mud: filter: unknown character %q", name)
			}
			chars = append(chars, ch)
		}
		return chars, nil
	}
	include, err := resolve(spec.IncludeChars)
	if err != nil {
		return nil, err
	}
	exclude, err := resolve(spec.ExcludeChars)
	if err != nil {
		return nil, err
	}
	return NewFilterWith(mode, classes, include, exclude)
}

// Spec returns the filter's wire form. Character IDs are translated
// back to names through nameByID; entries for characters that no
// longer exist resolve to nothing and are dropped.
func (f *Filter) Spec(nameByID func(ID) (string, bool)) FilterSpec {
	spec := FilterSpec{Mode: f.mode.String()}
	for c := range f.classes {
		spec.Classes = append(spec.Classes, c.Name())
	}
	sort.Strings(spec.Classes)
	collect := func(ids map[ID]struct{}) []string {
		var names []string
		for id := range ids {
			if name, ok := nameByID(id); ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return names
	}
	spec.IncludeChars = collect(f.include)
	spec.ExcludeChars = collect(f.exclude)
	return spec
}
