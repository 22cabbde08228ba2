package mud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/swampgate/swampmud/pkg/inventory"
)

// Location is a room: a named place with its own inventory, exits, and
// rosters of the characters and entities currently inside it.
type Location struct {
	name        string
	description string
	characters  []*Character
	entities    []*Entity
	exits       []*Exit
	inv         *inventory.Inventory
}

// NewLocation creates an empty room.
func NewLocation(name, description string) *Location {
	return &Location{
		name:        name,
		description: description,
		inv:         inventory.New(),
	}
}

// Name returns the room's name.
func (r *Location) Name() string { return r.name }

func (r *Location) String() string { return r.name }

// Description returns the room's long description.
func (r *Location) Description() string { return r.description }

// Inventory returns the room's item store (things lying on the ground).
func (r *Location) Inventory() *inventory.Inventory { return r.inv }

// Characters returns a snapshot of the room's character roster.
func (r *Location) Characters() []*Character {
	out := make([]*Character, len(r.characters))
	copy(out, r.characters)
	return out
}

// Entities returns a snapshot of the room's entity roster.
func (r *Location) Entities() []*Entity {
	out := make([]*Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Exits returns the room's exits.
func (r *Location) Exits() []*Exit { return r.exits }

// AddExit attaches an exit to the room.
func (r *Location) AddExit(ex *Exit) { r.exits = append(r.exits, ex) }

// FindExit returns the first exit answering to name, nil if none.
func (r *Location) FindExit(name string) *Exit {
	for _, ex := range r.exits {
		if ex.AnswersTo(name) {
			return ex
		}
	}
	return nil
}

// Message sends text to every character in the room except those in
// the exclude list.
func (r *Location) Message(text string, exclude ...*Character) {
	for _, ch := range r.characters {
		skip := false
		for _, ex := range exclude {
			if ch == ex {
				skip = true
				break
			}
		}
		if !skip {
			ch.Message(text)
		}
	}
}

// View renders the room for viewer: description, the exits the viewer
// is allowed to perceive, and who and what is here.
func (r *Location) View(viewer *Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", r.name, r.description)

	var exits []string
	for _, ex := range r.exits {
		if viewer == nil || ex.Perceive.Permits(viewer) {
			exits = append(exits, ex.Name())
		}
	}
	sort.Strings(exits)
	if len(exits) > 0 {
		fmt.Fprintf(&b, "\nExits: %s", strings.Join(exits, ", "))
	}

	var present []string
	for _, ch := range r.characters {
		if ch != viewer {
			present = append(present, ch.View())
		}
	}
	for _, e := range r.entities {
		present = append(present, e.Name())
	}
	sort.Strings(present)
	if len(present) > 0 {
		fmt.Fprintf(&b, "\nHere: %s", strings.Join(present, ", "))
	}

	if ground := r.inv.Readable(); ground != "" {
		fmt.Fprintf(&b, "\nOn the ground:\n%s", ground)
	}
	return b.String()
}

func (r *Location) addChar(ch *Character) {
	r.characters = append(r.characters, ch)
}

func (r *Location) removeChar(ch *Character) {
	for i, c := range r.characters {
		if c == ch {
			r.characters = append(r.characters[:i], r.characters[i+1:]...)
			return
		}
	}
}

func (r *Location) addEntity(e *Entity) {
	r.entities = append(r.entities, e)
}

func (r *Location) removeEntity(e *Entity) {
	for i, cur := range r.entities {
		if cur == e {
			r.entities = append(r.entities[:i], r.entities[i+1:]...)
			return
		}
	}
}

// Exit connects a room to a destination. Interact controls who may use
// it; Perceive controls who can even see it. A character failing both
// is told the exit does not exist.
type Exit struct {
	name     string
	aliases  []string
	dest     *Location
	Interact *Filter
	Perceive *Filter
}

// NewExit creates an exit with permit-everyone filters.
func NewExit(name string, dest *Location, aliases ...string) *Exit {
	return &Exit{
		name:     name,
		aliases:  aliases,
		dest:     dest,
		Interact: NewFilter(Blacklist),
		Perceive: NewFilter(Blacklist),
	}
}

// Name returns the exit's primary name.
func (ex *Exit) Name() string { return ex.name }

func (ex *Exit) String() string {
	return fmt.Sprintf("%s -> %s", ex.name, ex.dest.Name())
}

// Destination returns where the exit leads.
func (ex *Exit) Destination() *Location { return ex.dest }

// Aliases returns the exit's alternate names.
func (ex *Exit) Aliases() []string { return ex.aliases }

// AnswersTo reports whether name matches the exit's name or an alias,
// case-insensitively.
func (ex *Exit) AnswersTo(name string) bool {
	name = strings.ToLower(name)
	if strings.ToLower(ex.name) == name {
		return true
	}
	for _, alias := range ex.aliases {
		if strings.ToLower(alias) == name {
			return true
		}
	}
	return false
}
