// Package world loads a game world from a YAML definition: rooms,
// exits with permission filters, ground items, and placed entities.
// Loading is two-pass so exits can reference rooms declared later in
// the file.
package world

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/swampgate/swampmud/pkg/inventory"
	"github.com/swampgate/swampmud/pkg/mud"
)

// Spec is the YAML wire form of a whole world file.
type Spec struct {
	Name          string     `yaml:"name"`
	StartLocation string     `yaml:"start_location"`
	Rooms         []RoomSpec `yaml:"rooms"`
}

// RoomSpec is the wire form of one room.
type RoomSpec struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Exits       []ExitSpec              `yaml:"exits,omitempty"`
	Items       []inventory.StackRecord `yaml:"items,omitempty"`
	Entities    []EntitySpec            `yaml:"entities,omitempty"`
}

// ExitSpec is the wire form of one exit. Absent filters mean
// permit-everyone.
type ExitSpec struct {
	Name        string          `yaml:"name"`
	Destination string          `yaml:"destination"`
	Aliases     []string        `yaml:"aliases,omitempty"`
	Interact    *mud.FilterSpec `yaml:"interact,omitempty"`
	Perceive    *mud.FilterSpec `yaml:"perceive,omitempty"`
}

// EntitySpec is the wire form of one placed entity.
type EntitySpec struct {
	Class string `yaml:"class"`
	Name  string `yaml:"name,omitempty"`
}

// World is a loaded game world.
type World struct {
	name     string
	start    *mud.Location
	rooms    map[string]*mud.Location
	entities []*mud.Entity
}

// Name returns the world's display name.
func (w *World) Name() string { return w.name }

// Start returns the room new characters spawn into.
func (w *World) Start() *mud.Location { return w.start }

// Room looks up a room by name.
func (w *World) Room(name string) (*mud.Location, bool) {
	r, ok := w.rooms[name]
	return r, ok
}

// Rooms returns the room index. Callers must not mutate it.
func (w *World) Rooms() map[string]*mud.Location { return w.rooms }

// Entities returns every placed entity.
func (w *World) Entities() []*mud.Entity { return w.entities }

// LoadFile reads and builds a world from a YAML file.
func LoadFile(path string, lib *mud.Library) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: read %s: %w", path, err)
	}
	return Load(data, lib)
}

// Load builds a world from YAML bytes, resolving class and item names
// through the library.
func Load(data []byte, lib *mud.Library) (*World, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("world: parse: %w", err)
	}
	return Build(&spec, lib)
}

// Build turns a parsed Spec into a live world.
func Build(spec *Spec, lib *mud.Library) (*World, error) {
	w := &World{
		name:  spec.Name,
		rooms: make(map[string]*mud.Location),
	}

	// First pass: create every room so exits can resolve forward
	// references.
	for _, rs := range spec.Rooms {
		if rs.Name == "" {
			return nil, fmt.Errorf("world: room with empty name")
		}
		if _, dup := w.rooms[rs.Name]; dup {
			return nil, fmt.Errorf("world: duplicate room %q", rs.Name)
		}
		w.rooms[rs.Name] = mud.NewLocation(rs.Name, rs.Description)
	}

	start, ok := w.rooms[spec.StartLocation]
	if !ok {
		return nil, fmt.Errorf("world: start_location %q is not a room", spec.StartLocation)
	}
	w.start = start

	// Second pass: exits, ground items, entities.
	for _, rs := range spec.Rooms {
		room := w.rooms[rs.Name]
		for _, es := range rs.Exits {
			ex, err := buildExit(w, rs.Name, es, lib)
			if err != nil {
				return nil, err
			}
			room.AddExit(ex)
		}
		for _, item := range rs.Items {
			if err := placeItem(room, item, lib); err != nil {
				return nil, fmt.Errorf("world: room %q: %w", rs.Name, err)
			}
		}
		for _, ent := range rs.Entities {
			ec, ok := lib.EntityClassByName(ent.Class)
			if !ok {
				return nil, fmt.Errorf("world: room %q: unknown entity class %q", rs.Name, ent.Class)
			}
			e := mud.NewEntity(ec)
			if ent.Name != "" {
				e.SetName(ent.Name)
			}
			if err := e.SetLocation(room); err != nil {
				return nil, fmt.Errorf("world: room %q: place %s: %w", rs.Name, e, err)
			}
			w.entities = append(w.entities, e)
		}
	}
	return w, nil
}

func buildExit(w *World, room string, es ExitSpec, lib *mud.Library) (*mud.Exit, error) {
	dest, ok := w.rooms[es.Destination]
	if !ok {
		return nil, fmt.Errorf("world: room %q: exit %q leads to unknown room %q",
			room, es.Name, es.Destination)
	}
	ex := mud.NewExit(es.Name, dest, es.Aliases...)
	// World files only name classes; character include/exclude sets are
	// runtime state and never appear here.
	noChar := func(string) (*mud.Character, bool) { return nil, false }
	if es.Interact != nil {
		f, err := mud.FilterFromSpec(*es.Interact, lib.AnyClass, noChar)
		if err != nil {
			return nil, fmt.Errorf("world: room %q: exit %q interact: %w", room, es.Name, err)
		}
		ex.Interact = f
	}
	if es.Perceive != nil {
		f, err := mud.FilterFromSpec(*es.Perceive, lib.AnyClass, noChar)
		if err != nil {
			return nil, fmt.Errorf("world: room %q: exit %q perceive: %w", room, es.Name, err)
		}
		ex.Perceive = f
	}
	return ex, nil
}

func placeItem(room *mud.Location, rec inventory.StackRecord, lib *mud.Library) error {
	typ, ok := lib.ItemType(rec.ItemType)
	if !ok {
		return fmt.Errorf("unknown item type %q", rec.ItemType)
	}
	it, err := typ.Make(rec.Data)
	if err != nil {
		return fmt.Errorf("build item %q: %w", rec.ItemType, err)
	}
	amount := rec.Amount
	if amount == 0 {
		amount = 1
	}
	return room.Inventory().Add(it, amount)
}

// Save returns the world's current wire form: rooms, exits, and ground
// items as they stand now. Entities are recorded at their current
// rooms. Character include/exclude sets on exit filters are dropped,
// matching what Load accepts.
func (w *World) Save() *Spec {
	spec := &Spec{Name: w.name}
	if w.start != nil {
		spec.StartLocation = w.start.Name()
	}
	noChar := func(mud.ID) (string, bool) { return "", false }
	for _, name := range sortedRoomNames(w.rooms) {
		room := w.rooms[name]
		rs := RoomSpec{
			Name:        room.Name(),
			Description: room.Description(),
			Items:       room.Inventory().Save(),
		}
		for _, ex := range room.Exits() {
			es := ExitSpec{
				Name:        ex.Name(),
				Destination: ex.Destination().Name(),
				Aliases:     ex.Aliases(),
			}
			if f := ex.Interact.Spec(noChar); f.Mode != "blacklist" || len(f.Classes) > 0 {
				fs := f
				es.Interact = &fs
			}
			if f := ex.Perceive.Spec(noChar); f.Mode != "blacklist" || len(f.Classes) > 0 {
				fs := f
				es.Perceive = &fs
			}
			rs.Exits = append(rs.Exits, es)
		}
		for _, e := range room.Entities() {
			es := EntitySpec{Class: e.EntityClass().Name()}
			if e.Name() != e.EntityClass().Name() {
				es.Name = e.Name()
			}
			rs.Entities = append(rs.Entities, es)
		}
		spec.Rooms = append(spec.Rooms, rs)
	}
	return spec
}

// SaveFile writes the world's wire form as YAML.
func (w *World) SaveFile(path string) error {
	data, err := yaml.Marshal(w.Save())
	if err != nil {
		return fmt.Errorf("world: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("world: write %s: %w", path, err)
	}
	return nil
}

func sortedRoomNames(rooms map[string]*mud.Location) []string {
	names := make([]string, 0, len(rooms))
	for n := range rooms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
