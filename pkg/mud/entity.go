package mud

import "errors"

// EntityClass defines a type of scripted in-world object (a chest, a
// signpost, a cat) whose commands become available to characters
// sharing its room.
type EntityClass struct {
	*Class

	// Hooks fired when a character enters or leaves the entity's
	// room, before commands are granted and after they are revoked.
	OnEnter func(e *Entity, ch *Character)
	OnExit  func(e *Entity, ch *Character)
}

// NewEntityClass creates an entity class.
func NewEntityClass(name string, parents ...*EntityClass) *EntityClass {
	bases := make([]*Class, len(parents))
	for i, p := range parents {
		bases[i] = p.Class
	}
	return &EntityClass{Class: NewClass(name, bases...)}
}

// Entity is one placed instance of an EntityClass.
type Entity struct {
	class    *EntityClass
	name     string // defaults to the class name
	location *Location
}

// NewEntity creates an unplaced entity of the given class.
func NewEntity(class *EntityClass) *Entity {
	return &Entity{class: class}
}

// Name returns the entity's display name.
func (e *Entity) Name() string {
	if e.name != "" {
		return e.name
	}
	return e.class.Name()
}

func (e *Entity) String() string { return e.Name() }

// SetName gives the entity an instance-specific display name.
func (e *Entity) SetName(name string) { e.name = name }

// EntityClass returns the entity's class.
func (e *Entity) EntityClass() *EntityClass { return e.class }

// Location returns the entity's current room, nil if unplaced.
func (e *Entity) Location() *Location { return e.location }

// SourceName implements Source.
func (e *Entity) SourceName() string { return e.Name() }

// ActionTable implements Source.
func (e *Entity) ActionTable() *Class { return e.class.Class }

// colocated returns the other entities sharing the room.
func (e *Entity) colocated(ch *Character) []Source {
	if e.location == nil {
		return nil
	}
	var others []Source
	for _, other := range e.location.entities {
		if other != e {
			others = append(others, other)
		}
	}
	return others
}

// AddCommands grants the entity's permitted commands to ch, fired when
// ch enters the entity's room or the entity spawns beside ch.
func (e *Entity) AddCommands(ch *Character) {
	grantCommands(e, ch)
}

// RemoveCommands revokes exactly what AddCommands granted. A failure
// here means registration bookkeeping went out of sync with the world
// and is reported, never swallowed.
func (e *Entity) RemoveCommands(ch *Character) error {
	return revokeCommands(e, ch)
}

// SetLocation moves the entity, revoking its commands from everyone in
// the old room and granting them to everyone in the new one.
func (e *Entity) SetLocation(loc *Location) error {
	var errs []error
	if e.location != nil {
		for _, ch := range e.location.Characters() {
			e.fireExit(ch)
			if err := e.RemoveCommands(ch); err != nil {
				errs = append(errs, err)
			}
		}
		e.location.removeEntity(e)
	}
	e.location = loc
	if loc != nil {
		loc.addEntity(e)
		for _, ch := range loc.Characters() {
			e.fireEnter(ch)
			e.AddCommands(ch)
		}
	}
	return errors.Join(errs...)
}

// Despawn removes the entity from the world, revoking its commands
// from every character in its room.
func (e *Entity) Despawn() error {
	var errs []error
	if e.location != nil {
		for _, ch := range e.location.Characters() {
			if err := e.RemoveCommands(ch); err != nil {
				errs = append(errs, err)
			}
		}
		e.location.removeEntity(e)
	}
	e.location = nil
	return errors.Join(errs...)
}

func (e *Entity) fireEnter(ch *Character) {
	if e.class.OnEnter != nil {
		e.class.OnEnter(e, ch)
	}
}

func (e *Entity) fireExit(ch *Character) {
	if e.class.OnExit != nil {
		e.class.OnExit(e, ch)
	}
}
