package mud

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/swampgate/swampmud/pkg/inventory"
	"github.com/swampgate/swampmud/pkg/shadow"
)

// ErrUnknownCommand is returned by Dispatch for verbs the character
// does not currently have. It is user-facing and never fatal.
var ErrUnknownCommand = errors.New("mud: command not recognized")

// equipped pairs an item in a slot with whether it came from the
// character's inventory and should return there on unequip.
type equipped struct {
	item    *Item
	fromInv bool
}

// Character is a player- or script-controlled actor. Its live command
// table always equals the union of the commands granted by its class,
// its equipped items, and the entities in its room, each filtered by
// permission and with newer grants shadowing older same-named ones.
type Character struct {
	id        ID
	name      string
	class     *Class
	location  *Location
	commands  *shadow.Table[string, *Command]
	inv       *inventory.Inventory
	equipment map[inventory.Slot]*equipped

	// Notify delivers user-facing output; the server wires it to the
	// event bus. A nil Notify drops messages (headless characters).
	Notify func(text string)

	parser func(line string)
}

// NewCharacter creates a character of the given class, seeding its
// live command table from the class action table after permission
// filtering.
func NewCharacter(class *Class, name string) *Character {
	ch := &Character{
		id:        nextID(),
		name:      name,
		class:     class,
		inv:       inventory.New(),
		equipment: make(map[inventory.Slot]*equipped),
	}
	ch.commands = shadow.New[string, *Command](func(a, b *Command) bool { return a.Equal(b) })

	table := class.Commands()
	for _, verb := range sortedNames(table) {
		cmd := table[verb].Specify(ch)
		if cmd.Filter().Permits(ch) {
			ch.commands.Set(verb, cmd)
		}
	}
	for _, slot := range class.EquipSlots() {
		ch.equipment[slot] = nil
	}
	ch.parser = ch.commandParser
	return ch
}

// ID returns the character's process-unique identifier.
func (ch *Character) ID() ID { return ch.id }

// Name returns the character's name, empty until one is chosen.
func (ch *Character) Name() string { return ch.name }

// SetName names the character.
func (ch *Character) SetName(name string) { ch.name = name }

func (ch *Character) String() string {
	if ch.name == "" {
		return "[nameless character]"
	}
	return ch.name
}

// View returns the longer, player-facing depiction.
func (ch *Character) View() string {
	if ch.name == "" {
		return fmt.Sprintf("A nameless %s", ch.class.Name())
	}
	return fmt.Sprintf("%s the %s", ch.name, ch.class.Name())
}

// Class returns the character's class.
func (ch *Character) Class() *Class { return ch.class }

// Location returns the character's current room, nil while unspawned
// or after death.
func (ch *Character) Location() *Location { return ch.location }

// Inventory returns the character's item store.
func (ch *Character) Inventory() *inventory.Inventory { return ch.inv }

// Commands exposes the live command table (read it, don't mutate it;
// mutation belongs to the registration protocol).
func (ch *Character) Commands() *shadow.Table[string, *Command] { return ch.commands }

// Message delivers user-facing text to whoever controls the character.
func (ch *Character) Message(text string) {
	if ch.Notify != nil {
		ch.Notify(text)
	}
}

// Command feeds one line of player input through the character's
// current parser mode (name selection, normal play, or dead).
func (ch *Character) Command(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	ch.parser(line)
}

// Dispatch looks up verb in the live table and invokes it with the
// argument tokens. argv should include the verb as its first element.
func (ch *Character) Dispatch(verb string, argv []string) error {
	cmd, ok := ch.commands.Get(verb)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}
	cmd.Invoke(argv)
	return nil
}

// commandParser is the normal play mode: tokenize, check the quoted
// say shortcut, dispatch.
func (ch *Character) commandParser(line string) {
	args := SplitArgs(line)
	if len(args) == 0 {
		return
	}
	if msg, ok := quotedMessage(line, args); ok {
		if err := ch.Dispatch("say", []string{"say", msg}); err != nil {
			ch.Message("You have nothing to say with.")
		}
		return
	}
	if err := ch.Dispatch(args[0], args); err != nil {
		ch.Message(fmt.Sprintf("Command '%s' not recognized.", args[0]))
		if strings.HasPrefix(line, "'") {
			ch.Message("(Did you forget a ' at the end of your message?)")
		} else if strings.HasPrefix(line, `"`) {
			ch.Message(`(Did you forget a " at the end of your message?)`)
		}
	}
}

// nameParser runs after Spawn until the player picks a usable name.
func (ch *Character) nameParser(line string) {
	name := strings.TrimSpace(line)
	if len(name) < 2 {
		ch.Message("Names must have at least 2 characters.")
		return
	}
	for _, r := range name {
		if !isAlnum(r) {
			ch.Message("Names must be alphanumeric.")
			return
		}
	}
	ch.name = name

	// The spawn point was stored without a real move; now enter it
	// properly so entity commands register.
	loc := ch.location
	ch.location = nil
	if err := ch.SetLocation(loc); err != nil {
		log.Printf("mud: spawn move for %s: %v", ch, err)
	}
	ch.parser = ch.commandParser
}

// deadParser swallows everything after death.
func (ch *Character) deadParser(string) {
	ch.Message("You have died. Reconnect to this server to start as a new character.")
}

// Spawn greets the character and puts it into name selection. The
// location is recorded but not entered, so the character cannot be
// interacted with until a name is chosen.
func (ch *Character) Spawn(loc *Location) {
	ch.Message(fmt.Sprintf("Welcome to the swamp! You are a %s.", ch.class.Name()))
	ch.Message("What should we call you?")
	ch.location = loc
	ch.parser = ch.nameParser
}

// SetLocation moves the character: entity commands from the old room
// are revoked, then those from the new room granted, in that order.
// Only the moving character's table changes; other characters keep
// their registrations untouched.
func (ch *Character) SetLocation(loc *Location) error {
	var errs []error
	if ch.location != nil {
		for _, e := range ch.location.Entities() {
			e.fireExit(ch)
			if err := e.RemoveCommands(ch); err != nil {
				errs = append(errs, err)
			}
		}
		ch.location.removeChar(ch)
	}
	ch.location = loc
	if loc != nil {
		loc.addChar(ch)
		for _, e := range loc.Entities() {
			e.fireEnter(ch)
			e.AddCommands(ch)
		}
	}
	return errors.Join(errs...)
}

// Despawn kills the character: every live registration is torn down,
// the room roster is updated, and input falls into the dead parser.
func (ch *Character) Despawn() error {
	ch.Message("You died.")
	var errs []error
	if ch.location != nil {
		ch.location.Message(fmt.Sprintf("%s died.", ch), ch)
		for _, e := range ch.location.Entities() {
			if err := e.RemoveCommands(ch); err != nil {
				errs = append(errs, err)
			}
		}
		ch.location.removeChar(ch)
	}
	for slot, eq := range ch.equipment {
		if eq == nil {
			continue
		}
		if err := revokeCommands(eq.item, ch); err != nil {
			errs = append(errs, err)
		}
		ch.equipment[slot] = nil
	}
	ch.location = nil
	// Whatever remains (the class seed) goes too.
	ch.commands = shadow.New[string, *Command](func(a, b *Command) bool { return a.Equal(b) })
	ch.parser = ch.deadParser
	return errors.Join(errs...)
}

// AddItem puts amount copies of item into the character's inventory.
func (ch *Character) AddItem(it *Item, amount int) error {
	return ch.inv.Add(it, amount)
}

// HasSlot reports whether the character's class carries the slot.
func (ch *Character) HasSlot(slot inventory.Slot) bool {
	_, ok := ch.equipment[slot]
	return ok
}

// Equipped returns the item currently in slot, nil if the slot is
// empty or unknown.
func (ch *Character) Equipped(slot inventory.Slot) *Item {
	if eq := ch.equipment[slot]; eq != nil {
		return eq.item
	}
	return nil
}

// equipSlots returns the character's slots in stable order.
func (ch *Character) equipSlots() []inventory.Slot {
	slots := make([]inventory.Slot, 0, len(ch.equipment))
	for s := range ch.equipment {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

// Equip places item into its slot. With fromInv, the item is removed
// from inventory first and returns there on unequip. Whatever occupied
// the slot is unequipped first; only then does the new item register
// its commands, so the old item's collision keys are computed while
// the world still matches the state they were granted under.
func (ch *Character) Equip(it *Item, fromInv bool) error {
	target := it.Target()
	if target == inventory.NoSlot {
		ch.Message(fmt.Sprintf("%s cannot be equipped.", it))
		return nil
	}
	if !ch.HasSlot(target) {
		ch.Message(fmt.Sprintf("Cannot equip item %s to %s.", it, target))
		return nil
	}
	if fromInv {
		if err := ch.inv.Remove(it, 1); err != nil {
			if errors.Is(err, inventory.ErrItemNotFound) {
				ch.Message(fmt.Sprintf("Cannot equip %s - not found in inventory.", it))
				return nil
			}
			return err
		}
	}
	var errs []error
	if ch.equipment[target] != nil {
		if err := ch.Unequip(target); err != nil {
			errs = append(errs, err)
		}
	}
	ch.equipment[target] = &equipped{item: it, fromInv: fromInv}
	if hook := it.class.OnEquip; hook != nil {
		hook(it, ch)
	}
	grantCommands(it, ch)
	return errors.Join(errs...)
}

// Unequip empties a slot, revoking the item's commands and returning
// it to inventory when it came from there.
func (ch *Character) Unequip(slot inventory.Slot) error {
	eq, ok := ch.equipment[slot]
	if !ok {
		ch.Message(fmt.Sprintf("%s does not possess equip slot '%s'.", ch.class.Name(), slot))
		return nil
	}
	if eq == nil {
		ch.Message(fmt.Sprintf("No item equipped on target %s.", slot))
		return nil
	}
	// Revoke while the item still occupies its slot so the collision
	// keys recompute exactly as they did at grant time.
	err := revokeCommands(eq.item, ch)
	if hook := eq.item.class.OnUnequip; hook != nil {
		hook(eq.item, ch)
	}
	ch.equipment[slot] = nil
	if eq.fromInv {
		if addErr := ch.inv.Add(eq.item, 1); addErr != nil {
			err = errors.Join(err, addErr)
		}
	}
	return err
}

// EachEquipped calls fn for every occupied slot in stable order, with
// whether the item returns to inventory on unequip. Used by the
// persistence layer to snapshot equipment.
func (ch *Character) EachEquipped(fn func(slot inventory.Slot, it *Item, fromInv bool)) {
	for _, slot := range ch.equipSlots() {
		if eq := ch.equipment[slot]; eq != nil {
			fn(slot, eq.item, eq.fromInv)
		}
	}
}

// EquipmentView renders the slot listing for the inv command.
func (ch *Character) EquipmentView() string {
	var lines []string
	for _, slot := range ch.equipSlots() {
		if eq := ch.equipment[slot]; eq != nil {
			lines = append(lines, fmt.Sprintf("%s: %s", slot, eq.item))
		} else {
			lines = append(lines, fmt.Sprintf("%s: none", slot))
		}
	}
	return strings.Join(lines, "\n")
}

// HelpMenu groups the live verbs by provenance label, class sources
// first in ancestry order, then whatever items and entities added.
func (ch *Character) HelpMenu() string {
	order := []string{}
	index := map[string][]string{}
	for _, cls := range Linearize(ch.class) {
		if _, ok := index[cls.label]; !ok {
			index[cls.label] = nil
			order = append(order, cls.label)
		}
	}
	ch.commands.Items(func(verb string, cmd *Command) {
		label := cmd.Label()
		if _, ok := index[label]; !ok {
			index[label] = nil
			order = append(order, label)
		}
		index[label] = append(index[label], verb)
	})
	var b strings.Builder
	for _, label := range order {
		verbs := index[label]
		if len(verbs) == 0 {
			continue
		}
		sort.Strings(verbs)
		fmt.Fprintf(&b, "---%s---\n%s\n", label, strings.Join(verbs, " "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func isAlnum(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}
