package mud

import (
	"fmt"
	"log"
	"strings"

	"github.com/swampgate/swampmud/pkg/inventory"
)

// The default command set every character class ultimately inherits.
// Each action's first bound argument is the character it was
// specialized for at construction time.

func self(bound []any) *Character {
	return bound[0].(*Character)
}

func restOf(argv []string) string {
	return strings.Join(argv[1:], " ")
}

var helpAction = &Action{
	Name: "help",
	Help: "Show relevant help information for a particular command.\nusage: help [command]\nIf no command is supplied, a list of all commands is shown.",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if len(argv) < 2 {
			ch.Message(ch.HelpMenu())
			return
		}
		cmd, ok := ch.commands.Get(argv[1])
		if !ok {
			ch.Message(fmt.Sprintf("Command '%s' not recognized.", argv[1]))
			return
		}
		ch.Message(cmd.HelpEntry())
	},
}

var lookAction = &Action{
	Name: "look",
	Help: "Gives a description of your current location.\nusage: look",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if ch.location == nil {
			ch.Message("You are nowhere.")
			return
		}
		ch.Message(ch.location.View(ch))
	},
}

var sayAction = &Action{
	Name: "say",
	Help: "Send a message to all players in your current location.\nusage: say [msg]\nYou can drop the 'say' and just type your message in quotes:\n\"Hello, how are you?\"",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		msg := restOf(argv)
		if msg != "" && ch.location != nil {
			ch.location.Message(fmt.Sprintf("%s: %s", ch.View(), msg))
		}
	},
}

var goAction = &Action{
	Name: "go",
	Help: "Go to an accessible location.\nusage: go [exit name]",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		name := restOf(argv)
		if ch.location == nil {
			ch.Message("You are nowhere.")
			return
		}
		ex := ch.location.FindExit(name)
		if ex == nil {
			ch.Message(fmt.Sprintf("No exit with name '%s'.", name))
			return
		}
		if !ex.Interact.Permits(ch) {
			if ex.Perceive.Permits(ch) {
				ch.Message(fmt.Sprintf("Exit '%s' is inaccessible to you.", name))
			} else {
				// Can't see it, can't use it: it doesn't exist.
				ch.Message(fmt.Sprintf("No exit with name '%s'.", name))
			}
			return
		}
		old := ch.location
		dest := ex.Destination()
		dest.Message(fmt.Sprintf("%s entered.", ch))
		if err := ch.SetLocation(dest); err != nil {
			log.Printf("mud: move %s to %s: %v", ch, dest, err)
		}
		old.Message(fmt.Sprintf("%s left through exit '%s'.", ch, name))
	},
}

var equipAction = &Action{
	Name: "equip",
	Help: "Equip an equippable item from your inventory.\nusage: equip [item]",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if len(argv) < 2 {
			ch.Message("Provide an item to equip.")
			return
		}
		name := strings.ToLower(restOf(argv))
		found := ch.inv.Find(name, inventory.Query{})
		switch len(found) {
		case 0:
			ch.Message(fmt.Sprintf("Could not find item '%s'.", name))
		case 1:
			if err := ch.Equip(found[0].Item.(*Item), true); err != nil {
				log.Printf("mud: equip for %s: %v", ch, err)
			}
		default:
			ch.Message(fmt.Sprintf("Ambiguous item name '%s' (%d matches).", name, len(found)))
		}
	},
}

var unequipAction = &Action{
	Name: "unequip",
	Help: "Unequip an equipped item.\nusage: unequip [item]",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if len(argv) < 2 {
			ch.Message("Provide an item to unequip.")
			return
		}
		name := strings.ToLower(restOf(argv))
		var found []*Item
		for _, slot := range ch.equipSlots() {
			if it := ch.Equipped(slot); it != nil && strings.ToLower(it.Name()) == name {
				found = append(found, it)
			}
		}
		switch len(found) {
		case 0:
			ch.Message(fmt.Sprintf("Could not find equipped item '%s'.", name))
		case 1:
			if err := ch.Unequip(found[0].Target()); err != nil {
				log.Printf("mud: unequip for %s: %v", ch, err)
			}
		default:
			ch.Message(fmt.Sprintf("Ambiguous item name '%s' (%d matches).", name, len(found)))
		}
	},
}

var pickupAction = &Action{
	Name: "pickup",
	Help: "Pick up an item from the environment.\nusage: pickup [item]",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if len(argv) < 2 {
			ch.Message("Provide an item to pick up.")
			return
		}
		if ch.location == nil {
			ch.Message("You are nowhere.")
			return
		}
		name := strings.ToLower(restOf(argv))
		found := ch.location.Inventory().Find(name, inventory.Query{})
		switch len(found) {
		case 0:
			ch.Message(fmt.Sprintf("Could not find item '%s' to pick up.", name))
		case 1:
			it := found[0].Item
			if err := ch.location.Inventory().Remove(it, 1); err != nil {
				log.Printf("mud: pickup for %s: %v", ch, err)
				return
			}
			if err := ch.inv.Add(it, 1); err != nil {
				log.Printf("mud: pickup for %s: %v", ch, err)
			}
		default:
			ch.Message(fmt.Sprintf("Ambiguous item name '%s' (%d matches).", name, len(found)))
		}
	},
}

var dropAction = &Action{
	Name: "drop",
	Help: "Drop an item into the environment.\nusage: drop [item]",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if len(argv) < 2 {
			ch.Message("Provide an item to drop.")
			return
		}
		if ch.location == nil {
			ch.Message("You are nowhere.")
			return
		}
		name := strings.ToLower(restOf(argv))
		found := ch.inv.Find(name, inventory.Query{})
		switch len(found) {
		case 0:
			ch.Message(fmt.Sprintf("Could not find item '%s' to drop.", name))
		case 1:
			it := found[0].Item
			if err := ch.inv.Remove(it, 1); err != nil {
				log.Printf("mud: drop for %s: %v", ch, err)
				return
			}
			if err := ch.location.Inventory().Add(it, 1); err != nil {
				log.Printf("mud: drop for %s: %v", ch, err)
			}
		default:
			ch.Message(fmt.Sprintf("Ambiguous item name '%s' (%d matches).", name, len(found)))
		}
	},
}

var invAction = &Action{
	Name: "inv",
	Help: "Show your equipment and inventory.\nusage: inv",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if view := ch.EquipmentView(); view != "" {
			ch.Message(view)
		}
		if listing := ch.inv.Readable(); listing != "" {
			ch.Message(listing)
		}
	},
}

var useAction = &Action{
	Name: "use",
	Help: "Use an item.\nusage: use [item] [options for item]\nOptions may vary per item.",
	Run: func(bound []any, _ map[string]any, argv []string) {
		ch := self(bound)
		if len(argv) < 2 {
			ch.Message("Please specify an item.")
			return
		}
		name := strings.ToLower(argv[1])
		found := ch.inv.Find(name, inventory.Query{})
		switch len(found) {
		case 0:
			ch.Message(fmt.Sprintf("Could not find item '%s' to use.", name))
		case 1:
			it := found[0].Item.(*Item)
			hook := it.class.OnUse
			if hook == nil {
				ch.Message(fmt.Sprintf("You find no use for %s.", it))
				return
			}
			// Take the item out while it is used, then put back
			// whatever state it ended up with.
			if err := ch.inv.Remove(it, 1); err != nil {
				log.Printf("mud: use for %s: %v", ch, err)
				return
			}
			hook(it, ch, argv[2:])
			if err := ch.inv.Add(it, 1); err != nil {
				log.Printf("mud: use for %s: %v", ch, err)
			}
		default:
			ch.Message(fmt.Sprintf("Ambiguous item name '%s' (%d matches).", name, len(found)))
		}
	},
}

// BaseCharacterClass builds the root character class carrying the
// default command set. Every library starts with one.
func BaseCharacterClass() *Class {
	c := NewClass("Default Character").SetCommandLabel("Default Commands")
	c.SetEquipSlots()
	for _, action := range []*Action{
		helpAction, lookAction, sayAction, goAction,
		equipAction, unequipAction, pickupAction, dropAction,
		invAction, useAction,
	} {
		c.Declare(NewCommand(action))
	}
	return c.Finalize()
}
