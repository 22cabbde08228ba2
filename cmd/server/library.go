package main

import (
	"fmt"
	"log"

	"github.com/swampgate/swampmud/pkg/inventory"
	"github.com/swampgate/swampmud/pkg/mud"
)

// defaultLibrary registers the stock character, item, and entity
// classes the sample world references. Game operators replace this
// with their own content.
func defaultLibrary() *mud.Library {
	lib := mud.NewLibrary()
	base := lib.BaseClass()

	ranger := mud.NewClass("Ranger", base)
	ranger.SetEquipSlots("right hand", "left hand", "head")
	ranger.Finalize()

	druid := mud.NewClass("Druid", base)
	druid.SetEquipSlots("right hand", "head")
	druid.Declare(mud.NewCommand(&mud.Action{
		Name: "forage",
		Help: "Search the ground for anything edible.",
		Run: func(bound []any, _ map[string]any, _ []string) {
			if ch, ok := bound[0].(*mud.Character); ok {
				ch.Message("You rummage through the mud but find nothing this time.")
				if loc := ch.Location(); loc != nil {
					loc.Message(fmt.Sprintf("%s rummages through the mud.", ch.Name()), ch)
				}
			}
		},
	}))
	druid.Finalize()

	mustRegisterChar(lib, ranger, 3)
	mustRegisterChar(lib, druid, 1)

	machete := mud.NewItemClass("Machete", inventory.NewSlot("right hand"))
	machete.Finalize()

	torch := mud.NewItemClass("Torch", inventory.NewSlot("left hand"))
	torch.OnUse = func(it *mud.Item, ch *mud.Character, argv []string) {
		ch.Message("The torch sputters and throws wild shadows.")
	}
	torch.Finalize()

	coin := mud.NewItemClass("Coin", inventory.NoSlot)
	coin.Finalize()

	for _, ic := range []*mud.ItemClass{machete, torch, coin} {
		if err := lib.RegisterItemClass(ic); err != nil {
			log.Fatalf("library: %v", err)
		}
	}

	heron := mud.NewEntityClass("Heron")
	heron.Declare(mud.NewCommand(&mud.Action{
		Name: "watch",
		Help: "Watch the heron fish.",
		Run: func(bound []any, _ map[string]any, _ []string) {
			if ch, ok := bound[0].(*mud.Character); ok {
				ch.Message("The heron stands perfectly still, then strikes the water.")
			}
		},
	}))
	heron.Finalize()
	if err := lib.RegisterEntityClass(heron); err != nil {
		log.Fatalf("library: %v", err)
	}

	return lib
}

func mustRegisterChar(lib *mud.Library, c *mud.Class, freq float64) {
	if err := lib.RegisterCharClass(c, freq); err != nil {
		log.Fatalf("library: %v", err)
	}
}
