package mudstore

import (
	"fmt"

	"github.com/swampgate/swampmud/pkg/inventory"
	"github.com/swampgate/swampmud/pkg/mud"
)

// Snapshot captures a live character into its saved form. The password
// hash is carried over from prev when one exists, so saving never
// requires the plaintext password again.
func Snapshot(ch *mud.Character, prev *PlayerRecord) *PlayerRecord {
	rec := &PlayerRecord{
		Name:      ch.Name(),
		Class:     ch.Class().Name(),
		Inventory: ch.Inventory().Save(),
	}
	if loc := ch.Location(); loc != nil {
		rec.Location = loc.Name()
	}
	if prev != nil {
		rec.PassHash = prev.PassHash
	}
	ch.EachEquipped(func(slot inventory.Slot, it *mud.Item, fromInv bool) {
		rec.Equipment = append(rec.Equipment, EquipRecord{
			Slot:     string(slot),
			ItemType: it.Name(),
			Data:     it.Save(),
			FromInv:  fromInv,
		})
	})
	return rec
}

// Restore rebuilds a character from its saved form, resolving class and
// item names through the library. The caller places the character into
// its saved location afterwards; Restore only names it.
func Restore(rec *PlayerRecord, lib *mud.Library) (*mud.Character, error) {
	class, ok := lib.CharClass(rec.Class)
	if !ok {
		return nil, fmt.Errorf("mudstore: restore %q: unknown class %q", rec.Name, rec.Class)
	}
	ch := mud.NewCharacter(class, rec.Name)

	inv, err := inventory.Load(rec.Inventory, lib.ItemType)
	if err != nil {
		return nil, fmt.Errorf("mudstore: restore %q: %w", rec.Name, err)
	}
	for _, m := range inv.Find("", inventory.Query{}) {
		if err := ch.Inventory().Add(m.Item, m.Amount); err != nil {
			return nil, fmt.Errorf("mudstore: restore %q: %w", rec.Name, err)
		}
	}

	for _, eq := range rec.Equipment {
		ic, ok := lib.ItemClassByName(eq.ItemType)
		if !ok {
			return nil, fmt.Errorf("mudstore: restore %q: unknown item class %q", rec.Name, eq.ItemType)
		}
		it := mud.NewItem(ic, eq.Data)
		if eq.FromInv {
			// Equip pulls the item back out of inventory; seed it first.
			if err := ch.Inventory().Add(it, 1); err != nil {
				return nil, fmt.Errorf("mudstore: restore %q: %w", rec.Name, err)
			}
		}
		if err := ch.Equip(it, eq.FromInv); err != nil {
			return nil, fmt.Errorf("mudstore: restore %q: equip %s: %w", rec.Name, eq.ItemType, err)
		}
	}
	return ch, nil
}
