package mudstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/swampgate/swampmud/pkg/inventory"
	"github.com/swampgate/swampmud/pkg/mud"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "players.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlayerRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	rec := &PlayerRecord{
		Name:     "Ziggy",
		Class:    "Wizard",
		Location: "Marsh",
		PassHash: hash,
		Inventory: []inventory.StackRecord{
			{ItemType: "Coin", Amount: 30},
			{ItemType: "Wand", Amount: 1, Data: inventory.Data{"charge": 5}},
		},
		Equipment: []EquipRecord{
			{Slot: "Right hand", ItemType: "Sword", FromInv: true},
		},
	}
	if err := s.PutPlayer(rec); err != nil {
		t.Fatalf("PutPlayer: %v", err)
	}

	// Lookup is case-insensitive.
	got, err := s.GetPlayer("ziggy")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if got.Name != "Ziggy" || got.Class != "Wizard" || got.Location != "Marsh" {
		t.Errorf("record fields lost: %+v", got)
	}
	if len(got.Inventory) != 2 || got.Inventory[1].Data["charge"] != 5 {
		t.Errorf("inventory lost: %+v", got.Inventory)
	}
	if len(got.Equipment) != 1 || !got.Equipment[0].FromInv {
		t.Errorf("equipment lost: %+v", got.Equipment)
	}

	if err := got.CheckPassword("hunter2"); err != nil {
		t.Errorf("CheckPassword: %v", err)
	}
	if err := got.CheckPassword("wrong"); !errors.Is(err, ErrBadPassword) {
		t.Errorf("wrong password: err = %v", err)
	}
}

func TestGetMissingPlayer(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetPlayer("nobody"); !errors.Is(err, ErrNoPlayer) {
		t.Errorf("err = %v, want ErrNoPlayer", err)
	}
}

func TestDeletePlayer(t *testing.T) {
	s := openTestStore(t)
	if err := s.PutPlayer(&PlayerRecord{Name: "Ann"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePlayer("ann"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPlayer("Ann"); !errors.Is(err, ErrNoPlayer) {
		t.Errorf("err = %v, want ErrNoPlayer", err)
	}
}

func TestPlayerNames(t *testing.T) {
	s := openTestStore(t)
	if s.HasData() {
		t.Error("fresh store should be empty")
	}
	if err := s.PutPlayers(
		&PlayerRecord{Name: "Bob"},
		&PlayerRecord{Name: "alice"},
	); err != nil {
		t.Fatal(err)
	}
	names, err := s.PlayerNames()
	if err != nil {
		t.Fatal(err)
	}
	// Key order is the lower-cased names.
	if len(names) != 2 || names[0] != "alice" || names[1] != "Bob" {
		t.Errorf("names = %v", names)
	}
	if !s.HasData() {
		t.Error("store should report data")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	lib := mud.NewLibrary()
	fighter := mud.NewClass("Fighter", lib.BaseClass())
	fighter.SetEquipSlots("right hand")
	fighter.Finalize()
	if err := lib.RegisterCharClass(fighter, 1); err != nil {
		t.Fatal(err)
	}
	sword := mud.NewItemClass("Sword", inventory.NewSlot("right hand"))
	sword.Finalize()
	coin := mud.NewItemClass("Coin", inventory.NoSlot)
	coin.Finalize()
	if err := lib.RegisterItemClass(sword); err != nil {
		t.Fatal(err)
	}
	if err := lib.RegisterItemClass(coin); err != nil {
		t.Fatal(err)
	}

	ch := mud.NewCharacter(fighter, "Brek")
	room := mud.NewLocation("Armory", "Racks of steel.")
	if err := ch.SetLocation(room); err != nil {
		t.Fatal(err)
	}
	if err := ch.AddItem(mud.NewItem(coin, nil), 12); err != nil {
		t.Fatal(err)
	}
	blade := mud.NewItem(sword, nil)
	if err := ch.AddItem(blade, 1); err != nil {
		t.Fatal(err)
	}
	if err := ch.Equip(blade, true); err != nil {
		t.Fatal(err)
	}

	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	rec := Snapshot(ch, &PlayerRecord{PassHash: hash})
	if rec.Location != "Armory" || rec.Class != "Fighter" {
		t.Fatalf("snapshot fields: %+v", rec)
	}

	restored, err := Restore(rec, lib)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Name() != "Brek" || restored.Class() != fighter {
		t.Errorf("identity lost: %s of %s", restored.Name(), restored.Class())
	}
	if got := restored.Equipped(inventory.NewSlot("right hand")); got == nil || got.Name() != "Sword" {
		t.Errorf("equipment lost: %v", got)
	}
	if found := restored.Inventory().Find("coin", inventory.Query{}); len(found) != 1 || found[0].Amount != 12 {
		t.Errorf("inventory lost: %v", found)
	}
	// Equipped-from-inventory items are out of the bag while worn.
	if found := restored.Inventory().Find("sword", inventory.Query{}); len(found) != 0 {
		t.Errorf("worn sword should not also sit in inventory: %v", found)
	}
	if _, ok := restored.Commands().Get("look"); !ok {
		t.Error("restored character should have its class commands")
	}
}
