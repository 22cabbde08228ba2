package mud

import (
	"errors"
	"strings"
	"testing"

	"github.com/swampgate/swampmud/pkg/inventory"
)

func newPlayer(t *testing.T) (*Character, *[]string) {
	t.Helper()
	ch, msgs := newTestChar(t, BaseCharacterClass())
	return ch, msgs
}

func TestCharacterIDsNeverRepeat(t *testing.T) {
	human := NewClass("Human").Finalize()
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		ch := NewCharacter(human, "")
		if seen[ch.ID()] {
			t.Fatalf("ID %d issued twice", ch.ID())
		}
		seen[ch.ID()] = true
	}
}

func TestSpawnNameFlow(t *testing.T) {
	ch, msgs := newPlayer(t)
	room := NewLocation("Marsh", "A soggy marsh.")
	ch.Spawn(room)

	if !strings.Contains(strings.Join(*msgs, "\n"), "What should we call you?") {
		t.Fatal("spawn should prompt for a name")
	}
	if len(room.Characters()) != 0 {
		t.Fatal("character should not be in the roster before naming")
	}

	ch.Command("x")
	if ch.Name() != "" {
		t.Error("one-character names should be rejected")
	}
	ch.Command("bad name!")
	if ch.Name() != "" {
		t.Error("non-alphanumeric names should be rejected")
	}
	ch.Command("Ziggy")
	if ch.Name() != "Ziggy" {
		t.Errorf("Name = %q", ch.Name())
	}
	if len(room.Characters()) != 1 {
		t.Error("naming should complete the move into the spawn room")
	}

	// Normal parsing from here on.
	*msgs = nil
	ch.Command("look")
	if len(*msgs) == 0 || !strings.Contains((*msgs)[0], "Marsh") {
		t.Errorf("look after naming should describe the room, got %v", *msgs)
	}
}

func TestDispatchUnknownVerb(t *testing.T) {
	ch, msgs := newPlayer(t)
	err := ch.Dispatch("warble", []string{"warble"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
	ch.Command("warble")
	if len(*msgs) == 0 || !strings.Contains((*msgs)[0], "not recognized") {
		t.Errorf("messages = %v", *msgs)
	}
}

func TestUnterminatedQuoteHint(t *testing.T) {
	ch, msgs := newPlayer(t)
	ch.Command(`"hello everyone`)
	joined := strings.Join(*msgs, "\n")
	if !strings.Contains(joined, "forget a \"") {
		t.Errorf("expected a quote hint, got %v", *msgs)
	}
}

func TestQuotedSayShortcut(t *testing.T) {
	speaker, _ := newPlayer(t)
	speaker.SetName("Ann")
	listener, heard := newPlayer(t)
	room := NewLocation("Dock", "A dock.")
	if err := speaker.SetLocation(room); err != nil {
		t.Fatal(err)
	}
	if err := listener.SetLocation(room); err != nil {
		t.Fatal(err)
	}

	speaker.Command(`"hello there"`)
	joined := strings.Join(*heard, "\n")
	if !strings.Contains(joined, "hello there") || !strings.Contains(joined, "Ann") {
		t.Errorf("listener heard %v", *heard)
	}
}

func TestGoCommandFilters(t *testing.T) {
	human := NewClass("Human", BaseCharacterClass()).Finalize()
	ch, msgs := newTestChar(t, human)
	here := NewLocation("Yard", "A yard.")
	there := NewLocation("Keep", "A keep.")

	hidden := NewExit("north", there)
	hidden.Interact.ExcludeClass(human)
	hidden.Perceive.ExcludeClass(human)
	here.AddExit(hidden)

	locked := NewExit("gate", there)
	locked.Interact.ExcludeClass(human)
	here.AddExit(locked)

	open := NewExit("south", there, "s")
	here.AddExit(open)

	if err := ch.SetLocation(here); err != nil {
		t.Fatal(err)
	}

	ch.Command("go north")
	if !strings.Contains(strings.Join(*msgs, "\n"), "No exit") {
		t.Errorf("an imperceivable exit should look nonexistent, got %v", *msgs)
	}
	*msgs = nil
	ch.Command("go gate")
	if !strings.Contains(strings.Join(*msgs, "\n"), "inaccessible") {
		t.Errorf("a visible but unusable exit should say so, got %v", *msgs)
	}
	ch.Command("go s")
	if ch.Location() != there {
		t.Error("alias should move the character")
	}
}

func weaponClass(t *testing.T, name, verb string, log *[]string) *ItemClass {
	t.Helper()
	ic := NewItemClass(name, inventory.NewSlot("right hand"))
	ic.Declare(NewCommand(recordingAction(verb, verb, log)))
	ic.Finalize()
	return ic
}

func TestEquipDisplacesSlotOccupant(t *testing.T) {
	base := NewClass("Fighter", BaseCharacterClass())
	base.SetEquipSlots("right hand")
	base.Finalize()
	ch, _ := newTestChar(t, base)

	var log []string
	sword := NewItem(weaponClass(t, "Sword", "slash", &log), nil)
	mace := NewItem(weaponClass(t, "Mace", "smash", &log), nil)
	if err := ch.AddItem(sword, 1); err != nil {
		t.Fatal(err)
	}
	if err := ch.AddItem(mace, 1); err != nil {
		t.Fatal(err)
	}

	if err := ch.Equip(sword, true); err != nil {
		t.Fatalf("equip sword: %v", err)
	}
	if _, ok := ch.Commands().Get("slash"); !ok {
		t.Fatal("equipping should grant the item's verbs")
	}

	if err := ch.Equip(mace, true); err != nil {
		t.Fatalf("equip mace: %v", err)
	}
	if got := ch.Equipped(inventory.NewSlot("right hand")); got != mace {
		t.Errorf("slot holds %v, want the mace", got)
	}
	if _, ok := ch.Commands().Get("slash"); ok {
		t.Error("displaced item's verbs should be revoked")
	}
	if _, ok := ch.Commands().Get("smash"); !ok {
		t.Error("new item's verbs should be granted")
	}
	// The sword went back to inventory.
	if found := ch.Inventory().Find("sword", inventory.Query{}); len(found) != 1 {
		t.Errorf("sword not returned to inventory: %v", found)
	}
}

func TestEquipRejectsWrongSlot(t *testing.T) {
	base := NewClass("Monk", BaseCharacterClass())
	base.SetEquipSlots("head")
	base.Finalize()
	ch, msgs := newTestChar(t, base)

	var log []string
	sword := NewItem(weaponClass(t, "Sword", "slash", &log), nil)
	if err := ch.Equip(sword, false); err != nil {
		t.Fatalf("Equip: %v", err)
	}
	if !strings.Contains(strings.Join(*msgs, "\n"), "Cannot equip") {
		t.Errorf("messages = %v", *msgs)
	}
	if ch.Equipped(inventory.NewSlot("head")) != nil {
		t.Error("nothing should be equipped")
	}
}

func TestUnequipReturnsInventoryItems(t *testing.T) {
	base := NewClass("Fighter", BaseCharacterClass())
	base.SetEquipSlots("right hand")
	base.Finalize()
	ch, _ := newTestChar(t, base)
	slot := inventory.NewSlot("right hand")

	var log []string
	sword := NewItem(weaponClass(t, "Sword", "slash", &log), nil)
	if err := ch.AddItem(sword, 1); err != nil {
		t.Fatal(err)
	}
	if err := ch.Equip(sword, true); err != nil {
		t.Fatal(err)
	}
	if !ch.Inventory().Empty() {
		t.Fatal("equipping from inventory should remove the item")
	}
	if err := ch.Unequip(slot); err != nil {
		t.Fatalf("Unequip: %v", err)
	}
	if ch.Equipped(slot) != nil {
		t.Error("slot should be empty")
	}
	if _, ok := ch.Commands().Get("slash"); ok {
		t.Error("verbs should be revoked")
	}
	if ch.Inventory().Empty() {
		t.Error("item should return to inventory")
	}
}

func TestEquipHooksFire(t *testing.T) {
	base := NewClass("Fighter", BaseCharacterClass())
	base.SetEquipSlots("right hand")
	base.Finalize()
	ch, _ := newTestChar(t, base)

	var events []string
	ic := NewItemClass("Ring", inventory.NewSlot("right hand"))
	ic.OnEquip = func(*Item, *Character) { events = append(events, "on") }
	ic.OnUnequip = func(*Item, *Character) { events = append(events, "off") }
	ic.Finalize()

	ring := NewItem(ic, nil)
	if err := ch.Equip(ring, false); err != nil {
		t.Fatal(err)
	}
	if err := ch.Unequip(inventory.NewSlot("right hand")); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0] != "on" || events[1] != "off" {
		t.Errorf("events = %v", events)
	}
}

func TestDespawnTearsDownEverything(t *testing.T) {
	base := NewClass("Fighter", BaseCharacterClass())
	base.SetEquipSlots("right hand")
	base.Finalize()
	ch, msgs := newTestChar(t, base)
	room := NewLocation("Bog", "A bog.")
	if err := ch.SetLocation(room); err != nil {
		t.Fatal(err)
	}

	var log []string
	chestClass := newEntityClass(t, "Chest", recordingAction("open", "chest", &log))
	chest := NewEntity(chestClass)
	if err := chest.SetLocation(room); err != nil {
		t.Fatal(err)
	}
	sword := NewItem(weaponClass(t, "Sword", "slash", &log), nil)
	if err := ch.Equip(sword, false); err != nil {
		t.Fatal(err)
	}

	if err := ch.Despawn(); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if ch.Location() != nil {
		t.Error("location should be cleared")
	}
	if len(room.Characters()) != 0 {
		t.Error("room roster should drop the character")
	}
	if n := ch.Commands().Len(); n != 0 {
		t.Errorf("command table should be empty, has %d entries", n)
	}

	*msgs = nil
	ch.Command("look")
	if !strings.Contains(strings.Join(*msgs, "\n"), "died") {
		t.Errorf("dead parser should answer all input, got %v", *msgs)
	}
}

func TestHelpMenuGroupsByProvenance(t *testing.T) {
	wizard := NewClass("Wizard", BaseCharacterClass()).SetCommandLabel("Wizard Commands")
	wizard.Declare(NewCommand(testAction("cast")))
	wizard.Finalize()
	ch, _ := newTestChar(t, wizard)

	menu := ch.HelpMenu()
	defaultIdx := strings.Index(menu, "---Default Commands---")
	wizardIdx := strings.Index(menu, "---Wizard Commands---")
	if defaultIdx < 0 || wizardIdx < 0 {
		t.Fatalf("menu missing sections:\n%s", menu)
	}
	if !(defaultIdx < wizardIdx) {
		t.Errorf("most general class should come first:\n%s", menu)
	}
	if !strings.Contains(menu, "cast") {
		t.Errorf("wizard verbs missing:\n%s", menu)
	}
}

func TestPickupAndDrop(t *testing.T) {
	ch, _ := newPlayer(t)
	room := NewLocation("Shore", "A shore.")
	if err := ch.SetLocation(room); err != nil {
		t.Fatal(err)
	}

	shellClass := NewItemClass("Shell", inventory.NoSlot)
	shellClass.Finalize()
	shell := NewItem(shellClass, nil)
	if err := room.Inventory().Add(shell, 1); err != nil {
		t.Fatal(err)
	}

	ch.Command("pickup shell")
	if !room.Inventory().Empty() {
		t.Error("room should give up the item")
	}
	if len(ch.Inventory().Find("shell", inventory.Query{})) != 1 {
		t.Error("character should hold the item")
	}

	ch.Command("drop shell")
	if room.Inventory().Empty() {
		t.Error("room should regain the item")
	}
	if !ch.Inventory().Empty() {
		t.Error("character should no longer hold the item")
	}
}

func TestUseHooks(t *testing.T) {
	ch, msgs := newPlayer(t)
	used := 0
	potion := NewItemClass("Potion", inventory.NoSlot)
	potion.OnUse = func(it *Item, c *Character, argv []string) { used++ }
	potion.Finalize()
	if err := ch.AddItem(NewItem(potion, nil), 1); err != nil {
		t.Fatal(err)
	}
	ch.Command("use potion")
	if used != 1 {
		t.Errorf("OnUse fired %d times", used)
	}

	rock := NewItemClass("Rock", inventory.NoSlot)
	rock.Finalize()
	if err := ch.AddItem(NewItem(rock, nil), 1); err != nil {
		t.Fatal(err)
	}
	*msgs = nil
	ch.Command("use rock")
	if !strings.Contains(strings.Join(*msgs, "\n"), "no use") {
		t.Errorf("messages = %v", *msgs)
	}
}
