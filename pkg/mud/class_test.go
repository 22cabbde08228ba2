package mud

import (
	"testing"
)

func testAction(name string) *Action {
	return &Action{
		Name: name,
		Help: "test action " + name,
		Run:  func([]any, map[string]any, []string) {},
	}
}

func TestLinearizeDiamond(t *testing.T) {
	a := NewClass("A")
	b := NewClass("B", a)
	c := NewClass("C", a)
	d := NewClass("D", b, c)

	got := Linearize(d)
	want := []*Class{a, c, b, d}
	if len(got) != len(want) {
		t.Fatalf("Linearize returned %d classes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linearize[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInheritedCommandsMostSpecificWins(t *testing.T) {
	a := NewClass("A")
	a.Declare(NewCommand(testAction("open")))
	a.Declare(NewCommand(testAction("wave")))
	a.Finalize()

	b := NewClass("B", a)
	overrideOpen := NewCommand(testAction("open"))
	b.Declare(overrideOpen)
	b.Finalize()

	cmds := b.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if cmds["open"] != overrideOpen {
		t.Error("derived class's open should shadow the inherited one")
	}
	if cmds["wave"] == nil {
		t.Error("inherited wave should survive the merge")
	}
}

func TestDiamondLeftParentBeatsRight(t *testing.T) {
	a := NewClass("A").Finalize()
	b := NewClass("B", a)
	fromB := NewCommand(testAction("open"))
	b.Declare(fromB).Finalize()
	c := NewClass("C", a)
	fromC := NewCommand(testAction("open"))
	c.Declare(fromC).Finalize()

	d := NewClass("D", b, c).Finalize()
	if d.Commands()["open"] != fromB {
		t.Error("the leftmost (most specific) parent's command should win the diamond")
	}
}

func TestOwnDeclarationAlwaysWins(t *testing.T) {
	a := NewClass("A")
	a.Declare(NewCommand(testAction("open"))).Finalize()

	b := NewClass("B", a)
	own := NewCommand(testAction("open"))
	b.Declare(own)
	b.Finalize()
	if b.Commands()["open"] != own {
		t.Error("a class's direct declaration must beat anything inherited")
	}
}

func TestDeclareStampsProvenance(t *testing.T) {
	c := NewClass("Wizard").SetCommandLabel("Wizard Commands")
	cmd := NewCommand(testAction("cast"))
	c.Declare(cmd).Finalize()
	if cmd.Label() != "Wizard Commands" {
		t.Errorf("Label = %q, want %q", cmd.Label(), "Wizard Commands")
	}
}

func TestEquipSlotInheritance(t *testing.T) {
	a := NewClass("A")
	a.SetEquipSlots("right hand", "torso")
	a.Finalize()
	b := NewClass("B", a).Finalize()
	c := NewClass("C", b)
	c.SetEquipSlots("tail")
	c.Finalize()

	if got := len(b.EquipSlots()); got != 2 {
		t.Errorf("B should inherit A's 2 slots, got %d", got)
	}
	if got := len(c.EquipSlots()); got != 1 {
		t.Errorf("C's own declaration should override, got %d slots", got)
	}
}

func TestIsA(t *testing.T) {
	a := NewClass("A")
	b := NewClass("B", a)
	other := NewClass("Other")
	if !b.IsA(a) || !b.IsA(b) {
		t.Error("IsA should cover self and ancestors")
	}
	if b.IsA(other) {
		t.Error("IsA matched an unrelated class")
	}
}
