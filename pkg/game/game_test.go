package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testModel is a two-room game: open the chest, take the carrot, put it in
// the chest. The quest is open -> take -> insert.
func testModel() *Model {
	factOpen := Fact{Name: "open", Arguments: []string{"chest"}}
	factClosed := Fact{Name: "closed", Arguments: []string{"chest"}}
	factCarrotFloor := Fact{Name: "at", Arguments: []string{"carrot", "kitchen"}}
	factCarrotHeld := Fact{Name: "in", Arguments: []string{"carrot", "inventory"}}
	factCarrotChest := Fact{Name: "in", Arguments: []string{"carrot", "chest"}}

	return &Model{
		Title:    "tw-test",
		MaxScore: 3,
		Entities: map[string]string{
			"chest":  "wooden chest",
			"carrot": "carrot",
		},
		InitialFacts: []Fact{factClosed, factCarrotFloor},
		Actions: []Action{
			{
				ID:            "open-chest",
				Command:       "open chest",
				Event:         "opening the wooden chest",
				Preconditions: []Fact{factClosed},
				Adds:          []Fact{factOpen},
				Removes:       []Fact{factClosed},
			},
			{
				ID:            "close-chest",
				Command:       "close chest",
				Event:         "closing the wooden chest",
				Preconditions: []Fact{factOpen},
				Adds:          []Fact{factClosed},
				Removes:       []Fact{factOpen},
			},
			{
				ID:            "take-carrot",
				Command:       "take carrot",
				Event:         "taking the carrot",
				Preconditions: []Fact{factCarrotFloor},
				Adds:          []Fact{factCarrotHeld},
				Removes:       []Fact{factCarrotFloor},
			},
			{
				ID:            "insert-carrot",
				Command:       "insert carrot into chest",
				Event:         "inserting the carrot into the wooden chest",
				Preconditions: []Fact{factOpen, factCarrotHeld},
				Adds:          []Fact{factCarrotChest},
				Removes:       []Fact{factCarrotHeld},
			},
		},
		Quest: []string{"open-chest", "take-carrot", "insert-carrot"},
	}
}

func TestProgression_ValidActions(t *testing.T) {
	p := NewProgression(testModel(), false)

	commands := p.Model().CommandsFromActions(p.ValidActions())
	want := []string{"open chest", "take carrot"}
	if len(commands) != len(want) {
		t.Fatalf("valid commands = %v, want %v", commands, want)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Errorf("valid commands[%d] = %q, want %q", i, commands[i], want[i])
		}
	}

	p.Update(p.Model().ActionByID("open-chest"))
	if len(p.ValidActions()) != 2 { // close chest, take carrot
		t.Errorf("after opening, valid actions = %v", p.Model().CommandsFromActions(p.ValidActions()))
	}
}

func TestProgression_WinningPolicyShrinksAndGrows(t *testing.T) {
	m := testModel()
	p := NewProgression(m, true)

	if got := len(p.WinningPolicy()); got != 3 {
		t.Fatalf("initial policy length = %d, want 3", got)
	}

	p.Update(m.ActionByID("open-chest"))
	if got := len(p.WinningPolicy()); got != 2 {
		t.Errorf("policy length after open = %d, want 2", got)
	}

	// Closing the chest undoes the first quest step.
	p.Update(m.ActionByID("close-chest"))
	if got := len(p.WinningPolicy()); got != 3 {
		t.Errorf("policy length after close = %d, want 3", got)
	}

	p.Update(m.ActionByID("open-chest"))
	p.Update(m.ActionByID("take-carrot"))
	p.Update(m.ActionByID("insert-carrot"))
	if got := len(p.WinningPolicy()); got != 0 {
		t.Errorf("policy length after finishing = %d, want 0", got)
	}
}

func TestProgression_WinningPolicyDisabled(t *testing.T) {
	p := NewProgression(testModel(), false)
	if p.WinningPolicy() != nil {
		t.Error("expected nil policy when quest tracking is off")
	}
}

func TestModel_DetectAction(t *testing.T) {
	m := testModel()
	p := NewProgression(m, false)

	a := m.DetectAction("taking the carrot", p.ValidActions())
	if a == nil || a.ID != "take-carrot" {
		t.Errorf("DetectAction = %v, want take-carrot", a)
	}

	if a := m.DetectAction("eating the carrot", p.ValidActions()); a != nil {
		t.Errorf("DetectAction for unknown event = %v, want nil", a)
	}
}

func TestProgression_ActionIfCommandApplicable(t *testing.T) {
	m := testModel()
	p := NewProgression(m, false)

	a := p.ActionIfCommandApplicable("  OPEN   chest ")
	if a == nil || a.ID != "open-chest" {
		t.Errorf("ActionIfCommandApplicable = %v, want open-chest", a)
	}

	// Preconditions not met: the chest is still closed.
	if a := p.ActionIfCommandApplicable("insert carrot into chest"); a != nil {
		t.Errorf("expected nil for inapplicable command, got %v", a)
	}
}

func TestProgression_CopyIsIndependent(t *testing.T) {
	m := testModel()
	p := NewProgression(m, true)
	clone := p.Copy()

	p.Update(m.ActionByID("open-chest"))

	if clone.Holds(Fact{Name: "open", Arguments: []string{"chest"}}) {
		t.Error("mutating the original leaked into the clone")
	}
	if clone.Model() != p.Model() {
		t.Error("clone should share the model by reference")
	}
}

func TestModel_HumanReadableFact(t *testing.T) {
	m := testModel()
	got := m.HumanReadableFact(Fact{Name: "in", Arguments: []string{"carrot", "chest"}})
	want := "in(Carrot, Wooden Chest)"
	if got != want {
		t.Errorf("HumanReadableFact = %q, want %q", got, want)
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, ErrMissingModel) {
		t.Errorf("error for missing file = %v, want ErrMissingModel", err)
	}

	path := filepath.Join(dir, "tw-game.json")
	data := `{
		"title": "tw-test",
		"actions": [
			{"id": "look", "command": "look", "event": "looking"}
		],
		"quest": ["look"]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if m.Title != "tw-test" || len(m.Actions) != 1 {
		t.Errorf("unexpected model: %+v", m)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"actions": [], "quest": ["nope"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModel(bad); err == nil {
		t.Error("expected validation error for quest referencing unknown action")
	}
}

func TestCompatible(t *testing.T) {
	dir := t.TempDir()
	gamefile := filepath.Join(dir, "tw-game.z8")

	if Compatible(gamefile) {
		t.Error("game without sidecar model should not be compatible")
	}
	if err := os.WriteFile(ModelFile(gamefile), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Compatible(gamefile) {
		t.Error("game with sidecar model should be compatible")
	}
	if Compatible(filepath.Join(dir, "tw-game.txt")) {
		t.Error("unsupported extension should not be compatible")
	}
}
