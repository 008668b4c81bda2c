// Package game loads and queries the precomputed game-model description that
// sits next to a compiled game file. The model is read-only; per-episode
// mutable state lives in Progression.
package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingModel is returned when a game has no sidecar .json model. Only
// games generated together with their model description can be tracked.
var ErrMissingModel = errors.New("no game model available")

// Fact is a single proposition about the game world, e.g. open(wooden door).
type Fact struct {
	Name      string   `json:"name"`
	Arguments []string `json:"arguments,omitempty"`
}

// Key returns a canonical identity string for the fact.
func (f Fact) Key() string {
	if len(f.Arguments) == 0 {
		return f.Name
	}
	return f.Name + "(" + strings.Join(f.Arguments, ",") + ")"
}

// Action is one concrete action of the game. Command is the exact text a
// player types; Event is the descriptor the interpreter traces when the
// action's underlying rule fires.
type Action struct {
	ID            string `json:"id"`
	Command       string `json:"command"`
	Event         string `json:"event"`
	Preconditions []Fact `json:"preconditions,omitempty"`
	Adds          []Fact `json:"adds,omitempty"`
	Removes       []Fact `json:"removes,omitempty"`
}

// Model is the static description of one game: its actions, initial facts and
// quest. Loaded once and shared by reference; never mutated after load.
type Model struct {
	Title            string            `json:"title,omitempty"`
	Objective        string            `json:"objective,omitempty"`
	MaxScore         int               `json:"max_score,omitempty"`
	Verbs            []string          `json:"verbs,omitempty"`
	CommandTemplates []string          `json:"command_templates,omitempty"`
	Entities         map[string]string `json:"entities,omitempty"` // id -> display name
	InitialFacts     []Fact            `json:"initial_facts,omitempty"`
	Actions          []Action          `json:"actions"`
	Quest            []string          `json:"quest,omitempty"` // ordered action ids
}

// LoadModel reads a game-model description from a JSON file. A missing file
// is reported as ErrMissingModel.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingModel, path)
		}
		return nil, fmt.Errorf("failed to read game model: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse game model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game model %s: %w", path, err)
	}
	return &m, nil
}

// ModelFile returns the sidecar model path for a compiled game file,
// e.g. games/tw-game.z8 -> games/tw-game.json.
func ModelFile(gamefile string) string {
	return strings.TrimSuffix(gamefile, filepath.Ext(gamefile)) + ".json"
}

// Compatible reports whether path points to a trackable game: a compiled
// .z8 or .ulx file with its model description next to it.
func Compatible(path string) bool {
	switch filepath.Ext(path) {
	case ".z8", ".ulx":
	default:
		return false
	}
	_, err := os.Stat(ModelFile(path))
	return err == nil
}

// Validate checks internal consistency: unique action ids and quest entries
// referring to known actions.
func (m *Model) Validate() error {
	ids := make(map[string]bool, len(m.Actions))
	for _, a := range m.Actions {
		if a.ID == "" {
			return fmt.Errorf("action with empty id (command %q)", a.Command)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate action id %q", a.ID)
		}
		ids[a.ID] = true
	}
	for _, id := range m.Quest {
		if !ids[id] {
			return fmt.Errorf("quest references unknown action %q", id)
		}
	}
	return nil
}

// ActionByID returns the action with the given id, or nil.
func (m *Model) ActionByID(id string) *Action {
	for i := range m.Actions {
		if m.Actions[i].ID == id {
			return &m.Actions[i]
		}
	}
	return nil
}

// DetectAction finds the candidate whose trace-event descriptor matches the
// given event name. Returns nil when no candidate matches.
func (m *Model) DetectAction(event string, candidates []*Action) *Action {
	for _, a := range candidates {
		if a.Event == event {
			return a
		}
	}
	return nil
}

// CommandsFromActions renders the player command for each action. The result
// may contain duplicates when distinct actions type the same.
func (m *Model) CommandsFromActions(actions []*Action) []string {
	commands := make([]string, len(actions))
	for i, a := range actions {
		commands[i] = a.Command
	}
	return commands
}

// HumanReadableAction renders an action for display.
func (m *Model) HumanReadableAction(a *Action) string {
	return a.Command
}

// HumanReadableFact renders a fact for display, substituting entity display
// names for entity ids.
func (m *Model) HumanReadableFact(f Fact) string {
	if len(f.Arguments) == 0 {
		return f.Name
	}
	names := make([]string, len(f.Arguments))
	for i, arg := range f.Arguments {
		names[i] = m.entityName(arg)
	}
	return f.Name + "(" + strings.Join(names, ", ") + ")"
}

func (m *Model) entityName(id string) string {
	if name, ok := m.Entities[id]; ok {
		return cases.Title(language.English).String(name)
	}
	return id
}
