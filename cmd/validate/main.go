// Command validate checks game-model and playthrough JSON files beyond what
// the loaders enforce, reporting every problem instead of stopping at the
// first.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gstrazds/textworld-go/pkg/game"
	"github.com/gstrazds/textworld-go/pkg/playthrough"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <model.json|playthrough.json> [...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		v := &Validator{}
		if err := v.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			failed = true
			continue
		}
		for _, msg := range v.errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filename, msg)
		}
		if len(v.errors) > 0 {
			failed = true
		} else {
			fmt.Printf("%s: ok\n", filename)
		}
	}
	if failed {
		os.Exit(1)
	}
}

type Validator struct {
	errors []string
}

func (v *Validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *Validator) validateFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON")
	}

	// A playthrough has steps; a model has actions.
	var probe struct {
		Steps   []json.RawMessage `json:"steps"`
		Actions []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch {
	case probe.Actions != nil:
		v.validateModel(filename)
	case probe.Steps != nil:
		v.validatePlaythrough(filename)
	default:
		return fmt.Errorf("neither a game model (no actions) nor a playthrough (no steps)")
	}
	return nil
}

func (v *Validator) validateModel(filename string) {
	m, err := game.LoadModel(filename)
	if err != nil {
		v.errorf("%v", err)
		return
	}

	for _, a := range m.Actions {
		if a.Command == "" {
			v.errorf("action %q has no command", a.ID)
		}
		if a.Event == "" {
			v.errorf("action %q has no trace event; it can only resolve via command fallback", a.ID)
		}
		if strings.ContainsAny(a.Event, "()") {
			v.errorf("action %q: event %q contains parentheses and will be dropped as a subrule trace", a.ID, a.Event)
		}
	}

	events := make(map[string]string, len(m.Actions))
	for _, a := range m.Actions {
		if a.Event == "" {
			continue
		}
		if other, dup := events[a.Event]; dup {
			v.errorf("actions %q and %q share trace event %q", other, a.ID, a.Event)
		}
		events[a.Event] = a.ID
	}

	if len(m.Quest) == 0 {
		v.errorf("model has no quest; winning policy and rewards will be empty")
	}
}

func (v *Validator) validatePlaythrough(filename string) {
	p, err := playthrough.Load(filename)
	if err != nil {
		v.errorf("%v", err)
		return
	}

	if p.Initial == "" {
		v.errorf("playthrough has no initial transcript")
	}
	for cmd := range p.ControlReplies {
		if cmd != "tw-trace-actions" && !strings.HasPrefix(cmd, "tw-extra-infos ") {
			v.errorf("unexpected control command %q in control_replies", cmd)
		}
	}
}
