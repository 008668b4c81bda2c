// Package playthrough loads recorded interpreter sessions: the transcript
// printed at startup, the reply to each control command, and one transcript
// per issued command. A recording stands in for a live interpreter when
// replaying episodes or testing.
package playthrough

import (
	"encoding/json"
	"fmt"
	"os"
)

// Step is one recorded turn.
type Step struct {
	Command    string `json:"command"`
	Transcript string `json:"transcript"`
}

// Playthrough is a full recorded session for one game.
type Playthrough struct {
	GameFile       string            `json:"game_file,omitempty"`
	Initial        string            `json:"initial_transcript"`
	ControlReplies map[string]string `json:"control_replies,omitempty"`
	Steps          []Step            `json:"steps"`
}

// Load reads a recorded playthrough from a JSON file.
func Load(path string) (*Playthrough, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playthrough: %w", err)
	}

	var p Playthrough
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse playthrough %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid playthrough %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks that every recorded step has a command.
func (p *Playthrough) Validate() error {
	for i, s := range p.Steps {
		if s.Command == "" {
			return fmt.Errorf("step %d has no command", i)
		}
	}
	return nil
}

// Send returns the recorded reply to a control command, satisfying the
// tracker's Sender interface. Commands that were not recorded get an empty
// reply, which the tracker treats as "channel enabled, nothing to report".
func (p *Playthrough) Send(command string) (string, error) {
	return p.ControlReplies[command], nil
}
