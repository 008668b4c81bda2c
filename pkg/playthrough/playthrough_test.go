package playthrough

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	data := `{
		"game_file": "games/tw-game.z8",
		"initial_transcript": "Welcome!",
		"control_replies": {"tw-extra-infos score": "<score>\n0</score>"},
		"steps": [
			{"command": "open chest", "transcript": "Opened."}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Initial != "Welcome!" {
		t.Errorf("Initial = %q", p.Initial)
	}
	if len(p.Steps) != 1 || p.Steps[0].Command != "open chest" {
		t.Errorf("Steps = %+v", p.Steps)
	}

	reply, err := p.Send("tw-extra-infos score")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply != "<score>\n0</score>" {
		t.Errorf("Send reply = %q", reply)
	}

	reply, _ = p.Send("tw-trace-actions")
	if reply != "" {
		t.Errorf("unrecorded control command reply = %q, want empty", reply)
	}
}

func TestLoad_InvalidStep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	data := `{"initial_transcript": "hi", "steps": [{"transcript": "no command"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for step without command")
	}
}
