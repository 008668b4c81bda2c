// Command console is an interactive viewer for recorded playthroughs: it
// steps through one transcript at a time and shows the tracked game state
// next to the feedback the player saw.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gstrazds/textworld-go/internal/config"
	"github.com/gstrazds/textworld-go/internal/logger"
	"github.com/gstrazds/textworld-go/pkg/game"
	"github.com/gstrazds/textworld-go/pkg/playthrough"
	"github.com/gstrazds/textworld-go/pkg/tracker"
)

func main() {
	playthroughFile := flag.String("playthrough", "", "recorded playthrough JSON (overrides PLAYTHROUGH_FILE)")
	gameFile := flag.String("game", "", "compiled game file with a sidecar .json model (overrides GAME_FILE)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg)

	if *playthroughFile == "" {
		*playthroughFile = cfg.PlaythroughFile
	}
	if *playthroughFile == "" {
		fmt.Fprintln(os.Stderr, "No playthrough file given (use -playthrough or PLAYTHROUGH_FILE)")
		os.Exit(1)
	}

	run, err := playthrough.Load(*playthroughFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load playthrough: %v\n", err)
		os.Exit(1)
	}
	if *gameFile == "" {
		*gameFile = run.GameFile
	}
	if *gameFile == "" {
		*gameFile = cfg.GameFile
	}

	var model *game.Model
	if *gameFile != "" && game.Compatible(*gameFile) {
		model, err = game.LoadModel(game.ModelFile(*gameFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load game model: %v\n", err)
			os.Exit(1)
		}
	}

	req := tracker.Request{
		Description: true,
		Inventory:   true,
		Score:       true,
		Moves:       true,
	}
	if model != nil {
		req.AdmissibleCommands = true
		req.PolicyCommands = true
		req.IntermediateReward = true
		req.Facts = true
		req.LastAction = true
		req.Objective = true
		req.MaxScore = true
	}

	pipe := tracker.New(model, req, run, log)

	p := tea.NewProgram(NewConsoleUI(pipe, run, model),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
