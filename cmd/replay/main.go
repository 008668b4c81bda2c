// Command replay runs a recorded playthrough through the tracking pipeline
// and prints one snapshot per turn. With -save, the resulting episode is
// persisted to Redis for later inspection.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gstrazds/textworld-go/internal/config"
	"github.com/gstrazds/textworld-go/internal/logger"
	"github.com/gstrazds/textworld-go/internal/storage"
	"github.com/gstrazds/textworld-go/pkg/game"
	"github.com/gstrazds/textworld-go/pkg/playthrough"
	"github.com/gstrazds/textworld-go/pkg/tracker"
)

func main() {
	playthroughFile := flag.String("playthrough", "", "recorded playthrough JSON (overrides PLAYTHROUGH_FILE)")
	gameFile := flag.String("game", "", "compiled game file with a sidecar .json model (overrides GAME_FILE)")
	save := flag.Bool("save", false, "persist the episode to Redis")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg)

	if *playthroughFile == "" {
		*playthroughFile = cfg.PlaythroughFile
	}
	if *gameFile == "" {
		*gameFile = cfg.GameFile
	}
	if *playthroughFile == "" {
		log.Error("No playthrough file given (use -playthrough or PLAYTHROUGH_FILE)")
		os.Exit(1)
	}

	run, err := playthrough.Load(*playthroughFile)
	if err != nil {
		log.Error("Failed to load playthrough", "file", *playthroughFile, "error", err)
		os.Exit(1)
	}
	if *gameFile == "" {
		*gameFile = run.GameFile
	}

	var model *game.Model
	if *gameFile != "" {
		if !game.Compatible(*gameFile) {
			log.Error("Game has no sidecar model", "game", *gameFile)
			os.Exit(1)
		}
		model, err = game.LoadModel(game.ModelFile(*gameFile))
		if err != nil {
			log.Error("Failed to load game model", "game", *gameFile, "error", err)
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

	ep := storage.NewEpisode(*gameFile)
	log.Info("Replaying playthrough",
		"file", *playthroughFile,
		"game", *gameFile,
		"steps", len(run.Steps),
		"episode_id", ep.ID)

	snap, err := pipe.Reset(run.Initial)
	if err != nil {
		log.Error("Reset failed", "error", err)
		os.Exit(1)
	}
	ep.Initial = snap
	printSnapshot("(reset)", snap)

	for i, step := range run.Steps {
		snap, err = pipe.Step(step.Command, step.Transcript)
		if err != nil {
			log.Error("Step failed", "step", i, "command", step.Command, "error", err)
			os.Exit(1)
		}
		ep.Steps = append(ep.Steps, storage.EpisodeStep{Command: step.Command, Snapshot: snap})
		printSnapshot(step.Command, snap)

		if snap.Done {
			log.Info("Episode ended", "won", snap.Won, "lost", snap.Lost, "turns", i+1)
			break
		}
	}

	if *save {
		store := storage.NewRedisStore(cfg.RedisURL, log)
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing storage", "error", err)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		if err := store.SaveEpisode(ctx, ep); err != nil {
			log.Error("Failed to save episode", "error", err)
			os.Exit(1)
		}
		log.Info("Episode saved", "episode_id", ep.ID)
	}
}

func printSnapshot(command string, snap *tracker.Snapshot) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render snapshot: %v\n", err)
		return
	}
	fmt.Printf("> %s\n%s\n", command, data)
}
