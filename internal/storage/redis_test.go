package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/gstrazds/textworld-go/pkg/tracker"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRedisStore(mr.Addr(), logger), mr
}

func testEpisode() *Episode {
	moves := 1
	reward := 1
	ep := NewEpisode("games/tw-game.z8")
	ep.Steps = append(ep.Steps, EpisodeStep{
		Command: "open chest",
		Snapshot: &tracker.Snapshot{
			Feedback:           "You open the chest.",
			Moves:              &moves,
			IntermediateReward: &reward,
			AdmissibleCommands: []string{"close chest", "take carrot"},
		},
	})
	return ep
}

func TestRedisStore_SaveAndLoadEpisode(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	}()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	ep := testEpisode()
	if err := store.SaveEpisode(ctx, ep); err != nil {
		t.Fatalf("Failed to save episode: %v", err)
	}

	loaded, err := store.LoadEpisode(ctx, ep.ID)
	if err != nil {
		t.Fatalf("Failed to load episode: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil episode")
	}
	if loaded.ID != ep.ID {
		t.Errorf("Expected ID %v, got %v", ep.ID, loaded.ID)
	}
	if loaded.GameFile != "games/tw-game.z8" {
		t.Errorf("GameFile = %q", loaded.GameFile)
	}
	if len(loaded.Steps) != 1 {
		t.Fatalf("Expected 1 step, got %d", len(loaded.Steps))
	}
	snap := loaded.Steps[0].Snapshot
	if snap.Moves == nil || *snap.Moves != 1 {
		t.Errorf("Moves = %v", snap.Moves)
	}
	if len(snap.AdmissibleCommands) != 2 {
		t.Errorf("AdmissibleCommands = %v", snap.AdmissibleCommands)
	}
}

func TestRedisStore_LoadNonExistentEpisode(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	loaded, err := store.LoadEpisode(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing episode, got: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil episode, got %+v", loaded)
	}
}

func TestRedisStore_DeleteEpisode(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	ep := testEpisode()
	if err := store.SaveEpisode(ctx, ep); err != nil {
		t.Fatalf("Failed to save episode: %v", err)
	}
	if err := store.DeleteEpisode(ctx, ep.ID); err != nil {
		t.Fatalf("Failed to delete episode: %v", err)
	}
	loaded, err := store.LoadEpisode(ctx, ep.ID)
	if err != nil {
		t.Fatalf("Load after delete errored: %v", err)
	}
	if loaded != nil {
		t.Error("Expected episode to be gone after delete")
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	ep := testEpisode()
	if err := store.SaveEpisode(ctx, ep); err != nil {
		t.Fatalf("Failed to save episode: %v", err)
	}
	loaded, err := store.LoadEpisode(ctx, ep.ID)
	if err != nil {
		t.Fatalf("Failed to load episode: %v", err)
	}
	if loaded == nil || loaded.ID != ep.ID {
		t.Errorf("loaded = %+v", loaded)
	}
	if err := store.DeleteEpisode(ctx, ep.ID); err != nil {
		t.Fatalf("Failed to delete episode: %v", err)
	}
	if loaded, _ := store.LoadEpisode(ctx, ep.ID); loaded != nil {
		t.Error("Expected nil after delete")
	}
}
