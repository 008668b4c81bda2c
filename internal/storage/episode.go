// Package storage persists replayed episodes so agent runs can be inspected
// after the fact.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gstrazds/textworld-go/pkg/tracker"
)

// EpisodeStep pairs an issued command with the snapshot it produced.
type EpisodeStep struct {
	Command  string            `json:"command"`
	Snapshot *tracker.Snapshot `json:"snapshot"`
}

// Episode is the stored record of one full replay: the reset snapshot
// followed by one step per command.
type Episode struct {
	ID        uuid.UUID         `json:"id"`
	GameFile  string            `json:"game_file,omitempty"`
	Initial   *tracker.Snapshot `json:"initial,omitempty"`
	Steps     []EpisodeStep     `json:"steps"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewEpisode starts an empty episode record.
func NewEpisode(gameFile string) *Episode {
	return &Episode{
		ID:        uuid.New(),
		GameFile:  gameFile,
		CreatedAt: time.Now(),
	}
}

// Store defines the interface for episode persistence.
type Store interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error

	// Close closes the storage connection
	Close() error

	// SaveEpisode saves an episode record
	SaveEpisode(ctx context.Context, ep *Episode) error

	// LoadEpisode retrieves an episode by ID.
	// Returns nil if the episode doesn't exist
	LoadEpisode(ctx context.Context, id uuid.UUID) (*Episode, error)

	// DeleteEpisode removes an episode by ID
	DeleteEpisode(ctx context.Context, id uuid.UUID) error
}
