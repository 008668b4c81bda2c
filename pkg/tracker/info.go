package tracker

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gstrazds/textworld-go/pkg/transcript"
)

// infoStage extracts <tag> info blocks from each transcript and turns them
// into snapshot fields, carrying values over from the previous turn when a
// block was not printed.
type infoStage struct {
	req     Request
	sender  Sender
	logger  *slog.Logger
	tracked []string
	prev    map[string]*string
}

func newInfoStage(req Request, sender Sender, logger *slog.Logger) *infoStage {
	return &infoStage{
		req:    req,
		sender: sender,
		logger: logger,
	}
}

// Reset enables each requested tag with a `tw-extra-infos TAG` control
// command. The interpreter answers with the tag's current block, which seeds
// the first snapshot.
func (s *infoStage) Reset(snap *Snapshot) error {
	s.tracked = s.req.infoTags()
	s.prev = nil

	blocks := make(map[string]*string, len(s.tracked))
	for _, tag := range s.tracked {
		reply, err := s.sender.Send("tw-extra-infos " + tag)
		if err != nil {
			return fmt.Errorf("failed to enable extra info %q: %w", tag, err)
		}
		replyBlocks, _, err := transcript.ExtractInfoBlocks(reply, []string{tag})
		if err != nil {
			return err
		}
		blocks[tag] = replyBlocks[tag]
	}

	return s.gather(snap, blocks)
}

// Step strips the tracked info blocks from the snapshot feedback and fills
// the corresponding fields.
func (s *infoStage) Step(snap *Snapshot) error {
	blocks, clean, err := transcript.ExtractInfoBlocks(snap.Feedback, s.tracked)
	if err != nil {
		return err
	}
	snap.Feedback = clean
	return s.gather(snap, blocks)
}

// Copy returns an independent stage sharing the sender.
func (s *infoStage) Copy() *infoStage {
	clone := newInfoStage(s.req, s.sender, s.logger)
	clone.tracked = append([]string(nil), s.tracked...)
	if s.prev != nil {
		clone.prev = make(map[string]*string, len(s.prev))
		for k, v := range s.prev {
			clone.prev[k] = v
		}
	}
	return clone
}

// gather merges the blocks of this turn with the carried-over values of the
// previous one, coerces numeric fields and sets the end-of-episode flags.
func (s *infoStage) gather(snap *Snapshot, blocks map[string]*string) error {
	if s.prev != nil {
		for tag, value := range blocks {
			if value == nil {
				blocks[tag] = s.prev[tag]
			}
		}
	}
	s.prev = blocks

	snap.Description = blocks["description"]
	snap.Inventory = blocks["inventory"]

	var err error
	if snap.Score, err = s.intField(blocks, "score"); err != nil {
		return err
	}
	if snap.Moves, err = s.intField(blocks, "moves"); err != nil {
		return err
	}

	snap.Won = strings.Contains(snap.Feedback, wonMarker)
	snap.Lost = strings.Contains(snap.Feedback, lostMarker)
	snap.Done = snap.Won || snap.Lost
	return nil
}

func (s *infoStage) intField(blocks map[string]*string, tag string) (*int, error) {
	value := blocks[tag]
	if value == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("malformed %s block %q: %w", tag, *value, err)
	}
	return &n, nil
}
