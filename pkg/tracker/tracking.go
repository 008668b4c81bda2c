package tracker

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/gstrazds/textworld-go/pkg/game"
	"github.com/gstrazds/textworld-go/pkg/transcript"
)

// trackingStage replays the trace events of each transcript against the game
// model, keeping a Progression synchronized with the interpreter's actual
// state. When no tracking-dependent field was requested the stage is a
// pass-through and touches nothing.
type trackingStage struct {
	req    Request
	model  *game.Model
	sender Sender
	logger *slog.Logger

	prog       *game.Progression
	lastAction *game.Action
	prevPolicy []*game.Action // nil until the first Step after Reset
	currPolicy []*game.Action
	moves      int
	started    bool
	terminal   bool
}

func newTrackingStage(req Request, model *game.Model, sender Sender, logger *slog.Logger) *trackingStage {
	return &trackingStage{
		req:    req,
		model:  model,
		sender: sender,
		logger: logger,
	}
}

// Reset starts a new episode: enables action tracing in the interpreter and
// builds a fresh progression from the model.
func (s *trackingStage) Reset(snap *Snapshot) error {
	if !s.req.Tracking() {
		return nil
	}
	if s.model == nil {
		return game.ErrMissingModel
	}

	if _, err := s.sender.Send("tw-trace-actions"); err != nil {
		return fmt.Errorf("failed to enable action tracing: %w", err)
	}

	s.prog = game.NewProgression(s.model, s.req.trackQuests())
	s.lastAction = nil
	s.prevPolicy = nil
	s.currPolicy = s.prog.WinningPolicy()
	s.moves = 0
	s.started = true
	s.terminal = false

	s.gather(snap)
	return nil
}

// Step resolves each trace event of the transcript, in order, and applies the
// matched actions to the progression. Events that resolve to no action are
// skipped; the progression is assumed untouched by them.
func (s *trackingStage) Step(command string, snap *Snapshot) error {
	if !s.req.Tracking() {
		return nil
	}
	if !s.started {
		return ErrNotStarted
	}
	if s.terminal {
		return ErrEpisodeOver
	}

	events, clean := transcript.ExtractEvents(snap.Feedback)
	snap.Feedback = clean
	snap.Won = snap.Won || strings.Contains(clean, wonMarker)
	snap.Lost = snap.Lost || strings.Contains(clean, lostMarker)
	snap.Done = snap.Won || snap.Lost

	s.prevPolicy = s.currPolicy
	for _, event := range events {
		s.lastAction = s.model.DetectAction(event, s.prog.ValidActions())
		if s.lastAction == nil {
			// The event name didn't match any valid action; the
			// issued command itself may still be applicable.
			s.lastAction = s.prog.ActionIfCommandApplicable(command)
		}

		if s.lastAction == nil {
			s.logger.Debug("unresolved trace event",
				"event", event,
				"command", command)
			continue
		}

		s.prog.Update(s.lastAction)
		s.currPolicy = s.prog.WinningPolicy()
		s.moves++
	}

	s.gather(snap)
	if snap.Done {
		s.terminal = true
	}
	return nil
}

// Copy returns an independent stage: progression and policies are deep
// copied, the model and sender stay shared.
func (s *trackingStage) Copy() *trackingStage {
	clone := newTrackingStage(s.req, s.model, s.sender, s.logger)
	clone.lastAction = s.lastAction
	clone.moves = s.moves
	clone.started = s.started
	clone.terminal = s.terminal
	if s.prog != nil {
		clone.prog = s.prog.Copy()
	}
	if s.prevPolicy != nil {
		clone.prevPolicy = append([]*game.Action(nil), s.prevPolicy...)
	}
	if s.currPolicy != nil {
		clone.currPolicy = append([]*game.Action(nil), s.currPolicy...)
	}
	return clone
}

// gather fills the tracking-dependent snapshot fields.
func (s *trackingStage) gather(snap *Snapshot) {
	if s.req.Moves {
		moves := s.moves
		snap.Moves = &moves
	}

	if s.req.IntermediateReward {
		reward := s.intermediateReward(snap)
		snap.IntermediateReward = &reward
	}

	if s.req.PolicyCommands {
		snap.PolicyCommands = s.model.CommandsFromActions(s.currPolicy)
	}

	if s.req.AdmissibleCommands {
		commands := s.model.CommandsFromActions(s.prog.ValidActions())
		snap.AdmissibleCommands = sortedUnique(commands)
	}

	if s.req.LastAction && s.lastAction != nil {
		readable := s.model.HumanReadableAction(s.lastAction)
		snap.LastAction = &readable
	}

	if s.req.Facts {
		facts := s.prog.Facts()
		readable := make([]string, len(facts))
		for i, f := range facts {
			readable[i] = s.model.HumanReadableFact(f)
		}
		snap.Facts = readable
	}
}

// intermediateReward derives the reward signal for the last turn: winning and
// losing dominate, otherwise the sign of the winning-policy length change.
func (s *trackingStage) intermediateReward(snap *Snapshot) int {
	switch {
	case snap.Won:
		return 1
	case snap.Lost:
		return -1
	case s.prevPolicy == nil:
		return 0
	default:
		return sign(len(s.prevPolicy) - len(s.currPolicy))
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func sortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	sort.Strings(unique)
	return unique
}
