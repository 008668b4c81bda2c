package tracker

import (
	"log/slog"

	"github.com/gstrazds/textworld-go/pkg/game"
)

// Pipeline composes the two stages explicitly: every transcript first passes
// the info stage, then the tracking stage. Calls are synchronous and the
// pipeline is not safe for concurrent use; use Copy to fork an episode.
type Pipeline struct {
	req      Request
	model    *game.Model
	info     *infoStage
	tracking *trackingStage
	started  bool
}

// New builds a pipeline for one interpreter session. The model may be nil
// when no tracking-dependent field is requested. The logger controls the
// pipeline's diagnostics; pass a quiet logger to disable them.
func New(model *game.Model, req Request, sender Sender, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		req:      req,
		model:    model,
		info:     newInfoStage(req, sender, logger),
		tracking: newTrackingStage(req, model, sender, logger),
	}
}

// Reset starts a new episode from the interpreter's initial transcript. It
// sends the one-time control commands that enable the transcript side
// channels and returns the first snapshot. Reset is legal in any state.
func (p *Pipeline) Reset(initialTranscript string) (*Snapshot, error) {
	if p.req.needsModel() && p.model == nil {
		return nil, game.ErrMissingModel
	}

	snap := &Snapshot{Feedback: initialTranscript}
	if err := p.info.Reset(snap); err != nil {
		return nil, err
	}
	if err := p.tracking.Reset(snap); err != nil {
		return nil, err
	}
	p.fillMetadata(snap)
	p.started = true
	return snap, nil
}

// Step consumes the transcript the interpreter printed for one issued command
// and returns the snapshot for that turn. After the episode ends, further
// calls fail with ErrEpisodeOver.
func (p *Pipeline) Step(command, transcript string) (*Snapshot, error) {
	if !p.started {
		return nil, ErrNotStarted
	}
	snap := &Snapshot{Feedback: transcript}
	if err := p.info.Step(snap); err != nil {
		return nil, err
	}
	if err := p.tracking.Step(command, snap); err != nil {
		return nil, err
	}
	p.fillMetadata(snap)
	return snap, nil
}

// fillMetadata copies the requested static model fields into the snapshot.
func (p *Pipeline) fillMetadata(snap *Snapshot) {
	if p.req.Objective {
		objective := p.model.Objective
		snap.Objective = &objective
	}
	if p.req.MaxScore {
		maxScore := p.model.MaxScore
		snap.MaxScore = &maxScore
	}
	if p.req.Verbs {
		snap.Verbs = p.model.Verbs
	}
	if p.req.CommandTemplates {
		snap.CommandTemplates = p.model.CommandTemplates
	}
}

// Copy forks the pipeline: mutable episode state is deep copied, the game
// model and the sender stay shared.
func (p *Pipeline) Copy() *Pipeline {
	return &Pipeline{
		req:      p.req,
		model:    p.model,
		info:     p.info.Copy(),
		tracking: p.tracking.Copy(),
		started:  p.started,
	}
}
