package game

import (
	"sort"
	"strings"
)

// Progression is the mutable per-episode state derived from a Model: the
// current fact set plus quest progress. The model itself is shared by
// reference; one Progression belongs to exactly one episode.
type Progression struct {
	model       *Model
	facts       map[string]Fact
	trackQuests bool
	questIdx    int
}

// NewProgression starts a fresh episode from the model's initial facts.
// Quest tracking costs bookkeeping per update, so it is only enabled when
// the caller needs the winning policy.
func NewProgression(m *Model, trackQuests bool) *Progression {
	p := &Progression{
		model:       m,
		facts:       make(map[string]Fact, len(m.InitialFacts)),
		trackQuests: trackQuests,
	}
	for _, f := range m.InitialFacts {
		p.facts[f.Key()] = f
	}
	return p
}

// Model returns the shared game model.
func (p *Progression) Model() *Model {
	return p.model
}

// Facts returns the current fact set in a stable order.
func (p *Progression) Facts() []Fact {
	keys := make([]string, 0, len(p.facts))
	for k := range p.facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	facts := make([]Fact, len(keys))
	for i, k := range keys {
		facts[i] = p.facts[k]
	}
	return facts
}

// Holds reports whether a fact is currently true.
func (p *Progression) Holds(f Fact) bool {
	_, ok := p.facts[f.Key()]
	return ok
}

// ValidActions returns the actions whose preconditions all hold, in model
// order.
func (p *Progression) ValidActions() []*Action {
	var valid []*Action
	for i := range p.model.Actions {
		a := &p.model.Actions[i]
		if p.applicable(a) {
			valid = append(valid, a)
		}
	}
	return valid
}

// Update applies an action's effects to the fact set and moves quest
// progress forward or backward accordingly.
func (p *Progression) Update(a *Action) {
	for _, f := range a.Removes {
		delete(p.facts, f.Key())
	}
	for _, f := range a.Adds {
		p.facts[f.Key()] = f
	}
	p.adjustQuest(a)
}

// WinningPolicy returns the remaining quest actions leading to the goal.
// Returns nil when quest tracking is off, and an empty policy when the
// quest is complete.
func (p *Progression) WinningPolicy() []*Action {
	if !p.trackQuests {
		return nil
	}
	policy := make([]*Action, 0, len(p.model.Quest)-p.questIdx)
	for _, id := range p.model.Quest[p.questIdx:] {
		policy = append(policy, p.model.ActionByID(id))
	}
	return policy
}

// ActionIfCommandApplicable matches a raw player command against every action
// whose preconditions currently hold, without restricting to a candidate set.
// Used as fallback when a trace event can't be matched directly.
func (p *Progression) ActionIfCommandApplicable(command string) *Action {
	command = normalizeCommand(command)
	for i := range p.model.Actions {
		a := &p.model.Actions[i]
		if normalizeCommand(a.Command) == command && p.applicable(a) {
			return a
		}
	}
	return nil
}

// Copy returns an independent Progression sharing the read-only model.
func (p *Progression) Copy() *Progression {
	facts := make(map[string]Fact, len(p.facts))
	for k, f := range p.facts {
		facts[k] = f
	}
	return &Progression{
		model:       p.model,
		facts:       facts,
		trackQuests: p.trackQuests,
		questIdx:    p.questIdx,
	}
}

// adjustQuest advances progress when the applied action is the next quest
// step, otherwise checks whether it undid an earlier step: a completed quest
// action that is applicable again with its effects gone has to be redone, so
// progress regresses to it.
func (p *Progression) adjustQuest(a *Action) {
	if !p.trackQuests {
		return
	}
	if p.questIdx < len(p.model.Quest) && a.ID == p.model.Quest[p.questIdx] {
		p.questIdx++
		return
	}
	for j := 0; j < p.questIdx; j++ {
		qa := p.model.ActionByID(p.model.Quest[j])
		if p.applicable(qa) && !p.effectsHold(qa) {
			p.questIdx = j
			return
		}
	}
}

func (p *Progression) applicable(a *Action) bool {
	for _, f := range a.Preconditions {
		if !p.Holds(f) {
			return false
		}
	}
	return true
}

func (p *Progression) effectsHold(a *Action) bool {
	for _, f := range a.Adds {
		if !p.Holds(f) {
			return false
		}
	}
	return true
}

func normalizeCommand(command string) string {
	return strings.Join(strings.Fields(strings.ToLower(command)), " ")
}
