// Package tracker keeps a symbolic view of a running game synchronized with
// the transcripts its interpreter prints. It is organized as an explicit
// two-stage pipeline: an info stage that handles <tag> blocks and an action
// tracking stage that replays trace events against the game model.
package tracker

import "errors"

// ErrEpisodeOver is returned when Step is called after the episode already
// ended. Reset starts a new episode.
var ErrEpisodeOver = errors.New("episode is over")

// ErrNotStarted is returned when Step is called before Reset.
var ErrNotStarted = errors.New("tracker not started")

// Markers the game prints when an episode ends.
const (
	wonMarker  = "*** The End ***"
	lostMarker = "*** You lost! ***"
)

// Request selects which Snapshot fields the caller wants. Fields that are
// not requested are never computed and stay absent from snapshots.
type Request struct {
	Description        bool
	Inventory          bool
	Score              bool
	Moves              bool
	AdmissibleCommands bool
	PolicyCommands     bool
	IntermediateReward bool
	Facts              bool
	LastAction         bool

	// Static game metadata, copied from the model into every snapshot.
	Objective        bool
	MaxScore         bool
	Verbs            bool
	CommandTemplates bool
}

// Tracking reports whether any requested field requires replaying trace
// events against the game model.
func (r Request) Tracking() bool {
	return r.AdmissibleCommands ||
		r.PolicyCommands ||
		r.IntermediateReward ||
		r.Facts ||
		r.LastAction
}

// needsModel reports whether any requested field can only be produced with a
// game model.
func (r Request) needsModel() bool {
	return r.Tracking() ||
		r.Objective ||
		r.MaxScore ||
		r.Verbs ||
		r.CommandTemplates
}

// trackQuests reports whether the winning policy has to be maintained.
func (r Request) trackQuests() bool {
	return r.IntermediateReward || r.PolicyCommands
}

// infoTags lists the transcript tags that must be enabled for the requested
// fields, in registry order.
func (r Request) infoTags() []string {
	var tags []string
	if r.Description {
		tags = append(tags, "description")
	}
	if r.Inventory {
		tags = append(tags, "inventory")
	}
	if r.Score {
		tags = append(tags, "score")
	}
	if r.Moves {
		tags = append(tags, "moves")
	}
	return tags
}

// Snapshot is the structured result of one turn. Feedback is the transcript
// with all protocol markup stripped. Optional fields are nil unless their
// Request flag was set.
type Snapshot struct {
	Feedback string `json:"feedback"`

	Description *string `json:"description,omitempty"`
	Inventory   *string `json:"inventory,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Moves       *int    `json:"moves,omitempty"`

	Won  bool `json:"won"`
	Lost bool `json:"lost"`
	Done bool `json:"done"`

	IntermediateReward *int     `json:"intermediate_reward,omitempty"`
	AdmissibleCommands []string `json:"admissible_commands,omitempty"`
	PolicyCommands     []string `json:"policy_commands,omitempty"`
	LastAction         *string  `json:"last_action,omitempty"`
	Facts              []string `json:"facts,omitempty"`

	Objective        *string  `json:"objective,omitempty"`
	MaxScore         *int     `json:"max_score,omitempty"`
	Verbs            []string `json:"verbs,omitempty"`
	CommandTemplates []string `json:"command_templates,omitempty"`
}

// Sender issues a control command to the interpreter and returns the text it
// prints in response. The tracker only ever sends the one-time commands that
// enable the transcript side channels.
type Sender interface {
	Send(command string) (string, error)
}
