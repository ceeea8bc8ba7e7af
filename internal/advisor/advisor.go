// v1
// internal/advisor/advisor.go

// Package advisor turns a session snapshot into at most two phrased
// recommendations per cycle. Eligibility is a fixed ordered rule list and
// fully deterministic; only the wording of a message is drawn from a
// template pool through an injectable chooser.
package advisor

import (
	"time"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/learner"
	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// MaxPerCycle caps how many recommendations one generation pass returns.
const MaxPerCycle = 2

// suppressionDepth is how many of the most recent actions block their own
// re-suggestion.
const suppressionDepth = 3

// RecentWindow is the history window handed to Generate.
const RecentWindow = 5

// Recommendation is one suggested action with its phrased message. Value
// is nil for suggestions that carry no number and marshals as JSON null.
type Recommendation struct {
	Action  string   `json:"action"`
	Message string   `json:"message"`
	Value   *float64 `json:"value"`
}

// Input is the snapshot a generation pass works from. Recent holds the
// last RecentWindow action names, oldest first; Now supplies the local
// wall-clock for the time-gated lighting rule.
type Input struct {
	State       vehicle.CarState
	Preferences learner.Preferences
	Recent      []string
	Now         time.Time
}

// Recommender is the seam between the session coordinator and whatever
// produces suggestions. The rule engine is the in-tree implementation; a
// model-backed recommender can stand in without touching the session.
type Recommender interface {
	Generate(in Input) []Recommendation
	BreakReminder() Recommendation
}

// Engine is the rule-based Recommender.
type Engine struct {
	choose Chooser
}

// NewEngine builds the rule engine. A nil chooser falls back to random
// phrase selection.
func NewEngine(choose Chooser) *Engine {
	if choose == nil {
		choose = randomChooser
	}
	return &Engine{choose: choose}
}

// Generate evaluates the rule list in order against the snapshot and
// returns the first MaxPerCycle eligible recommendations. A nil result
// means nothing to say this cycle.
func (e *Engine) Generate(in Input) []Recommendation {
	suppressed := suppressionSet(in.Recent)
	var out []Recommendation
	for _, rule := range rules {
		if len(out) == MaxPerCycle {
			break
		}
		if rec, ok := rule(e, in, suppressed); ok {
			out = append(out, rec)
		}
	}
	return out
}

// BreakReminder returns the one-shot break suggestion.
func (e *Engine) BreakReminder() Recommendation {
	return Recommendation{
		Action:  vehicle.ActionTakeBreak,
		Message: e.pick(breakMessages),
	}
}

// suppressionSet collects the last suppressionDepth entries of the recent
// window.
func suppressionSet(recent []string) map[string]bool {
	start := len(recent) - suppressionDepth
	if start < 0 {
		start = 0
	}
	set := make(map[string]bool, suppressionDepth)
	for _, name := range recent[start:] {
		set[name] = true
	}
	return set
}

// greeted joins a random greeting with a rendered suggestion phrase for
// the action.
func (e *Engine) greeted(action string, value int) string {
	return e.pick(greetings) + " " + renderPhrase(e.pick(suggestionPhrases[action]), value)
}

func (e *Engine) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[e.choose(len(pool))%len(pool)]
}

func numberValue(v int) *float64 {
	f := float64(v)
	return &f
}
