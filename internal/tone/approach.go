package tone

import (
	"math/rand"
	"sync"
	"time"
)

// Approach is a structural opening strategy. One is picked uniformly at
// random on every single-shot generation call so repeated generations for the
// same user do not collapse into one structure. The randomness is a
// requirement, not an accident; selections are never cached between calls.
type Approach struct {
	Name        string // Catalog key.
	Description string // What the strategy is.
	Hook        string // Instruction injected into the prompt.
}

// approaches holds the fixed opening-strategy catalog.
var approaches = []Approach{
	{
		Name:        "problem-first",
		Description: "open by restating the client's core problem",
		Hook:        "Open by naming the client's core problem in your own words before anything else.",
	},
	{
		Name:        "story-led",
		Description: "open with a one-line relevant experience",
		Hook:        "Open with a single-sentence story of a similar project you delivered.",
	},
	{
		Name:        "question-opener",
		Description: "open with a sharp clarifying question",
		Hook:        "Open with one sharp, specific question about the project that shows you read the brief.",
	},
	{
		Name:        "bold-claim",
		Description: "open with a confident claim about the outcome",
		Hook:        "Open with a confident one-line claim about the result you can deliver.",
	},
	{
		Name:        "data-point",
		Description: "open with a concrete number or metric",
		Hook:        "Open with a concrete number or metric relevant to this kind of work.",
	},
	{
		Name:        "common-ground",
		Description: "open by aligning with the client's stated goal",
		Hook:        "Open by echoing the client's stated goal to establish alignment immediately.",
	},
	{
		Name:        "vision",
		Description: "open by sketching the finished result",
		Hook:        "Open by describing what the finished deliverable will look like for the client.",
	},
	{
		Name:        "objection-preempt",
		Description: "open by disarming the likely hesitation",
		Hook:        "Open by addressing the most likely hesitation a client would have about this job.",
	},
	{
		Name:        "direct-offer",
		Description: "open with the concrete offer itself",
		Hook:        "Open by stating plainly what you will do and by when, no preamble.",
	},
	{
		Name:        "curiosity-gap",
		Description: "open with an intriguing partial insight",
		Hook:        "Open with an observation about the project that invites the client to read on.",
	},
}

// Selector picks opening approaches from an injectable random source so tests
// can pin a seed.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector constructs a Selector. A nil rng falls back to a time-seeded
// source.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Pick returns a uniformly random approach. Every call draws fresh.
func (s *Selector) Pick() Approach {
	s.mu.Lock()
	defer s.mu.Unlock()
	return approaches[s.rng.Intn(len(approaches))]
}

// Approaches returns the catalog in fixed order.
func Approaches() []Approach {
	out := make([]Approach, len(approaches))
	copy(out, approaches)
	return out
}
