// Package scoring computes a 0-100 reputation score for a Cardano
// governance delegate (DRep) from its on-chain voting history and declared
// profile metadata, plus prioritized, quantified advice for improving it.
//
// The engine is a pure, synchronous function of its inputs: it never reads
// a clock, never does I/O, and holds no mutable state, so scoring many
// DReps in parallel is always safe.
package scoring

import (
	"fmt"
	"math"

	"github.com/drepwatch/drepscore/internal/types"
)

// Input is one DRep's full scoring snapshot. The caller supplies the
// current epoch explicitly so the computation stays reproducible.
type Input struct {
	DRepID            string
	Votes             []types.VoteRecord
	EligibleProposals int
	EligibleEpochs    []uint64 // epochs with at least one eligible proposal; optional
	Profile           types.ProfileMetadata
	CurrentEpoch      uint64
}

// Pillars holds the four pillar percentages, each in [0,100].
type Pillars struct {
	Participation float64 `json:"participation"`
	Rationale     float64 `json:"rationale"`
	Reliability   float64 `json:"reliability"`
	Profile       float64 `json:"profile"`
}

// Result is the full engine output for one DRep.
type Result struct {
	DRepID  string  `json:"drep_id"`
	Score   int     `json:"score"`
	Version string  `json:"weights_version"`
	Pillars Pillars `json:"pillars"`

	Participation ParticipationDetail `json:"participation_detail"`
	Rationale     RationaleDetail     `json:"rationale_detail"`
	Reliability   ReliabilityDetail   `json:"reliability_detail"`
	Profile       ProfileDetail       `json:"profile_detail"`

	Recommendations []Recommendation `json:"recommendations"`
}

// Engine scores DReps with a fixed, validated weight set.
type Engine struct {
	weights Weights
}

// NewEngine builds an engine, rejecting invalid weight sets up front so
// every later Score call works with consistent constants.
func NewEngine(w Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	return &Engine{weights: w}, nil
}

// Weights returns the engine's weight set.
func (e *Engine) Weights() Weights { return e.weights }

// Score computes the composite score, the four pillars, and the
// recommendation list for one DRep. Legitimately empty inputs (zero votes,
// zero eligible proposals, empty profile) produce valid zeroed scores; only
// contract violations return an error.
func (e *Engine) Score(in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	w := e.weights
	res := Result{
		DRepID:        in.DRepID,
		Version:       w.Version,
		Participation: w.EffectiveParticipation(in.Votes, in.EligibleProposals),
		Rationale:     w.RationaleQuality(in.Votes),
		Reliability:   w.VotingReliability(in.Votes, in.EligibleEpochs, in.CurrentEpoch),
		Profile:       w.ProfileCompleteness(in.Profile),
	}
	res.Pillars = Pillars{
		Participation: res.Participation.Score,
		Rationale:     res.Rationale.Score,
		Reliability:   res.Reliability.Score,
		Profile:       res.Profile.Score,
	}
	res.Score = w.Composite(res.Pillars)
	res.Recommendations = w.Recommend(res)
	return res, nil
}

// Composite is the fixed-weight sum of the four pillars, rounded and
// clamped to an integer in [0,100].
func (w Weights) Composite(p Pillars) int {
	sum := w.Participation*p.Participation +
		w.Rationale*p.Rationale +
		w.Reliability*p.Reliability +
		w.Profile*p.Profile
	score := int(math.Round(sum))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ContractError marks a malformed upstream snapshot: the caller handed the
// engine an input no legitimate chain state can produce. These fail fast;
// they are never retried.
type ContractError struct {
	Field string
	Msg   string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("scoring contract violation: %s: %s", e.Field, e.Msg)
}

func validateInput(in Input) error {
	if in.EligibleProposals < 0 {
		return &ContractError{Field: "eligible_proposals", Msg: "must not be negative"}
	}
	for _, v := range in.Votes {
		if v.Epoch > in.CurrentEpoch {
			return &ContractError{
				Field: "votes",
				Msg:   fmt.Sprintf("vote at epoch %d is newer than current epoch %d", v.Epoch, in.CurrentEpoch),
			}
		}
	}
	return nil
}

// Snapshot extracts the persistable values from a result. Storage of the
// series is a collaborator's concern; the engine only produces and diffs.
func (r Result) Snapshot() types.ScoreSnapshot {
	return types.ScoreSnapshot{
		Score:         r.Score,
		Participation: r.Pillars.Participation,
		Rationale:     r.Pillars.Rationale,
		Reliability:   r.Pillars.Reliability,
		Profile:       r.Pillars.Profile,
	}
}

// Delta is the change against a caller-supplied previous snapshot.
type Delta struct {
	Score         int     `json:"score"`
	Participation float64 `json:"participation"`
	Rationale     float64 `json:"rationale"`
	Reliability   float64 `json:"reliability"`
	Profile       float64 `json:"profile"`
}

// DeltaFrom diffs the result against a previous snapshot.
func (r Result) DeltaFrom(prev types.ScoreSnapshot) Delta {
	return Delta{
		Score:         r.Score - prev.Score,
		Participation: r.Pillars.Participation - prev.Participation,
		Rationale:     r.Pillars.Rationale - prev.Rationale,
		Reliability:   r.Pillars.Reliability - prev.Reliability,
		Profile:       r.Pillars.Profile - prev.Profile,
	}
}
