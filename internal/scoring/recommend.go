package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Priority ranks a recommendation. High beats medium beats low when two
// recommendations promise the same gain.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Recommendation is one quantified improvement action. PotentialGain is a
// conservative lower bound in composite-score points and never exceeds the
// owning pillar's weight contribution.
type Recommendation struct {
	Pillar        string   `json:"pillar"`
	Priority      Priority `json:"priority"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PotentialGain float64  `json:"potential_gain"`
}

// Recommend derives improvement actions from the pillar details of a
// result. Every gain figure comes from the same weight constants the
// pillars scored with. Recommendations are recreated on every call and
// never persisted here.
func (w Weights) Recommend(res Result) []Recommendation {
	var recs []Recommendation
	recs = append(recs, w.profileAdvice(res.Profile)...)
	recs = append(recs, w.rationaleAdvice(res.Rationale)...)
	recs = append(recs, w.participationAdvice(res.Participation)...)
	recs = append(recs, w.reliabilityAdvice(res.Reliability)...)

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].PotentialGain != recs[j].PotentialGain {
			return recs[i].PotentialGain > recs[j].PotentialGain
		}
		return recs[i].Priority.rank() < recs[j].Priority.rank()
	})
	return recs
}

func (w Weights) profileAdvice(d ProfileDetail) []Recommendation {
	if d.Score >= 100 || len(d.Missing) == 0 {
		return nil
	}
	missing := 0
	names := make([]string, 0, len(d.Missing))
	for _, f := range d.Missing {
		missing += f.Points
		names = append(names, f.Name)
	}
	priority := PriorityMedium
	if d.Score < 50 {
		priority = PriorityHigh
	}
	gain := w.gain(float64(missing), w.Profile)
	if gain <= 0 {
		return nil
	}
	return []Recommendation{{
		Pillar:        "profile",
		Priority:      priority,
		Title:         "Complete your DRep profile",
		Description:   fmt.Sprintf("Declare the missing metadata fields (%s) to earn the full profile checklist.", strings.Join(names, ", ")),
		PotentialGain: gain,
	}}
}

func (w Weights) rationaleAdvice(d RationaleDetail) []Recommendation {
	if d.Score >= w.RationaleAdviceBelow {
		return nil
	}
	var recs []Recommendation

	if d.MissingCritical > 0 && d.weightedDen > 0 {
		// Gain from adding rationales to critical votes only, holding
		// everything else fixed.
		filled := 100 * (d.weightedNum + ImportanceCritical.Weight()*float64(d.MissingCritical)) / d.weightedDen
		gain := w.gain(w.forgivingCurve(filled)-d.Score, w.Rationale)
		if gain > 0 {
			recs = append(recs, Recommendation{
				Pillar:        "rationale",
				Priority:      PriorityHigh,
				Title:         "Add rationales to critical votes",
				Description:   fmt.Sprintf("%d binding vote(s) on critical proposals (hard forks, constitutional changes, no-confidence motions) have no substantive rationale.", d.MissingCritical),
				PotentialGain: gain,
			})
		}
	}

	if backlog := d.MissingCritical + d.MissingOther; backlog > 0 && d.weightedDen > 0 {
		priority := PriorityMedium
		if d.WeightedRate < 30 {
			priority = PriorityHigh
		}
		gain := w.gain(100-d.Score, w.Rationale)
		if gain > 0 {
			recs = append(recs, Recommendation{
				Pillar:        "rationale",
				Priority:      priority,
				Title:         "Work through the rationale backlog",
				Description:   fmt.Sprintf("%d binding vote(s) are missing a rationale of at least %d characters. Attaching one to every vote maxes out this pillar.", backlog, w.MinRationaleChars),
				PotentialGain: gain,
			})
		}
	}
	return recs
}

func (w Weights) participationAdvice(d ParticipationDetail) []Recommendation {
	if d.Score >= w.ParticipationAdviceBelow {
		return nil
	}
	var recs []Recommendation

	if d.RawRate < 1 {
		// Achievable ceiling holds the current modifier fixed, which keeps
		// the estimate a lower bound.
		priority := PriorityMedium
		if d.Score < 40 {
			priority = PriorityHigh
		}
		gain := w.gain(100*d.Modifier-d.Score, w.Participation)
		if gain > 0 {
			recs = append(recs, Recommendation{
				Pillar:        "participation",
				Priority:      priority,
				Title:         "Vote on more proposals",
				Description:   fmt.Sprintf("You voted on %.0f%% of eligible proposals. Casting a vote on every open governance action raises this pillar directly.", 100*d.RawRate),
				PotentialGain: gain,
			})
		}
	}

	if d.Modifier < 1 {
		gain := w.gain(100*d.RawRate*(1-d.Modifier), w.Participation)
		if gain > 0 {
			recs = append(recs, Recommendation{
				Pillar:        "participation",
				Priority:      PriorityMedium,
				Title:         "Diversify your voting pattern",
				Description:   fmt.Sprintf("%.0f%% of your votes go the same direction, which discounts participation as rubber-stamping. Independent per-proposal judgement removes the discount.", 100*d.DominantShare),
				PotentialGain: gain,
			})
		}
	}
	return recs
}

func (w Weights) reliabilityAdvice(d ReliabilityDetail) []Recommendation {
	if d.Score >= w.ReliabilityAdviceBelow {
		return nil
	}
	gain := w.gain((100-d.StreakScore)*w.StreakWeight, w.Reliability)
	if gain <= 0 {
		return nil
	}
	return []Recommendation{{
		Pillar:        "reliability",
		Priority:      PriorityMedium,
		Title:         "Build a voting streak",
		Description:   fmt.Sprintf("Voting in %d consecutive epochs maxes out the streak sub-score, the biggest lever in the reliability pillar.", w.StreakCeiling),
		PotentialGain: gain,
	}}
}

// gain converts a pillar-level delta into composite points, clamped to the
// pillar's total weight contribution and rounded to a tenth of a point.
func (w Weights) gain(pillarDelta, pillarWeight float64) float64 {
	g := clip(pillarDelta, 0, 100) * pillarWeight
	return math.Round(g*10) / 10
}
