package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/drepwatch/drepscore/internal/types"
)

// RationaleDetail breaks the Rationale Quality pillar into the figures the
// recommendation generator needs to quantify advice.
type RationaleDetail struct {
	WeightedRate    float64 `json:"weighted_rate"` // importance-weighted rationale rate, pre-curve percentage
	Score           float64 `json:"score"`         // after the forgiving curve
	BindingVotes    int     `json:"binding_votes"` // votes with importance weight > 0
	MissingCritical int     `json:"missing_critical"`
	MissingOther    int     `json:"missing_other"`

	// Raw weighted sums, kept for the recommendation generator so gain
	// estimates are derived from the exact figures this pillar scored with.
	weightedNum float64
	weightedDen float64
}

// RationaleQuality computes the importance-weighted fraction of binding
// votes carrying a substantive rationale, passed through a forgiving curve
// that rewards early effort more than marginal improvement near the top.
// InfoAction votes are excluded from both numerator and denominator; a DRep
// with zero binding votes scores 0.
func (w Weights) RationaleQuality(votes []types.VoteRecord) RationaleDetail {
	var d RationaleDetail
	var num, den float64
	for _, v := range votes {
		imp, _ := w.ClassifyProposal(v.ProposalType, v.WithdrawalAda)
		if imp == ImportanceExcluded {
			continue
		}
		d.BindingVotes++
		den += imp.Weight()
		if w.hasSubstantiveRationale(v) {
			num += imp.Weight()
			continue
		}
		if imp == ImportanceCritical {
			d.MissingCritical++
		} else {
			d.MissingOther++
		}
	}
	d.weightedNum, d.weightedDen = num, den
	if den == 0 {
		return d
	}
	d.WeightedRate = 100 * num / den
	d.Score = w.forgivingCurve(d.WeightedRate)
	return d
}

// hasSubstantiveRationale reports whether the vote carries a rationale of
// at least MinRationaleChars characters. Characters are counted as runes
// after trimming leading and trailing whitespace, so neither padding nor
// multi-byte text shifts the threshold.
func (w Weights) hasSubstantiveRationale(v types.VoteRecord) bool {
	return utf8.RuneCountInString(strings.TrimSpace(v.Rationale)) >= w.MinRationaleChars
}

// forgivingCurve maps a percentage through rate^exp (rescaled to [0,100]).
// With the default exponent 0.5 this is a square-root curve: the first
// rationales move the score far more than the last ones.
func (w Weights) forgivingCurve(rate float64) float64 {
	rate = clip(rate, 0, 100)
	return 100 * math.Pow(rate/100, w.RationaleCurveExp)
}
