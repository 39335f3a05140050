package scoring

import "github.com/drepwatch/drepscore/internal/types"

// ParticipationDetail breaks the Effective Participation pillar into the
// figures the recommendation generator and the API response expose.
type ParticipationDetail struct {
	RawRate       float64 `json:"raw_rate"`       // votesCast/eligible, in [0,1]
	DominantShare float64 `json:"dominant_share"` // share of the most common choice, in [0,1]
	Modifier      float64 `json:"modifier"`       // deliberation multiplier, in [HardMultiplier,1]
	Score         float64 `json:"score"`          // rawRate*modifier as a percentage
}

// EffectiveParticipation computes the participation rate discounted by the
// Deliberation Modifier. A DRep with zero eligible proposals scores 0, not
// an error; the function never divides by zero.
func (w Weights) EffectiveParticipation(votes []types.VoteRecord, eligible int) ParticipationDetail {
	d := ParticipationDetail{Modifier: 1}
	if eligible <= 0 || len(votes) == 0 {
		if len(votes) > 0 {
			d.DominantShare = dominantShare(votes)
		}
		return d
	}

	d.RawRate = clip(float64(len(votes))/float64(eligible), 0, 1)
	d.DominantShare = dominantShare(votes)
	d.Modifier = w.deliberationModifier(d.DominantShare)
	d.Score = d.RawRate * d.Modifier * 100
	return d
}

// dominantShare is the fraction of cast votes taken by the single most
// common choice.
func dominantShare(votes []types.VoteRecord) float64 {
	if len(votes) == 0 {
		return 0
	}
	counts := make(map[types.VoteChoice]int, 3)
	for _, v := range votes {
		counts[v.Choice]++
	}
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	return float64(max) / float64(len(votes))
}

// deliberationModifier penalizes rubber-stamping. Below the soft breakpoint
// there is no penalty; above the hard breakpoint the full penalty applies;
// between breakpoints the multiplier is linearly interpolated so the score
// has no discontinuous jump at a boundary.
func (w Weights) deliberationModifier(share float64) float64 {
	switch {
	case share <= w.DominantSoftShare:
		return 1
	case share <= w.DominantMidShare:
		return lerp(share, w.DominantSoftShare, w.DominantMidShare, 1, w.MidMultiplier)
	case share <= w.DominantHardShare:
		return lerp(share, w.DominantMidShare, w.DominantHardShare, w.MidMultiplier, w.HardMultiplier)
	default:
		return w.HardMultiplier
	}
}

// lerp maps x in [x0,x1] linearly onto [y0,y1].
func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
