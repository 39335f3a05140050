package scoring

import (
	"fmt"
	"math"
)

// Weights is the versioned set of every tunable constant in the engine.
// Pillar weights are a product decision (rationale weighted highest as the
// strongest accountability signal); changing any of them breaks
// comparability with historical scores, so the Version string must be
// bumped whenever a value changes.
type Weights struct {
	Version string

	// Pillar weights, must sum to 1.
	Participation float64
	Rationale     float64
	Reliability   float64
	Profile       float64

	// Reliability sub-weights, must sum to 1.
	StreakWeight  float64
	RecencyWeight float64
	GapWeight     float64
	TenureWeight  float64

	// Reliability shape constants, all in epochs.
	StreakCeiling int     // streak length at which the sub-score maxes out
	GapCeiling    int     // longest-gap length at which the penalty maxes out
	RecencyTau    float64 // e-folding time of the recency decay
	GapAgeTau     float64 // e-folding time of the historical-gap attenuation
	TenureCeiling float64 // tenure at which the log curve reaches 100

	// Rationale accounting.
	RationaleCurveExp float64 // exponent of the forgiving curve, in (0,1]
	MinRationaleChars int     // below this a rationale does not count

	// Deliberation Modifier breakpoints over the dominant-direction share.
	DominantSoftShare float64 // no penalty at or below this share
	DominantMidShare  float64 // MidMultiplier applies above this share
	DominantHardShare float64 // HardMultiplier applies above this share
	MidMultiplier     float64
	HardMultiplier    float64

	// Treasury tier thresholds in ADA.
	SignificantTreasuryAda float64
	MajorTreasuryAda       float64

	// Profile checklist point values, must sum to 100.
	ProfilePoints ProfilePoints

	// Recommendation thresholds: advice is emitted for a pillar scoring
	// below its threshold.
	RationaleAdviceBelow     float64
	ParticipationAdviceBelow float64
	ReliabilityAdviceBelow   float64
}

// ProfilePoints assigns checklist points to each declared metadata field.
// The recommendation generator derives "potential gain" figures from these
// same values, so they must never be duplicated elsewhere.
type ProfilePoints struct {
	Name           int
	Bio            int
	Objectives     int
	Motivations    int
	Qualifications int
	PaymentAddress int
	SocialRef      int
}

// Total returns the sum of all checklist points.
func (p ProfilePoints) Total() int {
	return p.Name + p.Bio + p.Objectives + p.Motivations +
		p.Qualifications + p.PaymentAddress + p.SocialRef
}

// DefaultWeights returns the v1 weight set.
func DefaultWeights() Weights {
	return Weights{
		Version: "v1",

		Participation: 0.30,
		Rationale:     0.35,
		Reliability:   0.20,
		Profile:       0.15,

		StreakWeight:  0.35,
		RecencyWeight: 0.30,
		GapWeight:     0.20,
		TenureWeight:  0.15,

		StreakCeiling: 10,
		GapCeiling:    10,
		RecencyTau:    5,
		GapAgeTau:     15,
		TenureCeiling: 73, // ~1 year of 5-day epochs

		RationaleCurveExp: 0.5,
		MinRationaleChars: 50,

		DominantSoftShare: 0.85,
		DominantMidShare:  0.90,
		DominantHardShare: 0.95,
		MidMultiplier:     0.85,
		HardMultiplier:    0.70,

		SignificantTreasuryAda: 1_000_000,
		MajorTreasuryAda:       20_000_000,

		ProfilePoints: ProfilePoints{
			Name:           15,
			Bio:            15,
			Objectives:     15,
			Motivations:    15,
			Qualifications: 15,
			PaymentAddress: 10,
			SocialRef:      15,
		},

		RationaleAdviceBelow:     60,
		ParticipationAdviceBelow: 80,
		ReliabilityAdviceBelow:   70,
	}
}

// Validate rejects weight sets that would produce scores outside [0,100] or
// recommendation gains inconsistent with the pillar caps.
func (w Weights) Validate() error {
	pillarSum := w.Participation + w.Rationale + w.Reliability + w.Profile
	if math.Abs(pillarSum-1) > 1e-9 {
		return fmt.Errorf("pillar weights sum to %v, want 1", pillarSum)
	}
	subSum := w.StreakWeight + w.RecencyWeight + w.GapWeight + w.TenureWeight
	if math.Abs(subSum-1) > 1e-9 {
		return fmt.Errorf("reliability sub-weights sum to %v, want 1", subSum)
	}
	if total := w.ProfilePoints.Total(); total != 100 {
		return fmt.Errorf("profile checklist points sum to %d, want 100", total)
	}
	if w.RationaleCurveExp <= 0 || w.RationaleCurveExp > 1 {
		return fmt.Errorf("rationale curve exponent %v outside (0,1]", w.RationaleCurveExp)
	}
	if !(w.DominantSoftShare < w.DominantMidShare && w.DominantMidShare < w.DominantHardShare) {
		return fmt.Errorf("deliberation breakpoints must be strictly increasing")
	}
	if w.HardMultiplier > w.MidMultiplier || w.MidMultiplier > 1 {
		return fmt.Errorf("deliberation multipliers must decrease with dominance")
	}
	if w.StreakCeiling <= 0 || w.GapCeiling <= 0 || w.RecencyTau <= 0 ||
		w.GapAgeTau <= 0 || w.TenureCeiling <= 0 {
		return fmt.Errorf("reliability shape constants must be positive")
	}
	if w.SignificantTreasuryAda <= 0 || w.MajorTreasuryAda <= w.SignificantTreasuryAda {
		return fmt.Errorf("treasury tier thresholds must be positive and increasing")
	}
	return nil
}
