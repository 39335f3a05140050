package scoring

import (
	"math"
	"sort"

	"github.com/drepwatch/drepscore/internal/types"
)

// ReliabilityDetail breaks the Reliability pillar into its four sub-scores,
// each in [0,100] before its sub-weight is applied.
type ReliabilityDetail struct {
	StreakScore  float64 `json:"streak_score"`
	RecencyScore float64 `json:"recency_score"`
	GapScore     float64 `json:"gap_score"`
	TenureScore  float64 `json:"tenure_score"`

	StreakEpochs int     `json:"streak_epochs"` // length of the most recent unbroken run
	LongestGap   int     `json:"longest_gap"`   // in epochs with eligible proposals
	TenureEpochs uint64  `json:"tenure_epochs"` // epochs since the first recorded vote
	Score        float64 `json:"score"`
}

// VotingReliability scores voting consistency from four angles: the current
// streak, how recently the DRep last voted, the longest inactivity stretch
// anywhere in its history, and tenure. eligibleEpochs lists the epochs in
// which the DRep had at least one proposal to vote on; when the caller
// cannot supply it, every epoch between the first vote and the current
// epoch counts as observed instead.
//
// A DRep with zero votes ever scores 0 on every sub-score.
func (w Weights) VotingReliability(votes []types.VoteRecord, eligibleEpochs []uint64, currentEpoch uint64) ReliabilityDetail {
	var d ReliabilityDetail
	if len(votes) == 0 {
		return d
	}

	voted := make(map[uint64]bool, len(votes))
	for _, v := range votes {
		voted[v.Epoch] = true
	}
	votedEpochs := make([]uint64, 0, len(voted))
	for e := range voted {
		votedEpochs = append(votedEpochs, e)
	}
	sort.Slice(votedEpochs, func(i, j int) bool { return votedEpochs[i] < votedEpochs[j] })
	first := votedEpochs[0]
	last := votedEpochs[len(votedEpochs)-1]

	var longest int
	var gapEnd uint64
	if len(eligibleEpochs) > 0 {
		observed := observedEpochs(eligibleEpochs, currentEpoch)
		d.StreakEpochs = currentStreak(observed, voted)
		longest, gapEnd = longestGap(observed, voted, first)
	} else {
		// No eligibility data: every epoch between the first vote and the
		// current epoch counts as observed. Computed arithmetically over the
		// voted epochs; the span is unbounded and must never be materialized.
		d.StreakEpochs = denseStreak(voted, last)
		longest, gapEnd = denseLongestGap(votedEpochs, currentEpoch)
	}

	d.StreakScore = 100 * clip(float64(d.StreakEpochs)/float64(w.StreakCeiling), 0, 1)

	// Recency: exponential decay in epochs since the most recent vote.
	sinceLast := float64(currentEpoch - last)
	d.RecencyScore = 100 * math.Exp(-sinceLast/w.RecencyTau)

	// Gap penalty: the longest stretch of eligible epochs without a vote,
	// attenuated by how long ago the stretch ended so an old gap still
	// carries a smaller, historical penalty.
	d.LongestGap = longest
	base := clip(float64(longest)/float64(w.GapCeiling), 0, 1)
	age := float64(currentEpoch) - float64(gapEnd)
	if age < 0 {
		age = 0
	}
	attenuation := 0.5 + 0.5*math.Exp(-age/w.GapAgeTau)
	d.GapScore = 100 * (1 - base*attenuation)

	// Tenure: logarithmic, so early tenure gains matter more.
	d.TenureEpochs = currentEpoch - first
	d.TenureScore = 100 * clip(math.Log1p(float64(d.TenureEpochs))/math.Log1p(w.TenureCeiling), 0, 1)

	d.Score = w.StreakWeight*d.StreakScore +
		w.RecencyWeight*d.RecencyScore +
		w.GapWeight*d.GapScore +
		w.TenureWeight*d.TenureScore
	return d
}

// observedEpochs returns the sorted, de-duplicated eligible epochs the
// reliability sub-scores are measured against, bounded by the current epoch.
func observedEpochs(eligible []uint64, currentEpoch uint64) []uint64 {
	out := make([]uint64, 0, len(eligible))
	seen := make(map[uint64]bool, len(eligible))
	for _, e := range eligible {
		if e > currentEpoch || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// currentStreak counts the most recent unbroken run of observed epochs in
// which the DRep voted, anchored at the latest observed epoch with a vote.
func currentStreak(observed []uint64, voted map[uint64]bool) int {
	i := len(observed) - 1
	for i >= 0 && !voted[observed[i]] {
		i--
	}
	streak := 0
	for i >= 0 && voted[observed[i]] {
		streak++
		i--
	}
	return streak
}

// longestGap finds the longest run of observed epochs without a vote after
// the DRep's first vote, returning its length and the epoch the run ended.
func longestGap(observed []uint64, voted map[uint64]bool, firstVote uint64) (int, uint64) {
	longest, run := 0, 0
	gapEnd := firstVote
	var runEnd uint64
	for _, e := range observed {
		if e < firstVote {
			continue
		}
		if voted[e] {
			run = 0
			continue
		}
		run++
		runEnd = e
		if run > longest {
			longest = run
			gapEnd = runEnd
		}
	}
	return longest, gapEnd
}

// denseStreak is currentStreak over an implicit dense epoch range: the run
// of consecutive voted epochs ending at the latest vote.
func denseStreak(voted map[uint64]bool, last uint64) int {
	streak := 0
	for e := last; voted[e]; e-- {
		streak++
		if e == 0 {
			break
		}
	}
	return streak
}

// denseLongestGap is longestGap over an implicit dense epoch range between
// the first vote and the current epoch: the widest stretch between
// consecutive voted epochs, or the trailing silence since the last vote,
// whichever is longer. votedEpochs must be sorted and de-duplicated.
func denseLongestGap(votedEpochs []uint64, currentEpoch uint64) (int, uint64) {
	longest := 0
	gapEnd := votedEpochs[0]
	for i := 1; i < len(votedEpochs); i++ {
		gap := epochSpan(votedEpochs[i], votedEpochs[i-1]) - 1
		if gap > longest {
			longest = gap
			gapEnd = votedEpochs[i] - 1
		}
	}
	last := votedEpochs[len(votedEpochs)-1]
	if trailing := epochSpan(currentEpoch, last); trailing > longest {
		longest = trailing
		gapEnd = currentEpoch
	}
	return longest, gapEnd
}

// epochSpan is hi-lo saturated well below integer overflow; gap arithmetic
// only ever compares spans against small ceilings.
func epochSpan(hi, lo uint64) int {
	span := hi - lo
	if span > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(span)
}
