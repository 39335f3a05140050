package scoring

import (
	"fmt"
	"strings"

	"github.com/drepwatch/drepscore/internal/types"
)

// votesSplit builds a vote slice with the given choice counts, all at the
// same epoch on standard-importance proposals.
func votesSplit(yes, no, abstain int, epoch uint64) []types.VoteRecord {
	votes := make([]types.VoteRecord, 0, yes+no+abstain)
	add := func(n int, choice types.VoteChoice) {
		for i := 0; i < n; i++ {
			votes = append(votes, types.VoteRecord{
				TxHash:       fmt.Sprintf("tx-%s-%d", choice, len(votes)),
				Choice:       choice,
				Epoch:        epoch,
				ProposalType: types.ProposalType("Other"),
			})
		}
	}
	add(yes, types.VoteYes)
	add(no, types.VoteNo)
	add(abstain, types.VoteAbstain)
	return votes
}

// substantiveRationale is exactly the minimum accepted length.
func substantiveRationale() string {
	return strings.Repeat("r", DefaultWeights().MinRationaleChars)
}

// voteAt builds one vote at the given epoch.
func voteAt(epoch uint64, choice types.VoteChoice) types.VoteRecord {
	return types.VoteRecord{
		TxHash:       fmt.Sprintf("tx-%d", epoch),
		Choice:       choice,
		Epoch:        epoch,
		ProposalType: types.ProposalType("Other"),
	}
}

// votesAtEpochs builds one Yes vote per epoch.
func votesAtEpochs(epochs ...uint64) []types.VoteRecord {
	votes := make([]types.VoteRecord, 0, len(epochs))
	for _, e := range epochs {
		votes = append(votes, voteAt(e, types.VoteYes))
	}
	return votes
}

// epochRange returns [from, to] inclusive.
func epochRange(from, to uint64) []uint64 {
	out := make([]uint64, 0, to-from+1)
	for e := from; e <= to; e++ {
		out = append(out, e)
	}
	return out
}
