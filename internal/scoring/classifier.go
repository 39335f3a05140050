package scoring

import "github.com/drepwatch/drepscore/internal/types"

// Importance is the rationale-accounting weight class of a proposal.
// Excluded proposals (InfoAction) carry weight 0 and never enter the
// rationale numerator or denominator.
type Importance int

const (
	ImportanceExcluded Importance = 0
	ImportanceStandard Importance = 1
	ImportanceImportant Importance = 2
	ImportanceCritical Importance = 3
)

// Weight returns the importance as a rationale-accounting weight.
func (i Importance) Weight() float64 { return float64(i) }

func (i Importance) String() string {
	switch i {
	case ImportanceCritical:
		return "critical"
	case ImportanceImportant:
		return "important"
	case ImportanceStandard:
		return "standard"
	default:
		return "excluded"
	}
}

// TreasuryTier classifies a treasury withdrawal by its ADA amount.
type TreasuryTier string

const (
	TierNone        TreasuryTier = ""
	TierRoutine     TreasuryTier = "routine"
	TierSignificant TreasuryTier = "significant"
	TierMajor       TreasuryTier = "major"
)

// ClassifyProposal maps a proposal type (and, for treasury actions, its
// withdrawal amount) to an importance class and treasury tier. Pure lookup
// plus one threshold comparison; no side effects.
func (w Weights) ClassifyProposal(t types.ProposalType, withdrawalAda float64) (Importance, TreasuryTier) {
	switch t {
	case types.ProposalHardFork,
		types.ProposalNoConfidence,
		types.ProposalNewCommittee,
		types.ProposalUpdateCommittee,
		types.ProposalNewConstitution,
		types.ProposalUpdateConstitution:
		return ImportanceCritical, TierNone
	case types.ProposalParameterChange:
		return ImportanceImportant, TierNone
	case types.ProposalTreasuryWithdrawals:
		tier := w.treasuryTier(withdrawalAda)
		if tier == TierRoutine {
			return ImportanceStandard, tier
		}
		return ImportanceImportant, tier
	case types.ProposalInfoAction:
		return ImportanceExcluded, TierNone
	default:
		return ImportanceStandard, TierNone
	}
}

func (w Weights) treasuryTier(ada float64) TreasuryTier {
	switch {
	case ada > w.MajorTreasuryAda:
		return TierMajor
	case ada >= w.SignificantTreasuryAda:
		return TierSignificant
	default:
		return TierRoutine
	}
}
