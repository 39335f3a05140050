package types

// VoteChoice is the direction of an on-chain governance vote.
type VoteChoice string

const (
	VoteYes     VoteChoice = "Yes"
	VoteNo      VoteChoice = "No"
	VoteAbstain VoteChoice = "Abstain"
)

// ProposalType mirrors the Conway-era governance action types as reported
// by chain indexers. Committee and constitution actions appear under more
// than one name depending on the indexer version.
type ProposalType string

const (
	ProposalParameterChange     ProposalType = "ParameterChange"
	ProposalHardFork            ProposalType = "HardForkInitiation"
	ProposalTreasuryWithdrawals ProposalType = "TreasuryWithdrawals"
	ProposalNoConfidence        ProposalType = "NoConfidence"
	ProposalNewCommittee        ProposalType = "NewConstitutionalCommittee"
	ProposalUpdateCommittee     ProposalType = "UpdateCommittee"
	ProposalNewConstitution     ProposalType = "NewConstitution"
	ProposalUpdateConstitution  ProposalType = "UpdateConstitution"
	ProposalInfoAction          ProposalType = "InfoAction"
)

// VoteRecord is one on-chain vote cast by a DRep. Records are immutable
// once written to the chain; the engine treats the slice it receives as a
// read-only ordered snapshot.
type VoteRecord struct {
	TxHash        string       `json:"tx_hash"`
	Index         uint32       `json:"index"`
	Choice        VoteChoice   `json:"choice"`
	Epoch         uint64       `json:"epoch"`
	Rationale     string       `json:"rationale,omitempty"`
	ProposalType  ProposalType `json:"proposal_type"`
	WithdrawalAda float64      `json:"withdrawal_ada,omitempty"`
}

// ProfileMetadata is the identity/intent metadata a DRep declares off-chain
// (CIP-119 style). Every field is optional; an empty value means the field
// was not declared, which is a common and valid state.
type ProfileMetadata struct {
	GivenName      string   `json:"given_name,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Objectives     string   `json:"objectives,omitempty"`
	Motivations    string   `json:"motivations,omitempty"`
	Qualifications string   `json:"qualifications,omitempty"`
	PaymentAddress string   `json:"payment_address,omitempty"`
	References     []string `json:"references,omitempty"`
	Email          string   `json:"email,omitempty"`
}

// ScoreRequest is the body of POST /v1/score: one DRep's full input
// snapshot plus the caller-supplied current epoch.
type ScoreRequest struct {
	DRepID            string          `json:"drep_id" binding:"required"`
	Votes             []VoteRecord    `json:"votes"`
	EligibleProposals int             `json:"eligible_proposals"`
	EligibleEpochs    []uint64        `json:"eligible_epochs,omitempty"`
	Profile           ProfileMetadata `json:"profile"`
	CurrentEpoch      uint64          `json:"current_epoch" binding:"required"`
	Previous          *ScoreSnapshot  `json:"previous,omitempty"`
}

// ScoreSnapshot is a previously computed score supplied by the caller when
// it wants the response to include a delta. The engine never stores these.
type ScoreSnapshot struct {
	Score         int     `json:"score"`
	Participation float64 `json:"participation"`
	Rationale     float64 `json:"rationale"`
	Reliability   float64 `json:"reliability"`
	Profile       float64 `json:"profile"`
}

// BatchScoreRequest scores many DReps in one call. Each entry is an
// independent snapshot; results come back in request order.
type BatchScoreRequest struct {
	CurrentEpoch uint64         `json:"current_epoch" binding:"required"`
	DReps        []ScoreRequest `json:"dreps" binding:"required"`
}
