package split

import (
	"errors"
	"math"
)

// SplitType identifies the policy used to divide an expense. The values are
// wire-stable and persisted as-is.
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypeExact      SplitType = "EXACT"
	SplitTypePercentage SplitType = "PERCENTAGE"
)

// Input describes one participant before allocation. Amount is only read by
// the EXACT strategy and Percentage only by the PERCENTAGE strategy; a nil
// value counts as zero.
type Input struct {
	UserID     string   `json:"user_id"`
	Amount     *float64 `json:"amount,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// Participant is a fully-allocated share of an expense. OwesAmount is fixed
// at split time; PaidAmount starts at zero and is the only field mutated
// afterwards, through the owning expense.
type Participant struct {
	UserID     string   `json:"user_id"`
	Amount     *float64 `json:"amount,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
	PaidAmount float64  `json:"paid_amount"`
	OwesAmount float64  `json:"owes_amount"`
}

// Outstanding returns how much of the share is still unpaid (never negative).
func (p Participant) Outstanding() float64 {
	if p.PaidAmount >= p.OwesAmount {
		return 0
	}
	return p.OwesAmount - p.PaidAmount
}

// Strategy turns a total amount and a raw participant list into allocated
// shares. Implementations are stateless and safe to share across callers.
type Strategy interface {
	CalculateSplits(totalAmount float64, participants []Input) ([]Participant, error)
	Type() SplitType
}

var (
	ErrNoParticipants        = errors.New("at least one participant is required")
	ErrAmountSumMismatch     = errors.New("exact amounts must sum to the total amount")
	ErrPercentageSumMismatch = errors.New("percentages must sum to 100")
	ErrUnsupportedSplitType  = errors.New("unsupported split type")
)

// sumTolerance absorbs floating-point residue when checking declared sums.
const sumTolerance = 0.01

func roundToTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
