package split

import (
	"fmt"
	"math"
)

// ExactStrategy allocates each participant the amount they declared. A
// missing amount counts as zero, so a participant can be included without
// owing anything.
type ExactStrategy struct{}

// Type returns the split type identifier.
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// CalculateSplits verifies the declared amounts sum to the total (within
// tolerance) and assigns each participant their declared share.
func (s *ExactStrategy) CalculateSplits(totalAmount float64, participants []Input) ([]Participant, error) {
	var declared float64
	for _, p := range participants {
		if p.Amount != nil {
			declared += *p.Amount
		}
	}
	if math.Abs(declared-totalAmount) > sumTolerance {
		return nil, fmt.Errorf("%w: declared %.2f, total %.2f", ErrAmountSumMismatch, declared, totalAmount)
	}

	out := make([]Participant, len(participants))
	for i, p := range participants {
		out[i] = Participant{UserID: p.UserID}
		// a participant with no declared amount owes nothing and keeps a
		// nil Amount, so it stays absent from serialized output
		if p.Amount != nil {
			amount := *p.Amount
			out[i].Amount = &amount
			out[i].OwesAmount = amount
		}
	}
	return out, nil
}
