package split

import (
	"fmt"
	"math"
)

// PercentageStrategy allocates shares proportional to declared percentages.
// A missing percentage counts as zero. Each share is rounded to two decimals
// independently, so the shares can drift from the total by a cent or two in
// aggregate; the storage layer's invariant check tolerates that residue.
type PercentageStrategy struct{}

// Type returns the split type identifier.
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// CalculateSplits verifies the percentages sum to 100 (within tolerance) and
// assigns each participant their rounded proportional share.
func (s *PercentageStrategy) CalculateSplits(totalAmount float64, participants []Input) ([]Participant, error) {
	var declared float64
	for _, p := range participants {
		if p.Percentage != nil {
			declared += *p.Percentage
		}
	}
	if math.Abs(declared-100) > sumTolerance {
		return nil, fmt.Errorf("%w: declared %.2f", ErrPercentageSumMismatch, declared)
	}

	out := make([]Participant, len(participants))
	for i, p := range participants {
		pct := 0.0
		if p.Percentage != nil {
			pct = *p.Percentage
		}
		share := pct
		out[i] = Participant{
			UserID:     p.UserID,
			Percentage: &share,
			OwesAmount: roundToTwoDecimals(totalAmount * pct / 100),
		}
	}
	return out, nil
}
