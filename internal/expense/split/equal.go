package split

// EqualStrategy divides the total evenly across all participants. The share
// is not rounded: dividing $10 across 3 people yields 3.333... each, so the
// shares always sum back to the total and downstream consumers tolerate the
// sub-cent precision.
type EqualStrategy struct{}

// Type returns the split type identifier.
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// CalculateSplits assigns every participant an identical share of the total.
func (s *EqualStrategy) CalculateSplits(totalAmount float64, participants []Input) ([]Participant, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	share := totalAmount / float64(len(participants))

	out := make([]Participant, len(participants))
	for i, p := range participants {
		amount := share
		out[i] = Participant{
			UserID:     p.UserID,
			Amount:     &amount,
			OwesAmount: share,
		}
	}
	return out, nil
}
