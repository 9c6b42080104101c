package split

import (
	"fmt"
	"sort"
)

// Factory maps split-type tags to strategy instances. It is the single
// registration point for new policies.
type Factory struct {
	strategies map[SplitType]Strategy
}

// NewFactory creates a factory with all built-in strategies registered.
func NewFactory() *Factory {
	return &Factory{
		strategies: map[SplitType]Strategy{
			SplitTypeEqual:      &EqualStrategy{},
			SplitTypeExact:      &ExactStrategy{},
			SplitTypePercentage: &PercentageStrategy{},
		},
	}
}

// Create returns the strategy registered for the given tag.
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	strategy, ok := f.strategies[splitType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSplitType, splitType)
	}
	return strategy, nil
}

// CreateFromString creates a strategy from a raw string tag, as received in
// API requests.
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

// SupportedTypes lists the registered tags in stable order.
func (f *Factory) SupportedTypes() []SplitType {
	types := make([]SplitType, 0, len(f.strategies))
	for t := range f.strategies {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsSupported reports whether a strategy is registered for the given tag.
func (f *Factory) IsSupported(splitType SplitType) bool {
	_, ok := f.strategies[splitType]
	return ok
}
