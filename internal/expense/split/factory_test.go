package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Create(t *testing.T) {
	factory := NewFactory()

	for _, splitType := range []SplitType{SplitTypeEqual, SplitTypeExact, SplitTypePercentage} {
		t.Run(string(splitType), func(t *testing.T) {
			assert.True(t, factory.IsSupported(splitType))

			strategy, err := factory.Create(splitType)
			require.NoError(t, err)
			assert.Equal(t, splitType, strategy.Type())
		})
	}
}

func TestFactory_CreateUnsupported(t *testing.T) {
	factory := NewFactory()

	for _, tag := range []string{"", "equal", "SHARES", "EVEN"} {
		t.Run("tag "+tag, func(t *testing.T) {
			assert.False(t, factory.IsSupported(SplitType(tag)))

			_, err := factory.CreateFromString(tag)
			assert.ErrorIs(t, err, ErrUnsupportedSplitType)
		})
	}
}

func TestFactory_SupportedTypes(t *testing.T) {
	got := NewFactory().SupportedTypes()
	assert.Equal(t, []SplitType{SplitTypeEqual, SplitTypeExact, SplitTypePercentage}, got)
}

// The factory hands out stateless strategies, so repeated calls may share
// instances and concurrent use needs no synchronization.
func TestFactory_StrategiesAreReusable(t *testing.T) {
	factory := NewFactory()

	first, err := factory.Create(SplitTypeEqual)
	require.NoError(t, err)
	second, err := factory.Create(SplitTypeEqual)
	require.NoError(t, err)

	a, err := first.CalculateSplits(90, []Input{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}})
	require.NoError(t, err)
	b, err := second.CalculateSplits(90, []Input{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
