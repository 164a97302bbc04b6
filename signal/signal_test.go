package signal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/fxchain/signal"
)

func TestBlend(t *testing.T) {
	tests := []struct {
		description string
		dry         signal.Float64
		wet         signal.Float64
		amount      float64
		expected    signal.Float64
	}{
		{
			description: "full wet",
			dry:         signal.Float64{{1, 2, 3}},
			wet:         signal.Float64{{4, 5, 6}},
			amount:      1,
			expected:    signal.Float64{{4, 5, 6}},
		},
		{
			description: "full dry",
			dry:         signal.Float64{{1, 2, 3}},
			wet:         signal.Float64{{4, 5, 6}},
			amount:      0,
			expected:    signal.Float64{{1, 2, 3}},
		},
		{
			description: "half",
			dry:         signal.Float64{{1, 1}, {0, 2}},
			wet:         signal.Float64{{0, 0}, {2, 2}},
			amount:      0.5,
			expected:    signal.Float64{{0.5, 0.5}, {1, 2}},
		},
		{
			description: "extrapolated",
			dry:         signal.Float64{{1}},
			wet:         signal.Float64{{2}},
			amount:      2,
			expected:    signal.Float64{{3}},
		},
		{
			description: "short wet keeps dry tail",
			dry:         signal.Float64{{1, 1, 1}},
			wet:         signal.Float64{{0}},
			amount:      1,
			expected:    signal.Float64{{0, 1, 1}},
		},
		{
			description: "zero length",
			dry:         signal.Float64{{}},
			wet:         signal.Float64{{}},
			amount:      0.3,
			expected:    signal.Float64{{}},
		},
		{
			description: "nil dry",
			amount:      0.3,
		},
	}
	for _, test := range tests {
		result := signal.Blend(test.dry, test.wet, test.amount)
		assert.Equal(t, test.expected, result, test.description)
	}
}

func TestBlendDoesNotMutateInputs(t *testing.T) {
	dry := signal.Float64{{1, 1}}
	wet := signal.Float64{{0, 0}}
	_ = signal.Blend(dry, wet, 0.5)
	assert.Equal(t, signal.Float64{{1, 1}}, dry)
	assert.Equal(t, signal.Float64{{0, 0}}, wet)
}

func TestCopy(t *testing.T) {
	src := signal.Float64{{1, 2}, {3, 4}}
	cp := src.Copy()
	assert.Equal(t, src, cp)
	cp[0][0] = 10
	assert.Equal(t, float64(1), src[0][0])

	assert.Nil(t, signal.Float64(nil).Copy())
}

func TestSameShape(t *testing.T) {
	assert.True(t, signal.Float64{{1, 2}, {3, 4}}.SameShape(signal.Float64{{0, 0}, {0, 0}}))
	assert.False(t, signal.Float64{{1, 2}}.SameShape(signal.Float64{{0, 0}, {0, 0}}))
	assert.False(t, signal.Float64{{1, 2}}.SameShape(signal.Float64{{0}}))
	assert.True(t, signal.Float64{}.SameShape(signal.Float64{}))
}

func TestSize(t *testing.T) {
	var buf signal.Float64
	assert.Equal(t, 0, buf.Size())
	assert.Equal(t, 0, buf.NumChannels())
	buf = signal.Float64{{1, 2, 5}, {3, 4, 6}}
	assert.Equal(t, 2, buf.NumChannels())
	assert.Equal(t, 3, buf.Size())
	assert.Equal(t, signal.Float64{{0, 0}}, signal.EmptyFloat64(1, 2))
}

func TestInterIntsAsFloat64(t *testing.T) {
	tests := []struct {
		ints        []int
		numChannels int
		bitDepth    signal.BitDepth
		expected    signal.Float64
	}{
		{
			ints:        []int{1, 2, 1, 2, 1, 2},
			numChannels: 2,
			expected:    signal.Float64{{1, 1, 1}, {2, 2, 2}},
		},
		{
			ints:        []int{1, 2, 1},
			numChannels: 2,
			expected:    signal.Float64{{1, 1}, {2, 0}},
		},
		{
			ints:        []int{math.MaxInt16, -math.MaxInt16},
			numChannels: 2,
			bitDepth:    signal.BitDepth16,
			expected:    signal.Float64{{1}, {-1}},
		},
		{
			ints:     nil,
			expected: nil,
		},
		{
			ints:     []int{1, 2, 3},
			expected: nil,
		},
	}
	for _, test := range tests {
		ints := signal.InterInt{
			Data:        test.ints,
			NumChannels: test.numChannels,
			BitDepth:    test.bitDepth,
		}
		assert.Equal(t, test.expected, ints.AsFloat64())
	}
}

func TestFloat64AsInterInt(t *testing.T) {
	floats := signal.Float64{{1, 0.5, 2}, {-1, 0, -2}}
	ints := floats.AsInterInt(signal.BitDepth16)
	assert.Equal(t, []int{math.MaxInt16, -math.MaxInt16, math.MaxInt16 / 2, 0, math.MaxInt16, -math.MaxInt16}, ints)
	assert.Nil(t, signal.Float64{}.AsInterInt(signal.BitDepth16))
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, time.Second, signal.DurationOf(44100, 44100))
	assert.Equal(t, 500*time.Millisecond, signal.DurationOf(48000, 24000))
	assert.Equal(t, time.Duration(0), signal.DurationOf(0, 100))
}
