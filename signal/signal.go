// Package signal provides the buffer type effect chains operate on and
// the arithmetic needed to mix it:
//	- copy and shape checks for non-interleaved buffers
//	- wet/dry blending
//	- int/float conversion for pcm sources and sinks
package signal

import (
	"math"
	"time"
)

// Float64 is a non-interleaved float64 signal: one slice per channel.
type Float64 [][]float64

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// scale returns the full-scale int value for the bit depth.
func (bitDepth BitDepth) scale() float64 {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// EmptyFloat64 returns a zeroed buffer of provided dimensions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns number of channels in the buffer.
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples per channel. It's the length of the
// first channel.
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Copy returns an independent copy of the buffer. Nil stays nil.
func (floats Float64) Copy() Float64 {
	if floats == nil {
		return nil
	}
	result := make([][]float64, len(floats))
	for i := range floats {
		if floats[i] == nil {
			continue
		}
		result[i] = make([]float64, len(floats[i]))
		copy(result[i], floats[i])
	}
	return result
}

// SameShape reports whether both buffers have the same number of channels
// and the same length in every channel.
func (floats Float64) SameShape(other Float64) bool {
	if len(floats) != len(other) {
		return false
	}
	for i := range floats {
		if len(floats[i]) != len(other[i]) {
			return false
		}
	}
	return true
}

// Blend returns a new buffer dry*(1-amount) + wet*amount, sample-wise.
// Amount is not clamped, values outside [0, 1] extrapolate. Samples of dry
// that have no counterpart in wet are copied as-is.
func Blend(dry, wet Float64, amount float64) Float64 {
	if dry == nil {
		return nil
	}
	dryGain := 1 - amount
	result := make([][]float64, len(dry))
	for c := range dry {
		result[c] = make([]float64, len(dry[c]))
		n := 0
		if c < len(wet) {
			n = len(wet[c])
			if n > len(dry[c]) {
				n = len(dry[c])
			}
		}
		for i := 0; i < n; i++ {
			result[c][i] = dry[c][i]*dryGain + wet[c][i]*amount
		}
		copy(result[c][n:], dry[c][n:])
	}
	return result
}

// AsFloat64 converts interleaved int signal to float64.
func (ints InterInt) AsFloat64() Float64 {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	floats := make([][]float64, ints.NumChannels)
	bufSize := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))
	scale := ints.BitDepth.scale()

	for i := range floats {
		floats[i] = make([]float64, bufSize)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			floats[i][pos] = float64(ints.Data[j]) / scale
			pos++
		}
	}
	return floats
}

// AsInterInt converts float64 signal to interleaved int. Values outside
// [-1, 1] are clipped to full scale.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	numChannels := len(floats)
	if numChannels == 0 {
		return nil
	}
	scale := bitDepth.scale()
	ints := make([]int, floats.Size()*numChannels)
	for j := range floats {
		for i := 0; i < floats.Size() && i < len(floats[j]); i++ {
			v := floats[j][i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			ints[i*numChannels+j] = int(v * scale)
		}
	}
	return ints
}
