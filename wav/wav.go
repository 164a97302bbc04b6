// Package wav renders wav files through a track effect chain.
package wav

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/fxchain"
	"pipelined.dev/fxchain/signal"
)

// DefaultBufferSize is used when render is called with non-positive
// buffer size.
const DefaultBufferSize = 512

// pcmFormat is the wav audio format tag for integer PCM.
const pcmFormat = 1

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")
	// ErrInvalidFile is returned when file is not a valid wav.
	ErrInvalidFile = errors.New("wav is not valid")
)

// Info describes format of a wav file.
type Info struct {
	SampleRate  int
	NumChannels int
	BitDepth    signal.BitDepth
}

// Stats is the result of a render.
type Stats struct {
	Info
	Blocks int
	Frames int64
}

// Duration returns the duration of rendered audio.
func (s Stats) Duration() time.Duration {
	return signal.DurationOf(s.SampleRate, s.Frames)
}

// ReadInfo reads format of wav file.
func ReadInfo(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer file.Close()
	decoder, err := newDecoder(file)
	if err != nil {
		return Info{}, fmt.Errorf("%v: %w", path, err)
	}
	return infoOf(decoder), nil
}

// ReadSample decodes up to frames first frames of wav file.
func ReadSample(path string, frames int) (signal.Float64, error) {
	if frames <= 0 {
		frames = DefaultBufferSize
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	decoder, err := newDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	info := infoOf(decoder)
	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, frames*info.NumChannels),
		SourceBitDepth: int(info.BitDepth),
	}
	readSamples, err := decoder.PCMBuffer(ib)
	if err != nil {
		return nil, err
	}
	return signal.InterInt{
		Data:        ib.Data[:readSamples],
		NumChannels: info.NumChannels,
		BitDepth:    info.BitDepth,
	}.AsFloat64(), nil
}

// Render decodes in file, processes it through the track in blocks of
// bufferSize frames and encodes result into out file with the same
// format. Render stops when context is done. Out file is removed if
// render fails.
func Render(ctx context.Context, track *fxchain.Track, inPath, outPath string, bufferSize int) (Stats, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, err
	}
	defer in.Close()

	decoder, err := newDecoder(in)
	if err != nil {
		return Stats{}, fmt.Errorf("%v: %w", inPath, err)
	}
	info := infoOf(decoder)
	stats := Stats{Info: info}

	out, err := os.Create(outPath)
	if err != nil {
		return stats, err
	}
	encoder := wav.NewEncoder(out, info.SampleRate, int(info.BitDepth), info.NumChannels, pcmFormat)

	err = render(ctx, track, decoder, encoder, &stats, bufferSize)
	if closeErr := encoder.Close(); err == nil {
		err = closeErr
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// truncated output is not a valid render
		_ = os.Remove(outPath)
	}
	return stats, err
}

func render(ctx context.Context, track *fxchain.Track, decoder *wav.Decoder, encoder *wav.Encoder, stats *Stats, bufferSize int) error {
	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, bufferSize*stats.NumChannels),
		SourceBitDepth: int(stats.BitDepth),
	}
	ob := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: stats.NumChannels,
			SampleRate:  stats.SampleRate,
		},
		SourceBitDepth: int(stats.BitDepth),
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		readSamples, err := decoder.PCMBuffer(ib)
		if err != nil {
			return err
		}
		if readSamples == 0 {
			return nil
		}
		// prune buffer to actual size
		block := signal.InterInt{
			Data:        ib.Data[:readSamples],
			NumChannels: stats.NumChannels,
			BitDepth:    stats.BitDepth,
		}.AsFloat64()

		processed := track.Process(ctx, block)
		ob.Data = processed.AsInterInt(stats.BitDepth)
		if err := encoder.Write(ob); err != nil {
			return err
		}
		stats.Blocks++
		stats.Frames += int64(block.Size())
	}
}

func newDecoder(file *os.File) (*wav.Decoder, error) {
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidFile
	}
	bitDepth := signal.BitDepth(decoder.BitDepth)
	if bitDepth != signal.BitDepth16 && bitDepth != signal.BitDepth32 {
		return nil, ErrUnsupportedBitDepth
	}
	return decoder, nil
}

func infoOf(decoder *wav.Decoder) Info {
	return Info{
		SampleRate:  int(decoder.SampleRate),
		NumChannels: int(decoder.NumChans),
		BitDepth:    signal.BitDepth(decoder.BitDepth),
	}
}
