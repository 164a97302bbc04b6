package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"pipelined.dev/fxchain"
	"pipelined.dev/fxchain/dspfx"
	"pipelined.dev/fxchain/log"
	"pipelined.dev/fxchain/preset"
	"pipelined.dev/fxchain/wav"
)

type renderCommand struct {
	in         string
	out        string
	preset     string
	genre      string
	bufferSize int
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render wav file through an effect chain"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input wav file to process (required)")
	fs.StringVar(&cmd.out, "out", "", "output file to save processed audio (required)")
	fs.StringVar(&cmd.preset, "preset", "", "preset file with the chain")
	fs.StringVar(&cmd.genre, "genre", "", "build the chain for the genre from the input")
	fs.IntVar(&cmd.bufferSize, "buffer", wav.DefaultBufferSize, "buffer size in frames")
}

func (cmd *renderCommand) Run(w io.Writer) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	info, err := wav.ReadInfo(cmd.in)
	if err != nil {
		return err
	}
	track := newTrack("render", info.SampleRate)

	if cmd.preset != "" {
		r, err := preset.Load(cmd.preset)
		if err != nil {
			return err
		}
		track.Chain().Import(r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cmd.genre != "" {
		sample, err := wav.ReadSample(cmd.in, cmd.bufferSize)
		if err != nil {
			return err
		}
		if err := track.BuildSmartChain(ctx, sample, cmd.genre); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Chain: %v\n", track.Info())
	stats, err := wav.Render(ctx, track, cmd.in, cmd.out, cmd.bufferSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Rendered %v frames in %v blocks (%v) to %v\n", stats.Frames, stats.Blocks, stats.Duration(), cmd.out)
	return nil
}

func (cmd *renderCommand) Validate() error {
	var missing []string
	if cmd.in == "" {
		missing = append(missing, "-in")
	}
	if cmd.out == "" {
		missing = append(missing, "-out")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %v", strings.Join(missing, ", "))
	}
	if cmd.preset != "" && cmd.genre != "" {
		return fmt.Errorf("-preset and -genre can't be used together")
	}
	return nil
}

func newTrack(id string, sampleRate int) *fxchain.Track {
	return fxchain.NewTrack(id, sampleRate, dspfx.New(sampleRate),
		fxchain.WithSuggester(dspfx.Suggester{}),
		fxchain.WithTrackLogger(log.GetLogger().WithField("cmd", id)),
	)
}
