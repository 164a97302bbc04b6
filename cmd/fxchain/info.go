package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"pipelined.dev/fxchain/preset"
)

type infoCommand struct {
	preset string
}

func (cmd *infoCommand) Name() string {
	return "info"
}

func (cmd *infoCommand) Help() string {
	return "Show the chain stored in a preset file"
}

func (cmd *infoCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.preset, "preset", "", "preset file to show (required)")
}

func (cmd *infoCommand) Run(w io.Writer) error {
	if cmd.preset == "" {
		return errors.New("missing -preset required flag")
	}
	r, err := preset.Load(cmd.preset)
	if err != nil {
		return err
	}
	track := newTrack("info", 0)
	track.Chain().Import(r)
	fmt.Fprintln(w, track.Info())
	fmt.Fprintf(w, "Dry signal: %v, mix point: %v\n", r.DrySignal, r.MixPoint)
	for _, n := range track.Chain().Nodes() {
		fmt.Fprintf(w, "\t%v\t%v\tenabled=%v bypass=%v wet=%v %v\n", n.ID, n.Effect, n.Enabled, n.Bypass, n.Wet, n.Parameters)
	}
	return nil
}
