package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"pipelined.dev/fxchain/dspfx"
)

type effectsCommand struct{}

func (cmd *effectsCommand) Name() string {
	return "effects"
}

func (cmd *effectsCommand) Help() string {
	return "Show the list of available effects and genres"
}

func (cmd *effectsCommand) Register(*flag.FlagSet) {}

func (cmd *effectsCommand) Run(w io.Writer) error {
	fmt.Fprintf(w, "Effects:\n %v\n", strings.Join(dspfx.Effects(), ", "))
	fmt.Fprintf(w, "Genres:\n %v\n", strings.Join(dspfx.Genres(), ", "))
	return nil
}
