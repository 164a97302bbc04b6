/*
Package fxchain executes audio through chains of effects.

Concept

A chain is an ordered list of effect nodes. Each node names an effect,
carries its parameters and has a wet amount that defines how much of the
processed signal is blended back:

    output = input*(1-wet) + processed*wet

The chain doesn't do DSP itself. Effects are applied by a Processor, which
is provided when chain is created. The dspfx package implements one on top
of algo-dsp kernels, the mock package provides deterministic processors
for tests.

Routing

Nodes are connected in one of two modes:

    Serial - every node consumes the output of the previous one;
    Parallel - every node consumes the chain input, results are blended
    one after another on top of the dry reference, then the sum is
    blended with the dry reference by the chain dry signal amount.

In parallel mode all nodes are issued at once, each in its own goroutine.
Results are mixed in node order, so the output doesn't depend on which
node finishes first.

Failures

Process never returns an error. A node that fails is dropped from the
block: serial chain continues with the signal it had before the node,
parallel chain mixes nothing from it. Any other failure returns the input
untouched. A block passed to Process while another block is in flight is
also returned untouched.

Tracks

Track binds a chain to a track id and sample rate, keeps named preset
snapshots of the chain and builds chains proposed by a Suggester:

    t := fxchain.NewTrack("vocals", 48000, processor, fxchain.WithSuggester(s))
    t.AddEffect("gain", fxchain.Params{"amount": 2})
    t.SavePreset("dry")
    err := t.BuildSmartChain(ctx, block, "pop")
    out := t.Process(ctx, block)
*/
package fxchain
