// Package dspfx implements fxchain.Processor on top of algo-dsp effect
// kernels.
//
// Kernels are kept per chain node and channel, so effects with a tail
// (delay, reverb) carry their state from one block to the next. A kernel
// is rebuilt when effect, params or number of channels of its node
// change. Calls made outside of a chain get fresh kernels.
package dspfx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/effects"

	"pipelined.dev/fxchain"
	"pipelined.dev/fxchain/signal"
)

// ErrUnknownEffect is returned when an effect has no kernel.
var ErrUnknownEffect = errors.New("unknown effect")

// kernel builds an in-place channel processor for provided params.
type kernel func(sampleRate float64, params fxchain.Params) (func([]float64), error)

var kernels = map[string]kernel{
	"gain":       gain,
	"invert":     invert,
	"delay":      delay,
	"reverb":     reverb,
	"bitcrusher": bitCrusher,
}

// Effects returns sorted names of supported effects.
func Effects() []string {
	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Processor applies algo-dsp effects.
type Processor struct {
	sampleRate float64

	m      sync.Mutex
	states map[fxchain.NodeRef]*state
}

// state holds kernels of a single node, one per channel.
type state struct {
	m        sync.Mutex
	effect   string
	params   fxchain.Params
	channels []func([]float64)
}

// New returns a processor for the sample rate.
func New(sampleRate int) *Processor {
	return &Processor{
		sampleRate: float64(sampleRate),
		states:     make(map[fxchain.NodeRef]*state),
	}
}

// Process implements fxchain.Processor.
func (p *Processor) Process(ctx context.Context, effect string, in signal.Float64, params fxchain.Params) (signal.Float64, error) {
	k, ok := kernels[effect]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEffect, effect)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := &state{}
	if ref, ok := fxchain.NodeFromContext(ctx); ok {
		st = p.state(ref)
	}
	st.m.Lock()
	defer st.m.Unlock()
	if !st.matches(effect, params, len(in)) {
		channels, err := p.build(k, params, len(in))
		if err != nil {
			st.channels = nil
			return nil, fmt.Errorf("%v: %w", effect, err)
		}
		st.effect, st.params, st.channels = effect, params.Clone(), channels
	}

	out := in.Copy()
	for i := range out {
		st.channels[i](out[i])
	}
	return out, nil
}

// Reset drops the state of all nodes. Following calls start with silent
// delay lines and reverb tails.
func (p *Processor) Reset() {
	p.m.Lock()
	defer p.m.Unlock()
	p.states = make(map[fxchain.NodeRef]*state)
}

func (p *Processor) state(ref fxchain.NodeRef) *state {
	p.m.Lock()
	defer p.m.Unlock()
	if p.states == nil {
		p.states = make(map[fxchain.NodeRef]*state)
	}
	st, ok := p.states[ref]
	if !ok {
		st = &state{}
		p.states[ref] = st
	}
	return st
}

func (p *Processor) build(k kernel, params fxchain.Params, numChannels int) ([]func([]float64), error) {
	channels := make([]func([]float64), numChannels)
	for i := range channels {
		fn, err := k(p.sampleRate, params)
		if err != nil {
			return nil, err
		}
		channels[i] = fn
	}
	return channels, nil
}

func (st *state) matches(effect string, params fxchain.Params, numChannels int) bool {
	if st.channels == nil || st.effect != effect || len(st.channels) != numChannels {
		return false
	}
	if len(st.params) != len(params) {
		return false
	}
	for name, v := range params {
		if cached, ok := st.params[name]; !ok || cached != v {
			return false
		}
	}
	return true
}

func num(params fxchain.Params, name string) (float64, bool) {
	v, ok := params[name]
	return v, ok
}

func gain(_ float64, params fxchain.Params) (func([]float64), error) {
	amount := 1.0
	if v, ok := num(params, "amount"); ok {
		amount = v
	}
	return func(buf []float64) {
		for i := range buf {
			buf[i] *= amount
		}
	}, nil
}

func invert(float64, fxchain.Params) (func([]float64), error) {
	return func(buf []float64) {
		for i := range buf {
			buf[i] = -buf[i]
		}
	}, nil
}

func delay(sampleRate float64, params fxchain.Params) (func([]float64), error) {
	d, err := effects.NewDelay(sampleRate)
	if err != nil {
		return nil, err
	}
	if v, ok := num(params, "time"); ok {
		if err := d.SetTime(v); err != nil {
			return nil, err
		}
	}
	if v, ok := num(params, "feedback"); ok {
		if err := d.SetFeedback(v); err != nil {
			return nil, err
		}
	}
	if v, ok := num(params, "mix"); ok {
		if err := d.SetMix(v); err != nil {
			return nil, err
		}
	}
	return d.ProcessInPlace, nil
}

func reverb(_ float64, params fxchain.Params) (func([]float64), error) {
	r := effects.NewReverb()
	if v, ok := num(params, "roomSize"); ok {
		r.SetRoomSize(v)
	}
	if v, ok := num(params, "damp"); ok {
		r.SetDamp(v)
	}
	if v, ok := num(params, "wet"); ok {
		r.SetWet(v)
	}
	if v, ok := num(params, "dry"); ok {
		r.SetDry(v)
	}
	return r.ProcessInPlace, nil
}

func bitCrusher(sampleRate float64, params fxchain.Params) (func([]float64), error) {
	var options []effects.BitCrusherOption
	if v, ok := num(params, "bits"); ok {
		options = append(options, effects.WithBitCrusherBitDepth(v))
	}
	if v, ok := num(params, "downsample"); ok {
		options = append(options, effects.WithBitCrusherDownsample(int(v)))
	}
	if v, ok := num(params, "mix"); ok {
		options = append(options, effects.WithBitCrusherMix(v))
	}
	bc, err := effects.NewBitCrusher(sampleRate, options...)
	if err != nil {
		return nil, err
	}
	return bc.ProcessInPlace, nil
}
