package fxchain

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"pipelined.dev/fxchain/log"
	"pipelined.dev/fxchain/metric"
	"pipelined.dev/fxchain/signal"
)

// Track binds an effect chain to a track and keeps named presets of it.
type Track struct {
	id         string
	sampleRate int
	chain      *Chain
	suggester  Suggester
	log        logrus.FieldLogger
	chainOpts  []Option

	m       sync.Mutex
	presets map[string]Routing
}

// TrackOption provides a way to set parameters to track.
type TrackOption func(*Track)

// WithSuggester sets the capability used to build smart chains.
func WithSuggester(s Suggester) TrackOption {
	return func(t *Track) {
		t.suggester = s
	}
}

// WithTrackLogger sets the logger of the track and its chain.
func WithTrackLogger(l logrus.FieldLogger) TrackOption {
	return func(t *Track) {
		t.log = l
	}
}

// WithChainOptions passes options to the chain of the track. They are
// applied after track defaults.
func WithChainOptions(options ...Option) TrackOption {
	return func(t *Track) {
		t.chainOpts = append(t.chainOpts, options...)
	}
}

// NewTrack creates a track with an empty chain. Chain counters are
// published under the track id.
func NewTrack(id string, sampleRate int, processor Processor, options ...TrackOption) *Track {
	t := &Track{
		id:         id,
		sampleRate: sampleRate,
		presets:    make(map[string]Routing),
	}
	for _, option := range options {
		option(t)
	}
	if t.log == nil {
		t.log = log.GetLogger()
	}
	t.log = t.log.WithField("track", id)
	chainOpts := append([]Option{
		WithName(id),
		WithLogger(t.log),
		WithMeter(metric.New(id, sampleRate)),
	}, t.chainOpts...)
	t.chain = NewChain(processor, chainOpts...)
	return t
}

// ID returns track id.
func (t *Track) ID() string {
	return t.id
}

// SampleRate returns track sample rate.
func (t *Track) SampleRate() int {
	return t.sampleRate
}

// Chain returns the effect chain of the track.
func (t *Track) Chain() *Chain {
	return t.chain
}

// Process runs the block through the track chain.
func (t *Track) Process(ctx context.Context, in signal.Float64) signal.Float64 {
	return t.chain.Process(ctx, in)
}

// AddEffect adds a node to the track chain.
func (t *Track) AddEffect(effect string, params Params, options ...NodeOption) string {
	return t.chain.AddEffect(effect, params, options...)
}

// RemoveEffect removes a node from the track chain.
func (t *Track) RemoveEffect(id string) bool {
	return t.chain.RemoveEffect(id)
}

// UpdateEffect updates a node of the track chain.
func (t *Track) UpdateEffect(id string, options ...NodeOption) bool {
	return t.chain.UpdateEffect(id, options...)
}

// Info returns the summary of the track chain.
func (t *Track) Info() string {
	return t.chain.Info()
}

// SavePreset stores a snapshot of current chain under name. Existing
// preset with the same name is replaced.
func (t *Track) SavePreset(name string) {
	t.SetPreset(name, t.chain.Export())
	t.log.WithField("preset", name).Debug("preset saved")
}

// LoadPreset replaces the chain with the preset snapshot. False is
// returned and chain is not changed if there is no such preset.
func (t *Track) LoadPreset(name string) bool {
	r, ok := t.Preset(name)
	if !ok {
		return false
	}
	t.chain.Import(r)
	t.log.WithField("preset", name).Debug("preset loaded")
	return true
}

// DeletePreset removes a preset. False is returned if there is no such
// preset.
func (t *Track) DeletePreset(name string) bool {
	t.m.Lock()
	defer t.m.Unlock()
	if _, ok := t.presets[name]; !ok {
		return false
	}
	delete(t.presets, name)
	return true
}

// Preset returns a copy of the named preset.
func (t *Track) Preset(name string) (Routing, bool) {
	t.m.Lock()
	defer t.m.Unlock()
	r, ok := t.presets[name]
	if !ok {
		return Routing{}, false
	}
	return r.Clone(), true
}

// SetPreset stores a copy of r under name.
func (t *Track) SetPreset(name string, r Routing) {
	t.m.Lock()
	defer t.m.Unlock()
	t.presets[name] = r.Clone()
}

// Presets returns sorted preset names.
func (t *Track) Presets() []string {
	t.m.Lock()
	defer t.m.Unlock()
	names := make([]string, 0, len(t.presets))
	for name := range t.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildSmartChain replaces the chain with effects proposed by the track
// suggester. The chain is cleared before the suggester is called, so it
// stays empty if the suggestion fails. Save a preset first to be able to
// roll back.
func (t *Track) BuildSmartChain(ctx context.Context, in signal.Float64, genre string) error {
	if t.suggester == nil {
		return ErrNoSuggester
	}
	t.chain.Clear()
	suggestions, err := t.suggester.Suggest(ctx, SuggestRequest{
		TrackID:    t.id,
		Samples:    in.Copy(),
		SampleRate: t.sampleRate,
		Genre:      genre,
	})
	if err != nil {
		t.log.WithError(err).Warn("chain suggestion failed, chain left empty")
		return fmt.Errorf("suggest chain for track %v: %w", t.id, err)
	}
	for _, s := range suggestions {
		t.chain.AddEffect(s.Effect, s.Params)
	}
	t.log.WithFields(logrus.Fields{
		"genre":   genre,
		"effects": len(suggestions),
	}).Info("smart chain built")
	return nil
}

func (t *Track) String() string {
	return t.id
}
