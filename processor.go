package fxchain

import (
	"context"

	"pipelined.dev/fxchain/signal"
)

// Processor applies a named effect to a buffer. Implementations must
// return a new buffer of the input shape and must not modify the input:
// in parallel mode the same buffer is passed to every node at once.
// Process may be called concurrently.
type Processor interface {
	Process(ctx context.Context, effect string, in signal.Float64, params Params) (signal.Float64, error)
}

// NodeRef identifies the node a processor call is made for. Processors
// that keep state between blocks, such as delay lines, key it by NodeRef.
type NodeRef struct {
	Chain string
	Node  string
}

type nodeRefKey struct{}

// NodeFromContext returns the node a processor call is made for. It's set
// by the chain for every node call.
func NodeFromContext(ctx context.Context) (NodeRef, bool) {
	ref, ok := ctx.Value(nodeRefKey{}).(NodeRef)
	return ref, ok
}

func withNode(ctx context.Context, ref NodeRef) context.Context {
	return context.WithValue(ctx, nodeRefKey{}, ref)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, effect string, in signal.Float64, params Params) (signal.Float64, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, effect string, in signal.Float64, params Params) (signal.Float64, error) {
	return f(ctx, effect, in, params)
}

// Suggestion is a single effect proposed for a chain.
type Suggestion struct {
	Effect string
	Params Params
}

// SuggestRequest carries everything a Suggester knows about a track.
type SuggestRequest struct {
	TrackID    string
	Samples    signal.Float64
	SampleRate int
	Genre      string
}

// Suggester proposes an ordered list of effects for a track.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
}

// SuggesterFunc adapts a function to Suggester.
type SuggesterFunc func(ctx context.Context, req SuggestRequest) ([]Suggestion, error)

// Suggest calls f.
func (f SuggesterFunc) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	return f(ctx, req)
}
