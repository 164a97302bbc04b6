// Package mock provides deterministic effect processors and chain
// suggesters to test effect chains.
package mock

import (
	"context"
	"sync"

	"pipelined.dev/fxchain"
	"pipelined.dev/fxchain/signal"
)

// Transform maps a single sample.
type Transform func(float64) float64

// Scale returns a transform that multiplies samples by k.
func Scale(k float64) Transform {
	return func(v float64) float64 {
		return v * k
	}
}

// Offset returns a transform that adds d to samples.
func Offset(d float64) Transform {
	return func(v float64) float64 {
		return v + d
	}
}

// Zero transform silences the signal.
func Zero(float64) float64 {
	return 0
}

// Call is a captured processor call.
type Call struct {
	Effect string
	Params fxchain.Params
	Size   int
}

// Processor mocks a fxchain.Processor interface. Effects without
// transform are returned as copies of input.
type Processor struct {
	Transforms map[string]Transform
	// Errors are returned for listed effects.
	Errors map[string]error
	// Panics makes listed effects panic.
	Panics map[string]bool
	// Resize makes listed effects return a buffer of that size.
	Resize map[string]int
	// Mutate makes listed effects overwrite their input with zeros after
	// the result is computed. Well-behaved processors never do that.
	Mutate map[string]bool
	// Gate holds every call until a value is received from it or it's
	// closed. Context cancellation releases the call with an error.
	Gate chan struct{}
	// Started receives effect name when a call begins.
	Started chan string

	m     sync.Mutex
	calls []Call
}

// Process implements fxchain.Processor.
func (p *Processor) Process(ctx context.Context, effect string, in signal.Float64, params fxchain.Params) (signal.Float64, error) {
	p.capture(Call{Effect: effect, Params: params.Clone(), Size: in.Size()})
	if p.Started != nil {
		p.Started <- effect
	}
	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := p.Errors[effect]; ok {
		return nil, err
	}
	if p.Panics[effect] {
		panic("mock: " + effect)
	}
	if size, ok := p.Resize[effect]; ok {
		return signal.EmptyFloat64(in.NumChannels(), size), nil
	}

	out := in.Copy()
	if fn, ok := p.Transforms[effect]; ok {
		for i := range out {
			for j := range out[i] {
				out[i][j] = fn(out[i][j])
			}
		}
	}
	if p.Mutate[effect] {
		for i := range in {
			for j := range in[i] {
				in[i][j] = 0
			}
		}
	}
	return out, nil
}

func (p *Processor) capture(c Call) {
	p.m.Lock()
	defer p.m.Unlock()
	p.calls = append(p.calls, c)
}

// Calls returns captured calls in order they started.
func (p *Processor) Calls() []Call {
	p.m.Lock()
	defer p.m.Unlock()
	result := make([]Call, len(p.calls))
	copy(result, p.calls)
	return result
}

// Reset clears captured calls.
func (p *Processor) Reset() {
	p.m.Lock()
	defer p.m.Unlock()
	p.calls = nil
}

// Suggester mocks a fxchain.Suggester interface.
type Suggester struct {
	Suggestions []fxchain.Suggestion
	ErrorOnCall error

	m        sync.Mutex
	requests []fxchain.SuggestRequest
}

// Suggest implements fxchain.Suggester.
func (s *Suggester) Suggest(ctx context.Context, req fxchain.SuggestRequest) ([]fxchain.Suggestion, error) {
	s.m.Lock()
	s.requests = append(s.requests, req)
	s.m.Unlock()
	if s.ErrorOnCall != nil {
		return nil, s.ErrorOnCall
	}
	result := make([]fxchain.Suggestion, len(s.Suggestions))
	for i, sg := range s.Suggestions {
		result[i] = fxchain.Suggestion{Effect: sg.Effect, Params: sg.Params.Clone()}
	}
	return result, nil
}

// Requests returns captured requests.
func (s *Suggester) Requests() []fxchain.SuggestRequest {
	s.m.Lock()
	defer s.m.Unlock()
	result := make([]fxchain.SuggestRequest, len(s.requests))
	copy(result, s.requests)
	return result
}
