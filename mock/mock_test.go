package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/fxchain"
	"pipelined.dev/fxchain/mock"
	"pipelined.dev/fxchain/signal"
)

func TestProcessor(t *testing.T) {
	errTest := errors.New("test")
	p := &mock.Processor{
		Transforms: map[string]mock.Transform{
			"double": mock.Scale(2),
			"up":     mock.Offset(1),
			"mute":   mock.Zero,
		},
		Errors: map[string]error{"broken": errTest},
		Resize: map[string]int{"short": 1},
	}
	tests := []struct {
		description string
		effect      string
		expected    signal.Float64
		err         error
	}{
		{
			description: "scale",
			effect:      "double",
			expected:    signal.Float64{{2, -4}},
		},
		{
			description: "offset",
			effect:      "up",
			expected:    signal.Float64{{2, -1}},
		},
		{
			description: "zero",
			effect:      "mute",
			expected:    signal.Float64{{0, 0}},
		},
		{
			description: "identity",
			effect:      "unknown",
			expected:    signal.Float64{{1, -2}},
		},
		{
			description: "resize",
			effect:      "short",
			expected:    signal.Float64{{0}},
		},
		{
			description: "error",
			effect:      "broken",
			err:         errTest,
		},
	}
	for _, test := range tests {
		in := signal.Float64{{1, -2}}
		out, err := p.Process(context.Background(), test.effect, in, fxchain.Params{"k": 1})
		assert.Equal(t, test.err, err, test.description)
		assert.Equal(t, test.expected, out, test.description)
		assert.Equal(t, signal.Float64{{1, -2}}, in, test.description)
	}
	calls := p.Calls()
	assert.Equal(t, len(tests), len(calls))
	assert.Equal(t, "double", calls[0].Effect)
	assert.Equal(t, 2, calls[0].Size)

	p.Reset()
	assert.Empty(t, p.Calls())
}

func TestProcessorMutateAndPanic(t *testing.T) {
	p := &mock.Processor{
		Mutate: map[string]bool{"dirty": true},
		Panics: map[string]bool{"boom": true},
	}
	in := signal.Float64{{1, 1}}
	out, err := p.Process(context.Background(), "dirty", in, nil)
	assert.NoError(t, err)
	assert.Equal(t, signal.Float64{{1, 1}}, out)
	assert.Equal(t, signal.Float64{{0, 0}}, in)

	assert.Panics(t, func() {
		_, _ = p.Process(context.Background(), "boom", in, nil)
	})
}

func TestProcessorGate(t *testing.T) {
	p := &mock.Processor{
		Gate:    make(chan struct{}),
		Started: make(chan string, 1),
	}
	done := make(chan signal.Float64)
	go func() {
		out, _ := p.Process(context.Background(), "slow", signal.Float64{{1}}, nil)
		done <- out
	}()
	assert.Equal(t, "slow", <-p.Started)
	p.Gate <- struct{}{}
	assert.Equal(t, signal.Float64{{1}}, <-done)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Process(ctx, "slow", signal.Float64{{1}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuggester(t *testing.T) {
	s := &mock.Suggester{
		Suggestions: []fxchain.Suggestion{{Effect: "eq", Params: fxchain.Params{"low": 1}}},
	}
	result, err := s.Suggest(context.Background(), fxchain.SuggestRequest{TrackID: "t1", Genre: "rock"})
	assert.NoError(t, err)
	assert.Equal(t, s.Suggestions, result)
	result[0].Params["low"] = 2
	assert.Equal(t, float64(1), s.Suggestions[0].Params["low"])
	assert.Equal(t, "rock", s.Requests()[0].Genre)

	s.ErrorOnCall = errors.New("offline")
	_, err = s.Suggest(context.Background(), fxchain.SuggestRequest{})
	assert.Error(t, err)
	assert.Len(t, s.Requests(), 2)
}
