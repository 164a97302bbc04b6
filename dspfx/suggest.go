package dspfx

import (
	"context"
	"math"
	"sort"
	"strings"

	"pipelined.dev/fxchain"
)

// DefaultGenre is used when requested genre has no template.
const DefaultGenre = "default"

// Leading gain stage scales sample peak to targetPeak, up to maxGain.
const (
	targetPeak = 0.8
	maxGain    = 4.0
)

var templates = map[string][]fxchain.Suggestion{
	DefaultGenre: {
		{Effect: "reverb", Params: fxchain.Params{"roomSize": 0.5, "damp": 0.5, "wet": 0.2, "dry": 1}},
	},
	"rock": {
		{Effect: "delay", Params: fxchain.Params{"time": 0.12, "feedback": 0.2, "mix": 0.15}},
		{Effect: "reverb", Params: fxchain.Params{"roomSize": 0.6, "damp": 0.4, "wet": 0.25, "dry": 1}},
	},
	"lofi": {
		{Effect: "bitcrusher", Params: fxchain.Params{"bits": 8, "downsample": 4, "mix": 0.6}},
		{Effect: "reverb", Params: fxchain.Params{"roomSize": 0.4, "damp": 0.7, "wet": 0.2, "dry": 1}},
	},
	"ambient": {
		{Effect: "delay", Params: fxchain.Params{"time": 0.5, "feedback": 0.6, "mix": 0.4}},
		{Effect: "reverb", Params: fxchain.Params{"roomSize": 0.9, "damp": 0.2, "wet": 0.5, "dry": 0.7}},
	},
}

// Genres returns genres that have templates, including default.
func Genres() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggester proposes chains from genre templates. Every chain starts with
// a gain stage that brings the sample peak to a common level.
type Suggester struct{}

// Suggest implements fxchain.Suggester.
func (Suggester) Suggest(ctx context.Context, req fxchain.SuggestRequest) ([]fxchain.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	template, ok := templates[strings.ToLower(strings.TrimSpace(req.Genre))]
	if !ok {
		template = templates[DefaultGenre]
	}
	result := make([]fxchain.Suggestion, 0, len(template)+1)
	result = append(result, fxchain.Suggestion{
		Effect: "gain",
		Params: fxchain.Params{"amount": normalizingGain(req)},
	})
	for _, s := range template {
		result = append(result, fxchain.Suggestion{Effect: s.Effect, Params: s.Params.Clone()})
	}
	return result, nil
}

// normalizingGain returns gain that scales the sample peak to targetPeak.
// Silent samples get unity gain.
func normalizingGain(req fxchain.SuggestRequest) float64 {
	var peak float64
	for _, channel := range req.Samples {
		for _, v := range channel {
			peak = math.Max(peak, math.Abs(v))
		}
	}
	if peak == 0 {
		return 1
	}
	return math.Min(targetPeak/peak, maxGain)
}
