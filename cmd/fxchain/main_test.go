package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/fxchain"
	"pipelined.dev/fxchain/preset"
)

func run(args ...string) (int, string) {
	var out bytes.Buffer
	c := config{
		args: append([]string{"fxchain"}, args...),
		out:  &out,
	}
	return c.run(), out.String()
}

func writeWav(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	data := make([]int, 2048)
	for i := range data {
		data[i] = (i%64 - 32) * 256
	}
	e := gowav.NewEncoder(f, 44100, 16, 2, 1)
	require.NoError(t, e.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, e.Close())
	require.NoError(t, f.Close())
}

func writePreset(t *testing.T, path string) {
	t.Helper()
	c := fxchain.NewChain(fxchain.ProcessorFunc(nil))
	c.AddEffect("gain", fxchain.Params{"amount": 0.5})
	c.AddEffect("invert", nil)
	require.NoError(t, preset.Save(path, c.Export()))
}

func TestInit(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range commands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"effects", "info", "render"}, names)
}

func TestUsage(t *testing.T) {
	code, out := run()
	assert.Equal(t, errorExitCode, code)
	assert.Contains(t, out, "Usage: fxchain")

	code, out = run("mix")
	assert.Equal(t, errorExitCode, code)
	assert.Contains(t, out, "Unknown command: mix")
}

func TestEffects(t *testing.T) {
	code, out := run("effects")
	assert.Equal(t, successExitCode, code)
	assert.Contains(t, out, "bitcrusher, delay, gain, invert, reverb")
	assert.Contains(t, out, "ambient")
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.json")
	writePreset(t, path)

	code, out := run("info", "-preset", path)
	assert.Equal(t, successExitCode, code)
	assert.Contains(t, out, "Serial: gain → invert")

	code, out = run("info")
	assert.Equal(t, errorExitCode, code)
	assert.Contains(t, out, "missing -preset")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	chain := filepath.Join(dir, "chain.json")
	writeWav(t, in)
	writePreset(t, chain)

	tests := []struct {
		description string
		args        []string
		code        int
		output      string
	}{
		{
			description: "preset",
			args:        []string{"-in", in, "-out", filepath.Join(dir, "preset.wav"), "-preset", chain, "-buffer", "256"},
			code:        successExitCode,
			output:      "Rendered 1024 frames in 4 blocks",
		},
		{
			description: "genre",
			args:        []string{"-in", in, "-out", filepath.Join(dir, "genre.wav"), "-genre", "rock"},
			code:        successExitCode,
			output:      "Chain: Serial: gain → delay → reverb",
		},
		{
			description: "empty chain",
			args:        []string{"-in", in, "-out", filepath.Join(dir, "empty.wav")},
			code:        successExitCode,
			output:      "Chain: No effects",
		},
		{
			description: "missing flags",
			args:        []string{"-buffer", "128"},
			code:        errorExitCode,
			output:      "missing required flags: -in, -out",
		},
		{
			description: "preset and genre",
			args:        []string{"-in", in, "-out", filepath.Join(dir, "both.wav"), "-preset", chain, "-genre", "rock"},
			code:        errorExitCode,
			output:      "can't be used together",
		},
		{
			description: "missing input",
			args:        []string{"-in", filepath.Join(dir, "missing.wav"), "-out", filepath.Join(dir, "out.wav")},
			code:        errorExitCode,
			output:      "Command failed",
		},
	}
	for _, test := range tests {
		code, out := run(append([]string{"render"}, test.args...)...)
		assert.Equal(t, test.code, code, test.description)
		assert.Contains(t, out, test.output, test.description)
	}
	_, err := os.Stat(filepath.Join(dir, "preset.wav"))
	assert.NoError(t, err)
}
