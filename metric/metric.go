// Package metric publishes effect chain counters with expvar.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pipelined.dev/fxchain/signal"
)

const tracksLabel = "fxchain.tracks"

const (
	// BlockCounter counts processed blocks.
	BlockCounter = "Blocks"
	// SampleCounter counts processed samples per channel.
	SampleCounter = "Samples"
	// DurationCounter counts what's the duration of processed signal.
	DurationCounter = "Duration"
	// ProcessTimeCounter holds the wall-clock time of the last block.
	ProcessTimeCounter = "ProcessTime"
	// FailureCounter counts nodes that failed and dropped out of a block.
	FailureCounter = "NodeFailures"
	// PassthroughCounter counts blocks returned untouched because the chain
	// was busy or orchestration failed.
	PassthroughCounter = "Passthroughs"
)

var (
	registry = struct {
		sync.Mutex
		m map[string]*published
	}{
		m: make(map[string]*published),
	}

	counters = []string{
		BlockCounter,
		SampleCounter,
		DurationCounter,
		ProcessTimeCounter,
		FailureCounter,
		PassthroughCounter,
	}
)

// published are expvar counters of a single name.
type published struct {
	blocks       *expvar.Int
	samples      *expvar.Int
	failures     *expvar.Int
	passthroughs *expvar.Int
	duration     *duration
	processTime  *duration
}

// Meter writes counters of a single named track. A nil Meter discards
// everything.
type Meter struct {
	sampleRate int
	*published
}

// New returns a meter that writes counters published under name.
// Counters published by expvar can't be removed, so meters with the same
// name share counters. Each meter converts samples to duration with its
// own sample rate.
func New(name string, sampleRate int) *Meter {
	registry.Lock()
	defer registry.Unlock()
	p, ok := registry.m[name]
	if !ok {
		p = &published{
			blocks:       expvar.NewInt(key(name, BlockCounter)),
			samples:      expvar.NewInt(key(name, SampleCounter)),
			failures:     expvar.NewInt(key(name, FailureCounter)),
			passthroughs: expvar.NewInt(key(name, PassthroughCounter)),
			duration:     &duration{},
			processTime:  &duration{},
		}
		expvar.Publish(key(name, DurationCounter), p.duration)
		expvar.Publish(key(name, ProcessTimeCounter), p.processTime)
		registry.m[name] = p
	}
	return &Meter{
		sampleRate: sampleRate,
		published:  p,
	}
}

// Processed captures a completed block.
func (m *Meter) Processed(samples int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.blocks.Add(1)
	m.samples.Add(samples)
	m.duration.add(signal.DurationOf(m.sampleRate, samples))
	m.processTime.set(elapsed)
}

// Failed captures n node failures.
func (m *Meter) Failed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.failures.Add(int64(n))
}

// Passthrough captures a block that was returned unprocessed.
func (m *Meter) Passthrough() {
	if m == nil {
		return
	}
	m.passthroughs.Add(1)
}

// Get metrics values for the named track.
func Get(name string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(name, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// GetAll returns counters for all metered tracks.
func GetAll() map[string]map[string]string {
	registry.Lock()
	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	registry.Unlock()

	m := make(map[string]map[string]string, len(names))
	for _, name := range names {
		m[name] = Get(name)
	}
	return m
}

func key(name, counter string) string {
	return fmt.Sprintf("%s.%s.%s", tracksLabel, name, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)).String())
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
