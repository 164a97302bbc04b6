package fxchain

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"pipelined.dev/fxchain/log"
	"pipelined.dev/fxchain/metric"
)

// Chain is an ordered set of effect nodes executed in serial or parallel
// mode.
//
// Management methods are safe to call while a block is processed, changes
// take effect on the next block. Only one block is processed at a time:
// Process called while another call is in flight returns its input
// untouched.
type Chain struct {
	name      string
	processor Processor
	log       logrus.FieldLogger
	meter     *metric.Meter
	onFailure func(NodeFailure)

	m       sync.RWMutex
	routing Routing

	processing  atomic.Bool
	lastProcess atomic.Int64
}

// Option provides a way to set parameters to chain.
type Option func(*Chain)

// WithName sets the name used in chain log entries.
func WithName(name string) Option {
	return func(c *Chain) {
		c.name = name
	}
}

// WithLogger sets the logger of the chain.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Chain) {
		c.log = l
	}
}

// WithMeter sets the meter that captures chain counters.
func WithMeter(m *metric.Meter) Option {
	return func(c *Chain) {
		c.meter = m
	}
}

// WithFailureHandler sets a function that is called for every node that
// drops out of a block. It's called from the goroutine of Process after
// all nodes are done.
func WithFailureHandler(fn func(NodeFailure)) Option {
	return func(c *Chain) {
		c.onFailure = fn
	}
}

// NewChain creates an empty serial chain on top of processor.
func NewChain(processor Processor, options ...Option) *Chain {
	c := &Chain{
		name:      newUID(),
		processor: processor,
		routing:   NewRouting(),
	}
	for _, option := range options {
		option(c)
	}
	if c.log == nil {
		c.log = log.GetLogger().WithField("chain", c.name)
	}
	return c
}

// AddEffect appends a new enabled, fully wet node and returns its id.
// Unless WithOrder is provided, the node order is the current number of
// nodes.
func (c *Chain) AddEffect(effect string, params Params, options ...NodeOption) string {
	c.m.Lock()
	defer c.m.Unlock()
	n := newNode(effect, params, len(c.routing.Nodes))
	for _, option := range options {
		option(&n)
	}
	c.routing.Nodes = append(c.routing.Nodes, n)
	sortNodes(c.routing.Nodes)
	return n.ID
}

// RemoveEffect removes the node with provided id. Orders of remaining
// nodes are not changed.
func (c *Chain) RemoveEffect(id string) bool {
	c.m.Lock()
	defer c.m.Unlock()
	for i := range c.routing.Nodes {
		if c.routing.Nodes[i].ID == id {
			c.routing.Nodes = append(c.routing.Nodes[:i], c.routing.Nodes[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateEffect applies options to the node with provided id. If the order
// is changed, nodes are sorted again.
func (c *Chain) UpdateEffect(id string, options ...NodeOption) bool {
	c.m.Lock()
	defer c.m.Unlock()
	for i := range c.routing.Nodes {
		n := &c.routing.Nodes[i]
		if n.ID != id {
			continue
		}
		order := n.Order
		for _, option := range options {
			option(n)
		}
		n.ID = id
		if n.Order != order {
			sortNodes(c.routing.Nodes)
		}
		return true
	}
	return false
}

// Effect returns a copy of the node with provided id.
func (c *Chain) Effect(id string) (Node, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	for _, n := range c.routing.Nodes {
		if n.ID == id {
			return n.clone(), true
		}
	}
	return Node{}, false
}

// Nodes returns copies of all nodes in execution order.
func (c *Chain) Nodes() []Node {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.routing.Clone().Nodes
}

// Len returns number of nodes, including disabled and bypassed ones.
func (c *Chain) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.routing.Nodes)
}

// SetMode switches chain mode for subsequent blocks.
func (c *Chain) SetMode(m Mode) {
	c.m.Lock()
	defer c.m.Unlock()
	c.routing.Mode = m
}

// Mode returns current chain mode.
func (c *Chain) Mode() Mode {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.routing.Mode
}

// SetDrySignal sets the share of unprocessed input in parallel output.
func (c *Chain) SetDrySignal(v float64) {
	c.m.Lock()
	defer c.m.Unlock()
	c.routing.DrySignal = v
}

// DrySignal returns the share of unprocessed input in parallel output.
func (c *Chain) DrySignal() float64 {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.routing.DrySignal
}

// SetMixPoint sets where the dry reference of parallel mode is taken.
func (c *Chain) SetMixPoint(p MixPoint) {
	c.m.Lock()
	defer c.m.Unlock()
	c.routing.MixPoint = p
}

// MixPoint returns where the dry reference of parallel mode is taken.
func (c *Chain) MixPoint() MixPoint {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.routing.MixPoint
}

// Clear removes all nodes. Mode and mix settings are kept.
func (c *Chain) Clear() {
	c.m.Lock()
	defer c.m.Unlock()
	c.routing.Nodes = []Node{}
}

// Export returns a deep copy of the chain routing.
func (c *Chain) Export() Routing {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.routing.Clone()
}

// Import replaces the chain routing with a deep copy of r.
func (c *Chain) Import(r Routing) {
	r = r.Clone()
	sortNodes(r.Nodes)
	c.m.Lock()
	defer c.m.Unlock()
	c.routing = r
}

// Info returns a summary of active nodes, e.g. "Serial: eq → reverb".
// Chain without active nodes reports "No effects".
func (c *Chain) Info() string {
	c.m.RLock()
	defer c.m.RUnlock()
	names := make([]string, 0, len(c.routing.Nodes))
	for _, n := range c.routing.Nodes {
		if n.active() {
			names = append(names, n.Effect)
		}
	}
	if len(names) == 0 {
		return "No effects"
	}
	return fmt.Sprintf("%v: %v", c.routing.Mode, strings.Join(names, " → "))
}

// LastProcessTime returns wall-clock duration of the last completed
// Process call.
func (c *Chain) LastProcessTime() time.Duration {
	return time.Duration(c.lastProcess.Load())
}

func (c *Chain) String() string {
	return c.name
}

// snapshot returns a copy of routing with active nodes only.
func (c *Chain) snapshot() Routing {
	c.m.RLock()
	defer c.m.RUnlock()
	r := c.routing
	r.Nodes = make([]Node, 0, len(c.routing.Nodes))
	for _, n := range c.routing.Nodes {
		if n.active() {
			r.Nodes = append(r.Nodes, n.clone())
		}
	}
	return r
}
