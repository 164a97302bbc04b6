package fxchain

import (
	"fmt"
	"sort"

	"github.com/rs/xid"
)

// Params maps effect parameter names to values. The chain doesn't
// validate them, that's up to the Processor.
type Params map[string]float64

// Clone returns an independent copy of the params. Nil stays nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	result := make(Params, len(p))
	for k, v := range p {
		result[k] = v
	}
	return result
}

// Node is a single stage of an effect chain.
type Node struct {
	ID         string  `json:"id"`
	Effect     string  `json:"effect"`
	Parameters Params  `json:"parameters"`
	Enabled    bool    `json:"enabled"`
	Bypass     bool    `json:"bypass"`
	Wet        float64 `json:"wet"`
	Order      int     `json:"order"`
}

// NodeOption sets a single field of a node. Options are used both to
// override defaults when the node is added and to update it later.
type NodeOption func(*Node)

// WithOrder sets the position key of the node.
func WithOrder(order int) NodeOption {
	return func(n *Node) {
		n.Order = order
	}
}

// WithWet sets the blend weight of processed signal. It's not clamped.
func WithWet(wet float64) NodeOption {
	return func(n *Node) {
		n.Wet = wet
	}
}

// WithEnabled enables or disables the node.
func WithEnabled(enabled bool) NodeOption {
	return func(n *Node) {
		n.Enabled = enabled
	}
}

// WithBypass bypasses the node.
func WithBypass(bypass bool) NodeOption {
	return func(n *Node) {
		n.Bypass = bypass
	}
}

// WithParameters replaces the whole parameter set of the node.
func WithParameters(params Params) NodeOption {
	return func(n *Node) {
		n.Parameters = params.Clone()
	}
}

// WithEffect replaces the effect name of the node.
func WithEffect(effect string) NodeOption {
	return func(n *Node) {
		n.Effect = effect
	}
}

// newNode creates a node with default flags: enabled, not bypassed and
// fully wet.
func newNode(effect string, params Params, order int) Node {
	return Node{
		ID:         newUID(),
		Effect:     effect,
		Parameters: params.Clone(),
		Enabled:    true,
		Wet:        1,
		Order:      order,
	}
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// active nodes take part in processing.
func (n Node) active() bool {
	return n.Enabled && !n.Bypass
}

func (n Node) clone() Node {
	n.Parameters = n.Parameters.Clone()
	return n
}

func (n Node) String() string {
	return fmt.Sprintf("%v %v", n.Effect, n.ID)
}

// Mode defines how nodes of a chain are connected.
type Mode string

const (
	// Serial mode feeds every node with the output of the previous one.
	Serial Mode = "serial"
	// Parallel mode feeds every node with the chain input and mixes the
	// results.
	Parallel Mode = "parallel"
)

// String returns a capitalized mode name for chain summaries.
func (m Mode) String() string {
	switch m {
	case Serial:
		return "Serial"
	case Parallel:
		return "Parallel"
	}
	return string(m)
}

// MixPoint defines where the dry reference of parallel chain is taken.
type MixPoint string

const (
	// Pre mix point shares the input buffer as dry reference.
	Pre MixPoint = "pre"
	// Post mix point takes an independent copy of the input as dry
	// reference.
	Post MixPoint = "post"
)

// Routing is a complete chain configuration. It's the unit of export,
// import and presets.
type Routing struct {
	Mode      Mode     `json:"mode"`
	Nodes     []Node   `json:"nodes"`
	DrySignal float64  `json:"drySignal"`
	MixPoint  MixPoint `json:"mixPoint"`
}

// NewRouting returns an empty serial routing with no dry signal and post
// mix point.
func NewRouting() Routing {
	return Routing{
		Mode:     Serial,
		Nodes:    []Node{},
		MixPoint: Post,
	}
}

// Clone returns a deep copy of the routing.
func (r Routing) Clone() Routing {
	nodes := make([]Node, len(r.Nodes))
	for i := range r.Nodes {
		nodes[i] = r.Nodes[i].clone()
	}
	r.Nodes = nodes
	return r
}

// Validate checks that routing can be imported into a chain as-is:
// mode and mix point are known and node ids are unique and not empty.
func (r Routing) Validate() error {
	switch r.Mode {
	case Serial, Parallel:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidRouting, r.Mode)
	}
	switch r.MixPoint {
	case Pre, Post:
	default:
		return fmt.Errorf("%w: mix point %q", ErrInvalidRouting, r.MixPoint)
	}
	ids := make(map[string]struct{}, len(r.Nodes))
	for _, n := range r.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %q has no id", ErrInvalidRouting, n.Effect)
		}
		if _, ok := ids[n.ID]; ok {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidRouting, n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	return nil
}

// sortNodes orders nodes by ascending order. Nodes with equal order keep
// their insertion sequence.
func sortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Order < nodes[j].Order
	})
}
