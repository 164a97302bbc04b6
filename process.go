package fxchain

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pipelined.dev/fxchain/signal"
)

// Process runs the block through active nodes and returns a new block of
// the same shape. It never fails: a node that returns an error drops out
// of the block, and any other failure returns the input untouched.
// Process called while another block is being processed returns in as-is.
func (c *Chain) Process(ctx context.Context, in signal.Float64) (out signal.Float64) {
	if !c.processing.CompareAndSwap(false, true) {
		c.meter.Passthrough()
		c.log.Debug("chain is busy, block passed through")
		return in
	}
	defer c.processing.Store(false)

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		c.lastProcess.Store(int64(elapsed))
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("chain failed, block passed through")
			c.meter.Passthrough()
			out = in
		}
	}()

	r := c.snapshot()
	var failures nodeFailures
	switch r.Mode {
	case Serial:
		out, failures = c.serial(ctx, r.Nodes, in)
	case Parallel:
		out, failures = c.parallel(ctx, r, in)
	default:
		c.log.WithError(fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)).Error("chain failed, block passed through")
		c.meter.Passthrough()
		return in
	}
	c.report(failures)
	c.meter.Processed(int64(in.Size()), time.Since(start))
	return out
}

// serial feeds every node with the output of the previous one.
func (c *Chain) serial(ctx context.Context, nodes []Node, in signal.Float64) (signal.Float64, nodeFailures) {
	var failures nodeFailures
	out := in.Copy()
	for _, n := range nodes {
		processed, err := c.call(ctx, n, out)
		if err != nil {
			failures = append(failures, NodeFailure{NodeID: n.ID, Effect: n.Effect, Err: err})
			continue
		}
		out = signal.Blend(out, processed, n.Wet)
	}
	return out, failures
}

// parallel feeds all nodes with the input at once. Results are mixed
// on top of the dry reference in node order, then the sum is blended with
// dry reference by chain dry signal amount.
func (c *Chain) parallel(ctx context.Context, r Routing, in signal.Float64) (signal.Float64, nodeFailures) {
	dry := in
	if r.MixPoint != Pre {
		dry = in.Copy()
	}

	results := make([]signal.Float64, len(r.Nodes))
	errs := make([]error, len(r.Nodes))
	var g errgroup.Group
	for i := range r.Nodes {
		g.Go(func() error {
			results[i], errs[i] = c.call(ctx, r.Nodes[i], in)
			return nil
		})
	}
	_ = g.Wait()

	var failures nodeFailures
	out := dry.Copy()
	for i, n := range r.Nodes {
		if errs[i] != nil {
			failures = append(failures, NodeFailure{NodeID: n.ID, Effect: n.Effect, Err: errs[i]})
			continue
		}
		out = signal.Blend(out, results[i], n.Wet)
	}
	return signal.Blend(out, dry, r.DrySignal), failures
}

// call executes a node. Processor panics and results of wrong shape are
// returned as errors.
func (c *Chain) call(ctx context.Context, n Node, in signal.Float64) (out signal.Float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrProcessorPanic, r)
		}
	}()
	out, err = c.processor.Process(withNode(ctx, NodeRef{Chain: c.name, Node: n.ID}), n.Effect, in, n.Parameters)
	if err != nil {
		return nil, err
	}
	if !in.SameShape(out) {
		return nil, fmt.Errorf("%w: got %d channels of %d samples, want %d of %d",
			ErrShapeMismatch, out.NumChannels(), out.Size(), in.NumChannels(), in.Size())
	}
	return out, nil
}

// report logs failed nodes of a block.
func (c *Chain) report(failures nodeFailures) {
	if failures.ret() == nil {
		return
	}
	c.meter.Failed(len(failures))
	for _, f := range failures {
		c.log.WithFields(logrus.Fields{
			"node":   f.NodeID,
			"effect": f.Effect,
		}).WithError(f.Err).Warn("effect failed, node dropped from block")
		if c.onFailure != nil {
			c.onFailure(f)
		}
	}
}
