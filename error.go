package fxchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMode is reported when a chain is asked to process a block
	// in a mode it doesn't support. The block is passed through.
	ErrUnknownMode = errors.New("unknown routing mode")
	// ErrShapeMismatch is returned when a processor result doesn't have
	// the shape of its input.
	ErrShapeMismatch = errors.New("processed buffer shape mismatch")
	// ErrProcessorPanic wraps a panic recovered from a processor call.
	ErrProcessorPanic = errors.New("processor panic")
	// ErrNoSuggester is returned by smart chain build when track has no
	// suggester.
	ErrNoSuggester = errors.New("no chain suggester")
	// ErrInvalidRouting is returned when a routing fails validation.
	ErrInvalidRouting = errors.New("invalid routing")
)

// NodeFailure describes a node that dropped out of a block.
type NodeFailure struct {
	NodeID string
	Effect string
	Err    error
}

func (f NodeFailure) Error() string {
	return fmt.Sprintf("node %v (%v): %v", f.NodeID, f.Effect, f.Err)
}

// Unwrap returns the processor error.
func (f NodeFailure) Unwrap() error {
	return f.Err
}

// nodeFailures wraps all failures of a single block.
type nodeFailures []NodeFailure

func (e nodeFailures) Error() string {
	s := []string{}
	for _, f := range e {
		s = append(s, f.Error())
	}
	return strings.Join(s, ",")
}

// ret returns untyped nil if failure list is empty.
func (e nodeFailures) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
