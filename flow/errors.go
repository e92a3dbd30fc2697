package flow

import (
	"errors"
	"fmt"
)

// Engine errors.
var (
	// ErrNotSuspended indicates a Resume was attempted on a thread that
	// is not paused at the interrupt node. Callers typically fall back
	// to treating the input as a fresh message.
	ErrNotSuspended = errors.New("thread is not suspended at the interrupt node")

	// ErrMaxIterations indicates the loop guard tripped.
	ErrMaxIterations = errors.New("max iterations exceeded")

	// ErrNoCheckpointing indicates an operation that requires a
	// checkpoint store was invoked without one.
	ErrNoCheckpointing = errors.New("checkpointing not enabled")
)

// NodeError wraps an error returned by a node, identifying which node
// failed.
type NodeError struct {
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// RouteError indicates a router returned an unknown node id.
type RouteError struct {
	NodeID string
	Target string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("router for node %s returned unknown target %q", e.NodeID, e.Target)
}

// PanicError wraps a panic recovered from a node.
type PanicError struct {
	NodeID string
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}
