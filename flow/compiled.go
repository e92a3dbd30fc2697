package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/prdflow/flow/checkpoint"
)

// DefaultMaxIterations bounds node executions per run to protect
// against routing loops.
const DefaultMaxIterations = 100

// CompiledGraph is the immutable, executable form of a Graph.
type CompiledGraph[S any] struct {
	nodes     map[string]NodeFunc[S]
	edges     map[string]string
	routers   map[string]RouterFunc[S]
	entry     string
	interrupt string
}

// Result is the outcome of a Run or Resume.
type Result[S any] struct {
	// State is the final state after the run stopped.
	State S

	// Suspended reports whether the run paused at the interrupt node
	// awaiting external input.
	Suspended bool

	// Next is the node pending execution when suspended, "" otherwise.
	Next string

	// Steps is the number of nodes executed in this run.
	Steps int
}

type runConfig struct {
	store         checkpoint.Store
	threadID      string
	start         string
	startStep     int
	maxIterations int
	logger        *slog.Logger
	resume        any
	hasResume     bool
}

// RunOption configures a Run or Resume invocation.
type RunOption func(*runConfig)

// WithCheckpointing persists state to store after every executed node.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(cfg *runConfig) { cfg.store = store }
}

// WithThreadID keys checkpoints for this run. Required when
// checkpointing is enabled.
func WithThreadID(id string) RunOption {
	return func(cfg *runConfig) { cfg.threadID = id }
}

// WithStart overrides the entry node for this run. Used to re-enter a
// graph mid-topology, e.g. injecting a fresh message at the interrupt
// node of a non-suspended thread.
func WithStart(node string) RunOption {
	return func(cfg *runConfig) { cfg.start = node }
}

// WithMaxIterations overrides the loop guard.
func WithMaxIterations(n int) RunOption {
	return func(cfg *runConfig) { cfg.maxIterations = n }
}

// WithLogger attaches a structured logger to the run.
func WithLogger(l *slog.Logger) RunOption {
	return func(cfg *runConfig) { cfg.logger = l }
}

// withResume injects the resume payload delivered to the interrupt
// node. Internal: callers go through Resume.
func withResume(payload any) RunOption {
	return func(cfg *runConfig) {
		cfg.resume = payload
		cfg.hasResume = true
	}
}

// withStartStep continues step numbering from a loaded checkpoint.
func withStartStep(step int) RunOption {
	return func(cfg *runConfig) { cfg.startStep = step }
}

type resumeKey struct{}

// ResumeValue returns the payload supplied to Resume, or nil. Only the
// interrupt node observes a non-nil value, and only on the resuming
// turn.
func ResumeValue(ctx Context) any {
	return ctx.Value(resumeKey{})
}

// Run executes the graph from the entry node (or WithStart) until it
// reaches END or arrives at the interrupt node. Arriving at the
// interrupt node checkpoints the state and returns a suspended Result
// without executing the node; starting at the interrupt node executes
// it, which is how Resume re-enters the graph.
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (Result[S], error) {
	cfg := &runConfig{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.store != nil && cfg.threadID == "" {
		return Result[S]{State: state}, fmt.Errorf("checkpointing enabled without thread id")
	}

	current := cfg.start
	if current == "" {
		current = cg.entry
	}
	if _, ok := cg.nodes[current]; !ok {
		return Result[S]{State: state}, fmt.Errorf("start node %q not found", current)
	}

	step := cfg.startStep
	steps := 0
	first := true

	for current != END {
		if steps >= cfg.maxIterations {
			return Result[S]{State: state, Steps: steps}, ErrMaxIterations
		}

		// Arriving at the interrupt node from inside the run suspends.
		// A run that starts there (Resume, or a fresh-message re-entry)
		// executes it instead.
		if current == cg.interrupt && !first {
			if err := cg.save(ctx, cfg, state, current, step); err != nil {
				return Result[S]{State: state, Steps: steps}, err
			}
			cfg.logger.Debug("run suspended",
				"thread_id", cfg.threadID, "node", current, "step", step)
			return Result[S]{State: state, Suspended: true, Next: current, Steps: steps}, nil
		}

		nodeCtx := ctx
		if current == cg.interrupt && cfg.hasResume {
			nodeCtx = context.WithValue(ctx, resumeKey{}, cfg.resume)
			cfg.resume = nil
			cfg.hasResume = false
		}
		first = false

		start := time.Now()
		next, newState, err := cg.execute(nodeCtx, current, state)
		state = newState
		if err != nil {
			return Result[S]{State: state, Steps: steps}, err
		}
		cfg.logger.Debug("node executed",
			"thread_id", cfg.threadID, "node", current,
			"next", next, "duration_ms", time.Since(start).Milliseconds())

		steps++
		step++

		if err := cg.save(ctx, cfg, state, next, step); err != nil {
			return Result[S]{State: state, Steps: steps}, err
		}
		current = next
	}

	return Result[S]{State: state, Steps: steps}, nil
}

// Resume loads the latest checkpoint for threadID and, if the thread is
// suspended at the interrupt node, re-enters the graph there with
// payload available via ResumeValue. Resuming a thread that is not
// suspended returns the loaded state together with ErrNotSuspended.
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, threadID string, payload any, opts ...RunOption) (Result[S], error) {
	if store == nil {
		return Result[S]{}, ErrNoCheckpointing
	}
	if cg.interrupt == "" {
		return Result[S]{}, fmt.Errorf("graph has no interrupt node")
	}

	cp, err := store.Latest(ctx, threadID)
	if err != nil {
		return Result[S]{}, fmt.Errorf("resume %s: %w", threadID, err)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return Result[S]{}, fmt.Errorf("resume %s: decode state: %w", threadID, err)
	}

	if cp.Next != cg.interrupt {
		return Result[S]{State: state}, ErrNotSuspended
	}

	opts = append(opts,
		WithCheckpointing(store),
		WithThreadID(threadID),
		WithStart(cp.Next),
		withStartStep(cp.Step),
		withResume(payload),
	)
	return cg.Run(ctx, state, opts...)
}

// StateAt loads the latest checkpointed state for threadID.
func (cg *CompiledGraph[S]) StateAt(ctx context.Context, store checkpoint.Store, threadID string) (S, checkpoint.Checkpoint, error) {
	var state S
	if store == nil {
		return state, checkpoint.Checkpoint{}, ErrNoCheckpointing
	}
	cp, err := store.Latest(ctx, threadID)
	if err != nil {
		return state, checkpoint.Checkpoint{}, err
	}
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return state, checkpoint.Checkpoint{}, fmt.Errorf("decode state %s: %w", threadID, err)
	}
	return state, cp, nil
}

// Suspended reports whether the thread's latest checkpoint is paused at
// the interrupt node.
func (cg *CompiledGraph[S]) Suspended(ctx context.Context, store checkpoint.Store, threadID string) (bool, error) {
	if store == nil {
		return false, ErrNoCheckpointing
	}
	cp, err := store.Latest(ctx, threadID)
	if err != nil {
		return false, err
	}
	return cg.interrupt != "" && cp.Next == cg.interrupt, nil
}

// Entry returns the entry node id.
func (cg *CompiledGraph[S]) Entry() string { return cg.entry }

// Interrupt returns the interrupt node id, "" if none.
func (cg *CompiledGraph[S]) Interrupt() string { return cg.interrupt }

// Nodes returns the node ids in the graph.
func (cg *CompiledGraph[S]) Nodes() []string {
	ids := make([]string, 0, len(cg.nodes))
	for id := range cg.nodes {
		ids = append(ids, id)
	}
	return ids
}

// execute runs one node and resolves its successor.
func (cg *CompiledGraph[S]) execute(ctx Context, id string, state S) (next string, out S, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = state
			err = &PanicError{NodeID: id, Value: r, Stack: debug.Stack()}
		}
	}()

	fn := cg.nodes[id]
	out, err = fn(ctx, state)
	if err != nil {
		return "", out, &NodeError{NodeID: id, Err: err}
	}

	if to, ok := cg.edges[id]; ok {
		return to, out, nil
	}
	router := cg.routers[id]
	target := router(ctx, out)
	if target != END {
		if _, ok := cg.nodes[target]; !ok {
			return "", out, &RouteError{NodeID: id, Target: target}
		}
	}
	return target, out, nil
}

// save checkpoints the state with the pending next node.
func (cg *CompiledGraph[S]) save(ctx Context, cfg *runConfig, state S, next string, step int) error {
	if cfg.store == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", cfg.threadID, err)
	}
	cp := checkpoint.Checkpoint{
		ThreadID: cfg.threadID,
		Next:     next,
		State:    raw,
		Step:     step,
		SavedAt:  time.Now().UTC(),
	}
	if err := cfg.store.Put(ctx, cp); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cfg.threadID, err)
	}
	return nil
}
