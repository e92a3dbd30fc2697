/*
Package flow provides graph-based orchestration for resumable,
human-in-the-loop workflows.

A graph is a set of named nodes connected by static edges and router
edges (conditional branches decided at runtime from state). One node may
be designated the interrupt node: when execution reaches it, the run
suspends, the state is checkpointed, and control returns to the caller.
Resume re-enters the graph at the interrupt node with a caller-supplied
payload, so a pause can span arbitrary time and process restarts.

# Basic Usage

	graph := flow.NewGraph[State]().
	    AddNode("work", workNode).
	    AddNode("await", awaitNode).
	    AddEdge("work", "await").
	    AddConditionalEdge("await", router).
	    SetEntry("work").
	    SetInterrupt("await")

	compiled, err := graph.Compile()

	store := checkpoint.NewMemoryStore()
	res, err := compiled.Run(ctx, state,
	    flow.WithCheckpointing(store),
	    flow.WithThreadID("session-1"))
	if res.Suspended {
	    // ... wait for external input, possibly across a restart ...
	    res, err = compiled.Resume(ctx, store, "session-1", reply)
	}

# Checkpointing

With checkpointing enabled, state is persisted after every executed node
and again when the run suspends or ends. The store keeps only the latest
checkpoint per thread; a new turn for a thread must load that checkpoint
before advancing, which makes the store the serialization point between
turns. State types must round-trip through encoding/json.

# Thread Safety

Graph[S] is not safe for concurrent use during construction.
CompiledGraph[S] is immutable and safe for concurrent use. Concurrent
runs must use distinct thread ids.
*/
package flow
