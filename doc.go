// Package prdflow builds product requirements documents through a
// turn-based conversation driven by a resumable workflow graph.
//
// A session starts from a raw product idea. The workflow normalizes the
// idea, plans a section-by-section execution order, then alternates
// between asking the user targeted questions and folding their answers
// into section drafts. Completed sections are assembled into a single
// document, which can be refined and exported as immutable versions.
//
// Every path that needs a user reply suspends the graph at its
// interrupt node and checkpoints the full session state, keyed by
// session id. A later message resumes exactly where the session paused,
// in the same process or another one.
//
// Basic usage:
//
//	builder, err := prdflow.NewBuilder(
//	    prdflow.WithLLMClient(client),
//	    prdflow.WithCheckpointStore(store),
//	)
//	if err != nil {
//	    return err
//	}
//	defer builder.Close()
//
//	turn, err := builder.StartSession(ctx, "user-1", "An app that...")
//	// ... later, possibly after a restart:
//	turn, err = builder.SendMessage(ctx, turn.SessionID, "It's for nurses...")
package prdflow
