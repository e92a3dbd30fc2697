package flow

import (
	"context"
	"fmt"
)

// END is the terminal pseudo-node. Edges and routers may target it to
// finish a run.
const END = "__end__"

// Context carries request-scoped values through a graph run. It is a
// plain context.Context; services are injected with context values and
// the engine uses it to deliver resume payloads to the interrupt node.
type Context interface {
	context.Context
}

// NewContext wraps a standard context for use in a graph run.
func NewContext(parent context.Context) Context {
	if parent == nil {
		parent = context.Background()
	}
	return parent
}

// NodeFunc processes state and returns updated state.
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc picks the next node id from state. Returning END finishes
// the run.
type RouterFunc[S any] func(ctx Context, state S) string

// Graph is a mutable graph under construction. Nodes, edges, and
// routers are held in plain maps so the topology stays inspectable.
type Graph[S any] struct {
	nodes     map[string]NodeFunc[S]
	edges     map[string]string
	routers   map[string]RouterFunc[S]
	order     []string
	entry     string
	interrupt string
	err       error
}

// NewGraph creates an empty graph.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:   make(map[string]NodeFunc[S]),
		edges:   make(map[string]string),
		routers: make(map[string]RouterFunc[S]),
	}
}

// AddNode registers a node under id.
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if g.err != nil {
		return g
	}
	if id == "" || id == END {
		g.err = fmt.Errorf("invalid node id %q", id)
		return g
	}
	if _, exists := g.nodes[id]; exists {
		g.err = fmt.Errorf("duplicate node %q", id)
		return g
	}
	if fn == nil {
		g.err = fmt.Errorf("node %q has nil function", id)
		return g
	}
	g.nodes[id] = fn
	g.order = append(g.order, id)
	return g
}

// AddEdge adds a static edge from one node to another (or to END).
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	if g.err != nil {
		return g
	}
	if _, exists := g.edges[from]; exists {
		g.err = fmt.Errorf("node %q already has an edge", from)
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdge adds a router edge: after from executes, router
// picks the next node from state.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S]) *Graph[S] {
	if g.err != nil {
		return g
	}
	if router == nil {
		g.err = fmt.Errorf("node %q has nil router", from)
		return g
	}
	if _, exists := g.routers[from]; exists {
		g.err = fmt.Errorf("node %q already has a router", from)
		return g
	}
	g.routers[from] = router
	return g
}

// SetEntry designates the node where Run begins.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	if g.err != nil {
		return g
	}
	g.entry = id
	return g
}

// SetInterrupt designates the node whose entry suspends the run.
func (g *Graph[S]) SetInterrupt(id string) *Graph[S] {
	if g.err != nil {
		return g
	}
	g.interrupt = id
	return g
}

// Compile validates the graph and returns an immutable executable form.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	if g.err != nil {
		return nil, g.err
	}
	if len(g.nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	if g.entry == "" {
		return nil, fmt.Errorf("graph has no entry node")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("entry node %q not found", g.entry)
	}
	if g.interrupt != "" {
		if _, ok := g.nodes[g.interrupt]; !ok {
			return nil, fmt.Errorf("interrupt node %q not found", g.interrupt)
		}
	}

	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("edge from unknown node %q", from)
		}
		if to != END {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("edge %q -> unknown node %q", from, to)
			}
		}
		if _, ok := g.routers[from]; ok {
			return nil, fmt.Errorf("node %q has both an edge and a router", from)
		}
	}
	for from := range g.routers {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("router from unknown node %q", from)
		}
	}

	// Every node needs an outgoing edge or router, except END targets
	// resolved at runtime.
	for _, id := range g.order {
		_, hasEdge := g.edges[id]
		_, hasRouter := g.routers[id]
		if !hasEdge && !hasRouter {
			return nil, fmt.Errorf("node %q has no outgoing edge or router", id)
		}
	}

	cg := &CompiledGraph[S]{
		nodes:     make(map[string]NodeFunc[S], len(g.nodes)),
		edges:     make(map[string]string, len(g.edges)),
		routers:   make(map[string]RouterFunc[S], len(g.routers)),
		entry:     g.entry,
		interrupt: g.interrupt,
	}
	for id, fn := range g.nodes {
		cg.nodes[id] = fn
	}
	for from, to := range g.edges {
		cg.edges[from] = to
	}
	for from, r := range g.routers {
		cg.routers[from] = r
	}
	return cg, nil
}
