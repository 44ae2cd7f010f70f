// Copyright the corestatic authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph is a cyclic-structure backing (spec.md §9 "cyclic
// structures"): an id -> node arena with adjacency lists keyed by stable
// integer ids. Its one consumer is the CHA call graph (cha.CallGraph.Graph);
// the CFG, ICFG, PFG and TFG keep their own map-based adjacency. A Directed view
// adapts it to gonum's graph.Directed so diagnostics can reuse gonum's
// traversal and shortest-path utilities without duplicating them here.
package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// ID is a stable integer node identifier, assigned by the owning component
// (e.g. a statement index, an interned (ctx, pointer) id).
type ID = int64

// Adjacency is an insertion-ordered id -> id arena. Edges are monotone:
// once added, never removed (the call graph, PFG and TFG invariant in
// spec.md §3).
type Adjacency struct {
	nodes  []ID
	seen   map[ID]bool
	out    map[ID]map[ID]bool
	outOrd map[ID][]ID
	in     map[ID]map[ID]bool
}

// NewAdjacency returns an empty Adjacency.
func NewAdjacency() *Adjacency {
	return &Adjacency{
		seen:   make(map[ID]bool),
		out:    make(map[ID]map[ID]bool),
		outOrd: make(map[ID][]ID),
		in:     make(map[ID]map[ID]bool),
	}
}

// AddNode registers id if not already present.
func (a *Adjacency) AddNode(id ID) {
	if a.seen[id] {
		return
	}
	a.seen[id] = true
	a.nodes = append(a.nodes, id)
	a.out[id] = make(map[ID]bool)
	a.in[id] = make(map[ID]bool)
}

// AddEdge adds a directed edge from -> to, registering both endpoints.
// Returns true if the edge is new.
func (a *Adjacency) AddEdge(from, to ID) bool {
	a.AddNode(from)
	a.AddNode(to)
	if a.out[from][to] {
		return false
	}
	a.out[from][to] = true
	a.outOrd[from] = append(a.outOrd[from], to)
	a.in[to][from] = true
	return true
}

// HasEdge reports whether from -> to is present.
func (a *Adjacency) HasEdge(from, to ID) bool { return a.out[from][to] }

// HasNode reports whether id has been registered.
func (a *Adjacency) HasNode(id ID) bool { return a.seen[id] }

// Succs returns the out-neighbors of id in insertion order.
func (a *Adjacency) Succs(id ID) []ID { return a.outOrd[id] }

// Preds returns the in-neighbors of id; order is unspecified (spec.md §5:
// node visiting order is implementation-defined).
func (a *Adjacency) Preds(id ID) []ID {
	m := a.in[id]
	out := make([]ID, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Nodes returns every registered node id, in insertion order.
func (a *Adjacency) Nodes() []ID { return a.nodes }

// Directed adapts an Adjacency to gonum's graph.Directed, labeling each
// node with label(id) for diagnostic rendering.
type Directed struct {
	adj   *Adjacency
	label func(ID) string
}

// NewDirected wraps adj for gonum consumption. label may be nil.
func NewDirected(adj *Adjacency, label func(ID) string) *Directed {
	if label == nil {
		label = func(id ID) string { return "" }
	}
	return &Directed{adj: adj, label: label}
}

type labeledNode struct {
	id    ID
	label string
}

func (n labeledNode) ID() int64    { return n.id }
func (n labeledNode) String() string { return n.label }

func (d *Directed) Node(id int64) graph.Node {
	if !d.adj.HasNode(id) {
		return nil
	}
	return labeledNode{id, d.label(id)}
}

func (d *Directed) Nodes() graph.Nodes {
	ns := make([]graph.Node, 0, len(d.adj.nodes))
	for _, id := range d.adj.nodes {
		ns = append(ns, labeledNode{id, d.label(id)})
	}
	return iterator.NewOrderedNodes(ns)
}

func (d *Directed) From(id int64) graph.Nodes {
	succs := d.adj.Succs(id)
	ns := make([]graph.Node, 0, len(succs))
	for _, s := range succs {
		ns = append(ns, labeledNode{s, d.label(s)})
	}
	return iterator.NewOrderedNodes(ns)
}

func (d *Directed) HasEdgeBetween(x, y int64) bool {
	return d.adj.HasEdge(x, y) || d.adj.HasEdge(y, x)
}

func (d *Directed) Edge(u, v int64) graph.Edge {
	return d.WeightedEdge(u, v)
}

func (d *Directed) HasEdgeFromTo(u, v int64) bool { return d.adj.HasEdge(u, v) }

func (d *Directed) WeightedEdge(u, v int64) graph.Edge {
	if !d.adj.HasEdge(u, v) {
		return nil
	}
	return simple.Edge{F: labeledNode{u, d.label(u)}, T: labeledNode{v, d.label(v)}}
}
