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

package dataflow

import "github.com/nju-sa/corestatic/internal/workqueue"

// Graph is the minimal capability a worklist solver needs from a CFG or
// ICFG: a distinguished entry, predecessor/successor lookup, and the full
// node set.
type Graph[Node comparable] interface {
	Entry() Node
	Preds(n Node) []Node
	Succs(n Node) []Node
	Nodes() []Node
}

// Analysis abstracts over <Node, Fact> via the small capability set spec.md
// §9 asks for: IsForward, NewInitialFact, NewBoundaryFact, MeetInto,
// TransferNode, TransferEdge — a trait, not an inheritance hierarchy.
type Analysis[Node comparable, Fact any] interface {
	IsForward() bool
	NewInitialFact() Fact
	NewBoundaryFact() Fact
	// BoundaryNode is where NewBoundaryFact is seeded: the CFG's entry for a
	// forward analysis, its exit for a backward one (spec.md §4.8's
	// liveness runs backward from Exit, §4.2's constant propagation forward
	// from Entry). Graph itself only exposes Entry, since an ICFG has no
	// single exit, so the analysis — which already holds its own CFG,
	// same as NewBoundaryFact does — names the node directly.
	BoundaryNode() Node
	// MeetInto merges src into tgt in place (spec.md §4.2 meetInto).
	MeetInto(src, tgt Fact)
	// TransferNode computes out from in for node n, writing into out and
	// returning whether out changed.
	TransferNode(n Node, in, out Fact) bool
	// TransferEdge computes the fact flowing along the edge from -> to,
	// given the fact out of from. For most edges (spec.md §4.3) this is a
	// plain copy; ICFG edges (spec.md §4.7) transform it per edge kind.
	TransferEdge(from, to Node, out Fact) Fact
}

// Result holds the per-node in/out facts a Solve run produced.
type Result[Node comparable, Fact any] struct {
	In, Out map[Node]Fact
}

// Solve runs the generic worklist fixed-point algorithm of spec.md §4.3
// (and, parameterized with ICFG edges, §4.7) to completion. Node visiting
// order is implementation-defined (spec.md §5); termination follows from
// the finite ascending-chain property of the fact lattice and the
// monotonicity of TransferNode/TransferEdge/MeetInto.
func Solve[Node comparable, Fact any](g Graph[Node], a Analysis[Node, Fact]) *Result[Node, Fact] {
	in := make(map[Node]Fact)
	out := make(map[Node]Fact)
	entry := a.BoundaryNode()
	for _, n := range g.Nodes() {
		in[n] = a.NewInitialFact()
		out[n] = a.NewInitialFact()
	}
	in[entry] = a.NewBoundaryFact()
	out[entry] = a.NewBoundaryFact()

	wl := workqueue.New[Node]()
	for _, n := range g.Nodes() {
		wl.Add(n)
	}

	preds, succs := g.Preds, g.Succs
	if !a.IsForward() {
		preds, succs = g.Succs, g.Preds
	}

	for !wl.Empty() {
		n := wl.Pop()
		ps := preds(n)
		if len(ps) > 0 {
			merged := a.NewInitialFact()
			for _, p := range ps {
				edgeFact := a.TransferEdge(p, n, out[p])
				a.MeetInto(edgeFact, merged)
			}
			in[n] = merged
		}
		if a.TransferNode(n, in[n], out[n]) {
			for _, s := range succs(n) {
				wl.Add(s)
			}
		}
	}
	return &Result[Node, Fact]{In: in, Out: out}
}
