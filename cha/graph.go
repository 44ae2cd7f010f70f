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

package cha

import (
	"sort"

	"github.com/nju-sa/corestatic/graph"
	"github.com/nju-sa/corestatic/hierarchy"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph adapts the call graph to the shared cyclic-structure backing
// (spec.md §9), assigning each reachable method the id of its discovery
// position in g.order.
func (g *CallGraph) Graph() *graph.Directed {
	adj := graph.NewAdjacency()
	for i := range g.order {
		adj.AddNode(int64(i))
	}
	for caller, callees := range g.callees {
		for _, callee := range callees {
			adj.AddEdge(g.ids[caller], g.ids[callee])
		}
	}
	label := func(id graph.ID) string {
		if id < 0 || int(id) >= len(g.order) {
			return ""
		}
		return g.order[id].Subsignature()
	}
	return graph.NewDirected(adj, label)
}

// RecursiveCycles returns every set of mutually (or self-) recursive
// methods reachable from Entry: the call graph's strongly connected
// components of size > 1, plus any single method that calls itself
// directly. Computed with gonum's Tarjan implementation over Graph()
// rather than a hand-rolled SCC walk, the pattern the teacher's
// escape/dataflow analyses used a call-graph SCC partition for (processing
// a recursive group together before moving on) - here surfaced as a
// diagnostic instead of a processing order.
func (g *CallGraph) RecursiveCycles() [][]hierarchy.Method {
	comps := topo.TarjanSCC(g.Graph())
	var out [][]hierarchy.Method
	for _, comp := range comps {
		if len(comp) < 2 && !g.selfRecursive(g.order[comp[0].ID()]) {
			continue
		}
		methods := make([]hierarchy.Method, 0, len(comp))
		for _, n := range comp {
			methods = append(methods, g.order[n.ID()])
		}
		sort.Slice(methods, func(i, j int) bool {
			return methods[i].Subsignature() < methods[j].Subsignature()
		})
		out = append(out, methods)
	}
	return out
}

func (g *CallGraph) selfRecursive(m hierarchy.Method) bool {
	for _, c := range g.callees[m] {
		if c == m {
			return true
		}
	}
	return false
}
