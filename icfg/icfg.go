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

// Package icfg builds the inter-procedural control-flow graph of spec.md
// §3 "ICFG<Method,Node>": the union of every reachable method's CFG
// (cfg.Build, reused unchanged per underlying *ir.Function) plus Call and
// Return edges wired from the points-to solver's on-the-fly call graph.
package icfg

import (
	"github.com/nju-sa/corestatic/cfg"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/pointer"
)

// EdgeKind is one of the four ICFG edge kinds of spec.md §3.
type EdgeKind uint8

const (
	Normal EdgeKind = iota
	CallToReturn
	Call
	Return
)

// Node identifies one ICFG node: a statement (or Entry/Exit pseudo-node) of
// a particular contextualized method.
type Node struct {
	CM pointer.CSMethod
	N  cfg.Node
}

type edgeKey struct{ from, to Node }

// edgeInfo is the per-edge metadata the inter-procedural transfer functions
// need: its kind, and — for CallToReturn/Call/Return — the call site that
// gave rise to it (spec.md §4.7's edge-transfer table reads the call site's
// lhs/args/callee).
type edgeInfo struct {
	kind EdgeKind
	site *ir.Invoke
}

// ICFG is the inter-procedural control-flow graph.
type ICFG struct {
	entry Node
	succs map[Node][]Node
	preds map[Node][]Node
	edges map[edgeKey]edgeInfo
	cfgs  map[*ir.Function]*cfg.CFG
	order []Node
}

// Build constructs the ICFG from a completed points-to Result: one node per
// (reachable CSMethod, CFG node) pair, Normal edges for intra-method CFG
// edges, and CallToReturn/Call/Return edges at every call site, resolved
// against the call-graph edges the points-to solver discovered.
func Build(res *pointer.Result) *ICFG {
	g := &ICFG{
		succs: map[Node][]Node{},
		preds: map[Node][]Node{},
		edges: map[edgeKey]edgeInfo{},
		cfgs:  map[*ir.Function]*cfg.CFG{},
	}
	seen := map[Node]bool{}
	addNode := func(n Node) {
		if !seen[n] {
			seen[n] = true
			g.order = append(g.order, n)
		}
	}
	addEdge := func(kind EdgeKind, from, to Node, site *ir.Invoke) {
		g.succs[from] = append(g.succs[from], to)
		g.preds[to] = append(g.preds[to], from)
		g.edges[edgeKey{from, to}] = edgeInfo{kind, site}
	}
	getCFG := func(fn *ir.Function) *cfg.CFG {
		if c, ok := g.cfgs[fn]; ok {
			return c
		}
		c := cfg.Build(fn)
		g.cfgs[fn] = c
		return c
	}

	calleesAt := map[callSiteKey][]pointer.CSMethod{}
	for _, e := range res.CallGraphEdges() {
		k := callSiteKey{e.Caller, e.Site}
		calleesAt[k] = append(calleesAt[k], e.Callee)
	}

	for _, cm := range res.ReachableMethods() {
		fn := cm.M.IR()
		if fn == nil {
			continue
		}
		c := getCFG(fn)
		for _, n := range c.Nodes() {
			from := Node{CM: cm, N: n}
			addNode(from)
			invoke, isInvoke := c.Stmt(n).(*ir.Invoke)
			if !isInvoke {
				for _, succ := range c.Succs(n) {
					addEdge(Normal, from, Node{CM: cm, N: succ}, nil)
				}
				continue
			}
			for _, succ := range c.Succs(n) {
				addEdge(CallToReturn, from, Node{CM: cm, N: succ}, invoke)
			}
			for _, callee := range calleesAt[callSiteKey{cm, invoke}] {
				calleeFn := callee.M.IR()
				if calleeFn == nil {
					continue
				}
				calleeCFG := getCFG(calleeFn)
				addEdge(Call, from, Node{CM: callee, N: calleeCFG.Entry()}, invoke)
				exit := Node{CM: callee, N: calleeCFG.Exit()}
				for _, succ := range c.Succs(n) {
					addEdge(Return, exit, Node{CM: cm, N: succ}, invoke)
				}
			}
		}
	}

	entryFn := res.Entry.M.IR()
	g.entry = Node{CM: res.Entry, N: getCFG(entryFn).Entry()}
	return g
}

type callSiteKey struct {
	caller pointer.CSMethod
	site   *ir.Invoke
}

// Entry returns the ICFG's distinguished entry node.
func (g *ICFG) Entry() Node { return g.entry }

// Succs returns n's successors, in edge-insertion order.
func (g *ICFG) Succs(n Node) []Node { return g.succs[n] }

// Preds returns n's predecessors, in edge-insertion order.
func (g *ICFG) Preds(n Node) []Node { return g.preds[n] }

// Nodes returns every ICFG node, in discovery order.
func (g *ICFG) Nodes() []Node { return g.order }

// Stmt returns n's underlying statement, or nil for an Entry/Exit
// pseudo-node.
func (g *ICFG) Stmt(n Node) ir.Stmt {
	c := g.cfgs[n.CM.M.IR()]
	if c == nil {
		return nil
	}
	return c.Stmt(n.N)
}

// EdgeKind reports the kind of the edge from -> to (Normal if from/to are
// not in fact adjacent — callers are expected to only query real edges).
func (g *ICFG) EdgeKind(from, to Node) EdgeKind { return g.edges[edgeKey{from, to}].kind }

// CallSite returns the call site associated with the edge from -> to, or
// nil for a Normal edge.
func (g *ICFG) CallSite(from, to Node) *ir.Invoke { return g.edges[edgeKey{from, to}].site }
