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

// Package cha builds a whole-program call graph by Class Hierarchy Analysis
// (spec.md §4.4): reachable methods are discovered from a designated entry
// method by a worklist, resolving each call site's callee set from its
// CallKind and the class hierarchy alone, with no points-to information.
package cha

import (
	"github.com/nju-sa/corestatic/errtax"
	"github.com/nju-sa/corestatic/hierarchy"
	"github.com/nju-sa/corestatic/internal/salog"
	"github.com/nju-sa/corestatic/internal/workqueue"
	"github.com/nju-sa/corestatic/ir"
)

// Edge is one resolved call-graph edge.
type Edge struct {
	Caller hierarchy.Method
	Site   *ir.Invoke
	Callee hierarchy.Method
	Kind   ir.CallKind
}

type edgeKey struct {
	caller hierarchy.Method
	site   *ir.Invoke
	callee hierarchy.Method
}

// CallGraph is the result of CHA: the reachable-method set, in discovery
// order, and the resolved edges between them.
type CallGraph struct {
	Entry   hierarchy.Method
	methods map[hierarchy.Method]bool
	order   []hierarchy.Method
	ids     map[hierarchy.Method]int64
	edges   []Edge
	seen    map[edgeKey]bool
	callees map[hierarchy.Method][]hierarchy.Method
}

// Contains reports whether m was found reachable.
func (g *CallGraph) Contains(m hierarchy.Method) bool { return g.methods[m] }

// ReachableMethods returns every reachable method in discovery order.
func (g *CallGraph) ReachableMethods() []hierarchy.Method { return g.order }

// Edges returns every resolved call-graph edge, in discovery order.
func (g *CallGraph) Edges() []Edge { return g.edges }

// CalleesOf returns m's resolved callees, deduplicated, in discovery order.
func (g *CallGraph) CalleesOf(m hierarchy.Method) []hierarchy.Method { return g.callees[m] }

func (g *CallGraph) addReachable(m hierarchy.Method, wl *workqueue.Set[hierarchy.Method]) {
	if g.methods[m] {
		return
	}
	g.methods[m] = true
	g.ids[m] = int64(len(g.order))
	g.order = append(g.order, m)
	wl.Add(m)
}

func (g *CallGraph) addEdge(caller hierarchy.Method, site *ir.Invoke, callee hierarchy.Method, kind ir.CallKind, wl *workqueue.Set[hierarchy.Method]) {
	k := edgeKey{caller, site, callee}
	if g.seen[k] {
		return
	}
	if g.seen == nil {
		g.seen = map[edgeKey]bool{}
	}
	g.seen[k] = true
	g.edges = append(g.edges, Edge{Caller: caller, Site: site, Callee: callee, Kind: kind})
	dup := false
	for _, c := range g.callees[caller] {
		if c == callee {
			dup = true
			break
		}
	}
	if !dup {
		g.callees[caller] = append(g.callees[caller], callee)
	}
	g.addReachable(callee, wl)
}

// Build runs CHA to completion starting from entry (spec.md §4.4).
func Build(entry hierarchy.Method, h hierarchy.ClassHierarchy, log *salog.LogGroup) *CallGraph {
	g := &CallGraph{
		Entry:   entry,
		methods: map[hierarchy.Method]bool{},
		ids:     map[hierarchy.Method]int64{},
		seen:    map[edgeKey]bool{},
		callees: map[hierarchy.Method][]hierarchy.Method{},
	}
	wl := workqueue.New[hierarchy.Method]()
	g.addReachable(entry, wl)

	for !wl.Empty() {
		m := wl.Pop()
		fn := m.IR()
		if fn == nil {
			log.Debugf("%v", &errtax.MissingIR{Method: m.Subsignature()})
			continue
		}
		for _, s := range fn.Stmts {
			inv, ok := s.(*ir.Invoke)
			if !ok {
				continue
			}
			declClass, ok := inv.DeclClass.(hierarchy.Class)
			if !ok {
				panic(&errtax.InternalInvariant{Reason: "Invoke.DeclClass is not a hierarchy.Class"})
			}
			for _, callee := range resolve(h, declClass, inv, log) {
				g.addEdge(m, inv, callee, inv.CallKind, wl)
			}
		}
	}
	return g
}

// resolve implements spec.md §4.4's `resolve(c)`.
func resolve(h hierarchy.ClassHierarchy, declClass hierarchy.Class, site *ir.Invoke, log *salog.LogGroup) []hierarchy.Method {
	switch site.CallKind {
	case ir.KStatic:
		m := h.GetDeclaredMethod(declClass, site.Subsig)
		if m == nil {
			log.Debugf("%v", &errtax.UnresolvableCall{CallSite: declClass.Name(), Subsig: site.Subsig})
			return nil
		}
		return []hierarchy.Method{m}
	case ir.KSpecial:
		m := hierarchy.Dispatch(h, declClass, site.Subsig)
		if m == nil {
			log.Debugf("%v", &errtax.UnresolvableCall{CallSite: declClass.Name(), Subsig: site.Subsig})
			return nil
		}
		return []hierarchy.Method{m}
	case ir.KVirtual, ir.KInterface:
		return bfsDispatch(h, declClass, site.Subsig)
	case ir.KDynamic:
		// Resolved only by points-to (spec.md §4.5/§4.6), never by CHA alone.
		if !site.IsDynamic {
			panic(&errtax.InternalInvariant{Reason: "CallKind is DYNAMIC but Invoke.IsDynamic is false"})
		}
		log.Debugf("%v", &errtax.UnresolvableCall{CallSite: declClass.Name(), Subsig: site.Subsig})
		return nil
	default:
		panic(&errtax.InternalInvariant{Reason: "Invoke.CallKind matches none of STATIC/SPECIAL/VIRTUAL/INTERFACE/DYNAMIC"})
	}
}

// bfsDispatch implements the VIRTUAL/INTERFACE branch of spec.md §4.4:
// BFS over the subtype closure of declClass, deduplicating resolved methods
// (scenario 3: a subclass that inherits rather than overrides contributes no
// new method).
func bfsDispatch(h hierarchy.ClassHierarchy, declClass hierarchy.Class, subsig string) []hierarchy.Method {
	seenClass := map[hierarchy.Class]bool{declClass: true}
	seenMethod := map[hierarchy.Method]bool{}
	var out []hierarchy.Method
	queue := []hierarchy.Class{declClass}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if m := hierarchy.Dispatch(h, t, subsig); m != nil && !seenMethod[m] {
			seenMethod[m] = true
			out = append(out, m)
		}
		enqueue := func(cs []hierarchy.Class) {
			for _, c := range cs {
				if !seenClass[c] {
					seenClass[c] = true
					queue = append(queue, c)
				}
			}
		}
		enqueue(h.GetDirectSubclassesOf(t))
		if h.IsInterface(t) {
			enqueue(h.GetDirectImplementorsOf(t))
			enqueue(h.GetDirectSubinterfacesOf(t))
		}
	}
	return out
}
