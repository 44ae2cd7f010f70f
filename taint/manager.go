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

package taint

import (
	"github.com/nju-sa/corestatic/csctx"
	"github.com/nju-sa/corestatic/hierarchy"
	"github.com/nju-sa/corestatic/internal/salog"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/pointer"
)

// sourceObjKey dedups synthesized taint objects per (originating source
// call site, taint type), mirroring an allocation-site abstraction: one
// object per static source occurrence, not one per dynamic call.
type sourceObjKey struct {
	site *ir.Invoke
	typ  string
}

// sourceInfo records the provenance a synthesized taint object carries:
// its original source call site (for TaintFlow reporting, preserved across
// relabeling) and its current taint type.
type sourceInfo struct {
	site *ir.Invoke
	typ  string
}

// tfgEdge is one taint-flow-graph edge out of some Pointer, labeled with the
// taint type a crossing object is relabeled to.
type tfgEdge struct {
	to  pointer.Pointer
	typ string
}

// TaintFlow is one confirmed taint flow: a taint object created at Source
// reached Sink's ArgIndex'th argument.
type TaintFlow struct {
	Source   *ir.Invoke
	Sink     *ir.Invoke
	ArgIndex int
}

// Manager is the taint analysis overlay of spec.md §4.9: a pointer.Observer
// that synthesizes taint objects at source calls, builds the taint-flow
// graph from transfer rules, and relabels/forwards taint objects crossing
// TFG edges as the points-to solver's own worklist delivers points-to
// deltas. Registered with a pointer.Solver via SetObserver before Solve.
type Manager struct {
	sources   map[string][]Source
	sinks     map[string][]Sink
	transfers map[string][]Transfer

	solver *pointer.Solver

	objs map[sourceObjKey]*pointer.Obj
	info map[*pointer.Obj]sourceInfo
	tfg  map[pointer.Pointer][]tfgEdge

	log *salog.LogGroup
}

var _ pointer.Observer = (*Manager)(nil)

// NewManager builds a Manager from cfg, grouping its rules by callee method
// key ("DeclaringClass.Subsignature", the same format the YAML `method`
// field already uses). solver is the points-to solver the Manager will
// observe; register it with solver.SetObserver(m) before calling Solve.
func NewManager(cfg *Config, solver *pointer.Solver, log *salog.LogGroup) *Manager {
	m := &Manager{
		sources:   map[string][]Source{},
		sinks:     map[string][]Sink{},
		transfers: map[string][]Transfer{},
		solver:    solver,
		objs:      map[sourceObjKey]*pointer.Obj{},
		info:      map[*pointer.Obj]sourceInfo{},
		tfg:       map[pointer.Pointer][]tfgEdge{},
		log:       log,
	}
	for _, s := range cfg.Sources {
		m.sources[s.Method] = append(m.sources[s.Method], s)
	}
	for _, s := range cfg.Sinks {
		m.sinks[s.Method] = append(m.sinks[s.Method], s)
	}
	for _, t := range cfg.Transfers {
		m.transfers[t.Method] = append(m.transfers[t.Method], t)
	}
	return m
}

func calleeKey(m hierarchy.Method) string {
	return methodKey(m.DeclaringClass().Name(), m.Subsignature())
}

// IsTaint reports whether o is a Manager-issued taint object. Per spec.md
// §4.9/SPEC_FULL.md's supplemented-features note 3, taint objects always
// carry the empty context, so the check is both the provenance lookup and
// (defensively) the context-emptiness check.
func (m *Manager) IsTaint(o *pointer.Obj) bool {
	_, ok := m.info[o]
	return ok && o.Context().IsEmpty()
}

// synth returns the (deduplicated) taint object for a (source site, type)
// pair, creating it on first use.
func (m *Manager) synth(site *ir.Invoke, typ string) *pointer.Obj {
	key := sourceObjKey{site, typ}
	if o, ok := m.objs[key]; ok {
		return o
	}
	alloc := ir.NewNew(-1, nil, taintClass{name: typ})
	o := &pointer.Obj{Site: alloc, HCtx: csctx.Empty()}
	m.objs[key] = o
	m.info[o] = sourceInfo{site: site, typ: typ}
	return o
}

// relabel returns the taint object carrying o's original source site but
// type, synthesizing/reusing it as needed (spec.md §4.9's "relabeling").
func (m *Manager) relabel(o *pointer.Obj, typ string) *pointer.Obj {
	info := m.info[o]
	return m.synth(info.site, typ)
}

func (m *Manager) filterTaint(pts pointer.PointsToSet) pointer.PointsToSet {
	out := pointer.PointsToSet{}
	for o := range pts {
		if m.IsTaint(o) {
			out[o] = true
		}
	}
	return out
}

func (m *Manager) relabelSet(pts pointer.PointsToSet, typ string) pointer.PointsToSet {
	out := make(pointer.PointsToSet, len(pts))
	for o := range pts {
		out[m.relabel(o, typ)] = true
	}
	return out
}

// OnCallEdge implements pointer.Observer: on a newly discovered call edge,
// run source detection and build/extend the taint-flow graph for any
// transfer rules matching the callee (spec.md §4.9 "Integration").
func (m *Manager) OnCallEdge(e pointer.CallEdge) {
	key := calleeKey(e.Callee.M)
	for _, src := range m.sources[key] {
		m.processSource(e, src)
	}
	for _, tr := range m.transfers[key] {
		m.addTransferEdge(e, tr)
	}
}

func (m *Manager) processSource(e pointer.CallEdge, src Source) {
	if e.Site.X == nil {
		return
	}
	obj := m.synth(e.Site, src.Type)
	lhs := pointer.Var(e.Caller.Ctx, e.Site.X)
	m.solver.Propagate(lhs, pointer.PointsToSet{obj: true})
	m.log.Debugf("taint source %s at %v bound to %v", src.Method, e.Site, lhs)
}

func (m *Manager) addTransferEdge(e pointer.CallEdge, tr Transfer) {
	fromVar, ok := locVar(e.Site, tr.From)
	if !ok {
		return
	}
	toVar, ok := locVar(e.Site, tr.To)
	if !ok {
		return
	}
	from := pointer.Var(e.Caller.Ctx, fromVar)
	to := pointer.Var(e.Caller.Ctx, toVar)
	if !m.addEdge(from, to, tr.Type) {
		return
	}
	taints := m.filterTaint(m.solver.CurrentPointsTo(from))
	if len(taints) > 0 {
		m.solver.Propagate(to, m.relabelSet(taints, tr.Type))
	}
}

func locVar(site *ir.Invoke, loc string) (ir.Var, bool) {
	kind, n, err := parseLoc(loc)
	if err != nil {
		return nil, false
	}
	switch kind {
	case locBase:
		if site.Recv == nil {
			return nil, false
		}
		return site.Recv, true
	case locResult:
		if site.X == nil {
			return nil, false
		}
		return site.X, true
	case locArg:
		if n < 0 || n >= len(site.Args) {
			return nil, false
		}
		return site.Args[n], true
	default:
		return nil, false
	}
}

func (m *Manager) addEdge(from, to pointer.Pointer, typ string) bool {
	for _, e := range m.tfg[from] {
		if e.to == to && e.typ == typ {
			return false
		}
	}
	m.tfg[from] = append(m.tfg[from], tfgEdge{to: to, typ: typ})
	return true
}

// OnDelta implements pointer.Observer: forward any taint objects in a
// pointer's newly-added Δ along its TFG successors, relabeled to each
// edge's type (spec.md §4.9's "whenever propagate produces a non-empty Δ").
func (m *Manager) OnDelta(p pointer.Pointer, fresh pointer.PointsToSet) {
	taints := m.filterTaint(fresh)
	if len(taints) == 0 {
		return
	}
	for _, e := range m.tfg[p] {
		m.solver.Propagate(e.to, m.relabelSet(taints, e.typ))
	}
}

// Finish scans res's call graph for sink arguments carrying taint objects
// and returns the confirmed flows (spec.md §4.9's termination step),
// stashing them on res under the "taint.flows" payload key as well so a
// driver can retrieve them directly from the points-to Result without
// holding onto the Manager.
func (m *Manager) Finish(res *pointer.Result) []TaintFlow {
	type flowKey struct {
		source, sink *ir.Invoke
		arg          int
	}
	seen := map[flowKey]bool{}
	var flows []TaintFlow
	for _, e := range res.CallGraphEdges() {
		key := calleeKey(e.Callee.M)
		for _, sink := range m.sinks[key] {
			if sink.Index < 0 || sink.Index >= len(e.Site.Args) {
				continue
			}
			arg := e.Site.Args[sink.Index]
			for _, o := range res.PointsToVar(pointer.CSVar{Ctx: e.Caller.Ctx, V: arg}) {
				info, ok := m.info[o]
				if !ok {
					continue
				}
				fk := flowKey{info.site, e.Site, sink.Index}
				if seen[fk] {
					continue
				}
				seen[fk] = true
				flows = append(flows, TaintFlow{Source: info.site, Sink: e.Site, ArgIndex: sink.Index})
			}
		}
	}
	res.SetPayload("taint.flows", flows)
	return flows
}
