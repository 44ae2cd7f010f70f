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

package pointer

import (
	"github.com/nju-sa/corestatic/csctx"
	"github.com/nju-sa/corestatic/errtax"
	"github.com/nju-sa/corestatic/hierarchy"
	"github.com/nju-sa/corestatic/internal/salog"
	"github.com/nju-sa/corestatic/internal/workqueue"
	"github.com/nju-sa/corestatic/ir"
)

// propQueue is the points-to worklist: a FIFO of distinct pending pointers,
// each carrying a points-to delta that further adds() merge into rather than
// duplicate entries for (spec.md §9's "worklist entries are (pointerId, Δ)").
type propQueue struct {
	order   []Pointer
	pending map[Pointer]PointsToSet
}

func newPropQueue() *propQueue {
	return &propQueue{pending: map[Pointer]PointsToSet{}}
}

func (q *propQueue) add(p Pointer, delta PointsToSet) {
	if len(delta) == 0 {
		return
	}
	if existing, ok := q.pending[p]; ok {
		for o := range delta {
			existing[o] = true
		}
		return
	}
	q.pending[p] = delta.Clone()
	q.order = append(q.order, p)
}

func (q *propQueue) empty() bool { return len(q.order) == 0 }

func (q *propQueue) pop() (Pointer, PointsToSet) {
	p := q.order[0]
	q.order = q.order[1:]
	d := q.pending[p]
	delete(q.pending, p)
	return p, d
}

// Observer receives live solver events for downstream overlays that must
// react while the solver is still running rather than after Solve returns
// (the taint analysis's source/transfer detection and TFG propagation,
// spec.md §4.9, which needs to inject objects into the same pt/PFG worklist
// the solver itself drains). Kept in this package as an interface rather
// than a taint import, so pointer never depends on taint.
type Observer interface {
	// OnCallEdge fires once, the first time a given (caller, site, callee)
	// edge is discovered.
	OnCallEdge(e CallEdge)
	// OnDelta fires whenever applyDelta's Δ for p is non-empty, with fresh
	// holding exactly the newly-added objects (not all of pt(p)).
	OnDelta(p Pointer, fresh PointsToSet)
}

// Solver is the shared Andersen points-to engine of spec.md §4.5/§4.6,
// parameterized by a csctx.Selector: pass csctx.Insensitive{} for the
// context-insensitive solver, or a k-call-string/k-object/k-type selector
// for the context-sensitive one.
type Solver struct {
	h   hierarchy.ClassHierarchy
	sel csctx.Selector
	log *salog.LogGroup
	obs Observer

	pt      map[Pointer]PointsToSet
	pfgSucc map[Pointer]map[Pointer]bool
	prop    *propQueue

	reachable map[CSMethod]bool
	order     []CSMethod
	methodQ   *workqueue.Set[CSMethod]

	varFn        map[ir.Var]*ir.Function
	methodOfStmt map[ir.Stmt]hierarchy.Method

	edges     []CallEdge
	seenEdge  map[callEdgeKey]bool
	calleesOf map[CSMethod][]CSMethod
}

// SetObserver registers obs to receive call-edge and delta events for the
// rest of this solver's run. Must be called before Solve.
func (s *Solver) SetObserver(obs Observer) { s.obs = obs }

// Propagate enqueues delta for pointer p. Exported so an Observer (e.g. the
// taint manager) can inject objects into the solver's own worklist instead
// of maintaining a parallel one (spec.md §4.9's source/transfer handling).
func (s *Solver) Propagate(p Pointer, delta PointsToSet) { s.propagate(p, delta) }

// CurrentPointsTo returns p's points-to set as of now, mid-solve. For use
// by an Observer reacting to a just-added call edge (spec.md §4.9's
// "immediately propagate already-present taint objects" on a new transfer
// edge); callers must not mutate the returned set.
func (s *Solver) CurrentPointsTo(p Pointer) PointsToSet { return s.pt[p] }

// NewSolver returns a points-to solver over class hierarchy h, contextualized
// by sel.
func NewSolver(h hierarchy.ClassHierarchy, sel csctx.Selector, log *salog.LogGroup) *Solver {
	return &Solver{
		h:            h,
		sel:          sel,
		log:          log,
		pt:           map[Pointer]PointsToSet{},
		pfgSucc:      map[Pointer]map[Pointer]bool{},
		prop:         newPropQueue(),
		reachable:    map[CSMethod]bool{},
		methodQ:      workqueue.New[CSMethod](),
		varFn:        map[ir.Var]*ir.Function{},
		methodOfStmt: map[ir.Stmt]hierarchy.Method{},
		seenEdge:     map[callEdgeKey]bool{},
		calleesOf:    map[CSMethod][]CSMethod{},
	}
}

// Solve runs the points-to analysis to completion from entry, with the empty
// context (spec.md §4.5/§4.6's main loop).
func (s *Solver) Solve(entry hierarchy.Method) *Result {
	entryCS := CSMethod{Ctx: csctx.Empty(), M: entry}
	s.addReachable(entryCS)

	for !s.methodQ.Empty() || !s.prop.empty() {
		for !s.methodQ.Empty() {
			s.processMethod(s.methodQ.Pop())
		}
		if s.prop.empty() {
			continue
		}
		p, delta := s.prop.pop()
		s.applyDelta(p, delta)
	}
	return s.buildResult(entryCS)
}

// applyDelta implements the main loop body: "pop (p, pts); Δ := pts \
// pt(p); add Δ to pt(p); propagate Δ along PFG successors", followed by
// field/array/call wiring when p is a local variable.
func (s *Solver) applyDelta(p Pointer, delta PointsToSet) {
	existing := s.pt[p]
	fresh := PointsToSet{}
	for o := range delta {
		if !existing[o] {
			fresh[o] = true
		}
	}
	if len(fresh) == 0 {
		return
	}
	if existing == nil {
		existing = PointsToSet{}
		s.pt[p] = existing
	}
	for o := range fresh {
		existing[o] = true
	}
	for succ := range s.pfgSucc[p] {
		s.prop.add(succ, fresh)
	}
	if s.obs != nil {
		s.obs.OnDelta(p, fresh)
	}
	if csv, ok := p.AsVar(); ok {
		s.wireVarObjects(csv, fresh)
	}
}

func (s *Solver) addReachable(cm CSMethod) {
	if s.reachable[cm] {
		return
	}
	s.reachable[cm] = true
	s.order = append(s.order, cm)
	if fn := cm.M.IR(); fn != nil {
		s.registerVar(fn.This, fn)
		for _, p := range fn.Params {
			s.registerVar(p, fn)
		}
	}
	s.methodQ.Add(cm)
}

func (s *Solver) registerVar(v ir.Var, fn *ir.Function) {
	if v == nil {
		return
	}
	s.varFn[v] = fn
}

// propagate enqueues delta for pointer p (used to seed a fresh heap object
// or a call's receiver/argument/return assignment).
func (s *Solver) propagate(p Pointer, delta PointsToSet) { s.prop.add(p, delta) }

// addPFGEdgeAndFlush adds the PFG edge src -> dst if new, flushing src's
// current points-to set to dst (the standard Andersen "late edge" rule: an
// edge added after src already has content must still deliver that content).
func (s *Solver) addPFGEdgeAndFlush(src, dst Pointer) {
	succs := s.pfgSucc[src]
	if succs == nil {
		succs = map[Pointer]bool{}
		s.pfgSucc[src] = succs
	}
	if succs[dst] {
		return
	}
	succs[dst] = true
	if existing := s.pt[src]; len(existing) > 0 {
		s.prop.add(dst, existing)
	}
}

// processMethod is the PFG-constructors step of spec.md §4.5, run once for
// each newly reachable CSMethod.
func (s *Solver) processMethod(cm CSMethod) {
	fn := cm.M.IR()
	if fn == nil {
		s.log.Debugf("%v", &errtax.MissingIR{Method: cm.M.Subsignature()})
		return
	}
	for _, stmt := range fn.Stmts {
		s.methodOfStmt[stmt] = cm.M
		switch st := stmt.(type) {
		case *ir.New:
			s.registerVar(st.X, fn)
			obj := &Obj{Site: st, HCtx: s.sel.SelectHeapContext(cm.Ctx)}
			s.propagate(Var(cm.Ctx, st.X), PointsToSet{obj: true})
		case *ir.Copy:
			s.registerVar(st.X, fn)
			s.registerVar(st.Y, fn)
			s.addPFGEdgeAndFlush(Var(cm.Ctx, st.Y), Var(cm.Ctx, st.X))
		case *ir.LoadField:
			s.registerVar(st.X, fn)
			s.registerVar(st.Base, fn)
			if st.IsStatic() {
				s.addPFGEdgeAndFlush(StaticField(st.Field), Var(cm.Ctx, st.X))
			}
			// Instance loads are wired reactively from wireVarObjects once the
			// base variable's points-to set is known, driven by the front
			// end's LoadFieldsByBase index rather than by this scan.
		case *ir.StoreField:
			s.registerVar(st.Base, fn)
			s.registerVar(st.Y, fn)
			if st.IsStatic() {
				s.addPFGEdgeAndFlush(Var(cm.Ctx, st.Y), StaticField(st.Field))
			}
		case *ir.LoadArray:
			s.registerVar(st.X, fn)
			s.registerVar(st.Base, fn)
			s.registerVar(st.IndexVar, fn)
		case *ir.StoreArray:
			s.registerVar(st.Base, fn)
			s.registerVar(st.IndexVar, fn)
			s.registerVar(st.Y, fn)
		case *ir.Invoke:
			s.registerVar(st.X, fn)
			s.registerVar(st.Recv, fn)
			for _, a := range st.Args {
				s.registerVar(a, fn)
			}
			if st.CallKind == ir.KStatic {
				s.resolveStaticInvoke(cm, st)
			}
			// Instance invokes (SPECIAL/VIRTUAL/INTERFACE/DYNAMIC) are all
			// resolved from the receiver's actual allocated type via
			// processCall, reactively, once the receiver has points-to
			// (spec.md §4.5's processCall uses typeOf(obj) uniformly,
			// regardless of the call site's static CallKind — unlike CHA's
			// resolve(), which dispatches on CallKind because CHA has no
			// object identity to resolve against).
		case *ir.Assign, *ir.If, *ir.Switch, *ir.Goto:
			// No heap/call effect.
		}
	}
	// Params and `this` need no seeding pass here: Solve's outer loop always
	// finishes draining the method worklist before applying any points-to
	// delta (see Solve), so a receiver/argument assignment made while
	// reaching this method is still sitting unapplied in the propagation
	// queue at this point — it is delivered to fn.This/fn.Params the normal
	// reactive way, through applyDelta's own wireVarObjects call, once the
	// main loop gets to it.
}

func (s *Solver) resolveStaticInvoke(cm CSMethod, site *ir.Invoke) {
	declClass, ok := site.DeclClass.(hierarchy.Class)
	if !ok {
		panic(&errtax.InternalInvariant{Reason: "Invoke.DeclClass is not a hierarchy.Class"})
	}
	callee := s.h.GetDeclaredMethod(declClass, site.Subsig)
	if callee == nil {
		s.log.Debugf("%v", &errtax.UnresolvableCall{CallSite: declClass.Name(), Subsig: site.Subsig})
		return
	}
	calleeCtx := s.sel.SelectContext(cm.Ctx, site, callee)
	s.addCallEdge(cm.M, cm.Ctx, site, CSMethod{Ctx: calleeCtx, M: callee})
}

// wireVarObjects implements the reactive half of the main loop: for each
// newly pointed-to object of a local variable, wire its instance field/array
// accesses and resolve its instance invokes.
func (s *Solver) wireVarObjects(csv CSVar, newObjs PointsToSet) {
	fn := s.varFn[csv.V]
	if fn == nil {
		return
	}
	idx := csv.V.Index()
	for obj := range newObjs {
		for _, lf := range fn.LoadFieldsByBase[idx] {
			s.addPFGEdgeAndFlush(InstanceField(obj, lf.Field), Var(csv.Ctx, lf.X))
		}
		for _, sf := range fn.StoreFieldsByBase[idx] {
			s.addPFGEdgeAndFlush(Var(csv.Ctx, sf.Y), InstanceField(obj, sf.Field))
		}
		for _, la := range fn.LoadArraysByBase[idx] {
			s.addPFGEdgeAndFlush(ArrayIndex(obj), Var(csv.Ctx, la.X))
		}
		for _, sa := range fn.StoreArraysByBase[idx] {
			s.addPFGEdgeAndFlush(Var(csv.Ctx, sa.Y), ArrayIndex(obj))
		}
		for _, inv := range fn.InvokesByRecv[idx] {
			if inv.CallKind == ir.KStatic {
				continue
			}
			s.processCall(csv.Ctx, inv, obj)
		}
	}
}

// processCall implements spec.md §4.5's `processCall(x, obj)` for one
// instance invoke site and one newly-discovered receiver object.
func (s *Solver) processCall(callerCtx csctx.Context, site *ir.Invoke, obj *Obj) {
	callee := hierarchy.Dispatch(s.h, obj.declClass(), site.Subsig)
	if callee == nil {
		s.log.Debugf("%v", &errtax.UnresolvableCall{CallSite: obj.declClass().Name(), Subsig: site.Subsig})
		return
	}
	calleeCtx := s.sel.SelectContextRecv(callerCtx, obj, site, callee)
	csCallee := CSMethod{Ctx: calleeCtx, M: callee}
	if calleeFn := callee.IR(); calleeFn != nil && calleeFn.This != nil {
		s.propagate(Var(csCallee.Ctx, calleeFn.This), PointsToSet{obj: true})
	}
	callerMethod := s.methodOfStmt[site]
	s.addCallEdge(callerMethod, callerCtx, site, csCallee)
}

// addCallEdge records the call-graph edge (if new), makes the callee
// reachable, and wires arg→param and return→lhs PFG edges. Re-running it for
// an edge already seen is a cheap no-op: addPFGEdgeAndFlush and addReachable
// are themselves idempotent, so there is no need to gate the wiring calls
// separately from the edge-dedup check.
func (s *Solver) addCallEdge(callerMethod hierarchy.Method, callerCtx csctx.Context, site *ir.Invoke, callee CSMethod) {
	caller := CSMethod{Ctx: callerCtx, M: callerMethod}
	key := callEdgeKey{caller, site, callee}
	if !s.seenEdge[key] {
		s.seenEdge[key] = true
		edge := CallEdge{Caller: caller, Site: site, Callee: callee, Kind: site.CallKind}
		s.edges = append(s.edges, edge)
		dup := false
		for _, c := range s.calleesOf[caller] {
			if c == callee {
				dup = true
				break
			}
		}
		if !dup {
			s.calleesOf[caller] = append(s.calleesOf[caller], callee)
		}
		if s.obs != nil {
			s.obs.OnCallEdge(edge)
		}
	}
	s.addReachable(callee)

	calleeFn := callee.M.IR()
	if calleeFn == nil {
		return
	}
	for i, arg := range site.Args {
		if i >= len(calleeFn.Params) {
			break
		}
		s.addPFGEdgeAndFlush(Var(callerCtx, arg), Var(callee.Ctx, calleeFn.Params[i]))
	}
	if site.X != nil {
		for _, rv := range calleeFn.ReturnVars {
			s.addPFGEdgeAndFlush(Var(callee.Ctx, rv), Var(callerCtx, site.X))
		}
	}
}
