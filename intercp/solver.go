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

// Package intercp implements the inter-procedural constant propagation of
// spec.md §4.7: the ICFG edge/node transfer functions, the global
// heap-value map (keyed by (obj, field)/(declaringClass, field)/(obj,
// index) and resolved through points-to aliasing), and the alias map
// spec.md §8 tests against `o ∈ pt(v) iff v ∈ aliasMap[o]`.
package intercp

import (
	"github.com/nju-sa/corestatic/dataflow"
	"github.com/nju-sa/corestatic/icfg"
	"github.com/nju-sa/corestatic/internal/workqueue"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/lattice"
	"github.com/nju-sa/corestatic/pointer"
)

// Solver drives the ICFG worklist of spec.md §4.7 to a fixed point.
type Solver struct {
	res   *pointer.Result
	graph *icfg.ICFG
	heap  *heap
}

// NewSolver builds the ICFG for res (the completed points-to result) and
// its heap-value-map indices.
func NewSolver(res *pointer.Result) *Solver {
	g := icfg.Build(res)
	h := newHeap()
	h.build(g, res)
	return &Solver{res: res, graph: g, heap: h}
}

// Graph returns the ICFG the solver runs over.
func (s *Solver) Graph() *icfg.ICFG { return s.graph }

// AliasMap returns the precomputed alias map (spec.md §4.7 "Aliases"): for
// each Obj, the contextualized variables whose points-to set contains it.
func (s *Solver) AliasMap() map[*pointer.Obj][]pointer.CSVar { return s.heap.aliasMap }

// Solve runs the ICFG worklist to completion, per spec.md §4.3/§4.7: a
// set-backed FIFO seeded with every node, edge transfers applied before the
// node transfer, and — beyond the generic CFG solver — heap-value-map
// writes additionally re-enqueuing every load statement the alias/static
// indices say depends on the written key, regardless of whether the
// writing node's own local fact changed.
func (s *Solver) Solve() *Result {
	g := s.graph
	in := make(map[icfg.Node]*dataflow.CPFact, len(g.Nodes()))
	out := make(map[icfg.Node]*dataflow.CPFact, len(g.Nodes()))
	for _, n := range g.Nodes() {
		in[n] = dataflow.NewCPFact()
		out[n] = dataflow.NewCPFact()
	}

	entry := g.Entry()
	boundary := s.boundaryFact()
	in[entry] = boundary
	out[entry] = boundary.Copy()

	wl := workqueue.New[icfg.Node]()
	for _, n := range g.Nodes() {
		wl.Add(n)
	}

	for !wl.Empty() {
		n := wl.Pop()
		if preds := g.Preds(n); len(preds) > 0 {
			merged := dataflow.NewCPFact()
			for _, p := range preds {
				edgeFact := s.transferEdge(p, n, out[p])
				dataflow.MeetInto(edgeFact, merged)
			}
			in[n] = merged
		}
		changed, extra := s.transferNode(n, in[n], out[n])
		if changed {
			for _, succ := range g.Succs(n) {
				wl.Add(succ)
			}
		}
		for _, e := range extra {
			wl.Add(e)
		}
	}
	return &Result{in: in, out: out, graph: g}
}

// boundaryFact sets every int-holding parameter of the entry method to NAC
// (spec.md §4.2's newBoundaryFact, applied to the ICFG's single entry
// method rather than every method's own CFG entry).
func (s *Solver) boundaryFact() *dataflow.CPFact {
	f := dataflow.NewCPFact()
	fn := s.res.Entry.M.IR()
	if fn == nil {
		return f
	}
	for _, p := range fn.Params {
		if ir.CanHoldInt(p.Type()) {
			f.Update(p, lattice.NACVal)
		}
	}
	return f
}

// transferEdge implements spec.md §4.7's edge-transfer table.
func (s *Solver) transferEdge(from, to icfg.Node, outFrom *dataflow.CPFact) *dataflow.CPFact {
	switch s.graph.EdgeKind(from, to) {
	case icfg.Normal:
		return outFrom.Copy()
	case icfg.CallToReturn:
		tmp := outFrom.Copy()
		if site := s.graph.CallSite(from, to); site != nil && site.X != nil {
			tmp.Remove(site.X)
		}
		return tmp
	case icfg.Call:
		fact := dataflow.NewCPFact()
		site := s.graph.CallSite(from, to)
		calleeFn := to.CM.M.IR()
		for i, arg := range site.Args {
			if i >= len(calleeFn.Params) {
				break
			}
			fact.Update(calleeFn.Params[i], outFrom.Get(arg))
		}
		return fact
	case icfg.Return:
		fact := dataflow.NewCPFact()
		site := s.graph.CallSite(from, to)
		if site.X != nil {
			calleeFn := from.CM.M.IR()
			acc := lattice.UndefVal
			for _, rv := range calleeFn.ReturnVars {
				acc = lattice.Meet(acc, outFrom.Get(rv))
			}
			fact.Update(site.X, acc)
		}
		return fact
	default:
		return outFrom.Copy()
	}
}

// transferNode implements spec.md §4.7's node-transfer rules: a call node
// just forwards in to out (the CallToReturn edge already killed the lhs);
// any other node applies the intra-procedural assignment effect and then,
// for LoadField/LoadArray into an int-holding variable, overlays the
// heap-value-map recomputation. StoreField/StoreArray additionally mutate
// the heap-value map and report which load nodes now need re-processing.
func (s *Solver) transferNode(n icfg.Node, in, out *dataflow.CPFact) (changed bool, extra []icfg.Node) {
	stmt := s.graph.Stmt(n)
	if _, isInvoke := stmt.(*ir.Invoke); isInvoke {
		return out.CopyFrom(in), nil
	}

	tmp := in.Copy()
	if stmt != nil {
		dataflow.ApplyAssign(stmt, tmp, in)
	}
	switch st := stmt.(type) {
	case *ir.LoadField:
		if ir.CanHoldInt(st.X.Type()) {
			tmp.Update(st.X, s.recomputeLoadField(n.CM, st, in))
		}
	case *ir.LoadArray:
		if ir.CanHoldInt(st.X.Type()) {
			tmp.Update(st.X, s.recomputeLoadArray(n.CM, st, in))
		}
	case *ir.StoreField:
		extra = s.applyStoreField(n.CM, st, in)
	case *ir.StoreArray:
		extra = s.applyStoreArray(n.CM, st, in)
	}
	return out.CopyFrom(tmp), extra
}

func (s *Solver) recomputeLoadField(cm pointer.CSMethod, st *ir.LoadField, in *dataflow.CPFact) lattice.Value {
	if st.IsStatic() {
		return s.heap.loadStatic(st.Field)
	}
	objs := s.res.PointsToVar(pointer.CSVar{Ctx: cm.Ctx, V: st.Base})
	return s.heap.loadInstance(objs, st.Field)
}

func (s *Solver) recomputeLoadArray(cm pointer.CSMethod, st *ir.LoadArray, in *dataflow.CPFact) lattice.Value {
	objs := s.res.PointsToVar(pointer.CSVar{Ctx: cm.Ctx, V: st.Base})
	return s.heap.loadArray(objs, in.Get(st.IndexVar))
}

func (s *Solver) applyStoreField(cm pointer.CSMethod, st *ir.StoreField, in *dataflow.CPFact) []icfg.Node {
	if !ir.CanHoldInt(st.Y.Type()) {
		return nil
	}
	v := in.Get(st.Y)
	if st.IsStatic() {
		return s.heap.storeStatic(st.Field, v)
	}
	var extra []icfg.Node
	for _, obj := range s.res.PointsToVar(pointer.CSVar{Ctx: cm.Ctx, V: st.Base}) {
		extra = append(extra, s.heap.storeInstance(obj, st.Field, v)...)
	}
	return extra
}

func (s *Solver) applyStoreArray(cm pointer.CSMethod, st *ir.StoreArray, in *dataflow.CPFact) []icfg.Node {
	if !ir.CanHoldInt(st.Y.Type()) {
		return nil
	}
	idx := in.Get(st.IndexVar)
	if idx.IsUndef() {
		return nil
	}
	v := in.Get(st.Y)
	var extra []icfg.Node
	for _, obj := range s.res.PointsToVar(pointer.CSVar{Ctx: cm.Ctx, V: st.Base}) {
		extra = append(extra, s.heap.storeArray(obj, idx, v)...)
	}
	return extra
}
