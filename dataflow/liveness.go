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

import (
	"github.com/nju-sa/corestatic/cfg"
	"github.com/nju-sa/corestatic/ir"
)

// VarSet is a finite set of variables, the fact lattice for Liveness: the
// empty set is bottom, union is meet (more live variables is "more
// information flowing backward"), absent means not live.
type VarSet struct {
	m map[ir.Var]bool
}

// NewVarSet returns an empty set.
func NewVarSet() *VarSet { return &VarSet{m: map[ir.Var]bool{}} }

// Has reports whether v is in the set.
func (s *VarSet) Has(v ir.Var) bool { return s.m[v] }

// Add puts v in the set.
func (s *VarSet) Add(v ir.Var) { s.m[v] = true }

// Remove takes v out of the set.
func (s *VarSet) Remove(v ir.Var) { delete(s.m, v) }

// Copy returns an independent copy of s.
func (s *VarSet) Copy() *VarSet {
	cp := make(map[ir.Var]bool, len(s.m))
	for v := range s.m {
		cp[v] = true
	}
	return &VarSet{m: cp}
}

// CopyFrom replaces s's members with other's, returning whether s changed.
func (s *VarSet) CopyFrom(other *VarSet) bool {
	if s.Equal(other) {
		return false
	}
	cp := make(map[ir.Var]bool, len(other.m))
	for v := range other.m {
		cp[v] = true
	}
	s.m = cp
	return true
}

// Equal reports set equality.
func (s *VarSet) Equal(other *VarSet) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for v := range s.m {
		if !other.m[v] {
			return false
		}
	}
	return true
}

// UnionWith adds every member of src into s.
func (s *VarSet) UnionWith(src *VarSet) {
	for v := range src.m {
		s.m[v] = true
	}
}

// ForEach calls fn for every member of s (in unspecified order).
func (s *VarSet) ForEach(fn func(v ir.Var)) {
	for v := range s.m {
		fn(v)
	}
}

// Liveness is the backward variable-liveness analysis spec.md §4.8 needs as
// the dead-code detector's "not live on out" input: a var is live at a
// program point if some path from there reads it before it is redefined.
type Liveness struct {
	CFG *cfg.CFG
}

var _ Analysis[cfg.Node, *VarSet] = (*Liveness)(nil)

func (Liveness) IsForward() bool { return false }

func (Liveness) NewInitialFact() *VarSet { return NewVarSet() }

// NewBoundaryFact treats a method's return variables as live at Exit: a
// caller reads them on return, the same reasoning ConstProp.NewBoundaryFact
// applies in the other direction to parameters.
func (l Liveness) NewBoundaryFact() *VarSet {
	f := NewVarSet()
	for _, v := range l.CFG.IR.ReturnVars {
		f.Add(v)
	}
	return f
}

func (l Liveness) BoundaryNode() cfg.Node { return l.CFG.Exit() }

func (Liveness) MeetInto(src, tgt *VarSet) { tgt.UnionWith(src) }

// TransferNode implements the classical live-variable equation
// IN[n] = use[n] ∪ (OUT[n] - def[n]); the generic driver's direction swap
// means the "in" parameter here is the successor-merged fact (OUT[n]), and
// what TransferNode writes to "out" is IN[n] (see Result/LiveIn/LiveOut).
func (l Liveness) TransferNode(n cfg.Node, in, out *VarSet) bool {
	tmp := in.Copy()
	s := l.CFG.Stmt(n)
	if s != nil {
		if a, ok := s.(ir.AssignStmt); ok {
			if x := a.LHS(); x != nil {
				tmp.Remove(x)
			}
		}
		addUses(tmp, s)
	}
	return out.CopyFrom(tmp)
}

// TransferEdge is the identity: liveness has only one CFG edge kind.
func (Liveness) TransferEdge(_, _ cfg.Node, out *VarSet) *VarSet { return out.Copy() }

func (l Liveness) Solve() *LiveResult {
	return &LiveResult{res: Solve[cfg.Node, *VarSet](l.CFG, l)}
}

// LiveResult wraps the generic Result with direction-correct accessor names:
// the driver's "in"/"out" naming is defined relative to traversal order, so
// for this backward analysis Result.In holds each node's live-OUT set and
// Result.Out holds its live-IN set (see TransferNode's comment).
type LiveResult struct {
	res *Result[cfg.Node, *VarSet]
}

// LiveIn returns the set of variables live immediately before n executes.
func (r *LiveResult) LiveIn(n cfg.Node) *VarSet { return r.res.Out[n] }

// LiveOut returns the set of variables live immediately after n executes.
func (r *LiveResult) LiveOut(n cfg.Node) *VarSet { return r.res.In[n] }

// addUses adds every variable s reads to tmp (the "use[n]" side of the
// liveness equation).
func addUses(tmp *VarSet, s ir.Stmt) {
	switch st := s.(type) {
	case *ir.New:
		// allocates a fresh object; Type is a type, not a variable read.
	case *ir.Copy:
		tmp.Add(st.Y)
	case *ir.LoadField:
		if st.Base != nil {
			tmp.Add(st.Base)
		}
	case *ir.StoreField:
		if st.Base != nil {
			tmp.Add(st.Base)
		}
		tmp.Add(st.Y)
	case *ir.LoadArray:
		tmp.Add(st.Base)
		tmp.Add(st.IndexVar)
	case *ir.StoreArray:
		tmp.Add(st.Base)
		tmp.Add(st.IndexVar)
		tmp.Add(st.Y)
	case *ir.Invoke:
		if st.Recv != nil {
			tmp.Add(st.Recv)
		}
		for _, a := range st.Args {
			tmp.Add(a)
		}
	case *ir.If:
		tmp.Add(st.Cond.L)
		tmp.Add(st.Cond.R)
	case *ir.Switch:
		tmp.Add(st.Key)
	case *ir.Assign:
		addExprUses(tmp, st.RHS)
	case *ir.Goto:
		// unconditional, no variable read.
	}
}

func addExprUses(tmp *VarSet, e ir.Expr) {
	switch ex := e.(type) {
	case ir.VarExpr:
		tmp.Add(ex.V)
	case ir.BinaryExpr:
		tmp.Add(ex.L)
		tmp.Add(ex.R)
	case ir.IntLit, ir.OpaqueExpr:
		// no variable operands.
	}
}
