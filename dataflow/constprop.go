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
	"github.com/nju-sa/corestatic/lattice"
)

// ConstProp is the intra-procedural constant-propagation analysis of
// spec.md §4.2: a forward analysis over CPFact with the three-point integer
// lattice.
type ConstProp struct {
	CFG *cfg.CFG
}

var _ Analysis[cfg.Node, *CPFact] = (*ConstProp)(nil)

func (ConstProp) IsForward() bool { return true }

func (ConstProp) NewInitialFact() *CPFact { return NewCPFact() }

// NewBoundaryFact sets every parameter that canHoldInt to NAC (spec.md
// §4.2), modeling that callers may pass any value.
func (c ConstProp) NewBoundaryFact() *CPFact {
	f := NewCPFact()
	for _, p := range c.CFG.Params() {
		if ir.CanHoldInt(p.Type()) {
			f.Update(p, lattice.NACVal)
		}
	}
	return f
}

func (c ConstProp) BoundaryNode() cfg.Node { return c.CFG.Entry() }

func (ConstProp) MeetInto(src, tgt *CPFact) { MeetInto(src, tgt) }

// TransferNode implements spec.md §4.2's `transferNode(s, in, out)`.
func (c ConstProp) TransferNode(n cfg.Node, in, out *CPFact) bool {
	s := c.CFG.Stmt(n)
	tmp := in.Copy()
	if s != nil {
		ApplyAssign(s, tmp, in)
	}
	return out.CopyFrom(tmp)
}

// ApplyAssign mutates tmp for the assignment effect of s, if s is an
// AssignStmt, evaluating its right-hand side against in (*not* tmp: the
// transfer reads the pre-statement fact, per spec.md §4.2). Exported so the
// inter-procedural solver (spec.md §4.7) can apply the same intra-procedural
// fallback before overlaying its heap-value-map recomputation for
// LoadField/LoadArray.
func ApplyAssign(s ir.Stmt, tmp, in *CPFact) {
	a, ok := s.(ir.AssignStmt)
	if !ok {
		return
	}
	x := a.LHS()
	if x == nil {
		return
	}
	if !ir.CanHoldInt(x.Type()) {
		tmp.Remove(x)
		return
	}
	tmp.Update(x, evaluateStmt(s, in))
}

// evaluateStmt extracts the evaluable right-hand side of s, falling back to
// NAC for statement shapes the intra-procedural evaluator cannot reason
// about without alias information (LoadField/LoadArray/Invoke — resolved by
// the inter-procedural analysis instead, spec.md §4.7).
func evaluateStmt(s ir.Stmt, in *CPFact) lattice.Value {
	switch st := s.(type) {
	case *ir.Copy:
		return lattice.Evaluate(ir.VarExpr{V: st.Y}, in)
	case *ir.Assign:
		return lattice.Evaluate(st.RHS, in)
	default:
		return lattice.NACVal
	}
}

// Solve runs the generic worklist solver over c.CFG with this analysis and
// returns the per-node in/out facts, so callers need not spell out the type
// parameters.
func (c ConstProp) Solve() *Result[cfg.Node, *CPFact] {
	return Solve[cfg.Node, *CPFact](c.CFG, c)
}

// TransferEdge is the identity for plain intra-procedural CFG edges
// (spec.md §4.3: there is only one edge kind here, unlike the ICFG).
func (ConstProp) TransferEdge(_, _ cfg.Node, out *CPFact) *CPFact { return out.Copy() }
