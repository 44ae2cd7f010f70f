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

// Package deadcode finds unreachable and dead-assignment statements in a
// single method (spec.md §4.8): reachability is a BFS over the CFG that
// folds If/Switch branches using constant-propagation facts, and a
// reachable assignment is additionally dead if its variable is not live on
// out and its right-hand side has no side effect.
package deadcode

import (
	"github.com/nju-sa/corestatic/cfg"
	"github.com/nju-sa/corestatic/dataflow"
	"github.com/nju-sa/corestatic/internal/workqueue"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/lattice"
)

// Result is the set of dead statement nodes in one method: unreachable
// statements union reachable-but-useless assignments. Entry/Exit are never
// members; they are pseudo-nodes, not statements.
type Result struct {
	dead map[cfg.Node]bool
}

// IsDead reports whether n is unreachable or a useless reachable assignment.
func (r *Result) IsDead(n cfg.Node) bool { return r.dead[n] }

// Nodes returns every dead node, in no particular order.
func (r *Result) Nodes() []cfg.Node {
	out := make([]cfg.Node, 0, len(r.dead))
	for n := range r.dead {
		out = append(out, n)
	}
	return out
}

// Find runs dead-code detection over c, given c's already-solved constant
// propagation facts and liveness facts.
func Find(c *cfg.CFG, cp *dataflow.Result[cfg.Node, *dataflow.CPFact], live *dataflow.LiveResult) *Result {
	reachable := reachableNodes(c, cp)

	dead := map[cfg.Node]bool{}
	for _, n := range c.Nodes() {
		if n == cfg.Entry || n == cfg.Exit {
			continue
		}
		if !reachable[n] {
			dead[n] = true
			continue
		}
		s := c.Stmt(n)
		a, ok := s.(ir.AssignStmt)
		if !ok {
			continue
		}
		x := a.LHS()
		if x == nil || hasSideEffect(s) {
			continue
		}
		if !live.LiveOut(n).Has(x) {
			dead[n] = true
		}
	}
	return &Result{dead: dead}
}

// reachableNodes is the BFS of spec.md §4.8: at an If/Switch whose
// condition/key is constant at the in-fact, only the selected successor is
// taken; otherwise every successor is.
func reachableNodes(c *cfg.CFG, cp *dataflow.Result[cfg.Node, *dataflow.CPFact]) map[cfg.Node]bool {
	reachable := map[cfg.Node]bool{}
	wl := workqueue.New[cfg.Node]()
	wl.Add(c.Entry())

	for !wl.Empty() {
		n := wl.Pop()
		if reachable[n] {
			continue
		}
		reachable[n] = true
		for _, succ := range selectSuccs(c, n, cp.In[n]) {
			if !reachable[succ] {
				wl.Add(succ)
			}
		}
	}
	return reachable
}

// selectSuccs returns n's taken successors given the constant facts in in.
func selectSuccs(c *cfg.CFG, n cfg.Node, in *dataflow.CPFact) []cfg.Node {
	succs := c.Succs(n)
	switch s := c.Stmt(n).(type) {
	case *ir.If:
		v := lattice.Evaluate(s.Cond, in)
		if v.IsConst() && len(succs) == 2 {
			if v.Int() != 0 {
				return succs[:1]
			}
			return succs[1:]
		}
	case *ir.Switch:
		v := lattice.Evaluate(ir.VarExpr{V: s.Key}, in)
		if v.IsConst() && len(succs) == len(s.Cases)+1 {
			k := v.Int()
			for i, cs := range s.Cases {
				if cs.Value == k {
					return succs[i : i+1]
				}
			}
			return succs[len(s.Cases):] // default/fallthrough, always last
		}
	}
	return succs
}

// hasSideEffect reports whether s's right-hand side has a side effect
// (spec.md §4.8): a new expression, cast, field access, array access, or
// arithmetic DIV/REM. New/LoadField/LoadArray statements are always
// side-effecting by construction; Invoke is conservatively side-effecting
// too (an arbitrary call is never safe to discard for being unused). A
// generic Assign's rhs is side-effecting only for a Div/Rem BinaryExpr or
// an OpaqueExpr (the evaluator's catch-all for casts and other
// expressions-in-expression-position spec.md §4.1 can't reason about).
func hasSideEffect(s ir.Stmt) bool {
	switch st := s.(type) {
	case *ir.New, *ir.LoadField, *ir.LoadArray, *ir.Invoke:
		return true
	case *ir.Copy:
		return false
	case *ir.Assign:
		switch rhs := st.RHS.(type) {
		case ir.BinaryExpr:
			return rhs.Op == ir.Div || rhs.Op == ir.Rem
		case ir.OpaqueExpr:
			return true
		default:
			return false
		}
	default:
		return false
	}
}
