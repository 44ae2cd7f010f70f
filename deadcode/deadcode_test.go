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

package deadcode

import (
	"testing"

	"github.com/nju-sa/corestatic/cfg"
	"github.com/nju-sa/corestatic/dataflow"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
)

func find(t *testing.T, fn *ir.Function) (*cfg.CFG, *Result) {
	t.Helper()
	c := cfg.Build(fn)
	cp := dataflow.ConstProp{CFG: c}.Solve()
	live := dataflow.Liveness{CFG: c}.Solve()
	return c, Find(c, cp, live)
}

// TestUnreachableBranch builds
//
//	x = 1; two = 2; if (x > two) y = 1; else y = 0; z = y;
//
// x > two is always false, so the true arm (y = 1) is unreachable.
func TestUnreachableBranch(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	x := b.V("x", testutil.IntType)
	two := b.V("two", testutil.IntType)
	y := b.V("y", testutil.IntType)
	z := b.V("z", testutil.IntType)

	b.Assign(x, ir.IntLit{Value: 1})                     // 0
	b.Assign(two, ir.IntLit{Value: 2})                    // 1
	b.If(ir.BinaryExpr{Op: ir.Gt, L: x, R: two}, 5, 3)    // 2: if x>two goto 5 else 3
	b.Assign(y, ir.IntLit{Value: 0})                      // 3: false arm
	b.Goto(6)                                             // 4: skip true arm
	b.Assign(y, ir.IntLit{Value: 1})                      // 5: true arm (unreachable)
	b.Copy(z, y)                                          // 6

	fn := b.Build()
	fn.ReturnVars = []ir.Var{z}
	_, res := find(t, fn)

	if !res.IsDead(cfg.Node(5)) {
		t.Errorf("node 5 (unreachable true arm) not marked dead")
	}
	for _, n := range []cfg.Node{0, 1, 2, 3, 4, 6} {
		if res.IsDead(n) {
			t.Errorf("node %d marked dead, want reachable and live", n)
		}
	}
}

// TestDeadAssignment builds a = 1; b = 2; c = a + a; with b never read.
func TestDeadAssignment(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	a := b.V("a", testutil.IntType)
	bb := b.V("b", testutil.IntType)
	c := b.V("c", testutil.IntType)

	b.Assign(a, ir.IntLit{Value: 1})                     // 0
	b.Assign(bb, ir.IntLit{Value: 2})                     // 1: dead, b unused
	b.Assign(c, ir.BinaryExpr{Op: ir.Add, L: a, R: a})   // 2

	fn := b.Build()
	fn.ReturnVars = []ir.Var{c}
	_, res := find(t, fn)

	if !res.IsDead(cfg.Node(1)) {
		t.Errorf("node 1 (b = 2, unused) not marked dead")
	}
	if res.IsDead(cfg.Node(0)) || res.IsDead(cfg.Node(2)) {
		t.Errorf("node 0 or 2 marked dead, want live (a used by node 2)")
	}
}

// TestSideEffectsSurvive checks that a New, and an assignment whose rhs is
// a Div, are never marked dead even though their results are unused.
func TestSideEffectsSurvive(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	a := b.V("a", testutil.IntType)
	obj := b.V("obj", testutil.RefType)
	q := b.V("q", testutil.IntType)

	b.Assign(a, ir.IntLit{Value: 1})                    // 0
	b.New(obj, testutil.RefTypeNamed("SomeType"))       // 1: unused, but always kept
	b.Assign(q, ir.BinaryExpr{Op: ir.Div, L: a, R: a})  // 2: unused, but Div is a side effect

	fn := b.Build()
	_, res := find(t, fn)

	for _, n := range []cfg.Node{0, 1, 2} {
		if res.IsDead(n) {
			t.Errorf("node %d marked dead, want kept (side effect or live use)", n)
		}
	}
}
