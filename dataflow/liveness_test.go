package dataflow

import (
	"testing"

	"github.com/nju-sa/corestatic/cfg"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
)

// TestLivenessDeadAssignment builds
//
//	x = 1; y = 2; z = x + x; (z implicitly returned)
//
// y is never read anywhere, so it must not be live immediately after its
// own assignment (the exact "not live on out" test the dead-code detector
// runs against an assignment's liveness-out set).
func TestLivenessDeadAssignment(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	x := b.V("x", testutil.IntType)
	y := b.V("y", testutil.IntType)
	z := b.V("z", testutil.IntType)

	b.Assign(x, ir.IntLit{Value: 1})                    // 0
	b.Assign(y, ir.IntLit{Value: 2})                     // 1
	b.Assign(z, ir.BinaryExpr{Op: ir.Add, L: x, R: x})  // 2

	fn := b.Build()
	fn.ReturnVars = []ir.Var{z}
	c := cfg.Build(fn)
	res := Liveness{CFG: c}.Solve()

	if res.LiveOut(cfg.Node(1)).Has(y) {
		t.Errorf("y live-out of its own assignment, want dead")
	}
	if !res.LiveOut(cfg.Node(1)).Has(x) {
		t.Errorf("x not live-out of node 1, want live (read by node 2)")
	}
	if !res.LiveIn(cfg.Node(2)).Has(x) {
		t.Errorf("x not live-in at node 2, want live")
	}
	if res.LiveIn(cfg.Node(2)).Has(y) {
		t.Errorf("y live-in at node 2, want not live: y is never read")
	}
	if !res.LiveOut(cfg.Node(0)).Has(x) {
		t.Errorf("x not live-out of node 0, want live")
	}
}

// TestLivenessReturnVarsLiveAtExit checks the boundary fact: a return
// variable is live at Exit even though nothing in the method body reads it
// after its last assignment.
func TestLivenessReturnVarsLiveAtExit(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	r := b.V("r", testutil.IntType)
	b.Assign(r, ir.IntLit{Value: 7}) // 0

	fn := b.Build()
	fn.ReturnVars = []ir.Var{r}
	c := cfg.Build(fn)
	res := Liveness{CFG: c}.Solve()

	if !res.LiveOut(cfg.Node(0)).Has(r) {
		t.Errorf("r not live-out of its assignment, want live (return variable)")
	}
}
