package cfg

import (
	"testing"

	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
)

func TestBuildLinear(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	x := b.V("x", testutil.IntType)
	b.Assign(x, ir.IntLit{Value: 1})
	b.Assign(x, ir.IntLit{Value: 2})
	c := Build(b.Build())

	if got := c.Succs(Entry); len(got) != 1 || got[0] != Node(0) {
		t.Fatalf("Entry succs = %v, want [0]", got)
	}
	if got := c.Succs(Node(0)); len(got) != 1 || got[0] != Node(1) {
		t.Fatalf("stmt 0 succs = %v, want [1]", got)
	}
	if got := c.Succs(Node(1)); len(got) != 1 || got[0] != Exit {
		t.Fatalf("stmt 1 succs = %v, want [Exit]", got)
	}
}

func TestBuildBranch(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	x := b.V("x", testutil.IntType)
	y := b.V("y", testutil.IntType)
	// 0: if x > x goto 2 else 1
	b.If(ir.BinaryExpr{Op: ir.Gt, L: x, R: x}, 2, 1)
	// 1: y = 0
	b.Assign(y, ir.IntLit{Value: 0})
	// 2: y = x
	b.Copy(y, x)
	c := Build(b.Build())

	succs := c.Succs(Node(0))
	if len(succs) != 2 {
		t.Fatalf("if succs = %v, want 2 edges", succs)
	}
	preds2 := c.Preds(Node(2))
	if len(preds2) != 2 || preds2[0] != Node(0) || preds2[1] != Node(1) {
		t.Fatalf("stmt 2 preds = %v, want [0 1]", preds2)
	}
	// stmt 1 falls through to stmt 2 as well.
	if got := c.Succs(Node(1)); len(got) != 1 || got[0] != Node(2) {
		t.Fatalf("stmt 1 succs = %v, want [2]", got)
	}
}

func TestBuildEmptyFunction(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	c := Build(b.Build())
	if got := c.Succs(Entry); len(got) != 1 || got[0] != Exit {
		t.Fatalf("empty function Entry succs = %v, want [Exit]", got)
	}
}
