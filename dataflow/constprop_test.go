package dataflow

import (
	"testing"

	"github.com/nju-sa/corestatic/cfg"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
	"github.com/nju-sa/corestatic/lattice"
)

// spec.md §8 scenario 1:
//
//	p0 = 1; p1 = 2; x = p0 + p1; if (x > 2) y = x; else y = 0;
//
// x is never reassigned after stmt 2, so it is CONST(3) everywhere, including
// at exit. y is assigned different constants on the two arms (3 on the true
// arm, 0 on the false arm): per the meet law in this same section
// (CONST(i) ≠ CONST(j) ⇒ meet = NAC), a flow-insensitive join of both arms at
// the shared exit is NAC for y, not a single constant — the CFG worklist here
// has no notion of "this branch's condition is known, so the other arm is
// unreachable" (that reasoning belongs to dead-code detection, which consumes
// these facts rather than feeding back into them). We check the precise
// per-arm facts directly, and confirm the exit merge behaves per the lattice
// law rather than asserting a value that would contradict it.
func TestIntraConstPropScenario1(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	p0 := b.V("p0", testutil.IntType)
	p1 := b.V("p1", testutil.IntType)
	x := b.V("x", testutil.IntType)
	y := b.V("y", testutil.IntType)

	b.Assign(p0, ir.IntLit{Value: 1})                    // 0
	b.Assign(p1, ir.IntLit{Value: 2})                    // 1
	b.Assign(x, ir.BinaryExpr{Op: ir.Add, L: p0, R: p1}) // 2
	b.If(ir.BinaryExpr{Op: ir.Gt, L: x, R: p1}, 6, 4)    // 3: if x>2 goto 6 else 4
	b.Assign(y, ir.IntLit{Value: 0})                     // 4: y = 0 (false branch)
	b.Goto(7)                                            // 5: goto 7 (skip true branch)
	b.Copy(y, x)                                         // 6: y = x (true branch)

	fn := b.Build()
	c := cfg.Build(fn)
	res := ConstProp{CFG: c}.Solve()

	if got := res.In[cfg.Exit].Get(x); !got.Equal(lattice.ConstVal(3)) {
		t.Errorf("x at exit = %v, want 3", got)
	}
	if got := res.Out[cfg.Node(4)].Get(y); !got.Equal(lattice.ConstVal(0)) {
		t.Errorf("y after false arm = %v, want 0", got)
	}
	if got := res.Out[cfg.Node(6)].Get(y); !got.Equal(lattice.ConstVal(3)) {
		t.Errorf("y after true arm = %v, want 3", got)
	}
	if got := res.In[cfg.Exit].Get(y); !got.Equal(lattice.NACVal) {
		t.Errorf("y at exit = %v, want NAC (meet of two unequal constants)", got)
	}
}

// spec.md §8 scenario 2:
//
//	a = NAC; b = 0; c = a / b;
//
// Expected: c = UNDEF at exit (div-by-zero sentinel). NAC is modeled as an
// unconstrained parameter, matching how the boundary fact actually produces
// NAC values (spec.md §4.2).
func TestIntraConstPropDivByZeroSentinel(t *testing.T) {
	a := testutil.NewVar("a", testutil.IntType, 0)
	b2 := testutil.NewBuilder([]ir.Var{a}, nil)
	bb := b2.V("b", testutil.IntType)
	c := b2.V("c", testutil.IntType)
	b2.Assign(bb, ir.IntLit{Value: 0})
	b2.Assign(c, ir.BinaryExpr{Op: ir.Div, L: a, R: bb})

	fn := b2.Build()
	cg := cfg.Build(fn)
	res := ConstProp{CFG: cg}.Solve()

	exitFact := res.In[cfg.Exit]
	if got := exitFact.Get(c); !got.IsUndef() {
		t.Errorf("c at exit = %v, want UNDEF", got)
	}
}
