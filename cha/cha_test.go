package cha

import (
	"testing"

	htestutil "github.com/nju-sa/corestatic/hierarchy/testutil"
	"github.com/nju-sa/corestatic/internal/salog"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
)

func newTestLog() *salog.LogGroup { return salog.New("cha-test", salog.ErrLevel) }

// spec.md §8 scenario 3: A.foo(); B extends A overrides foo; C extends B
// without override. A call site `A x; x.foo()` resolves to {A.foo, B.foo},
// deduplicated (C inherits B.foo rather than contributing a third method).
func TestBuildVirtualDispatchDedup(t *testing.T) {
	h := htestutil.NewHierarchy()
	a := h.Class("A", false, false)
	b := h.Class("B", false, false)
	c := h.Class("C", false, false)
	h.Extend(b, a)
	h.Extend(c, b)

	aFoo := h.Declare(a, "foo()", false, emptyFn())
	bFoo := h.Declare(b, "foo()", false, emptyFn())

	eb := testutil.NewBuilder(nil, nil)
	x := eb.V("x", testutil.RefTypeNamed("A"))
	eb.Invoke(nil, ir.KVirtual, x, a, "foo()", nil)
	entry := h.Declare(h.Class("Main", false, false), "main()", false, eb.Build())

	g := Build(entry, h, newTestLog())

	if !g.Contains(aFoo) || !g.Contains(bFoo) {
		t.Fatalf("expected both A.foo and B.foo reachable")
	}
	_ = c // C contributes no distinct method: dispatch(C, foo) resolves to B.foo.
	callees := g.CalleesOf(entry)
	if len(callees) != 2 {
		t.Fatalf("CalleesOf(entry) = %v, want exactly 2 (A.foo, B.foo deduplicated)", callees)
	}
	seen := map[any]bool{}
	for _, m := range callees {
		seen[m] = true
	}
	if !seen[aFoo] || !seen[bFoo] {
		t.Fatalf("callees = %v, want {A.foo, B.foo}", callees)
	}
}

func TestBuildStaticAndSpecial(t *testing.T) {
	h := htestutil.NewHierarchy()
	a := h.Class("A", false, false)
	aInit := h.Declare(a, "<init>()", false, emptyFn())
	aStatic := h.Declare(a, "helper()", false, emptyFn())

	eb := testutil.NewBuilder(nil, nil)
	this := eb.V("this", testutil.RefTypeNamed("A"))
	eb.Invoke(nil, ir.KSpecial, this, a, "<init>()", nil)
	eb.Invoke(nil, ir.KStatic, nil, a, "helper()", nil)
	entry := h.Declare(h.Class("Main", false, false), "main()", false, eb.Build())

	g := Build(entry, h, newTestLog())
	if !g.Contains(aInit) || !g.Contains(aStatic) {
		t.Fatalf("expected both <init> and helper reachable")
	}
}

func TestBuildUnresolvableStaticCallLogsAndSkips(t *testing.T) {
	h := htestutil.NewHierarchy()
	a := h.Class("A", false, false)

	eb := testutil.NewBuilder(nil, nil)
	eb.Invoke(nil, ir.KStatic, nil, a, "missing()", nil)
	entry := h.Declare(h.Class("Main", false, false), "main()", false, eb.Build())

	g := Build(entry, h, newTestLog())
	if len(g.Edges()) != 0 {
		t.Fatalf("Edges() = %v, want none (unresolvable call contributes nothing)", g.Edges())
	}
	if len(g.ReachableMethods()) != 1 {
		t.Fatalf("ReachableMethods() = %v, want only entry", g.ReachableMethods())
	}
}

func emptyFn() *ir.Function { return &ir.Function{} }
