package cha

import (
	"testing"

	htestutil "github.com/nju-sa/corestatic/hierarchy/testutil"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
)

// TestGraphWiresCallees checks that Graph()'s adjacency has an edge for
// every resolved call-graph edge, keyed by discovery-order id.
func TestGraphWiresCallees(t *testing.T) {
	h := htestutil.NewHierarchy()
	a := h.Class("A", false, false)

	callee := testutil.NewBuilder(nil, nil).Build()
	calleeM := h.Declare(a, "callee()", false, callee)

	eb := testutil.NewBuilder(nil, nil)
	eb.Invoke(nil, ir.KStatic, nil, a, "callee()", nil)
	entry := h.Declare(h.Class("Main", false, false), "main()", false, eb.Build())

	g := Build(entry, h, newTestLog())
	d := g.Graph()

	entryID, calleeID := g.ids[entry], g.ids[calleeM]
	if !d.HasEdgeFromTo(entryID, calleeID) {
		t.Fatalf("Graph() missing edge entry -> callee")
	}
}

// TestRecursiveCyclesSelf: A.foo() calls itself via a static call.
func TestRecursiveCyclesSelf(t *testing.T) {
	h := htestutil.NewHierarchy()
	a := h.Class("A", false, false)

	eb := testutil.NewBuilder(nil, nil)
	eb.Invoke(nil, ir.KStatic, nil, a, "foo()", nil)
	foo := h.Declare(a, "foo()", false, eb.Build())

	entryB := testutil.NewBuilder(nil, nil)
	entryB.Invoke(nil, ir.KStatic, nil, a, "foo()", nil)
	entry := h.Declare(h.Class("Main", false, false), "main()", false, entryB.Build())

	g := Build(entry, h, newTestLog())
	cycles := g.RecursiveCycles()

	found := false
	for _, c := range cycles {
		if len(c) == 1 && c[0] == foo {
			found = true
		}
	}
	if !found {
		t.Fatalf("RecursiveCycles() = %v, want a self-recursive singleton {A.foo}", cycles)
	}
}

// TestRecursiveCyclesMutual: A.bar() calls A.baz(), which calls A.bar() back.
func TestRecursiveCyclesMutual(t *testing.T) {
	h := htestutil.NewHierarchy()
	a := h.Class("A", false, false)

	barB := testutil.NewBuilder(nil, nil)
	barB.Invoke(nil, ir.KStatic, nil, a, "baz()", nil)
	bar := h.Declare(a, "bar()", false, barB.Build())

	bazB := testutil.NewBuilder(nil, nil)
	bazB.Invoke(nil, ir.KStatic, nil, a, "bar()", nil)
	baz := h.Declare(a, "baz()", false, bazB.Build())

	entryB := testutil.NewBuilder(nil, nil)
	entryB.Invoke(nil, ir.KStatic, nil, a, "bar()", nil)
	entry := h.Declare(h.Class("Main", false, false), "main()", false, entryB.Build())

	g := Build(entry, h, newTestLog())
	cycles := g.RecursiveCycles()

	found := false
	for _, c := range cycles {
		if len(c) == 2 && ((c[0] == bar && c[1] == baz) || (c[0] == baz && c[1] == bar)) {
			found = true
		}
	}
	if !found {
		t.Fatalf("RecursiveCycles() = %v, want a 2-element cycle {A.bar, A.baz}", cycles)
	}
}
