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

package pointer

import (
	"testing"

	"github.com/nju-sa/corestatic/csctx"
	"github.com/nju-sa/corestatic/hierarchy"
	htestutil "github.com/nju-sa/corestatic/hierarchy/testutil"
	"github.com/nju-sa/corestatic/internal/salog"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/ir/testutil"
)

func newTestLog() *salog.LogGroup { return salog.New("pointer-test", salog.ErrLevel) }

// spec.md §8 scenario 4: `a = new X(); b = a; c = b.f; a.f = new Y();` with
// X.f a field: pt(c) contains the new Y() object, even though the store to
// a.f appears after the load of b.f in program order (the solver is
// flow-insensitive).
func TestSolveContextInsensitiveAliasing(t *testing.T) {
	b := testutil.NewBuilder(nil, nil)
	a := b.V("a", testutil.RefTypeNamed("X"))
	bv := b.V("b", testutil.RefTypeNamed("X"))
	c := b.V("c", testutil.RefTypeNamed("X"))
	y := b.V("y", testutil.RefTypeNamed("Y"))
	f := ir.FieldRef{Class: "X", Name: "f"}

	b.New(a, testutil.RefTypeNamed("X"))
	b.Copy(bv, a)
	b.LoadField(c, bv, f)
	b.New(y, testutil.RefTypeNamed("Y"))
	b.StoreField(a, f, y)
	fn := b.Build()

	h := htestutil.NewHierarchy()
	mainClass := h.Class("Main", false, false)
	entry := h.Declare(mainClass, "main()", false, fn)

	sv := NewSolver(h, csctx.Insensitive{}, newTestLog())
	res := sv.Solve(entry)

	yObjs := res.PointsToVar(CSVar{csctx.Empty(), y})
	if len(yObjs) != 1 {
		t.Fatalf("pt(y) = %v, want exactly 1 object", yObjs)
	}
	cObjs := res.PointsToVar(CSVar{csctx.Empty(), c})
	if len(cObjs) != 1 || cObjs[0] != yObjs[0] {
		t.Fatalf("pt(c) = %v, want {%v} (the new Y() object)", cObjs, yObjs[0])
	}
}

// buildListScenario builds:
//
//	class List { add(Object o) { this._contents = o; } }
//	addWrapper(List list, Object item) { list.add(item); }  // one call site
//	main() {
//	    l1 = new List(); l2 = new List();
//	    o1 = new Object(); o2 = new Object();
//	    addWrapper(l1, o1); addWrapper(l2, o2);
//	}
//
// addWrapper's own call site is shared by both outer invocations, so
// list.add(item) is resolved from a single static call site but two
// distinct receivers (l1's List object, l2's List object) — the setup
// spec.md §8 scenario 5 needs to contrast 1-object against 1-call-string.
func buildListScenario() (h *htestutil.Hierarchy, entry hierarchy.Method, l1, l2, o1, o2 ir.Var, field ir.FieldRef) {
	h = htestutil.NewHierarchy()
	listClass := h.Class("List", false, false)
	field = ir.FieldRef{Class: "List", Name: "_contents"}

	thisVar := testutil.NewVar("this", testutil.RefTypeNamed("List"), 0)
	oParam := testutil.NewVar("o", testutil.RefType, 1)
	bAdd := testutil.NewBuilder([]ir.Var{oParam}, thisVar)
	bAdd.StoreField(thisVar, field, oParam)
	h.Declare(listClass, "add(Object)", false, bAdd.Build())

	listParam := testutil.NewVar("list", testutil.RefTypeNamed("List"), 0)
	itemParam := testutil.NewVar("item", testutil.RefType, 1)
	bWrap := testutil.NewBuilder([]ir.Var{listParam, itemParam}, nil)
	bWrap.Invoke(nil, ir.KVirtual, listParam, listClass, "add(Object)", []ir.Var{itemParam})
	utilClass := h.Class("Util", false, false)
	h.Declare(utilClass, "addWrapper(List,Object)", false, bWrap.Build())

	bMain := testutil.NewBuilder(nil, nil)
	l1v := bMain.V("l1", testutil.RefTypeNamed("List"))
	l2v := bMain.V("l2", testutil.RefTypeNamed("List"))
	o1v := bMain.V("o1", testutil.RefType)
	o2v := bMain.V("o2", testutil.RefType)
	bMain.New(l1v, listClass)
	bMain.New(l2v, listClass)
	bMain.New(o1v, testutil.RefType)
	bMain.New(o2v, testutil.RefType)
	bMain.Invoke(nil, ir.KStatic, nil, utilClass, "addWrapper(List,Object)", []ir.Var{l1v, o1v})
	bMain.Invoke(nil, ir.KStatic, nil, utilClass, "addWrapper(List,Object)", []ir.Var{l2v, o2v})
	mainClass := h.Class("Main", false, false)
	entryMethod := h.Declare(mainClass, "main()", false, bMain.Build())

	return h, entryMethod, l1v, l2v, o1v, o2v, field
}

// spec.md §8 scenario 5: 1-object sensitivity keeps the two lists' _contents
// disjoint; 1-call-string merges them (both invocations of add() share the
// same immediate call site inside addWrapper, so the call-string context
// can't tell them apart).
func TestSolveOneObjectSeparatesReceivers(t *testing.T) {
	h, entry, l1, l2, o1, o2, field := buildListScenario()
	sv := NewSolver(h, csctx.KObject{K: 1}, newTestLog())
	res := sv.Solve(entry)

	l1Objs := res.PointsToVar(CSVar{csctx.Empty(), l1})
	l2Objs := res.PointsToVar(CSVar{csctx.Empty(), l2})
	if len(l1Objs) != 1 || len(l2Objs) != 1 {
		t.Fatalf("pt(l1)=%v pt(l2)=%v, want singletons", l1Objs, l2Objs)
	}
	o1Objs := res.PointsToVar(CSVar{csctx.Empty(), o1})
	o2Objs := res.PointsToVar(CSVar{csctx.Empty(), o2})

	contents1 := res.PointsTo(InstanceField(l1Objs[0], field))
	contents2 := res.PointsTo(InstanceField(l2Objs[0], field))

	if !containsObj(contents1, o1Objs[0]) || containsObj(contents1, o2Objs[0]) {
		t.Fatalf("pt(l1._contents) = %v, want exactly {o1}", contents1)
	}
	if !containsObj(contents2, o2Objs[0]) || containsObj(contents2, o1Objs[0]) {
		t.Fatalf("pt(l2._contents) = %v, want exactly {o2}", contents2)
	}
}

func TestSolveOneCallStringMergesReceivers(t *testing.T) {
	h, entry, l1, l2, o1, o2, field := buildListScenario()
	sv := NewSolver(h, csctx.KCallString{K: 1}, newTestLog())
	res := sv.Solve(entry)

	l1Objs := res.PointsToVar(CSVar{csctx.Empty(), l1})
	l2Objs := res.PointsToVar(CSVar{csctx.Empty(), l2})
	o1Objs := res.PointsToVar(CSVar{csctx.Empty(), o1})
	o2Objs := res.PointsToVar(CSVar{csctx.Empty(), o2})

	contents1 := res.PointsTo(InstanceField(l1Objs[0], field))
	contents2 := res.PointsTo(InstanceField(l2Objs[0], field))

	if !containsObj(contents1, o1Objs[0]) || !containsObj(contents1, o2Objs[0]) {
		t.Fatalf("pt(l1._contents) = %v, want both o1 and o2 merged under 1-call-string", contents1)
	}
	if !containsObj(contents2, o1Objs[0]) || !containsObj(contents2, o2Objs[0]) {
		t.Fatalf("pt(l2._contents) = %v, want both o1 and o2 merged under 1-call-string", contents2)
	}
}

func containsObj(objs []*Obj, o *Obj) bool {
	for _, x := range objs {
		if x == o {
			return true
		}
	}
	return false
}
