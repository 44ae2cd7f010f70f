package csctx

import "testing"

type fakeObjInfo struct {
	id  Element
	typ Element
	ctx Context
}

func (f fakeObjInfo) Identity() Element     { return f.id }
func (f fakeObjInfo) DeclaredType() Element { return f.typ }
func (f fakeObjInfo) Context() Context      { return f.ctx }

func TestEmptyContextIsEmpty(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Fatalf("Empty() should be empty")
	}
	if !(Context{}).IsEmpty() {
		t.Fatalf("zero Context should be empty")
	}
}

func TestKCallStringTruncates(t *testing.T) {
	s := KCallString{K: 1}
	site1, site2 := new(int), new(int)
	c1 := s.SelectContext(Empty(), site1, nil)
	if c1.IsEmpty() {
		t.Fatalf("1-call-string context with one call site should not be empty")
	}
	c2 := s.SelectContext(c1, site2, nil)
	// k=1 means only the most recent call site is kept.
	if len(c2.Elems()) != 1 {
		t.Fatalf("1-call-string context length = %d, want 1", len(c2.Elems()))
	}
	if c2.Elems()[0] != Element(site2) {
		t.Fatalf("1-call-string should keep only the latest call site")
	}
}

func TestKCallString2KeepsTwo(t *testing.T) {
	s := KCallString{K: 2}
	site1, site2, site3 := new(int), new(int), new(int)
	c := s.SelectContext(Empty(), site1, nil)
	c = s.SelectContext(c, site2, nil)
	c = s.SelectContext(c, site3, nil)
	elems := c.Elems()
	if len(elems) != 2 {
		t.Fatalf("2-call-string length = %d, want 2", len(elems))
	}
	if elems[0] != Element(site2) || elems[1] != Element(site3) {
		t.Fatalf("2-call-string should keep the latest two call sites, got %v", elems)
	}
}

// spec.md §8 scenario 5's contrast: 1-object sensitivity distinguishes two
// receivers created at different allocation sites; 1-call-string (same call
// site for both factory calls) does not.
func TestKObjectDistinguishesReceivers(t *testing.T) {
	s := KObject{K: 1}
	o1, o2 := new(int), new(int)
	recv1 := fakeObjInfo{id: o1, ctx: Empty()}
	recv2 := fakeObjInfo{id: o2, ctx: Empty()}
	ctx1 := s.SelectContextRecv(Empty(), recv1, nil, nil)
	ctx2 := s.SelectContextRecv(Empty(), recv2, nil, nil)
	if ctx1 == ctx2 {
		t.Fatalf("1-object contexts for distinct receivers should differ, both = %v", ctx1)
	}
}

func TestKCallStringMergesSameCallSite(t *testing.T) {
	s := KCallString{K: 1}
	site := new(int)
	ctx1 := s.SelectContextRecv(Empty(), fakeObjInfo{ctx: Empty()}, site, nil)
	ctx2 := s.SelectContextRecv(Empty(), fakeObjInfo{ctx: Empty()}, site, nil)
	if ctx1 != ctx2 {
		t.Fatalf("1-call-string contexts for the same call site should be identical (interned)")
	}
}

func TestInsensitiveAlwaysEmpty(t *testing.T) {
	s := Insensitive{}
	site := new(int)
	if got := s.SelectContext(Empty(), site, nil); !got.IsEmpty() {
		t.Fatalf("Insensitive.SelectContext should always be empty, got %v", got)
	}
	if got := s.SelectHeapContext(Empty()); !got.IsEmpty() {
		t.Fatalf("Insensitive.SelectHeapContext should always be empty, got %v", got)
	}
}

func TestInterningGivesEqualContextsForEqualSequences(t *testing.T) {
	site := new(int)
	a := appendTrunc(Empty(), site, 1)
	b := appendTrunc(Empty(), site, 1)
	if a != b {
		t.Fatalf("contexts built from the same element sequence should be == (interned)")
	}
}
