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

// Package csctx implements the context abstraction consumed by the
// context-sensitive points-to solver (spec.md §4.6): small immutable,
// interned tuples of opaque elements, and the pluggable ContextSelector
// strategies (k-call-string, k-object, k-type) that derive one context from
// another.
package csctx

import (
	"fmt"
	"strings"

	"github.com/nju-sa/corestatic/hierarchy"
)

// Element is one atom of a Context: a call site (*ir.Invoke), a heap object
// identity, or an allocation-site type name. Kept opaque here so this
// package need not import ir or the points-to package's Obj type (which
// itself depends on csctx to carry a heap context) — callers pass whatever
// pointer-identified value is appropriate, keyed by pointer address.
type Element any

// Context is an interned, immutable, comparable sequence of Elements. The
// zero Context is the empty context (spec.md §4.6's context-insensitive
// bottom).
type Context struct{ key string }

var interned = map[string][]Element{}

// Empty returns the empty context.
func Empty() Context { return Context{} }

// IsEmpty reports whether c has no elements.
func (c Context) IsEmpty() bool { return c.key == "" }

// Elems returns c's elements, oldest first.
func (c Context) Elems() []Element { return interned[c.key] }

func (c Context) String() string {
	if c.IsEmpty() {
		return "[]"
	}
	return "[" + c.key + "]"
}

func elementKey(e Element) string { return fmt.Sprintf("%p", e) }

func intern(elems []Element) Context {
	if len(elems) == 0 {
		return Empty()
	}
	var sb strings.Builder
	for i, e := range elems {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(elementKey(e))
	}
	key := sb.String()
	if _, ok := interned[key]; !ok {
		cp := make([]Element, len(elems))
		copy(cp, elems)
		interned[key] = cp
	}
	return Context{key: key}
}

// appendTrunc returns the context formed by taking the last k-1 elements of
// base and appending e, per the k-call-string/k-object/k-type truncation
// rule of spec.md §4.6.
func appendTrunc(base Context, e Element, k int) Context {
	if k <= 0 {
		return Empty()
	}
	elems := base.Elems()
	start := 0
	if len(elems) > k-1 {
		start = len(elems) - (k - 1)
	}
	next := make([]Element, 0, k)
	next = append(next, elems[start:]...)
	next = append(next, e)
	return intern(next)
}

// truncLast returns the context formed by keeping only the last k elements
// of base (no new element appended): used to derive a heap context from an
// enclosing method's context.
func truncLast(base Context, k int) Context {
	if k <= 0 {
		return Empty()
	}
	elems := base.Elems()
	if len(elems) <= k {
		return base
	}
	return intern(append([]Element{}, elems[len(elems)-k:]...))
}

// CSObjInfo is the minimal shape of a contextualized heap object a Selector
// needs to derive a receiver-aware context, implemented by the points-to
// package's CSObj without csctx importing it back.
type CSObjInfo interface {
	// Identity is the object's own identity, appended by k-Object.
	Identity() Element
	// DeclaredType is the object's allocation-site type, appended by k-Type.
	DeclaredType() Element
	// Context is the object's own heap context.
	Context() Context
}

// Selector is the pluggable ContextSelector of spec.md §4.6.
type Selector interface {
	// SelectContext is the caller-side method context, used for calls with
	// no contextualized receiver (static calls).
	SelectContext(callerCtx Context, site Element, callee hierarchy.Method) Context
	// SelectContextRecv is the receiver-aware method context, used for
	// instance calls.
	SelectContextRecv(callerCtx Context, recv CSObjInfo, site Element, callee hierarchy.Method) Context
	// SelectHeapContext is the heap context assigned to a new allocation
	// inside a method with context methodCtx.
	SelectHeapContext(methodCtx Context) Context
}

// Insensitive collapses every context to the empty context (spec.md §4.5's
// context-insensitive solver run through the §4.6 machinery uniformly).
type Insensitive struct{}

func (Insensitive) SelectContext(Context, Element, hierarchy.Method) Context { return Empty() }
func (Insensitive) SelectContextRecv(Context, CSObjInfo, Element, hierarchy.Method) Context {
	return Empty()
}
func (Insensitive) SelectHeapContext(Context) Context { return Empty() }

// KCallString is k-call-string sensitivity: the new method context is the
// last k-1 elements of the caller context with the call site appended.
// Heap context is always empty (allocation sites aren't part of a call
// string), matching Tai-e's call-site-sensitive pointer analysis.
type KCallString struct{ K int }

func (s KCallString) SelectContext(callerCtx Context, site Element, _ hierarchy.Method) Context {
	return appendTrunc(callerCtx, site, s.K)
}

func (s KCallString) SelectContextRecv(callerCtx Context, _ CSObjInfo, site Element, callee hierarchy.Method) Context {
	return s.SelectContext(callerCtx, site, callee)
}

func (KCallString) SelectHeapContext(Context) Context { return Empty() }

// KObject is k-object sensitivity: the new method context for an instance
// call is the receiver's own context truncated and appended with the
// receiver object itself; static calls fall back to k-call-string-style
// caller-context truncation (grounded on Cenaras-tools' KObjNHeap.MergeStatic
// returning the context unchanged plus the call-site-keyed behavior the
// Insens/KCallNHeap variants share for the no-receiver case). Heap context
// is the enclosing method's context truncated to k-1 elements, unchanged
// (no new element appended).
type KObject struct{ K int }

func (s KObject) SelectContext(callerCtx Context, site Element, _ hierarchy.Method) Context {
	return appendTrunc(callerCtx, site, s.K)
}

func (s KObject) SelectContextRecv(_ Context, recv CSObjInfo, _ Element, _ hierarchy.Method) Context {
	return appendTrunc(recv.Context(), recv.Identity(), s.K)
}

func (s KObject) SelectHeapContext(methodCtx Context) Context {
	return truncLast(methodCtx, s.K-1)
}

// KType is k-type sensitivity: identical to KObject except the receiver's
// allocation-site declared type is appended instead of the receiver object
// itself.
type KType struct{ K int }

func (s KType) SelectContext(callerCtx Context, site Element, _ hierarchy.Method) Context {
	return appendTrunc(callerCtx, site, s.K)
}

func (s KType) SelectContextRecv(_ Context, recv CSObjInfo, _ Element, _ hierarchy.Method) Context {
	return appendTrunc(recv.Context(), recv.DeclaredType(), s.K)
}

func (s KType) SelectHeapContext(methodCtx Context) Context {
	return truncLast(methodCtx, s.K-1)
}
