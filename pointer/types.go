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

// Package pointer implements the context-insensitive and context-sensitive
// Andersen-style points-to solvers of spec.md §4.5/§4.6, sharing one solver
// parameterized by a csctx.Selector: the context-insensitive solver is just
// csctx.Insensitive{} run through the same machinery, per §4.6's "solver
// logic is identical to §4.5 with all entities replaced by their
// contextualized versions".
package pointer

import (
	"fmt"

	"github.com/nju-sa/corestatic/csctx"
	"github.com/nju-sa/corestatic/errtax"
	"github.com/nju-sa/corestatic/hierarchy"
	"github.com/nju-sa/corestatic/ir"
)

// Obj is a heap allocation site contextualized by its heap context, the
// "CSObj" of spec.md §4.6. Implements csctx.CSObjInfo so a Selector can
// derive k-object/k-type contexts from it without csctx depending on this
// package (the same any-boxing/type-assertion pattern ir.Invoke.DeclClass
// uses to avoid the symmetric cycle against hierarchy).
type Obj struct {
	Site *ir.New
	HCtx csctx.Context
}

func (o *Obj) Identity() csctx.Element     { return o }
func (o *Obj) DeclaredType() csctx.Element { return o.Site.Type }
func (o *Obj) Context() csctx.Context      { return o.HCtx }

var _ csctx.CSObjInfo = (*Obj)(nil)

// declClass returns o's allocated class, used to dispatch instance calls on
// o's receiver. The front-end's concrete ir.Type for a class type also
// implements hierarchy.Class (mirroring how ir.Invoke.DeclClass is boxed
// opaquely and asserted back by cha.Build).
func (o *Obj) declClass() hierarchy.Class {
	c, ok := o.Site.Type.(hierarchy.Class)
	if !ok {
		panic(&errtax.InternalInvariant{Reason: fmt.Sprintf("allocation site type %v does not implement hierarchy.Class", o.Site.Type)})
	}
	return c
}

func (o *Obj) String() string {
	return fmt.Sprintf("%s@%d%s", o.Site.Type, o.Site.Index(), o.HCtx)
}

// CSVar is a contextualized local variable or parameter: `(ctx, var)`.
type CSVar struct {
	Ctx csctx.Context
	V   ir.Var
}

func (v CSVar) String() string { return fmt.Sprintf("%s%s", v.V.Name(), v.Ctx) }

// CSMethod is a contextualized method.
type CSMethod struct {
	Ctx csctx.Context
	M   hierarchy.Method
}

func (m CSMethod) String() string { return fmt.Sprintf("%s%s", m.M.Subsignature(), m.Ctx) }

// pointerKind tags the closed sum of contextualized pointer-node shapes
// (spec.md §4.6): a local variable, an instance field, an array index cell,
// or a (context-free) static field.
type pointerKind uint8

const (
	pVar pointerKind = iota
	pInstanceField
	pArrayIndex
	pStaticField
)

// Pointer is one PFG node. It is a plain comparable struct rather than an
// interface or an arena-assigned integer id (spec.md §9 suggests "stable
// integer IDs" for a language without comparable struct values as map
// keys; Go structs of comparable fields are natively usable as map keys,
// so no separate id arena is needed here).
type Pointer struct {
	kind  pointerKind
	v     CSVar
	obj   *Obj
	field ir.FieldRef
}

// Var builds the pointer node for a contextualized local variable.
func Var(ctx csctx.Context, v ir.Var) Pointer { return Pointer{kind: pVar, v: CSVar{ctx, v}} }

// InstanceField builds the pointer node for obj.f.
func InstanceField(obj *Obj, f ir.FieldRef) Pointer {
	return Pointer{kind: pInstanceField, obj: obj, field: f}
}

// ArrayIndex builds the pointer node for obj's array cells (spec.md §4.7
// collapses all indices of one array object into a single cell).
func ArrayIndex(obj *Obj) Pointer { return Pointer{kind: pArrayIndex, obj: obj} }

// StaticField builds the pointer node for a static field. Context-free:
// static state is shared by every context (spec.md §4.6).
func StaticField(f ir.FieldRef) Pointer { return Pointer{kind: pStaticField, field: f} }

// AsVar reports whether p is a local-variable pointer, returning its CSVar.
func (p Pointer) AsVar() (CSVar, bool) {
	if p.kind != pVar {
		return CSVar{}, false
	}
	return p.v, true
}

func (p Pointer) String() string {
	switch p.kind {
	case pVar:
		return p.v.String()
	case pInstanceField:
		return fmt.Sprintf("%s.%s", p.obj, p.field.Name)
	case pArrayIndex:
		return fmt.Sprintf("%s[*]", p.obj)
	case pStaticField:
		return fmt.Sprintf("%s.%s", p.field.Class, p.field.Name)
	default:
		return "?"
	}
}

// PointsToSet is a set of heap objects.
type PointsToSet map[*Obj]bool

// Clone returns a shallow copy.
func (s PointsToSet) Clone() PointsToSet {
	cp := make(PointsToSet, len(s))
	for o := range s {
		cp[o] = true
	}
	return cp
}

// CallEdge is one resolved call-graph edge discovered on the fly.
type CallEdge struct {
	Caller CSMethod
	Site   *ir.Invoke
	Callee CSMethod
	Kind   ir.CallKind
}

type callEdgeKey struct {
	caller CSMethod
	site   *ir.Invoke
	callee CSMethod
}
