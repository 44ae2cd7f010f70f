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

// Package testutil is an in-memory reference implementation of the ir and
// hierarchy front-end contracts, for unit tests only. It is not a front-end
// IR builder, just fixtures (spec.md §4.10 "Front-end contract types").
package testutil

import "github.com/nju-sa/corestatic/ir"

// Type is a minimal comparable ir.Type.
type Type struct {
	kind ir.Kind
	name string
}

func (t Type) Kind() ir.Kind  { return t.kind }
func (t Type) String() string { return t.name }

var (
	IntType     = Type{ir.Int, "int"}
	BooleanType = Type{ir.Boolean, "boolean"}
	ByteType    = Type{ir.Byte, "byte"}
	RefType     = Type{ir.Other, "ref"} // a reference/object type, cannot hold int
)

// RefTypeNamed builds a reference Type identified by name, distinct from
// RefType when class identity matters (e.g. for heap-object typing).
func RefTypeNamed(name string) Type { return Type{ir.Other, name} }

// Var is a minimal comparable ir.Var. Construct with V, or with NewVar when
// no Builder exists yet (e.g. a parameter shared by a throwaway caller and
// the callee Builder that declares it).
type Var struct {
	name string
	typ  ir.Type
	idx  int
}

func (v *Var) Name() string  { return v.name }
func (v *Var) Type() ir.Type { return v.typ }
func (v *Var) Index() int    { return v.idx }

// NewVar builds a standalone Var with a caller-chosen dense index.
func NewVar(name string, t ir.Type, idx int) *Var {
	return &Var{name: name, typ: t, idx: idx}
}

// Builder assembles an ir.Function incrementally for tests.
type Builder struct {
	fn     *ir.Function
	nextID int
}

// NewBuilder returns a Builder for a function with the given parameters
// (already created with V) and this (nil for a static method).
func NewBuilder(params []ir.Var, this ir.Var) *Builder {
	b := &Builder{fn: &ir.Function{
		Params:            params,
		This:              this,
		InvokesByRecv:     map[int][]*ir.Invoke{},
		LoadFieldsByBase:  map[int][]*ir.LoadField{},
		StoreFieldsByBase: map[int][]*ir.StoreField{},
		LoadArraysByBase:  map[int][]*ir.LoadArray{},
		StoreArraysByBase: map[int][]*ir.StoreArray{},
	}}
	for _, p := range params {
		if p.Index() >= b.nextID {
			b.nextID = p.Index() + 1
		}
	}
	return b
}

// V creates a new variable with a fresh dense index scoped to b.
func (b *Builder) V(name string, t ir.Type) *Var {
	v := &Var{name: name, typ: t, idx: b.nextID}
	b.nextID++
	return v
}

func (b *Builder) nextIdx() int { return len(b.fn.Stmts) }

func (b *Builder) add(s ir.Stmt) {
	b.fn.Stmts = append(b.fn.Stmts, s)
}

func (b *Builder) New(x ir.Var, t ir.Type) { b.add(ir.NewNew(b.nextIdx(), x, t)) }

func (b *Builder) Copy(x, y ir.Var) { b.add(ir.NewCopy(b.nextIdx(), x, y)) }

func (b *Builder) Assign(x ir.Var, rhs ir.Expr) { b.add(ir.NewAssign(b.nextIdx(), x, rhs)) }

func (b *Builder) LoadField(x, base ir.Var, f ir.FieldRef) {
	s := ir.NewLoadField(b.nextIdx(), x, base, f)
	b.add(s)
	if base != nil {
		b.fn.LoadFieldsByBase[base.Index()] = append(b.fn.LoadFieldsByBase[base.Index()], s)
	}
}

func (b *Builder) StoreField(base ir.Var, f ir.FieldRef, y ir.Var) {
	s := ir.NewStoreField(b.nextIdx(), base, f, y)
	b.add(s)
	if base != nil {
		b.fn.StoreFieldsByBase[base.Index()] = append(b.fn.StoreFieldsByBase[base.Index()], s)
	}
}

func (b *Builder) LoadArray(x, base, index ir.Var) {
	s := ir.NewLoadArray(b.nextIdx(), x, base, index)
	b.add(s)
	b.fn.LoadArraysByBase[base.Index()] = append(b.fn.LoadArraysByBase[base.Index()], s)
}

func (b *Builder) StoreArray(base, index, y ir.Var) {
	s := ir.NewStoreArray(b.nextIdx(), base, index, y)
	b.add(s)
	b.fn.StoreArraysByBase[base.Index()] = append(b.fn.StoreArraysByBase[base.Index()], s)
}

func (b *Builder) Invoke(x ir.Var, kind ir.CallKind, recv ir.Var, declClass any, subsig string, args []ir.Var) *ir.Invoke {
	s := ir.NewInvoke(b.nextIdx(), x, kind, recv, declClass, subsig, args)
	b.add(s)
	if recv != nil {
		b.fn.InvokesByRecv[recv.Index()] = append(b.fn.InvokesByRecv[recv.Index()], s)
	}
	return s
}

func (b *Builder) If(cond ir.BinaryExpr, trueTarget, falseTarget int) {
	b.add(ir.NewIf(b.nextIdx(), cond, trueTarget, falseTarget))
}

func (b *Builder) Goto(target int) { b.add(ir.NewGoto(b.nextIdx(), target)) }

func (b *Builder) Switch(key ir.Var, cases []ir.SwitchCase, defaultTarget int) {
	b.add(ir.NewSwitch(b.nextIdx(), key, cases, defaultTarget))
}

// Build finalizes and returns the assembled function.
func (b *Builder) Build() *ir.Function { return b.fn }
