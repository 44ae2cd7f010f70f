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

package ir

// FieldRef identifies a field by declaring class name and field name. It is
// comparable so it can key the heap-value map (spec.md §4.7).
type FieldRef struct {
	Class string
	Name  string
}

// CallKind classifies how a call site dispatches (spec.md §4.4/§4.6).
type CallKind uint8

const (
	KStatic CallKind = iota
	KSpecial
	KVirtual
	KInterface
	KDynamic
)

func (k CallKind) String() string {
	switch k {
	case KStatic:
		return "STATIC"
	case KSpecial:
		return "SPECIAL"
	case KVirtual:
		return "VIRTUAL"
	case KInterface:
		return "INTERFACE"
	case KDynamic:
		return "DYNAMIC"
	default:
		return "UNKNOWN"
	}
}

type stmtBase struct{ idx int }

func (s stmtBase) Index() int { return s.idx }

// New is `x = new <Type>`.
type New struct {
	stmtBase
	X    Var
	Type Type
}

func (New) Kind() StmtKind { return SNew }
func (s New) LHS() Var     { return s.X }

// NewNew constructs a New statement at program index idx.
func NewNew(idx int, x Var, t Type) *New { return &New{stmtBase{idx}, x, t} }

// Copy is `x = y`.
type Copy struct {
	stmtBase
	X, Y Var
}

func (Copy) Kind() StmtKind { return SCopy }
func (s Copy) LHS() Var     { return s.X }

func NewCopy(idx int, x, y Var) *Copy { return &Copy{stmtBase{idx}, x, y} }

// LoadField is `x = base.f` (instance) or `x = Cls.f` (static, Base == nil).
type LoadField struct {
	stmtBase
	X     Var
	Base  Var // nil for a static load
	Field FieldRef
}

func (LoadField) Kind() StmtKind  { return SLoadField }
func (s LoadField) LHS() Var      { return s.X }
func (s LoadField) IsStatic() bool { return s.Base == nil }

func NewLoadField(idx int, x, base Var, f FieldRef) *LoadField {
	return &LoadField{stmtBase{idx}, x, base, f}
}

// StoreField is `base.f = y` (instance) or `Cls.f = y` (static, Base == nil).
type StoreField struct {
	stmtBase
	Base  Var
	Field FieldRef
	Y     Var
}

func (StoreField) Kind() StmtKind   { return SStoreField }
func (s StoreField) IsStatic() bool { return s.Base == nil }

func NewStoreField(idx int, base Var, f FieldRef, y Var) *StoreField {
	return &StoreField{stmtBase{idx}, base, f, y}
}

// LoadArray is `x = base[index]`.
type LoadArray struct {
	stmtBase
	X        Var
	Base     Var
	IndexVar Var
}

func (LoadArray) Kind() StmtKind { return SLoadArray }
func (s LoadArray) LHS() Var     { return s.X }

func NewLoadArray(idx int, x, base, index Var) *LoadArray {
	return &LoadArray{stmtBase{idx}, x, base, index}
}

// StoreArray is `base[index] = y`.
type StoreArray struct {
	stmtBase
	Base     Var
	IndexVar Var
	Y        Var
}

func (StoreArray) Kind() StmtKind { return SStoreArray }

func NewStoreArray(idx int, base, index, y Var) *StoreArray {
	return &StoreArray{stmtBase{idx}, base, index, y}
}

// Invoke is a method call, optionally assigning its result to X (nil if the
// result is discarded).
//
// DeclClass is the call site's statically declared receiver/owner class,
// typed `any` rather than `hierarchy.Class` to avoid an import cycle (the
// hierarchy package depends on ir, not the reverse): the front-end that
// builds IR already holds the concrete hierarchy.Class it resolved the call
// against, and boxes it here opaquely for CHA/points-to to type-assert back.
type Invoke struct {
	stmtBase
	X         Var // nil if the result is unused
	CallKind  CallKind
	Recv      Var // nil for a static call
	Subsig    string
	DeclClass any
	Args      []Var
	IsDynamic bool // front-end explicitly tags this as a dynamic dispatch
}

func (Invoke) Kind() StmtKind { return SInvoke }
func (s Invoke) LHS() Var {
	if s.X == nil {
		return nil
	}
	return s.X
}

func NewInvoke(idx int, x Var, kind CallKind, recv Var, declClass any, subsig string, args []Var) *Invoke {
	return &Invoke{stmtBase: stmtBase{idx}, X: x, CallKind: kind, Recv: recv, Subsig: subsig, DeclClass: declClass, Args: args}
}

// Goto is an unconditional jump. Real bytecode compiles `if/else` as a
// conditional branch followed by a Goto at the end of the true/false arm
// that skips the other arm (original_source's IR carries this stmt; it was
// dropped from spec.md §6's Stmt-kinds enumeration but is required to give
// CFG.Build correct fallthrough for any non-trivial branch).
type Goto struct {
	stmtBase
	Target int
}

func (Goto) Kind() StmtKind { return SGoto }

func NewGoto(idx, target int) *Goto { return &Goto{stmtBase{idx}, target} }

// If is a conditional branch; Cond is evaluated by the constant-propagation
// evaluator. TrueTarget/FalseTarget are statement indices in the owning CFG.
type If struct {
	stmtBase
	Cond                    BinaryExpr
	TrueTarget, FalseTarget int
}

func (If) Kind() StmtKind { return SIf }

func NewIf(idx int, cond BinaryExpr, trueT, falseT int) *If {
	return &If{stmtBase{idx}, cond, trueT, falseT}
}

// SwitchCase is one `case value: -> target` arm of a Switch.
type SwitchCase struct {
	Value  int32
	Target int
}

// Switch dispatches on Key's value; DefaultTarget is used when no case
// matches (-1 if there is no default, meaning control falls off the switch).
type Switch struct {
	stmtBase
	Key           Var
	Cases         []SwitchCase
	DefaultTarget int
}

func (Switch) Kind() StmtKind { return SSwitch }

func NewSwitch(idx int, key Var, cases []SwitchCase, defaultTarget int) *Switch {
	return &Switch{stmtBase{idx}, key, cases, defaultTarget}
}

// Assign is a generic `x = rhs` for expressions that are not one of the
// more specific statement shapes above (e.g. `x = a + b`).
type Assign struct {
	stmtBase
	X   Var
	RHS Expr
}

func (Assign) Kind() StmtKind { return SAssign }
func (s Assign) LHS() Var     { return s.X }

func NewAssign(idx int, x Var, rhs Expr) *Assign { return &Assign{stmtBase{idx}, x, rhs} }
