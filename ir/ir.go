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

// Package ir states the contract that a front-end IR builder must satisfy
// for the analyses in this module to run over it. Nothing in this package
// builds IR: it is the boundary the class-hierarchy loader and the
// statement/CFG builder are expected to implement.
package ir

// Kind classifies a declared type for canHoldInt purposes (spec.md §4.1).
type Kind uint8

const (
	Other Kind = iota
	Byte
	Short
	Int
	Char
	Boolean
)

// Type identifies a declared type. Implementations must be comparable.
type Type interface {
	Kind() Kind
	String() string
}

// CanHoldInt is true iff t is one of Byte, Short, Int, Char, Boolean.
func CanHoldInt(t Type) bool {
	switch t.Kind() {
	case Byte, Short, Int, Char, Boolean:
		return true
	default:
		return false
	}
}

// Var is an opaque local variable or parameter. Implementations must be
// comparable so they can key maps directly.
type Var interface {
	Name() string
	Type() Type
	// Index is a dense per-method index used to size per-variable slices.
	Index() int
}

// StmtKind tags the closed sum of statement shapes a method body is built
// from (spec.md §6 "Stmt kinds"), matched via a tagged-sum dispatch rather
// than a visitor hierarchy (spec.md §9).
type StmtKind uint8

const (
	SNew StmtKind = iota
	SCopy
	SLoadField
	SStoreField
	SLoadArray
	SStoreArray
	SInvoke
	SIf
	SSwitch
	SAssign
	SGoto
)

// Stmt is a single statement in a method body.
type Stmt interface {
	Kind() StmtKind
	// Index is the statement's position in program order, used to key
	// per-statement fact maps and to break ties when ordering reports.
	Index() int
}

// AssignStmt is implemented by statements that define a variable:
// New, Copy, LoadField, LoadArray, Invoke (whose LHS is nil when the result
// is discarded), and generic Assign.
type AssignStmt interface {
	Stmt
	LHS() Var
}

// Expr is the right-hand side of an AssignStmt, or the subject of an If or
// Switch condition. Concrete shapes (Var, int literal, BinaryExpr, ...) are
// type-switched on by the evaluator.
type Expr interface {
	isExpr()
}

// BinOp enumerates the binary operators evaluate (spec.md §4.1) understands.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr  // arithmetic (signed) right shift
	UShr // logical (unsigned) right shift
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
)

// VarExpr wraps a Var as an Expr.
type VarExpr struct{ V Var }

func (VarExpr) isExpr() {}

// IntLit is an integer literal expression.
type IntLit struct{ Value int32 }

func (IntLit) isExpr() {}

// BinaryExpr is `Op(L, R)`.
type BinaryExpr struct {
	Op   BinOp
	L, R Var
}

func (BinaryExpr) isExpr() {}

// OpaqueExpr stands for any expression the evaluator over-approximates to
// NAC: casts, field/array reads used outside LoadField/LoadArray, calls
// embedded in expression position, etc.
type OpaqueExpr struct{}

func (OpaqueExpr) isExpr() {}

// Function is the per-method intermediate representation: its parameters,
// return variables, `this` (nil for static methods), and statements in
// program order.
type Function struct {
	Params     []Var
	ReturnVars []Var
	This       Var // nil if static
	Stmts      []Stmt

	// Invokes, LoadFields, StoreFields, LoadArrays, StoreArrays index the
	// statements touching a given variable, keyed by Var.Index(). These are
	// the "per-variable indices" spec.md §6 asks the front-end to expose.
	InvokesByRecv     map[int][]*Invoke
	LoadFieldsByBase  map[int][]*LoadField
	StoreFieldsByBase map[int][]*StoreField
	LoadArraysByBase  map[int][]*LoadArray
	StoreArraysByBase map[int][]*StoreArray
}
