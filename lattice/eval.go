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

package lattice

import (
	"fmt"

	"github.com/nju-sa/corestatic/errtax"
	"github.com/nju-sa/corestatic/ir"
)

// Getter is the read side of a fact map, the only capability Evaluate needs
// from a CPFact. Kept as a narrow interface here (rather than importing the
// fact-map package) so lattice has no dependency on the dataflow package.
type Getter interface {
	Get(v ir.Var) Value
}

// Evaluate implements spec.md §4.1's `evaluate(exp, in)`.
func Evaluate(exp ir.Expr, in Getter) Value {
	switch e := exp.(type) {
	case ir.VarExpr:
		return in.Get(e.V)
	case ir.IntLit:
		return ConstVal(e.Value)
	case ir.BinaryExpr:
		return evalBinary(e, in)
	case ir.OpaqueExpr:
		return NACVal
	default:
		panic(&errtax.InternalInvariant{Reason: fmt.Sprintf("evaluate: unexpected expression type %T", exp)})
	}
}

func evalBinary(e ir.BinaryExpr, in Getter) Value {
	a := in.Get(e.L)
	b := in.Get(e.R)

	if (e.Op == ir.Div || e.Op == ir.Rem) && b.IsConst() && b.Int() == 0 {
		return UndefVal
	}
	if a.IsNAC() || b.IsNAC() {
		return NACVal
	}
	if a.IsUndef() || b.IsUndef() {
		return UndefVal
	}
	x, y := a.Int(), b.Int()
	switch e.Op {
	case ir.Add:
		return ConstVal(x + y)
	case ir.Sub:
		return ConstVal(x - y)
	case ir.Mul:
		return ConstVal(x * y)
	case ir.Div:
		return ConstVal(x / y)
	case ir.Rem:
		return ConstVal(x % y)
	case ir.And:
		return ConstVal(x & y)
	case ir.Or:
		return ConstVal(x | y)
	case ir.Xor:
		return ConstVal(x ^ y)
	case ir.Shl:
		return ConstVal(x << (uint32(y) & 0x1f))
	case ir.Shr:
		return ConstVal(x >> (uint32(y) & 0x1f))
	case ir.UShr:
		return ConstVal(int32(uint32(x) >> (uint32(y) & 0x1f)))
	case ir.Eq:
		return ConstVal(boolToInt(x == y))
	case ir.Ne:
		return ConstVal(boolToInt(x != y))
	case ir.Lt:
		return ConstVal(boolToInt(x < y))
	case ir.Gt:
		return ConstVal(boolToInt(x > y))
	case ir.Le:
		return ConstVal(boolToInt(x <= y))
	case ir.Ge:
		return ConstVal(boolToInt(x >= y))
	default:
		panic(&errtax.InternalInvariant{Reason: fmt.Sprintf("evaluate: unexpected binary operator %v", e.Op)})
	}
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
