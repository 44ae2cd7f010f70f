package lattice

import (
	"testing"

	"github.com/nju-sa/corestatic/ir"
)

type fakeVar struct {
	name string
	idx  int
}

func (v *fakeVar) Name() string  { return v.name }
func (v *fakeVar) Type() ir.Type { return intType{} }
func (v *fakeVar) Index() int    { return v.idx }

type intType struct{}

func (intType) Kind() ir.Kind  { return ir.Int }
func (intType) String() string { return "int" }

type fixedGetter map[ir.Var]Value

func (g fixedGetter) Get(v ir.Var) Value {
	if val, ok := g[v]; ok {
		return val
	}
	return UndefVal
}

func TestEvaluateArithmetic(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	in := fixedGetter{a: ConstVal(3), b: ConstVal(4)}

	got := Evaluate(ir.BinaryExpr{Op: ir.Add, L: a, R: b}, in)
	if want := ConstVal(7); !got.Equal(want) {
		t.Errorf("3+4 = %v, want %v", got, want)
	}
}

func TestEvaluateDivByZeroSentinel(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	in := fixedGetter{a: NACVal, b: ConstVal(0)}

	for _, op := range []ir.BinOp{ir.Div, ir.Rem} {
		got := Evaluate(ir.BinaryExpr{Op: op, L: a, R: b}, in)
		if !got.IsUndef() {
			t.Errorf("op %v with NAC/0 = %v, want UNDEF", op, got)
		}
	}
}

func TestEvaluateNACPropagates(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	in := fixedGetter{a: NACVal, b: ConstVal(1)}
	got := Evaluate(ir.BinaryExpr{Op: ir.Add, L: a, R: b}, in)
	if !got.IsNAC() {
		t.Errorf("NAC+1 = %v, want NAC", got)
	}
}

func TestEvaluateUndefPropagates(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	in := fixedGetter{b: ConstVal(1)}
	got := Evaluate(ir.BinaryExpr{Op: ir.Add, L: a, R: b}, in)
	if !got.IsUndef() {
		t.Errorf("UNDEF+1 = %v, want UNDEF", got)
	}
}

func TestEvaluateShiftsMaskAndSignedness(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	in := fixedGetter{a: ConstVal(-8), b: ConstVal(1)}

	gotArith := Evaluate(ir.BinaryExpr{Op: ir.Shr, L: a, R: b}, in)
	if want := ConstVal(-4); !gotArith.Equal(want) {
		t.Errorf("-8 >> 1 (arith) = %v, want %v", gotArith, want)
	}

	gotLogical := Evaluate(ir.BinaryExpr{Op: ir.UShr, L: a, R: b}, in)
	var negEight int32 = -8
	if want := ConstVal(int32(uint32(negEight) >> 1)); !gotLogical.Equal(want) {
		t.Errorf("-8 >>> 1 (logical) = %v, want %v", gotLogical, want)
	}

	bigShift := fixedGetter{a: ConstVal(1), b: ConstVal(33)}
	got := Evaluate(ir.BinaryExpr{Op: ir.Shl, L: a, R: b}, bigShift)
	if want := ConstVal(2); !got.Equal(want) { // 33 & 0x1f == 1
		t.Errorf("1 << 33 (masked) = %v, want %v", got, want)
	}
}

func TestEvaluateComparison(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	in := fixedGetter{a: ConstVal(3), b: ConstVal(4)}
	if got := Evaluate(ir.BinaryExpr{Op: ir.Lt, L: a, R: b}, in); !got.Equal(ConstVal(1)) {
		t.Errorf("3<4 = %v, want 1", got)
	}
	if got := Evaluate(ir.BinaryExpr{Op: ir.Eq, L: a, R: b}, in); !got.Equal(ConstVal(0)) {
		t.Errorf("3==4 = %v, want 0", got)
	}
}

func TestEvaluateMonotone(t *testing.T) {
	a, b := &fakeVar{"a", 0}, &fakeVar{"b", 1}
	bottom := fixedGetter{}
	top := fixedGetter{a: NACVal, b: NACVal}

	got := Evaluate(ir.BinaryExpr{Op: ir.Add, L: a, R: b}, bottom)
	if !got.IsUndef() {
		t.Fatalf("bottom input should evaluate to UNDEF, got %v", got)
	}
	gotTop := Evaluate(ir.BinaryExpr{Op: ir.Add, L: a, R: b}, top)
	if !gotTop.IsNAC() {
		t.Fatalf("top input should evaluate to NAC, got %v", gotTop)
	}
}
