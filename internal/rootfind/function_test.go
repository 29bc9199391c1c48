package rootfind

import (
	"math"
	"testing"
)

func TestNewEvalFunc(t *testing.T) {
	f, err := NewEvalFunc("x*x*x - 8")
	if err != nil {
		t.Fatalf("NewEvalFunc: %v", err)
	}

	if v, err := f.Eval(2); err != nil || v != 0 {
		t.Errorf("f(2) = %v, %v; ожидался 0", v, err)
	}
	if v, _ := f.Eval(1.2); math.Abs(v-(1.2*1.2*1.2-8)) > 1e-12 {
		t.Errorf("f(1.2) = %v", v)
	}
}

func TestNewEvalFuncBuiltins(t *testing.T) {
	cases := []struct {
		expr string
		x    float64
		want float64
	}{
		{"sin(x)", 0, 0},
		{"cos(x)", 0, 1},
		{"exp(x)", 0, 1},
		{"sqrt(x)", 4, 2},
		{"abs(x)", -3, 3},
		{"pow(x, 2)", 3, 9},
	}

	for _, c := range cases {
		f, err := NewEvalFunc(c.expr)
		if err != nil {
			t.Errorf("%s: %v", c.expr, err)
			continue
		}
		v, err := f.Eval(c.x)
		if err != nil || math.Abs(v-c.want) > 1e-12 {
			t.Errorf("%s(%v) = %v, %v; ожидалось %v", c.expr, c.x, v, err, c.want)
		}
	}
}

func TestNewEvalFuncCommaDecimal(t *testing.T) {
	f, err := NewEvalFunc("x - 0,5")
	if err != nil {
		t.Fatalf("NewEvalFunc: %v", err)
	}
	if v, _ := f.Eval(0.5); v != 0 {
		t.Errorf("запятая в десятичной записи не нормализована: %v", v)
	}
}

func TestNewEvalFuncBadExpr(t *testing.T) {
	if _, err := NewEvalFunc("x + "); err == nil {
		t.Fatal("ожидалась ошибка разбора")
	}
}

func TestNumDeriv(t *testing.T) {
	df := NumDeriv(FuncOf(math.Sin))

	v, err := df.Eval(0)
	if err != nil {
		t.Fatalf("NumDeriv: %v", err)
	}
	if math.Abs(v-1) > 1e-3 {
		t.Errorf("(sin)'(0) = %v, ожидалось ~1", v)
	}
}

func TestFindWithEvalFunc(t *testing.T) {
	f, err := NewEvalFunc("x*x - 2")
	if err != nil {
		t.Fatalf("NewEvalFunc: %v", err)
	}
	df, err := NewEvalFunc("2*x")
	if err != nil {
		t.Fatalf("NewEvalFunc: %v", err)
	}

	it, err := Find(f, df, 1.0, DefaultEps, DefaultMaxIter)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !it.Converged || math.Abs(it.X-math.Sqrt2) > DefaultEps {
		t.Errorf("x = %v, ожидалось sqrt(2)", it.X)
	}
}

func TestFindWithNumDeriv(t *testing.T) {
	f := FuncOf(func(x float64) float64 { return x*x*x - 8 })

	it, err := Find(f, NumDeriv(f), 1.2, DefaultEps, DefaultMaxIter)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !it.Converged || math.Abs(it.X-2) > 1e-5 {
		t.Errorf("x = %v, ожидалось 2", it.X)
	}
}
