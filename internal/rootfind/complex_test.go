package rootfind

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

// три кубических корня из 8
var cubeRoots8 = []complex128{
	complex(2, 0),
	complex(-1, math.Sqrt(3)),
	complex(-1, -math.Sqrt(3)),
}

func cubeMinus8C() (CFunc, CFunc) {
	f := func(z complex128) complex128 { return z*z*z - 8 }
	df := func(z complex128) complex128 { return 3 * z * z }
	return f, df
}

func closestRoot(z complex128) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, r := range cubeRoots8 {
		if d := cmplx.Abs(z - r); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func TestFindCComplexCubeRoot(t *testing.T) {
	f, df := cubeMinus8C()

	it, err := FindC(f, df, complex(1, 1), DefaultEps, DefaultMaxIter)
	if err != nil {
		t.Fatalf("FindC: %v", err)
	}
	if !it.Converged {
		t.Fatalf("не сошлось за %d итераций, z=%v", it.K, it.Z)
	}

	_, dist := closestRoot(it.Z)
	if dist > 1e-5 {
		t.Errorf("z = %v не является кубическим корнем из 8", it.Z)
	}
}

func TestFindHistoryC(t *testing.T) {
	f, df := cubeMinus8C()

	hist, err := FindHistoryC([]complex128{complex(1, 1)}, f, df, DefaultEps, DefaultMaxIter)
	if err != nil {
		t.Fatalf("FindHistoryC: %v", err)
	}
	if hist[0] != complex(1, 1) {
		t.Errorf("первый элемент истории %v, ожидалось 1+1i", hist[0])
	}
	it, _ := FindC(f, df, complex(1, 1), DefaultEps, DefaultMaxIter)
	if len(hist) != 1+it.K || hist[len(hist)-1] != it.Z {
		t.Errorf("история (len=%d, last=%v) не согласуется с FindC (K=%d, Z=%v)",
			len(hist), hist[len(hist)-1], it.K, it.Z)
	}
}

func TestNewtonCZeroDerivative(t *testing.T) {
	f := func(z complex128) complex128 { return z*z + 1 }
	df := func(z complex128) complex128 { return 2 * z }

	_, err := FindC(f, df, 0, DefaultEps, DefaultMaxIter)
	if !errors.Is(err, ErrZeroDerivative) {
		t.Fatalf("ожидалась ErrZeroDerivative, получено %v", err)
	}
}

func TestPolyEvalDeriv(t *testing.T) {
	p := Poly{1, 0, 0, -8} // z^3 - 8

	if v := p.Eval(2); v != 0 {
		t.Errorf("p(2) = %v, ожидался 0", v)
	}
	if v := p.Eval(complex(0, 1)); v != complex(-8, -1) {
		t.Errorf("p(i) = %v, ожидалось -8-i", v)
	}

	d := p.Deriv() // 3z^2
	if len(d) != 3 || d[0] != 3 || d[1] != 0 || d[2] != 0 {
		t.Fatalf("p' = %v, ожидалось [3 0 0]", d)
	}
	if v := d.Eval(2); v != 12 {
		t.Errorf("p'(2) = %v, ожидалось 12", v)
	}

	c := Poly{5}
	if d := c.Deriv(); len(d) != 1 || d[0] != 0 {
		t.Errorf("производная константы = %v, ожидался [0]", d)
	}
}

func TestBasinsCubic(t *testing.T) {
	grid := Basins(
		Poly{1, 0, 0, -8},
		Region{ReMin: -3, ReMax: 3, ImMin: -3, ImMax: 3},
		41, DefaultEps, 100,
	)

	if len(grid.Roots) != 3 {
		t.Fatalf("найдено %d корней, ожидалось 3: %v", len(grid.Roots), grid.Roots)
	}
	for _, z := range grid.Roots {
		if _, dist := closestRoot(z); dist > 1e-4 {
			t.Errorf("лишний корень %v", z)
		}
	}

	total, converged := 0, 0
	for i := range grid.Index {
		for j := range grid.Index[i] {
			total++
			if grid.Index[i][j] >= 0 {
				converged++
				if grid.Iters[i][j] < 1 {
					t.Errorf("точка (%d,%d) сошлась за %d итераций", i, j, grid.Iters[i][j])
				}
			}
		}
	}
	// граница бассейнов фрактальна, но подавляющее большинство точек сходится
	if float64(converged) < 0.8*float64(total) {
		t.Errorf("сошлось только %d из %d точек", converged, total)
	}
}
