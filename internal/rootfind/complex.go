package rootfind

import (
	"errors"
	"math"
	"math/cmplx"
)

// CFunc — функция комплексного переменного f(z)
type CFunc func(z complex128) complex128

// CIter — одна итерация метода Ньютона над complex128
type CIter struct {
	K         int
	Z         complex128
	FZ        complex128
	Delta     complex128
	Converged bool
}

// NewtonC — метод Ньютона в комплексной плоскости.
// Критерий остановки тот же: |delta| <= eps либо maxIter шагов.
func NewtonC(
	f, df CFunc,
	z0 complex128,
	eps float64,
	maxIter int,
	onIter func(CIter) error,
) (CIter, error) {
	zn := z0
	last := CIter{Z: z0}

	for k := 1; k <= maxIter; k++ {
		fz := f(zn)
		if fz == 0 {
			last = CIter{K: k - 1, Z: zn, Converged: true}
			return last, nil
		}

		dfz := df(zn)
		if dfz == 0 {
			return last, ErrZeroDerivative
		}

		delta := -fz / dfz
		if cmplx.IsNaN(delta) || cmplx.IsInf(delta) {
			return last, ErrZeroDerivative
		}

		zn += delta
		last = CIter{
			K:         k,
			Z:         zn,
			FZ:        f(zn),
			Delta:     delta,
			Converged: cmplx.Abs(delta) <= eps,
		}

		if onIter != nil {
			if err := onIter(last); err != nil {
				if errors.Is(err, ErrStopped) {
					return last, ErrStopped
				}
				return last, err
			}
		}

		if last.Converged {
			return last, nil
		}
	}

	return last, nil
}

// FindC — скалярная форма над complex128
func FindC(f, df CFunc, z0 complex128, eps float64, maxIter int) (CIter, error) {
	return NewtonC(f, df, z0, eps, maxIter, nil)
}

// FindHistoryC — форма с историей над complex128; семантика как у FindHistory
func FindHistoryC(zs []complex128, f, df CFunc, eps float64, maxIter int) ([]complex128, error) {
	if len(zs) == 0 {
		return zs, errors.New("newton: history must contain the initial estimate")
	}

	_, err := NewtonC(f, df, zs[len(zs)-1], eps, maxIter, func(it CIter) error {
		zs = append(zs, it.Z)
		return nil
	})
	return zs, err
}

// Poly — многочлен с вещественными коэффициентами, от старшего к младшему:
// Poly{1, 0, 0, -8} это z^3 - 8
type Poly []float64

// Eval вычисляет значение многочлена по схеме Горнера
func (p Poly) Eval(z complex128) complex128 {
	var acc complex128
	for _, c := range p {
		acc = acc*z + complex(c, 0)
	}
	return acc
}

// Deriv возвращает производную многочлена
func (p Poly) Deriv() Poly {
	if len(p) <= 1 {
		return Poly{0}
	}
	d := make(Poly, len(p)-1)
	n := len(p) - 1
	for i := 0; i < n; i++ {
		d[i] = p[i] * float64(n-i)
	}
	return d
}

// Region — прямоугольник в комплексной плоскости
type Region struct {
	ReMin, ReMax float64
	ImMin, ImMax float64
}

// BasinGrid — результат расчёта бассейнов Ньютона: к какому корню
// сошлась итерация из каждой точки сетки и за сколько шагов.
// Index[i][j] == -1, если итерация не сошлась.
type BasinGrid struct {
	Roots []complex128
	Index [][]int
	Iters [][]int
}

// Basins запускает метод Ньютона из каждой точки сетки n×n над region
// и группирует предельные точки в корни с точностью rootTol.
func Basins(p Poly, region Region, n int, eps float64, maxIter int) BasinGrid {
	f := p.Eval
	df := p.Deriv().Eval

	grid := BasinGrid{
		Index: make([][]int, n),
		Iters: make([][]int, n),
	}

	// корни различаем грубее, чем сходимся: соседние бассейны
	// не должны склеиваться из-за недоитерированных точек
	rootTol := math.Max(eps*100, 1e-4)

	hr := (region.ReMax - region.ReMin) / float64(n-1)
	hi := (region.ImMax - region.ImMin) / float64(n-1)

	for i := 0; i < n; i++ {
		grid.Index[i] = make([]int, n)
		grid.Iters[i] = make([]int, n)

		for j := 0; j < n; j++ {
			z0 := complex(
				region.ReMin+float64(j)*hr,
				region.ImMin+float64(i)*hi,
			)

			it, err := NewtonC(f, df, z0, eps, maxIter, nil)
			grid.Iters[i][j] = it.K

			if err != nil || !it.Converged {
				grid.Index[i][j] = -1
				continue
			}

			idx := -1
			for r, root := range grid.Roots {
				if cmplx.Abs(it.Z-root) <= rootTol {
					idx = r
					break
				}
			}
			if idx < 0 {
				grid.Roots = append(grid.Roots, it.Z)
				idx = len(grid.Roots) - 1
			}
			grid.Index[i][j] = idx
		}
	}

	return grid
}
