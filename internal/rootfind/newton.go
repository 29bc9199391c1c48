package rootfind

import (
	"errors"
	"math"
)

// значения по умолчанию из условия задачи
const (
	DefaultEps     = 1e-6
	DefaultMaxIter = 40
)

// Iter — одна итерация метода Ньютона
type Iter struct {
	K         int     `json:"k"`
	X         float64 `json:"x"`
	FX        float64 `json:"fx"`
	Delta     float64 `json:"delta"`
	Converged bool    `json:"converged"`
}

// ErrStopped — специальная ошибка для принудительной остановки
var ErrStopped = errors.New("newton: stopped by callback")

// ErrZeroDerivative — производная обратилась в ноль (или шаг не конечен),
// метод не может продолжать
var ErrZeroDerivative = errors.New("newton: derivative is zero at iterate")

// Newton — реализация метода Ньютона (касательных).
// onIter вызывается после каждой итерации; если вернёт ErrStopped — алгоритм прерывается.
// Возвращает последнюю итерацию; Converged выставлен, если |delta| <= eps.
func Newton(
	f, df Func,
	x0, eps float64,
	maxIter int,
	onIter func(Iter) error,
) (Iter, error) {
	xn := x0
	last := Iter{X: x0}

	for k := 1; k <= maxIter; k++ {
		fx, err := f.Eval(xn)
		if err != nil {
			return last, err
		}
		if fx == 0 {
			// уже в корне, новых приближений не будет
			last = Iter{K: k - 1, X: xn, FX: 0, Delta: 0, Converged: true}
			return last, nil
		}

		dfx, err := df.Eval(xn)
		if err != nil {
			return last, err
		}

		delta := -fx / dfx
		if dfx == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
			return last, ErrZeroDerivative
		}

		xn += delta
		fx, err = f.Eval(xn)
		if err != nil {
			return last, err
		}

		last = Iter{
			K:         k,
			X:         xn,
			FX:        fx,
			Delta:     delta,
			Converged: math.Abs(delta) <= eps,
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

// Find — скалярная форма: возвращает последнюю итерацию.
// Несходимость за maxIter шагов ошибкой не считается — смотрите Converged.
func Find(f, df Func, x0, eps float64, maxIter int) (Iter, error) {
	return Newton(f, df, x0, eps, maxIter, nil)
}

// FindHistory — форма с историей: стартует с последнего элемента xs и
// дописывает каждое новое приближение. Работает через append, поэтому
// результат нужно присваивать обратно: xs = FindHistory(xs, ...).
func FindHistory(xs []float64, f, df Func, eps float64, maxIter int) ([]float64, error) {
	if len(xs) == 0 {
		return xs, errors.New("newton: history must contain the initial estimate")
	}

	_, err := Newton(f, df, xs[len(xs)-1], eps, maxIter, func(it Iter) error {
		xs = append(xs, it.X)
		return nil
	})
	return xs, err
}
