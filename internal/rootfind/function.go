package rootfind

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/Knetic/govaluate"
)

// Func — интерфейс для абстрактной функции f(x)
type Func interface {
	Eval(x float64) (float64, error)
}

// FuncOf оборачивает обычную go-функцию в Func
type FuncOf func(x float64) float64

func (fn FuncOf) Eval(x float64) (float64, error) { return fn(x), nil }

// evalFunc — реализация Func на основе govaluate
type evalFunc struct {
	expr   *govaluate.EvaluableExpression
	params map[string]interface{}
}

var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sin":  wrap1(math.Sin),
	"cos":  wrap1(math.Cos),
	"tan":  wrap1(math.Tan),
	"exp":  wrap1(math.Exp),
	"log":  wrap1(math.Log),
	"sqrt": wrap1(math.Sqrt),
	"abs":  wrap1(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow: нужно два аргумента, получено %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func wrap1(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("нужен один аргумент, получено %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

// запятая в десятичной записи: только между цифрами, чтобы не трогать
// аргументы pow(x, 2)
var decimalComma = regexp.MustCompile(`(\d),(\d)`)

// NewEvalFunc создаёт вычислимую функцию по строке f(x)
func NewEvalFunc(expr string) (Func, error) {
	expr = decimalComma.ReplaceAllString(expr, "$1.$2")

	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(expr, exprFuncs)
	if err != nil {
		return nil, err
	}

	return &evalFunc{
		expr:   parsed,
		params: map[string]interface{}{"x": 0.0},
	}, nil
}

func (f *evalFunc) Eval(x float64) (float64, error) {
	f.params["x"] = x
	v, err := f.expr.Evaluate(f.params)
	if err != nil {
		return math.NaN(), err
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), err
		}
		return parsed, nil
	default:
		return math.NaN(), fmt.Errorf("выражение не вернуло число: %T", v)
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return math.NaN()
	}
}

// NumDeriv — численная производная по центральной разности,
// запасной вариант, когда аналитическая f'(x) не задана
func NumDeriv(f Func) Func {
	return FuncOf(func(x float64) float64 {
		h := 1e-6 * math.Max(1, math.Abs(x))
		hi, err1 := f.Eval(x + h)
		lo, err2 := f.Eval(x - h)
		if err1 != nil || err2 != nil {
			return math.NaN()
		}
		return (hi - lo) / (2 * h)
	})
}
