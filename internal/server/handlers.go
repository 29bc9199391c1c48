package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"idz2_newton/internal/rootfind"
	"idz2_newton/internal/sse"

	"github.com/google/uuid"
)

// StartRun запускает новый поиск корня методом Ньютона
func StartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}

	var p RunParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if p.MaxIter <= 0 {
		p.MaxIter = rootfind.DefaultMaxIter
	}
	if p.Eps <= 0 {
		p.Eps = rootfind.DefaultEps
	}
	if !(p.A < p.B) {
		// окно графика по умолчанию вокруг стартовой точки
		p.A = p.X0 - 10
		p.B = p.X0 + 10
	}

	f, err := rootfind.NewEvalFunc(p.Func)
	if err != nil {
		http.Error(w, "ошибка в выражении функции: "+err.Error(), http.StatusBadRequest)
		return
	}

	var df rootfind.Func
	if p.DFunc != "" {
		df, err = rootfind.NewEvalFunc(p.DFunc)
		if err != nil {
			http.Error(w, "ошибка в выражении производной: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		df = rootfind.NumDeriv(f)
	}

	// предварительно считаем значения функции для графика;
	// там, где f не определена, кладём nil — NaN в JSON не кодируется
	const n = 400
	xs := make([]float64, n)
	ys := make([]*float64, n)
	h := (p.B - p.A) / float64(n-1)
	for i := 0; i < n; i++ {
		x := p.A + float64(i)*h
		xs[i] = x
		y, err := f.Eval(x)
		if err == nil && !math.IsNaN(y) && !math.IsInf(y, 0) {
			ys[i] = &y
		}
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	rs := &RunState{
		ID:        id,
		Params:    p,
		CreatedAt: time.Now(),
		Cancel:    cancel,
	}
	saveRun(rs)

	slog.Info("запуск метода Ньютона",
		"id", id, "func", p.Func, "x0", p.X0, "eps", p.Eps, "maxIter", p.MaxIter)

	// асинхронный запуск итераций
	go func() {
		defer sse.Close(id)
		defer rs.scheduleEvict()

		startMsg, _ := json.Marshal(map[string]any{
			"type": "start",
			"id":   id,
			"x0":   p.X0,
		})
		sse.Publish(id, string(startMsg))

		onIter := func(it rootfind.Iter) error {
			select {
			case <-ctx.Done():
				return rootfind.ErrStopped
			default:
			}

			rs.appendIter(it)

			msg, _ := json.Marshal(map[string]any{
				"type": "iter",
				"iter": it,
			})
			sse.Publish(id, string(msg))
			return nil
		}

		last, err := rootfind.Newton(f, df, p.X0, p.Eps, p.MaxIter, onIter)

		if err != nil {
			if err == rootfind.ErrStopped || err == context.Canceled {
				stopMsg, _ := json.Marshal(map[string]any{
					"type": "stopped",
				})
				sse.Publish(id, string(stopMsg))
				slog.Info("запуск остановлен", "id", id, "k", last.K)
				return
			}

			msg := "ошибка при вычислении: " + err.Error()
			rs.fail(msg)
			errMsg, _ := json.Marshal(map[string]any{
				"type": "error",
				"err":  msg,
			})
			sse.Publish(id, string(errMsg))
			slog.Error("метод прерван", "id", id, "err", err, "k", last.K)
			return
		}

		rs.finish(last)

		doneMsg, _ := json.Marshal(map[string]any{
			"type":      "done",
			"x":         last.X,
			"fx":        last.FX,
			"k":         last.K,
			"converged": last.Converged,
		})
		sse.Publish(id, string(doneMsg))
		slog.Info("метод завершён",
			"id", id, "x", last.X, "k", last.K, "converged", last.Converged)
	}()

	resp := map[string]any{
		"id": id,
		"xs": xs,
		"ys": ys,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("ошибка кодирования ответа /start", "id", id, "err", err)
	}
}

// StopRun — прерывание поиска
func StopRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	rs := getRun(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	if rs.Cancel != nil {
		rs.Cancel()
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV — экспорт истории приближений в CSV
func ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	rs := getRun(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	_, iters, _, _ := rs.snapshot()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=iterations_"+id+".csv")

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"k", "x", "f(x)", "delta"})

	for _, it := range iters {
		_ = cw.Write([]string{
			strconv.Itoa(it.K),
			fmtFloat(it.X),
			fmtFloat(it.FX),
			fmtFloat(it.Delta),
		})
	}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

// Stream — SSE-стрим итераций
func Stream(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := sse.Subscribe(id)
	defer cancel()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				// хаб закрыл канал — запуск завершён
				return
			}
			fmt.Fprintf(w, "event: msg\n")
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// параметры расчёта бассейнов Ньютона
type FractalParams struct {
	Coeffs  []float64 `json:"coeffs"` // от старшего к младшему
	ReMin   float64   `json:"reMin"`
	ReMax   float64   `json:"reMax"`
	ImMin   float64   `json:"imMin"`
	ImMax   float64   `json:"imMax"`
	N       int       `json:"n"`
	Eps     float64   `json:"eps"`
	MaxIter int       `json:"maxIter"`
}

// Fractal — расчёт бассейнов Ньютона для многочлена в комплексной плоскости.
// Отдаёт сетку: индекс корня и число итераций для каждой точки.
func Fractal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}

	var p FractalParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if len(p.Coeffs) < 2 {
		http.Error(w, "нужен многочлен хотя бы первой степени", http.StatusBadRequest)
		return
	}
	if !(p.ReMin < p.ReMax) || !(p.ImMin < p.ImMax) {
		http.Error(w, "требуется reMin < reMax и imMin < imMax", http.StatusBadRequest)
		return
	}
	if p.N < 2 {
		p.N = 200
	}
	if p.N > 1000 {
		p.N = 1000
	}
	if p.Eps <= 0 {
		p.Eps = rootfind.DefaultEps
	}
	if p.MaxIter <= 0 {
		p.MaxIter = rootfind.DefaultMaxIter
	}

	started := time.Now()
	grid := rootfind.Basins(
		rootfind.Poly(p.Coeffs),
		rootfind.Region{ReMin: p.ReMin, ReMax: p.ReMax, ImMin: p.ImMin, ImMax: p.ImMax},
		p.N, p.Eps, p.MaxIter,
	)

	roots := make([][2]float64, len(grid.Roots))
	for i, z := range grid.Roots {
		roots[i] = [2]float64{real(z), imag(z)}
	}

	slog.Info("бассейны посчитаны",
		"n", p.N, "roots", len(roots), "elapsed", time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"roots": roots,
		"index": grid.Index,
		"iters": grid.Iters,
	})
}
