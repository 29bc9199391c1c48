package server

import (
	"context"
	"sync"
	"time"

	"idz2_newton/internal/rootfind"
)

// параметры запуска метода
type RunParams struct {
	Func    string  `json:"func"`
	DFunc   string  `json:"dfunc"` // пусто — берём численную производную
	X0      float64 `json:"x0"`
	A       float64 `json:"a"` // окно графика
	B       float64 `json:"b"`
	Eps     float64 `json:"eps"`
	MaxIter int     `json:"maxIter"`
}

// состояние одного запуска
type RunState struct {
	ID        string
	Params    RunParams
	CreatedAt time.Time

	LastIter rootfind.Iter
	Iters    []rootfind.Iter

	Err    string
	Done   bool
	Cancel context.CancelFunc
}

var (
	runsMu sync.Mutex
	runs   = map[string]*RunState{}
)

func saveRun(rs *RunState) {
	runsMu.Lock()
	defer runsMu.Unlock()
	runs[rs.ID] = rs
}

func getRun(id string) *RunState {
	runsMu.Lock()
	defer runsMu.Unlock()
	return runs[id]
}

// завершённый запуск держим ещё какое-то время для export, потом убираем;
// читается и переопределяется (в тестах) под runsMu
var keepFinished = 10 * time.Minute

// scheduleEvict планирует удаление запуска из реестра; вызывается
// по любому завершению горутины запуска (done, stopped, error)
func (rs *RunState) scheduleEvict() {
	runsMu.Lock()
	ttl := keepFinished
	runsMu.Unlock()

	time.AfterFunc(ttl, func() {
		runsMu.Lock()
		defer runsMu.Unlock()
		delete(runs, rs.ID)
	})
}

// мутации состояния идут под общим мьютексом: итерации пишет горутина
// запуска, а читают их export и stop

func (rs *RunState) appendIter(it rootfind.Iter) {
	runsMu.Lock()
	defer runsMu.Unlock()
	rs.LastIter = it
	rs.Iters = append(rs.Iters, it)
}

func (rs *RunState) finish(last rootfind.Iter) {
	runsMu.Lock()
	defer runsMu.Unlock()
	rs.Done = true
	rs.LastIter = last
}

func (rs *RunState) fail(msg string) {
	runsMu.Lock()
	defer runsMu.Unlock()
	rs.Err = msg
}

// snapshot возвращает согласованную копию для чтения вне горутины запуска
func (rs *RunState) snapshot() (last rootfind.Iter, iters []rootfind.Iter, done bool, errMsg string) {
	runsMu.Lock()
	defer runsMu.Unlock()
	iters = append([]rootfind.Iter(nil), rs.Iters...)
	return rs.LastIter, iters, rs.Done, rs.Err
}
