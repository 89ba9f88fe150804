package progress

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	// startPercent стартовое значение: загрузка началась
	startPercent = 5

	// capPercent эстиматор сам никогда не поднимается выше 95;
	// ровно 100 выставляет только Finalize оркестратора
	capPercent = 95

	minStep = 3
	maxStep = 9
)

// Estimator ограниченный конкурентный эстиматор прогресса сканирования.
// Бэкенд реального прогресса не сообщает, поэтому оценка синтетическая:
// монотонно растет случайными шагами, пока идет сетевой запрос.
// Одновременно работает не больше одного эстиматора: новый Begin
// вытесняет предыдущее поколение.
type Estimator struct {
	tick    time.Duration
	timeout time.Duration
	publish func(int)

	mu    sync.Mutex
	gen   uint64
	value int
}

// NewEstimator создает эстиматор. publish вызывается на каждое изменение значения.
func NewEstimator(tick, timeout time.Duration, publish func(int)) *Estimator {
	if tick <= 0 {
		tick = 400 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if publish == nil {
		publish = func(int) {}
	}
	return &Estimator{tick: tick, timeout: timeout, publish: publish}
}

// Begin сбрасывает прогресс к стартовому значению и открывает новое поколение.
// Предыдущий Run после этого молча завершается.
func (e *Estimator) Begin() uint64 {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.value = startPercent
	e.mu.Unlock()

	e.publish(startPercent)
	return gen
}

// Run крутит тикер, пока не упрется в потолок, таймаут, отмену контекста
// или вытеснение новым сканированием. Запрос при этом не отменяется:
// эстиматор и сетевой вызов - независимые конкурентные операции.
func (e *Estimator) Run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			if !e.advance(gen) {
				return
			}
		}
	}
}

// advance делает один шаг; false когда двигаться дальше нельзя
func (e *Estimator) advance(gen uint64) bool {
	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return false
	}
	if e.value >= capPercent {
		e.mu.Unlock()
		return false
	}

	next := e.value + minStep + rand.Intn(maxStep-minStep+1)
	if next > capPercent {
		next = capPercent
	}
	e.value = next
	e.mu.Unlock()

	e.publish(next)
	return true
}

// Finalize принудительно выставляет ровно 100 для текущего поколения.
// Для вытесненного поколения - no-op: устаревший скан не должен
// трогать прогресс нового.
func (e *Estimator) Finalize(gen uint64) {
	e.mu.Lock()
	if e.gen != gen || e.value == 100 {
		e.mu.Unlock()
		return
	}
	e.value = 100
	e.mu.Unlock()

	e.publish(100)
}

// Value текущее значение прогресса
func (e *Estimator) Value() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}
