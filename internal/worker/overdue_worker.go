package worker

import (
	"context"
	"sync"
	"time"

	"cosmonotes/internal/logger"
	"cosmonotes/internal/service"

	"go.uber.org/zap"
)

type Sweeper interface {
	UpdateOverdueStatus(ctx context.Context) (*service.SweepResult, error)
}

// OverdueWorker runs the overdue sweep on a ticker it owns. Start and Stop
// are idempotent; Stop waits for the loop to exit, and a sweep already
// dispatched runs to completion.
type OverdueWorker struct {
	sweeper  Sweeper
	interval time.Duration

	mtx  sync.Mutex
	stop chan struct{}
	done chan struct{}
}

const defaultInterval = 60 * time.Minute

func NewOverdueWorker(sweeper Sweeper, interval time.Duration) *OverdueWorker {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &OverdueWorker{
		sweeper:  sweeper,
		interval: interval,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.stop != nil {
		logger.Info("Worker: scheduled sweep already running")
		return
	}

	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.run(ctx, w.stop, w.done)

	logger.Info("Worker: scheduled sweep started", zap.Duration("interval", w.interval))
}

func (w *OverdueWorker) Stop() {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.stop == nil {
		logger.Info("Worker: scheduled sweep not running")
		return
	}

	close(w.stop)
	<-w.done
	w.stop, w.done = nil, nil

	logger.Info("Worker: scheduled sweep stopped")
}

func (w *OverdueWorker) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: running scheduled sweep", zap.Time("started_at", time.Now()))
			if _, err := w.sweeper.UpdateOverdueStatus(ctx); err != nil {
				logger.Warn("Worker: scheduled sweep failed", zap.Error(err))
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}
