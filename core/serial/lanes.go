package serial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/m3rciful/shopbot/core/logger"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("serial: lanes closed")

// Task is a unit of work queued on a lane.
type Task func(ctx context.Context)

type lane struct {
	queue []Task
}

// Lanes runs tasks in FIFO order per key. Each key with pending work owns one
// goroutine that exits as soon as its queue drains, so idle keys cost nothing.
type Lanes struct {
	ctx context.Context

	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool
	wg     sync.WaitGroup
}

// NewLanes returns Lanes whose tasks receive ctx.
func NewLanes(ctx context.Context) *Lanes {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Lanes{ctx: ctx, lanes: make(map[int64]*lane)}
}

// Submit queues task behind any pending work for key. It never blocks on task execution.
func (l *Lanes) Submit(key int64, task Task) error {
	if task == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if ln, ok := l.lanes[key]; ok {
		ln.queue = append(ln.queue, task)
		return nil
	}
	ln := &lane{queue: []Task{task}}
	l.lanes[key] = ln
	l.wg.Add(1)
	go l.drain(key, ln)
	return nil
}

// Active reports how many keys currently have a running lane.
func (l *Lanes) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}

// Close rejects new work and waits for queued tasks to finish.
func (l *Lanes) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Lanes) drain(key int64, ln *lane) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		if len(ln.queue) == 0 {
			delete(l.lanes, key)
			l.mu.Unlock()
			return
		}
		task := ln.queue[0]
		ln.queue[0] = nil
		ln.queue = ln.queue[1:]
		l.mu.Unlock()

		l.run(key, task)
	}
}

func (l *Lanes) run(key int64, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("panic recovered",
				slog.String("component", "serial"),
				slog.String("event", "lane.panic"),
				slog.Int64("user_id", key),
				slog.String("err", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	task(l.ctx)
}
