// Package scheduler wraps timers behind cancellable task handles so
// owners can tear everything down deterministically on shutdown or
// patient switch.
package scheduler

import (
	"sync"
	"time"
)

// Task is a cancellable scheduled unit of work.
type Task struct {
	once sync.Once
	stop func()
}

// Stop cancels the task. Safe to call more than once; a task whose
// function already ran is stopped trivially.
func (t *Task) Stop() {
	t.once.Do(t.stop)
}

// After runs fn once after d.
func After(d time.Duration, fn func()) *Task {
	timer := time.AfterFunc(d, fn)
	return &Task{stop: func() { timer.Stop() }}
}

// Every runs fn on a fixed interval until the task is stopped.
func Every(d time.Duration, fn func()) *Task {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				ticker.Stop()
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return &Task{stop: func() { close(done) }}
}
