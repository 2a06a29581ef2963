// Copyright 2026 The go-sdc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package periodic runs a Task on a fixed interval in its own goroutine.
// The reporting pipeline uses it for periodic report flushing and the
// subscription TTL sweep.
package periodic

import (
	"context"
	"time"

	"github.com/gosdc/sdc/pkg/log"
)

// Ticker abstracts time.Ticker so tests can drive it manually.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type defaultTicker struct{ *time.Ticker }

func (t *defaultTicker) Chan() <-chan time.Time { return t.C }

// NewTicker returns a Ticker backed by time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return &defaultTicker{Ticker: time.NewTicker(d)}
}

// Task is executed once per tick. It should respect ctx's deadline.
type Task interface {
	Run(ctx context.Context)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context)

func (f TaskFunc) Run(ctx context.Context) { f(ctx) }

// Runner runs a Task on every Ticker tick, with an optional manual trigger.
type Runner struct {
	task    Task
	ticker  Ticker
	timeout time.Duration

	stop         chan struct{}
	loopFinished chan struct{}
	trigger      chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
}

// Start creates and starts a Runner executing task on every tick of ticker.
// timeout bounds each invocation's context; if an invocation outruns the
// next tick, the next tick fires immediately once the current run ends.
func Start(task Task, ticker Ticker, timeout time.Duration) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		task:         task,
		ticker:       ticker,
		timeout:      timeout,
		stop:         make(chan struct{}),
		loopFinished: make(chan struct{}),
		trigger:      make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	go func() {
		defer log.HandlePanic()
		r.loop()
	}()
	return r
}

// Stop stops the ticker and waits for any in-flight run to finish.
func (r *Runner) Stop() {
	r.ticker.Stop()
	close(r.stop)
	<-r.loopFinished
}

// Kill is like Stop but also cancels the context of a running invocation.
func (r *Runner) Kill() {
	r.ticker.Stop()
	close(r.stop)
	r.cancel()
	<-r.loopFinished
}

// TriggerRun runs the task now, without altering the ticker's periodicity.
// It blocks until the run has started or the Runner is stopped.
func (r *Runner) TriggerRun() {
	select {
	case <-r.stop:
	case r.trigger <- struct{}{}:
	}
}

func (r *Runner) loop() {
	defer close(r.loopFinished)
	defer r.cancel()
	for {
		select {
		case <-r.stop:
			return
		case <-r.ticker.Chan():
			r.runOnce()
		case <-r.trigger:
			r.runOnce()
		}
	}
}

func (r *Runner) runOnce() {
	ctx := r.ctx
	cancel := func() {}
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(r.ctx, r.timeout)
	}
	defer cancel()
	r.task.Run(ctx)
}
