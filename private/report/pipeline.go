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

package report

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/pkg/metrics"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/periodic"
)

// maxConcurrentDeliveries bounds how many subscriptions may have an
// in-flight Sender.Send call at once. Each senderLoop still runs on its own
// goroutine (delivery stays serialized per subscription, per spec.md §5),
// but a fleet of subscriptions no longer opens unbounded concurrent HTTP
// POSTs against consumer endpoints.
const maxConcurrentDeliveries = 16

// actionFor maps a transaction report's changes to the report action they
// belong to (spec.md §4.F). DescriptorModification always maps to
// DescriptionModificationReport regardless of the entity kinds touched,
// since a structural change is reported as one unit.
func actionFor(kind mdib.TransactionKind, entityKind mdib.Kind) Action {
	if kind == mdib.TxDescriptorModification {
		return ActionDescriptionModificationReport
	}
	switch {
	case entityKind.IsAlert():
		return ActionEpisodicAlertReport
	case entityKind.IsContext():
		return ActionEpisodicContextReport
	case entityKind.IsOperation():
		return ActionEpisodicOperationalStateReport
	case entityKind == mdib.KindRealTimeSampleArrayMetric || entityKind == mdib.KindDistributionSampleArrayMetric:
		return ActionWaveformStream
	case entityKind.IsMetric():
		return ActionEpisodicMetricReport
	default:
		return ActionEpisodicComponentReport
	}
}

// periodicCounterpart maps an episodic action to its periodic twin, for
// subscriptions configured to receive the periodic variant instead (spec.md
// §4.F; SPEC_FULL.md §12 resolves the periodic/episodic coalescing open
// question as "periodic is a separate, non-suppressing stream").
var periodicCounterpart = map[Action]Action{
	ActionEpisodicMetricReport:           ActionPeriodicMetricReport,
	ActionEpisodicAlertReport:            ActionPeriodicAlertReport,
	ActionEpisodicComponentReport:        ActionPeriodicComponentReport,
	ActionEpisodicContextReport:          ActionPeriodicContextReport,
	ActionEpisodicOperationalStateReport: ActionPeriodicOperationalStateReport,
}

// Pipeline fans committed MDIB transactions out to subscriptions as ordered
// report items, and drives each subscription's delivery task (spec.md
// §4.F).
type Pipeline struct {
	sender                 Sender
	maxConsecutiveFailures int
	reportMetrics          *metrics.Report

	mu   sync.RWMutex
	subs map[string]*Subscription

	periodicTicker *periodic.Runner
	deliverySem    *semaphore.Weighted
}

// NewPipeline builds a Pipeline. interval is the periodic-report flush
// period (spec.md §6 periodic_report_interval); maxConsecutiveFailures
// bounds how many delivery failures in a row terminate a subscription.
func NewPipeline(sender Sender, interval time.Duration, maxConsecutiveFailures int, m *metrics.Report) *Pipeline {
	p := &Pipeline{
		sender:                 sender,
		maxConsecutiveFailures: maxConsecutiveFailures,
		reportMetrics:          m,
		subs:                   map[string]*Subscription{},
		deliverySem:            semaphore.NewWeighted(maxConcurrentDeliveries),
	}
	p.periodicTicker = periodic.Start(
		periodic.TaskFunc(func(ctx context.Context) {
			p.flushPeriodic()
			p.sweepExpired()
		}),
		periodic.NewTicker(interval),
		interval,
	)
	return p
}

// Subscribe registers a new subscription and starts its sender task.
func (p *Pipeline) Subscribe(ctx context.Context, sub *Subscription) {
	p.mu.Lock()
	p.subs[sub.ID] = sub
	p.mu.Unlock()
	if p.reportMetrics != nil {
		p.reportMetrics.SubsActive.Add(1)
	}
	go p.senderLoop(ctx, sub)
}

// Unsubscribe terminates and forgets a subscription.
func (p *Pipeline) Unsubscribe(id string) {
	p.mu.Lock()
	sub, ok := p.subs[id]
	delete(p.subs, id)
	p.mu.Unlock()
	if ok {
		sub.Unsubscribe()
	}
}

// Lookup returns a subscription by id for Renew/GetStatus handlers.
func (p *Pipeline) Lookup(id string) (*Subscription, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sub, ok := p.subs[id]
	return sub, ok
}

// Run consumes committed transaction reports from the store in order until
// reportCh closes or ctx is done. It must run on a single goroutine: the
// ordering guarantee (spec.md §8 "Subscription ordering") depends on
// reports being decomposed and enqueued in the order they were committed.
func (p *Pipeline) Run(ctx context.Context, reportCh <-chan *mdib.TransactionReport) {
	for {
		select {
		case <-ctx.Done():
			return
		case tr, ok := <-reportCh:
			if !ok {
				return
			}
			p.dispatch(tr)
		}
	}
}

func (p *Pipeline) dispatch(tr *mdib.TransactionReport) {
	byAction := map[Action][]mdib.EntityChange{}
	for _, c := range tr.Changes {
		kind := mdib.KindMDS // placeholder overwritten below when known
		if c.DescriptorAfter != nil {
			kind = c.DescriptorAfter.Kind
		} else if c.DescriptorBefore != nil {
			kind = c.DescriptorBefore.Kind
		} else if c.StateAfter != nil {
			kind = c.StateAfter.Kind
		} else if c.StateBefore != nil {
			kind = c.StateBefore.Kind
		}
		action := actionFor(tr.Kind, kind)
		byAction[action] = append(byAction[action], c)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for action, changes := range byAction {
		for _, sub := range p.subs {
			target := action
			if sub.modeFor(action) == Periodic {
				if a, ok := periodicCounterpart[action]; ok {
					target = a
				}
			}
			if !sub.accepts(action) && !sub.accepts(target) {
				continue
			}
			item := Item{
				Action:      target,
				MdibVersion: tr.MdibVersion,
				SequenceID:  tr.SequenceID,
				TxKind:      tr.Kind,
				Payload:     changes,
			}
			sub.enqueue(item)
			if p.reportMetrics != nil {
				p.reportMetrics.QueueDepth.With("subscription", sub.ID).Set(float64(len(sub.queue)))
			}
		}
	}
}

func (p *Pipeline) flushPeriodic() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		sub.flushPeriodic()
	}
}

// sweepExpired terminates every subscription whose TTL has passed. It runs
// on the same periodic tick as flushPeriodic: TTL expiry (spec.md §4.F) has
// no other driver in the system, so without this sweep ReasonExpired is
// never reached.
func (p *Pipeline) sweepExpired() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		if sub.Expire() && p.reportMetrics != nil {
			p.reportMetrics.SubsActive.Add(-1)
		}
	}
}

// Publish delivers item directly to every subscription whose filter accepts
// its action, bypassing the per-transaction decomposition dispatch does.
// OperationInvokedReport transitions aren't sourced from a committed MDIB
// transaction, so they reach subscribers this way instead (spec.md §4.G).
func (p *Pipeline) Publish(item Item) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		if !sub.accepts(item.Action) {
			continue
		}
		sub.enqueue(item)
		if p.reportMetrics != nil {
			p.reportMetrics.QueueDepth.With("subscription", sub.ID).Set(float64(len(sub.queue)))
		}
	}
}

// senderLoop pulls items FIFO from one subscription's queue and posts them,
// serialized within the subscription but running concurrently across
// subscriptions (spec.md §5).
func (p *Pipeline) senderLoop(ctx context.Context, sub *Subscription) {
	defer log.HandlePanic()
	logger := log.FromCtx(ctx).With(zap.String("subscription", sub.ID))
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.trigger:
		}
		if done, reason := sub.Terminated(); done {
			logger.Info("subscription terminated", zap.String("reason", string(reason)))
			if p.reportMetrics != nil {
				p.reportMetrics.SubsActive.Add(-1)
			}
			return
		}
		items := sub.drain()
		if len(items) == 0 {
			continue
		}
		if err := p.deliverySem.Acquire(ctx, 1); err != nil {
			return
		}
		err := p.sender.Send(ctx, sub, items)
		p.deliverySem.Release(1)
		if err != nil {
			logger.Warn("delivery failed", zap.Error(err))
			sub.recordFailure(p.maxConsecutiveFailures)
			if p.reportMetrics != nil {
				p.reportMetrics.SubsUnhealthy.Add(1)
			}
			continue
		}
		sub.recordSuccess()
		if p.reportMetrics != nil {
			p.reportMetrics.Sent.With("action", string(items[0].Action)).Add(float64(len(items)))
		}
	}
}

// Close stops the periodic flush ticker.
func (p *Pipeline) Close() {
	p.periodicTicker.Kill()
}
