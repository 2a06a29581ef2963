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

// Package report implements the reporting/subscription pipeline: it turns
// committed MDIB transactions into ordered, per-subscription report items
// and drives their delivery (spec.md §4.F).
package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosdc/sdc/pkg/private/serrors"
	"github.com/gosdc/sdc/private/mdib"
)

// Action is the closed set of report actions a subscription may filter on
// (spec.md §4.F).
type Action string

const (
	ActionEpisodicMetricReport         Action = "EpisodicMetricReport"
	ActionPeriodicMetricReport         Action = "PeriodicMetricReport"
	ActionEpisodicAlertReport          Action = "EpisodicAlertReport"
	ActionPeriodicAlertReport          Action = "PeriodicAlertReport"
	ActionEpisodicComponentReport      Action = "EpisodicComponentReport"
	ActionPeriodicComponentReport      Action = "PeriodicComponentReport"
	ActionEpisodicContextReport        Action = "EpisodicContextReport"
	ActionPeriodicContextReport        Action = "PeriodicContextReport"
	ActionEpisodicOperationalStateReport Action = "EpisodicOperationalStateReport"
	ActionPeriodicOperationalStateReport  Action = "PeriodicOperationalStateReport"
	ActionDescriptionModificationReport Action = "DescriptionModificationReport"
	ActionWaveformStream                Action = "WaveformStream"
	ActionSystemError                   Action = "SystemError"
	ActionOperationInvokedReport        Action = "OperationInvokedReport"
)

// TerminationReason is the closed set of reasons a subscription ends
// (spec.md §4.F).
type TerminationReason string

const (
	ReasonDeliveryFailure    TerminationReason = "DeliveryFailure"
	ReasonExpired            TerminationReason = "Expired"
	ReasonSourceShuttingDown TerminationReason = "SourceShuttingDown"
	ReasonSourceCancelling   TerminationReason = "SourceCancelling"
	ReasonFilterNotSupported TerminationReason = "FilterNotSupported"
	ReasonOverflow           TerminationReason = "Overflow"
)

// ErrSubscription is the sentinel every subscription-lifecycle error wraps.
var ErrSubscription = serrors.New("subscription error")

// Item is one unit of report delivery: a single action's payload tagged
// with the MDIB version that produced it.
type Item struct {
	Action      Action
	MdibVersion uint64
	SequenceID  string
	TxKind      mdib.TransactionKind
	Payload     interface{} // the action-specific slice of entity changes
}

// Sender posts one encoded report to a subscription's delivery endpoint. It
// is implemented by the dispatch/transport layers; report itself stays
// transport-agnostic so it can be tested without sockets.
type Sender interface {
	Send(ctx context.Context, sub *Subscription, items []Item) error
}

// DeliveryMode is Episodic (send immediately) or Periodic (buffer for one
// interval tick then emit an aggregate), per spec.md §4.F.
type DeliveryMode string

const (
	Episodic DeliveryMode = "Episodic"
	Periodic DeliveryMode = "Periodic"
)

// Subscription is one consumer's standing request for reports matching a
// filter (spec.md: "a consumer's standing request to receive reports
// matching an action filter").
type Subscription struct {
	ID       string
	Endpoint string
	Filter   map[Action]bool
	Mode     map[Action]DeliveryMode

	maxQueue int

	mu              sync.Mutex
	queue           []Item
	periodicBuffer  []Item
	expiresAt       time.Time
	consecutiveFail int
	unhealthy       bool
	terminated      bool
	terminationReason TerminationReason

	trigger chan struct{}
}

// NewSubscription creates a subscription with the given filter and initial
// TTL. Actions not present in mode default to Episodic.
func NewSubscription(endpoint string, filter []Action, mode map[Action]DeliveryMode, ttl time.Duration, maxQueue int) *Subscription {
	f := make(map[Action]bool, len(filter))
	for _, a := range filter {
		f[a] = true
	}
	return &Subscription{
		ID:        uuid.NewString(),
		Endpoint:  endpoint,
		Filter:    f,
		Mode:      mode,
		maxQueue:  maxQueue,
		expiresAt: time.Now().Add(ttl),
		trigger:   make(chan struct{}, 1),
	}
}

func (s *Subscription) modeFor(a Action) DeliveryMode {
	if m, ok := s.Mode[a]; ok {
		return m
	}
	return Episodic
}

// accepts reports whether this subscription's filter selects action.
func (s *Subscription) accepts(a Action) bool {
	return s.Filter[a]
}

// enqueue appends an item for episodic delivery, or buffers it for the next
// periodic tick. It never drops mid-stream: if the bounded queue is full it
// terminates the subscription instead (spec.md §4.F "overflow also
// terminates it").
func (s *Subscription) enqueue(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	periodic := s.modeFor(item.Action) == Periodic
	// The pipeline relabels an item for a Periodic-mode action with its
	// periodic twin, so the mode is looked up under the episodic action too.
	for episodic, twin := range periodicCounterpart {
		if twin == item.Action && s.modeFor(episodic) == Periodic {
			periodic = true
		}
	}
	if periodic {
		s.periodicBuffer = append(s.periodicBuffer, item)
		return
	}
	if len(s.queue) >= s.maxQueue {
		s.terminateLocked(ReasonOverflow)
		return
	}
	s.queue = append(s.queue, item)
	s.notify()
}

// flushPeriodic moves the buffered periodic items onto the delivery queue,
// called once per PeriodicReportInterval tick.
func (s *Subscription) flushPeriodic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated || len(s.periodicBuffer) == 0 {
		return
	}
	if len(s.queue)+len(s.periodicBuffer) > s.maxQueue {
		s.terminateLocked(ReasonOverflow)
		return
	}
	s.queue = append(s.queue, s.periodicBuffer...)
	s.periodicBuffer = nil
	s.notify()
}

func (s *Subscription) notify() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// drain removes and returns every currently queued item, FIFO.
func (s *Subscription) drain() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.queue
	s.queue = nil
	return items
}

func (s *Subscription) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFail = 0
	s.unhealthy = false
}

// recordFailure marks the subscription unhealthy and, after maxConsecutive
// failures, terminates it (spec.md §4.F).
func (s *Subscription) recordFailure(maxConsecutive int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFail++
	s.unhealthy = true
	if s.consecutiveFail >= maxConsecutive {
		s.terminateLocked(ReasonDeliveryFailure)
	}
}

func (s *Subscription) terminateLocked(reason TerminationReason) {
	s.terminated = true
	s.terminationReason = reason
}

// Terminated reports whether the subscription has ended, and why.
func (s *Subscription) Terminated() (bool, TerminationReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated, s.terminationReason
}

// Renew extends the subscription's expiration (spec.md §4.F).
func (s *Subscription) Renew(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(ttl)
}

// GetStatus returns the remaining time before expiration.
func (s *Subscription) GetStatus() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Until(s.expiresAt)
}

// Unsubscribe terminates the subscription cleanly.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminateLocked(ReasonSourceCancelling)
}

// Expire terminates the subscription for TTL expiry if expiresAt has
// passed; called by the pipeline's periodic sweep.
func (s *Subscription) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated || time.Now().Before(s.expiresAt) {
		return false
	}
	s.terminateLocked(ReasonExpired)
	s.notify()
	return true
}
