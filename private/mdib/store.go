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

package mdib

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gosdc/sdc/pkg/metrics"
)

// Store holds one provider's MDIB: an atomically-published, structurally
// shared snapshot plus the single-writer transaction engine that advances it
// (spec.md §4.E). Readers call ReadSnapshot at any time without blocking or
// being blocked by a concurrent writer; writers serialize through
// BeginTransaction.
type Store struct {
	root atomic.Pointer[state]

	// writeLock is a buffer-1 channel used as a mutex: BeginTransaction
	// receives the token, Commit/Abort returns it. This gives the single
	// writer lane spec.md §4.E requires without a sync.Mutex, matching the
	// rest of this module's preference for channel-based coordination over
	// lower-level primitives.
	writeLock chan struct{}

	// reportCh receives one TransactionReport per committed transaction, in
	// commit order, for the reporting pipeline (private/report) to consume.
	// The send blocks: an internal handoff between the store and the
	// pipeline is not where spec.md's subscription backpressure applies, so
	// a full channel here means the writer waits rather than silently
	// dropping a report and creating a version gap.
	reportCh chan *TransactionReport

	metrics *metrics.MDIB
}

// NewStore creates an empty, unseeded Store identified by sequenceID and
// instanceID (spec.md §3). reportCh may be nil, in which case committed
// transactions are not reported anywhere (useful for tests that only assert
// on Snapshot contents).
func NewStore(sequenceID, instanceID string, reportCh chan *TransactionReport, m *metrics.MDIB) *Store {
	st := &Store{
		writeLock: make(chan struct{}, 1),
		reportCh:  reportCh,
		metrics:   m,
	}
	st.writeLock <- struct{}{}
	st.root.Store(newEmptyState(sequenceID, instanceID))
	return st
}

// ReadSnapshot returns the current published snapshot. It never blocks.
func (st *Store) ReadSnapshot() Snapshot {
	return Snapshot{s: st.root.Load()}
}

// BeginTransaction acquires the single writer lane and returns a Tx of the
// given kind, based on the snapshot current at acquisition time. ctx
// cancellation while waiting for the lane returns ctx.Err(); a Tx that is
// neither committed nor aborted leaks the lane, so callers must always
// reach a Commit or Abort (typically via defer).
func (st *Store) BeginTransaction(ctx context.Context, kind TransactionKind) (*Tx, error) {
	select {
	case <-st.writeLock:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	base := st.root.Load()
	return &Tx{
		store:                  st,
		kind:                   kind,
		base:                   base,
		work:                   base.clone(),
		touchedDescriptors:     map[Handle]bool{},
		touchedStates:          map[StateKey]bool{},
		touchedContextInstance: map[Handle]bool{},
	}, nil
}

// release returns the writer-lane token; called exactly once by Commit or
// Abort.
func (st *Store) release() {
	st.writeLock <- struct{}{}
}

func (st *Store) publish(next *state, report *TransactionReport) {
	start := time.Now()
	st.root.Store(next)
	if st.metrics != nil {
		st.metrics.MdibVersion.Set(float64(next.mdibVersion))
		st.metrics.TransactionsCommitted.With("kind", string(report.Kind)).Add(1)
		st.metrics.CommitLatency.Observe(time.Since(start).Seconds())
	}
	if st.reportCh != nil {
		st.reportCh <- report
	}
}

func (st *Store) countAbort(kind TransactionKind, reason string) {
	if st.metrics != nil {
		st.metrics.TransactionsAborted.With("kind", string(kind), "reason", reason).Add(1)
	}
}
