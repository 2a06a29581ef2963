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

package mdib_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gosdc/sdc/private/mdib"
)

const (
	mdsHandle = mdib.Handle("mds0")
	nmHandle  = mdib.Handle("nm0")
)

// newSeededStore reproduces spec.md §8 scenario 1 ("GetMdib bootstrap"): one
// MDS and one numeric metric descriptor, seeded via a single
// DescriptorModification transaction.
func newSeededStore(t *testing.T) *mdib.Store {
	t.Helper()
	st := mdib.NewStore("seq-1", "inst-1", nil, nil)

	tx, err := st.BeginTransaction(context.Background(), mdib.TxDescriptorModification)
	require.NoError(t, err)

	require.NoError(t, tx.AddDescriptor(&mdib.Descriptor{
		Handle: mdsHandle,
		Kind:   mdib.KindMDS,
	}))
	require.NoError(t, tx.AddDescriptor(&mdib.Descriptor{
		Handle:       nmHandle,
		Kind:         mdib.KindNumericMetric,
		ParentHandle: mdsHandle,
		Metric:       &mdib.MetricDescriptor{MetricCategory: "Msrmt"},
	}))
	require.NoError(t, tx.AddState(&mdib.State{
		Descriptor: nmHandle,
		Kind:       mdib.KindNumericMetric,
		Metric:     &mdib.MetricState{Value: 36.6, HasValue: true, ActivationState: "On"},
	}))

	report, err := tx.Commit()
	require.NoError(t, err)
	require.Equal(t, uint64(1), report.MdibVersion)

	return st
}

func TestBootstrap(t *testing.T) {
	st := newSeededStore(t)

	snap := st.ReadSnapshot()
	require.Equal(t, uint64(1), snap.MdibVersion())

	nm, ok := snap.State(mdib.StateKey{Descriptor: nmHandle})
	require.True(t, ok)
	require.Equal(t, uint64(0), nm.StateVersion)
	require.Equal(t, 36.6, nm.Metric.Value)

	mds, ok := snap.MDSHandle()
	require.True(t, ok)
	require.Equal(t, mdsHandle, mds)
}

func TestSingleMetricUpdate(t *testing.T) {
	st := newSeededStore(t)

	tx, err := st.BeginTransaction(context.Background(), mdib.TxMetricStates)
	require.NoError(t, err)

	require.NoError(t, tx.UpdateState(&mdib.State{
		Descriptor: nmHandle,
		Kind:       mdib.KindNumericMetric,
		Metric:     &mdib.MetricState{Value: 37.0, HasValue: true, ActivationState: "On"},
	}))

	report, err := tx.Commit()
	require.NoError(t, err)
	require.Equal(t, uint64(2), report.MdibVersion)
	require.Len(t, report.Changes, 1)
	require.Equal(t, uint64(1), report.Changes[0].StateAfter.StateVersion)

	snap := st.ReadSnapshot()
	nm, ok := snap.State(mdib.StateKey{Descriptor: nmHandle})
	require.True(t, ok)
	require.Equal(t, 37.0, nm.Metric.Value)
	require.Equal(t, uint64(1), nm.StateVersion)

	mdsBefore, _ := snap.Descriptor(mdsHandle)
	require.Equal(t, uint64(0), mdsBefore.DescriptorVersion, "untouched descriptor keeps its version")
}

func TestUnknownHandleRejectsWholeTransaction(t *testing.T) {
	st := newSeededStore(t)

	tx, err := st.BeginTransaction(context.Background(), mdib.TxMetricStates)
	require.NoError(t, err)

	err = tx.UpdateState(&mdib.State{
		Descriptor: "does-not-exist",
		Kind:       mdib.KindNumericMetric,
		Metric:     &mdib.MetricState{Value: 1, HasValue: true},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, mdib.ErrUnknownHandle))

	_, err = tx.Commit()
	require.Error(t, err, "a tx that recorded a rejection must not commit")

	snap := st.ReadSnapshot()
	require.Equal(t, uint64(1), snap.MdibVersion(), "rejected tx must not advance the MDIB version")
}

func TestWrongKindIsRejected(t *testing.T) {
	st := newSeededStore(t)

	tx, err := st.BeginTransaction(context.Background(), mdib.TxAlertStates)
	require.NoError(t, err)

	err = tx.UpdateState(&mdib.State{
		Descriptor: nmHandle,
		Kind:       mdib.KindNumericMetric,
		Metric:     &mdib.MetricState{Value: 1, HasValue: true},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, mdib.ErrWrongKind))
}

func TestDescriptionModificationRemovesDescendantsAndStates(t *testing.T) {
	st := newSeededStore(t)

	tx, err := st.BeginTransaction(context.Background(), mdib.TxDescriptorModification)
	require.NoError(t, err)
	require.NoError(t, tx.RemoveDescriptor(nmHandle))
	report, err := tx.Commit()
	require.NoError(t, err)

	foundRemoval := false
	for _, c := range report.Changes {
		if c.DescriptorHandle == nmHandle && c.Removed {
			foundRemoval = true
		}
	}
	require.True(t, foundRemoval)

	snap := st.ReadSnapshot()
	_, ok := snap.Descriptor(nmHandle)
	require.False(t, ok)
	_, ok = snap.State(mdib.StateKey{Descriptor: nmHandle})
	require.False(t, ok)
}

func TestSerializesWriters(t *testing.T) {
	defer goleak.VerifyNone(t)
	st := newSeededStore(t)

	tx1, err := st.BeginTransaction(context.Background(), mdib.TxMetricStates)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = st.BeginTransaction(ctx, mdib.TxMetricStates)
	require.ErrorIs(t, err, context.Canceled, "a second writer must wait for the first to finish")

	tx1.Abort()

	tx2, err := st.BeginTransaction(context.Background(), mdib.TxMetricStates)
	require.NoError(t, err)
	tx2.Abort()
}

func TestReadSnapshotIsStableAcrossCommit(t *testing.T) {
	st := newSeededStore(t)
	pinned := st.ReadSnapshot()

	tx, err := st.BeginTransaction(context.Background(), mdib.TxMetricStates)
	require.NoError(t, err)
	require.NoError(t, tx.UpdateState(&mdib.State{
		Descriptor: nmHandle,
		Kind:       mdib.KindNumericMetric,
		Metric:     &mdib.MetricState{Value: 40.0, HasValue: true},
	}))
	_, err = tx.Commit()
	require.NoError(t, err)

	// The snapshot taken before the commit must still report the old value
	// and version (spec.md §8 Atomicity: "intermediate snapshots never
	// expose partial T", generalized here to "prior snapshots are immune to
	// later commits").
	require.Equal(t, uint64(1), pinned.MdibVersion())
	nm, ok := pinned.State(mdib.StateKey{Descriptor: nmHandle})
	require.True(t, ok)
	require.Equal(t, 36.6, nm.Metric.Value)
}
