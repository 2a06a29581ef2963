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

package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosdc/sdc/private/dispatch"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/xmlbind"
)

const (
	mdsHandle = mdib.Handle("mds0")
	nmHandle  = mdib.Handle("nm0") // read-only (Msrmt): rejects SetValue
	setHandle = mdib.Handle("nm1") // settable (Set): accepts SetValue
)

func newSeededStore(t *testing.T) *mdib.Store {
	t.Helper()
	st := mdib.NewStore("seq-1", "inst-1", nil, nil)
	tx, err := st.BeginTransaction(context.Background(), mdib.TxDescriptorModification)
	require.NoError(t, err)
	require.NoError(t, tx.AddDescriptor(&mdib.Descriptor{Handle: mdsHandle, Kind: mdib.KindMDS}))
	require.NoError(t, tx.AddDescriptor(&mdib.Descriptor{
		Handle: nmHandle, Kind: mdib.KindNumericMetric, ParentHandle: mdsHandle,
		Metric: &mdib.MetricDescriptor{MetricCategory: "Msrmt"},
	}))
	require.NoError(t, tx.AddState(&mdib.State{
		Descriptor: nmHandle, Kind: mdib.KindNumericMetric,
		Metric: &mdib.MetricState{Value: 1, HasValue: true},
	}))
	require.NoError(t, tx.AddDescriptor(&mdib.Descriptor{
		Handle: setHandle, Kind: mdib.KindNumericMetric, ParentHandle: mdsHandle,
		Metric: &mdib.MetricDescriptor{MetricCategory: "Set"},
	}))
	require.NoError(t, tx.AddState(&mdib.State{
		Descriptor: setHandle, Kind: mdib.KindNumericMetric,
		Metric: &mdib.MetricState{Value: 0, HasValue: true},
	}))
	_, err = tx.Commit()
	require.NoError(t, err)
	return st
}

func TestDispatchUnknownActionFaults(t *testing.T) {
	d := dispatch.NewDispatcher(newSeededStore(t))
	dispatch.BindDefaults(d)

	_, err := d.Dispatch(context.Background(), "NotARealAction", &xmlbind.Element{})
	require.Error(t, err)
	var fault *soap.Fault
	require.True(t, errors.As(err, &fault))
	require.Equal(t, soap.SubCodeActionNotSupported, fault.SubCode)
}

func TestDispatchGetMdib(t *testing.T) {
	d := dispatch.NewDispatcher(newSeededStore(t))
	dispatch.BindDefaults(d)

	resp, err := d.Dispatch(context.Background(), string(dispatch.ActionGetMdib), &xmlbind.Element{})
	require.NoError(t, err)
	require.Equal(t, "Mdib", resp.Name.Local)
	version, ok := resp.Attr("MdibVersion")
	require.True(t, ok)
	require.Equal(t, "1", version)
}

func TestDispatchSetValueCommitsTransaction(t *testing.T) {
	store := newSeededStore(t)
	d := dispatch.NewDispatcher(store)
	dispatch.BindDefaults(d)

	req := &xmlbind.Element{Attrs: []xmlbind.Attr{
		{Name: xmlbind.QName{Local: "OperationHandleRef"}, Value: string(setHandle)},
		{Name: xmlbind.QName{Local: "Value"}, Value: "42.5"},
	}}
	resp, err := d.Dispatch(context.Background(), string(dispatch.ActionSetValue), req)
	require.NoError(t, err)
	txID, ok := resp.Attr("TransactionId")
	require.True(t, ok)
	require.NotEmpty(t, txID)

	require.Eventually(t, func() bool {
		snap := store.ReadSnapshot()
		st, ok := snap.State(mdib.StateKey{Descriptor: setHandle})
		return ok && st.Metric.Value == 42.5
	}, time.Second, time.Millisecond)

	var finished bool
	for !finished {
		select {
		case inv := <-d.Invocations():
			if inv.TransactionID == txID && inv.State == dispatch.OpFinished {
				finished = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for OpFinished")
		}
	}

	snap := store.ReadSnapshot()
	st, ok := snap.State(mdib.StateKey{Descriptor: setHandle})
	require.True(t, ok)
	require.Equal(t, 42.5, st.Metric.Value)
	require.Equal(t, uint64(1), st.StateVersion)
}

func TestDispatchSetValueRejectsReadOnlyMetric(t *testing.T) {
	store := newSeededStore(t)
	d := dispatch.NewDispatcher(store)
	dispatch.BindDefaults(d)

	req := &xmlbind.Element{Attrs: []xmlbind.Attr{
		{Name: xmlbind.QName{Local: "OperationHandleRef"}, Value: string(nmHandle)},
		{Name: xmlbind.QName{Local: "Value"}, Value: "42.5"},
	}}
	resp, err := d.Dispatch(context.Background(), string(dispatch.ActionSetValue), req)
	require.NoError(t, err)
	txID, ok := resp.Attr("TransactionId")
	require.True(t, ok)

	var failed dispatch.InvocationResult
	found := false
	for !found {
		select {
		case inv := <-d.Invocations():
			if inv.TransactionID == txID && inv.State == dispatch.OpFailed {
				failed = inv
				found = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for OpFailed")
		}
	}
	require.Equal(t, "InvocationError.InvalidValue", failed.Reason)

	snap := store.ReadSnapshot()
	st, ok := snap.State(mdib.StateKey{Descriptor: nmHandle})
	require.True(t, ok)
	require.Equal(t, float64(1), st.Metric.Value)
	require.Equal(t, uint64(0), st.StateVersion)
	require.Equal(t, uint64(1), snap.MdibVersion())
}

func TestDispatchSetValueMissingHandleFaults(t *testing.T) {
	d := dispatch.NewDispatcher(newSeededStore(t))
	dispatch.BindDefaults(d)

	_, err := d.Dispatch(context.Background(), string(dispatch.ActionSetValue), &xmlbind.Element{})
	require.Error(t, err)
	var fault *soap.Fault
	require.True(t, errors.As(err, &fault))
	require.Equal(t, soap.SubCodeInvalidState, fault.SubCode)
}

func TestReportInvocationNeverBlocks(t *testing.T) {
	d := dispatch.NewDispatcher(newSeededStore(t))
	for i := 0; i < 100; i++ {
		d.ReportInvocation(dispatch.InvocationResult{TransactionID: "t", State: dispatch.OpFinished})
	}
	// draining at most a handful confirms the channel never grew unbounded
	// and ReportInvocation's drop-oldest fallback kept it bounded.
	count := 0
	for {
		select {
		case <-d.Invocations():
			count++
		default:
			require.LessOrEqual(t, count, 64)
			return
		}
	}
}
