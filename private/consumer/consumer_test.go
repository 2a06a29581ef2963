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

package consumer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gosdc/sdc/private/consumer"
	"github.com/gosdc/sdc/private/discovery"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/report"
)

const (
	mdsHandle = mdib.Handle("mds0")
	nmHandle  = mdib.Handle("nm0")
)

func seedGetMdib(seq string, mdibVersion uint64) consumer.GetMdibFunc {
	return func(ctx context.Context, xaddr string) (string, string, []*mdib.Descriptor, []*mdib.State, uint64, error) {
		descriptors := []*mdib.Descriptor{
			{Handle: mdsHandle, Kind: mdib.KindMDS},
			{Handle: nmHandle, Kind: mdib.KindNumericMetric, ParentHandle: mdsHandle},
		}
		states := []*mdib.State{
			{Descriptor: nmHandle, Kind: mdib.KindNumericMetric, Metric: &mdib.MetricState{Value: 1, HasValue: true}},
		}
		return seq, "inst-1", descriptors, states, mdibVersion, nil
	}
}

func TestFacadeConnectBuildsMirror(t *testing.T) {
	defer goleak.VerifyNone(t)
	reports := make(chan *mdib.TransactionReport)
	sub := func(ctx context.Context, xaddr string, filter []report.Action) (<-chan *mdib.TransactionReport, error) {
		return reports, nil
	}
	f := consumer.NewFacade(seedGetMdib("seq-1", 1), sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ep := discovery.DiscoveredEndpoint{EPR: "urn:uuid:x", XAddrs: []string{"http://127.0.0.1:1/sdc"}}
	require.NoError(t, f.Connect(ctx, ep, nil))

	snap := f.Mirror().Snapshot()
	require.Equal(t, "seq-1", snap.SequenceID())
	_, ok := snap.Descriptor(nmHandle)
	require.True(t, ok)
	st, ok := snap.State(mdib.StateKey{Descriptor: nmHandle})
	require.True(t, ok)
	require.Equal(t, 1.0, st.Metric.Value)
}

func TestFacadeConnectRejectsEndpointWithoutXAddrs(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := consumer.NewFacade(seedGetMdib("seq-1", 1), nil)
	err := f.Connect(context.Background(), discovery.DiscoveredEndpoint{EPR: "urn:uuid:x"}, nil)
	require.Error(t, err)
}

func TestFacadeAppliesReportAndAdvancesMdibVersion(t *testing.T) {
	defer goleak.VerifyNone(t)
	reports := make(chan *mdib.TransactionReport, 1)
	sub := func(ctx context.Context, xaddr string, filter []report.Action) (<-chan *mdib.TransactionReport, error) {
		return reports, nil
	}
	f := consumer.NewFacade(seedGetMdib("seq-1", 1), sub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ep := discovery.DiscoveredEndpoint{EPR: "urn:uuid:x", XAddrs: []string{"http://127.0.0.1:1/sdc"}}
	require.NoError(t, f.Connect(ctx, ep, nil))

	reports <- &mdib.TransactionReport{
		Kind:        mdib.TxMetricStates,
		MdibVersion: 2,
		SequenceID:  "seq-1",
		Changes: []mdib.EntityChange{{
			DescriptorHandle: nmHandle,
			StateBefore: &mdib.State{
				Descriptor: nmHandle, Kind: mdib.KindNumericMetric, StateVersion: 0,
				Metric: &mdib.MetricState{Value: 1, HasValue: true},
			},
			StateAfter: &mdib.State{
				Descriptor: nmHandle, Kind: mdib.KindNumericMetric, StateVersion: 1,
				Metric: &mdib.MetricState{Value: 2, HasValue: true},
			},
		}},
	}

	require.Eventually(t, func() bool {
		st, ok := f.Mirror().Snapshot().State(mdib.StateKey{Descriptor: nmHandle})
		return ok && st.Metric.Value == 2
	}, time.Second, time.Millisecond)
	require.False(t, f.Mirror().Stale())
}

func TestFacadeMarksStaleOnSequenceChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	reports := make(chan *mdib.TransactionReport, 1)
	sub := func(ctx context.Context, xaddr string, filter []report.Action) (<-chan *mdib.TransactionReport, error) {
		return reports, nil
	}
	f := consumer.NewFacade(seedGetMdib("seq-1", 1), sub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ep := discovery.DiscoveredEndpoint{EPR: "urn:uuid:x", XAddrs: []string{"http://127.0.0.1:1/sdc"}}
	require.NoError(t, f.Connect(ctx, ep, nil))

	reports <- &mdib.TransactionReport{
		Kind:        mdib.TxMetricStates,
		MdibVersion: 2,
		SequenceID:  "a-different-sequence",
	}

	require.Eventually(t, f.Mirror().Stale, time.Second, time.Millisecond)
}
