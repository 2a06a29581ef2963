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

package report_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/report"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []report.Item
}

func (r *recordingSender) Send(ctx context.Context, sub *report.Subscription, items []report.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, items...)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestPipelineDeliversEpisodicReportToMatchingSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)
	sender := &recordingSender{}
	p := report.NewPipeline(sender, time.Hour, 3, nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := report.NewSubscription("https://consumer/ep", []report.Action{report.ActionEpisodicMetricReport}, nil, time.Hour, 16)
	p.Subscribe(ctx, sub)

	reportCh := make(chan *mdib.TransactionReport, 1)
	go p.Run(ctx, reportCh)

	reportCh <- &mdib.TransactionReport{
		Kind:        mdib.TxMetricStates,
		MdibVersion: 2,
		Changes: []mdib.EntityChange{{
			DescriptorHandle: "nm0",
			StateBefore:      &mdib.State{Descriptor: "nm0", Kind: mdib.KindNumericMetric},
			StateAfter:       &mdib.State{Descriptor: "nm0", Kind: mdib.KindNumericMetric, StateVersion: 1},
		}},
	}

	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, time.Millisecond)
}

func TestPipelineUnsubscribeStopsDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)
	sender := &recordingSender{}
	p := report.NewPipeline(sender, time.Hour, 3, nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := report.NewSubscription("https://consumer/ep", []report.Action{report.ActionEpisodicMetricReport}, nil, time.Hour, 16)
	p.Subscribe(ctx, sub)
	p.Unsubscribe(sub.ID)

	_, ok := p.Lookup(sub.ID)
	require.False(t, ok)
	done, reason := sub.Terminated()
	require.True(t, done)
	require.Equal(t, report.ReasonSourceCancelling, reason)
}

// TestPipelineExpiresSubscriptionOnPeriodicTick proves TTL expiry is driven
// by the pipeline's own periodic tick, not just by a direct Expire() call:
// no test code here ever calls sub.Expire() itself.
func TestPipelineExpiresSubscriptionOnPeriodicTick(t *testing.T) {
	defer goleak.VerifyNone(t)
	sender := &recordingSender{}
	p := report.NewPipeline(sender, 10*time.Millisecond, 3, nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := report.NewSubscription("https://consumer/ep", []report.Action{report.ActionEpisodicMetricReport}, nil, 5*time.Millisecond, 16)
	p.Subscribe(ctx, sub)

	require.Eventually(t, func() bool {
		done, reason := sub.Terminated()
		return done && reason == report.ReasonExpired
	}, time.Second, time.Millisecond)

	_, ok := p.Lookup(sub.ID)
	require.True(t, ok)
}
