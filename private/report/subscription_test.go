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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubscriptionEnqueueAndDrain(t *testing.T) {
	sub := NewSubscription("https://consumer/reports",
		[]Action{ActionEpisodicMetricReport}, nil, time.Minute, 8)

	sub.enqueue(Item{Action: ActionEpisodicMetricReport, MdibVersion: 1})
	sub.enqueue(Item{Action: ActionEpisodicMetricReport, MdibVersion: 2})

	items := sub.drain()
	require.Len(t, items, 2)
	require.Equal(t, uint64(1), items[0].MdibVersion)
	require.Equal(t, uint64(2), items[1].MdibVersion)
	require.Empty(t, sub.drain())
}

func TestSubscriptionOverflowTerminates(t *testing.T) {
	sub := NewSubscription("https://consumer/reports",
		[]Action{ActionEpisodicMetricReport}, nil, time.Minute, 2)

	for i := 0; i < 3; i++ {
		sub.enqueue(Item{Action: ActionEpisodicMetricReport, MdibVersion: uint64(i)})
	}

	done, reason := sub.Terminated()
	require.True(t, done)
	require.Equal(t, ReasonOverflow, reason)
}

func TestSubscriptionRecordFailureTerminatesAfterMax(t *testing.T) {
	sub := NewSubscription("https://consumer/reports", nil, nil, time.Minute, 8)

	sub.recordFailure(3)
	sub.recordFailure(3)
	done, _ := sub.Terminated()
	require.False(t, done)

	sub.recordFailure(3)
	done, reason := sub.Terminated()
	require.True(t, done)
	require.Equal(t, ReasonDeliveryFailure, reason)
}

func TestSubscriptionExpire(t *testing.T) {
	sub := NewSubscription("https://consumer/reports", nil, nil, time.Millisecond, 8)
	time.Sleep(5 * time.Millisecond)
	require.True(t, sub.Expire())
	done, reason := sub.Terminated()
	require.True(t, done)
	require.Equal(t, ReasonExpired, reason)
}

func TestSubscriptionRenewExtendsStatus(t *testing.T) {
	sub := NewSubscription("https://consumer/reports", nil, nil, time.Millisecond, 8)
	sub.Renew(time.Hour)
	require.Greater(t, sub.GetStatus(), time.Minute)
}
