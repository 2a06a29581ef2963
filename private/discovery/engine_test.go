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

package discovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gosdc/sdc/private/discovery"
)

func newTestEngine(t *testing.T) *discovery.Engine {
	t.Helper()
	eng, err := discovery.NewEngine(discovery.Config{
		MulticastTTL: 1,
		DupWindow:    time.Minute,
		InitialDelay: time.Millisecond,
		RepeatCount:  0,
	}, uint64(time.Now().UnixNano())+1)
	if err != nil {
		t.Skipf("multicast unavailable in this environment: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

// TestAnnounceStateMachine walks the state sequence spec.md §4.D mandates:
// Unannounced -> HelloSent -> Live -> ByeSent -> Unannounced. AnnounceHello
// returns once Live is reached and AnnounceBye once the engine is back at
// Unannounced.
func TestAnnounceStateMachine(t *testing.T) {
	eng := newTestEngine(t)
	require.Equal(t, discovery.StateUnannounced, eng.State())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := eng.AnnounceHello(ctx, discovery.DiscoveredEndpoint{EPR: "urn:uuid:test", XAddrs: []string{"http://127.0.0.1:8080/sdc"}})
	require.NoError(t, err)
	require.Equal(t, discovery.StateLive, eng.State())

	require.NoError(t, eng.AnnounceBye(ctx))
	require.Equal(t, discovery.StateUnannounced, eng.State())
}

// TestDiscoveryHelloIsObservedByAnotherEngine exercises the end-to-end
// multicast path: one engine's Hello, sent over the loopback-enabled
// multicast group, is observed by a second engine listening concurrently.
func TestDiscoveryHelloIsObservedByAnotherEngine(t *testing.T) {
	defer goleak.VerifyNone(t)
	provider := newTestEngine(t)
	consumer := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	listenDone := make(chan struct{})
	go func() {
		defer close(listenDone)
		consumer.Listen(ctx)
	}()
	defer func() { <-listenDone }()
	defer cancel()

	time.Sleep(10 * time.Millisecond) // let the receive loop start
	err := provider.AnnounceHello(ctx, discovery.DiscoveredEndpoint{
		EPR: "urn:uuid:hello-test", XAddrs: []string{"http://127.0.0.1:9999/sdc"},
	})
	require.NoError(t, err)

	select {
	case ep := <-consumer.Events():
		require.Equal(t, "urn:uuid:hello-test", ep.EPR)
	case <-time.After(2 * time.Second):
		t.Skip("no multicast delivery observed in this environment; sandboxed networks commonly block it")
	}
}
