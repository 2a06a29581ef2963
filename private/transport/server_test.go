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

package transport_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gosdc/sdc/pkg/metrics"
	"github.com/gosdc/sdc/private/transport"
)

// freeAddr picks a currently-unused loopback port. There is a small race
// between closing the probe listener and the Server binding it, acceptable
// for test purposes.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServerHandleRoundTrip(t *testing.T) {
	addr := freeAddr(t)
	srv := transport.NewServer(transport.ServerConfig{Addr: addr})
	srv.Handle("/sdc", func(ctx context.Context, body []byte) ([]byte, error) {
		return append([]byte("got:"), body...), nil
	})

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	waitForListener(t, addr)

	resp, err := http.Post(fmt.Sprintf("http://%s/sdc", addr), "application/soap+xml", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	err = <-done
	require.True(t, errors.Is(err, http.ErrServerClosed))
}

// TestServerHandleRecordsMetrics proves the server side populates the same
// RequestsTotal/RequestDuration series client.go already records on the
// outbound side, instead of only the outbound side ever recording anything.
func TestServerHandleRecordsMetrics(t *testing.T) {
	addr := freeAddr(t)
	reg := prometheus.NewRegistry()
	transportMetrics := metrics.NewTransport(reg)

	srv := transport.NewServer(transport.ServerConfig{Addr: addr, Metrics: transportMetrics})
	srv.Handle("/sdc", func(ctx context.Context, body []byte) ([]byte, error) {
		return append([]byte("got:"), body...), nil
	})

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	waitForListener(t, addr)

	resp, err := http.Post(fmt.Sprintf("http://%s/sdc", addr), "application/soap+xml", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	<-done

	count, err := testutil.GatherAndCount(reg, "sdc_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "sdc_http_request_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func waitForListener(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server did not start listening on %s", addr)
}
