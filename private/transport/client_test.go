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
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosdc/sdc/private/transport"
)

func TestClientPostRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.Header.Get("Content-Type"), `action="GetMdib"`)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(append([]byte("echo:"), body...))
	}))
	defer srv.Close()

	c := transport.NewClient(transport.ClientConfig{MaxConnsPerHost: 4}, time.Second)
	defer c.Close()

	resp, err := c.Post(context.Background(), srv.URL, "GetMdib", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "echo:hello", string(resp))
}

func TestClientPostTimeoutMapsToTimeoutKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	c := transport.NewClient(transport.ClientConfig{}, time.Second)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := c.Post(ctx, srv.URL, "GetMdib", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, transport.ErrTransport))
	require.Contains(t, err.Error(), "kind="+string(transport.KindTimeout))
}
