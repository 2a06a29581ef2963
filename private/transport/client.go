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

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/gosdc/sdc/pkg/metrics"
)

// TrustPredicate evaluates a peer certificate chain against an
// application-level trust list, on top of whatever the platform's TLS stack
// already accepted (spec.md §4.C: "additional pluggable predicate over the
// peer's subject/SAN").
type TrustPredicate func(*tls.ConnectionState) error

// ClientConfig configures a Client.
type ClientConfig struct {
	// MaxConnsPerHost bounds the pool's concurrency to one host.
	MaxConnsPerHost int
	// TLSConfig is nil for plaintext HTTP.
	TLSConfig *tls.Config
	Trust     TrustPredicate
	Metrics   *metrics.Transport
}

// Client is a per-host pooled SOAP-over-HTTP(S) sender. It owns exactly one
// http.Client whose Transport is tuned per ClientConfig; callers needing
// distinct pools per host construct one Client per host, matching
// spec.md §4.C's "HTTP connection pools are shared per host".
type Client struct {
	hc  *http.Client
	cfg ClientConfig
}

// NewClient builds a Client. dialTimeout bounds the TLS handshake;
// individual request deadlines are supplied via the context passed to Post.
// A non-nil cfg.Trust is layered on top of the platform's own certificate
// verification via tls.Config.VerifyConnection.
func NewClient(cfg ClientConfig, dialTimeout time.Duration) *Client {
	tlsCfg := cfg.TLSConfig
	if tlsCfg != nil && cfg.Trust != nil {
		tlsCfg = tlsCfg.Clone()
		tlsCfg.VerifyConnection = func(cs tls.ConnectionState) error {
			return cfg.Trust(&cs)
		}
	}
	rt := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		TLSClientConfig:     tlsCfg,
		TLSHandshakeTimeout: dialTimeout,
	}
	return &Client{hc: &http.Client{Transport: rt}, cfg: cfg}
}

// Post sends body to url with the given SOAP action and content type,
// returning the response body or a TransportError. It never retries.
func (c *Client) Post(ctx context.Context, url, soapAction string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(KindWrite, err, "url", url)
	}
	req.Header.Set("Content-Type", `application/soap+xml; charset=utf-8; action="`+soapAction+`"`)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if c.cfg.Metrics != nil {
		code := "error"
		if resp != nil {
			code = resp.Status
		}
		c.cfg.Metrics.RequestsTotal.With("path", url, "code", code).Add(1)
		c.cfg.Metrics.RequestDuration.With("path", url).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewError(KindTimeout, err, "url", url)
		}
		return nil, NewError(KindDial, err, "url", url)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindRead, err, "url", url)
	}
	return out, nil
}

// Close releases pooled connections.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}
