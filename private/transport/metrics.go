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
	"net/http"
	"strconv"
	"time"

	"github.com/gosdc/sdc/pkg/metrics"
)

// statusWriter captures the status code a Handler writes so instrument can
// label the request after the fact, the way net/http's ResponseWriter never
// exposes it directly.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument wraps an http.HandlerFunc with the same request-count/latency
// pair client.go already records on the outbound side, so the server side of
// every SOAP exchange is observable too (SPEC_FULL.md's transport metrics
// section; mirrors client.Post's Metrics.RequestsTotal/RequestDuration
// usage).
func instrument(m *metrics.Transport, path string, next http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(sw, r)
		m.RequestsTotal.With("path", path, "code", strconv.Itoa(sw.status)).Add(1)
		m.RequestDuration.With("path", path).Observe(time.Since(start).Seconds())
	}
}
