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
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/pkg/metrics"
)

// Handler processes one POSTed SOAP request body and returns the response
// body (or an error, mapped upstream to a SOAP fault by the dispatch
// layer). It is registered per path, matching spec.md §4.C "routes by
// request path to a registered handler".
type Handler func(ctx context.Context, body []byte) ([]byte, error)

// ServerConfig configures a Server.
type ServerConfig struct {
	Addr      string
	TLSConfig *tls.Config // nil for plaintext HTTP
	Trust     TrustPredicate
	// Metrics, if non-nil, records request counts and latency per path for
	// every registered handler, mirroring client.go's outbound
	// instrumentation.
	Metrics *metrics.Transport
}

// Server is the provider-side HTTP(S) endpoint SOAP requests arrive on. It
// routes by path via chi, the same router the rest of this stack's CLI
// surfaces use for their management APIs.
type Server struct {
	cfg ServerConfig
	mux *chi.Mux
	srv *http.Server
}

// NewServer builds a Server with no routes registered yet; call Handle for
// each SOAP service path before Serve.
func NewServer(cfg ServerConfig) *Server {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}))
	return &Server{cfg: cfg, mux: mux}
}

// Handle registers h at path for POST requests.
func (s *Server) Handle(path string, h Handler) {
	s.mux.Post(path, instrument(s.cfg.Metrics, path, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}
		resp, err := h(r.Context(), body)
		if err != nil {
			log.FromCtx(r.Context()).Error("soap handler failed", zap.String("path", path), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/soap+xml; charset=utf-8")
		_, _ = w.Write(resp)
	}))
}

// Serve blocks until the server is shut down or fails; it always returns a
// non-nil error (http.ErrServerClosed on a clean Shutdown).
func (s *Server) Serve() error {
	tlsCfg := s.cfg.TLSConfig
	if tlsCfg != nil && s.cfg.Trust != nil {
		tlsCfg = tlsCfg.Clone()
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
		tlsCfg.VerifyConnection = func(cs tls.ConnectionState) error {
			return s.cfg.Trust(&cs)
		}
	}
	s.srv = &http.Server{Addr: s.cfg.Addr, Handler: s.mux, TLSConfig: tlsCfg}
	var err error
	if tlsCfg != nil {
		err = s.srv.ListenAndServeTLS("", "")
	} else {
		err = s.srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return NewError(KindDial, err, "addr", s.cfg.Addr)
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
