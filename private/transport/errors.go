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

// Package transport implements the HTTP(S) plane SOAP messages travel over:
// a per-host pooled client and a path-routed server, with optional TLS and a
// pluggable peer-trust predicate (spec.md §4.C).
package transport

import "github.com/gosdc/sdc/pkg/private/serrors"

// ErrTransport is the sentinel for every failure originating below the SOAP
// layer: dial failure, timeout, connection reset, TLS handshake failure.
// The core never retries a SOAP operation on a TransportError; that is an
// application concern (spec.md §4.C, §7).
var ErrTransport = serrors.New("transport error")

// Kind is the closed set of transport failure reasons reported alongside
// ErrTransport.
type Kind string

const (
	KindDial      Kind = "Dial"
	KindTimeout   Kind = "Timeout"
	KindTLS       Kind = "TLS"
	KindRead      Kind = "Read"
	KindWrite     Kind = "Write"
	KindUntrusted Kind = "Untrusted"
)

// NewError builds a TransportError of the given kind. cause, if non-nil, is
// recorded as context (its own identity is not preserved through
// errors.Is — only ErrTransport is).
func NewError(kind Kind, cause error, errCtx ...interface{}) error {
	ctx := append([]interface{}{"kind", kind, "cause", causeString(cause)}, errCtx...)
	return serrors.WithCtx(ErrTransport, ctx...)
}

func causeString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
