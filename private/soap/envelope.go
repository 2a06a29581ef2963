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

// Package soap implements the SOAP 1.2 message plane: envelope encode/decode
// with WS-Addressing headers, MustUnderstand enforcement, and the fault
// taxonomy every crossing error is mapped to (spec.md §4.B). The codec
// itself is stateless; message correlation state (which MessageID a
// RelatesTo answers) lives in the transport/consumer layers that use it.
package soap

import "github.com/gosdc/sdc/private/xmlbind"

const (
	NSEnvelope   = "http://www.w3.org/2003/05/soap-envelope"
	NSAddressing = "http://www.w3.org/2005/08/addressing"
)

// Header carries the WS-Addressing fields every SDC SOAP message exchanges
// (spec.md §4.B).
type Header struct {
	Action    string
	MessageID string
	RelatesTo string
	To        string
	ReplyTo   string

	// MustUnderstand lists header-block local names the sender marked
	// soap:mustUnderstand="true". A receiver that does not recognize one of
	// these must fault with NotUnderstood rather than silently ignore it.
	MustUnderstand []string
}

// Envelope is a decoded SOAP message: exactly one of Body or Fault is set.
type Envelope struct {
	Header Header
	Body   *xmlbind.Element
	Fault  *Fault
}

// NewRequest builds a Header for an outbound request with a fresh MessageID
// (spec.md §4.B correlation keys).
func NewRequest(action, to, replyTo string) Header {
	return Header{
		Action:    action,
		MessageID: newMessageID(),
		To:        to,
		ReplyTo:   replyTo,
	}
}

// NewReply builds a Header replying to req, correlating via RelatesTo.
func NewReply(action string, req Header) Header {
	return Header{
		Action:    action,
		MessageID: newMessageID(),
		RelatesTo: req.MessageID,
	}
}
