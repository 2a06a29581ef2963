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

// Package discovery implements the WS-Discovery engine: multicast
// probe/resolve, hello/bye announcement, deduplication, and a relevance
// predicate over discovered endpoints (spec.md §4.D).
package discovery

import "time"

// DefaultMulticastAddrV4/V6 are the IANA-assigned WS-Discovery groups
// (spec.md §6).
const (
	DefaultMulticastAddrV4 = "239.255.255.250:3702"
	DefaultMulticastAddrV6 = "[ff02::c]:3702"
)

// MessageKind is the closed set of WS-Discovery message types this engine
// exchanges.
type MessageKind string

const (
	KindProbe        MessageKind = "Probe"
	KindProbeMatches MessageKind = "ProbeMatches"
	KindResolve      MessageKind = "Resolve"
	KindResolveMatch MessageKind = "ResolveMatches"
	KindHello        MessageKind = "Hello"
	KindBye          MessageKind = "Bye"
)

// AppSequence is the specification-mandated ordering tuple every outbound
// multicast carries: an instance id fixed for the process lifetime and a
// strictly increasing message number (spec.md §4.D).
type AppSequence struct {
	InstanceID    uint64
	MessageNumber uint64
}

// Message is a decoded WS-Discovery message, reduced to the fields this
// engine needs; other content of the received XML is not kept.
type Message struct {
	Kind            MessageKind
	Seq             AppSequence
	MessageID       string
	EPR             string
	Types           []string
	Scopes          []string
	XAddrs          []string
	MetadataVersion uint64
}

// DiscoveredEndpoint is emitted for every Hello, ProbeMatches or
// ResolveMatches message that passes the relevance predicate and is not a
// repeat, within the dedup window, of an (AppSequence, MessageID) pair
// already seen (spec.md §4.D). The same EPR can be emitted more than once.
type DiscoveredEndpoint struct {
	EPR             string
	Types           []string
	Scopes          []string
	XAddrs          []string
	MetadataVersion uint64
	ObservedAt      time.Time
}

// RelevancePredicate filters ProbeMatches/Hello messages by (Types, Scopes,
// XAddrs). A nil predicate accepts everything.
type RelevancePredicate func(types, scopes, xaddrs []string) bool

// AcceptAll is the zero-value RelevancePredicate.
func AcceptAll(_, _, _ []string) bool { return true }
