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

package discovery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/pkg/metrics"
)

// AnnounceState is a local provider announcement's position in the state
// machine spec.md §4.D mandates: "Unannounced -> Hello-sent -> Live ->
// Bye-sent -> Unannounced".
type AnnounceState string

const (
	StateUnannounced AnnounceState = "Unannounced"
	StateHelloSent   AnnounceState = "HelloSent"
	StateLive        AnnounceState = "Live"
	StateByeSent     AnnounceState = "ByeSent"
)

// Config configures an Engine.
type Config struct {
	InterfaceBinding string
	MulticastTTL     int
	DupWindow        time.Duration
	// InitialDelay/RepeatCount/BackoffFactor govern the resend schedule for
	// each outbound multicast (spec.md §4.D).
	InitialDelay  time.Duration
	RepeatCount   int
	BackoffFactor float64

	Relevance RelevancePredicate
	Metrics   *metrics.Discovery
}

// Engine is one WS-Discovery participant: it can probe for remote
// providers and/or announce a local one. Both roles share one multicast
// socket per interface (spec.md §5).
type Engine struct {
	cfg    Config
	sock   *multicastSocket
	dedup  *dedupWindow
	msgNum atomic.Uint64
	instID uint64

	mu       sync.Mutex
	state    AnnounceState
	endpoint *DiscoveredEndpoint // this process's own announced endpoint, if any

	events chan DiscoveredEndpoint
}

// NewEngine opens the multicast socket and returns a ready Engine. Call
// Listen to start the receive loop.
func NewEngine(cfg Config, instanceID uint64) (*Engine, error) {
	if cfg.Relevance == nil {
		cfg.Relevance = AcceptAll
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.RepeatCount == 0 {
		cfg.RepeatCount = 2
	}
	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = 2
	}
	sock, err := newMulticastSocket(cfg.InterfaceBinding, DefaultMulticastAddrV4, cfg.MulticastTTL)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		sock:   sock,
		dedup:  newDedupWindow(cfg.DupWindow),
		instID: instanceID,
		state:  StateUnannounced,
		events: make(chan DiscoveredEndpoint, 64),
	}, nil
}

// Events returns the stream of relevant, deduplicated discovered endpoints.
// It is restartable: closing and replacing an Engine yields a fresh
// channel (spec.md §4.D: "a stream ... that is restartable").
func (e *Engine) Events() <-chan DiscoveredEndpoint {
	return e.events
}

// Listen runs the receive loop until ctx is done or the socket fails.
func (e *Engine) Listen(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	buf := make([]byte, 65536)
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		e.sock.close()
		close(done)
	}()
	for {
		n, _, err := e.sock.receive(buf)
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		msg, err := decodeMessage(buf[:n])
		if err != nil {
			logger.Warn("dropping malformed discovery message", zap.Error(err))
			continue
		}
		e.handle(msg)
	}
}

func (e *Engine) handle(msg *Message) {
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.MessagesReceived.With("type", string(msg.Kind)).Add(1)
	}
	if e.dedup.seen(msg.Seq, msg.MessageID) {
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.DuplicatesDropped.Add(1)
		}
		return
	}
	switch msg.Kind {
	case KindHello, KindProbeMatches, KindResolveMatch:
		if !e.cfg.Relevance(msg.Types, msg.Scopes, msg.XAddrs) {
			return
		}
		ep := DiscoveredEndpoint{
			EPR: msg.EPR, Types: msg.Types, Scopes: msg.Scopes,
			XAddrs: msg.XAddrs, MetadataVersion: msg.MetadataVersion,
			ObservedAt: time.Now(),
		}
		select {
		case e.events <- ep:
		default:
			// A full events channel means the consumer facade is behind;
			// dropping a discovery notification (unlike a subscription
			// report) does not violate any ordering guarantee, since
			// rediscovery simply re-announces.
		}
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.EndpointsDiscovered.Set(float64(len(e.events)))
		}
	case KindBye:
		// Bye is not surfaced as an event: callers keyed on EPR age out
		// entries that stop reappearing. Nothing further to do.
	}
}

func (e *Engine) nextSeq() AppSequence {
	return AppSequence{InstanceID: e.instID, MessageNumber: e.msgNum.Add(1)}
}

// Probe sends a WS-Discovery Probe with the given type/scope filter,
// repeated cfg.RepeatCount times with exponential backoff starting at
// cfg.InitialDelay (spec.md §4.D).
func (e *Engine) Probe(ctx context.Context, types, scopes []string) error {
	msg := &Message{Kind: KindProbe, Seq: e.nextSeq(), MessageID: newRandomMessageID(), Types: types, Scopes: scopes}
	return e.sendWithBackoff(ctx, msg)
}

func (e *Engine) sendWithBackoff(ctx context.Context, msg *Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	delay := e.cfg.InitialDelay
	for i := 0; i <= e.cfg.RepeatCount; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * e.cfg.BackoffFactor)
		}
		if err := e.sock.send(data); err != nil {
			return err
		}
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.MessagesSent.With("type", string(msg.Kind)).Add(1)
		}
	}
	return nil
}

// AnnounceHello transitions Unannounced/ByeSent -> HelloSent -> Live,
// advertising this process as a provider. Called again on interface change
// or metadata-version bump, per spec.md §4.D.
func (e *Engine) AnnounceHello(ctx context.Context, ep DiscoveredEndpoint) error {
	e.mu.Lock()
	e.state = StateHelloSent
	e.endpoint = &ep
	e.mu.Unlock()

	msg := &Message{
		Kind: KindHello, Seq: e.nextSeq(), MessageID: newRandomMessageID(),
		EPR: ep.EPR, Types: ep.Types, Scopes: ep.Scopes, XAddrs: ep.XAddrs,
		MetadataVersion: ep.MetadataVersion,
	}
	if err := e.sendWithBackoff(ctx, msg); err != nil {
		return err
	}
	e.mu.Lock()
	e.state = StateLive
	e.mu.Unlock()
	return nil
}

// AnnounceBye transitions Live -> ByeSent -> Unannounced. It is best-effort:
// callers invoke it at shutdown and ignore the error.
func (e *Engine) AnnounceBye(ctx context.Context) error {
	e.mu.Lock()
	ep := e.endpoint
	e.state = StateByeSent
	e.mu.Unlock()
	if ep == nil {
		return nil
	}
	msg := &Message{Kind: KindBye, Seq: e.nextSeq(), MessageID: newRandomMessageID(), EPR: ep.EPR}
	err := e.sendWithBackoff(ctx, msg)
	e.mu.Lock()
	e.state = StateUnannounced
	e.mu.Unlock()
	return err
}

// State returns the current local announcement state.
func (e *Engine) State() AnnounceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Close releases the multicast socket.
func (e *Engine) Close() error {
	return e.sock.close()
}

func newRandomMessageID() string {
	return "urn:uuid:" + uuid.NewString()
}
