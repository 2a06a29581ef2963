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

// Package dispatch binds SOAP Actions to MDIB operations (spec.md §4.G): it
// is the provider-side boundary between the SOAP message plane and the
// transactional store, and the only place incoming requests are allowed to
// open a transaction.
package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/xmlbind"
)

// maxConcurrentInvocations bounds how many Set*/Activate transactions may
// run their device-side apply/commit step at once. It gates work, not the
// dispatcher's own lifetime: no invocation's error is allowed to cancel
// another's, so it never uses errgroup's derived context.
const maxConcurrentInvocations = 8

// Action is the closed set of SOAP Actions this dispatcher binds (spec.md
// §4.G).
type Action string

const (
	ActionGetMdib           Action = "GetMdib"
	ActionGetMdDescription  Action = "GetMdDescription"
	ActionGetMdState        Action = "GetMdState"
	ActionGetContextStates  Action = "GetContextStates"
	ActionSetValue          Action = "SetValue"
	ActionSetString         Action = "SetString"
	ActionActivate          Action = "Activate"
	ActionSetContextState   Action = "SetContextState"
	ActionSetAlertState     Action = "SetAlertState"
	ActionSetMetricState    Action = "SetMetricState"
	ActionSetComponentState Action = "SetComponentState"
)

// OperationState is the closed set of transitions an invoked operation goes
// through, reported via OperationInvokedReport (spec.md §4.G).
type OperationState string

const (
	OpWait                     OperationState = "Wait"
	OpStart                    OperationState = "Start"
	OpFinished                 OperationState = "Finished"
	OpFinishedWithModification OperationState = "FinishedWithModification"
	OpCancelled                OperationState = "Cancelled"
	OpFailed                   OperationState = "Failed"
)

// InvocationResult is published as OperationState transitions for one
// transaction id.
type InvocationResult struct {
	TransactionID string
	State         OperationState
	Reason        string // populated on OpFailed, e.g. "InvocationError.InvalidValue"
}

// Handler processes one decoded request body for a bound Action and
// returns the response body. Get* handlers run synchronously; Set*/Activate
// handlers return immediately after opening (and possibly already
// completing) a transaction, with further progress reported
// asynchronously via Invocations.
type Handler func(ctx context.Context, store *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error)

// Dispatcher maps SOAP Actions to Handlers and serializes every mutation
// through one MDIB store's transaction discipline (spec.md §4.G: "dispatch
// layer enforces that incoming requests to mutate state are serialized
// through the store's transaction discipline, not applied directly").
type Dispatcher struct {
	store *mdib.Store

	mu       sync.Mutex
	handlers map[Action]Handler

	invocations chan InvocationResult

	// invocationPool bounds concurrent Set*/Activate execution (spec.md
	// §4.G "a bounded worker pool"). SetLimit turns Go into a semaphore:
	// Go blocks once maxConcurrentInvocations goroutines are outstanding.
	invocationPool *errgroup.Group
}

// NewDispatcher builds a Dispatcher bound to store.
func NewDispatcher(store *mdib.Store) *Dispatcher {
	pool := &errgroup.Group{}
	pool.SetLimit(maxConcurrentInvocations)
	return &Dispatcher{
		store:          store,
		handlers:       map[Action]Handler{},
		invocations:    make(chan InvocationResult, 64),
		invocationPool: pool,
	}
}

// Bind registers h for action.
func (d *Dispatcher) Bind(action Action, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

// Invocations returns the stream of OperationInvokedReport transitions.
func (d *Dispatcher) Invocations() <-chan InvocationResult {
	return d.invocations
}

// Dispatch routes a decoded SOAP request to its bound handler. An unknown
// action yields a SOAP fault (spec.md §7, SPEC_FULL.md §9 "total match on
// action -> handler").
func (d *Dispatcher) Dispatch(ctx context.Context, action string, body *xmlbind.Element) (*xmlbind.Element, error) {
	d.mu.Lock()
	h, ok := d.handlers[Action(action)]
	d.mu.Unlock()
	if !ok {
		return nil, soap.ActionNotSupported(action)
	}
	return h(ctx, d.store, body)
}

// BeginSet opens a transaction for a Set*/Activate request and returns a
// fresh transaction id immediately; the caller (a Handler) performs the
// mutation and commits or aborts, then calls ReportInvocation for every
// subsequent state transition.
func (d *Dispatcher) BeginSet(ctx context.Context, kind mdib.TransactionKind) (string, *mdib.Tx, error) {
	tx, err := d.store.BeginTransaction(ctx, kind)
	if err != nil {
		return "", nil, err
	}
	return uuid.NewString(), tx, nil
}

// ReportInvocation publishes an OperationInvokedReport transition. It never
// blocks indefinitely: a full invocations channel means no subscriber has
// asked for OperationInvokedReport recently, so the oldest unread
// transition is the one still worth dropping, not the transaction itself.
func (d *Dispatcher) ReportInvocation(r InvocationResult) {
	select {
	case d.invocations <- r:
	default:
		select {
		case <-d.invocations:
		default:
		}
		d.invocations <- r
	}
}

// setRequest is a fully parsed Set*/Activate request, ready to run inside a
// transaction. Parsing (attribute extraction, numeric/string conversion)
// happens synchronously before BeginSet, so a malformed request (a missing
// OperationHandleRef, an unparseable Value) still faults immediately; only
// the mutation itself -- and whatever the device decides about it -- runs
// asynchronously (spec.md §4.G, §8 scenario 5).
type setRequest struct {
	target mdib.Handle
	// settableMetric marks requests that target a MetricDescriptor's value
	// and must therefore be rejected as InvocationError.InvalidValue when
	// that metric's category isn't Set/Preset (spec.md §8 scenario 5).
	settableMetric bool
	apply          func(tx *mdib.Tx) error
}

// spawnInvocation submits req to the bounded invocation pool. Go blocks the
// caller (a Handler, on the SOAP request goroutine) only when
// maxConcurrentInvocations invocations are already in flight; once
// admitted, req runs on its own goroutine and this call returns without
// waiting for it to finish.
func (d *Dispatcher) spawnInvocation(txID string, tx *mdib.Tx, req setRequest) {
	d.invocationPool.Go(func() error {
		d.runInvocation(txID, tx, req)
		return nil
	})
}

// runInvocation drives one Set*/Activate request through Wait -> Start ->
// a terminal OperationState, reporting every transition via
// ReportInvocation. It always finishes tx exactly once.
func (d *Dispatcher) runInvocation(txID string, tx *mdib.Tx, req setRequest) {
	d.ReportInvocation(InvocationResult{TransactionID: txID, State: OpWait})
	d.ReportInvocation(InvocationResult{TransactionID: txID, State: OpStart})

	if req.settableMetric {
		if desc, ok := tx.Descriptor(req.target); ok && desc.Metric != nil && !desc.Metric.Settable() {
			tx.Abort()
			d.ReportInvocation(InvocationResult{TransactionID: txID, State: OpFailed, Reason: "InvocationError.InvalidValue"})
			return
		}
	}

	if err := req.apply(tx); err != nil {
		tx.Abort()
		d.ReportInvocation(InvocationResult{TransactionID: txID, State: OpFailed, Reason: "InvocationError.InvalidValue"})
		return
	}
	if _, err := tx.Commit(); err != nil {
		d.ReportInvocation(InvocationResult{TransactionID: txID, State: OpFailed, Reason: "InvocationError.Other"})
		return
	}
	d.ReportInvocation(InvocationResult{TransactionID: txID, State: OpFinished})
}
