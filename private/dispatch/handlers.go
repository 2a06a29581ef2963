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

package dispatch

import (
	"context"
	"strconv"

	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/xmlbind"
)

const nsParticipant = "http://standards.ieee.org/downloads/11073/11073-10207-2017/participant"

// BindDefaults registers the stock Get*/Set* handlers a provider needs for
// every action dispatch.go names. Callers may override individual bindings
// afterward (e.g. to add vendor-specific Set* validation).
func BindDefaults(d *Dispatcher) {
	d.Bind(ActionGetMdib, handleGetMdib)
	d.Bind(ActionGetMdDescription, handleGetMdDescription)
	d.Bind(ActionGetMdState, handleGetMdState)
	d.Bind(ActionGetContextStates, handleGetContextStates)
	d.Bind(ActionSetValue, handlerForSet(d, mdib.TxMetricStates, parseSetValue))
	d.Bind(ActionSetString, handlerForSet(d, mdib.TxMetricStates, parseSetString))
	d.Bind(ActionActivate, handlerForSet(d, mdib.TxOperationalStates, parseActivate))
	d.Bind(ActionSetContextState, handlerForSet(d, mdib.TxContextStates, parseSetContextState))
	d.Bind(ActionSetAlertState, handlerForSet(d, mdib.TxAlertStates, parseSetAlertState))
	d.Bind(ActionSetMetricState, handlerForSet(d, mdib.TxMetricStates, parseSetMetricState))
	d.Bind(ActionSetComponentState, handlerForSet(d, mdib.TxComponentStates, parseSetComponentState))
}

func handleGetMdib(ctx context.Context, store *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error) {
	snap := store.ReadSnapshot()
	root := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: "Mdib"}}
	root.Attrs = append(root.Attrs, xmlbind.Attr{
		Name:  xmlbind.QName{Local: "MdibVersion"},
		Value: strconv.FormatUint(snap.MdibVersion(), 10),
	}, xmlbind.Attr{
		Name:  xmlbind.QName{Local: "SequenceId"},
		Value: snap.SequenceID(),
	}, xmlbind.Attr{
		Name:  xmlbind.QName{Local: "InstanceId"},
		Value: snap.InstanceID(),
	})
	for h, d := range snap.Descriptors() {
		if d.ParentHandle != "" {
			continue // emitted nested under its parent by encodeDescriptorRef
		}
		root.Children = append(root.Children, encodeDescriptorRef(snap, h))
	}
	return root, nil
}

func handleGetMdDescription(ctx context.Context, store *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error) {
	snap := store.ReadSnapshot()
	root := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: "MdDescription"}}
	for h, d := range snap.Descriptors() {
		if d.ParentHandle != "" {
			continue // emitted nested under its parent by encodeDescriptorRef
		}
		root.Children = append(root.Children, encodeDescriptorRef(snap, h))
	}
	return root, nil
}

func handleGetMdState(ctx context.Context, store *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error) {
	snap := store.ReadSnapshot()
	root := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: "MdState"}}
	for h := range snap.Descriptors() {
		for _, st := range snap.StatesOf(h) {
			root.Children = append(root.Children, encodeState(st))
		}
	}
	return root, nil
}

func handleGetContextStates(ctx context.Context, store *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error) {
	snap := store.ReadSnapshot()
	root := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: "ContextStates"}}
	for h, d := range snap.Descriptors() {
		if !d.Kind.IsContext() {
			continue
		}
		for _, st := range snap.StatesOf(h) {
			root.Children = append(root.Children, encodeState(st))
		}
	}
	return root, nil
}

func encodeDescriptorRef(snap mdib.Snapshot, h mdib.Handle) *xmlbind.Element {
	d, ok := snap.Descriptor(h)
	if !ok {
		return &xmlbind.Element{Name: xmlbind.QName{Local: "Unknown"}}
	}
	el := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: string(d.Kind)}}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "Handle"}, Value: string(d.Handle)},
		xmlbind.Attr{Name: xmlbind.QName{Local: "DescriptorVersion"}, Value: strconv.FormatUint(d.DescriptorVersion, 10)},
	)
	for _, t := range d.Texts {
		el.Children = append(el.Children, encodeLocalizedText(t))
	}
	for _, child := range snap.Children(h) {
		el.Children = append(el.Children, encodeDescriptorRef(snap, child))
	}
	return el
}

func encodeLocalizedText(t mdib.LocalizedText) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: "Text"}, Text: t.Text}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "Ref"}, Value: t.Ref},
		xmlbind.Attr{Name: xmlbind.QName{Local: "Lang"}, Value: t.Lang},
		xmlbind.Attr{Name: xmlbind.QName{Local: "Version"}, Value: strconv.FormatUint(t.Version, 10)},
	)
	return el
}

func encodeState(s *mdib.State) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: string(s.Kind) + "State"}}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "DescriptorHandle"}, Value: string(s.Descriptor)},
		xmlbind.Attr{Name: xmlbind.QName{Local: "StateVersion"}, Value: strconv.FormatUint(s.StateVersion, 10)},
	)
	if s.Instance != "" {
		el.Attrs = append(el.Attrs, xmlbind.Attr{Name: xmlbind.QName{Local: "Handle"}, Value: string(s.Instance)})
	}
	return el
}

// handlerForSet wraps a parse function into a Handler implementing the
// asynchronous Set*/Activate flow (spec.md §4.G, §8 scenario 5): parse runs
// synchronously and faults on a malformed request; once it succeeds,
// BeginSet hands back a transaction id immediately and the mutation itself
// -- including any device-level rejection such as a read-only metric --
// runs on the bounded invocation pool, reported via OperationInvokedReport.
func handlerForSet(d *Dispatcher, kind mdib.TransactionKind, parse func(body *xmlbind.Element) (setRequest, error)) Handler {
	return func(ctx context.Context, store *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error) {
		req, err := parse(body)
		if err != nil {
			return nil, soap.NewFault(soap.CodeSender, soap.SubCodeInvalidState, err.Error())
		}
		txID, tx, err := d.BeginSet(ctx, kind)
		if err != nil {
			return nil, err
		}
		d.spawnInvocation(txID, tx, req)
		return invocationResponse(txID), nil
	}
}

func invocationResponse(txID string) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Space: nsParticipant, Local: "InvocationInfo"}}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "TransactionId"}, Value: txID},
		xmlbind.Attr{Name: xmlbind.QName{Local: "InvocationState"}, Value: string(OpWait)},
	)
	return el
}

func requiredHandle(body *xmlbind.Element) (mdib.Handle, error) {
	h, ok := body.Attr("OperationHandleRef")
	if !ok {
		return "", missingAttr("OperationHandleRef")
	}
	return mdib.Handle(h), nil
}

type missingAttr string

func (e missingAttr) Error() string { return "missing required attribute: " + string(e) }

func parseSetValue(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	v, ok := body.Attr("Value")
	if !ok {
		return setRequest{}, missingAttr("Value")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return setRequest{}, err
	}
	return setRequest{
		target:         target,
		settableMetric: true,
		apply: func(tx *mdib.Tx) error {
			return tx.UpdateState(&mdib.State{
				Descriptor: target, Kind: mdib.KindNumericMetric,
				Metric: &mdib.MetricState{HasValue: true, Value: f},
			})
		},
	}, nil
}

func parseSetString(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	v, _ := body.Attr("Value")
	return setRequest{
		target:         target,
		settableMetric: true,
		apply: func(tx *mdib.Tx) error {
			return tx.UpdateState(&mdib.State{
				Descriptor: target, Kind: mdib.KindStringMetric,
				Metric: &mdib.MetricState{StringValue: v},
			})
		},
	}, nil
}

func parseActivate(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	return setRequest{
		target: target,
		apply: func(tx *mdib.Tx) error {
			// Activate's side effects are entirely device-specific; the
			// transaction discipline and InvocationInfo reporting are what
			// dispatch owns, so a generic handler has nothing further to
			// commit.
			return nil
		},
	}, nil
}

func parseSetContextState(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	instance, _ := body.Attr("ContextStateHandle")
	assoc, _ := body.Attr("ContextAssociation")
	if assoc == "" {
		assoc = "Assoc"
	}
	return setRequest{
		target: target,
		apply: func(tx *mdib.Tx) error {
			return tx.UpdateState(&mdib.State{
				Descriptor: target, Instance: mdib.MultiStateHandle(instance), Kind: mdib.KindPatientContext,
				Context: &mdib.ContextState{ContextAssociation: assoc},
			})
		},
	}, nil
}

func parseSetAlertState(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	state, _ := body.Attr("ActivationState")
	return setRequest{
		target: target,
		apply: func(tx *mdib.Tx) error {
			return tx.UpdateState(&mdib.State{
				Descriptor: target, Kind: mdib.KindAlertCondition,
				Alert: &mdib.AlertState{ActivationState: state},
			})
		},
	}, nil
}

func parseSetMetricState(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	state, _ := body.Attr("ActivationState")
	return setRequest{
		target: target,
		apply: func(tx *mdib.Tx) error {
			return tx.UpdateState(&mdib.State{
				Descriptor: target, Kind: mdib.KindNumericMetric,
				Metric: &mdib.MetricState{ActivationState: state},
			})
		},
	}, nil
}

func parseSetComponentState(body *xmlbind.Element) (setRequest, error) {
	target, err := requiredHandle(body)
	if err != nil {
		return setRequest{}, err
	}
	state, _ := body.Attr("ActivationState")
	return setRequest{
		target: target,
		apply: func(tx *mdib.Tx) error {
			return tx.UpdateState(&mdib.State{
				Descriptor: target, Kind: mdib.KindVMD,
				Component: &mdib.ComponentState{ActivationState: state},
			})
		},
	}, nil
}
