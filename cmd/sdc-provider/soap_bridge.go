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

package main

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gosdc/sdc/private/dispatch"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/report"
	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/transport"
	"github.com/gosdc/sdc/private/xmlbind"
)

// soapHandler adapts a Dispatcher to transport.Handler: it decodes the
// envelope, routes by Action, and re-encodes the handler's response or any
// resulting fault as a reply envelope.
func soapHandler(disp *dispatch.Dispatcher) transport.Handler {
	return func(ctx context.Context, body []byte) ([]byte, error) {
		env, err := soap.Decode(body)
		if err != nil {
			var fault *soap.Fault
			if errors.As(err, &fault) {
				return soap.Encode(&soap.Envelope{Fault: fault})
			}
			return nil, err
		}
		if env.Fault != nil {
			return soap.Encode(&soap.Envelope{Fault: env.Fault})
		}

		respBody, err := disp.Dispatch(ctx, env.Header.Action, env.Body)
		if err != nil {
			var fault *soap.Fault
			if errors.As(err, &fault) {
				return soap.Encode(&soap.Envelope{Header: soap.NewReply(env.Header.Action+"Response", env.Header), Fault: fault})
			}
			return nil, err
		}
		return soap.Encode(&soap.Envelope{
			Header: soap.NewReply(env.Header.Action+"Response", env.Header),
			Body:   respBody,
		})
	}
}

// httpReportSender posts reports to a subscription's delivery endpoint
// over plain SOAP-over-HTTP, reusing the same client pool every outbound
// report goes through.
type httpReportSender struct {
	client *transport.Client
}

func (s *httpReportSender) Send(ctx context.Context, sub *report.Subscription, items []report.Item) error {
	for _, item := range items {
		var respBody *xmlbind.Element
		switch payload := item.Payload.(type) {
		case dispatch.InvocationResult:
			respBody = encodeInvocation(payload)
		default:
			changes, _ := item.Payload.([]mdib.EntityChange)
			respBody = encodeReport(item, changes)
		}
		body, err := soap.Encode(&soap.Envelope{
			Header: soap.Header{Action: string(item.Action), To: sub.Endpoint},
			Body:   respBody,
		})
		if err != nil {
			return err
		}
		if _, err := s.client.Post(ctx, sub.Endpoint, string(item.Action), body); err != nil {
			return err
		}
	}
	return nil
}

// encodeInvocation builds the OperationInvokedReport body for one
// OperationState transition (spec.md §4.G, §8 scenario 5).
func encodeInvocation(inv dispatch.InvocationResult) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Local: "ReportPart"}}
	info := &xmlbind.Element{Name: xmlbind.QName{Local: "InvocationInfo"}}
	info.Attrs = append(info.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "TransactionId"}, Value: inv.TransactionID},
		xmlbind.Attr{Name: xmlbind.QName{Local: "InvocationState"}, Value: string(inv.State)},
	)
	if inv.Reason != "" {
		info.Attrs = append(info.Attrs, xmlbind.Attr{Name: xmlbind.QName{Local: "InvocationError"}, Value: inv.Reason})
	}
	el.Children = append(el.Children, info)
	return el
}

// encodeReport builds the report body for one batch of changes: one child
// element per touched state or descriptor, tagged with the MDIB version,
// sequence id, and transaction kind the change belongs to so a consumer's
// mirror can detect sequence changes/version gaps and replay the change
// under the same transaction kind the provider used (spec.md §4.H).
func encodeReport(item report.Item, changes []mdib.EntityChange) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Local: "ReportPart"}}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "MdibVersion"}, Value: strconv.FormatUint(item.MdibVersion, 10)},
		xmlbind.Attr{Name: xmlbind.QName{Local: "SequenceId"}, Value: item.SequenceID},
		xmlbind.Attr{Name: xmlbind.QName{Local: "TxKind"}, Value: string(item.TxKind)},
	)
	for _, c := range changes {
		switch {
		case c.StateAfter != nil:
			el.Children = append(el.Children, encodeChangedState(c.StateAfter))
		case c.DescriptorAfter != nil:
			el.Children = append(el.Children, encodeChangedDescriptor(c.DescriptorAfter))
		case c.DescriptorBefore != nil:
			removed := &xmlbind.Element{Name: xmlbind.QName{Local: string(c.DescriptorBefore.Kind)}}
			removed.Attrs = append(removed.Attrs,
				xmlbind.Attr{Name: xmlbind.QName{Local: "Handle"}, Value: string(c.DescriptorHandle)},
				xmlbind.Attr{Name: xmlbind.QName{Local: "Removed"}, Value: "true"},
			)
			el.Children = append(el.Children, removed)
		}
	}
	return el
}

func encodeChangedState(s *mdib.State) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Local: string(s.Kind) + "State"}}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "DescriptorHandle"}, Value: string(s.Descriptor)},
		xmlbind.Attr{Name: xmlbind.QName{Local: "StateVersion"}, Value: strconv.FormatUint(s.StateVersion, 10)},
	)
	return el
}

func encodeChangedDescriptor(d *mdib.Descriptor) *xmlbind.Element {
	el := &xmlbind.Element{Name: xmlbind.QName{Local: string(d.Kind)}}
	el.Attrs = append(el.Attrs,
		xmlbind.Attr{Name: xmlbind.QName{Local: "Handle"}, Value: string(d.Handle)},
		xmlbind.Attr{Name: xmlbind.QName{Local: "DescriptorVersion"}, Value: strconv.FormatUint(d.DescriptorVersion, 10)},
	)
	return el
}

// subscriptionRegistry binds WS-Eventing Subscribe requests to the report
// pipeline; it is the dispatch-layer glue the generic Dispatcher has no
// built-in notion of, since subscription lifecycle is report's concern, not
// the MDIB transaction discipline's.
type subscriptionRegistry struct {
	pipeline   *report.Pipeline
	defaultTTL time.Duration
	maxQueue   int
}

func newSubscriptionRegistry(p *report.Pipeline, defaultTTL time.Duration, maxQueue int) *subscriptionRegistry {
	return &subscriptionRegistry{pipeline: p, defaultTTL: defaultTTL, maxQueue: maxQueue}
}

// handleSubscribe reads the consumer's notify-to endpoint and requested
// actions from the request body and registers a new subscription.
func (r *subscriptionRegistry) handleSubscribe(ctx context.Context, _ *mdib.Store, body *xmlbind.Element) (*xmlbind.Element, error) {
	endpoint := ""
	if to := body.Child("NotifyTo"); to != nil {
		if addr := to.Child("Address"); addr != nil {
			endpoint = addr.Text
		}
	}
	if endpoint == "" {
		return nil, soap.NewFault(soap.CodeSender, soap.SubCodeInvalidState, "NotifyTo/Address is required")
	}

	var filter []report.Action
	for _, f := range body.AllChildren("Action") {
		filter = append(filter, report.Action(f.Text))
	}

	sub := report.NewSubscription(endpoint, filter, nil, r.defaultTTL, r.maxQueue)
	r.pipeline.Subscribe(ctx, sub)

	resp := &xmlbind.Element{Name: xmlbind.QName{Local: "SubscribeResponse"}}
	resp.Children = append(resp.Children, &xmlbind.Element{
		Name: xmlbind.QName{Local: "SubscriptionId"},
		Text: sub.ID,
	})
	return resp, nil
}
