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
	"strconv"
	"strings"

	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/report"
	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/transport"
	"github.com/gosdc/sdc/private/xmlbind"
)

// soapGetMdib implements consumer.GetMdibFunc over a pooled transport
// client: one GetMdib round trip for the descriptor tree, one GetMdState
// round trip for the current states.
func soapGetMdib(client *transport.Client) func(ctx context.Context, xaddr string) (string, string, []*mdib.Descriptor, []*mdib.State, uint64, error) {
	return func(ctx context.Context, xaddr string) (string, string, []*mdib.Descriptor, []*mdib.State, uint64, error) {
		mdibEl, header, err := postAction(ctx, client, xaddr, string(requestGetMdib))
		if err != nil {
			return "", "", nil, nil, 0, err
		}
		_ = header
		seq, _ := mdibEl.Attr("SequenceId")
		instance, _ := mdibEl.Attr("InstanceId")
		version, _ := mdibEl.Attr("MdibVersion")
		mdibVersion, _ := strconv.ParseUint(version, 10, 64)

		var descriptors []*mdib.Descriptor
		for _, child := range mdibEl.Children {
			descriptors = append(descriptors, decodeDescriptorTree(child, "")...)
		}

		stateEl, _, err := postAction(ctx, client, xaddr, string(requestGetMdState))
		if err != nil {
			return "", "", nil, nil, 0, err
		}
		var states []*mdib.State
		for _, child := range stateEl.Children {
			states = append(states, decodeState(child))
		}
		return seq, instance, descriptors, states, mdibVersion, nil
	}
}

type requestAction string

const (
	requestGetMdib    requestAction = "GetMdib"
	requestGetMdState requestAction = "GetMdState"
	requestSubscribe  requestAction = "Subscribe"
)

func postAction(ctx context.Context, client *transport.Client, xaddr string, action string) (*xmlbind.Element, soap.Header, error) {
	reqHdr := soap.NewRequest(action, xaddr, "")
	body, err := soap.Encode(&soap.Envelope{Header: reqHdr, Body: &xmlbind.Element{Name: xmlbind.QName{Local: action}}})
	if err != nil {
		return nil, soap.Header{}, err
	}
	raw, err := client.Post(ctx, xaddr, action, body)
	if err != nil {
		return nil, soap.Header{}, err
	}
	env, err := soap.Decode(raw)
	if err != nil {
		return nil, soap.Header{}, err
	}
	if env.Fault != nil {
		return nil, soap.Header{}, env.Fault
	}
	return env.Body, env.Header, nil
}

func decodeDescriptorTree(el *xmlbind.Element, parent mdib.Handle) []*mdib.Descriptor {
	handle, _ := el.Attr("Handle")
	version, _ := el.Attr("DescriptorVersion")
	v, _ := strconv.ParseUint(version, 10, 64)
	d := &mdib.Descriptor{
		Handle:            mdib.Handle(handle),
		Kind:              mdib.Kind(el.Name.Local),
		ParentHandle:      parent,
		DescriptorVersion: v,
	}
	out := []*mdib.Descriptor{d}
	for _, child := range el.Children {
		if child.Name.Local == "Text" {
			d.Texts = append(d.Texts, decodeLocalizedText(child))
			continue
		}
		out = append(out, decodeDescriptorTree(child, d.Handle)...)
	}
	return out
}

func decodeLocalizedText(el *xmlbind.Element) mdib.LocalizedText {
	ref, _ := el.Attr("Ref")
	lang, _ := el.Attr("Lang")
	version, _ := el.Attr("Version")
	v, _ := strconv.ParseUint(version, 10, 64)
	return mdib.LocalizedText{Ref: ref, Lang: lang, Version: v, Text: el.Text}
}

func decodeState(el *xmlbind.Element) *mdib.State {
	handle, _ := el.Attr("DescriptorHandle")
	version, _ := el.Attr("StateVersion")
	v, _ := strconv.ParseUint(version, 10, 64)
	instance, _ := el.Attr("Handle")
	kind := mdib.Kind(strings.TrimSuffix(el.Name.Local, "State"))
	return &mdib.State{
		Descriptor:   mdib.Handle(handle),
		Instance:     mdib.MultiStateHandle(instance),
		Kind:         kind,
		StateVersion: v,
	}
}

// soapSubscribe implements consumer.SubscribeFunc: it posts a Subscribe
// request naming notifyAddr as the delivery endpoint, then hands back the
// channel the local report listener feeds as deliveries arrive.
func soapSubscribe(client *transport.Client, listener *reportListener, notifyURL string) func(ctx context.Context, xaddr string, filter []report.Action) (<-chan *mdib.TransactionReport, error) {
	return func(ctx context.Context, xaddr string, filter []report.Action) (<-chan *mdib.TransactionReport, error) {
		reqBody := &xmlbind.Element{Name: xmlbind.QName{Local: string(requestSubscribe)}}
		notifyTo := &xmlbind.Element{Name: xmlbind.QName{Local: "NotifyTo"}}
		notifyTo.Children = append(notifyTo.Children, &xmlbind.Element{Name: xmlbind.QName{Local: "Address"}, Text: notifyURL})
		reqBody.Children = append(reqBody.Children, notifyTo)
		for _, a := range filter {
			reqBody.Children = append(reqBody.Children, &xmlbind.Element{Name: xmlbind.QName{Local: "Action"}, Text: string(a)})
		}
		hdr := soap.NewRequest(string(requestSubscribe), xaddr, notifyURL)
		body, err := soap.Encode(&soap.Envelope{Header: hdr, Body: reqBody})
		if err != nil {
			return nil, err
		}
		raw, err := client.Post(ctx, xaddr, string(requestSubscribe), body)
		if err != nil {
			return nil, err
		}
		env, err := soap.Decode(raw)
		if err != nil {
			return nil, err
		}
		if env.Fault != nil {
			return nil, env.Fault
		}
		return listener.channel(), nil
	}
}
