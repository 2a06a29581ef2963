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

	"go.uber.org/zap"

	"github.com/gosdc/sdc/pkg/log"
	"github.com/gosdc/sdc/private/mdib"
	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/transport"
	"github.com/gosdc/sdc/private/xmlbind"
)

// reportListener is the consumer-side notify-to endpoint: a transport.Server
// handler that decodes each delivered report into a TransactionReport and
// hands it to whatever Mirror is currently subscribed. It fans the decoded
// report out to a single channel, matching the shape consumer.SubscribeFunc
// promises its caller.
type reportListener struct {
	reports chan *mdib.TransactionReport
}

func newReportListener() *reportListener {
	return &reportListener{reports: make(chan *mdib.TransactionReport, 64)}
}

func (l *reportListener) channel() <-chan *mdib.TransactionReport {
	return l.reports
}

// handler returns the transport.Handler to register on the notify-to path.
func (l *reportListener) handler() transport.Handler {
	return func(ctx context.Context, body []byte) ([]byte, error) {
		env, err := soap.Decode(body)
		if err != nil {
			return nil, err
		}
		if env.Fault != nil || env.Body == nil {
			return soap.Encode(&soap.Envelope{Header: soap.NewReply("ReportAck", env.Header)})
		}
		tr := decodeReportPart(env.Body)
		select {
		case l.reports <- tr:
		default:
			log.FromCtx(ctx).Warn("report listener backlog full, dropping report",
				zap.Uint64("mdib_version", tr.MdibVersion))
		}
		return soap.Encode(&soap.Envelope{Header: soap.NewReply("ReportAck", env.Header)})
	}
}

func decodeReportPart(el *xmlbind.Element) *mdib.TransactionReport {
	version, _ := el.Attr("MdibVersion")
	v, _ := strconv.ParseUint(version, 10, 64)
	seq, _ := el.Attr("SequenceId")
	kind, _ := el.Attr("TxKind")

	tr := &mdib.TransactionReport{
		Kind:        mdib.TransactionKind(kind),
		MdibVersion: v,
		SequenceID:  seq,
	}
	for _, child := range el.Children {
		tr.Changes = append(tr.Changes, decodeEntityChange(child))
	}
	return tr
}

func decodeEntityChange(el *xmlbind.Element) mdib.EntityChange {
	if handle, ok := el.Attr("DescriptorHandle"); ok {
		return mdib.EntityChange{DescriptorHandle: mdib.Handle(handle), StateAfter: decodeState(el)}
	}
	handle, _ := el.Attr("Handle")
	if removed, _ := el.Attr("Removed"); removed == "true" {
		return mdib.EntityChange{
			DescriptorHandle: mdib.Handle(handle),
			DescriptorBefore: &mdib.Descriptor{Handle: mdib.Handle(handle), Kind: mdib.Kind(el.Name.Local)},
			Removed:          true,
		}
	}
	return mdib.EntityChange{
		DescriptorHandle: mdib.Handle(handle),
		DescriptorAfter:  decodeDescriptorTree(el, "")[0],
	}
}
