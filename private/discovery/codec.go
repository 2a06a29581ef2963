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
	"strconv"
	"strings"

	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/xmlbind"
)

// WS-Discovery runs SOAP-over-UDP: every Probe/Hello/Bye is itself a SOAP
// envelope (DPWS 1.1), so this codec is a thin layer over (B) rather than a
// separate wire format. AppSequence and the WSD-specific body fields are
// carried as Body children rather than additional SOAP headers, which keeps
// soap.Header limited to the WS-Addressing fields every other component
// uses it for.
func encodeMessage(msg *Message) ([]byte, error) {
	body := &xmlbind.Element{Name: xmlbind.QName{Local: string(msg.Kind)}}
	body.Children = append(body.Children,
		textChild("InstanceId", strconv.FormatUint(msg.Seq.InstanceID, 10)),
		textChild("MessageNumber", strconv.FormatUint(msg.Seq.MessageNumber, 10)),
	)
	if msg.EPR != "" {
		body.Children = append(body.Children, textChild("EndpointReference", msg.EPR))
	}
	if len(msg.Types) > 0 {
		body.Children = append(body.Children, textChild("Types", strings.Join(msg.Types, " ")))
	}
	if len(msg.Scopes) > 0 {
		body.Children = append(body.Children, textChild("Scopes", strings.Join(msg.Scopes, " ")))
	}
	if len(msg.XAddrs) > 0 {
		body.Children = append(body.Children, textChild("XAddrs", strings.Join(msg.XAddrs, " ")))
	}
	if msg.MetadataVersion != 0 {
		body.Children = append(body.Children, textChild("MetadataVersion", strconv.FormatUint(msg.MetadataVersion, 10)))
	}

	env := &soap.Envelope{
		Header: soap.NewRequest(string(msg.Kind), "urn:docs-oasis-open-org:ws-dd:ns:discovery:2009:01", ""),
		Body:   body,
	}
	env.Header.MessageID = msg.MessageID
	return soap.Encode(env)
}

func decodeMessage(data []byte) (*Message, error) {
	env, err := soap.Decode(data)
	if err != nil {
		return nil, err
	}
	if env.Body == nil {
		return nil, xmlbind.NewDecodeError(xmlbind.Malformed, "/Envelope/Body", nil)
	}
	msg := &Message{
		Kind:      MessageKind(env.Body.Name.Local),
		MessageID: env.Header.MessageID,
	}
	if v := env.Body.Child("InstanceId"); v != nil {
		msg.Seq.InstanceID, _ = strconv.ParseUint(v.Text, 10, 64)
	}
	if v := env.Body.Child("MessageNumber"); v != nil {
		msg.Seq.MessageNumber, _ = strconv.ParseUint(v.Text, 10, 64)
	}
	if v := env.Body.Child("EndpointReference"); v != nil {
		msg.EPR = v.Text
	}
	if v := env.Body.Child("Types"); v != nil {
		msg.Types = strings.Fields(v.Text)
	}
	if v := env.Body.Child("Scopes"); v != nil {
		msg.Scopes = strings.Fields(v.Text)
	}
	if v := env.Body.Child("XAddrs"); v != nil {
		msg.XAddrs = strings.Fields(v.Text)
	}
	if v := env.Body.Child("MetadataVersion"); v != nil {
		msg.MetadataVersion, _ = strconv.ParseUint(v.Text, 10, 64)
	}
	return msg, nil
}

func textChild(local, text string) *xmlbind.Element {
	return &xmlbind.Element{Name: xmlbind.QName{Local: local}, Text: text}
}
