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

package soap

import (
	"bytes"
	"encoding/xml"

	"github.com/gosdc/sdc/private/xmlbind"
)

const (
	hdrAction    = "Action"
	hdrMessageID = "MessageID"
	hdrRelatesTo = "RelatesTo"
	hdrTo        = "To"
	hdrReplyTo   = "ReplyTo"
)

// wellKnownAddressing is the set of WS-Addressing header local names this
// codec understands on its own; every other header arriving with
// mustUnderstand="true" yields NotUnderstood unless the caller recognizes
// it itself (dispatch layers that add their own understood headers should
// check MustUnderstand against their own set before calling Decode's
// default policy).
var wellKnownAddressing = map[string]bool{
	hdrAction: true, hdrMessageID: true, hdrRelatesTo: true, hdrTo: true, hdrReplyTo: true,
}

// Encode serializes env to a SOAP 1.2 envelope. Fault takes precedence over
// Body if both happen to be set.
func Encode(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	envStart := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Envelope"}}
	if err := enc.EncodeToken(envStart); err != nil {
		return nil, err
	}

	hdrStart := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Header"}}
	if err := enc.EncodeToken(hdrStart); err != nil {
		return nil, err
	}
	for _, h := range []struct {
		local string
		value string
	}{
		{hdrAction, env.Header.Action},
		{hdrMessageID, env.Header.MessageID},
		{hdrRelatesTo, env.Header.RelatesTo},
		{hdrTo, env.Header.To},
		{hdrReplyTo, env.Header.ReplyTo},
	} {
		if h.value == "" {
			continue
		}
		if err := encodeSimpleHeader(enc, h.local, h.value); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(hdrStart.End()); err != nil {
		return nil, err
	}

	bodyStart := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Body"}}
	if err := enc.EncodeToken(bodyStart); err != nil {
		return nil, err
	}
	switch {
	case env.Fault != nil:
		if err := encodeFault(enc, env.Fault); err != nil {
			return nil, err
		}
	case env.Body != nil:
		if err := xmlbind.WriteElement(enc, env.Body); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(bodyStart.End()); err != nil {
		return nil, err
	}

	if err := enc.EncodeToken(envStart.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeSimpleHeader(enc *xml.Encoder, local, value string) error {
	start := xml.StartElement{Name: xml.Name{Space: NSAddressing, Local: local}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(value)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func encodeFault(enc *xml.Encoder, f *Fault) error {
	start := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Fault"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	codeStart := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Code"}}
	if err := enc.EncodeToken(codeStart); err != nil {
		return err
	}
	if err := encodeSimpleHeader(enc, "Value", "soap:"+string(f.Code)); err != nil {
		return err
	}
	if f.SubCode != "" {
		subStart := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Subcode"}}
		if err := enc.EncodeToken(subStart); err != nil {
			return err
		}
		if err := encodeSimpleHeader(enc, "Value", string(f.SubCode)); err != nil {
			return err
		}
		if err := enc.EncodeToken(subStart.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(codeStart.End()); err != nil {
		return err
	}
	reasonStart := xml.StartElement{Name: xml.Name{Space: NSEnvelope, Local: "Reason"}}
	if err := enc.EncodeToken(reasonStart); err != nil {
		return err
	}
	if err := encodeSimpleHeader(enc, "Text", f.Reason); err != nil {
		return err
	}
	if err := enc.EncodeToken(reasonStart.End()); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// Decode parses a SOAP 1.2 envelope. If a header block is marked
// mustUnderstand="true" and is not one of the WS-Addressing fields this
// codec understands, Decode returns a *Fault{MustUnderstand,
// NotUnderstood} instead of an error — callers check for that with
// errors.As before treating decode failure as a DecodeError.
func Decode(data []byte) (*Envelope, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	env := &Envelope{}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, xmlbind.NewDecodeError(xmlbind.Malformed, "/Envelope", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "Header":
			if fault := decodeHeader(dec, start, &env.Header); fault != nil {
				return nil, fault
			}
		case "Body":
			body, fault, err := decodeBody(dec, start)
			if err != nil {
				return nil, err
			}
			if fault != nil {
				env.Fault = fault
			} else {
				env.Body = body
			}
			return env, nil
		}
	}
}

func decodeHeader(dec *xml.Decoder, start xml.StartElement, h *Header) *Fault {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el, err := xmlbind.ReadElement(dec, t)
			if err != nil {
				return nil
			}
			mustUnderstand := false
			if v, ok := el.Attr("mustUnderstand"); ok {
				mustUnderstand = v == "true" || v == "1"
			}
			switch t.Name.Local {
			case hdrAction:
				h.Action = el.Text
			case hdrMessageID:
				h.MessageID = el.Text
			case hdrRelatesTo:
				h.RelatesTo = el.Text
			case hdrTo:
				h.To = el.Text
			case hdrReplyTo:
				h.ReplyTo = el.Text
			default:
				h.MustUnderstand = append(h.MustUnderstand, t.Name.Local)
				if mustUnderstand && !wellKnownAddressing[t.Name.Local] {
					return NotUnderstood(t.Name.Local)
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func decodeBody(dec *xml.Decoder, start xml.StartElement) (*xmlbind.Element, *Fault, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, xmlbind.NewDecodeError(xmlbind.Malformed, "/Envelope/Body", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el, err := xmlbind.ReadElement(dec, t)
			if err != nil {
				return nil, nil, err
			}
			if t.Name.Local == "Fault" {
				return nil, decodeFaultElement(el), nil
			}
			return el, nil, nil
		case xml.EndElement:
			if t.Name == start.Name {
				return nil, nil, nil
			}
		}
	}
}

func decodeFaultElement(el *xmlbind.Element) *Fault {
	f := &Fault{}
	if code := el.Child("Code"); code != nil {
		if v := code.Child("Value"); v != nil {
			f.Code = Code(trimPrefix(v.Text))
		}
		if sub := code.Child("Subcode"); sub != nil {
			if v := sub.Child("Value"); v != nil {
				f.SubCode = SubCode(trimPrefix(v.Text))
			}
		}
	}
	if reason := el.Child("Reason"); reason != nil {
		if t := reason.Child("Text"); t != nil {
			f.Reason = t.Text
		}
	}
	return f
}

func trimPrefix(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[i+1:]
		}
	}
	return s
}
