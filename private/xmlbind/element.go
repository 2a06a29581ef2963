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

// Package xmlbind is the XML binding layer (spec.md §4.A): it maps SDC
// schema types to and from a QName-aware element tree, built on
// encoding/xml's token-stream API (no third-party XML library appears
// anywhere in the retrieved example pack — see DESIGN.md). Unknown
// extension elements are preserved verbatim in an Element so round-trip
// serialization is lossless.
package xmlbind

import (
	"encoding/xml"
	"io"
)

// QName is a namespace-qualified element or attribute name.
type QName struct {
	Space string
	Local string
}

func (q QName) xmlName() xml.Name { return xml.Name{Space: q.Space, Local: q.Local} }

// Attr is an ordered (QName, value) pair. Order is preserved for
// byte-faithful round-tripping modulo namespace prefix aliasing (spec.md
// §8: "Round-trip" testable property).
type Attr struct {
	Name  QName
	Value string
}

// Element is a generic XML tree node. It is the "tree-shaped XML API" the
// rest of the core is built against; the dispatch handlers and the
// binaries' SOAP bridges convert typed BICEPS records to and from Elements.
type Element struct {
	Name     QName
	Attrs    []Attr
	Children []*Element
	// Text is the concatenated character data directly under this element.
	// BICEPS leaf values (e.g. a metric's numeric value) are carried as
	// typed Go fields elsewhere; Text exists so extension content and
	// mixed-content elements round-trip.
	Text string
}

// Attr returns the value of the first attribute named local in any
// namespace, and whether it was present.
func (e *Element) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child named local in any namespace, or nil.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// AllChildren returns every direct child named local in any namespace.
func (e *Element) AllChildren(local string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// ReadElement decodes one element from dec into an Element tree. start is
// the element's start tag, already read from dec by the caller; ReadElement
// consumes tokens up to and including the matching end tag.
func ReadElement(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	el := &Element{Name: QName{Space: start.Name.Space, Local: start.Name.Local}}
	for _, a := range start.Attr {
		el.Attrs = append(el.Attrs, Attr{
			Name:  QName{Space: a.Name.Space, Local: a.Name.Local},
			Value: a.Value,
		})
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return el, nil
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := ReadElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			el.Text += string(t)
		case xml.EndElement:
			return el, nil
		}
	}
}

// WriteElement serializes el (and its subtree) to enc.
func WriteElement(enc *xml.Encoder, el *Element) error {
	start := xml.StartElement{Name: el.Name.xmlName()}
	for _, a := range el.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: a.Name.xmlName(), Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if el.Text != "" {
		if err := enc.EncodeToken(xml.CharData(el.Text)); err != nil {
			return err
		}
	}
	for _, c := range el.Children {
		if err := WriteElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}
