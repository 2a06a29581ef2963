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

package xmlbind

import "github.com/gosdc/sdc/pkg/private/serrors"

// DecodeErrorKind is the closed set of reasons a decode can fail (spec.md
// §4.A, §7).
type DecodeErrorKind string

const (
	// SchemaViolation means a numeric or enumerated value failed its
	// schema-defined range/membership check on construction.
	SchemaViolation DecodeErrorKind = "SchemaViolation"
	// Malformed means the XML token stream itself could not be parsed.
	Malformed DecodeErrorKind = "Malformed"
)

// ErrDecode is the sentinel compared with errors.Is; call sites attach
// Kind/XPath context with NewDecodeError.
var ErrDecode = serrors.New("xml decode error")

// NewDecodeError builds a DecodeError-flavored error for kind at xpath.
func NewDecodeError(kind DecodeErrorKind, xpath string, cause error) error {
	return serrors.WrapStr("decode error", ErrDecode,
		"kind", string(kind), "xpath", xpath, "cause", causeString(cause))
}

func causeString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
