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

import "github.com/gosdc/sdc/pkg/private/serrors"

// Code is the SOAP 1.2 top-level fault code.
type Code string

const (
	CodeSender          Code = "Sender"
	CodeReceiver        Code = "Receiver"
	CodeMustUnderstand  Code = "MustUnderstand"
	CodeVersionMismatch Code = "VersionMismatch"
)

// SubCode is the SDC-specific fault detail layered under Code (spec.md §7).
type SubCode string

const (
	SubCodeNotUnderstood                SubCode = "NotUnderstood"
	SubCodeActionNotSupported            SubCode = "ActionNotSupported"
	SubCodeInvalidHandle                SubCode = "InvalidHandle"
	SubCodeInvalidState                 SubCode = "InvalidState"
	SubCodeOperationInvokedReportMissing SubCode = "OperationInvokedReportMissing"
)

// Fault is a decoded/to-be-encoded SOAP fault.
type Fault struct {
	Code    Code
	SubCode SubCode
	Reason  string
}

func (f *Fault) Error() string {
	if f.SubCode != "" {
		return string(f.Code) + "/" + string(f.SubCode) + ": " + f.Reason
	}
	return string(f.Code) + ": " + f.Reason
}

// ErrFault is the sentinel every *Fault satisfies via errors.Is, so callers
// can test "is this any SOAP fault" without a type switch.
var ErrFault = serrors.New("soap fault")

// Is makes errors.Is(someFault, ErrFault) report true.
func (f *Fault) Is(target error) bool {
	return target == ErrFault
}

// NewFault builds a Fault with the given reason text.
func NewFault(code Code, sub SubCode, reason string) *Fault {
	return &Fault{Code: code, SubCode: sub, Reason: reason}
}

// NotUnderstood builds the fault mandated when a MustUnderstand header is
// not recognized (spec.md §4.B).
func NotUnderstood(headerName string) *Fault {
	return NewFault(CodeMustUnderstand, SubCodeNotUnderstood, "header not understood: "+headerName)
}

// ActionNotSupported builds the fault for an unrecognized SOAP Action
// (SPEC_FULL.md §9, design note "dynamic dispatch on message types").
func ActionNotSupported(action string) *Fault {
	return NewFault(CodeSender, SubCodeActionNotSupported, "action not supported: "+action)
}
