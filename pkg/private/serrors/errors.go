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

// Package serrors provides enhanced errors with structured context.
//
// Errors created with serrors carry key/value context pairs alongside the
// message, support errors.Is/errors.As the way the standard library expects,
// and log as structured objects via zapcore.ObjectMarshaler instead of a flat
// string. All closed error taxonomies in this module (transaction rejection
// reasons, SOAP fault sub-codes, transport/discovery/subscription errors) are
// sentinel values created with New and compared with errors.Is; call sites
// attach per-occurrence context with WithCtx or WrapStr.
package serrors

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxPair struct {
	Key   string
	Value interface{}
}

type errorInfo struct {
	ctx   []ctxPair
	cause error
}

func (e errorInfo) render() string {
	var buf bytes.Buffer
	if len(e.ctx) != 0 {
		buf.WriteString(" ")
		encodeContext(&buf, e.ctx)
	}
	if e.cause != nil {
		fmt.Fprintf(&buf, ": %s", e.cause)
	}
	return buf.String()
}

func (e errorInfo) marshalLogObject(enc zapcore.ObjectEncoder) error {
	if e.cause != nil {
		if m, ok := e.cause.(zapcore.ObjectMarshaler); ok {
			if err := enc.AddObject("cause", m); err != nil {
				return err
			}
		} else {
			enc.AddString("cause", e.cause.Error())
		}
	}
	for _, pair := range e.ctx {
		zap.Any(pair.Key, pair.Value).AddTo(enc)
	}
	return nil
}

func mkErrorInfo(cause error, errCtx ...interface{}) errorInfo {
	n := len(errCtx) / 2
	ctx := make([]ctxPair, n)
	for i := 0; i < n; i++ {
		ctx[i] = ctxPair{Key: fmt.Sprint(errCtx[2*i]), Value: errCtx[2*i+1]}
	}
	sort.Slice(ctx, func(a, b int) bool { return ctx[a].Key < ctx[b].Key })
	return errorInfo{cause: cause, ctx: ctx}
}

// basicError is the concrete type behind every error this package creates.
type basicError struct {
	errorInfo
	msg string
}

func (e *basicError) Error() string {
	var buf bytes.Buffer
	buf.WriteString(e.msg)
	buf.WriteString(e.errorInfo.render())
	return buf.String()
}

func (e *basicError) Unwrap() error {
	return e.cause
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *basicError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	return e.errorInfo.marshalLogObject(enc)
}

// Is reports whether target is the same sentinel: two *basicError values
// with the same message and no cause are considered equal only by identity,
// so sentinels created with New must be compared by the pointer errors.Is
// dereferences to; wrapping via WrapStr/WithCtx preserves that identity
// through Unwrap.
func (e *basicError) Is(target error) bool {
	t, ok := target.(*basicError)
	return ok && t == e
}

// New creates a new sentinel error with the given message and context.
// Prefer package-level "var Err... = serrors.New(...)" declarations so the
// result can be compared with errors.Is at call sites.
func New(msg string, errCtx ...interface{}) error {
	return &basicError{
		errorInfo: mkErrorInfo(nil, errCtx...),
		msg:       msg,
	}
}

// WrapStr returns an error that wraps cause (if non-nil) under msg, with the
// given context. errors.Is(result, cause) is true.
func WrapStr(msg string, cause error, errCtx ...interface{}) error {
	return &basicError{
		errorInfo: mkErrorInfo(cause, errCtx...),
		msg:       msg,
	}
}

// WithCtx attaches context to an existing error without changing its
// message. errors.Is(result, err) is true.
func WithCtx(err error, errCtx ...interface{}) error {
	return WrapStr(err.Error(), err, errCtx...)
}

// List aggregates multiple errors, e.g. validation failures across a
// config's sub-blocks.
type List []error

func (e List) Error() string {
	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return fmt.Sprintf("[ %s ]", strings.Join(s, "; "))
}

// ToError returns nil if the list is empty, so callers can always "return
// errs.ToError()" without a length check.
func (e List) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e List) MarshalLogArray(ae zapcore.ArrayEncoder) error {
	for _, err := range e {
		if m, ok := err.(zapcore.ObjectMarshaler); ok {
			if err := ae.AppendObject(m); err != nil {
				return err
			}
		} else {
			ae.AppendString(err.Error())
		}
	}
	return nil
}

// IsTimeout reports whether err is or wraps a timeout error.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func encodeContext(buf *bytes.Buffer, pairs []ctxPair) {
	buf.WriteString("{")
	for i, p := range pairs {
		fmt.Fprintf(buf, "%s=%v", p.Key, p.Value)
		if i != len(pairs)-1 {
			buf.WriteString("; ")
		}
	}
	buf.WriteString("}")
}
