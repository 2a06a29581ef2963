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

package log

import (
	"context"

	"go.uber.org/zap"
)

type loggerContextKey struct{}

// CtxWith returns a context derived from ctx with logger attached. A logger
// already attached to ctx is overwritten.
func CtxWith(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromCtx returns the logger embedded in ctx, or the root logger if none was
// attached. Never returns nil.
func FromCtx(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerContextKey{}).(Logger); ok {
			return l
		}
	}
	return Root()
}

// WithFields returns a context whose logger has the given fields attached,
// along with the derived logger itself for immediate use.
func WithFields(ctx context.Context, fields ...zap.Field) (context.Context, Logger) {
	l := FromCtx(ctx).With(fields...)
	return CtxWith(ctx, l), l
}
