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

package mdib

import "github.com/gosdc/sdc/pkg/private/serrors"

// Transaction rejection reasons (spec.md §4.E, §7). Each is a sentinel
// compared with errors.Is; TransactionError wraps one with per-occurrence
// context.
var (
	ErrUnknownHandle      = serrors.New("unknown handle")
	ErrHandleCollision    = serrors.New("handle collision")
	ErrTypeMismatch       = serrors.New("type mismatch")
	ErrInvariantViolation = serrors.New("invariant violation")
	ErrWrongKind          = serrors.New("entity not governed by this transaction kind")
)

// TransactionError wraps one of the sentinels above with context. Commit
// never applies a partial transaction: the first rejection aborts the
// whole Tx (spec.md §4.E, §8 Atomicity).
func TransactionError(sentinel error, errCtx ...interface{}) error {
	return serrors.WithCtx(sentinel, errCtx...)
}
