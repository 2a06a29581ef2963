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

// EntityChange describes one entity's before/after state in a committed
// transaction, with enough adjacency information for a consumer mirror to
// replay structural changes (spec.md §4.E: "Description-modification
// specifics").
type EntityChange struct {
	DescriptorHandle Handle
	Instance         MultiStateHandle // non-empty only for context states

	// Before/After are nil when the entity did not exist/no longer exists
	// (pure addition / pure removal).
	DescriptorBefore *Descriptor
	DescriptorAfter  *Descriptor
	StateBefore      *State
	StateAfter       *State

	// Removed is true when this entry represents a removal (of a
	// descriptor and everything it owned, or of one context state
	// instance).
	Removed bool
}

// TransactionReport describes one committed transaction: its kind, the
// MDIB version it produced, and the per-entity changes (spec.md §4.E
// step 3). The reporting pipeline (private/report) consumes exactly one of
// these per commit, in MDIB-version order.
type TransactionReport struct {
	Kind        TransactionKind
	MdibVersion uint64
	SequenceID  string
	Changes     []EntityChange
}

// Handles returns the distinct descriptor handles touched by the report,
// in no particular order; used by the reporting pipeline to build
// action-specific slices without re-walking Changes repeatedly.
func (r *TransactionReport) Handles() []Handle {
	seen := make(map[Handle]bool, len(r.Changes))
	out := make([]Handle, 0, len(r.Changes))
	for _, c := range r.Changes {
		if !seen[c.DescriptorHandle] {
			seen[c.DescriptorHandle] = true
			out = append(out, c.DescriptorHandle)
		}
	}
	return out
}
