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

// state is the internal, structurally-shared tree a Store publishes. A
// commit never mutates a live state in place: it builds a new state value
// with the touched entries replaced and an otherwise-shared (copied index,
// shared leaves) set of maps, then atomically swaps the Store's root
// pointer. Outstanding Snapshot values keep referencing their own state
// value, so readers are never blocked by or invalidated by a later commit
// (spec.md §4.E "Concurrency discipline"; SPEC_FULL.md §6.E).
type state struct {
	mdibVersion uint64
	sequenceID  string
	instanceID  string

	descriptors map[Handle]*Descriptor
	states      map[StateKey]*State
	children    map[Handle][]Handle // parent handle -> direct child handles
}

func newEmptyState(sequenceID, instanceID string) *state {
	return &state{
		sequenceID:  sequenceID,
		instanceID:  instanceID,
		descriptors: map[Handle]*Descriptor{},
		states:      map[StateKey]*State{},
		children:    map[Handle][]Handle{},
	}
}

// clone returns a shallow copy of the index maps (an O(n) copy in the
// number of entities, which is the pragmatic reading of "structural
// sharing" for an MDIB whose entity count is in the hundreds, not the
// millions). Descriptor/State leaf values are not copied here; a writer
// replaces only the specific entries it touches.
func (s *state) clone() *state {
	cp := &state{
		mdibVersion: s.mdibVersion,
		sequenceID:  s.sequenceID,
		instanceID:  s.instanceID,
		descriptors: make(map[Handle]*Descriptor, len(s.descriptors)),
		states:      make(map[StateKey]*State, len(s.states)),
		children:    make(map[Handle][]Handle, len(s.children)),
	}
	for k, v := range s.descriptors {
		cp.descriptors[k] = v
	}
	for k, v := range s.states {
		cp.states[k] = v
	}
	for k, v := range s.children {
		cc := make([]Handle, len(v))
		copy(cc, v)
		cp.children[k] = cc
	}
	return cp
}

// Snapshot is an immutable, handle-addressable view of an MDIB pinned to
// one MDIB version (spec.md §4.E: "read_snapshot() -> Snapshot").
type Snapshot struct {
	s *state
}

// MdibVersion returns the MDIB version this snapshot is pinned to.
func (snap Snapshot) MdibVersion() uint64 { return snap.s.mdibVersion }

// SequenceID returns the opaque sequence id identifying this continuous
// life of the MDIB (spec.md §3).
func (snap Snapshot) SequenceID() string { return snap.s.sequenceID }

// InstanceID returns the MDIB's instance id.
func (snap Snapshot) InstanceID() string { return snap.s.instanceID }

// Descriptor returns the descriptor for handle, if present.
func (snap Snapshot) Descriptor(h Handle) (*Descriptor, bool) {
	d, ok := snap.s.descriptors[h]
	return d, ok
}

// State returns the state for key, if present.
func (snap Snapshot) State(key StateKey) (*State, bool) {
	st, ok := snap.s.states[key]
	return st, ok
}

// StatesOf returns every state instance owned by descriptor h (more than
// one only for multi-state/context descriptors).
func (snap Snapshot) StatesOf(h Handle) []*State {
	var out []*State
	for k, v := range snap.s.states {
		if k.Descriptor == h {
			out = append(out, v)
		}
	}
	return out
}

// Children returns the direct child handles of h.
func (snap Snapshot) Children(h Handle) []Handle {
	return snap.s.children[h]
}

// Descriptors returns every descriptor in the snapshot. Callers must not
// mutate the returned map.
func (snap Snapshot) Descriptors() map[Handle]*Descriptor {
	return snap.s.descriptors
}

// MDSHandle returns the handle of the root MDS descriptor, if the MDIB has
// been seeded.
func (snap Snapshot) MDSHandle() (Handle, bool) {
	for h, d := range snap.s.descriptors {
		if d.Kind == KindMDS && d.ParentHandle == "" {
			return h, true
		}
	}
	return "", false
}
