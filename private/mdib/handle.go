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

// Package mdib implements the Medical Device Information Base: a typed,
// versioned, hierarchical description of a device and its runtime state,
// plus the transactional engine that mutates it (spec.md §3, §4.E).
package mdib

// Handle is a stable string identifier, unique within one MDIB, that is
// never reused within the lifetime of a provider instance.
type Handle string

// MultiStateHandle distinguishes state instances owned by the same
// descriptor (context states: one PatientContext descriptor can own many
// PatientContextState instances, each with its own handle).
type MultiStateHandle string

// StateKey addresses exactly one state: the descriptor it belongs to, plus
// an optional multi-state instance handle (empty for single-state
// descriptors).
type StateKey struct {
	Descriptor Handle
	Instance   MultiStateHandle
}

func stateKey(h Handle, inst MultiStateHandle) StateKey {
	return StateKey{Descriptor: h, Instance: inst}
}
