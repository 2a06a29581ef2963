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

import "time"

// State is a mutable record associated with a descriptor by handle,
// carrying runtime values (spec.md §3). Context states additionally carry
// Instance, a per-instance handle distinguishing multiple state objects
// owned by the same descriptor.
type State struct {
	Descriptor   Handle
	Instance     MultiStateHandle // empty unless Kind.IsMultiState()
	Kind         Kind
	StateVersion uint64

	Metric    *MetricState
	Operation *OperationState
	Alert     *AlertState
	Context   *ContextState
	Component *ComponentState
	Clock     *ClockState
}

// Key returns the (descriptor, instance) pair this state is addressed by.
func (s *State) Key() StateKey { return stateKey(s.Descriptor, s.Instance) }

// Clone returns a shallow copy suitable for a new version.
func (s *State) Clone() *State {
	cp := *s
	return &cp
}

// MetricState carries the runtime value of a metric (spec.md §3).
type MetricState struct {
	ActivationState string // On | NotRdy | StndBy | Off | Shtdn | Fail
	// Value is populated for Numeric/Enum metrics; String metrics use
	// StringValue instead.
	Value        float64
	HasValue     bool
	StringValue  string
	Validity     string // Vld | Vldated | Ong | Qst | Calib | Inv | Oflw | Uflw | NA
	DeterminationTime time.Time
}

// OperationState carries the runtime value of an operation: whether it can
// currently be invoked.
type OperationState struct {
	OperatingMode   string // Na | Dis | En
	AllowedValues   []string
}

// AlertState carries presence/acknowledgement of an alert (spec.md §3).
type AlertState struct {
	ActivationState string // On | Off | Psd
	Presence        bool   // AlertCondition: currently active
	ActualPriority  string // AlertCondition: Lo | Me | Hi | None
	ActualSignalGenerationDelayMillis uint64
	SystemSignalActivation []SystemSignalActivation // AlertSystem only
}

// SystemSignalActivation pairs a signal manifestation with its current
// activation, carried from the original implementation (SPEC_FULL.md §11).
type SystemSignalActivation struct {
	Manifestation string
	State         string // On | Off | Psd | Lat
}

// ContextState carries association/validity of a context instance (spec.md
// §3: "context association, etc.").
type ContextState struct {
	ContextAssociation string // NotAssoc | Assoc | Dis
	Validator          []string
	Identification     []InstanceIdentifier
}

// InstanceIdentifier is the BICEPS pattern for an external identifier
// (e.g. a patient's hospital-assigned ID).
type InstanceIdentifier struct {
	Root      string
	Extension string
}

// ComponentState carries activation/operating state shared by MDS, VMD,
// Channel, Sco, and Battery descriptors.
type ComponentState struct {
	ActivationState string // On | NotRdy | StndBy | Off | Shtdn | Fail
	OperatingHours  uint32
}

// ClockState carries the runtime clock value (SPEC_FULL.md §11).
type ClockState struct {
	Now          time.Time
	RemoteSync   bool
}
