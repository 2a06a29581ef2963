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

import "github.com/gosdc/sdc/private/xmlbind"

// Descriptor describes what a thing is; it is immutable per version
// (spec.md §3). At most one of the Kind-specific payload fields below is
// populated, matching Kind; kinds without a payload type (MDS, for example)
// leave all of them nil.
type Descriptor struct {
	Handle               Handle
	Kind                 Kind
	ParentHandle         Handle // empty only for the root MDS
	DescriptorVersion    uint64
	SafetyClassification SafetyClassification
	Type                 *CodedValue

	// Extension preserves unknown/vendor XML content verbatim so
	// export/import round-trips losslessly (spec.md §4.A).
	Extension *xmlbind.Element

	// Texts carries this descriptor's human-readable name/description in
	// every supported language (SPEC_FULL.md §11 "Localized text").
	Texts []LocalizedText

	Metric    *MetricDescriptor
	Operation *OperationDescriptor
	Alert     *AlertDescriptor
	Context   *ContextDescriptor
	Clock     *ClockDescriptor
}

// Clone returns a shallow copy suitable for a new version: payload pointers
// are shared until one of them is actually replaced by a writer, consistent
// with "immutable-per-version" (a writer never mutates a Descriptor in
// place; it builds a new one and replaces the map entry).
func (d *Descriptor) Clone() *Descriptor {
	cp := *d
	return &cp
}

// CodedValue is the BICEPS pattern for a coded clinical concept (a code plus
// optional coding system), used for Descriptor.Type and similar fields.
type CodedValue struct {
	Code         string
	CodingSystem string
}

// MetricDescriptor carries the schema-defined attributes of a Metric
// descriptor (spec.md §3: Numeric, String, Enum, RealTimeSample,
// Distribution).
type MetricDescriptor struct {
	Unit            CodedValue
	MetricAvailability string // Cont | Intr
	MetricCategory     string // Msrmt | Clc | Set | Preset | Rcmm | Unspec
	// MinValue/MaxValue bound NumericMetric values when HasRange is set;
	// with HasRange false the metric is unbounded. The store does not check
	// state values against this range.
	HasRange bool
	MinValue float64
	MaxValue float64
	// AllowedValue is the closed set for EnumStringMetric descriptors.
	AllowedValue []string
}

// Settable reports whether a SetValue/SetString request against this
// metric is something other than a malformed request: only Set and Preset
// categories accept externally driven values, while Msrmt/Clc/Rcmm/Unspec
// metrics are read-only and reject one with InvocationError.InvalidValue
// (spec.md §4.G, §8 scenario 5).
func (m *MetricDescriptor) Settable() bool {
	return m.MetricCategory == "Set" || m.MetricCategory == "Preset"
}

// OperationDescriptor carries the schema-defined attributes of an Operation
// descriptor (Set, Activate, SetContext, …).
type OperationDescriptor struct {
	// OperationTarget is the handle of the entity this operation mutates
	// (SPEC_FULL.md §11: implicit in spec.md, made explicit here).
	OperationTarget Handle
	// MaxTimeToFinishMillis is the declared upper bound on how long a
	// Wait/Start invocation runs; the dispatcher does not enforce it.
	MaxTimeToFinishMillis uint64
	Retriggerable         bool
}

// AlertDescriptor carries the schema-defined attributes of an Alert
// descriptor (System, Condition, Signal).
type AlertDescriptor struct {
	// Kind-specific fields; populated according to the enclosing
	// Descriptor.Kind.
	ConditionKind         string // Phy | Tec | Oth (AlertCondition only)
	SignalManifestation   string // Vis | Aud | Tan | Oth (AlertSignal only)
	DefaultConditionGenerationDelayMillis uint64
}

// ContextDescriptor carries the schema-defined attributes shared by all
// context descriptor kinds (System, Patient, Location, Ensemble, Workflow,
// Means, Operator).
type ContextDescriptor struct{}

// ClockDescriptor carries RemoteSync/Accuracy/CriticalUse (SPEC_FULL.md
// §11: present in the original, dropped from spec.md's distillation).
type ClockDescriptor struct {
	RemoteSync  bool
	Accuracy    float64
	CriticalUse bool
}
