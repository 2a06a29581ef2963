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

// Kind identifies a descriptor/state's position in the closed BICEPS
// Participant Model type set (spec.md §3).
type Kind string

const (
	KindMDS             Kind = "Mds"
	KindVMD             Kind = "Vmd"
	KindChannel         Kind = "Channel"
	KindSco             Kind = "Sco"
	KindBattery         Kind = "Battery"
	KindClock           Kind = "Clock"
	KindSystemContext   Kind = "SystemContext"

	KindNumericMetric     Kind = "NumericMetric"
	KindStringMetric      Kind = "StringMetric"
	KindEnumStringMetric  Kind = "EnumStringMetric"
	KindRealTimeSampleArrayMetric Kind = "RealTimeSampleArrayMetric"
	KindDistributionSampleArrayMetric Kind = "DistributionSampleArrayMetric"

	KindSetValueOperation    Kind = "SetValueOperation"
	KindSetStringOperation   Kind = "SetStringOperation"
	KindActivateOperation    Kind = "ActivateOperation"
	KindSetContextOperation  Kind = "SetContextStateOperation"
	KindSetAlertOperation    Kind = "SetAlertStateOperation"
	KindSetMetricOperation   Kind = "SetMetricStateOperation"
	KindSetComponentOperation Kind = "SetComponentStateOperation"

	KindAlertSystem    Kind = "AlertSystem"
	KindAlertCondition Kind = "AlertCondition"
	KindAlertSignal    Kind = "AlertSignal"

	KindPatientContext   Kind = "PatientContext"
	KindLocationContext  Kind = "LocationContext"
	KindEnsembleContext  Kind = "EnsembleContext"
	KindWorkflowContext  Kind = "WorkflowContext"
	KindMeansContext     Kind = "MeansContext"
	KindOperatorContext  Kind = "OperatorContext"
)

// IsMetric reports whether k names a metric descriptor kind.
func (k Kind) IsMetric() bool {
	switch k {
	case KindNumericMetric, KindStringMetric, KindEnumStringMetric,
		KindRealTimeSampleArrayMetric, KindDistributionSampleArrayMetric:
		return true
	}
	return false
}

// IsOperation reports whether k names an operation descriptor kind.
func (k Kind) IsOperation() bool {
	switch k {
	case KindSetValueOperation, KindSetStringOperation, KindActivateOperation,
		KindSetContextOperation, KindSetAlertOperation, KindSetMetricOperation,
		KindSetComponentOperation:
		return true
	}
	return false
}

// IsAlert reports whether k names an alert descriptor kind.
func (k Kind) IsAlert() bool {
	switch k {
	case KindAlertSystem, KindAlertCondition, KindAlertSignal:
		return true
	}
	return false
}

// IsContext reports whether k names a multi-state context descriptor kind.
func (k Kind) IsContext() bool {
	switch k {
	case KindSystemContext, KindPatientContext, KindLocationContext,
		KindEnsembleContext, KindWorkflowContext, KindMeansContext, KindOperatorContext:
		return true
	}
	return false
}

// IsMultiState reports whether states of k are addressed by an additional
// per-instance MultiStateHandle (spec.md §3: "Multi-state entities").
func (k Kind) IsMultiState() bool {
	return k.IsContext()
}

// SafetyClassification is the BICEPS safety classification of a descriptor,
// carried through from the original implementation (SPEC_FULL.md §5) but
// absent from spec.md's distillation.
type SafetyClassification string

const (
	SafetyClassInf  SafetyClassification = "Inf"
	SafetyClassMedA SafetyClassification = "MedA"
	SafetyClassMedB SafetyClassification = "MedB"
	SafetyClassMedC SafetyClassification = "MedC"
)
