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

// Package metrics defines narrow Gauge/Counter/Histogram interfaces over
// Prometheus vectors, so components depend on a narrow interface rather than
// on prometheus.CounterVec directly and can be exercised with a fake in
// tests that don't want a real registry.
package metrics

// Gauge can be set to an absolute value or adjusted by a delta.
type Gauge interface {
	With(labelValues ...string) Gauge
	Set(value float64)
	Add(delta float64)
}

// Counter only increases.
type Counter interface {
	With(labelValues ...string) Counter
	Add(delta float64)
}

// Histogram observes a distribution of values.
type Histogram interface {
	With(labelValues ...string) Histogram
	Observe(value float64)
}
