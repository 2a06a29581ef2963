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

package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewPromGauge wraps a prometheus gauge vector as a Gauge. Returns a nil
// Gauge if gv is nil; calling With/Set/Add on that nil Gauge panics.
func NewPromGauge(gv *prometheus.GaugeVec) Gauge {
	if gv == nil {
		return nil
	}
	return &gauge{gv: gv}
}

// NewPromCounter wraps a prometheus counter vector as a Counter.
func NewPromCounter(cv *prometheus.CounterVec) Counter {
	if cv == nil {
		return nil
	}
	return &counter{cv: cv}
}

// NewPromHistogram wraps a prometheus histogram vector as a Histogram.
func NewPromHistogram(hv *prometheus.HistogramVec) Histogram {
	if hv == nil {
		return nil
	}
	return &histogram{hv: hv}
}

type labelValues []string

func (lvs labelValues) with(more ...string) labelValues {
	if len(more)%2 != 0 {
		more = append(more, "unknown")
	}
	out := make(labelValues, len(lvs), len(lvs)+len(more))
	copy(out, lvs)
	return append(out, more...)
}

func (lvs labelValues) asLabels() prometheus.Labels {
	labels := make(prometheus.Labels, len(lvs)/2)
	for i := 0; i < len(lvs); i += 2 {
		labels[lvs[i]] = lvs[i+1]
	}
	return labels
}

type gauge struct {
	gv  *prometheus.GaugeVec
	lvs labelValues
}

func (g *gauge) With(labelValues ...string) Gauge {
	return &gauge{gv: g.gv, lvs: g.lvs.with(labelValues...)}
}
func (g *gauge) Set(v float64) { g.gv.With(g.lvs.asLabels()).Set(v) }
func (g *gauge) Add(v float64) { g.gv.With(g.lvs.asLabels()).Add(v) }

type counter struct {
	cv  *prometheus.CounterVec
	lvs labelValues
}

func (c *counter) With(labelValues ...string) Counter {
	return &counter{cv: c.cv, lvs: c.lvs.with(labelValues...)}
}
func (c *counter) Add(v float64) { c.cv.With(c.lvs.asLabels()).Add(v) }

type histogram struct {
	hv  *prometheus.HistogramVec
	lvs labelValues
}

func (h *histogram) With(labelValues ...string) Histogram {
	return &histogram{hv: h.hv, lvs: h.lvs.with(labelValues...)}
}
func (h *histogram) Observe(v float64) { h.hv.With(h.lvs.asLabels()).Observe(v) }
