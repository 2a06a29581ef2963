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

const namespace = "sdc"

// MDIB holds the store's metrics.
type MDIB struct {
	TransactionsCommitted Counter
	TransactionsAborted   Counter
	MdibVersion           Gauge
	CommitLatency         Histogram
}

// NewMDIB registers and returns MDIB store metrics on reg.
func NewMDIB(reg prometheus.Registerer) *MDIB {
	f := promFactory(reg)
	return &MDIB{
		TransactionsCommitted: NewPromCounter(f.counter(
			"mdib_transactions_committed_total", "Committed MDIB transactions.", "kind")),
		TransactionsAborted: NewPromCounter(f.counter(
			"mdib_transactions_aborted_total", "Aborted MDIB transactions.", "kind", "reason")),
		MdibVersion: NewPromGauge(f.gauge(
			"mdib_version", "Current MDIB version.")),
		CommitLatency: NewPromHistogram(f.histogram(
			"mdib_commit_seconds", "Transaction commit latency.")),
	}
}

// Report holds the reporting pipeline's metrics.
type Report struct {
	Sent          Counter
	Dropped       Counter
	SubsActive    Gauge
	SubsUnhealthy Gauge
	QueueDepth    Gauge
}

// NewReport registers and returns reporting pipeline metrics on reg.
func NewReport(reg prometheus.Registerer) *Report {
	f := promFactory(reg)
	return &Report{
		Sent: NewPromCounter(f.counter(
			"report_items_sent_total", "Report items delivered.", "action")),
		Dropped: NewPromCounter(f.counter(
			"report_items_dropped_total", "Report items dropped due to termination.", "reason")),
		SubsActive: NewPromGauge(f.gauge(
			"subscriptions_active", "Active subscriptions.")),
		SubsUnhealthy: NewPromGauge(f.gauge(
			"subscriptions_unhealthy", "Subscriptions with consecutive delivery failures.")),
		QueueDepth: NewPromGauge(f.gauge(
			"subscription_queue_depth", "Per-subscription queue depth.", "subscription")),
	}
}

// Discovery holds the WS-Discovery engine's metrics.
type Discovery struct {
	MessagesSent       Counter
	MessagesReceived   Counter
	DuplicatesDropped  Counter
	EndpointsDiscovered Gauge
}

// NewDiscovery registers and returns discovery engine metrics on reg.
func NewDiscovery(reg prometheus.Registerer) *Discovery {
	f := promFactory(reg)
	return &Discovery{
		MessagesSent: NewPromCounter(f.counter(
			"discovery_messages_sent_total", "Outbound WS-Discovery messages.", "type")),
		MessagesReceived: NewPromCounter(f.counter(
			"discovery_messages_received_total", "Inbound WS-Discovery messages.", "type")),
		DuplicatesDropped: NewPromCounter(f.counter(
			"discovery_duplicates_dropped_total", "Messages dropped by the dedup window.")),
		EndpointsDiscovered: NewPromGauge(f.gauge(
			"discovery_endpoints", "Currently known discovered endpoints.")),
	}
}

// Transport holds the HTTP(S) transport's metrics.
type Transport struct {
	RequestsTotal   Counter
	RequestDuration Histogram
	PoolConnections Gauge
}

// NewTransport registers and returns transport metrics on reg.
func NewTransport(reg prometheus.Registerer) *Transport {
	f := promFactory(reg)
	return &Transport{
		RequestsTotal: NewPromCounter(f.counter(
			"http_requests_total", "HTTP requests handled or issued.", "path", "code")),
		RequestDuration: NewPromHistogram(f.histogram(
			"http_request_seconds", "HTTP request latency.", "path")),
		PoolConnections: NewPromGauge(f.gauge(
			"http_pool_connections", "Open client connections per host.", "host")),
	}
}

type factory struct {
	reg prometheus.Registerer
}

func promFactory(reg prometheus.Registerer) factory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return factory{reg: reg}
}

func (f factory) counter(name, help string, labels ...string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: name, Help: help,
	}, labels)
	f.reg.MustRegister(cv)
	return cv
}

func (f factory) gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: name, Help: help,
	}, labels)
	f.reg.MustRegister(gv)
	return gv
}

func (f factory) histogram(name, help string, labels ...string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: name, Help: help, Buckets: prometheus.DefBuckets,
	}, labels)
	f.reg.MustRegister(hv)
	return hv
}
