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

package config

import (
	"time"

	"github.com/gosdc/sdc/pkg/log"
)

// TLSMode selects the transport's TLS posture.
type TLSMode string

const (
	TLSOff    TLSMode = "off"
	TLSServer TLSMode = "server"
	TLSMutual TLSMode = "mutual"
)

// SDC is the top-level configuration shared by both cmd/sdc-provider and
// cmd/sdc-consumer. It enumerates exactly the fields spec.md §6 names.
type SDC struct {
	// InterfaceBinding names the network interface discovery and the HTTP
	// server bind to. Empty means "all interfaces".
	InterfaceBinding string `toml:"interface_binding,omitempty"`
	// MulticastTTL is the TTL set on outbound WS-Discovery multicast
	// packets.
	MulticastTTL int `toml:"multicast_ttl,omitempty"`
	// DiscoveryMaxWait is the initial delay before the first Probe/Hello
	// repetition.
	DiscoveryMaxWait Duration `toml:"discovery_max_wait,omitempty"`
	// DupSuppressionWindow bounds how long a (AppSequence, MessageID) pair
	// is remembered for WS-Discovery deduplication.
	DupSuppressionWindow Duration `toml:"dup_suppression_window,omitempty"`
	// SubscriptionDefaultTTL is the expiration granted to a subscription
	// that does not request one explicitly.
	SubscriptionDefaultTTL Duration `toml:"subscription_default_ttl,omitempty"`
	// SubscriptionMaxQueue bounds the per-subscription report queue.
	SubscriptionMaxQueue int `toml:"subscription_max_queue,omitempty"`
	// PeriodicReportInterval is the flush interval for periodic reports.
	PeriodicReportInterval Duration `toml:"periodic_report_interval,omitempty"`
	// TLSMode selects off/server/mutual.
	TLSMode TLSMode `toml:"tls_mode,omitempty"`
	// MaxConcurrentTransactions bounds in-flight MDIB transactions. Per
	// spec.md §4.E the store is single-writer; values above 1 are clamped.
	MaxConcurrentTransactions int `toml:"max_concurrent_transactions,omitempty"`

	Logging log.Config `toml:"log,omitempty"`
}

// Duration is a time.Duration that (de)serializes from TOML as a Go
// duration string ("5s", "1h"), matching the teacher's config idiom of
// human-readable durations in sample files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// LoggingConfig returns the logging sub-block, letting the launcher harness
// pull it out of the application-specific config without a type switch.
func (c *SDC) LoggingConfig() log.Config {
	return c.Logging
}

// InitDefaults fills in the defaults spec.md §6 specifies.
func (c *SDC) InitDefaults() {
	if c.MulticastTTL == 0 {
		c.MulticastTTL = 1
	}
	if c.DiscoveryMaxWait.Duration == 0 {
		c.DiscoveryMaxWait = Duration{5 * time.Second}
	}
	if c.DupSuppressionWindow.Duration == 0 {
		c.DupSuppressionWindow = Duration{10 * time.Second}
	}
	if c.SubscriptionDefaultTTL.Duration == 0 {
		c.SubscriptionDefaultTTL = Duration{3600 * time.Second}
	}
	if c.SubscriptionMaxQueue == 0 {
		c.SubscriptionMaxQueue = 1024
	}
	if c.PeriodicReportInterval.Duration == 0 {
		c.PeriodicReportInterval = Duration{1 * time.Second}
	}
	if c.TLSMode == "" {
		c.TLSMode = TLSOff
	}
	if c.MaxConcurrentTransactions == 0 {
		c.MaxConcurrentTransactions = 1
	}
	c.Logging.InitDefaults()
}

// Validate enforces the invariants spec.md §4.E/§5 require.
func (c *SDC) Validate() error {
	switch c.TLSMode {
	case TLSOff, TLSServer, TLSMutual:
	default:
		return invalidTLSMode(c.TLSMode)
	}
	if c.MaxConcurrentTransactions != 1 {
		// The store is single-writer by design (spec.md §4.E); clamp
		// rather than reject, since a caller raising this to "parallelize"
		// writes is a misunderstanding of the model, not a config error.
		c.MaxConcurrentTransactions = 1
	}
	if c.SubscriptionMaxQueue <= 0 {
		return invalidQueueSize(c.SubscriptionMaxQueue)
	}
	return c.Logging.Validate()
}

type invalidTLSMode TLSMode

func (e invalidTLSMode) Error() string { return "invalid tls_mode: " + string(e) }

type invalidQueueSize int

func (e invalidQueueSize) Error() string {
	return "subscription_max_queue must be positive"
}
