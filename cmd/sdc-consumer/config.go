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

package main

import "github.com/gosdc/sdc/private/config"

// consumerConfig extends the shared SDC block with the fields only a
// consumer needs: where it listens for incoming reports, and an optional
// fixed provider address that bypasses WS-Discovery probing.
type consumerConfig struct {
	config.SDC
	NotifyAddr   string `toml:"notify_addr,omitempty"`
	ProviderAddr string `toml:"provider_addr,omitempty"`
}

func (c *consumerConfig) InitDefaults() {
	c.SDC.InitDefaults()
	if c.NotifyAddr == "" {
		c.NotifyAddr = ":8081"
	}
}

func (c *consumerConfig) Validate() error {
	if c.NotifyAddr == "" {
		return errEmptyNotifyAddr
	}
	return c.SDC.Validate()
}

type notifyAddrError string

func (e notifyAddrError) Error() string { return string(e) }

const errEmptyNotifyAddr = notifyAddrError("notify_addr must not be empty")
