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

// providerConfig extends the shared SDC block with the fields only a
// provider needs: where to listen, and the endpoint reference it announces
// itself as via WS-Discovery.
type providerConfig struct {
	config.SDC
	Addr string `toml:"addr,omitempty"`
	EPR  string `toml:"epr,omitempty"`
}

func (c *providerConfig) InitDefaults() {
	c.SDC.InitDefaults()
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func (c *providerConfig) Validate() error {
	if c.Addr == "" {
		return errEmptyAddr
	}
	return c.SDC.Validate()
}

type addrError string

func (e addrError) Error() string { return string(e) }

const errEmptyAddr = addrError("addr must not be empty")
