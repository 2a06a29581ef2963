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

// Package config provides a uniform pattern for configuration structs:
// every config implements Defaulter (InitDefaults), Validator (Validate),
// and loads/saves as TOML. Nested config blocks compose by embedding.
package config

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is implemented by every configuration struct in this module.
type Config interface {
	Validator
	Defaulter
}

// Validator recursively validates a config's fields.
type Validator interface {
	Validate() error
}

// Defaulter recursively initializes default values for unset fields.
type Defaulter interface {
	InitDefaults()
}

// NoValidator is embedded by configs that never fail validation.
type NoValidator struct{}

func (NoValidator) Validate() error { return nil }

// NoDefaulter is embedded by configs with no defaults to fill in.
type NoDefaulter struct{}

func (NoDefaulter) InitDefaults() {}

// LoadFile reads path as TOML into cfg, then calls InitDefaults and
// Validate.
func LoadFile(path string, cfg Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return err
	}
	cfg.InitDefaults()
	return cfg.Validate()
}

// WriteFile marshals cfg as TOML to path, after calling InitDefaults.
func WriteFile(path string, cfg Config) error {
	cfg.InitDefaults()
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// WriteTo marshals cfg as TOML to w, without touching its defaults; callers
// that want defaults filled in call InitDefaults first.
func WriteTo(w io.Writer, cfg Config) error {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
