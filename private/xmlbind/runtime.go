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

package xmlbind

import (
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iancoleman/strcase"
)

// Runtime scopes the binding layer's caches to an explicit object instead of
// a package-level global (SPEC_FULL.md §9 design note: "module-level
// registries ... must be scoped to an explicit Runtime object"). No
// package in the module constructs one; a caller creates it with NewRuntime.
type Runtime struct {
	qnameCache *lru.Cache[reflect.Type, string]
}

// DefaultCacheSize bounds the QName/type-name cache. BICEPS has on the
// order of a few dozen concrete descriptor/state types, so this is
// generous headroom rather than a tuned limit.
const DefaultCacheSize = 256

// NewRuntime builds a Runtime with a bounded type-name cache.
func NewRuntime() *Runtime {
	c, err := lru.New[reflect.Type, string](DefaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// DefaultCacheSize never is.
		panic(err)
	}
	return &Runtime{qnameCache: c}
}

// TypeName returns a schema-style element-local-name for a Go type (e.g.
// NumericMetricDescriptor -> "NumericMetricDescriptor"). Results are memoized per reflect.Type so repeated
// decodes of the same message shape don't re-derive the name.
func (r *Runtime) TypeName(t reflect.Type) string {
	if name, ok := r.qnameCache.Get(t); ok {
		return name
	}
	name := strcase.ToCamel(t.Name())
	r.qnameCache.Add(t, name)
	return name
}
