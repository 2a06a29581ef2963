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

import "fmt"

// ValidateRange checks that value falls within [min, max] and returns a
// DecodeError{SchemaViolation} at xpath otherwise (spec.md §4.A: "Numeric
// ... types validate against schema ranges on construction").
func ValidateRange(xpath string, value, min, max float64) error {
	if value < min || value > max {
		return NewDecodeError(SchemaViolation, xpath,
			fmt.Errorf("value %v out of range [%v, %v]", value, min, max))
	}
	return nil
}

// ValidateEnum checks that value is a member of allowed and returns a
// DecodeError{SchemaViolation} at xpath otherwise.
func ValidateEnum(xpath, value string, allowed []string) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return NewDecodeError(SchemaViolation, xpath,
		fmt.Errorf("value %q not in allowed set %v", value, allowed))
}
