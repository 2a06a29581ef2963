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

// LocalizedText is one language-tagged rendering of a human-readable string
// attached to a descriptor (SPEC_FULL.md §11: present throughout the
// original BICEPS descriptor model, dropped from spec.md's distillation).
// Ref groups every translation of the same underlying text together; a
// descriptor typically carries one LocalizedText per supported language
// plus, optionally, one with an empty Lang as a locale-independent
// fallback.
type LocalizedText struct {
	Ref     string
	Lang    string
	Version uint64
	Text    string
}

// GetLocalizedText returns the entry in texts matching lang, or the first
// entry with no explicit language (a device's fallback text) if none
// matches. It reports false if texts has nothing usable for lang.
func GetLocalizedText(texts []LocalizedText, lang string) (LocalizedText, bool) {
	var fallback LocalizedText
	haveFallback := false
	for _, t := range texts {
		if t.Lang == lang {
			return t, true
		}
		if t.Lang == "" && !haveFallback {
			fallback = t
			haveFallback = true
		}
	}
	return fallback, haveFallback
}
