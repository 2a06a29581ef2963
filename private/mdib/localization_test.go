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

package mdib_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosdc/sdc/private/mdib"
)

func TestGetLocalizedTextMatchesLanguage(t *testing.T) {
	texts := []mdib.LocalizedText{
		{Ref: "r1", Lang: "en", Text: "Heart Rate"},
		{Ref: "r1", Lang: "de", Text: "Herzfrequenz"},
	}
	got, ok := mdib.GetLocalizedText(texts, "de")
	require.True(t, ok)
	require.Equal(t, "Herzfrequenz", got.Text)
}

func TestGetLocalizedTextFallsBackToUntagged(t *testing.T) {
	texts := []mdib.LocalizedText{
		{Ref: "r1", Lang: "", Text: "Heart Rate"},
		{Ref: "r1", Lang: "de", Text: "Herzfrequenz"},
	}
	got, ok := mdib.GetLocalizedText(texts, "fr")
	require.True(t, ok)
	require.Equal(t, "Heart Rate", got.Text)
}

func TestGetLocalizedTextNoMatch(t *testing.T) {
	_, ok := mdib.GetLocalizedText(nil, "en")
	require.False(t, ok)
}
