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

package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	msg := &Message{
		Kind:            KindHello,
		Seq:             AppSequence{InstanceID: 7, MessageNumber: 3},
		MessageID:       "urn:uuid:test",
		EPR:             "urn:uuid:device-1",
		Types:           []string{"dpws:Device", "mdpws:MedicalDevice"},
		Scopes:          []string{"sdc.ctxt.location:/x/y"},
		XAddrs:          []string{"https://10.0.0.1:8080/device"},
		MetadataVersion: 2,
	}
	data, err := encodeMessage(msg)
	require.NoError(t, err)

	got, err := decodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, msg.Kind, got.Kind)
	require.Equal(t, msg.Seq, got.Seq)
	require.Equal(t, msg.MessageID, got.MessageID)
	require.Equal(t, msg.EPR, got.EPR)
	require.Equal(t, msg.Types, got.Types)
	require.Equal(t, msg.Scopes, got.Scopes)
	require.Equal(t, msg.XAddrs, got.XAddrs)
	require.Equal(t, msg.MetadataVersion, got.MetadataVersion)
}

func TestDedupWindowSuppressesRepeats(t *testing.T) {
	d := newDedupWindow(50 * time.Millisecond)
	seq := AppSequence{InstanceID: 1, MessageNumber: 1}

	require.False(t, d.seen(seq, "m1"))
	require.True(t, d.seen(seq, "m1"))

	// A distinct message number is not a duplicate.
	require.False(t, d.seen(AppSequence{InstanceID: 1, MessageNumber: 2}, "m1"))

	time.Sleep(60 * time.Millisecond)
	require.False(t, d.seen(seq, "m1"), "entry should have aged out of the window")
}
