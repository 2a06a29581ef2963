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

package soap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosdc/sdc/private/soap"
	"github.com/gosdc/sdc/private/xmlbind"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	env := &soap.Envelope{
		Header: soap.NewRequest("GetMdib", "urn:uuid:provider", ""),
		Body: &xmlbind.Element{
			Name: xmlbind.QName{Local: "GetMdib"},
		},
	}

	data, err := soap.Encode(env)
	require.NoError(t, err)

	decoded, err := soap.Decode(data)
	require.NoError(t, err)
	require.Nil(t, decoded.Fault)
	require.Equal(t, "GetMdib", decoded.Header.Action)
	require.Equal(t, env.Header.MessageID, decoded.Header.MessageID)
	require.NotNil(t, decoded.Body)
	require.Equal(t, "GetMdib", decoded.Body.Name.Local)
}

func TestFaultRoundTrip(t *testing.T) {
	env := &soap.Envelope{
		Header: soap.NewReply("http://.../fault", soap.NewRequest("SetValue", "urn:uuid:provider", "")),
		Fault:  soap.NewFault(soap.CodeSender, soap.SubCodeInvalidHandle, "no such handle"),
	}

	data, err := soap.Encode(env)
	require.NoError(t, err)

	decoded, err := soap.Decode(data)
	require.NoError(t, err)
	require.NotNil(t, decoded.Fault)
	require.Equal(t, soap.CodeSender, decoded.Fault.Code)
	require.Equal(t, soap.SubCodeInvalidHandle, decoded.Fault.SubCode)
	require.Equal(t, "no such handle", decoded.Fault.Reason)
}
