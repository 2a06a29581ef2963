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
	"net"

	"golang.org/x/net/ipv4"

	"github.com/gosdc/sdc/pkg/private/serrors"
)

// ErrDiscovery is the sentinel every DiscoveryError wraps (spec.md §7).
var ErrDiscovery = serrors.New("discovery error")

// DiscoveryErrorKind is the closed set of discovery failure reasons.
type DiscoveryErrorKind string

const (
	KindInterfaceUnavailable DiscoveryErrorKind = "InterfaceUnavailable"
	KindAddressConflict      DiscoveryErrorKind = "AddressConflict"
)

func newDiscoveryError(kind DiscoveryErrorKind, cause error, errCtx ...interface{}) error {
	ctx := append([]interface{}{"kind", kind}, errCtx...)
	if cause != nil {
		ctx = append(ctx, "cause", cause.Error())
	}
	return serrors.WithCtx(ErrDiscovery, ctx...)
}

// multicastSocket wraps the one multicast reader/writer shared per interface
// (spec.md §5: "multicast sockets are shared per interface (one reader task
// fans out)"). It is built on golang.org/x/net/ipv4's PacketConn for
// explicit TTL and group-join control, which net.ListenMulticastUDP alone
// does not expose.
type multicastSocket struct {
	pc     *ipv4.PacketConn
	group  *net.UDPAddr
	iface  *net.Interface
	ttl    int
}

func newMulticastSocket(ifaceName, groupAddr string, ttl int) (*multicastSocket, error) {
	group, err := net.ResolveUDPAddr("udp4", groupAddr)
	if err != nil {
		return nil, newDiscoveryError(KindInterfaceUnavailable, err, "addr", groupAddr)
	}

	var iface *net.Interface
	if ifaceName != "" {
		iface, err = net.InterfaceByName(ifaceName)
		if err != nil {
			return nil, newDiscoveryError(KindInterfaceUnavailable, err, "interface", ifaceName)
		}
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: group.Port})
	if err != nil {
		return nil, newDiscoveryError(KindAddressConflict, err, "port", group.Port)
	}
	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(iface, &net.UDPAddr{IP: group.IP}); err != nil {
		conn.Close()
		return nil, newDiscoveryError(KindInterfaceUnavailable, err, "group", groupAddr)
	}
	if err := pc.SetMulticastTTL(ttl); err != nil {
		conn.Close()
		return nil, newDiscoveryError(KindInterfaceUnavailable, err, "reason", "set ttl")
	}
	if err := pc.SetMulticastLoopback(true); err != nil {
		// Loopback is a convenience for same-host testing; its absence
		// must not prevent discovery from working across real interfaces.
	}

	return &multicastSocket{pc: pc, group: group, iface: iface, ttl: ttl}, nil
}

func (m *multicastSocket) send(payload []byte) error {
	_, err := m.pc.WriteTo(payload, nil, m.group)
	if err != nil {
		return newDiscoveryError(KindInterfaceUnavailable, err, "op", "send")
	}
	return nil
}

func (m *multicastSocket) receive(buf []byte) (int, net.Addr, error) {
	n, _, peer, err := m.pc.ReadFrom(buf)
	return n, peer, err
}

func (m *multicastSocket) close() error {
	return m.pc.Close()
}
