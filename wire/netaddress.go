// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// maxNetAddressPayload returns the max payload size for a bitcoin
// NetAddress based on the protocol version.
func maxNetAddressPayload() uint32 {
	// timestamp 4 + services 8 + ip 16 + port 2
	return 30
}

// NetAddress defines information about a peer on the network.
type NetAddress struct {
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// NewNetAddress returns a new NetAddress using the provided TCP address and
// supported service flags.
func NewNetAddress(addr *net.TCPAddr, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Timestamp: time.Now(),
		Services:  services,
		IP:        addr.IP,
		Port:      uint16(addr.Port),
	}
}

func readNetAddress(r io.Reader, pver uint32, na *NetAddress, hasTimestamp bool) error {
	var ip [16]byte

	if hasTimestamp {
		if err := readElement(r, &na.Timestamp); err != nil {
			return err
		}
	}

	services, err := binarySerializer.Uint64(r)
	if err != nil {
		return err
	}
	na.Services = ServiceFlag(services)

	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}

	port, err := binarySerializer.Uint16BigEndian(r)
	if err != nil {
		return err
	}

	na.IP = net.IP(ip[:])
	na.Port = port
	return nil
}

func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := writeElement(w, na.Timestamp); err != nil {
			return err
		}
	}

	if err := writeElement(w, uint64(na.Services)); err != nil {
		return err
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}

	return binarySerializer.PutUint16BigEndian(w, na.Port)
}
