package ethernet

import (
	"strconv"
)

const (
	sizeHeaderNoVLAN = 14
	sizeHeaderVLAN   = 18
	// SizeFCS is the length of the frame check sequence trailing every frame on the wire.
	SizeFCS = 4
)

// AppendAddr appends the text representation of the hardware address to the destination buffer.
func AppendAddr(dst []byte, hwAddr [6]byte) []byte {
	for i, b := range hwAddr {
		if i != 0 {
			dst = append(dst, ':')
		}
		if b < 16 {
			dst = append(dst, '0')
		}
		dst = strconv.AppendUint(dst, uint64(b), 16)
	}
	return dst
}

// BroadcastAddr returns the all 0xff's broadcast hardware/MAC/EUI/OUI address.
func BroadcastAddr() [6]byte {
	return [6]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// IsMulticastAddr returns true if the group bit of the address is set. Broadcast is a multicast address.
func IsMulticastAddr(hwAddr *[6]byte) bool { return hwAddr[0]&1 != 0 }

// Type is the EtherType field of a frame, or its payload size if [Type.IsSize].
type Type uint16

// IsSize returns true if the EtherType is actually the size of the payload
// and should NOT be interpreted as an EtherType.
func (et Type) IsSize() bool { return et <= 1500 }

// Ethernet type flags
const (
	TypeIPv4                Type = 0x0800 // IPv4
	TypeARP                 Type = 0x0806 // ARP
	TypeWakeOnLAN           Type = 0x0842 // wake on LAN
	TypeVLAN                Type = 0x8100 // VLAN
	TypeIPv6                Type = 0x86DD // IPv6
	TypeEthernetFlowControl Type = 0x8808 // EthernetFlowCtl
	TypeLLDP                Type = 0x88CC // LLDP
	// minEthPayload is the minimum payload size for an Ethernet frame, assuming
	// that no 802.1Q VLAN tags are present.
	minEthPayload = 46
)

func (et Type) String() string {
	switch et {
	case TypeIPv4:
		return "IPv4"
	case TypeARP:
		return "ARP"
	case TypeWakeOnLAN:
		return "wake on LAN"
	case TypeVLAN:
		return "VLAN"
	case TypeIPv6:
		return "IPv6"
	case TypeEthernetFlowControl:
		return "EthernetFlowCtl"
	case TypeLLDP:
		return "LLDP"
	}
	if et.IsSize() {
		return "size(" + strconv.Itoa(int(et)) + ")"
	}
	return "Type(0x" + strconv.FormatUint(uint64(et), 16) + ")"
}
