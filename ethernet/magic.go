package ethernet

import "bytes"

const (
	magicSyncLen = 6
	magicRepeats = 16
	// SizeMagicPacket is the length of a magic packet's synchronization stream plus address repetitions.
	SizeMagicPacket = magicSyncLen + magicRepeats*6
)

// AppendMagicPacket appends a Wake-on-LAN magic packet payload addressed to
// target: six 0xff octets followed by target repeated 16 times.
func AppendMagicPacket(dst []byte, target [6]byte) []byte {
	for range magicSyncLen {
		dst = append(dst, 0xff)
	}
	for range magicRepeats {
		dst = append(dst, target[:]...)
	}
	return dst
}

// AppendWakeOnLANFrame appends a broadcast Wake-on-LAN frame with EtherType 0x0842
// carrying the magic packet for target.
func AppendWakeOnLANFrame(dst []byte, src, target [6]byte) []byte {
	dst = AppendHeader(dst, BroadcastAddr(), src, TypeWakeOnLAN)
	return AppendPadding(AppendMagicPacket(dst, target))
}

// IsMagicPacket reports whether frame contains a magic packet for target anywhere
// after the Ethernet header. Magic packets are recognized regardless of EtherType,
// so ones carried in UDP datagrams are detected too.
func IsMagicPacket(frame []byte, target [6]byte) bool {
	if len(frame) < sizeHeaderNoVLAN+SizeMagicPacket {
		return false
	}
	var pattern [SizeMagicPacket]byte
	AppendMagicPacket(pattern[:0], target)
	return bytes.Contains(frame[sizeHeaderNoVLAN:], pattern[:])
}
