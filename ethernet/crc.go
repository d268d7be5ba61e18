package ethernet

import (
	"encoding/binary"
	"hash/crc32"
)

//
// CRC API.
//

// crcTable is the IEEE CRC-32 table used for Ethernet FCS calculation.
var crcTable = crc32.MakeTable(crc32.IEEE)

// CRC32 calculates the Ethernet Frame Check Sequence (FCS) for the given data.
// The CRC is computed using the IEEE 802.3 CRC-32 polynomial.
// The input should be the frame data from destination MAC through payload,
// excluding any existing FCS.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// AppendFCS appends the FCS of frame to it in wire (little-endian) order.
func AppendFCS(frame []byte) []byte {
	return binary.LittleEndian.AppendUint32(frame, CRC32(frame))
}

// CheckFCS reports whether the last 4 bytes of frameWithFCS hold the FCS of the preceding bytes.
func CheckFCS(frameWithFCS []byte) bool {
	n := len(frameWithFCS) - SizeFCS
	if n < 0 {
		return false
	}
	return CRC32(frameWithFCS[:n]) == binary.LittleEndian.Uint32(frameWithFCS[n:])
}
