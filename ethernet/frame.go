package ethernet

import (
	"encoding/binary"
	"errors"
)

var (
	errShort     = errors.New("ethernet: too short")
	errShortVLAN = errors.New("ethernet: short VLAN")
)

// NewFrame returns a Frame with data set to buf.
// An error is returned if the buffer size is smaller than 14.
// Users should still call [Frame.Validate] before working
// with the payload of frames to avoid panics.
func NewFrame(buf []byte) (Frame, error) {
	if len(buf) < sizeHeaderNoVLAN {
		return Frame{buf: nil}, errShort
	}
	return Frame{buf: buf}, nil
}

// Frame encapsulates the raw data of an Ethernet frame
// without preamble or FCS (first byte is start of destination address)
// and provides methods for retrieving header fields and payload data. See [IEEE 802.3].
//
// [IEEE 802.3]: https://standards.ieee.org/ieee/802.3/7071/
type Frame struct {
	buf []byte
}

// RawData returns the underlying slice with which the frame was created.
func (efrm Frame) RawData() []byte { return efrm.buf }

// HeaderLength returns the length of the ethernet packet header. Nominally returns 14; or 18 for VLAN packets.
func (efrm Frame) HeaderLength() int {
	if efrm.IsVLAN() {
		return sizeHeaderVLAN
	}
	return sizeHeaderNoVLAN
}

// Payload returns the data portion of the ethernet packet with correct handling of VLAN packets.
func (efrm Frame) Payload() []byte {
	hl := efrm.HeaderLength()
	et := efrm.EtherTypeOrSize()
	if et.IsSize() {
		return efrm.buf[hl : hl+int(et)]
	}
	return efrm.buf[hl:]
}

// DestinationHardwareAddr returns the target's MAC/hardware address for the ethernet packet.
func (efrm Frame) DestinationHardwareAddr() (dst *[6]byte) {
	return (*[6]byte)(efrm.buf[0:6])
}

// SourceHardwareAddr returns the sender's MAC/hardware address of the ethernet packet.
func (efrm Frame) SourceHardwareAddr() (src *[6]byte) {
	return (*[6]byte)(efrm.buf[6:12])
}

// IsBroadcast returns true if the destination is the broadcast address ff:ff:ff:ff:ff:ff, false otherwise.
func (efrm Frame) IsBroadcast() bool {
	return *efrm.DestinationHardwareAddr() == BroadcastAddr()
}

// EtherTypeOrSize returns the EtherType/Size field of the ethernet packet.
// Caller should check if the field is actually a valid EtherType or if it represents the Ethernet payload size with [Type.IsSize].
func (efrm Frame) EtherTypeOrSize() Type {
	return Type(binary.BigEndian.Uint16(efrm.buf[12:14]))
}

// IsVLAN returns true if the SizeOrEtherType is set to the VLAN TPID 0x8100, in which
// case the actual EtherType follows a 2 octet VLAN tag.
func (efrm Frame) IsVLAN() bool {
	return efrm.EtherTypeOrSize() == TypeVLAN
}

// Validate checks the frame's size fields against the buffer length.
func (efrm Frame) Validate() error {
	sz := efrm.EtherTypeOrSize()
	if sz.IsSize() && len(efrm.buf) < sizeHeaderNoVLAN+int(sz) {
		return errShort
	}
	if sz == TypeVLAN && len(efrm.buf) < sizeHeaderVLAN {
		return errShortVLAN
	}
	return nil
}

// AppendHeader appends a 14 byte untagged Ethernet header to dst.
func AppendHeader(dst []byte, dstAddr, srcAddr [6]byte, et Type) []byte {
	dst = append(dst, dstAddr[:]...)
	dst = append(dst, srcAddr[:]...)
	return binary.BigEndian.AppendUint16(dst, uint16(et))
}

// AppendPadding appends zeros to frame so that the payload following a
// 14 byte header is at least the Ethernet minimum of 46 bytes.
func AppendPadding(frame []byte) []byte {
	for len(frame) < sizeHeaderNoVLAN+minEthPayload {
		frame = append(frame, 0)
	}
	return frame
}
