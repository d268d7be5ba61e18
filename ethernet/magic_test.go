package ethernet

import "testing"

func TestMagicPacket(t *testing.T) {
	target := [6]byte{0x02, 0x00, 0x5e, 0x10, 0x20, 0x30}
	src := [6]byte{0x02, 0, 0, 0, 0, 1}
	frame := AppendWakeOnLANFrame(nil, src, target)
	if len(frame) != sizeHeaderNoVLAN+SizeMagicPacket {
		t.Fatalf("unexpected frame length %d", len(frame))
	}
	efrm, err := NewFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !efrm.IsBroadcast() || efrm.EtherTypeOrSize() != TypeWakeOnLAN {
		t.Errorf("bad header: dst=%x type=%s", *efrm.DestinationHardwareAddr(), efrm.EtherTypeOrSize())
	}
	if !IsMagicPacket(frame, target) {
		t.Error("magic packet not detected")
	}
	other := target
	other[5]++
	if IsMagicPacket(frame, other) {
		t.Error("magic packet for other address detected")
	}
	frame[sizeHeaderNoVLAN+magicSyncLen+7] ^= 0xff
	if IsMagicPacket(frame, target) {
		t.Error("corrupted magic packet detected")
	}
}

func TestMagicPacketOffset(t *testing.T) {
	target := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	// Magic packet carried after some unrelated payload, as in a UDP datagram.
	frame := AppendHeader(nil, target, [6]byte{}, TypeIPv4)
	frame = append(frame, make([]byte, 28)...)
	frame = AppendMagicPacket(frame, target)
	if !IsMagicPacket(frame, target) {
		t.Error("offset magic packet not detected")
	}
	if IsMagicPacket(frame[:40], target) {
		t.Error("truncated frame detected as magic packet")
	}
}
