package ethernet

import "testing"

func TestFrameHeader(t *testing.T) {
	dst := [6]byte{0x01, 0x00, 0x5e, 0, 0, 1}
	src := [6]byte{0x02, 1, 2, 3, 4, 5}
	buf := AppendPadding(AppendHeader(nil, dst, src, TypeIPv4))
	if len(buf) != 60 {
		t.Fatalf("padded length: got %d, want 60", len(buf))
	}
	efrm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := efrm.Validate(); err != nil {
		t.Fatal(err)
	}
	if *efrm.DestinationHardwareAddr() != dst || *efrm.SourceHardwareAddr() != src {
		t.Error("address mismatch")
	}
	if efrm.IsBroadcast() {
		t.Error("multicast frame reported as broadcast")
	}
	if !IsMulticastAddr(efrm.DestinationHardwareAddr()) {
		t.Error("multicast destination not detected")
	}
	if len(efrm.Payload()) != 46 {
		t.Errorf("payload length: got %d", len(efrm.Payload()))
	}
	if got := string(AppendAddr(nil, src)); got != "02:01:02:03:04:05" {
		t.Errorf("AppendAddr: got %q", got)
	}
}

func TestFrameValidate(t *testing.T) {
	_, err := NewFrame(make([]byte, 13))
	if err == nil {
		t.Error("expected error for short buffer")
	}
	buf := AppendHeader(nil, BroadcastAddr(), [6]byte{}, Type(100))
	efrm, _ := NewFrame(append(buf, make([]byte, 50)...))
	if efrm.Validate() == nil {
		t.Error("expected size field inconsistency")
	}
	efrm, _ = NewFrame(AppendHeader(nil, BroadcastAddr(), [6]byte{}, TypeVLAN))
	if efrm.Validate() == nil {
		t.Error("expected short VLAN error")
	}
}
