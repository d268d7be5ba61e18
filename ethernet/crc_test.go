package ethernet

import (
	"encoding/binary"
	"testing"
)

func TestCRC32KnownValue(t *testing.T) {
	// CRC-32/IEEE check value.
	got := CRC32([]byte("123456789"))
	if got != 0xcbf43926 {
		t.Errorf("CRC32 check value: got %#x, want 0xcbf43926", got)
	}
}

func TestFCS(t *testing.T) {
	frame := make([]byte, 60)
	for i := range frame {
		frame[i] = byte(i)
	}
	withFCS := AppendFCS(frame)
	if len(withFCS) != len(frame)+SizeFCS {
		t.Fatalf("expected length %d, got %d", len(frame)+SizeFCS, len(withFCS))
	}
	if got := binary.LittleEndian.Uint32(withFCS[60:]); got != CRC32(frame) {
		t.Errorf("FCS not in little-endian wire order: %#x", got)
	}
	if !CheckFCS(withFCS) {
		t.Error("valid FCS not accepted")
	}
	withFCS[10] ^= 1
	if CheckFCS(withFCS) {
		t.Error("corrupted frame accepted")
	}
	if CheckFCS([]byte{1, 2, 3}) {
		t.Error("short buffer accepted")
	}
}
