package etherc

import (
	"errors"
	"testing"
)

func TestHardwareAddrFromUID(t *testing.T) {
	uid := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02, 0x03}
	hw := HardwareAddrFromUID(uid)
	if hw[0]&0x02 == 0 {
		t.Errorf("address %x not locally administered", hw)
	}
	if hw[0]&0x01 != 0 {
		t.Errorf("address %x is multicast", hw)
	}
	if hw != HardwareAddrFromUID(uid) {
		t.Error("derived address not stable")
	}
	uid[0]++
	if hw == HardwareAddrFromUID(uid) {
		t.Error("distinct UIDs produced same address")
	}
}

func TestErrorKind(t *testing.T) {
	var err error = ErrRingFull
	if !errors.Is(err, ErrRingFull) {
		t.Fatal("errors.Is failed on ErrorKind")
	}
	if err.Error() != "no free TX descriptor" {
		t.Errorf("got %q", err.Error())
	}
	if got := ErrorKind(200).String(); got != "ErrorKind(200)" {
		t.Errorf("got %q; want %q", got, "ErrorKind(200)")
	}
}

type reg32 uint32

func (r *reg32) Get() uint32  { return uint32(*r) }
func (r *reg32) Set(v uint32) { *r = reg32(v) }

func TestBits(t *testing.T) {
	var r reg32
	SetBits(&r, 0b1010)
	if !HasBits(&r, 0b1000) || HasBits(&r, 0b0101) {
		t.Fatalf("bad bits %b", r)
	}
	ClearBits(&r, 0b0010)
	if r != 0b1000 {
		t.Fatalf("got %b; want %b", r, 0b1000)
	}
}
