package phy_test

import (
	"testing"

	"github.com/soypat/etherc/phy"
	"github.com/soypat/etherc/sim"
)

// pirRecorder records every value written to the PHY interface register.
type pirRecorder struct {
	writes []uint32
	mdi    bool
}

func (r *pirRecorder) Get() uint32 {
	if r.mdi {
		return phy.PIRMDI
	}
	return 0
}

func (r *pirRecorder) Set(v uint32) { r.writes = append(r.writes, v) }

// clockedBits returns the station driven bits sampled at MDC rising edges.
// Released clocks are returned as -1.
func (r *pirRecorder) clockedBits() (bits []int) {
	var prev uint32
	for _, v := range r.writes {
		if prev&phy.PIRMDC == 0 && v&phy.PIRMDC != 0 {
			switch {
			case v&phy.PIRMMD == 0:
				bits = append(bits, -1)
			case v&phy.PIRMDO != 0:
				bits = append(bits, 1)
			default:
				bits = append(bits, 0)
			}
		}
		prev = v
	}
	return bits
}

func TestMDIOReadFrame(t *testing.T) {
	for _, delayed := range []bool{false, true} {
		var rec pirRecorder
		rec.mdi = true
		delays := 0
		var delay func()
		if delayed {
			delay = func() { delays++ }
		}
		var mdio phy.MDIOBitBang
		mdio.Configure(&rec, delay)
		rec.writes = rec.writes[:0]
		v, err := mdio.Read(0, 1)
		if err != nil {
			t.Fatal(err)
		}
		if v != 0xffff {
			t.Errorf("read with MDI high: got %#x", v)
		}
		bits := rec.clockedBits()
		want := make([]int, 0, 64)
		for range 32 {
			want = append(want, 1)
		}
		want = append(want, 0, 1) // ST
		want = append(want, 1, 0) // OP read
		want = append(want, 0, 0, 0, 0, 0)
		want = append(want, 0, 0, 0, 0, 1)
		want = append(want, -1, -1) // TA
		for range 16 {
			want = append(want, -1)
		}
		want = append(want, -1) // idle
		if len(bits) != len(want) {
			t.Fatalf("delayed=%v: got %d clocks, want %d", delayed, len(bits), len(want))
		}
		for i := range want {
			if bits[i] != want[i] {
				t.Fatalf("delayed=%v: clock %d: got %d, want %d", delayed, i, bits[i], want[i])
			}
		}
		if delayed && delays != len(rec.writes) {
			t.Errorf("delay called %d times for %d writes", delays, len(rec.writes))
		}
	}
}

func TestMDIOWriteFrame(t *testing.T) {
	var rec pirRecorder
	var mdio phy.MDIOBitBang
	mdio.Configure(&rec, func() {})
	rec.writes = rec.writes[:0]
	err := mdio.Write(0b10101, 0b00011, 0xa5f0)
	if err != nil {
		t.Fatal(err)
	}
	bits := rec.clockedBits()
	want := []int{0, 1, 0, 1, 1, 0, 1, 0, 1, 0, 0, 0, 1, 1, 1, 0}
	want = append(want, 1, 0, 1, 0, 0, 1, 0, 1, 1, 1, 1, 1, 0, 0, 0, 0, -1)
	got := bits[32:]
	if len(got) != len(want) {
		t.Fatalf("got %d clocks after preamble, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("clock %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMDIORoundTrip(t *testing.T) {
	const addr = 7
	p := sim.NewPHY(sim.PHYConfig{Addr: addr})
	p.RecordTransactions(true)
	var mdio phy.MDIOBitBang
	mdio.Configure(p, func() {})
	id1, _ := mdio.Read(addr, 2)
	id2, _ := mdio.Read(addr, 3)
	if id1 != sim.DefaultID1 || id2 != sim.DefaultID2 {
		t.Errorf("ID %#x %#x", id1, id2)
	}
	for _, v := range []uint16{0x0001, 0x8000, 0x05e1, 0xffff, 0} {
		err := mdio.Write(addr, phy.AddrANAR, v)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := mdio.Read(addr, phy.AddrANAR)
		if got != v {
			t.Errorf("ANAR round trip: wrote %#x, read %#x", v, got)
		}
	}
	// No PHY at other addresses: the pulled up line reads all ones.
	got, _ := mdio.Read(addr+1, 2)
	if got != 0xffff {
		t.Errorf("absent PHY read %#x", got)
	}
	txs := p.Transactions()
	if len(txs) != 13 {
		t.Fatalf("recorded %d transactions", len(txs))
	}
	if txs[2] != (sim.Transaction{Write: true, PHYAddr: addr, Reg: phy.AddrANAR, Value: 1}) {
		t.Errorf("transaction %+v", txs[2])
	}
}
