package phy

import "testing"

func TestResolvePause(t *testing.T) {
	const (
		none = 0b00
		asym = 0b01
		sym  = 0b10
		both = 0b11
	)
	tests := []struct {
		local, partner uint8
		tx, rx         bool
	}{
		{local: none, partner: none},
		{local: none, partner: both},
		{local: asym, partner: none},
		{local: asym, partner: asym},
		{local: asym, partner: sym},
		{local: asym, partner: both, tx: true},
		{local: sym, partner: none},
		{local: sym, partner: asym},
		{local: sym, partner: sym, tx: true, rx: true},
		{local: sym, partner: both, tx: true, rx: true},
		{local: both, partner: none},
		{local: both, partner: asym, rx: true},
		{local: both, partner: sym, tx: true, rx: true},
		{local: both, partner: both, tx: true, rx: true},
	}
	for _, tc := range tests {
		tx, rx := ResolvePause(tc.local, tc.partner)
		if tx != tc.tx || rx != tc.rx {
			t.Errorf("ResolvePause(%02b, %02b) = (tx=%v, rx=%v); want (tx=%v, rx=%v)", tc.local, tc.partner, tx, rx, tc.tx, tc.rx)
		}
	}
}

func TestResolvePauseAllKeys(t *testing.T) {
	// Outcomes of IEEE 802.3 Table 28B-3 indexed by local<<2 | partner.
	want := [16]struct{ tx, rx bool }{
		0b0000: {}, 0b0001: {}, 0b0010: {}, 0b0011: {},
		0b0100: {}, 0b0101: {}, 0b0110: {}, 0b0111: {tx: true},
		0b1000: {}, 0b1001: {}, 0b1010: {true, true}, 0b1011: {true, true},
		0b1100: {}, 0b1101: {rx: true}, 0b1110: {true, true}, 0b1111: {true, true},
	}
	for key, w := range want {
		tx, rx := ResolvePause(uint8(key>>2), uint8(key&3))
		if tx != w.tx || rx != w.rx {
			t.Errorf("key %04b: got (tx=%v, rx=%v); want (tx=%v, rx=%v)", key, tx, rx, w.tx, w.rx)
		}
	}
	// Upper bits of inputs are ignored.
	tx, rx := ResolvePause(0xf1, 0xf3)
	if !tx || rx {
		t.Errorf("masked inputs: got (tx=%v, rx=%v); want (tx=true, rx=false)", tx, rx)
	}
}

func TestANARPauseBits(t *testing.T) {
	tests := []struct {
		a    ANAR
		want uint8
	}{
		{a: NewANAR(), want: 0b00},
		{a: NewANAR().WithPause(true, false), want: 0b10},
		{a: NewANAR().WithPause(false, true), want: 0b01},
		{a: NewANAR().WithPause(true, true), want: 0b11},
	}
	for _, tc := range tests {
		if got := tc.a.PauseBits(); got != tc.want {
			t.Errorf("ANAR(%#04x).PauseBits() = %02b; want %02b", uint16(tc.a), got, tc.want)
		}
	}
}

func TestANARLinkModeLastMatch(t *testing.T) {
	tests := []struct {
		a    ANAR
		want LinkMode
	}{
		{a: 0, want: LinkDown},
		{a: ANAR10Half, want: Link10HDX},
		{a: ANAR10Full | ANAR10Half, want: Link10FDX},
		{a: ANAR100Half | ANAR10Full, want: Link100HDX},
		{a: ANAR100Full | ANAR100Half | ANAR10Full | ANAR10Half, want: Link100FDX},
		// A partner advertising 100H and 10F resolves to 100H: order, not priority.
		{a: ANAR100Half | ANAR10Full | ANARPause, want: Link100HDX},
		{a: ANAR100BaseT4, want: LinkDown},
	}
	for _, tc := range tests {
		if got := tc.a.LinkMode(); got != tc.want {
			t.Errorf("ANAR(%#04x).LinkMode() = %s; want %s", uint16(tc.a), got, tc.want)
		}
	}
}
