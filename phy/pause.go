package phy

// pauseRow is an entry of the pause resolution table. A key matches the row
// when key&mask == value.
type pauseRow struct {
	mask, value uint8
	tx, rx      bool
}

// pauseTable implements IEEE 802.3 Annex 28B Table 28B-3.
// The lookup key is (local<<2 | partner) where each 2-bit field is PAUSE<<1 | ASM_DIR.
var pauseTable = [8]pauseRow{
	{mask: 0b1100, value: 0b0000, tx: false, rx: false},
	{mask: 0b1110, value: 0b0100, tx: false, rx: false},
	{mask: 0b1111, value: 0b0110, tx: false, rx: false},
	{mask: 0b1111, value: 0b0111, tx: true, rx: false},
	{mask: 0b1110, value: 0b1000, tx: false, rx: false},
	{mask: 0b1010, value: 0b1010, tx: true, rx: true},
	{mask: 0b1111, value: 0b1100, tx: false, rx: false},
	{mask: 0b1111, value: 0b1101, tx: false, rx: true},
}

// ResolvePause resolves whether PAUSE frames may be transmitted and whether
// received PAUSE frames are honored given the local and link partner 2-bit
// pause capabilities (see [ANAR.PauseBits]). The first matching table row wins.
// Keys matching no row resolve to both directions disabled.
func ResolvePause(local, partner uint8) (tx, rx bool) {
	key := (local&3)<<2 | partner&3
	for _, row := range pauseTable {
		if key&row.mask == row.value {
			return row.tx, row.rx
		}
	}
	return false, false
}
