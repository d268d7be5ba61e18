package etherc

import "golang.org/x/crypto/blake2s"

// HardwareAddrFromUID derives a stable locally administered unicast MAC address
// from a chip unique identifier. Boards without a factory programmed MAC can use
// the MCU's unique ID register contents as uid.
func HardwareAddrFromUID(uid []byte) (hw [6]byte) {
	sum := blake2s.Sum256(uid)
	copy(hw[:], sum[:6])
	hw[0] = (hw[0] | 0x02) &^ 0x01 // Locally administered, unicast.
	return hw
}
