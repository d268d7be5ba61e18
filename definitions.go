// Package etherc holds definitions shared by the ETHERC/EDMAC Ethernet driver
// packages: the register HAL and the error kinds returned across the driver API.
package etherc

// Register32 is a 32 bit memory mapped peripheral register.
// On TinyGo targets *volatile.Register32 from runtime/volatile satisfies it.
type Register32 interface {
	Get() uint32
	Set(value uint32)
}

// SetBits sets the bits of mask in r with a read-modify-write.
func SetBits(r Register32, mask uint32) { r.Set(r.Get() | mask) }

// ClearBits clears the bits of mask in r with a read-modify-write.
func ClearBits(r Register32, mask uint32) { r.Set(r.Get() &^ mask) }

// HasBits returns true if all bits of mask are set in r.
func HasBits(r Register32, mask uint32) bool { return r.Get()&mask == mask }

// Ethernet frame size limits as seen by the MAC (no preamble, no FCS).
const (
	MinFrameSize = 60
	MaxFrameSize = 1514
	// MaxFrameSizeFCS is the maximum frame size including the 4 byte FCS.
	MaxFrameSizeFCS = MaxFrameSize + 4
)
