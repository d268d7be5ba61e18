package phy

// RegWrite is a single register write applied by a PHY variant.
type RegWrite struct {
	Reg   uint16
	Value uint16
}

// Variant describes capabilities and quirks of a PHY model.
// The zero value is a basic MII PHY with no extended register access.
type Variant struct {
	// Name identifies the variant in logs.
	Name string
	// ExtendedRegisterAccess is set for PHYs that implement the IEEE 802.3
	// Annex 22D MMD indirect access registers (13 and 14). Registers above
	// 0x1f are then reached through them.
	ExtendedRegisterAccess bool
	// MMDDevice is the MMD device address used for indirect register access.
	MMDDevice uint8
	// PostReset are vendor specific register writes applied after a successful reset.
	PostReset []RegWrite
}

// VariantBasicMII is a generic IEEE 802.3 Clause 22 PHY.
var VariantBasicMII = Variant{Name: "mii"}

// VariantExtended returns a Variant of a PHY with indirect extended register access
// through MMD device devAddr. postReset writes are applied in order after reset
// and may target extended registers.
func VariantExtended(name string, devAddr uint8, postReset ...RegWrite) Variant {
	return Variant{
		Name:                   name,
		ExtendedRegisterAccess: true,
		MMDDevice:              devAddr & mmdDevAddrMask,
		PostReset:              postReset,
	}
}
