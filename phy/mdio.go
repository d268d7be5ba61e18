package phy

// MDIOBus is a HAL for IEEE 802.3 Clause 22 MDIO bus access.
// Register address range is 0-31. Extended registers are reached through
// [Device] using the PHY's indirect access registers, not through the bus.
type MDIOBus interface {
	// Read reads a 16-bit register from the PHY.
	Read(phyAddr, regAddr uint8) (value uint16, err error)
	// Write writes a 16-bit value to a PHY register.
	Write(phyAddr, regAddr uint8, value uint16) error
}
