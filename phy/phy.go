// Package phy provides Ethernet PHY management via MDIO.
// It implements a bit-banged IEEE 802.3 Clause 22 management station over a
// single MAC control register, PHY reset and auto-negotiation control, and the
// Annex 28B pause resolution used to configure MAC flow control.
package phy

import (
	"log/slog"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/internal"
)

// State is the PHY control state.
type State uint8

const (
	StateUninit    State = iota // uninit
	StateResetting              // resetting
	StateReady                  // ready
	StateFailed                 // failed
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateResetting:
		return "resetting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "State(?)"
}

// DefaultResetPolls is the default ceiling of BMCR reads while waiting for a PHY reset to complete.
const DefaultResetPolls = 0x20000

// DeviceConfig configures a [Device].
type DeviceConfig struct {
	// PHYAddr is the MDIO address of the PHY (0-31).
	PHYAddr uint8
	// Variant selects register access capabilities and post-reset quirks.
	// Zero value is a basic MII PHY.
	Variant Variant
	// ResetPolls bounds the number of BMCR reads after issuing a reset. Zero selects DefaultResetPolls.
	ResetPolls int
	// ReadID makes Init read the PHY identifier registers before reset.
	ReadID bool
	// Logger is optional.
	Logger *slog.Logger
}

// Device is a PHY accessed through an MDIOBus. It tracks the reset state and the
// advertisement last written so negotiation results can be resolved against it.
type Device struct {
	mdio       MDIOBus
	phyaddr    uint8
	variant    Variant
	resetPolls int
	readID     bool
	state      State
	advertised ANAR
	id         [2]uint16
	log        *slog.Logger
}

// Negotiation is the result of auto-negotiation.
type Negotiation struct {
	Mode LinkMode
	// LocalPause and PartnerPause are 2-bit pause fields, see [ANAR.PauseBits].
	LocalPause   uint8
	PartnerPause uint8
}

// Configure resets all state of device to be used as a Clause22 device. Does not do a software reset.
func (phy *Device) Configure(mdio MDIOBus, cfg DeviceConfig) error {
	if cfg.PHYAddr > 31 || mdio == nil || cfg.ResetPolls < 0 {
		return etherc.ErrInvalidConfig
	}
	if cfg.ResetPolls == 0 {
		cfg.ResetPolls = DefaultResetPolls
	}
	*phy = Device{
		mdio:       mdio,
		phyaddr:    cfg.PHYAddr,
		variant:    cfg.Variant,
		resetPolls: cfg.ResetPolls,
		readID:     cfg.ReadID,
		log:        cfg.Logger,
	}
	return nil
}

// PHYAddr returns the PHY address on the MDIO bus (0-31).
func (phy *Device) PHYAddr() uint8 { return phy.phyaddr }

// State returns the control state of the PHY.
func (phy *Device) State() State { return phy.state }

// Variant returns the configured PHY variant.
func (phy *Device) Variant() Variant { return phy.variant }

// ID returns the identifier registers (ID1, ID2) read during the last Init with ReadID set.
func (phy *Device) ID() (id1, id2 uint16) { return phy.id[0], phy.id[1] }

// Advertisement returns the advertisement written by the last call to StartAutoNegotiation.
func (phy *Device) Advertisement() ANAR { return phy.advertised }

// Init resets the PHY and waits for the reset bit to clear for at most the configured
// number of polls. On success the variant's post-reset writes are applied.
// Returns [etherc.ErrInitTimeout] if the reset does not complete in time.
func (phy *Device) Init() error {
	if phy.mdio == nil {
		return etherc.ErrInvalidConfig
	}
	if phy.readID {
		// First read of each register may return stale data.
		for i, reg := range [2]uint16{regPhyId1, regPhyId2} {
			phy.ReadReg(reg)
			phy.id[i] = phy.ReadReg(reg)
		}
		phy.debug("phy:id", slog.Uint64("id1", uint64(phy.id[0])), slog.Uint64("id2", uint64(phy.id[1])))
	}
	phy.state = StateResetting
	err := phy.WriteReg(AddrBMCR, uint16(BMCRReset))
	if err != nil {
		phy.state = StateFailed
		return err
	}
	for i := 0; i < phy.resetPolls; i++ {
		ctl := BMCR(phy.ReadReg(AddrBMCR))
		if ctl&BMCRReset == 0 {
			return phy.postReset(i)
		}
	}
	phy.state = StateFailed
	phy.logerr("phy:reset-timeout", slog.Int("polls", phy.resetPolls))
	return etherc.ErrInitTimeout
}

func (phy *Device) postReset(polls int) error {
	for _, w := range phy.variant.PostReset {
		err := phy.WriteReg(w.Reg, w.Value)
		if err != nil {
			phy.state = StateFailed
			return err
		}
	}
	phy.state = StateReady
	phy.debug("phy:ready", slog.String("variant", phy.variant.Name), slog.Int("polls", polls))
	return nil
}

// StartAutoNegotiation advertises 10/100 half and full duplex, plus symmetric and
// asymmetric pause if pause is set, and restarts auto-negotiation.
func (phy *Device) StartAutoNegotiation(pause bool) error {
	adv := NewANAR().With10M().With100M().WithPause(pause, pause)
	err := phy.WriteReg(AddrANAR, uint16(adv))
	if err != nil {
		return err
	}
	phy.advertised = adv
	return phy.WriteReg(AddrBMCR, uint16(BMCRANEnable|BMCRANRestart))
}

// AutoNegotiation returns the negotiated link mode and pause capabilities.
// Returns [etherc.ErrLinkDown] if link is down and [etherc.ErrANIncomplete]
// if auto-negotiation has not completed. The local pause field is valid in both error cases.
func (phy *Device) AutoNegotiation() (Negotiation, error) {
	var neg Negotiation
	// Status bits are latched, first read returns stale value.
	phy.ReadReg(AddrBMSR)
	status := BMSR(phy.ReadReg(AddrBMSR))
	if !status.LinkUp() {
		return neg, etherc.ErrLinkDown
	}
	neg.LocalPause = phy.advertised.PauseBits()
	if !status.AutoNegotiationComplete() {
		return neg, etherc.ErrANIncomplete
	}
	partner := ANAR(phy.ReadReg(AddrANLPAR))
	neg.PartnerPause = partner.PauseBits()
	neg.Mode = partner.LinkMode()
	if internal.LogEnabled(phy.log, internal.LevelTrace) {
		phy.trace("phy:negotiated", slog.String("mode", neg.Mode.String()),
			slog.Uint64("lpause", uint64(neg.LocalPause)), slog.Uint64("ppause", uint64(neg.PartnerPause)))
	}
	return neg, nil
}

// LinkStatus returns true if the PHY reports link up. It does not use any MAC link signal.
func (phy *Device) LinkStatus() (bool, error) {
	// Link status is latched-low, first read clears a previous fault.
	_, err := phy.BasicStatus()
	if err != nil {
		return false, err
	}
	status, err := phy.BasicStatus()
	if err != nil {
		return false, err
	}
	return status.LinkUp(), nil
}

// BasicControl reads the Basic Mode Control Register (BMCR, register 0).
func (phy *Device) BasicControl() (BMCR, error) {
	ctl, err := phy.mdio.Read(phy.phyaddr, AddrBMCR)
	return BMCR(ctl), err
}

// BasicStatus reads the Basic Mode Status Register (BMSR, register 1).
func (phy *Device) BasicStatus() (BMSR, error) {
	stat, err := phy.mdio.Read(phy.phyaddr, AddrBMSR)
	return BMSR(stat), err
}

// SetLoopback enables or disables PHY near-end loopback mode (BMCR bit 14).
// In loopback mode, TX data is routed back to RX internally through PCS/PMA/PMD.
func (phy *Device) SetLoopback(enable bool) error {
	ctl, err := phy.BasicControl()
	if err != nil {
		return err
	}
	if enable {
		ctl |= BMCRLoopback
	} else {
		ctl &^= BMCRLoopback
	}
	return phy.WriteReg(AddrBMCR, uint16(ctl))
}

// ReadReg reads a PHY register. Registers above 0x1f are read through the MMD
// indirect access registers if the variant supports it; otherwise the error is
// logged and 0 is returned. MDIO bus errors are logged and read as 0.
func (phy *Device) ReadReg(reg uint16) uint16 {
	v, err := phy.readReg(reg)
	if err != nil {
		phy.logerr("phy:read", slog.Uint64("reg", uint64(reg)), slog.String("err", err.Error()))
		return 0
	}
	return v
}

// ReadRegErr is like ReadReg but returns the error to the caller instead of logging it.
func (phy *Device) ReadRegErr(reg uint16) (uint16, error) {
	return phy.readReg(reg)
}

// WriteReg writes a PHY register. Registers above 0x1f are written through the MMD
// indirect access registers if the variant supports it; otherwise
// [etherc.ErrUnsupportedRegister] is returned and nothing is written.
func (phy *Device) WriteReg(reg, value uint16) error {
	if reg <= maxC22Reg {
		return phy.mdio.Write(phy.phyaddr, uint8(reg), value)
	}
	err := phy.selectExtended(reg)
	if err != nil {
		phy.logerr("phy:write", slog.Uint64("reg", uint64(reg)), slog.String("err", err.Error()))
		return err
	}
	return phy.mdio.Write(phy.phyaddr, regMMDData, value)
}

func (phy *Device) readReg(reg uint16) (uint16, error) {
	if reg <= maxC22Reg {
		return phy.mdio.Read(phy.phyaddr, uint8(reg))
	}
	err := phy.selectExtended(reg)
	if err != nil {
		return 0, err
	}
	return phy.mdio.Read(phy.phyaddr, regMMDData)
}

// selectExtended performs the address phase of an Annex 22D indirect access
// and leaves the MMD data register pointing at reg.
func (phy *Device) selectExtended(reg uint16) error {
	if !phy.variant.ExtendedRegisterAccess {
		return etherc.ErrUnsupportedRegister
	}
	dev := uint16(phy.variant.MMDDevice) & mmdDevAddrMask
	err := phy.mdio.Write(phy.phyaddr, regMMDControl, mmdFuncAddress|dev)
	if err != nil {
		return err
	}
	err = phy.mdio.Write(phy.phyaddr, regMMDData, reg)
	if err != nil {
		return err
	}
	return phy.mdio.Write(phy.phyaddr, regMMDControl, mmdFuncData|dev)
}

func (phy *Device) debug(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(phy.log, slog.LevelDebug, msg, attrs...)
}

func (phy *Device) trace(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(phy.log, internal.LevelTrace, msg, attrs...)
}

func (phy *Device) logerr(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(phy.log, slog.LevelError, msg, attrs...)
}
