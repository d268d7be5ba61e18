// Package sim provides a software model of an ETHERC/EDMAC Ethernet peripheral
// with an attached Clause 22 PHY. It lets the edmac driver run against
// simulated registers and a simulated wire on a host machine.
package sim

import (
	"log/slog"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/edmac"
	"github.com/soypat/etherc/phy"
)

// BoardConfig configures a [Board].
type BoardConfig struct {
	PHY PHYConfig
	// Logger is optional and is shared by the MAC and PHY models unless PHY.Logger is set.
	Logger *slog.Logger
}

// Board is a MAC and PHY pair with a level triggered interrupt line.
type Board struct {
	PHY *PHY
	MAC *MAC

	irq   func()
	steps int
}

// NewBoard returns a board with the link down.
func NewBoard(cfg BoardConfig) *Board {
	if cfg.PHY.Logger == nil {
		cfg.PHY.Logger = cfg.Logger
	}
	p := NewPHY(cfg.PHY)
	return &Board{PHY: p, MAC: NewMAC(p, cfg.Logger)}
}

// PIR returns the PHY interface register used for MDIO bit-banging.
func (b *Board) PIR() etherc.Register32 { return b.PHY }

// Registers returns the register block to configure an edmac driver with.
func (b *Board) Registers() edmac.Registers {
	m := b.MAC
	return edmac.Registers{
		EDMR: &m.EDMR, EDTRR: &m.EDTRR, EDRRR: &m.EDRRR, EESR: &m.EESR, EESIPR: &m.EESIPR,
		TRSCER: &m.TRSCER, TFTR: &m.TFTR, FDR: &m.FDR, RMCR: &m.RMCR, FCFTR: &m.FCFTR,
		ECMR: &m.ECMR, ECSR: &m.ECSR, ECSIPR: &m.ECSIPR, PSR: &m.PSR, RFLR: &m.RFLR,
		IPGR: &m.IPGR, APR: &m.APR, MPR: &m.MPR, TPAUSER: &m.TPAUSER, MAHR: &m.MAHR, MALR: &m.MALR,
		Lists: m,
	}
}

// SetInterruptHandler sets the function called while the interrupt line is asserted,
// typically the driver's HandleInterrupt.
func (b *Board) SetInterruptHandler(fn func()) { b.irq = fn }

// SetLink plugs or unplugs the cable. partner is the link partner's advertisement.
func (b *Board) SetLink(up bool, partner phy.ANAR) { b.PHY.SetLink(up, partner) }

// PulseLinkSignal glitches the MAC link signal to up and interrupts immediately.
func (b *Board) PulseLinkSignal(up bool) {
	b.MAC.PulseLinkSignal(up)
	b.interrupt()
}

// Step advances the PHY and MAC by one time unit, moving frames between the
// rings and the wire, and calls the interrupt handler once if the line is asserted.
func (b *Board) Step() {
	b.steps++
	b.PHY.Step()
	b.MAC.step()
	b.interrupt()
}

// Steps returns the number of calls to Step.
func (b *Board) Steps() int { return b.steps }

func (b *Board) interrupt() {
	if b.irq != nil && b.MAC.InterruptPending() {
		b.irq()
	}
}
