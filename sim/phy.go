package sim

import (
	"log/slog"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/internal"
	"github.com/soypat/etherc/phy"
)

var _ etherc.Register32 = (*PHY)(nil)

// Default PHY model identifiers.
const (
	DefaultID1 = 0x0007
	DefaultID2 = 0xc0f1
)

const (
	regID1        = 0x02
	regID2        = 0x03
	regMMDControl = 0x0d
	regMMDData    = 0x0e
)

// PHYConfig configures a simulated PHY.
type PHYConfig struct {
	// Addr is the MDIO address the PHY responds to.
	Addr uint8
	// ID1 and ID2 are the identifier register values. Zero selects DefaultID1 and DefaultID2.
	ID1, ID2 uint16
	// ResetDelay is the number of BMCR reads during which the reset bit remains set
	// after a reset is requested. Negative values make reset never complete.
	ResetDelay int
	// ANDelay is the number of Step calls auto-negotiation takes once link is up.
	ANDelay int
	// Logger is optional. MDIO transactions are logged at trace level.
	Logger *slog.Logger
}

// Transaction is a decoded MDIO management frame.
type Transaction struct {
	Write   bool
	PHYAddr uint8
	Reg     uint8
	Value   uint16
}

type mdioState uint8

const (
	mdioIdle mdioState = iota
	mdioHeader
	mdioWriteTA
	mdioWriteData
	mdioReadTA
	mdioReadData
)

// PHY models an IEEE 802.3 Clause 22 PHY attached to the MAC's PHY interface
// register. It implements [etherc.Register32] as that register: writes drive
// MDC, MMD and MDO, and reads return MDI as driven by the PHY.
// Frames are decoded on the MDC rising edge.
type PHY struct {
	cfg PHYConfig

	// PIR and MDIO decoder state.
	pir    uint32
	mdi    bool
	state  mdioState
	ones   int
	nbits  int
	shift  uint32
	cur    Transaction
	record bool
	txs    []Transaction

	// Register model.
	regs        [32]uint16
	resetReads  int
	ext         map[uint16]uint16
	mmdCtl      uint16
	mmdAddr     uint16
	link        bool
	latchedDown bool
	partner     phy.ANAR
	anRunning   bool
	anComplete  bool
	anTimer     int
	resets      int
}

// NewPHY returns a simulated PHY with link down.
func NewPHY(cfg PHYConfig) *PHY {
	if cfg.ID1 == 0 && cfg.ID2 == 0 {
		cfg.ID1, cfg.ID2 = DefaultID1, DefaultID2
	}
	p := &PHY{cfg: cfg, ext: make(map[uint16]uint16), mdi: true}
	p.resetRegs()
	return p
}

func (p *PHY) resetRegs() {
	p.regs = [32]uint16{}
	p.regs[phy.AddrBMCR] = uint16(phy.BMCRANEnable)
	p.regs[phy.AddrANAR] = uint16(phy.NewANAR().With10M().With100M())
	p.regs[regID1] = p.cfg.ID1
	p.regs[regID2] = p.cfg.ID2
	p.anRunning = p.link
	p.anComplete = false
	p.anTimer = p.cfg.ANDelay
	p.mmdCtl = 0
	p.mmdAddr = 0
}

// Get returns the PIR value with MDI set as driven by the PHY.
func (p *PHY) Get() uint32 {
	v := p.pir &^ phy.PIRMDI
	if p.mdi {
		v |= phy.PIRMDI
	}
	return v
}

// Set writes the PIR. A 0 to 1 transition of MDC clocks the MDIO decoder.
func (p *PHY) Set(v uint32) {
	rising := p.pir&phy.PIRMDC == 0 && v&phy.PIRMDC != 0
	p.pir = v &^ phy.PIRMDI
	if rising {
		p.clock(v&phy.PIRMMD != 0, v&phy.PIRMDO != 0)
	}
}

// clock advances the decoder by one bit. driven is false when the station
// released the line, in which case the PHY may drive MDI.
func (p *PHY) clock(driven, bit bool) {
	switch p.state {
	case mdioIdle:
		p.mdi = true
		if !driven {
			p.ones = 0
		} else if bit {
			p.ones++
		} else if p.ones >= 32 {
			// First bit of start of frame.
			p.state = mdioHeader
			p.nbits = 1
			p.shift = 0
		} else {
			p.ones = 0
		}

	case mdioHeader:
		if !driven {
			p.abort()
			return
		}
		p.shift = p.shift<<1 | uint32(b2u(bit))
		p.nbits++
		if p.nbits < 14 {
			return
		}
		// ST(2) OP(2) PHYAD(5) REGAD(5), ST's leading 0 already consumed.
		st := p.shift >> 12 & 1
		op := p.shift >> 10 & 0b11
		p.cur = Transaction{PHYAddr: uint8(p.shift>>5) & 0x1f, Reg: uint8(p.shift) & 0x1f}
		p.nbits = 0
		p.shift = 0
		switch {
		case st != 1:
			p.abort()
		case op == 0b01:
			p.cur.Write = true
			p.state = mdioWriteTA
		case op == 0b10:
			p.state = mdioReadTA
		default:
			p.abort()
		}

	case mdioWriteTA:
		if !driven {
			p.abort()
			return
		}
		p.nbits++
		if p.nbits == 2 {
			p.state = mdioWriteData
			p.nbits = 0
		}

	case mdioWriteData:
		if !driven {
			p.abort()
			return
		}
		p.shift = p.shift<<1 | uint32(b2u(bit))
		p.nbits++
		if p.nbits == 16 {
			p.cur.Value = uint16(p.shift)
			if p.cur.PHYAddr == p.cfg.Addr {
				p.writeReg(p.cur.Reg, p.cur.Value)
			}
			p.finish()
		}

	case mdioReadTA:
		if driven {
			p.abort()
			return
		}
		p.nbits++
		addressed := p.cur.PHYAddr == p.cfg.Addr
		if p.nbits == 1 {
			// Z: pulled up.
			p.mdi = true
			return
		}
		p.mdi = !addressed
		p.state = mdioReadData
		p.nbits = 0
		if addressed {
			p.cur.Value = p.readReg(p.cur.Reg)
		} else {
			p.cur.Value = 0xffff
		}

	case mdioReadData:
		if driven {
			p.abort()
			return
		}
		p.mdi = p.cur.Value>>(15-p.nbits)&1 != 0
		p.nbits++
		if p.nbits == 16 {
			p.finish()
		}
	}
}

func (p *PHY) finish() {
	if p.record {
		p.txs = append(p.txs, p.cur)
	}
	if internal.LogEnabled(p.cfg.Logger, internal.LevelTrace) {
		internal.LogAttrs(p.cfg.Logger, internal.LevelTrace, "sim:mdio",
			slog.Bool("write", p.cur.Write),
			slog.Uint64("phyaddr", uint64(p.cur.PHYAddr)),
			slog.Uint64("reg", uint64(p.cur.Reg)),
			internal.SlogReg("val", uint32(p.cur.Value)),
		)
	}
	p.state = mdioIdle
	p.ones = 0
	p.nbits = 0
	p.shift = 0
}

func (p *PHY) abort() {
	p.state = mdioIdle
	p.ones = 0
	p.nbits = 0
	p.mdi = true
}

// RecordTransactions enables or disables recording of decoded MDIO frames.
// Disabling discards recorded frames.
func (p *PHY) RecordTransactions(enable bool) {
	p.record = enable
	if !enable {
		p.txs = nil
	}
}

// Transactions returns the recorded MDIO frames.
func (p *PHY) Transactions() []Transaction { return p.txs }

// Resets returns the number of software resets requested through BMCR.
func (p *PHY) Resets() int { return p.resets }

// Reg returns the register value without read side effects.
func (p *PHY) Reg(reg uint8) uint16 { return p.regs[reg&0x1f] }

// ExtendedReg returns the value of an extended register written through the MMD access registers.
func (p *PHY) ExtendedReg(reg uint16) uint16 { return p.ext[reg] }

// SetLink sets the cable state. When up, partner is the link partner's
// advertisement and auto-negotiation is restarted if enabled.
func (p *PHY) SetLink(up bool, partner phy.ANAR) {
	if up == p.link && partner == p.partner {
		return
	}
	p.partner = partner
	p.link = up
	p.anComplete = false
	if !up {
		p.latchedDown = true
		p.anRunning = false
		return
	}
	p.anRunning = phy.BMCR(p.regs[phy.AddrBMCR])&phy.BMCRANEnable != 0
	p.anTimer = p.cfg.ANDelay
}

// SetResetDelay sets the number of BMCR reads a subsequent reset is held for.
// A negative value makes resets never complete.
func (p *PHY) SetResetDelay(reads int) { p.cfg.ResetDelay = reads }

// Link returns the cable state.
func (p *PHY) Link() bool { return p.link }

// LinkSignal returns the state of the PHY link signal to the MAC: link up with
// auto-negotiation complete, or link up with auto-negotiation disabled.
func (p *PHY) LinkSignal() bool {
	if !p.link {
		return false
	}
	return p.anComplete || phy.BMCR(p.regs[phy.AddrBMCR])&phy.BMCRANEnable == 0
}

// Step advances auto-negotiation by one time unit.
func (p *PHY) Step() {
	if !p.anRunning || !p.link {
		return
	}
	if p.anTimer > 0 {
		p.anTimer--
		return
	}
	p.anRunning = false
	p.anComplete = true
}

func (p *PHY) readReg(reg uint8) uint16 {
	switch reg {
	case phy.AddrBMCR:
		v := p.regs[phy.AddrBMCR]
		if p.resetReads != 0 {
			v |= uint16(phy.BMCRReset)
			if p.resetReads > 0 {
				p.resetReads--
			}
		}
		return v
	case phy.AddrBMSR:
		v := phy.BMSR10Half | phy.BMSR10Full | phy.BMSR100Half | phy.BMSR100Full |
			phy.BMSRANCap | phy.BMSRExtCap
		if p.link && !p.latchedDown {
			v |= phy.BMSRLinkStatus
		}
		if p.anComplete {
			v |= phy.BMSRANComplete
		}
		p.latchedDown = false
		return uint16(v)
	case phy.AddrANLPAR:
		if !p.anComplete {
			return 0
		}
		return uint16(p.partner | phy.ANARAck)
	case regMMDData:
		if p.mmdCtl>>14 == 0 {
			return p.mmdAddr
		}
		return p.ext[p.mmdAddr]
	}
	return p.regs[reg]
}

func (p *PHY) writeReg(reg uint8, v uint16) {
	switch reg {
	case phy.AddrBMCR:
		ctl := phy.BMCR(v)
		if ctl&phy.BMCRReset != 0 {
			p.resets++
			p.resetRegs()
			p.resetReads = p.cfg.ResetDelay
			return
		}
		p.regs[phy.AddrBMCR] = uint16(ctl &^ phy.BMCRANRestart)
		if ctl&phy.BMCRANEnable != 0 && ctl&phy.BMCRANRestart != 0 {
			p.anComplete = false
			p.anRunning = p.link
			p.anTimer = p.cfg.ANDelay
		}
	case phy.AddrBMSR, phy.AddrANLPAR, regID1, regID2:
		// Read only.
	case regMMDControl:
		p.mmdCtl = v
	case regMMDData:
		if p.mmdCtl>>14 == 0 {
			p.mmdAddr = v
		} else {
			p.ext[p.mmdAddr] = v
		}
	default:
		p.regs[reg] = v
	}
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
