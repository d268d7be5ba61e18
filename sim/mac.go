package sim

import (
	"log/slog"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/edmac"
	"github.com/soypat/etherc/ethernet"
	"github.com/soypat/etherc/internal"
)

var _ edmac.DescriptorLists = (*MAC)(nil)

// MAC models an ETHERC MAC with its EDMAC DMA engine. Frames move between the
// descriptor rings and the simulated wire when [Board.Step] is called.
type MAC struct {
	EDMR, EDTRR, EDRRR, EESR, EESIPR, TRSCER, TFTR, FDR, RMCR, FCFTR Reg

	ECMR, ECSR, ECSIPR, PSR, RFLR, IPGR, APR, MPR, TPAUSER, MAHR, MALR Reg

	phy *PHY
	log *slog.Logger

	rx, tx       []edmac.Descriptor
	rxIdx, txIdx int
	lmon         bool

	wire        [][]byte // Frames with FCS waiting for reception.
	transmitted [][]byte // Transmitted frames without FCS.
	onTransmit  func(frame []byte)
	dropped     int
}

// NewMAC returns a MAC whose link signal follows p.
func NewMAC(p *PHY, logger *slog.Logger) *MAC {
	m := &MAC{phy: p, log: logger}
	m.EESR.onSet = writeOneToClear
	m.ECSR.onSet = writeOneToClear
	m.EESR.onGet = func(stored uint32) uint32 {
		// ECI reflects enabled ETHERC status and can't be cleared through EESR.
		stored &^= edmac.EESRECI
		if m.ECSR.v&m.ECSIPR.v != 0 {
			stored |= edmac.EESRECI
		}
		return stored
	}
	m.EDMR.onSet = func(_, v uint32) uint32 {
		if v&edmac.EDMRSWR != 0 {
			m.softwareReset()
		}
		return v &^ edmac.EDMRSWR
	}
	m.PSR.onSet = func(stored, _ uint32) uint32 { return stored }
	return m
}

// softwareReset stops both DMA channels and resets ETHERC and EDMAC status.
func (m *MAC) softwareReset() {
	m.EDTRR.put(0)
	m.EDRRR.put(0)
	m.EESR.put(0)
	m.EESIPR.put(0)
	m.ECMR.put(0)
	m.ECSR.put(0)
	m.ECSIPR.put(0)
	m.rxIdx = 0
	m.txIdx = 0
}

// SetDescriptorLists latches the descriptor lists and resets the DMA cursors to the list bases.
func (m *MAC) SetDescriptorLists(rx, tx []edmac.Descriptor) {
	m.rx = rx
	m.tx = tx
	m.rxIdx = 0
	m.txIdx = 0
}

// HardwareAddr6 returns the address programmed in MAHR and MALR.
func (m *MAC) HardwareAddr6() (mac [6]byte) {
	h, l := m.MAHR.v, m.MALR.v
	return [6]byte{byte(h >> 24), byte(h >> 16), byte(h >> 8), byte(h), byte(l >> 8), byte(l)}
}

// Receive queues frame for reception after appending its FCS.
func (m *MAC) Receive(frame []byte) {
	m.ReceiveWithFCS(ethernet.AppendFCS(append([]byte(nil), frame...)))
}

// ReceiveWithFCS queues a frame that already carries an FCS, which may be invalid.
func (m *MAC) ReceiveWithFCS(frame []byte) {
	m.wire = append(m.wire, append([]byte(nil), frame...))
}

// Pending returns the number of frames waiting for reception.
func (m *MAC) Pending() int { return len(m.wire) }

// Dropped returns the number of frames discarded by the receiver.
func (m *MAC) Dropped() int { return m.dropped }

// Transmitted returns the frames transmitted since the last call and clears them.
func (m *MAC) Transmitted() [][]byte {
	txd := m.transmitted
	m.transmitted = nil
	return txd
}

// OnTransmit sets a callback invoked for each transmitted frame. The frame
// excludes the FCS and must not be retained after the callback returns.
func (m *MAC) OnTransmit(fn func(frame []byte)) { m.onTransmit = fn }

// PulseLinkSignal drives the link signal to up and latches a link change
// without any change at the PHY. The signal follows the PHY again on the next step.
func (m *MAC) PulseLinkSignal(up bool) {
	if up {
		m.PSR.setBits(edmac.PSRLMON)
	} else {
		m.PSR.clearBits(edmac.PSRLMON)
	}
	m.ECSR.setBits(edmac.ECSRLCHNG)
}

// LatchStatus latches ETHERC status bits in ECSR as if the events occurred.
func (m *MAC) LatchStatus(ecsr uint32) { m.ECSR.setBits(ecsr) }

// InterruptPending reports whether an enabled EDMAC status bit is set.
func (m *MAC) InterruptPending() bool {
	return m.EESR.Get()&m.EESIPR.v != 0
}

// step runs the MAC for one time unit.
func (m *MAC) step() {
	m.updateLinkSignal()
	m.transmit()
	m.receive()
}

func (m *MAC) updateLinkSignal() {
	lmon := m.phy.LinkSignal()
	if lmon {
		m.PSR.setBits(edmac.PSRLMON)
	} else {
		m.PSR.clearBits(edmac.PSRLMON)
	}
	if lmon == m.lmon {
		return
	}
	m.lmon = lmon
	m.ECSR.setBits(edmac.ECSRLCHNG)
	m.trace("sim:lmon", slog.Bool("up", lmon))
}

func (m *MAC) transmit() {
	if m.EDTRR.v&edmac.EDTRRTR == 0 || m.ECMR.v&edmac.ECMRTE == 0 || len(m.tx) == 0 {
		return
	}
	for range m.tx {
		d := &m.tx[m.txIdx]
		st := d.Status()
		if st&edmac.StatusACT == 0 {
			break
		}
		frame := d.Buf()[:d.Len()]
		if m.onTransmit != nil {
			m.onTransmit(frame)
		}
		m.transmitted = append(m.transmitted, append([]byte(nil), frame...))
		d.SetStatus(st &^ edmac.StatusACT)
		m.txIdx = d.Next()
		m.EESR.setBits(edmac.EESRTC)
		m.trace("sim:tx", slog.Int("len", len(frame)))
	}
	if m.tx[m.txIdx].Status()&edmac.StatusACT == 0 {
		m.EDTRR.put(0)
	}
}

func (m *MAC) receive() {
	for len(m.wire) > 0 {
		frame := m.wire[0]
		if !m.accept(frame) {
			m.wire = m.wire[1:]
			m.dropped++
			continue
		}
		if m.ECMR.v&edmac.ECMRMPDE != 0 {
			// Magic packet detection: frames are inspected, never transferred.
			if ethernet.IsMagicPacket(frame, m.HardwareAddr6()) {
				m.ECSR.setBits(edmac.ECSRMPD)
				m.trace("sim:magic-packet")
			}
			m.wire = m.wire[1:]
			continue
		}
		if m.EDRRR.v&edmac.EDRRRRR == 0 || len(m.rx) == 0 {
			return
		}
		d := &m.rx[m.rxIdx]
		st := d.Status()
		if st&edmac.StatusACT == 0 {
			m.EESR.setBits(edmac.EESRRDE)
			m.EDRRR.put(0)
			return
		}
		m.wire = m.wire[1:]
		m.store(d, st, frame)
		m.rxIdx = d.Next()
		m.EESR.setBits(edmac.EESRFR)
		if m.RMCR.v&edmac.RMCRRNR == 0 {
			m.EDRRR.put(0)
		}
	}
}

// accept applies the receive enable and address filter.
func (m *MAC) accept(frame []byte) bool {
	if m.ECMR.v&edmac.ECMRRE == 0 || len(frame) < ethernet.SizeFCS {
		return false
	}
	efrm, err := ethernet.NewFrame(frame[:len(frame)-ethernet.SizeFCS])
	if err != nil {
		return false
	}
	if m.ECMR.v&edmac.ECMRPRM != 0 {
		return true
	}
	dst := efrm.DestinationHardwareAddr()
	return ethernet.IsMulticastAddr(dst) || *dst == m.HardwareAddr6()
}

// store writes frame into d and returns it to software with the frame status.
func (m *MAC) store(d *edmac.Descriptor, st edmac.Status, frame []byte) {
	var rfs edmac.Status
	if !ethernet.CheckFCS(frame) {
		rfs |= edmac.StatusCERF
	}
	data := frame[:len(frame)-ethernet.SizeFCS]
	if len(data) < etherc.MinFrameSize {
		rfs |= edmac.StatusRTSF
	}
	if (m.RFLR.v != 0 && len(frame) > int(m.RFLR.v)) || len(data) > d.Cap() {
		rfs |= edmac.StatusRTLF
		data = data[:min(len(data), d.Cap())]
	}
	efrm, _ := ethernet.NewFrame(frame) // Length checked by accept.
	if ethernet.IsMulticastAddr(efrm.DestinationHardwareAddr()) {
		rfs |= edmac.StatusRMAF
	}
	n := copy(d.Buf(), data)
	d.SetLen(n)
	st = st&edmac.StatusDLE | edmac.StatusSingleFrame | rfs
	if rfs&^edmac.StatusRMAF != 0 {
		st |= edmac.StatusFE
		m.EESR.setBits(uint32(rfs &^ edmac.StatusRMAF))
	}
	d.SetStatus(st)
	m.trace("sim:rx", slog.Int("len", n), slog.String("type", efrm.EtherTypeOrSize().String()), slog.Uint64("rfs", uint64(rfs)))
}

func (m *MAC) trace(msg string, attrs ...slog.Attr) {
	internal.LogAttrs(m.log, internal.LevelTrace, msg, attrs...)
}
