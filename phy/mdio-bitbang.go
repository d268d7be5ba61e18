package phy

import (
	"github.com/soypat/etherc"
)

var _ MDIOBus = (*MDIOBitBang)(nil) // compile time guarantee of interface implementation.

const (
	mdioRead  = 0b10
	mdioWrite = 0b01
)

// PHY interface register (PIR) bits. The MAC exposes the MDIO/MDC pins
// through this single register instead of a dedicated MDIO controller.
const (
	PIRMDC = 1 << 0 // Management data clock.
	PIRMMD = 1 << 1 // Management mode: 1 when station drives MDIO.
	PIRMDO = 1 << 2 // Management data out.
	PIRMDI = 1 << 3 // Management data in (read only).
)

// DefaultMDIODelay is the busy-wait iteration count used for each clock phase
// when no delay function is configured. It must keep MDC at or below 2.5MHz
// for the target core clock; it is not a wall-clock duration.
const DefaultMDIODelay = 70

// MDIOBitBang provides a software defined(bitbang) MDIO/MDC management interface for PHY register access
// as the STA (Management station, this implementation) which communicates to the PHY (Physical layer device).
// Bits are clocked through the PHY interface register ([PIRMDC], [PIRMMD], [PIRMDO], [PIRMDI]).
//
//	var mdio phy.MDIOBitBang
//	mdio.Configure(&ETHERC.PIR, phy.CycleDelay(phy.DefaultMDIODelay))
type MDIOBitBang struct {
	pir   etherc.Register32
	delay func()
}

// Configure initializes the MDIO bit-bang interface over the PHY interface register.
// delay is called after every register write to sustain each clock phase.
// A nil delay uses [CycleDelay] with [DefaultMDIODelay].
func (m *MDIOBitBang) Configure(pir etherc.Register32, delay func()) {
	if pir == nil {
		panic("nil PIR register")
	}
	if delay == nil {
		delay = CycleDelay(DefaultMDIODelay)
	}
	m.pir = pir
	m.delay = delay
	m.pir.Set(0)
}

// CycleDelay returns a delay function that busy-waits for the given number of iterations.
func CycleDelay(iterations int) func() {
	return func() {
		for i := 0; i < iterations; i++ {
			cycleSink++
		}
	}
}

// cycleSink keeps busy-wait loops from being optimized away.
var cycleSink uint32

// Read reads a Clause 22 PHY register.
func (m *MDIOBitBang) Read(phyAddr, regAddr uint8) (uint16, error) {
	m.preamble()
	m.cmd(mdioRead, phyAddr, regAddr)
	// Turnaround Z0: release the bus, PHY drives the second bit low.
	m.release()
	m.release()
	ret := m.getNum(16)
	m.release()
	return ret, nil
}

// Write writes a value to a Clause 22 PHY register.
func (m *MDIOBitBang) Write(phyAddr, regAddr uint8, value uint16) error {
	m.preamble()
	m.cmd(mdioWrite, phyAddr, regAddr)
	// send turnaround (10)
	m.sendBit(true)
	m.sendBit(false)

	m.sendNum(value, 16)
	m.release()
	return nil
}

func (m *MDIOBitBang) preamble() {
	// Preamble, 32 bits of 1.
	for range 32 {
		m.sendBit(true)
	}
}

func (m *MDIOBitBang) cmd(op uint8, phy uint8, reg uint8) {
	// Start of frame: 01
	m.sendBit(false)
	m.sendBit(true)

	m.sendBit((op>>1)&1 != 0)
	m.sendBit((op>>0)&1 != 0)
	m.sendNum(uint16(phy), 5)
	m.sendNum(uint16(reg), 5)
}

func (m *MDIOBitBang) sendNum(val uint16, bits int) {
	for i := bits - 1; i >= 0; i-- {
		m.sendBit((val>>i)&1 != 0)
	}
}

func (m *MDIOBitBang) getNum(bits int) (ret uint16) {
	for i := bits - 1; i >= 0; i-- {
		ret <<= 1
		ret |= uint16(b2u8(m.getBit()))
	}
	return ret
}

// sendBit drives one bit: clock low with data, clock high, hold, clock low.
func (m *MDIOBitBang) sendBit(b bool) {
	v := uint32(PIRMMD)
	if b {
		v |= PIRMDO
	}
	m.set(v)
	m.set(v | PIRMDC)
	m.set(v | PIRMDC)
	m.set(v)
}

// getBit clocks one bit in with the bus released, sampling MDI while MDC is high.
func (m *MDIOBitBang) getBit() bool {
	m.set(0)
	m.set(PIRMDC)
	bit := m.pir.Get()&PIRMDI != 0
	m.set(PIRMDC)
	m.set(0)
	return bit
}

// release clocks one bit time with MMD cleared so the PHY may drive the line.
func (m *MDIOBitBang) release() {
	m.set(0)
	m.set(PIRMDC)
	m.set(PIRMDC)
	m.set(0)
}

func (m *MDIOBitBang) set(v uint32) {
	m.pir.Set(v)
	m.delay()
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
