package phy_test

import (
	"testing"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/phy"
	"github.com/soypat/etherc/sim"
)

func newDevice(t *testing.T, phycfg sim.PHYConfig, cfg phy.DeviceConfig) (*phy.Device, *sim.PHY) {
	t.Helper()
	p := sim.NewPHY(phycfg)
	var mdio phy.MDIOBitBang
	mdio.Configure(p, func() {})
	cfg.PHYAddr = phycfg.Addr
	dev := new(phy.Device)
	err := dev.Configure(&mdio, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return dev, p
}

func TestDeviceInit(t *testing.T) {
	dev, p := newDevice(t, sim.PHYConfig{Addr: 3, ResetDelay: 5}, phy.DeviceConfig{ReadID: true})
	if dev.State() != phy.StateUninit {
		t.Fatalf("state %s", dev.State())
	}
	err := dev.Init()
	if err != nil {
		t.Fatal(err)
	}
	if dev.State() != phy.StateReady || p.Resets() != 1 {
		t.Errorf("state %s resets %d", dev.State(), p.Resets())
	}
	id1, id2 := dev.ID()
	if id1 != sim.DefaultID1 || id2 != sim.DefaultID2 {
		t.Errorf("ID %#x %#x", id1, id2)
	}
}

func TestDeviceInitTimeout(t *testing.T) {
	dev, _ := newDevice(t, sim.PHYConfig{ResetDelay: -1}, phy.DeviceConfig{ResetPolls: 16})
	err := dev.Init()
	if err != etherc.ErrInitTimeout {
		t.Fatalf("want ErrInitTimeout, got %v", err)
	}
	if dev.State() != phy.StateFailed {
		t.Errorf("state %s", dev.State())
	}
	// Reset completing within the budget succeeds.
	dev, _ = newDevice(t, sim.PHYConfig{ResetDelay: 15}, phy.DeviceConfig{ResetPolls: 16})
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceExtendedRegisters(t *testing.T) {
	const reg, val = 0x1b, 0x1234
	variant := phy.VariantExtended("test", 0x1f, phy.RegWrite{Reg: 0x100, Value: 0xbeef})
	dev, p := newDevice(t, sim.PHYConfig{}, phy.DeviceConfig{Variant: variant})
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if p.ExtendedReg(0x100) != 0xbeef {
		t.Error("post reset write not applied")
	}
	if err := dev.WriteReg(0x200, val); err != nil {
		t.Fatal(err)
	}
	if got := dev.ReadReg(0x200); got != val {
		t.Errorf("extended read %#x", got)
	}
	// Clause 22 registers are accessed directly.
	if err := dev.WriteReg(reg, val); err != nil {
		t.Fatal(err)
	}
	if p.Reg(reg) != val {
		t.Error("direct write failed")
	}
}

func TestDeviceUnsupportedRegister(t *testing.T) {
	dev, p := newDevice(t, sim.PHYConfig{}, phy.DeviceConfig{})
	p.RecordTransactions(true)
	if err := dev.WriteReg(0x20, 1); err != etherc.ErrUnsupportedRegister {
		t.Errorf("write: want ErrUnsupportedRegister, got %v", err)
	}
	if _, err := dev.ReadRegErr(0x20); err != etherc.ErrUnsupportedRegister {
		t.Errorf("read: want ErrUnsupportedRegister, got %v", err)
	}
	if dev.ReadReg(0x20) != 0 {
		t.Error("unsupported read not 0")
	}
	if len(p.Transactions()) != 0 {
		t.Error("bus accessed for unsupported register")
	}
}

func TestDeviceAutoNegotiation(t *testing.T) {
	dev, p := newDevice(t, sim.PHYConfig{ANDelay: 1}, phy.DeviceConfig{})
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if err := dev.StartAutoNegotiation(true); err != nil {
		t.Fatal(err)
	}
	if dev.Advertisement().PauseBits() != 0b11 {
		t.Errorf("advertisement %#x", uint16(dev.Advertisement()))
	}
	if phy.ANAR(p.Reg(phy.AddrANAR)) != dev.Advertisement() {
		t.Error("advertisement not written")
	}
	if _, err := dev.AutoNegotiation(); err != etherc.ErrLinkDown {
		t.Errorf("no cable: %v", err)
	}
	// Partner advertises 10M full and 100M half: last match decodes 100M half.
	p.SetLink(true, phy.NewANAR()|phy.ANAR10Full|phy.ANAR100Half|phy.ANARPauseAsym)
	neg, err := dev.AutoNegotiation()
	if err != etherc.ErrANIncomplete {
		t.Errorf("before completion: %v", err)
	}
	if neg.LocalPause != 0b11 {
		t.Errorf("local pause %b", neg.LocalPause)
	}
	p.Step()
	p.Step()
	neg, err = dev.AutoNegotiation()
	if err != nil {
		t.Fatal(err)
	}
	if neg.Mode != phy.Link100HDX || neg.PartnerPause != 0b01 {
		t.Errorf("negotiation %+v", neg)
	}
}

func TestDeviceLinkStatusLatched(t *testing.T) {
	dev, p := newDevice(t, sim.PHYConfig{}, phy.DeviceConfig{})
	p.SetLink(true, phy.NewANAR().With100M())
	up, err := dev.LinkStatus()
	if err != nil || !up {
		t.Fatalf("link up: %v %v", up, err)
	}
	// Link drops and recovers between polls: first BMSR read shows the latched fault.
	p.SetLink(false, 0)
	p.SetLink(true, phy.NewANAR().With100M())
	st, _ := dev.BasicStatus()
	if st.LinkUp() {
		t.Error("latched link fault not reported")
	}
	up, _ = dev.LinkStatus()
	if !up {
		t.Error("link status not current after latch cleared")
	}
}

func TestDeviceLoopback(t *testing.T) {
	dev, p := newDevice(t, sim.PHYConfig{}, phy.DeviceConfig{})
	if err := dev.SetLoopback(true); err != nil {
		t.Fatal(err)
	}
	if phy.BMCR(p.Reg(phy.AddrBMCR))&phy.BMCRLoopback == 0 {
		t.Error("loopback not set")
	}
	dev.SetLoopback(false)
	if phy.BMCR(p.Reg(phy.AddrBMCR))&phy.BMCRLoopback != 0 {
		t.Error("loopback not cleared")
	}
}

func TestDeviceConfigureInvalid(t *testing.T) {
	var dev phy.Device
	var mdio phy.MDIOBitBang
	mdio.Configure(sim.NewPHY(sim.PHYConfig{}), nil)
	if err := dev.Configure(&mdio, phy.DeviceConfig{PHYAddr: 32}); err != etherc.ErrInvalidConfig {
		t.Errorf("address 32: %v", err)
	}
	if err := dev.Configure(nil, phy.DeviceConfig{}); err != etherc.ErrInvalidConfig {
		t.Errorf("nil bus: %v", err)
	}
}
