package sim

import (
	"testing"

	"github.com/soypat/etherc/edmac"
	"github.com/soypat/etherc/phy"
)

func TestStatusWriteOneToClear(t *testing.T) {
	b := NewBoard(BoardConfig{})
	m := b.MAC
	m.EESR.setBits(edmac.EESRFR | edmac.EESRTC)
	m.EESR.Set(edmac.EESRFR)
	if m.EESR.Get() != edmac.EESRTC {
		t.Errorf("EESR=%#x after clearing FR", m.EESR.Get())
	}
	m.ECSR.setBits(edmac.ECSRLCHNG)
	if m.EESR.Get()&edmac.EESRECI != 0 {
		t.Error("ECI set with ETHERC interrupt source disabled")
	}
	m.ECSIPR.Set(edmac.ECSRLCHNG)
	if m.EESR.Get()&edmac.EESRECI == 0 {
		t.Error("ECI not reflecting enabled ECSR bit")
	}
	m.EESR.Set(edmac.EESRECI)
	if m.EESR.Get()&edmac.EESRECI == 0 {
		t.Error("ECI cleared through EESR")
	}
	m.ECSR.Set(edmac.ECSRClearAll)
	if m.EESR.Get()&edmac.EESRECI != 0 {
		t.Error("ECI set after clearing ECSR")
	}
}

func TestSoftwareReset(t *testing.T) {
	b := NewBoard(BoardConfig{})
	m := b.MAC
	m.EDRRR.Set(edmac.EDRRRRR)
	m.ECMR.Set(edmac.ECMRRE | edmac.ECMRTE)
	m.rxIdx = 3
	m.EDMR.Set(edmac.EDMRSWR | edmac.EDMRDE)
	if m.EDMR.Get() != edmac.EDMRDE {
		t.Errorf("SWR not self clearing: EDMR=%#x", m.EDMR.Get())
	}
	if m.EDRRR.Get() != 0 || m.ECMR.Get() != 0 || m.rxIdx != 0 {
		t.Error("software reset did not stop the MAC")
	}
}

func TestLinkSignal(t *testing.T) {
	var irqs int
	b := NewBoard(BoardConfig{PHY: PHYConfig{ANDelay: 1}})
	b.SetInterruptHandler(func() {
		irqs++
		b.MAC.ECSR.Set(b.MAC.ECSR.Get())
	})
	b.MAC.ECSIPR.Set(edmac.ECSRLCHNG)
	b.MAC.EESIPR.Set(edmac.EESRECI)
	b.SetLink(true, phy.NewANAR().With100M())
	for range 3 {
		b.Step()
	}
	if b.MAC.PSR.Get()&edmac.PSRLMON == 0 {
		t.Fatal("LMON not set after auto-negotiation")
	}
	if irqs != 1 {
		t.Errorf("interrupts %d, want 1", irqs)
	}
	b.SetLink(false, 0)
	b.Step()
	if b.MAC.PSR.Get()&edmac.PSRLMON != 0 || irqs != 2 {
		t.Errorf("link down not signalled: irqs=%d", irqs)
	}
}
