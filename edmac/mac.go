package edmac

import (
	"log/slog"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/internal"
	"github.com/soypat/etherc/phy"
)

// resetMAC issues an EDMAC/ETHERC software reset and waits for it to settle.
func (d *Driver) resetMAC() {
	etherc.SetBits(d.regs.EDMR, EDMRSWR)
	settle(d.resetSettle)
}

// configureMAC resets the MAC and DMA engine, programs the MAC address and
// reinitializes descriptor rings and MAC/DMA configuration for mode.
func (d *Driver) configureMAC(mode Mode) {
	d.resetMAC()
	mac := d.mac
	d.regs.MAHR.Set(uint32(mac[0])<<24 | uint32(mac[1])<<16 | uint32(mac[2])<<8 | uint32(mac[3]))
	d.regs.MALR.Set(uint32(mac[4])<<8 | uint32(mac[5]))
	d.initDescriptors()
	d.configHardware(mode)
}

// initDescriptors links the RX and TX rings over the buffer pool. RX descriptors
// are handed to hardware, TX descriptors start empty and software owned.
func (d *Driver) initDescriptors() {
	rxpool := d.pool[:d.nrx*d.bufsize]
	txpool := d.pool[d.nrx*d.bufsize:]
	d.rx.init(d.descs[:d.nrx], rxpool, d.bufsize, StatusACT)
	d.tx.init(d.descs[d.nrx:], txpool, d.bufsize, 0)
}

// configHardware registers the descriptor lists and programs frame limits,
// interrupt sources for mode, FIFO thresholds and continuous reception.
func (d *Driver) configHardware(mode Mode) {
	d.regs.Lists.SetDescriptorLists(d.rx.Descriptors(), d.tx.Descriptors())
	d.regs.ECSR.Set(ECSRClearAll)
	d.regs.EESR.Set(EESRClearAll)
	d.regs.ECMR.Set(0)
	d.regs.RFLR.Set(rflrMaxFrame)
	d.regs.IPGR.Set(ipgr96BitTimes)
	switch mode {
	case ModeMagicPacketDetect:
		d.regs.ECSIPR.Set(ECSRLCHNG | ECSRMPD)
		d.regs.EESIPR.Set(EESRECI)
	default:
		d.regs.ECSIPR.Set(ECSRLCHNG)
		d.regs.EESIPR.Set(EESRECI | EESRFR | EESRTC | eesrErrors)
	}
	d.regs.EDMR.Set(EDMRDE)
	d.regs.TRSCER.Set(0)
	d.regs.TFTR.Set(tftrStoreFwd)
	d.regs.FDR.Set(fdrDepth2048)
	d.regs.RMCR.Set(RMCRRNR)
	d.regs.FCFTR.Set(fcftrDefault)
}

// doLink reads the auto-negotiation result and enables the MAC for mode.
// In normal mode with full duplex and PAUSE enabled flow control is resolved
// against the link partner. Reception DMA is started only if stopped.
func (d *Driver) doLink(mode Mode) error {
	neg, err := d.phy.AutoNegotiation()
	if err != nil {
		return err
	}
	ecmr := d.regs.ECMR.Get() &^ (ECMRDM | ECMRRTM | ECMRTXF | ECMRRXF)
	switch neg.Mode {
	case phy.Link10HDX:
	case phy.Link10FDX:
		ecmr |= ECMRDM
	case phy.Link100HDX:
		ecmr |= ECMRRTM
	case phy.Link100FDX:
		ecmr |= ECMRDM | ECMRRTM
	default:
		return etherc.ErrANIncomplete
	}
	var txPause, rxPause bool
	if mode == ModeNormal && neg.Mode.IsFullDuplex() && d.pauseFrames {
		d.regs.APR.Set(uint32(d.pauseTime))
		d.regs.TPAUSER.Set(tpauserNoLimit)
		txPause, rxPause = phy.ResolvePause(neg.LocalPause, neg.PartnerPause)
		if txPause {
			ecmr |= ECMRTXF
		}
		if rxPause {
			ecmr |= ECMRRXF
		}
	}
	switch mode {
	case ModeMagicPacketDetect:
		// Receive path stays up for detection; the DMA engine is left alone.
		ecmr |= ECMRMPDE | ECMRRE
		ecmr &^= ECMRTE
		d.regs.ECMR.Set(ecmr)
	default:
		d.regs.ECMR.Set(ecmr | ECMRRE | ECMRTE)
		if d.regs.EDRRR.Get() == 0 {
			d.regs.EDRRR.Set(EDRRRRR)
		}
	}
	if internal.LogEnabled(d.log, slog.LevelDebug) {
		d.debug("edmac:link", slog.String("mode", mode.String()), slog.String("link", neg.Mode.String()),
			slog.Bool("txpause", txPause), slog.Bool("rxpause", rxPause))
	}
	return nil
}
