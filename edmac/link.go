package edmac

import (
	"log/slog"

	"github.com/soypat/etherc"
)

// HandleInterrupt services the combined ETHERC/EDMAC interrupt. It must be called
// from the Ethernet interrupt handler. It only sets pending flags for Process,
// acknowledges the status bits it read and calls the configured OnInterrupt hook.
func (d *Driver) HandleInterrupt() {
	eesr := d.regs.EESR.Get()
	if eesr&EESRECI != 0 {
		ecsr := d.regs.ECSR.Get()
		if ecsr&ECSRMPD != 0 {
			d.magicPending.Store(true)
		}
		if d.useLinkSignal && ecsr&ECSRLCHNG != 0 {
			if d.regs.PSR.Get()&PSRLMON != 0 {
				d.linkChange.Store(uint32(LinkChangeUp))
			} else {
				d.linkChange.Store(uint32(LinkChangeDown))
			}
		}
		// Write back exactly what was read: bits latched after the read stay pending.
		d.regs.ECSR.Set(ecsr)
	}
	d.regs.EESR.Set(eesr)
	if d.onInterrupt != nil {
		d.onInterrupt()
	}
}

// Process reconciles pending link and wake events. It must be called periodically
// from the main loop, never from interrupt context. At most one of magic packet,
// link up and link down is handled per call. Link changes are confirmed by
// reading the PHY; unconfirmed changes are discarded.
func (d *Driver) Process() {
	if !d.open {
		if d.reopenPending {
			d.reopen()
		}
		return
	}
	if !d.useLinkSignal {
		d.pollLink()
	}
	if d.magicPending.Load() {
		d.magicPending.Store(false)
		d.wake()
		return
	}
	switch LinkChange(d.linkChange.Load()) {
	case LinkChangeUp:
		d.linkChange.CompareAndSwap(uint32(LinkChangeUp), uint32(LinkChangeNone))
		d.processLinkUp()
	case LinkChangeDown:
		d.linkChange.CompareAndSwap(uint32(LinkChangeDown), uint32(LinkChangeNone))
		d.processLinkDown()
	}
}

// pollLink sets a pending link change when the PHY link status differs from
// the last state acted upon.
func (d *Driver) pollLink() {
	up, err := d.phy.LinkStatus()
	if err != nil {
		d.logerr("edmac:poll", slog.String("err", err.Error()))
		return
	}
	if up && !d.linkUp {
		d.linkChange.Store(uint32(LinkChangeUp))
	} else if !up && d.linkUp {
		d.linkChange.Store(uint32(LinkChangeDown))
	}
}

func (d *Driver) processLinkUp() {
	// The MAC link signal may be shared with an LED on some boards; only the PHY is authoritative.
	up, err := d.phy.LinkStatus()
	if err != nil || !up {
		d.trace("edmac:linkup-unconfirmed")
		return
	}
	d.configureMAC(ModeNormal)
	err = d.doLink(ModeNormal)
	if err != nil {
		// Auto-negotiation not done yet, retry on next call.
		d.transferEnabled.Store(false)
		d.linkChange.CompareAndSwap(uint32(LinkChangeNone), uint32(LinkChangeUp))
		d.debug("edmac:linkup-retry", slog.String("err", err.Error()))
		return
	}
	d.mode = ModeNormal
	d.linkUp = true
	d.transferEnabled.Store(true)
	d.stats.LinkUps++
	d.info("edmac:link-up")
	if d.onLinkUp != nil {
		d.onLinkUp()
	}
}

func (d *Driver) processLinkDown() {
	up, err := d.phy.LinkStatus()
	if err != nil || up {
		d.trace("edmac:linkdown-unconfirmed")
		return
	}
	d.linkDown()
}

// linkDown stops reception and transmission and notifies the upper layer.
func (d *Driver) linkDown() {
	etherc.ClearBits(d.regs.ECMR, ECMRRE|ECMRTE)
	d.linkUp = false
	d.transferEnabled.Store(false)
	d.stats.LinkDowns++
	d.info("edmac:link-down")
	if d.onLinkOff != nil {
		d.onLinkOff()
	}
}

// wake leaves magic packet detection mode by reopening the interface.
func (d *Driver) wake() {
	d.stats.Wakeups++
	d.info("edmac:wake-on-lan")
	if d.onWakeOnLAN != nil {
		d.onWakeOnLAN()
	}
	d.Close()
	d.reopen()
}

// reopen opens the interface with the retained MAC address. On failure the
// driver stays closed and Process retries on its next call until Close.
func (d *Driver) reopen() {
	err := d.Open(d.mac)
	if err != nil {
		d.reopenPending = true
		d.logerr("edmac:wake-reopen", slog.String("err", err.Error()))
	}
}

// WakeOnLAN switches the MAC to magic packet detection mode. Frame I/O returns
// [etherc.ErrModeConflict] until a magic packet is received and Process reopens
// the interface. The link must be up.
func (d *Driver) WakeOnLAN() error {
	if !d.transferEnabled.Load() {
		return etherc.ErrLinkDown
	}
	d.configureMAC(ModeMagicPacketDetect)
	err := d.doLink(ModeMagicPacketDetect)
	if err != nil {
		d.logerr("edmac:wol", slog.String("err", err.Error()))
		// The MAC was reset for magic packet detection and is not receiving.
		// Drop the link and let Process bring it back up in normal mode.
		d.linkDown()
		d.linkChange.CompareAndSwap(uint32(LinkChangeNone), uint32(LinkChangeUp))
		return err
	}
	d.mode = ModeMagicPacketDetect
	d.info("edmac:wol-armed")
	return nil
}
