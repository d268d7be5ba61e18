// Package edmac implements a zero-copy Ethernet driver for an ETHERC MAC and
// EDMAC DMA controller attached to an external PHY managed through a bit-banged
// MDIO bus.
//
// The driver owns its descriptor rings and buffer pool. Frames are exchanged with
// an upper layer network stack through [Driver.Read], [Driver.ReleaseReadBuffer],
// [Driver.GetWriteBuffer] and [Driver.CommitWrite]. Link state is reconciled by
// calling [Driver.Process] once per scheduler tick; [Driver.HandleInterrupt]
// must be called from the Ethernet interrupt handler.
package edmac

import (
	"log/slog"
	"sync/atomic"

	"github.com/soypat/etherc"
	"github.com/soypat/etherc/internal"
	"github.com/soypat/etherc/phy"
)

const (
	// Alignment is the DMA buffer alignment. Buffer sizes are rounded up to it.
	Alignment = 32
	// DefaultBufferSize fits a maximum size frame with FCS rounded to Alignment.
	DefaultBufferSize = (etherc.MaxFrameSizeFCS + Alignment - 1) &^ (Alignment - 1)
	// DefaultResetSettle is the busy-wait iteration count after an EDMAC software reset.
	DefaultResetSettle = 0x40
	// DefaultPauseTime is the automatic PAUSE frame time parameter.
	DefaultPauseTime = 0xffff
	// MaxDescriptors is the maximum depth of each descriptor ring.
	MaxDescriptors = 1 << 16
)

// Mode is the MAC operating mode.
type Mode uint8

const (
	ModeNormal            Mode = iota // normal
	ModeMagicPacketDetect             // magic-packet-detect
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMagicPacketDetect:
		return "magic-packet-detect"
	}
	return "Mode(?)"
}

// LinkChange is a pending link event set by the interrupt handler or link poller.
type LinkChange uint32

const (
	LinkChangeNone LinkChange = iota // none
	LinkChangeUp                     // up
	LinkChangeDown                   // down
)

func (lc LinkChange) String() string {
	switch lc {
	case LinkChangeNone:
		return "none"
	case LinkChangeUp:
		return "up"
	case LinkChangeDown:
		return "down"
	}
	return "LinkChange(?)"
}

// Config configures a [Driver].
type Config struct {
	// Registers is the ETHERC/EDMAC register block. Required.
	Registers Registers
	// PHY is the configured PHY device. Required.
	PHY *phy.Device
	// RxDescriptors and TxDescriptors set ring depths. Zero selects 1.
	// Depths above MaxDescriptors are rejected.
	RxDescriptors int
	TxDescriptors int
	// BufferSize is the per-descriptor buffer capacity. It is rounded up to Alignment.
	// Zero selects DefaultBufferSize. Must fit a maximum size frame.
	BufferSize int
	// PauseFrames enables advertisement and resolution of PAUSE flow control.
	PauseFrames bool
	// PauseTime is the automatic PAUSE frame time. Zero selects DefaultPauseTime.
	PauseTime uint16
	// UseLinkSignal makes the interrupt handler translate the MAC link signal
	// (ECSR.LCHNG, PSR.LMON) into link changes. When false, Process polls the PHY.
	// Link changes are always confirmed by reading the PHY before acting on them.
	UseLinkSignal bool
	// ResetSettle is the busy-wait iteration count after EDMAC software reset.
	// Zero selects DefaultResetSettle.
	ResetSettle int

	// OnLinkUp is called from Process after the link came up and transfers are enabled.
	OnLinkUp func()
	// OnLinkOff is called from Process after the link went down and transfers are disabled.
	OnLinkOff func()
	// OnWakeOnLAN is called from Process when a magic packet was detected, before
	// the driver is closed and reopened to leave magic packet detection mode.
	OnWakeOnLAN func()
	// OnInterrupt is called at the end of HandleInterrupt so the upper layer
	// can schedule servicing of pending work.
	OnInterrupt func()

	Logger *slog.Logger
}

// Stats holds driver counters. They are only modified from the poll context.
type Stats struct {
	RxFrames   uint64 // Frames read and released with ReleaseReadBuffer.
	RxErrors   uint64 // Error frames recycled by Read.
	TxFrames   uint64 // Frames committed with CommitWrite.
	TxRingFull uint64 // GetWriteBuffer calls that found the ring full.
	LinkUps    uint64
	LinkDowns  uint64
	Wakeups    uint64
}

// Driver is an ETHERC/EDMAC Ethernet driver instance. Its zero value is not usable,
// call [Driver.Configure] first.
type Driver struct {
	regs Registers
	phy  *phy.Device

	descs   []Descriptor
	pool    []byte
	nrx     int
	bufsize int
	rx      Ring
	tx      Ring

	pauseFrames   bool
	pauseTime     uint16
	useLinkSignal bool
	resetSettle   int

	onLinkUp    func()
	onLinkOff   func()
	onWakeOnLAN func()
	onInterrupt func()

	log *slog.Logger

	mac  [6]byte
	open bool
	mode Mode
	// linkUp is the last link state acted upon. Used by the link poller.
	linkUp bool
	// reopenPending is set when reopening after a wake failed.
	reopenPending bool

	// Flags shared with interrupt context. The interrupt handler only sets them,
	// Process only clears them after acting.
	linkChange      atomic.Uint32
	magicPending    atomic.Bool
	transferEnabled atomic.Bool

	stats Stats
}

// Configure validates cfg and allocates the descriptor arena and buffer pool.
// It does not touch hardware; call Open to bring the interface up.
func (d *Driver) Configure(cfg Config) error {
	if cfg.PHY == nil || cfg.RxDescriptors < 0 || cfg.TxDescriptors < 0 || cfg.BufferSize < 0 || cfg.ResetSettle < 0 {
		return etherc.ErrInvalidConfig
	}
	err := cfg.Registers.validate()
	if err != nil {
		return err
	}
	nrx := max(cfg.RxDescriptors, 1)
	ntx := max(cfg.TxDescriptors, 1)
	if nrx > MaxDescriptors || ntx > MaxDescriptors {
		return etherc.ErrInvalidConfig
	}
	bufsize := cfg.BufferSize
	if bufsize == 0 {
		bufsize = DefaultBufferSize
	}
	bufsize = (bufsize + Alignment - 1) &^ (Alignment - 1)
	if bufsize < etherc.MaxFrameSizeFCS || bufsize > 0xffff {
		return etherc.ErrInvalidConfig
	}
	if d.open {
		d.Close()
	}
	*d = Driver{
		regs:          cfg.Registers,
		phy:           cfg.PHY,
		descs:         make([]Descriptor, nrx+ntx),
		pool:          make([]byte, (nrx+ntx)*bufsize),
		nrx:           nrx,
		bufsize:       bufsize,
		pauseFrames:   cfg.PauseFrames,
		pauseTime:     cfg.PauseTime,
		useLinkSignal: cfg.UseLinkSignal,
		resetSettle:   cfg.ResetSettle,
		onLinkUp:      cfg.OnLinkUp,
		onLinkOff:     cfg.OnLinkOff,
		onWakeOnLAN:   cfg.OnWakeOnLAN,
		onInterrupt:   cfg.OnInterrupt,
		log:           cfg.Logger,
	}
	if d.pauseTime == 0 {
		d.pauseTime = DefaultPauseTime
	}
	if d.resetSettle == 0 {
		d.resetSettle = DefaultResetSettle
	}
	return nil
}

// Open brings up the interface with the given MAC address: resets the MAC and
// DMA engine, resets the PHY and starts auto-negotiation. Transfers remain
// disabled until Process observes the link come up.
// A PHY initialization failure is returned as is; Open does not retry.
func (d *Driver) Open(mac [6]byte) error {
	if d.phy == nil {
		return etherc.ErrInvalidConfig
	}
	d.resetState()
	d.mac = mac
	d.resetMAC()
	err := d.phy.Init()
	if err != nil {
		d.logerr("edmac:open", slog.String("err", err.Error()))
		return err
	}
	err = d.phy.StartAutoNegotiation(d.pauseFrames)
	if err != nil {
		return err
	}
	d.regs.ECSR.Set(ECSRClearAll)
	d.regs.EESR.Set(EESRClearAll)
	d.regs.ECSIPR.Set(ECSRLCHNG)
	d.regs.EESIPR.Set(EESRECI)
	d.open = true
	d.info("edmac:open", internal.SlogAddr6("mac", &d.mac), slog.Bool("linksignal", d.useLinkSignal))
	return nil
}

// Close disables interrupts, reception and transmission and resets driver state.
// The MAC address is retained.
func (d *Driver) Close() error {
	d.regs.ECSIPR.Set(0)
	d.regs.EESIPR.Set(0)
	d.regs.ECMR.Set(0)
	d.resetState()
	d.debug("edmac:close")
	return nil
}

func (d *Driver) resetState() {
	d.open = false
	d.reopenPending = false
	d.mode = ModeNormal
	d.linkUp = false
	d.transferEnabled.Store(false)
	d.magicPending.Store(false)
	d.linkChange.Store(uint32(LinkChangeNone))
}

// HardwareAddr6 returns the MAC address the driver was last opened with.
func (d *Driver) HardwareAddr6() [6]byte { return d.mac }

// IsOpen returns true between a successful Open and Close.
func (d *Driver) IsOpen() bool { return d.open }

// TransferEnabled returns true if the link is up and frames may be exchanged.
func (d *Driver) TransferEnabled() bool { return d.transferEnabled.Load() }

// Mode returns the current MAC operating mode.
func (d *Driver) Mode() Mode { return d.mode }

// PendingLinkChange returns the link change not yet handled by Process.
func (d *Driver) PendingLinkChange() LinkChange { return LinkChange(d.linkChange.Load()) }

// RxRing returns the receive descriptor ring.
func (d *Driver) RxRing() *Ring { return &d.rx }

// TxRing returns the transmit descriptor ring.
func (d *Driver) TxRing() *Ring { return &d.tx }

// Stats returns a copy of the driver counters.
func (d *Driver) Stats() Stats { return d.stats }

// MTU returns the maximum payload size of a frame that fits a transmit buffer.
func (d *Driver) MTU() int { return etherc.MaxFrameSize - 14 }

// settle busy-waits for n iterations.
func settle(n int) {
	for i := 0; i < n; i++ {
		settleSink++
	}
}

var settleSink uint32
