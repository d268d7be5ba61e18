package edmac

import (
	"log/slog"

	"github.com/soypat/etherc"
)

// ioReady returns nil if frames may be exchanged in normal mode.
func (d *Driver) ioReady() error {
	if !d.transferEnabled.Load() {
		return etherc.ErrLinkDown
	} else if d.mode != ModeNormal {
		return etherc.ErrModeConflict
	}
	return nil
}

// Read returns the next received frame without copying. The returned slice
// aliases the current receive buffer and is valid until [Driver.ReleaseReadBuffer]
// is called, which must happen before the next call to Read.
// Frames received with errors are returned to hardware and skipped.
// Returns [etherc.ErrNoData] if no frame is available.
func (d *Driver) Read() ([]byte, error) {
	if err := d.ioReady(); err != nil {
		return nil, err
	}
	for range d.rx.Len() {
		desc := d.rx.Current()
		status := desc.Status()
		switch status.Owner() {
		case OwnerHardware:
			return nil, etherc.ErrNoData
		case OwnerSoftwareError:
			d.stats.RxErrors++
			d.trace("edmac:rx-error", slog.Uint64("rfs", uint64(status&StatusRFSMask)))
			d.releaseRx()
			continue
		}
		return desc.Buf()[:desc.Len()], nil
	}
	// Every descriptor held an error frame and has now been recycled.
	return nil, etherc.ErrNoData
}

// ReleaseReadBuffer returns the current receive descriptor to hardware and
// advances the receive cursor. Reception DMA is restarted if it stopped for lack
// of descriptors. It does nothing if the current descriptor is hardware owned.
func (d *Driver) ReleaseReadBuffer() error {
	if err := d.ioReady(); err != nil {
		return err
	}
	if d.rx.Current().Owner() == OwnerSoftware {
		d.stats.RxFrames++
	}
	d.releaseRx()
	return nil
}

func (d *Driver) releaseRx() {
	desc := d.rx.Current()
	status := desc.Status()
	if status&StatusACT != 0 {
		return
	}
	desc.SetStatus(status&^(StatusFPMask|StatusFE|StatusRFSMask) | StatusACT)
	d.rx.advance()
	if d.regs.EDRRR.Get() == 0 {
		d.regs.EDRRR.Set(EDRRRRR)
	}
}

// GetWriteBuffer returns the buffer of the current transmit descriptor for the
// caller to write a frame into. The frame is sent by [Driver.CommitWrite].
// Returns [etherc.ErrRingFull] if hardware still owns the descriptor.
func (d *Driver) GetWriteBuffer() ([]byte, error) {
	if err := d.ioReady(); err != nil {
		return nil, err
	}
	desc := d.tx.Current()
	if desc.Owner() == OwnerHardware {
		d.stats.TxRingFull++
		return nil, etherc.ErrRingFull
	}
	return desc.Buf(), nil
}

// CommitWrite hands the frame of length n in the current transmit buffer to
// hardware as a single-descriptor frame and starts transmission DMA if stopped.
// n excludes the FCS, which hardware appends. Frames shorter than
// [etherc.MinFrameSize] or larger than the buffer return [etherc.ErrInvalidLength].
func (d *Driver) CommitWrite(n int) error {
	if err := d.ioReady(); err != nil {
		return err
	}
	desc := d.tx.Current()
	if desc.Owner() == OwnerHardware {
		return etherc.ErrRingFull
	} else if n < etherc.MinFrameSize || n > desc.Cap() {
		return etherc.ErrInvalidLength
	}
	desc.SetLen(n)
	desc.SetStatus(desc.Status()&StatusDLE | StatusSingleFrame | StatusACT)
	d.tx.advance()
	if d.regs.EDTRR.Get() == 0 {
		d.regs.EDTRR.Set(EDTRRTR)
	}
	d.stats.TxFrames++
	return nil
}
