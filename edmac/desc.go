package edmac

import "sync/atomic"

// Status is the first word of an EDMAC descriptor. Bit layout is shared by
// RX and TX descriptors except for the RX frame status field.
type Status uint32

const (
	StatusACT Status = 1 << 31 // Descriptor active: owned by the DMA engine.
	StatusDLE Status = 1 << 30 // Descriptor list end: next descriptor is the list base.
	StatusFP1 Status = 1 << 29 // Frame position bit 1: descriptor holds first part of frame.
	StatusFP0 Status = 1 << 28 // Frame position bit 0: descriptor holds last part of frame.
	StatusFE  Status = 1 << 27 // Frame error: one or more RFS bits set.

	// RX frame status (RFS) bits.

	StatusRFOF Status = 1 << 9 // Receive FIFO overflow.
	StatusRABT Status = 1 << 8 // Receive abort.
	StatusRMAF Status = 1 << 7 // Multicast address frame received.
	StatusRRF  Status = 1 << 4 // Residual-bit frame.
	StatusRTLF Status = 1 << 3 // Frame too long.
	StatusRTSF Status = 1 << 2 // Frame too short.
	StatusPRE  Status = 1 << 1 // PHY receive error.
	StatusCERF Status = 1 << 0 // CRC error.

	StatusFPMask  Status = StatusFP1 | StatusFP0
	StatusRFSMask Status = 0x3ff
	// StatusSingleFrame marks a descriptor holding an entire frame.
	StatusSingleFrame = StatusFPMask
)

// Owner is the ownership state of a descriptor.
type Owner uint8

const (
	OwnerHardware      Owner = iota // hw
	OwnerSoftware                   // sw
	OwnerSoftwareError              // sw-err
)

func (o Owner) String() string {
	switch o {
	case OwnerHardware:
		return "hw"
	case OwnerSoftware:
		return "sw"
	case OwnerSoftwareError:
		return "sw-err"
	}
	return "Owner(?)"
}

// Owner returns the ownership of a descriptor with status s.
func (s Status) Owner() Owner {
	switch {
	case s&StatusACT != 0:
		return OwnerHardware
	case s&StatusFE != 0:
		return OwnerSoftwareError
	default:
		return OwnerSoftware
	}
}

// Descriptor is a DMA buffer descriptor. Descriptors live in an arena owned by
// the [Driver] and reference a slice of a shared buffer pool.
//
// The status word is the only field that crosses the software/hardware boundary
// without ownership: size and buffer contents may only be accessed by the side
// that owns the descriptor as given by [StatusACT].
type Descriptor struct {
	status   atomic.Uint32
	size     uint16
	capacity uint16
	next     uint16
	buf      []byte
}

// Status returns the descriptor status word.
func (d *Descriptor) Status() Status { return Status(d.status.Load()) }

// SetStatus stores the descriptor status word. Setting or clearing [StatusACT]
// transfers ownership and must be the last write to the descriptor.
func (d *Descriptor) SetStatus(s Status) { d.status.Store(uint32(s)) }

// Owner returns the current owner of the descriptor.
func (d *Descriptor) Owner() Owner { return d.Status().Owner() }

// Len returns the number of bytes transferred (RX) or to transfer (TX).
func (d *Descriptor) Len() int { return int(d.size) }

// SetLen sets the number of bytes transferred. It panics if n exceeds the buffer capacity.
func (d *Descriptor) SetLen(n int) {
	if n < 0 || n > int(d.capacity) {
		panic("descriptor length exceeds capacity")
	}
	d.size = uint16(n)
}

// Cap returns the buffer capacity of the descriptor.
func (d *Descriptor) Cap() int { return int(d.capacity) }

// Buf returns the full capacity buffer referenced by the descriptor.
func (d *Descriptor) Buf() []byte { return d.buf }

// Next returns the list index of the following descriptor.
func (d *Descriptor) Next() int { return int(d.next) }

// Ring is a fixed circular list of descriptors plus the software cursor.
// The hardware cursor is never tracked, only inferred through [StatusACT].
type Ring struct {
	descs []Descriptor
	cur   int
}

// init links descs into a ring over pool, each descriptor referencing bufsize
// bytes, and sets every descriptor status to initial.
func (r *Ring) init(descs []Descriptor, pool []byte, bufsize int, initial Status) {
	if len(descs) == 0 || len(pool) < len(descs)*bufsize || len(descs) > MaxDescriptors {
		panic("bad ring size")
	}
	for i := range descs {
		d := &descs[i]
		off := i * bufsize
		d.buf = pool[off : off+bufsize : off+bufsize]
		d.capacity = uint16(bufsize)
		d.size = 0
		d.next = uint16(i + 1)
		st := initial
		if i == len(descs)-1 {
			d.next = 0
			st |= StatusDLE
		}
		d.SetStatus(st)
	}
	r.descs = descs
	r.cur = 0
}

// Current returns the descriptor at the software cursor.
func (r *Ring) Current() *Descriptor { return &r.descs[r.cur] }

// advance moves the software cursor to the next descriptor.
func (r *Ring) advance() { r.cur = int(r.descs[r.cur].next) }

// Cursor returns the index of the software cursor.
func (r *Ring) Cursor() int { return r.cur }

// Len returns the number of descriptors in the ring.
func (r *Ring) Len() int { return len(r.descs) }

// Descriptors returns the descriptor list backing the ring.
func (r *Ring) Descriptors() []Descriptor { return r.descs }

// DescriptorLists is implemented by the DMA engine port. SetDescriptorLists is
// the equivalent of writing the RX and TX descriptor list base address registers
// (RDLAR, TDLAR) and resets the engine's descriptor pointers to the list bases.
type DescriptorLists interface {
	SetDescriptorLists(rx, tx []Descriptor)
}
