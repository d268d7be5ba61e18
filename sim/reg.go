package sim

import "github.com/soypat/etherc"

var _ etherc.Register32 = (*Reg)(nil)

// Reg is a simulated 32-bit peripheral register. Its behavior on access is
// given by optional hooks; without hooks it is plain storage.
type Reg struct {
	v      uint32
	writes int
	onGet  func(stored uint32) uint32
	onSet  func(stored, v uint32) uint32
}

// Get returns the register value as seen by software.
func (r *Reg) Get() uint32 {
	if r.onGet != nil {
		return r.onGet(r.v)
	}
	return r.v
}

// Set writes v to the register.
func (r *Reg) Set(v uint32) {
	r.writes++
	if r.onSet != nil {
		r.v = r.onSet(r.v, v)
		return
	}
	r.v = v
}

// Writes returns the number of software writes to the register.
func (r *Reg) Writes() int { return r.writes }

// Stored returns the raw register contents without access side effects.
func (r *Reg) Stored() uint32 { return r.v }

// put stores v on behalf of hardware. It is not counted as a write.
func (r *Reg) put(v uint32) { r.v = v }

func (r *Reg) setBits(bits uint32) { r.v |= bits }

func (r *Reg) clearBits(bits uint32) { r.v &^= bits }

// writeOneToClear is the set hook of status registers.
func writeOneToClear(stored, v uint32) uint32 { return stored &^ v }
