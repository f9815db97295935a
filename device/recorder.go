package device

import (
	"maps"
	"sync/atomic"
)

// DrawCommand is a primitive start observed by a Recorder: the command word
// written to RegRender and the register file at that moment.
type DrawCommand struct {
	Command Command
	Regs    map[Register]uint32
}

// Reg returns the value a register held when the command was issued.
func (d DrawCommand) Reg(r Register) uint32 {
	return d.Regs[r]
}

// Int returns a register value reinterpreted as signed.
func (d DrawCommand) Int(r Register) int32 {
	return int32(d.Regs[r])
}

// Recorder is an in-memory Device and Memory. It keeps the register file,
// the ordered write log, a byte image of device memory and a snapshot of
// the register file for every RegRender write.
//
// The FIFO drains instantly unless the recorder is stalled, in which case
// FreeSlots reports zero and RegStatus reports busy.
type Recorder struct {
	regs     map[Register]uint32
	writes   []Write
	draws    []DrawCommand
	mem      []byte
	capacity int
	stalled  atomic.Bool
}

// NewRecorder returns a recorder with memSize bytes of device memory and a
// FIFO of the given capacity.
func NewRecorder(memSize uint32, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 1
	}
	return &Recorder{
		regs:     make(map[Register]uint32),
		mem:      make([]byte, memSize),
		capacity: capacity,
	}
}

// WriteRegister implements Device.
func (r *Recorder) WriteRegister(reg Register, v uint32) {
	r.regs[reg] = v
	r.writes = append(r.writes, Write{Reg: reg, Value: v})
	if reg == RegRender {
		r.draws = append(r.draws, DrawCommand{Command: Command(v), Regs: maps.Clone(r.regs)})
	}
}

// ReadRegister implements Device.
func (r *Recorder) ReadRegister(reg Register) uint32 {
	if reg == RegStatus {
		if r.stalled.Load() {
			return StatusBusy
		}
		return 0
	}
	return r.regs[reg]
}

// FreeSlots implements Device.
func (r *Recorder) FreeSlots() int {
	if r.stalled.Load() {
		return 0
	}
	return r.capacity
}

// Capacity implements Device.
func (r *Recorder) Capacity() int { return r.capacity }

// SetStalled makes the FIFO appear full (true) or drained (false).
// It may be called from another goroutine.
func (r *Recorder) SetStalled(stalled bool) { r.stalled.Store(stalled) }

// WriteMemory implements Memory. Writes past the end are truncated.
func (r *Recorder) WriteMemory(offset uint32, p []byte) {
	if uint64(offset) >= uint64(len(r.mem)) {
		return
	}
	copy(r.mem[offset:], p)
}

// Memory returns the device memory image.
func (r *Recorder) Memory() []byte { return r.mem }

// Writes returns every register write in order.
func (r *Recorder) Writes() []Write { return r.writes }

// Draws returns every primitive start in order.
func (r *Recorder) Draws() []DrawCommand { return r.draws }

// Reset clears the write log and the recorded draws. The register file and
// memory are kept.
func (r *Recorder) Reset() {
	r.writes = r.writes[:0]
	r.draws = r.draws[:0]
}
