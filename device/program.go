package device

// Write is one queued register write.
type Write struct {
	Reg   Register
	Value uint32
}

// Program is an ordered list of register writes built by the setup engine
// and handed to a Sink in one piece. The zero value is ready to use.
//
// A Program is reused across primitives: Reset keeps the backing storage.
type Program struct {
	writes []Write
}

// Reset empties the program and keeps its capacity.
func (p *Program) Reset() {
	p.writes = p.writes[:0]
}

// Emit appends a register write.
func (p *Program) Emit(r Register, v uint32) {
	p.writes = append(p.writes, Write{Reg: r, Value: v})
}

// EmitInt appends a signed register write using its two's complement bits.
func (p *Program) EmitInt(r Register, v int32) {
	p.Emit(r, uint32(v))
}

// Append appends every write of q.
func (p *Program) Append(q *Program) {
	p.writes = append(p.writes, q.writes...)
}

// Len returns the number of queued writes.
func (p *Program) Len() int {
	return len(p.writes)
}

// Writes returns the queued writes. The slice is valid until the next Reset.
func (p *Program) Writes() []Write {
	return p.writes
}

// Value returns the last value queued for r.
func (p *Program) Value(r Register) (uint32, bool) {
	for i := len(p.writes) - 1; i >= 0; i-- {
		if p.writes[i].Reg == r {
			return p.writes[i].Value, true
		}
	}
	return 0, false
}
