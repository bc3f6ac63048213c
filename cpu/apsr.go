package cpu

// APSR bit positions within xPSR.
const (
	apsrNBit = 31
	apsrZBit = 30
	apsrCBit = 29
	apsrVBit = 28
)

// APSR is a view onto xPSR exposing the N/Z/C/V condition flags as
// independently settable bits. Every write is a read-modify-write of the
// whole xPSR word.
type APSR struct {
	cpu *CPU
}

// APSR returns the flag-alias view for this CPU.
func (c *CPU) APSR() APSR { return APSR{cpu: c} }

func (a APSR) bit(pos uint) bool {
	return a.cpu.xpsr&(1<<pos) != 0
}

func (a APSR) setBit(pos uint, v bool) {
	if v {
		a.cpu.xpsr |= 1 << pos
	} else {
		a.cpu.xpsr &^= 1 << pos
	}
}

func (a APSR) N() bool     { return a.bit(apsrNBit) }
func (a APSR) Z() bool     { return a.bit(apsrZBit) }
func (a APSR) C() bool     { return a.bit(apsrCBit) }
func (a APSR) V() bool     { return a.bit(apsrVBit) }
func (a APSR) SetN(v bool) { a.setBit(apsrNBit, v) }
func (a APSR) SetZ(v bool) { a.setBit(apsrZBit, v) }
func (a APSR) SetC(v bool) { a.setBit(apsrCBit, v) }
func (a APSR) SetV(v bool) { a.setBit(apsrVBit, v) }

// SetNZCV sets all four flags in one read-modify-write.
func (a APSR) SetNZCV(n, z, c, v bool) {
	a.SetN(n)
	a.SetZ(z)
	a.SetC(c)
	a.SetV(v)
}
