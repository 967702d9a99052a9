// machine.go - register file, RAM, and shared interrupt state for the ls8 core

package main

import (
	"sync"
	"sync/atomic"
)

// Memory and register-file layout constants.
const (
	RAMSize     = 256  // bytes of addressable RAM
	RegCount    = 8    // general-purpose registers
	RegIM       = 5    // Interrupt Mask
	RegIS       = 6    // Interrupt Status
	RegSP       = 7    // Stack Pointer
	InitialSP   = 0xF4 // stack pointer reset value
	TimerBit    = 0    // interrupt bit raised by the control unit's built-in timer
	KeyboardBit = 1    // interrupt bit raised by the keyboard peripheral
)

// IVT holds the eight fixed interrupt-vector RAM addresses, one per
// interrupt bit, each containing the address of that interrupt's handler.
var IVT = [8]byte{0xF8, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF}

// Flag bit masks for the FL register (layout ...L G E).
const (
	FlagE = 0b001
	FlagG = 0b010
	FlagL = 0b100
)

// Machine holds all processor state shared between the control unit
// goroutine and any peripheral goroutines.
//
// RAM cells are individually atomic so a peripheral's mailbox write is
// never torn with respect to the control unit's own reads. The Interrupt
// Status register (reg[RegIS]) is additionally guarded by isMu, because
// raising an interrupt is a read-modify-write (set one bit without
// disturbing the others) and the control unit performs the same kind of
// read-modify-write whenever it clears a serviced bit during dispatch, or
// whenever user code targets R6 directly (e.g. ADD R6,R1, or LDI R6,0 to
// clear IS by hand) — a plain atomic store is not enough for two
// read-modify-writes to race safely. Reg/SetReg route any access to RegIS
// through isMu too, not just RaiseInterrupt/clearInterruptBit/
// maskedInterrupts, and execALU's read-then-write ops go through UpdateReg so
// the whole read-compute-write stays inside a single critical section — so a
// peripheral's concurrent RaiseInterrupt can never be clobbered by the
// control unit's own read-modify-write of the same byte.
//
// Every other field (pc, ir, fl, reg[0..4], reg[7]) is written only by the
// control unit and needs no synchronisation.
type Machine struct {
	pc byte
	ir byte
	fl byte

	reg   [RegCount]byte
	isMu  sync.Mutex
	ram   [RAMSize]atomic.Uint32 // only the low 8 bits of each cell are used
	iEn   atomic.Bool            // interrupts_enabled
}

// NewMachine returns a freshly reset Machine: zeroed RAM and registers
// except SP, which starts at InitialSP, and interrupts enabled.
func NewMachine() *Machine {
	m := &Machine{}
	m.reg[RegSP] = InitialSP
	m.iEn.Store(true)
	return m
}

// ReadByte returns the RAM byte at addr. Safe to call from any goroutine.
func (m *Machine) ReadByte(addr byte) byte {
	return byte(m.ram[addr].Load())
}

// WriteByte stores a byte into RAM at addr. Safe to call from any goroutine
// — in particular this is the entry point peripherals use to write their
// mailbox cells.
func (m *Machine) WriteByte(addr, value byte) {
	m.ram[addr].Store(uint32(value))
}

// Reg returns the value of register r. Reads of RegIS (the register a
// peripheral's RaiseInterrupt concurrently read-modify-writes) go through
// isMu so the control unit never observes a torn or racing value.
func (m *Machine) Reg(r byte) byte {
	if r == RegIS {
		m.isMu.Lock()
		defer m.isMu.Unlock()
	}
	return m.reg[r]
}

// SetReg stores value into register r. Writes to RegIS go through isMu for
// the same reason Reg's reads do: a control-unit instruction that targets R6
// directly (LDI R6,0, POP R6, …) writes the same byte a peripheral's
// RaiseInterrupt read-modify-writes concurrently.
func (m *Machine) SetReg(r, value byte) {
	if r == RegIS {
		m.isMu.Lock()
		defer m.isMu.Unlock()
	}
	m.reg[r] = value
}

// UpdateReg replaces register r with f(current value). A plain Reg-then-
// SetReg pair (even with each half individually locked) still leaves a gap
// between the read and the write; an ALU op that both reads and writes R6
// (ADD R6,R1, INC R6, …) would let a peripheral's RaiseInterrupt land in
// that gap and be overwritten by the stale-based result. UpdateReg closes
// the gap for RegIS by holding isMu across the whole read-compute-write.
// Every other register is written only by the control unit and needs no
// locking at all.
func (m *Machine) UpdateReg(r byte, f func(byte) byte) {
	if r == RegIS {
		m.isMu.Lock()
		m.reg[RegIS] = f(m.reg[RegIS])
		m.isMu.Unlock()
		return
	}
	m.reg[r] = f(m.reg[r])
}

// InterruptsEnabled reports whether the control unit is currently willing
// to begin dispatching a new interrupt.
func (m *Machine) InterruptsEnabled() bool { return m.iEn.Load() }

// SetInterruptsEnabled is called only by the control unit (on dispatch entry
// and on IRET).
func (m *Machine) SetInterruptsEnabled(v bool) { m.iEn.Store(v) }

// RaiseInterrupt sets bit i of the Interrupt Status register. This is the
// one entry point external collaborators (peripherals, the timer, or INT)
// use to signal an interrupt. It is idempotent on an already-set bit and
// safe to call concurrently with the control unit's own clearing of a
// serviced bit in dispatchInterrupt.
func (m *Machine) RaiseInterrupt(i byte) {
	m.isMu.Lock()
	m.reg[RegIS] |= 1 << i
	m.isMu.Unlock()
}

// clearInterruptBit clears bit i of IS. Called only by the control unit
// during dispatch, under the same lock RaiseInterrupt uses so the two
// read-modify-writes never interleave.
func (m *Machine) clearInterruptBit(i byte) {
	m.isMu.Lock()
	m.reg[RegIS] &^= 1 << i
	m.isMu.Unlock()
}

// maskedInterrupts returns IM & IS under the IS lock, so the snapshot the
// dispatcher scans is never torn against a peripheral's concurrent set.
func (m *Machine) maskedInterrupts() byte {
	m.isMu.Lock()
	defer m.isMu.Unlock()
	return m.reg[RegIM] & m.reg[RegIS]
}
