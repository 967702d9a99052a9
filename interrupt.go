// interrupt.go - interrupt dispatch, IRET, and the per-cycle trace line

package main

import (
	"fmt"
	"io"
)

// dispatchInterrupt checks IM & IS for a pending, unmasked interrupt and,
// if one is found, pushes the processor state and jumps to its handler.
// Grounded on cpu.py's _handle_interrupts, with the bit-test direction
// corrected per spec §9: bit i of masked is tested with masked&(1<<i), not
// the reversed i&masked the original used.
func (cu *ControlUnit) dispatchInterrupt() {
	m := cu.m
	masked := m.maskedInterrupts()
	if masked == 0 {
		return
	}

	for i := byte(0); i < 8; i++ {
		if masked&(1<<i) == 0 {
			continue
		}

		m.SetInterruptsEnabled(false)
		m.clearInterruptBit(i)

		cu.push(m.pc)
		cu.push(m.fl)
		for r := byte(0); r <= 6; r++ {
			cu.push(m.Reg(r))
		}

		handler := m.ReadByte(IVT[i])
		m.pc = handler
		return
	}
}

// returnFromInterrupt restores the processor state pushed by
// dispatchInterrupt, in reverse order, and re-enables interrupts.
func (cu *ControlUnit) returnFromInterrupt() {
	m := cu.m
	for r := byte(6); ; r-- {
		m.SetReg(r, cu.pop())
		if r == 0 {
			break
		}
	}
	m.fl = cu.pop()
	m.pc = cu.pop()
	m.SetInterruptsEnabled(true)
}

// trace writes one diagnostic line in the documented format:
// TRACE: %02X | %02X %02X %02X | followed by all eight registers in hex,
// grounded on cpu.py's CPU._trace.
func (cu *ControlUnit) trace(w io.Writer) {
	m := cu.m
	fmt.Fprintf(w, "TRACE: %02X | %02X %02X %02X |", m.pc,
		m.ReadByte(m.pc), m.ReadByte(m.pc+1), m.ReadByte(m.pc+2))
	for r := byte(0); r < RegCount; r++ {
		fmt.Fprintf(w, " %02X", m.Reg(r))
	}
	fmt.Fprintln(w)
}
