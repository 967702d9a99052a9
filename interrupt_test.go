package main

import (
	"bytes"
	"testing"
)

func TestDispatchInterruptPushesStateAndJumps(t *testing.T) {
	cu, _ := newCapturingCU()
	m := cu.m

	m.WriteByte(IVT[2], 0x40) // handler address for bit 2
	m.SetReg(RegIM, 0xFF)
	m.pc = 0x05
	m.fl = FlagG
	for r := byte(0); r < RegIM; r++ {
		m.SetReg(r, r+1)
	}
	m.RaiseInterrupt(2)

	cu.dispatchInterrupt()

	if m.pc != 0x40 {
		t.Fatalf("pc after dispatch = %#02x, want 0x40", m.pc)
	}
	if m.InterruptsEnabled() {
		t.Errorf("interrupts should be disabled during dispatch")
	}
	if got := m.maskedInterrupts(); got != 0 {
		t.Errorf("serviced interrupt bit should be cleared, masked = %#02x", got)
	}
}

func TestDispatchInterruptLowestBitWins(t *testing.T) {
	cu, _ := newCapturingCU()
	m := cu.m
	m.WriteByte(IVT[1], 0x10)
	m.WriteByte(IVT[4], 0x20)
	m.SetReg(RegIM, 0xFF)
	m.RaiseInterrupt(4)
	m.RaiseInterrupt(1)

	cu.dispatchInterrupt()

	if m.pc != 0x10 {
		t.Errorf("pc = %#02x, want 0x10 (lowest set bit wins)", m.pc)
	}
}

func TestDispatchInterruptNoneWhenMaskedOff(t *testing.T) {
	cu, _ := newCapturingCU()
	m := cu.m
	m.pc = 0x07
	m.SetReg(RegIM, 0x00)
	m.RaiseInterrupt(0)

	cu.dispatchInterrupt()

	if m.pc != 0x07 {
		t.Errorf("pc changed despite masked-off interrupt: %#02x", m.pc)
	}
}

func TestIRETRoundTrip(t *testing.T) {
	cu, _ := newCapturingCU()
	m := cu.m

	m.WriteByte(IVT[0], 0x40)
	m.SetReg(RegIM, 0xFF)
	m.pc = 0x05
	m.fl = FlagL
	wantRegs := [7]byte{1, 2, 3, 4, 5, 0xFF, 0x00} // R5=IM, R6=IS
	for r, v := range wantRegs {
		m.SetReg(byte(r), v)
	}
	m.RaiseInterrupt(0)

	cu.dispatchInterrupt()
	cu.returnFromInterrupt()

	if m.pc != 0x05 {
		t.Errorf("pc after IRET = %#02x, want 0x05", m.pc)
	}
	if m.fl != FlagL {
		t.Errorf("fl after IRET = %#03b, want %#03b", m.fl, FlagL)
	}
	if !m.InterruptsEnabled() {
		t.Errorf("IRET should re-enable interrupts")
	}
	for r, want := range wantRegs {
		if got := m.Reg(byte(r)); got != want {
			t.Errorf("reg%d after IRET = %d, want %d", r, got, want)
		}
	}
}

func TestIRETWithNoPriorDispatchDoesNotPanic(t *testing.T) {
	cu, _ := newCapturingCU()
	cu.returnFromInterrupt()
}

func TestTraceFormat(t *testing.T) {
	cu, _ := newCapturingCU()
	m := cu.m
	m.pc = 0
	m.WriteByte(0, 0x82)
	m.WriteByte(1, 0x00)
	m.WriteByte(2, 0x08)

	buf := &bytes.Buffer{}
	cu.trace(buf)

	want := "TRACE: 00 | 82 00 08 | 00 00 00 00 00 00 00 F4\n"
	if got := buf.String(); got != want {
		t.Errorf("trace = %q, want %q", got, want)
	}
}
