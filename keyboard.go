// keyboard.go - stdin-driven keyboard peripheral

package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// keyboardMailbox is the fixed RAM address the keyboard peripheral writes
// each keystroke into, per spec §4.5/§6.
const keyboardMailbox = 0xF4

// pollInterval is how often the peripheral checks stdin for a byte when
// none is immediately available.
const pollInterval = 50 * time.Millisecond

// Keyboard reads raw bytes from stdin on its own goroutine and, for each
// one, writes it to ram[keyboardMailbox] and raises the keyboard interrupt.
// Grounded on TerminalHost in terminal_host.go: raw terminal mode via
// golang.org/x/term, non-blocking reads via golang.org/x/sys/unix, restoring
// terminal state on shutdown.
type Keyboard struct {
	m        *Machine
	fd       int
	oldState *term.State
}

// NewKeyboard returns a Keyboard that will read from fd (normally
// os.Stdin.Fd()) once Run is started.
func NewKeyboard(m *Machine, fd int) *Keyboard {
	return &Keyboard{m: m, fd: fd}
}

// Run puts the terminal into raw mode and polls for input until ctx is
// canceled, restoring the terminal before returning. main wraps it in a
// func() error closure for errgroup.Group.Go.
func (k *Keyboard) Run(ctx context.Context) error {
	if !term.IsTerminal(k.fd) {
		<-ctx.Done()
		return nil
	}

	oldState, err := term.MakeRaw(k.fd)
	if err != nil {
		return err
	}
	k.oldState = oldState
	defer term.Restore(k.fd, k.oldState)

	if err := unix.SetNonblock(k.fd, true); err != nil {
		return err
	}

	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := unix.Read(k.fd, buf)
		if err == unix.EAGAIN {
			time.Sleep(pollInterval)
			continue
		}
		if err != nil {
			return err
		}
		if n <= 0 {
			time.Sleep(pollInterval)
			continue
		}

		k.m.WriteByte(keyboardMailbox, buf[0])
		k.m.RaiseInterrupt(KeyboardBit)
	}
}

// stdinKeyboard is the convenience constructor main uses to wire up the
// real process stdin.
func stdinKeyboard(m *Machine) *Keyboard {
	return NewKeyboard(m, int(os.Stdin.Fd()))
}
