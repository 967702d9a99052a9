// loader.go - program file loading

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadProgram reads the ls8 program text file at path and stores each
// instruction byte sequentially into RAM starting at address 0, per
// spec §6's program file format: one instruction per line, blank lines
// and lines starting with '#' ignored, only the first 8 characters of a
// significant line are parsed as a binary literal.
//
// Grounded on emulator.py's load routine and on the teacher's own
// LoadProgram(filename string) error signature in cpu_ie32.go/cpu_ie64.go.
func LoadProgram(m *Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open program file: %w", err)
	}
	defer f.Close()

	addr := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(line) < 8 {
			return fmt.Errorf("malformed program line %q: want at least 8 bits", line)
		}

		value, err := strconv.ParseUint(line[:8], 2, 8)
		if err != nil {
			return fmt.Errorf("malformed program line %q: %w", line, err)
		}
		if addr >= RAMSize {
			return fmt.Errorf("program exceeds %d bytes of RAM", RAMSize)
		}

		m.WriteByte(byte(addr), byte(value))
		addr++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read program file: %w", err)
	}
	return nil
}
