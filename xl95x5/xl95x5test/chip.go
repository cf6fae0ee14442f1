// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package xl95x5test implements an emulated XL9535/XL9555 to test code using
// the xl95x5 driver without hardware.
//
// Chip implements i2c.Bus. Unlike i2ctest.Playback it does not check a
// scripted transcript; it keeps a register file and answers any sequence of
// register reads and writes like the real chip would.
package xl95x5test

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// Register indexes of the emulated register file.
const (
	RegInput0 = iota
	RegInput1
	RegOutput0
	RegOutput1
	RegPolarity0
	RegPolarity1
	RegConfig0
	RegConfig1
	numRegisters
)

var (
	// ErrNoAck is returned for transactions to another address.
	ErrNoAck = errors.New("xl95x5test: no acknowledge")
	// ErrBadRegister is returned when the register pointer is out of range.
	ErrBadRegister = errors.New("xl95x5test: invalid register")
)

// Chip is an emulated expander. The zero value is not usable, use NewChip.
type Chip struct {
	// Intercept, when set, is called before a transaction is applied. A
	// non-nil error fails the transaction without touching the registers.
	Intercept func(w, r []byte) error
	// Yield makes Tx call runtime.Gosched after each transaction, to let
	// concurrent callers interleave as much as they can.
	Yield bool

	mu     sync.Mutex
	addr   uint16
	speed  physic.Frequency
	regs   [numRegisters]byte
	inputs uint16
	ops    []i2ctest.IO
}

// NewChip returns a chip at addr in its power-on state: all pins are inputs,
// output latches high, no inversion, external lines low.
func NewChip(addr uint16) *Chip {
	c := &Chip{addr: addr}
	c.regs[RegOutput0] = 0xFF
	c.regs[RegOutput1] = 0xFF
	c.regs[RegConfig0] = 0xFF
	c.regs[RegConfig1] = 0xFF
	return c
}

func (c *Chip) String() string {
	return fmt.Sprintf("xl95x5test.Chip(%#x)", c.addr)
}

// SetSpeed records the requested clock.
func (c *Chip) SetSpeed(f physic.Frequency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = f
	return nil
}

// Speed returns the last clock passed to SetSpeed.
func (c *Chip) Speed() physic.Frequency {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Tx implements i2c.Bus. w[0] is the register pointer; the rest of w is
// written from there, then r is read. Like the real chip the pointer toggles
// between the two registers of a pair.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	if c.Yield {
		defer runtime.Gosched()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr != c.addr {
		return ErrNoAck
	}
	if len(w) == 0 {
		return fmt.Errorf("%w: no register pointer", ErrBadRegister)
	}
	reg := int(w[0])
	if reg >= numRegisters {
		return fmt.Errorf("%w: %#x", ErrBadRegister, reg)
	}
	if c.Intercept != nil {
		if err := c.Intercept(w, r); err != nil {
			return err
		}
	}
	for _, b := range w[1:] {
		// Input registers are read only.
		if reg > RegInput1 {
			c.regs[reg] = b
		}
		reg ^= 1
	}
	for i := range r {
		r[i] = c.read(reg)
		reg ^= 1
	}
	c.ops = append(c.ops, i2ctest.IO{
		Addr: addr,
		W:    append([]byte(nil), w...),
		R:    append([]byte(nil), r...),
	})
	return nil
}

// read returns a register; mu must be held. The input registers show the
// latch for outputs and the external line for inputs, with polarity
// inversion applied to inputs only.
func (c *Chip) read(reg int) byte {
	if reg > RegInput1 {
		return c.regs[reg]
	}
	p := reg
	config := c.regs[RegConfig0+p]
	external := byte(c.inputs >> (8 * p))
	v := c.regs[RegOutput0+p]&^config | external&config
	return v ^ (c.regs[RegPolarity0+p] & config)
}

// Register returns the raw content of a register, without bus traffic.
func (c *Chip) Register(reg int) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reg < 0 || reg >= numRegisters {
		return 0
	}
	return c.read(reg)
}

// SetRegister overwrites a register, without bus traffic. Writes to the input
// registers are ignored.
func (c *Chip) SetRegister(reg int, v byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reg > RegInput1 && reg < numRegisters {
		c.regs[reg] = v
	}
}

// SetInputs drives the external lines; bit n is pin n.
func (c *Chip) SetInputs(levels uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs = levels
}

// Ops returns a copy of the successful transactions so far.
func (c *Chip) Ops() []i2ctest.IO {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]i2ctest.IO(nil), c.ops...)
}

// Reset clears the transcript.
func (c *Chip) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = nil
}

var _ i2c.Bus = &Chip{}
