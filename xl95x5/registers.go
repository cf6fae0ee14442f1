// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package xl95x5

import (
	"encoding/binary"
	"strconv"
)

// Register addresses. Each function has one register per port; the chip
// auto-increments within a pair so both ports move in one transaction.
const (
	regInput0    uint8 = 0x00
	regInput1    uint8 = 0x01
	regOutput0   uint8 = 0x02
	regOutput1   uint8 = 0x03
	regPolarity0 uint8 = 0x04
	regPolarity1 uint8 = 0x05
	regConfig0   uint8 = 0x06
	regConfig1   uint8 = 0x07
)

// Function selects which register pair an operation works on.
type Function uint8

const (
	// FuncLevel reads the input port registers and writes the output port
	// registers.
	FuncLevel Function = iota
	// FuncPolarity is the polarity inversion pair. A set bit inverts the
	// value reported for an input pin.
	FuncPolarity
	// FuncMode is the configuration pair. A set bit makes the pin an input.
	FuncMode
	// FuncOutput is the output latch pair, for both reading and writing.
	FuncOutput
)

func (f Function) String() string {
	switch f {
	case FuncLevel:
		return "Level"
	case FuncPolarity:
		return "Polarity"
	case FuncMode:
		return "Mode"
	case FuncOutput:
		return "Output"
	default:
		return "Function(" + strconv.Itoa(int(f)) + ")"
	}
}

type registerPair struct {
	port0 uint8
	port1 uint8
}

// forPin returns the register owning pin and the bit position within it.
func (p registerPair) forPin(pin int) (uint8, uint8) {
	if pin < pinsPerPort {
		return p.port0, uint8(pin)
	}
	return p.port1, uint8(pin % pinsPerPort)
}

// registers maps f to the pair it is read from and the pair it is written
// to. Only FuncLevel differs between the two.
func (f Function) registers() (read, write registerPair, ok bool) {
	switch f {
	case FuncLevel:
		return registerPair{regInput0, regInput1}, registerPair{regOutput0, regOutput1}, true
	case FuncOutput:
		return registerPair{regOutput0, regOutput1}, registerPair{regOutput0, regOutput1}, true
	case FuncPolarity:
		return registerPair{regPolarity0, regPolarity1}, registerPair{regPolarity0, regPolarity1}, true
	case FuncMode:
		return registerPair{regConfig0, regConfig1}, registerPair{regConfig0, regConfig1}, true
	}
	return registerPair{}, registerPair{}, false
}

// The helpers below expect d.mu to be held.

func (d *Dev) readRegister(address uint8, b []byte) error {
	return d.c.Tx([]byte{address}, b)
}

func (d *Dev) writeRegister(address uint8, b []byte) error {
	w := make([]byte, 1+len(b))
	w[0] = address
	copy(w[1:], b)
	return d.c.Tx(w, nil)
}

func (d *Dev) read8(address uint8) (uint8, error) {
	var rx [1]byte
	err := d.readRegister(address, rx[:])
	return rx[0], err
}

func (d *Dev) write8(address, value uint8) error {
	return d.writeRegister(address, []byte{value})
}

func (d *Dev) read16(pair registerPair) (uint16, error) {
	var rx [2]byte
	if err := d.readRegister(pair.port0, rx[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(rx[:]), nil
}

func (d *Dev) write16(pair registerPair, value uint16) error {
	var tx [2]byte
	binary.LittleEndian.PutUint16(tx[:], value)
	return d.writeRegister(pair.port0, tx[:])
}

func (d *Dev) getBit(address, bit uint8) (bool, error) {
	v, err := d.read8(address)
	if err != nil {
		return false, err
	}
	return v&(1<<bit) != 0, nil
}

// modifyBit is a read-modify-write of a single register. If the write fails
// the register keeps whatever the device holds; nothing is rolled back.
func (d *Dev) modifyBit(address, bit uint8, value bool) error {
	v, err := d.read8(address)
	if err != nil {
		return err
	}
	v &^= 1 << bit
	if value {
		v |= 1 << bit
	}
	return d.write8(address, v)
}

// modify16 replaces the bits of mask in a register pair.
func (d *Dev) modify16(pair registerPair, value, mask uint16) error {
	v, err := d.read16(pair)
	if err != nil {
		return err
	}
	return d.write16(pair, v&^mask|value&mask)
}
