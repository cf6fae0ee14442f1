// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package xl95x5

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// pinGroup is a set of pins accessed with whole-register transactions. The
// pins may span both ports.
type pinGroup struct {
	dev         *Dev
	pins        []*xlPin
	defaultMask gpio.GPIOValue
}

// Group returns a gpio.Group made up of the specified pin numbers. Bit n of
// the group values maps to pinNumbers[n]. A pin number may appear only once.
func (d *Dev) Group(pinNumbers ...int) (gpio.Group, error) {
	if len(pinNumbers) == 0 {
		return nil, fmt.Errorf("%w: empty group", ErrInvalidPin)
	}
	pg := &pinGroup{dev: d, pins: make([]*xlPin, len(pinNumbers))}
	var seen uint16
	for ix, number := range pinNumbers {
		if number < 0 || number >= NumPins {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPin, number)
		}
		if seen&(1<<number) != 0 {
			return nil, fmt.Errorf("%w: %d appears twice", ErrInvalidPin, number)
		}
		seen |= 1 << number
		pg.pins[ix] = d.Pins[number].(*xlPin)
	}
	pg.defaultMask = gpio.GPIOValue((1 << len(pinNumbers)) - 1)
	return pg, nil
}

// Pins returns the set of pin.Pin that make up that group.
func (pg *pinGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(pg.pins))
	for ix, p := range pg.pins {
		pins[ix] = p
	}
	return pins
}

// ByOffset returns the pin at offset within the group.
func (pg *pinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(pg.pins) {
		return nil
	}
	return pg.pins[offset]
}

// ByName returns the pin with that name, or nil.
func (pg *pinGroup) ByName(name string) pin.Pin {
	for _, p := range pg.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ByNumber returns the pin with that device pin number, or nil.
func (pg *pinGroup) ByNumber(number int) pin.Pin {
	for _, p := range pg.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// toDevice converts a group relative value and mask to device bits.
func (pg *pinGroup) toDevice(value, mask gpio.GPIOValue) (uint16, uint16) {
	if mask == 0 {
		mask = pg.defaultMask
	} else {
		mask &= pg.defaultMask
	}
	var wr, wrMask uint16
	for bit, p := range pg.pins {
		if mask&(1<<bit) == 0 {
			continue
		}
		wrMask |= 1 << p.number
		if value&(1<<bit) != 0 {
			wr |= 1 << p.number
		}
	}
	return wr, wrMask
}

// Out writes value to the pins selected by mask. If mask is 0, all pins of
// the group are written. Pins that are not outputs yet are switched to
// output after their latch is set.
func (pg *pinGroup) Out(value, mask gpio.GPIOValue) error {
	wr, wrMask := pg.toDevice(value, mask)
	d := pg.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	_, latch, _ := FuncOutput.registers()
	_, config, _ := FuncMode.registers()
	if err := d.modify16(latch, wr, wrMask); err != nil {
		return err
	}
	modes, err := d.read16(config)
	if err != nil {
		return err
	}
	if modes&wrMask == 0 {
		return nil
	}
	return d.write16(config, modes&^wrMask)
}

// Read returns the levels of the pins selected by mask, in one transaction.
// Unlike Out, the pin directions are left alone: the input register reports
// the pin state for outputs too.
func (pg *pinGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	_, rdMask := pg.toDevice(0, mask)
	v, err := pg.dev.Levels()
	if err != nil {
		return 0, err
	}
	var result gpio.GPIOValue
	for ix, p := range pg.pins {
		if rdMask&(1<<p.number) != 0 && v&(1<<p.number) != 0 {
			result |= 1 << ix
		}
	}
	return result, nil
}

// WaitForEdge is not supported; the chip signals changes on its INT line,
// which is not on the I²C bus.
func (pg *pinGroup) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt is a no-op, there is never a pending WaitForEdge.
func (pg *pinGroup) Halt() error {
	return nil
}

// String returns the device name and the pins of the group.
func (pg *pinGroup) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - [ ", pg.dev)
	for _, p := range pg.pins {
		fmt.Fprintf(&sb, "%d ", p.Number())
	}
	sb.WriteString("]")
	return sb.String()
}

var _ gpio.Group = &pinGroup{}
