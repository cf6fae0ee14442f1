// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package xl95x5

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin extends gpio.PinIO interface with features supported by xl95x5 devices.
type Pin interface {
	gpio.PinIO
	pin.PinFunc
	// SetPolarityInverted if set to true, the input register reports the
	// inverse of the logic state of the input pin.
	SetPolarityInverted(p bool) error
	// IsPolarityInverted returns true if the value of the input pin reflects
	// inverted logic state.
	IsPolarityInverted() (bool, error)
}

// port is one 8-bit half of the chip seen as a byte stream: writes go to the
// output latch, reads come from the input register.
type port struct {
	dev    *Dev
	number int
}

// Tx takes bytes to either read or write. Only half duplex is supported so it
// is an error to pass 2 buffers at once. Every byte is a separate register
// access, in order.
func (p *port) Tx(w, r []byte) error {
	send := len(w)
	get := len(r)
	if send > 0 && get > 0 {
		return errors.New("xl95x5: only conn.Half duplex is supported")
	}
	input, output, _ := FuncLevel.registers()
	in, _ := input.forPin(p.number * pinsPerPort)
	out, _ := output.forPin(p.number * pinsPerPort)

	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	if p.dev.closed {
		return ErrClosed
	}
	for i := range send {
		if err := p.dev.write8(out, w[i]); err != nil {
			return err
		}
	}
	for i := range get {
		v, err := p.dev.read8(in)
		if err != nil {
			return err
		}
		r[i] = v
	}
	return nil
}

// Duplex returns that this is a half duplex connection.
func (p *port) Duplex() conn.Duplex {
	return conn.Half
}

// String provides the name of this connection.
func (p *port) String() string {
	return p.dev.name + "_P" + strconv.Itoa(p.number)
}

type xlPin struct {
	dev    *Dev
	number int
}

func (p *xlPin) String() string {
	return p.Name()
}

func (p *xlPin) Halt() error {
	// To halt all drive, set to high-impedance input
	return p.In(gpio.PullNoChange, gpio.NoEdge)
}

// Name returns <device>_P<port>_<bit>, e.g. XL9555_20_P1_3 for pin 11.
func (p *xlPin) Name() string {
	return fmt.Sprintf("%s_P%d_%d", p.dev.name, p.number/pinsPerPort, p.number%pinsPerPort)
}

func (p *xlPin) Number() int {
	return p.number
}

func (p *xlPin) Function() string {
	return string(p.Func())
}

func (p *xlPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if pull != gpio.PullNoChange && pull != p.dev.variant.pull {
		return fmt.Errorf("xl95x5: %s is not supported, the pin is %s", pull, p.dev.variant.pull)
	}
	// The INT line is shared by all 16 pins and is not on the I²C bus.
	if edge != gpio.NoEdge {
		return errors.New("xl95x5: edge detection not supported")
	}
	return p.dev.SetMode(p.number, Input)
}

func (p *xlPin) Read() gpio.Level {
	l, err := p.dev.Level(p.number)
	if err != nil {
		return gpio.Low
	}
	return l
}

func (p *xlPin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *xlPin) Pull() gpio.Pull {
	return p.dev.variant.pull
}

func (p *xlPin) DefaultPull() gpio.Pull {
	return p.dev.variant.pull
}

func (p *xlPin) Out(l gpio.Level) error {
	return p.dev.out(p.number, l)
}

func (p *xlPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("xl95x5: PWM is not supported")
}

func (p *xlPin) Func() pin.Func {
	m, err := p.dev.Mode(p.number)
	if err != nil {
		return pin.FuncNone
	}
	if m == Input {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *xlPin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *xlPin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.dev.SetMode(p.number, Input)
	case gpio.OUT:
		return p.dev.SetMode(p.number, Output)
	default:
		return errors.New("xl95x5: Function not supported: " + string(f))
	}
}

func (p *xlPin) SetPolarityInverted(inverted bool) error {
	if inverted {
		return p.dev.SetPolarity(p.number, Inverted)
	}
	return p.dev.SetPolarity(p.number, NotInverted)
}

func (p *xlPin) IsPolarityInverted() (bool, error) {
	pol, err := p.dev.Polarity(p.number)
	return pol == Inverted, err
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

var _ Pin = &xlPin{}
var _ conn.Conn = &port{}
