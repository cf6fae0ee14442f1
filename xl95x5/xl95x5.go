// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package xl95x5

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// NumPins is the number of I/O lines on the chip.
	NumPins = 16
	// MaxSpeed is the fastest SCL clock the chip supports.
	MaxSpeed = 400 * physic.KiloHertz

	pinsPerPort = 8
	numPorts    = NumPins / pinsPerPort
)

var (
	ErrNilBus          = errors.New("xl95x5: nil bus")
	ErrInvalidAddress  = errors.New("xl95x5: address out of range")
	ErrInvalidVariant  = errors.New("xl95x5: unsupported variant")
	ErrInvalidPin      = errors.New("xl95x5: pin out of range")
	ErrInvalidFunction = errors.New("xl95x5: invalid register function")
	ErrClosed          = errors.New("xl95x5: device closed")
)

// Mode is the direction of a pin, as stored in the configuration register.
type Mode uint8

const (
	Output Mode = 0
	Input  Mode = 1
)

func (m Mode) String() string {
	if m == Output {
		return "Output"
	}
	return "Input"
}

// Polarity is the inversion setting of an input pin.
type Polarity uint8

const (
	NotInverted Polarity = 0
	Inverted    Polarity = 1
)

func (p Polarity) String() string {
	if p == NotInverted {
		return "NotInverted"
	}
	return "Inverted"
}

// Opts holds the configuration for New. A nil *Opts uses DefaultOpts.
type Opts struct {
	// Variant only affects naming and the reported pull of input pins.
	Variant Variant
	// Name overrides the device name used as prefix for pin names. It
	// defaults to <variant>_<hex address>.
	Name string
	// RegisterPins registers the 16 pins in gpioreg under their names. The
	// registration is removed by Close.
	RegisterPins bool
}

// DefaultOpts is the configuration used when New is given nil options.
var DefaultOpts = Opts{
	Variant: XL9555,
}

// Dev is a handle to one XL9535/XL9555 I/O expander.
//
// All register accesses on a Dev are serialized: a single pin update is a
// read-modify-write of one 8-bit register and must not interleave with any
// other access to the same chip. Separate Dev values are independent; any
// arbitration between them is left to the i2c.Bus.
type Dev struct {
	// Pins are the 16 I/O lines, indexed by pin number. Pins 0-7 are port 0,
	// pins 8-15 are port 1.
	Pins []Pin
	// Conns are the two 8-bit ports as half duplex connections.
	Conns []conn.Conn

	mu         sync.Mutex
	c          i2c.Dev
	name       string
	variant    variant
	closed     bool
	registered []string
}

// New returns a handle to the expander at addr on bus.
//
// addr must be in BaseAddress..MaxAddress. New does not access the bus and
// does not change its speed since the bus may be shared with slower devices.
// The chip runs at up to MaxSpeed; callers owning the bus can apply it with
// bus.SetSpeed(xl95x5.MaxSpeed) before calling New.
func New(bus i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if bus == nil {
		return nil, ErrNilBus
	}
	if isAddrInvalid(addr) {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidAddress, addr)
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
		if o.Variant == "" {
			o.Variant = DefaultOpts.Variant
		}
	}
	v, found := variants[o.Variant]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVariant, string(o.Variant))
	}
	name := o.Name
	if name == "" {
		name = string(o.Variant) + "_" + strconv.FormatInt(int64(addr), 16)
	}

	d := &Dev{
		c:       i2c.Dev{Bus: bus, Addr: addr},
		name:    name,
		variant: v,
	}
	d.Pins = make([]Pin, NumPins)
	for i := range d.Pins {
		d.Pins[i] = &xlPin{dev: d, number: i}
	}
	for i := range numPorts {
		d.Conns = append(d.Conns, &port{dev: d, number: i})
	}
	if o.RegisterPins {
		for _, p := range d.Pins {
			// Ignore registration failure, the pin stays usable through
			// d.Pins.
			if err := gpioreg.Register(p); err == nil {
				d.registered = append(d.registered, p.Name())
			}
		}
	}
	return d, nil
}

// String returns the device name.
func (d *Dev) String() string {
	return d.name
}

// Halt configures every pin as an input, the power-on state of the chip.
func (d *Dev) Halt() error {
	return d.SetModes(0xFFFF)
}

// Close releases the handle and removes any pin registration. Further calls
// on d, including Close, return ErrClosed.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	var err error
	for _, name := range d.registered {
		if e := gpioreg.Unregister(name); e != nil && err == nil {
			err = e
		}
	}
	d.registered = nil
	return err
}

// SCL returns the clock line of the bus, if the bus reports it.
func (d *Dev) SCL() gpio.PinIO {
	if p, ok := d.c.Bus.(i2c.Pins); ok {
		return p.SCL()
	}
	return gpio.INVALID
}

// SDA returns the data line of the bus, if the bus reports it.
func (d *Dev) SDA() gpio.PinIO {
	if p, ok := d.c.Bus.(i2c.Pins); ok {
		return p.SDA()
	}
	return gpio.INVALID
}

// ReadFull reads both ports of f in one transaction. Port 0 is the low byte.
func (d *Dev) ReadFull(f Function) (uint16, error) {
	pair, _, ok := f.registers()
	if !ok {
		return 0, ErrInvalidFunction
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	return d.read16(pair)
}

// WriteFull writes both ports of f in one transaction. Port 0 is the low
// byte.
func (d *Dev) WriteFull(f Function, value uint16) error {
	_, pair, ok := f.registers()
	if !ok {
		return ErrInvalidFunction
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.write16(pair, value)
}

// ReadPin reads the bit of pin in the register of f owning it.
func (d *Dev) ReadPin(f Function, pin int) (bool, error) {
	pair, _, ok := f.registers()
	if !ok {
		return false, ErrInvalidFunction
	}
	if pin < 0 || pin >= NumPins {
		return false, ErrInvalidPin
	}
	address, bit := pair.forPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false, ErrClosed
	}
	return d.getBit(address, bit)
}

// WritePin sets the bit of pin in the register of f owning it, leaving the
// seven other bits of that port untouched.
//
// This is a read followed by a write of one 8-bit register. When the write
// fails after a successful read, the register content is whatever the device
// kept; it is not restored.
func (d *Dev) WritePin(f Function, pin int, value bool) error {
	_, pair, ok := f.registers()
	if !ok {
		return ErrInvalidFunction
	}
	if pin < 0 || pin >= NumPins {
		return ErrInvalidPin
	}
	address, bit := pair.forPin(pin)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.modifyBit(address, bit, value)
}

// Levels returns the logic level of all 16 pins, after polarity inversion.
func (d *Dev) Levels() (uint16, error) {
	return d.ReadFull(FuncLevel)
}

// SetLevels writes the output latch of all 16 pins. Bits of pins configured
// as input are ignored by the chip.
func (d *Dev) SetLevels(levels uint16) error {
	return d.WriteFull(FuncLevel, levels)
}

// OutputLevels returns the output latch of all 16 pins.
func (d *Dev) OutputLevels() (uint16, error) {
	return d.ReadFull(FuncOutput)
}

// Level returns the logic level of one pin.
func (d *Dev) Level(pin int) (gpio.Level, error) {
	v, err := d.ReadPin(FuncLevel, pin)
	return gpio.Level(v), err
}

// SetLevel writes the output latch of one pin. It has no visible effect
// while the pin is an input.
func (d *Dev) SetLevel(pin int, l gpio.Level) error {
	return d.WritePin(FuncLevel, pin, bool(l))
}

// OutputLevel returns the output latch of one pin.
func (d *Dev) OutputLevel(pin int) (gpio.Level, error) {
	v, err := d.ReadPin(FuncOutput, pin)
	return gpio.Level(v), err
}

// Polarities returns the polarity inversion bits of all 16 pins.
func (d *Dev) Polarities() (uint16, error) {
	return d.ReadFull(FuncPolarity)
}

// SetPolarities writes the polarity inversion bits of all 16 pins.
func (d *Dev) SetPolarities(polarities uint16) error {
	return d.WriteFull(FuncPolarity, polarities)
}

// Polarity returns the polarity inversion of one pin.
func (d *Dev) Polarity(pin int) (Polarity, error) {
	v, err := d.ReadPin(FuncPolarity, pin)
	if v {
		return Inverted, err
	}
	return NotInverted, err
}

// SetPolarity sets the polarity inversion of one pin.
func (d *Dev) SetPolarity(pin int, p Polarity) error {
	return d.WritePin(FuncPolarity, pin, p != NotInverted)
}

// Modes returns the direction bits of all 16 pins. A set bit is an input.
func (d *Dev) Modes() (uint16, error) {
	return d.ReadFull(FuncMode)
}

// SetModes writes the direction bits of all 16 pins. A set bit is an input.
func (d *Dev) SetModes(modes uint16) error {
	return d.WriteFull(FuncMode, modes)
}

// Mode returns the direction of one pin.
func (d *Dev) Mode(pin int) (Mode, error) {
	v, err := d.ReadPin(FuncMode, pin)
	if v {
		return Input, err
	}
	return Output, err
}

// SetMode sets the direction of one pin.
func (d *Dev) SetMode(pin int, m Mode) error {
	return d.WritePin(FuncMode, pin, m != Output)
}

// out drives pin to l: the latch is written before the direction so the pin
// never briefly outputs a stale level.
func (d *Dev) out(pin int, l gpio.Level) error {
	if pin < 0 || pin >= NumPins {
		return ErrInvalidPin
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	_, latch, _ := FuncOutput.registers()
	_, config, _ := FuncMode.registers()
	address, bit := latch.forPin(pin)
	if err := d.modifyBit(address, bit, bool(l)); err != nil {
		return err
	}
	address, bit = config.forPin(pin)
	return d.modifyBit(address, bit, false)
}

var _ conn.Resource = &Dev{}
