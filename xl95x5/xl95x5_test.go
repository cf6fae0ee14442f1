// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package xl95x5

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/expanders/xl95x5/xl95x5test"
)

const address uint16 = 0x20

func newChipDev(t *testing.T) (*Dev, *xl95x5test.Chip) {
	t.Helper()
	chip := xl95x5test.NewChip(address)
	dev, err := New(chip, address, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	return dev, chip
}

func TestNew_address(t *testing.T) {
	for addr := uint16(0); addr < 0x80; addr++ {
		bus := &i2ctest.Playback{DontPanic: true}
		dev, err := New(bus, addr, nil)
		valid := addr >= 0x20 && addr <= 0x27
		if valid {
			if err != nil {
				t.Errorf("New(%#x) failed: %v", addr, err)
				continue
			}
			if err := dev.Close(); err != nil {
				t.Errorf("Close(%#x) failed: %v", addr, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("New(%#x) = %v, want ErrInvalidAddress", addr, err)
			}
			if dev != nil {
				t.Errorf("New(%#x) returned a device", addr)
			}
		}
		if bus.Count != 0 {
			t.Errorf("New(%#x) accessed the bus", addr)
		}
	}
}

func TestNew_invalid(t *testing.T) {
	if _, err := New(nil, address, nil); !errors.Is(err, ErrNilBus) {
		t.Errorf("nil bus: %v", err)
	}
	bus := &i2ctest.Playback{DontPanic: true}
	if _, err := New(bus, address, &Opts{Variant: "XL9999"}); !errors.Is(err, ErrInvalidVariant) {
		t.Errorf("bad variant: %v", err)
	}
}

func TestNew_naming(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	tests := []struct {
		opts *Opts
		want string
	}{
		{nil, "XL9555_20"},
		{&Opts{}, "XL9555_20"},
		{&Opts{Variant: XL9535}, "XL9535_20"},
		{&Opts{Name: "relays"}, "relays"},
	}
	for _, tc := range tests {
		dev, err := New(bus, address, tc.opts)
		if err != nil {
			t.Fatal(err)
		}
		if dev.String() != tc.want {
			t.Errorf("String() = %q, want %q", dev.String(), tc.want)
		}
	}
	dev, _ := New(bus, 0x27, nil)
	if dev.String() != "XL9555_27" {
		t.Errorf("String() = %q", dev.String())
	}
}

func TestXL9555_fullRegisters(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: address, W: []byte{0x06, 0x00, 0xFF}},
			{Addr: address, W: []byte{0x02, 0xAA, 0x00}},
			{Addr: address, W: []byte{0x00}, R: []byte{0xAA, 0x12}},
			{Addr: address, W: []byte{0x02}, R: []byte{0xAA, 0x00}},
			{Addr: address, W: []byte{0x04, 0x01, 0x80}},
			{Addr: address, W: []byte{0x04}, R: []byte{0x01, 0x80}},
			{Addr: address, W: []byte{0x06}, R: []byte{0x00, 0xFF}},
		},
		DontPanic: true,
	}
	dev, err := New(bus, address, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if err := dev.SetModes(0xFF00); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetLevels(0x00AA); err != nil {
		t.Fatal(err)
	}
	got := make([]uint16, 0, 4)
	for _, read := range []func() (uint16, error){dev.Levels, dev.OutputLevels} {
		v, err := read()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if err := dev.SetPolarities(0x8001); err != nil {
		t.Fatal(err)
	}
	for _, read := range []func() (uint16, error){dev.Polarities, dev.Modes} {
		v, err := read()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]uint16{0x12AA, 0x00AA, 0x8001, 0xFF00}, got); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestXL9555_pinRegisters(t *testing.T) {
	type access struct {
		name  string
		read  uint8
		write uint8
		get   func(d *Dev, pin int) (bool, error)
		set   func(d *Dev, pin int, v bool) error
	}
	accesses := []access{
		{
			name: "level", read: 0x00, write: 0x02,
			get: func(d *Dev, pin int) (bool, error) { l, err := d.Level(pin); return bool(l), err },
			set: func(d *Dev, pin int, v bool) error { return d.SetLevel(pin, gpio.Level(v)) },
		},
		{
			name: "polarity", read: 0x04, write: 0x04,
			get: func(d *Dev, pin int) (bool, error) { p, err := d.Polarity(pin); return p == Inverted, err },
			set: func(d *Dev, pin int, v bool) error {
				if v {
					return d.SetPolarity(pin, Inverted)
				}
				return d.SetPolarity(pin, NotInverted)
			},
		},
		{
			name: "mode", read: 0x06, write: 0x06,
			get: func(d *Dev, pin int) (bool, error) { m, err := d.Mode(pin); return m == Input, err },
			set: func(d *Dev, pin int, v bool) error {
				if v {
					return d.SetMode(pin, Input)
				}
				return d.SetMode(pin, Output)
			},
		},
	}
	for _, a := range accesses {
		for pin := range NumPins {
			port := uint8(pin / 8)
			bit := byte(1) << (pin % 8)
			bus := &i2ctest.Playback{
				Ops: []i2ctest.IO{
					// set true: other bits kept
					{Addr: address, W: []byte{a.write + port}, R: []byte{0x00}},
					{Addr: address, W: []byte{a.write + port, bit}},
					// set false: other bits kept
					{Addr: address, W: []byte{a.write + port}, R: []byte{0xFF}},
					{Addr: address, W: []byte{a.write + port, ^bit}},
					// get
					{Addr: address, W: []byte{a.read + port}, R: []byte{bit}},
					{Addr: address, W: []byte{a.read + port}, R: []byte{^bit}},
				},
				DontPanic: true,
			}
			dev, err := New(bus, address, nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := a.set(dev, pin, true); err != nil {
				t.Errorf("%s pin %d: set true: %v", a.name, pin, err)
			}
			if err := a.set(dev, pin, false); err != nil {
				t.Errorf("%s pin %d: set false: %v", a.name, pin, err)
			}
			if v, err := a.get(dev, pin); !v || err != nil {
				t.Errorf("%s pin %d: get = %t, %v; want true", a.name, pin, v, err)
			}
			if v, err := a.get(dev, pin); v || err != nil {
				t.Errorf("%s pin %d: get = %t, %v; want false", a.name, pin, v, err)
			}
			if err := bus.Close(); err != nil {
				t.Errorf("%s pin %d: %v", a.name, pin, err)
			}
		}
	}
}

func TestXL9555_invalidPin(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, address, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	for _, pin := range []int{-1, 16, 17, 255} {
		calls := map[string]error{}
		_, calls["Level"] = dev.Level(pin)
		calls["SetLevel"] = dev.SetLevel(pin, gpio.High)
		_, calls["OutputLevel"] = dev.OutputLevel(pin)
		_, calls["Polarity"] = dev.Polarity(pin)
		calls["SetPolarity"] = dev.SetPolarity(pin, Inverted)
		_, calls["Mode"] = dev.Mode(pin)
		calls["SetMode"] = dev.SetMode(pin, Output)
		_, calls["ReadPin"] = dev.ReadPin(FuncLevel, pin)
		calls["WritePin"] = dev.WritePin(FuncMode, pin, true)
		calls["out"] = dev.out(pin, gpio.High)
		_, calls["Group"] = dev.Group(0, pin)
		for name, err := range calls {
			if !errors.Is(err, ErrInvalidPin) {
				t.Errorf("%s(%d) = %v, want ErrInvalidPin", name, pin, err)
			}
		}
	}
	if bus.Count != 0 {
		t.Errorf("invalid pins reached the bus %d times", bus.Count)
	}
}

func TestXL9555_invalidFunction(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, address, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	f := Function(42)
	if _, err := dev.ReadFull(f); !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("ReadFull: %v", err)
	}
	if err := dev.WriteFull(f, 0); !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("WriteFull: %v", err)
	}
	if _, err := dev.ReadPin(f, 0); !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("ReadPin: %v", err)
	}
	if err := dev.WritePin(f, 0, true); !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("WritePin: %v", err)
	}
	if f.String() != "Function(42)" {
		t.Errorf("String() = %q", f.String())
	}
	if bus.Count != 0 {
		t.Errorf("invalid functions reached the bus %d times", bus.Count)
	}
}

func TestXL9555_roundTrip(t *testing.T) {
	dev, _ := newChipDev(t)
	// All outputs, no inversion: the input register echoes the latch.
	if err := dev.SetModes(0x0000); err != nil {
		t.Fatal(err)
	}
	for _, f := range []Function{FuncLevel, FuncOutput, FuncPolarity, FuncMode} {
		for _, v := range []uint16{0x0000, 0xFFFF, 0x00FF, 0xFF00, 0xA55A, 0x0001, 0x8000} {
			if err := dev.WriteFull(f, v); err != nil {
				t.Fatal(err)
			}
			got, err := dev.ReadFull(f)
			if err != nil {
				t.Fatal(err)
			}
			if got != v {
				t.Errorf("%s: wrote %#04x, read %#04x", f, v, got)
			}
		}
		// Leave every pin an output without inversion for the next function.
		_ = dev.SetModes(0)
		_ = dev.SetPolarities(0)
	}
}

func TestXL9555_idempotentRead(t *testing.T) {
	dev, chip := newChipDev(t)
	chip.SetInputs(0xC3A5)
	first, err := dev.Levels()
	if err != nil {
		t.Fatal(err)
	}
	second, err := dev.Levels()
	if err != nil {
		t.Fatal(err)
	}
	if first != second || first != 0xC3A5 {
		t.Errorf("Levels() = %#04x then %#04x, want 0xc3a5 twice", first, second)
	}
}

func TestXL9555_siblingBits(t *testing.T) {
	for pin := range NumPins {
		dev, chip := newChipDev(t)
		if err := dev.SetModes(0); err != nil {
			t.Fatal(err)
		}
		const initial = 0x5AA5
		if err := dev.SetLevels(initial); err != nil {
			t.Fatal(err)
		}
		if err := dev.SetLevel(pin, gpio.High); err != nil {
			t.Fatal(err)
		}
		want := uint16(initial) | 1<<pin
		for p2 := range NumPins {
			l, err := dev.Level(p2)
			if err != nil {
				t.Fatal(err)
			}
			if bool(l) != (want&(1<<p2) != 0) {
				t.Errorf("pin %d set: pin %d = %s", pin, p2, l)
			}
		}
		got := uint16(chip.Register(xl95x5test.RegOutput0)) | uint16(chip.Register(xl95x5test.RegOutput1))<<8
		if got != want {
			t.Errorf("pin %d set: latch = %#04x, want %#04x", pin, got, want)
		}
	}
}

func TestXL9555_transportErrors(t *testing.T) {
	boom := errors.New("bus timeout")

	t.Run("read", func(t *testing.T) {
		dev, chip := newChipDev(t)
		chip.Intercept = func(w, r []byte) error { return boom }
		if _, err := dev.Levels(); err != boom {
			t.Errorf("Levels() = %v, want the bus error", err)
		}
		if _, err := dev.Mode(3); err != boom {
			t.Errorf("Mode() = %v, want the bus error", err)
		}
		if err := dev.SetModes(0); err != boom {
			t.Errorf("SetModes() = %v, want the bus error", err)
		}
	})

	t.Run("rmw read fails", func(t *testing.T) {
		dev, chip := newChipDev(t)
		calls := 0
		chip.Intercept = func(w, r []byte) error {
			calls++
			return boom
		}
		if err := dev.SetLevel(3, gpio.Low); err != boom {
			t.Errorf("SetLevel() = %v, want the bus error", err)
		}
		if calls != 1 {
			t.Errorf("%d transactions, the write must not be attempted", calls)
		}
		if chip.Register(xl95x5test.RegOutput0) != 0xFF {
			t.Error("register changed")
		}
	})

	t.Run("rmw write fails", func(t *testing.T) {
		dev, chip := newChipDev(t)
		chip.Intercept = func(w, r []byte) error {
			if len(w) > 1 {
				return boom
			}
			return nil
		}
		if err := dev.SetLevel(3, gpio.Low); err != boom {
			t.Errorf("SetLevel() = %v, want the bus error", err)
		}
		ops := chip.Ops()
		if len(ops) != 1 || len(ops[0].W) != 1 || ops[0].W[0] != 0x02 {
			t.Errorf("ops = %v, want the latch read only", ops)
		}
		if chip.Register(xl95x5test.RegOutput0) != 0xFF {
			t.Error("register changed")
		}
	})

	t.Run("no ack", func(t *testing.T) {
		chip := xl95x5test.NewChip(0x21)
		dev, err := New(chip, address, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer dev.Close()
		if err := dev.SetModes(0); !errors.Is(err, xl95x5test.ErrNoAck) {
			t.Errorf("SetModes() = %v", err)
		}
	})
}

func TestXL9555_close(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, address, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := dev.Levels(); !errors.Is(err, ErrClosed) {
		t.Errorf("Levels() = %v", err)
	}
	if err := dev.SetLevel(0, gpio.High); !errors.Is(err, ErrClosed) {
		t.Errorf("SetLevel() = %v", err)
	}
	if err := dev.Pins[0].Out(gpio.High); !errors.Is(err, ErrClosed) {
		t.Errorf("Out() = %v", err)
	}
	if err := dev.Halt(); !errors.Is(err, ErrClosed) {
		t.Errorf("Halt() = %v", err)
	}
	if bus.Count != 0 {
		t.Errorf("closed device reached the bus %d times", bus.Count)
	}
}

func TestXL9555_halt(t *testing.T) {
	dev, chip := newChipDev(t)
	if err := dev.SetModes(0x1234); err != nil {
		t.Fatal(err)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if chip.Register(xl95x5test.RegConfig0) != 0xFF || chip.Register(xl95x5test.RegConfig1) != 0xFF {
		t.Error("Halt() should make every pin an input")
	}
}

// The sample program's sequence: port 0 outputs, port 1 inputs, outputs
// toggled between 0xAA and 0x55.
func TestXL9555_demoScenario(t *testing.T) {
	dev, chip := newChipDev(t)
	chip.SetInputs(0x3C00)
	if err := dev.SetModes(0xFF00); err != nil {
		t.Fatal(err)
	}
	levels := uint16(0x00AA)
	var got []uint16
	for range 4 {
		if err := dev.SetLevels(levels); err != nil {
			t.Fatal(err)
		}
		v, err := dev.Levels()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
		levels = ^levels & 0xFF
	}
	want := []uint16{0x3CAA, 0x3C55, 0x3CAA, 0x3C55}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("levels (-want +got):\n%s", diff)
	}
}

type pinsBus struct {
	*xl95x5test.Chip
	scl, sda gpio.PinIO
}

func (p *pinsBus) SCL() gpio.PinIO { return p.scl }
func (p *pinsBus) SDA() gpio.PinIO { return p.sda }

func TestXL9555_busPins(t *testing.T) {
	dev, _ := newChipDev(t)
	if dev.SCL() != gpio.INVALID || dev.SDA() != gpio.INVALID {
		t.Error("a bus without pins should report gpio.INVALID")
	}
	scl := &gpiotest.Pin{N: "GPIO22"}
	sda := &gpiotest.Pin{N: "GPIO21"}
	bus := &pinsBus{Chip: xl95x5test.NewChip(address), scl: scl, sda: sda}
	dev, err := New(bus, address, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	if dev.SCL() != scl || dev.SDA() != sda {
		t.Errorf("SCL()=%s SDA()=%s", dev.SCL(), dev.SDA())
	}
}

func TestStrings(t *testing.T) {
	if Input.String() != "Input" || Output.String() != "Output" {
		t.Error("Mode.String()")
	}
	if Inverted.String() != "Inverted" || NotInverted.String() != "NotInverted" {
		t.Error("Polarity.String()")
	}
	want := []string{"Level", "Polarity", "Mode", "Output"}
	for i, f := range []Function{FuncLevel, FuncPolarity, FuncMode, FuncOutput} {
		if f.String() != want[i] {
			t.Errorf("%d.String() = %q", i, f.String())
		}
	}
}
