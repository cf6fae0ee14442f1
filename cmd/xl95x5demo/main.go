// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// xl95x5demo blinks the outputs of an XL9535/XL9555 and reports changes on
// its inputs.
//
// Pins 0-7 are outputs toggled between 0xAA and 0x55, pins 8-15 are inputs
// polled at every step.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antongulenko/golib"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/expanders/pinview"
	"github.com/GermanBionicSystems/expanders/xl95x5"
	"github.com/GermanBionicSystems/expanders/xl95x5/xl95x5test"
)

var (
	busName  = ""
	addr     = uint(xl95x5.BaseAddress)
	variant  = string(xl95x5.XL9555)
	interval = time.Second
	count    = 0
	showPins = false
	fake     = false
	speed    = xl95x5.MaxSpeed
)

func main() {
	flag.StringVar(&busName, "bus", busName, "I²C bus to use, empty for the default one")
	flag.UintVar(&addr, "addr", addr, "I²C address of the expander (0x20..0x27)")
	flag.StringVar(&variant, "variant", variant, "Chip variant, XL9535 or XL9555")
	flag.DurationVar(&interval, "interval", interval, "Time between two output toggles")
	flag.IntVar(&count, "count", count, "Number of toggles, 0 runs until interrupted")
	flag.BoolVar(&showPins, "view", showPins, "Draw the pin states on the terminal")
	flag.BoolVar(&fake, "fake", fake, "Use an emulated chip instead of the I²C bus")
	flag.Var(&speed, "speed", "I²C clock to request, 0 leaves the bus speed unchanged")
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	golib.Checkerr(doMain())
}

func doMain() error {
	bus, err := openBus()
	if err != nil {
		return err
	}
	defer func() {
		golib.Printerr(bus.Close())
	}()

	dev, err := xl95x5.New(bus, uint16(addr), &xl95x5.Opts{Variant: xl95x5.Variant(variant)})
	if err != nil {
		return err
	}
	defer func() {
		golib.Printerr(dev.Close())
	}()
	log.Printf("Using %s on %s", dev, bus)

	l := &blinker{dev: dev, interval: interval, count: count}
	if showPins {
		l.view = pinview.New(nil)
		defer func() {
			golib.Printerr(l.view.Halt())
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return l.run(ctx)
}

func openBus() (i2c.BusCloser, error) {
	var bus i2c.BusCloser
	if fake {
		log.Warnln("Using an emulated chip, no hardware is accessed")
		bus = &fakeBus{xl95x5test.NewChip(uint16(addr))}
	} else {
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		var err error
		if bus, err = i2creg.Open(busName); err != nil {
			return nil, fmt.Errorf("failed to open I²C bus %q: %w", busName, err)
		}
	}
	applySpeed(bus, speed)
	return bus, nil
}

// applySpeed requests f on bus. Failures only warn: the bus may be shared
// with slower devices or not support the call.
func applySpeed(bus i2c.Bus, f physic.Frequency) {
	if f == 0 {
		return
	}
	if f > xl95x5.MaxSpeed {
		log.Warnf("%s is above the %s supported by the chip", f, xl95x5.MaxSpeed)
	}
	if err := bus.SetSpeed(f); err != nil {
		log.Warnf("Could not set %s to %s: %v", bus, f, err)
	}
}

type fakeBus struct {
	*xl95x5test.Chip
}

func (f *fakeBus) Close() error {
	return nil
}

type blinker struct {
	dev      *xl95x5.Dev
	interval time.Duration
	count    int
	view     *pinview.View
}

const (
	outputModes   = 0xFF00 // pins 0-7 outputs, pins 8-15 inputs
	initialLevels = 0x00AA
)

// run configures the ports then toggles the outputs every interval until ctx
// is done or count toggles happened.
func (b *blinker) run(ctx context.Context) error {
	if err := b.dev.SetModes(outputModes); err != nil {
		return err
	}
	levels := uint16(initialLevels)
	var oldInputs uint8
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for i := 0; b.count == 0 || i < b.count; i++ {
		if err := b.dev.SetLevels(levels); err != nil {
			return err
		}
		log.Debugf("Set GPIO levels: %#04x", levels)

		read, err := b.dev.Levels()
		if err != nil {
			return err
		}
		if inputs := uint8(read >> 8); inputs != oldInputs {
			log.Infof("Input GPIO levels changed: %#02x", inputs)
			oldInputs = inputs
		}
		if b.view != nil {
			if err := b.view.Show(pinview.State{Levels: read, Modes: outputModes}); err != nil {
				return err
			}
		}

		levels = ^levels & 0xFF
		if b.count != 0 && i == b.count-1 {
			break
		}
		select {
		case <-ctx.Done():
			log.Println("Interrupted")
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
