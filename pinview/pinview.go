// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pinview draws the state of a 16 pin expander on the terminal
// (stdout) using ANSI color codes, one colored cell per pin.
//
// Useful to watch a polling loop without a logic analyzer.
package pinview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// NumPins is the number of cells drawn.
const NumPins = 16

// Colors of the four states a pin can be in.
var (
	OutputHigh = color.NRGBA{R: 255, G: 64, B: 0, A: 255}
	OutputLow  = color.NRGBA{R: 64, G: 16, B: 0, A: 255}
	InputHigh  = color.NRGBA{R: 0, G: 255, B: 64, A: 255}
	InputLow   = color.NRGBA{R: 0, G: 64, B: 16, A: 255}
)

// State is a snapshot of the pins. Bit n is pin n.
type State struct {
	// Levels as read from the input registers.
	Levels uint16
	// Modes as read from the configuration registers; a set bit is an input.
	Modes uint16
}

// Opts represents the options available for this view.
type Opts struct {
	// W defaults to a colorable stdout.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// View draws pin states on a single, rewritten, terminal line.
type View struct {
	w       io.Writer
	palette ansi256.Palette
	buf     bytes.Buffer
	last    State
}

// New returns a View that displays at the console.
func New(opts *Opts) *View {
	var o Opts
	if opts != nil {
		o = *opts
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := o.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &View{w: w, palette: *p}
}

func (v *View) String() string {
	return "PinView"
}

// Halt resets the terminal colors and moves to a new line.
func (v *View) Halt() error {
	_, err := v.w.Write([]byte("\n\033[0m"))
	return err
}

// Show redraws the line with s. Port 1 is drawn left of port 0 so the cells
// read like the 16-bit value, most significant pin first.
func (v *View) Show(s State) error {
	v.last = s
	v.buf.Reset()
	_, _ = v.buf.WriteString("\r\033[0m")
	for pin := NumPins - 1; pin >= 0; pin-- {
		_, _ = io.WriteString(&v.buf, v.palette.Block(cellColor(s, pin)))
		if pin == 8 {
			_, _ = v.buf.WriteString("\033[0m ")
		}
	}
	fmt.Fprintf(&v.buf, "\033[0m %#04x/%#04x ", s.Levels, s.Modes)
	_, err := v.buf.WriteTo(v.w)
	return err
}

// Last returns the state passed to the last Show call.
func (v *View) Last() State {
	return v.last
}

func cellColor(s State, pin int) color.NRGBA {
	high := s.Levels&(1<<pin) != 0
	input := s.Modes&(1<<pin) != 0
	switch {
	case input && high:
		return InputHigh
	case input:
		return InputLow
	case high:
		return OutputHigh
	default:
		return OutputLow
	}
}

var _ fmt.Stringer = &View{}
