// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package xl95x5

import "periph.io/x/conn/v3/gpio"

// Variant is the type denoting a specific variant of the family.
type Variant string

const (
	XL9535 Variant = "XL9535" // XL9535 16-bit I²C extender, open inputs.
	XL9555 Variant = "XL9555" // XL9555 16-bit I²C extender, 100kΩ pull-up on every I/O.
)

// Both variants decode the same three address pins.
const (
	BaseAddress uint16 = 0x20
	MaxAddress  uint16 = BaseAddress + 7
)

type variant struct {
	pull gpio.Pull
}

var variants = map[Variant]variant{
	XL9535: {pull: gpio.Float},
	XL9555: {pull: gpio.PullUp},
}

// isAddrInvalid checks to see if the address can be strapped on the chip.
func isAddrInvalid(addr uint16) bool {
	return addr < BaseAddress || MaxAddress < addr
}
