// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package xl95x5 provides a driver for the XINLUDA XL9535 and XL9555 16-bit
// I²C I/O expanders.
//
// Both chips answer on addresses 0x20 to 0x27 and run at up to 400kHz. The 16
// pins are split in two 8-bit ports; pins 0-7 are port 0 and pins 8-15 are
// port 1. Each port has four registers:
//
//	Function            Port 0  Port 1
//	Input level (RO)    0x00    0x01
//	Output level        0x02    0x03
//	Polarity inversion  0x04    0x05
//	Direction (1 = in)  0x06    0x07
//
// Whole-device accessors (Levels, SetModes, ...) move both ports of a function
// in one bus transaction, port 0 in the low byte. Single pin accessors read or
// read-modify-write the one register owning the pin. Every access holds the
// Dev lock, so a pin update can not lose a concurrent update of a sibling pin.
//
// Writes to the output registers are not masked by the direction register;
// the chip ignores latch bits of input pins.
//
// Both gpio.Pin and conn.Conn interfaces are supported, plus gpio.Group for
// several pins at once.
//
// # Datasheet
//
// https://www.xinluda.com/en/I2C-to-GPIO-extension/
package xl95x5
