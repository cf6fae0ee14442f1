// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package expanders is a container for I²C GPIO expander drivers and the
// tools built on them.
//
// See package xl95x5 for the XL9535/XL9555 driver.
package expanders
