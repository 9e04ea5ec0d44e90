// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd is a container for the HD44780 character LCD driver and its
// transports.
//
// The driver lives in hd44780. pinio, i2cexp, i2clcd and spiserial connect
// it to GPIO pins, I²C expander backpacks, native I²C controllers and
// Noritake SPI VFDs. lcdview renders a simulated panel and cmd/lcdctl drives
// a display from the command line.
package charlcd
