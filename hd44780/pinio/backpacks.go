// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinio

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/mcp23xxx"
	"periph.io/x/devices/v3/nxp74hc595"
	"periph.io/x/devices/v3/pcf857x"
)

// Port bits of the common PCF8574 backpacks.
const (
	pcfRS = 0
	pcfRW = 1
	pcfE  = 2
	pcfBL = 3
	pcfD4 = 4
	pcfD5 = 5
	pcfD6 = 6
	pcfD7 = 7
)

// Pin numbers of the Adafruit I2C/SPI backpack, as MCP23008 GPIO numbers.
// The 74HC595 on the SPI side uses the same numbers.
const (
	afRS = 1
	afE  = 2
	afD4 = 3
	afD5 = 4
	afD6 = 5
	afD7 = 6
	afBL = 7
)

var errPinType = errors.New("expander pin is not an output")

// NewPCF857xBackpack returns a display on one of the ubiquitous PCF8574
// backpacks, with RS on P0, RW on P1, E on P2, backlight on P3 and D4-D7 on
// P4-P7.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// These boards wire R/W, so the display can be read back. The i2cexp package
// drives the same boards with fewer bus transactions.
func NewPCF857xBackpack(bus i2c.Bus, address uint16, opts *hd44780.Opts) (*hd44780.Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	data, err := pcf.Group(pcfD4, pcfD5, pcfD6, pcfD7)
	if err != nil {
		return nil, err
	}
	return NewDev(Pins{
		Data:      data,
		RS:        pcf.Pins[pcfRS],
		RW:        pcf.Pins[pcfRW],
		E:         pcf.Pins[pcfE],
		Backlight: NewBacklight(pcf.Pins[pcfBL]),
	}, opts)
}

// NewAdafruitI2CBackpack returns a display on the I2C side of the Adafruit
// I2C/SPI LCD backpack, which uses an MCP23008 I/O expander.
//
// # Product Information
//
// https://www.adafruit.com/product/292
func NewAdafruitI2CBackpack(bus i2c.Bus, address uint16, opts *hd44780.Opts) (*hd44780.Dev, error) {
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23008, address)
	if err != nil {
		return nil, err
	}
	data := *mcp.Group(0, []int{afD4, afD5, afD6, afD7})
	ctl := *mcp.Group(0, []int{afRS, afE, afBL})
	var outs [3]gpio.PinOut
	for i := range outs {
		o, ok := ctl.ByOffset(i).(gpio.PinOut)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", packageName, errPinType, ctl.ByOffset(i))
		}
		outs[i] = o
	}
	return NewDev(Pins{
		Data:      data,
		RS:        outs[0],
		E:         outs[1],
		Backlight: NewBacklight(outs[2]),
	}, opts)
}

// NewAdafruitSPIBackpack returns a display on the SPI side of the Adafruit
// I2C/SPI backpack, a 74HC595 shift register. The register cannot be read,
// so neither can the display.
func NewAdafruitSPIBackpack(conn spi.Conn, opts *hd44780.Opts) (*hd44780.Dev, error) {
	chip, err := nxp74hc595.New(conn)
	if err != nil {
		return nil, err
	}
	// The SPI side wires the data lines in reverse order.
	data, err := chip.Group(afD7, afD6, afD5, afD4)
	if err != nil {
		return nil, err
	}
	return NewDev(Pins{
		Data:      data,
		RS:        chip.Pins[afRS],
		E:         chip.Pins[afE],
		Backlight: NewBacklight(chip.Pins[afBL]),
	}, opts)
}

// MCP23017Pins maps the display lines to MCP23017 GPIO numbers, 0-7 on port
// A and 8-15 on port B. RW and BL are -1 when not wired. D4-D7 must share a
// port.
type MCP23017Pins struct {
	RS, RW, E      int
	D4, D5, D6, D7 int
	BL             int
	// BLActiveLow is set when the backlight is lit with BL low.
	BLActiveLow bool
}

// AdafruitRGBShield is the wiring of the Adafruit RGB LCD shield. BL is the
// red LED of the RGB backlight.
//
// # Product Information
//
// https://www.adafruit.com/product/716
var AdafruitRGBShield = MCP23017Pins{
	RS: 15, RW: 14, E: 13,
	D4: 12, D5: 11, D6: 10, D7: 9,
	BL: 6, BLActiveLow: true,
}

func (p *MCP23017Pins) check() error {
	all := []int{p.RS, p.E, p.D4, p.D5, p.D6, p.D7}
	if p.RW != -1 {
		all = append(all, p.RW)
	}
	if p.BL != -1 {
		all = append(all, p.BL)
	}
	var used uint16
	for _, n := range all {
		if n < 0 || n > 15 || used&(1<<n) != 0 {
			return fmt.Errorf("%s: %w: MCP23017 pin %d", packageName, hd44780.ErrInvalidArgument, n)
		}
		used |= 1 << n
	}
	for _, n := range []int{p.D5, p.D6, p.D7} {
		if n/8 != p.D4/8 {
			return fmt.Errorf("%s: %w: D4-D7 on different ports", packageName, hd44780.ErrInvalidArgument)
		}
	}
	return nil
}

// NewMCP23017Backpack returns a display in 4 bit mode behind an MCP23017 I/O
// expander wired as p.
func NewMCP23017Backpack(bus i2c.Bus, address uint16, p *MCP23017Pins, opts *hd44780.Opts) (*hd44780.Dev, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23017, address)
	if err != nil {
		return nil, err
	}
	pin := func(n int) gpio.PinIO {
		return mcp.Pins[n/8][n%8]
	}
	pins := Pins{
		Data: *mcp.Group(p.D4/8, []int{p.D4 % 8, p.D5 % 8, p.D6 % 8, p.D7 % 8}),
		RS:   pin(p.RS),
		E:    pin(p.E),
	}
	if p.RW != -1 {
		pins.RW = pin(p.RW)
	}
	switch {
	case p.BL == -1:
	case p.BLActiveLow:
		pins.Backlight = NewBacklightActiveLow(pin(p.BL))
	default:
		pins.Backlight = NewBacklight(pin(p.BL))
	}
	return NewDev(pins, opts)
}
