// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2clcd

import (
	"fmt"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/pca9633"
)

const (
	waveshareLCDAddr uint16 = 0x3e
	waveshareRGBAddr uint16 = 0x60
)

// RGBBacklight is the PCA9633 driven backlight of the Waveshare LCD1602 RGB
// module.
type RGBBacklight struct {
	controller *pca9633.Dev
}

// NewRGBBacklight returns the backlight controller at addr.
func NewRGBBacklight(bus i2c.Bus, addr uint16) (*RGBBacklight, error) {
	c, err := pca9633.New(bus, addr, pca9633.STRUCT_OPENDRAIN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", packageName, hd44780.ErrIO, err)
	}
	return &RGBBacklight{controller: c}, nil
}

func (bl *RGBBacklight) String() string {
	return "pca9633 RGB backlight"
}

// RGBBacklight sets the color. The range of the values is 0-255.
func (bl *RGBBacklight) RGBBacklight(red, green, blue display.Intensity) error {
	// The LEDs are wired to the channels in this order.
	return bl.controller.Out(blue, green, red)
}

// Halt turns the backlight off.
func (bl *RGBBacklight) Halt() error {
	return bl.controller.Halt()
}

// NewWaveshare1602 returns the transport of a Waveshare LCD1602 RGB module,
// an AiP31068 at 0x3e with a PCA9633 RGB backlight at 0x60.
func NewWaveshare1602(bus i2c.Bus) (*Dev, error) {
	bl, err := NewRGBBacklight(bus, waveshareRGBAddr)
	if err != nil {
		return nil, err
	}
	return New(bus, &Opts{Addr: waveshareLCDAddr, Controller: AIP31068, Backlight: bl})
}

var _ display.DisplayRGBBacklight = &RGBBacklight{}
