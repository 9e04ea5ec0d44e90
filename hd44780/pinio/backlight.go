// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pinio

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOMonoBacklight switches a backlight with a single GPIO pin. Any non
// zero intensity is on.
type GPIOMonoBacklight struct {
	blPin     gpio.PinOut
	activeLow bool
}

// NewBacklight returns a backlight driven by blPin, on when the pin is high.
func NewBacklight(blPin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{blPin: blPin}
}

// NewBacklightActiveLow returns a backlight driven by blPin, on when the pin
// is low, as with a PNP transistor.
func NewBacklightActiveLow(blPin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{blPin: blPin, activeLow: true}
}

// Backlight turns the backlight on or off.
func (bl *GPIOMonoBacklight) Backlight(intensity display.Intensity) error {
	on := intensity > 0
	return bl.blPin.Out(gpio.Level(on != bl.activeLow))
}

func (bl *GPIOMonoBacklight) String() string {
	return bl.blPin.String()
}

var _ display.DisplayBacklight = &GPIOMonoBacklight{}
