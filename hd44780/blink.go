// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	blinkOnTime    = 100 * time.Millisecond
	blinkOffTime   = 250 * time.Millisecond
	blinkCodePause = 1500 * time.Millisecond
)

// BlinkLED flashes led blinks times. It is meant for boards where the display
// itself is what failed, so there is nowhere else to report to. A nil led
// returns ErrNotSupported. clock may be nil for a SystemClock.
func BlinkLED(led gpio.PinOut, clock Clock, blinks int) error {
	if led == nil {
		return ErrNotSupported
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	for range blinks {
		if err := led.Out(gpio.High); err != nil {
			return err
		}
		clock.Sleep(blinkOnTime)
		if err := led.Out(gpio.Low); err != nil {
			return err
		}
		clock.Sleep(blinkOffTime)
	}
	return nil
}

// FatalError never returns. It blinks the status code of err on led, pauses,
// and starts over.
func FatalError(led gpio.PinOut, clock Clock, err error) {
	if clock == nil {
		clock = NewSystemClock()
	}
	code := Status(err)
	if code < 0 {
		code = -code
	}
	for {
		_ = BlinkLED(led, clock, code)
		clock.Sleep(blinkCodePause)
	}
}
