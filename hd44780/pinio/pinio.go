// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pinio drives HD44780 displays wired directly to GPIO pins, or to
// anything that exposes its outputs as periph.io gpio pins and groups, like
// I/O expanders and shift registers.
//
// The data lines are a gpio.Group. The first 4 pins of the group are D4-D7,
// or when the group has 8 or more pins, the first 8 are D0-D7.
package pinio

import (
	"fmt"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

const packageName = "pinio"

// enablePulse is the E high time. The datasheet asks for 450ns.
const enablePulse = 2 * time.Microsecond

// Pins lists the display signals.
type Pins struct {
	// Data are the data lines, D4-D7 or D0-D7.
	Data gpio.Group
	// RS selects the instruction (low) or data (high) register.
	RS gpio.PinOut
	// RW is the read/write line, nil when it is tied to ground. Reads need
	// it, and need the data pins to implement gpio.PinIn.
	RW gpio.PinOut
	// E is the enable strobe.
	E gpio.PinOut
	// Backlight is optional.
	Backlight display.DisplayBacklight
}

// Dev is a hd44780.Transport over GPIO pins.
type Dev struct {
	data  gpio.Group
	rs    gpio.PinOut
	rw    gpio.PinOut
	e     gpio.PinOut
	bl    display.DisplayBacklight
	width hd44780.BusWidth
	mask  gpio.GPIOValue
	ready hd44780.Ready
}

// New returns a transport for p.
func New(p Pins) (*Dev, error) {
	if p.Data == nil || p.RS == nil || p.E == nil {
		return nil, fmt.Errorf("%s: %w: data, RS and E are required", packageName, hd44780.ErrInvalidArgument)
	}
	n := len(p.Data.Pins())
	dev := &Dev{data: p.Data, rs: p.RS, rw: p.RW, e: p.E, bl: p.Backlight}
	switch {
	case n >= 8:
		dev.width, dev.mask = hd44780.Bus8Bit, 0xff
	case n >= 4:
		dev.width, dev.mask = hd44780.Bus4Bit, 0x0f
	default:
		return nil, fmt.Errorf("%s: %w: %d data pins", packageName, hd44780.ErrInvalidArgument, n)
	}
	return dev, nil
}

// NewDev creates the transport and returns an initialized display.
func NewDev(p Pins, opts *hd44780.Opts) (*hd44780.Dev, error) {
	t, err := New(p)
	if err != nil {
		return nil, err
	}
	return hd44780.NewDev(t, opts)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%s, %d bit}", packageName, dev.data, dev.width)
}

// Init implements hd44780.Transport. All control lines are driven low.
func (dev *Dev) Init(r hd44780.Ready) (hd44780.BusWidth, error) {
	dev.ready = r
	for _, p := range []gpio.PinOut{dev.rs, dev.rw, dev.e} {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.Low); err != nil {
			return 0, err
		}
	}
	return dev.width, nil
}

func (dev *Dev) waitReady() {
	if dev.ready != nil {
		dev.ready.WaitReady()
	}
}

func (dev *Dev) pulse() error {
	if err := dev.e.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(enablePulse)
	return dev.e.Out(gpio.Low)
}

// write presents the first transfer on the pins before waiting, so the pin
// setup overlaps the controller execution time.
func (dev *Dev) write(rs gpio.Level, nibbleOnly bool, value byte) error {
	if err := dev.rs.Out(rs); err != nil {
		return err
	}
	if dev.width == hd44780.Bus8Bit {
		if nibbleOnly {
			value &= 0xf0
		}
		if err := dev.data.Out(gpio.GPIOValue(value), dev.mask); err != nil {
			return err
		}
		dev.waitReady()
		return dev.pulse()
	}
	if err := dev.data.Out(gpio.GPIOValue(value>>4), dev.mask); err != nil {
		return err
	}
	dev.waitReady()
	if err := dev.pulse(); err != nil {
		return err
	}
	if nibbleOnly {
		return nil
	}
	if err := dev.data.Out(gpio.GPIOValue(value&0x0f), dev.mask); err != nil {
		return err
	}
	return dev.pulse()
}

// WriteCommand implements hd44780.Transport.
func (dev *Dev) WriteCommand(nibbleOnly bool, value byte) error {
	return dev.write(gpio.Low, nibbleOnly, value)
}

// WriteData implements hd44780.Transport.
func (dev *Dev) WriteData(value byte) error {
	return dev.write(gpio.High, false, value)
}

// Read implements hd44780.Reader. It needs RW and data pins that can be
// switched to input.
func (dev *Dev) Read(kind hd44780.ReadKind) (byte, error) {
	if dev.rw == nil {
		return 0, hd44780.ErrNotSupported
	}
	n := 4
	if dev.width == hd44780.Bus8Bit {
		n = 8
	}
	pins := dev.data.Pins()[:n]
	for _, p := range pins {
		in, ok := p.(gpio.PinIn)
		if !ok {
			return 0, hd44780.ErrNotSupported
		}
		if err := in.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return 0, err
		}
	}
	rs := gpio.Low
	if kind == hd44780.ReadData {
		rs = gpio.High
	}
	if err := dev.rs.Out(rs); err != nil {
		return 0, err
	}
	if err := dev.rw.Out(gpio.High); err != nil {
		return 0, err
	}
	dev.waitReady()
	v, err := dev.strobeIn()
	if err == nil && dev.width == hd44780.Bus4Bit {
		var low byte
		low, err = dev.strobeIn()
		v = v<<4 | low
	}
	if rerr := dev.rw.Out(gpio.Low); err == nil {
		err = rerr
	}
	// Writing a level turns the pins back into outputs.
	for _, p := range pins {
		if out, ok := p.(gpio.PinOut); ok {
			if oerr := out.Out(gpio.Low); err == nil {
				err = oerr
			}
		}
	}
	return v, err
}

// strobeIn samples the data lines while E is high.
func (dev *Dev) strobeIn() (byte, error) {
	if err := dev.e.Out(gpio.High); err != nil {
		return 0, err
	}
	time.Sleep(enablePulse)
	v, err := dev.data.Read(dev.mask)
	if eerr := dev.e.Out(gpio.Low); err == nil {
		err = eerr
	}
	return byte(v), err
}

// SetBacklight implements hd44780.Backlighter.
func (dev *Dev) SetBacklight(level byte) error {
	if dev.bl == nil {
		return hd44780.ErrNotSupported
	}
	return dev.bl.Backlight(display.Intensity(level))
}

// Halt implements conn.Resource. It halts the data pin group.
func (dev *Dev) Halt() error {
	return dev.data.Halt()
}

var _ hd44780.Transport = &Dev{}
var _ hd44780.Reader = &Dev{}
var _ hd44780.Backlighter = &Dev{}
