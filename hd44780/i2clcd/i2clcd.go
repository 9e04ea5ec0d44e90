// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2clcd drives displays whose HD44780 compatible controller speaks
// I²C natively, like the AiP31068 and the ST7032. These are not backpacks: the
// controller runs in 8 bit mode and every instruction or character is a two
// byte transaction, a control byte followed by the value.
//
// The controllers can't be read, so the display is paced by execution time
// only.
//
// # Datasheets
//
// https://support.newhavendisplay.com/hc/en-us/article_attachments/4414498095511
//
// https://www.newhavendisplay.com/app_notes/ST7032.pdf
package i2clcd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/hd44780/i2cexp"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

const packageName = "i2clcd"

const (
	ctlCommand byte = 0x00
	ctlData    byte = 0x40
)

// The address byte goes out before the control and value bytes; at 400kHz
// that is at least 25µs.
const linkOffsetUs = -25

// ST7032 instructions, valid while the IS bit of function set is 1.
const (
	st7032IS          byte = 0x01
	st7032OSC         byte = 0x14
	st7032ContrastLow byte = 0x70
	st7032PowerIcon   byte = 0x50
	st7032Booster     byte = 0x04
	st7032Follower    byte = 0x6c
	st7032Contrast    byte = 0x20
)

const (
	st7032InsWait = 30 * time.Microsecond
	// The voltage follower needs time to settle before the display is
	// usable.
	st7032FollowerWait = 200 * time.Millisecond
)

// LCDAddresses are the addresses probed for a native I²C controller when
// no address is given.
var LCDAddresses = []uint16{0x3a, 0x3b, 0x3c, 0x3d, 0x3e, 0x3f}

// Controller identifies the controller flavor.
type Controller int

const (
	// AIP31068 and compatibles need no setup besides the HD44780
	// initialization.
	AIP31068 Controller = iota
	// ST7032 has an internal booster and contrast control set up through
	// extended instructions. Found on AQM0802A and AQM1602 modules.
	ST7032
)

func (c Controller) String() string {
	switch c {
	case AIP31068:
		return "AIP31068"
	case ST7032:
		return "ST7032"
	default:
		return fmt.Sprintf("Controller(%d)", int(c))
	}
}

// Opts configures the transport.
type Opts struct {
	// Addr is the I²C address. 0 asks Locator.
	Addr uint16
	// Locator is used when Addr is 0. nil creates one probing LCDAddresses.
	Locator    *i2cexp.Locator
	Controller Controller
	// Contrast is the initial ST7032 contrast, 0-63. 0 selects a middle
	// value.
	Contrast byte
	// Backlight is nil, a display.DisplayBacklight or a
	// display.DisplayRGBBacklight.
	Backlight any
	// Clock paces the ST7032 setup. nil is a hd44780.SystemClock.
	Clock hd44780.Clock
}

// Dev is a hd44780.Transport for native I²C controllers.
type Dev struct {
	d          *i2c.Dev
	controller Controller
	contrast   byte
	blMono     display.DisplayBacklight
	blRGB      display.DisplayRGBBacklight
	clock      hd44780.Clock
	ready      hd44780.Ready
	// functionSet is the last function set instruction sent, used to get
	// back to the normal instruction table.
	functionSet byte
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	if errors.Is(err, hd44780.ErrIO) {
		return fmt.Errorf("%s: %w", packageName, err)
	}
	return fmt.Errorf("%s: %w: %w", packageName, hd44780.ErrIO, err)
}

// New returns a transport for the controller at opts.Addr.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		if o.Locator == nil {
			o.Locator = i2cexp.NewLocator(bus, LCDAddresses...)
		}
		addr, err := o.Locator.Next()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", packageName, err)
		}
		o.Addr = addr
	} else if o.Locator != nil {
		o.Locator.Claim(o.Addr)
	}
	if o.Contrast == 0 {
		o.Contrast = st7032Contrast
	}
	if o.Contrast > 63 {
		return nil, fmt.Errorf("%s: %w: contrast %d", packageName, hd44780.ErrInvalidArgument, o.Contrast)
	}
	if o.Clock == nil {
		o.Clock = hd44780.NewSystemClock()
	}
	dev := &Dev{
		d:           &i2c.Dev{Bus: bus, Addr: o.Addr},
		controller:  o.Controller,
		contrast:    o.Contrast,
		clock:       o.Clock,
		functionSet: 0x38,
	}
	switch bl := o.Backlight.(type) {
	case nil:
	case display.DisplayBacklight:
		dev.blMono = bl
	case display.DisplayRGBBacklight:
		dev.blRGB = bl
	default:
		return nil, fmt.Errorf("%s: %w: backlight %T", packageName, hd44780.ErrInvalidArgument, bl)
	}
	return dev, nil
}

// NewDev creates the transport and returns an initialized display.
func NewDev(bus i2c.Bus, opts *Opts, lcd *hd44780.Opts) (*hd44780.Dev, error) {
	t, err := New(bus, opts)
	if err != nil {
		return nil, err
	}
	return hd44780.NewDev(t, lcd)
}

// Addr returns the I²C address in use.
func (dev *Dev) Addr() uint16 {
	return dev.d.Addr
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%s@0x%02x}", packageName, dev.controller, dev.d.Addr)
}

// Init implements hd44780.Transport. An empty write checks that the device
// acknowledges; the ST7032 then gets its oscillator, booster and contrast
// set up.
func (dev *Dev) Init(r hd44780.Ready) (hd44780.BusWidth, error) {
	dev.ready = r
	if err := dev.d.Tx(nil, nil); err != nil {
		return 0, wrap(err)
	}
	if dev.controller == ST7032 {
		low, high := contrastBytes(dev.contrast)
		if err := dev.extended(st7032OSC, low, high, st7032Follower); err != nil {
			return 0, err
		}
		dev.clock.Sleep(st7032FollowerWait)
	}
	return hd44780.Bus8Bit, nil
}

func (dev *Dev) write(ctl, value byte) error {
	if dev.ready != nil {
		dev.ready.WaitReadyOffset(linkOffsetUs)
	}
	return wrap(dev.d.Tx([]byte{ctl, value}, nil))
}

// WriteCommand implements hd44780.Transport. Nibble only commands are sent
// as is: the lower bits are zero and the controller is always 8 bit.
func (dev *Dev) WriteCommand(nibbleOnly bool, value byte) error {
	if value&0xe0 == 0x20 {
		dev.functionSet = value &^ st7032IS
	}
	return dev.write(ctlCommand, value)
}

// WriteData implements hd44780.Transport.
func (dev *Dev) WriteData(value byte) error {
	return dev.write(ctlData, value)
}

// extended sends cmds from the extended instruction table and switches back
// to the normal one. These bypass the display's execution timer, so each is
// followed by a fixed wait.
func (dev *Dev) extended(cmds ...byte) error {
	seq := append([]byte{dev.functionSet | st7032IS}, cmds...)
	seq = append(seq, dev.functionSet)
	for _, c := range seq {
		if err := dev.write(ctlCommand, c); err != nil {
			return err
		}
		dev.clock.Sleep(st7032InsWait)
	}
	return nil
}

// contrastBytes splits a 6 bit contrast over the two instructions holding it.
// The booster is kept on.
func contrastBytes(c byte) (low, high byte) {
	return st7032ContrastLow | c&0x0f, st7032PowerIcon | st7032Booster | c>>4&0x03
}

// SetContrast implements hd44780.Contraster on ST7032 controllers. The level
// is scaled to the controller's 6 bit range.
func (dev *Dev) SetContrast(level byte) error {
	if dev.controller != ST7032 {
		return hd44780.ErrNotSupported
	}
	dev.contrast = level >> 2
	return dev.extended(contrastBytes(dev.contrast))
}

// SetBacklight implements hd44780.Backlighter.
func (dev *Dev) SetBacklight(level byte) error {
	i := display.Intensity(level)
	switch {
	case dev.blMono != nil:
		return dev.blMono.Backlight(i)
	case dev.blRGB != nil:
		return dev.blRGB.RGBBacklight(i, i, i)
	}
	return hd44780.ErrNotSupported
}

// RGBBacklight sets the backlight color on displays with an RGB backlight.
// A monochrome backlight is switched on if any channel is.
func (dev *Dev) RGBBacklight(red, green, blue display.Intensity) error {
	switch {
	case dev.blRGB != nil:
		return dev.blRGB.RGBBacklight(red, green, blue)
	case dev.blMono != nil:
		return dev.blMono.Backlight(red | green | blue)
	}
	return hd44780.ErrNotSupported
}

var _ hd44780.Transport = &Dev{}
var _ hd44780.Backlighter = &Dev{}
var _ hd44780.Contraster = &Dev{}
var _ display.DisplayRGBBacklight = &Dev{}
