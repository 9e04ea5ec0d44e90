// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spiserial drives Noritake CU-U series vacuum fluorescent displays
// through their synchronous serial interface. The modules carry an HD44780
// compatible controller running in 8 bit mode.
//
// Every transfer starts with a start byte selecting the register and the
// direction, followed by the value, MSB first. The brightness of the VFD is
// exposed as the backlight level through hd44780.Dimmer.
//
// # Datasheet
//
// https://www.noritake-elec.com/includes/documents/brochure/CU-U_Application_Note.pdf
package spiserial

import (
	"fmt"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const packageName = "spiserial"

// Start bytes; bit 1 is RS.
const (
	startWrite byte = 0xf8
	startRead  byte = 0xfc
	startRS    byte = 0x02
)

// The VFD boots slower than an LCD controller; this adds to the 100ms the
// display waits itself.
const powerUpWait = 400 * time.Millisecond

// Brightness steps, from 100% down to 25%.
const brightnessSteps = 4

// Opts configures the transport.
type Opts struct {
	// Clock paces the power up. nil is a hd44780.SystemClock.
	Clock hd44780.Clock
}

// Dev is a hd44780.Transport for a Noritake CU-U serial module.
type Dev struct {
	c     spi.Conn
	clock hd44780.Clock
	ready hd44780.Ready
}

// New returns a transport over c. The connection must be half duplex,
// mode 3, 8 bits per word.
func New(c spi.Conn, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Clock == nil {
		o.Clock = hd44780.NewSystemClock()
	}
	return &Dev{c: c, clock: o.Clock}, nil
}

// NewSPI connects to p and returns the transport.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	c, err := p.Connect(physic.MegaHertz, spi.Mode3|spi.HalfDuplex, 8)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", packageName, hd44780.ErrIO, err)
	}
	return New(c, opts)
}

// NewDev connects to p and returns an initialized display.
func NewDev(p spi.Port, opts *Opts, lcd *hd44780.Opts) (*hd44780.Dev, error) {
	t, err := NewSPI(p, opts)
	if err != nil {
		return nil, err
	}
	return hd44780.NewDev(t, lcd)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%s}", packageName, dev.c)
}

// Init implements hd44780.Transport.
func (dev *Dev) Init(r hd44780.Ready) (hd44780.BusWidth, error) {
	dev.ready = r
	dev.clock.Sleep(powerUpWait)
	return hd44780.Bus8Bit, nil
}

func (dev *Dev) waitReady() {
	if dev.ready != nil {
		dev.ready.WaitReady()
	}
}

func (dev *Dev) write(rs bool, value byte) error {
	start := startWrite
	if rs {
		start |= startRS
	}
	dev.waitReady()
	if err := dev.c.Tx([]byte{start, value}, nil); err != nil {
		return fmt.Errorf("%s: %w: %w", packageName, hd44780.ErrIO, err)
	}
	return nil
}

// WriteCommand implements hd44780.Transport. The controller is always 8 bit
// so nibble only commands are sent whole.
func (dev *Dev) WriteCommand(nibbleOnly bool, value byte) error {
	return dev.write(false, value)
}

// WriteData implements hd44780.Transport.
func (dev *Dev) WriteData(value byte) error {
	return dev.write(true, value)
}

// Read implements hd44780.Reader. The start byte and the answer share the
// data line, so they are two packets of one transaction.
func (dev *Dev) Read(kind hd44780.ReadKind) (byte, error) {
	start := startRead
	if kind == hd44780.ReadData {
		start |= startRS
	}
	var r [1]byte
	dev.waitReady()
	err := dev.c.TxPackets([]spi.Packet{{W: []byte{start}}, {R: r[:]}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", packageName, hd44780.ErrIO, err)
	}
	return r[0], nil
}

// Brightness implements hd44780.Dimmer. The VFD has four steps, from 100%
// down to 25%.
func (dev *Dev) Brightness(level byte) byte {
	return brightnessSteps - 1 - level/64
}

var _ hd44780.Transport = &Dev{}
var _ hd44780.Reader = &Dev{}
var _ hd44780.Dimmer = &Dev{}
