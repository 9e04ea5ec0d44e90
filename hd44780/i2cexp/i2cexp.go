// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cexp drives HD44780 displays through a PCF8574 or MCP23008 I²C
// I/O expander backpack in 4 bit mode.
//
// Every nibble is sent as two port writes, E high then E low, and a whole
// byte goes out in a single I²C transaction. The MCP23008 is switched to byte
// mode so that consecutive writes keep hitting the GPIO register.
//
// # Datasheets
//
// https://www.nxp.com/docs/en/data-sheet/PCF8574_PCF8574A.pdf
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/MCP23008-MCP23S08-Data-Sheet-20001919F.pdf
package i2cexp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/i2c"
)

const packageName = "i2cexp"

// MCP23008 registers.
const (
	mcpIODIR  byte = 0x00
	mcpIOCON  byte = 0x05
	mcpGPIO   byte = 0x09
	mcpSeqOff byte = 0x20
)

// At 400kHz the address and one port byte take about 45µs on the wire
// before the pins change.
const linkOffsetUs = -45

// ErrBoard is returned for a pin map that doesn't describe a usable board.
var ErrBoard = fmt.Errorf("%s: %w: invalid board", packageName, hd44780.ErrInvalidArgument)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	if errors.Is(err, hd44780.ErrIO) {
		return fmt.Errorf("%s: %w", packageName, err)
	}
	return fmt.Errorf("%s: %w: %w", packageName, hd44780.ErrIO, err)
}

// Opts selects the backpack.
type Opts struct {
	// Addr is the I²C address. 0 asks Locator for the next unclaimed
	// expander.
	Addr uint16
	// Board is the pin map; the zero value selects YwRobot, the most common
	// PCF8574 backpack.
	Board Board
	// Locator is used when Addr is 0. nil creates one for this bus.
	Locator *Locator
}

// Dev is a hd44780.Transport over an I²C expander backpack.
type Dev struct {
	d     *i2c.Dev
	board Board
	ready hd44780.Ready

	rs, rw, en, bl byte
	data           [4]byte
	// blState holds the port bits that keep the backlight in its current
	// state; it is or'ed in every write.
	blState byte
}

// New returns a transport for the backpack described by opts. The expander
// is not touched until the display is initialized, except to locate it.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Board.Chip == 0 {
		o.Board = YwRobot
	}
	if !o.Board.valid() {
		return nil, fmt.Errorf("%w %+v", ErrBoard, o.Board)
	}
	if o.Addr == 0 {
		if o.Locator == nil {
			o.Locator = NewLocator(bus)
		}
		addr, err := o.Locator.Next()
		if err != nil {
			return nil, err
		}
		o.Addr = addr
	} else if o.Locator != nil {
		o.Locator.Claim(o.Addr)
	}
	b := o.Board
	dev := &Dev{
		d:     &i2c.Dev{Bus: bus, Addr: o.Addr},
		board: b,
		rs:    bit(b.RS),
		rw:    bit(b.RW),
		en:    bit(b.EN),
		bl:    bit(b.BL),
		data:  [4]byte{bit(b.D4), bit(b.D5), bit(b.D6), bit(b.D7)},
	}
	if dev.bl != 0 && !b.BLActiveLow {
		dev.blState = dev.bl
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

// Board returns the pin map in use.
func (dev *Dev) Board() Board {
	return dev.board
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%s@0x%02x %s}", packageName, dev.board.Chip, dev.d.Addr, dev.board.Name)
}

// Init implements hd44780.Transport. The MCP23008 is put in byte mode with all
// pins as outputs, then the port is driven low.
func (dev *Dev) Init(r hd44780.Ready) (hd44780.BusWidth, error) {
	dev.ready = r
	if dev.board.Chip == MCP23008 {
		if err := dev.d.Tx([]byte{mcpIOCON, mcpSeqOff}, nil); err != nil {
			return 0, wrap(err)
		}
		if err := dev.d.Tx([]byte{mcpIODIR, 0x00}, nil); err != nil {
			return 0, wrap(err)
		}
	}
	if err := dev.d.Tx(dev.frame(0), nil); err != nil {
		return 0, wrap(err)
	}
	return hd44780.Bus4Bit, nil
}

// frame starts a GPIO port write transaction.
func (dev *Dev) frame(port ...byte) []byte {
	w := make([]byte, 0, 5)
	if dev.board.Chip == MCP23008 {
		w = append(w, mcpGPIO)
	}
	return append(w, port...)
}

// nibble appends the two port states that clock the low four bits of value.
// E is raised together with the data and RS, which the datasheet frowns on
// but every expander backpack tolerates.
func (dev *Dev) nibble(w []byte, value byte, rs bool) []byte {
	g := dev.blState
	for i, b := range dev.data {
		if value&(1<<i) != 0 {
			g |= b
		}
	}
	if rs {
		g |= dev.rs
	}
	return append(w, g|dev.en, g)
}

func (dev *Dev) write(rs, nibbleOnly bool, value byte) error {
	w := dev.nibble(dev.frame(), value>>4, rs)
	if !nibbleOnly {
		w = dev.nibble(w, value&0x0f, rs)
	}
	if dev.ready != nil {
		dev.ready.WaitReadyOffset(linkOffsetUs)
	}
	return wrap(dev.d.Tx(w, nil))
}

// WriteCommand implements hd44780.Transport.
func (dev *Dev) WriteCommand(nibbleOnly bool, value byte) error {
	return dev.write(false, nibbleOnly, value)
}

// WriteData implements hd44780.Transport.
func (dev *Dev) WriteData(value byte) error {
	return dev.write(true, false, value)
}

// Read implements hd44780.Reader. Only PCF8574 boards with R/W wired can
// read; the quasi bidirectional port reads back the LCD data lines once they
// are written high.
func (dev *Dev) Read(kind hd44780.ReadKind) (byte, error) {
	if dev.board.Chip != PCF8574 || dev.rw == 0 {
		return 0, hd44780.ErrNotSupported
	}
	if dev.ready != nil {
		dev.ready.WaitReadyOffset(linkOffsetUs)
	}
	g := dev.blState | dev.data[0] | dev.data[1] | dev.data[2] | dev.data[3] | dev.rw
	if kind == hd44780.ReadData {
		g |= dev.rs
	}
	if err := dev.d.Tx([]byte{g}, nil); err != nil {
		return 0, wrap(err)
	}
	var v byte
	var port [1]byte
	for half := range 2 {
		if err := dev.d.Tx([]byte{g | dev.en}, nil); err != nil {
			return 0, wrap(err)
		}
		if err := dev.d.Tx(nil, port[:]); err != nil {
			return 0, wrap(err)
		}
		if err := dev.d.Tx([]byte{g}, nil); err != nil {
			return 0, wrap(err)
		}
		shift := 4 - 4*half
		for i, b := range dev.data {
			if port[0]&b != 0 {
				v |= 1 << (i + shift)
			}
		}
	}
	// Back to writing, R/W low.
	if err := dev.d.Tx([]byte{dev.blState}, nil); err != nil {
		return 0, wrap(err)
	}
	return v, nil
}

// SetBacklight implements hd44780.Backlighter. The expander can only switch
// the backlight, so any non zero level is on.
func (dev *Dev) SetBacklight(level byte) error {
	if dev.bl == 0 {
		return hd44780.ErrNotSupported
	}
	if (level != 0) != dev.board.BLActiveLow {
		dev.blState = dev.bl
	} else {
		dev.blState = 0
	}
	return wrap(dev.d.Tx(dev.frame(dev.blState), nil))
}

var _ hd44780.Transport = &Dev{}
var _ hd44780.Reader = &Dev{}
var _ hd44780.Backlighter = &Dev{}
