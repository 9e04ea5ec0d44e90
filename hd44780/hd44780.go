// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 and the
// many compatible LCD and VFD controllers.
//
// The package implements the controller protocol: the initialization
// sequence that forces a controller in an unknown state into a known 4 or 8
// bit interface mode, the command and data dispatch, and the execution time
// bookkeeping that keeps the host from issuing an instruction before the
// controller finished the previous one. Moving bytes is delegated to a
// Transport; see the pinio, i2cexp, i2clcd and spiserial packages.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
)

// Instructions.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdCurDispShift   byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// Entry mode flags.
const (
	entryLeftToRight byte = 0x02
	entryAutoShift   byte = 0x01
)

// Display control flags.
const (
	displayOn byte = 0x04
	cursorOn  byte = 0x02
	blinkOn   byte = 0x01
)

// Cursor and display shift flags.
const (
	displayMove byte = 0x08
	cursorMove  byte = 0x00
	moveRight   byte = 0x04
	moveLeft    byte = 0x00
)

// Function set flags.
const (
	mode8Bit byte = 0x10
	mode4Bit byte = 0x00
	lines2   byte = 0x08
	lines1   byte = 0x00
)

// maxRows is the size of the row offset table.
const maxRows = 4

// Delays of the initialization by instruction sequence. The datasheet values
// (40ms, 4.1ms, 100µs) are about 2.7 times the execution times of a 270kHz
// part; these add margin for slower clocked controllers.
const (
	powerOnDelay   = 100 * time.Millisecond
	firstSyncDelay = 5 * time.Millisecond
	syncDelay      = 1 * time.Millisecond
)

// Dev is an HD44780 compatible controller reached through a Transport.
//
// Dev is not safe for concurrent use; the display is a single physical
// resource serialized by call order.
type Dev struct {
	t     Transport
	timer *ExecTimer
	clock Clock
	opts  Opts

	displayFunction byte
	displayControl  byte
	displayMode     byte
	cols            int
	rows            int

	rowOffsets    [maxRows]byte
	customOffsets bool

	lineWrap bool
	curCol   int
	curRow   int

	chExecTime  uint32
	insExecTime uint32

	initErr error
}

// New returns a Dev that talks through t. The display is not touched until
// Begin or Init is called, so execution times and row offsets can be
// adjusted first. opts may be nil, in which case DefaultOpts is used.
func New(t Transport, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Clock == nil {
		o.Clock = NewSystemClock()
	}
	if o.ClearHomeExecTime == 0 {
		o.ClearHomeExecTime = DefaultClearHomeExecTime
	}
	if o.InsExecTime == 0 {
		o.InsExecTime = DefaultInsExecTime
	}
	d := &Dev{
		t:           t,
		clock:       o.Clock,
		timer:       NewExecTimer(o.Clock),
		opts:        o,
		chExecTime:  o.ClearHomeExecTime,
		insExecTime: o.InsExecTime,
	}
	if len(o.RowOffsets) > 0 {
		// Bad offsets are reported again by Begin.
		_ = d.SetRowOffsets(o.RowOffsets...)
	}
	return d
}

// NewDev creates a Dev with opts and initializes it with the geometry in
// opts. It's the usual way to get a ready to use display.
func NewDev(t Transport, opts *Opts) (*Dev, error) {
	d := New(t, opts)
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// SetExecTimes overrides the execution times, in microseconds, of clear and
// home, and of every other instruction and data transfer. Call it before
// Begin to slow down the initialization sequence as well.
func (d *Dev) SetExecTimes(clearHomeUs, insUs uint32) {
	d.chExecTime = clearHomeUs
	d.insExecTime = insUs
}

// ExecTimes returns the execution times set by SetExecTimes.
func (d *Dev) ExecTimes() (clearHomeUs, insUs uint32) {
	return d.chExecTime, d.insExecTime
}

// Init calls Begin with the geometry and font from the options.
func (d *Dev) Init() error {
	cols, rows := d.opts.Cols, d.opts.Rows
	if cols == 0 {
		cols = DefaultOpts.Cols
	}
	if rows == 0 {
		rows = DefaultOpts.Rows
	}
	return d.Begin(cols, rows, d.opts.Font)
}

// Begin initializes the display for cols columns and rows rows.
//
// The controller may be in any state: freshly powered, in 8 bit mode, or in 4
// bit mode halfway through a byte. Begin uses the initialization by
// instruction sequence, which is not a retry. Three function set commands
// asking for 8 bit mode are sent as upper nibbles only, each with a single
// strobe:
//
//   - In 8 bit mode each one is a function set that keeps 8 bit mode.
//   - In 4 bit mode waiting for the upper nibble, the first two form 0x33
//     which selects 8 bit mode and the third is a no-op.
//   - In 4 bit mode waiting for the lower nibble, the first completes an
//     unknown instruction, hence the long wait after it. The next two either
//     are no-ops in 8 bit mode or form 0x33.
//
// All three end in 8 bit mode. A fourth nibble selects 4 bit mode when the
// transport only drives D4-D7. From then on the normal command path is used.
//
// A transport Init failure aborts and is returned. Later command failures do
// not stop the sequence: the result is the status of the final entry mode
// command, and the other failures are available from InitErr.
func (d *Dev) Begin(cols, rows int, font Font) error {
	if cols < 1 || rows < 1 {
		return fmt.Errorf("%w: Begin(%d, %d)", ErrInvalidArgument, cols, rows)
	}
	if rows > maxRows {
		rows = maxRows
	}

	d.clock.Sleep(powerOnDelay)

	width, err := d.t.Init(d.timer)
	if err != nil {
		return err
	}
	if !d.customOffsets || (d.cols != 0 && d.cols != cols) {
		d.setDefaultRowOffsets(cols)
	}
	d.rows = rows
	d.cols = cols
	d.initErr = nil

	d.displayFunction = mode4Bit
	if width == Bus8Bit {
		d.displayFunction |= mode8Bit
	}
	if d.rows > 1 {
		d.displayFunction |= lines2
	} else {
		d.displayFunction |= lines1
	}
	if font != Font5x8 && d.rows == 1 {
		d.displayFunction |= byte(Font5x10)
	}

	d.record(d.command4bit(cmdFunctionSet | mode8Bit))
	d.clock.Sleep(firstSyncDelay)
	d.record(d.command4bit(cmdFunctionSet | mode8Bit))
	d.clock.Sleep(syncDelay)
	d.record(d.command4bit(cmdFunctionSet | mode8Bit))
	d.clock.Sleep(syncDelay)
	if d.displayFunction&mode8Bit == 0 {
		d.record(d.command4bit(cmdFunctionSet | mode4Bit))
	}

	d.record(d.Command(cmdFunctionSet | d.displayFunction))
	d.displayControl = displayOn
	d.record(d.Display())
	d.record(d.Clear())
	d.displayMode = entryLeftToRight
	err = d.Command(cmdEntryModeSet | d.displayMode)
	d.record(err)

	// The backlight is optional.
	_ = d.Backlight()

	if d.opts.LineWrap {
		_ = d.LineWrap()
	}
	return err
}

// InitErr returns the command failures Begin swallowed, joined, or nil.
func (d *Dev) InitErr() error {
	return d.initErr
}

func (d *Dev) record(err error) {
	if err != nil {
		d.initErr = errors.Join(d.initErr, err)
	}
}

// Cols returns the number of columns set by Begin.
func (d *Dev) Cols() int {
	return d.cols
}

// Rows returns the number of rows set by Begin.
func (d *Dev) Rows() int {
	return d.rows
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%v} Rows: %d, Cols: %d", packageName, d.t, d.rows, d.cols)
}

// Halt clears the display, turns the backlight off, and turns the display
// off.
func (d *Dev) Halt() error {
	_ = d.Clear()
	_ = d.NoBacklight()
	return d.NoDisplay()
}

var _ conn.Resource = &Dev{}
