// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package compat offers the call shapes of the Arduino LiquidCrystal and
// LCD API 1.0 libraries on top of hd44780.Dev, for programs ported from
// sketches. Every call returns an int status: 0 or a positive value on
// success, one of the negative hd44780 Status codes on failure.
//
// New code should use hd44780.Dev directly.
package compat

import (
	"github.com/GermanBionicSystems/charlcd/hd44780"
)

// Character sizes accepted by Begin.
const (
	Dots5x8  uint8 = 0x00
	Dots5x10 uint8 = 0x04
)

// LiquidCrystal adapts a display to the LiquidCrystal API.
type LiquidCrystal struct {
	Dev *hd44780.Dev
}

// New wraps dev. dev doesn't need to be initialized yet.
func New(dev *hd44780.Dev) *LiquidCrystal {
	return &LiquidCrystal{Dev: dev}
}

func status(err error) int {
	return hd44780.Status(err)
}

// Begin initializes the display. charsize is Dots5x8 or Dots5x10.
func (lc *LiquidCrystal) Begin(cols, rows, charsize uint8) int {
	return status(lc.Dev.Begin(int(cols), int(rows), hd44780.Font(charsize&Dots5x10)))
}

// Init is the LCD API 1.0 initialization with the default geometry.
func (lc *LiquidCrystal) Init() int {
	return status(lc.Dev.Init())
}

func (lc *LiquidCrystal) Clear() int { return status(lc.Dev.Clear()) }
func (lc *LiquidCrystal) Home() int  { return status(lc.Dev.Home()) }

// SetCursor moves the cursor. The argument order is LiquidCrystal's, column
// first, not LCD API 1.0's.
func (lc *LiquidCrystal) SetCursor(col, row uint8) int {
	return status(lc.Dev.SetCursor(int(col), int(row)))
}

// Write writes one character and returns the number written, 1 or 0.
func (lc *LiquidCrystal) Write(value uint8) int {
	if lc.Dev.WriteByte(value) != nil {
		return 0
	}
	return 1
}

// Print writes s and returns the number of characters processed.
func (lc *LiquidCrystal) Print(s string) int {
	n, _ := lc.Dev.WriteString(s)
	return n
}

func (lc *LiquidCrystal) Cursor() int             { return status(lc.Dev.Cursor()) }
func (lc *LiquidCrystal) NoCursor() int           { return status(lc.Dev.NoCursor()) }
func (lc *LiquidCrystal) Blink() int              { return status(lc.Dev.Blink()) }
func (lc *LiquidCrystal) NoBlink() int            { return status(lc.Dev.NoBlink()) }
func (lc *LiquidCrystal) Display() int            { return status(lc.Dev.Display()) }
func (lc *LiquidCrystal) NoDisplay() int          { return status(lc.Dev.NoDisplay()) }
func (lc *LiquidCrystal) ScrollDisplayLeft() int  { return status(lc.Dev.ScrollDisplayLeft()) }
func (lc *LiquidCrystal) ScrollDisplayRight() int { return status(lc.Dev.ScrollDisplayRight()) }
func (lc *LiquidCrystal) Autoscroll() int         { return status(lc.Dev.Autoscroll()) }
func (lc *LiquidCrystal) NoAutoscroll() int       { return status(lc.Dev.NoAutoscroll()) }
func (lc *LiquidCrystal) LeftToRight() int        { return status(lc.Dev.LeftToRight()) }
func (lc *LiquidCrystal) RightToLeft() int        { return status(lc.Dev.RightToLeft()) }
func (lc *LiquidCrystal) MoveCursorLeft() int     { return status(lc.Dev.MoveCursorLeft()) }
func (lc *LiquidCrystal) MoveCursorRight() int    { return status(lc.Dev.MoveCursorRight()) }
func (lc *LiquidCrystal) LineWrap() int           { return status(lc.Dev.LineWrap()) }
func (lc *LiquidCrystal) NoLineWrap() int         { return status(lc.Dev.NoLineWrap()) }
func (lc *LiquidCrystal) Backlight() int          { return status(lc.Dev.Backlight()) }
func (lc *LiquidCrystal) NoBacklight() int        { return status(lc.Dev.NoBacklight()) }
func (lc *LiquidCrystal) On() int                 { return status(lc.Dev.On()) }
func (lc *LiquidCrystal) Off() int                { return status(lc.Dev.Off()) }

// SetRowOffsets sets the DDRAM address of up to four rows.
func (lc *LiquidCrystal) SetRowOffsets(offsets ...int) int {
	return status(lc.Dev.SetRowOffsets(offsets...))
}

// CreateChar programs a custom character from up to 8 rows; missing rows are
// blank.
func (lc *LiquidCrystal) CreateChar(charval uint8, charmap []byte) int {
	var glyph [8]byte
	copy(glyph[:], charmap)
	return status(lc.Dev.CreateChar(int(charval), glyph))
}

// LoadCustomCharacter is the LCD API 1.0 name of CreateChar.
//
// Deprecated: Use CreateChar.
func (lc *LiquidCrystal) LoadCustomCharacter(num uint8, rows []byte) {
	lc.CreateChar(num, rows)
}

// Command sends a raw instruction byte.
func (lc *LiquidCrystal) Command(value uint8) int {
	return status(lc.Dev.Command(value))
}

// SetExecTimes overrides the instruction execution times in microseconds.
func (lc *LiquidCrystal) SetExecTimes(chExecTimeUs, insExecTimeUs uint32) {
	lc.Dev.SetExecTimes(chExecTimeUs, insExecTimeUs)
}

// SetDelay is the LCD API 1.0 name of SetExecTimes.
//
// Deprecated: Use SetExecTimes.
func (lc *LiquidCrystal) SetDelay(cmdDelay, charDelay uint32) {
	lc.SetExecTimes(cmdDelay, charDelay)
}

// CursorOn turns the underline cursor on.
//
// Deprecated: Use Cursor.
func (lc *LiquidCrystal) CursorOn() int { return lc.Cursor() }

// CursorOff turns the underline cursor off.
//
// Deprecated: Use NoCursor.
func (lc *LiquidCrystal) CursorOff() int { return lc.NoCursor() }

// BlinkOn turns the blinking block cursor on.
//
// Deprecated: Use Blink.
func (lc *LiquidCrystal) BlinkOn() int { return lc.Blink() }

// BlinkOff turns the blinking block cursor off.
//
// Deprecated: Use NoBlink.
func (lc *LiquidCrystal) BlinkOff() int { return lc.NoBlink() }

// SetBacklight sets the backlight level, 0 is off.
func (lc *LiquidCrystal) SetBacklight(dimvalue uint8) int {
	return status(lc.Dev.SetBacklight(dimvalue))
}

// SetContrast sets the contrast on displays that support it.
func (lc *LiquidCrystal) SetContrast(contvalue uint8) int {
	return status(lc.Dev.SetContrast(contvalue))
}

// Status returns the status byte, busy flag and address counter, or a
// negative status code when it can't be read.
func (lc *LiquidCrystal) Status() int {
	v, err := lc.Dev.Status()
	if err != nil {
		return status(err)
	}
	return int(v)
}

// Read returns the character at the address counter, or a negative status
// code.
func (lc *LiquidCrystal) Read() int {
	v, err := lc.Dev.Read()
	if err != nil {
		return status(err)
	}
	return int(v)
}
