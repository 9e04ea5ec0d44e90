// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// TextDisplay presents a Dev as a periph.io display.TextDisplay. Rows and
// columns are one based, as that interface requires.
type TextDisplay struct {
	Dev *Dev
}

// NewTextDisplay wraps an initialized Dev.
func NewTextDisplay(dev *Dev) *TextDisplay {
	return &TextDisplay{Dev: dev}
}

// AutoScroll enables or disables shifting the display on writes.
func (td *TextDisplay) AutoScroll(enabled bool) error {
	if enabled {
		return td.Dev.Autoscroll()
	}
	return td.Dev.NoAutoscroll()
}

// Cols returns the number of columns the display supports.
func (td *TextDisplay) Cols() int {
	return td.Dev.Cols()
}

// Rows returns the number of rows the display supports.
func (td *TextDisplay) Rows() int {
	return td.Dev.Rows()
}

// Clear clears the screen and moves the cursor to the first position.
func (td *TextDisplay) Clear() error {
	return td.Dev.Clear()
}

// Home moves the cursor to (MinRow(), MinCol()).
func (td *TextDisplay) Home() error {
	return td.Dev.Home()
}

// MinCol returns the min column position.
func (td *TextDisplay) MinCol() int {
	return 1
}

// MinRow returns the min row position.
func (td *TextDisplay) MinRow() int {
	return 1
}

// Cursor sets the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (td *TextDisplay) Cursor(modes ...display.CursorMode) error {
	var ctl byte
	if td.Dev.displayControl&displayOn != 0 {
		ctl = displayOn
	}
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			ctl &^= cursorOn | blinkOn
		case display.CursorUnderline:
			ctl |= cursorOn
		case display.CursorBlink, display.CursorBlock:
			ctl |= blinkOn
		default:
			return fmt.Errorf("%w: cursor mode %d", ErrInvalidArgument, mode)
		}
	}
	td.Dev.displayControl = ctl
	return td.Dev.Command(cmdDisplayControl | ctl)
}

// Move moves the cursor forward or backward. Up and down are not supported.
func (td *TextDisplay) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		return td.Dev.MoveCursorRight()
	case display.Backward:
		return td.Dev.MoveCursorLeft()
	default:
		return ErrNotSupported
	}
}

// MoveTo moves the cursor to row, col.
func (td *TextDisplay) MoveTo(row, col int) error {
	if row < td.MinRow() || row > td.Dev.Rows() || col < td.MinCol() || col > td.Dev.Cols() {
		return fmt.Errorf("%w: MoveTo(%d,%d) value out of range", ErrInvalidArgument, row, col)
	}
	return td.Dev.SetCursor(col-1, row-1)
}

// Display turns the display on or off.
func (td *TextDisplay) Display(on bool) error {
	if on {
		return td.Dev.Display()
	}
	return td.Dev.NoDisplay()
}

// Backlight sets the backlight intensity. 0 is off.
func (td *TextDisplay) Backlight(intensity display.Intensity) error {
	level := BacklightMax
	if intensity <= 0 {
		level = 0
	} else if intensity < 0xff {
		level = byte(intensity)
	}
	return td.Dev.SetBacklight(level)
}

// Write writes a set of bytes to the display.
func (td *TextDisplay) Write(p []byte) (int, error) {
	return td.Dev.Write(p)
}

// WriteString writes a string to the display.
func (td *TextDisplay) WriteString(text string) (int, error) {
	return td.Dev.WriteString(text)
}

// Halt clears the display, turns the backlight off, and turns the display
// off.
func (td *TextDisplay) Halt() error {
	return td.Dev.Halt()
}

func (td *TextDisplay) String() string {
	return td.Dev.String()
}

var _ display.TextDisplay = &TextDisplay{}
var _ display.DisplayBacklight = &TextDisplay{}
var _ conn.Resource = &TextDisplay{}
