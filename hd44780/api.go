// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// Clear clears the display and moves the cursor to 0, 0.
func (d *Dev) Clear() error {
	return d.Command(cmdClearDisplay)
}

// Home moves the cursor to 0, 0 and undoes any display shift.
func (d *Dev) Home() error {
	return d.Command(cmdReturnHome)
}

// Display turns the display pixels on.
func (d *Dev) Display() error {
	d.displayControl |= displayOn
	return d.Command(cmdDisplayControl | d.displayControl)
}

// NoDisplay turns the display pixels off. DDRAM is preserved.
func (d *Dev) NoDisplay() error {
	d.displayControl &^= displayOn
	return d.Command(cmdDisplayControl | d.displayControl)
}

// Cursor shows the underline cursor.
func (d *Dev) Cursor() error {
	d.displayControl |= cursorOn
	return d.Command(cmdDisplayControl | d.displayControl)
}

// NoCursor hides the underline cursor.
func (d *Dev) NoCursor() error {
	d.displayControl &^= cursorOn
	return d.Command(cmdDisplayControl | d.displayControl)
}

// Blink turns on the blinking block cursor.
func (d *Dev) Blink() error {
	d.displayControl |= blinkOn
	return d.Command(cmdDisplayControl | d.displayControl)
}

// NoBlink turns off the blinking block cursor.
func (d *Dev) NoBlink() error {
	d.displayControl &^= blinkOn
	return d.Command(cmdDisplayControl | d.displayControl)
}

// ScrollDisplayLeft shifts the whole display left by one position.
func (d *Dev) ScrollDisplayLeft() error {
	return d.Command(cmdCurDispShift | displayMove | moveLeft)
}

// ScrollDisplayRight shifts the whole display right by one position.
func (d *Dev) ScrollDisplayRight() error {
	return d.Command(cmdCurDispShift | displayMove | moveRight)
}

// MoveCursorLeft moves the cursor one position left without writing.
func (d *Dev) MoveCursorLeft() error {
	return d.Command(cmdCurDispShift | cursorMove | moveLeft)
}

// MoveCursorRight moves the cursor one position right without writing.
func (d *Dev) MoveCursorRight() error {
	return d.Command(cmdCurDispShift | cursorMove | moveRight)
}

// LeftToRight makes text flow left to right.
func (d *Dev) LeftToRight() error {
	d.displayMode |= entryLeftToRight
	return d.Command(cmdEntryModeSet | d.displayMode)
}

// RightToLeft makes text flow right to left.
func (d *Dev) RightToLeft() error {
	d.displayMode &^= entryLeftToRight
	return d.Command(cmdEntryModeSet | d.displayMode)
}

// Autoscroll shifts the display on every character written, so the text
// appears to stay under the cursor.
func (d *Dev) Autoscroll() error {
	d.displayMode |= entryAutoShift
	return d.Command(cmdEntryModeSet | d.displayMode)
}

// NoAutoscroll stops shifting the display on writes.
func (d *Dev) NoAutoscroll() error {
	d.displayMode &^= entryAutoShift
	return d.Command(cmdEntryModeSet | d.displayMode)
}

// Backlight turns the backlight on at full brightness.
func (d *Dev) Backlight() error {
	return d.SetBacklight(BacklightMax)
}

// NoBacklight turns the backlight off.
func (d *Dev) NoBacklight() error {
	return d.SetBacklight(0)
}

// SetBacklight sets the backlight level; transports without dimming treat
// any non zero level as on. It returns ErrNotSupported when the transport has
// no backlight control.
//
// On a Dimmer level 0 is NoDisplay and any other level sets the brightness
// then calls Display.
func (d *Dev) SetBacklight(level byte) error {
	if dm, ok := d.t.(Dimmer); ok {
		return d.setBrightness(dm, level)
	}
	bl, ok := d.t.(Backlighter)
	if !ok {
		return ErrNotSupported
	}
	return bl.SetBacklight(level)
}

func (d *Dev) setBrightness(dm Dimmer, level byte) error {
	if level == 0 {
		return d.NoDisplay()
	}
	if d.rows == 0 {
		return fmt.Errorf("%w: brightness before Begin", ErrInvalidArgument)
	}
	if err := d.Command(cmdFunctionSet | d.displayFunction); err != nil {
		return err
	}
	if err := d.WriteRaw(dm.Brightness(level)); err != nil {
		return err
	}
	return d.Display()
}

// SetContrast sets the display contrast on transports that support it.
func (d *Dev) SetContrast(level byte) error {
	c, ok := d.t.(Contraster)
	if !ok {
		return ErrNotSupported
	}
	return c.SetContrast(level)
}

// On turns on the display pixels and the backlight. Backlight failures are
// ignored.
func (d *Dev) On() error {
	err := d.Display()
	_ = d.Backlight()
	return err
}

// Off turns off the backlight and the display pixels. Backlight failures are
// ignored.
func (d *Dev) Off() error {
	_ = d.NoBacklight()
	return d.NoDisplay()
}

// WriteByte writes a character at the cursor. With line wrapping enabled the
// cursor moves to the next line once the current one is full.
func (d *Dev) WriteByte(c byte) error {
	if d.opts.Remap != nil {
		c = d.opts.Remap(c)
	}
	err := d.WriteRaw(c)
	if d.lineWrap {
		d.curCol++
		if d.curCol >= d.cols {
			d.curCol = 0
			d.curRow++
			if d.curRow >= d.rows {
				d.curRow = 0
			}
			if serr := d.SetCursor(d.curCol, d.curRow); err == nil {
				err = serr
			}
		}
	}
	return err
}

// Write writes p at the cursor. Carriage returns and line feeds are dropped
// so that text meant for a terminal doesn't show up as glyph garbage. It
// stops at the first failure.
func (d *Dev) Write(p []byte) (n int, err error) {
	for _, c := range p {
		if c != '\r' && c != '\n' {
			if err = d.WriteByte(c); err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

// WriteString writes s at the cursor, like Write.
func (d *Dev) WriteString(s string) (int, error) {
	return d.Write([]byte(s))
}
