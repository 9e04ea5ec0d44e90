// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// SetRowOffsets sets the DDRAM address of the first character of each row.
// Between one and four offsets may be given; missing rows get 0.
//
// The default table handles 40x2, 20x4, 20x2, 16x2, 16x1 (type 2) and 16x4
// displays. 16x1 panels that split their single line across discontiguous
// memory, and 40x4 panels built from two controllers, need their own table.
// A table set before Begin is kept by Begin unless the column count changes.
func (d *Dev) SetRowOffsets(offsets ...int) error {
	if len(offsets) == 0 || len(offsets) > maxRows {
		return fmt.Errorf("%w: %d row offsets", ErrInvalidArgument, len(offsets))
	}
	var table [maxRows]byte
	for ix, off := range offsets {
		if off < 0 || off > 0x7f {
			return fmt.Errorf("%w: row offset 0x%x", ErrInvalidArgument, off)
		}
		table[ix] = byte(off)
	}
	d.rowOffsets = table
	d.customOffsets = true
	return nil
}

// RowOffsets returns the DDRAM row table. Only the first Rows() entries are
// meaningful.
func (d *Dev) RowOffsets() [4]byte {
	return d.rowOffsets
}

// See http://web.alfredstate.edu/weimandn/lcd/lcd_addressing/lcd_addressing_index.html
func (d *Dev) setDefaultRowOffsets(cols int) {
	d.rowOffsets = [maxRows]byte{0x00, 0x40, byte(cols), byte(0x40 + cols)}
	d.customOffsets = false
}

// SetCursor moves the cursor to col, row (both zero based).
//
// A row past the last one is clamped to the last row. col is not checked: it
// may point past the visible line, and with row 0 it is a way to set any DDRAM
// address. With line wrapping enabled a col past the end of the line wraps
// onto the following rows, and past the last row back to the top.
func (d *Dev) SetCursor(col, row int) error {
	if col < 0 || row < 0 {
		return fmt.Errorf("%w: SetCursor(%d, %d)", ErrInvalidArgument, col, row)
	}
	if d.rows == 0 {
		return fmt.Errorf("%w: SetCursor before Begin", ErrInvalidArgument)
	}
	if row >= d.rows {
		row = d.rows - 1
	}
	if d.lineWrap {
		for col >= d.cols {
			col -= d.cols
			row++
			if row >= d.rows {
				row = 0
			}
		}
		d.curCol = col
		d.curRow = row
	}
	return d.Command(cmdSetDDRAMAddr | byte(col+int(d.rowOffsets[row])))
}

// LineWrap turns on automatic line wrapping. Text written past the end of a
// line continues at the start of the next one. It requires left to right
// entry mode.
func (d *Dev) LineWrap() error {
	if d.displayMode&entryLeftToRight == 0 {
		return ErrNotSupported
	}
	d.lineWrap = true
	return nil
}

// NoLineWrap turns off automatic line wrapping.
func (d *Dev) NoLineWrap() error {
	d.lineWrap = false
	return nil
}

// CursorPosition returns the column and row tracked for line wrapping. It is
// only kept up to date while line wrapping is enabled.
func (d *Dev) CursorPosition() (col, row int) {
	return d.curCol, d.curRow
}
