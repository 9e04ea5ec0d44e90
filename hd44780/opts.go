// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// Font selects the character cell size.
type Font byte

const (
	Font5x8  Font = 0x00
	Font5x10 Font = 0x04
)

// Default execution times in microseconds. The datasheet gives 1.52ms for
// clear and home and 37µs for everything else at 270kHz.
const (
	DefaultClearHomeExecTime uint32 = 2000
	DefaultInsExecTime       uint32 = 38
)

// Opts holds the configuration of a Dev.
type Opts struct {
	// Cols and Rows are the geometry used by Init.
	Cols int
	Rows int
	Font Font
	// ClearHomeExecTime is the execution time of clear display and return
	// home, in microseconds.
	ClearHomeExecTime uint32
	// InsExecTime is the execution time of every other instruction and of
	// data reads and writes, in microseconds.
	InsExecTime uint32
	// RowOffsets optionally replaces the default DDRAM row table. Leave it
	// empty for the standard 0x00, 0x40, cols, 0x40+cols layout.
	RowOffsets []int
	// LineWrap enables automatic line wrapping once Begin succeeded.
	LineWrap bool
	// Clock is the time source. nil selects a SystemClock.
	Clock Clock
	// Remap is applied to every character sent through WriteByte, Write and
	// WriteString. It is not applied to glyph bitmaps.
	Remap func(byte) byte
}

// DefaultOpts is used when New is called with nil options.
var DefaultOpts = Opts{
	Cols:              16,
	Rows:              2,
	Font:              Font5x8,
	ClearHomeExecTime: DefaultClearHomeExecTime,
	InsExecTime:       DefaultInsExecTime,
}
