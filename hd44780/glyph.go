// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// GlyphSlots is the number of user definable characters in CGRAM.
const GlyphSlots = 8

// busyFlag is bit 7 of the status register; the rest is the address counter.
const busyFlag byte = 0x80

// CreateChar programs slot with an 8 row bitmap. Each row uses the low five
// bits, bit 4 being the leftmost dot. The glyph is shown by writing the slot
// number as a character.
//
// The cursor is left where it was: its DDRAM address is read before CGRAM is
// selected and restored afterwards. If the transport can't read, the cursor
// ends at address 0.
func (d *Dev) CreateChar(slot int, glyph [8]byte) error {
	if slot < 0 || slot >= GlyphSlots {
		return fmt.Errorf("%w: glyph slot %d", ErrInvalidArgument, slot)
	}
	addr, err := d.Status()
	if err != nil {
		addr = 0
	}
	addr &^= busyFlag
	if err = d.Command(cmdSetCGRAMAddr | byte(slot<<3)); err != nil {
		return err
	}
	for _, row := range glyph {
		if err = d.WriteRaw(row); err != nil {
			return fmt.Errorf("%w: glyph row: %w", ErrIO, err)
		}
	}
	return d.Command(cmdSetDDRAMAddr | addr)
}
