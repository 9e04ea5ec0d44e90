// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// Command sends an instruction byte and records its execution time. Clear
// display and return home get the long interval and also reset the line wrap
// cursor to the origin; everything else gets the instruction interval.
//
// The transport waits for the previous interval before the strobe.
func (d *Dev) Command(value byte) error {
	err := d.t.WriteCommand(false, value)
	if value == cmdClearDisplay || value == cmdReturnHome {
		d.curCol = 0
		d.curRow = 0
		d.timer.Mark(d.chExecTime)
	} else {
		d.timer.Mark(d.insExecTime)
	}
	return err
}

// command4bit sends only the upper nibble of value with a single strobe.
func (d *Dev) command4bit(value byte) error {
	err := d.t.WriteCommand(true, value)
	d.timer.Mark(d.insExecTime)
	return err
}

// WriteRaw sends value to the controller data register. Unlike WriteByte it
// does no remapping and no line processing.
func (d *Dev) WriteRaw(value byte) error {
	err := d.t.WriteData(value)
	d.timer.Mark(d.insExecTime)
	return err
}

// Status reads the busy flag (bit 7) and the address counter. It does not
// touch the execution timer so the busy window of the preceding write is
// still honored by the next operation.
func (d *Dev) Status() (byte, error) {
	r, ok := d.t.(Reader)
	if !ok {
		return 0, ErrNotSupported
	}
	return r.Read(ReadStatus)
}

// Read reads the byte at the address counter. The controller moves the
// address counter afterwards, which takes an instruction time.
func (d *Dev) Read() (byte, error) {
	r, ok := d.t.(Reader)
	if !ok {
		return 0, ErrNotSupported
	}
	v, err := r.Read(ReadData)
	d.timer.Mark(d.insExecTime)
	return v, err
}
