// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// BusWidth is the number of data lines a transport drives.
type BusWidth int

const (
	Bus4Bit BusWidth = 4
	Bus8Bit BusWidth = 8
)

// ReadKind selects the controller register a Reader reads.
type ReadKind int

const (
	// ReadStatus reads the busy flag and address counter (RS low).
	ReadStatus ReadKind = iota
	// ReadData reads DDRAM or CGRAM at the address counter (RS high).
	ReadData
)

// BacklightMax is the level that requests full backlight brightness.
const BacklightMax byte = 0xff

// Ready is handed to a Transport by Dev.Begin. A transport calls WaitReady
// immediately before the strobe or bus transaction that gives the controller
// its next operation, so that any host side setup overlaps the wait.
type Ready interface {
	// WaitReady blocks until the previously declared execution interval has
	// elapsed.
	WaitReady()
	// WaitReadyOffset is WaitReady with the interval start moved by us
	// microseconds. Slow links pass a negative offset to account for the
	// time spent framing the transfer after the wait returns.
	WaitReadyOffset(us int32)
}

// Transport moves command and data bytes to the controller.
//
// Implementations must honor Ready before every write and read. They never
// retry: failures are returned to the caller as is.
type Transport interface {
	// Init prepares the physical link and reports the width of the data
	// bus it drives. It is called once per Dev.Begin.
	Init(r Ready) (BusWidth, error)
	// WriteCommand sends an instruction byte. When nibbleOnly is set only the
	// upper four bits are presented, with a single strobe, even on a 4 bit
	// bus. This is used only during interface width negotiation.
	WriteCommand(nibbleOnly bool, value byte) error
	// WriteData sends a byte to DDRAM or CGRAM.
	WriteData(value byte) error
}

// Reader is implemented by transports that can read the controller back.
type Reader interface {
	Read(kind ReadKind) (byte, error)
}

// Backlighter is implemented by transports with backlight control. Level 0
// is off and BacklightMax is full brightness.
type Backlighter interface {
	SetBacklight(level byte) error
}

// Dimmer is implemented by transports whose backlight is the pixel drive
// itself, like a VFD. Dev switches such a display with display control and
// selects the brightness with a data write right after function set.
type Dimmer interface {
	// Brightness returns the data byte for level, which is never 0.
	Brightness(level byte) byte
}

// Contraster is implemented by transports that can adjust display contrast.
type Contraster interface {
	SetContrast(level byte) error
}
