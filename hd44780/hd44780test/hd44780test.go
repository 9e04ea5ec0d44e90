// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780test is meant to be used to test drivers talking to HD44780
// compatible controllers without hardware.
//
// Sim is a Transport backed by a model of the controller: the 4/8 bit
// interface state machine, DDRAM, CGRAM, the address counter, the display
// flags and the busy window of every executed instruction. Every bus
// operation is recorded with the fake clock time at which it reached the
// controller, and operations issued while the controller was still busy are
// reported as violations.
package hd44780test

import (
	"fmt"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/sirupsen/logrus"
)

// State is the interface state of the controller.
type State int

const (
	// State8Bit is 8 bit mode.
	State8Bit State = iota
	// State4BitFirstNibble is 4 bit mode waiting for the upper nibble.
	State4BitFirstNibble
	// State4BitSecondNibble is 4 bit mode with the upper nibble latched,
	// waiting for the lower one.
	State4BitSecondNibble
)

func (s State) String() string {
	switch s {
	case State8Bit:
		return "8bit"
	case State4BitFirstNibble:
		return "4bit/first"
	case State4BitSecondNibble:
		return "4bit/second"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// OpKind identifies a recorded bus operation.
type OpKind int

const (
	OpCommand OpKind = iota
	OpCommandNibble
	OpData
	OpReadStatus
	OpReadData
	OpBacklight
	OpContrast
)

func (k OpKind) String() string {
	switch k {
	case OpCommand:
		return "cmd"
	case OpCommandNibble:
		return "cmd4"
	case OpData:
		return "data"
	case OpReadStatus:
		return "status"
	case OpReadData:
		return "read"
	case OpBacklight:
		return "backlight"
	case OpContrast:
		return "contrast"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one recorded transport operation. At is the clock value when the
// operation was handed to the controller, after the transport waited.
type Op struct {
	Kind  OpKind
	Value byte
	At    uint32
}

func (o Op) String() string {
	return fmt.Sprintf("%s(0x%02x)@%d", o.Kind, o.Value, o.At)
}

// Datasheet execution times at 270kHz, in microseconds.
const (
	ClearHomeExecTime uint32 = 1520
	InsExecTime       uint32 = 37
	PowerOnTime       uint32 = 40000
)

const (
	ddramSize = 0x80
	cgramSize = 0x40
	lineLen2  = 40
	lineLen1  = 80
)

// Sim is a simulated HD44780 behind a transport of a given bus width.
//
// The zero value is not usable, use New.
type Sim struct {
	// Width is the host side bus width reported by Init.
	Width hd44780.BusWidth
	// Floating is what the controller sees on D0-D3 when a 4 bit host
	// strobes; only the low nibble is used.
	Floating byte
	// ReadWrite enables reads, as if R/W were wired.
	ReadWrite bool
	// HasBacklight enables backlight control.
	HasBacklight bool
	// HasContrast enables contrast control.
	HasContrast bool
	// ClearExec and InsExec are the controller side execution times.
	ClearExec uint32
	InsExec   uint32
	// InitErr is returned by Init when set.
	InitErr error
	// FailOn is consulted before every operation; a non nil error fails the
	// operation before it reaches the controller.
	FailOn func(op Op) error
	// Log traces every bus operation at debug level when set.
	Log *logrus.Entry

	// Ops is every operation in order, including failed ones.
	Ops []Op
	// Violations lists strobes that arrived while the controller was busy.
	Violations []Op
	// Inits counts the calls to Init.
	Inits int

	clock hd44780.Clock
	ready hd44780.Ready

	mode8    bool
	haveHigh bool
	high     byte
	readLow  bool
	readVal  byte

	ddram      [ddramSize]byte
	cgram      [cgramSize]byte
	ac         byte
	cgSelected bool

	increment    bool
	shiftOnWrite bool
	displayOn    bool
	cursorOn     bool
	blinkOn      bool
	lines2       bool
	font5x10     bool
	shift        int

	busyFrom uint32
	busyFor  uint32

	backlight byte
	contrast  byte
}

// New returns a powered up controller in state start, talking to a host of
// bus width w. clock is usually a *FakeClock. The controller is busy for
// PowerOnTime.
func New(clock hd44780.Clock, w hd44780.BusWidth, start State) *Sim {
	s := &Sim{
		Width:     w,
		ClearExec: ClearHomeExecTime,
		InsExec:   InsExecTime,
		clock:     clock,
		increment: true,
	}
	for i := range s.ddram {
		s.ddram[i] = ' '
	}
	s.SetState(start, 0)
	s.busyFrom = clock.Micros()
	s.busyFor = PowerOnTime
	return s
}

// SetState forces the interface state. For State4BitSecondNibble, high is
// the latched upper nibble, in the upper four bits.
func (s *Sim) SetState(st State, high byte) {
	switch st {
	case State8Bit:
		s.mode8, s.haveHigh = true, false
	case State4BitFirstNibble:
		s.mode8, s.haveHigh = false, false
	case State4BitSecondNibble:
		s.mode8, s.haveHigh = false, true
		s.high = high & 0xf0
	}
}

// State returns the interface state.
func (s *Sim) State() State {
	switch {
	case s.mode8:
		return State8Bit
	case s.haveHigh:
		return State4BitSecondNibble
	default:
		return State4BitFirstNibble
	}
}

func (s *Sim) String() string {
	return fmt.Sprintf("hd44780test.Sim{%d bit}", s.Width)
}

// Init implements hd44780.Transport.
func (s *Sim) Init(r hd44780.Ready) (hd44780.BusWidth, error) {
	s.Inits++
	if s.InitErr != nil {
		return 0, s.InitErr
	}
	s.ready = r
	return s.Width, nil
}

// WriteCommand implements hd44780.Transport.
func (s *Sim) WriteCommand(nibbleOnly bool, value byte) error {
	kind := OpCommand
	if nibbleOnly {
		kind = OpCommandNibble
	}
	if err := s.begin(kind, value); err != nil {
		return err
	}
	s.send(false, nibbleOnly, value)
	return nil
}

// WriteData implements hd44780.Transport.
func (s *Sim) WriteData(value byte) error {
	if err := s.begin(OpData, value); err != nil {
		return err
	}
	s.send(true, false, value)
	return nil
}

// Read implements hd44780.Reader. It fails with hd44780.ErrNotSupported
// unless ReadWrite is set.
func (s *Sim) Read(kind hd44780.ReadKind) (byte, error) {
	if !s.ReadWrite {
		return 0, hd44780.ErrNotSupported
	}
	if s.ready != nil {
		s.ready.WaitReady()
	}
	if kind == hd44780.ReadStatus {
		v := s.ac
		if s.busy() {
			v |= 0x80
		}
		if err := s.record(Op{Kind: OpReadStatus, Value: v, At: s.clock.Micros()}); err != nil {
			return 0, err
		}
		return v, nil
	}
	v := s.mem()
	if err := s.record(Op{Kind: OpReadData, Value: v, At: s.clock.Micros()}); err != nil {
		return 0, err
	}
	s.advance(s.increment)
	s.markBusy(s.InsExec)
	return v, nil
}

// SetBacklight implements hd44780.Backlighter.
func (s *Sim) SetBacklight(level byte) error {
	if !s.HasBacklight {
		return hd44780.ErrNotSupported
	}
	if err := s.record(Op{Kind: OpBacklight, Value: level, At: s.clock.Micros()}); err != nil {
		return err
	}
	s.backlight = level
	return nil
}

// SetContrast implements hd44780.Contraster.
func (s *Sim) SetContrast(level byte) error {
	if !s.HasContrast {
		return hd44780.ErrNotSupported
	}
	if err := s.record(Op{Kind: OpContrast, Value: level, At: s.clock.Micros()}); err != nil {
		return err
	}
	s.contrast = level
	return nil
}

// begin waits like a real transport, then records the operation.
func (s *Sim) begin(kind OpKind, value byte) error {
	if s.ready != nil {
		s.ready.WaitReady()
	}
	return s.record(Op{Kind: kind, Value: value, At: s.clock.Micros()})
}

func (s *Sim) record(op Op) error {
	s.Ops = append(s.Ops, op)
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"op": op.Kind.String(), "value": fmt.Sprintf("0x%02x", op.Value), "at": op.At}).Debug("bus")
	}
	if s.FailOn != nil {
		if err := s.FailOn(op); err != nil {
			return err
		}
	}
	return nil
}

// send converts a host side transfer into strobes as seen by the controller.
func (s *Sim) send(rs, nibbleOnly bool, value byte) {
	if s.Width == hd44780.Bus8Bit {
		if nibbleOnly {
			value &= 0xf0
		}
		s.strobe(rs, value)
		return
	}
	low := s.Floating & 0x0f
	s.strobe(rs, value&0xf0|low)
	if !nibbleOnly {
		s.strobe(rs, value<<4|low)
	}
}

// strobe is one falling edge of E with bus on D0-D7.
func (s *Sim) strobe(rs bool, bus byte) {
	if s.busy() {
		s.Violations = append(s.Violations, Op{Kind: OpCommand, Value: bus, At: s.clock.Micros()})
	}
	if s.mode8 {
		s.execute(rs, bus)
		return
	}
	if !s.haveHigh {
		s.high = bus & 0xf0
		s.haveHigh = true
		return
	}
	s.haveHigh = false
	s.execute(rs, s.high|bus>>4)
}

// Strobe delivers one falling edge of E with D0-D7 at data, the way a pin
// level transport drives the controller. It is not recorded in Ops; busy
// violations are still detected.
func (s *Sim) Strobe(rs bool, data byte) {
	s.readLow = false
	s.strobe(rs, data)
}

// ReadStrobe returns what the controller drives on D0-D7 while E is high with
// R/W high. In 4 bit mode the upper nibble comes first and the lower nibble
// follows on the next call, both on D4-D7. Data reads advance the address
// counter once the whole byte was transferred.
func (s *Sim) ReadStrobe(rs bool) byte {
	if !s.readLow {
		if rs {
			s.readVal = s.mem()
		} else {
			s.readVal = s.ac
			if s.busy() {
				s.readVal |= 0x80
			}
		}
	}
	v := s.readVal
	done := true
	if !s.mode8 {
		if s.readLow {
			v <<= 4
			s.readLow = false
		} else {
			v &= 0xf0
			s.readLow = true
			done = false
		}
	}
	if done && rs {
		s.advance(s.increment)
		s.markBusy(s.InsExec)
	}
	return v
}

func (s *Sim) busy() bool {
	return s.clock.Micros()-s.busyFrom < s.busyFor
}

func (s *Sim) markBusy(us uint32) {
	s.busyFrom = s.clock.Micros()
	s.busyFor = us
}

func (s *Sim) execute(rs bool, v byte) {
	if rs {
		s.setMem(v)
		s.advance(s.increment)
		if s.shiftOnWrite && !s.cgSelected {
			if s.increment {
				s.shift++
			} else {
				s.shift--
			}
		}
		s.markBusy(s.InsExec)
		return
	}
	exec := s.InsExec
	switch {
	case v&0x80 != 0:
		s.ac = v & 0x7f
		s.cgSelected = false
	case v&0x40 != 0:
		s.ac = v & 0x3f
		s.cgSelected = true
	case v&0x20 != 0:
		s.mode8 = v&0x10 != 0
		s.haveHigh = false
		s.lines2 = v&0x08 != 0
		s.font5x10 = v&0x04 != 0
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 != 0 {
			if right {
				s.shift--
			} else {
				s.shift++
			}
		} else {
			s.advance(right)
		}
	case v&0x08 != 0:
		s.displayOn = v&0x04 != 0
		s.cursorOn = v&0x02 != 0
		s.blinkOn = v&0x01 != 0
	case v&0x04 != 0:
		s.increment = v&0x02 != 0
		s.shiftOnWrite = v&0x01 != 0
	case v&0x02 != 0:
		s.ac = 0
		s.cgSelected = false
		s.shift = 0
		exec = s.ClearExec
	case v&0x01 != 0:
		for i := range s.ddram {
			s.ddram[i] = ' '
		}
		s.ac = 0
		s.cgSelected = false
		s.shift = 0
		s.increment = true
		exec = s.ClearExec
	}
	s.markBusy(exec)
}

func (s *Sim) mem() byte {
	if s.cgSelected {
		return s.cgram[s.ac&(cgramSize-1)]
	}
	return s.ddram[s.ac&(ddramSize-1)]
}

func (s *Sim) setMem(v byte) {
	if s.cgSelected {
		s.cgram[s.ac&(cgramSize-1)] = v
		return
	}
	s.ddram[s.ac&(ddramSize-1)] = v
}

// advance moves the address counter the way the controller does: CGRAM
// wraps at 64, DDRAM follows the line layout.
func (s *Sim) advance(forward bool) {
	if s.cgSelected {
		if forward {
			s.ac = (s.ac + 1) & (cgramSize - 1)
		} else {
			s.ac = (s.ac - 1) & (cgramSize - 1)
		}
		return
	}
	if !s.lines2 {
		a := int(s.ac)
		if forward {
			a++
		} else {
			a--
		}
		s.ac = byte((a + lineLen1) % lineLen1)
		return
	}
	switch {
	case forward && s.ac == 0x27:
		s.ac = 0x40
	case forward && s.ac >= 0x67:
		s.ac = 0x00
	case !forward && s.ac == 0x40:
		s.ac = 0x27
	case !forward && s.ac == 0x00:
		s.ac = 0x67
	case forward:
		s.ac++
	default:
		s.ac--
	}
}

// AddressCounter returns the address counter and whether it points to CGRAM.
func (s *Sim) AddressCounter() (addr byte, cgram bool) {
	return s.ac, s.cgSelected
}

// DDRAM returns a copy of the display data RAM, indexed by address.
func (s *Sim) DDRAM() [ddramSize]byte {
	return s.ddram
}

// CGRAM returns a copy of the character generator RAM.
func (s *Sim) CGRAM() [cgramSize]byte {
	return s.cgram
}

// Glyph returns the 8 rows of user character slot.
func (s *Sim) Glyph(slot int) [8]byte {
	var g [8]byte
	copy(g[:], s.cgram[(slot&7)*8:])
	return g
}

// Lines2 reports whether the controller is in 2 line mode.
func (s *Sim) Lines2() bool {
	return s.lines2
}

// Font5x10 reports whether the 5x10 font is selected.
func (s *Sim) Font5x10() bool {
	return s.font5x10
}

// DisplayControl returns the display, cursor and blink flags.
func (s *Sim) DisplayControl() (display, cursor, blink bool) {
	return s.displayOn, s.cursorOn, s.blinkOn
}

// EntryMode returns the increment and display shift on write flags.
func (s *Sim) EntryMode() (increment, shift bool) {
	return s.increment, s.shiftOnWrite
}

// Shift returns how many positions the display content moved left.
func (s *Sim) Shift() int {
	return s.shift
}

// BacklightLevel returns the last backlight level set.
func (s *Sim) BacklightLevel() byte {
	return s.backlight
}

// ContrastLevel returns the last contrast level set.
func (s *Sim) ContrastLevel() byte {
	return s.contrast
}

// Snapshot is what a cols x rows panel wired to the controller shows.
type Snapshot struct {
	Cols, Rows int
	// Text holds the character codes visible on each row.
	Text [][]byte
	// CGRAM is the glyph memory, 8 bytes per character 0 to 7.
	CGRAM     [cgramSize]byte
	DisplayOn bool
	CursorOn  bool
	BlinkOn   bool
	// CursorCol and CursorRow are -1 when the cursor is off panel.
	CursorCol int
	CursorRow int
	Backlight byte
	Font5x10  bool
}

// Snapshot returns what a panel of cols x rows, whose rows start at the
// given DDRAM offsets, shows. The display shift is applied within each line.
func (s *Sim) Snapshot(cols, rows int, offsets [4]byte) Snapshot {
	snap := Snapshot{
		Cols:      cols,
		Rows:      rows,
		Text:      make([][]byte, rows),
		CGRAM:     s.cgram,
		DisplayOn: s.displayOn,
		CursorOn:  s.cursorOn,
		BlinkOn:   s.blinkOn,
		CursorCol: -1,
		CursorRow: -1,
		Backlight: s.backlight,
		Font5x10:  s.font5x10,
	}
	lineLen, lineMask := lineLen1, byte(0x7f)
	if s.lines2 {
		lineLen, lineMask = lineLen2, 0x3f
	}
	for r := 0; r < rows && r < len(offsets); r++ {
		line := make([]byte, cols)
		base := offsets[r] &^ lineMask
		start := int(offsets[r] & lineMask)
		for c := range cols {
			pos := ((start+c+s.shift)%lineLen + lineLen) % lineLen
			addr := base + byte(pos)
			line[c] = s.ddram[addr&(ddramSize-1)]
			if !s.cgSelected && addr == s.ac {
				snap.CursorCol, snap.CursorRow = c, r
			}
		}
		snap.Text[r] = line
	}
	return snap
}

// FakeClock is a manually driven hd44780.Clock. Sleep advances the counter
// instead of blocking.
type FakeClock struct {
	// Now is the current counter value.
	Now uint32
	// Step is added to Now after every Micros call, to model host overhead.
	Step uint32
	// Slept is the total duration passed to Sleep.
	Slept time.Duration
}

// Micros implements hd44780.Clock.
func (c *FakeClock) Micros() uint32 {
	v := c.Now
	c.Now += c.Step
	return v
}

// Sleep implements hd44780.Clock.
func (c *FakeClock) Sleep(d time.Duration) {
	c.Slept += d
	c.Now += uint32((d + time.Microsecond - 1) / time.Microsecond)
}

// Advance moves the counter forward by us microseconds.
func (c *FakeClock) Advance(us uint32) {
	c.Now += us
}

var _ hd44780.Transport = &Sim{}
var _ hd44780.Reader = &Sim{}
var _ hd44780.Backlighter = &Sim{}
var _ hd44780.Contraster = &Sim{}
var _ hd44780.Clock = &FakeClock{}
