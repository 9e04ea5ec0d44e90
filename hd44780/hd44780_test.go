// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
)

var errBus = errors.New("bus failure")

type fixture struct {
	clock *hd44780test.FakeClock
	sim   *hd44780test.Sim
	dev   *hd44780.Dev
}

func newFixture(t *testing.T, w hd44780.BusWidth, cols, rows int) *fixture {
	t.Helper()
	f := &fixture{clock: &hd44780test.FakeClock{}}
	f.sim = hd44780test.New(f.clock, w, hd44780test.State8Bit)
	f.sim.ReadWrite = true
	f.sim.HasBacklight = true
	f.dev = hd44780.New(f.sim, &hd44780.Opts{Clock: f.clock})
	if err := f.dev.Begin(cols, rows, hd44780.Font5x8); err != nil {
		t.Fatal(err)
	}
	if len(f.sim.Violations) != 0 {
		t.Fatalf("Begin violated busy time: %v", f.sim.Violations)
	}
	f.sim.Ops = nil
	return f
}

func (f *fixture) snapshot() hd44780test.Snapshot {
	return f.sim.Snapshot(f.dev.Cols(), f.dev.Rows(), f.dev.RowOffsets())
}

func (f *fixture) row(r int) string {
	return string(f.snapshot().Text[r])
}

func (f *fixture) lastOp(t *testing.T) hd44780test.Op {
	t.Helper()
	if len(f.sim.Ops) == 0 {
		t.Fatal("no operation recorded")
	}
	return f.sim.Ops[len(f.sim.Ops)-1]
}

// ops strips timestamps for comparison.
func ops(in []hd44780test.Op) []hd44780test.Op {
	out := make([]hd44780test.Op, len(in))
	for i, op := range in {
		out[i] = hd44780test.Op{Kind: op.Kind, Value: op.Value}
	}
	return out
}

func TestBeginConverges(t *testing.T) {
	type start struct {
		state hd44780test.State
		high  byte
	}
	starts := []start{{hd44780test.State8Bit, 0}, {hd44780test.State4BitFirstNibble, 0}}
	for h := 0; h < 16; h++ {
		starts = append(starts, start{hd44780test.State4BitSecondNibble, byte(h << 4)})
	}
	for _, w := range []hd44780.BusWidth{hd44780.Bus4Bit, hd44780.Bus8Bit} {
		for _, floating := range []byte{0x00, 0x0f, 0x0a} {
			for _, st := range starts {
				name := fmt.Sprintf("%dbit/%s/0x%02x/float%x", w, st.state, st.high, floating)
				t.Run(name, func(t *testing.T) {
					clock := &hd44780test.FakeClock{}
					sim := hd44780test.New(clock, w, st.state)
					sim.SetState(st.state, st.high)
					sim.Floating = floating
					dev := hd44780.New(sim, &hd44780.Opts{Clock: clock})
					if err := dev.Begin(16, 2, hd44780.Font5x8); err != nil {
						t.Fatal(err)
					}
					want := hd44780test.State4BitFirstNibble
					if w == hd44780.Bus8Bit {
						want = hd44780test.State8Bit
					}
					if got := sim.State(); got != want {
						t.Errorf("state = %s, want %s", got, want)
					}
					if len(sim.Violations) != 0 {
						t.Errorf("busy violations: %v", sim.Violations)
					}
					if !sim.Lines2() || sim.Font5x10() {
						t.Errorf("function set: lines2=%t font5x10=%t", sim.Lines2(), sim.Font5x10())
					}
					on, cursor, blink := sim.DisplayControl()
					if !on || cursor || blink {
						t.Errorf("display control: %t %t %t", on, cursor, blink)
					}
					if inc, shift := sim.EntryMode(); !inc || shift {
						t.Errorf("entry mode: inc=%t shift=%t", inc, shift)
					}
					if _, err := dev.WriteString("Hello"); err != nil {
						t.Fatal(err)
					}
					snap := sim.Snapshot(16, 2, dev.RowOffsets())
					if got := string(snap.Text[0]); got != "Hello           " {
						t.Errorf("row 0 = %q", got)
					}
				})
			}
		}
	}
}

func TestBeginSequence(t *testing.T) {
	data := []struct {
		width hd44780.BusWidth
		want  []hd44780test.Op
		at    []uint32
	}{
		{
			width: hd44780.Bus4Bit,
			want: []hd44780test.Op{
				{Kind: hd44780test.OpCommandNibble, Value: 0x30},
				{Kind: hd44780test.OpCommandNibble, Value: 0x30},
				{Kind: hd44780test.OpCommandNibble, Value: 0x30},
				{Kind: hd44780test.OpCommandNibble, Value: 0x20},
				{Kind: hd44780test.OpCommand, Value: 0x28},
				{Kind: hd44780test.OpCommand, Value: 0x0c},
				{Kind: hd44780test.OpCommand, Value: 0x01},
				{Kind: hd44780test.OpCommand, Value: 0x06},
				{Kind: hd44780test.OpBacklight, Value: 0xff},
			},
			at: []uint32{100000, 105000, 106000, 107000, 107038, 107076, 107114, 109114, 109114},
		},
		{
			width: hd44780.Bus8Bit,
			want: []hd44780test.Op{
				{Kind: hd44780test.OpCommandNibble, Value: 0x30},
				{Kind: hd44780test.OpCommandNibble, Value: 0x30},
				{Kind: hd44780test.OpCommandNibble, Value: 0x30},
				{Kind: hd44780test.OpCommand, Value: 0x38},
				{Kind: hd44780test.OpCommand, Value: 0x0c},
				{Kind: hd44780test.OpCommand, Value: 0x01},
				{Kind: hd44780test.OpCommand, Value: 0x06},
				{Kind: hd44780test.OpBacklight, Value: 0xff},
			},
			at: []uint32{100000, 105000, 106000, 107000, 107038, 107076, 109076, 109076},
		},
	}
	for _, d := range data {
		t.Run(fmt.Sprintf("%dbit", d.width), func(t *testing.T) {
			clock := &hd44780test.FakeClock{}
			sim := hd44780test.New(clock, d.width, hd44780test.State8Bit)
			sim.HasBacklight = true
			dev := hd44780.New(sim, &hd44780.Opts{Clock: clock})
			if err := dev.Begin(16, 2, hd44780.Font5x8); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(d.want, ops(sim.Ops)); diff != "" {
				t.Errorf("Begin ops (-want +got):\n%s", diff)
			}
			var at []uint32
			for _, op := range sim.Ops {
				at = append(at, op.At)
			}
			if diff := cmp.Diff(d.at, at); diff != "" {
				t.Errorf("Begin timing (-want +got):\n%s", diff)
			}
			if err := dev.InitErr(); err != nil {
				t.Errorf("InitErr() = %v", err)
			}
		})
	}
}

func TestBeginFont5x10(t *testing.T) {
	clock := &hd44780test.FakeClock{}
	sim := hd44780test.New(clock, hd44780.Bus4Bit, hd44780test.State8Bit)
	dev := hd44780.New(sim, &hd44780.Opts{Clock: clock})
	if err := dev.Begin(16, 1, hd44780.Font5x10); err != nil {
		t.Fatal(err)
	}
	if !sim.Font5x10() || sim.Lines2() {
		t.Errorf("1 row 5x10: font5x10=%t lines2=%t", sim.Font5x10(), sim.Lines2())
	}
	// The tall font is only available with a single line.
	if err := dev.Begin(16, 2, hd44780.Font5x10); err != nil {
		t.Fatal(err)
	}
	if sim.Font5x10() || !sim.Lines2() {
		t.Errorf("2 rows 5x10: font5x10=%t lines2=%t", sim.Font5x10(), sim.Lines2())
	}
}

func TestBeginErrors(t *testing.T) {
	clock := &hd44780test.FakeClock{}
	sim := hd44780test.New(clock, hd44780.Bus4Bit, hd44780test.State8Bit)
	dev := hd44780.New(sim, &hd44780.Opts{Clock: clock})
	if err := dev.Begin(0, 2, hd44780.Font5x8); !errors.Is(err, hd44780.ErrInvalidArgument) {
		t.Errorf("Begin(0, 2) = %v", err)
	}

	sim.InitErr = errBus
	if err := dev.Begin(16, 2, hd44780.Font5x8); !errors.Is(err, errBus) {
		t.Errorf("Begin with failing transport Init = %v", err)
	}
	if len(sim.Ops) != 0 {
		t.Errorf("operations after failed Init: %v", sim.Ops)
	}
	sim.InitErr = nil

	// Only the final entry mode command decides the result.
	sim.FailOn = func(op hd44780test.Op) error {
		if op.Kind == hd44780test.OpCommand && op.Value == 0x0c {
			return errBus
		}
		return nil
	}
	if err := dev.Begin(16, 2, hd44780.Font5x8); err != nil {
		t.Errorf("Begin = %v, want nil", err)
	}
	if err := dev.InitErr(); !errors.Is(err, errBus) {
		t.Errorf("InitErr() = %v", err)
	}

	sim.FailOn = func(op hd44780test.Op) error {
		if op.Kind == hd44780test.OpCommand && op.Value == 0x06 {
			return errBus
		}
		return nil
	}
	if err := dev.Begin(16, 2, hd44780.Font5x8); !errors.Is(err, errBus) {
		t.Errorf("Begin = %v, want %v", err, errBus)
	}

	// No backlight is not an error.
	sim.FailOn = nil
	if err := dev.Begin(16, 2, hd44780.Font5x8); err != nil {
		t.Errorf("Begin without backlight = %v", err)
	}
	if err := dev.InitErr(); err != nil {
		t.Errorf("InitErr() = %v", err)
	}
}

func TestBeginInitFailureKeepsGeometry(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	offsets := f.dev.RowOffsets()
	f.sim.InitErr = errBus
	if err := f.dev.Begin(20, 4, hd44780.Font5x8); !errors.Is(err, errBus) {
		t.Fatalf("Begin = %v", err)
	}
	if f.dev.Cols() != 16 || f.dev.Rows() != 2 {
		t.Errorf("geometry after failed Begin = %dx%d, want 16x2", f.dev.Cols(), f.dev.Rows())
	}
	if got := f.dev.RowOffsets(); got != offsets {
		t.Errorf("RowOffsets() = %v, want %v", got, offsets)
	}
}

func TestNewDev(t *testing.T) {
	clock := &hd44780test.FakeClock{}
	sim := hd44780test.New(clock, hd44780.Bus4Bit, hd44780test.State4BitFirstNibble)
	dev, err := hd44780.NewDev(sim, &hd44780.Opts{Cols: 20, Rows: 4, Clock: clock, LineWrap: true})
	if err != nil {
		t.Fatal(err)
	}
	if dev.Cols() != 20 || dev.Rows() != 4 {
		t.Errorf("geometry %dx%d", dev.Cols(), dev.Rows())
	}
	if diff := cmp.Diff([4]byte{0x00, 0x40, 0x14, 0x54}, dev.RowOffsets()); diff != "" {
		t.Errorf("row offsets (-want +got):\n%s", diff)
	}
	if _, err := dev.WriteString("01234567890123456789ab"); err != nil {
		t.Fatal(err)
	}
	snap := sim.Snapshot(20, 4, dev.RowOffsets())
	if got := string(snap.Text[1]); got != "ab                  " {
		t.Errorf("row 1 = %q", got)
	}
	sim.InitErr = errBus
	if _, err := hd44780.NewDev(sim, &hd44780.Opts{Clock: clock}); !errors.Is(err, errBus) {
		t.Errorf("NewDev = %v", err)
	}
}

func TestRowOffsets(t *testing.T) {
	clock := &hd44780test.FakeClock{}
	sim := hd44780test.New(clock, hd44780.Bus4Bit, hd44780test.State8Bit)
	dev := hd44780.New(sim, &hd44780.Opts{Clock: clock})
	if err := dev.SetRowOffsets(0x00, 0x40, 0x10, 0x50); err != nil {
		t.Fatal(err)
	}
	if err := dev.Begin(16, 4, hd44780.Font5x8); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([4]byte{0x00, 0x40, 0x10, 0x50}, dev.RowOffsets()); diff != "" {
		t.Errorf("custom table lost by Begin (-want +got):\n%s", diff)
	}
	// A new width regenerates the defaults.
	if err := dev.Begin(20, 4, hd44780.Font5x8); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([4]byte{0x00, 0x40, 0x14, 0x54}, dev.RowOffsets()); diff != "" {
		t.Errorf("default table (-want +got):\n%s", diff)
	}
	if err := dev.SetCursor(2, 3); err != nil {
		t.Fatal(err)
	}
	if got := sim.Ops[len(sim.Ops)-1].Value; got != 0x80|0x56 {
		t.Errorf("SetCursor(2, 3) = 0x%02x", got)
	}

	for _, bad := range [][]int{{}, {0, 1, 2, 3, 4}, {0, 0x80}, {-1}} {
		if err := dev.SetRowOffsets(bad...); !errors.Is(err, hd44780.ErrInvalidArgument) {
			t.Errorf("SetRowOffsets(%v) = %v", bad, err)
		}
	}
}

func TestSetCursor(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	data := []struct {
		col, row int
		want     byte
	}{
		{0, 0, 0x80},
		{5, 1, 0xc5},
		// Rows past the end are clamped.
		{3, 5, 0xc3},
		// Columns are not checked.
		{16, 0, 0x90},
		{0x27, 0, 0xa7},
	}
	for _, d := range data {
		if err := f.dev.SetCursor(d.col, d.row); err != nil {
			t.Fatal(err)
		}
		if got := f.lastOp(t).Value; got != d.want {
			t.Errorf("SetCursor(%d, %d) = 0x%02x, want 0x%02x", d.col, d.row, got, d.want)
		}
	}
	if err := f.dev.SetCursor(-1, 0); !errors.Is(err, hd44780.ErrInvalidArgument) {
		t.Errorf("SetCursor(-1, 0) = %v", err)
	}

	// The column overflow lands in the second line of a 16x2.
	_ = f.dev.Clear()
	_ = f.dev.SetCursor(0x40, 0)
	_, _ = f.dev.WriteString("x")
	if got := f.row(1); got != "x               " {
		t.Errorf("row 1 = %q", got)
	}

	dev := hd44780.New(f.sim, &hd44780.Opts{Clock: f.clock})
	if err := dev.SetCursor(0, 0); !errors.Is(err, hd44780.ErrInvalidArgument) {
		t.Errorf("SetCursor before Begin = %v", err)
	}
}

func TestLineWrap(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	if err := f.dev.LineWrap(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.dev.WriteString("0123456789abcdef"); err != nil {
		t.Fatal(err)
	}
	if col, row := f.dev.CursorPosition(); col != 0 || row != 1 {
		t.Errorf("cursor after one line = %d, %d", col, row)
	}
	if got := f.lastOp(t); got.Kind != hd44780test.OpCommand || got.Value != 0xc0 {
		t.Errorf("last op = %v, want cmd 0xc0", got)
	}
	if _, err := f.dev.WriteString("ghijklmnopqrstuv"); err != nil {
		t.Fatal(err)
	}
	if col, row := f.dev.CursorPosition(); col != 0 || row != 0 {
		t.Errorf("cursor after two lines = %d, %d", col, row)
	}
	if got := f.lastOp(t).Value; got != 0x80 {
		t.Errorf("last op = 0x%02x, want 0x80", got)
	}
	if diff := cmp.Diff([]string{"0123456789abcdef", "ghijklmnopqrstuv"}, []string{f.row(0), f.row(1)}); diff != "" {
		t.Errorf("display (-want +got):\n%s", diff)
	}

	// SetCursor wraps long columns too.
	if err := f.dev.SetCursor(18, 0); err != nil {
		t.Fatal(err)
	}
	if col, row := f.dev.CursorPosition(); col != 2 || row != 1 {
		t.Errorf("SetCursor(18, 0) tracked at %d, %d", col, row)
	}
	if got := f.lastOp(t).Value; got != 0xc2 {
		t.Errorf("SetCursor(18, 0) = 0x%02x, want 0xc2", got)
	}

	_, _ = f.dev.WriteString("xy")
	if err := f.dev.Clear(); err != nil {
		t.Fatal(err)
	}
	if col, row := f.dev.CursorPosition(); col != 0 || row != 0 {
		t.Errorf("cursor after Clear = %d, %d", col, row)
	}

	_ = f.dev.RightToLeft()
	if err := f.dev.LineWrap(); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("LineWrap right to left = %v", err)
	}
	_ = f.dev.NoLineWrap()
	_ = f.dev.LeftToRight()
	_ = f.dev.SetCursor(15, 0)
	_, _ = f.dev.WriteString("z")
	if col, row := f.dev.CursorPosition(); col != 0 || row != 0 {
		t.Errorf("cursor tracked without wrapping: %d, %d", col, row)
	}
}

func TestExecIntervals(t *testing.T) {
	f := newFixture(t, hd44780.Bus8Bit, 16, 2)
	f.dev.SetExecTimes(3000, 50)
	if ch, ins := f.dev.ExecTimes(); ch != 3000 || ins != 50 {
		t.Errorf("ExecTimes() = %d, %d", ch, ins)
	}
	_ = f.dev.Clear()
	_ = f.dev.Display()
	_ = f.dev.Home()
	_, _ = f.dev.WriteString("a")
	_ = f.dev.Cursor()
	o := f.sim.Ops
	if len(o) != 5 {
		t.Fatalf("ops: %v", o)
	}
	want := []uint32{3000, 50, 3000, 50}
	for i, w := range want {
		if got := o[i+1].At - o[i].At; got != w {
			t.Errorf("%v to %v: %dµs, want %d", o[i], o[i+1], got, w)
		}
	}
}

func TestExecTimesClearGap(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	f.dev.SetExecTimes(2000, 38)
	_ = f.dev.Clear()
	_ = f.dev.SetCursor(1, 1)
	o := f.sim.Ops
	if gap := o[1].At - o[0].At; gap < 2000 {
		t.Errorf("clear then command %dµs apart", gap)
	}
	if len(f.sim.Violations) != 0 {
		t.Errorf("busy violations: %v", f.sim.Violations)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	_ = f.dev.Clear()
	st, err := f.dev.Status()
	if err != nil {
		t.Fatal(err)
	}
	if st != 0 {
		t.Errorf("Status() = 0x%02x", st)
	}
	_ = f.dev.Display()
	o := f.sim.Ops
	// The status read waited for the clear but didn't start an interval.
	if o[1].At-o[0].At != 2000 || o[2].At != o[1].At {
		t.Errorf("timing: %v", o)
	}

	_, _ = f.dev.WriteString("ab")
	if st, _ = f.dev.Status(); st != 0x02 {
		t.Errorf("Status() = 0x%02x, want 0x02", st)
	}
	_ = f.dev.SetCursor(0, 0)
	if c, err := f.dev.Read(); err != nil || c != 'a' {
		t.Errorf("Read() = %q, %v", c, err)
	}
	_ = f.dev.Display()
	o = f.sim.Ops
	if gap := o[len(o)-1].At - o[len(o)-2].At; gap != hd44780.DefaultInsExecTime {
		t.Errorf("command after data read %dµs later", gap)
	}

	f.sim.ReadWrite = false
	if _, err := f.dev.Status(); !errors.Is(err, hd44780.ErrNotSupported) {
		t.Errorf("Status() without R/W = %v", err)
	}
}

func TestCreateChar(t *testing.T) {
	glyph := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	_, _ = f.dev.WriteString("abc")
	f.sim.Ops = nil
	if err := f.dev.CreateChar(2, glyph); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(glyph, f.sim.Glyph(2)); diff != "" {
		t.Errorf("CGRAM (-want +got):\n%s", diff)
	}
	want := []hd44780test.Op{
		{Kind: hd44780test.OpReadStatus, Value: 0x03},
		{Kind: hd44780test.OpCommand, Value: 0x50},
	}
	for _, row := range glyph {
		want = append(want, hd44780test.Op{Kind: hd44780test.OpData, Value: row})
	}
	want = append(want, hd44780test.Op{Kind: hd44780test.OpCommand, Value: 0x83})
	if diff := cmp.Diff(want, ops(f.sim.Ops)); diff != "" {
		t.Errorf("CreateChar ops (-want +got):\n%s", diff)
	}
	if addr, cg := f.sim.AddressCounter(); addr != 3 || cg {
		t.Errorf("address counter = 0x%02x cgram=%t", addr, cg)
	}
	_, _ = f.dev.Write([]byte{2})
	if got := f.row(0); got != "abc\x02            " {
		t.Errorf("row 0 = %q", got)
	}

	if err := f.dev.CreateChar(8, glyph); !errors.Is(err, hd44780.ErrInvalidArgument) {
		t.Errorf("CreateChar(8) = %v", err)
	}
}

func TestCreateCharBusy(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	_ = f.dev.SetCursor(4, 1)
	// A slow controller still reports busy when the host is done waiting.
	f.sim.InsExec = 500
	_, _ = f.dev.WriteString("q")
	if err := f.dev.CreateChar(0, [8]byte{}); err != nil {
		t.Fatal(err)
	}
	if got := f.lastOp(t).Value; got != 0x80|0x45 {
		t.Errorf("restored 0x%02x, want 0xc5", got)
	}
}

func TestCreateCharNoRead(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	f.sim.ReadWrite = false
	_ = f.dev.SetCursor(4, 1)
	if err := f.dev.CreateChar(1, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	if got := f.lastOp(t).Value; got != 0x80 {
		t.Errorf("restored 0x%02x, want 0x80", got)
	}
}

func TestCreateCharRowFailure(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	f.sim.FailOn = func(op hd44780test.Op) error {
		if op.Kind == hd44780test.OpData && op.Value == 0x15 {
			return errBus
		}
		return nil
	}
	err := f.dev.CreateChar(3, [8]byte{0x01, 0x02, 0x15, 0x04})
	if !errors.Is(err, hd44780.ErrIO) || !errors.Is(err, errBus) {
		t.Errorf("CreateChar = %v", err)
	}
	if hd44780.Status(err) != hd44780.StatusIO {
		t.Errorf("Status = %d", hd44780.Status(err))
	}
}

func TestWrite(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	n, err := f.dev.Write([]byte("ab\r\ncd"))
	if err != nil || n != 6 {
		t.Errorf("Write = %d, %v", n, err)
	}
	if got := f.row(0); got != "abcd            " {
		t.Errorf("row 0 = %q", got)
	}

	f.sim.FailOn = func(op hd44780test.Op) error {
		if op.Value == 'z' {
			return errBus
		}
		return nil
	}
	n, err = f.dev.WriteString("xyz!")
	if !errors.Is(err, errBus) || n != 2 {
		t.Errorf("WriteString = %d, %v", n, err)
	}
}

func TestRemap(t *testing.T) {
	clock := &hd44780test.FakeClock{}
	sim := hd44780test.New(clock, hd44780.Bus8Bit, hd44780test.State8Bit)
	remap := func(c byte) byte {
		if c == '~' {
			return 0x01
		}
		return c
	}
	dev, err := hd44780.NewDev(sim, &hd44780.Opts{Clock: clock, Remap: remap})
	if err != nil {
		t.Fatal(err)
	}
	_ = dev.WriteByte('~')
	_ = dev.WriteRaw('~')
	snap := sim.Snapshot(16, 2, dev.RowOffsets())
	if got := string(snap.Text[0][:2]); got != "\x01~" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestDisplayControl(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	check := func(name string, wantOn, wantCursor, wantBlink bool) {
		t.Helper()
		on, cursor, blink := f.sim.DisplayControl()
		if on != wantOn || cursor != wantCursor || blink != wantBlink {
			t.Errorf("%s: display=%t cursor=%t blink=%t", name, on, cursor, blink)
		}
	}
	_ = f.dev.Cursor()
	check("Cursor", true, true, false)
	_ = f.dev.Blink()
	check("Blink", true, true, true)
	_ = f.dev.NoCursor()
	check("NoCursor", true, false, true)
	_ = f.dev.NoBlink()
	check("NoBlink", true, false, false)
	_ = f.dev.NoDisplay()
	check("NoDisplay", false, false, false)
	_ = f.dev.On()
	check("On", true, false, false)
	if got := f.sim.BacklightLevel(); got != hd44780.BacklightMax {
		t.Errorf("backlight after On = 0x%02x", got)
	}
	_ = f.dev.Off()
	check("Off", false, false, false)
	if got := f.sim.BacklightLevel(); got != 0 {
		t.Errorf("backlight after Off = 0x%02x", got)
	}
}

func TestShiftAndEntryMode(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	_, _ = f.dev.WriteString("abc")
	_ = f.dev.ScrollDisplayLeft()
	if got := f.row(0); got != "bc              " {
		t.Errorf("after ScrollDisplayLeft row 0 = %q", got)
	}
	_ = f.dev.ScrollDisplayRight()
	_ = f.dev.ScrollDisplayRight()
	if got := f.sim.Shift(); got != -1 {
		t.Errorf("shift = %d", got)
	}
	_ = f.dev.Home()
	if got := f.sim.Shift(); got != 0 {
		t.Errorf("shift after Home = %d", got)
	}

	_ = f.dev.SetCursor(5, 0)
	_ = f.dev.MoveCursorLeft()
	_ = f.dev.MoveCursorLeft()
	_ = f.dev.MoveCursorRight()
	if addr, _ := f.sim.AddressCounter(); addr != 4 {
		t.Errorf("address after cursor moves = %d", addr)
	}

	_ = f.dev.RightToLeft()
	_ = f.dev.Autoscroll()
	if inc, shift := f.sim.EntryMode(); inc || !shift {
		t.Errorf("entry mode inc=%t shift=%t", inc, shift)
	}
	_ = f.dev.NoAutoscroll()
	_ = f.dev.LeftToRight()
	if inc, shift := f.sim.EntryMode(); !inc || shift {
		t.Errorf("entry mode inc=%t shift=%t", inc, shift)
	}
}

func TestBacklight(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	if err := f.dev.SetBacklight(0x40); err != nil {
		t.Fatal(err)
	}
	if got := f.sim.BacklightLevel(); got != 0x40 {
		t.Errorf("backlight = 0x%02x", got)
	}
	if err := f.dev.SetContrast(0x20); !errors.Is(err, hd44780.ErrNotSupported) {
		t.Errorf("SetContrast() without contrast control = %v", err)
	}
	f.sim.HasContrast = true
	if err := f.dev.SetContrast(0x20); err != nil {
		t.Fatal(err)
	}
	if got := f.sim.ContrastLevel(); got != 0x20 {
		t.Errorf("contrast = 0x%02x", got)
	}
	f.sim.HasBacklight = false
	if err := f.dev.Backlight(); !errors.Is(err, hd44780.ErrNotSupported) {
		t.Errorf("Backlight() = %v", err)
	}
	// Off ignores the missing backlight.
	if err := f.dev.Off(); err != nil {
		t.Errorf("Off() = %v", err)
	}
}

func TestHalt(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	_, _ = f.dev.WriteString("bye")
	if err := f.dev.Halt(); err != nil {
		t.Fatal(err)
	}
	snap := f.snapshot()
	if snap.DisplayOn || snap.Backlight != 0 || string(snap.Text[0]) != "                " {
		t.Errorf("after Halt: %+v", snap)
	}
	if s := f.dev.String(); s == "" {
		t.Error("String()")
	}
}

func TestTextDisplay(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 16, 2)
	td := hd44780.NewTextDisplay(f.dev)
	if td.Rows() != 2 || td.Cols() != 16 || td.MinRow() != 1 || td.MinCol() != 1 {
		t.Errorf("geometry %d x %d from %d, %d", td.Cols(), td.Rows(), td.MinCol(), td.MinRow())
	}
	if err := td.MoveTo(2, 3); err != nil {
		t.Fatal(err)
	}
	if got := f.lastOp(t).Value; got != 0xc2 {
		t.Errorf("MoveTo(2, 3) = 0x%02x", got)
	}
	if err := td.MoveTo(3, 1); !errors.Is(err, hd44780.ErrInvalidArgument) {
		t.Errorf("MoveTo(3, 1) = %v", err)
	}
	if err := td.Cursor(display.CursorBlink); err != nil {
		t.Fatal(err)
	}
	if on, cursor, blink := f.sim.DisplayControl(); !on || cursor || !blink {
		t.Errorf("cursor blink: %t %t %t", on, cursor, blink)
	}
	if err := td.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Move(Up) = %v", err)
	}
	if err := td.Backlight(0x80); err != nil {
		t.Fatal(err)
	}
	if got := f.sim.BacklightLevel(); got != 0x80 {
		t.Errorf("backlight = 0x%02x", got)
	}

	errs := displaytest.TestTextDisplay(td, false)
	for _, err := range errs {
		if !errors.Is(err, display.ErrNotImplemented) {
			t.Error(err)
		}
	}
	if len(f.sim.Violations) != 0 {
		t.Errorf("busy violations: %v", f.sim.Violations)
	}
}

func TestSimSnapshot(t *testing.T) {
	f := newFixture(t, hd44780.Bus4Bit, 20, 4)
	for r, s := range []string{"row zero", "row one", "row two", "row three"} {
		_ = f.dev.SetCursor(0, r)
		_, _ = f.dev.WriteString(s)
	}
	_ = f.dev.SetCursor(3, 2)
	_ = f.dev.Cursor()
	snap := f.snapshot()
	got := make([]string, len(snap.Text))
	for i, line := range snap.Text {
		got[i] = string(line)
	}
	want := []string{
		"row zero            ",
		"row one             ",
		"row two             ",
		"row three           ",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(hd44780test.Snapshot{CursorCol: 3, CursorRow: 2, CursorOn: true, DisplayOn: true, Backlight: 0xff},
		snap, cmpopts.IgnoreFields(hd44780test.Snapshot{}, "Cols", "Rows", "Text", "CGRAM")); diff != "" {
		t.Errorf("snapshot state (-want +got):\n%s", diff)
	}
}
