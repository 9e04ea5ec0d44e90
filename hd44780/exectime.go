// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "time"

// Clock is a free running microsecond counter. Micros is allowed to wrap
// around; all interval math is done with uint32 modular subtraction.
type Clock interface {
	Micros() uint32
	Sleep(d time.Duration)
}

// SystemClock is a Clock backed by the monotonic time source.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a Clock whose counter starts at zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

// Micros returns the microseconds since the clock was created, truncated to
// 32 bits.
func (c *SystemClock) Micros() uint32 {
	return uint32(time.Since(c.epoch).Microseconds())
}

// Sleep pauses the calling goroutine.
func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// ExecTimer records when the last operation was issued and how long the
// controller needs to complete it.
//
// Some I/O paths, like direct GPIO, are very fast while others like I²C are
// slow. Reading the busy flag would be the proper handshake but many
// backpacks don't wire R/W, so the declared execution time is honored
// instead. Waiting as late as possible lets slow links absorb the interval.
type ExecTimer struct {
	clock Clock
	start uint32
	exec  uint32
}

// NewExecTimer returns a timer whose start is now with no pending interval.
func NewExecTimer(clock Clock) *ExecTimer {
	t := &ExecTimer{clock: clock}
	t.Mark(0)
	return t
}

// Mark records that an operation needing execUs microseconds started now.
func (t *ExecTimer) Mark(execUs uint32) {
	t.start = t.clock.Micros()
	t.exec = execUs
}

// Start returns the counter value recorded by the last Mark.
func (t *ExecTimer) Start() uint32 {
	return t.start
}

// Interval returns the execution time declared by the last Mark.
func (t *ExecTimer) Interval() uint32 {
	return t.exec
}

// WaitReady blocks until the interval declared by the last Mark has elapsed.
func (t *ExecTimer) WaitReady() {
	t.wait(t.start)
}

// WaitReadyOffset blocks until the declared interval has elapsed, measured
// from the recorded start moved by offsetUs.
func (t *ExecTimer) WaitReadyOffset(offsetUs int32) {
	t.wait(t.start + uint32(offsetUs))
}

func (t *ExecTimer) wait(start uint32) {
	for {
		elapsed := t.clock.Micros() - start
		if elapsed >= t.exec {
			return
		}
		t.clock.Sleep(time.Duration(t.exec-elapsed) * time.Microsecond)
	}
}

var _ Ready = &ExecTimer{}
