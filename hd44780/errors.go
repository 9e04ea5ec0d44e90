// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/display"
)

const packageName = "hd44780"

var (
	// ErrIO is a generic transport failure.
	ErrIO = errors.New("hd44780: i/o error")
	// ErrInvalidArgument is returned for out of range parameters.
	ErrInvalidArgument = errors.New("hd44780: invalid argument")
	// ErrNotSupported is returned when the transport lacks a feature, like
	// reads or backlight control. It matches display.ErrNotImplemented.
	ErrNotSupported = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	// ErrNoSuchDevice is returned when no device answers at the address.
	ErrNoSuchDevice = errors.New("hd44780: no such device or address")
	// ErrMessageTooLong is returned when a transfer exceeds what the link
	// can carry.
	ErrMessageTooLong = errors.New("hd44780: message too long")
	// ErrBusy is returned when the controller is unexpectedly busy.
	ErrBusy = errors.New("hd44780: device unexpectedly busy")
)

// Status codes returned by Status. They are the values used by the Arduino
// hd44780 library so programs ported from it can keep comparing integers.
const (
	StatusOK              = 0
	StatusIO              = -1
	StatusInvalidArgument = -2
	StatusNotSupported    = -3
	StatusNoSuchDevice    = -4
	StatusMessageTooLong  = -5
	StatusBusy            = -6
)

var statusErrors = []struct {
	code int
	err  error
}{
	{StatusInvalidArgument, ErrInvalidArgument},
	{StatusNotSupported, ErrNotSupported},
	{StatusNoSuchDevice, ErrNoSuchDevice},
	{StatusMessageTooLong, ErrMessageTooLong},
	{StatusBusy, ErrBusy},
	{StatusIO, ErrIO},
}

// Status converts err into a signed status code. nil is StatusOK and errors
// that don't match one of the package sentinels are reported as StatusIO.
func Status(err error) int {
	if err == nil {
		return StatusOK
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.code
		}
	}
	if errors.Is(err, display.ErrNotImplemented) {
		return StatusNotSupported
	}
	return StatusIO
}

// StatusError is the reverse of Status. Unknown negative codes map to ErrIO.
func StatusError(code int) error {
	if code >= 0 {
		return nil
	}
	for _, se := range statusErrors {
		if se.code == code {
			return se.err
		}
	}
	return ErrIO
}
