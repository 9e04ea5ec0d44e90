// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cexp

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/i2c"
)

// ExpanderAddresses are the addresses probed for expander backpacks: the
// PCF8574 and MCP23008 range, then the PCF8574A range.
var ExpanderAddresses = addrRange(0x20, 0x27, 0x38, 0x3f)

func addrRange(bounds ...uint16) []uint16 {
	var out []uint16
	for i := 0; i+1 < len(bounds); i += 2 {
		for a := bounds[i]; a <= bounds[i+1]; a++ {
			out = append(out, a)
		}
	}
	return out
}

// Locator finds devices on a bus. Each display created without an explicit
// address asks the Locator for the next responding address nobody claimed
// yet, so several backpacks on one bus are assigned in address order.
//
// A Locator is safe for concurrent use.
type Locator struct {
	bus   i2c.Bus
	addrs []uint16

	mu      sync.Mutex
	claimed map[uint16]bool
}

// NewLocator returns a Locator probing addrs in order. With no addrs,
// ExpanderAddresses is used.
func NewLocator(bus i2c.Bus, addrs ...uint16) *Locator {
	if len(addrs) == 0 {
		addrs = ExpanderAddresses
	}
	return &Locator{bus: bus, addrs: addrs, claimed: map[uint16]bool{}}
}

// Probe reports whether a device acknowledges addr.
func (l *Locator) Probe(addr uint16) bool {
	var b [1]byte
	return l.bus.Tx(addr, nil, b[:]) == nil
}

// Next claims and returns the first responding address not claimed yet.
func (l *Locator) Next() (uint16, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.addrs {
		if l.claimed[a] {
			continue
		}
		if l.Probe(a) {
			l.claimed[a] = true
			return a, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", packageName, hd44780.ErrNoSuchDevice)
}

// Instance returns the address of the n-th responding device, counting from
// zero, regardless of claims.
func (l *Locator) Instance(n int) (uint16, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := 0
	for _, a := range l.addrs {
		if !l.Probe(a) {
			continue
		}
		if seen == n {
			return a, nil
		}
		seen++
	}
	return 0, fmt.Errorf("%s: instance %d: %w", packageName, n, hd44780.ErrNoSuchDevice)
}

// Claim marks addr as used, so Next skips it.
func (l *Locator) Claim(addr uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.claimed[addr] = true
}
