// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/hd44780/i2cexp"
	"github.com/GermanBionicSystems/charlcd/hd44780/i2clcd"
	"github.com/GermanBionicSystems/charlcd/hd44780/pinio"
	"github.com/GermanBionicSystems/charlcd/hd44780/spiserial"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/gpioioctl"
)

func openHardware(c *config) (*hd44780.Dev, func(), error) {
	state, err := host.Init()
	if err != nil {
		return nil, nil, err
	}
	log.WithField("drivers", len(state.Loaded)).Debug("host initialized")
	switch c.backend {
	case "i2cexp", "i2clcd":
		return openI2C(c)
	case "spiserial":
		p, err := spireg.Open(c.bus)
		if err != nil {
			return nil, nil, err
		}
		dev, err := spiserial.NewDev(p, nil, c.lcdOpts())
		if err != nil {
			_ = p.Close()
			return nil, nil, err
		}
		return dev, func() { _ = p.Close() }, nil
	case "gpio":
		dev, err := openGPIO(c)
		if err != nil {
			return nil, nil, err
		}
		return dev, func() { _ = dev.Halt() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown backend %q", hd44780.ErrInvalidArgument, c.backend)
	}
}

func openI2C(c *config) (*hd44780.Dev, func(), error) {
	bus, err := i2creg.Open(c.bus)
	if err != nil {
		return nil, nil, err
	}
	var dev *hd44780.Dev
	if c.backend == "i2cexp" {
		dev, err = openExpander(bus, c)
	} else {
		dev, err = openNative(bus, c)
	}
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	return dev, func() { _ = bus.Close() }, nil
}

func openExpander(bus i2c.Bus, c *config) (*hd44780.Dev, error) {
	if strings.EqualFold(c.board, "rgbshield") {
		addr := uint16(c.addr)
		if addr == 0 {
			addr = 0x20
		}
		return pinio.NewMCP23017Backpack(bus, addr, &pinio.AdafruitRGBShield, c.lcdOpts())
	}
	opts := &i2cexp.Opts{Addr: uint16(c.addr)}
	if c.board != "" {
		b, ok := i2cexp.Boards[strings.ToLower(c.board)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown board %q", hd44780.ErrInvalidArgument, c.board)
		}
		opts.Board = b
	}
	return i2cexp.NewDev(bus, opts, c.lcdOpts())
}

func openNative(bus i2c.Bus, c *config) (*hd44780.Dev, error) {
	if strings.EqualFold(c.board, "waveshare") {
		t, err := i2clcd.NewWaveshare1602(bus)
		if err != nil {
			return nil, err
		}
		return hd44780.NewDev(t, c.lcdOpts())
	}
	opts := &i2clcd.Opts{Addr: uint16(c.addr)}
	switch strings.ToLower(c.controller) {
	case "aip31068":
		opts.Controller = i2clcd.AIP31068
	case "st7032":
		opts.Controller = i2clcd.ST7032
	default:
		return nil, fmt.Errorf("%w: unknown controller %q", hd44780.ErrInvalidArgument, c.controller)
	}
	return i2clcd.NewDev(bus, opts, c.lcdOpts())
}

func openGPIO(c *config) (*hd44780.Dev, error) {
	if len(gpioioctl.Chips) == 0 {
		return nil, fmt.Errorf("%w: no GPIO chip", hd44780.ErrNoSuchDevice)
	}
	names := pinNames(c.data)
	if len(names) != 4 && len(names) != 8 {
		return nil, fmt.Errorf("%w: -data needs 4 or 8 pins, got %d", hd44780.ErrInvalidArgument, len(names))
	}
	data, err := gpioioctl.Chips[0].LineSet(gpioioctl.LineOutput, gpio.NoEdge, gpio.PullNoChange, names...)
	if err != nil {
		return nil, err
	}
	p := pinio.Pins{Data: data}
	if p.RS, err = pin(c.rs); err != nil {
		return nil, err
	}
	if p.E, err = pin(c.e); err != nil {
		return nil, err
	}
	if c.rw != "" {
		if p.RW, err = pin(c.rw); err != nil {
			return nil, err
		}
	}
	if c.bl != "" {
		bl, err := pin(c.bl)
		if err != nil {
			return nil, err
		}
		p.Backlight = pinio.NewBacklight(bl)
	}
	return pinio.NewDev(p, c.lcdOpts())
}

// pinNames splits a comma separated pin list, dropping blanks.
func pinNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func pin(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: missing pin", hd44780.ErrInvalidArgument)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: pin %s", hd44780.ErrNoSuchDevice, name)
	}
	return p, nil
}
