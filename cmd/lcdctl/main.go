// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdctl writes text to a HD44780 compatible character display.
//
// The sim backend needs no hardware and draws the result on the terminal:
//
//	lcdctl -backend sim -text 'Hello\nworld'
//
// The other backends select the bus the display hangs off:
//
//	lcdctl -backend i2cexp -bus 1 -board ywrobot -text Hello
//	lcdctl -backend i2clcd -controller st7032 -contrast 40 -text Hello
//	lcdctl -backend spiserial -bus SPI0.0 -text Hello
//	lcdctl -backend gpio -data GPIO27,GPIO22,GPIO23,GPIO24 -rs GPIO17 -e GPIO18 -text Hello
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/GermanBionicSystems/charlcd/lcdview"
	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
)

type config struct {
	backend    string
	bus        string
	addr       uint
	board      string
	controller string
	contrast   int
	backlight  int

	data, rs, rw, e, bl string

	cols, rows, font int
	text             string
	wrap             bool
	png              string
	verbose          bool
}

func parseFlags(args []string, out io.Writer) (*config, error) {
	c := &config{}
	fs := flag.NewFlagSet("lcdctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&c.backend, "backend", "sim", "sim, gpio, i2cexp, i2clcd or spiserial")
	fs.StringVar(&c.bus, "bus", "", "I²C or SPI bus name, default bus when empty")
	fs.UintVar(&c.addr, "addr", 0, "I²C address, 0 probes the usual addresses")
	fs.StringVar(&c.board, "board", "", "i2cexp backpack name or rgbshield, or waveshare for i2clcd")
	fs.StringVar(&c.controller, "controller", "aip31068", "i2clcd controller: aip31068 or st7032")
	fs.IntVar(&c.contrast, "contrast", -1, "contrast 0-255, when supported")
	fs.IntVar(&c.backlight, "backlight", 255, "backlight 0-255")
	fs.StringVar(&c.data, "data", "", "gpio: comma separated data pins, D4-D7 or D0-D7")
	fs.StringVar(&c.rs, "rs", "", "gpio: RS pin")
	fs.StringVar(&c.rw, "rw", "", "gpio: R/W pin, empty when grounded")
	fs.StringVar(&c.e, "e", "", "gpio: E pin")
	fs.StringVar(&c.bl, "bl", "", "gpio: backlight pin")
	fs.IntVar(&c.cols, "cols", 16, "columns")
	fs.IntVar(&c.rows, "rows", 2, "rows")
	fs.IntVar(&c.font, "font", 8, "character height, 8 or 10")
	fs.StringVar(&c.text, "text", "", `text to write, \n starts the next row`)
	fs.BoolVar(&c.wrap, "wrap", false, "wrap text at the end of a row")
	fs.StringVar(&c.png, "png", "", "sim: also save the panel as a PNG file")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	if c.font != 8 && c.font != 10 {
		return nil, fmt.Errorf("%w: -font must be 8 or 10", hd44780.ErrInvalidArgument)
	}
	if c.backlight < 0 || c.backlight > 255 || c.contrast > 255 {
		return nil, fmt.Errorf("%w: -backlight and -contrast are 0-255", hd44780.ErrInvalidArgument)
	}
	return c, nil
}

func (c *config) lcdOpts() *hd44780.Opts {
	o := hd44780.DefaultOpts
	o.Cols, o.Rows = c.cols, c.rows
	o.LineWrap = c.wrap
	if c.font == 10 {
		o.Font = hd44780.Font5x10
	}
	return &o
}

// show writes the text and applies the display settings, logging the status
// of every step.
func show(dev *hd44780.Dev, c *config) error {
	step := func(name string, err error) error {
		e := log.WithFields(log.Fields{"op": name, "status": hd44780.Status(err)})
		switch {
		case err == nil:
			e.Debug("ok")
		case errors.Is(err, hd44780.ErrNotSupported):
			e.Warn(err)
			return nil
		default:
			e.Error(err)
		}
		return err
	}
	if err := step("clear", dev.Clear()); err != nil {
		return err
	}
	if err := step("backlight", dev.SetBacklight(byte(c.backlight))); err != nil {
		return err
	}
	if c.contrast >= 0 {
		if err := step("contrast", dev.SetContrast(byte(c.contrast))); err != nil {
			return err
		}
	}
	text := strings.ReplaceAll(c.text, `\n`, "\n")
	for r, line := range strings.Split(text, "\n") {
		if r != 0 {
			if err := step("setcursor", dev.SetCursor(0, r)); err != nil {
				return err
			}
		}
		if _, err := dev.WriteString(line); step("write", err) != nil {
			return err
		}
	}
	if b, err := dev.Status(); step("status", err) == nil && err == nil {
		log.WithFields(log.Fields{"busy": b&0x80 != 0, "address": fmt.Sprintf("0x%02x", b&0x7f)}).Info("status")
	}
	return nil
}

func run(args []string, out io.Writer) error {
	c, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	if c.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if c.backend == "sim" {
		return runSim(c, out)
	}
	dev, closer, err := openHardware(c)
	if err != nil {
		return err
	}
	defer closer()
	log.WithField("dev", dev.String()).Info("opened")
	return show(dev, c)
}

func runSim(c *config, out io.Writer) error {
	clock := &hd44780test.FakeClock{}
	sim := hd44780test.New(clock, hd44780.Bus4Bit, hd44780test.State8Bit)
	sim.ReadWrite = true
	sim.HasBacklight = true
	sim.HasContrast = true
	if c.verbose {
		sim.Log = log.WithField("backend", "sim")
	}
	o := c.lcdOpts()
	o.Clock = clock
	dev, err := hd44780.NewDev(sim, o)
	if err != nil {
		return err
	}
	if err := show(dev, c); err != nil {
		return err
	}
	for _, v := range sim.Violations {
		log.WithField("violation", v).Warn("busy time")
	}
	snap := sim.Snapshot(dev.Cols(), dev.Rows(), dev.RowOffsets())
	term := lcdview.NewTerminalWriter(out, nil)
	if err := term.Render(&snap); err != nil {
		return err
	}
	if c.png != "" {
		caption := fmt.Sprintf("%dx%d", c.cols, c.rows)
		if err := lcdview.SavePNG(c.png, &snap, &lcdview.Opts{Scale: 4, Caption: caption}); err != nil {
			return err
		}
		log.WithField("path", c.png).Info("saved")
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], colorable.NewColorableStdout()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
