// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2clcd_test

import (
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/hd44780/i2clcd"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// An AQM0802A module uses an ST7032, which needs its contrast set up.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()
	lcd, err := i2clcd.NewDev(bus, &i2clcd.Opts{Addr: 0x3e, Controller: i2clcd.ST7032}, &hd44780.Opts{Cols: 8, Rows: 2})
	if err != nil {
		log.Fatal(err)
	}
	_, _ = lcd.WriteString("AQM0802A")
	for level := 0; level < 256; level += 32 {
		_ = lcd.SetContrast(byte(level))
		time.Sleep(250 * time.Millisecond)
	}
}

func ExampleNewWaveshare1602() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()
	t, err := i2clcd.NewWaveshare1602(bus)
	if err != nil {
		log.Fatal(err)
	}
	lcd, err := hd44780.NewDev(t, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(t)
	_, _ = lcd.WriteString("Hello")
	colors := [][3]byte{{0xff, 0, 0}, {0, 0xff, 0}, {0, 0, 0xff}}
	for _, c := range colors {
		_ = t.RGBBacklight(display.Intensity(c[0]), display.Intensity(c[1]), display.Intensity(c[2]))
		time.Sleep(time.Second)
	}
}
