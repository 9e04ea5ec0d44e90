// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cexp

// Chip is the I/O expander type on the backpack.
type Chip int

const (
	PCF8574 Chip = iota + 1
	MCP23008
)

func (c Chip) String() string {
	switch c {
	case PCF8574:
		return "PCF8574"
	case MCP23008:
		return "MCP23008"
	default:
		return "unknown"
	}
}

// NoPin marks a signal that isn't wired to the expander.
const NoPin = -1

// Board describes how a backpack wires the expander port bits to the LCD.
// Pin values are expander bit numbers, 0 to 7.
type Board struct {
	Name string
	Chip Chip
	RS   int
	// RW is NoPin when the LCD R/W line is tied to ground. Reads need it.
	RW int
	EN int
	D4 int
	D5 int
	D6 int
	D7 int
	// BL is NoPin when the backlight isn't switchable.
	BL int
	// BLActiveLow is set when a low level turns the backlight on.
	BLActiveLow bool
}

// Known backpacks.
var (
	// LCDXIO is the ElectroFun backpack without backlight control.
	LCDXIO = Board{Name: "LCDXIO", Chip: PCF8574, RS: 4, RW: 5, EN: 6, D4: 0, D5: 1, D6: 2, D7: 3, BL: NoPin}
	// LCDXIOnBL is the ElectroFun backpack with a PNP backlight transistor.
	LCDXIOnBL = Board{Name: "LCDXIOnBL", Chip: PCF8574, RS: 4, RW: 5, EN: 6, D4: 0, D5: 1, D6: 2, D7: 3, BL: 7, BLActiveLow: true}
	MJKDZ     = Board{Name: "MJKDZ", Chip: PCF8574, RS: 6, RW: 5, EN: 4, D4: 0, D5: 1, D6: 2, D7: 3, BL: 7, BLActiveLow: true}
	GYI2CLCD  = Board{Name: "GYI2CLCD", Chip: PCF8574, RS: 6, RW: 5, EN: 4, D4: 0, D5: 1, D6: 2, D7: 3, BL: 7, BLActiveLow: true}
	// LCM1602 is the Robot Arduino backpack. A jumper can force the
	// backlight on.
	LCM1602 = Board{Name: "LCM1602", Chip: PCF8574, RS: 0, RW: 1, EN: 2, D4: 4, D5: 5, D6: 6, D7: 7, BL: 3, BLActiveLow: true}
	// YwRobot is the most common PCF8574 backpack, also sold as DFRobot,
	// SainSmart, Funduino and SYDZ.
	YwRobot = Board{Name: "YwRobot", Chip: PCF8574, RS: 0, RW: 1, EN: 2, D4: 4, D5: 5, D6: 6, D7: 7, BL: 3}
	// Adafruit292 is the Adafruit I2C/SPI backpack in I²C mode. R/W is
	// grounded.
	Adafruit292 = Board{Name: "Adafruit292", Chip: MCP23008, RS: 1, RW: NoPin, EN: 2, D4: 3, D5: 4, D6: 5, D7: 6, BL: 7}
	// WideHK hooks R/W to GP5 but reads on the MCP23008 aren't supported.
	WideHK  = Board{Name: "WideHK", Chip: MCP23008, RS: 4, RW: NoPin, EN: 7, D4: 0, D5: 1, D6: 2, D7: 3, BL: 6}
	LCDPlug = Board{Name: "LCDPlug", Chip: MCP23008, RS: 4, RW: NoPin, EN: 6, D4: 0, D5: 1, D6: 2, D7: 3, BL: 7}
	MLTBlue = Board{Name: "MLTBlue", Chip: MCP23008, RS: 1, RW: NoPin, EN: 3, D4: 4, D5: 5, D6: 6, D7: 7, BL: 0}
)

// Boards lists the known backpacks by lower case name, aliases included.
var Boards = map[string]Board{
	"lcdxio":      LCDXIO,
	"lcdxionbl":   LCDXIOnBL,
	"mjkdz":       MJKDZ,
	"gyi2clcd":    GYI2CLCD,
	"lcm1602":     LCM1602,
	"ywrobot":     YwRobot,
	"dfrobot":     YwRobot,
	"sainsmart":   YwRobot,
	"funduino":    YwRobot,
	"sydz":        YwRobot,
	"adafruit292": Adafruit292,
	"widehk":      WideHK,
	"lcdplug":     LCDPlug,
	"mltblue":     MLTBlue,
}

func (b *Board) valid() bool {
	if b.Chip != PCF8574 && b.Chip != MCP23008 {
		return false
	}
	used := 0
	for _, p := range []int{b.RS, b.RW, b.EN, b.D4, b.D5, b.D6, b.D7, b.BL} {
		if p == NoPin {
			continue
		}
		if p < 0 || p > 7 || used&(1<<p) != 0 {
			return false
		}
		used |= 1 << p
	}
	return b.RS != NoPin && b.EN != NoPin && b.D4 != NoPin && b.D5 != NoPin && b.D6 != NoPin && b.D7 != NoPin
}

func bit(p int) byte {
	if p == NoPin {
		return 0
	}
	return 1 << p
}
