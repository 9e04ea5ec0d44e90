// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdview renders what a simulated character LCD shows, either as
// ANSI colored blocks on a terminal or as an image.
//
// Useful to preview a layout before wiring the real panel.
package lcdview

import (
	"image/color"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/maruel/ansi256"
)

// Dot is the state of one position of the rendered dot matrix.
type Dot uint8

const (
	// Gap is the space between characters.
	Gap Dot = iota
	Off
	On
)

const (
	cellW = 6 // 5 dots and a gap column
	cellH = 9 // 8 dots and a gap row
)

// Opts represents the rendering options.
type Opts struct {
	// Palette is used by Terminal. Defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Background, DotOff and DotOn are the colors with the backlight lit.
	// Zero values select a yellow green panel.
	Background color.NRGBA
	DotOff     color.NRGBA
	DotOn      color.NRGBA
	// Scale is the size in pixels of one dot in an Image. Defaults to 4.
	Scale int
	// Caption is drawn below the panel in an Image.
	Caption string

	_ struct{}
}

var (
	defaultBackground = color.NRGBA{0x9a, 0xcd, 0x32, 0xff}
	defaultDotOff     = color.NRGBA{0x8c, 0xbf, 0x2c, 0xff}
	defaultDotOn      = color.NRGBA{0x1c, 0x2c, 0x10, 0xff}
)

type colors struct {
	gap, off, on color.NRGBA
}

func (o *Opts) colors(backlight byte) colors {
	c := colors{gap: defaultBackground, off: defaultDotOff, on: defaultDotOn}
	if o != nil {
		if o.Background.A != 0 {
			c.gap = o.Background
		}
		if o.DotOff.A != 0 {
			c.off = o.DotOff
		}
		if o.DotOn.A != 0 {
			c.on = o.DotOn
		}
	}
	if backlight == 0 {
		c.gap, c.off = dim(c.gap), dim(c.off)
	}
	return c
}

func (c colors) of(d Dot) color.NRGBA {
	switch d {
	case On:
		return c.on
	case Off:
		return c.off
	default:
		return c.gap
	}
}

// dim darkens c to what an unlit panel reflects.
func dim(c color.NRGBA) color.NRGBA {
	return color.NRGBA{c.R * 2 / 5, c.G * 2 / 5, c.B * 2 / 5, c.A}
}

// Dots returns the dot matrix of the panel, indexed [y][x]. Each character is
// 5x8 dots, separated by one Gap column and one Gap row. A display turned off
// shows no lit dot. An underline cursor lights the 8th row of its cell and a
// blinking one is drawn in its lit phase.
func Dots(s *hd44780test.Snapshot) [][]Dot {
	h, w := s.Rows*cellH-1, s.Cols*cellW-1
	if h < 0 || w < 0 {
		return nil
	}
	out := make([][]Dot, h)
	for y := range out {
		out[y] = make([]Dot, w)
	}
	for r := 0; r < s.Rows && r < len(s.Text); r++ {
		for c := 0; c < s.Cols && c < len(s.Text[r]); c++ {
			g := Glyph(s, s.Text[r][c])
			if r == s.CursorRow && c == s.CursorCol {
				if s.CursorOn {
					g[7] = 0x1f
				}
				if s.BlinkOn {
					g = [8]byte{0x1f, 0x1f, 0x1f, 0x1f, 0x1f, 0x1f, 0x1f, 0x1f}
				}
			}
			for y, bits := range g {
				row := out[r*cellH+y]
				for x := range 5 {
					d := Off
					if s.DisplayOn && bits&(0x10>>x) != 0 {
						d = On
					}
					row[c*cellW+x] = d
				}
			}
		}
	}
	return out
}
