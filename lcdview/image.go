// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdview

import (
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	defaultScale = 4
	captionSize  = 12
	captionBand  = 20
)

var bezel = color.NRGBA{0x20, 0x20, 0x20, 0xff}
var captionColor = color.NRGBA{0xe0, 0xe0, 0xe0, 0xff}

var captionFace = sync.OnceValues(func() (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: captionSize}), nil
})

func (o *Opts) scale() int {
	if o == nil || o.Scale <= 0 {
		return defaultScale
	}
	return o.Scale
}

// Size returns the size in pixels of the image Image returns for s.
func Size(s *hd44780test.Snapshot, opts *Opts) image.Point {
	sc := opts.scale()
	margin := 2 * sc
	p := image.Point{
		X: 2*margin + (s.Cols*cellW-1)*sc,
		Y: 2*margin + (s.Rows*cellH-1)*sc,
	}
	if opts != nil && opts.Caption != "" {
		p.Y += captionBand
	}
	return p
}

// Image draws s as a panel of square dots inside a dark bezel.
func Image(s *hd44780test.Snapshot, opts *Opts) (image.Image, error) {
	dc, err := draw(s, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG writes the image of s to w.
func EncodePNG(w io.Writer, s *hd44780test.Snapshot, opts *Opts) error {
	dc, err := draw(s, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG writes the image of s to the file at path.
func SavePNG(path string, s *hd44780test.Snapshot, opts *Opts) error {
	dc, err := draw(s, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

func draw(s *hd44780test.Snapshot, opts *Opts) (*gg.Context, error) {
	size := Size(s, opts)
	sc := opts.scale()
	margin := float64(2 * sc)
	c := opts.colors(s.Backlight)

	dc := gg.NewContext(size.X, size.Y)
	dc.SetColor(bezel)
	dc.Clear()
	panelW := float64((s.Cols*cellW - 1) * sc)
	panelH := float64((s.Rows*cellH - 1) * sc)
	dc.SetColor(c.gap)
	dc.DrawRoundedRectangle(margin/2, margin/2, panelW+margin, panelH+margin, margin/2)
	dc.Fill()

	dot := float64(sc)
	if sc > 1 {
		dot--
	}
	for y, row := range Dots(s) {
		for x, d := range row {
			if d == Gap {
				continue
			}
			dc.SetColor(c.of(d))
			dc.DrawRectangle(margin+float64(x*sc), margin+float64(y*sc), dot, dot)
			dc.Fill()
		}
	}

	if opts != nil && opts.Caption != "" {
		face, err := captionFace()
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(captionColor)
		dc.DrawStringAnchored(opts.Caption, float64(size.X)/2, float64(size.Y-captionBand/2), 0.5, 0.5)
	}
	return dc, nil
}
