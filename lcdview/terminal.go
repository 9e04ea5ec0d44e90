// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdview

import (
	"bytes"
	"fmt"
	"io"

	"github.com/GermanBionicSystems/charlcd/hd44780/hd44780test"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Terminal draws snapshots as ANSI colored blocks, one block per dot.
type Terminal struct {
	w       io.Writer
	opts    Opts
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewTerminal returns a Terminal that draws on stdout.
func NewTerminal(opts *Opts) *Terminal {
	return NewTerminalWriter(colorable.NewColorableStdout(), opts)
}

// NewTerminalWriter returns a Terminal that draws on w.
func NewTerminalWriter(w io.Writer, opts *Opts) *Terminal {
	t := &Terminal{w: w, palette: *ansi256.Default}
	if opts != nil {
		t.opts = *opts
		if opts.Palette != nil {
			t.palette = *opts.Palette
		}
	}
	return t
}

func (t *Terminal) String() string {
	return "lcdview.Terminal"
}

// Render writes one frame for s. Each line of dots ends with a color reset
// and a newline.
func (t *Terminal) Render(s *hd44780test.Snapshot) error {
	c := t.opts.colors(s.Backlight)
	t.buf.Reset()
	_, _ = t.buf.WriteString("\r\033[0m")
	for _, row := range Dots(s) {
		for _, d := range row {
			_, _ = io.WriteString(&t.buf, t.palette.Block(c.of(d)))
		}
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\n\033[0m"))
	return err
}

var _ fmt.Stringer = &Terminal{}
