// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package surface owns the dock windows, one per output
package surface

import (
	"errors"
	"fmt"

	"github.com/mstarongithub/line/palette"
	"github.com/sirupsen/logrus"
)

var ErrNoOutputs = errors.New("display reports no usable output")

// A Surface is one dock window on one output
type Surface struct {
	Output string // Output name the window sits on
	Width  int    // Width in pixels, fixed after creation
	Window Window
}

// Registry is the fixed set of surfaces plus the pens to paint them with.
// Read only once NewRegistry returns.
type Registry struct {
	display  Display
	height   int
	surfaces []Surface
	pens     map[palette.Color]Pen
}

// NewRegistry creates one dock window per output and allocates every
// palette colour. On failure everything created so far is released again.
func NewRegistry(display Display, height int, pal palette.Palette) (*Registry, error) {
	if missing := pal.Missing(); len(missing) != 0 {
		return nil, fmt.Errorf("palette has no entry for %v", missing)
	}
	r := &Registry{
		display: display,
		height:  height,
		pens:    make(map[palette.Color]Pen, len(palette.Colors)),
	}

	for _, c := range palette.Colors {
		pen, err := display.AllocPen(pal[c])
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("allocating %s colour %s: %w", c, pal[c], err)
		}
		r.pens[c] = pen
	}

	outputs, err := display.Outputs()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("listing outputs: %w", err)
	}
	if len(outputs) == 0 {
		r.Close()
		return nil, ErrNoOutputs
	}

	for _, output := range outputs {
		if output.Name == "" {
			r.Close()
			return nil, fmt.Errorf("output at %d,%d has no name", output.X, output.Y)
		}
		win, err := display.CreateDock(output, height)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("creating dock window on %s: %w", output.Name, err)
		}
		r.surfaces = append(r.surfaces, Surface{
			Output: output.Name,
			Width:  output.Width,
			Window: win,
		})
		logrus.WithFields(logrus.Fields{
			"output": output.Name,
			"x":      output.X,
			"y":      output.Y,
			"width":  output.Width,
		}).Debugln("Created line window")
	}
	return r, nil
}

// Surfaces returns the surfaces in output order. Do not modify the result
func (r *Registry) Surfaces() []Surface {
	return r.surfaces
}

func (r *Registry) Height() int {
	return r.height
}

func (r *Registry) Pen(c palette.Color) Pen {
	return r.pens[c]
}

func (r *Registry) Display() Display {
	return r.display
}

// Close destroys every window and frees every pen created so far.
// Safe on a partially built registry and safe to call twice.
func (r *Registry) Close() error {
	var errs []error
	for _, s := range r.surfaces {
		if err := r.display.DestroyWindow(s.Window); err != nil {
			errs = append(errs, fmt.Errorf("destroying window on %s: %w", s.Output, err))
		}
	}
	r.surfaces = nil
	for _, c := range palette.Colors {
		pen, ok := r.pens[c]
		if !ok {
			continue
		}
		if err := r.display.FreePen(pen); err != nil {
			errs = append(errs, fmt.Errorf("freeing %s pen: %w", c, err))
		}
		delete(r.pens, c)
	}
	return errors.Join(errs...)
}
