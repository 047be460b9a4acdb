// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package palette maps workspace and volume state to logical colours.
package palette

import "fmt"

type Color int

const (
	Urgent = Color(iota)
	Active // Visible but not focused
	Focused
	Inactive
	// Slot without a live workspace. Must stay distinguishable from Inactive
	Off
	Volume
	// Fill under everything else
	Background
)

// All logical colours, in allocation order
var Colors = []Color{Urgent, Active, Focused, Inactive, Off, Volume, Background}

var colorNames = map[Color]string{
	Urgent:     "urgent",
	Active:     "active",
	Focused:    "focused",
	Inactive:   "inactive",
	Off:        "off",
	Volume:     "volume",
	Background: "background",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// ParseColor resolves a logical colour by its config name
func ParseColor(name string) (Color, error) {
	for c, n := range colorNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown logical color %q", name)
}

// RGB holds 16 bit per channel components, the way X11 allocates colours
type RGB struct {
	R, G, B uint16
}

func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

type Palette map[Color]RGB

// Default mirrors the colours the line always shipped with
func Default() Palette {
	return Palette{
		Urgent:     {65535, 0, 0},
		Active:     {0, 65535, 0},
		Focused:    {0, 0, 65535},
		Inactive:   {40000, 40000, 40000},
		Off:        {10000, 10000, 10000},
		Volume:     {65535, 40000, 0},
		Background: {65535, 65535, 65535},
	}
}

// Missing lists the logical colours p has no entry for
func (p Palette) Missing() []Color {
	missing := []Color{}
	for _, c := range Colors {
		if _, ok := p[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// WorkspaceColor picks the colour for a live workspace.
// Priority is urgent, then focused, then visible, else inactive.
func WorkspaceColor(urgent, focused, visible bool) Color {
	switch {
	case urgent:
		return Urgent
	case focused:
		return Focused
	case visible:
		return Active
	default:
		return Inactive
	}
}

func VolumeColor() Color {
	return Volume
}
