// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package surface

import "github.com/mstarongithub/line/palette"

type (
	// A physical output as the display reports it
	Output struct {
		Name  string
		X, Y  int
		Width int
	}

	// Server side handles. Meaning depends on the Display implementation
	Window uint32
	Pen    uint32
	Buffer uint32

	Rect struct {
		X, Y          int
		Width, Height int
	}
)

// Display is the drawing connection the line renders through.
// Implementations are not expected to be safe for concurrent use,
// callers serialise access themselves.
type Display interface {
	Outputs() ([]Output, error)
	// CreateDock creates and maps an always on top dock window at the
	// output's origin, output.Width wide and height tall
	CreateDock(output Output, height int) (Window, error)
	DestroyWindow(w Window) error

	AllocPen(color palette.RGB) (Pen, error)
	FreePen(p Pen) error

	// CreateBuffer creates an off-screen buffer
	CreateBuffer(width, height int) (Buffer, error)
	FreeBuffer(b Buffer) error
	FillRects(b Buffer, p Pen, rects ...Rect) error
	// CopyToWindow transfers a finished buffer onto a window in one request
	CopyToWindow(b Buffer, w Window, width, height int) error

	Flush() error
	Close() error
}
