// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package surfacetest provides a recording Display for tests
package surfacetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/mstarongithub/line/palette"
	"github.com/mstarongithub/line/surface"
)

type OpKind string

const (
	OpOutputs       = OpKind("outputs")
	OpCreateDock    = OpKind("create-dock")
	OpDestroyWindow = OpKind("destroy-window")
	OpAllocPen      = OpKind("alloc-pen")
	OpFreePen       = OpKind("free-pen")
	OpCreateBuffer  = OpKind("create-buffer")
	OpFreeBuffer    = OpKind("free-buffer")
	OpFill          = OpKind("fill")
	OpCopy          = OpKind("copy")
	OpFlush         = OpKind("flush")
	OpClose         = OpKind("close")
)

// Op is one recorded request
type Op struct {
	Kind   OpKind
	Buffer surface.Buffer
	Window surface.Window
	Pen    surface.Pen
	Rects  []surface.Rect
}

type Fill struct {
	Pen  surface.Pen
	Rect surface.Rect
}

// Display records every request it gets.
// Fields other than the recorded ops must be set before first use.
type Display struct {
	OutputList []surface.Output
	// Returned by the request of that kind instead of succeeding
	Fail map[OpKind]error
	// Fail only after this many successful requests of the kind
	FailAfter map[OpKind]int
	// Slept inside every drawing request, widens race windows
	Delay time.Duration

	lock    sync.Mutex
	ops     []Op
	counts  map[OpKind]int
	nextID  uint32
	pens    map[surface.Pen]palette.RGB
	buffers map[surface.Buffer][]Fill
	windows map[surface.Window][]Fill
}

func New(outputs ...surface.Output) *Display {
	return &Display{OutputList: outputs}
}

func (d *Display) record(op Op) error {
	if d.counts == nil {
		d.counts = map[OpKind]int{}
		d.pens = map[surface.Pen]palette.RGB{}
		d.buffers = map[surface.Buffer][]Fill{}
		d.windows = map[surface.Window][]Fill{}
	}
	if err, ok := d.Fail[op.Kind]; ok && d.counts[op.Kind] >= d.FailAfter[op.Kind] {
		return err
	}
	d.counts[op.Kind]++
	d.ops = append(d.ops, op)
	return nil
}

func (d *Display) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Display) pause() {
	if d.Delay > 0 {
		time.Sleep(d.Delay)
	}
}

func (d *Display) Outputs() ([]surface.Output, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if err, ok := d.Fail[OpOutputs]; ok {
		return nil, err
	}
	return d.OutputList, nil
}

func (d *Display) CreateDock(output surface.Output, height int) (surface.Window, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	w := surface.Window(d.id())
	if err := d.record(Op{Kind: OpCreateDock, Window: w, Rects: []surface.Rect{{X: output.X, Y: output.Y, Width: output.Width, Height: height}}}); err != nil {
		return 0, err
	}
	return w, nil
}

func (d *Display) DestroyWindow(w surface.Window) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.record(Op{Kind: OpDestroyWindow, Window: w})
}

func (d *Display) AllocPen(color palette.RGB) (surface.Pen, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	p := surface.Pen(d.id())
	if err := d.record(Op{Kind: OpAllocPen, Pen: p}); err != nil {
		return 0, err
	}
	d.pens[p] = color
	return p, nil
}

func (d *Display) FreePen(p surface.Pen) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.record(Op{Kind: OpFreePen, Pen: p})
}

func (d *Display) CreateBuffer(width, height int) (surface.Buffer, error) {
	d.pause()
	d.lock.Lock()
	defer d.lock.Unlock()
	b := surface.Buffer(d.id())
	if err := d.record(Op{Kind: OpCreateBuffer, Buffer: b, Rects: []surface.Rect{{Width: width, Height: height}}}); err != nil {
		return 0, err
	}
	d.buffers[b] = nil
	return b, nil
}

func (d *Display) FreeBuffer(b surface.Buffer) error {
	d.pause()
	d.lock.Lock()
	defer d.lock.Unlock()
	if err := d.record(Op{Kind: OpFreeBuffer, Buffer: b}); err != nil {
		return err
	}
	delete(d.buffers, b)
	return nil
}

func (d *Display) FillRects(b surface.Buffer, p surface.Pen, rects ...surface.Rect) error {
	d.pause()
	d.lock.Lock()
	defer d.lock.Unlock()
	if _, ok := d.buffers[b]; !ok {
		return fmt.Errorf("fill on unknown buffer %d", b)
	}
	if err := d.record(Op{Kind: OpFill, Buffer: b, Pen: p, Rects: rects}); err != nil {
		return err
	}
	for _, r := range rects {
		d.buffers[b] = append(d.buffers[b], Fill{Pen: p, Rect: r})
	}
	return nil
}

func (d *Display) CopyToWindow(b surface.Buffer, w surface.Window, width, height int) error {
	d.pause()
	d.lock.Lock()
	defer d.lock.Unlock()
	fills, ok := d.buffers[b]
	if !ok {
		return fmt.Errorf("copy from unknown buffer %d", b)
	}
	if err := d.record(Op{Kind: OpCopy, Buffer: b, Window: w, Rects: []surface.Rect{{Width: width, Height: height}}}); err != nil {
		return err
	}
	d.windows[w] = append([]Fill(nil), fills...)
	return nil
}

func (d *Display) Flush() error {
	d.pause()
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.record(Op{Kind: OpFlush})
}

func (d *Display) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.record(Op{Kind: OpClose})
}

// Ops returns a copy of everything recorded so far
func (d *Display) Ops() []Op {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]Op(nil), d.ops...)
}

// Count returns how many requests of kind succeeded
func (d *Display) Count(kind OpKind) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.counts[kind]
}

// Frame returns the fills that make up what w currently shows, in paint order
func (d *Display) Frame(w surface.Window) []Fill {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]Fill(nil), d.windows[w]...)
}

// PenAt returns the pen that painted pixel (x, y) of w last, or false if nothing did
func (d *Display) PenAt(w surface.Window, x, y int) (surface.Pen, bool) {
	fills := d.Frame(w)
	for i := len(fills) - 1; i >= 0; i-- {
		r := fills[i].Rect
		if x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height {
			return fills[i].Pen, true
		}
	}
	return 0, false
}

// Color returns the colour a pen was allocated with
func (d *Display) Color(p surface.Pen) palette.RGB {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.pens[p]
}
