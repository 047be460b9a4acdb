// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package redraw paints workspace and volume state onto every line window.
//
// The drawing connection is shared between the workspace and the volume
// watcher. An Orchestrator holds its lock for a whole redraw, from the first
// off-screen buffer to the final flush, so two redraws never interleave
// their requests.
package redraw

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mstarongithub/line/common/ipc"
	"github.com/mstarongithub/line/layout"
	"github.com/mstarongithub/line/palette"
	"github.com/mstarongithub/line/surface"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

var ErrClosed = errors.New("orchestrator closed")

type contentKind int

const (
	contentNone = contentKind(iota)
	contentWorkspaces
	contentVolume
)

type Orchestrator struct {
	lock     sync.Mutex
	registry *surface.Registry
	display  surface.Display
	border   int
	closed   bool

	// What the windows show right now, for Refresh
	shown    contentKind
	snapshot ipc.Snapshot
	level    int
}

// New creates an orchestrator drawing onto the surfaces of registry.
// border is the gap in pixels between workspace slots.
func New(registry *surface.Registry, border int) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		display:  registry.Display(),
		border:   border,
	}
}

// RedrawWorkspaces draws the workspace slots of snap on every surface
func (o *Orchestrator) RedrawWorkspaces(snap ipc.Snapshot) error {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.redrawWorkspaces(snap)
}

// RedrawVolume draws a volume bar at level percent on every surface
func (o *Orchestrator) RedrawVolume(level int) error {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.redrawVolume(level)
}

// Refresh repeats the last redraw. Does nothing if nothing was drawn yet
func (o *Orchestrator) Refresh() error {
	o.lock.Lock()
	defer o.lock.Unlock()

	switch o.shown {
	case contentWorkspaces:
		return o.redrawWorkspaces(o.snapshot)
	case contentVolume:
		return o.redrawVolume(o.level)
	}
	return nil
}

func (o *Orchestrator) redrawWorkspaces(snap ipc.Snapshot) error {
	if o.closed {
		return ErrClosed
	}
	err := o.paintAll(func(buf surface.Buffer, s surface.Surface) error {
		return o.paintWorkspaces(buf, s, snap)
	})
	o.shown = contentWorkspaces
	o.snapshot = snap
	return err
}

func (o *Orchestrator) redrawVolume(level int) error {
	if o.closed {
		return ErrClosed
	}
	err := o.paintAll(func(buf surface.Buffer, s surface.Surface) error {
		return o.paintVolume(buf, s, level)
	})
	o.shown = contentVolume
	o.level = level
	return err
}

// Snapshot returns the workspace snapshot drawn last
func (o *Orchestrator) Snapshot() ipc.Snapshot {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.snapshot
}

// Surfaces lists the surfaces being drawn on
func (o *Orchestrator) Surfaces() []surface.Surface {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.registry.Surfaces()
}

// Close releases all windows, pens and the display connection.
// Waits for a running redraw. Later redraws fail with ErrClosed.
func (o *Orchestrator) Close() error {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true

	errs := []error{o.registry.Close()}
	if err := o.display.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing display: %w", err))
	}
	if err := o.display.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing display: %w", err))
	}
	return errors.Join(errs...)
}

// paintAll runs paint for every surface and flushes once at the end.
// Must hold lock.
func (o *Orchestrator) paintAll(paint func(surface.Buffer, surface.Surface) error) error {
	var errs []error
	for _, s := range o.registry.Surfaces() {
		if err := o.paintSurface(s, paint); err != nil {
			logrus.WithError(err).WithField("output", s.Output).Warningln("Redraw failed, keeping previous frame")
			errs = append(errs, fmt.Errorf("redrawing %s: %w", s.Output, err))
		}
	}
	if err := o.display.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing display: %w", err))
	}
	return errors.Join(errs...)
}

// paintSurface draws into a fresh off-screen buffer and only copies it
// onto the window if every drawing step worked
func (o *Orchestrator) paintSurface(s surface.Surface, paint func(surface.Buffer, surface.Surface) error) (err error) {
	height := o.registry.Height()
	buf, err := o.display.CreateBuffer(s.Width, height)
	if err != nil {
		return fmt.Errorf("creating buffer: %w", err)
	}
	defer func() {
		if ferr := o.display.FreeBuffer(buf); ferr != nil && err == nil {
			err = fmt.Errorf("freeing buffer: %w", ferr)
		}
	}()

	background := surface.Rect{Width: s.Width, Height: height}
	if err = o.display.FillRects(buf, o.registry.Pen(palette.Background), background); err != nil {
		return fmt.Errorf("filling background: %w", err)
	}
	if err = paint(buf, s); err != nil {
		return err
	}
	if err = o.display.CopyToWindow(buf, s.Window, s.Width, height); err != nil {
		return fmt.Errorf("copying buffer: %w", err)
	}
	return nil
}

func (o *Orchestrator) paintWorkspaces(buf surface.Buffer, s surface.Surface, snap ipc.Snapshot) error {
	workspaces := WorkspacesOn(snap, s.Output)
	nums := make([]int64, len(workspaces))
	for i, ws := range workspaces {
		nums[i] = ws.Num
	}

	slots := layout.Compute(nums, s.Width, o.border)
	if len(slots) == 0 {
		return nil
	}

	height := o.registry.Height()
	rects := make([]surface.Rect, len(slots))
	for i, slot := range slots {
		rects[i] = surface.Rect{X: slot.X, Width: slot.Width, Height: height}
	}
	// Every slot starts off, live workspaces paint over their own
	if err := o.display.FillRects(buf, o.registry.Pen(palette.Off), rects...); err != nil {
		return fmt.Errorf("filling slots: %w", err)
	}

	for _, ws := range workspaces {
		i := layout.Index(slots, ws.Num)
		if i < 0 {
			continue
		}
		color := palette.WorkspaceColor(ws.Urgent, ws.Focused, ws.Visible)
		if err := o.display.FillRects(buf, o.registry.Pen(color), rects[i]); err != nil {
			return fmt.Errorf("filling workspace %d: %w", ws.Num, err)
		}
	}
	return nil
}

func (o *Orchestrator) paintVolume(buf surface.Buffer, s surface.Surface, level int) error {
	width := layout.VolumeBarWidth(s.Width, level)
	if width == 0 {
		return nil
	}
	bar := surface.Rect{Width: width, Height: o.registry.Height()}
	if err := o.display.FillRects(buf, o.registry.Pen(palette.VolumeColor()), bar); err != nil {
		return fmt.Errorf("filling volume bar: %w", err)
	}
	return nil
}

// WorkspacesOn restricts snap to the workspaces on output
func WorkspacesOn(snap ipc.Snapshot, output string) []ipc.Workspace {
	return sliceutils.Filter([]ipc.Workspace(snap), func(ws ipc.Workspace) bool {
		return ws.Output == output
	})
}
