// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package x11 draws the line as one dock window per RandR output
package x11

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/mstarongithub/line/palette"
	"github.com/mstarongithub/line/surface"
	"github.com/sirupsen/logrus"
)

// Atoms needed to turn a plain window into a dock
var atomNames = []string{
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_STATE",
	"_NET_WM_STATE_ABOVE",
}

type Display struct {
	conn     *xgb.Conn
	screen   *xproto.ScreenInfo
	colormap xproto.Colormap
	// Used for CopyArea, its colours never matter
	copyGC xproto.Gcontext
	atoms  map[string]xproto.Atom
}

var _ surface.Display = (*Display)(nil)

// Connect opens the display named by $DISPLAY and prepares colormap, atoms and RandR
func Connect() (*Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X: %w", err)
	}
	d := &Display{
		conn:   conn,
		screen: xproto.Setup(conn).DefaultScreen(conn),
		atoms:  map[string]xproto.Atom{},
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing RandR: %w", err)
	}

	d.colormap, err = xproto.NewColormapId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("allocating colormap id: %w", err)
	}
	err = xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, d.colormap, d.screen.Root, d.screen.RootVisual).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating colormap: %w", err)
	}

	d.copyGC, err = d.newGC(d.screen.BlackPixel)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("creating copy context: %w", err)
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("could not get atom %s: %w", name, err)
		}
		d.atoms[name] = reply.Atom
	}
	return d, nil
}

func (d *Display) newGC(foreground uint32) (xproto.Gcontext, error) {
	gc, err := xproto.NewGcontextId(d.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateGCChecked(d.conn, gc, xproto.Drawable(d.screen.Root),
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{foreground, d.screen.WhitePixel}).Check()
	if err != nil {
		return 0, err
	}
	return gc, nil
}

// Outputs lists connected outputs with an active CRTC
func (d *Display) Outputs() ([]surface.Output, error) {
	resources, err := randr.GetScreenResourcesCurrent(d.conn, d.screen.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("getting screen resources: %w", err)
	}

	outputs := []surface.Output{}
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(d.conn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("getting output %d: %w", id, err)
		}
		name := string(info.Name)
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			logrus.WithField("output", name).Debugln("Skipping inactive output")
			continue
		}
		crtc, err := randr.GetCrtcInfo(d.conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("getting crtc of output %s: %w", name, err)
		}
		outputs = append(outputs, surface.Output{
			Name:  name,
			X:     int(crtc.X),
			Y:     int(crtc.Y),
			Width: int(crtc.Width),
		})
	}
	return outputs, nil
}

func (d *Display) CreateDock(output surface.Output, height int) (surface.Window, error) {
	win, err := xproto.NewWindowId(d.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(d.conn,
		xproto.WindowClassCopyFromParent,
		win,
		d.screen.Root,
		int16(output.X), int16(output.Y),
		uint16(output.Width), uint16(height),
		0,
		xproto.WindowClassInputOutput,
		d.screen.RootVisual,
		xproto.CwBackPixel,
		[]uint32{d.screen.WhitePixel}).Check()
	if err != nil {
		return 0, fmt.Errorf("creating window: %w", err)
	}

	if err := d.setAtomProperty(win, "_NET_WM_WINDOW_TYPE", "_NET_WM_WINDOW_TYPE_DOCK"); err != nil {
		xproto.DestroyWindow(d.conn, win)
		return 0, err
	}
	if err := d.setAtomProperty(win, "_NET_WM_STATE", "_NET_WM_STATE_ABOVE"); err != nil {
		xproto.DestroyWindow(d.conn, win)
		return 0, err
	}
	if err := xproto.MapWindowChecked(d.conn, win).Check(); err != nil {
		xproto.DestroyWindow(d.conn, win)
		return 0, fmt.Errorf("mapping window: %w", err)
	}
	return surface.Window(win), nil
}

func (d *Display) setAtomProperty(win xproto.Window, property, value string) error {
	data := make([]byte, 4)
	xgb.Put32(data, uint32(d.atoms[value]))
	err := xproto.ChangePropertyChecked(d.conn, xproto.PropModeReplace, win,
		d.atoms[property], xproto.AtomAtom, 32, 1, data).Check()
	if err != nil {
		return fmt.Errorf("setting %s: %w", property, err)
	}
	return nil
}

func (d *Display) DestroyWindow(w surface.Window) error {
	return xproto.DestroyWindowChecked(d.conn, xproto.Window(w)).Check()
}

// AllocPen allocates the colour and wraps it in a graphics context
func (d *Display) AllocPen(color palette.RGB) (surface.Pen, error) {
	reply, err := xproto.AllocColor(d.conn, d.colormap, color.R, color.G, color.B).Reply()
	if err != nil {
		return 0, fmt.Errorf("allocating colour: %w", err)
	}
	gc, err := d.newGC(reply.Pixel)
	if err != nil {
		return 0, fmt.Errorf("creating graphics context: %w", err)
	}
	return surface.Pen(gc), nil
}

func (d *Display) FreePen(p surface.Pen) error {
	return xproto.FreeGCChecked(d.conn, xproto.Gcontext(p)).Check()
}

// Drawing requests below are unchecked, errors show up on the next Flush

func (d *Display) CreateBuffer(width, height int) (surface.Buffer, error) {
	pixmap, err := xproto.NewPixmapId(d.conn)
	if err != nil {
		return 0, err
	}
	xproto.CreatePixmap(d.conn, d.screen.RootDepth, pixmap, xproto.Drawable(d.screen.Root), uint16(width), uint16(height))
	return surface.Buffer(pixmap), nil
}

func (d *Display) FreeBuffer(b surface.Buffer) error {
	xproto.FreePixmap(d.conn, xproto.Pixmap(b))
	return nil
}

func (d *Display) FillRects(b surface.Buffer, p surface.Pen, rects ...surface.Rect) error {
	xrects := make([]xproto.Rectangle, len(rects))
	for i, r := range rects {
		xrects[i] = xproto.Rectangle{
			X:      int16(r.X),
			Y:      int16(r.Y),
			Width:  uint16(r.Width),
			Height: uint16(r.Height),
		}
	}
	xproto.PolyFillRectangle(d.conn, xproto.Drawable(b), xproto.Gcontext(p), xrects)
	return nil
}

func (d *Display) CopyToWindow(b surface.Buffer, w surface.Window, width, height int) error {
	xproto.CopyArea(d.conn, xproto.Drawable(b), xproto.Drawable(w), d.copyGC, 0, 0, 0, 0, uint16(width), uint16(height))
	return nil
}

// Flush waits until the server processed everything sent so far.
// Returns the first asynchronous error reported since the last flush.
func (d *Display) Flush() error {
	if _, err := xproto.GetInputFocus(d.conn).Reply(); err != nil {
		return fmt.Errorf("syncing with X: %w", err)
	}
	var errs []error
	for {
		ev, xerr := d.conn.PollForEvent()
		if ev == nil && xerr == nil {
			break
		}
		if xerr != nil {
			errs = append(errs, xerr)
		}
	}
	return errors.Join(errs...)
}

func (d *Display) Close() error {
	if d.copyGC != 0 {
		xproto.FreeGC(d.conn, d.copyGC)
	}
	xproto.FreeColormap(d.conn, d.colormap)
	d.conn.Close()
	return nil
}
