// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ipc holds what the line needs to know about the window manager
package ipc

import "errors"

// Returned by a stream whose window manager connection went away
var ErrConnectionLost = errors.New("window manager connection lost")

// ChangeClass names a kind of notification the window manager sends
type ChangeClass string

const (
	ClassWorkspaceInit   = ChangeClass("workspace::init")
	ClassWorkspaceFocus  = ChangeClass("workspace::focus")
	ClassWorkspaceUrgent = ChangeClass("workspace::urgent")
	ClassFullscreenMode  = ChangeClass("window::fullscreen_mode")
)

type (
	// A workspace as reported by the window manager
	Workspace struct {
		// Workspace number. Sparse, may be negative (named workspaces are -1 on i3)
		Num    int64  `json:"num"`
		Name   string `json:"name"`
		Output string `json:"output"`

		Urgent  bool `json:"urgent"`
		Focused bool `json:"focused"`
		Visible bool `json:"visible"`
	}

	// Point in time list of all workspaces. Replaced wholesale, never edited
	Snapshot []Workspace

	// A single notification
	Change struct {
		Class ChangeClass
		// Only meaningful for ClassFullscreenMode: whether the window is now fullscreen
		Fullscreen bool
	}
)

// Stream delivers changes until Next returns false
// Close then reports why it ended
type Stream interface {
	Next() bool
	Change() Change
	Close() error
}

// WindowManager is the IPC connection to the tiling window manager
type WindowManager interface {
	// Connect checks that the window manager is reachable
	Connect() error
	Workspaces() (Snapshot, error)
	Subscribe(classes ...ChangeClass) (Stream, error)
}
