// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package watcher

import (
	"sync/atomic"

	"github.com/mstarongithub/line/common/ipc"
	"github.com/sirupsen/logrus"
)

type State int32

const (
	StateDisconnected = State(iota)
	StateConnected
	StateSubscribed
	StateWaiting
	StateHandling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	case StateWaiting:
		return "waiting"
	case StateHandling:
		return "handling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Classes the workspace watcher subscribes to
var WorkspaceClasses = []ipc.ChangeClass{
	ipc.ClassWorkspaceInit,
	ipc.ClassWorkspaceFocus,
	ipc.ClassWorkspaceUrgent,
	ipc.ClassFullscreenMode,
}

type WorkspaceRedrawer interface {
	RedrawWorkspaces(snap ipc.Snapshot) error
}

// WorkspaceWatcher redraws all workspaces whenever the window manager
// reports a relevant change
type WorkspaceWatcher struct {
	wm     ipc.WindowManager
	target WorkspaceRedrawer
	// Only redraw when a window leaves fullscreen, not when it enters it
	fullscreenExitOnly bool
	state              atomic.Int32
}

func NewWorkspaceWatcher(wm ipc.WindowManager, target WorkspaceRedrawer, fullscreenExitOnly bool) *WorkspaceWatcher {
	return &WorkspaceWatcher{
		wm:                 wm,
		target:             target,
		fullscreenExitOnly: fullscreenExitOnly,
	}
}

func (w *WorkspaceWatcher) State() State {
	return State(w.state.Load())
}

func (w *WorkspaceWatcher) setState(s State) {
	old := State(w.state.Swap(int32(s)))
	if old != s {
		logrus.WithFields(logrus.Fields{"from": old, "to": s}).Traceln("Workspace watcher state")
	}
}

// Run connects, subscribes, draws the current state once and then redraws
// on every relevant change. It only returns with a *FatalError.
func (w *WorkspaceWatcher) Run() error {
	defer w.setState(StateStopped)

	if err := w.wm.Connect(); err != nil {
		return &FatalError{Watcher: "workspace", Op: "connecting", Err: err}
	}
	w.setState(StateConnected)

	stream, err := w.wm.Subscribe(WorkspaceClasses...)
	if err != nil {
		return &FatalError{Watcher: "workspace", Op: "subscribing", Err: err}
	}
	w.setState(StateSubscribed)
	if w.fullscreenExitOnly {
		logrus.Infoln("Redrawing only when a window leaves fullscreen")
	}

	if err := w.refresh(); err != nil {
		_ = stream.Close()
		return err
	}

	for {
		w.setState(StateWaiting)
		if !stream.Next() {
			break
		}
		change := stream.Change()
		if !w.triggers(change) {
			continue
		}
		w.setState(StateHandling)
		logrus.WithField("change", change.Class).Debugln("Workspace event")
		if err := w.refresh(); err != nil {
			_ = stream.Close()
			return err
		}
	}

	err = stream.Close()
	if err == nil {
		err = ipc.ErrConnectionLost
	}
	return &FatalError{Watcher: "workspace", Op: "receiving events", Err: err}
}

func (w *WorkspaceWatcher) triggers(change ipc.Change) bool {
	switch change.Class {
	case ipc.ClassWorkspaceInit, ipc.ClassWorkspaceFocus, ipc.ClassWorkspaceUrgent:
		return true
	case ipc.ClassFullscreenMode:
		return !w.fullscreenExitOnly || !change.Fullscreen
	}
	return false
}

// refresh fetches a fresh snapshot and redraws it.
// Only a failed fetch is fatal, a failed redraw is logged.
func (w *WorkspaceWatcher) refresh() error {
	snap, err := w.wm.Workspaces()
	if err != nil {
		return &FatalError{Watcher: "workspace", Op: "fetching workspaces", Err: err}
	}
	if err := w.target.RedrawWorkspaces(snap); err != nil {
		logrus.WithError(err).Warningln("Workspace redraw failed")
	}
	return nil
}
