// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package i3 talks to i3 (or sway) over its IPC socket
package i3

import (
	"fmt"
	"os"

	"github.com/mstarongithub/line/common/ipc"
	"github.com/sirupsen/logrus"
	"go.i3wm.org/i3/v4"
)

type WindowManager struct{}

var _ ipc.WindowManager = WindowManager{}

// New returns a window manager connection using socketPath when set,
// else $SWAYSOCK when set, else whatever i3 reports as its socket
func New(socketPath string) WindowManager {
	if socketPath == "" {
		socketPath = os.Getenv("SWAYSOCK")
	}
	if socketPath != "" {
		logrus.WithField("socket", socketPath).Debugln("Using explicit IPC socket")
		i3.SocketPathHook = func() (string, error) {
			return socketPath, nil
		}
	}
	return WindowManager{}
}

func (WindowManager) Connect() error {
	version, err := i3.GetVersion()
	if err != nil {
		return fmt.Errorf("querying window manager version: %w", err)
	}
	logrus.WithField("version", version.HumanReadable).Infoln("Connected to window manager")
	return nil
}

func (WindowManager) Workspaces() (ipc.Snapshot, error) {
	workspaces, err := i3.GetWorkspaces()
	if err != nil {
		return nil, err
	}
	snap := make(ipc.Snapshot, 0, len(workspaces))
	for _, ws := range workspaces {
		snap = append(snap, ipc.Workspace{
			Num:     ws.Num,
			Name:    ws.Name,
			Output:  ws.Output,
			Urgent:  ws.Urgent,
			Focused: ws.Focused,
			Visible: ws.Visible,
		})
	}
	return snap, nil
}

func (WindowManager) Subscribe(classes ...ipc.ChangeClass) (ipc.Stream, error) {
	wanted := map[ipc.ChangeClass]bool{}
	types := []i3.EventType{}
	for _, class := range classes {
		wanted[class] = true
	}
	if wanted[ipc.ClassWorkspaceInit] || wanted[ipc.ClassWorkspaceFocus] || wanted[ipc.ClassWorkspaceUrgent] {
		types = append(types, i3.WorkspaceEventType)
	}
	if wanted[ipc.ClassFullscreenMode] {
		types = append(types, i3.WindowEventType)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no known change class in %v", classes)
	}
	return &stream{
		receiver: i3.Subscribe(types...),
		wanted:   wanted,
	}, nil
}

type stream struct {
	receiver *i3.EventReceiver
	wanted   map[ipc.ChangeClass]bool
	current  ipc.Change
}

// Next skips events whose class was not asked for
func (s *stream) Next() bool {
	for s.receiver.Next() {
		change, ok := translate(s.receiver.Event())
		if !ok || !s.wanted[change.Class] {
			continue
		}
		s.current = change
		return true
	}
	return false
}

func (s *stream) Change() ipc.Change {
	return s.current
}

func (s *stream) Close() error {
	if err := s.receiver.Close(); err != nil {
		return fmt.Errorf("%w: %w", ipc.ErrConnectionLost, err)
	}
	return ipc.ErrConnectionLost
}

// translate maps an i3 event onto a change class.
// False for events without a matching class
func translate(event i3.Event) (ipc.Change, bool) {
	switch ev := event.(type) {
	case *i3.WorkspaceEvent:
		switch ev.Change {
		case "init":
			return ipc.Change{Class: ipc.ClassWorkspaceInit}, true
		case "focus":
			return ipc.Change{Class: ipc.ClassWorkspaceFocus}, true
		case "urgent":
			return ipc.Change{Class: ipc.ClassWorkspaceUrgent}, true
		}
	case *i3.WindowEvent:
		if ev.Change == "fullscreen_mode" {
			return ipc.Change{
				Class:      ipc.ClassFullscreenMode,
				Fullscreen: ev.Container.FullscreenMode != i3.FullscreenNone,
			}, true
		}
	}
	return ipc.Change{}, false
}
