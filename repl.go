// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mstarongithub/line/common/audio"
	"github.com/mstarongithub/line/common/ipc"
	"github.com/mstarongithub/line/palette"
	"github.com/mstarongithub/line/redraw"
	"github.com/mstarongithub/line/repl"
	"github.com/mstarongithub/line/util"
	"github.com/mstarongithub/line/util/wrappers"
	"github.com/sirupsen/logrus"
)

const consoleHelp = `Commands:
	surfaces: List the line windows
	workspaces [output]: Show the last workspace snapshot, optionally for one output
	volume: Read the current volume
	redraw: Draw the last content again
	quit: Close all windows and exit`

// console answers inspection commands about a running line
type console struct {
	orchestrator *redraw.Orchestrator
	audio        audio.System
	// Called after quit closed the orchestrator
	quit func()
}

func newConsole(orchestrator *redraw.Orchestrator, sound audio.System) *console {
	return &console{
		orchestrator: orchestrator,
		audio:        sound,
		quit:         func() { os.Exit(0) },
	}
}

func (c *console) run() {
	// Give repl some wrappers around stdin and stdout so that it closes those instead of stdin & stdout themselves
	commandRepl := repl.NewRepl(wrappers.NewReaderWrapper(os.Stdin), wrappers.NewWriterWrapper(os.Stdout))
	logrus.Debugln("Starting repl")
	err := commandRepl.Run(c.handle)
	switch {
	case errors.Is(err, repl.ErrQuit):
		c.quit()
	case err != nil:
		logrus.WithError(err).Warningln("Repl stopped")
	default:
		logrus.Debugln("Repl input ended")
	}
}

func (c *console) runSingle(command string, out io.Writer) {
	res, err := c.handle(strings.TrimSpace(command), nil)
	fmt.Fprintln(out, res)
	if errors.Is(err, repl.ErrQuit) {
		c.quit()
	}
}

func (c *console) handle(input string, _ *repl.Repl) (string, error) {
	var command, args string
	util.Unpack(strings.SplitN(input, " ", 2), &command, &args)
	logrus.WithFields(logrus.Fields{
		"cmd":  command,
		"args": args,
	}).Debugln("Parsed console command")

	switch command {
	case "surfaces":
		return c.surfaces(), nil
	case "workspaces":
		return c.workspaces(strings.TrimSpace(args)), nil
	case "volume":
		level, err := c.audio.Volume(0)
		if err != nil {
			return fmt.Sprintf("Volume: unreadable: %v", err), nil
		}
		return fmt.Sprintf("Volume: %d%%", level), nil
	case "redraw":
		if err := c.orchestrator.Refresh(); err != nil {
			return fmt.Sprintf("Redraw failed: %v", err), nil
		}
		return "Redrawn", nil
	case "quit":
		if err := c.orchestrator.Close(); err != nil {
			logrus.WithError(err).Warningln("Closing windows failed")
		}
		return "Quitting", repl.ErrQuit
	case "help":
		return consoleHelp, nil
	default:
		return "Unknown command", nil
	}
}

func (c *console) surfaces() string {
	surfaces := c.orchestrator.Surfaces()
	if len(surfaces) == 0 {
		return "No surfaces"
	}
	lines := make([]string, len(surfaces))
	for i, s := range surfaces {
		lines[i] = fmt.Sprintf("Surface %d: %s (width %d, window %#x)", i, s.Output, s.Width, uint32(s.Window))
	}
	return strings.Join(lines, "\n")
}

func (c *console) workspaces(output string) string {
	snap := c.orchestrator.Snapshot()
	workspaces := []ipc.Workspace(snap)
	if output != "" {
		workspaces = redraw.WorkspacesOn(snap, output)
	}
	if len(workspaces) == 0 {
		return "No workspaces"
	}
	lines := make([]string, len(workspaces))
	for i, ws := range workspaces {
		lines[i] = fmt.Sprintf("Workspace %d (%s) on %s: %s",
			ws.Num, ws.Name, ws.Output, palette.WorkspaceColor(ws.Urgent, ws.Focused, ws.Visible))
	}
	return strings.Join(lines, "\n")
}
