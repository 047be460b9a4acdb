// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/mstarongithub/line/backend/alsa"
	"github.com/mstarongithub/line/backend/i3"
	"github.com/mstarongithub/line/backend/x11"
	"github.com/mstarongithub/line/common/ipc"
	"github.com/mstarongithub/line/config"
	"github.com/mstarongithub/line/layout"
	"github.com/mstarongithub/line/palette"
	"github.com/mstarongithub/line/redraw"
	"github.com/mstarongithub/line/surface"
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

var (
	utilAction *string = flag.String(
		"action",
		"outputs",
		"The action to perform in tool mode. Can be one of:"+
			"\n\t- outputs: List available outputs"+
			"\n\t- workspaces: Show the workspace layout per output"+
			"\n\t- volume: Print the current volume",
	)
	outputSelection *string = flag.String(
		"output",
		"",
		"Only show this output for -action outputs and workspaces",
	)
)

func utilMain(conf *config.Config) {
	if *help {
		utilHelpMessage()
		return
	}

	switch *utilAction {
	case "outputs":
		for _, line := range describeOutputs(toolOutputs()) {
			fmt.Println(line)
		}
	case "workspaces":
		outputs := toolOutputs()
		snap, err := i3.New(conf.IPCSocket).Workspaces()
		if err != nil {
			logrus.WithError(err).Fatal("fetching workspaces")
		}
		for _, line := range describeWorkspaces(outputs, snap, conf.BorderWidth) {
			fmt.Println(line)
		}
	case "volume":
		level, err := alsa.New(conf.MixerCard, conf.MixerElement).Volume(0)
		if err != nil {
			logrus.WithError(err).Fatal("reading volume")
		}
		fmt.Printf("Volume of %q on card %d: %d%%\n", conf.MixerElement, conf.MixerCard, level)
	default:
		fmt.Printf("Unknown action %q\n", *utilAction)
		utilHelpMessage()
	}
}

func utilHelpMessage() {
	fmt.Println("---- Help message for line in tool mode ----")
	fmt.Println("\nIn tool mode, line offers various tools for figuring out configurations and similar")
	fmt.Println("\nGeneral flags:")
	fmt.Println("\t-config: Path to the config file. Default is $XDG_CONFIG_HOME/" + config.DefaultPath)
	fmt.Println("\t-tool: Start as a tool instead of drawing the line")
	fmt.Println("\t-help: Show this help message (or the one for normal mode if -tool is not set)")
	fmt.Println("\nTool flags:")
	fmt.Println("\t-action: The action to perform. Can be one of:")
	fmt.Println("\t\t- (default) outputs: List available outputs")
	fmt.Println("\t\t- workspaces: Show each output's workspace slots and colours")
	fmt.Println("\t\t- volume: Print the current volume of the configured mixer element")
	fmt.Println("\t-output: Restrict outputs and workspaces to one output")
}

// toolOutputs lists the display's outputs, restricted to -output if given
func toolOutputs() []surface.Output {
	display, err := x11.Connect()
	if err != nil {
		logrus.WithError(err).Fatal("connecting to display")
	}
	defer display.Close()
	outputs, err := display.Outputs()
	if err != nil {
		logrus.WithError(err).Fatal("listing outputs")
	}
	outputs = selectOutputs(outputs, *outputSelection)
	if len(outputs) == 0 {
		logrus.WithField("output", *outputSelection).Fatal("no matching output")
	}
	return outputs
}

func selectOutputs(outputs []surface.Output, name string) []surface.Output {
	if name == "" {
		return outputs
	}
	return sliceutils.Filter(outputs, func(output surface.Output) bool {
		return output.Name == name
	})
}

func describeOutputs(outputs []surface.Output) []string {
	lines := make([]string, len(outputs))
	for i, output := range outputs {
		lines[i] = fmt.Sprintf("Output %v: %s at %d,%d, width %d", i, output.Name, output.X, output.Y, output.Width)
	}
	return lines
}

// describeWorkspaces renders the slot layout each output would get for snap
func describeWorkspaces(outputs []surface.Output, snap ipc.Snapshot, border int) []string {
	lines := []string{}
	for _, output := range outputs {
		workspaces := redraw.WorkspacesOn(snap, output.Name)
		lines = append(lines, fmt.Sprintf("Output %s:", output.Name))
		if len(workspaces) == 0 {
			lines = append(lines, "\t(no workspaces)")
			continue
		}
		ids := make([]int64, len(workspaces))
		for i, ws := range workspaces {
			ids[i] = ws.Num
		}
		slots := layout.Compute(ids, output.Width, border)
		for _, ws := range workspaces {
			i := layout.Index(slots, ws.Num)
			if i < 0 {
				continue
			}
			slot := slots[i]
			color := palette.WorkspaceColor(ws.Urgent, ws.Focused, ws.Visible)
			lines = append(lines, fmt.Sprintf("\t- %d %s: x %d, width %d, %s",
				ws.Num, strings.TrimSpace(ws.Name), slot.X, slot.Width, color))
		}
	}
	return lines
}
