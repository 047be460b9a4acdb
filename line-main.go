// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"os"

	"github.com/mstarongithub/line/backend/alsa"
	"github.com/mstarongithub/line/backend/i3"
	"github.com/mstarongithub/line/backend/x11"
	"github.com/mstarongithub/line/config"
	"github.com/mstarongithub/line/redraw"
	"github.com/mstarongithub/line/surface"
	"github.com/mstarongithub/line/watcher"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// lineMain sets up every collaborator on the calling goroutine, then runs
// both watchers until they have both stopped.
// Any failure before the watchers start is fatal.
func lineMain(conf *config.Config) {
	pal, err := conf.ResolvePalette()
	if err != nil {
		logrus.WithError(err).Fatal("resolving palette")
	}

	display, err := x11.Connect()
	if err != nil {
		logrus.WithError(err).Fatal("connecting to display")
	}
	registry, err := surface.NewRegistry(display, conf.LineHeight, pal)
	if err != nil {
		display.Close()
		logrus.WithError(err).Fatal("creating line windows")
	}
	orchestrator := redraw.New(registry, conf.BorderWidth)

	sound := alsa.New(conf.MixerCard, conf.MixerElement)
	volumeWatcher, err := watcher.OpenVolumeWatcher(sound, orchestrator)
	if err != nil {
		orchestrator.Close()
		logrus.WithError(err).Fatal("opening sound cards")
	}

	wm := i3.New(conf.IPCSocket)
	if err := wm.Connect(); err != nil {
		volumeWatcher.Close()
		orchestrator.Close()
		logrus.WithError(err).Fatal("connecting to window manager")
	}
	workspaceWatcher := watcher.NewWorkspaceWatcher(wm, orchestrator, conf.FullscreenExitOnly)

	// No shared context, one watcher dying leaves the other running
	group := errgroup.Group{}
	group.Go(func() error {
		err := workspaceWatcher.Run()
		logrus.WithError(err).Errorln("Workspace watcher stopped")
		return err
	})
	group.Go(func() error {
		err := volumeWatcher.Run()
		logrus.WithError(err).Errorln("Volume watcher stopped")
		return err
	})

	cons := newConsole(orchestrator, sound)
	switch conf.StartType {
	case config.START_REPL:
		go cons.run()
	case config.START_SINGLE_COMMAND:
		cons.runSingle(*conf.StartCommand, os.Stdout)
	}

	err = group.Wait()
	orchestrator.Close()
	if err != nil {
		logrus.WithError(err).Fatal("line stopped")
	}
}
