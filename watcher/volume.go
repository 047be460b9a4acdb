// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package watcher

import (
	"errors"
	"fmt"

	"github.com/mstarongithub/line/common/audio"
	"github.com/sirupsen/logrus"
)

type VolumeRedrawer interface {
	RedrawVolume(level int) error
}

// VolumeWatcher redraws the volume bar whenever a mixer value changes
// on any of the cards present at startup
type VolumeWatcher struct {
	system   audio.System
	target   VolumeRedrawer
	controls []audio.Control
}

// OpenVolumeWatcher opens and subscribes to every card.
// If one card fails, the ones already opened are closed again.
func OpenVolumeWatcher(system audio.System, target VolumeRedrawer) (*VolumeWatcher, error) {
	cards, err := system.Cards()
	if err != nil {
		return nil, fmt.Errorf("listing sound cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, audio.ErrNoCards
	}

	w := &VolumeWatcher{system: system, target: target}
	for _, card := range cards {
		ctl, err := system.Open(card)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("opening card %d: %w", card, err)
		}
		w.controls = append(w.controls, ctl)
	}
	logrus.WithField("cards", cards).Debugln("Watching sound cards")
	return w, nil
}

// Run waits for control events and redraws on value changes.
// Returns a *FatalError once waiting or reading fails. Closes all cards on return.
func (w *VolumeWatcher) Run() error {
	defer w.Close()
	for {
		ready, err := w.system.Wait(w.controls)
		if err != nil {
			return &FatalError{Watcher: "volume", Op: "waiting for events", Err: err}
		}
		for _, ctl := range ready {
			ev, err := ctl.ReadEvent()
			if err != nil {
				return &FatalError{Watcher: "volume", Op: fmt.Sprintf("reading event from card %d", ctl.Card()), Err: err}
			}
			w.handle(ev)
		}
	}
}

func (w *VolumeWatcher) handle(ev audio.Event) {
	if !ev.ValueChanged() {
		return
	}
	logrus.WithField("event", ev).Debugln("Sound event")

	level, err := w.system.Volume(ev.Index)
	if err != nil {
		logrus.WithError(err).WithField("event", ev).Warningln("Cannot get audio volume")
		return
	}
	logrus.WithField("volume", level).Debugln("Volume changed")
	if err := w.target.RedrawVolume(level); err != nil {
		logrus.WithError(err).Warningln("Volume redraw failed")
	}
}

// Close closes every opened card. Safe to call more than once
func (w *VolumeWatcher) Close() error {
	var errs []error
	for _, ctl := range w.controls {
		if err := ctl.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing card %d: %w", ctl.Card(), err))
		}
	}
	w.controls = nil
	return errors.Join(errs...)
}
