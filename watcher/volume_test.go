// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package watcher

import (
	"errors"
	"testing"

	"github.com/mstarongithub/line/common/audio"
)

type fakeControl struct {
	card    int
	events  []audio.Event
	readErr error // Returned by every read once set
	closed  int
}

func (c *fakeControl) Card() int {
	return c.card
}

func (c *fakeControl) ReadEvent() (audio.Event, error) {
	if c.readErr != nil {
		return audio.Event{}, c.readErr
	}
	if len(c.events) == 0 {
		return audio.Event{}, errors.New("no event pending")
	}
	ev := c.events[0]
	c.events = c.events[1:]
	return ev, nil
}

func (c *fakeControl) Close() error {
	c.closed++
	return nil
}

var errDone = errors.New("done")

type fakeAudio struct {
	cards    []int
	controls map[int]*fakeControl
	openErr  map[int]error
	levels   map[uint32]int
	levelErr error
	queried  []uint32
}

func (a *fakeAudio) Cards() ([]int, error) {
	return a.cards, nil
}

func (a *fakeAudio) Open(card int) (audio.Control, error) {
	if err, ok := a.openErr[card]; ok {
		return nil, err
	}
	return a.controls[card], nil
}

// Wait hands out every control with events left, one round at a time
func (a *fakeAudio) Wait(controls []audio.Control) ([]audio.Control, error) {
	ready := []audio.Control{}
	for _, ctl := range controls {
		fake := ctl.(*fakeControl)
		if len(fake.events) > 0 || fake.readErr != nil {
			ready = append(ready, ctl)
		}
	}
	if len(ready) == 0 {
		return nil, errDone
	}
	return ready, nil
}

func (a *fakeAudio) Volume(index uint32) (int, error) {
	a.queried = append(a.queried, index)
	if a.levelErr != nil {
		return 0, a.levelErr
	}
	return a.levels[index], nil
}

func valueEvent(card int, index uint32) audio.Event {
	return audio.Event{Card: card, Type: audio.EventElem, Mask: audio.MaskValue, Index: index, Name: "Master Playback Volume"}
}

func TestVolumeWatcherRedrawsOnValueChange(t *testing.T) {
	sys := &fakeAudio{
		cards: []int{0, 1},
		controls: map[int]*fakeControl{
			0: {card: 0, events: []audio.Event{valueEvent(0, 0)}},
			1: {card: 1, events: []audio.Event{valueEvent(1, 0), valueEvent(1, 0)}},
		},
		levels: map[uint32]int{0: 42},
	}
	target := &recordingRedrawer{}
	w, err := OpenVolumeWatcher(sys, target)
	if err != nil {
		t.Fatalf("OpenVolumeWatcher failed: %s", err)
	}
	err = w.Run()
	if !errors.Is(err, errDone) {
		t.Fatalf("Expected Run to end with the wait error, got %v", err)
	}
	if len(target.levels) != 3 {
		t.Fatalf("Expected 3 redraws, got %v", target.levels)
	}
	for _, level := range target.levels {
		if level != 42 {
			t.Errorf("Redrawn with level %d, expected 42", level)
		}
	}
	for card, ctl := range sys.controls {
		if ctl.closed != 1 {
			t.Errorf("Card %d closed %d times", card, ctl.closed)
		}
	}
}

func TestVolumeWatcherIgnoresUnrelatedEvents(t *testing.T) {
	sys := &fakeAudio{
		cards: []int{0},
		controls: map[int]*fakeControl{
			0: {card: 0, events: []audio.Event{
				{Type: audio.EventElem, Mask: audio.MaskInfo, Name: "Headphone Jack"},
				{Type: audio.EventElem, Mask: audio.MaskAdd},
				{Type: audio.EventElem, Mask: audio.MaskRemove},
			}},
		},
	}
	target := &recordingRedrawer{}
	w, err := OpenVolumeWatcher(sys, target)
	if err != nil {
		t.Fatalf("OpenVolumeWatcher failed: %s", err)
	}
	_ = w.Run()
	if len(target.levels) != 0 {
		t.Errorf("Expected no redraws, got %v", target.levels)
	}
	if len(sys.queried) != 0 {
		t.Errorf("Volume read for unrelated events: %v", sys.queried)
	}
}

func TestVolumeWatcherSkipsUnreadableVolume(t *testing.T) {
	sys := &fakeAudio{
		cards:    []int{0},
		controls: map[int]*fakeControl{0: {card: 0, events: []audio.Event{valueEvent(0, 3), valueEvent(0, 3)}}},
		levelErr: errors.New("no Master element"),
	}
	target := &recordingRedrawer{}
	w, err := OpenVolumeWatcher(sys, target)
	if err != nil {
		t.Fatalf("OpenVolumeWatcher failed: %s", err)
	}
	if err := w.Run(); !errors.Is(err, errDone) {
		t.Fatalf("Expected the loop to keep going until the wait error, got %v", err)
	}
	if len(sys.queried) != 2 || sys.queried[0] != 3 {
		t.Errorf("Volume queried with %v", sys.queried)
	}
	if len(target.levels) != 0 {
		t.Errorf("Redrawn despite failed volume read: %v", target.levels)
	}
}

func TestVolumeWatcherReadFailureIsFatal(t *testing.T) {
	broken := errors.New("device gone")
	ctl := &fakeControl{card: 0, readErr: broken}
	sys := &fakeAudio{cards: []int{0}, controls: map[int]*fakeControl{0: ctl}}
	target := &recordingRedrawer{}
	w, err := OpenVolumeWatcher(sys, target)
	if err != nil {
		t.Fatalf("OpenVolumeWatcher failed: %s", err)
	}

	err = w.Run()
	var fatal *FatalError
	if !errors.As(err, &fatal) || !errors.Is(err, broken) {
		t.Fatalf("Expected a fatal read error, got %v", err)
	}
	if fatal.Watcher != "volume" {
		t.Errorf("Error attributed to the %s watcher", fatal.Watcher)
	}
	if ctl.closed != 1 {
		t.Errorf("Card closed %d times", ctl.closed)
	}
	if len(target.levels) != 0 {
		t.Errorf("Redrawn after a failed read: %v", target.levels)
	}
}

func TestOpenVolumeWatcherReleasesOnFailure(t *testing.T) {
	broken := errors.New("permission denied")
	sys := &fakeAudio{
		cards: []int{0, 1, 2},
		controls: map[int]*fakeControl{
			0: {card: 0},
			1: {card: 1},
			2: {card: 2},
		},
		openErr: map[int]error{2: broken},
	}
	if _, err := OpenVolumeWatcher(sys, &recordingRedrawer{}); !errors.Is(err, broken) {
		t.Fatalf("Expected the open failure, got %v", err)
	}
	for _, card := range []int{0, 1} {
		if got := sys.controls[card].closed; got != 1 {
			t.Errorf("Card %d closed %d times, expected once", card, got)
		}
	}
	if got := sys.controls[2].closed; got != 0 {
		t.Errorf("Unopened card closed %d times", got)
	}
}

func TestOpenVolumeWatcherNoCards(t *testing.T) {
	if _, err := OpenVolumeWatcher(&fakeAudio{}, &recordingRedrawer{}); !errors.Is(err, audio.ErrNoCards) {
		t.Errorf("Expected ErrNoCards, got %v", err)
	}
}
