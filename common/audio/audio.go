// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package audio holds the control event model and volume math
package audio

import (
	"errors"
	"fmt"
)

var (
	ErrNoCards  = errors.New("no sound card found")
	ErrBadRange = errors.New("invalid volume range")
)

type EventType uint32

const (
	EventElem = EventType(0)
)

const (
	MaskValue = uint32(1 << 0)
	MaskInfo  = uint32(1 << 1)
	MaskAdd   = uint32(1 << 2)
	MaskTLV   = uint32(1 << 3)
	// Element got removed. All other bits are meaningless then
	MaskRemove = ^uint32(0)
)

// A control event read from one card
type Event struct {
	Card  int
	Type  EventType
	Mask  uint32
	NumID uint32
	Iface int32
	Name  string
	Index uint32
}

// ValueChanged reports whether the event says an element value changed
func (e Event) ValueChanged() bool {
	return e.Type == EventElem && e.Mask != MaskRemove && e.Mask&MaskValue != 0
}

func (e Event) String() string {
	return fmt.Sprintf("card %d, #%d (%d,%q,%d) mask %#x", e.Card, e.NumID, e.Iface, e.Name, e.Index, e.Mask)
}

// Level converts a raw reading into 0-100
func Level(raw, minRaw, maxRaw int64) (int, error) {
	if maxRaw <= minRaw {
		return 0, fmt.Errorf("%w: %d..%d", ErrBadRange, minRaw, maxRaw)
	}
	level := 100 * (raw - minRaw) / (maxRaw - minRaw)
	return int(min(max(level, 0), 100)), nil
}

// Control is an opened, subscribed control handle for one card
type Control interface {
	Card() int
	ReadEvent() (Event, error)
	Close() error
}

// System is the audio subsystem the volume watcher listens to
type System interface {
	// Cards lists card numbers present right now
	Cards() ([]int, error)
	// Open opens and subscribes to one card
	Open(card int) (Control, error)
	// Wait blocks until at least one control has a pending event and returns those
	Wait(controls []Control) ([]Control, error)
	// Volume reads the level of the configured mixer element with the given index
	Volume(index uint32) (int, error)
}
