// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package audio

import (
	"errors"
	"testing"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		raw, min, max int64
		want          int
	}{
		{0, 0, 100, 0},
		{37, 0, 100, 37},
		{100, 0, 100, 100},
		{32, 0, 64, 50},
		{-20, -40, 0, 50},
		{87, 0, 87, 100},
		{200, 0, 100, 100},
	}
	for _, tt := range tests {
		got, err := Level(tt.raw, tt.min, tt.max)
		if err != nil {
			t.Errorf("Level(%d, %d, %d) failed: %s", tt.raw, tt.min, tt.max, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Level(%d, %d, %d) = %d, expected %d", tt.raw, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestLevelBadRange(t *testing.T) {
	if _, err := Level(5, 10, 10); !errors.Is(err, ErrBadRange) {
		t.Errorf("Expected ErrBadRange, got %v", err)
	}
}

func TestValueChanged(t *testing.T) {
	tests := []struct {
		ev   Event
		want bool
	}{
		{Event{Type: EventElem, Mask: MaskValue}, true},
		{Event{Type: EventElem, Mask: MaskValue | MaskInfo}, true},
		{Event{Type: EventElem, Mask: MaskInfo}, false},
		{Event{Type: EventElem, Mask: MaskRemove}, false},
		{Event{Type: EventType(7), Mask: MaskValue}, false},
	}
	for _, tt := range tests {
		if got := tt.ev.ValueChanged(); got != tt.want {
			t.Errorf("%s: ValueChanged() = %v, expected %v", tt.ev, got, tt.want)
		}
	}
}
