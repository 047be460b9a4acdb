// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package layout splits a line into workspace slots.
package layout

// Guards against absurd id ranges (e.g. -2^31 and 2^31 on one output)
// that would otherwise allocate billions of zero width slots.
const MaxSlots = 1 << 16

// A Slot is the horizontal span of one workspace number on a line
type Slot struct {
	ID    int64 // Workspace number this slot stands for
	X     int   // Start position in pixels
	Width int   // Width in pixels, never negative
}

// Compute lays out one slot per workspace number between the smallest and
// largest id, including numbers that are not in ids.
// All slots get width/count pixels, the last one takes whatever is left.
// A non-zero border shifts every following slot by that many pixels,
// the last slot still ends at width.
func Compute(ids []int64, width, border int) []Slot {
	if len(ids) == 0 || width <= 0 {
		return nil
	}
	minID, maxID := ids[0], ids[0]
	for _, id := range ids[1:] {
		if id < minID {
			minID = id
		}
		if id > maxID {
			maxID = id
		}
	}

	count := maxID - minID + 1
	if count <= 0 || count > MaxSlots {
		return nil
	}
	if border < 0 {
		border = 0
	}

	n := int(count)
	base := width / n
	slots := make([]Slot, n)
	pos := 0
	for i := 0; i < n; i++ {
		w := base
		if i == n-1 {
			w = max(width-pos, 0)
		}
		slots[i] = Slot{ID: minID + int64(i), X: pos, Width: w}
		pos += w + border
	}
	return slots
}

// Index returns the position of the slot for id, or -1 if id is outside the range
func Index(slots []Slot, id int64) int {
	if len(slots) == 0 {
		return -1
	}
	i := id - slots[0].ID
	if i < 0 || i >= int64(len(slots)) {
		return -1
	}
	return int(i)
}

// VolumeBarWidth is the filled part of a line of the given width at level percent.
// Levels outside 0-100 are clamped.
func VolumeBarWidth(width, level int) int {
	level = min(max(level, 0), 100)
	return width * level / 100
}
