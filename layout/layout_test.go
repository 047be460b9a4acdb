// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package layout

import (
	"reflect"
	"testing"
)

func sumWithBorders(slots []Slot, border int) int {
	total := 0
	for _, s := range slots {
		total += s.Width
	}
	if len(slots) > 1 {
		total += (len(slots) - 1) * border
	}
	return total
}

func TestComputeEmpty(t *testing.T) {
	if slots := Compute(nil, 300, 0); len(slots) != 0 {
		t.Errorf("Expected no slots for empty id set, got %v", slots)
	}
	if slots := Compute([]int64{1}, 0, 0); len(slots) != 0 {
		t.Errorf("Expected no slots for zero width, got %v", slots)
	}
}

func TestComputeFillsWidth(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int64
		width  int
		border int
	}{
		{"single", []int64{3}, 300, 0},
		{"contiguous", []int64{1, 2, 3}, 1000, 0},
		{"remainder", []int64{1, 2, 3}, 100, 0},
		{"sparse", []int64{2, 5}, 400, 0},
		{"negative", []int64{-3, 4}, 1919, 0},
		{"unordered", []int64{10, -1, 4, 7}, 1366, 0},
		{"border", []int64{1, 2, 3, 4}, 400, 2},
		{"border remainder", []int64{1, 2, 3}, 1001, 1},
		{"width equals count", []int64{0, 9}, 10, 0},
	}

	for _, tt := range tests {
		slots := Compute(tt.ids, tt.width, tt.border)
		minID, maxID := tt.ids[0], tt.ids[0]
		for _, id := range tt.ids {
			minID = min(minID, id)
			maxID = max(maxID, id)
		}
		if int64(len(slots)) != maxID-minID+1 {
			t.Errorf("%s: expected %d slots, got %d", tt.name, maxID-minID+1, len(slots))
			continue
		}
		if got := sumWithBorders(slots, tt.border); got != tt.width {
			t.Errorf("%s: slots and borders sum to %d, expected %d", tt.name, got, tt.width)
		}
		for i, s := range slots {
			if s.Width < 0 {
				t.Errorf("%s: slot %d has negative width %d", tt.name, i, s.Width)
			}
			if s.ID != minID+int64(i) {
				t.Errorf("%s: slot %d has id %d, expected %d", tt.name, i, s.ID, minID+int64(i))
			}
			if i > 0 && s.X != slots[i-1].X+slots[i-1].Width+tt.border {
				t.Errorf("%s: slot %d starts at %d, expected %d", tt.name, i, s.X, slots[i-1].X+slots[i-1].Width+tt.border)
			}
		}
	}
}

func TestComputeLastSlotTakesRemainder(t *testing.T) {
	slots := Compute([]int64{1, 2, 3}, 100, 0)
	want := []Slot{{ID: 1, X: 0, Width: 33}, {ID: 2, X: 33, Width: 33}, {ID: 3, X: 66, Width: 34}}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("Expected %v, got %v", want, slots)
	}
}

func TestComputeSparseIds(t *testing.T) {
	slots := Compute([]int64{2, 5}, 400, 0)
	want := []Slot{{2, 0, 100}, {3, 100, 100}, {4, 200, 100}, {5, 300, 100}}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("Expected %v, got %v", want, slots)
	}
}

func TestComputeDeterministic(t *testing.T) {
	ids := []int64{7, -2, 3}
	first := Compute(ids, 1280, 1)
	for i := 0; i < 10; i++ {
		if again := Compute(ids, 1280, 1); !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestComputeHugeBorderNeverNegative(t *testing.T) {
	slots := Compute([]int64{1, 2, 3}, 30, 50)
	for i, s := range slots {
		if s.Width < 0 {
			t.Errorf("Slot %d has negative width %d", i, s.Width)
		}
	}
}

func TestComputeRangeTooLarge(t *testing.T) {
	if slots := Compute([]int64{-1 << 40, 1 << 40}, 1920, 0); slots != nil {
		t.Errorf("Expected no slots for an oversized range, got %d", len(slots))
	}
}

func TestIndex(t *testing.T) {
	slots := Compute([]int64{2, 5}, 400, 0)
	for id, want := range map[int64]int{1: -1, 2: 0, 4: 2, 5: 3, 6: -1} {
		if got := Index(slots, id); got != want {
			t.Errorf("Index(%d) = %d, expected %d", id, got, want)
		}
	}
	if got := Index(nil, 1); got != -1 {
		t.Errorf("Index on empty layout = %d, expected -1", got)
	}
}

func TestVolumeBarWidth(t *testing.T) {
	tests := []struct{ width, level, want int }{
		{1000, 37, 370},
		{1000, 0, 0},
		{1000, 100, 1000},
		{1366, 50, 683},
		{300, 150, 300},
		{300, -5, 0},
	}
	for _, tt := range tests {
		if got := VolumeBarWidth(tt.width, tt.level); got != tt.want {
			t.Errorf("VolumeBarWidth(%d, %d) = %d, expected %d", tt.width, tt.level, got, tt.want)
		}
	}
}
