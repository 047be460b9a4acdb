// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package watcher turns window manager and audio notifications into redraws
package watcher

import "fmt"

// FatalError ends a watcher loop. Errors for a single event are logged
// and never surface as FatalError.
type FatalError struct {
	Watcher string
	Op      string
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s watcher: %s: %s", e.Watcher, e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
