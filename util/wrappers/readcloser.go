// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package wrappers gives plain readers and writers a Close that leaves the
// wrapped stream open, so the repl can stop without closing stdin or stdout
package wrappers

import (
	"errors"
	"io"
	"sync/atomic"
)

var ErrClosed = errors.New("closed")

type ReaderWrapper struct {
	closed  atomic.Bool
	wrapped io.Reader
}

func NewReaderWrapper(wraps io.Reader) *ReaderWrapper {
	return &ReaderWrapper{wrapped: wraps}
}

// Close implements repl.ReadCloser. Safe to call from any goroutine, more than once
func (r *ReaderWrapper) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *ReaderWrapper) Closed() bool {
	return r.closed.Load()
}

// Read implements repl.ReadCloser.
// A read already blocked in the wrapped reader is not interrupted by Close
func (r *ReaderWrapper) Read(p []byte) (n int, err error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	return r.wrapped.Read(p)
}
