// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Returned by a handler to end the repl after its answer got written
var ErrQuit = errors.New("quit")

type MessageHandler func(string, *Repl) (string, error)

// ReadCloser combines the Reader and Closer interfaces
type ReadCloser interface {
	io.Reader
	io.Closer
}

type Repl struct {
	Input   ReadCloser
	Output  io.WriteCloser
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

// Creates a new repl
// If no input is given, stdin will be used
// If no output is given, stdout will be used
// Note: The given reader and writer will be closed if the repl is started and then stops
func NewRepl(in ReadCloser, out io.WriteCloser) Repl {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return Repl{
		Input:   in,
		Output:  out,
		scanner: bufio.NewScanner(in),
		writer:  bufio.NewWriter(out),
	}
}

// Starts the repl
// Blocks execution until the input ends or the handler asks to quit
// Blank lines are skipped, everything else is passed to the handler with surrounding space trimmed
// Any handler error other than ErrQuit is returned wrapped, the answer is dropped then
func (r *Repl) Run(onMessage MessageHandler) error {
	defer r.Close()
	for r.scanner.Scan() {
		newMessage := strings.TrimSpace(r.scanner.Text())
		if newMessage == "" {
			continue
		}
		res, err := onMessage(newMessage, r)
		if err != nil && !errors.Is(err, ErrQuit) {
			return fmt.Errorf("message handler errored out on message \"%s\": %w", newMessage, err)
		}
		if werr := r.write(res); werr != nil {
			return werr
		}
		if err != nil {
			return err
		}
	}
	return r.scanner.Err()
}

func (r *Repl) write(res string) error {
	if _, err := r.writer.WriteString(res + "\n"); err != nil {
		return fmt.Errorf("failed to write result \"%s\": %w", res, err)
	}
	if err := r.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// Close stops the repl if it was still running
// This will also close the reader and writer
func (r *Repl) Close() error {
	return errors.Join(r.Input.Close(), r.Output.Close())
}
