// Copyright 2024 The gccl Authors
// This file is part of gccl.
//
// gccl is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gccl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gccl. If not, see <http://www.gnu.org/licenses/>.

// Package errs is the error channel (C1): a closed set of container error
// codes, a per-process redirectable reporter, and formatted call-site tags.
package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jnavia/gccl/logging"
)

// Code is one member of the closed error-code set every container operation
// reports through.
type Code int

const (
	BadArg Code = -(iota + 1)
	NoMemory
	Index
	ReadOnly
	Internal
	ObjectChanged
	NotEmpty
	FileRead
	FileWrite
	Full
	AssertionFailed
	NoEnt
	FileOpen
	Incompatible
	WrongFile
	NotImplemented
	NotFound
	BadPointer
	BufferOverflow
	DivisionByZero
	WrongElement
	BadMask
)

var messages = map[Code]string{
	BadArg:          "bad argument",
	NoMemory:        "out of memory",
	Index:           "index out of range",
	ReadOnly:        "container is read-only",
	Internal:        "internal error",
	ObjectChanged:   "container was modified since the iterator was created",
	NotEmpty:        "container is not empty",
	FileRead:        "error reading from stream",
	FileWrite:       "error writing to stream",
	Full:            "container is full",
	AssertionFailed: "assertion failed",
	NoEnt:           "no such entry",
	FileOpen:        "error opening stream",
	Incompatible:    "incompatible containers",
	WrongFile:       "stream does not hold this container kind",
	NotImplemented:  "operation not implemented",
	NotFound:        "not found",
	BadPointer:      "bad pointer",
	BufferOverflow:  "buffer overflow",
	DivisionByZero:  "division by zero",
	WrongElement:    "wrong element type",
	BadMask:         "mask is incompatible with the container",
}

func (c Code) String() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return fmt.Sprintf("errs.Code(%d)", int(c))
}

// Error is the concrete error value every gccl operation returns on failure.
// It carries the closed Code, the "interface.function" call-site tag, and
// an optional cause; New wraps a non-nil cause with a stack trace via
// github.com/pkg/errors, and an Error without a cause carries no trace.
type Error struct {
	Code  Code
	Site  string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Site, e.Code, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Site, e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Code, so callers can
// write errors.Is(err, errs.New(errs.ObjectChanged, nil)) style checks
// against a sentinel built with New.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// New builds an *Error for the given code, wrapping cause (if non-nil) with
// a stack trace via pkg/errors.
func New(code Code, cause error) *Error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Code: code, cause: cause}
}

// Site formats an "interface.function" call-site tag, mirroring the C
// library's site-tag helper.
func Site(iface, function string) string {
	return iface + "." + function
}

// Reporter is invoked by Raise before a negative code is returned to the
// caller. The default Reporter logs through logging.L(); SetReporter swaps
// it, returning the previous value.
type Reporter func(site string, code Code, cause error)

var currentReporter Reporter = defaultReporter

func defaultReporter(site string, code Code, cause error) {
	if cause != nil {
		logging.L().Errorw("container error", "site", site, "code", code.String(), "cause", cause)
		return
	}
	logging.L().Errorw("container error", "site", site, "code", code.String())
}

// Silent is a Reporter that suppresses diagnostics entirely, for containers
// configured to not report to the process-wide channel.
func Silent(string, Code, error) {}

// SetReporter installs a new process-wide reporter and returns the previous
// one, so callers can restore it later.
func SetReporter(r Reporter) Reporter {
	old := currentReporter
	if r == nil {
		r = defaultReporter
	}
	currentReporter = r
	return old
}

// Raise reports the error via the current Reporter and returns the *Error
// the caller should propagate.
func Raise(site string, code Code, cause error) *Error {
	e := New(code, cause)
	e.Site = site
	currentReporter(site, code, cause)
	return e
}

// RaiseSilent builds the *Error without invoking the reporter, for call
// sites (e.g. per-container Silent error functions) that want the return
// value but not the side effect.
func RaiseSilent(site string, code Code, cause error) *Error {
	e := New(code, cause)
	e.Site = site
	return e
}
