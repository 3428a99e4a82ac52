// Copyright 2026 The Partsdb Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import "fmt"

// Kind distinguishes the error conditions callers need to react to
// differently. See spec.md §7.
type Kind int

const (
	// KindNotOpen is returned for any operation attempted before Create or
	// Open has succeeded.
	KindNotOpen Kind = iota
	// KindNotFound is returned when a file is missing on Open, or a named
	// component or spec does not exist.
	KindNotFound
	// KindFormatError is returned on signature mismatch or a truncated
	// record.
	KindFormatError
	// KindInvalidArgument is returned for name_len < 4, an empty name,
	// qty < 1, or an unknown type letter.
	KindInvalidArgument
	// KindDuplicate is returned when adding a component whose name matches
	// any existing record, active or deleted.
	KindDuplicate
	// KindTypeRule is returned for a spec operation on a Detail parent.
	KindTypeRule
	// KindReferenceIntegrity is returned when deleting a component that is
	// still referenced by another component's active specs.
	KindReferenceIntegrity
	// KindCycleDetected is returned when adding a spec would create a cycle
	// in the parent/child graph.
	KindCycleDetected
	// KindCorruption is returned when the on-disk structures themselves are
	// inconsistent (a cycle in the sorted CFile list, a dangling comp_off).
	KindCorruption
)

func (k Kind) String() string {
	switch k {
	case KindNotOpen:
		return "not open"
	case KindNotFound:
		return "not found"
	case KindFormatError:
		return "format error"
	case KindInvalidArgument:
		return "invalid argument"
	case KindDuplicate:
		return "duplicate"
	case KindTypeRule:
		return "type rule violation"
	case KindReferenceIntegrity:
		return "reference integrity"
	case KindCycleDetected:
		return "cycle detected"
	case KindCorruption:
		return "corruption"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every exported store operation. Op
// names the failing operation (e.g. "AddComponent"); Err, when set, is the
// underlying cause (an I/O error, say).
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, store.ErrNotFound) against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func wrapErr(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Sentinels for errors.Is comparisons; only Kind is significant on these.
var (
	ErrNotOpen            = &Error{Kind: KindNotOpen}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrFormat             = &Error{Kind: KindFormatError}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrDuplicate          = &Error{Kind: KindDuplicate}
	ErrTypeRule           = &Error{Kind: KindTypeRule}
	ErrReferenceIntegrity = &Error{Kind: KindReferenceIntegrity}
	ErrCycleDetected      = &Error{Kind: KindCycleDetected}
	ErrCorruption         = &Error{Kind: KindCorruption}
)
