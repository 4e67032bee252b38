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

// Package observer is the process-wide observer registry (C6): containers
// publish mutation events here when their HAS_OBSERVER flag is set.
package observer

import "reflect"

// Event is the bit mask of mutation kinds a subscriber can select.
type Event uint32

const (
	Add Event = 1 << iota
	AddRange
	EraseAt
	Clear
	Finalize
	Push
	Pop
	Replace
	ReplaceAt
	Insert
	InsertAt
	InsertIn
	Append
	Copy
)

// Aggregate masks, per §4.6.
const (
	Additions = Add | AddRange | Push | Insert | InsertAt | InsertIn | Append
	Deletions = EraseAt | Pop | Clear | Finalize
	Modify    = Additions | Deletions | Replace | ReplaceAt | Copy
)

// Callback is invoked on a matching notification with the subject, the
// triggering event, and up to two event-specific extras (e.g. index,
// value).
type Callback func(subject any, event Event, extra1, extra2 any)

type subscription struct {
	subject  any // nil means "all subjects"
	callback Callback
	mask     Event
}

var table = make([]subscription, 0, 25)

// Subscribe registers callback against subject (nil for every subject) for
// the event kinds in mask.
func Subscribe(subject any, callback Callback, mask Event) {
	table = append(table, subscription{subject: subject, callback: callback, mask: mask})
}

// Unsubscribe removes matching subscriptions. A nil subject means "every
// subject registered for that callback"; a nil callback means "every
// callback registered for that subject".
func Unsubscribe(subject any, callback Callback) {
	out := table[:0]
	for _, s := range table {
		subjectMatches := subject == nil || s.subject == subject
		callbackMatches := callback == nil || sameFunc(s.callback, callback)
		if subjectMatches && callbackMatches {
			continue
		}
		out = append(out, s)
	}
	table = out
}

// Notify invokes every callback whose subject matches and whose mask
// selects op, returning the number of invocations.
func Notify(subject any, op Event, extra1, extra2 any) int {
	n := 0
	for _, s := range table {
		if s.subject != nil && s.subject != subject {
			continue
		}
		if s.mask&op == 0 {
			continue
		}
		s.callback(subject, op, extra1, extra2)
		n++
	}
	return n
}

// sameFunc compares callbacks by entry point, the usual Go idiom for
// identity-comparing func values (it will over-match distinct closures
// sharing one function literal, a known limitation of comparing funcs this
// way).
func sameFunc(a, b Callback) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Reset clears the registry. Test suites call this between cases so
// subscriptions from one test don't leak into the next (§9).
func Reset() { table = table[:0] }
