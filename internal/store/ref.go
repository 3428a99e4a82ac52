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

// CRef is a byte offset of a component record in the CFile, or NoCRef.
// SRef is a byte offset of a specification record in the SFile, or NoSRef.
//
// These are distinct types so the two address spaces (component offsets and
// spec offsets) can never be mixed up by the compiler, per the intrusive
// linked-list design note.
type CRef int32

// SRef is a byte offset of a specification record in the SFile, or NoSRef.
type SRef int32

// NoCRef is the sentinel for "no component", used by the sorted list's tail
// and by the CFile head of an empty list.
const NoCRef CRef = -1

// NoSRef is the sentinel for "no spec", used by an empty child list and the
// tail of a per-parent spec chain.
const NoSRef SRef = -1

// Valid reports whether r addresses a record rather than being a sentinel.
func (r CRef) Valid() bool { return r != NoCRef }

// Valid reports whether r addresses a record rather than being a sentinel.
func (r SRef) Valid() bool { return r != NoSRef }
