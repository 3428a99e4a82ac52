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

import (
	"context"
	"sort"
	"strings"
)

// Component is a listing-friendly view of a CFile record: just what callers
// need to display or key off of.
type Component struct {
	Name string
	Type Type
}

// foundComponent pairs a decoded record with its CFile offset.
type foundComponent struct {
	Off CRef
	Rec componentRecord
}

// forEachComponent walks every record slot in the CFile data region,
// active or deleted, in storage order (not sorted-list order).
func (e *Engine) forEachComponent(fn func(off CRef, rec componentRecord) error) error {
	size := int32(e.componentRecordSize())
	for off := int32(cfileHeaderSize); off < e.cFree; off += size {
		rec, err := e.readComponent(CRef(off))
		if err != nil {
			return err
		}
		if err := fn(CRef(off), rec); err != nil {
			return err
		}
	}
	return nil
}

func normalizeName(op, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", newErr(KindInvalidArgument, op, "name must not be empty")
	}
	return trimmed, nil
}

func validType(t Type) bool {
	switch t {
	case Product, Assembly, Detail:
		return true
	default:
		return false
	}
}

// findAny returns the first record (active or deleted) whose trimmed name
// matches name case-insensitively.
func (e *Engine) findAny(name string) (foundComponent, bool, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	var found foundComponent
	ok := false
	err := e.forEachComponent(func(off CRef, rec componentRecord) error {
		if !ok && strings.ToLower(rec.Name) == key {
			found = foundComponent{Off: off, Rec: rec}
			ok = true
		}
		return nil
	})
	return found, ok, err
}

// findActive is like findAny but additionally requires the record to be
// active.
func (e *Engine) findActive(name string) (foundComponent, bool, error) {
	found, ok, err := e.findAny(name)
	if err != nil || !ok || found.Rec.Deleted {
		return foundComponent{}, false, err
	}
	return found, true, nil
}

// AddComponent creates a new component. name is trimmed; it is rejected if
// empty, if any record (active or deleted) already has this name, or if typ
// isn't one of Product/Assembly/Detail.
func (e *Engine) AddComponent(ctx context.Context, name string, typ Type) error {
	const op = "AddComponent"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}
	name, err := normalizeName(op, name)
	if err != nil {
		return err
	}
	if !validType(typ) {
		return newErr(KindInvalidArgument, op, "unknown component type")
	}
	if _, ok, ferr := e.findAny(name); ferr != nil {
		return ferr
	} else if ok {
		return newErr(KindDuplicate, op, "component name already exists")
	}

	off, err := e.appendComponent(componentRecord{
		Deleted:   false,
		FirstSpec: NoSRef,
		Next:      NoCRef,
		Type:      typ,
		Name:      name,
	})
	if err != nil {
		return wrapErr(KindFormatError, op, "writing record", err)
	}
	if err := e.sortedInsert(off, name); err != nil {
		return err
	}

	e.log.InfoContext(ctx, "added component", "name", name, "type", typ.String())
	return nil
}

// sortedInsert splices the record at off into the CFile's case-insensitive
// sorted list. See spec.md §4.3.1.
func (e *Engine) sortedInsert(off CRef, name string) error {
	key := strings.ToLower(name)

	if e.cHead == NoCRef {
		e.cHead = off
		return e.writeCFileHeaderLocked()
	}

	prev, cur := NoCRef, e.cHead
	for cur != NoCRef {
		curRec, err := e.readComponent(cur)
		if err != nil {
			return err
		}
		if strings.ToLower(curRec.Name) > key {
			break
		}
		prev = cur
		cur = curRec.Next
	}

	rec, err := e.readComponent(off)
	if err != nil {
		return err
	}
	rec.Next = cur
	if err := e.writeComponent(off, rec); err != nil {
		return err
	}

	if prev == NoCRef {
		e.cHead = off
		return e.writeCFileHeaderLocked()
	}
	prevRec, err := e.readComponent(prev)
	if err != nil {
		return err
	}
	prevRec.Next = off
	return e.writeComponent(prev, prevRec)
}

// rebuildSortedList recomputes the CFile sorted list from scratch over the
// currently active records. See spec.md §4.3.2.
func (e *Engine) rebuildSortedList() error {
	var active []foundComponent
	if err := e.forEachComponent(func(off CRef, rec componentRecord) error {
		if !rec.Deleted {
			active = append(active, foundComponent{Off: off, Rec: rec})
		}
		return nil
	}); err != nil {
		return err
	}

	sort.SliceStable(active, func(i, j int) bool {
		return strings.ToLower(active[i].Rec.Name) < strings.ToLower(active[j].Rec.Name)
	})

	for i, fc := range active {
		next := NoCRef
		if i+1 < len(active) {
			next = active[i+1].Off
		}
		fc.Rec.Next = next
		if err := e.writeComponent(fc.Off, fc.Rec); err != nil {
			return err
		}
	}

	if len(active) == 0 {
		e.cHead = NoCRef
	} else {
		e.cHead = active[0].Off
	}
	return e.writeCFileHeaderLocked()
}

// ListComponents walks the sorted list and returns every active component in
// order. A cycle in the sorted list (which should never occur) surfaces as
// KindCorruption rather than looping forever.
func (e *Engine) ListComponents(ctx context.Context) ([]Component, error) {
	const op = "ListComponents"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return nil, err
	}

	var out []Component
	seen := make(map[CRef]bool)
	for cur := e.cHead; cur != NoCRef; {
		if seen[cur] {
			return nil, newErr(KindCorruption, op, "cycle in sorted component list")
		}
		seen[cur] = true
		rec, err := e.readComponent(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, Component{Name: rec.Name, Type: rec.Type})
		cur = rec.Next
	}
	return out, nil
}

// DeleteComponent logically deletes an active component and cascades the
// deletion to every spec on its chain. It fails with KindReferenceIntegrity
// if any other active component still has an active spec pointing at this
// one.
func (e *Engine) DeleteComponent(ctx context.Context, name string) error {
	const op = "DeleteComponent"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}
	name, err := normalizeName(op, name)
	if err != nil {
		return err
	}
	target, ok, err := e.findActive(name)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindNotFound, op, "component not found")
	}

	referenced, err := e.isReferenced(target.Off)
	if err != nil {
		return err
	}
	if referenced {
		return newErr(KindReferenceIntegrity, op, "component is referenced by another component's spec")
	}

	target.Rec.Deleted = true
	if err := e.writeComponent(target.Off, target.Rec); err != nil {
		return err
	}

	if err := e.deleteSpecChain(target.Rec.FirstSpec); err != nil {
		return err
	}
	if err := e.rebuildSortedList(); err != nil {
		return err
	}

	e.log.InfoContext(ctx, "deleted component", "name", name)
	return nil
}

// isReferenced reports whether any active component other than target has
// an active spec whose comp_off is target.
func (e *Engine) isReferenced(target CRef) (bool, error) {
	found := false
	err := e.forEachComponent(func(off CRef, rec componentRecord) error {
		if found || rec.Deleted || off == target {
			return nil
		}
		for cur := rec.FirstSpec; cur != NoSRef; {
			s, err := e.readSpec(cur)
			if err != nil {
				return err
			}
			if !s.Deleted {
				if !e.validComponentOffset(s.CompOff) {
					return newErr(KindCorruption, "isReferenced", "spec comp_off is dangling")
				}
				if s.CompOff == target {
					found = true
					return nil
				}
			}
			cur = s.Next
		}
		return nil
	})
	return found, err
}

// deleteSpecChain marks every spec on the chain rooted at head as deleted,
// regardless of each spec's prior state.
func (e *Engine) deleteSpecChain(head SRef) error {
	for cur := head; cur != NoSRef; {
		s, err := e.readSpec(cur)
		if err != nil {
			return err
		}
		s.Deleted = true
		if err := e.writeSpec(cur, s); err != nil {
			return err
		}
		cur = s.Next
	}
	return nil
}

// restoreSpecChain clears deleted on every spec on the chain rooted at
// head, unconditionally (see spec.md §9 Open Question on restore_one).
func (e *Engine) restoreSpecChain(head SRef) error {
	for cur := head; cur != NoSRef; {
		s, err := e.readSpec(cur)
		if err != nil {
			return err
		}
		s.Deleted = false
		if err := e.writeSpec(cur, s); err != nil {
			return err
		}
		cur = s.Next
	}
	return nil
}

// RestoreOne clears deleted on the named component and unconditionally on
// every spec in its chain, then rebuilds the sorted list.
func (e *Engine) RestoreOne(ctx context.Context, name string) error {
	const op = "RestoreOne"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}
	name, err := normalizeName(op, name)
	if err != nil {
		return err
	}
	found, ok, err := e.findAny(name)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindNotFound, op, "component not found")
	}

	found.Rec.Deleted = false
	if err := e.writeComponent(found.Off, found.Rec); err != nil {
		return err
	}
	if err := e.restoreSpecChain(found.Rec.FirstSpec); err != nil {
		return err
	}
	if err := e.rebuildSortedList(); err != nil {
		return err
	}

	e.log.InfoContext(ctx, "restored component", "name", name)
	return nil
}

// RestoreAll clears deleted on every record in both files, then rebuilds the
// sorted list.
func (e *Engine) RestoreAll(ctx context.Context) error {
	const op = "RestoreAll"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}

	if err := e.forEachComponent(func(off CRef, rec componentRecord) error {
		if !rec.Deleted {
			return nil
		}
		rec.Deleted = false
		return e.writeComponent(off, rec)
	}); err != nil {
		return err
	}

	size := int32(sfileRecordSize)
	for off := int32(sfileHeaderSize); off < e.sFree; off += size {
		s, err := e.readSpec(SRef(off))
		if err != nil {
			return err
		}
		if !s.Deleted {
			continue
		}
		s.Deleted = false
		if err := e.writeSpec(SRef(off), s); err != nil {
			return err
		}
	}

	if err := e.rebuildSortedList(); err != nil {
		return err
	}

	e.log.InfoContext(ctx, "restored all components and specs")
	return nil
}
