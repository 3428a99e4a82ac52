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
	"os"
	"sort"
	"strings"
)

// keptSpec is a spec surviving compaction, already remapped to its new
// child offset.
type keptSpec struct {
	NewChildOff CRef
	Qty         int16
}

// Truncate rebuilds both files from scratch, keeping only active records
// and renumbering offsets densely from the header onward, then atomically
// replaces the originals. See spec.md §4.6.
//
// The new first_spec for each component is computed in the same pass that
// writes the component records (the strict reading of the source's Open
// Question in spec.md §9: no later targeted rewrite of first_spec).
func (e *Engine) Truncate(ctx context.Context) error {
	const op = "Truncate"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}

	active, err := e.activeSnapshot()
	if err != nil {
		return err
	}

	recSize := int32(e.componentRecordSize())
	oldToNew := make(map[CRef]CRef, len(active))
	newOff := int32(cfileHeaderSize)
	for _, fc := range active {
		oldToNew[fc.Off] = CRef(newOff)
		newOff += recSize
	}
	newCFree := newOff

	specsByParent, err := e.keptSpecsByParent(active, oldToNew)
	if err != nil {
		return err
	}

	firstSpecForParent, newSHead, newSFree, totalSpecs := layoutSpecs(specsByParent)

	newCHead := NoCRef
	if len(active) > 0 {
		newCHead = CRef(cfileHeaderSize)
	}

	cfTmpPath := e.cfPath + ".tmp"
	sfTmpPath := e.sfPath + ".tmp"

	if err := e.writeCompactedCFile(cfTmpPath, active, oldToNew, firstSpecForParent, newCHead, newCFree); err != nil {
		os.Remove(cfTmpPath)
		return wrapErr(KindFormatError, op, "writing compacted CFile", err)
	}
	if err := e.writeCompactedSFile(sfTmpPath, specsByParent, newSHead, newSFree); err != nil {
		os.Remove(cfTmpPath)
		os.Remove(sfTmpPath)
		return wrapErr(KindFormatError, op, "writing compacted SFile", err)
	}

	if err := e.closeLocked(); err != nil {
		return wrapErr(KindFormatError, op, "closing originals before swap", err)
	}

	if err := os.Rename(cfTmpPath, e.cfPath); err != nil {
		return wrapErr(KindFormatError, op, "replacing CFile", err)
	}
	if err := os.Rename(sfTmpPath, e.sfPath); err != nil {
		return wrapErr(KindFormatError, op, "replacing SFile", err)
	}

	cf, err := os.OpenFile(e.cfPath, os.O_RDWR, 0o644)
	if err != nil {
		return wrapErr(KindNotFound, op, "reopening CFile", err)
	}
	sf, err := os.OpenFile(e.sfPath, os.O_RDWR, 0o644)
	if err != nil {
		cf.Close()
		return wrapErr(KindNotFound, op, "reopening SFile", err)
	}

	e.cf, e.sf = cf, sf
	e.cHead, e.cFree = newCHead, newCFree
	e.sHead, e.sFree = newSHead, newSFree

	e.log.InfoContext(ctx, "compacted database",
		"components_kept", len(active),
		"specs_kept", totalSpecs,
		"cfile_bytes", newCFree,
		"sfile_bytes", newSFree)
	return nil
}

// activeSnapshot returns every active component, sorted by lowercase name.
func (e *Engine) activeSnapshot() ([]foundComponent, error) {
	var active []foundComponent
	if err := e.forEachComponent(func(off CRef, rec componentRecord) error {
		if !rec.Deleted {
			active = append(active, foundComponent{Off: off, Rec: rec})
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.SliceStable(active, func(i, j int) bool {
		return strings.ToLower(active[i].Rec.Name) < strings.ToLower(active[j].Rec.Name)
	})
	return active, nil
}

// keptSpecsByParent walks each active component's old chain, keeping only
// active specs whose child survived into oldToNew, in parent order.
func (e *Engine) keptSpecsByParent(active []foundComponent, oldToNew map[CRef]CRef) ([][]keptSpec, error) {
	specsByParent := make([][]keptSpec, len(active))
	for i, fc := range active {
		var kept []keptSpec
		for cur := fc.Rec.FirstSpec; cur != NoSRef; {
			s, err := e.readSpec(cur)
			if err != nil {
				return nil, err
			}
			if !s.Deleted {
				if newChild, ok := oldToNew[s.CompOff]; ok {
					kept = append(kept, keptSpec{NewChildOff: newChild, Qty: s.Qty})
				}
			}
			cur = s.Next
		}
		specsByParent[i] = kept
	}
	return specsByParent, nil
}

// layoutSpecs assigns each parent's kept specs a contiguous block of SFile
// offsets, returning each parent's first-slot SRef (or NoSRef), the new
// SFile head, the new SFile free offset, and the total spec count.
func layoutSpecs(specsByParent [][]keptSpec) (firstSpecForParent []SRef, head SRef, free int32, total int) {
	firstSpecForParent = make([]SRef, len(specsByParent))
	off := int32(sfileHeaderSize)
	head = NoSRef

	for i, kept := range specsByParent {
		if len(kept) == 0 {
			firstSpecForParent[i] = NoSRef
			continue
		}
		firstSpecForParent[i] = SRef(off)
		if head == NoSRef {
			head = SRef(off)
		}
		off += int32(len(kept)) * sfileRecordSize
		total += len(kept)
	}
	return firstSpecForParent, head, off, total
}

func (e *Engine) writeCompactedCFile(path string, active []foundComponent, oldToNew map[CRef]CRef, firstSpecForParent []SRef, head CRef, free int32) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteAt(encodeCFileHeader(uint16(e.nameLen), head, free, e.pairedSFileName), 0); err != nil {
		return err
	}
	for i, fc := range active {
		next := NoCRef
		if i+1 < len(active) {
			next = oldToNew[active[i+1].Off]
		}
		rec := componentRecord{
			Deleted:   false,
			FirstSpec: firstSpecForParent[i],
			Next:      next,
			Type:      fc.Rec.Type,
			Name:      fc.Rec.Name,
		}
		if _, err := f.WriteAt(encodeComponentRecord(e.nameLen, rec), int64(oldToNew[fc.Off])); err != nil {
			return err
		}
	}
	return f.Sync()
}

func (e *Engine) writeCompactedSFile(path string, specsByParent [][]keptSpec, head SRef, free int32) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteAt(encodeSFileHeader(head, free), 0); err != nil {
		return err
	}
	off := int32(sfileHeaderSize)
	for _, kept := range specsByParent {
		for j, ks := range kept {
			next := NoSRef
			if j+1 < len(kept) {
				next = SRef(off + sfileRecordSize)
			}
			rec := specRecord{Deleted: false, CompOff: ks.NewChildOff, Qty: ks.Qty, Next: next}
			if _, err := f.WriteAt(encodeSpecRecord(rec), int64(off)); err != nil {
				return err
			}
			off += sfileRecordSize
		}
	}
	return f.Sync()
}
