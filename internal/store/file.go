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
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Engine owns the open file pair for one database instance and implements
// every operation in spec.md §4. Zero value is a closed engine; use New to
// attach a logger before calling Create or Open.
type Engine struct {
	mu sync.Mutex

	cf *os.File
	sf *os.File

	cfPath string
	sfPath string

	nameLen         int
	cHead           CRef
	cFree           int32
	sHead           SRef
	sFree           int32
	pairedSFileName string

	log *slog.Logger
}

// New returns a closed Engine that logs through log. A nil log uses
// slog.Default().
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log.With("component", "store")}
}

func (e *Engine) isOpen() bool { return e.cf != nil && e.sf != nil }

func (e *Engine) ensureOpen(op string) error {
	if !e.isOpen() {
		return newErr(KindNotOpen, op, "database not open")
	}
	return nil
}

// Create makes a fresh, empty database at <base>.prd / <base>.prs, closing
// any instance this Engine already has open. nameLen must be at least 4
// (invariant 5).
func (e *Engine) Create(ctx context.Context, base string, nameLen int) error {
	const op = "Create"
	if nameLen < minNameLen {
		return newErr(KindInvalidArgument, op, "name_len must be at least 4")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.closeLocked(); err != nil {
		return wrapErr(KindNotOpen, op, "closing previous instance", err)
	}

	cfPath := base + ".prd"
	sfPath := base + ".prs"

	cf, err := os.OpenFile(cfPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return wrapErr(KindNotFound, op, "creating CFile", err)
	}
	sf, err := os.OpenFile(sfPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		cf.Close()
		return wrapErr(KindNotFound, op, "creating SFile", err)
	}

	e.cf, e.sf = cf, sf
	e.cfPath, e.sfPath = cfPath, sfPath
	e.nameLen = nameLen
	e.cHead, e.cFree = NoCRef, cfileHeaderSize
	e.sHead, e.sFree = NoSRef, sfileHeaderSize
	e.pairedSFileName = filepath.Base(sfPath)

	if err := e.writeCFileHeaderLocked(); err != nil {
		e.closeLocked()
		return wrapErr(KindFormatError, op, "writing CFile header", err)
	}
	if err := e.writeSFileHeaderLocked(); err != nil {
		e.closeLocked()
		return wrapErr(KindFormatError, op, "writing SFile header", err)
	}

	e.log.DebugContext(ctx, "created database", "base", base, "name_len", nameLen)
	return nil
}

// Open opens an existing database pair rooted at <base>.prd, resolving the
// paired SFile from the CFile header.
func (e *Engine) Open(ctx context.Context, base string) error {
	const op = "Open"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.closeLocked(); err != nil {
		return wrapErr(KindNotOpen, op, "closing previous instance", err)
	}

	cfPath := base + ".prd"
	cf, err := os.OpenFile(cfPath, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return wrapErr(KindNotFound, op, "CFile missing", err)
		}
		return wrapErr(KindNotFound, op, "opening CFile", err)
	}

	hdr := make([]byte, cfileHeaderSize)
	if _, err := cf.ReadAt(hdr, 0); err != nil {
		cf.Close()
		return wrapErr(KindFormatError, op, "reading CFile header", err)
	}
	nameLen, head, free, pairedSFileName, err := decodeCFileHeader(hdr)
	if err != nil {
		cf.Close()
		return err.(*Error)
	}

	sfPath := filepath.Join(filepath.Dir(cfPath), pairedSFileName)
	sf, err := os.OpenFile(sfPath, os.O_RDWR, 0o644)
	if err != nil {
		cf.Close()
		if os.IsNotExist(err) {
			return wrapErr(KindNotFound, op, "SFile missing", err)
		}
		return wrapErr(KindNotFound, op, "opening SFile", err)
	}

	shdr := make([]byte, sfileHeaderSize)
	if _, err := sf.ReadAt(shdr, 0); err != nil {
		cf.Close()
		sf.Close()
		return wrapErr(KindFormatError, op, "reading SFile header", err)
	}
	sHead, sFree, derr := decodeSFileHeader(shdr)
	if derr != nil {
		cf.Close()
		sf.Close()
		return derr.(*Error)
	}

	e.cf, e.sf = cf, sf
	e.cfPath, e.sfPath = cfPath, sfPath
	e.nameLen = int(nameLen)
	e.cHead, e.cFree = head, free
	e.sHead, e.sFree = sHead, sFree
	e.pairedSFileName = pairedSFileName

	e.log.DebugContext(ctx, "opened database", "base", base, "sfile", sfPath)
	return nil
}

// Close flushes and releases the file handles. It is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeLocked()
}

func (e *Engine) closeLocked() error {
	var errs []error
	if e.cf != nil {
		if err := e.cf.Close(); err != nil {
			errs = append(errs, err)
		}
		e.cf = nil
	}
	if e.sf != nil {
		if err := e.sf.Close(); err != nil {
			errs = append(errs, err)
		}
		e.sf = nil
	}
	return errors.Join(errs...)
}

func (e *Engine) writeCFileHeaderLocked() error {
	b := encodeCFileHeader(uint16(e.nameLen), e.cHead, e.cFree, e.pairedSFileName)
	_, err := e.cf.WriteAt(b, 0)
	return err
}

func (e *Engine) writeSFileHeaderLocked() error {
	b := encodeSFileHeader(e.sHead, e.sFree)
	_, err := e.sf.WriteAt(b, 0)
	return err
}

func (e *Engine) componentRecordSize() int { return componentRecordSize(e.nameLen) }

// readComponent reads the component record at off. Any offset that doesn't
// address a real record slot — out of the data region, or not aligned on a
// record boundary — is corruption (a dangling comp_off, a clobbered next
// pointer), not a format error, and is reported as KindCorruption rather than
// silently decoding whatever bytes happen to live there.
func (e *Engine) readComponent(off CRef) (componentRecord, error) {
	if !e.validComponentOffset(off) {
		return componentRecord{}, newErr(KindCorruption, "readComponent", "component offset out of range or misaligned")
	}
	b := make([]byte, e.componentRecordSize())
	if _, err := e.cf.ReadAt(b, int64(off)); err != nil {
		return componentRecord{}, wrapErr(KindFormatError, "readComponent", "short read", err)
	}
	rec, derr := decodeComponentRecord(e.nameLen, b)
	if derr != nil {
		return componentRecord{}, derr
	}
	return rec, nil
}

// validComponentOffset reports whether off addresses a whole record slot
// within the CFile's current data region.
func (e *Engine) validComponentOffset(off CRef) bool {
	size := int32(e.componentRecordSize())
	rel := int32(off) - cfileHeaderSize
	if rel < 0 || int32(off)+size > e.cFree {
		return false
	}
	return rel%size == 0
}

func (e *Engine) writeComponent(off CRef, rec componentRecord) error {
	b := encodeComponentRecord(e.nameLen, rec)
	_, err := e.cf.WriteAt(b, int64(off))
	return err
}

func (e *Engine) readSpec(off SRef) (specRecord, error) {
	b := make([]byte, sfileRecordSize)
	if _, err := e.sf.ReadAt(b, int64(off)); err != nil {
		return specRecord{}, wrapErr(KindFormatError, "readSpec", "short read", err)
	}
	rec, derr := decodeSpecRecord(b)
	if derr != nil {
		return specRecord{}, derr
	}
	return rec, nil
}

func (e *Engine) writeSpec(off SRef, rec specRecord) error {
	b := encodeSpecRecord(rec)
	_, err := e.sf.WriteAt(b, int64(off))
	return err
}

// appendComponent writes rec at the current CFile free offset, advances
// free, and persists the header.
func (e *Engine) appendComponent(rec componentRecord) (CRef, error) {
	off := CRef(e.cFree)
	if err := e.writeComponent(off, rec); err != nil {
		return NoCRef, err
	}
	e.cFree += int32(e.componentRecordSize())
	if err := e.writeCFileHeaderLocked(); err != nil {
		return NoCRef, err
	}
	return off, nil
}

// appendSpec writes rec at the current SFile free offset, advances free,
// and persists the header.
func (e *Engine) appendSpec(rec specRecord) (SRef, error) {
	off := SRef(e.sFree)
	if err := e.writeSpec(off, rec); err != nil {
		return NoSRef, err
	}
	e.sFree += sfileRecordSize
	if err := e.writeSFileHeaderLocked(); err != nil {
		return NoSRef, err
	}
	return off, nil
}
