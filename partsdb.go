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

// Package partsdb is the public entry point for the bill-of-materials
// storage engine: a paired-file database of components and the
// parent/child specifications between them.
package partsdb

import (
	"context"
	"log/slog"

	"github.com/nyxlabs/partsdb/cfg"
	"github.com/nyxlabs/partsdb/internal/store"
)

// Component types, re-exported from internal/store so callers never import
// that package directly.
const (
	Product  = store.Product
	Assembly = store.Assembly
	Detail   = store.Detail
)

// ComponentType identifies what a Component is: a top-level Product, an
// intermediate Assembly, or a leaf Detail.
type ComponentType = store.Type

// Component is one entry returned by ListComponents.
type Component = store.Component

// SpecLine is one entry returned by ListSpec.
type SpecLine = store.SpecLine

// Kind classifies the errors returned by this package; see Error and
// errors.Is/errors.As.
type Kind = store.Kind

const (
	KindNotOpen            = store.KindNotOpen
	KindNotFound           = store.KindNotFound
	KindFormatError        = store.KindFormatError
	KindInvalidArgument    = store.KindInvalidArgument
	KindDuplicate          = store.KindDuplicate
	KindTypeRule           = store.KindTypeRule
	KindReferenceIntegrity = store.KindReferenceIntegrity
	KindCycleDetected      = store.KindCycleDetected
	KindCorruption         = store.KindCorruption
)

// Error is the error type returned by every Database method.
type Error = store.Error

// Sentinels for errors.Is comparisons; only the Kind is significant.
var (
	ErrNotOpen            = store.ErrNotOpen
	ErrNotFound           = store.ErrNotFound
	ErrFormat             = store.ErrFormat
	ErrInvalidArgument    = store.ErrInvalidArgument
	ErrDuplicate          = store.ErrDuplicate
	ErrTypeRule           = store.ErrTypeRule
	ErrReferenceIntegrity = store.ErrReferenceIntegrity
	ErrCycleDetected      = store.ErrCycleDetected
	ErrCorruption         = store.ErrCorruption
)

// Database is a handle to one open (or not-yet-open) partsdb instance. The
// zero value is not usable; construct one with New or NewFromConfig.
type Database struct {
	e *store.Engine

	// defaultNameLen is the name_len CreateDefault falls back to; it is
	// only set when this Database came from NewFromConfig.
	defaultNameLen int
}

// New returns a Database that logs through log. A nil log uses
// slog.Default().
func New(log *slog.Logger) *Database {
	return &Database{e: store.New(log)}
}

// NewFromConfig builds a Database whose logger and default name_len come
// from c (loaded via cfg.Load), the way the teacher's mount path builds its
// server from a loaded *cfg.Config instead of constructing a logger by
// hand.
func NewFromConfig(c *cfg.Config) *Database {
	return &Database{e: store.New(c.NewLogger()), defaultNameLen: c.DefaultNameLen}
}

// CreateDefault makes a fresh database at <base>.prd / <base>.prs using the
// name_len carried by the cfg.Config this Database was built from (see
// NewFromConfig). Databases built with plain New have no configured
// default; CreateDefault then fails the same way Create(ctx, base, 0) would.
func (d *Database) CreateDefault(ctx context.Context, base string) error {
	return d.e.Create(ctx, base, d.defaultNameLen)
}

// Create makes a fresh, empty database at <base>.prd / <base>.prs.
func (d *Database) Create(ctx context.Context, base string, nameLen int) error {
	return d.e.Create(ctx, base, nameLen)
}

// Open opens an existing database pair rooted at <base>.prd.
func (d *Database) Open(ctx context.Context, base string) error {
	return d.e.Open(ctx, base)
}

// Close releases the underlying file handles. It is idempotent.
func (d *Database) Close() error {
	return d.e.Close()
}

// ListComponents returns every active component in case-insensitive name
// order.
func (d *Database) ListComponents(ctx context.Context) ([]Component, error) {
	return d.e.ListComponents(ctx)
}

// AddComponent creates a new component of the given type.
func (d *Database) AddComponent(ctx context.Context, name string, typ ComponentType) error {
	return d.e.AddComponent(ctx, name, typ)
}

// DeleteComponent logically deletes an active component, cascading to its
// own spec chain. It fails if another active component still references it.
func (d *Database) DeleteComponent(ctx context.Context, name string) error {
	return d.e.DeleteComponent(ctx, name)
}

// RestoreOne undoes the logical deletion of one component and its specs.
func (d *Database) RestoreOne(ctx context.Context, name string) error {
	return d.e.RestoreOne(ctx, name)
}

// RestoreAll undoes every logical deletion in the database.
func (d *Database) RestoreAll(ctx context.Context) error {
	return d.e.RestoreAll(ctx)
}

// AddSpec adds qty units of child to parent's specification, merging into
// an existing entry if one is already active.
func (d *Database) AddSpec(ctx context.Context, parent, child string, qty int) error {
	return d.e.AddSpec(ctx, parent, child, qty)
}

// DeleteSpec removes child from parent's specification.
func (d *Database) DeleteSpec(ctx context.Context, parent, child string) error {
	return d.e.DeleteSpec(ctx, parent, child)
}

// ListSpec returns root's direct children in case-insensitive name order.
func (d *Database) ListSpec(ctx context.Context, root string) ([]SpecLine, error) {
	return d.e.ListSpec(ctx, root)
}

// BuildTree renders the full transitive specification rooted at root as
// indented text.
func (d *Database) BuildTree(ctx context.Context, root string) (string, error) {
	return d.e.BuildTree(ctx, root)
}

// Truncate compacts both on-disk files, dropping every logically deleted
// record and renumbering the rest densely.
func (d *Database) Truncate(ctx context.Context) error {
	return d.e.Truncate(ctx)
}
