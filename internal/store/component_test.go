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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComponentSortsByCaseInsensitiveName(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	require.NoError(t, e.AddComponent(ctx, "Widget", Product))
	require.NoError(t, e.AddComponent(ctx, "axle", Detail))
	require.NoError(t, e.AddComponent(ctx, "Bearing", Detail))

	comps, err := e.ListComponents(ctx)
	require.NoError(t, err)
	names := []string{comps[0].Name, comps[1].Name, comps[2].Name}
	assert.Equal(t, []string{"axle", "Bearing", "Widget"}, names)
}

func TestAddComponentRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddComponent(ctx, "widget", Product))

	err := e.AddComponent(ctx, "Widget", Assembly)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindDuplicate, se.Kind)
}

func TestAddComponentRejectsEmptyName(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.AddComponent(context.Background(), "   ", Product)
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindInvalidArgument, se.Kind)
}

func TestDeleteComponentFailsWhenReferenced(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddComponent(ctx, "gearbox", Assembly))
	require.NoError(t, e.AddComponent(ctx, "gear", Detail))
	require.NoError(t, e.AddSpec(ctx, "gearbox", "gear", 2))

	err := e.DeleteComponent(ctx, "gear")
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindReferenceIntegrity, se.Kind)
}

func TestDeleteComponentDetectsDanglingCompOff(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddComponent(ctx, "gearbox", Assembly))
	require.NoError(t, e.AddComponent(ctx, "gear", Detail))
	require.NoError(t, e.AddSpec(ctx, "gearbox", "gear", 1))

	parent, ok, err := e.findActive("gearbox")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, e.writeSpec(parent.Rec.FirstSpec, specRecord{
		Deleted: false,
		CompOff: CRef(e.cFree + 1000),
		Qty:     1,
		Next:    NoSRef,
	}))

	err = e.DeleteComponent(ctx, "gear")
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindCorruption, se.Kind)
}

func TestDeleteComponentCascadesItsOwnSpecsAndRestoreUndoesIt(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddComponent(ctx, "gearbox", Assembly))
	require.NoError(t, e.AddComponent(ctx, "gear", Detail))
	require.NoError(t, e.AddSpec(ctx, "gearbox", "gear", 2))

	require.NoError(t, e.DeleteComponent(ctx, "gearbox"))

	lines, err := e.ListSpec(ctx, "gearbox")
	require.Error(t, err) // gearbox itself is now inactive.
	assert.Nil(t, lines)

	require.NoError(t, e.RestoreOne(ctx, "gearbox"))
	lines, err = e.ListSpec(ctx, "gearbox")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "gear", lines[0].Name)
	assert.Equal(t, 2, lines[0].Qty)
}

func TestRestoreAllClearsEveryDeletion(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddComponent(ctx, "a", Product))
	require.NoError(t, e.AddComponent(ctx, "b", Detail))
	require.NoError(t, e.AddSpec(ctx, "a", "b", 1))
	require.NoError(t, e.DeleteComponent(ctx, "a"))

	require.NoError(t, e.RestoreAll(ctx))

	comps, err := e.ListComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, comps, 2)
}

func TestListComponentsSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddComponent(ctx, "a", Detail))
	require.NoError(t, e.AddComponent(ctx, "b", Detail))
	require.NoError(t, e.DeleteComponent(ctx, "a"))

	comps, err := e.ListComponents(ctx)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "b", comps[0].Name)
}
