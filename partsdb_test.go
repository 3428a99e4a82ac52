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

package partsdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyxlabs/partsdb/cfg"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db := New(nil)
	base := filepath.Join(t.TempDir(), "db")
	require.NoError(t, db.Create(context.Background(), base, 40))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScenarioCreateAddList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.AddComponent(ctx, "Widget", Product))
	require.NoError(t, db.AddComponent(ctx, "Bolt", Detail))
	require.NoError(t, db.AddComponent(ctx, "Arm", Assembly))

	comps, err := db.ListComponents(ctx)
	require.NoError(t, err)
	require.Len(t, comps, 3)
	assert.Equal(t, []Component{
		{Name: "Arm", Type: Assembly},
		{Name: "Bolt", Type: Detail},
		{Name: "Widget", Type: Product},
	}, comps)
}

func TestScenarioSpecAndTree(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.AddComponent(ctx, "Widget", Product))
	require.NoError(t, db.AddComponent(ctx, "Bolt", Detail))
	require.NoError(t, db.AddComponent(ctx, "Arm", Assembly))

	require.NoError(t, db.AddSpec(ctx, "Widget", "Arm", 2))
	require.NoError(t, db.AddSpec(ctx, "Widget", "Bolt", 4))
	require.NoError(t, db.AddSpec(ctx, "Arm", "Bolt", 3))

	tree, err := db.BuildTree(ctx, "Widget")
	require.NoError(t, err)

	lines := strings.Split(tree, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Widget", lines[0])
	assert.Equal(t, "├─ Arm x2", lines[1])
	assert.Equal(t, "│  └─ Bolt x3", lines[2])
	assert.Equal(t, "└─ Bolt x4", lines[3])
}

func TestScenarioCycleRejectedAndDBUnchanged(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.AddComponent(ctx, "Widget", Product))
	require.NoError(t, db.AddComponent(ctx, "Arm", Assembly))
	require.NoError(t, db.AddSpec(ctx, "Widget", "Arm", 1))

	before, err := db.ListSpec(ctx, "Widget")
	require.NoError(t, err)

	err = db.AddSpec(ctx, "Arm", "Widget", 1)
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindCycleDetected, se.Kind)

	after, err := db.ListSpec(ctx, "Widget")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestScenarioReferentialDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.AddComponent(ctx, "Widget", Product))
	require.NoError(t, db.AddComponent(ctx, "Arm", Assembly))
	require.NoError(t, db.AddSpec(ctx, "Widget", "Arm", 1))

	err := db.DeleteComponent(ctx, "Arm")
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindReferenceIntegrity, se.Kind)

	require.NoError(t, db.DeleteComponent(ctx, "Widget"))

	comps, err := db.ListComponents(ctx)
	require.NoError(t, err)
	for _, c := range comps {
		assert.NotEqual(t, "Widget", c.Name)
	}
}

func TestScenarioRestore(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.AddComponent(ctx, "Widget", Product))
	require.NoError(t, db.AddComponent(ctx, "Arm", Assembly))
	require.NoError(t, db.AddSpec(ctx, "Widget", "Arm", 1))
	require.NoError(t, db.DeleteComponent(ctx, "Widget"))

	require.NoError(t, db.RestoreOne(ctx, "Widget"))

	lines, err := db.ListSpec(ctx, "Widget")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, SpecLine{Name: "Arm", Type: Assembly, Qty: 1}, lines[0])
}

func TestScenarioCompaction(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.AddComponent(ctx, "Widget", Product))
	require.NoError(t, db.AddComponent(ctx, "Arm", Assembly))
	require.NoError(t, db.AddComponent(ctx, "Bolt", Detail))

	require.NoError(t, db.DeleteComponent(ctx, "Bolt"))
	require.NoError(t, db.Truncate(ctx))

	comps, err := db.ListComponents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Component{
		{Name: "Arm", Type: Assembly},
		{Name: "Widget", Type: Product},
	}, comps)
}

func TestNewFromConfigWiresLoggerAndDefaultNameLen(t *testing.T) {
	ctx := context.Background()
	logPath := filepath.Join(t.TempDir(), "partsdb.log")

	c := cfg.GetDefaultConfig()
	c.DefaultNameLen = 24
	c.Logging.Path = logPath
	c.Logging.Severity = "INFO"

	db := NewFromConfig(&c)
	base := filepath.Join(t.TempDir(), "db")
	require.NoError(t, db.CreateDefault(ctx, base))
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AddComponent(ctx, "Widget", Product))

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "added component")
	assert.Contains(t, string(b), "Widget")
}

func TestCreateDefaultWithoutConfigFailsInvalidArgument(t *testing.T) {
	db := New(nil)
	base := filepath.Join(t.TempDir(), "db")

	err := db.CreateDefault(context.Background(), base)
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindInvalidArgument, se.Kind)
}
