/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoproof/internal/model"
)

const triangleDoc = `{
  "geometry": {
    "A": {"id": "A", "type": "Point", "data": {"x": 0, "y": 0}},
    "B": {"id": "B", "type": "Point", "data": {"x": 0.5, "y": 0}},
    "AB": {"id": "AB", "type": "Line", "data": {"p1": "A", "p2": "B"}}
  },
  "animations": [["A"], ["A", "B", "AB"]]
}`

func openTemp(t *testing.T) *Library {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", LibraryFileName)
	lib, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestOpenCreatesSQLiteLibrary(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", LibraryFileName)
	lib, err := Open(ctx, "", path)
	require.NoError(t, err)
	defer func() { _ = lib.Close() }()

	assert.Equal(t, DriverSQLite, lib.Driver())
	_, err = os.Stat(path)
	require.NoError(t, err)

	var mode string
	require.NoError(t, lib.db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode))
	assert.Equal(t, "wal", mode)

	v, err := lib.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, v)
	require.NoError(t, lib.Ping(ctx))
}

func TestOpenRejectsBadArguments(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, "  ")
	assert.Error(t, err)
	_, err = Open(context.Background(), "oracle", "x")
	assert.ErrorContains(t, err, "unknown library driver")
}

func TestSaveGetAndLookup(t *testing.T) {
	ctx := context.Background()
	lib := openTemp(t)

	p, err := lib.Save(ctx, Proof{Name: " segment ", Source: "[A] [B] [AB]", Document: json.RawMessage(triangleDoc)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "segment", p.Name)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := lib.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "[A] [B] [AB]", got.Source)
	assert.JSONEq(t, triangleDoc, string(got.Document))
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Microsecond)

	m, err := got.Model()
	require.NoError(t, err)
	assert.Equal(t, 2, m.StepCount())

	byName, err := lib.Lookup(ctx, "segment")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)
	byID, err := lib.Lookup(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "segment", byID.Name)
}

func TestSaveUnderExistingNameUpdates(t *testing.T) {
	ctx := context.Background()
	lib := openTemp(t)

	first, err := lib.Save(ctx, Proof{Name: "proof", Document: json.RawMessage(triangleDoc)})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := lib.Save(ctx, Proof{Name: "proof", Source: "v2", Document: json.RawMessage(triangleDoc)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	got, err := lib.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Source)

	_, err = lib.Save(ctx, Proof{ID: uuid.New(), Name: "proof", Document: json.RawMessage(triangleDoc)})
	assert.ErrorContains(t, err, "already belongs")
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	lib := openTemp(t)
	_, err := lib.Save(context.Background(), Proof{Name: "bad", Document: json.RawMessage(`{"animations": []}`)})
	assert.True(t, errors.Is(err, model.ErrInvalidDocument), "got %v", err)

	_, err = lib.Save(context.Background(), Proof{Name: "", Document: json.RawMessage(triangleDoc)})
	assert.Error(t, err)
}

func TestListOrdersByUpdate(t *testing.T) {
	ctx := context.Background()
	lib := openTemp(t)
	for _, name := range []string{"alpha", "beta"} {
		_, err := lib.Save(ctx, Proof{Name: name, Document: json.RawMessage(triangleDoc)})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := lib.Save(ctx, Proof{Name: "alpha", Document: json.RawMessage(triangleDoc)})
	require.NoError(t, err)

	list, err := lib.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
	assert.Nil(t, list[0].Document)
}

func TestDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	lib := openTemp(t)
	p, err := lib.Save(ctx, Proof{Name: "gone", Document: json.RawMessage(triangleDoc)})
	require.NoError(t, err)

	require.NoError(t, lib.Delete(ctx, p.ID))
	_, err = lib.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = lib.Lookup(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, lib.Delete(ctx, p.ID), ErrNotFound)
}

func TestRebind(t *testing.T) {
	pg := &Library{driver: DriverPostgres}
	assert.Equal(t, "SELECT $1, $2", pg.rebind("SELECT ?, ?"))
	lite := &Library{driver: DriverSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestTimestampsSortAsText(t *testing.T) {
	whole := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	frac := time.Date(2026, 1, 1, 0, 0, 0, 500, time.UTC)
	assert.Greater(t, timestamp(whole), timestamp(frac))
	back, err := parseTimestamp(timestamp(frac))
	require.NoError(t, err)
	assert.True(t, back.Equal(frac))
}

// Runs against a real server only when GEOPROOF_TEST_PG_DSN is set.
func TestPostgresLibrary(t *testing.T) {
	dsn := os.Getenv("GEOPROOF_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GEOPROOF_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	lib, err := Open(ctx, DriverPostgres, dsn)
	require.NoError(t, err)
	defer func() { _ = lib.Close() }()

	name := "pg-" + uuid.NewString()
	p, err := lib.Save(ctx, Proof{Name: name, Document: json.RawMessage(triangleDoc)})
	require.NoError(t, err)
	defer func() { _ = lib.Delete(ctx, p.ID) }()
	got, err := lib.GetByName(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}
