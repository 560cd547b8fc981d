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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "geoproof/internal/log"
	"geoproof/internal/version"

	// PostgreSQL through database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// LibraryFileName is the default SQLite file inside the config directory.
	LibraryFileName = "library.sqlite"

	// schemaVersion tracks the library schema. Bump it with a migration.
	schemaVersion = 1
)

// Library is a persistent collection of proofs. It is safe for concurrent use.
type Library struct {
	db     *sql.DB
	driver string
	log    *slog.Logger
}

// Open connects to a library and ensures its schema. For DriverSQLite the dsn
// is a file path (created if missing); for DriverPostgres it is a pgx
// connection string.
func Open(ctx context.Context, driver, dsn string) (*Library, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("driver", driver))
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("library dsn is required")
	}
	var db *sql.DB
	var err error
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres, "pgx":
		driver = DriverPostgres
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			err = db.PingContext(ctx)
		}
	default:
		return nil, fmt.Errorf("unknown library driver %q", driver)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		l.Error("open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open %s library: %w", driver, err)
	}
	lib := &Library{db: db, driver: driver, log: applog.WithComponent("storage")}
	if err := lib.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("library ready")
	return lib, nil
}

// openSQLite opens path with WAL journaling and a busy timeout. A single
// connection serializes writers.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimPrefix(path, "file:")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return db, fmt.Errorf("enable WAL: %w", err)
	}
	return db, nil
}

func (lib *Library) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS proofs (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			source     TEXT NOT NULL DEFAULT '',
			document   TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_proofs_updated ON proofs(updated_at)`,
	}
	for _, q := range ddl {
		if _, err := lib.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	upsert := `INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	for k, v := range map[string]string{"schema": strconv.Itoa(schemaVersion), "app": version.String()} {
		if _, err := lib.db.ExecContext(ctx, lib.rebind(upsert), k, v); err != nil {
			return fmt.Errorf("write meta: %w", err)
		}
	}
	return nil
}

// SchemaVersion reads the schema version recorded in the library.
func (lib *Library) SchemaVersion(ctx context.Context) (int, error) {
	var v string
	if err := lib.db.QueryRowContext(ctx, lib.rebind(`SELECT value FROM meta WHERE key = ?`), "schema").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return strconv.Atoi(v)
}

// Driver reports the database driver in use.
func (lib *Library) Driver() string { return lib.driver }

// Ping checks the connection.
func (lib *Library) Ping(ctx context.Context) error { return lib.db.PingContext(ctx) }

// Close releases the database.
func (lib *Library) Close() error { return lib.db.Close() }

// rebind turns ? placeholders into $n for PostgreSQL.
func (lib *Library) rebind(q string) string {
	if lib.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTimestamp(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
