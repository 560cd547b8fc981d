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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"geoproof/internal/model"
)

// ErrNotFound is returned when no proof matches.
var ErrNotFound = errors.New("proof not found")

// Proof is one library entry. Document is the JSON geometry description;
// Source is the .yc markup it was compiled from, if any.
type Proof struct {
	ID        uuid.UUID
	Name      string
	Source    string
	Document  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Model decodes the stored document.
func (p Proof) Model() (*model.Model, error) { return model.Decode(p.Document) }

// Save stores p. Proofs are keyed by name: saving under an existing name
// replaces that proof's source and document and keeps its id. A proof
// without an id and with a new name gets a fresh id. The document must pass
// model.Validate.
func (lib *Library) Save(ctx context.Context, p Proof) (Proof, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Proof{}, errors.New("proof name is required")
	}
	if err := model.Validate(p.Document); err != nil {
		return Proof{}, err
	}
	now := time.Now().UTC()

	existing, err := lib.GetByName(ctx, p.Name)
	switch {
	case err == nil:
		if p.ID != uuid.Nil && p.ID != existing.ID {
			return Proof{}, fmt.Errorf("name %q already belongs to proof %s", p.Name, existing.ID)
		}
		_, err = lib.db.ExecContext(ctx,
			lib.rebind(`UPDATE proofs SET source = ?, document = ?, updated_at = ? WHERE id = ?`),
			p.Source, string(p.Document), timestamp(now), existing.ID.String())
		if err != nil {
			return Proof{}, fmt.Errorf("update proof: %w", err)
		}
		p.ID, p.CreatedAt, p.UpdatedAt = existing.ID, existing.CreatedAt, now
		lib.log.Info("proof updated", slog.String("id", p.ID.String()), slog.String("name", p.Name))
		return p, nil
	case errors.Is(err, ErrNotFound):
	default:
		return Proof{}, err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	_, err = lib.db.ExecContext(ctx,
		lib.rebind(`INSERT INTO proofs(id, name, source, document, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`),
		p.ID.String(), p.Name, p.Source, string(p.Document), timestamp(now), timestamp(now))
	if err != nil {
		return Proof{}, fmt.Errorf("insert proof: %w", err)
	}
	lib.log.Info("proof saved", slog.String("id", p.ID.String()), slog.String("name", p.Name))
	return p, nil
}

const proofColumns = `id, name, source, document, created_at, updated_at`

// Get returns the proof with the given id.
func (lib *Library) Get(ctx context.Context, id uuid.UUID) (Proof, error) {
	row := lib.db.QueryRowContext(ctx, lib.rebind(`SELECT `+proofColumns+` FROM proofs WHERE id = ?`), id.String())
	return scanProof(row.Scan)
}

// GetByName returns the proof stored under name.
func (lib *Library) GetByName(ctx context.Context, name string) (Proof, error) {
	row := lib.db.QueryRowContext(ctx, lib.rebind(`SELECT `+proofColumns+` FROM proofs WHERE name = ?`), name)
	return scanProof(row.Scan)
}

// Lookup resolves ref as an id when it parses as a UUID, else as a name.
func (lib *Library) Lookup(ctx context.Context, ref string) (Proof, error) {
	if id, err := uuid.Parse(ref); err == nil {
		p, err := lib.Get(ctx, id)
		if !errors.Is(err, ErrNotFound) {
			return p, err
		}
	}
	return lib.GetByName(ctx, ref)
}

// List returns all proofs, most recently updated first. Documents and
// sources are not loaded.
func (lib *Library) List(ctx context.Context) ([]Proof, error) {
	rows, err := lib.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM proofs ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Proof
	for rows.Next() {
		var p Proof
		var id, created, updated string
		if err := rows.Scan(&id, &p.Name, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan proof: %w", err)
		}
		if err := fillMeta(&p, id, created, updated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the proof with the given id.
func (lib *Library) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := lib.db.ExecContext(ctx, lib.rebind(`DELETE FROM proofs WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete proof: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	lib.log.Info("proof deleted", slog.String("id", id.String()))
	return nil
}

func scanProof(scan func(dest ...any) error) (Proof, error) {
	var p Proof
	var id, doc, created, updated string
	err := scan(&id, &p.Name, &p.Source, &doc, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Proof{}, ErrNotFound
	}
	if err != nil {
		return Proof{}, fmt.Errorf("scan proof: %w", err)
	}
	p.Document = json.RawMessage(doc)
	if err := fillMeta(&p, id, created, updated); err != nil {
		return Proof{}, err
	}
	return p, nil
}

func fillMeta(p *Proof, id, created, updated string) error {
	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("proof id %q: %w", id, err)
	}
	if p.CreatedAt, err = parseTimestamp(created); err != nil {
		return fmt.Errorf("proof %s created_at: %w", id, err)
	}
	if p.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return fmt.Errorf("proof %s updated_at: %w", id, err)
	}
	return nil
}
