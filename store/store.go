// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package store is the content-addressed cache (C7): a SQLite-backed
// relational store, keyed by a normalized document name, holding one
// row per analyzed page plus a full-text index kept in sync by triggers.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sindlinger/fpdf-portable-sub002/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS caches (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT UNIQUE NOT NULL,
	source_path TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL,
	mode        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	cache_id    INTEGER NOT NULL REFERENCES caches(id) ON DELETE CASCADE,
	page_number INTEGER NOT NULL,
	text        TEXT NOT NULL DEFAULT '',
	header      TEXT NOT NULL DEFAULT '',
	footer      TEXT NOT NULL DEFAULT '',
	has_money   INTEGER NOT NULL DEFAULT 0,
	has_cpf     INTEGER NOT NULL DEFAULT 0,
	fonts       TEXT NOT NULL DEFAULT '',
	orientation TEXT NOT NULL DEFAULT '',
	UNIQUE(cache_id, page_number)
);
CREATE VIRTUAL TABLE IF NOT EXISTS page_fts USING fts5(
	text, content='pages', content_rowid='id', tokenize='unicode61'
);
CREATE TRIGGER IF NOT EXISTS pages_ai AFTER INSERT ON pages BEGIN
	INSERT INTO page_fts(rowid, text) VALUES (new.id, new.text);
END;
CREATE TRIGGER IF NOT EXISTS pages_ad AFTER DELETE ON pages BEGIN
	INSERT INTO page_fts(page_fts, rowid, text) VALUES('delete', old.id, old.text);
END;
CREATE TRIGGER IF NOT EXISTS pages_au AFTER UPDATE ON pages BEGIN
	INSERT INTO page_fts(page_fts, rowid, text) VALUES('delete', old.id, old.text);
	INSERT INTO page_fts(rowid, text) VALUES (new.id, new.text);
END;
`

// Page is one analyzed page persisted under a cache entry.
type Page struct {
	Number      int
	Text        string
	Header      string
	Footer      string
	HasMoney    bool
	HasCPF      bool
	Fonts       []string
	Orientation string
}

// Analysis is the unit upsert writes and load reads: one document's
// metadata plus its per-page analysis.
type Analysis struct {
	Name       string
	SourcePath string
	Mode       string
	SizeBytes  int64
	CreatedAt  time.Time
	Pages      []Page
}

// Store is a single opened SQLite cache database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the cache database at path and ensures
// its schema, including the FTS index, is present.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // a single writer at a time; the engine serializes the rest
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug(fmt.Sprintf("store: opened %s", path), true)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Exists reports whether name has a cached analysis.
func (s *Store) Exists(name string) (bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM caches WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Upsert writes a's pages under its name: any existing pages are deleted
// and the fresh set inserted in one transaction, so readers never observe
// a partial analysis.
func (s *Store) Upsert(a Analysis) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	var cacheID int64
	err = tx.QueryRow(`SELECT id FROM caches WHERE name = ?`, a.Name).Scan(&cacheID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		var res sql.Result
		res, err = tx.Exec(`INSERT INTO caches(name, source_path, created_at, size_bytes, mode) VALUES (?,?,?,?,?)`,
			a.Name, a.SourcePath, created.Format(time.RFC3339), a.SizeBytes, a.Mode)
		if err != nil {
			return err
		}
		cacheID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if _, err = tx.Exec(`UPDATE caches SET source_path=?, size_bytes=?, mode=? WHERE id=?`,
			a.SourcePath, a.SizeBytes, a.Mode, cacheID); err != nil {
			return err
		}
		if _, err = tx.Exec(`DELETE FROM pages WHERE cache_id=?`, cacheID); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO pages(cache_id, page_number, text, header, footer, has_money, has_cpf, fonts, orientation)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range a.Pages {
		if _, err = stmt.Exec(cacheID, p.Number, p.Text, p.Header, p.Footer,
			boolToInt(p.HasMoney), boolToInt(p.HasCPF), strings.Join(p.Fonts, ","), p.Orientation); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load returns the complete cached analysis for name.
func (s *Store) Load(name string) (Analysis, error) {
	var a Analysis
	var cacheID int64
	var createdAt string
	row := s.db.QueryRow(`SELECT id, source_path, created_at, size_bytes, mode FROM caches WHERE name = ?`, name)
	if err := row.Scan(&cacheID, &a.SourcePath, &createdAt, &a.SizeBytes, &a.Mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, fmt.Errorf("store: no cache named %q", name)
		}
		return Analysis{}, err
	}
	a.Name = name
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}

	rows, err := s.db.Query(`SELECT page_number, text, header, footer, has_money, has_cpf, fonts, orientation
		FROM pages WHERE cache_id = ? ORDER BY page_number ASC`, cacheID)
	if err != nil {
		return Analysis{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var p Page
		var moneyFlag, cpfFlag int
		var fonts string
		if err := rows.Scan(&p.Number, &p.Text, &p.Header, &p.Footer, &moneyFlag, &cpfFlag, &fonts, &p.Orientation); err != nil {
			return Analysis{}, err
		}
		p.HasMoney = moneyFlag != 0
		p.HasCPF = cpfFlag != 0
		if fonts != "" {
			p.Fonts = strings.Split(fonts, ",")
		}
		a.Pages = append(a.Pages, p)
	}
	return a, rows.Err()
}

// ListNames returns every cached document name, ascending.
func (s *Store) ListNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM caches ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete removes one cached document and its pages.
func (s *Store) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM caches WHERE name = ?`, name)
	return err
}

// Clear removes every cached document.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM caches`)
	return err
}

// PageRef names one page hit: its cache name and 1-based page number.
type PageRef struct {
	Name       string
	PageNumber int
}

// MatchFTS runs the page_fts fast path (§4.8 evaluation strategy step 1)
// for an AND-joined full-text query, restricted to the given cache names
// (all caches if names is empty), in (cache, page) order, capped at limit
// rows (0 means unbounded).
func (s *Store) MatchFTS(names []string, ftsQuery string, limit int) ([]PageRef, error) {
	query := `SELECT c.name, p.page_number FROM page_fts
		JOIN pages p ON p.id = page_fts.rowid
		JOIN caches c ON c.id = p.cache_id
		WHERE page_fts MATCH ?`
	args := []any{ftsQuery}
	if len(names) > 0 {
		query += " AND c.name IN (" + placeholders(len(names)) + ")"
		for _, n := range names {
			args = append(args, n)
		}
	}
	query += " ORDER BY c.name ASC, p.page_number ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PageRef
	for rows.Next() {
		var ref PageRef
		if err := rows.Scan(&ref.Name, &ref.PageNumber); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
