// Package sqlstore persists configuration layers in a SQL table, one JSON
// document per layer. SQLite (modernc.org/sqlite) and Postgres (pgx) are
// supported through database/sql.
package sqlstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	openadas "github.com/goliatone/go-openadas"
	"github.com/goliatone/go-openadas/pkg/state"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	// Table holds one row per stored layer.
	Table = "openadas_config_layers"
)

// ErrUnsupportedDriver is returned by Open for drivers other than sqlite
// and pgx.
var ErrUnsupportedDriver = errors.New("sqlstore: unsupported driver")

var _ state.Store = (*Store)(nil)

// Store implements state.Store. ETags are the SHA-256 of the stored JSON
// document, so a save that changes nothing keeps its ETag.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

type dialect struct {
	upsert string
	load   string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		upsert: `INSERT INTO ` + Table + ` (id, document, snapshot_id, etag, updated_at, extra)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET document = excluded.document, snapshot_id = excluded.snapshot_id,
			etag = excluded.etag, updated_at = excluded.updated_at, extra = excluded.extra`,
		load: `SELECT document, snapshot_id, etag, updated_at, extra FROM ` + Table + ` WHERE id = ?`,
	},
	DriverPostgres: {
		upsert: `INSERT INTO ` + Table + ` (id, document, snapshot_id, etag, updated_at, extra)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET document = excluded.document, snapshot_id = excluded.snapshot_id,
			etag = excluded.etag, updated_at = excluded.updated_at, extra = excluded.extra`,
		load: `SELECT document, snapshot_id, etag, updated_at, extra FROM ` + Table + ` WHERE id = $1`,
	},
}

const ddl = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	snapshot_id TEXT NOT NULL,
	etag TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	extra TEXT NOT NULL
)`

// Open connects to dsn and ensures the table exists. For sqlite, dsn is a
// file path whose directory is created when missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, errors.WithHintf(errors.Wrapf(ErrUnsupportedDriver, "%q", driver),
			"use %q or %q", DriverSQLite, DriverPostgres)
	}
	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, errors.Wrap(err, "sqlstore: create database directory")
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlstore: open %s", driver)
	}
	if driver == DriverSQLite {
		// One connection keeps an in-memory database alive and serialises writes.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "sqlstore: ping %s", driver)
	}
	store := &Store{db: db, dialect: d, now: time.Now}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates the layer table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "sqlstore: ensure table")
	}
	return nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Load reads the layer for ref. A missing row reports ok=false.
func (s *Store) Load(ctx context.Context, ref state.Ref) (openadas.Config, state.Meta, bool, error) {
	id, err := ref.Identifier()
	if err != nil {
		return openadas.Config{}, state.Meta{}, false, err
	}

	var document, snapshotID, etag, updatedAt, extra string
	err = s.db.QueryRowContext(ctx, s.dialect.load, id).Scan(&document, &snapshotID, &etag, &updatedAt, &extra)
	if errors.Is(err, sql.ErrNoRows) {
		return openadas.Config{}, state.Meta{}, false, nil
	}
	if err != nil {
		return openadas.Config{}, state.Meta{}, false, errors.Wrapf(err, "sqlstore: load %s", id)
	}

	var cfg openadas.Config
	if err := json.Unmarshal([]byte(document), &cfg); err != nil {
		return openadas.Config{}, state.Meta{}, false, errors.Wrapf(err, "sqlstore: decode %s", id)
	}
	meta := state.Meta{SnapshotID: snapshotID, ETag: etag}
	if updatedAt != "" {
		if meta.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return openadas.Config{}, state.Meta{}, false, errors.Wrapf(err, "sqlstore: updated_at for %s", id)
		}
	}
	if extra != "" && extra != "null" {
		if err := json.Unmarshal([]byte(extra), &meta.Extra); err != nil {
			return openadas.Config{}, state.Meta{}, false, errors.Wrapf(err, "sqlstore: extra for %s", id)
		}
	}
	return cfg, meta, true, nil
}

// Save writes cfg under ref. The ETag is always recomputed; SnapshotID
// defaults to the first 12 characters of the ETag and UpdatedAt to now.
func (s *Store) Save(ctx context.Context, ref state.Ref, cfg openadas.Config, meta state.Meta) (state.Meta, error) {
	id, err := ref.Identifier()
	if err != nil {
		return state.Meta{}, err
	}

	document, err := json.Marshal(cfg)
	if err != nil {
		return state.Meta{}, errors.Wrapf(err, "sqlstore: encode %s", id)
	}
	sum := sha256.Sum256(document)
	out := meta
	out.ETag = hex.EncodeToString(sum[:])
	if out.SnapshotID == "" {
		out.SnapshotID = out.ETag[:12]
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = s.now().UTC()
	}
	extra, err := json.Marshal(out.Extra)
	if err != nil {
		return state.Meta{}, errors.Wrapf(err, "sqlstore: encode extra for %s", id)
	}

	_, err = s.db.ExecContext(ctx, s.dialect.upsert,
		id, string(document), out.SnapshotID, out.ETag, out.UpdatedAt.Format(time.RFC3339Nano), string(extra))
	if err != nil {
		return state.Meta{}, errors.Wrapf(err, "sqlstore: save %s", id)
	}
	return out, nil
}
