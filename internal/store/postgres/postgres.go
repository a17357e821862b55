// Package postgres provides the Postgres-backed persistence implementation.
//
// It assumes the following schema (managed outside this binary):
//
//	CREATE TABLE clubs (
//		id              BIGSERIAL PRIMARY KEY,
//		site_id         TEXT NOT NULL,
//		generation      TEXT NOT NULL,
//		name            TEXT NOT NULL,
//		normalized_name TEXT NOT NULL,
//		first_year      INT NOT NULL,
//		last_year       INT NOT NULL,
//		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		UNIQUE (site_id, generation)
//	);
//
//	CREATE TABLE athletes (
//		id              BIGSERIAL PRIMARY KEY,
//		site_id         TEXT NOT NULL,
//		generation      TEXT NOT NULL,
//		name            TEXT NOT NULL,
//		normalized_name TEXT NOT NULL,
//		license_id      TEXT,
//		birth_year      INT,
//		sex             TEXT,
//		nationality     TEXT,
//		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
//		UNIQUE (site_id, generation)
//	);
//	CREATE UNIQUE INDEX athletes_license_key ON athletes (license_id)
//		WHERE license_id IS NOT NULL AND license_id NOT IN ('', '-', 'None');
//
// A trigger recomputes normalized_name and updated_at on every write; this
// package writes display names only and never touches derived columns,
// internal ids or created_at.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/reconcile"
	"github.com/athledata/athlecrawl/internal/store"
)

// DB is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Config controls the connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// Store implements store.Clubs and store.Athletes on Postgres.
type Store struct {
	db DB
}

// New connects a pool and verifies it with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewWithDB wraps an existing connection, primarily for tests.
func NewWithDB(db DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
}

// mapError converts Postgres uniqueness violations to the store taxonomy.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &store.ConflictError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// SnapshotClubs loads the reconciler's view of every stored club.
func (s *Store) SnapshotClubs(ctx context.Context) ([]reconcile.ClubRef, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, site_id, generation, normalized_name, first_year, last_year
FROM clubs`)
	if err != nil {
		return nil, fmt.Errorf("snapshot clubs: %w", err)
	}
	defer rows.Close()

	var refs []reconcile.ClubRef
	for rows.Next() {
		var ref reconcile.ClubRef
		var gen string
		if err := rows.Scan(&ref.ID, &ref.External.Raw, &gen, &ref.NormalizedName, &ref.FirstYear, &ref.LastYear); err != nil {
			return nil, fmt.Errorf("scan club: %w", err)
		}
		ref.External.Gen = athle.Generation(gen)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ActiveClubs lists clubs whose activity window covers the season.
func (s *Store) ActiveClubs(ctx context.Context, season athle.Season) ([]store.ClubScope, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, site_id, generation, name
FROM clubs
WHERE first_year <= $1 AND last_year >= $1
ORDER BY id`, int(season))
	if err != nil {
		return nil, fmt.Errorf("active clubs for %d: %w", season, err)
	}
	defer rows.Close()

	var scopes []store.ClubScope
	for rows.Next() {
		var sc store.ClubScope
		var gen string
		if err := rows.Scan(&sc.ID, &sc.External.Raw, &gen, &sc.Name); err != nil {
			return nil, fmt.Errorf("scan club scope: %w", err)
		}
		sc.External.Gen = athle.Generation(gen)
		scopes = append(scopes, sc)
	}
	return scopes, rows.Err()
}

// ClubByExternalID looks up one club for targeted re-scrapes.
func (s *Store) ClubByExternalID(ctx context.Context, ext athle.ExternalID) (store.ClubScope, bool, error) {
	var sc store.ClubScope
	var gen string
	err := s.db.QueryRow(ctx, `
SELECT id, site_id, generation, name
FROM clubs
WHERE site_id = $1 AND generation = $2`, ext.Raw, string(ext.Gen)).
		Scan(&sc.ID, &sc.External.Raw, &gen, &sc.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ClubScope{}, false, nil
	}
	if err != nil {
		return store.ClubScope{}, false, fmt.Errorf("club by external id %s: %w", ext, err)
	}
	sc.External.Gen = athle.Generation(gen)
	return sc, true, nil
}

// InsertClub creates a row; the store assigns the internal id. First and last
// active season both start at the observed season.
func (s *Store) InsertClub(ctx context.Context, rec store.ClubRecord) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
INSERT INTO clubs (site_id, generation, name, first_year, last_year)
VALUES ($1, $2, $3, $4, $4)
RETURNING id`,
		rec.External.Raw, string(rec.External.Gen), rec.Name, int(rec.Season)).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// UpdateClub overwrites the display name and widens the activity window. The
// external id, internal id and created_at are never touched.
func (s *Store) UpdateClub(ctx context.Context, id int64, rec store.ClubRecord) error {
	_, err := s.db.Exec(ctx, `
UPDATE clubs
SET name = $2,
    first_year = LEAST(first_year, $3),
    last_year = GREATEST(last_year, $3)
WHERE id = $1`,
		id, rec.Name, int(rec.Season))
	if err != nil {
		return mapError(err)
	}
	return nil
}

// SnapshotAthletes loads the reconciler's view of every stored athlete.
func (s *Store) SnapshotAthletes(ctx context.Context) ([]reconcile.AthleteRef, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, site_id, generation, COALESCE(license_id, ''), normalized_name, birth_year, COALESCE(sex, '')
FROM athletes`)
	if err != nil {
		return nil, fmt.Errorf("snapshot athletes: %w", err)
	}
	defer rows.Close()

	var refs []reconcile.AthleteRef
	for rows.Next() {
		var ref reconcile.AthleteRef
		var gen string
		if err := rows.Scan(&ref.ID, &ref.External.Raw, &gen, &ref.LicenseID, &ref.NormalizedName, &ref.BirthYear, &ref.Sex); err != nil {
			return nil, fmt.Errorf("scan athlete: %w", err)
		}
		ref.External.Gen = athle.Generation(gen)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// InsertAthlete creates a row; empty optional fields persist as NULL.
func (s *Store) InsertAthlete(ctx context.Context, rec store.AthleteRecord) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
INSERT INTO athletes (site_id, generation, name, license_id, birth_year, sex, nationality)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''))
RETURNING id`,
		rec.External.Raw, string(rec.External.Gen), rec.Name,
		rec.LicenseID, rec.BirthYear, rec.Sex, rec.Nationality).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// UpdateAthlete overwrites mutable fields, retaining stored values where the
// scrape came back empty. External id, internal id and created_at are never
// touched.
func (s *Store) UpdateAthlete(ctx context.Context, id int64, rec store.AthleteRecord) error {
	_, err := s.db.Exec(ctx, `
UPDATE athletes
SET name = $2,
    license_id = COALESCE(NULLIF($3, ''), license_id),
    birth_year = COALESCE($4, birth_year),
    sex = COALESCE(NULLIF($5, ''), sex),
    nationality = COALESCE(NULLIF($6, ''), nationality)
WHERE id = $1`,
		id, rec.Name, rec.LicenseID, rec.BirthYear, rec.Sex, rec.Nationality)
	if err != nil {
		return mapError(err)
	}
	return nil
}
