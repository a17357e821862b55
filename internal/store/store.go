// Package store defines the persistence contracts for clubs and athletes.
// The relational schema owns surrogate ids, creation timestamps and the
// normalized-name/updated-at recomputation trigger; callers write display
// names only and never touch derived columns.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/reconcile"
)

// ErrConstraintViolation marks a store-reported uniqueness conflict, the
// signal that a concurrent run inserted the entity first.
var ErrConstraintViolation = errors.New("uniqueness constraint violation")

// ConflictError wraps ErrConstraintViolation with the violated constraint.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return ErrConstraintViolation
}

// ClubRecord carries the mutable club fields for one write. Season widens the
// stored activity window; it never narrows it.
type ClubRecord struct {
	External athle.ExternalID
	Name     string
	Season   athle.Season
}

// AthleteRecord carries the mutable athlete fields for one write. Empty
// optional fields never erase previously stored values on update.
type AthleteRecord struct {
	External    athle.ExternalID
	Name        string
	BirthYear   *int
	LicenseID   string
	Sex         string
	Nationality string
}

// ClubScope identifies one stored club used to scope an athlete crawl.
type ClubScope struct {
	ID       int64
	External athle.ExternalID
	Name     string
}

// Clubs is the club persistence contract.
type Clubs interface {
	// SnapshotClubs loads the reconciler's view of every stored club.
	SnapshotClubs(ctx context.Context) ([]reconcile.ClubRef, error)
	// ActiveClubs lists clubs whose activity window covers the season.
	ActiveClubs(ctx context.Context, season athle.Season) ([]ClubScope, error)
	// ClubByExternalID looks up a single club for targeted re-scrapes.
	ClubByExternalID(ctx context.Context, ext athle.ExternalID) (ClubScope, bool, error)
	// InsertClub creates a row and returns the store-assigned internal id.
	InsertClub(ctx context.Context, rec ClubRecord) (int64, error)
	// UpdateClub overwrites mutable fields of an existing row.
	UpdateClub(ctx context.Context, id int64, rec ClubRecord) error
}

// Athletes is the athlete persistence contract.
type Athletes interface {
	SnapshotAthletes(ctx context.Context) ([]reconcile.AthleteRef, error)
	InsertAthlete(ctx context.Context, rec AthleteRecord) (int64, error)
	UpdateAthlete(ctx context.Context, id int64, rec AthleteRecord) error
}
