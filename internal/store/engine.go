package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/metrics"
	"github.com/athledata/athlecrawl/internal/reconcile"
)

// Op labels what a single apply did.
type Op string

// Apply operations.
const (
	OpInserted Op = "insert"
	OpUpdated  Op = "update"
	// OpRecovered means an insert hit a uniqueness conflict and was
	// converted into an update after re-reconciling.
	OpRecovered Op = "recovered"
	// OpSkipped means the resolution was ambiguous and nothing was written.
	OpSkipped Op = "skipped"
)

// Applied reports the result of one upsert.
type Applied struct {
	ID int64
	Op Op
}

// Engine applies reconciled candidates as exactly one atomic insert-or-update
// each. The insert-then-update fallback makes the engine idempotent and safe
// against overlapping crawl runs without application-level locks.
type Engine struct {
	clubs    Clubs
	athletes Athletes
	matcher  *reconcile.Matcher
	logger   *zap.Logger
}

// NewEngine builds an Engine.
func NewEngine(clubs Clubs, athletes Athletes, matcher *reconcile.Matcher, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{clubs: clubs, athletes: athletes, matcher: matcher, logger: logger}
}

// ApplyClub persists one club candidate under the given resolution.
func (e *Engine) ApplyClub(ctx context.Context, res reconcile.Resolution, cand athle.ClubCandidate) (Applied, error) {
	rec := ClubRecord{External: cand.ID, Name: cand.Name, Season: cand.Season}

	switch res.Outcome {
	case reconcile.AmbiguousNoMatch:
		e.logger.Warn("ambiguous club identity, not merged",
			zap.String("external_id", cand.ID.String()),
			zap.String("name", cand.Name),
		)
		return Applied{Op: OpSkipped}, nil

	case reconcile.MatchExisting:
		if err := e.clubs.UpdateClub(ctx, res.ID, rec); err != nil {
			return Applied{}, fmt.Errorf("update club %d: %w", res.ID, err)
		}
		metrics.ObserveRecord(string(athle.KindClub), string(OpUpdated))
		return Applied{ID: res.ID, Op: OpUpdated}, nil
	}

	id, err := e.clubs.InsertClub(ctx, rec)
	if err == nil {
		metrics.ObserveRecord(string(athle.KindClub), string(OpInserted))
		return Applied{ID: id, Op: OpInserted}, nil
	}
	if !errors.Is(err, ErrConstraintViolation) {
		return Applied{}, fmt.Errorf("insert club %s: %w", cand.ID, err)
	}

	// Concurrent discovery race: the row exists now. Re-reconcile against a
	// fresh snapshot and convert the insert into an update.
	known, snapErr := e.clubs.SnapshotClubs(ctx)
	if snapErr != nil {
		return Applied{}, fmt.Errorf("reload clubs after conflict: %w", snapErr)
	}
	rematch := e.matcher.ResolveClub(cand, known)
	if rematch.Outcome != reconcile.MatchExisting {
		return Applied{}, fmt.Errorf("club %s conflicted on insert but re-reconciled to %s: %w",
			cand.ID, rematch.Outcome, err)
	}
	if err := e.clubs.UpdateClub(ctx, rematch.ID, rec); err != nil {
		return Applied{}, fmt.Errorf("update club %d after conflict: %w", rematch.ID, err)
	}
	metrics.ObserveRecord(string(athle.KindClub), string(OpRecovered))
	return Applied{ID: rematch.ID, Op: OpRecovered}, nil
}

// ApplyAthlete persists one athlete candidate under the given resolution.
func (e *Engine) ApplyAthlete(ctx context.Context, res reconcile.Resolution, cand athle.AthleteCandidate) (Applied, error) {
	rec := AthleteRecord{
		External:    cand.ID,
		Name:        cand.Name,
		BirthYear:   cand.BirthYear,
		LicenseID:   cand.LicenseID,
		Sex:         cand.Sex,
		Nationality: cand.Nationality,
	}

	switch res.Outcome {
	case reconcile.AmbiguousNoMatch:
		e.logger.Warn("ambiguous athlete identity, not merged",
			zap.String("external_id", cand.ID.String()),
			zap.String("name", cand.Name),
		)
		return Applied{Op: OpSkipped}, nil

	case reconcile.MatchExisting:
		if err := e.athletes.UpdateAthlete(ctx, res.ID, rec); err != nil {
			return Applied{}, fmt.Errorf("update athlete %d: %w", res.ID, err)
		}
		metrics.ObserveRecord(string(athle.KindAthlete), string(OpUpdated))
		return Applied{ID: res.ID, Op: OpUpdated}, nil
	}

	id, err := e.athletes.InsertAthlete(ctx, rec)
	if err == nil {
		metrics.ObserveRecord(string(athle.KindAthlete), string(OpInserted))
		return Applied{ID: id, Op: OpInserted}, nil
	}
	if !errors.Is(err, ErrConstraintViolation) {
		return Applied{}, fmt.Errorf("insert athlete %s: %w", cand.ID, err)
	}

	known, snapErr := e.athletes.SnapshotAthletes(ctx)
	if snapErr != nil {
		return Applied{}, fmt.Errorf("reload athletes after conflict: %w", snapErr)
	}
	rematch := e.matcher.ResolveAthlete(cand, known)
	if rematch.Outcome != reconcile.MatchExisting {
		return Applied{}, fmt.Errorf("athlete %s conflicted on insert but re-reconciled to %s: %w",
			cand.ID, rematch.Outcome, err)
	}
	if err := e.athletes.UpdateAthlete(ctx, rematch.ID, rec); err != nil {
		return Applied{}, fmt.Errorf("update athlete %d after conflict: %w", rematch.ID, err)
	}
	metrics.ObserveRecord(string(athle.KindAthlete), string(OpRecovered))
	return Applied{ID: rematch.ID, Op: OpRecovered}, nil
}
