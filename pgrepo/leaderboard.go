package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

func scanColumn(row pgx.Row) (leaderboard.Column, error) {
	var c leaderboard.Column
	var computation string
	err := row.Scan(&c.ID, &c.LeaderboardID, &c.Title, &c.Index, &computation, &c.Hidden)
	c.Computation = leaderboard.Computation(computation)
	return c, err
}

func (r *PgRepo) GetColumn(ctx context.Context, id int64) (leaderboard.Column, error) {
	c, err := scanColumn(r.pool.QueryRow(ctx, `
		SELECT id, leaderboard_id, title, idx, computation, hidden
		FROM leaderboard_columns WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leaderboard.Column{}, srvcerror.ErrNotFound(fmt.Sprintf("column %d not found", id))
		}
		return leaderboard.Column{}, fmt.Errorf("failed to query column: %w", err)
	}
	return c, nil
}

func (r *PgRepo) ListLeaderboards(ctx context.Context, compID int64) ([]leaderboard.Leaderboard, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, competition_id, title FROM leaderboards
		WHERE competition_id = $1 ORDER BY id
	`, compID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboards: %w", err)
	}
	lbs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leaderboard.Leaderboard, error) {
		var lb leaderboard.Leaderboard
		err := row.Scan(&lb.ID, &lb.CompetitionID, &lb.Title)
		return lb, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboards: %w", err)
	}

	colRows, err := r.pool.Query(ctx, `
		SELECT c.id, c.leaderboard_id, c.title, c.idx, c.computation, c.hidden
		FROM leaderboard_columns c
		JOIN leaderboards l ON l.id = c.leaderboard_id
		WHERE l.competition_id = $1
		ORDER BY c.idx, c.id
	`, compID)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer colRows.Close()

	byID := make(map[int64]int, len(lbs))
	for i, lb := range lbs {
		byID[lb.ID] = i
	}
	for colRows.Next() {
		c, err := scanColumn(colRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		i := byID[c.LeaderboardID]
		lbs[i].Columns = append(lbs[i].Columns, c)
	}
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	logger.FromContext(ctx).Debug("leaderboards loaded", "competition_id", compID, "count", len(lbs))
	return lbs, nil
}

// ListEntries returns the submissions bound to a leaderboard with their
// scores, oldest first.
func (r *PgRepo) ListEntries(ctx context.Context, lbID int64) ([]leaderboard.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uuid, owner_uuid, owner_username, phase_id, status, has_children, created_at
		FROM submissions
		WHERE leaderboard_id = $1
		ORDER BY created_at, uuid
	`, lbID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leaderboard.Entry, error) {
		e := leaderboard.Entry{LeaderboardID: lbID, Scores: make(map[int64]float64)}
		var status string
		err := row.Scan(&e.SubmUUID, &e.Participant.UUID, &e.Participant.Username,
			&e.PhaseID, &status, &e.IsParent, &e.CreatedAt)
		e.Status = subm.Status(status)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	scoreRows, err := r.pool.Query(ctx, `
		SELECT sc.subm_uuid, sc.column_id, sc.value
		FROM submission_scores sc
		JOIN submissions s ON s.uuid = sc.subm_uuid
		WHERE s.leaderboard_id = $1
	`, lbID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry scores: %w", err)
	}
	defer scoreRows.Close()

	byUuid := make(map[uuid.UUID]int, len(entries))
	for i, e := range entries {
		byUuid[e.SubmUUID] = i
	}
	for scoreRows.Next() {
		var submUuid uuid.UUID
		var colID int64
		var value float64
		err := scoreRows.Scan(&submUuid, &colID, &value)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry score: %w", err)
		}
		if i, ok := byUuid[submUuid]; ok {
			entries[i].Scores[colID] = value
		}
	}
	return entries, scoreRows.Err()
}
