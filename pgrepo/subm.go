package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

const submColumns = `
	uuid, owner_uuid, owner_username, phase_id, parent_uuid, task_id,
	has_children, status, status_details, secret, created_at,
	is_public, data_key, description, leaderboard_id`

func scanSubm(row pgx.Row) (subm.Subm, error) {
	var s subm.Subm
	var status string
	err := row.Scan(
		&s.UUID,
		&s.Owner.UUID,
		&s.Owner.Username,
		&s.PhaseID,
		&s.ParentUUID,
		&s.TaskID,
		&s.HasChildren,
		&status,
		&s.StatusDetails,
		&s.Secret,
		&s.CreatedAt,
		&s.IsPublic,
		&s.DataKey,
		&s.Description,
		&s.LeaderboardID,
	)
	s.Status = subm.Status(status)
	return s, err
}

func errSubmNotFound(id uuid.UUID) error {
	return srvcerror.ErrNotFound(fmt.Sprintf("submission %s not found", id))
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *PgRepo) StoreSubm(ctx context.Context, s subm.Subm) error {
	return insertSubm(ctx, r.pool, s)
}

func insertSubm(ctx context.Context, db execer, s subm.Subm) error {
	query := `
		INSERT INTO submissions (` + submColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := db.Exec(ctx, query,
		s.UUID,
		s.Owner.UUID,
		s.Owner.Username,
		s.PhaseID,
		s.ParentUUID,
		s.TaskID,
		s.HasChildren,
		string(s.Status),
		s.StatusDetails,
		s.Secret,
		s.CreatedAt.UTC().Truncate(time.Microsecond),
		s.IsPublic,
		s.DataKey,
		s.Description,
		s.LeaderboardID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	logger.FromContext(ctx).Debug("submission inserted", "subm_uuid", s.UUID)
	return nil
}

func (r *PgRepo) GetSubm(ctx context.Context, id uuid.UUID) (subm.Subm, error) {
	query := `SELECT ` + submColumns + ` FROM submissions WHERE uuid = $1`
	s, err := scanSubm(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subm.Subm{}, errSubmNotFound(id)
		}
		return subm.Subm{}, fmt.Errorf("failed to query submission: %w", err)
	}
	return s, nil
}

func (r *PgRepo) listSubms(ctx context.Context, where string, arg any) ([]subm.Subm, error) {
	query := `SELECT ` + submColumns + ` FROM submissions WHERE ` + where + ` ORDER BY created_at, uuid`
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var res []subm.Subm
	for rows.Next() {
		s, err := scanSubm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return res, nil
}

func (r *PgRepo) ListPhaseSubms(ctx context.Context, phaseID int64) ([]subm.Subm, error) {
	return r.listSubms(ctx, "phase_id = $1", phaseID)
}

func (r *PgRepo) ListChildren(ctx context.Context, parent uuid.UUID) ([]subm.Subm, error) {
	return r.listSubms(ctx, "parent_uuid = $1", parent)
}

// lockSubm must run inside tx; the row stays locked until commit.
func lockSubm(ctx context.Context, tx pgx.Tx, id uuid.UUID) (subm.Subm, error) {
	query := `SELECT ` + submColumns + ` FROM submissions WHERE uuid = $1 FOR UPDATE`
	s, err := scanSubm(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subm.Subm{}, errSubmNotFound(id)
		}
		return subm.Subm{}, fmt.Errorf("failed to lock submission: %w", err)
	}
	return s, nil
}

// only the mutable columns are written back
func writeSubm(ctx context.Context, tx pgx.Tx, s subm.Subm) error {
	query := `
		UPDATE submissions
		SET status = $1, status_details = $2, leaderboard_id = $3
		WHERE uuid = $4
	`
	_, err := tx.Exec(ctx, query, string(s.Status), s.StatusDetails, s.LeaderboardID, s.UUID)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

func (r *PgRepo) UpdateSubm(ctx context.Context, id uuid.UUID, fn func(s subm.Subm) (subm.Subm, error)) (subm.Subm, error) {
	return r.UpdateSubmWithChildren(ctx, id, func(s subm.Subm) (subm.Subm, []subm.Subm, error) {
		updated, err := fn(s)
		return updated, nil, err
	})
}

func (r *PgRepo) UpdateSubmWithChildren(ctx context.Context, id uuid.UUID, fn func(s subm.Subm) (subm.Subm, []subm.Subm, error)) (subm.Subm, error) {
	var updated subm.Subm
	var children []subm.Subm
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockSubm(ctx, tx, id)
		if err != nil {
			return err
		}
		updated, children, err = fn(current)
		if err != nil {
			return err
		}
		err = writeSubm(ctx, tx, updated)
		if err != nil {
			return err
		}
		for _, c := range children {
			err = insertSubm(ctx, tx, c)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return subm.Subm{}, err
	}
	logger.FromContext(ctx).Debug("submission updated",
		"subm_uuid", id, "status", updated.Status, "children", len(children))
	return updated, nil
}
