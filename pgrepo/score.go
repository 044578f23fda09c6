package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

const pgUniqueViolation = "23505"

func (r *PgRepo) StoreScore(ctx context.Context, score subm.Score, check func(s subm.Subm) (subm.Subm, error)) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockSubm(ctx, tx, score.SubmUUID)
		if err != nil {
			return err
		}
		updated, err := check(current)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO submission_scores (subm_uuid, column_id, value)
			VALUES ($1, $2, $3)
		`, score.SubmUUID, score.ColumnID, score.Value)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return srvcerror.ErrDuplicateScore(fmt.Sprintf(
					"submission %s already has a score for column %d", score.SubmUUID, score.ColumnID))
			}
			return fmt.Errorf("failed to insert score: %w", err)
		}

		return writeSubm(ctx, tx, updated)
	})
}

func (r *PgRepo) ListScores(ctx context.Context, submUuid uuid.UUID) ([]subm.Score, error) {
	query := `
		SELECT sc.subm_uuid, sc.column_id, c.idx, sc.value
		FROM submission_scores sc
		JOIN leaderboard_columns c ON c.id = sc.column_id
		WHERE sc.subm_uuid = $1
		ORDER BY c.idx, c.id
	`
	rows, err := r.pool.Query(ctx, query, submUuid)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var res []subm.Score
	for rows.Next() {
		var s subm.Score
		err := rows.Scan(&s.SubmUUID, &s.ColumnID, &s.ColumnIndex, &s.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
