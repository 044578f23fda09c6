package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

func (r *PgRepo) GetCompetition(ctx context.Context, id int64) (comp.Competition, error) {
	var c comp.Competition
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, creator_uuid FROM competitions WHERE id = $1
	`, id).Scan(&c.ID, &c.Title, &c.CreatorUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comp.Competition{}, srvcerror.ErrNotFound(fmt.Sprintf("competition %d not found", id))
		}
		return comp.Competition{}, fmt.Errorf("failed to query competition: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT user_uuid FROM competition_collaborators
		WHERE competition_id = $1 ORDER BY user_uuid
	`, id)
	if err != nil {
		return comp.Competition{}, fmt.Errorf("failed to query collaborators: %w", err)
	}
	c.Collaborators, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return comp.Competition{}, fmt.Errorf("failed to scan collaborators: %w", err)
	}
	return c, nil
}

func (r *PgRepo) GetPhase(ctx context.Context, id int64) (comp.Phase, error) {
	var p comp.Phase
	err := r.pool.QueryRow(ctx, `
		SELECT id, competition_id, idx, name FROM phases WHERE id = $1
	`, id).Scan(&p.ID, &p.CompetitionID, &p.Index, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comp.Phase{}, srvcerror.ErrNotFound(fmt.Sprintf("phase %d not found", id))
		}
		return comp.Phase{}, fmt.Errorf("failed to query phase: %w", err)
	}
	return p, nil
}

func (r *PgRepo) ListPhases(ctx context.Context, compID int64) ([]comp.Phase, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, competition_id, idx, name FROM phases
		WHERE competition_id = $1 ORDER BY idx
	`, compID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phases: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (comp.Phase, error) {
		var p comp.Phase
		err := row.Scan(&p.ID, &p.CompetitionID, &p.Index, &p.Name)
		return p, err
	})
}

func (r *PgRepo) ListPhaseTasks(ctx context.Context, phaseID int64) ([]comp.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.key, t.name
		FROM phase_tasks pt
		JOIN tasks t ON t.id = pt.task_id
		WHERE pt.phase_id = $1
		ORDER BY t.id
	`, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phase tasks: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (comp.Task, error) {
		var t comp.Task
		err := row.Scan(&t.ID, &t.Key, &t.Name)
		return t, err
	})
}

// StoreData registers an uploaded blob reference.
func (r *PgRepo) StoreData(ctx context.Context, d subm.Data) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submission_data (key, data_file) VALUES ($1, $2)
	`, d.Key, d.DataFile)
	if err != nil {
		return fmt.Errorf("failed to insert data reference: %w", err)
	}
	return nil
}

func (r *PgRepo) GetData(ctx context.Context, key uuid.UUID) (subm.Data, error) {
	var d subm.Data
	err := r.pool.QueryRow(ctx, `
		SELECT key, data_file FROM submission_data WHERE key = $1
	`, key).Scan(&d.Key, &d.DataFile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subm.Data{}, srvcerror.ErrNotFound(fmt.Sprintf("data %s not found", key))
		}
		return subm.Data{}, fmt.Errorf("failed to query data reference: %w", err)
	}
	return d, nil
}
