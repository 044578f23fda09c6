package submsrvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/subm"
)

type SubmRepo interface {
	StoreSubm(ctx context.Context, s subm.Subm) error
	GetSubm(ctx context.Context, id uuid.UUID) (subm.Subm, error)
	// ordered by creation time, oldest first
	ListPhaseSubms(ctx context.Context, phaseID int64) ([]subm.Subm, error)
	ListChildren(ctx context.Context, parent uuid.UUID) ([]subm.Subm, error)
	// UpdateSubm reads, modifies and writes one submission as an atomic unit.
	// Nothing is written when fn fails.
	UpdateSubm(ctx context.Context, id uuid.UUID, fn func(s subm.Subm) (subm.Subm, error)) (subm.Subm, error)
	// UpdateSubmWithChildren is UpdateSubm that also inserts the returned
	// children in the same unit. Nothing is written when fn fails.
	UpdateSubmWithChildren(ctx context.Context, id uuid.UUID, fn func(s subm.Subm) (subm.Subm, []subm.Subm, error)) (subm.Subm, error)
	// StoreScore locks the submission, lets check approve and modify it,
	// then inserts the score. A second score for the same column fails.
	StoreScore(ctx context.Context, score subm.Score, check func(s subm.Subm) (subm.Subm, error)) error
	// ordered by column index
	ListScores(ctx context.Context, submUuid uuid.UUID) ([]subm.Score, error)
}

type DataRepo interface {
	GetData(ctx context.Context, key uuid.UUID) (subm.Data, error)
}

type ColumnRepo interface {
	GetColumn(ctx context.Context, id int64) (leaderboard.Column, error)
}

// Dispatcher hands work to the execution collaborator without waiting
// for it to run. Failures are the dispatcher's to log.
type Dispatcher interface {
	Dispatch(ctx context.Context, req subm.DispatchReq)
}
