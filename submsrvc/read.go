package submsrvc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/subm"
)

type SubmView struct {
	Subm     subm.Subm
	Filename string
	Scores   []subm.Score
}

func (s *SubmSrvc) GetSubm(ctx context.Context, id uuid.UUID) (subm.Subm, error) {
	return s.submRepo.GetSubm(ctx, id)
}

// GetSubmView resolves the display filename and the ordered scores.
func (s *SubmSrvc) GetSubmView(ctx context.Context, id uuid.UUID) (SubmView, error) {
	entity, err := s.submRepo.GetSubm(ctx, id)
	if err != nil {
		return SubmView{}, err
	}
	data, err := s.dataRepo.GetData(ctx, entity.DataKey)
	if err != nil {
		return SubmView{}, fmt.Errorf("failed to resolve data blob: %w", err)
	}
	scores, err := s.submRepo.ListScores(ctx, id)
	if err != nil {
		return SubmView{}, fmt.Errorf("failed to list scores: %w", err)
	}
	return SubmView{
		Subm:     entity,
		Filename: data.Filename(),
		Scores:   scores,
	}, nil
}

func (s *SubmSrvc) ListPhaseSubms(ctx context.Context, phaseID int64) ([]subm.Subm, error) {
	return s.submRepo.ListPhaseSubms(ctx, phaseID)
}

func (s *SubmSrvc) ListChildren(ctx context.Context, parent uuid.UUID) ([]subm.Subm, error) {
	return s.submRepo.ListChildren(ctx, parent)
}
