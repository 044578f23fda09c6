package submsrvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/subm"
)

type AttachScoreParams struct {
	SubmUUID uuid.UUID
	ColumnID int64
	Value    float64
}

// AttachScore records one column score of a running submission and binds
// the submission to the column's leaderboard. Scores are append-once.
func (s *SubmSrvc) AttachScore(ctx context.Context, p AttachScoreParams) error {
	col, err := s.colRepo.GetColumn(ctx, p.ColumnID)
	if err != nil {
		return err
	}

	score := subm.Score{
		SubmUUID:    p.SubmUUID,
		ColumnID:    col.ID,
		ColumnIndex: col.Index,
		Value:       p.Value,
	}
	err = s.submRepo.StoreScore(ctx, score, func(current subm.Subm) (subm.Subm, error) {
		if current.HasChildren {
			return subm.Subm{}, newErrGroupNotScorable()
		}
		if current.Status.IsTerminal() {
			return subm.Subm{}, newErrNotScorable(current.Status)
		}
		if current.LeaderboardID != nil && *current.LeaderboardID != col.LeaderboardID {
			return subm.Subm{}, newErrColumnOfOtherLeaderboard()
		}
		lbID := col.LeaderboardID
		current.LeaderboardID = &lbID
		return current, nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Debug("score attached",
		"subm_uuid", p.SubmUUID, "column_id", col.ID, "score", p.Value)
	return nil
}
