package submsrvc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/metrics"
	"github.com/programme-lv/competitions/subm"
)

type CreateSubmParams struct {
	Owner       subm.Participant
	PhaseID     int64
	DataKey     uuid.UUID
	Description string
	IsPublic    bool
}

// CreateSubm persists a new submission and immediately starts it.
// A phase evaluating against several tasks turns the submission into
// a group whose children are created once execution is acknowledged.
func (s *SubmSrvc) CreateSubm(ctx context.Context, p CreateSubmParams) (subm.Subm, error) {
	if p.Owner.UUID == uuid.Nil {
		return subm.Subm{}, newErrOwnerMissing()
	}

	if _, err := s.dataRepo.GetData(ctx, p.DataKey); err != nil {
		return subm.Subm{}, err
	}

	taskIDs, err := s.fanout.Plan(ctx, p.PhaseID)
	if err != nil {
		return subm.Subm{}, err
	}

	entity := subm.New(p.Owner, p.PhaseID, p.DataKey)
	entity.Description = p.Description
	entity.IsPublic = p.IsPublic
	entity.HasChildren = len(taskIDs) > 1

	err = s.submRepo.StoreSubm(ctx, entity)
	if err != nil {
		return subm.Subm{}, fmt.Errorf("failed to store submission: %w", err)
	}
	logger.FromContext(ctx).Info("submission created",
		"subm_uuid", entity.UUID,
		"phase_id", entity.PhaseID,
		"has_children", entity.HasChildren)

	err = s.Start(ctx, entity)
	if err != nil {
		return subm.Subm{}, fmt.Errorf("failed to start submission: %w", err)
	}
	return entity, nil
}

// Start dispatches the submission for execution and returns without
// waiting. A group is dispatched exactly once together with the task
// ids its children will be created for.
func (s *SubmSrvc) Start(ctx context.Context, entity subm.Subm) error {
	var taskIDs []int64
	if entity.HasChildren {
		var err error
		taskIDs, err = s.fanout.Plan(ctx, entity.PhaseID)
		if err != nil {
			return err
		}
	}

	s.dispatcher.Dispatch(ctx, entity.DispatchReq(false, taskIDs))
	metrics.RecordDispatch(false)

	logger.FromContext(ctx).Debug("submission dispatched",
		"subm_uuid", entity.UUID,
		"planned_children", len(taskIDs))
	return nil
}
