package submsrvc

import (
	"context"
	"fmt"

	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/subm"
)

// Resubmit clones a top-level submission into another phase and starts
// the clone. Children of a group are not copied; the clone is a group
// only when the target phase evaluates against several tasks, and then
// re-derives its children once execution is acknowledged.
func (s *SubmSrvc) Resubmit(ctx context.Context, source subm.Subm, phaseID int64) (subm.Subm, error) {
	if !source.IsTopLevel() {
		return subm.Subm{}, newErrChildNotMigratable()
	}

	taskIDs, err := s.fanout.Plan(ctx, phaseID)
	if err != nil {
		return subm.Subm{}, err
	}

	clone := source.CloneInto(phaseID)
	clone.HasChildren = len(taskIDs) > 1
	err = s.submRepo.StoreSubm(ctx, clone)
	if err != nil {
		return subm.Subm{}, fmt.Errorf("failed to store clone: %w", err)
	}
	logger.FromContext(ctx).Debug("submission cloned",
		"source_uuid", source.UUID, "clone_uuid", clone.UUID, "phase_id", phaseID,
		"has_children", clone.HasChildren)

	err = s.Start(ctx, clone)
	if err != nil {
		return clone, fmt.Errorf("failed to start clone: %w", err)
	}
	return clone, nil
}
