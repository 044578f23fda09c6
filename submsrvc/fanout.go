package submsrvc

import (
	"context"
	"fmt"

	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/subm"
)

// FanoutPolicy decides how a group submission splits into children.
type FanoutPolicy interface {
	// task ids the phase currently evaluates against
	Plan(ctx context.Context, phaseID int64) ([]int64, error)
	// children for the phase's current task set, not yet persisted
	Children(ctx context.Context, parent subm.Subm) ([]subm.Subm, error)
}

// PhaseTaskFanout creates one child per task of the parent's phase.
type PhaseTaskFanout struct {
	ListPhaseTasks func(ctx context.Context, phaseID int64) ([]comp.Task, error)
}

func (f PhaseTaskFanout) Plan(ctx context.Context, phaseID int64) ([]int64, error) {
	tasks, err := f.ListPhaseTasks(ctx, phaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phase tasks: %w", err)
	}
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids, nil
}

func (f PhaseTaskFanout) Children(ctx context.Context, parent subm.Subm) ([]subm.Subm, error) {
	taskIDs, err := f.Plan(ctx, parent.PhaseID)
	if err != nil {
		return nil, err
	}
	children := make([]subm.Subm, len(taskIDs))
	for i, id := range taskIDs {
		children[i] = parent.NewChild(id)
	}
	return children, nil
}
