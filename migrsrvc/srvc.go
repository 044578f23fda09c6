// Package migrsrvc copies a phase's submissions into another phase and
// re-runs them there.
package migrsrvc

import (
	"context"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/subm"
)

type CompRepo interface {
	GetCompetition(ctx context.Context, id int64) (comp.Competition, error)
	GetPhase(ctx context.Context, id int64) (comp.Phase, error)
	// ordered by index
	ListPhases(ctx context.Context, compID int64) ([]comp.Phase, error)
}

type Submissions interface {
	ListPhaseSubms(ctx context.Context, phaseID int64) ([]subm.Subm, error)
	Resubmit(ctx context.Context, source subm.Subm, phaseID int64) (subm.Subm, error)
}

type MigrSrvc struct {
	comps  CompRepo
	subms  Submissions
}

func NewMigrSrvc(comps CompRepo, subms Submissions) *MigrSrvc {
	return &MigrSrvc{
		comps:  comps,
		subms:  subms,
	}
}

type MigrationResult struct {
	Created    int `json:"created"`
	Dispatched int `json:"dispatched"`
}

type MigrateParams struct {
	SourcePhaseID int64
	TargetPhaseID int64
	Requester     uuid.UUID
}
