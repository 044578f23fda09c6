package migrsrvc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/metrics"
	decorator "github.com/programme-lv/competitions/srvccqs"
	"github.com/programme-lv/competitions/srvcerror"
)

// Migrate clones every top-level submission of the source phase into
// the target phase and starts each clone. Running it twice produces a
// second set of clones.
func (s *MigrSrvc) Migrate(ctx context.Context, p MigrateParams) (MigrationResult, error) {
	source, err := s.comps.GetPhase(ctx, p.SourcePhaseID)
	if err != nil {
		return MigrationResult{}, err
	}
	target, err := s.comps.GetPhase(ctx, p.TargetPhaseID)
	if err != nil {
		return MigrationResult{}, err
	}

	err = s.authorize(ctx, p.Requester, source, target)
	if err != nil {
		return MigrationResult{}, err
	}

	return s.migrate(ctx, source, target)
}

type MigrateToNextQuery struct {
	PhaseID   int64
	Requester uuid.UUID
}

// MigrateToNext migrates a phase into the one following it by index.
func (s *MigrSrvc) MigrateToNext(ctx context.Context, q MigrateToNextQuery) (MigrationResult, error) {
	source, err := s.comps.GetPhase(ctx, q.PhaseID)
	if err != nil {
		return MigrationResult{}, err
	}

	competition, err := s.comps.GetCompetition(ctx, source.CompetitionID)
	if err != nil {
		return MigrationResult{}, err
	}
	if !competition.CanAdminister(q.Requester) {
		return MigrationResult{}, newErrNoPermissions()
	}

	phases, err := s.comps.ListPhases(ctx, source.CompetitionID)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to list phases: %w", err)
	}
	target, ok := comp.NextPhase(phases, source)
	if !ok {
		return MigrationResult{}, srvcerror.ErrNotFound(
			fmt.Sprintf("phase %d is the last phase of its competition", source.ID))
	}

	return s.migrate(ctx, source, target)
}

// MigrateToNextHandler exposes MigrateToNext to the request layer.
func (s *MigrSrvc) MigrateToNextHandler() decorator.QueryHandler[MigrateToNextQuery, MigrationResult] {
	return decorator.QueryHandlerFunc[MigrateToNextQuery, MigrationResult](s.MigrateToNext)
}

func (s *MigrSrvc) authorize(ctx context.Context, requester uuid.UUID, phases ...comp.Phase) error {
	checked := make(map[int64]bool)
	for _, ph := range phases {
		if checked[ph.CompetitionID] {
			continue
		}
		checked[ph.CompetitionID] = true

		competition, err := s.comps.GetCompetition(ctx, ph.CompetitionID)
		if err != nil {
			return err
		}
		if !competition.CanAdminister(requester) {
			return newErrNoPermissions()
		}
	}
	return nil
}

func (s *MigrSrvc) migrate(ctx context.Context, source, target comp.Phase) (MigrationResult, error) {
	ctx = logger.WithPhase(ctx, source.ID)
	log := logger.FromContext(ctx)

	subms, err := s.subms.ListPhaseSubms(ctx, source.ID)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to list source submissions: %w", err)
	}

	var res MigrationResult
	for _, entity := range subms {
		if !entity.IsTopLevel() {
			continue
		}
		clone, err := s.subms.Resubmit(ctx, entity, target.ID)
		if clone.UUID != uuid.Nil {
			res.Created++
		}
		if err != nil {
			log.Error("failed to migrate submission", "subm_uuid", entity.UUID, "error", err)
			continue
		}
		res.Dispatched++
	}

	metrics.RecordMigrated(res.Created)
	log.Info("phase migrated",
		"target_phase_id", target.ID,
		"created", res.Created,
		"dispatched", res.Dispatched)
	return res, nil
}
