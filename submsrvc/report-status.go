package submsrvc

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/logger"
	"github.com/programme-lv/competitions/metrics"
	"github.com/programme-lv/competitions/subm"
)

type ReportStatusParams struct {
	SubmUUID uuid.UUID
	Secret   string
	Status   string
	Details  string
}

// ReportStatus applies a status callback from the execution collaborator.
//
// The secret is verified before anything else. Moving a submission to
// Scoring re-dispatches it for the scoring run; the first acknowledgement
// of a group creates its children in the same write as the status change.
// Children roll their progress up into the group.
func (s *SubmSrvc) ReportStatus(ctx context.Context, p ReportStatusParams) (subm.Subm, error) {
	ctx = logger.WithSubm(ctx, p.SubmUUID)
	log := logger.FromContext(ctx)

	var tr subm.Transition
	var expanded int
	updated, err := s.submRepo.UpdateSubmWithChildren(ctx, p.SubmUUID, func(current subm.Subm) (subm.Subm, []subm.Subm, error) {
		if !secretMatches(current, p.Secret) {
			metrics.RecordRejection("secret")
			return subm.Subm{}, nil, newErrSecretMismatch()
		}
		to, ok := subm.ParseStatus(p.Status)
		if !ok {
			metrics.RecordRejection("status")
			return subm.Subm{}, nil, newErrUnknownStatus(p.Status)
		}
		var err error
		tr, err = current.Transition(to, p.Details)
		if err != nil {
			metrics.RecordRejection("transition")
			return subm.Subm{}, nil, err
		}
		if !tr.ExpandChildren {
			return tr.Subm, nil, nil
		}
		// children are stored together with the status change
		children, err := s.fanout.Children(ctx, tr.Subm)
		if err != nil {
			return subm.Subm{}, nil, fmt.Errorf("failed to derive children: %w", err)
		}
		expanded = len(children)
		return tr.Subm, children, nil
	})
	if err != nil {
		log.Warn("status update rejected", "status", p.Status, "error", err)
		return subm.Subm{}, err
	}

	metrics.RecordTransition(tr.From.String(), updated.Status.String())
	log.Info("submission status changed", "from", tr.From, "to", updated.Status)
	if tr.ExpandChildren {
		log.Info("group expanded", "children", expanded)
	}

	for _, req := range tr.Triggers {
		s.dispatcher.Dispatch(ctx, req)
		metrics.RecordDispatch(req.Scoring)
	}

	if updated.ParentUUID != nil {
		err = s.rollUp(ctx, *updated.ParentUUID)
		if err != nil {
			// the child's own transition stands
			log.Error("failed to roll up group status", "parent_uuid", *updated.ParentUUID, "error", err)
		}
	}

	return updated, nil
}

// Authorize checks the secret the execution collaborator presents.
func (s *SubmSrvc) Authorize(ctx context.Context, submUuid uuid.UUID, secret string) (subm.Subm, error) {
	entity, err := s.submRepo.GetSubm(ctx, submUuid)
	if err != nil {
		return subm.Subm{}, err
	}
	if !secretMatches(entity, secret) {
		metrics.RecordRejection("secret")
		return subm.Subm{}, newErrSecretMismatch()
	}
	return entity, nil
}

func secretMatches(s subm.Subm, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(s.Secret.String()), []byte(secret)) == 1
}

func (s *SubmSrvc) rollUp(ctx context.Context, parentUuid uuid.UUID) error {
	children, err := s.submRepo.ListChildren(ctx, parentUuid)
	if err != nil {
		return err
	}

	var from subm.Status
	parent, err := s.submRepo.UpdateSubm(ctx, parentUuid, func(parent subm.Subm) (subm.Subm, error) {
		from = parent.Status
		// at most running then a terminal status
		for i := 0; i < 2; i++ {
			to, ok := subm.RollUp(parent, children)
			if !ok {
				break
			}
			tr, err := parent.Transition(to, parent.StatusDetails)
			if err != nil {
				return subm.Subm{}, err
			}
			parent = tr.Subm
		}
		return parent, nil
	})
	if err != nil {
		return err
	}
	if parent.Status != from {
		metrics.RecordTransition(from.String(), parent.Status.String())
		logger.FromContext(ctx).Info("group status rolled up",
			"parent_uuid", parentUuid, "from", from, "to", parent.Status)
	}
	return nil
}
