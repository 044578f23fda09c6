package subm

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/srvcerror"
)

// DispatchReq asks the execution collaborator to run a submission.
type DispatchReq struct {
	SubmUUID uuid.UUID
	Secret   uuid.UUID
	PhaseID  int64
	DataKey  uuid.UUID
	TaskIDs  []int64 // planned child tasks when dispatching a group
	Scoring  bool    // re-run for the scoring step
}

func (s Subm) DispatchReq(scoring bool, taskIDs []int64) DispatchReq {
	return DispatchReq{
		SubmUUID: s.UUID,
		Secret:   s.Secret,
		PhaseID:  s.PhaseID,
		DataKey:  s.DataKey,
		TaskIDs:  taskIDs,
		Scoring:  scoring,
	}
}

// Transition is the outcome of applying a status update. Side effects
// are returned to the caller instead of being performed here.
type Transition struct {
	From           Status
	Subm           Subm
	Triggers       []DispatchReq
	ExpandChildren bool
}

// Transition validates and applies a status change.
func (s Subm) Transition(to Status, details string) (Transition, error) {
	if !s.Status.CanTransitionTo(to) {
		return Transition{}, newErrInvalidTransition(s.Status, to)
	}

	t := Transition{From: s.Status}
	if s.HasChildren && s.Status == StatusSubmitting &&
		(to == StatusSubmitted || to == StatusRunning) {
		t.ExpandChildren = true
	}
	// a group is never executed with a scoring payload
	if to == StatusScoring && !s.HasChildren {
		t.Triggers = append(t.Triggers, s.DispatchReq(true, nil))
	}

	s.Status = to
	s.StatusDetails = details
	t.Subm = s
	return t, nil
}

// RollUp derives the status a group should move to given its
// children. ok is false when the group status stays as is.
func RollUp(parent Subm, children []Subm) (to Status, ok bool) {
	if len(children) == 0 || parent.Status.IsTerminal() {
		return "", false
	}

	allTerminal := true
	allFinished := true
	anyStarted := false
	for _, c := range children {
		if !c.Status.IsTerminal() {
			allTerminal = false
		}
		if c.Status != StatusFinished {
			allFinished = false
		}
		if c.Status != StatusSubmitting && c.Status != StatusSubmitted {
			anyStarted = true
		}
	}

	switch {
	case allTerminal && allFinished:
		to = StatusFinished
	case allTerminal:
		to = StatusFailed
	case anyStarted:
		to = StatusRunning
	default:
		return "", false
	}
	if !parent.Status.CanTransitionTo(to) {
		if to == StatusFinished && parent.Status.CanTransitionTo(StatusRunning) {
			// finish is only reachable once running
			return StatusRunning, true
		}
		return "", false
	}
	return to, true
}

func newErrInvalidTransition(from, to Status) *srvcerror.Error {
	return srvcerror.ErrInvalidTransition(
		fmt.Sprintf("cannot change submission status from %s to %s", from, to))
}
