package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

func (r *Repo) AddCompetition(c comp.Competition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comps[c.ID] = c
}

func (r *Repo) AddCollaborator(compID int64, user uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.comps[compID]
	c.Collaborators = append(c.Collaborators, user)
	r.comps[compID] = c
}

func (r *Repo) AddPhase(p comp.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases[p.ID] = p
}

// AddPhaseTask registers t, possibly already shared with other phases.
func (r *Repo) AddPhaseTask(phaseID int64, t comp.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	r.phaseTasks[phaseID] = append(r.phaseTasks[phaseID], t.ID)
}

func (r *Repo) AddLeaderboard(lb leaderboard.Leaderboard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaderboards[lb.ID] = lb
}

func (r *Repo) GetCompetition(ctx context.Context, id int64) (comp.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comps[id]
	if !ok {
		return comp.Competition{}, srvcerror.ErrNotFound(fmt.Sprintf("competition %d not found", id))
	}
	return c, nil
}

func (r *Repo) GetPhase(ctx context.Context, id int64) (comp.Phase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.phases[id]
	if !ok {
		return comp.Phase{}, srvcerror.ErrNotFound(fmt.Sprintf("phase %d not found", id))
	}
	return p, nil
}

func (r *Repo) ListPhases(ctx context.Context, compID int64) ([]comp.Phase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []comp.Phase
	for _, p := range r.phases {
		if p.CompetitionID == compID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Index < res[j].Index })
	return res, nil
}

func (r *Repo) ListPhaseTasks(ctx context.Context, phaseID int64) ([]comp.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []comp.Task
	for _, id := range r.phaseTasks[phaseID] {
		res = append(res, r.tasks[id])
	}
	return res, nil
}

func (r *Repo) ListLeaderboards(ctx context.Context, compID int64) ([]leaderboard.Leaderboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []leaderboard.Leaderboard
	for _, lb := range r.leaderboards {
		if lb.CompetitionID == compID {
			res = append(res, lb)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *Repo) GetColumn(ctx context.Context, id int64) (leaderboard.Column, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lb := range r.leaderboards {
		if c, ok := lb.Column(id); ok {
			return c, nil
		}
	}
	return leaderboard.Column{}, srvcerror.ErrNotFound(fmt.Sprintf("column %d not found", id))
}

// ListEntries returns the submissions scored on a leaderboard, oldest first.
func (r *Repo) ListEntries(ctx context.Context, lbID int64) ([]leaderboard.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subms := r.listWhere(func(s subm.Subm) bool {
		return s.LeaderboardID != nil && *s.LeaderboardID == lbID
	})
	entries := make([]leaderboard.Entry, len(subms))
	for i, s := range subms {
		scores := make(map[int64]float64)
		for k, sc := range r.scores {
			if k.subm == s.UUID {
				scores[k.column] = sc.Value
			}
		}
		entries[i] = leaderboard.Entry{
			SubmUUID:      s.UUID,
			Participant:   s.Owner,
			PhaseID:       s.PhaseID,
			LeaderboardID: lbID,
			Status:        s.Status,
			IsParent:      s.HasChildren,
			CreatedAt:     s.CreatedAt,
			Scores:        scores,
		}
	}
	return entries, nil
}
