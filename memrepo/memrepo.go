// Package memrepo keeps competitions, submissions and leaderboards in
// process memory. It backs tests and local runs without Postgres.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/comp"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

type scoreKey struct {
	subm   uuid.UUID
	column int64
}

type Repo struct {
	mu sync.RWMutex

	subms     map[uuid.UUID]subm.Subm
	submOrder []uuid.UUID // insertion order
	scores    map[scoreKey]subm.Score
	data      map[uuid.UUID]subm.Data

	comps        map[int64]comp.Competition
	phases       map[int64]comp.Phase
	tasks        map[int64]comp.Task
	phaseTasks   map[int64][]int64
	leaderboards map[int64]leaderboard.Leaderboard
}

func New() *Repo {
	return &Repo{
		subms:        make(map[uuid.UUID]subm.Subm),
		scores:       make(map[scoreKey]subm.Score),
		data:         make(map[uuid.UUID]subm.Data),
		comps:        make(map[int64]comp.Competition),
		phases:       make(map[int64]comp.Phase),
		tasks:        make(map[int64]comp.Task),
		phaseTasks:   make(map[int64][]int64),
		leaderboards: make(map[int64]leaderboard.Leaderboard),
	}
}

func errSubmNotFound(id uuid.UUID) error {
	return srvcerror.ErrNotFound(fmt.Sprintf("submission %s not found", id))
}

func (r *Repo) StoreSubm(ctx context.Context, s subm.Subm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subms[s.UUID]; !ok {
		r.submOrder = append(r.submOrder, s.UUID)
	}
	r.subms[s.UUID] = s
	return nil
}

func (r *Repo) GetSubm(ctx context.Context, id uuid.UUID) (subm.Subm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subms[id]
	if !ok {
		return subm.Subm{}, errSubmNotFound(id)
	}
	return s, nil
}

func (r *Repo) listWhere(keep func(s subm.Subm) bool) []subm.Subm {
	var res []subm.Subm
	for _, id := range r.submOrder {
		if s := r.subms[id]; keep(s) {
			res = append(res, s)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}

func (r *Repo) ListPhaseSubms(ctx context.Context, phaseID int64) ([]subm.Subm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listWhere(func(s subm.Subm) bool { return s.PhaseID == phaseID }), nil
}

func (r *Repo) ListChildren(ctx context.Context, parent uuid.UUID) ([]subm.Subm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listWhere(func(s subm.Subm) bool {
		return s.ParentUUID != nil && *s.ParentUUID == parent
	}), nil
}

func (r *Repo) UpdateSubm(ctx context.Context, id uuid.UUID, fn func(s subm.Subm) (subm.Subm, error)) (subm.Subm, error) {
	return r.UpdateSubmWithChildren(ctx, id, func(s subm.Subm) (subm.Subm, []subm.Subm, error) {
		updated, err := fn(s)
		return updated, nil, err
	})
}

func (r *Repo) UpdateSubmWithChildren(ctx context.Context, id uuid.UUID, fn func(s subm.Subm) (subm.Subm, []subm.Subm, error)) (subm.Subm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.subms[id]
	if !ok {
		return subm.Subm{}, errSubmNotFound(id)
	}
	updated, children, err := fn(current)
	if err != nil {
		return subm.Subm{}, err
	}
	r.subms[id] = updated
	for _, c := range children {
		if _, ok := r.subms[c.UUID]; !ok {
			r.submOrder = append(r.submOrder, c.UUID)
		}
		r.subms[c.UUID] = c
	}
	return updated, nil
}

func (r *Repo) StoreScore(ctx context.Context, score subm.Score, check func(s subm.Subm) (subm.Subm, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.subms[score.SubmUUID]
	if !ok {
		return errSubmNotFound(score.SubmUUID)
	}
	updated, err := check(current)
	if err != nil {
		return err
	}
	k := scoreKey{score.SubmUUID, score.ColumnID}
	if _, dup := r.scores[k]; dup {
		return srvcerror.ErrDuplicateScore(
			fmt.Sprintf("submission %s already has a score for column %d", score.SubmUUID, score.ColumnID))
	}
	r.scores[k] = score
	r.subms[score.SubmUUID] = updated
	return nil
}

func (r *Repo) ListScores(ctx context.Context, submUuid uuid.UUID) ([]subm.Score, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []subm.Score
	for k, s := range r.scores {
		if k.subm == submUuid {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].ColumnIndex != res[j].ColumnIndex {
			return res[i].ColumnIndex < res[j].ColumnIndex
		}
		return res[i].ColumnID < res[j].ColumnID
	})
	return res, nil
}

func (r *Repo) AddData(d subm.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[d.Key] = d
}

func (r *Repo) GetData(ctx context.Context, key uuid.UUID) (subm.Data, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.data[key]
	if !ok {
		return subm.Data{}, srvcerror.ErrNotFound(fmt.Sprintf("data %s not found", key))
	}
	return d, nil
}

// AddScore seeds a score and binds the submission to lbID.
func (r *Repo) AddScore(score subm.Score, lbID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.subms[score.SubmUUID]
	s.LeaderboardID = &lbID
	r.subms[score.SubmUUID] = s
	r.scores[scoreKey{score.SubmUUID, score.ColumnID}] = score
}
