package leaderboard

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/competitions/subm"
)

// Entry is one submission as seen by the aggregator.
type Entry struct {
	SubmUUID      uuid.UUID
	Participant   subm.Participant
	PhaseID       int64
	LeaderboardID int64
	Status        subm.Status
	IsParent      bool
	CreatedAt     time.Time
	Scores        map[int64]float64 // column id -> score
}

// Filter narrows the eligible entries. Zero value keeps everything.
type Filter struct {
	PhaseID      *int64
	Participants []uuid.UUID
}

func (f *Filter) keep(e Entry) bool {
	if f == nil {
		return true
	}
	if f.PhaseID != nil && *f.PhaseID != e.PhaseID {
		return false
	}
	if len(f.Participants) == 0 {
		return true
	}
	for _, p := range f.Participants {
		if p == e.Participant.UUID {
			return true
		}
	}
	return false
}

type Cell struct {
	Value float64
	Valid bool // false renders as empty
}

type Row struct {
	Participant subm.Participant
	Cells       []Cell // aligned with Result.Columns
}

type Result struct {
	Leaderboard Leaderboard
	Columns     []Column
	Rows        []Row
}

// Compute builds the participant x column matrix of a leaderboard.
//
// Eligible rows are finished, non group submissions attached to the
// leaderboard, keeping only the most recent one per participant and
// phase. Children of one group share a phase, so only the most recently
// created child counts and its siblings' scores are not merged in.
// Participants keep the order in which they first appear in entries.
// Hidden columns are dropped.
func Compute(lb Leaderboard, entries []Entry, f *Filter) Result {
	type key struct {
		participant uuid.UUID
		phase       int64
	}

	latest := make(map[key]Entry)
	var order []subm.Participant
	seen := make(map[uuid.UUID]bool)

	for _, e := range entries {
		if e.LeaderboardID != lb.ID || e.Status != subm.StatusFinished || e.IsParent {
			continue
		}
		if !f.keep(e) {
			continue
		}
		if !seen[e.Participant.UUID] {
			seen[e.Participant.UUID] = true
			order = append(order, e.Participant)
		}
		k := key{e.Participant.UUID, e.PhaseID}
		if prev, ok := latest[k]; !ok || !e.CreatedAt.Before(prev.CreatedAt) {
			latest[k] = e
		}
	}

	perParticipant := make(map[uuid.UUID][]Entry)
	for k, e := range latest {
		perParticipant[k.participant] = append(perParticipant[k.participant], e)
	}

	cols := lb.VisibleColumns()
	res := Result{Leaderboard: lb, Columns: cols, Rows: make([]Row, 0, len(order))}
	for _, p := range order {
		rows := perParticipant[p.UUID]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		})
		row := Row{Participant: p, Cells: make([]Cell, len(cols))}
		for i, col := range cols {
			row.Cells[i] = computeCell(col, rows)
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// rows are ordered oldest first
func computeCell(col Column, rows []Entry) Cell {
	if len(rows) == 0 {
		return Cell{}
	}
	if col.Computation == ComputationNone {
		v, ok := rows[len(rows)-1].Scores[col.ID]
		return Cell{Value: v, Valid: ok}
	}

	var vals []float64
	for _, r := range rows {
		if v, ok := r.Scores[col.ID]; ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Cell{}
	}
	return Cell{Value: reduce(col.Computation, vals), Valid: true}
}

func reduce(c Computation, vals []float64) float64 {
	acc := vals[0]
	switch c {
	case ComputationSum, ComputationAvg:
		for _, v := range vals[1:] {
			acc += v
		}
		if c == ComputationAvg {
			acc /= float64(len(vals))
		}
	case ComputationMin:
		for _, v := range vals[1:] {
			acc = min(acc, v)
		}
	case ComputationMax:
		for _, v := range vals[1:] {
			acc = max(acc, v)
		}
	}
	return acc
}
