package leaderboard

import (
	"sort"

	"github.com/programme-lv/competitions/srvcerror"
)

// Computation decides how several eligible scores fold into one cell.
type Computation string

const (
	ComputationNone Computation = ""
	ComputationAvg  Computation = "avg"
	ComputationSum  Computation = "sum"
	ComputationMin  Computation = "min"
	ComputationMax  Computation = "max"
)

func ParseComputation(s string) (Computation, error) {
	switch c := Computation(s); c {
	case ComputationNone, ComputationAvg, ComputationSum, ComputationMin, ComputationMax:
		return c, nil
	}
	return "", srvcerror.ErrInvalidRequest("unknown column computation: " + s)
}

type Column struct {
	ID            int64
	LeaderboardID int64
	Title         string
	Index         int
	Computation   Computation
	Hidden        bool
}

type Leaderboard struct {
	ID            int64
	CompetitionID int64
	Title         string
	Columns       []Column
}

// VisibleColumns returns non hidden columns ordered by index.
func (lb Leaderboard) VisibleColumns() []Column {
	cols := make([]Column, 0, len(lb.Columns))
	for _, c := range lb.Columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].Index < cols[j].Index
	})
	return cols
}

func (lb Leaderboard) Column(id int64) (Column, bool) {
	for _, c := range lb.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}
