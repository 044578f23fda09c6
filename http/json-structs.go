package http

import (
	"time"

	"github.com/programme-lv/competitions/subm"
	"github.com/programme-lv/competitions/submsrvc"
)

type Participant struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

type Score struct {
	ColumnID int64   `json:"column_id"`
	Score    float64 `json:"score"`
}

type Subm struct {
	UUID          string      `json:"uuid"`
	Owner         Participant `json:"owner"`
	PhaseID       int64       `json:"phase_id"`
	ParentUUID    *string     `json:"parent_uuid"`
	TaskID        *int64      `json:"task_id"`
	HasChildren   bool        `json:"has_children"`
	Status        string      `json:"status"`
	StatusDetails string      `json:"status_details"`
	CreatedAt     time.Time   `json:"created_at"`
	IsPublic      bool        `json:"is_public"`
	DataKey       string      `json:"data_key"`
	Filename      string      `json:"filename,omitempty"`
	Description   string      `json:"description"`
	LeaderboardID *int64      `json:"leaderboard_id"`
	Scores        []Score     `json:"scores,omitempty"`
}

// the secret is never rendered
func mapSubm(s subm.Subm) Subm {
	var parent *string
	if s.ParentUUID != nil {
		p := s.ParentUUID.String()
		parent = &p
	}
	return Subm{
		UUID:          s.UUID.String(),
		Owner:         Participant{UUID: s.Owner.UUID.String(), Username: s.Owner.Username},
		PhaseID:       s.PhaseID,
		ParentUUID:    parent,
		TaskID:        s.TaskID,
		HasChildren:   s.HasChildren,
		Status:        s.Status.String(),
		StatusDetails: s.StatusDetails,
		CreatedAt:     s.CreatedAt,
		IsPublic:      s.IsPublic,
		DataKey:       s.DataKey.String(),
		Description:   s.Description,
		LeaderboardID: s.LeaderboardID,
	}
}

func mapSubmView(v submsrvc.SubmView) Subm {
	res := mapSubm(v.Subm)
	res.Filename = v.Filename
	res.Scores = make([]Score, len(v.Scores))
	for i, sc := range v.Scores {
		res.Scores[i] = Score{ColumnID: sc.ColumnID, Score: sc.Value}
	}
	return res
}
