package subm

import (
	"path"
	"time"

	"github.com/google/uuid"
)

// Participant is the opaque identity a submission is owned by.
type Participant struct {
	UUID     uuid.UUID
	Username string
}

type Subm struct {
	UUID          uuid.UUID
	Owner         Participant
	PhaseID       int64
	ParentUUID    *uuid.UUID // set on children only
	TaskID        *int64     // task a child was derived for
	HasChildren   bool       // grouping record, never scored itself
	Status        Status
	StatusDetails string
	Secret        uuid.UUID // authorizes status callbacks, write-once
	CreatedAt     time.Time
	IsPublic      bool
	DataKey       uuid.UUID
	Description   string
	LeaderboardID *int64 // assigned once the first score arrives
}

// New builds a fresh top-level submission in the initial status
// with a newly generated secret.
func New(owner Participant, phaseID int64, dataKey uuid.UUID) Subm {
	return Subm{
		UUID:      uuid.New(),
		Owner:     owner,
		PhaseID:   phaseID,
		Status:    StatusSubmitting,
		Secret:    uuid.New(),
		CreatedAt: time.Now(),
		DataKey:   dataKey,
	}
}

func (s Subm) IsTopLevel() bool {
	return s.ParentUUID == nil
}

// CloneInto copies the submission into another phase as a new
// top-level record that starts its lifecycle from scratch. Whether the
// clone is a group depends on the target phase and is left to the caller.
func (s Subm) CloneInto(phaseID int64) Subm {
	c := New(s.Owner, phaseID, s.DataKey)
	c.IsPublic = s.IsPublic
	c.Description = s.Description
	return c
}

// NewChild derives the member of a group that runs against taskID.
// Children reuse the parent's secret since the execution collaborator
// only ever received the parent's one.
func (s Subm) NewChild(taskID int64) Subm {
	parent := s.UUID
	task := taskID
	c := New(s.Owner, s.PhaseID, s.DataKey)
	c.ParentUUID = &parent
	c.TaskID = &task
	c.Secret = s.Secret
	c.IsPublic = s.IsPublic
	c.Description = s.Description
	return c
}

// Data references an uploaded blob; its content is never touched here.
type Data struct {
	Key      uuid.UUID
	DataFile string // storage path including the original filename
}

func (d Data) Filename() string {
	return path.Base(d.DataFile)
}

type Score struct {
	SubmUUID    uuid.UUID
	ColumnID    int64
	ColumnIndex int
	Value       float64
}
