package models

import (
	"time"

	"github.com/google/uuid"
)

// HostelAction is the body of POST /users/{id}/manage-hostel
type HostelAction string

const (
	ActionApprove HostelAction = "approve"
	ActionReject  HostelAction = "reject"
)

// PastTense is used in operator messages ("approved", "rejected").
func (a HostelAction) PastTense() string {
	switch a {
	case ActionApprove:
		return "approved"
	case ActionReject:
		return "rejected"
	}
	return string(a) + "ed"
}

// Decision represents a row of the hostel_decisions audit table
type Decision struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	StudentID string       `db:"student_id" json:"student_id"`
	Action    HostelAction `db:"action" json:"action"`
	Succeeded bool         `db:"succeeded" json:"succeeded"`
	Error     string       `db:"error" json:"error,omitempty"`
	DecidedAt time.Time    `db:"decided_at" json:"decided_at"`
}
