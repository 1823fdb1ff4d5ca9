package models

import (
	"encoding/json"
	"strings"
)

// HostelAssignment is the room a student currently holds
type HostelAssignment struct {
	HostelName string `json:"name"`
	RoomNumber string `json:"roomNumber"`
}

// HostelRequest is a pending assignment change awaiting an admin decision
type HostelRequest struct {
	HostelName string `json:"hostelName"`
}

// Student represents a record returned by GET /users/all
type Student struct {
	ID               string            `json:"_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	EnrollmentNumber string            `json:"enrollmentNumber"`
	TrustScore       int               `json:"trustScore"`
	Hostel           *HostelAssignment `json:"hostel,omitempty"`
	HostelRequest    *HostelRequest    `json:"hostelRequest,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" and tolerates a blank hostel
// object, which the backend sends for students without a room.
func (s *Student) UnmarshalJSON(data []byte) error {
	type plain Student
	var raw struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Student(raw.plain)
	if s.ID == "" {
		s.ID = raw.AltID
	}
	if s.Hostel != nil && strings.TrimSpace(s.Hostel.HostelName) == "" {
		s.Hostel = nil
	}
	if s.HostelRequest != nil && strings.TrimSpace(s.HostelRequest.HostelName) == "" {
		s.HostelRequest = nil
	}
	return nil
}

// HasPendingRequest reports whether the student is waiting on a decision.
func (s Student) HasPendingRequest() bool {
	return s.HostelRequest != nil
}

func (s Student) HostelName() string {
	if s.Hostel == nil {
		return ""
	}
	return s.Hostel.HostelName
}

func (s Student) RequestedHostel() string {
	if s.HostelRequest == nil {
		return ""
	}
	return s.HostelRequest.HostelName
}
