// Package filter derives views of the cached student list. Every function
// returns a subset of its input in input order and never fetches.
package filter

import (
	"strings"

	"github.com/nonsonwune/hostel_admin/models"
)

// Criteria is the full set of view filters. The zero value matches everyone.
type Criteria struct {
	Term        string `json:"term"`
	PendingOnly bool   `json:"pendingOnly"`
	Unassigned  bool   `json:"unassigned"`
	Hostel      string `json:"hostel"`
	MinScore    *int   `json:"minScore"`
	MaxScore    *int   `json:"maxScore"`
}

// IsZero reports whether c matches every student.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Term) == "" && !c.PendingOnly && !c.Unassigned &&
		strings.TrimSpace(c.Hostel) == "" && c.MinScore == nil && c.MaxScore == nil
}

// Students is the search box filter: a case-insensitive substring match of
// term against name or enrollment number. A blank term returns list as is.
func Students(list []models.Student, term string) []models.Student {
	return Apply(list, Criteria{Term: term})
}

// Pending returns the students waiting on a hostel decision.
func Pending(list []models.Student) []models.Student {
	return Apply(list, Criteria{PendingOnly: true})
}

func Apply(list []models.Student, c Criteria) []models.Student {
	if c.IsZero() {
		return list
	}

	term := strings.ToLower(strings.TrimSpace(c.Term))
	hostel := strings.ToLower(strings.TrimSpace(c.Hostel))

	out := make([]models.Student, 0, len(list))
	for _, s := range list {
		if term != "" && !matchesTerm(s, term) {
			continue
		}
		if c.PendingOnly && !s.HasPendingRequest() {
			continue
		}
		if c.Unassigned && s.Hostel != nil {
			continue
		}
		if hostel != "" && !matchesHostel(s, hostel) {
			continue
		}
		if c.MinScore != nil && s.TrustScore < *c.MinScore {
			continue
		}
		if c.MaxScore != nil && s.TrustScore > *c.MaxScore {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesTerm(s models.Student, term string) bool {
	return strings.Contains(strings.ToLower(s.Name), term) ||
		strings.Contains(strings.ToLower(s.EnrollmentNumber), term)
}

// matchesHostel checks both the current room and the requested hostel.
func matchesHostel(s models.Student, hostel string) bool {
	return strings.Contains(strings.ToLower(s.HostelName()), hostel) ||
		strings.Contains(strings.ToLower(s.RequestedHostel()), hostel)
}
