package prompts

import (
	"sort"
	"strings"

	"github.com/nonsonwune/hostel_admin/models"
)

// HostelNameMatcher finds hostel names mentioned in free text
type HostelNameMatcher struct {
	hostelNames map[string]string // lowercase name -> exact name
}

// NewHostelNameMatcher collects the current and requested hostels of the
// given students.
func NewHostelNameMatcher(students []models.Student) *HostelNameMatcher {
	hm := &HostelNameMatcher{hostelNames: make(map[string]string)}
	for _, s := range students {
		hm.add(s.HostelName())
		hm.add(s.RequestedHostel())
	}
	return hm
}

func (hm *HostelNameMatcher) add(name string) {
	name = strings.TrimSpace(name)
	if name != "" {
		hm.hostelNames[strings.ToLower(name)] = name
	}
}

// Names returns the exact hostel names, sorted.
func (hm *HostelNameMatcher) Names() []string {
	names := make([]string, 0, len(hm.hostelNames))
	for _, name := range hm.hostelNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindHostel returns the longest known hostel name contained in text.
func (hm *HostelNameMatcher) FindHostel(text string) string {
	text = strings.ToLower(text)
	var best string
	for lower, exact := range hm.hostelNames {
		if strings.Contains(text, lower) && len(lower) > len(best) {
			best = exact
		}
	}
	return best
}
