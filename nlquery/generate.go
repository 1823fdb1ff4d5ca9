package nlquery

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/nonsonwune/hostel_admin/filter"
	"github.com/nonsonwune/hostel_admin/nlquery/prompts"
)

var (
	quotedPattern     = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	namedPattern      = regexp.MustCompile(`\b(?:named|called)\s+([a-z][a-z.'-]*)`)
	lowerBoundPattern = regexp.MustCompile(`\b(above|over|more than|greater than|at least)\s+(-?\d+)`)
	upperBoundPattern = regexp.MustCompile(`\b(below|under|less than|at most)\s+(-?\d+)`)
)

// Words that carry no search meaning once the keyword rules have run.
var stopWords = map[string]bool{
	"find": true, "show": true, "me": true, "list": true, "search": true, "get": true,
	"who": true, "which": true, "is": true, "are": true, "has": true, "have": true,
	"all": true, "any": true, "the": true, "a": true, "an": true, "of": true, "and": true,
	"for": true, "from": true, "with": true, "in": true, "to": true, "by": true, "their": true,
	"student": true, "students": true, "score": true, "scores": true, "trust": true,
	"pending": true, "request": true, "requests": true, "requested": true, "waiting": true, "awaiting": true,
	"unassigned": true, "no": true, "without": true, "hostel": true, "hostels": true, "room": true, "rooms": true,
	"flagged": true, "negative": true, "excellent": true, "top": true, "rated": true,
}

// GenerateCriteria builds filter criteria from a question using keyword
// rules. It is the offline path when no Gemini key is configured. Words
// left over after the rules are used as the search term.
func GenerateCriteria(question string, hostels *prompts.HostelNameMatcher) filter.Criteria {
	query := strings.ToLower(strings.TrimSpace(question))
	var c filter.Criteria

	if containsAny(query, "pending", "request", "waiting", "awaiting") {
		c.PendingOnly = true
	}
	if containsAny(query, "unassigned", "no hostel", "without hostel", "without a hostel", "no room", "without a room") {
		c.Unassigned = true
	}

	if containsAny(query, "flagged", "negative") {
		c.MaxScore = intPtr(-1)
	}
	if containsAny(query, "excellent", "top rated") {
		c.MinScore = intPtr(10)
	}
	if m := lowerBoundPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && (m[1] == "at least" || n < math.MaxInt) {
			if m[1] != "at least" {
				n++
			}
			c.MinScore = intPtr(n)
		}
	}
	if m := upperBoundPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && (m[1] == "at most" || n > math.MinInt) {
			if m[1] != "at most" {
				n--
			}
			c.MaxScore = intPtr(n)
		}
	}

	if hostels != nil {
		c.Hostel = hostels.FindHostel(query)
	}

	switch {
	case quotedPattern.MatchString(question):
		m := quotedPattern.FindStringSubmatch(question)
		c.Term = m[1] + m[2]
	case namedPattern.MatchString(query):
		c.Term = namedPattern.FindStringSubmatch(query)[1]
	default:
		c.Term = remainingTerm(query, c.Hostel)
	}
	return c
}

// remainingTerm strips the hostel name, score clauses and stop words from
// query and returns what is left.
func remainingTerm(query, hostel string) string {
	if hostel != "" {
		query = strings.ReplaceAll(query, strings.ToLower(hostel), " ")
	}
	query = lowerBoundPattern.ReplaceAllString(query, " ")
	query = upperBoundPattern.ReplaceAllString(query, " ")

	words := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '.' && r != '\''
	})
	var kept []string
	for _, w := range words {
		w = strings.Trim(w, "-.'")
		if w != "" && !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func intPtr(i int) *int { return &i }
