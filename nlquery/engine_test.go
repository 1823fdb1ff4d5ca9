package nlquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nonsonwune/hostel_admin/models"
	"github.com/nonsonwune/hostel_admin/nlquery/prompts"
)

type scriptedGenerator struct {
	replies []string
	errs    []error
	keys    []string
	calls   int
}

func (g *scriptedGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	i := g.calls
	g.calls++
	g.keys = append(g.keys, apiKey)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func newTestEngine(keys []string, gen generator) *Engine {
	return &Engine{
		keys:    NewKeyManager(keys),
		gen:     gen,
		prompts: prompts.NewPromptBuilder(),
		backoff: []time.Duration{0, 0, 0},
	}
}

func TestTranslateWithoutKeysUsesRules(t *testing.T) {
	gen := &scriptedGenerator{}
	e := newTestEngine(nil, gen)

	c, err := e.Translate(context.Background(), "pending requests", nil)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if !c.PendingOnly || gen.calls != 0 {
		t.Errorf("expected rule-based criteria without model calls, got %+v (%d calls)", c, gen.calls)
	}
}

func TestTranslateParsesFencedJSON(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"```json\n{\"hostel\": \"Block B\", \"minScore\": 5}\n```"}}
	e := newTestEngine([]string{"k1"}, gen)

	c, err := e.Translate(context.Background(), "good students in block b", []models.Student{
		{Hostel: &models.HostelAssignment{HostelName: "Block B"}},
	})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if c.Hostel != "Block B" || c.MinScore == nil || *c.MinScore != 5 {
		t.Errorf("unexpected criteria %+v", c)
	}
}

func TestTranslateRotatesKeysOnRateLimit(t *testing.T) {
	gen := &scriptedGenerator{
		errs:    []error{errors.New("googleapi: Error 429: Resource has been exhausted (e.g. check quota exceeded)")},
		replies: []string{"", `{"pendingOnly": true}`},
	}
	e := newTestEngine([]string{"k1", "k2"}, gen)

	c, err := e.Translate(context.Background(), "who is waiting", nil)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if !c.PendingOnly {
		t.Errorf("unexpected criteria %+v", c)
	}
	if len(gen.keys) != 2 || gen.keys[0] != "k1" || gen.keys[1] != "k2" {
		t.Errorf("keys used = %v, want k1 then k2", gen.keys)
	}
}

func TestTranslateFallsBackAfterFailures(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"I cannot help", "nope", "still no"}}
	e := newTestEngine([]string{"k1"}, gen)

	c, err := e.Translate(context.Background(), "flagged students", nil)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want 3", gen.calls)
	}
	if c.MaxScore == nil || *c.MaxScore != -1 {
		t.Errorf("expected keyword fallback criteria, got %+v", c)
	}
}

func TestTranslateEmptyQuestion(t *testing.T) {
	if _, err := newTestEngine(nil, &scriptedGenerator{}).Translate(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestParseCriteria(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"bare", `{"term": "ravi"}`, false},
		{"prose", `Here you go: {"unassigned": true} hope it helps`, false},
		{"fenced", "```\n{\"pendingOnly\": true}\n```", false},
		{"no object", "VALID", true},
		{"bad json", `{"minScore": "five"}`, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseCriteria(tc.text)
			if (err != nil) != tc.wantErr {
				t.Errorf("parseCriteria() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
