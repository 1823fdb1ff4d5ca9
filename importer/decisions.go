// Package importer loads hostel decisions from CSV files and submits them
// to the backend with a bounded pool of workers.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/nonsonwune/hostel_admin/models"
)

const DefaultWorkerCount = 4

var validate = validator.New()

// Accepted header spellings, compared after normalizeHeader.
var (
	studentIDHeaders = []string{"studentid", "id", "userid"}
	actionHeaders    = []string{"action", "decision"}
)

// DecisionRow is one approve/reject line of a decisions file.
type DecisionRow struct {
	Row       int                 `validate:"-"`
	StudentID string              `validate:"required"`
	Action    models.HostelAction `validate:"required,oneof=approve reject"`
}

// RowError ties a failure to its line in the source file.
type RowError struct {
	Row       int
	StudentID string
	Action    models.HostelAction
	Err       error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result summarizes a Submit run.
type Result struct {
	Succeeded int
	Failures  []*RowError
}

func (r Result) Total() int { return r.Succeeded + len(r.Failures) }

// ReadDecisions parses a CSV with student id and action columns. Rows that
// fail validation are returned separately and are never submitted. Row
// numbers are file line numbers.
func ReadDecisions(reader *csv.Reader) ([]DecisionRow, []*RowError, error) {
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading headers: %w", err)
	}

	idCol := getColumnIndex(headers, studentIDHeaders...)
	actionCol := getColumnIndex(headers, actionHeaders...)
	if idCol < 0 || actionCol < 0 {
		return nil, nil, fmt.Errorf("header validation failed: need student_id and action columns, got %v", headers)
	}

	var rows []DecisionRow
	var invalid []*RowError
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			row := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				row = pe.Line
			}
			invalid = append(invalid, &RowError{Row: row, Err: err})
			continue
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		row := DecisionRow{
			Row:       line,
			StudentID: strings.TrimSpace(field(record, idCol)),
			Action:    models.HostelAction(strings.ToLower(strings.TrimSpace(field(record, actionCol)))),
		}
		if err := validate.Struct(row); err != nil {
			invalid = append(invalid, &RowError{Row: line, StudentID: row.StudentID, Action: row.Action, Err: describe(err)})
			continue
		}
		rows = append(rows, row)
	}

	return rows, invalid, nil
}

// Submit runs fn for every row with at most workers calls in flight. A
// failing row never stops the others.
func Submit(ctx context.Context, rows []DecisionRow, workers int, fn func(context.Context, DecisionRow) error) Result {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}

	var (
		mu     sync.Mutex
		result Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			err := gctx.Err()
			if err == nil {
				err = fn(gctx, row)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, &RowError{Row: row.Row, StudentID: row.StudentID, Action: row.Action, Err: err})
			} else {
				result.Succeeded++
			}
			return nil
		})
	}
	g.Wait()

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Row < result.Failures[j].Row
	})
	return result
}

// PrintSummary logs the outcome of a run.
func PrintSummary(r Result, invalid []*RowError) {
	log.Printf("Decision import summary:")
	log.Printf("Submitted: %d", r.Total())
	log.Printf("Succeeded: %d", r.Succeeded)
	log.Printf("Failed: %d", len(r.Failures))
	log.Printf("Skipped (invalid): %d", len(invalid))
	for _, f := range r.Failures {
		log.Printf("- %v", f)
	}
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

func getColumnIndex(headers []string, names ...string) int {
	for i, h := range headers {
		n := normalizeHeader(h)
		for _, name := range names {
			if n == name {
				return i
			}
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
