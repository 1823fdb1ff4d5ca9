package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/nonsonwune/hostel_admin/models"
)

func TestRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO hostel_decisions").
		WithArgs(id.String(), "s1", "approve", true, "", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewStore(db)
	err = store.Record(context.Background(), models.Decision{
		ID: id, StudentID: "s1", Action: models.ActionApprove, Succeeded: true, DecidedAt: at,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordFillsDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO hostel_decisions").
		WithArgs(sqlmock.AnyArg(), "s2", "reject", false, "status 500", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewStore(db).Record(context.Background(), models.Decision{
		StudentID: "s2", Action: models.ActionReject, Error: "status 500",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO hostel_decisions").WillReturnError(errors.New("connection reset"))

	if err := NewStore(db).Record(context.Background(), models.Decision{StudentID: "s1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	id1, id2 := uuid.New(), uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM hostel_decisions ORDER BY decided_at DESC").
		WithArgs(DefaultHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "action", "succeeded", "error", "decided_at"}).
			AddRow(id1.String(), "s1", "approve", true, "", now).
			AddRow(id2.String(), "s2", "reject", false, "status 404", now.Add(-time.Minute)))

	decisions, err := NewStore(db).Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("got %d decisions, want 2", len(decisions))
	}
	if decisions[0].ID != id1 || decisions[0].Action != models.ActionApprove || !decisions[0].Succeeded {
		t.Errorf("decision 0 = %+v", decisions[0])
	}
	if decisions[1].Error != "status 404" || decisions[1].Succeeded {
		t.Errorf("decision 1 = %+v", decisions[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecentBadID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM hostel_decisions").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "action", "succeeded", "error", "decided_at"}).
			AddRow("not-a-uuid", "s1", "approve", true, "", time.Now()))

	if _, err := NewStore(db).Recent(context.Background(), 5); err == nil {
		t.Fatal("expected uuid parse error")
	}
}
