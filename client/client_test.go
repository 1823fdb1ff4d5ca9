package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nonsonwune/hostel_admin/models"
)

const studentsJSON = `[
  {"_id": "s1", "name": "Ravi Kumar", "email": "ravi@uni.edu", "enrollmentNumber": "CS101",
   "trustScore": 12, "hostel": {"name": "Block A", "roomNumber": "101"}},
  {"id": "s2", "name": "Meera Nair", "enrollmentNumber": "EE202", "trustScore": -3,
   "hostel": {"name": "", "roomNumber": ""}, "hostelRequest": {"hostelName": "Block B"}}
]`

func TestFetchStudents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/users/all" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(studentsJSON))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", time.Second, WithToken("secret"))
	students, err := c.FetchStudents(context.Background())
	if err != nil {
		t.Fatalf("FetchStudents() error = %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("got %d students, want 2", len(students))
	}

	ravi := students[0]
	if ravi.ID != "s1" || ravi.HostelName() != "Block A" || ravi.Hostel.RoomNumber != "101" {
		t.Errorf("unexpected first student: %+v", ravi)
	}
	if ravi.HasPendingRequest() {
		t.Error("Ravi should not have a pending request")
	}

	meera := students[1]
	if meera.ID != "s2" {
		t.Errorf("id fallback failed, got %q", meera.ID)
	}
	if meera.Hostel != nil {
		t.Errorf("blank hostel should decode as nil, got %+v", meera.Hostel)
	}
	if meera.RequestedHostel() != "Block B" || meera.TrustScore != -3 {
		t.Errorf("unexpected second student: %+v", meera)
	}
}

func TestFetchStudentsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"database unavailable"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).FetchStudents(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Body != "database unavailable" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestFetchStudentsConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(url, time.Second).FetchStudents(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestManageHostel(t *testing.T) {
	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/s2/manage-hostel" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		gotAction = body["action"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := New(srv.URL, time.Second).ManageHostel(context.Background(), "s2", models.ActionApprove); err != nil {
		t.Fatalf("ManageHostel() error = %v", err)
	}
	if gotAction != "approve" {
		t.Errorf("action = %q, want approve", gotAction)
	}
}

func TestManageHostelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).ManageHostel(context.Background(), "missing", models.ActionReject)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManageHostelEmptyID(t *testing.T) {
	if err := New("http://unused", time.Second).ManageHostel(context.Background(), " ", models.ActionApprove); err == nil {
		t.Fatal("expected error for empty id")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPClientTransport(t *testing.T) {
	var gotURL string
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`[{"_id": "s1", "name": "Ravi Kumar"}]`)),
			Request:    r,
		}, nil
	})}

	c := New("http://hostel.internal/api", time.Second, WithHTTPClient(hc))
	students, err := c.FetchStudents(context.Background())
	if err != nil {
		t.Fatalf("FetchStudents() error = %v", err)
	}
	if gotURL != "http://hostel.internal/api/users/all" {
		t.Errorf("request URL = %q", gotURL)
	}
	if len(students) != 1 || students[0].Name != "Ravi Kumar" {
		t.Errorf("unexpected students %+v", students)
	}
}

func TestWithHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Minute, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	if _, err := c.FetchStudents(context.Background()); err == nil {
		t.Fatal("expected timeout from the injected client")
	}
}
