package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/normalize"
)

const adzunaPayload = `{
	"count": 2,
	"results": [
		{
			"id": "4471234567",
			"title": "<strong>Senior</strong> Go Engineer",
			"description": "<p>Build payment systems.</p>",
			"company": {"display_name": "Acme Corp"},
			"location": {"display_name": "Bengaluru, Karnataka"},
			"category": {"label": "IT Jobs"},
			"salary_max": 2400000.0,
			"redirect_url": "https://www.adzuna.in/land/ad/4471234567",
			"created": "2026-02-13T10:00:00Z",
			"contract_type": "permanent"
		},
		{
			"id": 4479999999,
			"title": "Data Analyst",
			"description": "Numbers.",
			"company": {"display_name": "Beta Ltd"},
			"location": {"display_name": "Pune"},
			"category": {"label": "Analytics Jobs"},
			"redirect_url": "https://www.adzuna.in/land/ad/4479999999",
			"created": "not a date"
		}
	]
}`

func TestAdzunaFetchJobs_Success(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(adzunaPayload))
	}))
	defer srv.Close()

	a := NewAdzunaAdapter(AdzunaConfig{AppID: "id", AppKey: "key", Country: "in", DefaultQuery: "developer", DefaultLocation: "india"}, testClient(srv))

	jobs, err := a.FetchJobs(context.Background(), model.FetchParams{Keyword: "golang", Page: 2, Limit: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/api/jobs/in/search/2" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	for _, want := range []string{"what=golang", "where=india", "results_per_page=7", "app_id=id", "app_key=key", "sort_by=date"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.ID != "adzuna_4471234567" {
		t.Errorf("expected ID adzuna_4471234567, got %s", j.ID)
	}
	if j.Title != "Senior Go Engineer" {
		t.Errorf("expected markup stripped from title, got %q", j.Title)
	}
	if j.Description != "Build payment systems." {
		t.Errorf("unexpected description %q", j.Description)
	}
	if j.Company.Name != "Acme Corp" || j.Company.Location != "Bengaluru, Karnataka" {
		t.Errorf("unexpected company: %+v", j.Company)
	}
	if j.Location != "Bengaluru, Karnataka" {
		t.Errorf("unexpected location %q", j.Location)
	}
	if j.Salary != 2400000 || !j.SalaryDisclosed {
		t.Errorf("expected disclosed salary 2400000, got %d (%v)", j.Salary, j.SalaryDisclosed)
	}
	if j.JobType != "permanent" {
		t.Errorf("expected contract type as job type, got %q", j.JobType)
	}
	if j.Source != model.SourceAdzuna || !j.IsExternal {
		t.Errorf("unexpected source %s external=%v", j.Source, j.IsExternal)
	}
	if !j.CreatedAt.Equal(time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected CreatedAt %v", j.CreatedAt)
	}
	if j.Requirements == nil {
		t.Error("expected non-nil requirements")
	}

	// Numeric id, missing salary and contract type, bad date.
	j = jobs[1]
	if j.ID != "adzuna_4479999999" {
		t.Errorf("expected numeric id to be prefixed, got %s", j.ID)
	}
	if j.Salary != 0 || j.SalaryDisclosed {
		t.Errorf("expected undisclosed salary, got %d (%v)", j.Salary, j.SalaryDisclosed)
	}
	if j.JobType != "Analytics Jobs" {
		t.Errorf("expected category label fallback, got %q", j.JobType)
	}
	if !j.CreatedAt.Equal(normalize.Epoch) {
		t.Errorf("expected epoch for unparseable date, got %v", j.CreatedAt)
	}
}

func TestAdzunaFetchJobs_DefaultsApplied(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	a := NewAdzunaAdapter(AdzunaConfig{AppID: "id", AppKey: "key", DefaultQuery: "developer"}, testClient(srv))
	jobs, err := a.FetchJobs(context.Background(), model.FetchParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(jobs))
	}
	if !strings.Contains(gotQuery, "what=developer") {
		t.Errorf("expected default query, got %q", gotQuery)
	}
	if strings.Contains(gotQuery, "where=") {
		t.Errorf("expected no where param without a default location, got %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "results_per_page=10") {
		t.Errorf("expected default limit 10, got %q", gotQuery)
	}
}

func TestAdzunaFetchJobs_MissingCredentialsMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	a := NewAdzunaAdapter(AdzunaConfig{AppID: "id"}, testClient(srv))
	_, err := a.FetchJobs(context.Background(), model.FetchParams{})
	if !errors.Is(err, model.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no upstream call, got %d", calls.Load())
	}
}

func TestAdzunaFetchJobs_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewAdzunaAdapter(AdzunaConfig{AppID: "id", AppKey: "key"}, testClient(srv))
	_, err := a.FetchJobs(context.Background(), model.FetchParams{})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.RetryAfter != 30*time.Second {
		t.Errorf("unexpected HTTPError %+v", httpErr)
	}
}
