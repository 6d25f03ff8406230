package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/jobmerge/internal/filter"
	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/normalize"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, s Store) {
	t.Helper()
	jobs := []model.Job{
		{
			ID: "db-1", Title: "Senior Go Engineer", Description: "Build services",
			Location: "Berlin", Salary: 90000, JobType: "Full-time",
			Requirements: []string{"Go", "SQL"},
			Company:      model.Company{ID: "c1", Name: "Acme", Location: "Berlin"},
			CreatedAt:    base.Add(-2 * time.Hour),
		},
		{
			ID: "db-2", Title: "Data Analyst", Description: "Dashboards for engineering",
			Location: "Remote", JobType: "Contract",
			Company:   model.Company{ID: "c2", Name: "Initech", Location: "Austin"},
			CreatedAt: base,
		},
		{
			ID: "db-3", Title: "Office Manager", Description: "Keep things running",
			Location: "Munich", JobType: "Part-time",
			Company:   model.Company{ID: "c3", Name: "Engineering Partners", Location: "Munich"},
			CreatedAt: base.Add(-time.Hour),
		},
	}
	if err := s.Insert(context.Background(), jobs); err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func ids(jobs []model.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestFindFilters(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	testFindFilters(t, s)
}

// testFindFilters runs the shared filter table against a seeded store.
func testFindFilters(t *testing.T, s Store) {
	t.Helper()
	tests := []struct {
		name   string
		filter model.StoreFilter
		want   []string
	}{
		{"all newest first", model.StoreFilter{}, []string{"db-2", "db-3", "db-1"}},
		{"keyword spans title description company", model.StoreFilter{KeywordPattern: "ENGINEER"}, []string{"db-2", "db-3", "db-1"}},
		{"keyword title only", model.StoreFilter{KeywordPattern: "go engineer"}, []string{"db-1"}},
		{"location matches company location", model.StoreFilter{LocationPattern: "austin"}, []string{"db-2"}},
		{"job type", model.StoreFilter{JobTypePattern: "time"}, []string{"db-3", "db-1"}},
		{"limit", model.StoreFilter{Limit: 2}, []string{"db-2", "db-3"}},
		{"no match", model.StoreFilter{KeywordPattern: "astronaut"}, []string{}},
		{"non-ascii keyword not narrowed", model.StoreFilter{KeywordPattern: "ü"}, []string{"db-2", "db-3", "db-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := s.Find(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			got := ids(jobs)
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFindMapsRows(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	jobs, err := s.Find(context.Background(), model.StoreFilter{KeywordPattern: "Senior"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	j := jobs[0]
	if j.Source != model.SourceDatabase || j.IsExternal {
		t.Errorf("source = %q external = %v, want database/false", j.Source, j.IsExternal)
	}
	if j.Salary != 90000 || !j.SalaryDisclosed {
		t.Errorf("salary = %d disclosed = %v", j.Salary, j.SalaryDisclosed)
	}
	if len(j.Requirements) != 2 || j.Requirements[0] != "Go" {
		t.Errorf("requirements = %v", j.Requirements)
	}
	if !j.CreatedAt.Equal(base.Add(-2 * time.Hour)) {
		t.Errorf("createdAt = %v", j.CreatedAt)
	}
	if j.Company.Name != "Acme" {
		t.Errorf("company = %+v", j.Company)
	}
}

func TestInsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	seed(t, s)

	jobs, err := s.Find(context.Background(), model.StoreFilter{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(jobs) != 3 {
		t.Errorf("got %d jobs after reseeding, want 3", len(jobs))
	}
}

func TestInsertMissingTimestampReadsAsEpoch(t *testing.T) {
	s := newTestStore(t)
	job := model.Job{ID: "db-9", Title: "Undated"}
	if err := s.Insert(context.Background(), []model.Job{job}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	jobs, err := s.Find(context.Background(), model.StoreFilter{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !jobs[0].CreatedAt.Equal(normalize.Epoch) {
		t.Errorf("createdAt = %v, want epoch", jobs[0].CreatedAt)
	}
	if jobs[0].Requirements == nil {
		t.Error("requirements should be empty, not nil")
	}
}

func TestFindNonASCIIKeywordReachesPostFilter(t *testing.T) {
	s := newTestStore(t)
	jobs := []model.Job{
		{ID: "db-u", Title: "Ingenieur ÜBERSEE", CreatedAt: base},
		{ID: "db-o", Title: "Office Manager", CreatedAt: base.Add(-time.Hour)},
	}
	if err := s.Insert(context.Background(), jobs); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	f := filter.NewRequestFilter("übersee", "", "")
	found, err := s.Find(context.Background(), f.StoreFilter(500))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	got := ids(f.Apply(found))
	if len(got) != 1 || got[0] != "db-u" {
		t.Errorf("ids = %v, want [db-u]", got)
	}
}

func TestNopStoreFindEmpty(t *testing.T) {
	jobs, err := NewNopStore().Find(context.Background(), model.StoreFilter{})
	if err != nil || jobs == nil || len(jobs) != 0 {
		t.Errorf("Find = %v, %v; want empty slice", jobs, err)
	}
}
