package filter

import (
	"testing"

	"github.com/amishk599/jobmerge/internal/model"
)

func job(title, description, company, location, companyLocation, jobType string) model.Job {
	return model.Job{
		Title:       title,
		Description: description,
		Location:    location,
		JobType:     jobType,
		Company:     model.Company{Name: company, Location: companyLocation},
	}
}

func TestRequestFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		keyword   string
		location  string
		jobType   string
		job       model.Job
		wantMatch bool
	}{
		{
			name:      "keyword in title",
			keyword:   "engineer",
			job:       job("Software Engineer", "", "Acme", "Remote", "", "Full-time"),
			wantMatch: true,
		},
		{
			name:      "keyword in description only",
			keyword:   "kubernetes",
			job:       job("Platform Dev", "Runs Kubernetes clusters", "Acme", "", "", ""),
			wantMatch: true,
		},
		{
			name:      "keyword in company only",
			keyword:   "STRIPE",
			job:       job("Designer", "", "Stripe", "", "", ""),
			wantMatch: true,
		},
		{
			name:      "keyword misses every field",
			keyword:   "engineer",
			job:       job("Designer", "Figma", "Acme", "", "", ""),
			wantMatch: false,
		},
		{
			name:      "location via company location",
			location:  "berlin",
			job:       job("Dev", "", "Acme", "Remote", "Berlin, DE", ""),
			wantMatch: true,
		},
		{
			name:      "location miss",
			location:  "berlin",
			job:       job("Dev", "", "Acme", "London", "London", ""),
			wantMatch: false,
		},
		{
			name:      "job type substring",
			jobType:   "time",
			job:       job("Dev", "", "", "", "", "Full-time"),
			wantMatch: true,
		},
		{
			name:      "keyword matches but job type does not",
			keyword:   "dev",
			jobType:   "contract",
			job:       job("Dev", "", "", "", "", "Full-time"),
			wantMatch: false,
		},
		{
			name:      "all disables dimension",
			location:  "All",
			jobType:   "all",
			job:       job("Dev", "", "", "Anywhere", "", "Part-time"),
			wantMatch: true,
		},
		{
			name:      "empty filter passes all",
			job:       job("Any Role", "", "", "Anywhere", "", ""),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewRequestFilter(tt.keyword, tt.location, tt.jobType)
			if got := f.Match(tt.job); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestRequestFilter_ApplyPreservesOrder(t *testing.T) {
	jobs := []model.Job{
		{ID: "a", Title: "Go Engineer"},
		{ID: "b", Title: "Designer"},
		{ID: "c", Title: "Data Engineer"},
	}
	got := NewRequestFilter("engineer", "", "").Apply(jobs)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Apply = %v, want [a c]", got)
	}

	none := NewRequestFilter("astronaut", "", "").Apply(jobs)
	if none == nil || len(none) != 0 {
		t.Errorf("Apply with no matches = %v, want empty non-nil", none)
	}
}

func TestRequestFilter_StoreFilter(t *testing.T) {
	sf := NewRequestFilter("  Go ", "all", "Remote").StoreFilter(50)
	want := model.StoreFilter{KeywordPattern: "go", JobTypePattern: "remote", Limit: 50}
	if sf != want {
		t.Errorf("StoreFilter = %+v, want %+v", sf, want)
	}
}
