package filter

import (
	"strings"

	"github.com/amishk599/jobmerge/internal/model"
)

// RequestFilter applies the keyword, location and job type post-filters of a
// search request. Matching is case-insensitive substring. Empty values (and
// the literal "all") disable that dimension.
type RequestFilter struct {
	keyword  string
	location string
	jobType  string
}

// NewRequestFilter returns a filter requiring every non-empty dimension to
// match.
func NewRequestFilter(keyword, location, jobType string) *RequestFilter {
	return &RequestFilter{
		keyword:  Pattern(keyword),
		location: Pattern(location),
		jobType:  Pattern(jobType),
	}
}

// ForRequest builds the filter for a search request.
func ForRequest(req model.SearchRequest) *RequestFilter {
	return NewRequestFilter(req.Keyword, req.Location, req.JobType)
}

// Pattern normalizes a raw filter value. "all" and blank values yield "".
func Pattern(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	if p == "all" {
		return ""
	}
	return p
}

// Match reports whether job passes every active dimension. The keyword
// matches if any of title, description or company name contains it.
func (f *RequestFilter) Match(job model.Job) bool {
	if f.keyword != "" &&
		!contains(job.Title, f.keyword) &&
		!contains(job.Description, f.keyword) &&
		!contains(job.Company.Name, f.keyword) {
		return false
	}
	if f.location != "" &&
		!contains(job.Location, f.location) &&
		!contains(job.Company.Location, f.location) {
		return false
	}
	if f.jobType != "" && !contains(job.JobType, f.jobType) {
		return false
	}
	return true
}

// Apply returns the jobs that match, preserving order. The result is never nil.
func (f *RequestFilter) Apply(jobs []model.Job) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

// StoreFilter translates the active dimensions into a persisted-store query.
func (f *RequestFilter) StoreFilter(limit int) model.StoreFilter {
	return model.StoreFilter{
		KeywordPattern:  f.keyword,
		LocationPattern: f.location,
		JobTypePattern:  f.jobType,
		Limit:           limit,
	}
}

func contains(field, pattern string) bool {
	return strings.Contains(strings.ToLower(field), pattern)
}
