package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Source identifies where a job listing came from.
type Source string

const (
	SourceDatabase Source = "Database"
	SourceAdzuna   Source = "Adzuna"
	SourceRemoteOK Source = "RemoteOK"
	SourceRemotive Source = "Remotive"
)

// IsExternal reports whether jobs from this source come from a third-party API.
func (s Source) IsExternal() bool {
	return s != SourceDatabase
}

// ParseSource resolves an external source name case-insensitively. Empty and
// "all" return "" meaning every external source.
func ParseSource(raw string) (Source, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "all") {
		return "", nil
	}
	for _, s := range []Source{SourceAdzuna, SourceRemoteOK, SourceRemotive} {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown source %q (valid: adzuna, remoteok, remotive, all)", raw)
}

// Company is the employer attached to a job listing.
type Company struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	Logo     string `json:"logo" yaml:"logo"` // empty when the source has none
}

// Unified representation of a job listing from any source.
// Absent upstream data maps to zero values, never to missing fields.
type Job struct {
	ID              string    `json:"id" yaml:"id"` // "{source}_{nativeId}" for external sources
	Title           string    `json:"title" yaml:"title"`
	Company         Company   `json:"company" yaml:"company"`
	Description     string    `json:"description" yaml:"description"`
	Location        string    `json:"location" yaml:"location"`
	Salary          int       `json:"salary" yaml:"salary"`                    // 0 when not disclosed
	SalaryDisclosed bool      `json:"salaryDisclosed" yaml:"salary_disclosed"` // false means Salary is meaningless
	JobType         string    `json:"jobType" yaml:"job_type"`
	Requirements    []string  `json:"requirements" yaml:"requirements"`
	CreatedAt       time.Time `json:"createdAt" yaml:"created_at"` // epoch when the source gives none
	Source          Source    `json:"source" yaml:"-"`
	IsExternal      bool      `json:"isExternal" yaml:"-"`
	URL             string    `json:"url" yaml:"url"` // empty for jobs viewed in-app
}

// SetSource sets Source and keeps IsExternal consistent with it.
func (j *Job) SetSource(s Source) {
	j.Source = s
	j.IsExternal = s.IsExternal()
}

// FetchParams is the subset of a request that adapters understand.
// Adapters ignore fields that make no sense for their source.
type FetchParams struct {
	Keyword  string
	Location string
	Page     int // 1-based; zero means first page
	Limit    int // zero means the adapter's configured default
}

// StoreFilter narrows a persisted-store query. Empty patterns match everything.
// Results are always ordered newest first.
type StoreFilter struct {
	KeywordPattern  string // title, description or company name
	LocationPattern string
	JobTypePattern  string
	Limit           int
}

// JobFetcher fetches job listings from one upstream source.
// Implementations return errors; callers decide how to degrade.
type JobFetcher interface {
	Source() Source
	RemoteOnly() bool
	FetchJobs(ctx context.Context, params FetchParams) ([]Job, error)
}

// JobSource is a JobFetcher whose failures are already absorbed: Fetch never
// fails and returns an empty slice when the upstream is unavailable.
type JobSource interface {
	Source() Source
	RemoteOnly() bool
	Fetch(ctx context.Context, params FetchParams) []Job
}

// JobStore is the persisted job collaborator.
type JobStore interface {
	Find(ctx context.Context, filter StoreFilter) ([]Job, error)
}
