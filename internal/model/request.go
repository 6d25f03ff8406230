package model

import (
	"fmt"
	"strings"
)

// Scope selects which families of sources a search consults.
type Scope string

const (
	ScopeDatabase Scope = "database"
	ScopeExternal Scope = "external"
	ScopeAll      Scope = "all"
)

// ParseScope converts a raw scope string. Empty means ScopeAll.
func ParseScope(raw string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return ScopeAll, nil
	case ScopeDatabase, ScopeExternal, ScopeAll:
		return s, nil
	default:
		return "", fmt.Errorf("unknown source scope %q (valid: database, external, all)", raw)
	}
}

// IncludesDatabase reports whether the persisted store is consulted.
func (s Scope) IncludesDatabase() bool { return s == ScopeDatabase || s == ScopeAll }

// IncludesExternal reports whether third-party adapters are consulted.
func (s Scope) IncludesExternal() bool { return s == ScopeExternal || s == ScopeAll }

const (
	DefaultPage     = 1
	DefaultPageSize = 30
	MaxPageSize     = 100
)

// SearchRequest is built once per call and passed by value.
type SearchRequest struct {
	Keyword       string
	Location      string
	JobType       string
	Scope         Scope
	Page          int
	PageSize      int
	IncludeRemote bool
}

// NewSearchRequest returns a request with the default paging, scope and
// remote inclusion.
func NewSearchRequest() SearchRequest {
	return SearchRequest{
		Scope:         ScopeAll,
		Page:          DefaultPage,
		PageSize:      DefaultPageSize,
		IncludeRemote: true,
	}
}

// WantsRemote reports whether remote-only boards are relevant to the request.
func (r SearchRequest) WantsRemote() bool {
	return r.IncludeRemote || strings.EqualFold(strings.TrimSpace(r.JobType), "remote")
}

// SearchResult is one page of an aggregated, filtered, sorted job set.
type SearchResult struct {
	Jobs       []Job `json:"jobs"`
	TotalCount int   `json:"totalJobs"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}
