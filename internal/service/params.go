package service

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobmerge/internal/model"
)

// ParseSearchRequest builds a SearchRequest from query parameters, applying
// defaults for anything absent. The scope is read from "source" (or
// "scope"), the page size from "limit" (or "pageSize"). Page sizes above
// model.MaxPageSize are clamped.
func ParseSearchRequest(q url.Values) (model.SearchRequest, error) {
	req := model.NewSearchRequest()
	req.Keyword = strings.TrimSpace(q.Get("keyword"))
	req.Location = strings.TrimSpace(q.Get("location"))
	req.JobType = strings.TrimSpace(q.Get("jobType"))

	scope, err := model.ParseScope(first(q, "source", "scope"))
	if err != nil {
		return model.SearchRequest{}, &model.ParamError{Param: "source", Err: err}
	}
	req.Scope = scope

	if raw := q.Get("page"); raw != "" {
		page, err := positiveInt(raw)
		if err != nil {
			return model.SearchRequest{}, &model.ParamError{Param: "page", Err: err}
		}
		req.Page = page
	}

	if raw := first(q, "limit", "pageSize"); raw != "" {
		size, err := positiveInt(raw)
		if err != nil {
			return model.SearchRequest{}, &model.ParamError{Param: "limit", Err: err}
		}
		req.PageSize = min(size, model.MaxPageSize)
	}

	if raw := strings.TrimSpace(q.Get("includeRemote")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return model.SearchRequest{}, &model.ParamError{Param: "includeRemote", Err: err}
		}
		req.IncludeRemote = include
	}

	return req, nil
}

// ExternalSearch holds the parameters of a filtered external-only search.
type ExternalSearch struct {
	Keyword  string
	Location string
	JobType  string
	Remote   bool
}

// ParseExternalSearch reads keyword, location, jobType and remote.
func ParseExternalSearch(q url.Values) (ExternalSearch, error) {
	s := ExternalSearch{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Location: strings.TrimSpace(q.Get("location")),
		JobType:  strings.TrimSpace(q.Get("jobType")),
	}
	if raw := strings.TrimSpace(q.Get("remote")); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			return ExternalSearch{}, &model.ParamError{Param: "remote", Err: err}
		}
		s.Remote = remote
	}
	return s, nil
}

func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

var errNotPositive = errors.New("must be a positive integer")

func positiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errNotPositive
	}
	return n, nil
}
