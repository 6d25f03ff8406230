package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/normalize"
)

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

// AdzunaConfig holds credentials and search defaults for the Adzuna API.
type AdzunaConfig struct {
	AppID           string
	AppKey          string
	Country         string // "in", "gb", "us", ...
	DefaultQuery    string // sent as "what" when the request has no keyword
	DefaultLocation string // sent as "where" when the request has no location
	Limit           int    // results_per_page
}

type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

type adzunaJob struct {
	ID           nativeID       `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	Category     adzunaCategory `json:"category"`
	SalaryMax    any            `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractType string         `json:"contract_type"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// AdzunaAdapter fetches location-aware listings from the Adzuna search API.
// It requires an app id and key; without them FetchJobs returns
// model.ErrMissingCredentials and makes no request.
type AdzunaAdapter struct {
	cfg    AdzunaConfig
	client *http.Client
}

// NewAdzunaAdapter creates a new adapter for the Adzuna search API.
func NewAdzunaAdapter(cfg AdzunaConfig, client *http.Client) *AdzunaAdapter {
	if cfg.Country == "" {
		cfg.Country = "in"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	return &AdzunaAdapter{cfg: cfg, client: client}
}

func (a *AdzunaAdapter) Source() model.Source { return model.SourceAdzuna }

// RemoteOnly is false: Adzuna is a geographic search.
func (a *AdzunaAdapter) RemoteOnly() bool { return false }

// FetchJobs queries one page of Adzuna results and normalizes them into the
// unified Job model.
func (a *AdzunaAdapter) FetchJobs(ctx context.Context, params model.FetchParams) ([]model.Job, error) {
	if a.cfg.AppID == "" || a.cfg.AppKey == "" {
		return nil, model.ErrMissingCredentials
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = a.cfg.Limit
	}

	q := url.Values{}
	q.Set("app_id", a.cfg.AppID)
	q.Set("app_key", a.cfg.AppKey)
	q.Set("results_per_page", strconv.Itoa(limit))
	q.Set("sort_by", "date")
	q.Set("content-type", "application/json")
	if what := firstNonEmpty(params.Keyword, a.cfg.DefaultQuery); what != "" {
		q.Set("what", what)
	}
	if where := firstNonEmpty(params.Location, a.cfg.DefaultLocation); where != "" {
		q.Set("where", where)
	}
	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", adzunaBaseURL, url.PathEscape(a.cfg.Country), page, q.Encode())

	var resp adzunaResponse
	if err := getJSON(ctx, a.client, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("adzuna fetch for %s: %w", a.cfg.Country, err)
	}

	jobs := make([]model.Job, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.ID == "" {
			continue
		}
		salary := normalize.CoerceSalary(r.SalaryMax)
		job := model.Job{
			ID:    prefixedID("adzuna", string(r.ID)),
			Title: normalize.StripMarkup(r.Title),
			Company: model.Company{
				ID:       prefixedID("adzuna_company", r.Company.DisplayName),
				Name:     r.Company.DisplayName,
				Location: r.Location.DisplayName,
			},
			Description:     normalize.Description(r.Description),
			Location:        r.Location.DisplayName,
			Salary:          salary,
			SalaryDisclosed: salary > 0,
			JobType:         firstNonEmpty(r.ContractType, r.Category.Label, "Full-time"),
			Requirements:    []string{},
			CreatedAt:       normalize.ParseTimestamp(r.Created),
			URL:             r.RedirectURL,
		}
		job.SetSource(model.SourceAdzuna)
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
