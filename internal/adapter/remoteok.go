package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/normalize"
)

const remoteOKURL = "https://remoteok.com/api"

// remoteOKJob is one element of the RemoteOK feed. The first element of the
// feed is a legal notice with no id; it decodes with an empty ID.
type remoteOKJob struct {
	ID          nativeID `json:"id"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	CompanyLogo string   `json:"company_logo"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
	SalaryMin   any      `json:"salary_min"`
	SalaryMax   any      `json:"salary_max"`
}

// RemoteOKAdapter fetches the RemoteOK public feed. No credentials needed.
type RemoteOKAdapter struct {
	limit     int
	userAgent string
	client    *http.Client
}

// NewRemoteOKAdapter creates a new adapter for the RemoteOK feed.
func NewRemoteOKAdapter(limit int, userAgent string, client *http.Client) *RemoteOKAdapter {
	if limit <= 0 {
		limit = 5
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &RemoteOKAdapter{limit: limit, userAgent: userAgent, client: client}
}

func (a *RemoteOKAdapter) Source() model.Source { return model.SourceRemoteOK }

func (a *RemoteOKAdapter) RemoteOnly() bool { return true }

// FetchJobs retrieves the newest postings from the feed. Keyword, location and
// page are ignored; the feed has no server-side search.
func (a *RemoteOKAdapter) FetchJobs(ctx context.Context, params model.FetchParams) ([]model.Job, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = a.limit
	}

	header := http.Header{}
	header.Set("User-Agent", a.userAgent)

	var feed []remoteOKJob
	if err := getJSON(ctx, a.client, remoteOKURL, header, &feed); err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}

	jobs := make([]model.Job, 0, min(limit, len(feed)))
	for _, rj := range feed {
		if len(jobs) == limit {
			break
		}
		if rj.ID == "" || rj.Position == "" {
			continue
		}

		salary := normalize.CoerceSalary(rj.SalaryMin)
		if salary == 0 {
			salary = normalize.CoerceSalary(rj.SalaryMax)
		}
		tags := rj.Tags
		if tags == nil {
			tags = []string{}
		}

		job := model.Job{
			ID:    prefixedID("remoteok", string(rj.ID)),
			Title: normalize.StripMarkup(rj.Position),
			Company: model.Company{
				ID:       prefixedID("remoteok_company", rj.Company),
				Name:     rj.Company,
				Location: "Remote",
				Logo:     rj.CompanyLogo,
			},
			Description:     normalize.Description(rj.Description),
			Location:        "Remote",
			Salary:          salary,
			SalaryDisclosed: salary > 0,
			JobType:         "Remote",
			Requirements:    tags,
			CreatedAt:       normalize.ParseTimestamp(rj.Date),
			URL:             firstNonEmpty(rj.URL, rj.ApplyURL),
		}
		job.SetSource(model.SourceRemoteOK)
		jobs = append(jobs, job)
	}

	return jobs, nil
}
