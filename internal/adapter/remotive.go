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

const remotiveURL = "https://remotive.com/api/remote-jobs"

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID              nativeID `json:"id"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	CompanyName     string   `json:"company_name"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	JobType         string   `json:"job_type"`
	PublicationDate string   `json:"publication_date"`
	Description     string   `json:"description"`
}

// RemotiveAdapter fetches remote jobs from the Remotive public API.
type RemotiveAdapter struct {
	limit  int
	client *http.Client
}

// NewRemotiveAdapter creates a new adapter for the Remotive API.
func NewRemotiveAdapter(limit int, client *http.Client) *RemotiveAdapter {
	if limit <= 0 {
		limit = 5
	}
	return &RemotiveAdapter{limit: limit, client: client}
}

func (a *RemotiveAdapter) Source() model.Source { return model.SourceRemotive }

func (a *RemotiveAdapter) RemoteOnly() bool { return true }

// FetchJobs retrieves remote postings. Only the limit is sent upstream.
// Remotive rarely publishes a usable salary, so Salary is always 0, and
// company logos are dropped because their host refuses cross-origin loads.
func (a *RemotiveAdapter) FetchJobs(ctx context.Context, params model.FetchParams) ([]model.Job, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = a.limit
	}
	endpoint := remotiveURL + "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()

	var resp remotiveResponse
	if err := getJSON(ctx, a.client, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("remotive fetch: %w", err)
	}

	jobs := make([]model.Job, 0, len(resp.Jobs))
	for _, rj := range resp.Jobs {
		if len(jobs) == limit {
			break
		}
		if rj.ID == "" {
			continue
		}
		tags := rj.Tags
		if tags == nil {
			tags = []string{}
		}

		job := model.Job{
			ID:    prefixedID("remotive", string(rj.ID)),
			Title: normalize.StripMarkup(rj.Title),
			Company: model.Company{
				ID:       prefixedID("remotive_company", rj.CompanyName),
				Name:     rj.CompanyName,
				Location: "Remote",
			},
			Description:  normalize.Description(rj.Description),
			Location:     "Remote",
			JobType:      firstNonEmpty(rj.JobType, "Full-time"),
			Requirements: tags,
			CreatedAt:    normalize.ParseTimestamp(rj.PublicationDate),
			URL:          rj.URL,
		}
		job.SetSource(model.SourceRemotive)
		jobs = append(jobs, job)
	}

	return jobs, nil
}
