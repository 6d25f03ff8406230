package service

import "github.com/amishk599/jobmerge/internal/model"

// Envelope is the success body shared by every listing endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Jobs       []model.Job `json:"jobs"`
	TotalJobs  *int        `json:"totalJobs,omitempty"`
	Page       *int        `json:"page,omitempty"`
	TotalPages *int        `json:"totalPages,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Cached     bool        `json:"cached"`
}

// Status is the body of administrative and failed requests.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// PagedEnvelope wraps a paginated search response.
func PagedEnvelope(resp Response) Envelope {
	r := resp.Result
	return Envelope{
		Success:    true,
		Jobs:       nonNil(r.Jobs),
		TotalJobs:  &r.TotalCount,
		Page:       &r.Page,
		TotalPages: &r.TotalPages,
		Cached:     resp.Cached,
	}
}

// ListEnvelope wraps an unpaginated listing with its count.
func ListEnvelope(resp Response) Envelope {
	jobs := nonNil(resp.Result.Jobs)
	count := len(jobs)
	return Envelope{
		Success: true,
		Jobs:    jobs,
		Count:   &count,
		Cached:  resp.Cached,
	}
}

// Succeeded builds a success Status.
func Succeeded(message string) Status {
	return Status{Success: true, Message: message}
}

// Failed builds a failure Status carrying err's text.
func Failed(message string, err error) Status {
	s := Status{Message: message}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

func nonNil(jobs []model.Job) []model.Job {
	if jobs == nil {
		return []model.Job{}
	}
	return jobs
}
