// Package cache memoizes aggregated results under a fingerprint of the
// request's semantic parameters.
package cache

import (
	"context"
	"slices"
	"time"

	"github.com/amishk599/jobmerge/internal/model"
)

// Entry is one cached result.
type Entry struct {
	Fingerprint string             `json:"fingerprint"`
	Payload     model.SearchResult `json:"payload"`
	StoredAt    time.Time          `json:"storedAt"`
	TTL         time.Duration      `json:"ttl"`
}

// ExpiresAt is the instant after which the entry is no longer served.
func (e Entry) ExpiresAt() time.Time { return e.StoredAt.Add(e.TTL) }

// Cache stores results by fingerprint with a TTL. Implementations must be
// safe for concurrent use; concurrent writers of the same fingerprint may
// race and the last write wins.
type Cache interface {
	// Get returns the live entry for fp. ok is false on a miss or expiry.
	Get(ctx context.Context, fp string) (entry Entry, ok bool, err error)
	Set(ctx context.Context, fp string, payload model.SearchResult, ttl time.Duration) error
	// FlushAll discards every entry regardless of TTL.
	FlushAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

func cloneResult(r model.SearchResult) model.SearchResult {
	out := r
	out.Jobs = make([]model.Job, len(r.Jobs))
	for i, j := range r.Jobs {
		j.Requirements = slices.Clone(j.Requirements)
		if j.Requirements == nil {
			j.Requirements = []string{}
		}
		out.Jobs[i] = j
	}
	return out
}
