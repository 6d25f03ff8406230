// Package service is the request orchestrator: it consults the cache, runs
// the aggregator on a miss and stores the fresh result.
package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/amishk599/jobmerge/internal/aggregator"
	"github.com/amishk599/jobmerge/internal/cache"
	"github.com/amishk599/jobmerge/internal/model"
)

const (
	// TrendingLimit caps the trending listing.
	TrendingLimit = 30
	// DiscoverLimit caps the shuffled discovery listing.
	DiscoverLimit = 30
	// DiscoverStoreLimit is how many persisted jobs feed discovery.
	DiscoverStoreLimit = 10
)

// Response is a result plus whether it was served from cache.
type Response struct {
	Result model.SearchResult
	Cached bool
}

// Service wires the aggregator to a cache.
type Service struct {
	agg    *aggregator.Aggregator
	cache  cache.Cache
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Service. A nil rng is seeded randomly.
func New(agg *aggregator.Aggregator, c cache.Cache, logger *slog.Logger, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{agg: agg, cache: c, logger: logger, rng: rng}
}

// Search returns one page of the merged job set for req.
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (Response, error) {
	return s.cached(ctx, cache.KindMixed, cache.SearchFingerprint(req), func(ctx context.Context) (model.SearchResult, error) {
		return s.agg.Aggregate(ctx, req)
	})
}

// External lists jobs from one external source, or all of them when source
// is empty or "all".
func (s *Service) External(ctx context.Context, source, keyword, location string) (Response, error) {
	src, err := model.ParseSource(source)
	if err != nil {
		return Response{}, &model.ParamError{Param: "source", Err: err}
	}
	fp := cache.Fingerprint(cache.KindExternal, url.Values{
		"op":       {"list"},
		"source":   {string(src)},
		"query":    {keyword},
		"location": {location},
	})
	return s.cached(ctx, cache.KindExternal, fp, func(ctx context.Context) (model.SearchResult, error) {
		jobs, err := s.agg.External(ctx, src, keyword, location)
		return listResult(jobs), err
	})
}

// SearchExternal runs a filtered search over the remote boards or the
// location-based sources.
func (s *Service) SearchExternal(ctx context.Context, q ExternalSearch) (Response, error) {
	fp := cache.Fingerprint(cache.KindExternal, url.Values{
		"op":       {"search"},
		"keyword":  {q.Keyword},
		"location": {q.Location},
		"jobType":  {q.JobType},
		"remote":   {strconv.FormatBool(q.Remote)},
	})
	return s.cached(ctx, cache.KindExternal, fp, func(ctx context.Context) (model.SearchResult, error) {
		jobs, err := s.agg.SearchExternal(ctx, q.Keyword, q.Location, q.JobType, q.Remote)
		return listResult(jobs), err
	})
}

// Trending lists the newest remote jobs.
func (s *Service) Trending(ctx context.Context) (Response, error) {
	return s.cached(ctx, cache.KindTrending, trendingFingerprint(), s.computeTrending)
}

// Discover returns a shuffled mix of persisted and external jobs.
func (s *Service) Discover(ctx context.Context) (Response, error) {
	fp := cache.Fingerprint(cache.KindDiscover, nil)
	return s.cached(ctx, cache.KindDiscover, fp, func(ctx context.Context) (model.SearchResult, error) {
		jobs, err := s.agg.Discover(ctx, DiscoverStoreLimit, DiscoverLimit, s.childRand())
		return listResult(jobs), err
	})
}

// Flush discards every cached entry.
func (s *Service) Flush(ctx context.Context) error {
	if err := s.cache.FlushAll(ctx); err != nil {
		return err
	}
	s.logger.Info("cache flushed")
	return nil
}

// Warm recomputes req and overwrites its cache entry without consulting the
// cache first.
func (s *Service) Warm(ctx context.Context, req model.SearchRequest) error {
	result, err := s.agg.Aggregate(ctx, req)
	if err != nil {
		return err
	}
	s.store(ctx, cache.KindMixed, cache.SearchFingerprint(req), result)
	return nil
}

// WarmTrending recomputes the trending listing and overwrites its entry.
func (s *Service) WarmTrending(ctx context.Context) error {
	result, err := s.computeTrending(ctx)
	if err != nil {
		return err
	}
	s.store(ctx, cache.KindTrending, trendingFingerprint(), result)
	return nil
}

func (s *Service) computeTrending(ctx context.Context) (model.SearchResult, error) {
	jobs, err := s.agg.Trending(ctx, TrendingLimit)
	return listResult(jobs), err
}

func trendingFingerprint() string {
	return cache.Fingerprint(cache.KindTrending, nil)
}

// cached serves fp from the cache or computes and stores it. A cache that
// fails on read is treated as a miss and is not written to for this call.
func (s *Service) cached(
	ctx context.Context,
	kind cache.Kind,
	fp string,
	compute func(context.Context) (model.SearchResult, error),
) (Response, error) {
	entry, ok, err := s.cache.Get(ctx, fp)
	cacheUp := err == nil
	if err != nil {
		s.logger.Warn("cache unavailable, computing fresh", "kind", kind, "error", err)
	}
	if ok {
		s.logger.Debug("cache hit", "kind", kind, "fingerprint", fp, "age", time.Since(entry.StoredAt).Round(time.Second))
		return Response{Result: entry.Payload, Cached: true}, nil
	}

	result, err := compute(ctx)
	if err != nil {
		s.logger.Error("aggregation failed", "kind", kind, "error", err)
		return Response{}, err
	}
	if cacheUp {
		s.store(ctx, kind, fp, result)
	}
	return Response{Result: result}, nil
}

// store writes results that matched something. A page past the end of a
// non-empty set is cached like any other page; a set with no matches is
// never pinned for a TTL.
func (s *Service) store(ctx context.Context, kind cache.Kind, fp string, result model.SearchResult) {
	if result.TotalCount == 0 {
		return
	}
	if err := s.cache.Set(ctx, fp, result, cache.TTLFor(kind)); err != nil {
		s.logger.Warn("cache write failed", "kind", kind, "error", err)
	}
}

// childRand derives an independent generator so shuffles can run
// concurrently.
func (s *Service) childRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
}

func listResult(jobs []model.Job) model.SearchResult {
	if jobs == nil {
		jobs = []model.Job{}
	}
	pages := 0
	if len(jobs) > 0 {
		pages = 1
	}
	return model.SearchResult{Jobs: jobs, TotalCount: len(jobs), Page: 1, TotalPages: pages}
}
