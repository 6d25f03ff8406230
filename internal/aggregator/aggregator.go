// Package aggregator fans a search out to the persisted store and the
// configured upstream sources, then merges, filters, sorts and paginates the
// combined result.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobmerge/internal/filter"
	"github.com/amishk599/jobmerge/internal/model"
)

// DefaultStoreLimit caps how many persisted jobs one aggregation reads.
const DefaultStoreLimit = 500

// Aggregator owns the store and source collaborators. It is safe for
// concurrent use as long as they are.
type Aggregator struct {
	store      model.JobStore
	sources    []model.JobSource
	storeLimit int
	logger     *slog.Logger
}

// New creates an Aggregator. store may be nil when no persisted store is
// configured. A non-positive storeLimit means DefaultStoreLimit.
func New(store model.JobStore, sources []model.JobSource, storeLimit int, logger *slog.Logger) *Aggregator {
	if storeLimit <= 0 {
		storeLimit = DefaultStoreLimit
	}
	return &Aggregator{
		store:      store,
		sources:    sources,
		storeLimit: storeLimit,
		logger:     logger,
	}
}

// Sources lists the configured upstream sources in dispatch order.
func (a *Aggregator) Sources() []model.Source {
	out := make([]model.Source, len(a.sources))
	for i, s := range a.sources {
		out[i] = s.Source()
	}
	return out
}

// Plan is the dispatch set of one aggregation.
type Plan struct {
	Store       bool
	StoreFilter model.StoreFilter
	Sources     []model.JobSource
	Params      model.FetchParams
}

// Empty reports whether nothing would be dispatched.
func (p Plan) Empty() bool { return !p.Store && len(p.Sources) == 0 }

// PlanFor derives the dispatch set from the request scope. Remote-only
// sources are skipped unless the request wants remote results. Upstreams are
// always asked for their first page; paging happens over the merged set.
func (a *Aggregator) PlanFor(req model.SearchRequest) Plan {
	f := filter.ForRequest(req)
	plan := Plan{
		Store:       req.Scope.IncludesDatabase() && a.store != nil,
		StoreFilter: f.StoreFilter(a.storeLimit),
		Params: model.FetchParams{
			Keyword:  upstreamValue(req.Keyword),
			Location: upstreamValue(req.Location),
			Page:     1,
		},
	}
	if !req.Scope.IncludesExternal() {
		return plan
	}
	wantsRemote := req.WantsRemote()
	for _, src := range a.sources {
		if src.RemoteOnly() && !wantsRemote {
			continue
		}
		plan.Sources = append(plan.Sources, src)
	}
	return plan
}

func upstreamValue(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// Collect runs every call in the plan concurrently and returns the merged,
// de-duplicated jobs in dispatch order. Sources absorb their own failures;
// only a store failure aborts the aggregation.
func (a *Aggregator) Collect(ctx context.Context, plan Plan) ([]model.Job, error) {
	if plan.Empty() {
		return []model.Job{}, nil
	}

	offset := 0
	if plan.Store {
		offset = 1
	}
	slots := make([][]model.Job, offset+len(plan.Sources))

	g, gctx := errgroup.WithContext(ctx)
	if plan.Store {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &model.AggregationError{Op: "store find", Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			jobs, err := a.store.Find(gctx, plan.StoreFilter)
			if err != nil {
				return &model.AggregationError{Op: "store find", Err: err}
			}
			for i := range jobs {
				jobs[i].SetSource(model.SourceDatabase)
			}
			slots[0] = jobs
			return nil
		})
	}
	for i, src := range plan.Sources {
		g.Go(func() error {
			slots[offset+i] = src.Fetch(gctx, plan.Params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.merge(slots), nil
}

// merge concatenates slots in order. When two records share an id the first
// one wins.
func (a *Aggregator) merge(slots [][]model.Job) []model.Job {
	total := 0
	for _, s := range slots {
		total += len(s)
	}
	seen := make(map[string]struct{}, total)
	merged := make([]model.Job, 0, total)
	for _, s := range slots {
		for _, j := range s {
			if j.ID != "" {
				if _, dup := seen[j.ID]; dup {
					a.logger.Debug("dropping duplicate job", "id", j.ID, "source", j.Source)
					continue
				}
				seen[j.ID] = struct{}{}
			}
			if j.Requirements == nil {
				j.Requirements = []string{}
			}
			merged = append(merged, j)
		}
	}
	return merged
}

// Aggregate runs the full pipeline for one request.
func (a *Aggregator) Aggregate(ctx context.Context, req model.SearchRequest) (result model.SearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.AggregationError{Op: "aggregate", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	start := time.Now()
	plan := a.PlanFor(req)

	jobs, err := a.Collect(ctx, plan)
	if err != nil {
		return model.SearchResult{}, err
	}
	fetched := len(jobs)

	jobs = filter.ForRequest(req).Apply(jobs)
	SortByRecency(jobs)
	result = Paginate(jobs, req.Page, req.PageSize)

	a.logger.Info("aggregated jobs",
		"scope", req.Scope,
		"sources", len(plan.Sources),
		"store", plan.Store,
		"fetched", fetched,
		"matched", result.TotalCount,
		"page", result.Page,
		"total_pages", result.TotalPages,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// External fetches from the external sources only, newest first, without
// post-filtering or paging. An empty only dispatches every external source.
func (a *Aggregator) External(ctx context.Context, only model.Source, keyword, location string) ([]model.Job, error) {
	plan := Plan{Params: model.FetchParams{
		Keyword:  upstreamValue(keyword),
		Location: upstreamValue(location),
		Page:     1,
	}}
	for _, src := range a.sources {
		if only == "" || src.Source() == only {
			plan.Sources = append(plan.Sources, src)
		}
	}
	jobs, err := a.Collect(ctx, plan)
	if err != nil {
		return nil, err
	}
	SortByRecency(jobs)
	return jobs, nil
}

// SearchExternal queries either the remote-only boards (remote) or the
// location-based sources, then applies the keyword and job type filters.
func (a *Aggregator) SearchExternal(ctx context.Context, keyword, location, jobType string, remote bool) ([]model.Job, error) {
	plan := Plan{Params: model.FetchParams{
		Keyword:  upstreamValue(keyword),
		Location: upstreamValue(location),
		Page:     1,
	}}
	for _, src := range a.sources {
		if src.RemoteOnly() == remote {
			plan.Sources = append(plan.Sources, src)
		}
	}
	jobs, err := a.Collect(ctx, plan)
	if err != nil {
		return nil, err
	}
	jobs = filter.NewRequestFilter(keyword, "", jobType).Apply(jobs)
	SortByRecency(jobs)
	return jobs, nil
}

// Trending returns the newest limit jobs from the remote-only boards.
func (a *Aggregator) Trending(ctx context.Context, limit int) ([]model.Job, error) {
	plan := Plan{Params: model.FetchParams{Page: 1}}
	for _, src := range a.sources {
		if src.RemoteOnly() {
			plan.Sources = append(plan.Sources, src)
		}
	}
	jobs, err := a.Collect(ctx, plan)
	if err != nil {
		return nil, err
	}
	SortByRecency(jobs)
	return head(jobs, limit), nil
}

// Discover mixes up to storeLimit of the newest persisted jobs with every
// external source, shuffles them with rng and returns the first limit.
// rng is not safe for concurrent use; callers serialize access.
func (a *Aggregator) Discover(ctx context.Context, storeLimit, limit int, rng *rand.Rand) ([]model.Job, error) {
	plan := Plan{
		Store:       a.store != nil,
		StoreFilter: model.StoreFilter{Limit: storeLimit},
		Sources:     a.sources,
		Params:      model.FetchParams{Page: 1},
	}
	jobs, err := a.Collect(ctx, plan)
	if err != nil {
		return nil, err
	}
	Shuffle(jobs, rng)
	return head(jobs, limit), nil
}

// SortByRecency orders jobs newest first. Equal timestamps keep their
// relative order.
func SortByRecency(jobs []model.Job) {
	slices.SortStableFunc(jobs, func(x, y model.Job) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
}

// Paginate slices one page out of jobs. Pages past the end are empty rather
// than an error. Page and pageSize below one fall back to the defaults.
func Paginate(jobs []model.Job, page, pageSize int) model.SearchResult {
	if page < 1 {
		page = model.DefaultPage
	}
	if pageSize < 1 {
		pageSize = model.DefaultPageSize
	}
	total := len(jobs)
	result := model.SearchResult{
		Jobs:       []model.Job{},
		TotalCount: total,
		Page:       page,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	if page > result.TotalPages {
		return result
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	result.Jobs = slices.Clone(jobs[start:end])
	return result
}

// Shuffle permutes jobs in place.
func Shuffle(jobs []model.Job, rng *rand.Rand) {
	rng.Shuffle(len(jobs), func(i, j int) {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	})
}

func head(jobs []model.Job, n int) []model.Job {
	if n > 0 && len(jobs) > n {
		return jobs[:n]
	}
	return jobs
}
