package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSchedule = "0 6 * * *"
	probeTimeout    = 5 * time.Minute
	probeWorkers    = 4
)

type LinkLister interface {
	List(ctx context.Context) ([]domain.Link, error)
}

type DatasetLoader interface {
	LoadURL(ctx context.Context, link domain.Link) *domain.Dataset
}

// ProbeResult is the outcome of fetching one registered link.
type ProbeResult struct {
	LinkID     string        `json:"linkId"`
	Name       string        `json:"name"`
	Records    int           `json:"records"`
	Stores     int           `json:"stores"`
	FetchError string        `json:"fetchError,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Probe fetches every registered link so broken sources show up in the logs
// before a user selects them.
type Probe struct {
	links  LinkLister
	loader DatasetLoader

	mu   sync.Mutex
	last []ProbeResult
}

func NewProbe(links LinkLister, loader DatasetLoader) *Probe {
	return &Probe{links: links, loader: loader}
}

func (p *Probe) Run(ctx context.Context) ([]ProbeResult, error) {
	links, err := p.links.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe: list links: %w", err)
	}

	results := make([]ProbeResult, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeWorkers)
	for i, link := range links {
		g.Go(func() error {
			start := time.Now()
			ds := p.loader.LoadURL(gctx, link)
			res := ProbeResult{LinkID: link.ID, Name: link.Name, Elapsed: time.Since(start)}
			if ds != nil {
				res.Records = len(ds.Records)
				res.Stores = countStores(ds.Records)
				res.FetchError = ds.FetchError
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.last = results
	p.mu.Unlock()
	return results, nil
}

// Last returns the results of the most recent completed run.
func (p *Probe) Last() []ProbeResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ProbeResult(nil), p.last...)
}

func (p *Probe) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	results, err := p.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("link probe failed")
		return
	}
	failed := 0
	for _, r := range results {
		if r.FetchError != "" {
			failed++
			log.Warn().Str("link", r.LinkID).Str("name", r.Name).Str("error", r.FetchError).Msg("link probe: fetch failed")
			continue
		}
		log.Info().Str("link", r.LinkID).Str("name", r.Name).
			Int("records", r.Records).Int("stores", r.Stores).
			Dur("elapsed", r.Elapsed).Msg("link probe")
	}
	log.Info().Int("links", len(results)).Int("failed", failed).Msg("link probe finished")
}

// Schedule registers the probe on a cron running in timezone. The returned
// cron is started; callers stop it on shutdown.
func (p *Probe) Schedule(schedule, timezone string) (*cron.Cron, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("probe: load timezone %q: %w", timezone, err)
		}
		loc = l
	}
	if schedule == "" {
		schedule = defaultSchedule
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(schedule, p.runScheduled); err != nil {
		return nil, fmt.Errorf("probe: invalid schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Info().Str("schedule", schedule).Str("timezone", loc.String()).Msg("link probe scheduled")
	return c, nil
}

func countStores(records []domain.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Store] = struct{}{}
	}
	return len(seen)
}
