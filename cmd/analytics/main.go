// cmd/analytics/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/source"
	"github.com/andresuchdata/pnl-dashboard/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// report is one JSON line of output.
type report struct {
	Link       string            `json:"link"`
	Name       string            `json:"name"`
	Records    int               `json:"records"`
	Months     []string          `json:"months,omitempty"`
	KPIs       *domain.KPIBundle `json:"kpis,omitempty"`
	Stats      *pnl.MapStats     `json:"stats,omitempty"`
	FetchError string            `json:"fetchError,omitempty"`
}

func main() {
	dbURL := flag.String("db-url", os.Getenv("DATABASE_URL"), "Database connection string; all registered links are reported")
	urls := flag.String("url", "", "Comma-separated spreadsheet URLs to report instead of the registered links")
	year := flag.Int("year", 0, "Restrict KPIs to one year")
	excludeSeverance := flag.Bool("exclude-severance", false, "Add severance back into EBITDA")
	workers := flag.Int("workers", 4, "Concurrent fetches")
	candidatesFile := flag.String("candidates", "", "Header candidates YAML override")
	flag.Parse()

	cfg := config.Load()
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component("analytics")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	links, err := collectLinks(ctx, *dbURL, *urls)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to collect links")
	}
	if len(links) == 0 {
		log.Fatal().Msg("Nothing to report: pass -url or -db-url")
	}

	candidates, err := pnl.LoadCandidates(*candidatesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load header candidates")
	}

	r := &reporter{
		fetcher: source.NewFetcher(cfg.Source),
		mapper:  pnl.NewMapper(candidates),
		year:    *year,
		kpiOpts: pnl.KPIOptions{ExcludeSeverance: *excludeSeverance},
		out:     json.NewEncoder(os.Stdout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, link := range links {
		g.Go(func() error {
			return r.report(gctx, link)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Report failed")
	}
}

func collectLinks(ctx context.Context, dbURL, urls string) ([]domain.Link, error) {
	if urls != "" {
		var links []domain.Link
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				links = append(links, domain.Link{ID: u, Name: u, URL: u})
			}
		}
		return links, nil
	}
	if dbURL == "" {
		return nil, nil
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", dbURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return postgres.NewLinkRepository(postgres.Wrap(db)).ListLinks(ctx)
}

type reporter struct {
	fetcher *source.Fetcher
	mapper  *pnl.Mapper
	year    int
	kpiOpts pnl.KPIOptions

	mu  sync.Mutex
	out *json.Encoder
}

func (r *reporter) report(ctx context.Context, link domain.Link) error {
	rep := report{Link: link.ID, Name: link.Name}

	table, err := r.fetcher.Fetch(ctx, link.URL)
	if err == nil {
		var (
			ds    *domain.Dataset
			stats pnl.MapStats
		)
		ds, stats, err = r.mapper.MapTable(link.ID, *table)
		if err == nil {
			records := pnl.FilterRecords(ds.Records, domain.FilterCriteria{
				Session: domain.Session{Role: domain.RoleAdmin},
				Year:    r.year,
			})
			kpis := pnl.ComputeKPIs(records, r.kpiOpts)
			rep.Records = len(records)
			rep.Months = pnl.ChronologicalMonths(records)
			rep.KPIs = &kpis
			rep.Stats = &stats
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rep.FetchError = err.Error()
	}

	return r.write(rep)
}

func (r *reporter) write(rep report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Encode(rep)
}
