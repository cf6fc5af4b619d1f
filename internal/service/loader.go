package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Selection slots.
const (
	SlotDashboard = "dashboard"
	SlotActual    = "actual"
	SlotBudget    = "budget"
	SlotCompare   = "compare"
)

// TableFetcher downloads and decodes a link URL.
type TableFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.Table, error)
}

// Loader turns a registered link into a mapped dataset for one user's
// selection slot. Selecting a different link for the same slot cancels the
// older load, and a load that finishes after its link was replaced is
// reported stale. Loads of the same link share the slot.
type Loader struct {
	links   repository.LinkRepository
	fetcher TableFetcher
	mapper  *pnl.Mapper
	tracker cache.SelectionTracker
	guard   *selectionGuard
}

func NewLoader(links repository.LinkRepository, fetcher TableFetcher, mapper *pnl.Mapper, tracker cache.SelectionTracker) *Loader {
	if mapper == nil {
		mapper = pnl.NewMapper(nil)
	}
	if tracker == nil {
		tracker = cache.NewMemorySelectionTracker()
	}
	return &Loader{
		links:   links,
		fetcher: fetcher,
		mapper:  mapper,
		tracker: tracker,
		guard:   newSelectionGuard(),
	}
}

// Load fetches and maps the link. Fetch and decode failures do not fail the
// call: they yield an empty dataset carrying FetchError.
func (l *Loader) Load(ctx context.Context, session domain.Session, slot, linkID string) (*domain.Dataset, error) {
	link, err := l.links.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	key := cache.SelectionKey(session.UserID, slot)
	loadCtx, done := l.guard.begin(ctx, key, link.ID)
	defer done()

	sel, err := l.tracker.Begin(loadCtx, key, link.ID)
	if err != nil {
		log.Warn().Err(err).Str("slot", slot).Msg("selection: tracker begin failed")
		sel = cache.Selection{}
	}

	ds := l.fetch(loadCtx, link)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if superseded(loadCtx) {
		return nil, ErrStaleSelection
	}
	if sel.Gen != 0 {
		cur, err := l.tracker.Current(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("slot", slot).Msg("selection: tracker read failed")
		} else if cur.Gen != sel.Gen && cur.Gen != 0 && cur.LinkID != link.ID {
			return nil, ErrStaleSelection
		}
	}
	return ds, nil
}

// LoadURL fetches and maps a link outside any selection slot.
func (l *Loader) LoadURL(ctx context.Context, link domain.Link) *domain.Dataset {
	return l.fetch(ctx, &link)
}

func (l *Loader) fetch(ctx context.Context, link *domain.Link) *domain.Dataset {
	logger := log.With().Str("link", link.ID).Str("name", link.Name).Logger()

	table, err := l.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn().Err(err).Msg("dataset: fetch failed")
		}
		return domain.EmptyDataset(link.ID, err)
	}

	ds, stats, err := l.mapper.MapTable(link.ID, *table)
	if err != nil {
		logger.Warn().Err(err).Msg("dataset: mapping failed")
		return domain.EmptyDataset(link.ID, fmt.Errorf("map %s: %w", link.Name, err))
	}

	logger.Info().
		Int("rows", stats.Rows).
		Int("mapped", stats.Mapped).
		Int("dropped", stats.Dropped).
		Msg("dataset: loaded")
	if stats.Overwritten > 0 {
		logger.Warn().Int("overwritten", stats.Overwritten).Msg("dataset: duplicate (store, month) rows, last one wins")
	}
	if len(stats.Unresolved) > 0 {
		logger.Debug().Strs("unresolved", stats.Unresolved).Msg("dataset: fields without a column")
	}
	return ds
}

// selectionGuard tracks the in-flight loads per key together with the link
// they fetch.
type selectionGuard struct {
	mu     sync.Mutex
	next   uint64
	active map[string]*guardEntry
}

type guardEntry struct {
	linkID string
	loads  map[uint64]context.CancelCauseFunc
}

func newSelectionGuard() *selectionGuard {
	return &selectionGuard{active: make(map[string]*guardEntry)}
}

// begin registers a load of linkID under key. Loads of another link under the
// same key are cancelled; loads of the same link run on. done must be called
// when the load finishes.
func (g *selectionGuard) begin(parent context.Context, key, linkID string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	g.mu.Lock()
	entry, ok := g.active[key]
	if ok && entry.linkID != linkID {
		for _, prev := range entry.loads {
			prev(ErrStaleSelection)
		}
		ok = false
	}
	if !ok {
		entry = &guardEntry{linkID: linkID, loads: make(map[uint64]context.CancelCauseFunc)}
		g.active[key] = entry
	}
	g.next++
	id := g.next
	entry.loads[id] = cancel
	g.mu.Unlock()

	return ctx, func() {
		g.mu.Lock()
		delete(entry.loads, id)
		if len(entry.loads) == 0 && g.active[key] == entry {
			delete(g.active, key)
		}
		g.mu.Unlock()
		cancel(nil)
	}
}

// superseded reports whether ctx was cancelled by a newer selection.
func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrStaleSelection)
}
