package obligation

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/ledgerline/internal/shared"
)

// View is the read-only snapshot a Workspace exposes after a reload: the
// current page of the collection, its pagination window, the side's summary
// totals, and the latest forecast. Forecast may be zero when the analysis
// load degraded.
type View struct {
	Items       []Obligation
	Pagination  shared.Pagination
	Summary     Summary
	Forecast    Forecast
	HasForecast bool
}

// Workspace holds one session's working state for a single side: the loaded
// collection plus the active filter, sort, and page. Concurrent reloads are
// ordered by a sequence number so a slow earlier response can never
// overwrite a newer one.
//
// It is the embedding surface for stateful front ends (a TUI or desktop
// shell holding one Workspace per open view). The HTTP handlers stay
// stateless and build a Query per request instead.
type Workspace struct {
	service *Service
	side    Side

	mu       sync.Mutex
	seq      uint64
	applied  uint64
	items    []Obligation
	summary  Summary
	forecast Forecast
	hasFcast bool

	query    Query
	horizon  int
	analysis ForecastFilter
}

// NewWorkspace builds a workspace bound to one side of the ledger.
func NewWorkspace(service *Service, side Side) *Workspace {
	return &Workspace{
		service: service,
		side:    side,
		query:   Query{Page: 1, PerPage: DefaultPageSize},
		horizon: DefaultHorizonMonths,
	}
}

// Reload fetches the collection and the forecast concurrently. The
// collection load is authoritative; a forecast failure degrades the view
// instead of failing the reload. Results from an older in-flight reload are
// discarded if a newer one already committed.
func (w *Workspace) Reload(ctx context.Context) error {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	horizon := w.horizon
	analysis := w.analysis
	w.mu.Unlock()

	var (
		items    []Obligation
		summary  Summary
		forecast Forecast
		hasFcast bool
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := w.service.List(ctx, w.side)
		if err != nil {
			return err
		}
		items = loaded
		summary = Summarize(loaded, w.service.Today())
		return nil
	})
	g.Go(func() error {
		f, err := w.service.Analyze(ctx, w.side, horizon, analysis)
		if err != nil {
			return nil
		}
		forecast = f
		hasFcast = true
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq < w.applied {
		return nil
	}
	w.applied = seq
	w.items = items
	w.summary = summary
	w.forecast = forecast
	w.hasFcast = hasFcast
	return nil
}

// SetFilter replaces the active filter and resets to the first page.
func (w *Workspace) SetFilter(filter Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query.Filter = filter
	w.query.Page = 1
}

// ToggleSort cycles the sort on one field, asc then desc, and resets to the
// first page.
func (w *Workspace) ToggleSort(field SortField) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query.Sort = NextSort(w.query.Sort, field)
	w.query.Page = 1
}

// SetPage moves to the requested page. Pages below one clamp to one.
func (w *Workspace) SetPage(page int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if page < 1 {
		page = 1
	}
	w.query.Page = page
}

// SetHorizon changes the forecast horizon used on the next reload.
func (w *Workspace) SetHorizon(monthsAhead int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if monthsAhead <= 0 {
		monthsAhead = DefaultHorizonMonths
	}
	w.horizon = monthsAhead
}

// SetAnalysisFilter changes the forecast filter used on the next reload.
func (w *Workspace) SetAnalysisFilter(filter ForecastFilter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.analysis = filter
}

// Current applies the active query to the loaded collection and returns the
// resulting view. The underlying collection is never mutated.
func (w *Workspace) Current() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	page, pagination := w.query.Apply(w.items, w.service.Today())
	return View{
		Items:       page,
		Pagination:  pagination,
		Summary:     w.summary,
		Forecast:    w.forecast,
		HasForecast: w.hasFcast,
	}
}
