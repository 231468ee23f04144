package browse

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/filters"

	"go.uber.org/zap"
)

// ErrStale is returned to a caller whose fetch was overtaken by a later one.
// The later result stays visible.
var ErrStale = errors.New("response superseded by a later request")

type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
	NotFound
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Succeeded:
		return "success"
	case Failed:
		return "failed"
	case NotFound:
		return "not_found"
	default:
		return "idle"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Lister fetches one page of a (possibly category scoped) product list.
// catalog.Service satisfies it.
type Lister interface {
	ListScoped(ctx context.Context, segment string, st filters.State) (*catalog.ScopedResult, error)
}

// PriceRange is a price filter edit that has not been committed yet.
type PriceRange struct {
	Min *float64 `json:"minPrice,omitempty"`
	Max *float64 `json:"maxPrice,omitempty"`
}

// View is what the presentation layer renders.
type View struct {
	Status   Status                `json:"status"`
	Seq      uint64                `json:"seq"`
	Location filters.Location      `json:"-"`
	State    filters.State         `json:"filters"`
	Result   *catalog.ScopedResult `json:"result,omitempty"`
	Err      error                 `json:"-"`
}

// Synchronizer keeps the addressable location, the staged filter edits and
// the last fetched product page consistent. Every fetch takes a new sequence
// number; a response is applied only if its number is still the latest one
// issued.
type Synchronizer struct {
	lister Lister
	logger *zap.SugaredLogger

	mu     sync.Mutex
	loc    filters.Location
	staged PriceRange
	issued uint64
	view   View
}

func New(lister Lister, loc filters.Location, logger *zap.SugaredLogger) *Synchronizer {
	s := &Synchronizer{lister: lister, logger: logger}
	s.reset(loc)
	s.view = View{Status: Idle, Location: loc, State: loc.State()}
	return s
}

// reset must be called with mu held (or before the value is shared).
func (s *Synchronizer) reset(loc filters.Location) {
	st := loc.State()
	s.loc = loc
	s.staged = PriceRange{Min: st.MinPrice, Max: st.MaxPrice}
}

func (s *Synchronizer) Location() filters.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

func (s *Synchronizer) State() filters.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc.State()
}

func (s *Synchronizer) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Synchronizer) Staged() PriceRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged
}

// StagePriceRange records a price edit. Nothing is fetched until ApplyFilter.
func (s *Synchronizer) StagePriceRange(minPrice, maxPrice *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = PriceRange{Min: minPrice, Max: maxPrice}
}

// Navigate adopts a location coming from outside (initial load, back/forward)
// and fetches it. Staged edits are replaced by the location's own values.
func (s *Synchronizer) Navigate(ctx context.Context, loc filters.Location) (View, error) {
	s.mu.Lock()
	s.reset(loc)
	s.mu.Unlock()
	return s.fetch(ctx, loc)
}

// CommitFilter moves the staged price range into the location without
// fetching. page always goes back to 1, even when the range did not change.
func (s *Synchronizer) CommitFilter() filters.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.loc.CommitPriceRange(s.staged.Min, s.staged.Max)
	s.reset(next)
	return next
}

// ApplyFilter commits the staged price range and fetches the result.
func (s *Synchronizer) ApplyFilter(ctx context.Context) (View, error) {
	return s.fetch(ctx, s.CommitFilter())
}

// CommitSearch replaces the search term without fetching; page goes back to 1.
func (s *Synchronizer) CommitSearch(term string) filters.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = s.loc.SubmitSearch(term)
	return s.loc
}

func (s *Synchronizer) SubmitSearch(ctx context.Context, term string) (View, error) {
	return s.fetch(ctx, s.CommitSearch(term))
}

func (s *Synchronizer) GoToPage(ctx context.Context, page int) (View, error) {
	s.mu.Lock()
	next := s.loc.WithPage(page)
	s.loc = next
	s.mu.Unlock()
	return s.fetch(ctx, next)
}

func (s *Synchronizer) fetch(ctx context.Context, loc filters.Location) (View, error) {
	st := loc.State()

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.view = View{
		Status:   Loading,
		Seq:      seq,
		Location: loc,
		State:    st,
		Result:   s.view.Result,
	}
	s.mu.Unlock()

	res, err := s.lister.ListScoped(ctx, loc.CategorySegment, st)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		s.logger.Debugw("dropping stale catalog response", "seq", seq, "latest", s.issued)
		return s.view, ErrStale
	}

	next := View{Seq: seq, Location: loc, State: st, Result: res, Err: err}
	switch {
	case err == nil:
		next.Status = Succeeded
	case errors.Is(err, catalog.ErrCategoryNotFound):
		next.Status = NotFound
	default:
		next.Status = Failed
		s.logger.Warnw("catalog fetch failed", "seq", seq, "location", loc.String(), "error", err.Error())
	}
	if next.Result == nil {
		next.Result = &catalog.ScopedResult{Page: catalog.EmptyPage(st.Page, st.PageSize)}
	}

	s.view = next
	return next, nil
}
