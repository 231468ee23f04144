package filters

import (
	"net/url"
	"strconv"
	"strings"
)

// CatalogPath is the root of every addressable catalog location.
const CatalogPath = "/catalogo"

// Location is the shareable representation of a filter selection. The
// category scope lives in the path segment, everything else in the query.
// Methods never mutate the receiver; they return a new Location.
type Location struct {
	CategorySegment string
	Query           url.Values
}

func NewLocation(segment string, q url.Values) Location {
	return Location{
		CategorySegment: strings.Trim(strings.TrimSpace(segment), "/"),
		Query:           cloneValues(q),
	}
}

// ParseLocation parses a path+query string such as
// "/catalogo/laptops?page=2". Anything outside the catalog falls back to the
// unscoped catalog root.
func ParseLocation(raw string) Location {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return NewLocation("", nil)
	}

	path := strings.TrimSuffix(u.Path, "/")
	if path != CatalogPath && !strings.HasPrefix(path, CatalogPath+"/") {
		return NewLocation("", u.Query())
	}

	segment := strings.TrimPrefix(strings.TrimPrefix(path, CatalogPath), "/")
	// only the first segment scopes the catalog
	if i := strings.Index(segment, "/"); i >= 0 {
		segment = segment[:i]
	}
	return NewLocation(segment, u.Query())
}

func (l Location) Scoped() bool {
	return l.CategorySegment != ""
}

// State derives the filter state carried by the location.
func (l Location) State() State {
	return FromQuery(l.Query)
}

func (l Location) Path() string {
	if !l.Scoped() {
		return CatalogPath
	}
	return CatalogPath + "/" + url.PathEscape(l.CategorySegment)
}

func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path()
	}
	return l.Path() + "?" + l.Query.Encode()
}

// CommitPriceRange promotes a staged price range into the location. page is
// always reset to 1, even when the range did not change.
func (l Location) CommitPriceRange(minPrice, maxPrice *float64) Location {
	next := NewLocation(l.CategorySegment, l.Query)
	setPrice(next.Query, KeyMinPrice, minPrice)
	setPrice(next.Query, KeyMaxPrice, maxPrice)
	next.Query.Set(KeyPage, "1")
	return next
}

// SubmitSearch replaces the search term and resets page to 1. An empty term
// clears the search.
func (l Location) SubmitSearch(term string) Location {
	next := NewLocation(l.CategorySegment, l.Query)
	term = strings.TrimSpace(term)
	if term == "" {
		next.Query.Del(KeySearch)
	} else {
		next.Query.Set(KeySearch, term)
	}
	next.Query.Set(KeyPage, "1")
	return next
}

func (l Location) WithPage(page int) Location {
	if page < 1 {
		page = 1
	}
	next := NewLocation(l.CategorySegment, l.Query)
	next.Query.Set(KeyPage, strconv.Itoa(page))
	return next
}

func setPrice(q url.Values, key string, v *float64) {
	if v == nil || *v < 0 {
		q.Del(key)
		return
	}
	q.Set(key, formatPrice(*v))
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
