package filters

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"
)

func ptr(v float64) *float64 { return &v }

func TestFromQueryDefaults(t *testing.T) {
	st := FromQuery(url.Values{})
	if st.Page != 1 || st.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults: %+v", st)
	}
	if st.Search != "" || st.MinPrice != nil || st.MaxPrice != nil {
		t.Fatalf("optional fields must be absent: %+v", st)
	}
}

func TestFromQueryFailsSoft(t *testing.T) {
	q := url.Values{
		"page":     {"abc"},
		"pageSize": {"-3"},
		"minPrice": {"cheap"},
		"maxPrice": {"NaN"},
		"search":   {"  ryzen  "},
	}
	st := FromQuery(q)
	if st.Page != 1 {
		t.Errorf("page = %d, want 1", st.Page)
	}
	if st.PageSize != DefaultPageSize {
		t.Errorf("pageSize = %d, want %d", st.PageSize, DefaultPageSize)
	}
	if st.MinPrice != nil || st.MaxPrice != nil {
		t.Errorf("prices must fall back to absent: %+v", st)
	}
	if st.Search != "ryzen" {
		t.Errorf("search = %q", st.Search)
	}
}

func TestFromQueryTruncatesSearchOnRuneBoundary(t *testing.T) {
	long := "a" + strings.Repeat("ñ", 150)
	st := FromQuery(url.Values{"search": {long}})
	if !utf8.ValidString(st.Search) {
		t.Fatalf("search is not valid UTF-8: %q", st.Search)
	}
	if len(st.Search) > MaxSearchLen {
		t.Fatalf("search is %d bytes, want at most %d", len(st.Search), MaxSearchLen)
	}
	if want := "a" + strings.Repeat("ñ", 99); st.Search != want {
		t.Fatalf("search = %q, want %q", st.Search, want)
	}

	ascii := strings.Repeat("x", 250)
	if st := FromQuery(url.Values{"search": {ascii}}); st.Search != ascii[:MaxSearchLen] {
		t.Fatalf("ascii search len = %d", len(st.Search))
	}
}

func TestFromQueryParsesValues(t *testing.T) {
	q := url.Values{"page": {"3"}, "pageSize": {"500"}, "minPrice": {"100"}, "maxPrice": {"250.5"}}
	st := FromQuery(q)
	if st.Page != 3 {
		t.Errorf("page = %d", st.Page)
	}
	if st.PageSize != MaxPageSize {
		t.Errorf("pageSize should be capped, got %d", st.PageSize)
	}
	if st.MinPrice == nil || *st.MinPrice != 100 || st.MaxPrice == nil || *st.MaxPrice != 250.5 {
		t.Errorf("unexpected prices: %+v", st)
	}
	if err := st.Validate(); err != nil {
		t.Errorf("parsed state should validate: %v", err)
	}
}

func TestFromQueryDropsInvertedMax(t *testing.T) {
	st := FromQuery(url.Values{"minPrice": {"500"}, "maxPrice": {"100"}})
	if st.MinPrice == nil || *st.MinPrice != 500 {
		t.Fatalf("min should be kept: %+v", st)
	}
	if st.MaxPrice != nil {
		t.Fatalf("max lower than min should be dropped, got %v", *st.MaxPrice)
	}
}

func TestValidate(t *testing.T) {
	bad := []State{
		{Page: 0, PageSize: 12},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 12, MinPrice: ptr(-1)},
		{Page: 1, PageSize: 12, MinPrice: ptr(50), MaxPrice: ptr(10)},
	}
	for i, st := range bad {
		if err := st.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, st)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default state must be valid: %v", err)
	}
}

func TestBackendQueryAlwaysIncludesInventorySentinel(t *testing.T) {
	for _, scoped := range []bool{false, true} {
		q := BackendQuery(Default(), scoped)
		if got := q.Get("inventoryManaged"); got != InventoryAll {
			t.Errorf("scoped=%v: inventoryManaged = %q", scoped, got)
		}
	}
}

func TestBackendQueryMapping(t *testing.T) {
	st := State{Page: 2, PageSize: 12, Search: "monitor", MinPrice: ptr(0), MaxPrice: ptr(999.9), CategoryID: "cat-1"}

	q := BackendQuery(st, false)
	want := map[string]string{
		"page":       "2",
		"pageSize":   "12",
		"search":     "monitor",
		"maxPrice":   "999.9",
		"categoryId": "cat-1",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if q.Has("minPrice") {
		t.Error("zero minPrice must not be sent")
	}

	scoped := BackendQuery(st, true)
	if scoped.Has("categoryId") {
		t.Error("scoped requests carry the category in the path")
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw     string
		segment string
		page    string
	}{
		{"/catalogo", "", ""},
		{"/catalogo/laptops?page=2", "laptops", "2"},
		{"/catalogo/laptops/extra?page=3", "laptops", "3"},
		{"/wishlist?page=4", "", "4"},
		{"%%%", "", ""},
	}
	for _, tt := range tests {
		loc := ParseLocation(tt.raw)
		if loc.CategorySegment != tt.segment {
			t.Errorf("%q: segment = %q, want %q", tt.raw, loc.CategorySegment, tt.segment)
		}
		if got := loc.Query.Get("page"); got != tt.page {
			t.Errorf("%q: page = %q, want %q", tt.raw, got, tt.page)
		}
	}
}

func TestLocationString(t *testing.T) {
	loc := NewLocation("laptops", url.Values{"search": {"asus rog"}, "page": {"2"}})
	if got, want := loc.String(), "/catalogo/laptops?page=2&search=asus+rog"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got := NewLocation("", nil).String(); got != "/catalogo" {
		t.Fatalf("root String() = %q", got)
	}
}

func TestCommitPriceRangeResetsPage(t *testing.T) {
	loc := NewLocation("monitores", url.Values{"page": {"5"}, "search": {"lg"}})

	next := loc.CommitPriceRange(ptr(100), ptr(900))
	if got := next.Query.Get("page"); got != "1" {
		t.Fatalf("page = %q, want 1", got)
	}
	if next.Query.Get("minPrice") != "100" || next.Query.Get("maxPrice") != "900" {
		t.Fatalf("prices not written: %v", next.Query)
	}
	if next.Query.Get("search") != "lg" {
		t.Fatal("unrelated keys must be preserved")
	}
	if loc.Query.Get("page") != "5" {
		t.Fatal("commit must not mutate the previous location")
	}

	// committing the same range again is still a commit
	moved := next.WithPage(4)
	again := moved.CommitPriceRange(ptr(100), ptr(900))
	if got := again.Query.Get("page"); got != "1" {
		t.Fatalf("unchanged range: page = %q, want 1", got)
	}
}

func TestCommitPriceRangeClearsAbsentBounds(t *testing.T) {
	loc := NewLocation("", url.Values{"minPrice": {"10"}, "maxPrice": {"20"}})
	next := loc.CommitPriceRange(nil, nil)
	if next.Query.Has("minPrice") || next.Query.Has("maxPrice") {
		t.Fatalf("nil bounds should be removed: %v", next.Query)
	}
}

func TestSubmitSearch(t *testing.T) {
	loc := NewLocation("", url.Values{"page": {"3"}, "search": {"old"}})

	next := loc.SubmitSearch("  rtx 4060 ")
	if next.Query.Get("search") != "rtx 4060" || next.Query.Get("page") != "1" {
		t.Fatalf("unexpected query: %v", next.Query)
	}

	cleared := next.SubmitSearch("")
	if cleared.Query.Has("search") {
		t.Fatal("empty term should clear the search")
	}
}
