package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/filters"
	"storefront/internal/domain/wishlist"
	"storefront/internal/ratelimiter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSource struct {
	products   []catalog.Product
	categories []catalog.Category
	// recursive maps a category id to the rows of its subtree
	recursive map[string][]catalog.Product
	err       error
}

func (s *stubSource) page(rows []catalog.Product, st filters.State) (catalog.ProductPage, error) {
	if s.err != nil {
		return catalog.EmptyPage(st.Page, st.PageSize), s.err
	}
	p := catalog.EmptyPage(st.Page, st.PageSize)
	p.Rows = append(p.Rows, rows...)
	p.Pagination.ComputeMeta(len(rows))
	return p, nil
}

func (s *stubSource) ListProducts(ctx context.Context, st filters.State) (catalog.ProductPage, error) {
	return s.page(s.products, st)
}

func (s *stubSource) ListProductsByCategoryRecursive(ctx context.Context, id string, st filters.State) (catalog.ProductPage, error) {
	return s.page(s.recursive[id], st)
}

func (s *stubSource) GetProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *stubSource) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	if s.err != nil {
		return []catalog.Category{}, s.err
	}
	return s.categories, nil
}

func (s *stubSource) GetCategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.MatchSlug(cats, slug), nil
}

func strPtr(s string) *string { return &s }

func sampleSource() *stubSource {
	laptop := catalog.Product{ID: "11111111-aaaa", Name: "Laptop Gamer", Slug: "laptop-gamer", SellingPrice: catalog.MustPrice("3500"), CategoryID: "c2"}
	mouse := catalog.Product{ID: "22222222-bbbb", Name: "Mouse", Slug: "mouse", SellingPrice: catalog.MustPrice("45.5"), CategoryID: "c3"}
	return &stubSource{
		products: []catalog.Product{laptop, mouse},
		categories: []catalog.Category{
			{ID: "c1", Name: "Computadoras", Slug: "computadoras"},
			{ID: "c2", Name: "Laptops", Slug: "laptops", ParentID: strPtr("c1")},
			{ID: "c3", Name: "Accesorios", Slug: "accesorios"},
			{ID: "c4", Name: "Tablets", Slug: "tablets", ParentID: strPtr("c1")},
		},
		recursive: map[string][]catalog.Product{"c1": {laptop}, "c2": {laptop}, "c3": {mouse}},
	}
}

const testFrontendURL = "http://localhost:3000"

func newTestApplication(t *testing.T, src catalog.Source) *application {
	t.Helper()
	logger := zap.NewNop().Sugar()
	return &application{
		config: config{
			env:         "test",
			frontendURL: testFrontendURL,
			siteURL:     defaultSiteURL,
			auth:        authConfig{basic: basicConfig{user: "admin", pass: "secret"}},
		},
		logger:    logger,
		catalog:   catalog.NewService(src, logger),
		wishlists: wishlist.NewRegistry("", wishlist.NewMemoryPersister(), wishlist.NewExporter("", ""), logger),
		banners:   defaultBanners,
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestCatalogView(t *testing.T) {
	app := newTestApplication(t, sampleSource())
	mux := app.mount()

	t.Run("unscoped lists everything with root categories", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog", nil), mux)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var body struct {
			Title          string             `json:"title"`
			Products       []catalog.Product  `json:"products"`
			RootCategories []catalog.Category `json:"rootCategories"`
			Status         string             `json:"status"`
		}
		decodeData(t, rr, &body)
		if body.Title != catalogTitle || len(body.Products) != 2 || body.Status != "success" {
			t.Fatalf("body = %+v", body)
		}
		if len(body.RootCategories) != 2 {
			t.Fatalf("root categories = %+v", body.RootCategories)
		}
	})

	t.Run("scoped by slug includes the subtree", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog/computadoras?page=1", nil), mux)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var body struct {
			Title       string            `json:"title"`
			Products    []catalog.Product `json:"products"`
			Breadcrumbs []crumb           `json:"breadcrumbs"`
			Sidebar     []struct {
				ID     string `json:"id"`
				Active bool   `json:"active"`
			} `json:"sidebar"`
		}
		decodeData(t, rr, &body)
		if body.Title != "Computadoras" || len(body.Products) != 1 || body.Products[0].Slug != "laptop-gamer" {
			t.Fatalf("body = %+v", body)
		}
		if last := body.Breadcrumbs[len(body.Breadcrumbs)-1]; last.Label != "Computadoras" || last.Href != "" {
			t.Fatalf("breadcrumbs = %+v", body.Breadcrumbs)
		}
		if len(body.Sidebar) == 0 || !body.Sidebar[0].Active {
			t.Fatalf("sidebar = %+v", body.Sidebar)
		}
	})

	t.Run("found but empty is not a 404", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog/tablets", nil), mux)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var body struct {
			Products []catalog.Product `json:"products"`
		}
		decodeData(t, rr, &body)
		if body.Products == nil || len(body.Products) != 0 {
			t.Fatalf("products = %#v", body.Products)
		}
	})

	t.Run("resolves by id", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog/c3", nil), mux)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	})

	t.Run("unknown category is a 404", func(t *testing.T) {
		rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog/ghost", nil), mux)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rr.Code)
		}
	})
}

func TestCatalogDegradesOnBackendFailure(t *testing.T) {
	src := sampleSource()
	src.err = catalog.ErrUnavailable
	mux := newTestApplication(t, src).mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog?page=abc&minPrice=x", nil), mux)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Products []catalog.Product `json:"products"`
		Status   string            `json:"status"`
		Filters  filters.State     `json:"filters"`
	}
	decodeData(t, rr, &body)
	if len(body.Products) != 0 || body.Status != "failed" || body.Filters.Page != 1 || body.Filters.MinPrice != nil {
		t.Fatalf("body = %+v", body)
	}
}

// followRedirect maps a front end catalog location onto the matching API view.
func followRedirect(t *testing.T, rr *httptest.ResponseRecorder, mux http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	target, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if got := target.Scheme + "://" + target.Host; got != testFrontendURL {
		t.Fatalf("redirect leaves the front end: %q", target.String())
	}
	if !strings.HasPrefix(target.Path, filters.CatalogPath) {
		t.Fatalf("redirect path = %q", target.Path)
	}
	apiPath := "/v1/catalog" + strings.TrimPrefix(target.Path, filters.CatalogPath) + "?" + target.RawQuery
	return executeRequest(httptest.NewRequest(http.MethodGet, apiPath, nil), mux)
}

func TestSearchRedirect(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	target := "/v1/catalog/search?q=" + url.QueryEscape("ssd nvme") + "&location=" + url.QueryEscape("/catalogo/laptops?page=4&minPrice=10")
	rr := executeRequest(httptest.NewRequest(http.MethodGet, target, nil), mux)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	want := testFrontendURL + "/catalogo/laptops?minPrice=10&page=1&search=ssd+nvme"
	if got := rr.Header().Get("Location"); got != want {
		t.Fatalf("location = %q, want %q", got, want)
	}

	view := followRedirect(t, rr, mux)
	if view.Code != http.StatusOK {
		t.Fatalf("following the redirect: status = %d", view.Code)
	}
	var body struct {
		Filters filters.State `json:"filters"`
	}
	decodeData(t, view, &body)
	if body.Filters.Search != "ssd nvme" || body.Filters.Page != 1 {
		t.Fatalf("filters = %+v", body.Filters)
	}
}

func TestSearchRedirectFromWholeCatalog(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/catalog/search?q=mouse", nil), mux)
	if got, want := rr.Header().Get("Location"), testFrontendURL+"/catalogo?page=1&search=mouse"; got != want {
		t.Fatalf("location = %q, want %q", got, want)
	}
	if view := followRedirect(t, rr, mux); view.Code != http.StatusOK {
		t.Fatalf("following the redirect: status = %d", view.Code)
	}
}

func TestApplyFilterRedirect(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	form := url.Values{
		"location": {"/catalogo/laptops?page=3&search=rtx"},
		"minPrice": {"100"},
		"maxPrice": {"abc"},
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/catalog/filter", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := executeRequest(req, mux)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	want := testFrontendURL + "/catalogo/laptops?minPrice=100&page=1&search=rtx"
	if got := rr.Header().Get("Location"); got != want {
		t.Fatalf("location = %q, want %q", got, want)
	}

	view := followRedirect(t, rr, mux)
	if view.Code != http.StatusOK {
		t.Fatalf("following the redirect: status = %d", view.Code)
	}
	var body struct {
		Filters filters.State `json:"filters"`
	}
	decodeData(t, view, &body)
	if body.Filters.MinPrice == nil || *body.Filters.MinPrice != 100 || body.Filters.Page != 1 {
		t.Fatalf("filters = %+v", body.Filters)
	}
}

func TestProductDetail(t *testing.T) {
	src := sampleSource()
	mux := newTestApplication(t, src).mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/products/mouse", nil), mux)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Price      string `json:"price"`
		InWishlist bool   `json:"inWishlist"`
	}
	decodeData(t, rr, &body)
	if body.Price != "45.50" || body.InWishlist {
		t.Fatalf("body = %+v", body)
	}

	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/v1/products/nope", nil), mux)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing product status = %d", rr.Code)
	}

	src.err = catalog.ErrUnavailable
	rr = executeRequest(httptest.NewRequest(http.MethodGet, "/v1/products/mouse", nil), mux)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("failed lookup status = %d", rr.Code)
	}
}

func TestWishlistFlow(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	add := func(slug string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/wishlist/items", strings.NewReader(`{"slug":"`+slug+`"}`))
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		return executeRequest(req, mux)
	}

	rr := add("laptop-gamer", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first add status = %d", rr.Code)
	}
	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie issued")
	}

	if rr := add("laptop-gamer", session); rr.Code != http.StatusOK {
		t.Fatalf("duplicate add status = %d", rr.Code)
	}
	if rr := add("mouse", session); rr.Code != http.StatusCreated {
		t.Fatalf("second add status = %d", rr.Code)
	}
	if rr := add("ghost", session); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown product status = %d", rr.Code)
	}
	if rr := add("", session); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty slug status = %d", rr.Code)
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(session)
		return executeRequest(req, mux)
	}

	rr = get("/v1/wishlist")
	var view struct {
		Items []wishlist.Entry `json:"items"`
		Count int              `json:"count"`
	}
	decodeData(t, rr, &view)
	if view.Count != 2 || view.Items[0].Product.Slug != "laptop-gamer" || view.Items[1].Product.Slug != "mouse" {
		t.Fatalf("wishlist = %+v", view)
	}

	rr = get("/v1/products/mouse")
	var detail struct {
		InWishlist bool `json:"inWishlist"`
	}
	decodeData(t, rr, &detail)
	if !detail.InWishlist {
		t.Fatal("product detail should report the wishlist membership")
	}

	rr = get("/v1/wishlist/export")
	var export struct {
		Link string `json:"link"`
	}
	decodeData(t, rr, &export)
	if !strings.HasPrefix(export.Link, "whatsapp://send?phone=51999999999&text=") ||
		!strings.Contains(export.Link, "S%2F%203500.00") || !strings.Contains(export.Link, "S%2F%2045.50") {
		t.Fatalf("link = %q", export.Link)
	}

	del := httptest.NewRequest(http.MethodDelete, "/v1/wishlist/items/not-there", nil)
	del.AddCookie(session)
	if rr := executeRequest(del, mux); rr.Code != http.StatusOK {
		t.Fatalf("removing an absent item status = %d", rr.Code)
	}

	clearReq := httptest.NewRequest(http.MethodDelete, "/v1/wishlist", nil)
	clearReq.AddCookie(session)
	if rr := executeRequest(clearReq, mux); rr.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rr.Code)
	}

	if rr := get("/v1/wishlist/export"); rr.Code != http.StatusNoContent {
		t.Fatalf("empty export status = %d", rr.Code)
	}
}

type downPersister struct{}

func (downPersister) Load(ctx context.Context, key string) ([]wishlist.Entry, error) {
	return nil, catalog.ErrUnavailable
}

func (downPersister) Save(ctx context.Context, key string, entries []wishlist.Entry) error {
	return catalog.ErrUnavailable
}

func TestWishlistUnavailableUntilLoaded(t *testing.T) {
	app := newTestApplication(t, sampleSource())
	app.wishlists = wishlist.NewRegistry("", downPersister{}, wishlist.NewExporter("", ""), app.logger)
	mux := app.mount()

	session := &http.Cookie{Name: sessionCookie, Value: "7f8a3c2e-5b1d-4e6f-9a0b-1c2d3e4f5a6b"}
	withSession := func(method, path string) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		req.AddCookie(session)
		return req
	}

	rr := executeRequest(withSession(http.MethodGet, "/v1/wishlist"), mux)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = executeRequest(withSession(http.MethodGet, "/v1/home"), mux)
	var home struct {
		WishlistCount *int `json:"wishlistCount"`
	}
	decodeData(t, rr, &home)
	if home.WishlistCount != nil {
		t.Fatal("the home view must not report a count before the list is loaded")
	}
}

func TestHome(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/home", nil), mux)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Banners        []banner           `json:"banners"`
		LatestProducts []catalog.Product  `json:"latestProducts"`
		Categories     []catalog.Category `json:"categories"`
		WishlistCount  *int               `json:"wishlistCount"`
	}
	decodeData(t, rr, &body)
	if len(body.Banners) != 2 || len(body.LatestProducts) != 2 || len(body.Categories) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.WishlistCount == nil || *body.WishlistCount != 0 {
		t.Fatalf("wishlistCount = %v", body.WishlistCount)
	}
}

func TestCategoryTreeEndpoint(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/categories/tree?expand=c1", nil), mux)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Tree []struct {
			ID       string `json:"id"`
			Children []struct {
				ID string `json:"id"`
			} `json:"children"`
		} `json:"tree"`
		Rows []struct {
			ID    string `json:"id"`
			Depth int    `json:"depth"`
		} `json:"rows"`
	}
	decodeData(t, rr, &body)
	if len(body.Tree) != 2 || len(body.Tree[0].Children) != 2 {
		t.Fatalf("tree = %+v", body.Tree)
	}
	if len(body.Rows) != 4 || body.Rows[1].ID != "c2" || body.Rows[1].Depth != 1 {
		t.Fatalf("rows = %+v", body.Rows)
	}
}

type brokenWriter struct {
	header http.Header
	writes int
}

func (b *brokenWriter) Header() http.Header { return b.header }
func (b *brokenWriter) WriteHeader(int)     {}

func (b *brokenWriter) Write(p []byte) (int, error) {
	b.writes++
	return 0, errors.New("connection reset")
}

func TestSitemapStopsOnWriteFailure(t *testing.T) {
	app := newTestApplication(t, sampleSource())
	core, logs := observer.New(zapcore.ErrorLevel)
	app.logger = zap.New(core).Sugar()

	w := &brokenWriter{header: http.Header{}}
	app.sitemapHandler(w, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	if w.writes != 1 {
		t.Fatalf("writes after a failed header = %d, want 1", w.writes)
	}
	if logs.FilterMessage("failed to write sitemap").Len() != 1 {
		t.Fatalf("logged = %+v", logs.All())
	}
}

func TestSitemap(t *testing.T) {
	src := sampleSource()
	app := newTestApplication(t, src)

	set := app.buildSitemap(context.Background(), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	if len(set.URLs) != 3+4+2 {
		t.Fatalf("urls = %d", len(set.URLs))
	}
	if set.URLs[3].Loc != "https://compugeeks.com.pe/catalogo/computadoras" {
		t.Fatalf("category url = %q", set.URLs[3].Loc)
	}
	if set.URLs[8].Loc != "https://compugeeks.com.pe/producto/mouse" || set.URLs[8].LastMod != "2025-12-01" {
		t.Fatalf("product url = %+v", set.URLs[8])
	}

	src.err = catalog.ErrUnavailable
	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil), app.mount())
	var decoded sitemapURLSet
	if err := xml.NewDecoder(rr.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.URLs) != 3 {
		t.Fatalf("fallback urls = %d", len(decoded.URLs))
	}
}

type denyAll struct{}

func (denyAll) Allow(string) (bool, time.Duration) { return false, 2 * time.Second }

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t, sampleSource())
	app.rateLimiter = denyAll{}
	app.config.rateLimiter = ratelimiter.Config{Enabled: true}

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/categories", nil), app.mount())
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "2" {
		t.Fatalf("status = %d, retry = %q", rr.Code, rr.Header().Get("Retry-After"))
	}
}

func TestHealthRequiresBasicAuth(t *testing.T) {
	mux := newTestApplication(t, sampleSource()).mount()

	rr := executeRequest(httptest.NewRequest(http.MethodGet, "/v1/health", nil), mux)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.SetBasicAuth("admin", "secret")
	if rr := executeRequest(req, mux); rr.Code != http.StatusOK {
		t.Fatalf("authorized status = %d", rr.Code)
	}
}

func TestAnonymousReadsDoNotAllocateWishlists(t *testing.T) {
	app := newTestApplication(t, sampleSource())
	mux := app.mount()

	for i := 0; i < 200; i++ {
		for _, path := range []string{"/v1/home", "/v1/products/mouse", "/v1/wishlist", "/v1/wishlist/export"} {
			rr := executeRequest(httptest.NewRequest(http.MethodGet, path, nil), mux)
			if rr.Code >= http.StatusBadRequest {
				t.Fatalf("%s status = %d", path, rr.Code)
			}
		}
	}
	if n := app.wishlists.Len(); n != 0 {
		t.Fatalf("cookie-less reads allocated %d wishlists", n)
	}

	// an unknown but well-formed session is only peeked at by read views
	req := httptest.NewRequest(http.MethodGet, "/v1/home", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "0b9d6f3e-2a4c-4d8e-8f1a-3c5e7a9b1d2f"})
	executeRequest(req, mux)
	if n := app.wishlists.Len(); n != 0 {
		t.Fatalf("home allocated %d wishlists", n)
	}
}

func TestSweepEvictsIdleWishlists(t *testing.T) {
	app := newTestApplication(t, sampleSource())
	app.config.wishlist.idleTimeout = time.Nanosecond
	mux := app.mount()

	req := httptest.NewRequest(http.MethodPost, "/v1/wishlist/items", strings.NewReader(`{"slug":"mouse"}`))
	req.Header.Set("Content-Type", "application/json")
	if rr := executeRequest(req, mux); rr.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rr.Code)
	}
	if app.wishlists.Len() != 1 {
		t.Fatalf("len = %d", app.wishlists.Len())
	}

	time.Sleep(time.Millisecond)
	app.sweepOnce(nil)
	if app.wishlists.Len() != 0 {
		t.Fatalf("idle wishlist survived the sweep, len = %d", app.wishlists.Len())
	}
}
