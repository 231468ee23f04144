package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/browse"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/categorytree"
	"storefront/internal/domain/filters"
	"storefront/internal/params"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const (
	homeLatestProducts = 4
	catalogTitle       = "Catálogo Completo"
)

type crumb struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

// categories never fails: a backend error degrades to an empty list.
func (app *application) categories(ctx context.Context) []catalog.Category {
	cats, err := app.catalog.Source().ListCategories(ctx)
	if err != nil {
		app.logger.Warnw("category list degraded", "error", err.Error())
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	return cats
}

// homeHandler godoc
//
//	@Summary		Home view
//	@Description	Banners, the latest products and the root categories.
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/home [get]
func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		latest catalog.ProductPage
		cats   []catalog.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st := filters.Default()
		st.PageSize = homeLatestProducts
		latest, _ = app.catalog.Source().ListProducts(gctx, st)
		return nil
	})
	g.Go(func() error {
		cats = app.categories(gctx)
		return nil
	})
	_ = g.Wait()

	roots := make([]catalog.Category, 0)
	for _, n := range categorytree.Build(cats) {
		roots = append(roots, n.Category)
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"banners":        app.banners,
		"latestProducts": latest.Rows,
		"categories":     roots,
		"wishlistCount":  app.wishlistCount(r),
	})
}

// listCategoriesHandler godoc
//
//	@Summary	List categories
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{array}	catalog.Category
//	@Router		/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	app.jsonResponse(w, http.StatusOK, app.categories(ctx))
}

// getCategoryTreeHandler godoc
//
//	@Summary		Category tree
//	@Description	The category forest plus the visible sidebar rows. expand is a comma separated list of category ids.
//	@Tags			catalog
//	@Produce		json
//	@Param			expand	query		string	false	"Expanded category ids"
//	@Param			active	query		string	false	"Active category slug"
//	@Success		200		{object}	map[string]any
//	@Router			/categories/tree [get]
func (app *application) getCategoryTreeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	tree := categorytree.Build(app.categories(ctx))
	expanded := parseExpanded(q.Get("expand"))
	active := strings.TrimSpace(q.Get("active"))

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"tree": tree,
		"rows": categorytree.Flatten(tree, expanded, active),
	})
}

func parseExpanded(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out[id] = true
		}
	}
	return out
}

// catalogHandler godoc
//
//	@Summary		Catalog view
//	@Description	Product page for the whole catalog or for a category and all of its descendants.
//	@Tags			catalog
//	@Produce		json
//	@Param			categorySegment	path		string	false	"Category slug or id"
//	@Param			page			query		int		false	"Page (default 1)"
//	@Param			pageSize		query		int		false	"Page size (default 12)"
//	@Param			search			query		string	false	"Search term"
//	@Param			minPrice		query		number	false	"Minimum price"
//	@Param			maxPrice		query		number	false	"Maximum price"
//	@Success		200				{object}	map[string]any
//	@Failure		404				{object}	error	"Category not found"
//	@Router			/catalog/{categorySegment} [get]
func (app *application) catalogHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	loc := filters.NewLocation(chi.URLParam(r, "categorySegment"), r.URL.Query())
	loc.Query.Del("expand")
	syncer := browse.New(app.catalog, loc, app.logger)

	var (
		view browse.View
		cats []catalog.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view, err = syncer.Navigate(gctx, loc)
		return err
	})
	g.Go(func() error {
		cats = app.categories(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if view.Status == browse.NotFound {
		app.notFoundResponse(w, r, fmt.Errorf("category %q: %w", loc.CategorySegment, view.Err))
		return
	}

	tree := categorytree.Build(cats)
	expanded := parseExpanded(r.URL.Query().Get("expand"))
	title := catalogTitle
	crumbs := []crumb{{Label: "Inicio", Href: "/"}, {Label: "Catálogo", Href: filters.CatalogPath}}
	activeSlug := ""

	cat := view.Result.Category
	if cat != nil {
		title = cat.Name
		activeSlug = cat.Slug
		expanded = categorytree.ExpandPath(tree, cat.ID, expanded)
		path := categorytree.Path(tree, cat.ID)
		if len(path) == 0 {
			crumbs = append(crumbs, crumb{Label: cat.Name})
		}
		for i, n := range path {
			c := crumb{Label: n.Name}
			if i < len(path)-1 {
				c.Href = filters.NewLocation(n.Slug, nil).Path()
			}
			crumbs = append(crumbs, c)
		}
	}

	resp := map[string]any{
		"title":       title,
		"breadcrumbs": crumbs,
		"location":    view.Location.String(),
		"status":      view.Status,
		"filters":     view.State,
		"products":    view.Result.Page.Rows,
		"pagination":  view.Result.Page.Pagination,
		"category":    cat,
		"sidebar":     categorytree.Flatten(tree, expanded, activeSlug),
	}
	if !loc.Scoped() {
		roots := make([]catalog.Category, 0, len(tree))
		for _, n := range tree {
			roots = append(roots, n.Category)
		}
		resp["rootCategories"] = roots
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

// searchRedirectHandler godoc
//
//	@Summary		Submit a search
//	@Description	Replaces the search term of location, resets page to 1 and redirects to that page on the front end.
//	@Tags			catalog
//	@Param			q			query	string	false	"Search term, empty clears it"
//	@Param			location	query	string	false	"Current catalog location"
//	@Success		303
//	@Router			/catalog/search [get]
func (app *application) searchRedirectHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	syncer := browse.New(app.catalog, filters.ParseLocation(q.Get("location")), app.logger)

	app.redirectToFrontend(w, r, syncer.CommitSearch(q.Get("q")))
}

// redirectToFrontend sends the browser to loc on the storefront front end,
// which owns the /catalogo pages.
func (app *application) redirectToFrontend(w http.ResponseWriter, r *http.Request, loc filters.Location) {
	target := strings.TrimRight(app.config.frontendURL, "/") + loc.String()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type applyFilterPayload struct {
	Location string `validate:"max=2048"`
	MinPrice string `validate:"max=32"`
	MaxPrice string `validate:"max=32"`
}

// applyFilterHandler godoc
//
//	@Summary		Apply the price filter
//	@Description	Commits a price range into location and redirects to that page on the front end. page always goes back to 1.
//	@Tags			catalog
//	@Accept			x-www-form-urlencoded
//	@Param			location	formData	string	false	"Current catalog location"
//	@Param			minPrice	formData	number	false	"Minimum price"
//	@Param			maxPrice	formData	number	false	"Maximum price"
//	@Success		303
//	@Failure		400	{object}	error
//	@Router			/catalog/filter [post]
func (app *application) applyFilterHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	if err := r.ParseForm(); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}

	payload := applyFilterPayload{
		Location: r.PostForm.Get("location"),
		MinPrice: r.PostForm.Get("minPrice"),
		MaxPrice: r.PostForm.Get("maxPrice"),
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var minPrice, maxPrice *float64
	if v, ok := params.NonNegativeFloat(payload.MinPrice); ok {
		minPrice = &v
	}
	if v, ok := params.NonNegativeFloat(payload.MaxPrice); ok {
		maxPrice = &v
	}

	syncer := browse.New(app.catalog, filters.ParseLocation(payload.Location), app.logger)
	syncer.StagePriceRange(minPrice, maxPrice)
	app.redirectToFrontend(w, r, syncer.CommitFilter())
}

// getProductHandler godoc
//
//	@Summary	Product detail
//	@Tags		catalog
//	@Produce	json
//	@Param		slug	path		string	true	"Product slug"
//	@Success	200		{object}	map[string]any
//	@Failure	404		{object}	error	"Product not found"
//	@Router		/products/{slug} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		app.badRequestResponse(w, r, fmt.Errorf("slug is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := app.catalog.Source().GetProductBySlug(ctx, slug)
	if err != nil {
		// shown to the visitor like a missing product
		app.logger.Errorw("product lookup failed", "slug", slug, "error", err.Error())
	}
	if product == nil {
		app.notFoundResponse(w, r, fmt.Errorf("product %q not found", slug))
		return
	}

	crumbs := []crumb{{Label: "Catálogo", Href: filters.CatalogPath}}
	if product.Category != nil {
		crumbs = append(crumbs, crumb{
			Label: product.Category.Name,
			Href:  filters.NewLocation(product.Category.Slug, nil).Path(),
		})
	}
	crumbs = append(crumbs, crumb{Label: product.Name})

	inWishlist := false
	if store := app.peekWishlist(r); store != nil && store.Ready() {
		inWishlist = store.Contains(product.ID)
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"product":     product,
		"mainImage":   product.MainImage(),
		"price":       product.SellingPrice.Fixed(),
		"breadcrumbs": crumbs,
		"inWishlist":  inWishlist,
	})
}
