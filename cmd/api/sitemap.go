package main

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/filters"

	"golang.org/x/sync/errgroup"
)

const (
	defaultSiteURL      = "https://compugeeks.com.pe"
	sitemapProductLimit = 100
)

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (app *application) buildSitemap(ctx context.Context, now time.Time) sitemapURLSet {
	base := app.config.siteURL
	if base == "" {
		base = defaultSiteURL
	}
	lastMod := now.UTC().Format("2006-01-02")

	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: base, LastMod: lastMod, ChangeFreq: "daily", Priority: 1},
			{Loc: base + filters.CatalogPath, LastMod: lastMod, ChangeFreq: "weekly", Priority: 0.8},
			{Loc: base + "/wishlist", LastMod: lastMod, ChangeFreq: "monthly", Priority: 0.3},
		},
	}

	var (
		cats     []catalog.Category
		products catalog.ProductPage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = app.catalog.Source().ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		st := filters.Default()
		st.PageSize = sitemapProductLimit
		var err error
		products, err = app.catalog.Source().ListProducts(gctx, st)
		return err
	})
	if err := g.Wait(); err != nil {
		app.logger.Errorw("sitemap falls back to static routes", "error", err.Error())
		return set
	}

	for _, c := range cats {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + filters.NewLocation(c.Slug, nil).Path(),
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   0.7,
		})
	}
	for _, p := range products.Rows {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + "/producto/" + p.Slug,
			LastMod:    lastMod,
			ChangeFreq: "daily",
			Priority:   0.6,
		})
	}
	return set
}

// sitemapHandler godoc
//
//	@Summary		Sitemap
//	@Description	Static routes, every category and the first 100 products.
//	@Tags			seo
//	@Produce		xml
//	@Success		200
//	@Router			/sitemap.xml [get]
func (app *application) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	set := app.buildSitemap(ctx, time.Now())

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, xml.Header); err != nil {
		app.logger.Errorw("failed to write sitemap", "error", err.Error())
		return
	}
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		app.logger.Errorw("failed to write sitemap", "error", err.Error())
	}
}
