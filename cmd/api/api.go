package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/docs" //this is required to generate swagger docs
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/storage"
	"storefront/internal/domain/wishlist"
	"storefront/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config      config
	logger      *zap.SugaredLogger
	catalog     *catalog.Service
	wishlists   *wishlist.Registry
	rateLimiter ratelimiter.Limiter
	banners     []banner
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	siteURL     string
	backend     backendConfig
	storage     storage.Config
	wishlist    wishlistConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type backendConfig struct {
	url         string
	staticToken string
	token       tokenConfig
	categoryTTL time.Duration
}

type tokenConfig struct {
	secret string
	userID string
	exp    time.Duration
	iss    string
}

type wishlistConfig struct {
	namespace    string
	recipient    string
	linkTemplate string
	cookieSecure bool
	idleTimeout  time.Duration
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true, // wishlist session cookie
		MaxAge:           300,
	}))
	r.Use(app.RateLimiterMiddleware)

	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/sitemap.xml", app.sitemapHandler)

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(app.WishlistSessionMiddleware)

			r.Get("/home", app.homeHandler)
			r.Get("/products/{slug}", app.getProductHandler)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", app.listCategoriesHandler)
				r.Get("/tree", app.getCategoryTreeHandler)
			})

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", app.catalogHandler)
				r.Get("/search", app.searchRedirectHandler)
				r.Post("/filter", app.applyFilterHandler)
				r.Get("/{categorySegment}", app.catalogHandler)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", app.getWishlistHandler)
				r.Delete("/", app.clearWishlistHandler)
				r.Get("/export", app.exportWishlistHandler)
				r.Post("/items", app.addWishlistItemHandler)
				r.Delete("/items/{productID}", app.removeWishlistItemHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
