package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/storage"
	"storefront/internal/domain/wishlist"
	"storefront/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            envDuration("RATELIMITER_TIME_FRAME", 5*time.Second),
		Enabled:              envBool("RATE_LIMITER_ENABLED", false),
	}
}

func envString(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, def)
		return def
	}
	return parsed
}

func envBool(key string, def bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %t\n", key, def)
		return def
	}
	return parsed
}

func envDuration(key string, def time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %s\n", key, def)
		return def
	}
	return parsed
}

// NewLogger creates a new zap logger with color.
func NewLogger(level zapcore.Level) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	return zap.New(core).Sugar()
}

func loadConfig() config {
	return config{
		addr:        envString("ADDR", ":8080"),
		env:         envString("ENV", "development"),
		apiURL:      envString("EXTERNAL_URL", "localhost:8080"),
		frontendURL: envString("FRONTEND_URL", "http://localhost:3000"),
		siteURL:     strings.TrimRight(envString("SITE_URL", defaultSiteURL), "/"),
		backend: backendConfig{
			url:         envString("BACKEND_API_URL", "http://localhost:3081/api"),
			staticToken: os.Getenv("BACKEND_API_TOKEN"),
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				userID: envString("AUTH_TOKEN_USER_ID", "storefront"),
				exp:    envDuration("AUTH_TOKEN_EXP", time.Hour),
				iss:    "storefront",
			},
			categoryTTL: envDuration("CATEGORY_CACHE_TTL", catalog.DefaultCacheTTL),
		},
		storage: storage.Config{
			WishlistDriver: envString("WISHLIST_DRIVER", storage.DriverMemory),
			WishlistTTL:    envDuration("WISHLIST_TTL", 0),
			DB: storage.DBConfig{
				Addr:         os.Getenv("DB_ADDR"),
				MaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 10),
				MaxIdleTime:  envString("DB_MAX_IDLE_TIME", "15m"),
			},
			Redis: storage.RedisConfig{
				Addr:     os.Getenv("REDIS_ADDR"),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       envInt("REDIS_DB", 0),
			},
		},
		wishlist: wishlistConfig{
			namespace:    envString("WISHLIST_NAMESPACE", wishlist.Namespace),
			recipient:    envString("WHATSAPP_NUMBER", wishlist.DefaultRecipient),
			linkTemplate: envString("EXPORT_LINK_TEMPLATE", wishlist.DefaultLinkTemplate),
			cookieSecure: envBool("COOKIE_SECURE", false),
			idleTimeout:  envDuration("WISHLIST_IDLE_TIMEOUT", wishlist.DefaultIdleTimeout),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

func tokenSource(cfg backendConfig) auth.TokenSource {
	if cfg.token.secret != "" {
		return auth.NewJWTTokenSource(cfg.token.secret, cfg.token.userID, cfg.token.iss, cfg.token.exp)
	}
	return auth.StaticToken(cfg.staticToken)
}

var version = "1.0.0"

//	@title			Storefront API
//	@description	Catalog views and quote list for the Compugeeks storefront.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath	/v1

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using the process environment")
	}

	cfg := loadConfig()

	level := zapcore.InfoLevel
	if cfg.env == "development" {
		level = zapcore.DebugLevel
	}
	logger := NewLogger(level)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := storage.NewContainer(ctx, cfg.storage)
	cancel()
	if err != nil {
		logger.Fatal(err)
	}
	defer container.Close()
	logger.Infow("storage ready", "wishlistDriver", cfg.storage.WishlistDriver, "categoryCache", container.Cache != nil)

	var src catalog.Source = catalog.NewClient(cfg.backend.url, tokenSource(cfg.backend), logger)
	if container.Cache != nil {
		src = catalog.NewCachedSource(src, container.Cache, cfg.backend.categoryTTL, logger)
	}

	exporter := wishlist.NewExporter(cfg.wishlist.linkTemplate, cfg.wishlist.recipient)
	wishlists := wishlist.NewRegistry(cfg.wishlist.namespace, container.Wishlist, exporter, logger)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:      cfg,
		logger:      logger,
		catalog:     catalog.NewService(src, logger),
		wishlists:   wishlists,
		rateLimiter: rateLimiter,
		banners:     defaultBanners,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("wishlists", expvar.Func(func() any {
		return wishlists.Len()
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	if pool := container.Pool(); pool != nil {
		expvar.Publish("database", expvar.Func(func() any {
			return pool.Stat().TotalConns()
		}))
	}

	go app.sweep(rateLimiter)

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
