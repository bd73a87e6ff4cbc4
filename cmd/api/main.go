package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/evroute/internal/adapters/http"
	"github.com/samirrijal/evroute/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/evroute/internal/adapters/nats"
	"github.com/samirrijal/evroute/internal/adapters/nominatim"
	"github.com/samirrijal/evroute/internal/adapters/openchargemap"
	"github.com/samirrijal/evroute/internal/adapters/osrm"
	"github.com/samirrijal/evroute/internal/adapters/upstream"
	"github.com/samirrijal/evroute/internal/adapters/valkey"
	"github.com/samirrijal/evroute/internal/core/ports"
	"github.com/samirrijal/evroute/internal/core/usecases"
	"github.com/samirrijal/evroute/internal/pkg/config"
	"github.com/samirrijal/evroute/internal/pkg/logging"
	"github.com/samirrijal/evroute/internal/pkg/telemetry"
)

func main() {
	// Local secrets such as the OpenChargeMap key; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load("evroute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	var (
		cache  ports.CacheService
		pinger http.Pinger
	)
	if cfg.Cache.Enabled {
		vc, err := valkey.New(cfg.Cache.ValkeyAddr)
		switch {
		case err == nil:
			defer vc.Close()
			cache, pinger = vc, vc
		case cfg.Cache.MemoryFallback:
			slog.Warn("valkey unavailable, using in-memory cache", "error", err)
			mc := memcache.New(time.Minute)
			cache, pinger = mc, mc
		default:
			slog.Warn("valkey unavailable, caching disabled", "error", err)
		}
	}

	// NATS
	var (
		events    ports.EventPublisher
		publisher *natsadapter.Publisher
	)
	if cfg.NATS.Enabled {
		publisher, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	// Upstreams
	up := cfg.Upstream
	if up.Stations.APIKey == "" {
		slog.Warn("no OpenChargeMap API key configured; set EVROUTE_UPSTREAM_STATIONS_API_KEY")
	}
	routing := osrm.NewClient(up.Routing.BaseURL, upstream.Options{
		Timeout:   up.Routing.Timeout,
		UserAgent: up.Routing.UserAgent,
	})
	stations := openchargemap.NewClient(up.Stations.BaseURL, openchargemap.Query{
		APIKey:       up.Stations.APIKey,
		Distance:     up.Stations.Distance,
		DistanceUnit: up.Stations.DistanceUnit,
		MaxResults:   up.Stations.MaxResults,
	}, upstream.Options{
		Timeout:   up.Stations.Timeout,
		UserAgent: up.Stations.UserAgent,
	})
	geocoder := nominatim.NewClient(up.Geocoding.BaseURL, upstream.Options{
		Timeout:   up.Geocoding.Timeout,
		UserAgent: up.Geocoding.UserAgent,
	})

	// Use cases
	deps := &http.Dependencies{
		Routes:   usecases.NewRouteService(routing, events),
		Stations: usecases.NewStationService(stations, cache, events, cfg.Cache.StationsTTL),
		Geocode:  usecases.NewGeocodeService(geocoder, cache, events, cfg.Cache.GeocodeTTL),
		Cache:    pinger,
	}
	if publisher != nil {
		deps.NATS = publisher.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "EV Route Gateway",
		ErrorHandler: http.ErrorHandler,
	})
	// Access logging is structured and lives in the router chain.
	app.Use(recover.New())

	http.SetupRoutes(app, deps, http.RouterConfig{
		AllowOrigins:   cfg.CORS.AllowOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
