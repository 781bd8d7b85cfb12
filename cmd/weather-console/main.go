package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mkarlsven/weather-console/internal/cache"
	"github.com/mkarlsven/weather-console/internal/config"
	"github.com/mkarlsven/weather-console/internal/controller"
	"github.com/mkarlsven/weather-console/internal/debounce"
	"github.com/mkarlsven/weather-console/internal/debug"
	"github.com/mkarlsven/weather-console/internal/geocode"
	"github.com/mkarlsven/weather-console/internal/observability"
	"github.com/mkarlsven/weather-console/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var suggestionCache cache.Cache
	var memcacheCloser *cache.Memcached
	switch cfg.SuggestionCacheBackend {
	case "memcached":
		mc, err := cache.NewMemcached(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		suggestionCache = mc
		logger.Info("suggestion cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		suggestionCache = cache.NewInMemory()
		logger.Info("suggestion cache backend: in_memory")
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.SuggestionRateRPS), cfg.SuggestionRateBurst)
	suggestions, err := geocode.NewClient(
		cfg.GeocodingAPIURL,
		cfg.SuggestionLimit,
		cfg.GeocodingAPITimeout,
		suggestionCache,
		cfg.SuggestionCacheTTL,
		limiter,
		logger,
	)
	if err != nil {
		logger.Fatal("geocoding client", zap.Error(err))
	}

	weatherClient, err := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	term := newTerminal(os.Stdout)
	ctrl := controller.New(suggestions, weatherClient, term, debounce.New(cfg.DebounceDelay), logger)
	if cfg.DefaultUnit == "imperial" {
		ctrl.Handle(controller.ToggleUnit{})
	}

	if cfg.DebugAddr != "" {
		var cachePing func() error
		if memcacheCloser != nil {
			cachePing = memcacheCloser.Ping
		}
		dbg := debug.New(cfg.DebugAddr, cachePing, logger)
		go func() {
			if err := dbg.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("debug server", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := dbg.Shutdown(shutdownCtx); err != nil {
				logger.Error("debug server shutdown", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term.runLoop(ctx, ctrl, os.Stdin)

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("session ended")
}
