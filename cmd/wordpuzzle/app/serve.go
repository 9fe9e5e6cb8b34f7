package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictfile"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/cache"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/handler"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/resilience"
)

type serveOptions struct {
	cfgPath    string
	dictionary string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves searches over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dictionary") {
				cfg.Dictionary.Path = opts.dictionary
			}
			level, format := cfg.Logging.Level, cfg.Logging.Format
			if cmd.Flags().Changed("log-level") {
				level = root.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				format = root.logFormat
			}
			logger.SetupWriter(cmd.ErrOrStderr(), level, format)
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&opts.dictionary, "dictionary", "d", defaultDictionary, "dictionary file (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)

	slog.Info("loading dictionary", "path", cfg.Dictionary.Path)
	start := time.Now()
	d, err := dictfile.Open(cfg.Dictionary.Path)
	if err != nil {
		return err
	}
	loadTime := time.Since(start)
	m.DictionaryWords.Set(float64(d.Len()))
	m.DictionaryLoadTime.Set(loadTime.Seconds())
	slog.Info("dictionary loaded",
		"words", d.Len(),
		"text_bytes", d.TextLen(),
		"elapsed", loadTime,
	)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	checker := health.NewChecker()
	checker.Register("dictionary", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d words", d.Len()),
		}
	})

	var queryCache *cache.QueryCache
	if cfg.Redis.Addr != "" {
		var redisClient *pkgredis.Client
		err := resilience.Retry(ctx, "redis connect", resilience.RetryConfig{MaxAttempts: 3, JitterFraction: 0.1}, func(ctx context.Context) error {
			var err error
			redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			store := cache.WithBreaker(redisClient, resilience.NewBreaker("redis", resilience.BreakerConfig{}))
			queryCache = cache.New(store, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.Optional(redisClient.Ping))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 0, 0, 0, m)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("search analytics enabled", "topic", cfg.Kafka.Topics.SearchEvents)
	}

	exec := executor.New(d, cfg.Dictionary.Workers, m)
	h := handler.New(exec, handler.DictionaryInfo{
		Path:      cfg.Dictionary.Path,
		Words:     d.Len(),
		TextBytes: d.TextLen(),
		LoadedAt:  time.Now().UTC(),
	}, queryCache, collector, m, handler.Options{
		DefaultMinLength: cfg.Search.DefaultMinLength,
		MaxLetters:       cfg.Search.MaxLetters,
	})

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Search.Timeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		go limiter.Run(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Recover(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("search service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("search service stopped")
	return nil
}
