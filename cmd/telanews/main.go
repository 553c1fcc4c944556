package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telanews/internal/config"
	"telanews/internal/extract"
	"telanews/internal/gemini"
	"telanews/internal/logger"
	"telanews/internal/pipeline"
	"telanews/internal/poster"
	"telanews/internal/ratelimit"
	"telanews/internal/retry"
	"telanews/internal/rewrite"
	"telanews/internal/scratch"
	"telanews/internal/source"
	"telanews/internal/store"
	"telanews/internal/wiki"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	src, err := pickSource(cfg)
	if err != nil {
		log.Fatalf("source: %v", err)
	}

	gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.ClassifyModel, cfg.RewriteModel)
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	defer gc.Close()

	limiter := ratelimit.NewAILimiter(0, 0, cfg.MaxGeminiDaily)

	scratchStore := scratch.New()
	defer scratchStore.Close()

	var rewriter rewrite.Rewriter = rewrite.NewGeminiRewriter(gc)
	if cfg.RewriteAPIURL != "" {
		rewriter = &rewrite.Fallback{
			Primary:   rewriter,
			Secondary: rewrite.NewHTTPRewriter(cfg.RewriteAPIURL, cfg.RequestTimeout),
		}
	}

	fetcher := pipeline.NewFetcher(src, st, cfg.NewsBatchSize, logger.Stage("fetch"))
	filter := pipeline.NewFilter(st, extract.New(cfg.RequestTimeout), gc, pipeline.FilterOptions{
		Limiter:    limiter,
		Scratch:    scratchStore,
		ScratchTTL: time.Duration(cfg.ScratchTTLHours) * time.Hour,
		RecentMax:  cfg.RecentTitlesMax,
	}, logger.Stage("filter"))
	analyzer := pipeline.NewAnalyzer(st, rewriter,
		wiki.NewClient(cfg.RequestTimeout),
		poster.NewBuilder(cfg.PosterBaseURL),
		limiter, logger.Stage("analyze"))

	sup := pipeline.NewSupervisor([]*pipeline.Poller{
		pipeline.NewPoller(fetcher, pipeline.FetchPolicy(cfg.FetchInterval), logger.Stage("fetch")),
		pipeline.NewPoller(filter, pipeline.FilterPolicy(cfg.FilterInterval), logger.Stage("filter")),
		pipeline.NewPoller(analyzer, pipeline.AnalyzePolicy(cfg.AnalyzeSuccessInterval, cfg.AnalyzeRetryInterval), logger.Stage("analyze")),
	}, logger.Stage("supervisor"))

	if err := sup.StartAll(ctx); err != nil {
		log.Fatalf("start pipeline: %v", err)
	}

	if cfg.EnableHTTPControl {
		go startControlServer(ctx, cfg, sup)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := sup.StopAll(); err != nil {
		logger.Warn("stop pipeline", "error", err)
	}
	sup.Wait()
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == "postgres" {
		return store.NewPostgresStore(cfg.DatabaseURL)
	}
	retryCfg := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	return store.NewRESTStore(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey, cfg.RequestTimeout, retryCfg), nil
}

func pickSource(cfg *config.Config) (source.Source, error) {
	reg := source.NewRegistry()
	reg.Register(source.NewIMDb(cfg.IMDbGraphQLURL, cfg.RequestTimeout))

	if feeds, err := source.LoadFeeds(cfg.FeedsConfigPath); err == nil {
		reg.Register(source.NewRSS(feeds))
	} else if cfg.SourceName == "rss" {
		return nil, err
	} else {
		logger.Debug("feeds config unavailable", "path", cfg.FeedsConfigPath, "error", err)
	}

	return reg.Get(cfg.SourceName)
}
