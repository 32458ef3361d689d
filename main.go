package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fluffyriot/profilescope/internal/analysis"
	"github.com/fluffyriot/profilescope/internal/api/handlers"
	"github.com/fluffyriot/profilescope/internal/config"
	"github.com/fluffyriot/profilescope/internal/fetcher"
	"github.com/fluffyriot/profilescope/internal/graph"
	"github.com/fluffyriot/profilescope/internal/ingest"
	"github.com/fluffyriot/profilescope/internal/render"
	"github.com/fluffyriot/profilescope/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	dbQueries, err := config.LoadDatabase(cfg)
	if err != nil {
		log.Fatalln(err)
	}

	var renderer *render.Client
	if !cfg.DisableRender {
		renderer = render.NewClient(cfg.FetchTimeout)
		defer renderer.Close()
	}

	httpClient := fetcher.NewClient(cfg.FetchTimeout, renderer)

	fetchers := map[string]worker.Fetcher{
		fetcher.PlatformTwitter:   fetcher.NewTwitterFetcher(httpClient),
		fetcher.PlatformInstagram: fetcher.NewInstagramFetcher(httpClient),
		fetcher.PlatformTikTok:    fetcher.NewTikTokFetcher(httpClient),
		fetcher.PlatformGitHub:    fetcher.NewGitHubFetcher(httpClient),
		fetcher.PlatformMastodon:  fetcher.NewMastodonFetcher(httpClient),
	}

	normalizer := ingest.NewNormalizer(dbQueries)
	engine := analysis.NewEngine(dbQueries, nil)
	builder := graph.NewBuilder(dbQueries)

	w := worker.New(dbQueries, normalizer, engine, fetchers, cfg.WorkerCount, cfg.PollInterval)
	w.Start()
	defer w.Stop()

	h := handlers.NewHandler(dbQueries, cfg, w, engine, builder)

	r := gin.Default()

	r.GET("/health", h.HealthCheckHandler)

	api := r.Group("/api")
	{
		api.POST("/profiles", h.SubmitFetchHandler)
		api.GET("/jobs/:id", h.GetJobHandler)
		api.GET("/profiles/:platform/:handle", h.GetProfileHandler)
		api.DELETE("/profiles/:platform/:handle", h.DeleteProfileHandler)
		api.GET("/profiles/:platform/:handle/analysis", h.GetAnalysisHandler)
		api.GET("/profiles/:platform/:handle/graph", h.GetGraphHandler)
		api.GET("/profiles/:platform/:handle/activity", h.GetActivityHandler)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalln(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
