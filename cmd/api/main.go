package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bionews/db"
	"bionews/internal/config"
	"bionews/internal/handler"
	"bionews/internal/pipeline"
	"bionews/internal/repository"
)

func main() {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := db.Connect(cfg.Database.URL); err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	if err := db.ConnectRedis(cfg.Redis.URL); err != nil {
		// The cache is an optimization; handlers fall through to Postgres.
		slog.Warn("redis unavailable, serving without cache", "error", err)
	}
	defer db.CloseRedis()

	articleRepo := repository.NewArticleRepository(db.DB)
	quoteRepo := repository.NewQuoteRepository(db.DB)
	prefsRepo := repository.NewPreferencesRepository(db.DB)

	cursors := pipeline.NewCursors()
	ingestor := newIngestor(cfg, articleRepo, cursors)
	market := newMarket(cfg, quoteRepo, cursors)

	seedIfEmpty(articleRepo, ingestor)

	scheduler := pipeline.NewScheduler()
	registerTask(scheduler, cfg.Scheduler.NewsSpec, "news", func(ctx context.Context) error {
		_, err := ingestor.RunCycle(ctx)
		if err == nil {
			db.CacheInvalidate()
		}
		return err
	})
	registerTask(scheduler, cfg.Scheduler.MarketSpec, "market", func(ctx context.Context) error {
		_, err := market.RunCycle(ctx)
		if err == nil {
			db.CacheInvalidate()
		}
		return err
	})
	scheduler.Start()
	defer scheduler.Stop()

	articleHandler := handler.NewArticleHandler(articleRepo)
	marketHandler := handler.NewMarketHandler(quoteRepo)
	prefsHandler := handler.NewPreferencesHandler(prefsRepo)
	ingestHandler := handler.NewIngestHandler(ingestor, market, cursors, articleRepo)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	api := r.Group("/api")
	api.GET("/", articleHandler.GetRoot)
	api.GET("/health", articleHandler.GetHealth)
	api.GET("/categories", articleHandler.GetCategories)
	api.GET("/articles", articleHandler.GetArticles)
	api.GET("/articles/:id", articleHandler.GetArticle)
	api.POST("/articles/refresh", ingestHandler.RefreshArticles)
	api.POST("/articles/backfill", ingestHandler.BackfillAnnotations)
	api.POST("/search", articleHandler.Search)
	api.GET("/market", marketHandler.GetMarket)
	api.POST("/market/refresh", ingestHandler.RefreshMarket)
	api.GET("/status", ingestHandler.GetStatus)
	api.POST("/preferences", prefsHandler.SavePreferences)
	api.GET("/preferences/:user_id", prefsHandler.GetPreferences)

	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func registerTask(s *pipeline.Scheduler, spec, name string, task pipeline.Task) {
	if err := s.Register(spec, name, task); err != nil {
		log.Fatalf("error registering %s schedule %q: %v", name, spec, err)
	}
}

// seedIfEmpty runs one ingestion cycle on a fresh database so the API has
// content to serve immediately.
func seedIfEmpty(repo *repository.ArticleRepository, ingestor *pipeline.Ingestor) {
	count, err := repo.CountAll(context.Background())
	if err != nil {
		slog.Error("error counting articles at startup", "error", err)
		return
	}
	if count > 0 {
		return
	}

	slog.Info("empty database, running initial ingestion cycle")
	if _, err := ingestor.RunCycle(context.Background()); err != nil {
		slog.Error("initial ingestion cycle failed", "error", err)
	}
}
