package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"trendradar/internal/config"
	"trendradar/internal/handler"
	"trendradar/internal/pipeline"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	loader, err := pipeline.LoaderFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("error creating topic loader: %v", err)
	}

	topicHandler := handler.NewTopicHandler(loader, cfg.Location)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/topics", topicHandler.GetTopics)
	r.GET("/topics/appendix", topicHandler.GetAppendix)
	r.GET("/health", topicHandler.GetHealth)

	err = r.Run(cfg.APIAddr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
