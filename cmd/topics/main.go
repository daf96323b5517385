package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"trendradar/internal/config"
	"trendradar/internal/pipeline"
	"trendradar/pkg/snapshot"

	"github.com/joho/godotenv"
)

func main() {
	dateFlag := flag.String("date", "", "snapshot date as YYYY-MM-DD (default: today)")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	date := time.Now().In(cfg.Location)
	if *dateFlag != "" {
		date, err = time.ParseInLocation(time.DateOnly, *dateFlag, cfg.Location)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *dateFlag, err)
		}
	}

	ctx := context.Background()

	loader, err := pipeline.LoaderFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("error creating topic loader: %v", err)
	}

	extraction, err := loader.Load(ctx, date)
	if errors.Is(err, snapshot.ErrNotFound) {
		slog.Warn("no snapshot for date", "key", snapshot.Key(date, cfg.Location))
		return
	}
	if err != nil {
		log.Fatalf("error loading topics: %v", err)
	}

	fmt.Printf("%s  mode=%s  topics=%d\n", snapshot.Key(date, cfg.Location), extraction.Mode, len(extraction.Topics))
	for i, t := range extraction.Topics {
		fmt.Printf("%3d. [%s] %s (%d)\n", i+1, t.Source, t.Title, t.Heat)
	}
}
