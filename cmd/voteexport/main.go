package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/vncsmyrnk/publicvoting/internal/adapters/csvexport"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository/sqlstore"
	"github.com/vncsmyrnk/publicvoting/internal/config"
	"github.com/vncsmyrnk/publicvoting/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	eventSlug := flag.String("event", os.Getenv("EXPORT_EVENT"), "event slug to export")
	extended := flag.Bool("extended", false, "include submission type, track and title")
	out := flag.String("out", "", "output file (defaults to <event>-public-votes.csv, - for stdout)")
	flag.Parse()

	if *eventSlug == "" {
		log.Fatal("an event slug is required (-event or EXPORT_EVENT)")
	}
	slog.SetDefault(cfg.NewLogger())

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	exportService := services.NewExportService(sqlstore.NewEventRepository(db), sqlstore.NewVoteRepository(db))

	slog.Info("starting vote export", "event", *eventSlug)

	rows, err := exportService.Export(ctx, *eventSlug)
	if err != nil {
		log.Fatalf("Error exporting votes: %v", err)
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		path := *out
		if path == "" {
			path = csvexport.Filename(*eventSlug)
		}
		f, err := os.Create(path)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}

	if err := csvexport.Write(w, rows, *extended); err != nil {
		log.Fatalf("Error writing export: %v", err)
	}

	slog.Info("vote export completed", "event", *eventSlug, "votes", len(rows))
}
