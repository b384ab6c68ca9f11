package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository"
	"github.com/vncsmyrnk/publicvoting/internal/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	driver := flag.String("driver", cfg.DatabaseDriver, "database driver (postgres or sqlite)")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.DatabaseDriver = *driver
	slog.SetDefault(cfg.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	migrator, err := repository.MigratorFor(cfg.DatabaseDriver)
	if err != nil {
		log.Fatal(err)
	}

	db, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	switch command := flag.Arg(0); command {
	case "up":
		err = migrator.Up(ctx, db)
	case "down":
		err = migrator.Down(ctx, db)
	case "status":
		err = migrator.Status(ctx, db)
	default:
		log.Fatalf("unknown command %q", command)
	}
	if err != nil {
		log.Fatal(err)
	}
}
