package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/internal/database"
	"whatsapp-cloud-go/internal/logger"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "Create or update the event journal tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from-sqlite",
				Usage: "copy journal rows from this SQLite file into the configured database",
			},
			&cli.BoolFlag{
				Name:  "sync-sequences",
				Usage: "move PostgreSQL id sequences past copied rows",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.LoadConfig()
	log, err := logger.New(cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("journal tables migrated")

	if src := c.String("from-sqlite"); src != "" {
		srcDB, err := database.Open(&config.Config{DBDriver: config.DriverSQLite, DBDSN: src})
		if err != nil {
			return err
		}
		counts, err := database.CopyJournal(srcDB, db)
		for table, n := range counts {
			log.Info().Str("table", table).Int("rows", n).Msg("copied")
		}
		if err != nil {
			return err
		}
	}

	if c.Bool("sync-sequences") {
		if err := database.SyncSequences(db); err != nil {
			return err
		}
		log.Info().Msg("sequences synced")
	}
	return nil
}
