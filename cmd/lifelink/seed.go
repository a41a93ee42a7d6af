package main

import (
	"fmt"

	"lifelink/internal/db"
	"lifelink/internal/lifecycle"
	"lifelink/internal/seed"
	"lifelink/internal/store"
	"lifelink/internal/validate"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo users, donor profiles and alerts",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded alerts before seeding",
		},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("connected to database")

		repos := store.New(pool)
		alerts := lifecycle.NewService(repos, validate.New(), logger)

		if err := seed.Run(ctx, repos, alerts, seed.Options{Reset: c.Bool("reset")}, logger); err != nil {
			return err
		}

		logger.Info("seed complete")
		return nil
	},
}
