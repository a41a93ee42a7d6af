package main

import (
	"context"
	"fmt"

	"lifelink/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the database schema",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: func(c *cli.Context) error {
				return withMigrations(c, func(ctx context.Context, m migrator) error {
					applied, err := db.MigrateUp(ctx, m.pool, m.schema, m.logger)
					if err != nil {
						return err
					}
					m.logger.WithField("applied", applied).Info("migrations applied")
					return nil
				})
			},
		},
		{
			Name:  "down",
			Usage: "Roll back the most recently applied migration",
			Action: func(c *cli.Context) error {
				return withMigrations(c, func(ctx context.Context, m migrator) error {
					return db.RollbackLast(ctx, m.pool, m.schema, m.logger)
				})
			},
		},
	},
}

type migrator struct {
	pool   *pgxpool.Pool
	schema string
	logger *logrus.Logger
}

func withMigrations(c *cli.Context, fn func(ctx context.Context, m migrator) error) error {
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

	return fn(ctx, migrator{pool: pool, schema: cfg.DatabaseSchema, logger: logger})
}
