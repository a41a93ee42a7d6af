package main

import (
	"fmt"

	"lifelink/internal/db"
	"lifelink/internal/matching"
	"lifelink/internal/store"
	"lifelink/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var matchCommand = &cli.Command{
	Name:  "match",
	Usage: "Print the pending alerts a donor would see",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "user",
			Aliases:  []string{"u"},
			Usage:    "Donor user id",
			Required: true,
		},
		&cli.Float64Flag{
			Name:    "radius",
			Aliases: []string{"r"},
			Usage:   "Search radius in km (0 uses DEFAULT_RADIUS_KM)",
		},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		repos := store.New(pool)

		user, err := repos.User(ctx, c.String("user"))
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		matcher := matching.NewService(repos, repos, cfg.DefaultRadiusKm, cfg.MaxRadiusKm)
		alerts, err := matcher.NearbyAlerts(ctx, types.Actor{UserID: user.ID, Role: user.Role}, c.Float64("radius"))
		if err != nil {
			return err
		}

		fmt.Printf("%d matching alert(s) for %s\n", len(alerts), user.DisplayName())
		for _, alert := range alerts {
			pp.Println(alert)
		}

		return nil
	},
}
