package seed

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Store interface {
	UserStore
	ProfileStore
	AlertStore
}

type Options struct {
	Reset bool
}

// Run seeds users, then donor profiles, then alerts. Later steps depend on
// the rows written by earlier ones.
func Run(ctx context.Context, store Store, creator AlertCreator, opts Options, logger logrus.FieldLogger) error {
	users, err := SeedFakeUsers(ctx, store)
	if err != nil {
		return err
	}
	logger.WithField("count", users).Info("fake users seeded")

	profiles, err := SeedFakeProfiles(ctx, store)
	if err != nil {
		return err
	}
	logger.WithField("count", profiles).Info("fake donor profiles seeded")

	created, deleted, err := SeedFakeAlerts(ctx, store, creator, opts.Reset)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"created": created,
		"deleted": deleted,
	}).Info("fake alerts seeded")

	return nil
}
