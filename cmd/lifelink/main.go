package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "lifelink",
		Usage: "Emergency blood and organ donor matching",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			matchCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
