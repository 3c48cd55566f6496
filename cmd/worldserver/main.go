package main

import (
	"context"

	"github.com/pixil98/go-log"
	"github.com/pixil98/go-service"

	"github.com/emberwild/worldserver/cmd/worldserver/command"
)

func main() {
	logger := log.NewLogger()

	app, err := service.NewApp(&command.Config{}, command.BuildWorkers)
	if err != nil {
		logger.WithError(err).Fatal("creating application")
	}

	err = app.Run(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("running application")
	}

	logger.Info("exiting")
}
