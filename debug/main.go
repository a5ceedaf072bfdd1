package main

import (
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/config"
	"github.com/emrgen/content/internal/server"
)

func main() {
	logrus.SetLevel(logrus.DebugLevel)

	cfg := config.LoadConfig()
	cfg.Env = "dev"

	err := server.Start(cfg)
	if err != nil {
		logrus.Error(err)
	}
}
