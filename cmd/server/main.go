package main

import (
	"wowtoc/internal/app/server"
	"wowtoc/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)
	server.Run(cfg)
}
