package main

import (
	"os"

	"github.com/od-kfujiwara/tosho-kanri-system/config"
	"github.com/od-kfujiwara/tosho-kanri-system/handler"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/jsonlog"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
	"github.com/od-kfujiwara/tosho-kanri-system/service"
)

func main() {
	logger := jsonlog.New(os.Stderr, jsonlog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	logger = jsonlog.New(os.Stderr, jsonlog.ParseLevel(cfg.Logging.Level))

	db, err := csvdb.Open(cfg)
	if err != nil {
		logger.PrintFatal(err, map[string]string{"dir": cfg.Data.Dir})
	}

	repo := repository.New(db)
	svc := service.New(cfg, logger, repo)
	h := handler.New(cfg, logger, svc)

	os.Exit(h.Execute(os.Args[1:]))
}
