package main

import (
	"context"
	"log"

	"github.com/awakra/to-do-list/internal/app"
	"github.com/awakra/to-do-list/internal/config"
	"github.com/awakra/to-do-list/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	ctx := context.Background()
	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		_ = application.Close()
		log.Fatalf("инициализация: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Сервер остановлен с ошибкой", err)
		log.Fatal(err)
	}
	logger.Info("Сервер остановлен")
}
