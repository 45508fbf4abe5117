package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/SankaiAI/data-learning-lab/app"
	"github.com/SankaiAI/data-learning-lab/internal/config"
	"github.com/SankaiAI/data-learning-lab/internal/logging"
	"github.com/SankaiAI/data-learning-lab/ui"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewFromEnv()
	svc := app.NewAnalysisService(logger)
	server := ui.NewServer(cfg, svc, logger)

	if err := server.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
