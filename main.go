package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"nota-scan/pkg/auth"
	"nota-scan/pkg/config"
	"nota-scan/pkg/handlers"
	"nota-scan/pkg/models"
	"nota-scan/pkg/services/ledger"
	"nota-scan/pkg/services/ocr"
	"nota-scan/pkg/services/report"
	"nota-scan/pkg/services/scan"
	"nota-scan/pkg/services/storage"
)

func main() {
	logger := config.GetLogger()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config: " + err.Error())
	}

	db, err := config.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database: " + err.Error())
	}
	if err := models.MigrateTable(db); err != nil {
		logger.Fatal("migrate: " + err.Error())
	}

	ctx := context.Background()

	ocrClient, err := ocr.NewClient(ctx, cfg.VisionAPIKey)
	if err != nil {
		logger.Fatal("ocr: " + err.Error())
	}

	gateway, err := storage.NewGateway(ctx, cfg.GCSBucket, logger)
	if err != nil {
		logger.Fatal("storage: " + err.Error())
	}
	defer gateway.Close()

	scanner := scan.NewOrchestrator(ocrClient, gateway, logger)
	reconciler := ledger.NewReconciler(ledger.NewGormStore(db), gateway, logger)
	reports := report.NewGenerator(db)
	authManager := auth.NewManager(cfg.SecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, db)

	r := gin.Default()
	handlers.New(db, logger, authManager, scanner, reconciler, reports, gateway, cfg.SignedURLTTL).Register(r)

	logger.Info("listening on :" + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server: " + err.Error())
	}
}
