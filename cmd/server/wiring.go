package main

import (
	"context"
	"errors"

	appreceipt "github.com/welth/backend/internal/application/receipt"
	"github.com/welth/backend/internal/infrastructure/ai"
	"github.com/welth/backend/internal/infrastructure/config"
	"github.com/welth/backend/internal/infrastructure/email"
	"github.com/welth/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

var errScanningDisabled = errors.New("receipt scanning is not configured")

// disabledModel answers every scan with an error when no API key is set
type disabledModel struct{}

func (disabledModel) Generate(context.Context, string, []byte, string) (string, error) {
	return "", errScanningDisabled
}

func newReceiptModel(ctx context.Context, cfg config.AIConfig, log *zap.Logger) appreceipt.Model {
	if cfg.APIKey == "" {
		log.Warn("AI API key not set, receipt scanning disabled")
		return disabledModel{}
	}
	model, err := ai.NewGeminiModel(ctx, cfg.APIKey, cfg.Model,
		ai.WithTimeout(cfg.Timeout),
		ai.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create receipt model", zap.Error(err))
	}
	return model
}

// newReceiptStore returns nil when storage is disabled, so scans skip archiving.
func newReceiptStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) appreceipt.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := storage.NewS3ObjectStorage(&cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.PresignExpiry),
	)
	if err != nil {
		log.Fatal("Failed to create receipt storage", zap.Error(err))
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Warn("Receipt bucket check failed", zap.String("bucket", store.Bucket()), zap.Error(err))
	}
	return store
}

func newMailer(cfg config.EmailConfig, log *zap.Logger) email.Mailer {
	if !cfg.Enabled {
		log.Info("Email disabled, budget alerts are logged only")
		return email.NewLogMailer(log)
	}
	mailer, err := email.NewResendMailer(cfg.APIKey, nil,
		email.WithFrom(cfg.From),
		email.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create mailer", zap.Error(err))
	}
	return mailer
}
