package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bankrec-dev/bankrec/internal/config"
	"github.com/bankrec-dev/bankrec/internal/matcher"
	"github.com/bankrec-dev/bankrec/internal/service"
	"github.com/bankrec-dev/bankrec/internal/storage"
)

// openStore opens the ledger database from config and runs pending migrations.
func openStore(ctx context.Context) (service.LedgerStore, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}

	return store, nil
}

// matcherConfig builds the matcher thresholds from config, starting from the
// defaults so unset keys keep their documented values.
func matcherConfig() matcher.Config {
	cfg := matcher.DefaultConfig()
	cfg.AmountTolerance = decimal.NewFromFloat(viper.GetFloat64("matching.amount_tolerance"))
	cfg.ExactThreshold = viper.GetFloat64("matching.exact_threshold")
	cfg.SameDayThreshold = viper.GetFloat64("matching.same_day_threshold")
	cfg.DriftThreshold = viper.GetFloat64("matching.drift_threshold")
	cfg.MaxDriftDays = viper.GetInt("matching.max_drift_days")
	cfg.DriftPenalty = viper.GetFloat64("matching.drift_penalty")
	return cfg
}
