package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

// TargetSources lists where the target table comes from. Store rows are read
// first and file entries override them. The fallback pair is the file's
// default block when present, else EnvDefault.
type TargetSources struct {
	Store      repository.SLATargetRepository
	FilePath   string
	EnvDefault *sla.Hours
	Logger     *zap.Logger
}

// LoadTargetTable assembles the immutable lookup used by the engine.
func LoadTargetTable(ctx context.Context, src TargetSources) (*sla.TargetTable, error) {
	logger := src.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var targets []domain.SLATarget
	if src.Store != nil {
		rows, err := src.Store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("load sla targets: %w", err)
		}
		targets = append(targets, rows...)
	}

	fallback := src.EnvDefault
	if src.FilePath != "" {
		file, err := config.LoadTargetsFile(src.FilePath)
		if err != nil {
			return nil, err
		}
		targets = append(targets, file.Targets...)
		if h, ok := file.DefaultHours(); ok {
			fallback = &h
		}
	}

	table, err := sla.NewTargetTable(targets, fallback)
	if err != nil {
		return nil, err
	}
	logger.Info("sla targets loaded", zap.Int("entries", len(table.Targets())), zap.Bool("has_default", fallback != nil))
	return table, nil
}

// SeedTargets writes the file's entries to the store.
func SeedTargets(ctx context.Context, store repository.SLATargetRepository, path string) (int, error) {
	file, err := config.LoadTargetsFile(path)
	if err != nil {
		return 0, err
	}
	if err := store.Upsert(ctx, file.Targets); err != nil {
		return 0, fmt.Errorf("seed sla targets: %w", err)
	}
	return len(file.Targets), nil
}
