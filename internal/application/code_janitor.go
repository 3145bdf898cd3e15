package application

import (
	"context"
	"time"

	"github.com/ipede/auth-hub/internal/domain"
	"go.uber.org/zap"
)

// CodeJanitor sweeps expired authorization codes out of storage. Expired
// codes are already unusable, the sweep only keeps the table small.
type CodeJanitor struct {
	codeRepo domain.AuthorizationCodeRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewCodeJanitor(codeRepo domain.AuthorizationCodeRepository, interval time.Duration, logger *zap.Logger) *CodeJanitor {
	return &CodeJanitor{
		codeRepo: codeRepo,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on every tick until the context is cancelled
func (j *CodeJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := j.codeRepo.DeleteExpired(ctx, time.Now())
			if err != nil {
				j.logger.Error("Failed to sweep expired authorization codes", zap.Error(err))
				continue
			}
			if deleted > 0 {
				j.logger.Info("Swept expired authorization codes", zap.Int64("deleted", deleted))
			}
		}
	}
}
