package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/pkg/logger"
)

// Journal writes progress and failure lines to both the process log and the
// logs table. A failed table write never propagates; it is only logged.
type Journal struct {
	repo *Repository
}

// NewJournal creates new journal; a nil repository logs to zap only
func NewJournal(repo *Repository) *Journal {
	return &Journal{repo: repo}
}

// Record appends one audit line for the given subsystem
func (j *Journal) Record(ctx context.Context, source, text string) {
	logger.Info(text, zap.String("source", source))

	if j == nil || j.repo == nil {
		return
	}

	if _, err := j.repo.Add(ctx, source, text); err != nil {
		logger.Warn("failed to persist audit entry",
			zap.String("source", source),
			zap.Error(err),
		)
	}
}

// Recordf is Record with fmt.Sprintf formatting
func (j *Journal) Recordf(ctx context.Context, source, format string, args ...any) {
	j.Record(ctx, source, fmt.Sprintf(format, args...))
}
