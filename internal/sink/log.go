package sink

import (
	"context"
	"sort"

	"ultimatum-server/internal/models"

	"go.uber.org/zap"
)

// LogSink пишет строки результатов в лог. Используется, когда внешние хранилища не настроены.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("ResultLog")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Append(_ context.Context, row models.Row) error {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, row[k]))
	}
	s.logger.Info("Result row", fields...)
	return nil
}
