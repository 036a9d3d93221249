package sink

import (
	"context"
	"errors"
	"time"

	"ultimatum-server/internal/game"
	"ultimatum-server/internal/models"

	"go.uber.org/zap"
)

// Named описывает хранилище с именем для логов и метрик.
type Named interface {
	game.ResultSink
	Name() string
}

// Multi рассылает каждую строку во все хранилища по порядку.
// Ошибка одного хранилища не мешает записи в остальные.
type Multi struct {
	sinks   []Named
	timeout time.Duration
	logger  *zap.Logger
}

// NewMulti создает рассылку. timeout ограничивает каждую запись отдельно; 0, без ограничения.
func NewMulti(timeout time.Duration, logger *zap.Logger, sinks ...Named) *Multi {
	return &Multi{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger.Named("MultiSink"),
	}
}

// Names возвращает имена подключенных хранилищ.
func (m *Multi) Names() []string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Append возвращает errors.Join из *models.SinkError по каждому упавшему хранилищу.
// Строка не должна изменяться хранилищами.
func (m *Multi) Append(ctx context.Context, row models.Row) error {
	var errs []error
	for _, s := range m.sinks {
		if err := m.appendOne(ctx, s, row); err != nil {
			m.logger.Warn("Result sink failed",
				zap.String("sink", s.Name()),
				zap.Any("kind", row["kind"]),
				zap.Error(err),
			)
			errs = append(errs, &models.SinkError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) appendOne(ctx context.Context, s Named, row models.Row) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return s.Append(ctx, row)
}

// FailedSinks возвращает имена хранилищ из ошибки Append (в том числе объединенной).
func FailedSinks(err error) []string {
	if err == nil {
		return nil
	}
	var names []string
	var sinkErr *models.SinkError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			names = append(names, FailedSinks(e)...)
		}
		return names
	}
	if errors.As(err, &sinkErr) {
		if inner := FailedSinks(sinkErr.Err); len(inner) > 0 {
			return inner
		}
		return []string{sinkErr.Sink}
	}
	return nil
}
