package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ultimatum-server/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const insertResultQuery = `
	INSERT INTO experiment_results (session_id, participant_id, kind, trial_number, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// DBTX: минимальный интерфейс для *pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgSink сохраняет каждую строку результатов в таблицу experiment_results.
type PgSink struct {
	db     DBTX
	now    func() time.Time
	logger *zap.Logger
}

func NewPgSink(db DBTX, logger *zap.Logger) *PgSink {
	return &PgSink{
		db:     db,
		now:    time.Now,
		logger: logger.Named("PgSink"),
	}
}

func (s *PgSink) Name() string { return "postgres" }

func (s *PgSink) Append(ctx context.Context, row models.Row) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("ошибка сериализации строки результатов: %w", err)
	}

	var trialNumber *int
	if n, ok := row["trial"].(int); ok {
		trialNumber = &n
	}

	_, err = s.db.Exec(ctx, insertResultQuery,
		stringField(row, "session_id"),
		stringField(row, "participant_id"),
		stringField(row, "kind"),
		trialNumber,
		payload,
		s.now().UTC(),
	)
	if err != nil {
		s.logger.Error("Failed to insert result row",
			zap.Any("session_id", row["session_id"]),
			zap.Any("kind", row["kind"]),
			zap.Error(err),
		)
		return fmt.Errorf("error inserting result row: %w", err)
	}
	return nil
}

func stringField(row models.Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}
