package sink

import (
	"context"
	"fmt"

	"ultimatum-server/internal/models"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Порядок колонок таблицы результатов. Первые три колонки общие для всех строк.
var (
	trialColumns = []string{
		"session_id", "participant_id", "kind",
		"trial", "role", "offer", "decision", "emotion",
		"proposer_reward", "responder_reward", "rt",
		"aiType", "frameType", "riskAversion", "strategy",
	}
	summaryColumns = []string{
		"session_id", "participant_id", "kind",
		"exploitRatio", "exploreStd", "riskAverseRatio",
		"punishmentRate", "lossAversion", "ignoreBenefit",
		"proposer_trials", "responder_trials",
	}
)

// SheetsConfig содержит настройки Google Sheets.
type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON []byte
}

// SheetsSink дописывает строки в Google-таблицу через spreadsheets.values.append.
type SheetsSink struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	writeRange    string
	logger        *zap.Logger
}

// NewSheetsSink создает клиента Sheets API. Дополнительные opts передаются клиенту как есть.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*SheetsSink, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets sink: spreadsheet id is empty")
	}
	if cfg.Range == "" {
		cfg.Range = "A1"
	}
	if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets sink: не удалось создать клиента Sheets API: %w", err)
	}
	logger.Info("Sheets sink initialized",
		zap.String("spreadsheet_id", cfg.SpreadsheetID),
		zap.String("range", cfg.Range),
	)
	return &SheetsSink{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.Range,
		logger:        logger.Named("SheetsSink"),
	}, nil
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Append(ctx context.Context, row models.Row) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{RowCells(row)}}
	_, err := s.values.Append(s.spreadsheetID, s.writeRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	s.logger.Debug("Row appended", zap.Any("kind", row["kind"]), zap.Any("trial", row["trial"]))
	return nil
}

// RowCells раскладывает строку по колонкам таблицы. Строка сводки дополняется
// пустыми ячейками до ширины строки раунда.
func RowCells(row models.Row) []interface{} {
	columns := trialColumns
	if row["kind"] == models.RowKindSummary {
		columns = summaryColumns
	}

	cells := make([]interface{}, 0, len(trialColumns))
	for _, col := range columns {
		var v any
		if col == "decision" {
			v = decision(row)
		} else {
			v = row[col]
		}
		if v == nil {
			v = ""
		}
		cells = append(cells, v)
	}
	for len(cells) < len(trialColumns) {
		cells = append(cells, "")
	}
	return cells
}

// decision: accepted для раунда предлагающего, response для раунда отвечающего.
func decision(row models.Row) any {
	if v, ok := row["accepted"]; ok {
		return v
	}
	return row["response"]
}
