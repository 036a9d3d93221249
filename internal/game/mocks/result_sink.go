package mocks

import (
	"context"

	"ultimatum-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock ResultSink
type ResultSink struct {
	mock.Mock
}

func (m *ResultSink) Append(ctx context.Context, row models.Row) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}
