//go:build integration

package sink_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ultimatum-server/internal/database"
	"ultimatum-server/internal/models"
	"ultimatum-server/internal/sink"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const resultsQueue = "experiment_results_test"

type SinkIntegrationSuite struct {
	suite.Suite
	ctx          context.Context
	pgContainer  *postgres.PostgresContainer
	rmqContainer *rabbitmq.RabbitMQContainer
	pool         *pgxpool.Pool
	rabbitConn   *amqp.Connection
	logger       *zap.Logger
}

func (s *SinkIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	dsn, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.ApplyMigrations(dsn, s.logger))

	s.pool, err = database.Connect(s.ctx, database.Config{DSN: dsn, MaxConns: 4}, s.logger)
	require.NoError(s.T(), err)

	s.rmqContainer, err = rabbitmq.Run(s.ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(wait.ForLog("Server startup complete")),
	)
	require.NoError(s.T(), err, "Failed to start rabbitmq container")
	amqpURL, err := s.rmqContainer.AmqpURL(s.ctx)
	require.NoError(s.T(), err)
	s.rabbitConn, err = amqp.Dial(amqpURL)
	require.NoError(s.T(), err)
}

func (s *SinkIntegrationSuite) TearDownSuite() {
	if s.rabbitConn != nil {
		_ = s.rabbitConn.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.rmqContainer != nil {
		_ = s.rmqContainer.Terminate(s.ctx)
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *SinkIntegrationSuite) TestPgSinkStoresRows() {
	sessionID := uuid.New().String()
	pg := sink.NewPgSink(s.pool, s.logger)

	row := proposerRow()
	row["session_id"] = sessionID
	s.Require().NoError(pg.Append(s.ctx, row))

	summary := models.TraitSummary{ProposerTrials: 1}.Row()
	summary["session_id"] = sessionID
	summary["participant_id"] = "kim0000"
	s.Require().NoError(pg.Append(s.ctx, summary))

	rows, err := s.pool.Query(s.ctx,
		`SELECT kind, trial_number, payload FROM experiment_results WHERE session_id = $1 ORDER BY id`, sessionID)
	s.Require().NoError(err)
	defer rows.Close()

	var kinds []string
	var trialNumbers []*int
	for rows.Next() {
		var (
			kind    string
			trial   *int
			payload []byte
		)
		s.Require().NoError(rows.Scan(&kind, &trial, &payload))
		kinds = append(kinds, kind)
		trialNumbers = append(trialNumbers, trial)

		var decoded map[string]any
		s.Require().NoError(json.Unmarshal(payload, &decoded))
		s.Equal(sessionID, decoded["session_id"])
	}
	s.Require().NoError(rows.Err())
	s.Equal([]string{models.RowKindTrial, models.RowKindSummary}, kinds)
	s.Require().Len(trialNumbers, 2)
	s.Require().NotNil(trialNumbers[0])
	s.Equal(3, *trialNumbers[0])
	s.Nil(trialNumbers[1])
}

func (s *SinkIntegrationSuite) TestRabbitMQSinkPublishes() {
	rmq, ch, err := sink.NewRabbitMQSink(s.rabbitConn, resultsQueue, s.logger)
	s.Require().NoError(err)
	defer ch.Close()

	s.Require().NoError(rmq.Append(s.ctx, proposerRow()))

	var msg amqp.Delivery
	s.Require().Eventually(func() bool {
		var ok bool
		msg, ok, err = ch.Get(resultsQueue, true)
		return err == nil && ok
	}, 10*time.Second, 100*time.Millisecond)

	var decoded map[string]any
	s.Require().NoError(json.Unmarshal(msg.Body, &decoded))
	s.Equal("kim0000", decoded["participant_id"])
	s.Equal("application/json", msg.ContentType)
}

func TestSinkIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode.")
	}
	suite.Run(t, new(SinkIntegrationSuite))
}
