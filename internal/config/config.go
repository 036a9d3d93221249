package config

import (
	"fmt"
	"time"

	"ultimatum-server/internal/models"
	"ultimatum-server/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса эксперимента.
// Внешние хранилища включаются только при наличии их настроек.
type Config struct {
	// Настройки сервера
	Port               string   `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding        string   `envconfig:"LOG_ENCODING" default:"json"`
	ServiceName        string   `envconfig:"SERVICE_NAME" default:"ultimatum-server"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	SecretsDir         string   `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// Параметры эксперимента
	TotalAmount     int `envconfig:"TOTAL_AMOUNT" default:"100000"`
	ProposerTrials  int `envconfig:"PROPOSER_TRIALS" default:"12"`
	ResponderTrials int `envconfig:"RESPONDER_TRIALS" default:"18"`
	OfferStep       int `envconfig:"OFFER_STEP" default:"5000"`

	// Хранение сессий
	SessionCacheSize int           `envconfig:"SESSION_CACHE_SIZE" default:"1024"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`

	// Хранилища результатов
	SinkTimeout time.Duration `envconfig:"SINK_TIMEOUT" default:"5s"`
	ResultsDir  string        `envconfig:"RESULTS_DIR"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER"`
	DBName        string        `envconfig:"DB_NAME"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"5m"`

	// Настройки RabbitMQ
	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	ResultsQueueName string `envconfig:"RESULTS_QUEUE_NAME" default:"ultimatum_results"`

	// Настройки Google Sheets
	GSheetSpreadsheetID string `envconfig:"GSHEET_SPREADSHEET_ID"`
	GSheetRange         string `envconfig:"GSHEET_RANGE" default:"A1"`

	// Секретные поля БЕЗ envconfig тега
	DBPassword        string `ignored:"true"`
	RedisPassword     string `ignored:"true"`
	GSheetCredentials string `ignored:"true"`
}

// Experiment возвращает параметры сессии.
func (c *Config) Experiment() models.ExperimentConfig {
	return models.ExperimentConfig{
		TotalAmount:    c.TotalAmount,
		ProposerCount:  c.ProposerTrials,
		ResponderCount: c.ResponderTrials,
		OfferStep:      c.OfferStep,
	}
}

func (c *Config) PostgresEnabled() bool { return c.DBHost != "" }
func (c *Config) RabbitMQEnabled() bool { return c.RabbitMQURL != "" }
func (c *Config) SheetsEnabled() bool   { return c.GSheetSpreadsheetID != "" }
func (c *Config) RedisEnabled() bool    { return c.RedisAddr != "" }

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MaskedDSN: DSN без пароля, для логов.
func (c *Config) MaskedDSN() string {
	return fmt.Sprintf("postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.loadSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadSecrets() error {
	var err error
	if c.PostgresEnabled() {
		// Пароль БД обязателен, если PostgreSQL включен
		if c.DBPassword, err = utils.ReadSecretFrom(c.SecretsDir, "db_password"); err != nil {
			return err
		}
	}
	if c.RedisEnabled() {
		if c.RedisPassword, err = utils.ReadOptionalSecret(c.SecretsDir, "redis_password"); err != nil {
			return err
		}
	}
	if c.SheetsEnabled() {
		// Без файла используются учетные данные Google по умолчанию
		if c.GSheetCredentials, err = utils.ReadOptionalSecret(c.SecretsDir, "gsheet_credentials"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.ProposerTrials+c.ResponderTrials != models.TrialsPerSession {
		return fmt.Errorf("PROPOSER_TRIALS + RESPONDER_TRIALS must equal %d, got %d + %d",
			models.TrialsPerSession, c.ProposerTrials, c.ResponderTrials)
	}
	if c.PostgresEnabled() && (c.DBUser == "" || c.DBName == "") {
		return fmt.Errorf("DB_USER and DB_NAME are required when DB_HOST is set")
	}
	if c.SessionCacheSize <= 0 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive, got %d", c.SessionCacheSize)
	}
	if c.SinkTimeout <= 0 {
		return fmt.Errorf("SINK_TIMEOUT must be positive, got %s", c.SinkTimeout)
	}
	return nil
}
