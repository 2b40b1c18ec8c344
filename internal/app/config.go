package app

import (
	"errors"
	"time"

	"go-leave/internal/balance"
	"go-leave/internal/shared/connection"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the api, worker and consumer.
type Config struct {
	Port         string        `envconfig:"PORT" default:"3000"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`

	DBHost             string        `envconfig:"DB_HOST" default:"localhost"`
	DBUser             string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword         string        `envconfig:"DB_PASSWORD"`
	DBName             string        `envconfig:"DB_NAME" default:"go_leave"`
	DBPort             string        `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode          string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns     int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBStatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"5s"`
	AutoMigrate        bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	ConnectRetries     int           `envconfig:"CONNECT_RETRIES" default:"5"`

	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	KafkaBroker        string        `envconfig:"KAFKA_BROKER"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`
	ConsumerGroupID    string        `envconfig:"KAFKA_CONSUMER_GROUP" default:"go-leave-user-lifecycle"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	LeaveMaxDays      int `envconfig:"LEAVE_MAX_DAYS" default:"30"`
	LeaveTeamCapacity int `envconfig:"LEAVE_TEAM_CAPACITY" default:"3"`
	CasualAllowance   int `envconfig:"LEAVE_CASUAL_DAYS" default:"12"`
	SickAllowance     int `envconfig:"LEAVE_SICK_DAYS" default:"10"`
	AnnualAllowance   int `envconfig:"LEAVE_ANNUAL_DAYS" default:"15"`

	ResetSchedule    string `envconfig:"BALANCE_RESET_SCHEDULE" default:"0 0 1 1 *"`
	ResetConcurrency int    `envconfig:"BALANCE_RESET_CONCURRENCY" default:"4"`
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.LeaveMaxDays < 1 {
		return nil, errors.New("LEAVE_MAX_DAYS must be positive")
	}
	if cfg.LeaveTeamCapacity < 1 {
		return nil, errors.New("LEAVE_TEAM_CAPACITY must be positive")
	}
	return &cfg, nil
}

func (c *Config) Postgres() connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:             c.DBHost,
		User:             c.DBUser,
		Password:         c.DBPassword,
		DBName:           c.DBName,
		Port:             c.DBPort,
		SSLMode:          c.DBSSLMode,
		MaxOpenConns:     c.DBMaxOpenConns,
		StatementTimeout: c.DBStatementTimeout,
	}
}

func (c *Config) Allowances() balance.Allowances {
	return balance.Allowances{
		balance.TypeCasual: c.CasualAllowance,
		balance.TypeSick:   c.SickAllowance,
		balance.TypeAnnual: c.AnnualAllowance,
	}
}
