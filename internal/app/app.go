package app

import (
	"errors"

	"go-leave/internal/audit"
	"go-leave/internal/balance"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/connection"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by this service, in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&balance.LeaveBalance{},
		&balance.Entry{},
		&leave.Leave{},
		&audit.Log{},
		&kafka.OutboxEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// BuildApp connects the stores, migrates when enabled and mounts every module
// on router. The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg *Config) (func(), error) {
	logger := zap.L().Named("app")

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	db, err := connection.ConnectGORMWithRetry(cfg.Postgres(), cfg.ConnectRetries)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.ConnectRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	}

	if err := registerModules(router, cfg, db, rdb, zap.L()); err != nil {
		cleanup()
		return nil, err
	}
	return cleanup, nil
}
