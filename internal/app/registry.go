package app

import (
	"go-leave/internal/audit"
	"go-leave/internal/balance"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/shared/lock"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *Config,
	db *gorm.DB,
	rdb redis.UniversalClient,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(db)
	balanceRepo := balance.NewRepository(db)
	leaveRepo := leave.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Infrastructure ---
	enforcer, err := rbac.NewEnforcer(rbac.DefaultPolicies(), rbac.DefaultInheritance())
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	locker := lock.NewRedisLocker(rdb, lock.DefaultOptions(), logger)
	recorder := audit.NewRecorder(auditRepo, logger)
	ledger := balance.NewLedger(db, balanceRepo, cfg.Allowances(), logger)

	leaveOpts := leave.Options{
		MaxLeaveDays: cfg.LeaveMaxDays,
		TeamCapacity: cfg.LeaveTeamCapacity,
	}

	// --- Services ---
	userService := user.NewService(userRepo, logger)
	balanceService := balance.NewService(ledger, locker, recorder, balance.Options{}, logger)
	auditService := audit.NewService(auditRepo, logger)
	leaveService := leave.NewService(db, leaveRepo, ledger, outboxRepo, locker, recorder, leaveOpts, logger)
	approvalWorkflow := leave.NewApprovalWorkflow(db, leaveRepo, userRepo, ledger, outboxRepo, locker, recorder, leaveOpts, logger)
	teamService := leave.NewTeamService(leaveRepo, userRepo, logger)

	// --- Handlers ---
	userHandler := user.NewHandler(userService, logger)
	balanceHandler := balance.NewHandler(balanceService, logger)
	auditHandler := audit.NewHandler(auditService, logger)
	leaveHandler := leave.NewHandler(leaveService, approvalWorkflow, teamService, logger)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	idempotency := middleware.Idempotency(rdb, cfg.IdempotencyTTL)

	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, auth, idempotency, logger)
		balance.RegisterRoutes(api, balanceHandler, rbacService, auth, idempotency, logger)
		user.RegisterRoutes(api, userHandler, rbacService, auth, logger)
		audit.RegisterRoutes(api, auditHandler, rbacService, auth, logger)
		rbac.RegisterRoutes(api, rbacHandler, rbacService, auth)
	}

	return nil
}
