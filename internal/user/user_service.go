package user

import (
	"context"
	"errors"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetMe(ctx context.Context, userID string) (UserResponse, error)
	TeamMembers(ctx context.Context, managerID string) ([]UserResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetMe(ctx context.Context, userID string) (UserResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			contextutil.GetLogger(ctx, s.logger).Error("failed to load user", zap.String("user_id", userID), zap.Error(err))
		}
		return UserResponse{}, apperror.FromRepository(err, usererrors.ErrUserNotFound)
	}
	return mapToResponse(*u), nil
}

// TeamMembers lists the caller's direct reports ordered by name.
func (s *service) TeamMembers(ctx context.Context, managerID string) ([]UserResponse, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	users, err := s.repo.FindReports(ctx, managerID)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to list team members", zap.String("manager_id", managerID), zap.Error(err))
		return nil, apperror.FromRepository(err, nil)
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}
