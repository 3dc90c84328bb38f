package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkarpov/storefront/internal/domain/models"
	"github.com/mkarpov/storefront/internal/storage"
)

var ErrSelfAdminChange = errors.New("cannot modify own admin status")

// UserWithOrders — профиль пользователя вместе со сводками его заказов.
type UserWithOrders struct {
	ID      int64                  `json:"id"`
	Name    string                 `json:"name"`
	Email   string                 `json:"email"`
	IsAdmin bool                   `json:"isAdmin"`
	Orders  []*models.OrderSummary `json:"orders"`
}

// UserService определяет операции над пользователями для админки.
type UserService interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	GetWithOrders(ctx context.Context, userID int64) (*UserWithOrders, error)
	List(ctx context.Context) ([]*models.User, error)
	// SetAdmin меняет флаг админа; попытка изменить собственный флаг запрещена.
	SetAdmin(ctx context.Context, actorID, targetID int64, isAdmin bool) error
}

type userService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	orderRepo storage.OrderStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage, orderRepo storage.OrderStorage) UserService {
	return &userService{
		log:       log,
		userRepo:  userRepo,
		orderRepo: orderRepo,
	}
}

func (s *userService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	const op = "service.UserService.GetByID"

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	return user, nil
}

func (s *userService) GetWithOrders(ctx context.Context, userID int64) (*UserWithOrders, error) {
	const op = "service.UserService.GetWithOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	summaries, err := s.orderRepo.ListOrderSummariesByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to list order summaries", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list order summaries: %w", op, err)
	}

	return &UserWithOrders{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Orders:  summaries,
	}, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	const op = "service.UserService.List"

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}
	return users, nil
}

func (s *userService) SetAdmin(ctx context.Context, actorID, targetID int64, isAdmin bool) error {
	const op = "service.UserService.SetAdmin"
	logger := s.log.With(slog.String("op", op), slog.Int64("actorID", actorID), slog.Int64("targetID", targetID))

	if actorID == targetID {
		logger.Warn("self admin change attempt")
		return fmt.Errorf("%s: %w", op, ErrSelfAdminChange)
	}

	if err := s.userRepo.UpdateAdminStatus(ctx, targetID, isAdmin); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to update admin status", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update admin status: %w", op, err)
	}

	logger.Info("admin status updated", slog.Bool("isAdmin", isAdmin))
	return nil
}
