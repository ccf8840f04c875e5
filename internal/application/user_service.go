package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// UserService відповідає за реєстр користувачів (оператори та рятувальники)
type UserService struct {
	userRepo ports.UserRepository
	logger   *zap.Logger
}

// NewUserService створює новий екземпляр UserService
func NewUserService(userRepo ports.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create реєструє нового користувача; повертає ErrDuplicateID при колізії ідентифікаторів
func (s *UserService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if existing, err := s.userRepo.FindByID(ctx, user.ID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrDuplicateID, user.ID)
	}

	if user.Role == "" {
		user.Role = domain.RolePublic
	}
	user.CreatedAt = time.Now()

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Update оновлює профіль користувача
func (s *UserService) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	existing, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if user.DisplayName != "" {
		existing.DisplayName = user.DisplayName
	}
	if user.Role != "" {
		existing.Role = user.Role
	}

	if err := s.userRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// GetByID отримує користувача за ідентифікатором
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// List отримує всіх користувачів
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

// Rescuers повертає користувачів з роллю рятувальника
func (s *UserService) Rescuers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var rescuers []*domain.User
	for _, u := range users {
		if u.Role == domain.RoleRescuer {
			rescuers = append(rescuers, u)
		}
	}
	return rescuers, nil
}
