package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/utils"
)

// UserService holds the superuser operations on accounts
type UserService interface {
	ListUsers(ctx context.Context, filters model.UserFilters) ([]model.User, int, error)
	GetUser(ctx context.Context, id int) (*model.User, error)
	UpdateUser(ctx context.Context, id int, req model.AdminUpdateUserRequest) (*model.User, error)
	CreateUser(ctx context.Context, req model.AdminCreateUserRequest) (*model.User, error)
	ChangePassword(ctx context.Context, id int, req model.AdminChangePasswordRequest) error
	SetActive(ctx context.Context, callerID, id int, isActive, force bool) (pending bool, err error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListUsers(ctx context.Context, filters model.UserFilters) ([]model.User, int, error) {
	if filters.Search != nil && strings.TrimSpace(*filters.Search) == "" {
		filters.Search = nil
	}
	return s.repo.List(ctx, filters)
}

func (s *userService) GetUser(ctx context.Context, id int) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) checkPhoneFree(ctx context.Context, phone string) error {
	if err := validatePhone("phone_number", phone); err != nil {
		return err
	}
	other, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if other != nil {
		return newValidationError("phone_number", msgPhoneTaken)
	}
	return nil
}

func (s *userService) UpdateUser(ctx context.Context, id int, req model.AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != user.PhoneNumber {
		if err := s.checkPhoneFree(ctx, *req.PhoneNumber); err != nil {
			return nil, err
		}
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
		user.IsStaff = *req.IsSuperuser
	}
	if req.IsAuthor != nil {
		user.IsAuthor = *req.IsAuthor
	}
	if req.IsSeller != nil {
		user.IsSeller = *req.IsSeller
	}

	if user.Profile == nil {
		user.Profile = &model.Profile{}
	}
	if req.FirstName != nil {
		user.Profile.FirstName = trimmed(req.FirstName)
	}
	if req.LastName != nil {
		user.Profile.LastName = trimmed(req.LastName)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("phone_number", msgPhoneTaken)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, req model.AdminCreateUserRequest) (*model.User, error) {
	if err := s.checkPhoneFree(ctx, req.PhoneNumber); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, newValidationError("password", msgRequired)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      req.IsSuperuser,
		IsSuperuser:  req.IsSuperuser,
		IsAuthor:     req.IsAuthor,
		IsSeller:     req.IsSeller,
		Profile:      &model.Profile{},
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if name := strings.TrimSpace(req.FirstName); name != "" {
		user.Profile.FirstName = &name
	}
	if name := strings.TrimSpace(req.LastName); name != "" {
		user.Profile.LastName = &name
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("phone_number", msgPhoneTaken)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int, req model.AdminChangePasswordRequest) error {
	if req.NewPassword != req.RepeatPassword {
		return newValidationError("repeat_password", msgPasswordsMismatch)
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, user.ID, hash)
}

// SetActive changes is_active. Deactivating the caller's own account needs force;
// without it nothing is written and pending is true.
func (s *userService) SetActive(ctx context.Context, callerID, id int, isActive, force bool) (bool, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	if user.ID == callerID && !isActive && !force {
		return true, nil
	}
	user.IsActive = isActive
	if err := s.repo.Update(ctx, user); err != nil {
		return false, err
	}
	return false, nil
}
