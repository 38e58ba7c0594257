// Package service contains the business logic behind the GraphQL operations.
package service

import (
	"context"
	"fmt"

	"lireddit/internal/auth"
	"lireddit/internal/models"
	"lireddit/internal/repository"
	"lireddit/internal/session"
	"lireddit/internal/validation"
)

// Login field error messages.
const (
	MsgUnknownUsername   = "Username doesn't exist!"
	MsgIncorrectPassword = "incorrect password"
	MsgNotAuthorized     = "not authorized"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   auth.Hasher
}

func NewUserService(userRepo repository.UserRepository, hasher auth.Hasher) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher}
}

// Me returns the session user, or nil when there is none or it no longer exists.
func (s *UserService) Me(ctx context.Context, sessionUserID *uint) (*models.User, error) {
	if sessionUserID == nil {
		return nil, nil
	}
	return s.User(ctx, *sessionUserID)
}

// Register validates and stores a new user. On success the returned mutation
// logs the caller in.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.UserResponse, session.Mutation, error) {
	if errs := validation.ValidateCredentials(username, password); len(errs) > 0 {
		return &models.UserResponse{Errors: errs}, session.Mutation{}, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, session.Mutation{}, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Password: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if fe, ok := validation.FieldErrorFromStorage(err); ok {
			return &models.UserResponse{Errors: []models.FieldError{*fe}}, session.Mutation{}, nil
		}
		return nil, session.Mutation{}, fmt.Errorf("register %q: %w", username, err)
	}

	return &models.UserResponse{User: user}, session.SetUserID(user.ID), nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*models.UserResponse, session.Mutation, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, session.Mutation{}, err
	}
	if user == nil {
		return models.NewFieldErrorResponse("username", MsgUnknownUsername), session.Mutation{}, nil
	}

	ok, err := s.hasher.Verify(user.Password, password)
	if err != nil {
		return nil, session.Mutation{}, models.NewInternalError(err)
	}
	if !ok {
		return models.NewFieldErrorResponse("password", MsgIncorrectPassword), session.Mutation{}, nil
	}

	return &models.UserResponse{User: user}, session.SetUserID(user.ID), nil
}

// UpdateUser replaces the password of user id. An empty password leaves the
// stored hash unchanged. Only the user themself may update their account.
func (s *UserService) UpdateUser(ctx context.Context, sessionUserID *uint, id uint, password string) (*models.User, error) {
	user, err := s.User(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if !owns(sessionUserID, id) {
		return nil, models.NewForbiddenError(MsgNotAuthorized)
	}
	if password == "" {
		return user, nil
	}
	if fe := validation.ValidatePassword(password); fe != nil {
		return nil, models.NewValidationError(fe.Message)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes user id and reports whether it existed. Deleting one's
// own account also clears the session.
func (s *UserService) DeleteUser(ctx context.Context, sessionUserID *uint, id uint) (bool, session.Mutation, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return false, session.Mutation{}, err
	}
	if user == nil {
		return false, session.Mutation{}, nil
	}
	if !owns(sessionUserID, id) {
		return false, session.Mutation{}, models.NewForbiddenError(MsgNotAuthorized)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return false, session.Mutation{}, err
	}
	return true, session.Clear(), nil
}

func (s *UserService) Users(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// User returns nil, nil for an unknown id.
func (s *UserService) User(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func owns(sessionUserID *uint, id uint) bool {
	return sessionUserID != nil && *sessionUserID == id
}
