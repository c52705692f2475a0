package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	Username    string
	DisplayName string
	Password    string
	Role        Role
}

type Service interface {
	// Login verifies credentials and issues an opaque session token.
	Login(ctx context.Context, username, password string) (Session, User, error)
	// Resolve maps a bearer token to its user, rejecting expired sessions.
	Resolve(ctx context.Context, token string) (User, error)
	Logout(ctx context.Context, token string) error
	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeactivateUser(ctx context.Context, id string) error
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrInvalidUser        = errors.New("invalid_user")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUsernameTaken      = errors.New("username_taken")
)
