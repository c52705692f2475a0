package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	authdomain "github.com/neoledsrlbolivia/neopos/internal/auth/domain"
	"github.com/neoledsrlbolivia/neopos/internal/auth/password"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionTTL = 12 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type ServiceImpl struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) authdomain.Service {
	return &ServiceImpl{
		db:    p.DB,
		log:   p.Log.Named("auth"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *ServiceImpl) Login(ctx context.Context, username, plaintext string) (authdomain.Session, authdomain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || plaintext == "" {
		return authdomain.Session{}, authdomain.User{}, authdomain.ErrInvalidCredentials
	}

	var user authdomain.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return authdomain.Session{}, authdomain.User{}, authdomain.ErrInvalidCredentials
		}
		return authdomain.Session{}, authdomain.User{}, err
	}
	if !user.Active || !password.Verify(plaintext, user.PasswordHash) {
		return authdomain.Session{}, authdomain.User{}, authdomain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	session := authdomain.Session{
		ID:        s.genID.Generate(),
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return authdomain.Session{}, authdomain.User{}, err
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return session, user, nil
}

func (s *ServiceImpl) Resolve(ctx context.Context, token string) (authdomain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return authdomain.User{}, authdomain.ErrInvalidSession
	}

	var session authdomain.Session
	if err := s.db.WithContext(ctx).First(&session, "token = ?", token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return authdomain.User{}, authdomain.ErrInvalidSession
		}
		return authdomain.User{}, err
	}
	if s.clock.Now().After(session.ExpiresAt) {
		return authdomain.User{}, authdomain.ErrInvalidSession
	}

	var user authdomain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", session.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return authdomain.User{}, authdomain.ErrInvalidSession
		}
		return authdomain.User{}, err
	}
	if !user.Active {
		return authdomain.User{}, authdomain.ErrInvalidSession
	}
	return user, nil
}

func (s *ServiceImpl) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return authdomain.ErrInvalidSession
	}
	return s.db.WithContext(ctx).
		Delete(&authdomain.Session{}, "token = ?", token).Error
}

func (s *ServiceImpl) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (authdomain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || len(req.Password) < 4 {
		return authdomain.User{}, authdomain.ErrInvalidUser
	}
	switch req.Role {
	case authdomain.RoleAdmin, authdomain.RoleAssistant:
	default:
		return authdomain.User{}, authdomain.ErrInvalidUser
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&authdomain.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return authdomain.User{}, err
	}
	if count > 0 {
		return authdomain.User{}, authdomain.ErrUsernameTaken
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return authdomain.User{}, err
	}

	now := s.clock.Now()
	user := authdomain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hashed,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return authdomain.User{}, err
	}
	return user, nil
}

func (s *ServiceImpl) ListUsers(ctx context.Context) ([]authdomain.User, error) {
	var users []authdomain.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *ServiceImpl) DeactivateUser(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return authdomain.ErrInvalidUser
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&authdomain.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{"active": false, "updated_at": s.clock.Now()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return authdomain.ErrUserNotFound
		}
		return tx.Delete(&authdomain.Session{}, "user_id = ?", userID).Error
	})
}

func parseID(value string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
