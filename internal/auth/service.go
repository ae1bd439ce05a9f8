package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shwepos/internal/database/models"
	"shwepos/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrOwnerNotFound      = errors.New("owner not found")
)

type RegisterRequest struct {
	Username string  `json:"username" binding:"required,min=3"`
	Password string  `json:"password" binding:"required,min=6"`
	FullName string  `json:"full_name" binding:"required"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Owner     *models.Owner `json:"owner"`
}

type Service struct {
	db     *gorm.DB
	tokens *utils.TokenIssuer
	log    *zap.Logger
}

func NewService(db *gorm.DB, tokens *utils.TokenIssuer, log *zap.Logger) *Service {
	return &Service{db: db, tokens: tokens, log: log}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Owner, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Owner{}).
		Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	owner := models.Owner{
		Username: req.Username,
		Password: string(hashed),
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&owner).Error; err != nil {
		return nil, err
	}

	s.log.Info("owner registered",
		zap.Int64("owner_id", owner.ID),
		zap.String("username", owner.Username))

	owner.Password = ""
	return &owner, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	var owner models.Owner
	err := s.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&owner).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.GenerateToken(owner.ID, owner.Username)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.Owner{}).
		Where("id = ?", owner.ID).
		Update("last_login", now).Error; err != nil {
		s.log.Warn("failed to record last login", zap.Error(err))
	}
	owner.LastLogin = &now

	owner.Password = ""
	return &Session{Token: token, ExpiresAt: exp, Owner: &owner}, nil
}

func (s *Service) GetOwner(ctx context.Context, ownerID int64) (*models.Owner, error) {
	var owner models.Owner
	if err := s.db.WithContext(ctx).First(&owner, ownerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	owner.Password = ""
	return &owner, nil
}
