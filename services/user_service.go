package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"solar-prediction-api/logger"
	"solar-prediction-api/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError carries per-field messages for a rejected registration.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}

type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (in RegisterInput) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "This field is required."
	} else if len(in.Name) > 255 {
		fields["name"] = "Ensure this field has no more than 255 characters."
	}
	if in.Email == "" {
		fields["email"] = "This field is required."
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields["email"] = "Enter a valid email address."
	}
	switch {
	case in.Password == "":
		fields["password"] = "This field is required."
	case len(in.Password) < MinPasswordLength:
		fields["password"] = fmt.Sprintf("Ensure this field has at least %d characters.", MinPasswordLength)
	case in.Password != in.ConfirmPassword:
		fields["non_field_errors"] = "Passwords don't match"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// UserService owns the users table, the single authoritative identity store.
// Every write also appends a UserSyncEvent in the same transaction.
type UserService struct {
	db   *gorm.DB
	auth *AuthService
	log  *logger.Logger
}

func NewUserService(db *gorm.DB, auth *AuthService, log *logger.Logger) *UserService {
	return &UserService{db: db, auth: auth, log: log.With("service", "users")}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		event, err := newSyncEvent(user)
		if err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil, &ValidationError{Fields: map[string]string{"email": "User with this email already exists"}}
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User registered", "user_id", user.ID)
	return &user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// SetActive toggles the account flag and queues a directory sync for the change.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		user.IsActive = active
		if err := tx.Model(&user).Update("is_active", active).Error; err != nil {
			return err
		}
		event, err := newSyncEvent(user)
		if err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
}

func newSyncEvent(u models.User) (models.UserSyncEvent, error) {
	payload, err := json.Marshal(u)
	if err != nil {
		return models.UserSyncEvent{}, fmt.Errorf("encode sync payload: %w", err)
	}
	return models.UserSyncEvent{
		UserID:    u.ID,
		Op:        models.SyncOpUpsert,
		Payload:   datatypes.JSON(payload),
		Status:    models.SyncStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}
