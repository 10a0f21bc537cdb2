package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	"github.com/yourusername/quizmaker-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
	"github.com/yourusername/quizmaker-api/pkg/auth"
)

// resetTokenTTL — срок действия токена сброса пароля
const resetTokenTTL = time.Hour

// AuthService предоставляет методы для работы с аутентификацией и пользователями
type AuthService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	emailService EmailService
	resetURLBase string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
	resetURLBase string,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}

	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		emailService: emailService,
		resetURLBase: resetURLBase,
	}, nil
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// normalizeEmail приводит email к нижнему регистру без пробелов
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register регистрирует нового пользователя. Пароль хешируется
// в хуке BeforeSave сущности User.
func (s *AuthService) Register(input RegisterInput) (*entity.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", apperrors.ErrValidation)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	// Проверяем уникальность email до вставки: дружелюбнее, чем ошибка БД
	if _, err := s.userRepo.GetByEmail(input.Email); err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrValidation)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d email=%s", user.ID, user.Email)

	// Приветственное письмо не блокирует регистрацию
	if s.emailService != nil {
		go func(email, name string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.emailService.SendWelcome(ctx, email, name); err != nil {
				log.Printf("[AuthService] Не удалось отправить приветственное письмо %s: %v", email, err)
			}
		}(user.Email, user.Name)
	}

	return user, nil
}

// Login проверяет учетные данные и возвращает JWT-токен.
// Несуществующий email и неверный пароль дают одинаковую ошибку.
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return "", nil, err
	}

	if !user.CheckPassword(password) {
		return "", nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Пользователь ID=%d вошел в систему", user.ID)
	return token, user, nil
}

// ForgotPassword генерирует токен сброса пароля и отправляет ссылку на email
func (s *AuthService) ForgotPassword(email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = token
	user.ResetPasswordExpiresAt = &expiresAt

	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", s.resetURLBase, token)
	if s.emailService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailService.SendPasswordReset(ctx, user.Email, resetLink); err != nil {
			log.Printf("[AuthService] Не удалось отправить письмо сброса пароля %s: %v", user.Email, err)
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	log.Printf("[AuthService] Выдан токен сброса пароля для пользователя ID=%d", user.ID)
	return nil
}

// ResetPassword устанавливает новый пароль по действующему токену сброса.
// Использованный токен очищается: повторный сброс по нему невозможен.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: reset token is required", apperrors.ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByResetToken(token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: invalid reset token", apperrors.ErrValidation)
		}
		return err
	}

	if !user.IsResetTokenValid(token) {
		return fmt.Errorf("%w: reset token has expired", apperrors.ErrExpiredToken)
	}

	user.Password = newPassword
	user.ResetPasswordToken = ""
	user.ResetPasswordExpiresAt = nil

	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	log.Printf("[AuthService] Пароль пользователя ID=%d сброшен", user.ID)
	return nil
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}
