package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
	"github.com/yourusername/quizmaker-api/pkg/auth"
)

// Моки переиспользуются из quiz_service_test.go

func newTestAuthService(t *testing.T, userRepo *MockUserRepoForQuizService, emailService EmailService) *AuthService {
	t.Helper()

	jwtService, err := auth.NewJWTService("test-secret", 1)
	require.NoError(t, err)

	svc, err := NewAuthService(userRepo, jwtService, emailService, "http://localhost:5173/reset-password")
	require.NoError(t, err)
	return svc
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hashed)
}

// ============================================================================
// Register
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "aliya@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "aliya@example.com" && u.Name == "Алия" && u.Role == "user"
	})).Return(nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act: email нормализуется до нижнего регистра
	user, err := svc.Register(RegisterInput{Name: "  Алия  ", Email: " Aliya@Example.com ", Password: "secret123"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "aliya@example.com", user.Email)
	assert.Equal(t, "Алия", user.Name)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "aliya@example.com").Return(&entity.User{ID: 1, Email: "aliya@example.com"}, nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act & Assert
	_, err := svc.Register(RegisterInput{Name: "Алия", Email: "aliya@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(t, new(MockUserRepoForQuizService), &NoopEmailService{})

	_, err := svc.Register(RegisterInput{Name: "", Email: "a@b.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Register(RegisterInput{Name: "Алия", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Register(RegisterInput{Name: "Алия", Email: "a@b.com", Password: "12345"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_Register_SendsWelcomeEmail(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "aliya@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.Anything).Return(nil)

	sent := make(chan string, 1)
	emailService := new(MockEmailService)
	emailService.On("SendWelcome", mock.Anything, "aliya@example.com", "Алия").
		Run(func(args mock.Arguments) { sent <- args.String(1) }).
		Return(nil)

	svc := newTestAuthService(t, userRepo, emailService)

	// Act
	_, err := svc.Register(RegisterInput{Name: "Алия", Email: "aliya@example.com", Password: "secret123"})
	require.NoError(t, err)

	// Assert: письмо уходит асинхронно
	select {
	case email := <-sent:
		assert.Equal(t, "aliya@example.com", email)
	case <-time.After(2 * time.Second):
		t.Fatal("Приветственное письмо не было отправлено")
	}
}

// ============================================================================
// Login
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	// Arrange
	user := &entity.User{ID: 1, Email: "aliya@example.com", Role: "user", Password: hashPassword(t, "secret123")}
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "aliya@example.com").Return(user, nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act
	token, loggedIn, err := svc.Login("Aliya@Example.com", "secret123")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, uint(1), loggedIn.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	// Arrange
	user := &entity.User{ID: 1, Email: "aliya@example.com", Password: hashPassword(t, "secret123")}
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "aliya@example.com").Return(user, nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act & Assert
	_, _, err := svc.Login("aliya@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", "aliya@example.com").Return(
		&entity.User{ID: 1, Email: "aliya@example.com", Password: hashPassword(t, "secret123")}, nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act
	_, _, errUnknown := svc.Login("ghost@example.com", "secret123")
	_, _, errWrongPass := svc.Login("aliya@example.com", "wrong")

	// Assert: текст ошибки не раскрывает, существует ли email
	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.ErrorIs(t, errUnknown, apperrors.ErrUnauthorized)
}

// ============================================================================
// Сброс пароля
// ============================================================================

func TestAuthService_ForgotPassword_IssuesTokenAndSendsLink(t *testing.T) {
	// Arrange
	user := &entity.User{ID: 1, Email: "aliya@example.com"}
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByEmail", "aliya@example.com").Return(user, nil)
	userRepo.On("Update", mock.MatchedBy(func(u *entity.User) bool {
		return u.ResetPasswordToken != "" && u.ResetPasswordExpiresAt != nil &&
			time.Until(*u.ResetPasswordExpiresAt) > 50*time.Minute
	})).Return(nil)

	var sentLink string
	emailService := new(MockEmailService)
	emailService.On("SendPasswordReset", mock.Anything, "aliya@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sentLink = args.String(2) }).
		Return(nil)

	svc := newTestAuthService(t, userRepo, emailService)

	// Act
	err := svc.ForgotPassword("aliya@example.com")

	// Assert: ссылка содержит выданный токен
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sentLink, "http://localhost:5173/reset-password?token="))
	assert.Contains(t, sentLink, user.ResetPasswordToken)
	userRepo.AssertExpectations(t)
}

func TestAuthService_ResetPassword_InvalidToken(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByResetToken", "bogus").Return(nil, apperrors.ErrNotFound)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act & Assert
	err := svc.ResetPassword("bogus", "newsecret")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	// Arrange
	expired := time.Now().Add(-time.Minute)
	user := &entity.User{ID: 1, ResetPasswordToken: "token-1", ResetPasswordExpiresAt: &expired}
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByResetToken", "token-1").Return(user, nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act & Assert
	err := svc.ResetPassword("token-1", "newsecret")
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
	userRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	// Arrange
	expiresAt := time.Now().Add(30 * time.Minute)
	user := &entity.User{ID: 1, ResetPasswordToken: "token-1", ResetPasswordExpiresAt: &expiresAt}
	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByResetToken", "token-1").Return(user, nil)
	userRepo.On("Update", mock.MatchedBy(func(u *entity.User) bool {
		// Токен одноразовый: после сброса очищается
		return u.Password == "newsecret" && u.ResetPasswordToken == "" && u.ResetPasswordExpiresAt == nil
	})).Return(nil)

	svc := newTestAuthService(t, userRepo, &NoopEmailService{})

	// Act & Assert
	err := svc.ResetPassword("token-1", "newsecret")
	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}
