package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// ============================================================================
// Моки для QuizService
// ============================================================================

// MockQuizRepoForQuizService реализует repository.QuizRepository
type MockQuizRepoForQuizService struct {
	mock.Mock
}

func (m *MockQuizRepoForQuizService) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepoForQuizService) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForQuizService) GetByCode(code string) (*entity.Quiz, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForQuizService) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForQuizService) GetPublic() ([]entity.Quiz, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForQuizService) GetByCreator(creatorID uint) ([]entity.Quiz, error) {
	args := m.Called(creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForQuizService) SearchByName(name string) ([]entity.Quiz, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForQuizService) Update(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepoForQuizService) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuizRepoForQuizService) AddParticipant(quizID, userID uint) error {
	args := m.Called(quizID, userID)
	return args.Error(0)
}

// MockUserRepoForQuizService реализует repository.UserRepository
type MockUserRepoForQuizService struct {
	mock.Mock
}

func (m *MockUserRepoForQuizService) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepoForQuizService) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForQuizService) GetByIDs(ids []uint) ([]entity.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepoForQuizService) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForQuizService) GetByResetToken(token string) (*entity.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForQuizService) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcome(ctx context.Context, toEmail, name string) error {
	args := m.Called(ctx, toEmail, name)
	return args.Error(0)
}

func (m *MockEmailService) SendQuizAccessCode(ctx context.Context, toEmail, quizName, code string) error {
	args := m.Called(ctx, toEmail, quizName, code)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, toEmail, resetLink string) error {
	args := m.Called(ctx, toEmail, resetLink)
	return args.Error(0)
}

// ============================================================================
// Тесты
// ============================================================================

func TestQuizService_CreateQuiz_PublicUsesSentinelCode(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act
	quiz, err := svc.CreateQuiz(1, CreateQuizInput{Name: "Общие знания", Type: entity.QuizTypePublic})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.PublicQuizCode, quiz.Code, "Публичная викторина получает фиксированный код public")
	assert.Equal(t, entity.TimerModeOverall, quiz.TimerMode, "Режим таймера по умолчанию — overall")
	quizRepo.AssertExpectations(t)
}

func TestQuizService_CreateQuiz_PrivateGeneratesAccessCode(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	userRepo := new(MockUserRepoForQuizService)
	// Асинхронная отправка кода может успеть обратиться к репозиторию
	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Email: "creator@example.com"}, nil).Maybe()

	svc := NewQuizService(quizRepo, userRepo, &NoopEmailService{})

	// Act
	quiz, err := svc.CreateQuiz(1, CreateQuizInput{Name: "Закрытая викторина", Type: entity.QuizTypePrivate})

	// Assert
	require.NoError(t, err)
	assert.Len(t, quiz.Code, 6, "Код доступа должен состоять из 6 символов")
	assert.NotEqual(t, entity.PublicQuizCode, quiz.Code)
	for _, r := range quiz.Code {
		assert.True(t, strings.ContainsRune(accessCodeCharset, r), "Код должен содержать только заглавные буквы и цифры, получен символ %q", r)
	}
}

func TestQuizService_CreateQuiz_SendsAccessCodeEmail(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7, Email: "creator@example.com"}, nil)

	sent := make(chan string, 1)
	emailService := new(MockEmailService)
	emailService.On("SendQuizAccessCode", mock.Anything, "creator@example.com", "Закрытая", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent <- args.String(3) }).
		Return(nil)

	svc := NewQuizService(quizRepo, userRepo, emailService)

	// Act
	quiz, err := svc.CreateQuiz(7, CreateQuizInput{Name: "Закрытая", Type: entity.QuizTypePrivate})
	require.NoError(t, err)

	// Assert: письмо уходит асинхронно, ждем с таймаутом
	select {
	case code := <-sent:
		assert.Equal(t, quiz.Code, code, "Создателю отправляется именно сгенерированный код")
	case <-time.After(2 * time.Second):
		t.Fatal("Письмо с кодом доступа не было отправлено")
	}
}

func TestQuizService_CreateQuiz_ValidationErrors(t *testing.T) {
	svc := NewQuizService(new(MockQuizRepoForQuizService), new(MockUserRepoForQuizService), &NoopEmailService{})

	// Пустое имя
	_, err := svc.CreateQuiz(1, CreateQuizInput{Name: "   ", Type: entity.QuizTypePublic})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Неизвестный тип
	_, err = svc.CreateQuiz(1, CreateQuizInput{Name: "Quiz", Type: "hidden"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Отрицательная длительность таймера
	_, err = svc.CreateQuiz(1, CreateQuizInput{Name: "Quiz", Type: entity.QuizTypePublic, TimerDurationSec: -5})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizService_UpdateQuiz_OnlyCreator(t *testing.T) {
	// Arrange: викторина принадлежит пользователю 1
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(10)).Return(&entity.Quiz{ID: 10, Name: "Quiz", CreatorID: 1}, nil)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act: пользователь 2 пытается обновить чужую викторину
	newName := "Hijacked"
	_, err := svc.UpdateQuiz(2, 10, UpdateQuizInput{Name: &newName})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	quizRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestQuizService_UpdateQuiz_Success(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(10)).Return(&entity.Quiz{ID: 10, Name: "Старое имя", CreatorID: 1, TimerMode: entity.TimerModeOverall}, nil)
	quizRepo.On("Update", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act
	newName := "Новое имя"
	newDuration := 120
	quiz, err := svc.UpdateQuiz(1, 10, UpdateQuizInput{Name: &newName, TimerDurationSec: &newDuration})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Новое имя", quiz.Name)
	assert.Equal(t, 120, quiz.TimerDurationSec)
	quizRepo.AssertExpectations(t)
}

func TestQuizService_DeleteQuiz_OnlyCreator(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(10)).Return(&entity.Quiz{ID: 10, CreatorID: 1}, nil)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act & Assert
	err := svc.DeleteQuiz(99, 10)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	quizRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestQuizService_DeleteQuiz_NotFound(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(404)).Return(nil, apperrors.ErrNotFound)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act & Assert
	err := svc.DeleteQuiz(1, 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_SearchQuizzes_RequiresQuery(t *testing.T) {
	svc := NewQuizService(new(MockQuizRepoForQuizService), new(MockUserRepoForQuizService), &NoopEmailService{})

	_, err := svc.SearchQuizzes("   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizService_SearchQuizzes_TrimsQuery(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("SearchByName", "история").Return([]entity.Quiz{{ID: 1, Name: "История мира"}}, nil)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act
	quizzes, err := svc.SearchQuizzes("  история  ")

	// Assert
	require.NoError(t, err)
	assert.Len(t, quizzes, 1)
	quizRepo.AssertExpectations(t)
}

func TestQuizService_CreateQuiz_RepoError(t *testing.T) {
	// Arrange
	repoErr := errors.New("db down")
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("Create", mock.Anything).Return(repoErr)

	svc := NewQuizService(quizRepo, new(MockUserRepoForQuizService), &NoopEmailService{})

	// Act & Assert
	_, err := svc.CreateQuiz(1, CreateQuizInput{Name: "Quiz", Type: entity.QuizTypePublic})
	assert.ErrorIs(t, err, repoErr)
}
