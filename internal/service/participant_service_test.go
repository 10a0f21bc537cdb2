package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// ============================================================================
// Моки для ParticipantService
// Мок QuizRepository переиспользуется из quiz_service_test.go
// ============================================================================

// MockQuestionRepoForParticipant реализует repository.QuestionRepository
type MockQuestionRepoForParticipant struct {
	mock.Mock
}

func (m *MockQuestionRepoForParticipant) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepoForParticipant) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepoForParticipant) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepoForParticipant) GetByQuizID(quizID uint) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepoForParticipant) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepoForParticipant) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockAttemptRepo реализует repository.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) GetByParticipantAndQuiz(participantID, quizID uint) (*entity.Attempt, error) {
	args := m.Called(participantID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) GetByQuizID(quizID uint) ([]entity.Attempt, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) Save(tx *gorm.DB, attempt *entity.Attempt) error {
	args := m.Called(tx, attempt)
	return args.Error(0)
}

// MockLeaderboardRepo реализует repository.LeaderboardRepository
type MockLeaderboardRepo struct {
	mock.Mock
}

func (m *MockLeaderboardRepo) GetByQuizID(quizID uint) (*entity.Leaderboard, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Leaderboard), args.Error(1)
}

func (m *MockLeaderboardRepo) GetOrCreate(tx *gorm.DB, quizID uint) (*entity.Leaderboard, error) {
	args := m.Called(tx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Leaderboard), args.Error(1)
}

func (m *MockLeaderboardRepo) UpsertEntry(tx *gorm.DB, entry *entity.LeaderboardEntry) error {
	args := m.Called(tx, entry)
	return args.Error(0)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// newGormDBWithMock создает gorm.DB поверх sqlmock: SQL через репозитории
// в тестах не идет, нужны только Begin/Commit транзакции
func newGormDBWithMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, dbMock
}

func participantTestQuestions() []entity.Question {
	return []entity.Question{
		{ID: 1, QuizID: 5, Type: entity.QuestionTypeShortAnswer, Text: "2+2?", CorrectAnswer: "4"},
		{ID: 2, QuizID: 5, Type: entity.QuestionTypeTrueFalse, Text: "Земля плоская?", CorrectAnswer: "false", Explanation: "Земля — геоид"},
	}
}

// ============================================================================
// SubmitAnswers
// ============================================================================

func TestParticipantService_SubmitAnswers_QuizNotFound(t *testing.T) {
	// Arrange
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(404)).Return(nil, apperrors.ErrNotFound)

	svc := NewParticipantService(quizRepo, new(MockQuestionRepoForParticipant), new(MockAttemptRepo), new(MockLeaderboardRepo), nil, db)

	// Act & Assert
	_, err := svc.SubmitAnswers(1, 404, nil, 1000)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParticipantService_SubmitAnswers_NoQuestions(t *testing.T) {
	// Arrange
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Type: entity.QuizTypePublic}, nil)

	questionRepo := new(MockQuestionRepoForParticipant)
	questionRepo.On("GetByQuizID", uint(5)).Return([]entity.Question{}, nil)

	svc := NewParticipantService(quizRepo, questionRepo, new(MockAttemptRepo), new(MockLeaderboardRepo), nil, db)

	// Act & Assert: викторина без вопросов — 404
	_, err := svc.SubmitAnswers(1, 5, nil, 1000)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParticipantService_SubmitAnswers_NegativeTime(t *testing.T) {
	db, _ := newGormDBWithMock(t)
	svc := NewParticipantService(new(MockQuizRepoForQuizService), new(MockQuestionRepoForParticipant), new(MockAttemptRepo), new(MockLeaderboardRepo), nil, db)

	_, err := svc.SubmitAnswers(1, 5, nil, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParticipantService_SubmitAnswers_FirstAttempt(t *testing.T) {
	// Arrange
	db, dbMock := newGormDBWithMock(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Type: entity.QuizTypePublic}, nil)

	questionRepo := new(MockQuestionRepoForParticipant)
	questionRepo.On("GetByQuizID", uint(5)).Return(participantTestQuestions(), nil)

	attemptRepo := new(MockAttemptRepo)
	attemptRepo.On("GetByParticipantAndQuiz", uint(1), uint(5)).Return(nil, apperrors.ErrNotFound)
	attemptRepo.On("Save", mock.Anything, mock.AnythingOfType("*entity.Attempt")).Return(nil)

	leaderboardRepo := new(MockLeaderboardRepo)
	leaderboardRepo.On("GetOrCreate", mock.Anything, uint(5)).Return(&entity.Leaderboard{ID: 3, QuizID: 5}, nil)
	leaderboardRepo.On("UpsertEntry", mock.Anything, mock.MatchedBy(func(e *entity.LeaderboardEntry) bool {
		return e.LeaderboardID == 3 && e.ParticipantID == 1 && e.Score == 1 && e.TimeTakenMs == 42000
	})).Return(nil)

	cacheRepo := new(MockCacheRepo)
	cacheRepo.On("Delete", "leaderboard:quiz:5").Return(nil)

	svc := NewParticipantService(quizRepo, questionRepo, attemptRepo, leaderboardRepo, cacheRepo, db)

	answers := []SubmittedAnswer{
		{QuestionID: 1, UserAnswer: "4"},
		{QuestionID: 2, UserAnswer: "true"},
	}

	// Act
	summary, err := svc.SubmitAnswers(1, 5, answers, 42000)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 2, summary.TotalQuestions)
	assert.False(t, summary.IsRetake)
	require.Len(t, summary.Answers, 2)
	assert.Equal(t, "2+2?", summary.Answers[0].QuestionText, "К проверенным ответам прикладываются тексты вопросов")
	assert.True(t, summary.Answers[0].IsCorrect)
	assert.False(t, summary.Answers[1].IsCorrect)
	require.NotNil(t, summary.Answers[1].Explanation)

	require.NoError(t, dbMock.ExpectationsWereMet(), "Попытка и запись лидерборда должны фиксироваться в одной транзакции")
	attemptRepo.AssertExpectations(t)
	leaderboardRepo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)
}

func TestParticipantService_SubmitAnswers_RetakeOverwritesAttempt(t *testing.T) {
	// Arrange: у участника уже есть попытка с ID=77
	db, dbMock := newGormDBWithMock(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Type: entity.QuizTypePublic}, nil)

	questionRepo := new(MockQuestionRepoForParticipant)
	questionRepo.On("GetByQuizID", uint(5)).Return(participantTestQuestions(), nil)

	existing := &entity.Attempt{ID: 77, ParticipantID: 1, QuizID: 5, Score: 0, TimeTakenMs: 90000}
	attemptRepo := new(MockAttemptRepo)
	attemptRepo.On("GetByParticipantAndQuiz", uint(1), uint(5)).Return(existing, nil)
	attemptRepo.On("Save", mock.Anything, mock.MatchedBy(func(a *entity.Attempt) bool {
		// Перезаписывается существующая запись, а не создается новая
		return a.ID == 77 && a.Score == 2 && a.TimeTakenMs == 30000
	})).Return(nil)

	leaderboardRepo := new(MockLeaderboardRepo)
	leaderboardRepo.On("GetOrCreate", mock.Anything, uint(5)).Return(&entity.Leaderboard{ID: 3, QuizID: 5}, nil)
	leaderboardRepo.On("UpsertEntry", mock.Anything, mock.Anything).Return(nil)

	cacheRepo := new(MockCacheRepo)
	cacheRepo.On("Delete", "leaderboard:quiz:5").Return(nil)

	svc := NewParticipantService(quizRepo, questionRepo, attemptRepo, leaderboardRepo, cacheRepo, db)

	answers := []SubmittedAnswer{
		{QuestionID: 1, UserAnswer: "4"},
		{QuestionID: 2, UserAnswer: "false"},
	}

	// Act
	summary, err := svc.SubmitAnswers(1, 5, answers, 30000)

	// Assert
	require.NoError(t, err)
	assert.True(t, summary.IsRetake)
	assert.Equal(t, 2, summary.Score)
	attemptRepo.AssertExpectations(t)
}

func TestParticipantService_SubmitAnswers_RollbackOnSaveError(t *testing.T) {
	// Arrange
	db, dbMock := newGormDBWithMock(t)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5}, nil)

	questionRepo := new(MockQuestionRepoForParticipant)
	questionRepo.On("GetByQuizID", uint(5)).Return(participantTestQuestions(), nil)

	attemptRepo := new(MockAttemptRepo)
	attemptRepo.On("GetByParticipantAndQuiz", uint(1), uint(5)).Return(nil, apperrors.ErrNotFound)
	attemptRepo.On("Save", mock.Anything, mock.Anything).Return(assert.AnError)

	leaderboardRepo := new(MockLeaderboardRepo)
	cacheRepo := new(MockCacheRepo)

	svc := NewParticipantService(quizRepo, questionRepo, attemptRepo, leaderboardRepo, cacheRepo, db)

	// Act
	_, err := svc.SubmitAnswers(1, 5, []SubmittedAnswer{{QuestionID: 1, UserAnswer: "4"}}, 1000)

	// Assert: транзакция откатывается, лидерборд и кеш не трогаются
	require.Error(t, err)
	require.NoError(t, dbMock.ExpectationsWereMet())
	leaderboardRepo.AssertNotCalled(t, "UpsertEntry", mock.Anything, mock.Anything)
	cacheRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

// ============================================================================
// Join
// ============================================================================

func TestParticipantService_JoinPublicQuiz_PrivateNotFound(t *testing.T) {
	// Arrange: викторина приватная — по ID к ней не присоединиться
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Type: entity.QuizTypePrivate, Code: "ABC123"}, nil)

	svc := NewParticipantService(quizRepo, new(MockQuestionRepoForParticipant), new(MockAttemptRepo), new(MockLeaderboardRepo), nil, db)

	// Act & Assert
	_, err := svc.JoinPublicQuiz(1, 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParticipantService_JoinPublicQuiz_FirstAttempt(t *testing.T) {
	// Arrange
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Type: entity.QuizTypePublic}, nil)
	quizRepo.On("AddParticipant", uint(5), uint(1)).Return(nil)

	attemptRepo := new(MockAttemptRepo)
	attemptRepo.On("GetByParticipantAndQuiz", uint(1), uint(5)).Return(nil, apperrors.ErrNotFound)

	svc := NewParticipantService(quizRepo, new(MockQuestionRepoForParticipant), attemptRepo, new(MockLeaderboardRepo), nil, db)

	// Act
	info, err := svc.JoinPublicQuiz(1, 5)

	// Assert
	require.NoError(t, err)
	assert.True(t, info.IsFirstAttempt)
	assert.False(t, info.CanRetake)
	assert.Nil(t, info.PreviousScore)
	quizRepo.AssertExpectations(t)
}

func TestParticipantService_JoinPublicQuiz_OffersRetake(t *testing.T) {
	// Arrange: участник уже отправлял ответы
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Type: entity.QuizTypePublic}, nil)

	attemptRepo := new(MockAttemptRepo)
	attemptRepo.On("GetByParticipantAndQuiz", uint(1), uint(5)).Return(&entity.Attempt{ID: 9, ParticipantID: 1, QuizID: 5, Score: 7}, nil)

	svc := NewParticipantService(quizRepo, new(MockQuestionRepoForParticipant), attemptRepo, new(MockLeaderboardRepo), nil, db)

	// Act
	info, err := svc.JoinPublicQuiz(1, 5)

	// Assert
	require.NoError(t, err)
	assert.False(t, info.IsFirstAttempt)
	assert.True(t, info.CanRetake)
	require.NotNil(t, info.PreviousScore)
	assert.Equal(t, 7, *info.PreviousScore)
	quizRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything)
}

func TestParticipantService_JoinPrivateQuiz_ByCode(t *testing.T) {
	// Arrange
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByCode", "XK29PL").Return(&entity.Quiz{ID: 8, Type: entity.QuizTypePrivate, Code: "XK29PL"}, nil)
	quizRepo.On("AddParticipant", uint(8), uint(2)).Return(nil)

	attemptRepo := new(MockAttemptRepo)
	attemptRepo.On("GetByParticipantAndQuiz", uint(2), uint(8)).Return(nil, apperrors.ErrNotFound)

	svc := NewParticipantService(quizRepo, new(MockQuestionRepoForParticipant), attemptRepo, new(MockLeaderboardRepo), nil, db)

	// Act
	info, err := svc.JoinPrivateQuiz(2, "XK29PL")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(8), info.Quiz.ID)
	assert.True(t, info.IsFirstAttempt)
}

func TestParticipantService_JoinPrivateQuiz_WrongCode(t *testing.T) {
	// Arrange
	db, _ := newGormDBWithMock(t)
	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByCode", "WRONG1").Return(nil, apperrors.ErrNotFound)

	svc := NewParticipantService(quizRepo, new(MockQuestionRepoForParticipant), new(MockAttemptRepo), new(MockLeaderboardRepo), nil, db)

	// Act & Assert
	_, err := svc.JoinPrivateQuiz(2, "WRONG1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
