package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// Моки переиспользуются из quiz_service_test.go и participant_service_test.go

func TestLeaderboardService_GetQuizLeaderboard_RanksComputedAtReadTime(t *testing.T) {
	// Arrange
	leaderboardRepo := new(MockLeaderboardRepo)
	leaderboardRepo.On("GetByQuizID", uint(5)).Return(&entity.Leaderboard{
		ID:     3,
		QuizID: 5,
		Entries: []entity.LeaderboardEntry{
			{ParticipantID: 1, Score: 5, TimeTakenMs: 30000},
			{ParticipantID: 2, Score: 8, TimeTakenMs: 50000},
			{ParticipantID: 3, Score: 5, TimeTakenMs: 10000},
		},
	}, nil)

	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Name: "История"}, nil)

	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByIDs", mock.Anything).Return([]entity.User{
		{ID: 1, Name: "Алия"},
		{ID: 2, Name: "Борис"},
		{ID: 3, Name: "Виктор"},
	}, nil)

	cacheRepo := new(MockCacheRepo)
	cacheRepo.On("GetJSON", "leaderboard:quiz:5", mock.Anything).Return(apperrors.ErrNotFound)
	cacheRepo.On("SetJSON", "leaderboard:quiz:5", mock.Anything, leaderboardCacheTTL).Return(nil)

	svc := NewLeaderboardService(leaderboardRepo, quizRepo, userRepo, cacheRepo)

	// Act
	leaderboard, err := svc.GetQuizLeaderboard(5)

	// Assert: счет по убыванию, при равенстве — время по возрастанию
	require.NoError(t, err)
	assert.Equal(t, uint(5), leaderboard.Quiz.ID)
	assert.Equal(t, "История", leaderboard.Quiz.Name)

	rows := leaderboard.Rows
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Борис", rows[0].ParticipantName)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "Виктор", rows[1].ParticipantName, "При равном счете быстрее — выше")
	assert.Equal(t, 3, rows[2].Rank)
	assert.Equal(t, "Алия", rows[2].ParticipantName)

	cacheRepo.AssertExpectations(t)
}

func TestLeaderboardService_GetQuizLeaderboard_NotFoundPassthrough(t *testing.T) {
	// Arrange: по викторине еще не было отправок
	leaderboardRepo := new(MockLeaderboardRepo)
	leaderboardRepo.On("GetByQuizID", uint(404)).Return(nil, apperrors.ErrNotFound)

	cacheRepo := new(MockCacheRepo)
	cacheRepo.On("GetJSON", "leaderboard:quiz:404", mock.Anything).Return(apperrors.ErrNotFound)

	svc := NewLeaderboardService(leaderboardRepo, new(MockQuizRepoForQuizService), new(MockUserRepoForQuizService), cacheRepo)

	// Act & Assert
	_, err := svc.GetQuizLeaderboard(404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLeaderboardService_GetQuizLeaderboard_CacheHitSkipsRepo(t *testing.T) {
	// Arrange: кеш отдает готовый ответ
	leaderboardRepo := new(MockLeaderboardRepo)

	cacheRepo := new(MockCacheRepo)
	cacheRepo.On("GetJSON", "leaderboard:quiz:5", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(1).(*QuizLeaderboard)
			*dest = QuizLeaderboard{
				Quiz: QuizSummary{ID: 5, Name: "История"},
				Rows: []LeaderboardRow{{Rank: 1, ParticipantID: 2, ParticipantName: "Борис", Score: 8, TimeTakenMs: 50000}},
			}
		}).
		Return(nil)

	svc := NewLeaderboardService(leaderboardRepo, new(MockQuizRepoForQuizService), new(MockUserRepoForQuizService), cacheRepo)

	// Act
	leaderboard, err := svc.GetQuizLeaderboard(5)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "История", leaderboard.Quiz.Name)
	require.Len(t, leaderboard.Rows, 1)
	assert.Equal(t, "Борис", leaderboard.Rows[0].ParticipantName)
	leaderboardRepo.AssertNotCalled(t, "GetByQuizID", mock.Anything)
}

func TestLeaderboardService_GetQuizLeaderboard_UserLookupFailureNonFatal(t *testing.T) {
	// Arrange: имена недоступны, но лидерборд все равно возвращается
	leaderboardRepo := new(MockLeaderboardRepo)
	leaderboardRepo.On("GetByQuizID", uint(5)).Return(&entity.Leaderboard{
		ID:      3,
		QuizID:  5,
		Entries: []entity.LeaderboardEntry{{ParticipantID: 1, Score: 4, TimeTakenMs: 1000}},
	}, nil)

	quizRepo := new(MockQuizRepoForQuizService)
	quizRepo.On("GetByID", uint(5)).Return(&entity.Quiz{ID: 5, Name: "История"}, nil)

	userRepo := new(MockUserRepoForQuizService)
	userRepo.On("GetByIDs", mock.Anything).Return(nil, assert.AnError)

	cacheRepo := new(MockCacheRepo)
	cacheRepo.On("GetJSON", mock.Anything, mock.Anything).Return(apperrors.ErrNotFound)
	cacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewLeaderboardService(leaderboardRepo, quizRepo, userRepo, cacheRepo)

	// Act
	leaderboard, err := svc.GetQuizLeaderboard(5)

	// Assert
	require.NoError(t, err, "Ошибка загрузки имен не должна ронять запрос")
	require.Len(t, leaderboard.Rows, 1)
	assert.Empty(t, leaderboard.Rows[0].ParticipantName)
	assert.Equal(t, 4, leaderboard.Rows[0].Score)
}
