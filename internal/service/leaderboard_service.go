package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quizmaker-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// leaderboardCacheTTL — короткий TTL: кеш дополнительно сбрасывается при каждой отправке
const leaderboardCacheTTL = 30 * time.Second

// leaderboardCacheKey возвращает ключ кеша лидерборда викторины
func leaderboardCacheKey(quizID uint) string {
	return fmt.Sprintf("leaderboard:quiz:%d", quizID)
}

// LeaderboardService отдает таблицы лидеров викторин.
// Позиции вычисляются при каждом чтении из сохраненных записей
// (счет по убыванию, время по возрастанию) и нигде не хранятся.
type LeaderboardService struct {
	leaderboardRepo repository.LeaderboardRepository
	quizRepo        repository.QuizRepository
	userRepo        repository.UserRepository
	cacheRepo       repository.CacheRepository
}

// NewLeaderboardService создает новый сервис лидербордов
func NewLeaderboardService(
	leaderboardRepo repository.LeaderboardRepository,
	quizRepo repository.QuizRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *LeaderboardService {
	return &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		quizRepo:        quizRepo,
		userRepo:        userRepo,
		cacheRepo:       cacheRepo,
	}
}

// QuizSummary — краткая информация о викторине в ответах чтения
type QuizSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LeaderboardRow — строка таблицы лидеров с вычисленной позицией
type LeaderboardRow struct {
	Rank            int    `json:"rank"`
	ParticipantID   uint   `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	Score           int    `json:"score"`
	TimeTakenMs     int64  `json:"time_taken_ms"`
}

// QuizLeaderboard — таблица лидеров вместе с идентификацией викторины
type QuizLeaderboard struct {
	Quiz QuizSummary      `json:"quiz"`
	Rows []LeaderboardRow `json:"rows"`
}

// GetQuizLeaderboard возвращает отсортированную таблицу лидеров викторины.
// Возвращает apperrors.ErrNotFound, если по викторине еще не было отправок.
func (s *LeaderboardService) GetQuizLeaderboard(quizID uint) (*QuizLeaderboard, error) {
	cacheKey := leaderboardCacheKey(quizID)

	// Пробуем кеш
	if s.cacheRepo != nil {
		var cached QuizLeaderboard
		err := s.cacheRepo.GetJSON(cacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[LeaderboardService] Ошибка чтения кеша quiz=%d: %v", quizID, err)
		}
	}

	leaderboard, err := s.leaderboardRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	entries := leaderboard.SortedEntries()

	// Подставляем имена участников
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ParticipantID)
	}
	nameByID := make(map[uint]string, len(ids))
	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		log.Printf("[LeaderboardService] Не удалось загрузить имена участников quiz=%d: %v", quizID, err)
	} else {
		for _, u := range users {
			nameByID[u.ID] = u.Name
		}
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:            i + 1,
			ParticipantID:   e.ParticipantID,
			ParticipantName: nameByID[e.ParticipantID],
			Score:           e.Score,
			TimeTakenMs:     e.TimeTakenMs,
		})
	}

	result := &QuizLeaderboard{
		Quiz: QuizSummary{ID: quiz.ID, Name: quiz.Name},
		Rows: rows,
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, result, leaderboardCacheTTL); err != nil {
			log.Printf("[LeaderboardService] Не удалось записать кеш quiz=%d: %v", quizID, err)
		}
	}

	return result, nil
}
