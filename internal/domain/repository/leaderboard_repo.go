package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// LeaderboardRepository определяет методы для работы с таблицами лидеров
type LeaderboardRepository interface {
	// GetByQuizID возвращает таблицу лидеров с записями или apperrors.ErrNotFound,
	// если по викторине еще не было ни одной отправки
	GetByQuizID(quizID uint) (*entity.Leaderboard, error)
	// GetOrCreate лениво создает таблицу лидеров викторины в рамках транзакции
	GetOrCreate(tx *gorm.DB, quizID uint) (*entity.Leaderboard, error)
	// UpsertEntry вставляет или обновляет запись участника (одна запись на участника)
	UpsertEntry(tx *gorm.DB, entry *entity.LeaderboardEntry) error
}
