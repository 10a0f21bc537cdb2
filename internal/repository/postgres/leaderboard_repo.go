package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// LeaderboardRepo реализует repository.LeaderboardRepository
type LeaderboardRepo struct {
	db *gorm.DB
}

// NewLeaderboardRepo создает новый репозиторий таблиц лидеров
func NewLeaderboardRepo(db *gorm.DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

// GetByQuizID возвращает таблицу лидеров викторины вместе с записями.
// Отсутствие таблицы означает, что по викторине еще не было отправок.
func (r *LeaderboardRepo) GetByQuizID(quizID uint) (*entity.Leaderboard, error) {
	var leaderboard entity.Leaderboard
	err := r.db.Preload("Entries").Where("quiz_id = ?", quizID).First(&leaderboard).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &leaderboard, nil
}

// GetOrCreate лениво создает таблицу лидеров викторины в рамках транзакции.
// Гонка двух первых отправок разрешается через unique violation по quiz_id.
func (r *LeaderboardRepo) GetOrCreate(tx *gorm.DB, quizID uint) (*entity.Leaderboard, error) {
	var leaderboard entity.Leaderboard
	err := tx.Where("quiz_id = ?", quizID).First(&leaderboard).Error
	if err == nil {
		return &leaderboard, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	leaderboard = entity.Leaderboard{QuizID: quizID}
	err = tx.Create(&leaderboard).Error
	if err == nil {
		return &leaderboard, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}

	// Параллельная транзакция успела создать запись — перечитываем
	if err := tx.Where("quiz_id = ?", quizID).First(&leaderboard).Error; err != nil {
		return nil, err
	}
	return &leaderboard, nil
}

// UpsertEntry вставляет или обновляет запись участника в таблице лидеров.
// Уникальность (leaderboard_id, participant_id) гарантирует одну запись
// на участника; при конфликте запись отражает последнюю попытку.
func (r *LeaderboardRepo) UpsertEntry(tx *gorm.DB, entry *entity.LeaderboardEntry) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "leaderboard_id"}, {Name: "participant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":         entry.Score,
			"time_taken_ms": entry.TimeTakenMs,
			"updated_at":    gorm.Expr("NOW()"),
		}),
	}).Create(entry).Error
}
