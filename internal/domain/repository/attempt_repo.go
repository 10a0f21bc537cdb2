package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения.
// Save принимает транзакцию: сохранение попытки и обновление таблицы лидеров
// должны фиксироваться атомарно (см. ParticipantService.SubmitAnswers).
type AttemptRepository interface {
	// GetByParticipantAndQuiz возвращает попытку участника или apperrors.ErrNotFound
	GetByParticipantAndQuiz(participantID, quizID uint) (*entity.Attempt, error)
	GetByQuizID(quizID uint) ([]entity.Attempt, error)
	// Save вставляет новую попытку или перезаписывает существующую
	// (answers, score, time_taken_ms) в рамках переданной транзакции
	Save(tx *gorm.DB, attempt *entity.Attempt) error
}
