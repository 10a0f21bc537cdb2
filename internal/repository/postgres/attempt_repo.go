package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// GetByParticipantAndQuiz возвращает попытку участника в викторине
func (r *AttemptRepo) GetByParticipantAndQuiz(participantID, quizID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("participant_id = ? AND quiz_id = ?", participantID, quizID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByQuizID возвращает все попытки по викторине
func (r *AttemptRepo) GetByQuizID(quizID uint) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.Where("quiz_id = ?", quizID).Order("id").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// Save сохраняет попытку в рамках транзакции.
// Если ID задан (повторная отправка) — перезаписывает существующую запись.
// При вставке гонка двух первых отправок одного участника разрешается через
// unique violation на idx_attempt_participant_quiz: проигравшая вставка
// превращается в обновление (last-write-wins).
func (r *AttemptRepo) Save(tx *gorm.DB, attempt *entity.Attempt) error {
	if attempt.ID != 0 {
		return tx.Save(attempt).Error
	}

	err := tx.Create(attempt).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	return tx.Model(&entity.Attempt{}).
		Where("participant_id = ? AND quiz_id = ?", attempt.ParticipantID, attempt.QuizID).
		Updates(map[string]interface{}{
			"answers":       attempt.Answers,
			"score":         attempt.Score,
			"time_taken_ms": attempt.TimeTakenMs,
		}).Error
}
