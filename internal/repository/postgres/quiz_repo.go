package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину
func (r *QuizRepo) Create(quiz *entity.Quiz) error {
	return r.db.Create(quiz).Error
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetByCode возвращает приватную викторину по коду доступа
func (r *QuizRepo) GetByCode(code string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Where("code = ? AND type = ?", code, entity.QuizTypePrivate).First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Preload("Questions").First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetPublic возвращает все публичные викторины
func (r *QuizRepo) GetPublic() ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Where("type = ?", entity.QuizTypePublic).Order("id DESC").Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// GetByCreator возвращает викторины, созданные пользователем
func (r *QuizRepo) GetByCreator(creatorID uint) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Where("creator_id = ?", creatorID).Order("id DESC").Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// SearchByName ищет публичные викторины по подстроке имени без учета регистра
func (r *QuizRepo) SearchByName(name string) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	search := "%" + name + "%"
	err := r.db.Where("type = ? AND name ILIKE ?", entity.QuizTypePublic, search).
		Order("id DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// Update обновляет информацию о викторине
func (r *QuizRepo) Update(quiz *entity.Quiz) error {
	return r.db.Save(quiz).Error
}

// Delete удаляет викторину со всеми связанными данными:
// вопросы, попытки, записи и сама таблица лидеров, связи участников
func (r *QuizRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Attempt{}).Error; err != nil {
			return err
		}

		var lb entity.Leaderboard
		err := tx.Where("quiz_id = ?", id).First(&lb).Error
		if err == nil {
			if err := tx.Where("leaderboard_id = ?", lb.ID).Delete(&entity.LeaderboardEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&lb).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Exec("DELETE FROM quiz_participants WHERE quiz_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&entity.Quiz{}, id).Error
	})
}

// AddParticipant идемпотентно добавляет участника в викторину.
// ON CONFLICT DO NOTHING дает семантику множества: повторный join — no-op.
func (r *QuizRepo) AddParticipant(quizID, userID uint) error {
	return r.db.Exec(
		"INSERT INTO quiz_participants (quiz_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		quizID, userID,
	).Error
}
