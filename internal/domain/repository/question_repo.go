package repository

import (
	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами викторин
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByQuizID(quizID uint) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error
}
