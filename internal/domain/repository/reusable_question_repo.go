package repository

import (
	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// ReusableQuestionRepository определяет методы для работы с пулом вопросов создателя
type ReusableQuestionRepository interface {
	Create(question *entity.ReusableQuestion) error
	GetByID(id uint) (*entity.ReusableQuestion, error)
	GetByIDs(ids []uint) ([]entity.ReusableQuestion, error)
	GetByCreator(creatorID uint) ([]entity.ReusableQuestion, error)
	// Search ищет вопросы создателя по подстроке текста (без учета регистра)
	Search(creatorID uint, query string) ([]entity.ReusableQuestion, error)
	Update(question *entity.ReusableQuestion) error
	Delete(id uint) error
}
