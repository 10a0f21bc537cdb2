package repository

import (
	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	// GetByCode ищет приватную викторину по коду доступа
	GetByCode(code string) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	GetPublic() ([]entity.Quiz, error)
	GetByCreator(creatorID uint) ([]entity.Quiz, error)
	// SearchByName ищет публичные викторины по подстроке имени (без учета регистра)
	SearchByName(name string) ([]entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	// Delete удаляет викторину вместе с вопросами, попытками и таблицей лидеров
	Delete(id uint) error
	// AddParticipant идемпотентно регистрирует участника (повторный вызов — no-op)
	AddParticipant(quizID, userID uint) error
}
