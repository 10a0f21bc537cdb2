package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// ReusableQuestionRepo реализует repository.ReusableQuestionRepository
type ReusableQuestionRepo struct {
	db *gorm.DB
}

// NewReusableQuestionRepo создает новый репозиторий пула вопросов
func NewReusableQuestionRepo(db *gorm.DB) *ReusableQuestionRepo {
	return &ReusableQuestionRepo{db: db}
}

// Create создает новый вопрос в пуле
func (r *ReusableQuestionRepo) Create(question *entity.ReusableQuestion) error {
	return r.db.Create(question).Error
}

// GetByID возвращает вопрос пула по ID
func (r *ReusableQuestionRepo) GetByID(id uint) (*entity.ReusableQuestion, error) {
	var question entity.ReusableQuestion
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает вопросы пула по списку ID
func (r *ReusableQuestionRepo) GetByIDs(ids []uint) ([]entity.ReusableQuestion, error) {
	if len(ids) == 0 {
		return []entity.ReusableQuestion{}, nil
	}
	var questions []entity.ReusableQuestion
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetByCreator возвращает все вопросы пула пользователя
func (r *ReusableQuestionRepo) GetByCreator(creatorID uint) ([]entity.ReusableQuestion, error) {
	var questions []entity.ReusableQuestion
	err := r.db.Where("creator_id = ?", creatorID).Order("id DESC").Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Search ищет вопросы пула пользователя по подстроке текста без учета регистра
func (r *ReusableQuestionRepo) Search(creatorID uint, query string) ([]entity.ReusableQuestion, error) {
	var questions []entity.ReusableQuestion
	search := "%" + query + "%"
	err := r.db.Where("creator_id = ? AND text ILIKE ?", creatorID, search).
		Order("id DESC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Update обновляет вопрос пула
func (r *ReusableQuestionRepo) Update(question *entity.ReusableQuestion) error {
	return r.db.Save(question).Error
}

// Delete удаляет вопрос пула
func (r *ReusableQuestionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.ReusableQuestion{}, id).Error
}
