package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	"github.com/yourusername/quizmaker-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// accessCodeLength — длина кода доступа приватной викторины
const accessCodeLength = 6

// accessCodeCharset — заглавные буквы и цифры, без похожих символов не фильтруем
const accessCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// QuizService предоставляет методы для работы с викторинами
type QuizService struct {
	quizRepo     repository.QuizRepository
	userRepo     repository.UserRepository
	emailService EmailService
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// CreateQuizInput содержит данные для создания викторины
type CreateQuizInput struct {
	Name             string
	Type             string
	TimerMode        string
	TimerDurationSec int
}

// CreateQuiz создает новую викторину. Для приватной генерируется код доступа,
// который отправляется создателю на email (неблокирующе); публичная получает
// фиксированный код "public".
func (s *QuizService) CreateQuiz(creatorID uint, input CreateQuizInput) (*entity.Quiz, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: quiz name is required", apperrors.ErrValidation)
	}
	if input.Type != entity.QuizTypePublic && input.Type != entity.QuizTypePrivate {
		return nil, fmt.Errorf("%w: quiz type must be public or private", apperrors.ErrValidation)
	}
	timerMode := input.TimerMode
	if timerMode == "" {
		timerMode = entity.TimerModeOverall
	}
	if timerMode != entity.TimerModeOverall && timerMode != entity.TimerModePerQuestion {
		return nil, fmt.Errorf("%w: timer mode must be overall or per-question", apperrors.ErrValidation)
	}
	if input.TimerDurationSec < 0 {
		return nil, fmt.Errorf("%w: timer duration must be non-negative", apperrors.ErrValidation)
	}

	code := entity.PublicQuizCode
	if input.Type == entity.QuizTypePrivate {
		generated, err := generateAccessCode(accessCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate access code: %w", err)
		}
		code = generated
	}

	quiz := &entity.Quiz{
		Name:             strings.TrimSpace(input.Name),
		Type:             input.Type,
		Code:             code,
		CreatorID:        creatorID,
		TimerMode:        timerMode,
		TimerDurationSec: input.TimerDurationSec,
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}

	log.Printf("[QuizService] Создана викторина ID=%d type=%s создателем %d", quiz.ID, quiz.Type, creatorID)

	// Отправляем код создателю приватной викторины, не блокируя ответ
	if quiz.IsPrivate() && s.emailService != nil {
		go func(quizName, quizCode string, creatorID uint) {
			creator, err := s.userRepo.GetByID(creatorID)
			if err != nil {
				log.Printf("[QuizService] Не удалось найти создателя %d для отправки кода: %v", creatorID, err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.emailService.SendQuizAccessCode(ctx, creator.Email, quizName, quizCode); err != nil {
				log.Printf("[QuizService] Не удалось отправить код викторины %q создателю %s: %v", quizName, creator.Email, err)
			}
		}(quiz.Name, quiz.Code, creatorID)
	}

	return quiz, nil
}

// generateAccessCode генерирует случайный код из заглавных букв и цифр
func generateAccessCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = accessCodeCharset[int(buf[i])%len(accessCodeCharset)]
	}
	return string(buf), nil
}

// GetQuizByID возвращает викторину по ID
func (s *QuizService) GetQuizByID(id uint) (*entity.Quiz, error) {
	return s.quizRepo.GetByID(id)
}

// GetPublicQuizzes возвращает все публичные викторины
func (s *QuizService) GetPublicQuizzes() ([]entity.Quiz, error) {
	return s.quizRepo.GetPublic()
}

// GetQuizzesByCreator возвращает викторины пользователя
func (s *QuizService) GetQuizzesByCreator(creatorID uint) ([]entity.Quiz, error) {
	return s.quizRepo.GetByCreator(creatorID)
}

// SearchQuizzes ищет публичные викторины по имени
func (s *QuizService) SearchQuizzes(name string) ([]entity.Quiz, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: search name is required", apperrors.ErrValidation)
	}
	return s.quizRepo.SearchByName(name)
}

// UpdateQuizInput содержит обновляемые поля викторины
type UpdateQuizInput struct {
	Name             *string
	TimerMode        *string
	TimerDurationSec *int
}

// UpdateQuiz обновляет викторину. Разрешено только создателю.
// Тип и код доступа после создания не меняются.
func (s *QuizService) UpdateQuiz(userID, quizID uint, input UpdateQuizInput) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(userID) {
		return nil, fmt.Errorf("%w: only the creator can update this quiz", apperrors.ErrForbidden)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: quiz name is required", apperrors.ErrValidation)
		}
		quiz.Name = name
	}
	if input.TimerMode != nil {
		if *input.TimerMode != entity.TimerModeOverall && *input.TimerMode != entity.TimerModePerQuestion {
			return nil, fmt.Errorf("%w: timer mode must be overall or per-question", apperrors.ErrValidation)
		}
		quiz.TimerMode = *input.TimerMode
	}
	if input.TimerDurationSec != nil {
		if *input.TimerDurationSec < 0 {
			return nil, fmt.Errorf("%w: timer duration must be non-negative", apperrors.ErrValidation)
		}
		quiz.TimerDurationSec = *input.TimerDurationSec
	}

	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz удаляет викторину со всеми данными. Разрешено только создателю.
func (s *QuizService) DeleteQuiz(userID, quizID uint) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if !quiz.IsCreator(userID) {
		return fmt.Errorf("%w: only the creator can delete this quiz", apperrors.ErrForbidden)
	}

	if err := s.quizRepo.Delete(quizID); err != nil {
		return err
	}

	log.Printf("[QuizService] Викторина ID=%d удалена создателем %d", quizID, userID)
	return nil
}
