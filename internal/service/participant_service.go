package service

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	"github.com/yourusername/quizmaker-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// ParticipantService обрабатывает участие в викторинах:
// присоединение (по ID или коду) и отправку ответов с подсчетом результата
type ParticipantService struct {
	quizRepo        repository.QuizRepository
	questionRepo    repository.QuestionRepository
	attemptRepo     repository.AttemptRepository
	leaderboardRepo repository.LeaderboardRepository
	cacheRepo       repository.CacheRepository
	db              *gorm.DB
}

// NewParticipantService создает новый сервис участников
func NewParticipantService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	leaderboardRepo repository.LeaderboardRepository,
	cacheRepo repository.CacheRepository,
	db *gorm.DB,
) *ParticipantService {
	return &ParticipantService{
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		attemptRepo:     attemptRepo,
		leaderboardRepo: leaderboardRepo,
		cacheRepo:       cacheRepo,
		db:              db,
	}
}

// AnswerReview — проверенный ответ с текстом вопроса для ответа клиенту
type AnswerReview struct {
	QuestionID    uint    `json:"question_id"`
	QuestionText  string  `json:"question_text,omitempty"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer *string `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Explanation   *string `json:"explanation,omitempty"`
}

// SubmissionSummary — итог отправки ответов
type SubmissionSummary struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Answers        []AnswerReview `json:"evaluated_answers"`
	IsRetake       bool           `json:"is_retake"`
}

// JoinInfo — результат присоединения к викторине
type JoinInfo struct {
	Quiz           *entity.Quiz `json:"quiz"`
	IsFirstAttempt bool         `json:"is_first_attempt"`
	CanRetake      bool         `json:"can_retake"`
	PreviousScore  *int         `json:"previous_score,omitempty"`
}

// SubmitAnswers проверяет ответы участника, сохраняет попытку и обновляет
// таблицу лидеров. Сохранение попытки и обновление записи лидерборда
// выполняются в одной транзакции: частичная запись невозможна.
// Повторная отправка перезаписывает предыдущую попытку (last-write-wins).
func (s *ParticipantService) SubmitAnswers(participantID, quizID uint, answers []SubmittedAnswer, timeTakenMs int64) (*SubmissionSummary, error) {
	if timeTakenMs < 0 {
		return nil, fmt.Errorf("%w: timeTaken must be non-negative", apperrors.ErrValidation)
	}

	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", apperrors.ErrNotFound)
	}

	evaluated, score := EvaluateAnswers(questions, answers)

	// Определяем, повторная ли это попытка
	isRetake := false
	attempt := &entity.Attempt{
		ParticipantID: participantID,
		QuizID:        quizID,
	}
	existing, err := s.attemptRepo.GetByParticipantAndQuiz(participantID, quizID)
	if err == nil {
		isRetake = true
		attempt = existing
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	attempt.Answers = evaluated
	attempt.Score = score
	attempt.TimeTakenMs = timeTakenMs

	// Попытка и запись лидерборда фиксируются атомарно
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := s.attemptRepo.Save(tx, attempt); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	leaderboard, err := s.leaderboardRepo.GetOrCreate(tx, quizID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entry := &entity.LeaderboardEntry{
		LeaderboardID: leaderboard.ID,
		ParticipantID: participantID,
		Score:         score,
		TimeTakenMs:   timeTakenMs,
	}
	if err := s.leaderboardRepo.UpsertEntry(tx, entry); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	// Сбрасываем кеш лидерборда (некритично при ошибке)
	if s.cacheRepo != nil {
		if err := s.cacheRepo.Delete(leaderboardCacheKey(quizID)); err != nil {
			log.Printf("[ParticipantService] Не удалось сбросить кеш лидерборда quiz=%d: %v", quizID, err)
		}
	}

	log.Printf("[ParticipantService] Участник %d отправил ответы по викторине %d: score=%d/%d, retake=%t",
		participantID, quizID, score, len(questions), isRetake)

	return &SubmissionSummary{
		Score:          score,
		TotalQuestions: len(questions),
		Answers:        attachQuestionTexts(evaluated, questions),
		IsRetake:       isRetake,
	}, nil
}

// attachQuestionTexts дополняет проверенные ответы текстами вопросов,
// сохраняя порядок отправки
func attachQuestionTexts(evaluated entity.AnswerList, questions []entity.Question) []AnswerReview {
	textByID := make(map[uint]string, len(questions))
	for _, q := range questions {
		textByID[q.ID] = q.Text
	}

	reviews := make([]AnswerReview, 0, len(evaluated))
	for _, e := range evaluated {
		reviews = append(reviews, AnswerReview{
			QuestionID:    e.QuestionID,
			QuestionText:  textByID[e.QuestionID],
			UserAnswer:    e.UserAnswer,
			CorrectAnswer: e.CorrectAnswer,
			IsCorrect:     e.IsCorrect,
			Explanation:   e.Explanation,
		})
	}
	return reviews
}

// JoinPublicQuiz присоединяет участника к публичной викторине по ID.
// Если участник уже отправлял ответы, возвращает предложение повторной
// попытки с предыдущим счетом; иначе идемпотентно регистрирует участие.
func (s *ParticipantService) JoinPublicQuiz(participantID, quizID uint) (*JoinInfo, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Type != entity.QuizTypePublic {
		return nil, fmt.Errorf("%w: public quiz not found", apperrors.ErrNotFound)
	}

	return s.join(participantID, quiz)
}

// JoinPrivateQuiz присоединяет участника к приватной викторине по коду доступа
func (s *ParticipantService) JoinPrivateQuiz(participantID uint, quizCode string) (*JoinInfo, error) {
	quiz, err := s.quizRepo.GetByCode(quizCode)
	if err != nil {
		return nil, err
	}

	return s.join(participantID, quiz)
}

func (s *ParticipantService) join(participantID uint, quiz *entity.Quiz) (*JoinInfo, error) {
	attempt, err := s.attemptRepo.GetByParticipantAndQuiz(participantID, quiz.ID)
	if err == nil {
		// Уже проходил: предлагаем повторную попытку
		previousScore := attempt.Score
		return &JoinInfo{
			Quiz:          quiz,
			CanRetake:     true,
			PreviousScore: &previousScore,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Первое участие: регистрируем (повторный join — no-op, семантика множества)
	if err := s.quizRepo.AddParticipant(quiz.ID, participantID); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	return &JoinInfo{
		Quiz:           quiz,
		IsFirstAttempt: true,
	}, nil
}
