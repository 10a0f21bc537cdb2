package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	"github.com/yourusername/quizmaker-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
)

// QuestionService управляет вопросами викторин и личным пулом вопросов создателя
type QuestionService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	reusableRepo repository.ReusableQuestionRepository
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	reusableRepo repository.ReusableQuestionRepository,
) *QuestionService {
	return &QuestionService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		reusableRepo: reusableRepo,
	}
}

// QuestionInput содержит данные одного вопроса
type QuestionInput struct {
	Type          string
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

// validateQuestionInput проверяет вопрос по его типу:
// mcq требует минимум 2 варианта, true/false — ответ "true" или "false",
// short-answer — без вариантов
func validateQuestionInput(q QuestionInput) error {
	if !entity.IsValidQuestionType(q.Type) {
		return fmt.Errorf("%w: unsupported question type %q", apperrors.ErrValidation, q.Type)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("%w: correct answer is required", apperrors.ErrValidation)
	}

	switch q.Type {
	case entity.QuestionTypeMCQ:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: mcq question requires at least 2 options", apperrors.ErrValidation)
		}
	case entity.QuestionTypeTrueFalse:
		answer := entity.NormalizeAnswer(q.CorrectAnswer)
		if answer != "true" && answer != "false" {
			return fmt.Errorf("%w: true/false answer must be \"true\" or \"false\"", apperrors.ErrValidation)
		}
	case entity.QuestionTypeShortAnswer:
		if len(q.Options) > 0 {
			return fmt.Errorf("%w: short-answer question must not have options", apperrors.ErrValidation)
		}
	}
	return nil
}

// AddQuestions добавляет пакет вопросов в викторину. Разрешено только создателю.
func (s *QuestionService) AddQuestions(userID, quizID uint, inputs []QuestionInput) ([]entity.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}

	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(userID) {
		return nil, fmt.Errorf("%w: only the creator can add questions", apperrors.ErrForbidden)
	}

	questions := make([]entity.Question, 0, len(inputs))
	for i, input := range inputs {
		if err := validateQuestionInput(input); err != nil {
			return nil, fmt.Errorf("question #%d: %w", i+1, err)
		}
		questions = append(questions, entity.Question{
			QuizID:        quizID,
			Type:          input.Type,
			Text:          strings.TrimSpace(input.Text),
			Options:       entity.StringArray(input.Options),
			CorrectAnswer: input.CorrectAnswer,
			Explanation:   input.Explanation,
		})
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}

	log.Printf("[QuestionService] Добавлено %d вопросов в викторину %d", len(questions), quizID)
	return questions, nil
}

// GetQuizQuestions возвращает викторину с вопросами.
// Второе возвращаемое значение — можно ли показывать правильные ответы
// (true только для создателя).
func (s *QuestionService) GetQuizQuestions(userID, quizID uint) (*entity.Quiz, bool, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, false, err
	}
	return quiz, quiz.IsCreator(userID), nil
}

// UpdateQuestion обновляет вопрос. Разрешено только создателю викторины.
func (s *QuestionService) UpdateQuestion(userID, questionID uint, input QuestionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.GetByID(question.QuizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(userID) {
		return nil, fmt.Errorf("%w: only the quiz creator can update questions", apperrors.ErrForbidden)
	}

	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question.Type = input.Type
	question.Text = strings.TrimSpace(input.Text)
	question.Options = entity.StringArray(input.Options)
	question.CorrectAnswer = input.CorrectAnswer
	question.Explanation = input.Explanation

	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос. Разрешено только создателю викторины.
func (s *QuestionService) DeleteQuestion(userID, questionID uint) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}

	quiz, err := s.quizRepo.GetByID(question.QuizID)
	if err != nil {
		return err
	}
	if !quiz.IsCreator(userID) {
		return fmt.Errorf("%w: only the quiz creator can delete questions", apperrors.ErrForbidden)
	}

	return s.questionRepo.Delete(questionID)
}

// ============================================================================
// Пул переиспользуемых вопросов
// ============================================================================

// CreatePoolQuestion добавляет вопрос в личный пул пользователя
func (s *QuestionService) CreatePoolQuestion(userID uint, input QuestionInput) (*entity.ReusableQuestion, error) {
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question := &entity.ReusableQuestion{
		CreatorID:     userID,
		Type:          input.Type,
		Text:          strings.TrimSpace(input.Text),
		Options:       entity.StringArray(input.Options),
		CorrectAnswer: input.CorrectAnswer,
		Explanation:   input.Explanation,
	}
	if err := s.reusableRepo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

// GetPoolQuestions возвращает все вопросы пула пользователя
func (s *QuestionService) GetPoolQuestions(userID uint) ([]entity.ReusableQuestion, error) {
	return s.reusableRepo.GetByCreator(userID)
}

// SearchPoolQuestions ищет вопросы пула пользователя по тексту
func (s *QuestionService) SearchPoolQuestions(userID uint, query string) ([]entity.ReusableQuestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", apperrors.ErrValidation)
	}
	return s.reusableRepo.Search(userID, query)
}

// UpdatePoolQuestion обновляет вопрос пула. Разрешено только владельцу.
func (s *QuestionService) UpdatePoolQuestion(userID, questionID uint, input QuestionInput) (*entity.ReusableQuestion, error) {
	question, err := s.reusableRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if question.CreatorID != userID {
		return nil, fmt.Errorf("%w: only the owner can update pool questions", apperrors.ErrForbidden)
	}

	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question.Type = input.Type
	question.Text = strings.TrimSpace(input.Text)
	question.Options = entity.StringArray(input.Options)
	question.CorrectAnswer = input.CorrectAnswer
	question.Explanation = input.Explanation

	if err := s.reusableRepo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeletePoolQuestion удаляет вопрос пула. Разрешено только владельцу.
func (s *QuestionService) DeletePoolQuestion(userID, questionID uint) error {
	question, err := s.reusableRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if question.CreatorID != userID {
		return fmt.Errorf("%w: only the owner can delete pool questions", apperrors.ErrForbidden)
	}
	return s.reusableRepo.Delete(questionID)
}

// AddPoolQuestionsToQuiz копирует вопросы из пула пользователя в его викторину.
// Чужие или несуществующие ID отклоняются целиком (ничего не копируется).
func (s *QuestionService) AddPoolQuestionsToQuiz(userID, quizID uint, questionIDs []uint) ([]entity.Question, error) {
	if len(questionIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one question id is required", apperrors.ErrValidation)
	}

	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(userID) {
		return nil, fmt.Errorf("%w: only the creator can add questions", apperrors.ErrForbidden)
	}

	poolQuestions, err := s.reusableRepo.GetByIDs(questionIDs)
	if err != nil {
		return nil, err
	}

	found := make(map[uint]*entity.ReusableQuestion, len(poolQuestions))
	for i := range poolQuestions {
		if poolQuestions[i].CreatorID != userID {
			return nil, fmt.Errorf("%w: pool question %d does not belong to you", apperrors.ErrForbidden, poolQuestions[i].ID)
		}
		found[poolQuestions[i].ID] = &poolQuestions[i]
	}

	questions := make([]entity.Question, 0, len(questionIDs))
	for _, id := range questionIDs {
		pq, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: pool question %d not found", apperrors.ErrNotFound, id)
		}
		questions = append(questions, pq.ToQuizQuestion(quizID))
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}

	log.Printf("[QuestionService] Скопировано %d вопросов из пула в викторину %d", len(questions), quizID)
	return questions, nil
}
