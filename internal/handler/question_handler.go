package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaker-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
	"github.com/yourusername/quizmaker-api/internal/service"
)

// QuestionHandler обрабатывает запросы, связанные с вопросами и пулом вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// QuestionRequest представляет один вопрос в запросе
type QuestionRequest struct {
	Type          string   `json:"type" binding:"required,oneof=mcq 'true/false' short-answer"`
	Text          string   `json:"text" binding:"required,min=3,max=500"`
	Options       []string `json:"options" binding:"omitempty,max=10"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=500"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=1000"`
}

func (r QuestionRequest) toInput() service.QuestionInput {
	return service.QuestionInput{
		Type:          r.Type,
		Text:          r.Text,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
	}
}

// AddQuestionsRequest представляет запрос на добавление вопросов в викторину
type AddQuestionsRequest struct {
	QuizID    uint              `json:"quiz_id" binding:"required"`
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions обрабатывает запрос на добавление вопросов к викторине
// POST /api/questions/create
func (h *QuestionHandler) AddQuestions(c *gin.Context) {
	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uint)

	inputs := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		inputs = append(inputs, q.toInput())
	}

	questions, err := h.questionService.AddQuestions(userID, req.QuizID, inputs)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	resp := make([]dto.QuestionResponse, len(questions))
	for i := range questions {
		resp[i] = dto.NewQuestionResponse(&questions[i], true)
	}
	c.JSON(http.StatusCreated, gin.H{"questions": resp})
}

// GetQuizQuestions возвращает вопросы викторины.
// Правильные ответы включаются только для создателя.
// GET /api/questions/quiz/:quizId
func (h *QuestionHandler) GetQuizQuestions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := c.MustGet("user_id").(uint)

	quiz, includeAnswers, err := h.questionService.GetQuizQuestions(userID, quizID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizWithQuestionsResponse(quiz, quiz.Questions, includeAnswers))
}

// UpdateQuestion обрабатывает запрос на обновление вопроса
// PUT /api/questions/update/:questionId
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	userID := c.MustGet("user_id").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.UpdateQuestion(userID, questionID, req.toInput())
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, true))
}

// DeleteQuestion обрабатывает запрос на удаление вопроса
// DELETE /api/questions/delete/:questionId
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	userID := c.MustGet("user_id").(uint)

	if err := h.questionService.DeleteQuestion(userID, questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// CreatePoolQuestion добавляет вопрос в личный пул пользователя
// POST /api/questions/pool/create
func (h *QuestionHandler) CreatePoolQuestion(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.CreatePoolQuestion(userID, req.toInput())
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewReusableQuestionResponse(question))
}

// GetPoolQuestions возвращает все вопросы пула пользователя
// GET /api/questions/pool
func (h *QuestionHandler) GetPoolQuestions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	result, err := h.questionService.GetPoolQuestions(userID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	questions := dto.NewListReusableQuestionResponse(result)
	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": len(questions)})
}

// SearchPoolQuestions ищет вопросы пула пользователя по тексту
// GET /api/questions/pool/search?query=...
func (h *QuestionHandler) SearchPoolQuestions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	result, err := h.questionService.SearchPoolQuestions(userID, c.Query("query"))
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	questions := dto.NewListReusableQuestionResponse(result)
	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": len(questions)})
}

// UpdatePoolQuestion обновляет вопрос пула
// PUT /api/questions/pool/update/:questionId
func (h *QuestionHandler) UpdatePoolQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	userID := c.MustGet("user_id").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.UpdatePoolQuestion(userID, questionID, req.toInput())
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReusableQuestionResponse(question))
}

// DeletePoolQuestion удаляет вопрос пула
// DELETE /api/questions/pool/delete/:questionId
func (h *QuestionHandler) DeletePoolQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	userID := c.MustGet("user_id").(uint)

	if err := h.questionService.DeletePoolQuestion(userID, questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pool question deleted successfully"})
}

// AddPoolQuestionsToQuizRequest представляет запрос на копирование вопросов из пула
type AddPoolQuestionsToQuizRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required,min=1"`
}

// AddPoolQuestionsToQuiz копирует вопросы из пула в викторину
// POST /api/questions/pool/add-to-quiz/:quizId
func (h *QuestionHandler) AddPoolQuestionsToQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := c.MustGet("user_id").(uint)

	var req AddPoolQuestionsToQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := h.questionService.AddPoolQuestionsToQuiz(userID, quizID, req.QuestionIDs)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}

	resp := make([]dto.QuestionResponse, len(questions))
	for i := range questions {
		resp[i] = dto.NewQuestionResponse(&questions[i], true)
	}
	c.JSON(http.StatusCreated, gin.H{"questions": resp})
}

// handleQuestionError обрабатывает ошибки сервиса вопросов
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
