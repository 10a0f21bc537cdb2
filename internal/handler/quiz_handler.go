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

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuizRequest представляет запрос на создание викторины
type CreateQuizRequest struct {
	Name             string `json:"name" binding:"required,min=3,max=100"`
	Type             string `json:"type" binding:"required,oneof=public private"`
	TimerMode        string `json:"timer_mode" binding:"omitempty,oneof=overall per-question"`
	TimerDurationSec int    `json:"timer_duration_sec" binding:"omitempty,min=0"`
}

// CreateQuiz обрабатывает запрос на создание викторины
// POST /api/quizzes/create
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uint)

	quiz, err := h.quizService.CreateQuiz(userID, service.CreateQuizInput{
		Name:             req.Name,
		Type:             req.Type,
		TimerMode:        req.TimerMode,
		TimerDurationSec: req.TimerDurationSec,
	})
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	// Создатель видит код доступа сразу в ответе
	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, true))
}

// GetQuiz возвращает информацию о викторине
// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint) // Получаем из контекста
	userID := c.MustGet("user_id").(uint)

	quiz, err := h.quizService.GetQuizByID(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, quiz.IsCreator(userID)))
}

// GetAllQuizzes возвращает список публичных викторин
// GET /api/quizzes/getAllQuizzes
func (h *QuizHandler) GetAllQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.GetPublicQuizzes()
	if err != nil {
		log.Printf("[QuizHandler] Ошибка при получении публичных викторин: %v", err)
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListQuizResponse(quizzes))
}

// GetUserQuizzes возвращает викторины текущего пользователя
// GET /api/quizzes/user-quizzes
func (h *QuizHandler) GetUserQuizzes(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	quizzes, err := h.quizService.GetQuizzesByCreator(userID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	// Создатель видит коды своих приватных викторин
	list := make([]*dto.QuizResponse, len(quizzes))
	for i := range quizzes {
		list[i] = dto.NewQuizResponse(&quizzes[i], true)
	}
	c.JSON(http.StatusOK, list)
}

// SearchQuizzes ищет публичные викторины по имени
// GET /api/quizzes/searchQuizzes?name=...
func (h *QuizHandler) SearchQuizzes(c *gin.Context) {
	name := c.Query("name")

	quizzes, err := h.quizService.SearchQuizzes(name)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListQuizResponse(quizzes))
}

// UpdateQuizRequest представляет запрос на обновление викторины
type UpdateQuizRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=3,max=100"`
	TimerMode        *string `json:"timer_mode" binding:"omitempty,oneof=overall per-question"`
	TimerDurationSec *int    `json:"timer_duration_sec" binding:"omitempty,min=0"`
}

// UpdateQuiz обрабатывает запрос на обновление викторины
// PUT /api/quizzes/update/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := c.MustGet("user_id").(uint)

	var req UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.UpdateQuiz(userID, quizID, service.UpdateQuizInput{
		Name:             req.Name,
		TimerMode:        req.TimerMode,
		TimerDurationSec: req.TimerDurationSec,
	})
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true))
}

// DeleteQuiz обрабатывает запрос на удаление викторины
// DELETE /api/quizzes/delete/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := c.MustGet("user_id").(uint)

	if err := h.quizService.DeleteQuiz(userID, quizID); err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

// handleQuizError обрабатывает ошибки от сервисов викторин и отправляет соответствующий HTTP ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
