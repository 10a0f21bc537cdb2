package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
	"github.com/yourusername/quizmaker-api/internal/service"
)

// AnalyticsHandler обрабатывает запросы аналитики викторин
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	quizService      *service.QuizService
}

// NewAnalyticsHandler создает новый обработчик аналитики
func NewAnalyticsHandler(
	analyticsService *service.AnalyticsService,
	quizService *service.QuizService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		quizService:      quizService,
	}
}

// GetQuizAnalytics возвращает аналитику викторины.
// Доступно только создателю викторины.
// GET /api/analytics/quiz/:quizId
func (h *AnalyticsHandler) GetQuizAnalytics(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := c.MustGet("user_id").(uint)

	quiz, err := h.quizService.GetQuizByID(quizID)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}
	if !quiz.IsCreator(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can view quiz analytics"})
		return
	}

	analytics, err := h.analyticsService.GetQuizAnalytics(quizID)
	if err != nil {
		h.handleAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// handleAnalyticsError обрабатывает ошибки сервиса аналитики
func (h *AnalyticsHandler) handleAnalyticsError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AnalyticsHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
