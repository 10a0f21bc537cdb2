package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/yourusername/quizmaker-api/internal/pkg/errors"
	"github.com/yourusername/quizmaker-api/internal/service"
)

// ParticipantHandler обрабатывает участие в викторинах:
// присоединение, отправку ответов и таблицы лидеров
type ParticipantHandler struct {
	participantService *service.ParticipantService
	leaderboardService *service.LeaderboardService
}

// NewParticipantHandler создает новый обработчик участников
func NewParticipantHandler(
	participantService *service.ParticipantService,
	leaderboardService *service.LeaderboardService,
) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		leaderboardService: leaderboardService,
	}
}

// SubmittedAnswerRequest представляет один ответ участника
type SubmittedAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	UserAnswer string `json:"userAnswer"`
}

// SubmitAnswersRequest представляет запрос на отправку ответов
type SubmitAnswersRequest struct {
	QuizID      uint                     `json:"quizId" binding:"required"`
	Answers     []SubmittedAnswerRequest `json:"answers" binding:"required,dive"`
	TimeTakenMs int64                    `json:"timeTaken"`
}

// SubmitAnswers обрабатывает отправку ответов участником
// POST /api/participants/submit
func (h *ParticipantHandler) SubmitAnswers(c *gin.Context) {
	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uint)

	answers := make([]service.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.SubmittedAnswer{
			QuestionID: a.QuestionID,
			UserAnswer: a.UserAnswer,
		})
	}

	summary, err := h.participantService.SubmitAnswers(userID, req.QuizID, answers, req.TimeTakenMs)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// JoinPublicQuiz присоединяет участника к публичной викторине
// POST /api/participants/join-public-quiz/:quizId
func (h *ParticipantHandler) JoinPublicQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := c.MustGet("user_id").(uint)

	info, err := h.participantService.JoinPublicQuiz(userID, quizID)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// JoinPrivateQuizRequest представляет запрос на вход в приватную викторину
type JoinPrivateQuizRequest struct {
	QuizCode string `json:"quizCode" binding:"required,min=6,max=20"`
}

// JoinPrivateQuiz присоединяет участника к приватной викторине по коду
// POST /api/participants/join-private-quiz
func (h *ParticipantHandler) JoinPrivateQuiz(c *gin.Context) {
	var req JoinPrivateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uint)

	info, err := h.participantService.JoinPrivateQuiz(userID, req.QuizCode)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetLeaderboard возвращает таблицу лидеров викторины
// GET /api/participants/getLeaderboard/:quizId
func (h *ParticipantHandler) GetLeaderboard(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	leaderboard, err := h.leaderboardService.GetQuizLeaderboard(quizID)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quiz":        leaderboard.Quiz,
		"leaderboard": leaderboard.Rows,
		"total":       len(leaderboard.Rows),
	})
}

// ExportLeaderboard экспортирует таблицу лидеров в CSV или Excel формате
// GET /api/participants/getLeaderboard/:quizId/export?format=csv|xlsx
func (h *ParticipantHandler) ExportLeaderboard(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	format := c.DefaultQuery("format", "csv")

	leaderboard, err := h.leaderboardService.GetQuizLeaderboard(quizID)
	if err != nil {
		h.handleParticipantError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_%d_leaderboard_%s", quizID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, leaderboard.Rows, filename)
	default:
		h.exportCSV(c, leaderboard.Rows, filename)
	}
}

// exportCSV экспортирует лидерборд в CSV с правильным экранированием спецсимволов
func (h *ParticipantHandler) exportCSV(c *gin.Context, rows []service.LeaderboardRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Rank", "Participant", "Score", "Time (ms)"})

	for _, r := range rows {
		writer.Write([]string{
			strconv.Itoa(r.Rank),
			sanitizeForExcel(r.ParticipantName),
			strconv.Itoa(r.Score),
			strconv.FormatInt(r.TimeTakenMs, 10),
		})
	}
}

// exportXLSX экспортирует лидерборд в Excel с использованием StreamWriter
func (h *ParticipantHandler) exportXLSX(c *gin.Context, rows []service.LeaderboardRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leaderboard"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ParticipantHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Rank", "Participant", "Score", "Time (ms)"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ParticipantHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{r.Rank, sanitizeForExcel(r.ParticipantName), r.Score, r.TimeTakenMs}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ParticipantHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ParticipantHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ParticipantHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleParticipantError обрабатывает ошибки сервисов участия
func (h *ParticipantHandler) handleParticipantError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ParticipantHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
