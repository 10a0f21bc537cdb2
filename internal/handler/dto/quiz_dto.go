package dto

import (
	"time"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// CorrectAnswer и Explanation заполняются только для создателя викторины.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	QuizID        uint      `json:"quiz_id"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID               uint               `json:"id"`
	Name             string             `json:"name"`
	Type             string             `json:"type"`
	Code             string             `json:"code,omitempty"`
	CreatorID        uint               `json:"creator_id"`
	TimerMode        string             `json:"timer_mode"`
	TimerDurationSec int                `json:"timer_duration_sec"`
	QuestionCount    int                `json:"question_count,omitempty"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// NewQuestionResponse создает DTO для вопроса.
// При includeAnswer=false правильный ответ и объяснение скрываются.
func NewQuestionResponse(q *entity.Question, includeAnswer bool) QuestionResponse {
	resp := QuestionResponse{
		ID:        q.ID,
		QuizID:    q.QuizID,
		Type:      q.Type,
		Text:      q.Text,
		Options:   []string(q.Options),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
	if includeAnswer {
		resp.CorrectAnswer = q.CorrectAnswer
		resp.Explanation = q.Explanation
	}
	return resp
}

// NewQuizResponse создает DTO для викторины.
// Код доступа включается только при includeCode=true (создатель или участник,
// прошедший проверку кода).
func NewQuizResponse(quiz *entity.Quiz, includeCode bool) *QuizResponse {
	if quiz == nil {
		return nil
	}

	resp := &QuizResponse{
		ID:               quiz.ID,
		Name:             quiz.Name,
		Type:             quiz.Type,
		CreatorID:        quiz.CreatorID,
		TimerMode:        quiz.TimerMode,
		TimerDurationSec: quiz.TimerDurationSec,
		QuestionCount:    len(quiz.Questions),
		CreatedAt:        quiz.CreatedAt,
		UpdatedAt:        quiz.UpdatedAt,
	}
	if includeCode || !quiz.IsPrivate() {
		resp.Code = quiz.Code
	}
	return resp
}

// NewQuizWithQuestionsResponse создает DTO викторины вместе с вопросами
func NewQuizWithQuestionsResponse(quiz *entity.Quiz, questions []entity.Question, includeAnswers bool) *QuizResponse {
	resp := NewQuizResponse(quiz, includeAnswers)
	if resp == nil {
		return nil
	}

	resp.QuestionCount = len(questions)
	resp.Questions = make([]QuestionResponse, len(questions))
	for i := range questions {
		resp.Questions[i] = NewQuestionResponse(&questions[i], includeAnswers)
	}
	return resp
}

// NewListQuizResponse создает слайс DTO для списка викторин
func NewListQuizResponse(quizzes []entity.Quiz) []*QuizResponse {
	list := make([]*QuizResponse, len(quizzes))
	for i := range quizzes {
		// Коды в списках не раскрываем
		list[i] = NewQuizResponse(&quizzes[i], false)
	}
	return list
}

// ReusableQuestionResponse представляет вопрос личного пула создателя.
// Пул виден только владельцу, поэтому правильный ответ не скрывается.
type ReusableQuestionResponse struct {
	ID            uint      `json:"id"`
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewReusableQuestionResponse создает DTO для вопроса пула
func NewReusableQuestionResponse(q *entity.ReusableQuestion) ReusableQuestionResponse {
	return ReusableQuestionResponse{
		ID:            q.ID,
		Type:          q.Type,
		Text:          q.Text,
		Options:       []string(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

// NewListReusableQuestionResponse создает слайс DTO для вопросов пула
func NewListReusableQuestionResponse(questions []entity.ReusableQuestion) []ReusableQuestionResponse {
	list := make([]ReusableQuestionResponse, len(questions))
	for i := range questions {
		list[i] = NewReusableQuestionResponse(&questions[i])
	}
	return list
}
