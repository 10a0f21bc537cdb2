package entity

import (
	"time"
)

// ReusableQuestion представляет вопрос из личного пула создателя.
// В отличие от Question, он привязан к пользователю, а не к викторине,
// и может быть скопирован в любую его викторину.
type ReusableQuestion struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CreatorID     uint        `gorm:"not null;index" json:"creator_id"`
	Type          string      `gorm:"size:20;not null;default:'mcq'" json:"type"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer string      `gorm:"size:500;not null" json:"correct_answer"`
	Explanation   string      `gorm:"size:1000;not null;default:''" json:"explanation,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ReusableQuestion) TableName() string {
	return "reusable_questions"
}

// ToQuizQuestion копирует вопрос из пула в вопрос конкретной викторины
func (rq *ReusableQuestion) ToQuizQuestion(quizID uint) Question {
	return Question{
		QuizID:        quizID,
		Type:          rq.Type,
		Text:          rq.Text,
		Options:       rq.Options,
		CorrectAnswer: rq.CorrectAnswer,
		Explanation:   rq.Explanation,
	}
}
