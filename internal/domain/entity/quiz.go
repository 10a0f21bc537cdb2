package entity

import (
	"time"
)

// Типы викторин
const (
	QuizTypePublic  = "public"
	QuizTypePrivate = "private"
)

// PublicQuizCode — фиксированный код для публичных викторин.
// Реальный код доступа генерируется только для приватных.
const PublicQuizCode = "public"

// Режимы таймера
const (
	TimerModeOverall     = "overall"
	TimerModePerQuestion = "per-question"
)

// Quiz представляет викторину
type Quiz struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:100;not null" json:"name"`
	Type             string     `gorm:"size:10;not null;default:'public';index" json:"type"`
	Code             string     `gorm:"size:20;not null;index" json:"code"`
	CreatorID        uint       `gorm:"not null;index" json:"creator_id"`
	TimerMode        string     `gorm:"size:20;not null;default:'overall'" json:"timer_mode"`
	TimerDurationSec int        `gorm:"not null;default:0" json:"timer_duration_sec"`
	Questions        []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	Participants     []User     `gorm:"many2many:quiz_participants" json:"participants,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsPrivate проверяет, является ли викторина приватной
func (q *Quiz) IsPrivate() bool {
	return q.Type == QuizTypePrivate
}

// IsCreator проверяет, является ли пользователь создателем викторины
func (q *Quiz) IsCreator(userID uint) bool {
	return q.CreatorID == userID
}

// HasParticipant проверяет, зарегистрирован ли участник (по предзагруженному списку)
func (q *Quiz) HasParticipant(userID uint) bool {
	for _, p := range q.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
