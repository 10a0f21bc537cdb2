package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// EvaluatedAnswer представляет один проверенный ответ участника.
// CorrectAnswer и Explanation — указатели: для ответа на несуществующий
// вопрос они остаются nil, а пояснение заполняется только при неверном ответе.
type EvaluatedAnswer struct {
	QuestionID    uint    `json:"question_id"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer *string `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
	Explanation   *string `json:"explanation,omitempty"`
}

// AnswerList - пользовательский тип для хранения проверенных ответов в JSONB
type AnswerList []EvaluatedAnswer

// Scan реализует интерфейс sql.Scanner для AnswerList
func (a *AnswerList) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = AnswerList{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для AnswerList
func (a AnswerList) Value() (driver.Value, error) {
	if a == nil || len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Attempt представляет попытку прохождения викторины.
// На пару (участник, викторина) существует максимум одна запись:
// повторная отправка перезаписывает ответы, счет и время.
type Attempt struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ParticipantID uint       `gorm:"not null;index;uniqueIndex:idx_attempt_participant_quiz" json:"participant_id"`
	QuizID        uint       `gorm:"not null;index;uniqueIndex:idx_attempt_participant_quiz" json:"quiz_id"`
	Answers       AnswerList `gorm:"type:jsonb;not null" json:"answers"`
	Score         int        `gorm:"not null;default:0" json:"score"`
	TimeTakenMs   int64      `gorm:"not null;default:0" json:"time_taken_ms"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// CorrectCount возвращает количество правильных ответов в попытке
func (at *Attempt) CorrectCount() int {
	count := 0
	for _, a := range at.Answers {
		if a.IsCorrect {
			count++
		}
	}
	return count
}

// IncorrectCount возвращает количество неправильных ответов в попытке
func (at *Attempt) IncorrectCount() int {
	return len(at.Answers) - at.CorrectCount()
}
