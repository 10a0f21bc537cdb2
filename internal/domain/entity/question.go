package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Типы вопросов
const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeTrueFalse   = "true/false"
	QuestionTypeShortAnswer = "short-answer"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос викторины
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	QuizID        uint        `gorm:"not null;index" json:"quiz_id"`
	Type          string      `gorm:"size:20;not null;default:'mcq'" json:"type"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer string      `gorm:"size:500;not null" json:"-"` // Скрыто от участников
	Explanation   string      `gorm:"size:1000;not null;default:''" json:"explanation,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// NormalizeAnswer приводит ответ к канонической форме для сравнения.
// Обрезаются только краевые пробелы; регистр и внутренние пробелы значимы.
func NormalizeAnswer(answer string) string {
	return strings.TrimSpace(answer)
}

// CheckAnswer сравнивает ответ участника с правильным (с учетом регистра)
func (q *Question) CheckAnswer(userAnswer string) bool {
	return NormalizeAnswer(userAnswer) == NormalizeAnswer(q.CorrectAnswer)
}

// IsValidType проверяет, что тип вопроса поддерживается
func IsValidQuestionType(questionType string) bool {
	switch questionType {
	case QuestionTypeMCQ, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}
