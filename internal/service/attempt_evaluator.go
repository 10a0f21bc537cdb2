package service

import (
	"log"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
)

// SubmittedAnswer представляет сырой ответ участника на один вопрос
type SubmittedAnswer struct {
	QuestionID uint   `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

// EvaluateAnswers проверяет ответы участника против вопросов викторины.
// Возвращает проверенные ответы (в порядке отправки) и счет — количество правильных.
//
// Правила проверки:
//   - ответ и эталон сравниваются после обрезки краевых пробелов, с учетом регистра;
//   - ответ на несуществующий вопрос засчитывается как неверный (CorrectAnswer
//     и Explanation остаются nil), проверка остальных продолжается;
//   - пояснение прикладывается только к неверным ответам.
func EvaluateAnswers(questions []entity.Question, answers []SubmittedAnswer) (entity.AnswerList, int) {
	questionByID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}

	evaluated := make(entity.AnswerList, 0, len(answers))
	score := 0

	for _, answer := range answers {
		question, ok := questionByID[answer.QuestionID]
		if !ok {
			log.Printf("[AttemptEvaluator] Ответ на несуществующий вопрос ID=%d, засчитан как неверный", answer.QuestionID)
			evaluated = append(evaluated, entity.EvaluatedAnswer{
				QuestionID: answer.QuestionID,
				UserAnswer: answer.UserAnswer,
				IsCorrect:  false,
			})
			continue
		}

		isCorrect := question.CheckAnswer(answer.UserAnswer)
		if isCorrect {
			score++
		}

		correctAnswer := question.CorrectAnswer
		result := entity.EvaluatedAnswer{
			QuestionID:    answer.QuestionID,
			UserAnswer:    answer.UserAnswer,
			CorrectAnswer: &correctAnswer,
			IsCorrect:     isCorrect,
		}
		if !isCorrect && question.Explanation != "" {
			explanation := question.Explanation
			result.Explanation = &explanation
		}

		evaluated = append(evaluated, result)
	}

	return evaluated, score
}
