package service

import (
	"log"
	"sort"

	"github.com/yourusername/quizmaker-api/internal/domain/entity"
	"github.com/yourusername/quizmaker-api/internal/domain/repository"
)

// AnalyticsService агрегирует статистику по викторине:
// результаты участников и самые проваливаемые вопросы
type AnalyticsService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	userRepo     repository.UserRepository
}

// NewAnalyticsService создает новый сервис аналитики
func NewAnalyticsService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
) *AnalyticsService {
	return &AnalyticsService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
	}
}

// ParticipantPerformance — результаты одного участника
type ParticipantPerformance struct {
	ParticipantID    uint   `json:"participant_id"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
	Score            int    `json:"score"`
	TotalQuestions   int    `json:"total_questions"`
	TimeTakenMs      int64  `json:"time_taken_ms"`
	CorrectAnswers   int    `json:"correct_answers"`
	IncorrectAnswers int    `json:"incorrect_answers"`
}

// MissedQuestion — вопрос с количеством неверных ответов на него
type MissedQuestion struct {
	QuestionID    uint   `json:"question_id"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	MissCount     int    `json:"miss_count"`
}

// QuizAnalytics — сводная аналитика викторины
type QuizAnalytics struct {
	Quiz                QuizSummary              `json:"quiz"`
	Message             string                   `json:"message,omitempty"`
	Performance         []ParticipantPerformance `json:"performance"`
	MostMissedQuestions []MissedQuestion         `json:"most_missed_questions"`
}

// GetQuizAnalytics возвращает аналитику по викторине.
// При отсутствии попыток возвращается пустая сводка с сообщением (не ошибка).
// Ссылки на удаленные вопросы в старых попытках пропускаются с логированием.
func (s *AnalyticsService) GetQuizAnalytics(quizID uint) (*QuizAnalytics, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	quizSummary := QuizSummary{ID: quiz.ID, Name: quiz.Name}

	attempts, err := s.attemptRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return &QuizAnalytics{
			Quiz:                quizSummary,
			Message:             "No attempts yet for this quiz",
			Performance:         []ParticipantPerformance{},
			MostMissedQuestions: []MissedQuestion{},
		}, nil
	}

	questions, err := s.questionRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, err
	}
	questionByID := make(map[uint]entity.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	// Имена и email участников
	ids := make([]uint, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.ParticipantID)
	}
	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	type userInfo struct{ name, email string }
	userByID := make(map[uint]userInfo, len(users))
	for _, u := range users {
		userByID[u.ID] = userInfo{name: u.Name, email: u.Email}
	}

	performance := make([]ParticipantPerformance, 0, len(attempts))
	missCount := make(map[uint]int)

	for _, attempt := range attempts {
		info := userByID[attempt.ParticipantID]
		performance = append(performance, ParticipantPerformance{
			ParticipantID:    attempt.ParticipantID,
			ParticipantName:  info.name,
			ParticipantEmail: info.email,
			Score:            attempt.Score,
			TotalQuestions:   len(attempt.Answers),
			TimeTakenMs:      attempt.TimeTakenMs,
			CorrectAnswers:   attempt.CorrectCount(),
			IncorrectAnswers: attempt.IncorrectCount(),
		})

		for _, answer := range attempt.Answers {
			if !answer.IsCorrect {
				missCount[answer.QuestionID]++
			}
		}
	}

	mostMissed := make([]MissedQuestion, 0, len(missCount))
	for questionID, count := range missCount {
		question, ok := questionByID[questionID]
		if !ok {
			// Вопрос был удален после прохождений — пропускаем
			log.Printf("[AnalyticsService] Пропущен несуществующий вопрос ID=%d в статистике викторины %d", questionID, quizID)
			continue
		}
		explanation := question.Explanation
		if explanation == "" {
			explanation = "No explanation available"
		}
		mostMissed = append(mostMissed, MissedQuestion{
			QuestionID:    questionID,
			Text:          question.Text,
			CorrectAnswer: question.CorrectAnswer,
			Explanation:   explanation,
			MissCount:     count,
		})
	}

	// По убыванию ошибок; при равенстве — по ID вопроса для детерминизма
	sort.Slice(mostMissed, func(i, j int) bool {
		if mostMissed[i].MissCount != mostMissed[j].MissCount {
			return mostMissed[i].MissCount > mostMissed[j].MissCount
		}
		return mostMissed[i].QuestionID < mostMissed[j].QuestionID
	})

	return &QuizAnalytics{
		Quiz:                quizSummary,
		Performance:         performance,
		MostMissedQuestions: mostMissed,
	}, nil
}
