package entity

import (
	"sort"
	"time"
)

// Leaderboard представляет таблицу лидеров викторины.
// Создается лениво при первой отправке ответов. Позиции (ранги) никогда
// не хранятся — порядок вычисляется при чтении через SortedEntries.
type Leaderboard struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	QuizID    uint               `gorm:"not null;uniqueIndex" json:"quiz_id"`
	Entries   []LeaderboardEntry `gorm:"foreignKey:LeaderboardID" json:"entries"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Leaderboard) TableName() string {
	return "leaderboards"
}

// LeaderboardEntry представляет строку таблицы лидеров: одна запись на
// участника, всегда отражает его последнюю попытку.
type LeaderboardEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	LeaderboardID uint      `gorm:"not null;index;uniqueIndex:idx_leaderboard_participant" json:"leaderboard_id"`
	ParticipantID uint      `gorm:"not null;uniqueIndex:idx_leaderboard_participant" json:"participant_id"`
	Score         int       `gorm:"not null;default:0" json:"score"`
	TimeTakenMs   int64     `gorm:"not null;default:0" json:"time_taken_ms"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}

// SortedEntries возвращает записи, отсортированные по убыванию счета,
// при равенстве счета — по возрастанию затраченного времени.
// Сортировка стабильна: полные ничьи сохраняют исходный порядок.
func (l *Leaderboard) SortedEntries() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(l.Entries))
	copy(entries, l.Entries)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimeTakenMs < entries[j].TimeTakenMs
	})

	return entries
}
