package domain

import (
	"math"
	"slices"
	"time"
)

// Progress is the per-account study aggregate. There is exactly one per account.
type Progress struct {
	AccountID          string                   `json:"account_id"`
	QuestionsAnswered  int                      `json:"questions_answered"`
	QuestionsCorrect   int                      `json:"questions_correct"`
	CurrentStreak      int                      `json:"current_streak"`
	LongestStreak      int                      `json:"longest_streak"`
	StudyTime          int64                    `json:"study_time"` // seconds
	StudyGoal          int                      `json:"study_goal"` // questions per day, 0 when unset
	CategoriesProgress map[string]CategoryStats `json:"categories_progress"`
	FlaggedQuestions   []string                 `json:"flagged_questions"`
	MasteredQuestions  []string                 `json:"mastered_questions"`
	WeakAreas          []string                 `json:"weak_areas"`
	DailyProgress      []DailySnapshot          `json:"daily_progress"`
	LastStudyDate      *time.Time               `json:"last_study_date"`
	CreatedAt          time.Time                `json:"created_at"`
	LastUpdated        time.Time                `json:"last_updated"`
}

// CategoryStats counts answers within one question category
type CategoryStats struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// DailySnapshot is one day of study activity. Date is YYYY-MM-DD.
type DailySnapshot struct {
	Date              string `json:"date"`
	QuestionsAnswered int    `json:"questions_answered"`
	QuestionsCorrect  int    `json:"questions_correct"`
	StudyTime         int64  `json:"study_time"`
}

// NewProgress returns the zeroed record created alongside a new account
func NewProgress(accountID string, now time.Time) *Progress {
	return &Progress{
		AccountID:          accountID,
		CategoriesProgress: map[string]CategoryStats{},
		FlaggedQuestions:   []string{},
		MasteredQuestions:  []string{},
		WeakAreas:          []string{},
		DailyProgress:      []DailySnapshot{},
		CreatedAt:          now,
		LastUpdated:        now,
	}
}

// ProgressPatch is a partial progress update. Present fields replace the
// stored value as a whole; nothing is accumulated.
type ProgressPatch struct {
	QuestionsAnswered  *int                      `json:"questions_answered,omitempty"`
	QuestionsCorrect   *int                      `json:"questions_correct,omitempty"`
	CurrentStreak      *int                      `json:"current_streak,omitempty"`
	LongestStreak      *int                      `json:"longest_streak,omitempty"`
	StudyTime          *int64                    `json:"study_time,omitempty"`
	StudyGoal          *int                      `json:"study_goal,omitempty"`
	CategoriesProgress *map[string]CategoryStats `json:"categories_progress,omitempty"`
	FlaggedQuestions   *[]string                 `json:"flagged_questions,omitempty"`
	MasteredQuestions  *[]string                 `json:"mastered_questions,omitempty"`
	WeakAreas          *[]string                 `json:"weak_areas,omitempty"`
	DailyProgress      *[]DailySnapshot          `json:"daily_progress,omitempty"`
	LastStudyDate      *time.Time                `json:"last_study_date,omitempty"`
}

// Apply merges the patch onto p
func (patch ProgressPatch) Apply(p *Progress) {
	if patch.QuestionsAnswered != nil {
		p.QuestionsAnswered = *patch.QuestionsAnswered
	}
	if patch.QuestionsCorrect != nil {
		p.QuestionsCorrect = *patch.QuestionsCorrect
	}
	if patch.CurrentStreak != nil {
		p.CurrentStreak = *patch.CurrentStreak
	}
	if patch.LongestStreak != nil {
		p.LongestStreak = *patch.LongestStreak
	}
	if patch.StudyTime != nil {
		p.StudyTime = *patch.StudyTime
	}
	if patch.StudyGoal != nil {
		p.StudyGoal = *patch.StudyGoal
	}
	if patch.CategoriesProgress != nil {
		p.CategoriesProgress = *patch.CategoriesProgress
	}
	if patch.FlaggedQuestions != nil {
		p.FlaggedQuestions = QuestionSet(*patch.FlaggedQuestions)
	}
	if patch.MasteredQuestions != nil {
		p.MasteredQuestions = QuestionSet(*patch.MasteredQuestions)
	}
	if patch.WeakAreas != nil {
		p.WeakAreas = QuestionSet(*patch.WeakAreas)
	}
	if patch.DailyProgress != nil {
		daily := slices.Clone(*patch.DailyProgress)
		slices.SortStableFunc(daily, func(a, b DailySnapshot) int {
			switch {
			case a.Date < b.Date:
				return -1
			case a.Date > b.Date:
				return 1
			}
			return 0
		})
		p.DailyProgress = daily
	}
	if patch.LastStudyDate != nil {
		t := *patch.LastStudyDate
		p.LastStudyDate = &t
	}
}

// QuestionSet sorts ids and drops duplicates
func QuestionSet(ids []string) []string {
	set := slices.Clone(ids)
	if set == nil {
		return []string{}
	}
	slices.Sort(set)
	return slices.Compact(set)
}

// Stats is a read-only summary derived from Progress
type Stats struct {
	TotalQuestions int      `json:"total_questions"`
	CorrectAnswers int      `json:"correct_answers"`
	Accuracy       int      `json:"accuracy"`
	CurrentStreak  int      `json:"current_streak"`
	LongestStreak  int      `json:"longest_streak"`
	StudyTime      int64    `json:"study_time"`
	FlaggedCount   int      `json:"flagged_count"`
	MasteredCount  int      `json:"mastered_count"`
	WeakAreas      []string `json:"weak_areas"`
}

// Stats computes the summary. Accuracy is a rounded percentage, 0 with no answers.
func (p *Progress) Stats() *Stats {
	accuracy := 0
	if p.QuestionsAnswered > 0 {
		accuracy = int(math.Round(float64(p.QuestionsCorrect) / float64(p.QuestionsAnswered) * 100))
	}

	return &Stats{
		TotalQuestions: p.QuestionsAnswered,
		CorrectAnswers: p.QuestionsCorrect,
		Accuracy:       accuracy,
		CurrentStreak:  p.CurrentStreak,
		LongestStreak:  p.LongestStreak,
		StudyTime:      p.StudyTime,
		FlaggedCount:   len(p.FlaggedQuestions),
		MasteredCount:  len(p.MasteredQuestions),
		WeakAreas:      slices.Clone(p.WeakAreas),
	}
}
