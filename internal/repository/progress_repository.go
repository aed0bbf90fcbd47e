package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
)

const progressColumns = `account_id, questions_answered, questions_correct, current_streak,
	longest_streak, study_time, study_goal, categories_progress, flagged_questions,
	mastered_questions, weak_areas, daily_progress, last_study_date, created_at, last_updated`

// progressRepository implements ProgressRepository interface
type progressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) ProgressRepository {
	return &progressRepository{db: db}
}

// Create inserts the initial progress record of an account
func (r *progressRepository) Create(ctx context.Context, progress *domain.Progress) error {
	query := `
		INSERT INTO progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args, err := progressArgs(progress)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("progress for account %s: %w", progress.AccountID, ErrDuplicateProgress)
		}
		return fmt.Errorf("failed to create progress: %w", err)
	}

	return nil
}

// GetByAccountID retrieves the progress record of an account
func (r *progressRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE account_id = ?`

	progress, err := scanProgress(r.db.QueryRowContext(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress for account %s not found: %w", accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return progress, nil
}

// Upsert replaces the progress record, creating it when missing.
// created_at is kept from the first insert.
func (r *progressRepository) Upsert(ctx context.Context, progress *domain.Progress) error {
	query := `
		INSERT INTO progress (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			questions_answered = excluded.questions_answered,
			questions_correct = excluded.questions_correct,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			study_time = excluded.study_time,
			study_goal = excluded.study_goal,
			categories_progress = excluded.categories_progress,
			flagged_questions = excluded.flagged_questions,
			mastered_questions = excluded.mastered_questions,
			weak_areas = excluded.weak_areas,
			daily_progress = excluded.daily_progress,
			last_study_date = excluded.last_study_date,
			last_updated = excluded.last_updated
	`

	args, err := progressArgs(progress)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}

func progressArgs(p *domain.Progress) ([]any, error) {
	categories, err := encodeDoc(p.CategoriesProgress, "{}")
	if err != nil {
		return nil, fmt.Errorf("failed to encode categories progress: %w", err)
	}
	flagged, err := encodeDoc(p.FlaggedQuestions, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to encode flagged questions: %w", err)
	}
	mastered, err := encodeDoc(p.MasteredQuestions, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to encode mastered questions: %w", err)
	}
	weak, err := encodeDoc(p.WeakAreas, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to encode weak areas: %w", err)
	}
	daily, err := encodeDoc(p.DailyProgress, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to encode daily progress: %w", err)
	}

	return []any{
		p.AccountID,
		p.QuestionsAnswered,
		p.QuestionsCorrect,
		p.CurrentStreak,
		p.LongestStreak,
		p.StudyTime,
		p.StudyGoal,
		categories,
		flagged,
		mastered,
		weak,
		daily,
		nullableUnix(p.LastStudyDate),
		toUnix(p.CreatedAt),
		toUnix(p.LastUpdated),
	}, nil
}

// encodeDoc marshals v, writing empty for nil maps and slices so reads
// always decode into non-nil collections.
func encodeDoc(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func scanProgress(row rowScanner) (*domain.Progress, error) {
	p := &domain.Progress{}
	var (
		categories, flagged, mastered, weak, daily string
		lastStudyDate                              sql.NullInt64
		createdAt, lastUpdated                     int64
	)

	if err := row.Scan(
		&p.AccountID,
		&p.QuestionsAnswered,
		&p.QuestionsCorrect,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.StudyTime,
		&p.StudyGoal,
		&categories,
		&flagged,
		&mastered,
		&weak,
		&daily,
		&lastStudyDate,
		&createdAt,
		&lastUpdated,
	); err != nil {
		return nil, err
	}

	docs := []struct {
		raw  string
		dest any
		name string
	}{
		{categories, &p.CategoriesProgress, "categories progress"},
		{flagged, &p.FlaggedQuestions, "flagged questions"},
		{mastered, &p.MasteredQuestions, "mastered questions"},
		{weak, &p.WeakAreas, "weak areas"},
		{daily, &p.DailyProgress, "daily progress"},
	}
	for _, doc := range docs {
		if err := json.Unmarshal([]byte(doc.raw), doc.dest); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", doc.name, err)
		}
	}

	p.LastStudyDate = timeFromNullable(lastStudyDate)
	p.CreatedAt = fromUnix(createdAt)
	p.LastUpdated = fromUnix(lastUpdated)

	return p, nil
}
