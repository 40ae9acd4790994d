package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type DailyQuestionRepository interface {
	// Create inserts a new daily question. The question_date column carries a
	// UNIQUE constraint; a duplicate date surfaces as common.ErrConflict so
	// racing selectors can treat it as an idempotent no-op.
	Create(ctx context.Context, dq *model.DailyQuestion) error
	FindByDate(ctx context.Context, date time.Time) (*model.DailyQuestion, error)
	UsedTitles(ctx context.Context) (map[string]bool, error)
	IncrementStats(ctx context.Context, id string, accepted bool) error
	AppendUserSubmission(ctx context.Context, id string, rec model.DailyUserSubmission) error
}

type pgDailyQuestionRepository struct {
	db *sql.DB
}

func NewPgDailyQuestionRepository(db *sql.DB) DailyQuestionRepository {
	return &pgDailyQuestionRepository{db: db}
}

func (r *pgDailyQuestionRepository) Create(ctx context.Context, dq *model.DailyQuestion) error {
	tags, _ := json.Marshal(dq.Tags)
	constraints, _ := json.Marshal(dq.Constraints)
	hints, _ := json.Marshal(dq.Hints)
	testCases, _ := json.Marshal(dq.TestCases)
	userSubs, _ := json.Marshal(dq.UserSubmissions)

	query := `INSERT INTO daily_questions (id, problem_id, question_date, title, difficulty, category, tags, description, constraints, hints, points, test_cases, total_submissions, total_accepted, user_submissions)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.ExecContext(ctx, query,
		dq.ID, dq.ProblemID, dq.QuestionDate, dq.Title, dq.Difficulty, dq.Category,
		tags, dq.Description, constraints, hints, dq.Points, testCases,
		dq.TotalSubmissions, dq.TotalAccepted, userSubs,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique date
			return fmt.Errorf("daily question already exists for this date: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgDailyQuestionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgDailyQuestionRepository) FindByDate(ctx context.Context, date time.Time) (*model.DailyQuestion, error) {
	query := `SELECT id, problem_id, question_date, title, difficulty, category, tags, description, constraints, hints, points, test_cases, total_submissions, total_accepted, user_submissions, created_at
	          FROM daily_questions WHERE question_date = $1`

	dq := &model.DailyQuestion{}
	var tags, constraints, hints, testCases, userSubs []byte
	err := r.db.QueryRowContext(ctx, query, date).Scan(
		&dq.ID, &dq.ProblemID, &dq.QuestionDate, &dq.Title, &dq.Difficulty, &dq.Category,
		&tags, &dq.Description, &constraints, &hints, &dq.Points, &testCases,
		&dq.TotalSubmissions, &dq.TotalAccepted, &userSubs, &dq.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgDailyQuestionRepository.FindByDate: %w", err)
	}
	json.Unmarshal(tags, &dq.Tags)
	json.Unmarshal(constraints, &dq.Constraints)
	json.Unmarshal(hints, &dq.Hints)
	json.Unmarshal(testCases, &dq.TestCases)
	json.Unmarshal(userSubs, &dq.UserSubmissions)
	return dq, nil
}

// UsedTitles collects every problem title referenced by any prior daily
// question. Unbounded lookback: the pool grows one row per day.
func (r *pgDailyQuestionRepository) UsedTitles(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT title FROM daily_questions`)
	if err != nil {
		return nil, fmt.Errorf("pgDailyQuestionRepository.UsedTitles query: %w", err)
	}
	defer rows.Close()

	used := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("pgDailyQuestionRepository.UsedTitles scan: %w", err)
		}
		used[title] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgDailyQuestionRepository.UsedTitles rows.Err: %w", err)
	}
	return used, nil
}

func (r *pgDailyQuestionRepository) IncrementStats(ctx context.Context, id string, accepted bool) error {
	query := `UPDATE daily_questions SET
                total_submissions = total_submissions + 1,
                total_accepted = total_accepted + CASE WHEN $2 THEN 1 ELSE 0 END
              WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, accepted)
	if err != nil {
		return fmt.Errorf("pgDailyQuestionRepository.IncrementStats: %w", err)
	}
	return nil
}

func (r *pgDailyQuestionRepository) AppendUserSubmission(ctx context.Context, id string, rec model.DailyUserSubmission) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("pgDailyQuestionRepository.AppendUserSubmission marshal: %w", err)
	}
	query := `UPDATE daily_questions SET user_submissions = user_submissions || $2::jsonb WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, recJSON); err != nil {
		return fmt.Errorf("pgDailyQuestionRepository.AppendUserSubmission: %w", err)
	}
	return nil
}
