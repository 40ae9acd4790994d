package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"
)

type SubmissionRepository interface {
	// CreateSubmission inserts an immutable submission record. There is no
	// update path.
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	ListForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, daily_question_id, code, language, verdict, time_seconds, memory_kb, test_cases_passed, total_test_cases, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.DailyQuestionID, sub.Code, sub.Language, sub.Verdict, sub.TimeSeconds, sub.MemoryKB, sub.TestCasesPassed, sub.TotalTestCases, sub.SubmittedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.DailyQuestionID, sub.Code, sub.Language, sub.Verdict, sub.TimeSeconds, sub.MemoryKB, sub.TestCasesPassed, sub.TotalTestCases, sub.SubmittedAt)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT s.id, s.user_id, s.problem_id, s.daily_question_id, s.code, s.language, s.verdict, s.time_seconds, s.memory_kb, s.test_cases_passed, s.total_test_cases, s.submitted_at, p.title
	          FROM submissions s
	          LEFT JOIN problems p ON s.problem_id = p.id
	          WHERE s.id = $1`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.DailyQuestionID, &sub.Code, &sub.Language, &sub.Verdict,
		&sub.TimeSeconds, &sub.MemoryKB, &sub.TestCasesPassed, &sub.TotalTestCases, &sub.SubmittedAt, &sub.ProblemTitle,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND problem_id = $2`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, problemID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem count: %w", err)
	}

	query := `SELECT id, user_id, problem_id, daily_question_id, code, language, verdict, time_seconds, memory_kb, test_cases_passed, total_test_cases, submitted_at
	          FROM submissions
	          WHERE user_id = $1 AND problem_id = $2
	          ORDER BY submitted_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, userID, problemID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.ProblemID, &sub.DailyQuestionID, &sub.Code, &sub.Language, &sub.Verdict,
			&sub.TimeSeconds, &sub.MemoryKB, &sub.TestCasesPassed, &sub.TotalTestCases, &sub.SubmittedAt); err != nil {
			return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem scan: %w", err)
		}
		subs = append(subs, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem rows.Err: %w", err)
	}
	return subs, total, nil
}
