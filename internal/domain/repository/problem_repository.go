package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error)
	ListPublished(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, category, searchTerm string) ([]model.Problem, int, error)

	// ListCandidates returns all published problems of the given difficulty;
	// an empty difficulty means any. Used by the daily selector for sampling.
	ListCandidates(ctx context.Context, difficulty model.ProblemDifficulty) ([]model.Problem, error)

	// IncrementStats bumps the aggregate counters atomically in storage so
	// concurrent submissions never lose an update.
	IncrementStats(ctx context.Context, problemID string, accepted bool) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `p.id, p.title, p.slug, p.description, p.difficulty, p.category,
               p.tags, p.constraints, p.hints, p.sample_cases, p.hidden_cases,
               p.points, p.status, p.total_submissions, p.total_accepted,
               p.created_by, p.created_at, p.updated_at`

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	tags, _ := json.Marshal(p.Tags)
	constraints, _ := json.Marshal(p.Constraints)
	hints, _ := json.Marshal(p.Hints)
	sampleCases, _ := json.Marshal(p.SampleCases)
	hiddenCases, _ := json.Marshal(p.HiddenCases)

	query := `INSERT INTO problems (id, title, slug, description, difficulty, category, tags, constraints, hints, sample_cases, hidden_cases, points, status, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Category, tags, constraints, hints, sampleCases, hiddenCases, p.Points, p.Status, p.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Category, tags, constraints, hints, sampleCases, hiddenCases, p.Points, p.Status, p.CreatedByID)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *pgProblemRepository) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.slug = $1`
	return r.scanOne(ctx, query, slug)
}

func (r *pgProblemRepository) scanOne(ctx context.Context, query string, arg interface{}) (*model.Problem, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	problem, err := scanProblem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.scanOne: %w", err)
	}
	return problem, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProblem(row rowScanner) (*model.Problem, error) {
	p := &model.Problem{}
	var tags, constraints, hints, sampleCases, hiddenCases []byte
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Difficulty, &p.Category,
		&tags, &constraints, &hints, &sampleCases, &hiddenCases,
		&p.Points, &p.Status, &p.TotalSubmissions, &p.TotalAccepted,
		&p.CreatedByID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	json.Unmarshal(tags, &p.Tags)
	json.Unmarshal(constraints, &p.Constraints)
	json.Unmarshal(hints, &p.Hints)
	json.Unmarshal(sampleCases, &p.SampleCases)
	json.Unmarshal(hiddenCases, &p.HiddenCases)
	return p, nil
}

func (r *pgProblemRepository) ListPublished(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, category, searchTerm string) ([]model.Problem, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	conditions = append(conditions, fmt.Sprintf("p.status = $%d", argID))
	args = append(args, model.StatusPublished)
	argID++

	if difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("p.difficulty = $%d", argID))
		args = append(args, difficulty)
		argID++
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", argID))
		args = append(args, category)
		argID++
	}
	if searchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + searchTerm + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM problems p` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListPublished count: %w", err)
	}

	query := `SELECT ` + problemColumns + ` FROM problems p` + whereClause +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListPublished query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.ListPublished scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListPublished rows.Err: %w", err)
	}

	return problems, total, nil
}

func (r *pgProblemRepository) ListCandidates(ctx context.Context, difficulty model.ProblemDifficulty) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.status = $1`
	args := []interface{}{model.StatusPublished}
	if difficulty != "" {
		query += ` AND p.difficulty = $2`
		args = append(args, difficulty)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListCandidates query: %w", err)
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListCandidates scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListCandidates rows.Err: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) IncrementStats(ctx context.Context, problemID string, accepted bool) error {
	query := `UPDATE problems SET
                total_submissions = total_submissions + 1,
                total_accepted = total_accepted + CASE WHEN $2 THEN 1 ELSE 0 END,
                updated_at = CURRENT_TIMESTAMP
              WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, problemID, accepted)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.IncrementStats: %w", err)
	}
	return nil
}
