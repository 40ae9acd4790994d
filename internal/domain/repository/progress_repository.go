package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"
)

type ProgressRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.UserProgress, error)
	Upsert(ctx context.Context, progress *model.UserProgress) error
	GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) GetByUserID(ctx context.Context, userID string) (*model.UserProgress, error) {
	query := `SELECT user_id, problems_solved, total_points, streak, recent_activity, updated_at
	          FROM user_progress WHERE user_id = $1`

	p := &model.UserProgress{}
	var solved, streak, activity []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &solved, &p.TotalPoints, &streak, &activity, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProgressRepository.GetByUserID: %w", err)
	}
	json.Unmarshal(solved, &p.ProblemsSolved)
	json.Unmarshal(streak, &p.Streak)
	json.Unmarshal(activity, &p.RecentActivity)
	return p, nil
}

func (r *pgProgressRepository) Upsert(ctx context.Context, p *model.UserProgress) error {
	solved, _ := json.Marshal(p.ProblemsSolved)
	streak, _ := json.Marshal(p.Streak)
	activity, _ := json.Marshal(p.RecentActivity)

	query := `INSERT INTO user_progress (user_id, problems_solved, total_points, streak, recent_activity, updated_at)
	          VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	          ON CONFLICT (user_id) DO UPDATE SET
	            problems_solved = EXCLUDED.problems_solved,
	            total_points = EXCLUDED.total_points,
	            streak = EXCLUDED.streak,
	            recent_activity = EXCLUDED.recent_activity,
	            updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, p.UserID, solved, p.TotalPoints, streak, activity); err != nil {
		return fmt.Errorf("pgProgressRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT up.user_id, u.username, up.total_points, jsonb_array_length(up.problems_solved)
	          FROM user_progress up
	          JOIN users u ON up.user_id = u.id
	          ORDER BY up.total_points DESC, u.username ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.GetLeaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalPoints, &e.ProblemsSolved); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.GetLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.GetLeaderboard rows.Err: %w", err)
	}
	return entries, nil
}
