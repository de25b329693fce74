package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartquiz/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store is the Postgres-backed server store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (domain.Identity, error) {
	var id domain.Identity
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, display_name, role FROM users WHERE username=$1 AND password=$2`,
		username, password,
	).Scan(&id.ID, &id.Username, &id.DisplayName, &id.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("authenticate: %w", err)
	}
	return id, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.Identity, error) {
	return s.queryUsers(ctx, `SELECT id, username, display_name, role FROM users ORDER BY username`)
}

func (s *Store) ListStudents(ctx context.Context) ([]domain.Identity, error) {
	return s.queryUsers(ctx, `SELECT id, username, display_name, role FROM users WHERE role='STUDENT' ORDER BY username`)
}

func (s *Store) queryUsers(ctx context.Context, sql string) ([]domain.Identity, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.Identity
	for rows.Next() {
		var id domain.Identity
		if err := rows.Scan(&id.ID, &id.Username, &id.DisplayName, &id.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, username, password, displayName string, role domain.Role) (domain.Identity, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists); err != nil {
		return domain.Identity{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return domain.Identity{}, domain.ErrUsernameTaken
	}
	identity := domain.Identity{
		ID:          uuid.NewString(),
		Username:    username,
		DisplayName: displayName,
		Role:        role,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password, display_name, role) VALUES ($1,$2,$3,$4,$5)`,
		identity.ID, username, password, displayName, role,
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("create user: %w", err)
	}
	return identity, nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, prompt, options, correct_option FROM questions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.Prompt, &rawOptions, &q.CorrectOption); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q.ID = uuid.NewString()
	rawOptions, err := json.Marshal(q.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO questions (id, prompt, options, correct_option) VALUES ($1,$2,$3::jsonb,$4)`,
		q.ID, q.Prompt, string(rawOptions), q.CorrectOption,
	)
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func (s *Store) SaveScore(ctx context.Context, userID string, correctCount, totalQuestions int) (domain.ScoreRecord, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.ScoreRecord{}, domain.ErrUserNotFound
	}
	rec := domain.ScoreRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		CorrectCount:   correctCount,
		TotalQuestions: totalQuestions,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scores (id, user_id, correct_count, total_questions) VALUES ($1,$2,$3,$4) RETURNING attempted_at`,
		rec.ID, userID, correctCount, totalQuestions,
	).Scan(&rec.Timestamp)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("save score: %w", err)
	}
	return rec, nil
}

// ScoresForUser returns records in ascending attempt order, which callers of
// the trend aggregation rely on.
func (s *Store) ScoresForUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx,
		`SELECT id, user_id, correct_count, total_questions, attempted_at FROM scores WHERE user_id=$1 ORDER BY attempted_at, id`,
		userID)
}

func (s *Store) BestForUser(ctx context.Context, userID string) (int, error) {
	records, err := s.ScoresForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	best := 0
	for _, rec := range records {
		if p := rec.Percentage(); p > best {
			best = p
		}
	}
	return best, nil
}

func (s *Store) AllScores(ctx context.Context) ([]domain.ScoreRecord, error) {
	return s.queryScores(ctx,
		`SELECT id, user_id, correct_count, total_questions, attempted_at FROM scores ORDER BY attempted_at, id`)
}

func (s *Store) queryScores(ctx context.Context, sql string, args ...interface{}) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CorrectCount, &rec.TotalQuestions, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
