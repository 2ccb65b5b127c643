package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitlens/visitlens/internal/domain"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	analysis, err := json.Marshal(s.Analysis)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: marshal analysis: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO visitor_sessions (id, url, content_analysis, created_at)
		 VALUES ($1, $2, $3, $4)`,
		s.ID, s.URL, analysis, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var (
		s        domain.Session
		analysis []byte
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, url, content_analysis, created_at
		 FROM visitor_sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.URL, &analysis, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByID: %w", err)
	}

	if err := json.Unmarshal(analysis, &s.Analysis); err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByID: unmarshal analysis: %w", err)
	}

	return &s, nil
}
