package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visitlens/visitlens/internal/domain"
)

type ResponseRepo struct {
	pool *pgxpool.Pool
}

func NewResponseRepo(pool *pgxpool.Pool) *ResponseRepo {
	return &ResponseRepo{pool: pool}
}

func (r *ResponseRepo) Append(ctx context.Context, resp *domain.VisitorResponse) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO visitor_responses (session_id, question, answer, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		resp.SessionID, resp.Question, resp.Answer, resp.CreatedAt,
	).Scan(&resp.ID)
	if err != nil {
		return fmt.Errorf("responseRepo.Append: %w", err)
	}

	return nil
}

func (r *ResponseRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.VisitorResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question, answer, created_at
		 FROM visitor_responses WHERE session_id = $1
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("responseRepo.ListBySession: %w", err)
	}
	defer rows.Close()

	return scanResponses(rows, "responseRepo.ListBySession")
}

func scanResponses(rows pgx.Rows, op string) ([]*domain.VisitorResponse, error) {
	var out []*domain.VisitorResponse
	for rows.Next() {
		var r domain.VisitorResponse
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Question, &r.Answer, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
