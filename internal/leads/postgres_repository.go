package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxExecutor is the subset of pgxpool.Pool used here; pgxmock satisfies it too.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores submissions in the relational database.
type PostgresRepository struct {
	pool pgxExecutor
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool pgxExecutor) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Record inserts a new row.
func (r *PostgresRepository) Record(ctx context.Context, sub *Submission) error {
	fields, err := json.Marshal(sub.Fields)
	if err != nil {
		return fmt.Errorf("leads: marshal fields: %w", err)
	}
	query := `
		INSERT INTO lead_submissions (id, type, first_name, last_name, email, company, phone, fields, consent, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query,
		sub.ID,
		string(sub.Type),
		sub.FirstName(),
		sub.LastName(),
		sub.Email(),
		sub.Company(),
		sub.Phone(),
		fields,
		sub.Consent(),
		sub.ReceivedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a stored submission.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Submission, error) {
	query := `
		SELECT id, type, fields, received_at
		FROM lead_submissions
		WHERE id = $1
	`
	var (
		sub    Submission
		typ    string
		fields []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&sub.ID, &typ, &fields, &sub.ReceivedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	sub.Type = Type(typ)
	if err := json.Unmarshal(fields, &sub.Fields); err != nil {
		return nil, fmt.Errorf("leads: decode fields: %w", err)
	}
	return &sub, nil
}

var _ Recorder = (*PostgresRepository)(nil)
