package repository

import (
	"context"
	"database/sql"
	"fmt"

	"labtrack-data/internal/domain"
)

// PostgresPracticesRepository implements PracticesRepository on the practices table.
type PostgresPracticesRepository struct {
	db *sql.DB
}

func NewPostgresPracticesRepository(db *sql.DB) *PostgresPracticesRepository {
	return &PostgresPracticesRepository{db: db}
}

var _ PracticesRepository = (*PostgresPracticesRepository)(nil)

func (r *PostgresPracticesRepository) ListPractices(ctx context.Context) ([]*domain.Practice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM practices ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	practices := []*domain.Practice{}
	for rows.Next() {
		var p domain.Practice
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		practices = append(practices, &p)
	}
	return practices, rows.Err()
}

func (r *PostgresPracticesRepository) GetPractice(ctx context.Context, id int64) (*domain.Practice, error) {
	var p domain.Practice
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM practices WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name)
	if err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// CreatePractices inserts all names in one transaction. A duplicate name
// rolls the whole batch back and surfaces as ErrDuplicateKey.
func (r *PostgresPracticesRepository) CreatePractices(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one practice name is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO practices (name) VALUES ($1)`,
			name,
		); err != nil {
			return translateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
