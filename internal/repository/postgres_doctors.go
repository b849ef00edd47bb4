package repository

import (
	"context"
	"database/sql"
	"fmt"

	"labtrack-data/internal/domain"
)

// PostgresDoctorsRepository implements DoctorsRepository on the doctors table.
type PostgresDoctorsRepository struct {
	db *sql.DB
}

func NewPostgresDoctorsRepository(db *sql.DB) *PostgresDoctorsRepository {
	return &PostgresDoctorsRepository{db: db}
}

var _ DoctorsRepository = (*PostgresDoctorsRepository)(nil)

func (r *PostgresDoctorsRepository) ListDoctors(ctx context.Context) ([]*domain.Doctor, error) {
	return r.listDoctors(ctx, `SELECT id, name, practice_id FROM doctors ORDER BY id ASC`)
}

func (r *PostgresDoctorsRepository) ListDoctorsByPractice(ctx context.Context, practiceID int64) ([]*domain.Doctor, error) {
	return r.listDoctors(ctx,
		`SELECT id, name, practice_id FROM doctors WHERE practice_id = $1 ORDER BY id ASC`,
		practiceID,
	)
}

func (r *PostgresDoctorsRepository) listDoctors(ctx context.Context, query string, args ...any) ([]*domain.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []*domain.Doctor{}
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.PracticeID); err != nil {
			return nil, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, rows.Err()
}

func (r *PostgresDoctorsRepository) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	var d domain.Doctor
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, practice_id FROM doctors WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Name, &d.PracticeID)
	if err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

// CreateDoctors inserts all names for one practice in one transaction,
// all-or-nothing. The practice must exist (FK enforced).
func (r *PostgresDoctorsRepository) CreateDoctors(ctx context.Context, practiceID int64, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one doctor name is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO doctors (name, practice_id) VALUES ($1, $2)`,
			name, practiceID,
		); err != nil {
			return translateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
