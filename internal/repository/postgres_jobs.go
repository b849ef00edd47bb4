package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"labtrack-data/internal/domain"

	"github.com/lib/pq"
)

// PostgresJobsRepository implements JobsRepository on the jobs table.
type PostgresJobsRepository struct {
	db *sql.DB
}

func NewPostgresJobsRepository(db *sql.DB) *PostgresJobsRepository {
	return &PostgresJobsRepository{db: db}
}

var _ JobsRepository = (*PostgresJobsRepository)(nil)

const jobColumns = `
	id,
	COALESCE(job_type, ''),
	COALESCE(practice_name, ''),
	COALESCE(doctor_name, ''),
	COALESCE(patient_name, ''),
	COALESCE(lab_slip_number, ''),
	COALESCE(job_status, ''),
	due_date,
	COALESCE(shade, ''),
	COALESCE(invoice_number, ''),
	COALESCE(delivery_info, ''),
	COALESCE(comments, ''),
	created_date,
	updated_date
`

// ListJobs applies the composed query. No pagination: the full result set is
// returned, ordered by due_date ascending with NULL due dates last.
func (r *PostgresJobsRepository) ListJobs(ctx context.Context, q JobQuery) ([]*domain.Job, error) {
	where := []string{}
	args := []any{}
	argIdx := 1

	if q.Search != "" {
		where = append(where, fmt.Sprintf(
			"(COALESCE(patient_name,'') ILIKE $%d OR COALESCE(lab_slip_number,'') ILIKE $%d OR COALESCE(invoice_number,'') ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+q.Search+"%")
		argIdx++
	}
	if q.PracticeName != "" {
		where = append(where, fmt.Sprintf("practice_name = $%d", argIdx))
		args = append(args, q.PracticeName)
		argIdx++
	}
	if q.DoctorName != "" {
		where = append(where, fmt.Sprintf("doctor_name = $%d", argIdx))
		args = append(args, q.DoctorName)
		argIdx++
	}
	if q.DueDateSet {
		where = append(where, fmt.Sprintf("due_date = $%d", argIdx))
		args = append(args, q.DueDate)
		argIdx++
	}
	if q.WindowSet {
		where = append(where, fmt.Sprintf("due_date BETWEEN $%d AND $%d", argIdx, argIdx+1))
		args = append(args, q.WindowStart, q.WindowEnd)
		argIdx += 2
	}
	if len(q.Statuses) > 0 {
		where = append(where, fmt.Sprintf("job_status = ANY($%d)", argIdx))
		args = append(args, pq.Array(q.Statuses))
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	query := `SELECT ` + jobColumns + `
		FROM jobs
		` + whereClause + `
		ORDER BY due_date ASC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(rows *sql.Rows) (*domain.Job, error) {
	var job domain.Job
	err := rows.Scan(
		&job.ID,
		&job.JobType,
		&job.PracticeName,
		&job.DoctorName,
		&job.PatientName,
		&job.LabSlipNumber,
		&job.JobStatus,
		&job.DueDate,
		&job.Shade,
		&job.InvoiceNumber,
		&job.DeliveryInfo,
		&job.Comments,
		&job.CreatedDate,
		&job.UpdatedDate,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *PostgresJobsRepository) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	var job domain.Job
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.JobType,
		&job.PracticeName,
		&job.DoctorName,
		&job.PatientName,
		&job.LabSlipNumber,
		&job.JobStatus,
		&job.DueDate,
		&job.Shade,
		&job.InvoiceNumber,
		&job.DeliveryInfo,
		&job.Comments,
		&job.CreatedDate,
		&job.UpdatedDate,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &job, nil
}

func (r *PostgresJobsRepository) CreateJob(ctx context.Context, job *domain.Job) (int64, error) {
	if job == nil {
		return 0, fmt.Errorf("job is required")
	}

	query := `
		INSERT INTO jobs (
			job_type, practice_name, doctor_name, patient_name,
			lab_slip_number, job_status, due_date, shade,
			invoice_number, delivery_info, comments,
			created_date, updated_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING id
	`

	var dueDate any
	if job.DueDate.Valid {
		dueDate = job.DueDate.Time
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		job.JobType,
		job.PracticeName,
		job.DoctorName,
		job.PatientName,
		job.LabSlipNumber,
		job.JobStatus,
		dueDate,
		job.Shade,
		job.InvoiceNumber,
		job.DeliveryInfo,
		job.Comments,
		job.CreatedDate,
		job.UpdatedDate,
	).Scan(&id)
	if err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

// UpdateJob rewrites every mutable field; created_date is never touched.
func (r *PostgresJobsRepository) UpdateJob(ctx context.Context, job *domain.Job) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}

	var dueDate any
	if job.DueDate.Valid {
		dueDate = job.DueDate.Time
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET
			job_type = $2,
			practice_name = $3,
			doctor_name = $4,
			patient_name = $5,
			lab_slip_number = $6,
			job_status = $7,
			due_date = $8,
			shade = $9,
			invoice_number = $10,
			delivery_info = $11,
			comments = $12,
			updated_date = $13
		WHERE id = $1`,
		job.ID,
		job.JobType,
		job.PracticeName,
		job.DoctorName,
		job.PatientName,
		job.LabSlipNumber,
		job.JobStatus,
		dueDate,
		job.Shade,
		job.InvoiceNumber,
		job.DeliveryInfo,
		job.Comments,
		job.UpdatedDate,
	)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresJobsRepository) DeleteJob(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
