package repository

import (
	"context"
	"errors"
	"time"

	"labtrack-data/internal/domain"
)

var (
	// ErrNotFound is returned by id lookups on missing rows.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned on unique-constraint violations
	// (username, practice name, doctor name).
	ErrDuplicateKey = errors.New("duplicate key")
)

// JobQuery is the fully composed listing query. Both the Postgres and the
// in-memory implementations apply it identically: search, practice, doctor
// and date constraints all narrow the candidate set; results are ordered by
// due_date ascending with NULL due dates last, id ascending as tiebreak.
type JobQuery struct {
	// Search matches patient_name, lab_slip_number or invoice_number,
	// case-insensitive substring, OR across the three fields.
	Search string

	// PracticeName / DoctorName are exact matches when non-empty.
	PracticeName string
	DoctorName   string

	// DueDate restricts to jobs due exactly on that date when DueDateSet.
	DueDate    time.Time
	DueDateSet bool

	// WindowStart/WindowEnd restrict due_date to [start, end] inclusive when
	// WindowSet; jobs without a due date never match the window.
	WindowStart time.Time
	WindowEnd   time.Time
	WindowSet   bool

	// Statuses restricts job_status to the given set when non-empty.
	Statuses []string
}

type UsersRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error
}

type PracticesRepository interface {
	ListPractices(ctx context.Context) ([]*domain.Practice, error)
	GetPractice(ctx context.Context, id int64) (*domain.Practice, error)
	// CreatePractices inserts all names in one transaction; on any failure
	// (including a duplicate name) nothing is inserted.
	CreatePractices(ctx context.Context, names []string) error
}

type DoctorsRepository interface {
	ListDoctors(ctx context.Context) ([]*domain.Doctor, error)
	// ListDoctorsByPractice returns the practice's doctors ordered by id ascending.
	ListDoctorsByPractice(ctx context.Context, practiceID int64) ([]*domain.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error)
	// CreateDoctors inserts all names for one practice in one transaction,
	// all-or-nothing.
	CreateDoctors(ctx context.Context, practiceID int64, names []string) error
}

type JobsRepository interface {
	ListJobs(ctx context.Context, q JobQuery) ([]*domain.Job, error)
	GetJob(ctx context.Context, id int64) (*domain.Job, error)
	CreateJob(ctx context.Context, job *domain.Job) (int64, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id int64) error
}
