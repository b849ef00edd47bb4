package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labtrack-data/internal/domain"
	"labtrack-data/internal/repository"

	"go.uber.org/zap"
)

// dueDateFilterLayout is the query-parameter date format (YYYY-MM-DD).
const dueDateFilterLayout = "2006-01-02"

// defaultWindowDays is the size of the default listing window: jobs due
// within [today, today+3] inclusive.
const defaultWindowDays = 3

// defaultViewStatuses is the status allow-set for the default listing.
var defaultViewStatuses = []string{
	domain.StatusInProduction,
	domain.StatusReadyForDelivery,
	domain.StatusInTransit,
}

// ListJobsParams are the raw listing query parameters. All optional.
type ListJobsParams struct {
	SearchQuery    string
	PracticeFilter string
	DoctorFilter   string
	DueDateFilter  string
}

// ComposeJobQuery turns raw request parameters plus the caller's scope into
// the repository query. Filter order matters and mirrors the listing rules:
//
//  1. search (patient/lab slip/invoice contains, all statuses allowed);
//  2. practice: a restricted scope always wins; an unrestricted caller may
//     narrow by practiceFilter;
//  3. doctor equality;
//  4. date branch: an explicit parseable due date filters to that exact day;
//     an unparseable value is silently ignored; with no date and no search
//     the default window [today, today+3] plus the status allow-set applies.
//     A search query bypasses the default window and status restriction.
func ComposeJobQuery(params ListJobsParams, scope PracticeScope, today time.Time) repository.JobQuery {
	q := repository.JobQuery{Search: params.SearchQuery}

	if scope.Restricted {
		q.PracticeName = scope.PracticeName
	} else if params.PracticeFilter != "" {
		q.PracticeName = params.PracticeFilter
	}

	q.DoctorName = params.DoctorFilter

	dueDateApplied := false
	if params.DueDateFilter != "" {
		if due, err := time.Parse(dueDateFilterLayout, params.DueDateFilter); err == nil {
			q.DueDate = due
			q.DueDateSet = true
			dueDateApplied = true
		}
		// malformed input falls through as if absent
	}
	if !dueDateApplied && params.SearchQuery == "" {
		start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		q.WindowStart = start
		q.WindowEnd = start.AddDate(0, 0, defaultWindowDays)
		q.WindowSet = true
		q.Statuses = append([]string(nil), defaultViewStatuses...)
	}

	return q
}

// JobInput creates a job. Practice and doctor are picked by id; their names
// are snapshotted onto the job at creation time.
type JobInput struct {
	JobType       string
	PracticeID    int64
	DoctorID      int64
	PatientName   string
	LabSlipNumber string
	JobStatus     string
	DueDate       string // YYYY-MM-DD, empty for none
	Shade         string
	InvoiceNumber string
	DeliveryInfo  string
	Comments      string
}

// JobUpdate edits a job in place. Practice and doctor are free text here:
// edits may deliberately diverge from the current catalog.
type JobUpdate struct {
	JobType       string
	PracticeName  string
	DoctorName    string
	PatientName   string
	LabSlipNumber string
	JobStatus     string
	DueDate       string
	Shade         string
	InvoiceNumber string
	DeliveryInfo  string
	Comments      string
}

type JobService struct {
	jobs      repository.JobsRepository
	practices repository.PracticesRepository
	doctors   repository.DoctorsRepository
	policy    *AccessPolicy
	logger    *zap.Logger
	now       func() time.Time
}

func NewJobService(
	jobs repository.JobsRepository,
	practices repository.PracticesRepository,
	doctors repository.DoctorsRepository,
	policy *AccessPolicy,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		jobs:      jobs,
		practices: practices,
		doctors:   doctors,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the service clock. Tests only.
func (s *JobService) SetClock(now func() time.Time) { s.now = now }

// ListJobs returns the filtered, ordered listing visible to the caller.
// Read-only; the full result set is returned every time.
func (s *JobService) ListJobs(ctx context.Context, ident Identity, params ListJobsParams) ([]*domain.Job, error) {
	scope := s.policy.ScopeFor(ident.Username, ident.IsAdmin)
	if scope.Denied {
		s.logger.Warn("Job listing denied: username not in access map",
			zap.String("username", ident.Username),
		)
		return []*domain.Job{}, nil
	}

	q := ComposeJobQuery(params, scope, s.now().UTC())
	return s.jobs.ListJobs(ctx, q)
}

func (s *JobService) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	return s.jobs.GetJob(ctx, id)
}

func (s *JobService) CreateJob(ctx context.Context, ident Identity, input JobInput) (*domain.Job, error) {
	verr := &ValidationError{}
	if input.PatientName == "" {
		verr.Add("patient_name", "patient name is required")
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		verr.Add("due_date", "invalid date, expected YYYY-MM-DD")
	}

	practice, err := s.practices.GetPractice(ctx, input.PracticeID)
	if err != nil {
		verr.Add("practice_name", "unknown practice")
	}
	doctor, err := s.doctors.GetDoctor(ctx, input.DoctorID)
	if err != nil {
		verr.Add("doctor_name", "unknown doctor")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	now := s.now().UTC()
	job := &domain.Job{
		JobType:       input.JobType,
		PracticeName:  practice.Name,
		DoctorName:    doctor.Name,
		PatientName:   input.PatientName,
		LabSlipNumber: input.LabSlipNumber,
		JobStatus:     input.JobStatus,
		DueDate:       dueDate,
		Shade:         input.Shade,
		InvoiceNumber: input.InvoiceNumber,
		DeliveryInfo:  input.DeliveryInfo,
		Comments:      input.Comments,
		CreatedDate:   now,
		UpdatedDate:   now,
	}

	id, err := s.jobs.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	job.ID = id

	s.logger.Info("Job created",
		zap.Int64("job_id", id),
		zap.String("practice_name", job.PracticeName),
		zap.String("doctor_name", job.DoctorName),
		zap.String("created_by", ident.Username),
	)
	return job, nil
}

func (s *JobService) UpdateJob(ctx context.Context, ident Identity, id int64, upd JobUpdate) (*domain.Job, error) {
	existing, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(upd.DueDate)
	if err != nil {
		return nil, NewValidationError("due_date", "invalid date, expected YYYY-MM-DD")
	}

	job := &domain.Job{
		ID:            id,
		JobType:       upd.JobType,
		PracticeName:  upd.PracticeName,
		DoctorName:    upd.DoctorName,
		PatientName:   upd.PatientName,
		LabSlipNumber: upd.LabSlipNumber,
		JobStatus:     upd.JobStatus,
		DueDate:       dueDate,
		Shade:         upd.Shade,
		InvoiceNumber: upd.InvoiceNumber,
		DeliveryInfo:  upd.DeliveryInfo,
		Comments:      upd.Comments,
		CreatedDate:   existing.CreatedDate,
		UpdatedDate:   s.now().UTC(),
	}

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	s.logger.Info("Job updated",
		zap.Int64("job_id", id),
		zap.String("updated_by", ident.Username),
	)
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, ident Identity, id int64) error {
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Job deleted",
		zap.Int64("job_id", id),
		zap.String("deleted_by", ident.Username),
	)
	return nil
}

func parseDueDate(value string) (sql.NullTime, error) {
	if value == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(dueDateFilterLayout, value)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
