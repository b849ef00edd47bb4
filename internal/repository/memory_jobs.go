package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"labtrack-data/internal/domain"
)

// MemoryJobsRepository is an in-memory JobsRepository. It applies JobQuery
// with the same semantics as the Postgres implementation, including the
// NULLS LAST ordering on due_date.
type MemoryJobsRepository struct {
	mu     sync.RWMutex
	nextID int64
	jobs   map[int64]*domain.Job
}

func NewMemoryJobsRepository() *MemoryJobsRepository {
	return &MemoryJobsRepository{
		nextID: 1,
		jobs:   map[int64]*domain.Job{},
	}
}

var _ JobsRepository = (*MemoryJobsRepository)(nil)

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func matches(job *domain.Job, q JobQuery) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(job.PatientName), needle) &&
			!strings.Contains(strings.ToLower(job.LabSlipNumber), needle) &&
			!strings.Contains(strings.ToLower(job.InvoiceNumber), needle) {
			return false
		}
	}
	if q.PracticeName != "" && job.PracticeName != q.PracticeName {
		return false
	}
	if q.DoctorName != "" && job.DoctorName != q.DoctorName {
		return false
	}
	if q.DueDateSet {
		if !job.DueDate.Valid || !sameDate(job.DueDate.Time, q.DueDate) {
			return false
		}
	}
	if q.WindowSet {
		if !job.DueDate.Valid {
			return false
		}
		due := dateOnly(job.DueDate.Time)
		if due.Before(dateOnly(q.WindowStart)) || due.After(dateOnly(q.WindowEnd)) {
			return false
		}
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, s := range q.Statuses {
			if job.JobStatus == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *MemoryJobsRepository) ListJobs(ctx context.Context, q JobQuery) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Job{}
	for _, job := range r.jobs {
		if matches(job, q) {
			copied := *job
			out = append(out, &copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DueDate.Valid && !b.DueDate.Valid:
			return true
		case !a.DueDate.Valid && b.DueDate.Valid:
			return false
		case a.DueDate.Valid && b.DueDate.Valid && !sameDate(a.DueDate.Time, b.DueDate.Time):
			return a.DueDate.Time.Before(b.DueDate.Time)
		default:
			return a.ID < b.ID
		}
	})
	return out, nil
}

func (r *MemoryJobsRepository) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *MemoryJobsRepository) CreateJob(ctx context.Context, job *domain.Job) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	copied := *job
	copied.ID = id
	r.jobs[id] = &copied
	return id, nil
}

func (r *MemoryJobsRepository) UpdateJob(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok {
		return ErrNotFound
	}
	copied := *job
	copied.CreatedDate = existing.CreatedDate // immutable
	r.jobs[job.ID] = &copied
	return nil
}

func (r *MemoryJobsRepository) DeleteJob(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}
