package repository

import (
	"context"
	"sort"
	"sync"

	"labtrack-data/internal/domain"
)

// MemoryPracticesRepository is an in-memory PracticesRepository.
type MemoryPracticesRepository struct {
	mu        sync.RWMutex
	nextID    int64
	practices map[int64]*domain.Practice
}

func NewMemoryPracticesRepository() *MemoryPracticesRepository {
	return &MemoryPracticesRepository{
		nextID:    1,
		practices: map[int64]*domain.Practice{},
	}
}

var _ PracticesRepository = (*MemoryPracticesRepository)(nil)

func (r *MemoryPracticesRepository) ListPractices(ctx context.Context) ([]*domain.Practice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Practice, 0, len(r.practices))
	for _, p := range r.practices {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryPracticesRepository) GetPractice(ctx context.Context, id int64) (*domain.Practice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.practices[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *MemoryPracticesRepository) CreatePractices(ctx context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// all-or-nothing: check the whole batch before inserting anything
	seen := map[string]bool{}
	for _, p := range r.practices {
		seen[p.Name] = true
	}
	for _, name := range names {
		if seen[name] {
			return ErrDuplicateKey
		}
		seen[name] = true
	}

	for _, name := range names {
		id := r.nextID
		r.nextID++
		r.practices[id] = &domain.Practice{ID: id, Name: name}
	}
	return nil
}

// MemoryDoctorsRepository is an in-memory DoctorsRepository.
type MemoryDoctorsRepository struct {
	mu      sync.RWMutex
	nextID  int64
	doctors map[int64]*domain.Doctor
}

func NewMemoryDoctorsRepository() *MemoryDoctorsRepository {
	return &MemoryDoctorsRepository{
		nextID:  1,
		doctors: map[int64]*domain.Doctor{},
	}
}

var _ DoctorsRepository = (*MemoryDoctorsRepository)(nil)

func (r *MemoryDoctorsRepository) ListDoctors(ctx context.Context) ([]*domain.Doctor, error) {
	return r.list(func(d *domain.Doctor) bool { return true }), nil
}

func (r *MemoryDoctorsRepository) ListDoctorsByPractice(ctx context.Context, practiceID int64) ([]*domain.Doctor, error) {
	return r.list(func(d *domain.Doctor) bool { return d.PracticeID == practiceID }), nil
}

func (r *MemoryDoctorsRepository) list(keep func(*domain.Doctor) bool) []*domain.Doctor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Doctor{}
	for _, d := range r.doctors {
		if keep(d) {
			copied := *d
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryDoctorsRepository) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *MemoryDoctorsRepository) CreateDoctors(ctx context.Context, practiceID int64, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	for _, d := range r.doctors {
		seen[d.Name] = true
	}
	for _, name := range names {
		if seen[name] {
			return ErrDuplicateKey
		}
		seen[name] = true
	}

	for _, name := range names {
		id := r.nextID
		r.nextID++
		r.doctors[id] = &domain.Doctor{ID: id, Name: name, PracticeID: practiceID}
	}
	return nil
}
