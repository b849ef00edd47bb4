package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"labtrack-data/internal/domain"
	"labtrack-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testToday = time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

func newTestJobService(t *testing.T, policy *AccessPolicy) (*JobService, *repository.MemoryJobsRepository, *repository.MemoryPracticesRepository, *repository.MemoryDoctorsRepository) {
	t.Helper()
	if policy == nil {
		policy = NewAccessPolicy(nil, false)
	}
	jobs := repository.NewMemoryJobsRepository()
	practices := repository.NewMemoryPracticesRepository()
	doctors := repository.NewMemoryDoctorsRepository()
	svc := NewJobService(jobs, practices, doctors, policy, zap.NewNop())
	svc.SetClock(func() time.Time { return testToday })
	return svc, jobs, practices, doctors
}

func seedJob(t *testing.T, jobs *repository.MemoryJobsRepository, job domain.Job) int64 {
	t.Helper()
	id, err := jobs.CreateJob(context.Background(), &job)
	require.NoError(t, err)
	return id
}

func dueOn(day time.Time) sql.NullTime {
	return sql.NullTime{Time: day, Valid: true}
}

func TestComposeJobQueryDefaultWindow(t *testing.T) {
	q := ComposeJobQuery(ListJobsParams{}, ScopeUnrestricted(), testToday)

	assert.True(t, q.WindowSet)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), q.WindowStart)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), q.WindowEnd)
	assert.ElementsMatch(t, []string{
		domain.StatusInProduction,
		domain.StatusReadyForDelivery,
		domain.StatusInTransit,
	}, q.Statuses)
	assert.False(t, q.DueDateSet)
}

func TestComposeJobQuerySearchBypassesWindowAndStatuses(t *testing.T) {
	q := ComposeJobQuery(ListJobsParams{SearchQuery: "smith"}, ScopeUnrestricted(), testToday)

	assert.Equal(t, "smith", q.Search)
	assert.False(t, q.WindowSet)
	assert.Empty(t, q.Statuses)
}

func TestComposeJobQueryExplicitDueDate(t *testing.T) {
	q := ComposeJobQuery(ListJobsParams{DueDateFilter: "2026-09-10"}, ScopeUnrestricted(), testToday)

	assert.True(t, q.DueDateSet)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), q.DueDate)
	assert.False(t, q.WindowSet)
	assert.Empty(t, q.Statuses)
}

func TestComposeJobQueryMalformedDateFallsBackToWindow(t *testing.T) {
	q := ComposeJobQuery(ListJobsParams{DueDateFilter: "10/09/2026"}, ScopeUnrestricted(), testToday)

	assert.False(t, q.DueDateSet)
	assert.True(t, q.WindowSet)
	assert.NotEmpty(t, q.Statuses)
}

func TestComposeJobQueryRestrictedScopeOverridesPracticeFilter(t *testing.T) {
	params := ListJobsParams{PracticeFilter: "Umhlanga"}
	q := ComposeJobQuery(params, ScopeRestrictedTo("Ballito"), testToday)

	assert.Equal(t, "Ballito", q.PracticeName)
}

func TestComposeJobQueryUnrestrictedUsesPracticeFilter(t *testing.T) {
	params := ListJobsParams{PracticeFilter: "Umhlanga", DoctorFilter: "Dr Naidoo"}
	q := ComposeJobQuery(params, ScopeUnrestricted(), testToday)

	assert.Equal(t, "Umhlanga", q.PracticeName)
	assert.Equal(t, "Dr Naidoo", q.DoctorName)
}

func TestListJobsDefaultWindowFiltersStatusAndDate(t *testing.T) {
	svc, jobs, _, _ := newTestJobService(t, nil)
	ctx := context.Background()

	inWindow := seedJob(t, jobs, domain.Job{
		PatientName: "A Smith",
		JobStatus:   domain.StatusInProduction,
		DueDate:     dueOn(testToday.AddDate(0, 0, 1)),
	})
	seedJob(t, jobs, domain.Job{ // delivered: not in the allow-set
		PatientName: "B Jones",
		JobStatus:   "Delivered",
		DueDate:     dueOn(testToday.AddDate(0, 0, 1)),
	})
	seedJob(t, jobs, domain.Job{ // due too far out
		PatientName: "C Brown",
		JobStatus:   domain.StatusInProduction,
		DueDate:     dueOn(testToday.AddDate(0, 0, 10)),
	})
	seedJob(t, jobs, domain.Job{ // no due date: excluded from window
		PatientName: "D Green",
		JobStatus:   domain.StatusInProduction,
	})

	got, err := svc.ListJobs(ctx, Identity{Username: "staff"}, ListJobsParams{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inWindow, got[0].ID)
}

func TestListJobsSearchSeesAllStatuses(t *testing.T) {
	svc, jobs, _, _ := newTestJobService(t, nil)
	ctx := context.Background()

	seedJob(t, jobs, domain.Job{
		PatientName: "Alice Smith",
		JobStatus:   "Delivered",
	})
	seedJob(t, jobs, domain.Job{
		PatientName:   "Bob Jones",
		InvoiceNumber: "INV-SMITH-7",
		JobStatus:     domain.StatusInProduction,
	})
	seedJob(t, jobs, domain.Job{
		PatientName: "Carol White",
		JobStatus:   domain.StatusInProduction,
	})

	got, err := svc.ListJobs(ctx, Identity{Username: "staff"}, ListJobsParams{SearchQuery: "smith"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListJobsRestrictedUserSeesOnlyTheirPractice(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"frontdesk": strPtr("Ballito"),
	}, false)
	svc, jobs, _, _ := newTestJobService(t, policy)
	ctx := context.Background()

	ballito := seedJob(t, jobs, domain.Job{
		PatientName:  "A Smith",
		PracticeName: "Ballito",
		JobStatus:    domain.StatusInProduction,
		DueDate:      dueOn(testToday),
	})
	seedJob(t, jobs, domain.Job{
		PatientName:  "B Jones",
		PracticeName: "Umhlanga",
		JobStatus:    domain.StatusInProduction,
		DueDate:      dueOn(testToday),
	})

	got, err := svc.ListJobs(ctx, Identity{Username: "frontdesk"}, ListJobsParams{
		PracticeFilter: "Umhlanga", // must not widen the restricted scope
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ballito, got[0].ID)
}

func TestListJobsDeniedScopeReturnsEmpty(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"frontdesk": strPtr("Ballito"),
	}, true)
	svc, jobs, _, _ := newTestJobService(t, policy)

	seedJob(t, jobs, domain.Job{
		PatientName: "A Smith",
		JobStatus:   domain.StatusInProduction,
		DueDate:     dueOn(testToday),
	})

	got, err := svc.ListJobs(context.Background(), Identity{Username: "unknown"}, ListJobsParams{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListJobsOrderedByDueDateNullsLast(t *testing.T) {
	svc, jobs, _, _ := newTestJobService(t, nil)
	ctx := context.Background()

	noDue := seedJob(t, jobs, domain.Job{PatientName: "No Due"})
	later := seedJob(t, jobs, domain.Job{
		PatientName: "Later",
		DueDate:     dueOn(testToday.AddDate(0, 0, 20)),
	})
	sooner := seedJob(t, jobs, domain.Job{
		PatientName: "Sooner",
		DueDate:     dueOn(testToday.AddDate(0, 0, 5)),
	})

	// search so every job matches regardless of status/window
	all, err := svc.ListJobs(ctx, Identity{Username: "staff"}, ListJobsParams{SearchQuery: "e"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, sooner, all[0].ID)
	assert.Equal(t, later, all[1].ID)
	assert.Equal(t, noDue, all[2].ID)
}

func TestCreateJobSnapshotsPracticeAndDoctorNames(t *testing.T) {
	svc, _, practices, doctors := newTestJobService(t, nil)
	ctx := context.Background()

	require.NoError(t, practices.CreatePractices(ctx, []string{"Ballito"}))
	require.NoError(t, doctors.CreateDoctors(ctx, 1, []string{"Dr Naidoo"}))

	job, err := svc.CreateJob(ctx, Identity{Username: "staff"}, JobInput{
		PatientName: "A Smith",
		PracticeID:  1,
		DoctorID:    1,
		JobStatus:   domain.StatusInProduction,
		DueDate:     "2026-09-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ballito", job.PracticeName)
	assert.Equal(t, "Dr Naidoo", job.DoctorName)
	assert.True(t, job.DueDate.Valid)
	assert.Equal(t, testToday, job.CreatedDate)
	assert.Equal(t, testToday, job.UpdatedDate)
}

func TestCreateJobAccumulatesValidationErrors(t *testing.T) {
	svc, _, _, _ := newTestJobService(t, nil)

	_, err := svc.CreateJob(context.Background(), Identity{Username: "staff"}, JobInput{
		DueDate: "not-a-date",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "patient_name")
	assert.Contains(t, verr.Fields, "due_date")
	assert.Contains(t, verr.Fields, "practice_name")
	assert.Contains(t, verr.Fields, "doctor_name")
}

func TestUpdateJobPreservesCreatedDate(t *testing.T) {
	svc, jobs, _, _ := newTestJobService(t, nil)
	ctx := context.Background()

	created := testToday.AddDate(0, -1, 0)
	id := seedJob(t, jobs, domain.Job{
		PatientName:  "A Smith",
		PracticeName: "Ballito",
		CreatedDate:  created,
		UpdatedDate:  created,
	})

	updated, err := svc.UpdateJob(ctx, Identity{Username: "admin", IsAdmin: true}, id, JobUpdate{
		PatientName:  "A Smith",
		PracticeName: "Renamed Practice",
		DoctorName:   "Someone Else",
		JobStatus:    domain.StatusReadyForDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, created, updated.CreatedDate)
	assert.Equal(t, testToday, updated.UpdatedDate)
	assert.Equal(t, "Renamed Practice", updated.PracticeName)

	stored, err := jobs.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created, stored.CreatedDate)
}

func TestUpdateJobUnknownIDReturnsNotFound(t *testing.T) {
	svc, _, _, _ := newTestJobService(t, nil)

	_, err := svc.UpdateJob(context.Background(), Identity{IsAdmin: true}, 999, JobUpdate{PatientName: "X"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteJobUnknownIDReturnsNotFound(t *testing.T) {
	svc, _, _, _ := newTestJobService(t, nil)

	err := svc.DeleteJob(context.Background(), Identity{IsAdmin: true}, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
