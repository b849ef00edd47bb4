package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"labtrack-data/internal/domain"
	"labtrack-data/internal/repository"
	"labtrack-data/internal/service"

	"go.uber.org/zap"
)

// JobsHandler serves the listing, detail, add/edit/delete and export routes.
type JobsHandler struct {
	jobs     *service.JobService
	catalog  *service.CatalogService
	sessions *SessionStore
	logger   *zap.Logger
}

func NewJobsHandler(
	jobs *service.JobService,
	catalog *service.CatalogService,
	sessions *SessionStore,
	logger *zap.Logger,
) *JobsHandler {
	return &JobsHandler{
		jobs:     jobs,
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

func listParams(r *http.Request) service.ListJobsParams {
	q := r.URL.Query()
	return service.ListJobsParams{
		SearchQuery:    q.Get("search_query"),
		PracticeFilter: q.Get("practice_filter"),
		DoctorFilter:   q.Get("doctor_filter"),
		DueDateFilter:  q.Get("due_date_filter"),
	}
}

// Index renders the filtered job listing plus the practice/doctor catalogs
// for the filter controls.
func (h *JobsHandler) Index(w http.ResponseWriter, r *http.Request) {
	ident, token, ok := h.sessions.RequireAuth(w, r)
	if !ok {
		return
	}

	params := listParams(r)
	jobs, err := h.jobs.ListJobs(r.Context(), ident, params)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list jobs"))
		return
	}

	practices, err := h.catalog.ListPractices(r.Context())
	if err != nil {
		h.logger.Error("Failed to list practices", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list practices"))
		return
	}
	doctors, err := h.catalog.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("Failed to list doctors", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list doctors"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"title":           "Home",
		"jobs":            exportJobs(jobs),
		"practices":       practices,
		"doctors":         doctors,
		"search_query":    params.SearchQuery,
		"practice_filter": params.PracticeFilter,
		"doctor_filter":   params.DoctorFilter,
		"due_date_filter": params.DueDateFilter,
		"flashes":         h.sessions.PopFlashes(r.Context(), token),
	}))
}

func exportJobs(jobs []*domain.Job) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ToExport())
	}
	return out
}

// JobDetail renders one job by id.
func (h *JobsHandler) JobDetail(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.sessions.RequireAuth(w, r); !ok {
		return
	}
	id, ok := pathID(r.URL.Path, "/job/")
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("job not found"))
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("job not found"))
			return
		}
		h.logger.Error("Failed to get job", zap.Int64("job_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to get job"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(job.ToExport()))
}

// AddJob handles GET (form data) and POST (create). Any signed-in user may
// add jobs.
func (h *JobsHandler) AddJob(w http.ResponseWriter, r *http.Request) {
	ident, token, ok := h.sessions.RequireAuth(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		h.writeJobForm(w, r, "Add Job")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form"))
		return
	}
	practiceID, _ := strconv.ParseInt(r.PostFormValue("practice_id"), 10, 64)
	doctorID, _ := strconv.ParseInt(r.PostFormValue("doctor_id"), 10, 64)
	input := service.JobInput{
		JobType:       r.PostFormValue("job_type"),
		PracticeID:    practiceID,
		DoctorID:      doctorID,
		PatientName:   r.PostFormValue("patient_name"),
		LabSlipNumber: r.PostFormValue("lab_slip_number"),
		JobStatus:     r.PostFormValue("job_status"),
		DueDate:       r.PostFormValue("due_date"),
		Shade:         r.PostFormValue("shade"),
		InvoiceNumber: r.PostFormValue("invoice_number"),
		DeliveryInfo:  r.PostFormValue("delivery_info"),
		Comments:      r.PostFormValue("comments"),
	}

	if _, err := h.jobs.CreateJob(r.Context(), ident, input); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, FailFields(verr.Fields))
			return
		}
		h.logger.Error("Failed to create job", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to create job"))
		return
	}

	_ = h.sessions.PushFlash(r.Context(), token, "Job added successfully.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditJob handles GET (current values) and POST (update). Admin only.
func (h *JobsHandler) EditJob(w http.ResponseWriter, r *http.Request) {
	ident, token, ok := h.sessions.RequireAdmin(w, r, "Only administrators can edit jobs.")
	if !ok {
		return
	}
	id, ok := pathID(r.URL.Path, "/edit_job/")
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("job not found"))
		return
	}

	if r.Method == http.MethodGet {
		job, err := h.jobs.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, Fail("job not found"))
				return
			}
			h.logger.Error("Failed to get job", zap.Int64("job_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to get job"))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"title": "Edit Job", "job": job.ToExport()}))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form"))
		return
	}
	upd := service.JobUpdate{
		JobType:       r.PostFormValue("job_type"),
		PracticeName:  r.PostFormValue("practice_name"),
		DoctorName:    r.PostFormValue("doctor_name"),
		PatientName:   r.PostFormValue("patient_name"),
		LabSlipNumber: r.PostFormValue("lab_slip_number"),
		JobStatus:     r.PostFormValue("job_status"),
		DueDate:       r.PostFormValue("due_date"),
		Shade:         r.PostFormValue("shade"),
		InvoiceNumber: r.PostFormValue("invoice_number"),
		DeliveryInfo:  r.PostFormValue("delivery_info"),
		Comments:      r.PostFormValue("comments"),
	}

	if _, err := h.jobs.UpdateJob(r.Context(), ident, id, upd); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, FailFields(verr.Fields))
		case errors.Is(err, repository.ErrNotFound):
			writeJSON(w, http.StatusNotFound, Fail("job not found"))
		default:
			h.logger.Error("Failed to update job", zap.Int64("job_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to update job"))
		}
		return
	}

	_ = h.sessions.PushFlash(r.Context(), token, "Job updated successfully.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteJob hard-deletes one job. Admin only, POST only.
func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	ident, _, ok := h.sessions.RequireAdmin(w, r, "Admin access required to delete jobs.")
	if !ok {
		return
	}
	id, ok := pathID(r.URL.Path, "/delete_job/")
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("job not found"))
		return
	}

	if err := h.jobs.DeleteJob(r.Context(), ident, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail("job not found"))
			return
		}
		h.logger.Error("Failed to delete job", zap.Int64("job_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to delete job"))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ExportJobs downloads the caller's current listing as an .xlsx workbook.
// Same query parameters as the listing.
func (h *JobsHandler) ExportJobs(w http.ResponseWriter, r *http.Request) {
	ident, _, ok := h.sessions.RequireAuth(w, r)
	if !ok {
		return
	}

	jobs, err := h.jobs.ListJobs(r.Context(), ident, listParams(r))
	if err != nil {
		h.logger.Error("Failed to list jobs for export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to export jobs"))
		return
	}

	data, err := GenerateJobsExport(jobs)
	if err != nil {
		h.logger.Error("Failed to generate jobs export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to export jobs"))
		return
	}

	filename := fmt.Sprintf("jobs-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

// writeJobForm returns the catalog data the add-job form needs.
func (h *JobsHandler) writeJobForm(w http.ResponseWriter, r *http.Request, title string) {
	practices, err := h.catalog.ListPractices(r.Context())
	if err != nil {
		h.logger.Error("Failed to list practices", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list practices"))
		return
	}
	doctors, err := h.catalog.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("Failed to list doctors", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list doctors"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"title":     title,
		"practices": practices,
		"doctors":   doctors,
	}))
}
