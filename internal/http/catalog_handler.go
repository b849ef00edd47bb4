package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"labtrack-data/internal/repository"
	"labtrack-data/internal/service"

	"go.uber.org/zap"
)

// CatalogHandler serves the practice/doctor catalog maintenance routes.
// Both are admin only.
type CatalogHandler struct {
	catalog  *service.CatalogService
	sessions *SessionStore
	logger   *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, sessions *SessionStore, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
	}
}

// AddPractices handles GET (form page) and POST (bulk create from a
// comma-separated list).
func (h *CatalogHandler) AddPractices(w http.ResponseWriter, r *http.Request) {
	_, token, ok := h.sessions.RequireAdmin(w, r, "Only administrators can add practices.")
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"title": "Add Practices"}))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form"))
		return
	}

	names, err := h.catalog.AddPractices(r.Context(), r.PostFormValue("practice_names"))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, FailFields(verr.Fields))
		case errors.Is(err, repository.ErrDuplicateKey):
			writeJSON(w, http.StatusBadRequest, FailFields(map[string]string{"practice_names": "practice already exists"}))
		default:
			h.logger.Error("Failed to add practices", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to add practices"))
		}
		return
	}

	h.logger.Info("Practices added via form", zap.Int("count", len(names)))
	_ = h.sessions.PushFlash(r.Context(), token, "Practices added successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddDoctors handles GET (form page with the practice catalog) and POST
// (bulk create scoped to one practice).
func (h *CatalogHandler) AddDoctors(w http.ResponseWriter, r *http.Request) {
	_, token, ok := h.sessions.RequireAdmin(w, r, "Only administrators can add doctors.")
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		practices, err := h.catalog.ListPractices(r.Context())
		if err != nil {
			h.logger.Error("Failed to list practices", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to list practices"))
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"title":     "Add Doctors",
			"practices": practices,
		}))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form"))
		return
	}
	practiceID, err := strconv.ParseInt(r.PostFormValue("practice_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, FailFields(map[string]string{"practice_id": "practice is required"}))
		return
	}

	names, err := h.catalog.AddDoctors(r.Context(), practiceID, r.PostFormValue("doctor_names"))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, FailFields(verr.Fields))
		case errors.Is(err, repository.ErrNotFound):
			writeJSON(w, http.StatusBadRequest, FailFields(map[string]string{"practice_id": "unknown practice"}))
		default:
			h.logger.Error("Failed to add doctors", zap.Int64("practice_id", practiceID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("failed to add doctors"))
		}
		return
	}

	h.logger.Info("Doctors added via form",
		zap.Int64("practice_id", practiceID),
		zap.Int("count", len(names)),
	)
	_ = h.sessions.PushFlash(r.Context(), token, "Doctors added successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
