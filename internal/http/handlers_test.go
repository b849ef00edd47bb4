package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"labtrack-data/internal/repository"
	"labtrack-data/internal/service"
	"labtrack-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	router   *Router
	sessions *SessionStore
	auth     *service.AuthService
	jobs     *repository.MemoryJobsRepository
	catalog  *service.CatalogService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zap.NewNop()

	users := repository.NewMemoryUsersRepository()
	practices := repository.NewMemoryPracticesRepository()
	doctors := repository.NewMemoryDoctorsRepository()
	jobs := repository.NewMemoryJobsRepository()

	policy := service.NewAccessPolicy(nil, false)
	authSvc := service.NewAuthService(users, log)
	jobSvc := service.NewJobService(jobs, practices, doctors, policy, log)
	catalogSvc := service.NewCatalogService(practices, doctors, log)

	sessions := NewSessionStore(store.NewMemoryKV(), time.Hour, 24*time.Hour)

	router := NewRouter(log)
	router.RegisterAuthRoutes(NewAuthHandler(authSvc, sessions, log))
	router.RegisterJobRoutes(NewJobsHandler(jobSvc, catalogSvc, sessions, log))
	router.RegisterCatalogRoutes(NewCatalogHandler(catalogSvc, sessions, log))

	return &testApp{
		router:   router,
		sessions: sessions,
		auth:     authSvc,
		jobs:     jobs,
		catalog:  catalogSvc,
	}
}

// signIn registers a user directly and returns its session cookie.
func (a *testApp) signIn(t *testing.T, username string, isAdmin bool) *http.Cookie {
	t.Helper()
	ident, err := a.auth.Register(context.Background(), username, "secret123", isAdmin)
	require.NoError(t, err)
	token, err := a.sessions.Create(context.Background(), ident, false)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func (a *testApp) do(method, target string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndexRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2F", rec.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	_, err := app.auth.Register(context.Background(), "frontdesk", "secret123", false)
	require.NoError(t, err)

	rec := app.do(http.MethodPost, "/login", nil, url.Values{
		"username": {"frontdesk"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeResult(t, rec)
	assert.Equal(t, "Invalid username or password", body["message"])
}

func TestLoginSetsCookieAndRedirects(t *testing.T) {
	app := newTestApp(t)
	_, err := app.auth.Register(context.Background(), "frontdesk", "secret123", false)
	require.NoError(t, err)

	rec := app.do(http.MethodPost, "/login?next=%2Fadd_job", nil, url.Values{
		"username": {"frontdesk"},
		"password": {"secret123"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/add_job", rec.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	// the cookie now grants access to the listing
	rec = app.do(http.MethodGet, "/", session, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodPost, "/logout", cookie, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodGet, "/", cookie, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRegisterRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodGet, "/register", cookie, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// the denial lands as a flash on the index
	rec = app.do(http.MethodGet, "/", cookie, nil)
	body := decodeResult(t, rec)
	result := body["result"].(map[string]any)
	assert.Contains(t, result["flashes"], "Only administrators can register new users.")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "admin", true)

	form := url.Values{"username": {"frontdesk"}, "password": {"secret123"}}
	rec := app.do(http.MethodPost, "/register", cookie, form)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodPost, "/register", cookie, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResult(t, rec)
	result := body["result"].(map[string]any)
	assert.Equal(t, "username already taken", result["username"])
}

func TestAddAndFetchJob(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)
	admin := app.signIn(t, "boss", true)

	rec := app.do(http.MethodPost, "/add_practices", admin, url.Values{"practice_names": {"Ballito"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = app.do(http.MethodPost, "/add_doctors", admin, url.Values{
		"practice_id":  {"1"},
		"doctor_names": {"Dr Naidoo"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodPost, "/add_job", cookie, url.Values{
		"patient_name": {"A Smith"},
		"practice_id":  {"1"},
		"doctor_id":    {"1"},
		"job_status":   {"In Production"},
		"due_date":     {"2026-09-05"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodGet, "/job/1", cookie, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeResult(t, rec)
	result := body["result"].(map[string]any)
	assert.Equal(t, "A Smith", result["patient_name"])
	assert.Equal(t, "Ballito", result["practice_name"])
	assert.Equal(t, "05/09/2026", result["due_date"])
}

func TestAddJobValidationErrors(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodPost, "/add_job", cookie, url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResult(t, rec)
	result := body["result"].(map[string]any)
	assert.Contains(t, result, "patient_name")
	assert.Contains(t, result, "practice_name")
}

func TestEditJobRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodGet, "/edit_job/1", cookie, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/", cookie, nil)
	body := decodeResult(t, rec)
	result := body["result"].(map[string]any)
	assert.Contains(t, result["flashes"], "Only administrators can edit jobs.")
}

func TestDeleteJobThenFetchReturns404(t *testing.T) {
	app := newTestApp(t)
	admin := app.signIn(t, "boss", true)

	rec := app.do(http.MethodPost, "/add_practices", admin, url.Values{"practice_names": {"Ballito"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = app.do(http.MethodPost, "/add_doctors", admin, url.Values{
		"practice_id":  {"1"},
		"doctor_names": {"Dr Naidoo"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = app.do(http.MethodPost, "/add_job", admin, url.Values{
		"patient_name": {"A Smith"},
		"practice_id":  {"1"},
		"doctor_id":    {"1"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodPost, "/delete_job/1", admin, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodGet, "/job/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJobRejectsGet(t *testing.T) {
	app := newTestApp(t)
	admin := app.signIn(t, "boss", true)

	rec := app.do(http.MethodGet, "/delete_job/1", admin, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndexEchoesFilterParams(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodGet, "/?search_query=smith&practice_filter=Ballito", cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResult(t, rec)
	result := body["result"].(map[string]any)
	assert.Equal(t, "smith", result["search_query"])
	assert.Equal(t, "Ballito", result["practice_filter"])
}

func TestExportJobsReturnsWorkbook(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodGet, "/export_jobs", cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"),
	)
	// xlsx is a zip container
	assert.Equal(t, "PK", rec.Body.String()[:2])
}

func TestUnknownPathReturns404(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t, "frontdesk", false)

	rec := app.do(http.MethodGet, "/no-such-page", cookie, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
