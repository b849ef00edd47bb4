package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux. Route patterns stay flat;
// method guards live at registration time.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes wires login/logout/register.
func (r *Router) RegisterAuthRoutes(a *AuthHandler) {
	r.Handle("/login", methods(a.Login, http.MethodGet, http.MethodPost))
	r.Handle("/logout", methods(a.Logout, http.MethodGet, http.MethodPost))
	r.Handle("/register", methods(a.Register, http.MethodGet, http.MethodPost))
}

// RegisterJobRoutes wires the listing, detail, add/edit/delete and export.
func (r *Router) RegisterJobRoutes(j *JobsHandler) {
	// index; ServeMux treats "/" as catch-all, so reject other paths here
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		j.Index(w, req)
	})
	r.Handle("/index", methods(j.Index, http.MethodGet))

	r.Handle("/job/", methods(j.JobDetail, http.MethodGet))
	r.Handle("/add_job", methods(j.AddJob, http.MethodGet, http.MethodPost))
	r.Handle("/edit_job/", methods(j.EditJob, http.MethodGet, http.MethodPost))
	r.Handle("/delete_job/", methods(j.DeleteJob, http.MethodPost))
	r.Handle("/export_jobs", methods(j.ExportJobs, http.MethodGet))
}

// RegisterCatalogRoutes wires practice/doctor maintenance.
func (r *Router) RegisterCatalogRoutes(c *CatalogHandler) {
	r.Handle("/add_practices", methods(c.AddPractices, http.MethodGet, http.MethodPost))
	r.Handle("/add_doctors", methods(c.AddDoctors, http.MethodGet, http.MethodPost))
}

func methods(h http.HandlerFunc, allowed ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		for _, m := range allowed {
			if req.Method == m {
				h(w, req)
				return
			}
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
