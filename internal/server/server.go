package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/itzrizvi/yooda-hostel-server/internal/handler"
)

type Config struct {
	Addr           string // e.g. ":5000"
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Handlers groups the route handlers the router dispatches to.
type Handlers struct {
	FoodItems     *handler.FoodItemHandler
	Students      *handler.StudentHandler
	Distributions *handler.DistributionHandler
	Imports       *handler.ImportHandler
	Progress      *handler.ProgressHandler
	Health        *handler.HealthHandler
}

type Server struct {
	httpServer *http.Server
}

func New(cfg Config, h Handlers) *Server {
	router := NewRouter(h, cfg.RequestTimeout)

	// recovery -> logging -> cors -> router
	var root http.Handler = handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
	root = handlers.CombinedLoggingHandler(os.Stdout, root)
	root = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(root)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if h.Progress != nil {
		s.RegisterOnShutdown(h.Progress.Shutdown)
	}
	return &Server{httpServer: s}
}

// NewRouter binds every route. Streaming routes sit outside the per-request
// timeout; everything else runs under it.
func NewRouter(h Handlers, timeout time.Duration) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", handler.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	r.HandleFunc("/Student/import/progress/stream", h.Progress.SSEProgress).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(timeoutMiddleware(timeout))

	api.HandleFunc("/FoodItem", h.FoodItems.CreateFoodItem).Methods(http.MethodPost)
	api.HandleFunc("/FoodItem", h.FoodItems.ListFoodItems).Methods(http.MethodGet)
	api.HandleFunc("/FoodItem/{id}", h.FoodItems.UpdateFoodItem).Methods(http.MethodPut)
	api.HandleFunc("/FoodItem/{id}", h.FoodItems.DeleteFoodItem).Methods(http.MethodDelete)

	api.HandleFunc("/Student", h.Students.CreateStudent).Methods(http.MethodPost)
	api.HandleFunc("/Student", h.Students.ListStudents).Methods(http.MethodGet)
	api.HandleFunc("/Student/", h.Students.UpdateStudentStatus).Methods(http.MethodPut)
	api.HandleFunc("/Student", h.Students.UpdateStudentStatus).Methods(http.MethodPut)
	api.HandleFunc("/Student/import", h.Imports.UploadCSV).Methods(http.MethodPost)
	api.HandleFunc("/Student/import/progress", h.Progress.GetFileProgress).
		Methods(http.MethodGet).Queries("fileName", "{fileName}")
	api.HandleFunc("/Student/import/progress", h.Progress.GetAllProgress).Methods(http.MethodGet)
	api.HandleFunc("/Student/{id}", h.Students.UpdateStudent).Methods(http.MethodPut)
	api.HandleFunc("/Student/{id}", h.Students.DeleteStudent).Methods(http.MethodDelete)
	api.HandleFunc("/Student/{roll}", h.Students.GetStudentsByRoll).Methods(http.MethodGet)

	api.HandleFunc("/Distribution", h.Distributions.CreateDistribution).Methods(http.MethodPost)
	api.HandleFunc("/Distribution", h.Distributions.ListDistributions).Methods(http.MethodGet)
	api.HandleFunc("/Distribution/", h.Distributions.ListDistributions).Methods(http.MethodGet)

	return r
}

// timeoutMiddleware bounds the storage work of a request.
func timeoutMiddleware(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
