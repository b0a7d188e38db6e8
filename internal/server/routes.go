package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taiwoajasa245/reading-engine-api/internal/auth"
	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/progress"
	"github.com/taiwoajasa245/reading-engine-api/pkg/response"
)

const apiPrefix = "/reading-api/v1"

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.ServerIsWorking)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/", s.ServerIsWorking)
		r.Get("/health", s.HealthHandler)
		s.loadVerseRoutes(r)
		s.loadProgressRoutes(r)
	})

	return r
}

// requestLogger replaces chi's stdout logger with one line per request on the app logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Infof("[request_id=%s] %s %s -> %d (%dB) in %s",
				middleware.GetReqID(r.Context()), r.Method, r.URL.Path,
				ww.Status(), ww.BytesWritten(), time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) ServerIsWorking(w http.ResponseWriter, r *http.Request) {
	resp := make(map[string]string)
	resp["message"] = "Welcome to the reading engine api"
	response.Success(w, resp, "Success")
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health()
	if stats["status"] != "up" {
		response.Error(w, http.StatusServiceUnavailable, "Database unavailable", stats)
		return
	}
	stats["verses"] = strconv.Itoa(s.corpus.Len())
	response.Success(w, stats, "healthy")
}

func (s *Server) loadVerseRoutes(router chi.Router) {
	verseHandler := corpus.NewHandler(s.corpus)

	router.Get("/verses", verseHandler.LookupHandler)
	router.Get("/verses/{book}/{chapter}", verseHandler.GetChapterHandler)
	router.Get("/verses/{book}/{chapter}/{verse}", verseHandler.GetVerseHandler)
}

func (s *Server) loadProgressRoutes(router chi.Router) {
	progressHandler := progress.NewProgressHandler(s.progress)

	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.cfg.JWTSecret))
		r.Get("/progress/next", progressHandler.NextUnreadHandler)
		r.Post("/progress/read", progressHandler.MarkReadHandler)
		r.Post("/progress/reflections", progressHandler.ShareReflectionHandler)
		r.Get("/progress/reflections", progressHandler.ListReflectionsHandler)
		r.Get("/progress/summary", progressHandler.SummaryHandler)
		r.Get("/progress/dashboard", progressHandler.DashboardHandler)
		r.Get("/progress/missions", progressHandler.MissionsHandler)
		r.Post("/progress/missions/{missionID}/claim", progressHandler.ClaimMissionHandler)
		r.Patch("/progress/timezone", progressHandler.SetTimezoneHandler)
	})
}
