package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/database"
	"github.com/taiwoajasa245/reading-engine-api/internal/progress"
	"github.com/taiwoajasa245/reading-engine-api/pkg/config"
	"github.com/taiwoajasa245/reading-engine-api/pkg/logger"
)

type Server struct {
	port     string
	db       database.Service
	handler  http.Handler
	cfg      *config.Config
	log      logger.Logger
	corpus   *corpus.Corpus
	progress *progress.ProgressService
}

// NewServer constructs your app server with all dependencies injected. The corpus must
// already be loaded; an empty corpus never reaches this point.
func NewServer(db database.Service, cfg *config.Config, c *corpus.Corpus, log logger.Logger) *Server {
	stats := db.Health()
	if stats["status"] != "up" {
		log.Warnf("database health at startup: %v", stats)
	} else {
		log.Infof("database connection successful (%s)", db.Driver())
	}

	repo := progress.NewProgressRepo(db)
	svc := progress.NewProgressService(repo, c, log.With("component", "progress"),
		progress.WithDefaultLocation(cfg.DefaultLocation()),
		progress.WithRetryMaxElapsed(cfg.RetryMaxElapsed),
	)

	s := &Server{
		port:     cfg.Port,
		db:       db,
		cfg:      cfg,
		log:      log,
		corpus:   c,
		progress: svc,
	}

	s.handler = s.RegisterRoutes()
	return s
}

// HTTPServer returns the actual *http.Server instance
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}
