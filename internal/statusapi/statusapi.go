// Package statusapi serves the coordinator's live snapshot over HTTP.
package statusapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"loca2-asset-tracker/internal/models"
)

type Config struct {
	ServerName string
	Listen     string
	BasicAuth  bool
	Users      map[string]string
}

// Source is the read side of the coordinator.
type Source interface {
	Snapshot() (map[int]models.Device, time.Time)
	Device(id int) (models.Device, bool)
	Available() bool
	Failures() int
	Interval() time.Duration
}

type Server struct {
	cfg    Config
	source Source
	log    zerolog.Logger
}

func New(cfg Config, source Source, log zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		source: source,
		log:    log.With().Str("component", "statusapi").Logger(),
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if s.cfg.BasicAuth {
		r.Use(middleware.BasicAuth(s.cfg.ServerName, s.cfg.Users))
	}

	r.Route("/device", func(r chi.Router) {
		r.Mount("/", s.apiDeviceRouter())
	})

	r.Get("/status", s.apiStatusGet)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// Run blocks serving the API.
func (s *Server) Run() error {
	s.log.Info().Str("listen", s.cfg.Listen).Msg("start status API")
	return http.ListenAndServe(s.cfg.Listen, s.Router())
}
