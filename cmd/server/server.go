package main

import (
	"context"
	"time"

	"github.com/JaimeStill/medbrief/internal/config"
	"github.com/JaimeStill/medbrief/internal/infrastructure"
)

// initTimeout bounds module construction, which includes OIDC discovery.
const initTimeout = 30 * time.Second

// Server owns the infrastructure, the mounted modules and the HTTP listener.
type Server struct {
	cfg   *config.Config
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	modules, err := NewModules(ctx, infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	return &Server{
		cfg:   cfg,
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Run starts every subsystem, blocks until ctx is cancelled, then shuts
// down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	logger := s.infra.Logger
	logger.Info("starting medbrief",
		"addr", s.cfg.Server.Addr(),
		"version", s.cfg.Version,
		"env", s.cfg.Env(),
	)

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		logger.Info("all subsystems ready")
	}()

	<-ctx.Done()
	logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(s.cfg.ShutdownTimeoutDuration())
}
