package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"tasklink/internal/events"
	"tasklink/internal/relations"
	"tasklink/internal/store"
)

const (
	apiTokenEnvKey    = "TASKLINK_API_TOKEN"
	allowRemoteEnvKey = "TASKLINK_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	adminMaxFailures   = 5
	adminFailureWindow = time.Minute
	adminBlockDuration = 5 * time.Minute
)

// Config carries the runtime options of a Server.
type Config struct {
	ProjectPrefix  string
	AdminTokenHash string
	Publisher      events.Publisher
	SubjectPrefix  string
}

// Server wraps HTTP handlers for the tasklink API.
type Server struct {
	addr           string
	store          store.Repository
	projectPrefix  string
	projects       *ProjectService
	tasks          *TaskService
	templates      *TemplateService
	registry       *relations.TypeRegistry
	graph          *relations.Graph
	publisher      events.Publisher
	subjectPrefix  string
	logger         *slog.Logger
	apiToken       string
	adminTokenHash string
	adminLimiter   *failureRateLimiter
}

// New creates a new server instance.
func New(addr string, repo store.Repository, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}

	return &Server{
		addr:           addr,
		store:          repo,
		projectPrefix:  cfg.ProjectPrefix,
		projects:       NewProjectService(repo),
		tasks:          NewTaskService(repo, cfg.ProjectPrefix),
		templates:      NewTemplateService(repo),
		registry:       relations.NewTypeRegistry(repo),
		graph:          relations.NewGraph(repo),
		publisher:      publisher,
		subjectPrefix:  cfg.SubjectPrefix,
		logger:         logger,
		apiToken:       strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminTokenHash: strings.TrimSpace(cfg.AdminTokenHash),
		adminLimiter:   newFailureRateLimiter(adminMaxFailures, adminFailureWindow, adminBlockDuration),
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe starts the HTTP server and blocks until ctx is done or the
// listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
