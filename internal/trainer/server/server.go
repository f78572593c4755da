// Package server exposes the training orchestrator over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ehsaniara/annotrain/internal/trainer/artifact"
	"github.com/ehsaniara/annotrain/internal/trainer/auth"
	"github.com/ehsaniara/annotrain/internal/trainer/command"
	"github.com/ehsaniara/annotrain/internal/trainer/dataset"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/stream"
	"github.com/ehsaniara/annotrain/pkg/config"
	"github.com/ehsaniara/annotrain/pkg/errors"
	"github.com/ehsaniara/annotrain/pkg/logger"
	"github.com/ehsaniara/annotrain/pkg/platform"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . Orchestrator

// Orchestrator is the job side of the API.
type Orchestrator interface {
	Enqueue(desc domain.Descriptor) (string, error)
	Cancel(jobID string) error
	Status(taskKey string) domain.TaskStatus
	Job(jobID string) (domain.Job, error)
	Jobs() []domain.Job
	QueueLength() int
}

// LogStreamer follows a job log.
type LogStreamer interface {
	Stream(ctx context.Context, jobID string, cursor int64, emit stream.Emitter) error
}

// RunLocator lists the run directories of a task.
type RunLocator interface {
	ListRuns(runRoot string) ([]artifact.Run, error)
	RunDir(runRoot, name string) (string, error)
}

//counterfeiter:generate . DatasetPreparer

// DatasetPreparer builds the training set of a task.
type DatasetPreparer interface {
	Prepare(taskDir string, trainRatio float64) (*dataset.Result, error)
}

// TrainCommandBuilder renders the training argv.
type TrainCommandBuilder interface {
	Train(p command.TrainParams) ([]string, error)
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Config       *config.Config
	Platform     platform.OSOperations
	Orchestrator Orchestrator
	Streamer     LogStreamer
	Runs         RunLocator
	Dataset      DatasetPreparer
	Commands     TrainCommandBuilder
	Auth         *auth.Authorizer
	// RunNamePrefix allocates the run directory prefix of a new job.
	RunNamePrefix func(now time.Time) string
}

// Server is the echo application serving the training API.
type Server struct {
	Deps
	echo   *echo.Echo
	logger *logger.Logger

	// admitting holds the task keys whose train request is between the
	// status check and Enqueue.
	admitMu   sync.Mutex
	admitting map[string]struct{}
}

// New creates the server and registers every route.
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Deps:      deps,
		echo:      e,
		logger:    logger.WithField("component", "http"),
		admitting: make(map[string]struct{}),
	}
	e.HTTPErrorHandler = s.handleError
	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(deps.Auth.Middleware(func(c echo.Context) bool {
		return c.Path() == "/health"
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/api/models", s.listModels)

	tasks := s.echo.Group("/api/tasks/:owner/:task", validateTaskParams, s.Auth.RequireTask())
	tasks.POST("/train", s.train)
	tasks.GET("/status", s.status)
	tasks.GET("/runs", s.listRuns)
	tasks.GET("/runs/:run/download", s.downloadRun)

	s.echo.GET("/api/jobs", s.listJobs)
	s.echo.GET("/api/jobs/:id", s.getJob)
	s.echo.POST("/api/jobs/:id/stop", s.stopJob)

	s.echo.GET("/stream/:id", s.streamLog)
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "address", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests,
// open log streams included, until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// apiResponse is the envelope of every non-listing response.
type apiResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := errors.HTTPStatus(err)
	resp := apiResponse{Status: "error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		resp.Error = httpErrorCode(he.Code)
		resp.Message = fmt.Sprint(he.Message)
	} else {
		classified := errors.ClassifyError(err)
		resp.Error = classified.Code
		resp.Message = classified.UserMsg
	}

	if status >= http.StatusInternalServerError {
		errors.LogError(s.logger, err, "request failed")
	} else {
		s.logger.Debug("request rejected", "path", c.Path(), "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		s.logger.Warn("failed to write error response", "error", err)
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// validateTaskParams rejects owner and task names that are not plain
// directory names.
func validateTaskParams(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		for _, name := range []string{"owner", "task"} {
			if !domain.ValidName(c.Param(name)) {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s name", name))
			}
		}
		return next(c)
	}
}

// admit reserves key for one train request. The returned function releases
// it; ok is false while another request for the key holds it.
func (s *Server) admit(key string) (release func(), ok bool) {
	s.admitMu.Lock()
	defer s.admitMu.Unlock()
	if _, busy := s.admitting[key]; busy {
		return nil, false
	}
	s.admitting[key] = struct{}{}
	return func() {
		s.admitMu.Lock()
		delete(s.admitting, key)
		s.admitMu.Unlock()
	}, true
}

func taskKey(c echo.Context) string {
	return domain.TaskKey(c.Param("owner"), c.Param("task"))
}
