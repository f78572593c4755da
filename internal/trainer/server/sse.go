package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehsaniara/annotrain/internal/trainer/auth"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/stream"
	"github.com/ehsaniara/annotrain/pkg/errors"
)

// streamLog serves a job log as Server-Sent Events. Every line is a
// "data:" frame whose "id:" is the cursor to resume from, so a browser
// reconnecting with Last-Event-ID continues where it stopped. The feed ends
// after the end of stream marker; a disconnect never affects the job.
func (s *Server) streamLog(c echo.Context) error {
	jobID := c.Param("id")

	// A job that fell out of the history may still have a log. Its task is
	// unknown then, so only admins may read it; everyone else sees the
	// stream as missing.
	principal := auth.PrincipalFrom(c)
	restricted := false
	job, err := s.Orchestrator.Job(jobID)
	switch {
	case err == nil:
		if !s.Auth.CanAccessTaskKey(principal, job.TaskKey) {
			return errors.WrapJobError(jobID, "stream", errors.ErrPermissionDenied)
		}
	case errors.Is(err, errors.ErrJobNotFound):
		restricted = !principal.Admin
	default:
		return err
	}

	cursor, err := streamCursor(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	log := s.logger.WithFields("jobId", jobID, "cursor", cursor)
	log.Debug("log stream opened")

	emit := func(e stream.Event) error {
		var werr error
		if e.KeepAlive {
			_, werr = fmt.Fprint(w, ": keep-alive\n\n")
		} else {
			_, werr = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", e.Cursor, e.Line)
		}
		if werr != nil {
			return werr
		}
		w.Flush()
		return nil
	}

	if restricted {
		log.Debug("log stream of an unknown job refused")
		if err := emit(stream.Event{Cursor: cursor, Line: domain.ErrorLine(errors.ErrLogStreamNotFound.Error())}); err != nil {
			return nil
		}
		_ = emit(stream.Event{Cursor: cursor, Line: domain.SentinelEndOfStream})
		return nil
	}

	err = s.Streamer.Stream(c.Request().Context(), jobID, cursor, emit)
	if err != nil {
		// The response is committed; the client simply went away.
		log.Debug("log stream closed early", "error", err)
		return nil
	}
	log.Debug("log stream finished")
	return nil
}

// streamCursor reads the resume position from Last-Event-ID or ?cursor=.
func streamCursor(c echo.Context) (int64, error) {
	raw := strings.TrimSpace(c.Request().Header.Get("Last-Event-ID"))
	if raw == "" {
		raw = c.QueryParam("cursor")
	}
	if raw == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || cursor < 0 {
		return 0, fmt.Errorf("invalid stream cursor %q", raw)
	}
	return cursor, nil
}
