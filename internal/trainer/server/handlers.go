package server

import (
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/ehsaniara/annotrain/internal/trainer/artifact"
	"github.com/ehsaniara/annotrain/internal/trainer/auth"
	"github.com/ehsaniara/annotrain/internal/trainer/command"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/pkg/errors"
)

// TrainRequest holds the training parameters. Fields left out of the
// request keep the configured defaults.
type TrainRequest struct {
	Model        string  `json:"model" form:"model"`
	Epochs       int     `json:"epochs" form:"epochs"`
	ImgSize      int     `json:"imgsz" form:"imgsz"`
	Batch        int     `json:"batch" form:"batch"`
	Device       string  `json:"device" form:"device"`
	TrainRatio   float64 `json:"train_ratio" form:"train_ratio"`
	ExportFormat string  `json:"export_format" form:"export_format"`
	ExportOpset  int     `json:"export_opset" form:"export_opset"`
}

func (s *Server) defaultTrainRequest() TrainRequest {
	d := s.Config.Training.Defaults
	return TrainRequest{
		Epochs:       d.Epochs,
		ImgSize:      d.ImgSize,
		Batch:        d.Batch,
		Device:       d.Device,
		TrainRatio:   d.TrainRatio,
		ExportFormat: d.ExportFormat,
		ExportOpset:  d.ExportOpset,
	}
}

func (r *TrainRequest) validate() error {
	switch {
	case r.Model == "":
		return errors.NewInvalidDescriptorError("model", "is required")
	case !domain.ValidName(r.Model):
		return errors.NewInvalidDescriptorError("model", "is not a valid file name")
	case r.Epochs <= 0:
		return errors.NewInvalidDescriptorError("epochs", "must be positive")
	case r.ImgSize <= 0:
		return errors.NewInvalidDescriptorError("imgsz", "must be positive")
	case r.Batch == 0 || r.Batch < -1:
		return errors.NewInvalidDescriptorError("batch", "must be positive or -1")
	case r.TrainRatio <= 0 || r.TrainRatio > 1:
		return errors.NewInvalidDescriptorError("train_ratio", "must be in (0, 1]")
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":       "ok",
		"queue_length": s.Orchestrator.QueueLength(),
	})
}

// listModels returns the base weight files available for training.
func (s *Server) listModels(c echo.Context) error {
	entries, err := s.Platform.ReadDir(s.Config.Storage.ModelsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read models directory", "dir", s.Config.Storage.ModelsDir, "error", err)
		}
		return c.JSON(http.StatusOK, []string{})
	}

	models := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), !e.IsDir() && strings.HasSuffix(e.Name(), ".pt")
	})
	slices.Sort(models)
	return c.JSON(http.StatusOK, models)
}

// train prepares the dataset of the task and queues a training job.
func (s *Server) train(c echo.Context) error {
	owner, task := c.Param("owner"), c.Param("task")
	key := taskKey(c)
	log := s.logger.WithFields("taskKey", key, "user", auth.PrincipalFrom(c).Username)

	req := s.defaultTrainRequest()
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	taskDir := s.Config.TaskDir(owner, task)
	if !s.Platform.DirExists(taskDir) {
		return errors.WrapTaskError(key, "train", errors.ErrTaskNotFound)
	}
	modelPath := filepath.Join(s.Config.Storage.ModelsDir, req.Model)
	if !s.Platform.FileExists(modelPath) {
		return errors.NewInvalidDescriptorError("model", "not found: "+req.Model)
	}

	// The dataset directory is shared by every job of the task, so nothing
	// may rebuild it while another request for the key is preparing or a
	// job of the key is active. Enqueue still checks atomically.
	release, ok := s.admit(key)
	if !ok {
		return errors.NewAlreadyRunningError(key)
	}
	defer release()
	if s.Orchestrator.Status(key).IsRunning() {
		return errors.NewAlreadyRunningError(key)
	}

	prepared, err := s.Dataset.Prepare(taskDir, req.TrainRatio)
	if err != nil {
		log.Warn("dataset preparation failed", "error", err)
		return err
	}

	runRoot := s.Config.RunRoot(owner, task)
	if err := s.Platform.MkdirAll(runRoot, 0755); err != nil {
		return errors.WrapTaskError(key, "train", err)
	}

	prefix := s.RunNamePrefix(s.Platform.Now())
	argv, err := s.Commands.Train(command.TrainParams{
		Data:    prepared.ManifestPath,
		Model:   modelPath,
		Epochs:  req.Epochs,
		ImgSize: req.ImgSize,
		Batch:   req.Batch,
		Device:  req.Device,
		Project: runRoot,
		Name:    prefix,
	})
	if err != nil {
		return errors.WrapTaskError(key, "train", err)
	}

	jobID, err := s.Orchestrator.Enqueue(domain.Descriptor{
		TaskKey:       key,
		Command:       argv,
		Environment:   s.Config.Training.Env,
		WorkDir:       taskDir,
		RunRoot:       runRoot,
		RunNamePrefix: prefix,
		Export:        domain.ExportSpec{Format: req.ExportFormat, Opset: req.ExportOpset},
		Preamble:      prepared.Lines,
	})
	if err != nil {
		return err
	}

	log.Info("training queued", "jobId", jobID, "model", req.Model, "epochs", req.Epochs, "runPrefix", prefix)
	return c.JSON(http.StatusOK, apiResponse{Status: "ok", JobID: jobID, Message: "Started"})
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Orchestrator.Status(taskKey(c)))
}

// runView is a run directory as listed by the API.
type runView struct {
	Name       string `json:"name"`
	MTime      int64  `json:"mtime"`
	HasWeights bool   `json:"has_weights"`
	Weights    string `json:"weights,omitempty"`
}

func (s *Server) listRuns(c echo.Context) error {
	runs, err := s.Runs.ListRuns(s.Config.RunRoot(c.Param("owner"), c.Param("task")))
	if err != nil {
		return errors.WrapTaskError(taskKey(c), "list runs", err)
	}
	return c.JSON(http.StatusOK, lo.Map(runs, func(r artifact.Run, _ int) runView {
		return runView{Name: r.Name, MTime: r.ModTime.Unix(), HasWeights: r.HasWeights, Weights: r.Weights}
	}))
}

// jobView is a job snapshot with its duration.
type jobView struct {
	domain.Job
	DurationSeconds float64 `json:"duration_seconds"`
}

func newJobView(j domain.Job) jobView {
	return jobView{Job: j, DurationSeconds: j.GetDuration().Round(time.Millisecond).Seconds()}
}

func (s *Server) listJobs(c echo.Context) error {
	p := auth.PrincipalFrom(c)
	jobs := lo.Filter(s.Orchestrator.Jobs(), func(j domain.Job, _ int) bool {
		return s.Auth.CanAccessTaskKey(p, j.TaskKey)
	})
	return c.JSON(http.StatusOK, lo.Map(jobs, func(j domain.Job, _ int) jobView { return newJobView(j) }))
}

// lookupJob returns the job of the :id parameter if the caller may see it.
func (s *Server) lookupJob(c echo.Context) (domain.Job, error) {
	job, err := s.Orchestrator.Job(c.Param("id"))
	if err != nil {
		return domain.Job{}, err
	}
	if !s.Auth.CanAccessTaskKey(auth.PrincipalFrom(c), job.TaskKey) {
		return domain.Job{}, errors.WrapJobError(job.ID, "access", errors.ErrPermissionDenied)
	}
	return job, nil
}

func (s *Server) getJob(c echo.Context) error {
	job, err := s.lookupJob(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newJobView(job))
}

// stopJob requests cancellation and returns without waiting for it.
func (s *Server) stopJob(c echo.Context) error {
	job, err := s.lookupJob(c)
	if err != nil {
		return err
	}
	if err := s.Orchestrator.Cancel(job.ID); err != nil {
		return err
	}
	s.logger.Info("stop requested", "jobId", job.ID, "user", auth.PrincipalFrom(c).Username)
	return c.JSON(http.StatusOK, apiResponse{Status: "ok", JobID: job.ID, Message: "stop signal sent"})
}
