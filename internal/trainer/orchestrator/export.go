package orchestrator

import (
	"fmt"
	"path/filepath"

	"github.com/ehsaniara/annotrain/internal/trainer/command"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
	"github.com/ehsaniara/annotrain/internal/trainer/process"
	"github.com/ehsaniara/annotrain/pkg/errors"
)

// complete handles a training that exited with code 0: it locates the run
// this job created, exports its weights and reports success. An export
// failure is logged into the job output but never changes the outcome.
func (o *Orchestrator) complete(j *job) {
	runDir, err := o.locator.LatestRun(j.desc.RunRoot, j.desc.RunNamePrefix)
	if err != nil {
		o.logger.Warn("no run directory after successful training",
			"jobId", j.id, "runRoot", j.desc.RunRoot, "prefix", j.desc.RunNamePrefix, "error", err)
		o.finish(j, domain.PhaseError, errors.ErrArtifactMissing.Error())
		return
	}

	o.export(j, runDir)
	o.finishWith(j, domain.PhaseSucceeded, "", filepath.Base(runDir))
}

func (o *Orchestrator) export(j *job, runDir string) {
	format := j.desc.Export.Format
	if format == "" || o.exporter == nil || !o.exporter.CanExport() {
		return
	}
	log := o.logger.WithFields("jobId", j.id, "format", format)

	weights, ok := o.locator.Weights(runDir)
	if !ok {
		o.appendLog(j.id, fmt.Sprintf("--- export skipped: no weights in %s ---", filepath.Base(runDir)))
		log.Warn("export skipped, no weights found", "runDir", runDir)
		return
	}

	argv, err := o.exporter.Export(command.ExportParams{
		Weights: weights,
		Format:  format,
		Opset:   j.desc.Export.Opset,
	})
	if err != nil {
		o.appendLog(j.id, fmt.Sprintf("--- export failed: %v ---", err))
		log.Warn("export command could not be built", "error", err)
		return
	}

	o.appendLog(j.id, fmt.Sprintf("--- export: %s ---", format))
	code, err := o.proc.Run(process.Spec{
		JobID:   j.id,
		Command: argv,
		Env:     j.desc.Environment,
		Dir:     j.desc.WorkDir,
	}, func(line string) { o.appendLog(j.id, line) })

	switch {
	case err != nil:
		o.appendLog(j.id, fmt.Sprintf("--- export failed: %v ---", err))
		log.Warn("export failed to start", "error", err)
	case code != 0:
		o.appendLog(j.id, fmt.Sprintf("--- export failed (Code: %d) ---", code))
		log.Warn("export exited abnormally", "exitCode", code)
	default:
		log.Info("export finished", "weights", weights)
	}
}
