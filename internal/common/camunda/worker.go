// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/metrics"
)

// JobHandler completes or fails the job itself.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// WorkerOptions tunes one job worker.
type WorkerOptions struct {
	Name          string
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker is an open job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker. Active job counts are tracked per task type.
func NewWorker(client zbc.Client, taskType string, handler JobHandler, opts WorkerOptions, log logger.Logger) *Worker {
	log = log.With(map[string]interface{}{"taskType": taskType})
	active := metrics.WorkerJobsActive.WithLabelValues(taskType)

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(func(c worker.JobClient, job entities.Job) {
			active.Inc()
			defer active.Dec()
			handler.Handle(c, job)
		})

	cmd := step.MaxJobsActive(maxInt(opts.MaxJobsActive, 1))
	if opts.Timeout > 0 {
		cmd = cmd.Timeout(opts.Timeout)
	}
	if opts.Name != "" {
		cmd = cmd.Name(opts.Name)
	}

	w := &Worker{
		worker:   cmd.Open(),
		logger:   log,
		taskType: taskType,
	}
	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
	})
	return w
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
