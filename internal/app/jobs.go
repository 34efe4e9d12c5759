package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pagelens/pagelens/internal/interfaces"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

// JobEvent is one progress notification for a running batch job.
type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	Processed int `json:"processed,omitempty"`
	Total     int `json:"total,omitempty"`
}

// Job is an asynchronous batch analysis. Events carries status, progress and
// result notifications; it is closed when the job reaches a terminal state.
type Job struct {
	ID        string        `json:"id"`
	Status    JobStatus     `json:"status"`
	URLs      []string      `json:"urls"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	// Results is populated when the job completes; index-ordered, one per
	// input URL.
	Results []*AnalysisResult `json:"results,omitempty"`
}

// snapshot copies the job so callers can read and serialize it without
// holding jobsMu while runBatchJob keeps mutating the stored original.
// Result elements are written once and never mutated after, so sharing
// them is safe.
func (j *Job) snapshot() *Job {
	snap := *j
	snap.URLs = append([]string(nil), j.URLs...)
	if j.Results != nil {
		snap.Results = append([]*AnalysisResult(nil), j.Results...)
	}
	return &snap
}

// StartBatchJob begins analyzing urls in the background and returns
// immediately. URLs are processed sequentially so progress events are
// meaningful; one URL's failure never aborts the rest.
func (o *Orchestrator) StartBatchJob(ctx context.Context, urls []string) (*Job, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no urls to analyze")
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Status:    JobPending,
		URLs:      urls,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}

	jobCtx, cancel := context.WithCancel(ctx)

	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	// Snapshot before the worker goroutine starts mutating the stored job.
	snap := job.snapshot()

	go o.runBatchJob(jobCtx, jobID, urls)

	return snap, nil
}

func (o *Orchestrator) runBatchJob(ctx context.Context, jobID string, urls []string) {
	defer func() {
		o.jobsMu.Lock()
		job := o.jobs[jobID]
		if job != nil {
			job.EndedAt = time.Now().UTC()
		}
		delete(o.jobCancels, jobID)
		o.jobsMu.Unlock()

		// Close events so websocket consumers terminate cleanly.
		if job != nil && job.Events != nil {
			close(job.Events)
		}
	}()

	o.setJobStatus(jobID, JobRunning, "")
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

	results := make([]*AnalysisResult, 0, len(urls))
	for i, u := range urls {
		if ctx.Err() != nil {
			o.setJobStatus(jobID, JobCanceled, ctx.Err().Error())
			o.emitJobEvent(jobID, JobEvent{
				JobID:  jobID,
				Type:   JobEventStatus,
				Status: JobCanceled,
				Error:  ctx.Err().Error(),
			})
			return
		}

		results = append(results, o.AnalyzeURL(ctx, u))
		o.emitJobEvent(jobID, JobEvent{
			JobID:     jobID,
			Type:      JobEventProgress,
			Processed: i + 1,
			Total:     len(urls),
		})
	}

	o.jobsMu.Lock()
	if job := o.jobs[jobID]; job != nil {
		job.Status = JobDone
		job.Results = results
	}
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone})
	o.logger.Info("batch job finished",
		interfaces.Field{Key: "job_id", Value: jobID},
		interfaces.Field{Key: "urls", Value: len(urls)})
}

// GetJob returns a point-in-time copy of the job with the given ID, or nil.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	job := o.jobs[jobID]
	if job == nil {
		return nil
	}
	return job.snapshot()
}

// ListJobs returns point-in-time copies of all known jobs, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	jobs := make([]*Job, 0, len(o.jobs))
	for _, job := range o.jobs {
		jobs = append(jobs, job.snapshot())
	}
	o.jobsMu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].StartedAt.Equal(jobs[j].StartedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].StartedAt.Before(jobs[j].StartedAt)
	})
	return jobs
}

// CancelJob cancels a running job. Canceling a finished or unknown job is a
// no-op.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) setJobStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if job := o.jobs[jobID]; job != nil {
		job.Status = status
		job.Error = errMsg
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job := o.jobs[jobID]
	o.jobsMu.Unlock()
	if job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if the buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}
