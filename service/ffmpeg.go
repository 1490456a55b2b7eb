package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("job queue full")

// Job is a single ffmpeg/ffprobe invocation
type Job struct {
	Ctx  context.Context
	Bin  string
	Args []string
	// Filled in by the worker before Done is signalled
	Stdout []byte
	Done   chan error
}

// JobQueue runs external media tools on a fixed number of workers and
// refuses work once maxJobs jobs are waiting.
type JobQueue struct {
	jobs    chan *Job
	workers int
	threads int

	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

func NewJobQueue(workers, maxJobs int) *JobQueue {
	if workers < 1 {
		workers = 1
	}

	if maxJobs < 0 {
		maxJobs = 0
	}

	return &JobQueue{
		jobs:    make(chan *Job, maxJobs),
		workers: workers,
		threads: threadsPerJob(workers),
	}
}

// Figures out the amount of threads to use per ffmpeg job
func threadsPerJob(workers int) int {
	threads := int(math.Floor(float64(runtime.NumCPU()) / float64(workers)))
	if threads < 1 {
		threads = 1
	}

	zap.L().Debug("Figured out amount of threads to use", zap.Int("t", threads))
	return threads
}

// Threads is the -threads value each job should pass to ffmpeg
func (q *JobQueue) Threads() int {
	return q.threads
}

// Pending is the amount of jobs waiting for a worker
func (q *JobQueue) Pending() int {
	return len(q.jobs)
}

func (q *JobQueue) StartWorkerPool() {
	q.startOnce.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.worker()
		}
	})
}

// Close stops accepting jobs and waits for the workers to drain the queue
func (q *JobQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}

func (q *JobQueue) worker() {
	defer q.wg.Done()

	for job := range q.jobs {
		job.Done <- q.run(job)
	}
}

func (q *JobQueue) Enqueue(job *Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run queues bin with args and waits for it to finish, returning its stdout
func (q *JobQueue) Run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	job := &Job{
		Ctx:  ctx,
		Bin:  bin,
		Args: args,
		Done: make(chan error, 1),
	}

	if err := q.Enqueue(job); err != nil {
		return nil, newError(ErrBusy, "Server is busy, please try again later", err)
	}

	select {
	case err := <-job.Done:
		return job.Stdout, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *JobQueue) run(job *Job) error {
	if err := job.Ctx.Err(); err != nil {
		return err
	}

	cmd := exec.CommandContext(job.Ctx, job.Bin, job.Args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	zap.L().Debug("Running command", zap.String("cmd", cmd.String()))

	if err := cmd.Run(); err != nil {
		zap.L().Debug("Command failed", zap.Error(err), zap.String("stderr", stderr.String()))
		return fmt.Errorf("%s failed, %w (%s)", job.Bin, err, strings.TrimSpace(stderr.String()))
	}

	job.Stdout = stdout.Bytes()
	return nil
}
