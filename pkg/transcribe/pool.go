package transcribe

import (
	"context"
	"fmt"
	"log"
	"sync"

	"podscanner/pkg/domain"
)

// Job is one transcription unit: an audio file plus where its transcript
// artifact goes. Jobs are independent and side-effect-only, so completion
// order across workers does not matter.
type Job struct {
	Episode        domain.Episode
	AudioPath      string
	TranscriptPath string
}

// Result reports the outcome for one job. The orchestrator collects results
// and updates the ledger; workers never touch shared state.
type Result struct {
	Job Job
	Err error
}

// Pool distributes transcription jobs across workers. Two strategies share
// this contract, selected by configuration.
type Pool interface {
	Run(ctx context.Context, jobs []Job) []Result
}

// SharedPool runs jobs on a fixed set of goroutines inside this process.
// Each worker initializes its Transcriber exactly once and reuses it across
// the jobs assigned to it.
type SharedPool struct {
	workers int
	factory Factory
}

// NewSharedPool creates a shared-memory pool with the given worker count.
func NewSharedPool(workers int, factory Factory) *SharedPool {
	if workers <= 0 {
		workers = 1
	}
	return &SharedPool{workers: workers, factory: factory}
}

// Run distributes jobs over the workers and blocks until every job has a
// result. A failed job is a Result with Err set, never an aborted batch.
func (p *SharedPool) Run(ctx context.Context, jobs []Job) []Result {
	return runPool(ctx, jobs, p.workers, func(ctx context.Context, workerID int, in <-chan Job, out chan<- Result) {
		tr, err := p.factory()
		if err != nil {
			for job := range in {
				out <- Result{Job: job, Err: fmt.Errorf("%w: worker %d could not initialize model: %v", ErrTranscription, workerID, err)}
			}
			return
		}
		defer tr.Close()

		for job := range in {
			out <- Result{Job: job, Err: runJob(ctx, tr, job)}
		}
	})
}

// ProcessPool isolates every job in its own freshly created backend, so a
// crashed or wedged model invocation is confined to that job. It trades the
// per-job startup cost for batch survival.
type ProcessPool struct {
	workers int
	factory Factory
}

// NewProcessPool creates an isolated pool with the given worker count.
func NewProcessPool(workers int, factory Factory) *ProcessPool {
	if workers <= 0 {
		workers = 1
	}
	return &ProcessPool{workers: workers, factory: factory}
}

// Run distributes jobs over worker slots, creating and closing a Transcriber
// per job.
func (p *ProcessPool) Run(ctx context.Context, jobs []Job) []Result {
	return runPool(ctx, jobs, p.workers, func(ctx context.Context, workerID int, in <-chan Job, out chan<- Result) {
		for job := range in {
			tr, err := p.factory()
			if err != nil {
				out <- Result{Job: job, Err: fmt.Errorf("%w: worker %d could not initialize model: %v", ErrTranscription, workerID, err)}
				continue
			}
			res := Result{Job: job, Err: runJob(ctx, tr, job)}
			tr.Close()
			out <- res
		}
	})
}

// runPool is the channel plumbing both strategies share: feed jobs, run
// workers, collect exactly one result per job.
func runPool(ctx context.Context, jobs []Job, workers int, worker func(context.Context, int, <-chan Job, chan<- Result)) []Result {
	if len(jobs) == 0 {
		return nil
	}

	in := make(chan Job)
	out := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, in, out)
		}(i)
	}

	go func() {
		defer close(in)
		for _, job := range jobs {
			select {
			case in <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, len(jobs))
	for res := range out {
		if res.Err != nil {
			log.Printf("Transcription failed for %s: %v", res.Job.AudioPath, res.Err)
		}
		results = append(results, res)
	}
	return results
}

// runJob transcribes one file and writes its artifact.
func runJob(ctx context.Context, tr Transcriber, job Job) error {
	text, err := tr.Transcribe(ctx, job.AudioPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if err := WriteTranscript(job.TranscriptPath, job.Episode, text); err != nil {
		return fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	return nil
}
