package backend

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/covenantzk/transfercircuit/ir"
)

// ProveJob is one unit of batch proving work.
type ProveJob struct {
	ID         string
	Assignment *ir.Assignment
}

// ProveResult pairs a job with its outcome.
type ProveResult struct {
	ID     string
	Bundle *Bundle
	Err    error
}

// ProvePool fans proving jobs out over a fixed set of workers. Groth16
// proving saturates cores on its own, so the default worker count is small.
type ProvePool struct {
	system  *System
	keys    *Keys
	workers int
	log     zerolog.Logger
}

func NewProvePool(system *System, keys *Keys, workers int, log zerolog.Logger) *ProvePool {
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}
	return &ProvePool{system: system, keys: keys, workers: workers, log: log}
}

// Run proves every job and delivers results on the returned channel, which
// closes when all jobs are done or the context is cancelled. Result order is
// completion order, not submission order.
func (p *ProvePool) Run(ctx context.Context, jobs []ProveJob) <-chan ProveResult {
	in := make(chan ProveJob)
	out := make(chan ProveResult, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range in {
				if ctx.Err() != nil {
					out <- ProveResult{ID: job.ID, Err: ctx.Err()}
					continue
				}
				proof, err := p.system.Prove(p.keys, job.Assignment)
				if err != nil {
					p.log.Warn().Str("job", job.ID).Err(err).Msg("proving failed")
					out <- ProveResult{ID: job.ID, Err: err}
					continue
				}
				out <- ProveResult{ID: job.ID, Bundle: &Bundle{
					Proof:  proof,
					Public: job.Assignment.PublicVector(),
				}}
			}
		}()
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
	return out
}
