// Package batch processes independent statement documents concurrently.
// Each worker owns a private record list per document; completed results are
// collected by a single goroutine, so one document's failure never affects
// the others.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/davidmtz-dev/bancos-reader/internal/detect"
	"github.com/davidmtz-dev/bancos-reader/internal/extractor"
	"github.com/davidmtz-dev/bancos-reader/internal/models"
	"github.com/davidmtz-dev/bancos-reader/internal/parser"
)

// ErrUnsupported marks a document whose filename matches no known issuer.
var ErrUnsupported = errors.New("unsupported statement layout")

// Job is one statement document to extract.
type Job struct {
	ID   string
	Path string
}

// Result is the per-document outcome. Err is set when the document could not
// be processed; the batch itself never aborts.
type Result struct {
	ID        string
	Path      string
	Strategy  models.Strategy
	Movements []models.Movement
	Err       error
}

// Runner distributes documents over a fixed worker pool.
type Runner struct {
	Workers  int
	Defaults parser.Defaults
	Log      zerolog.Logger
}

// Run extracts all documents and returns one Result per input path.
// Result order follows completion, not input order.
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan Job)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- r.process(job)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- Job{ID: uuid.NewString(), Path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector: the only synchronization point of the batch.
	var out []Result
	for res := range results {
		if res.Err != nil {
			r.Log.Error().Str("job", res.ID).Str("file", filepath.Base(res.Path)).
				Err(res.Err).Msg("document failed")
		} else {
			r.Log.Info().Str("job", res.ID).Str("file", filepath.Base(res.Path)).
				Str("strategy", string(res.Strategy)).Int("movements", len(res.Movements)).
				Msg("document extracted")
		}
		out = append(out, res)
	}
	return out
}

// process extracts a single document. All state is private to this call.
func (r *Runner) process(job Job) Result {
	res := Result{ID: job.ID, Path: job.Path}

	choice, ok := detect.Detect(job.Path)
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(job.Path))
		return res
	}
	res.Strategy = choice.Strategy

	doc, err := extractor.Open(job.Path)
	if err != nil {
		res.Err = err
		return res
	}

	p, err := parser.New(choice, r.Defaults)
	if err != nil {
		res.Err = err
		return res
	}

	movements, err := p.Parse(doc)
	if err != nil {
		res.Err = fmt.Errorf("parsing %s: %w", filepath.Base(job.Path), err)
		return res
	}

	res.Movements = movements
	return res
}
