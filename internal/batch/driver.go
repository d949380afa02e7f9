package batch

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"jobforge/internal/output"
	"jobforge/internal/pipeline"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

// Driver runs one pipeline per eligible job, concurrently. Jobs are
// filtered to unapplied records above the match-score threshold, ordered
// best-first, and capped. A job whose output already exists is skipped, so
// an interrupted batch resumes where it left off. One job's failure never
// aborts the batch; it becomes a per-job failure line in the summary.
type Driver struct {
	source      Source
	engine      *pipeline.Engine
	writer      *output.Writer
	threshold   int
	maxResumes  int
	concurrency int
	compilePDF  bool
	log         *logrus.Logger
}

// Summary is the batch run's final accounting.
type Summary struct {
	Results   []models.BatchJobResult
	Succeeded int
	Failed    int
	Skipped   int
}

// NewDriver wires a batch driver. concurrency <= 0 means 2 workers.
func NewDriver(source Source, engine *pipeline.Engine, writer *output.Writer, threshold, maxResumes, concurrency int, compilePDF bool) *Driver {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Driver{
		source:      source,
		engine:      engine,
		writer:      writer,
		threshold:   threshold,
		maxResumes:  maxResumes,
		concurrency: concurrency,
		compilePDF:  compilePDF,
		log:         utils.GetLogger(),
	}
}

// SelectJobs applies the eligibility filter and ordering: unapplied jobs
// scoring above the threshold, best matches first.
func (d *Driver) SelectJobs(jobs []models.Job) []models.Job {
	eligible := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Applied || job.MatchScore <= d.threshold {
			continue
		}
		eligible = append(eligible, job)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].MatchScore > eligible[j].MatchScore
	})
	return eligible
}

// Run executes the batch over the input document and experience text.
func (d *Driver) Run(ctx context.Context, inputDoc models.Document, experienceText string) (*Summary, error) {
	jobs, err := d.source.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	eligible := d.SelectJobs(jobs)

	d.log.WithFields(logrus.Fields{
		"total":    len(jobs),
		"eligible": len(eligible),
		"cap":      d.maxResumes,
	}).Info("Batch run starting")

	var (
		mu       sync.Mutex
		results  []models.BatchJobResult
		launched int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, job := range eligible {
		if d.writer.OutputExists(job) {
			mu.Lock()
			results = append(results, models.BatchJobResult{
				Job: job, Success: true, Skipped: true, Reason: "output already exists",
			})
			mu.Unlock()
			continue
		}
		if d.maxResumes > 0 && launched >= d.maxResumes {
			break
		}
		launched++

		job := job
		g.Go(func() error {
			result := d.runOne(gctx, job, inputDoc, experienceText)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			// Per-job failures are recorded, not propagated; returning an
			// error here would cancel the sibling runs.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Results: results}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Success:
			summary.Succeeded++
		default:
			summary.Failed++
		}
	}

	d.log.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	}).Info("Batch run finished")

	return summary, nil
}

func (d *Driver) runOne(ctx context.Context, job models.Job, inputDoc models.Document, experienceText string) models.BatchJobResult {
	d.log.WithField("job", job.DisplayName()).Info("Tailoring resume")

	result, err := d.engine.Run(ctx, inputDoc, job.JobDescription, experienceText)
	if err != nil {
		return models.BatchJobResult{Job: job, Reason: err.Error()}
	}

	paths, err := d.writer.WriteAll(ctx, job, result, d.compilePDF)
	if err != nil {
		return models.BatchJobResult{Job: job, Reason: err.Error()}
	}

	return models.BatchJobResult{
		Job:      job,
		Success:  true,
		YAMLPath: paths.YAMLPath,
		PDFPath:  paths.PDFPath,
	}
}
