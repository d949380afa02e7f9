package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobforge/internal/batch"
	"jobforge/internal/pipeline"
)

// newBatchCmd tailors the resume to every eligible job in the store. Jobs
// whose output already exists are skipped, so an interrupted batch can be
// rerun to pick up where it stopped.
func newBatchCmd() *cobra.Command {
	var (
		threshold   int
		maxResumes  int
		concurrency int
		skipPDF     bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Tailor the resume to all eligible jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, client, err := setup(ctx)
			if err != nil {
				return err
			}

			if threshold < 0 {
				threshold = cfg.Batch.MatchScoreThreshold
			}
			if maxResumes < 0 {
				maxResumes = cfg.Batch.MaxResumes
			}

			inputDoc, err := loadResume(cfg.Paths.Resume)
			if err != nil {
				return err
			}
			experiences, err := loadTextFile(cfg.Paths.Experiences)
			if err != nil {
				return err
			}

			engine := pipeline.NewEngine(client, cfg.Pipeline.SectionPaths,
				cfg.Pipeline.MaxValidationRetries, cfg.Pipeline.DishonestyThreshold)
			driver := batch.NewDriver(batch.NewCSVSource(cfg.Batch.JobsCSV), engine, newWriter(cfg),
				threshold, maxResumes, concurrency, !skipPDF)

			summary, err := driver.Run(ctx, inputDoc, experiences)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range summary.Results {
				switch {
				case r.Skipped:
					fmt.Fprintf(out, "SKIP %s: %s\n", r.Job.DisplayName(), r.Reason)
				case r.Success:
					fmt.Fprintf(out, "OK   %s -> %s\n", r.Job.DisplayName(), r.YAMLPath)
				default:
					fmt.Fprintf(out, "FAIL %s: %s\n", r.Job.DisplayName(), r.Reason)
				}
			}
			fmt.Fprintf(out, "\n%d succeeded, %d failed, %d skipped\n",
				summary.Succeeded, summary.Failed, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", -1, "minimum match score (default from config)")
	cmd.Flags().IntVar(&maxResumes, "max", -1, "maximum resumes to generate this run (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "concurrent pipeline runs")
	cmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "skip PDF compilation")
	return cmd
}
