package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobforge/internal/batch"
	"jobforge/internal/pipeline"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

// newTailorCmd tailors the resume to a single job, looked up in the job
// store by a fuzzy query or supplied directly as a description file.
func newTailorCmd() *cobra.Command {
	var (
		jobQuery string
		jobFile  string
		jobTitle string
		company  string
		skipPDF  bool
	)

	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Tailor the resume to one job",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, client, err := setup(ctx)
			if err != nil {
				return err
			}
			log := utils.GetLogger()

			inputDoc, err := loadResume(cfg.Paths.Resume)
			if err != nil {
				return err
			}
			experiences, err := loadTextFile(cfg.Paths.Experiences)
			if err != nil {
				return err
			}

			var job models.Job
			switch {
			case jobFile != "":
				description, err := loadTextFile(jobFile)
				if err != nil {
					return err
				}
				job = models.Job{JobTitle: jobTitle, Company: company, JobDescription: description}
			case jobQuery != "":
				jobs, err := batch.NewCSVSource(cfg.Batch.JobsCSV).Jobs(ctx)
				if err != nil {
					return err
				}
				found, ok := batch.FindJob(jobs, jobQuery)
				if !ok {
					return fmt.Errorf("no job matching %q in %s", jobQuery, cfg.Batch.JobsCSV)
				}
				job = found
			default:
				return fmt.Errorf("either --job or --job-file is required")
			}

			log.WithField("job", job.DisplayName()).Info("Tailoring resume")

			engine := pipeline.NewEngine(client, cfg.Pipeline.SectionPaths,
				cfg.Pipeline.MaxValidationRetries, cfg.Pipeline.DishonestyThreshold)
			result, err := engine.Run(ctx, inputDoc, job.JobDescription, experiences)
			if err != nil {
				return err
			}

			paths, err := newWriter(cfg).WriteAll(ctx, job, result, !skipPDF)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tailored resume written to %s (dishonesty score %d)\n",
				paths.YAMLPath, result.DishonestyScore())
			if paths.PDFPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "PDF: %s\n", paths.PDFPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jobQuery, "job", "", "find the job by company or title substring")
	cmd.Flags().StringVar(&jobFile, "job-file", "", "read the job description from a file instead")
	cmd.Flags().StringVar(&jobTitle, "title", "", "job title when using --job-file")
	cmd.Flags().StringVar(&company, "company", "", "company name when using --job-file")
	cmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "skip PDF compilation")
	return cmd
}
