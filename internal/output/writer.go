package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"jobforge/internal/docedit"
	"jobforge/internal/latex"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

// Writer owns everything below the output directory: per-job folders,
// resume YAML, supporting markdown artifacts, and the PDF render handoff.
// The pipeline itself never sees a file path.
type Writer struct {
	outputDir string
	cacheDir  string
	userName  string
	compiler  *latex.Compiler
	log       *logrus.Logger
}

// WrittenPaths reports where one job's artifacts landed. PDFPath is empty
// when compilation was skipped or failed.
type WrittenPaths struct {
	Dir      string
	YAMLPath string
	PDFPath  string
}

// NewWriter builds a writer rooted at outputDir. compiler may be nil to
// disable PDF rendering entirely.
func NewWriter(outputDir, cacheDir, userName string, compiler *latex.Compiler) *Writer {
	return &Writer{
		outputDir: outputDir,
		cacheDir:  cacheDir,
		userName:  userName,
		compiler:  compiler,
		log:       utils.GetLogger(),
	}
}

// names derives the per-job filenames from a job record.
func (w *Writer) names(job models.Job) Names {
	return ResumeFilenames(w.userName, job.JobTitle, job.Company, job.Location, job.MatchScore)
}

// OutputExists reports whether the job's resume YAML is already on disk,
// used for idempotent batch resumption.
func (w *Writer) OutputExists(job models.Job) bool {
	_, err := os.Stat(filepath.Join(w.outputDir, w.names(job).YAML))
	return err == nil
}

// WriteAll persists every artifact of one completed pipeline run and, when
// enabled, renders the PDF. A failed render is reported but does not
// discard the already-written YAML.
func (w *Writer) WriteAll(ctx context.Context, job models.Job, result *models.TailorResult, compilePDF bool) (*WrittenPaths, error) {
	names := w.names(job)
	jobDir := filepath.Join(w.outputDir, names.Dir)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job output directory: %w", err)
	}

	paths := &WrittenPaths{Dir: jobDir}

	yamlPath := filepath.Join(w.outputDir, names.YAML)
	if err := w.writeResumeYAML(result.FinalDocument(), yamlPath); err != nil {
		return nil, err
	}
	paths.YAMLPath = yamlPath

	// When formatting produced a presentation variant, keep the unformatted
	// working document alongside it for diffing.
	if result.FormattedDocument != nil {
		plain := strings.TrimSuffix(yamlPath, ".yaml") + "_unformatted.yaml"
		if err := w.writeResumeYAML(result.WorkingDocument, plain); err != nil {
			return nil, err
		}
	}

	if err := w.writeMarkdown(filepath.Join(jobDir, "job_description.md"),
		"# "+job.DisplayName()+"\n\n"+job.JobDescription); err != nil {
		return nil, err
	}

	if keywords, ok := result.Intermediates["jd_analysis_output"].(string); ok && keywords != "" {
		if err := w.writeMarkdown(filepath.Join(jobDir, "keywords.md"), keywords); err != nil {
			return nil, err
		}
	}

	if changelog := w.renderChangelog(result); changelog != "" {
		if err := w.writeMarkdown(filepath.Join(jobDir, "changelog.md"), changelog); err != nil {
			return nil, err
		}
	}

	if err := w.writeMarkdown(filepath.Join(jobDir, "transcript.md"), w.renderTranscript(result)); err != nil {
		return nil, err
	}

	if compilePDF && w.compiler != nil {
		pdfPath := filepath.Join(w.outputDir, names.PDF)
		buildDir := filepath.Join(w.cacheDir, names.Dir)
		if err := w.compiler.Compile(ctx, yamlPath, pdfPath, buildDir); err != nil {
			w.log.WithFields(logrus.Fields{
				"job":   job.DisplayName(),
				"error": err.Error(),
			}).Error("PDF compilation failed, YAML output kept")
		} else {
			paths.PDFPath = pdfPath
		}
	}

	w.log.WithFields(logrus.Fields{
		"job": job.DisplayName(),
		"dir": jobDir,
	}).Info("Job outputs written")

	return paths, nil
}

func (w *Writer) writeResumeYAML(doc models.Document, path string) error {
	rendered, err := docedit.Render(doc, true)
	if err != nil {
		return fmt.Errorf("failed to render resume YAML: %w", err)
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write resume YAML: %w", err)
	}
	return nil
}

func (w *Writer) writeMarkdown(path, content string) error {
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// renderChangelog summarizes what changed across the run: the refinement
// changelog text when a refine loop ran, plus the version count.
func (w *Writer) renderChangelog(result *models.TailorResult) string {
	var sb strings.Builder

	if versions, ok := result.Intermediates["working_document_versions"].([]models.Document); ok && len(versions) > 0 {
		fmt.Fprintf(&sb, "# Changelog\n\nDocument versions recorded: %d\n", len(versions))
	}
	if attempts, ok := result.Intermediates["validation_attempts"].(int); ok {
		fmt.Fprintf(&sb, "Validation attempts: %d\n", attempts)
	}
	fmt.Fprintf(&sb, "Final dishonesty score: %d\n", result.DishonestyScore())

	if changelog, ok := result.Intermediates["refinement_changelog"].(string); ok && changelog != "" {
		sb.WriteString("\n## Refinement changes\n\n")
		sb.WriteString(changelog)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderTranscript flattens the per-phase chat histories into one
// reviewable markdown document, phases in pipeline order.
func (w *Writer) renderTranscript(result *models.TailorResult) string {
	var sb strings.Builder
	sb.WriteString("# Pipeline transcript\n")

	for _, phase := range []string{"planning", "optimizer", "validation", "refinement", "formatting"} {
		history, ok := result.ChatHistories[phase]
		if !ok || len(history) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n", phase)
		for _, msg := range history {
			fmt.Fprintf(&sb, "\n### %s\n\n%s\n", msg.Role, msg.Content)
		}
	}

	return sb.String()
}
