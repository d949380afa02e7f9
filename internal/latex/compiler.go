package latex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"jobforge/pkg/utils"
)

// CompilationError reports a failed PDF render: timeout, non-zero exit, or
// a missing output artifact. It is fatal to the render step only; the YAML
// document that was being rendered remains valid output.
type CompilationError struct {
	DocumentPath string
	Reason       string
	Log          string
}

func (e *CompilationError) Error() string {
	if e.Log != "" {
		return fmt.Sprintf("PDF compilation failed for %s: %s; log:\n%s", e.DocumentPath, e.Reason, e.Log)
	}
	return fmt.Sprintf("PDF compilation failed for %s: %s", e.DocumentPath, e.Reason)
}

// Compiler invokes the external resume renderer, a command that takes a
// document path, an output PDF path, and a scratch build directory.
type Compiler struct {
	command string
	timeout time.Duration
	log     *logrus.Logger
}

// NewCompiler builds a compiler around the configured render command.
func NewCompiler(command string, timeout time.Duration) *Compiler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Compiler{
		command: command,
		timeout: timeout,
		log:     utils.GetLogger(),
	}
}

// Compile renders documentPath to a PDF at outputPath, using buildDir for
// intermediate artifacts. The command is time-bounded; a timeout is a hard
// failure, not a retry.
func (c *Compiler) Compile(ctx context.Context, documentPath, outputPath, buildDir string) error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return &CompilationError{DocumentPath: documentPath, Reason: fmt.Sprintf("create build dir: %v", err)}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return &CompilationError{DocumentPath: documentPath, Reason: fmt.Sprintf("create output dir: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, documentPath, outputPath, buildDir)
	cmd.Dir = buildDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return &CompilationError{
			DocumentPath: documentPath,
			Reason:       fmt.Sprintf("timed out after %s", c.timeout),
			Log:          out.String(),
		}
	}
	if err != nil {
		return &CompilationError{
			DocumentPath: documentPath,
			Reason:       err.Error(),
			Log:          out.String(),
		}
	}

	if info, statErr := os.Stat(outputPath); statErr != nil || info.Size() == 0 {
		return &CompilationError{
			DocumentPath: documentPath,
			Reason:       "renderer exited cleanly but produced no PDF",
			Log:          out.String(),
		}
	}

	c.log.WithFields(logrus.Fields{
		"document": documentPath,
		"pdf":      outputPath,
		"elapsed":  utils.FormatDuration(elapsed),
	}).Info("PDF compiled")

	return nil
}
