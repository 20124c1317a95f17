// Package convert runs the external tool that turns a medical image into a
// playable MP4.
//
// The tool is invoked as `<executable> <input> <mode>` with an endless
// stream of "y" lines on stdin, so any prompt it raises is confirmed. Its
// output is logged, not parsed; the result is found at a path derived
// from a template.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	// ErrRejectedInput indicates a file type the converter does not accept.
	ErrRejectedInput = errors.New("convert: input type not accepted")

	// ErrNotExecutable indicates the converter executable is missing or
	// cannot be made executable.
	ErrNotExecutable = errors.New("convert: converter is not executable")

	// ErrOutputMissing indicates the tool finished but the expected output
	// file does not exist.
	ErrOutputMissing = errors.New("convert: output not found")
)

// DefaultOutput is where the DICOM conversion tool writes its MP4.
const DefaultOutput = "{{.ExeDir}}/data/dcm/dicomresults/{{.Mode}}/mp4s/{{.Stem}}.mp4"

// OutputData is the data available to the output path template.
type OutputData struct {
	ExeDir string // directory of the executable
	Stem   string // input file name without directory and extension
	Mode   string
	Input  string
}

// Converter describes one external conversion tool.
type Converter struct {
	Executable string
	Mode       string
	Output     string   // text/template over OutputData; DefaultOutput if empty
	Filters    []string // accepted extensions, e.g. ".dcm"; empty accepts all

	Fs     afero.Fs       // used for every file check; OS filesystem if nil
	Logger *logrus.Logger // receives the tool's output; discarded if nil
}

func (c *Converter) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

// Accepts reports whether path passes the extension filter.
func (c *Converter) Accepts(path string) bool {
	if len(c.Filters) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return lo.ContainsBy(c.Filters, func(f string) bool {
		return strings.ToLower(f) == ext
	})
}

// OutputPath returns where the tool is expected to write the result for
// input.
func (c *Converter) OutputPath(input string) (string, error) {
	text := c.Output
	if text == "" {
		text = DefaultOutput
	}
	tmpl, err := template.New("output").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("convert: parse output template: %w", err)
	}

	base := filepath.Base(input)
	data := OutputData{
		ExeDir: filepath.Dir(c.Executable),
		Stem:   strings.TrimSuffix(base, filepath.Ext(base)),
		Mode:   c.Mode,
		Input:  input,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("convert: render output template: %w", err)
	}
	return filepath.Clean(b.String()), nil
}

// Run converts input and returns the path of the produced video.
func (c *Converter) Run(ctx context.Context, input string) (string, error) {
	if !c.Accepts(input) {
		return "", fmt.Errorf("%w: %s", ErrRejectedInput, input)
	}

	out, err := c.OutputPath(input)
	if err != nil {
		return "", err
	}

	if err := c.ensureExecutable(); err != nil {
		return "", err
	}

	logger := c.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	log := logger.WithFields(logrus.Fields{
		"component": "converter",
		"input":     input,
		"mode":      c.Mode,
	})

	stdout := log.WriterLevel(logrus.InfoLevel)
	defer stdout.Close()
	stderr := log.WriterLevel(logrus.WarnLevel)
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, c.Executable, input, c.Mode)
	cmd.Stdin = &yes{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	log.WithField("executable", c.Executable).Info("running converter")
	start := time.Now()

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("convert: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("convert: %s exited with status %d: %w", c.Executable, exitErr.ExitCode(), err)
		}
		return "", fmt.Errorf("convert: run %s: %w", c.Executable, err)
	}

	if _, err := c.fs().Stat(out); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOutputMissing, out, err)
	}

	log.WithFields(logrus.Fields{
		"output":  out,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("conversion finished")
	return out, nil
}

// ensureExecutable adds the execute bits to the converter if needed.
func (c *Converter) ensureExecutable() error {
	if c.Executable == "" {
		return fmt.Errorf("%w: no executable configured", ErrNotExecutable)
	}

	fsys := c.fs()
	info, err := fsys.Stat(c.Executable)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotExecutable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotExecutable, c.Executable)
	}

	mode := info.Mode().Perm()
	if mode&0o111 == 0o111 {
		return nil
	}
	if err := fsys.Chmod(c.Executable, mode|0o111); err != nil {
		return fmt.Errorf("%w: chmod: %w", ErrNotExecutable, err)
	}
	return nil
}

// yes produces "y\n" forever.
type yes struct {
	odd bool
}

func (y *yes) Read(p []byte) (int, error) {
	for i := range p {
		if y.odd {
			p[i] = '\n'
		} else {
			p[i] = 'y'
		}
		y.odd = !y.odd
	}
	return len(p), nil
}
