// Package converter turns slide decks into PDF with a headless office suite.
package converter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrConversion is returned when the office suite fails or produces nothing.
// The message carries the tool output.
var ErrConversion = errors.New("conversion failed")

const maxDiagnostics = 2048

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// Soffice converts documents with LibreOffice. At most instances conversions
// run at once, each with its own user profile so parallel instances do not
// lock each other.
type Soffice struct {
	runner   CommandRunner
	bin      string
	timeout  time.Duration
	profiles chan string
}

// NewSoffice ...
func NewSoffice(
	runner CommandRunner,
	bin string,
	timeout time.Duration,
	instances int,
	profileDir string,
) (*Soffice, error) {
	if instances < 1 {
		instances = 1
	}
	abs, err := filepath.Abs(profileDir)
	if err != nil {
		return nil, err
	}
	s := &Soffice{
		runner:   runner,
		bin:      bin,
		timeout:  timeout,
		profiles: make(chan string, instances),
	}
	for i := 1; i <= instances; i++ {
		s.profiles <- filepath.Join(abs, "profile-"+strconv.Itoa(i))
	}
	return s, nil
}

// Convert writes PDF of doc into outDir and returns its path.
func (s *Soffice) Convert(ctx context.Context, doc, outDir string) (string, error) {
	var profile string
	select {
	case profile = <-s.profiles:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { s.profiles <- profile }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	profileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(profile)}
	stdout, stderr, err := s.runner.Run(ctx, s.bin,
		"--headless",
		"--nologo",
		"--nofirststartwizard",
		"--norestore",
		"-env:UserInstallation="+profileURL.String(),
		"--convert-to", "pdf",
		"--outdir", outDir,
		doc,
	)
	name := filepath.Base(doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrConversion, name, ctxErr)
		}
		return "", fmt.Errorf("%w: %s: %v: %s", ErrConversion, name, err, diagnostics(stderr, stdout))
	}

	out := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+".pdf")
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: %s: no output: %s", ErrConversion, name, diagnostics(stderr, stdout))
	}
	return out, nil
}

func diagnostics(stderr, stdout string) string {
	msg := strings.TrimSpace(stderr + "\n" + stdout)
	if msg == "" {
		return "no diagnostics"
	}
	if len(msg) > maxDiagnostics {
		msg = msg[:maxDiagnostics] + "..."
	}
	return msg
}
