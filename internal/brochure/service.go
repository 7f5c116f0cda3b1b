package brochure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/geoirb/go-brochure/internal/pptx"
	"github.com/geoirb/go-brochure/internal/render"
)

const mergedName = "brochures.pdf"

type store interface {
	FetchAndDelete(ctx context.Context, count int) ([]string, error)
}

type qrcode interface {
	CreateFile(payload string, size int, filename string) ([]byte, error)
}

type renderer interface {
	Render(tpl *render.Template, rc render.Recipient, qr []byte) (*pptx.Deck, render.Report, error)
}

type converter interface {
	Convert(ctx context.Context, doc, outDir string) (string, error)
}

type merger interface {
	Merge(parts []string, out string) error
	PageCount(filename string) (int, error)
}

type path interface {
	WorkDir() (string, error)
	File(dir, prefix string, n int, ext string) string
}

// Config of batches.
type Config struct {
	// Workers render and convert brochures of one batch in parallel.
	Workers        int
	QRSize         int
	MaxPerLanguage int
}

type service struct {
	// gate lets one batch at a time take passwords from the store.
	gate      chan struct{}
	templates map[render.Language]*render.Template

	store     store
	qrcode    qrcode
	renderer  renderer
	converter converter
	merger    merger
	path      path

	cfg    Config
	logger log.Logger
}

// NewService ...
func NewService(
	ru *render.Template,
	en *render.Template,

	store store,
	qrcode qrcode,
	renderer renderer,
	converter converter,
	merger merger,
	path path,

	cfg Config,
	logger log.Logger,
) Service {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &service{
		gate: make(chan struct{}, 1),
		templates: map[render.Language]*render.Template{
			render.RU: ru,
			render.EN: en,
		},
		store:     store,
		qrcode:    qrcode,
		renderer:  renderer,
		converter: converter,
		merger:    merger,
		path:      path,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate renders, converts and merges brochures for the requested number of
// RU and EN passwords. Nothing is left on disk when an error is returned.
func (s *service) Generate(ctx context.Context, req Request) (a *Artifact, err error) {
	logger := log.WithPrefix(s.logger, "method", "Generate", "uuid", req.UUID)
	started := time.Now()

	if err = s.validate(req); err != nil {
		level.Error(logger).Log("msg", "validate", "ru", req.RU, "en", req.EN, "err", err)
		return
	}

	passwords, err := s.fetch(ctx, req.RU+req.EN)
	if err == nil && len(passwords) != req.RU+req.EN {
		err = errShortSupply
	}
	if err != nil {
		err = &StageError{Stage: StageFetch, Err: err}
		level.Error(logger).Log("msg", "fetch passwords", "count", req.RU+req.EN, "err", err)
		return
	}

	dir, err := s.path.WorkDir()
	if err != nil {
		err = &StageError{Stage: StageWorkDir, Err: err}
		level.Error(logger).Log("msg", "work dir", "err", err)
		return
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dir)
		}
	}()

	recipients := BuildRecipients(passwords[:req.RU], passwords[req.RU:])
	parts := make([]string, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, rc := range recipients {
		g.Go(func() (err error) {
			parts[i], err = s.brochure(gctx, logger, dir, rc)
			return
		})
	}
	if err = g.Wait(); err != nil {
		level.Error(logger).Log("msg", "brochure", "err", err)
		return
	}

	out := filepath.Join(dir, mergedName)
	if err = s.merger.Merge(parts, out); err != nil {
		err = &StageError{Stage: StageMerge, Err: err}
		level.Error(logger).Log("msg", "merge", "parts", len(parts), "err", err)
		return
	}
	pages, err := s.merger.PageCount(out)
	if err != nil {
		err = &StageError{Stage: StageMerge, Err: err}
		level.Error(logger).Log("msg", "page count", "err", err)
		return
	}
	if expected := s.expectedPages(req); pages != expected {
		level.Warn(logger).Log("msg", "page count mismatch", "pages", pages, "expected", expected)
	}

	level.Info(logger).Log("msg", "generated", "ru", req.RU, "en", req.EN, "pages", pages, "took", time.Since(started))
	a = NewArtifact(dir, out, pages, len(recipients))
	return
}

func (s *service) validate(req Request) error {
	if req.RU < 0 || req.EN < 0 || req.RU > s.cfg.MaxPerLanguage || req.EN > s.cfg.MaxPerLanguage {
		return fmt.Errorf("%w: counts must be within 0..%d", ErrInvalidRequest, s.cfg.MaxPerLanguage)
	}
	if req.RU+req.EN == 0 {
		return fmt.Errorf("%w: nothing requested", ErrInvalidRequest)
	}
	return nil
}

// fetch takes passwords under the batch gate.
func (s *service) fetch(ctx context.Context, count int) ([]string, error) {
	select {
	case s.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.gate }()
	return s.store.FetchAndDelete(ctx, count)
}

// brochure makes the PDF of one recipient inside dir.
func (s *service) brochure(ctx context.Context, logger log.Logger, dir string, rc render.Recipient) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger = log.With(logger, "sequence", rc.Sequence, "language", rc.Language)

	png, err := s.qrcode.CreateFile(rc.Password, s.cfg.QRSize, s.path.File(dir, "qr", rc.Sequence, "png"))
	if err != nil {
		return "", &StageError{Stage: StageQR, Sequence: rc.Sequence, Err: err}
	}

	tpl := s.templates[rc.Language]
	deck, report, err := s.renderer.Render(tpl, rc, png)
	if err != nil {
		return "", &StageError{Stage: StageRender, Sequence: rc.Sequence, Err: err}
	}
	for _, w := range report.Warnings {
		level.Warn(logger).Log("msg", "render", "template", tpl.Name(), "err", w)
	}
	doc := s.path.File(dir, "brochure", rc.Sequence, "pptx")
	if err = deck.Save(doc); err != nil {
		return "", &StageError{Stage: StageRender, Sequence: rc.Sequence, Err: err}
	}

	pdf, err := s.converter.Convert(ctx, doc, dir)
	if err != nil {
		return "", &StageError{Stage: StageConvert, Sequence: rc.Sequence, Err: err}
	}
	return pdf, nil
}

func (s *service) expectedPages(req Request) int {
	return req.RU*s.templates[render.RU].Slides() + req.EN*s.templates[render.EN].Slides()
}
