package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/geoirb/go-brochure/internal/pptx"
)

var (
	// ErrTemplateMarkerMissing reports a slide where a marker was expected but
	// could not be used. Rendering goes on without it.
	ErrTemplateMarkerMissing = errors.New("template marker missing")

	errEmptyPassword = errors.New("empty password")
	errUnknownMarker = errors.New("unknown marker left in slide")
	errMarkerText    = errors.New("text around marker dropped")
)

// Language of brochure.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

// Recipient of one brochure.
type Recipient struct {
	Password string
	Language Language
	// Sequence is the 1-based position of the brochure in the batch.
	Sequence int
}

// Report of one render.
type Report struct {
	Slides int
	// Replaced counts password tokens replaced on all slides.
	Replaced int
	// QR placement per slide.
	QR []Placement
	// Warnings are soft failures, the document is still usable.
	Warnings []error
}

func (r *Report) warn(slide int, err error) {
	r.Warnings = append(r.Warnings, fmt.Errorf("slide %d: %w", slide, err))
}

// Renderer builds per recipient documents from templates.
type Renderer struct {
	mode        pptx.ReplaceMode
	placeholder placeholder
}

// NewRenderer ...
func NewRenderer(
	mode pptx.ReplaceMode,
	placeholder placeholder,
) *Renderer {
	return &Renderer{
		mode:        mode,
		placeholder: placeholder,
	}
}

// Render returns a new document holding every template slide with the
// recipient password and QR image. The template is not changed.
func (r *Renderer) Render(tpl *Template, rc Recipient, qr []byte) (*pptx.Deck, Report, error) {
	var report Report
	if rc.Password == "" {
		return nil, report, errEmptyPassword
	}

	src, err := tpl.open()
	if err != nil {
		return nil, report, err
	}
	pkg, err := src.Package().Clone()
	if err != nil {
		return nil, report, err
	}
	out, err := pptx.OpenDeck(pkg)
	if err != nil {
		return nil, report, err
	}
	slides, err := src.Slides()
	if err != nil {
		return nil, report, err
	}
	if err = out.RemoveSlides(); err != nil {
		return nil, report, err
	}

	for i, s := range slides {
		n := i + 1
		dst, clone, err := out.CloneSlide(s)
		if err != nil {
			return nil, report, fmt.Errorf("slide %d: %w", n, err)
		}
		if clone.BackgroundErr != nil {
			report.warn(n, fmt.Errorf("background dropped: %w", clone.BackgroundErr))
		}
		for _, target := range clone.DroppedLinks {
			report.warn(n, fmt.Errorf("link to %s dropped", target))
		}

		// QR goes first: the password must not be taken for a marker.
		if marker, ok := pptx.Find(dst.Shapes(), QRToken); ok && !r.placeholder.Is(strings.TrimSpace(marker.Text())) {
			report.warn(n, fmt.Errorf("%w: %s", errMarkerText, QRToken))
		}
		placement, err := InsertQR(dst, qr)
		if err != nil {
			return nil, report, fmt.Errorf("slide %d: qr: %w", n, err)
		}
		if placement == PlacementNone {
			report.warn(n, fmt.Errorf("%w: %s and password label", ErrTemplateMarkerMissing, QRToken))
		}
		report.QR = append(report.QR, placement)

		for _, name := range r.placeholder.Names(dst.Text()) {
			if token := r.placeholder.Token(name); token != PasswordToken && token != QRToken {
				report.warn(n, fmt.Errorf("%w: %s", errUnknownMarker, token))
			}
		}

		res := pptx.Replace(dst.Shapes(), PasswordToken, rc.Password, r.mode)
		switch {
		case res.Unmatched > 0:
			report.warn(n, fmt.Errorf("%w: %s split by line break in %d shapes", ErrTemplateMarkerMissing, PasswordToken, res.Unmatched))
		case !res.Changed():
			report.warn(n, fmt.Errorf("%w: %s", ErrTemplateMarkerMissing, PasswordToken))
		}
		report.Replaced += res.Occurrences
		report.Slides++
	}
	return out, report, nil
}
