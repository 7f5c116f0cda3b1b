package render

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/geoirb/go-brochure/internal/pptx"
)

const (
	// PasswordToken is replaced by the password text.
	PasswordToken = "{{PASSWORD}}"
	// QRToken marks the box the QR image fills.
	QRToken = "{{QR_WIFI}}"

	labelGap       int64 = 120000
	fallbackQRSize int64 = 1150000
	qrName               = "QR Wi-Fi"
)

// labels start the text of a shape the QR is put under when the slide has
// no QR marker. Case folded.
var labels = []string{"password", "пароль"}

// Placement tells how QR image was put on a slide.
type Placement int

const (
	PlacementNone Placement = iota
	PlacementMarker
	PlacementLabel
)

func (p Placement) String() string {
	switch p {
	case PlacementMarker:
		return "marker"
	case PlacementLabel:
		return "label"
	}
	return "none"
}

// InsertQR puts png on slide. The QR marker shape, searched in groups too, is
// replaced by the picture with the same box. Without marker the picture goes
// under a top level password label. PlacementNone is returned if neither
// exists.
func InsertQR(slide *pptx.Slide, png []byte) (Placement, error) {
	if marker, ok := pptx.Find(slide.Shapes(), QRToken); ok {
		if _, ok = marker.Bounds(); ok {
			if _, err := slide.ReplaceWithPicture(marker, png, qrName); err != nil {
				return PlacementNone, err
			}
			return PlacementMarker, nil
		}
		// marker inherits its box from the layout, nothing to fill
		slide.RemoveShape(marker)
	}

	label, ok := findLabel(slide.Shapes())
	if !ok {
		return PlacementNone, nil
	}
	r, _ := label.Bounds()
	box := pptx.Rect{
		X: r.X,
		Y: r.Bottom() + labelGap,
		W: fallbackQRSize,
		H: fallbackQRSize,
	}
	if _, err := slide.AddPicture(png, box, qrName); err != nil {
		return PlacementNone, err
	}
	return PlacementLabel, nil
}

func findLabel(shapes []pptx.Shape) (pptx.Shape, bool) {
	fold := cases.Fold()
	for _, sh := range shapes {
		if !sh.HasText() {
			continue
		}
		if _, ok := sh.Bounds(); !ok {
			continue
		}
		text := fold.String(strings.TrimSpace(sh.Text()))
		for _, l := range labels {
			if strings.HasPrefix(text, l) {
				return sh, true
			}
		}
	}
	return pptx.Shape{}, false
}
