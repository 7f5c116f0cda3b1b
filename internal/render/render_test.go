package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placeholderpkg "github.com/geoirb/go-brochure/internal/placeholder"
	"github.com/geoirb/go-brochure/internal/pptx"
	"github.com/geoirb/go-brochure/internal/pptx/pptxtest"
)

var (
	testPassword = "Zk9&<p>"

	testFront = pptxtest.Slide{
		Background: pptxtest.ImageBackground("rId2"),
		Shapes: pptxtest.Picture(2, "logo", "rId3", 0, 0, 1000, 1000) +
			pptxtest.Group(3, "card", 100000, 100000, 4000000, 3000000,
				pptxtest.Text(4, "pwd", 100000, 100000, 2000000, 400000, []string{"Wi-Fi: ", "{{PASSWORD}}"}),
				pptxtest.Text(5, "qr", 2500000, 1000000, 1500000, 1500000, []string{"{{QR_WIFI}}"}),
			),
		Images: map[string]string{"rId2": "bg.png", "rId3": "logo.png"},
		Notes:  true,
	}
	testBack = pptxtest.Slide{
		Shapes: pptxtest.Text(2, "label", 500000, 600000, 3000000, 400000, []string{"Пароль:"}) +
			pptxtest.Text(3, "pwd", 500000, 2000000, 3000000, 400000, []string{"{{PASS", "WORD}}"}),
	}
)

func newPlaceholder(t *testing.T) *placeholderpkg.Placeholder {
	t.Helper()
	p, err := placeholderpkg.New()
	require.NoError(t, err)
	return p
}

func newTestTemplate(t *testing.T, slides ...pptxtest.Slide) *Template {
	t.Helper()
	tpl, err := NewTemplate("test.pptx", pptxtest.Build(slides...), newPlaceholder(t))
	require.NoError(t, err)
	return tpl
}

func newTestRenderer(t *testing.T) *Renderer {
	return NewRenderer(pptx.ReplaceRuns, newPlaceholder(t))
}

func shapeByName(slide *pptx.Slide, name string) (pptx.Shape, bool) {
	for sh := range pptx.Walk(slide.Shapes()) {
		if sh.Name() == name {
			return sh, true
		}
	}
	return pptx.Shape{}, false
}

func TestNewTemplate(t *testing.T) {
	tpl := newTestTemplate(t, testFront, testBack)
	assert.Equal(t, "test.pptx", tpl.Name())
	assert.Equal(t, 2, tpl.Slides())
	assert.Equal(t, []string{"PASSWORD", "QR_WIFI"}, tpl.Markers())

	_, err := NewTemplate("empty.pptx", pptxtest.Build(), newPlaceholder(t))
	assert.ErrorIs(t, err, errEmptyTemplate)

	_, err = NewTemplate("broken.pptx", []byte("not a zip"), newPlaceholder(t))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	tpl := newTestTemplate(t, testFront, testBack)
	rc := Recipient{Password: testPassword, Language: RU, Sequence: 1}

	deck, report, err := newTestRenderer(t).Render(tpl, rc, pptxtest.PNG)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 2, report.Slides)
	assert.Equal(t, 2, report.Replaced)
	assert.Equal(t, []Placement{PlacementMarker, PlacementLabel}, report.QR)

	var buf bytes.Buffer
	require.NoError(t, deck.Write(&buf))
	pkg, err := pptx.Read(buf.Bytes())
	require.NoError(t, err)
	deck, err = pptx.OpenDeck(pkg)
	require.NoError(t, err)
	slides, err := deck.Slides()
	require.NoError(t, err)
	require.Len(t, slides, tpl.Slides())

	for _, s := range slides {
		text := s.Text()
		assert.NotContains(t, text, PasswordToken)
		assert.NotContains(t, text, QRToken)
		assert.Equal(t, 1, strings.Count(text, testPassword))
	}
	assert.True(t, slides[0].HasBackground())
	assert.False(t, slides[1].HasBackground())
	assert.Empty(t, slides[0].Relationships().ByType(pptx.RelTypeNotesSlide))

	t.Run("qr fills marker box", func(t *testing.T) {
		qr, ok := shapeByName(slides[0], qrName)
		require.True(t, ok)
		assert.Equal(t, pptx.KindImage, qr.Kind())
		r, ok := qr.Bounds()
		require.True(t, ok)
		assert.Equal(t, pptx.Rect{X: 2500000, Y: 1000000, W: 1500000, H: 1500000}, r)
		_, ok = shapeByName(slides[0], "qr")
		assert.False(t, ok)
	})

	t.Run("qr below label", func(t *testing.T) {
		label, ok := shapeByName(slides[1], "label")
		require.True(t, ok)
		lr, _ := label.Bounds()
		qr, ok := shapeByName(slides[1], qrName)
		require.True(t, ok)
		r, ok := qr.Bounds()
		require.True(t, ok)
		assert.Greater(t, r.Y, lr.Bottom())
		assert.Equal(t, pptx.Rect{X: lr.X, Y: lr.Bottom() + labelGap, W: fallbackQRSize, H: fallbackQRSize}, r)
	})
}

func TestRenderTemplateUnchanged(t *testing.T) {
	tpl := newTestTemplate(t, testFront, testBack)
	orig := bytes.Clone(tpl.data)
	r := newTestRenderer(t)

	for i := 1; i <= 100; i++ {
		password := fmt.Sprintf("pw-%03d", i)
		deck, _, err := r.Render(tpl, Recipient{Password: password, Language: EN, Sequence: i}, pptxtest.PNG)
		require.NoError(t, err)
		slides, err := deck.Slides()
		require.NoError(t, err)
		assert.Contains(t, slides[1].Text(), password)
	}
	assert.Equal(t, orig, tpl.data)

	src, err := tpl.open()
	require.NoError(t, err)
	slides, err := src.Slides()
	require.NoError(t, err)
	assert.Contains(t, slides[0].Text(), PasswordToken)
	assert.Contains(t, slides[0].Text(), QRToken)
}

func TestRenderConcurrent(t *testing.T) {
	tpl := newTestTemplate(t, testFront, testBack)
	r := newTestRenderer(t)

	const n = 8
	texts := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deck, _, err := r.Render(tpl, Recipient{Password: fmt.Sprintf("secret-%d", i)}, pptxtest.PNG)
			if err != nil {
				errs[i] = err
				return
			}
			slides, err := deck.Slides()
			if err != nil {
				errs[i] = err
				return
			}
			texts[i] = slides[0].Text() + "\n" + slides[1].Text()
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, strings.Count(texts[i], fmt.Sprintf("secret-%d", i)))
		assert.Equal(t, 2, strings.Count(texts[i], "secret-"))
	}
}

func TestRenderWarnings(t *testing.T) {
	tpl := newTestTemplate(t,
		pptxtest.Slide{
			Background: pptxtest.SolidBackground("FFFFFF"),
			Shapes:     pptxtest.Text(2, "title", 0, 0, 100, 100, []string{"Welcome to {{SSID}}"}),
		},
		pptxtest.Slide{
			Background: pptxtest.ImageBackground("rId9"),
			Shapes: pptxtest.Text(2, "pwd", 0, 0, 100, 100, []string{"{{PASSWORD}}"}) +
				pptxtest.Text(3, "qr", 0, 200, 100, 100, []string{"{{QR_WIFI}}"}),
		},
	)

	deck, report, err := newTestRenderer(t).Render(tpl, Recipient{Password: "pw"}, pptxtest.PNG)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 4)
	assert.ErrorIs(t, report.Warnings[0], ErrTemplateMarkerMissing)
	assert.ErrorIs(t, report.Warnings[1], errUnknownMarker)
	assert.ErrorIs(t, report.Warnings[2], ErrTemplateMarkerMissing)
	assert.ErrorIs(t, report.Warnings[3], pptx.ErrCloneIntegrity)
	assert.Equal(t, []Placement{PlacementNone, PlacementMarker}, report.QR)

	slides, err := deck.Slides()
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.True(t, slides[0].HasBackground())
	assert.False(t, slides[1].HasBackground())
	assert.Equal(t, "pw", slides[1].Text())
}

func TestRenderLinksAndMarkerText(t *testing.T) {
	tpl := newTestTemplate(t,
		pptxtest.Slide{
			Shapes: pptxtest.Link(2, "back", "rId5", "ppaction://hlinksldjump", 0, 0, 100, 100, "Back") +
				pptxtest.Link(3, "next", "", "ppaction://hlinkshowjump?jump=nextslide", 0, 100, 100, 100, "Next") +
				pptxtest.Text(4, "pwd", 0, 200, 100, 100, []string{"{{PASSWORD}}"}) +
				pptxtest.Text(5, "qr", 0, 300, 100, 100, []string{"Scan ", "{{QR_WIFI}}"}),
			Links: map[string]int{"rId5": 2},
		},
		testBack,
	)

	deck, report, err := newTestRenderer(t).Render(tpl, Recipient{Password: "pw"}, pptxtest.PNG)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0].Error(), "ppt/slides/slide2.xml")
	assert.ErrorIs(t, report.Warnings[1], errMarkerText)
	assert.Equal(t, []Placement{PlacementMarker, PlacementLabel}, report.QR)

	slides, err := deck.Slides()
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "Back\nNext\npw", slides[0].Text())
}

func TestRenderPasswordLikeMarker(t *testing.T) {
	password := "{{QR_WIFI}}"
	tpl := newTestTemplate(t, pptxtest.Slide{
		Shapes: pptxtest.Text(2, "pwd", 0, 0, 100, 100, []string{"{{PASSWORD}}"}) +
			pptxtest.Text(3, "qr", 0, 200, 100, 100, []string{"{{QR_WIFI}}"}),
	})

	deck, report, err := newTestRenderer(t).Render(tpl, Recipient{Password: password}, pptxtest.PNG)
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, []Placement{PlacementMarker}, report.QR)

	slides, err := deck.Slides()
	require.NoError(t, err)
	require.Len(t, slides, 1)
	pwd, ok := shapeByName(slides[0], "pwd")
	require.True(t, ok)
	assert.Equal(t, password, pwd.Text())
	qr, ok := shapeByName(slides[0], qrName)
	require.True(t, ok)
	r, ok := qr.Bounds()
	require.True(t, ok)
	assert.Equal(t, pptx.Rect{X: 0, Y: 200, W: 100, H: 100}, r)
}

func TestRenderErrors(t *testing.T) {
	t.Run("clone integrity", func(t *testing.T) {
		tpl := newTestTemplate(t, pptxtest.Slide{
			Shapes: pptxtest.Picture(2, "logo", "rId9", 0, 0, 10, 10) +
				pptxtest.Text(3, "pwd", 0, 0, 10, 10, []string{"{{PASSWORD}}"}),
		})
		_, _, err := newTestRenderer(t).Render(tpl, Recipient{Password: "pw"}, pptxtest.PNG)
		assert.ErrorIs(t, err, pptx.ErrCloneIntegrity)
	})

	t.Run("empty password", func(t *testing.T) {
		tpl := newTestTemplate(t, testFront)
		_, _, err := newTestRenderer(t).Render(tpl, Recipient{}, pptxtest.PNG)
		assert.ErrorIs(t, err, errEmptyPassword)
	})
}

func TestInsertQR(t *testing.T) {
	const unplacedMarker = `<p:sp><p:nvSpPr><p:cNvPr id="9" name="ph"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>` +
		`<p:txBody><a:bodyPr/><a:p><a:r><a:t>{{QR_WIFI}}</a:t></a:r></a:p></p:txBody></p:sp>`

	tests := []struct {
		name      string
		shapes    string
		placement Placement
	}{
		{
			name:      "english label",
			shapes:    pptxtest.Text(2, "l", 10, 20, 30, 40, []string{"Password: "}),
			placement: PlacementLabel,
		},
		{
			name:      "upper case label with spaces",
			shapes:    pptxtest.Text(2, "l", 10, 20, 30, 40, []string{"   PASSWORD"}),
			placement: PlacementLabel,
		},
		{
			name:      "cyrillic label",
			shapes:    pptxtest.Text(2, "l", 10, 20, 30, 40, []string{"ПАРОЛЬ от Wi-Fi"}),
			placement: PlacementLabel,
		},
		{
			name:      "label not at start",
			shapes:    pptxtest.Text(2, "l", 10, 20, 30, 40, []string{"Your password"}),
			placement: PlacementNone,
		},
		{
			name:      "label in group",
			shapes:    pptxtest.Group(2, "g", 0, 0, 100, 100, pptxtest.Text(3, "l", 10, 20, 30, 40, []string{"Password"})),
			placement: PlacementNone,
		},
		{
			name: "marker wins",
			shapes: pptxtest.Text(2, "l", 10, 20, 30, 40, []string{"Password"}) +
				pptxtest.Text(3, "qr", 100, 200, 300, 300, []string{"{{QR_WIFI}}"}),
			placement: PlacementMarker,
		},
		{
			name:      "marker without box",
			shapes:    unplacedMarker,
			placement: PlacementNone,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pkg, err := pptx.Read(pptxtest.Build(pptxtest.Slide{Shapes: test.shapes}))
			require.NoError(t, err)
			deck, err := pptx.OpenDeck(pkg)
			require.NoError(t, err)
			slides, err := deck.Slides()
			require.NoError(t, err)

			placement, err := InsertQR(slides[0], pptxtest.PNG)
			require.NoError(t, err)
			assert.Equal(t, test.placement, placement)
			assert.NotContains(t, slides[0].Text(), QRToken)

			_, placed := shapeByName(slides[0], qrName)
			assert.Equal(t, test.placement != PlacementNone, placed)
		})
	}
}
