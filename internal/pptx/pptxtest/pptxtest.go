// Package pptxtest builds small presentation packages for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	relPrefix = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	SlideWidth  = 9144000
	SlideHeight = 6858000
)

// PNG is a 1x1 image.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0xf0,
	0x1f, 0x00, 0x05, 0x00, 0x01, 0xff, 0x89, 0x99, 0x3d, 0x1d, 0x00, 0x00,
	0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// Slide describes one template slide.
type Slide struct {
	// Shapes is the XML of the top level shapes.
	Shapes string
	// Background is the XML of p:bg, empty for none.
	Background string
	// Images maps relationship id to a media file name under ppt/media.
	Images map[string]string
	// Links maps relationship id to the number of the slide it points at.
	Links map[string]int
	// Notes adds a notes slide.
	Notes bool
}

// Build returns pptx bytes with a title and a blank layout.
func Build(slides ...Slide) []byte {
	parts := map[string]string{}
	var (
		overrides []string
		presRels  []string
		sldIDs    []string
	)
	override := func(part, ct string) {
		overrides = append(overrides, fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, part, ct))
	}

	parts["_rels/.rels"] = rels(rel("rId1", "officeDocument", "ppt/presentation.xml"))
	presRels = append(presRels,
		rel("rId1", "slideMaster", "slideMasters/slideMaster1.xml"),
		rel("rId2", "theme", "theme/theme1.xml"),
	)

	parts["ppt/theme/theme1.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<a:theme xmlns:a="` + nsA + `" name="Test"><a:themeElements/></a:theme>`
	override("ppt/theme/theme1.xml", "application/vnd.openxmlformats-officedocument.theme+xml")

	parts["ppt/slideMasters/slideMaster1.xml"] = root("p:sldMaster", `<p:cSld>`+emptyTree("")+`</p:cSld>`+
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`+
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/><p:sldLayoutId id="2147483650" r:id="rId2"/></p:sldLayoutIdLst>`, "")
	parts["ppt/slideMasters/_rels/slideMaster1.xml.rels"] = rels(
		rel("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml"),
		rel("rId2", "slideLayout", "../slideLayouts/slideLayout2.xml"),
		rel("rId3", "theme", "../theme/theme1.xml"),
	)
	override("ppt/slideMasters/slideMaster1.xml", "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml")

	title := `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="ctrTitle"/></p:nvPr></p:nvSpPr><p:spPr/>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:t>Click to add title</a:t></a:r></a:p></p:txBody></p:sp>`
	parts["ppt/slideLayouts/slideLayout1.xml"] = root("p:sldLayout", `<p:cSld name="Title Slide">`+emptyTree(title)+`</p:cSld>`, ` type="title"`)
	parts["ppt/slideLayouts/slideLayout2.xml"] = root("p:sldLayout", `<p:cSld name="Blank">`+emptyTree("")+`</p:cSld>`, ` type="blank"`)
	for _, l := range []string{"slideLayout1", "slideLayout2"} {
		parts["ppt/slideLayouts/_rels/"+l+".xml.rels"] = rels(rel("rId1", "slideMaster", "../slideMasters/slideMaster1.xml"))
		override("ppt/slideLayouts/"+l+".xml", "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml")
	}

	media := map[string]bool{}
	for i, s := range slides {
		n := i + 1
		name := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		parts[name] = root("p:sld", `<p:cSld>`+s.Background+emptyTree(s.Shapes)+`</p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`, "")
		override(name, "application/vnd.openxmlformats-officedocument.presentationml.slide+xml")

		slideRels := []string{rel("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml")}
		ids := make([]string, 0, len(s.Images))
		for id := range s.Images {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			slideRels = append(slideRels, rel(id, "image", "../media/"+s.Images[id]))
			media[s.Images[id]] = true
		}
		links := make([]string, 0, len(s.Links))
		for id := range s.Links {
			links = append(links, id)
		}
		sort.Strings(links)
		for _, id := range links {
			slideRels = append(slideRels, rel(id, "slide", fmt.Sprintf("slide%d.xml", s.Links[id])))
		}
		if s.Notes {
			notes := fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n)
			parts[notes] = root("p:notes", `<p:cSld>`+emptyTree("")+`</p:cSld>`, "")
			parts[fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n)] = rels(
				rel("rId1", "slide", fmt.Sprintf("../slides/slide%d.xml", n)),
			)
			override(notes, "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml")
			slideRels = append(slideRels, rel("rIdNotes", "notesSlide", fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)))
		}
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)] = rels(slideRels...)

		rid := fmt.Sprintf("rId%d", n+2)
		presRels = append(presRels, rel(rid, "slide", fmt.Sprintf("slides/slide%d.xml", n)))
		sldIDs = append(sldIDs, fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, 255+n, rid))
	}

	parts["ppt/presentation.xml"] = root("p:presentation",
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
			`<p:sldIdLst>`+strings.Join(sldIDs, "")+`</p:sldIdLst>`+
			fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/>`, SlideWidth, SlideHeight), "")
	parts["ppt/_rels/presentation.xml.rels"] = rels(presRels...)
	override("ppt/presentation.xml", "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml")

	parts["[Content_Types].xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		strings.Join(overrides, "") + `</Types>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err = w.Write(data); err != nil {
			panic(err)
		}
	}
	write("[Content_Types].xml", []byte(parts["[Content_Types].xml"]))
	names := make([]string, 0, len(parts))
	for name := range parts {
		if name != "[Content_Types].xml" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		write(name, []byte(parts[name]))
	}
	files := make([]string, 0, len(media))
	for f := range media {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		write("ppt/media/"+f, PNG)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func root(tag, body, attrs string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<` + tag + ` xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"` + attrs + `>` +
		body + `</` + tag + `>`
}

func emptyTree(shapes string) string {
	return `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
		shapes + `</p:spTree>`
}

func rels(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		strings.Join(items, "") + `</Relationships>`
}

func rel(id, typ, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relPrefix, typ, target)
}

// Text returns a text shape. Each paragraph is a list of run texts, runs are
// bold so formatting survival can be checked.
func Text(id int, name string, x, y, w, h int64, paragraphs ...[]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, escape(name))
	b.WriteString(spPr(x, y, w, h))
	b.WriteString(`<p:txBody><a:bodyPr wrap="none"/><a:lstStyle/>`)
	for _, runs := range paragraphs {
		b.WriteString(`<a:p>`)
		for _, r := range runs {
			if r == "\v" {
				b.WriteString(`<a:br/>`)
				continue
			}
			fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US" b="1"/><a:t>%s</a:t></a:r>`, escape(r))
		}
		b.WriteString(`<a:endParaRPr lang="en-US"/></a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

// Link returns a text shape with a click action. Empty rid makes an action
// without relationship, like jumps to the next slide.
func Link(id int, name, rid, action string, x, y, w, h int64, text string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"><a:hlinkClick r:id="%s" action="%s"/></p:cNvPr><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`%s<p:txBody><a:bodyPr wrap="none"/><a:lstStyle/><a:p><a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
		id, escape(name), rid, escape(action), spPr(x, y, w, h), escape(text))
}

// Rect returns an autoshape without text.
func Rect(id int, name string, x, y, w, h int64) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>%s</p:sp>`,
		id, escape(name), spPr(x, y, w, h))
}

// Picture returns a picture shape embedding relationship rid.
func Picture(id int, name, rid string, x, y, w, h int64) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>%s</p:pic>`,
		id, escape(name), rid, spPr(x, y, w, h))
}

// Group returns a group shape with identity child transform.
func Group(id int, name string, x, y, w, h int64, children ...string) string {
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="%s"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/><a:chOff x="%d" y="%d"/><a:chExt cx="%d" cy="%d"/></a:xfrm></p:grpSpPr>%s</p:grpSp>`,
		id, escape(name), x, y, w, h, x, y, w, h, strings.Join(children, ""))
}

// ImageBackground returns a background filled with image rid.
func ImageBackground(rid string) string {
	return `<p:bg><p:bgPr><a:blipFill><a:blip r:embed="` + rid + `"/><a:stretch><a:fillRect/></a:stretch></a:blipFill><a:effectLst/></p:bgPr></p:bg>`
}

// SolidBackground returns a solid color background.
func SolidBackground(rgb string) string {
	return `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="` + rgb + `"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`
}

func spPr(x, y, w, h int64) string {
	return fmt.Sprintf(`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, w, h)
}

func escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		panic(err)
	}
	return b.String()
}
