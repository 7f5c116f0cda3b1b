package pptx

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	nsDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"
	slidesDir      = "ppt/slides/"
	firstSlideID   = 256
)

var (
	// ErrNoBlankLayout is returned when no layout can host a cloned slide
	// without leaking placeholders.
	ErrNoBlankLayout  = errors.New("no blank slide layout")
	errNoPresentation = errors.New("package has no presentation part")
)

// Deck is a presentation package.
type Deck struct {
	pkg  *Package
	pres string
}

// OpenDeck wraps package with presentation accessors.
func OpenDeck(pkg *Package) (*Deck, error) {
	rels, err := pkg.Relationships("")
	if err != nil {
		return nil, err
	}
	docs := rels.ByType(RelTypeOfficeDoc)
	if len(docs) == 0 {
		return nil, errNoPresentation
	}
	d := &Deck{
		pkg:  pkg,
		pres: rels.Part(docs[0]),
	}
	if !pkg.Has(d.pres) {
		return nil, errNoPresentation
	}
	return d, nil
}

// Package of deck.
func (d *Deck) Package() *Package {
	return d.pkg
}

// Write deck as pptx.
func (d *Deck) Write(w io.Writer) error {
	return d.pkg.Write(w)
}

// Save deck to file.
func (d *Deck) Save(filename string) error {
	return d.pkg.Save(filename)
}

func (d *Deck) presentation() (*etree.Element, error) {
	doc, err := d.pkg.XML(d.pres)
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

// SlideSize returns slide width and height in EMU.
func (d *Deck) SlideSize() (int64, int64, error) {
	root, err := d.presentation()
	if err != nil {
		return 0, 0, err
	}
	sz := root.SelectElement("p:sldSz")
	if sz == nil {
		return 0, 0, fmt.Errorf("%s: no slide size", d.pres)
	}
	return attrInt(sz, "cx"), attrInt(sz, "cy"), nil
}

// Slides in presentation order.
func (d *Deck) Slides() ([]*Slide, error) {
	root, err := d.presentation()
	if err != nil {
		return nil, err
	}
	rels, err := d.pkg.Relationships(d.pres)
	if err != nil {
		return nil, err
	}
	lst := root.SelectElement("p:sldIdLst")
	if lst == nil {
		return nil, nil
	}
	var slides []*Slide
	for _, sldID := range lst.SelectElements("p:sldId") {
		rel, ok := rels.Get(sldID.SelectAttrValue("r:id", ""))
		if !ok {
			return nil, fmt.Errorf("slide %s: dangling relationship", sldID.SelectAttrValue("id", ""))
		}
		s, err := d.slide(rels.Part(rel))
		if err != nil {
			return nil, err
		}
		slides = append(slides, s)
	}
	return slides, nil
}

func (d *Deck) slide(part string) (*Slide, error) {
	doc, err := d.pkg.XML(part)
	if err != nil {
		return nil, err
	}
	rels, err := d.pkg.Relationships(part)
	if err != nil {
		return nil, err
	}
	s := &Slide{
		deck: d,
		part: part,
		doc:  doc,
		rels: rels,
	}
	if s.tree() == nil {
		return nil, fmt.Errorf("%s: no shape tree", part)
	}
	return s, nil
}

// RemoveSlides drops every slide with its notes, the rest of the package is
// kept.
func (d *Deck) RemoveSlides() error {
	root, err := d.presentation()
	if err != nil {
		return err
	}
	rels, err := d.pkg.Relationships(d.pres)
	if err != nil {
		return err
	}
	if lst := root.SelectElement("p:sldIdLst"); lst != nil {
		for _, sldID := range lst.SelectElements("p:sldId") {
			id := sldID.SelectAttrValue("r:id", "")
			if rel, ok := rels.Get(id); ok {
				if err = d.dropSlidePart(rels.Part(rel)); err != nil {
					return err
				}
				rels.Remove(id)
			}
			lst.RemoveChild(sldID)
		}
	}
	dropSections(root)
	d.pkg.SetRelationships(rels)
	return nil
}

func (d *Deck) dropSlidePart(part string) error {
	rels, err := d.pkg.Relationships(part)
	if err != nil {
		return err
	}
	for _, rel := range rels.ByType(RelTypeNotesSlide) {
		notes := rels.Part(rel)
		d.pkg.Delete(relsPart(notes))
		d.pkg.Delete(notes)
		if err = d.pkg.removeOverride(notes); err != nil {
			return err
		}
	}
	d.pkg.Delete(relsPart(part))
	d.pkg.Delete(part)
	return d.pkg.removeOverride(part)
}

// dropSections removes section lists that refer to slide ids.
func dropSections(root *etree.Element) {
	extLst := root.SelectElement("p:extLst")
	if extLst == nil {
		return
	}
	for _, ext := range extLst.SelectElements("p:ext") {
		for _, child := range ext.ChildElements() {
			if child.Tag == "sectionLst" {
				extLst.RemoveChild(ext)
				break
			}
		}
	}
}

// blankLayout returns part of the layout cloned slides are based on:
// a layout of type blank, else the first layout without placeholders.
func (d *Deck) blankLayout() (string, error) {
	var fallback string
	for _, name := range d.pkg.Names() {
		if !strings.HasPrefix(name, "ppt/slideLayouts/") || path.Ext(name) != ".xml" {
			continue
		}
		doc, err := d.pkg.XML(name)
		if err != nil {
			return "", err
		}
		root := doc.Root()
		if root.SelectAttrValue("type", "") == "blank" {
			return name, nil
		}
		if fallback == "" && root.FindElement(".//p:ph") == nil {
			fallback = name
		}
	}
	if fallback == "" {
		return "", ErrNoBlankLayout
	}
	return fallback, nil
}

// newSlide creates an empty slide on layout and appends it to presentation.
func (d *Deck) newSlide(layout string) (*Slide, error) {
	part := ""
	for n := 1; ; n++ {
		part = slidesDir + "slide" + strconv.Itoa(n) + ".xml"
		if !d.pkg.Has(part) {
			break
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	sld := doc.CreateElement("p:sld")
	sld.CreateAttr("xmlns:a", nsDrawing)
	sld.CreateAttr("xmlns:r", nsOfficeRels)
	sld.CreateAttr("xmlns:p", nsPresentation)
	tree := sld.CreateElement("p:cSld").CreateElement("p:spTree")
	nv := tree.CreateElement("p:nvGrpSpPr")
	c := nv.CreateElement("p:cNvPr")
	c.CreateAttr("id", "1")
	c.CreateAttr("name", "")
	nv.CreateElement("p:cNvGrpSpPr")
	nv.CreateElement("p:nvPr")
	xfrm := tree.CreateElement("p:grpSpPr").CreateElement("a:xfrm")
	for _, tag := range []string{"a:off", "a:chOff"} {
		el := xfrm.CreateElement(tag)
		el.CreateAttr("x", "0")
		el.CreateAttr("y", "0")
	}
	for _, tag := range []string{"a:ext", "a:chExt"} {
		el := xfrm.CreateElement(tag)
		el.CreateAttr("cx", "0")
		el.CreateAttr("cy", "0")
	}
	sld.CreateElement("p:clrMapOvr").CreateElement("a:masterClrMapping")
	d.pkg.PutXML(part, doc)

	rels := &Relationships{owner: part}
	rels.Add(Relationship{Type: RelTypeSlideLayout, Target: relative(part, layout)})
	d.pkg.SetRelationships(rels)
	if err := d.pkg.setOverride(part, ContentTypeSlide); err != nil {
		return nil, err
	}

	if err := d.register(part); err != nil {
		return nil, err
	}
	return &Slide{deck: d, part: part, doc: doc, rels: rels}, nil
}

// register appends slide part to the presentation slide list.
func (d *Deck) register(part string) error {
	root, err := d.presentation()
	if err != nil {
		return err
	}
	rels, err := d.pkg.Relationships(d.pres)
	if err != nil {
		return err
	}
	rid := rels.Add(Relationship{Type: RelTypeSlide, Target: relative(d.pres, part)})
	d.pkg.SetRelationships(rels)

	lst := root.SelectElement("p:sldIdLst")
	if lst == nil {
		lst = etree.NewElement("p:sldIdLst")
		idx := len(root.Child)
		if sz := root.SelectElement("p:sldSz"); sz != nil {
			idx = sz.Index()
		}
		root.InsertChildAt(idx, lst)
	}
	next := firstSlideID
	for _, el := range lst.SelectElements("p:sldId") {
		if id, _ := strconv.Atoi(el.SelectAttrValue("id", "")); id >= next {
			next = id + 1
		}
	}
	el := lst.CreateElement("p:sldId")
	el.CreateAttr("id", strconv.Itoa(next))
	el.CreateAttr("r:id", rid)
	return nil
}

// Slide of a deck.
type Slide struct {
	deck *Deck
	part string
	doc  *etree.Document
	rels *Relationships
}

// Part name of slide.
func (s *Slide) Part() string {
	return s.part
}

func (s *Slide) cSld() *etree.Element {
	return s.doc.Root().SelectElement("p:cSld")
}

func (s *Slide) tree() *etree.Element {
	if c := s.cSld(); c != nil {
		return c.SelectElement("p:spTree")
	}
	return nil
}

// Shapes returns top level shapes.
func (s *Slide) Shapes() []Shape {
	return shapesOf(s.tree())
}

// Text of all text shapes in walk order, one per line.
func (s *Slide) Text() string {
	var parts []string
	for sh := range Walk(s.Shapes()) {
		if sh.HasText() {
			parts = append(parts, sh.Text())
		}
	}
	return strings.Join(parts, "\n")
}

// HasBackground returns true if slide defines its own background.
func (s *Slide) HasBackground() bool {
	return s.cSld().SelectElement("p:bg") != nil
}

// Relationships of slide.
func (s *Slide) Relationships() *Relationships {
	return s.rels
}

// RemoveShape detaches shape from its container.
func (s *Slide) RemoveShape(sh Shape) {
	if parent := sh.el.Parent(); parent != nil {
		parent.RemoveChild(sh.el)
	}
}

// insertBeforeExtLst appends element to container keeping p:extLst last.
func insertBeforeExtLst(container, el *etree.Element) {
	if ext := container.SelectElement("p:extLst"); ext != nil {
		container.InsertChildAt(ext.Index(), el)
		return
	}
	container.AddChild(el)
}
