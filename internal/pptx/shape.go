package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Kind of shape.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindImage
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindGroup:
		return "group"
	}
	return "other"
}

// Rect is a bounding box in EMU.
type Rect struct {
	X, Y, W, H int64
}

// Bottom edge of rect.
func (r Rect) Bottom() int64 {
	return r.Y + r.H
}

// Shape is a positioned element of a shape tree.
type Shape struct {
	el   *etree.Element
	kind Kind
}

// newShape classifies element of a shape tree.
func newShape(el *etree.Element) (Shape, bool) {
	switch el.Tag {
	case "sp":
		if el.SelectElement("p:txBody") != nil {
			return Shape{el: el, kind: KindText}, true
		}
		return Shape{el: el, kind: KindOther}, true
	case "pic":
		return Shape{el: el, kind: KindImage}, true
	case "grpSp":
		return Shape{el: el, kind: KindGroup}, true
	case "graphicFrame", "cxnSp", "contentPart", "AlternateContent":
		return Shape{el: el, kind: KindOther}, true
	}
	return Shape{}, false
}

// shapesOf returns direct child shapes of a shape tree or group.
func shapesOf(container *etree.Element) []Shape {
	var res []Shape
	for _, el := range container.ChildElements() {
		if sh, ok := newShape(el); ok {
			res = append(res, sh)
		}
	}
	return res
}

// Kind of shape.
func (s Shape) Kind() Kind {
	return s.kind
}

// HasText returns true if shape carries a text body.
func (s Shape) HasText() bool {
	return s.kind == KindText
}

// AsGroup returns children of group shape.
func (s Shape) AsGroup() ([]Shape, bool) {
	if s.kind != KindGroup {
		return nil, false
	}
	return shapesOf(s.el), true
}

func (s Shape) nvPr() *etree.Element {
	for _, child := range s.el.ChildElements() {
		if strings.HasPrefix(child.Tag, "nv") {
			return child.SelectElement("p:cNvPr")
		}
	}
	return nil
}

// ID of shape, 0 if absent.
func (s Shape) ID() int {
	if c := s.nvPr(); c != nil {
		id, _ := strconv.Atoi(c.SelectAttrValue("id", "0"))
		return id
	}
	return 0
}

// Name of shape.
func (s Shape) Name() string {
	if c := s.nvPr(); c != nil {
		return c.SelectAttrValue("name", "")
	}
	return ""
}

// Bounds of shape in the coordinate space of its container.
func (s Shape) Bounds() (Rect, bool) {
	xfrm := s.el.FindElement("./p:spPr/a:xfrm")
	if s.kind == KindGroup {
		xfrm = s.el.FindElement("./p:grpSpPr/a:xfrm")
	}
	if s.el.Tag == "graphicFrame" {
		xfrm = s.el.SelectElement("p:xfrm")
	}
	if xfrm == nil {
		return Rect{}, false
	}
	off, ext := xfrm.SelectElement("a:off"), xfrm.SelectElement("a:ext")
	if off == nil || ext == nil {
		return Rect{}, false
	}
	return Rect{
		X: attrInt(off, "x"),
		Y: attrInt(off, "y"),
		W: attrInt(ext, "cx"),
		H: attrInt(ext, "cy"),
	}, true
}

// Text of shape: paragraphs joined by newline, line breaks as vertical tab.
func (s Shape) Text() string {
	if !s.HasText() {
		return ""
	}
	var b strings.Builder
	for i, p := range s.el.SelectElement("p:txBody").SelectElements("a:p") {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, el := range p.ChildElements() {
			switch el.Tag {
			case "r", "fld":
				if t := el.SelectElement("a:t"); t != nil {
					b.WriteString(t.Text())
				}
			case "br":
				b.WriteByte('\v')
			}
		}
	}
	return b.String()
}

func attrInt(el *etree.Element, key string) int64 {
	n, _ := strconv.ParseInt(el.SelectAttrValue(key, "0"), 10, 64)
	return n
}
