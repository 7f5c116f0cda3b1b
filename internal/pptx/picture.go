package pptx

import (
	"strconv"

	"github.com/beevik/etree"
)

const mediaDir = "ppt/media/"

// AddPicture places PNG image on top of the slide.
func (s *Slide) AddPicture(png []byte, r Rect, name string) (Shape, error) {
	pic, err := s.newPicture(png, r, name)
	if err != nil {
		return Shape{}, err
	}
	insertBeforeExtLst(s.tree(), pic)
	return Shape{el: pic, kind: KindImage}, nil
}

// ReplaceWithPicture puts PNG image in place of shape: same container, same
// z-order, same bounds. The shape is removed.
func (s *Slide) ReplaceWithPicture(old Shape, png []byte, name string) (Shape, error) {
	r, _ := old.Bounds()
	pic, err := s.newPicture(png, r, name)
	if err != nil {
		return Shape{}, err
	}
	parent := old.el.Parent()
	idx := old.el.Index()
	parent.RemoveChildAt(idx)
	parent.InsertChildAt(idx, pic)
	return Shape{el: pic, kind: KindImage}, nil
}

func (s *Slide) newPicture(png []byte, r Rect, name string) (*etree.Element, error) {
	rid, err := s.addImage(png)
	if err != nil {
		return nil, err
	}
	id := s.nextShapeID()
	if name == "" {
		name = "Picture " + strconv.Itoa(id)
	}

	pic := etree.NewElement("p:pic")
	nv := pic.CreateElement("p:nvPicPr")
	c := nv.CreateElement("p:cNvPr")
	c.CreateAttr("id", strconv.Itoa(id))
	c.CreateAttr("name", name)
	nv.CreateElement("p:cNvPicPr").CreateElement("a:picLocks").CreateAttr("noChangeAspect", "1")
	nv.CreateElement("p:nvPr")

	fill := pic.CreateElement("p:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", rid)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("p:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", strconv.FormatInt(r.X, 10))
	off.CreateAttr("y", strconv.FormatInt(r.Y, 10))
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", strconv.FormatInt(r.W, 10))
	ext.CreateAttr("cy", strconv.FormatInt(r.H, 10))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
	return pic, nil
}

// addImage stores image part and links it to the slide.
func (s *Slide) addImage(png []byte) (string, error) {
	pkg := s.deck.pkg
	part := ""
	for n := 1; ; n++ {
		part = mediaDir + "image" + strconv.Itoa(n) + ".png"
		if !pkg.Has(part) {
			break
		}
	}
	pkg.Put(part, png)
	if err := pkg.ensureDefault("png", ContentTypePNG); err != nil {
		return "", err
	}
	rid := s.rels.Add(Relationship{Type: RelTypeImage, Target: relative(s.part, part)})
	pkg.SetRelationships(s.rels)
	return rid, nil
}

// nextShapeID returns an id not used by any shape of the slide.
func (s *Slide) nextShapeID() int {
	max := 0
	for _, el := range s.tree().FindElements(".//p:cNvPr") {
		if id, err := strconv.Atoi(el.SelectAttrValue("id", "")); err == nil && id > max {
			max = id
		}
	}
	return max + 1
}
