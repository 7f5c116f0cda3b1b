package pptx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	nsRelationships    = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsOfficeRels       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	relTypePrefix      = nsOfficeRels + "/"
	RelTypeOfficeDoc   = relTypePrefix + "officeDocument"
	RelTypeSlide       = relTypePrefix + "slide"
	RelTypeSlideLayout = relTypePrefix + "slideLayout"
	RelTypeSlideMaster = relTypePrefix + "slideMaster"
	RelTypeNotesSlide  = relTypePrefix + "notesSlide"
	RelTypeImage       = relTypePrefix + "image"

	targetModeExternal = "External"
)

// Relationship of a part.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Relationships of one source part.
type Relationships struct {
	owner string
	list  []Relationship
}

// Relationships returns relationships owned by part, "" is the package
// itself. Missing rels part yields an empty set.
func (p *Package) Relationships(owner string) (*Relationships, error) {
	rels := &Relationships{owner: owner}
	name := relsPart(owner)
	if !p.Has(name) {
		return rels, nil
	}
	doc, err := p.XML(name)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%s: empty document", name)
	}
	for _, el := range root.SelectElements("Relationship") {
		rels.list = append(rels.list, Relationship{
			ID:       el.SelectAttrValue("Id", ""),
			Type:     el.SelectAttrValue("Type", ""),
			Target:   el.SelectAttrValue("Target", ""),
			External: el.SelectAttrValue("TargetMode", "") == targetModeExternal,
		})
	}
	return rels, nil
}

// SetRelationships writes relationships back to the package.
func (p *Package) SetRelationships(rels *Relationships) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsRelationships)
	for _, r := range rels.list {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", r.ID)
		el.CreateAttr("Type", r.Type)
		el.CreateAttr("Target", r.Target)
		if r.External {
			el.CreateAttr("TargetMode", targetModeExternal)
		}
	}
	p.PutXML(relsPart(rels.owner), doc)
}

// Get relationship by id.
func (r *Relationships) Get(id string) (Relationship, bool) {
	for _, rel := range r.list {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// ByType returns relationships of type t in document order.
func (r *Relationships) ByType(t string) []Relationship {
	var res []Relationship
	for _, rel := range r.list {
		if rel.Type == t {
			res = append(res, rel)
		}
	}
	return res
}

// Part returns absolute part name of internal relationship target.
func (r *Relationships) Part(rel Relationship) string {
	return resolve(r.owner, rel.Target)
}

// Add relationship and return its id. rel.ID is kept when free.
func (r *Relationships) Add(rel Relationship) string {
	if _, taken := r.Get(rel.ID); rel.ID == "" || taken {
		rel.ID = r.nextID()
	}
	r.list = append(r.list, rel)
	return rel.ID
}

// Remove relationship by id.
func (r *Relationships) Remove(id string) {
	for i, rel := range r.list {
		if rel.ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			return
		}
	}
}

// Len returns number of relationships.
func (r *Relationships) Len() int {
	return len(r.list)
}

func (r *Relationships) nextID() string {
	max := 0
	for _, rel := range r.list {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}
