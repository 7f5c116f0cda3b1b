package pptx

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// ErrCloneIntegrity is returned when a shape or relationship cannot be copied
// faithfully.
var ErrCloneIntegrity = errors.New("clone integrity failure")

// excluded relationship types are never carried over by a clone.
var excluded = map[string]bool{
	RelTypeSlideLayout: true,
	RelTypeSlideMaster: true,
	RelTypeNotesSlide:  true,
}

// CloneReport describes a finished clone.
type CloneReport struct {
	// BackgroundErr is set when the source background could not be copied,
	// the clone is made without it.
	BackgroundErr error
	// DroppedLinks are targets of links to slides the deck does not hold,
	// the link elements are removed from the clone.
	DroppedLinks  []string
	Shapes        int
	Relationships int
}

// CloneSlide appends to the deck a copy of src built on the blank layout:
// background, then every top level shape, with the relationships the copied
// content refers to. Internal targets of src must exist in the deck package.
func (d *Deck) CloneSlide(src *Slide) (*Slide, CloneReport, error) {
	var report CloneReport
	layout, err := d.blankLayout()
	if err != nil {
		return nil, report, err
	}
	dst, err := d.newSlide(layout)
	if err != nil {
		return nil, report, err
	}
	copyNamespaces(src.doc.Root(), dst.doc.Root())

	ids := make(map[string]string)
	if bg := src.cSld().SelectElement("p:bg"); bg != nil {
		c := bg.Copy()
		if _, err = d.relink(c, src, dst, ids); err != nil {
			report.BackgroundErr = err
		} else {
			dst.cSld().InsertChildAt(0, c)
		}
	}

	tree := dst.tree()
	for _, sh := range src.Shapes() {
		c := sh.el.Copy()
		dropped, err := d.relink(c, src, dst, ids)
		if err != nil {
			return nil, report, fmt.Errorf("shape %q: %w", sh.Name(), err)
		}
		report.DroppedLinks = append(report.DroppedLinks, dropped...)
		insertBeforeExtLst(tree, c)
		report.Shapes++
	}
	report.Relationships = len(ids)
	d.pkg.SetRelationships(dst.rels)
	return dst, report, nil
}

// relink recreates in dst every relationship referenced from el and rewrites
// the references. ids maps source ids to already created destination ids.
// Empty references are left as is. Links to slides missing from the deck are
// removed and their targets returned. Nothing is changed when an error is
// returned.
func (d *Deck) relink(el *etree.Element, src, dst *Slide, ids map[string]string) ([]string, error) {
	type ref struct {
		el  *etree.Element
		key string
		id  string
	}
	var (
		refs    []ref
		order   []string
		dropped []string
		planned = make(map[string]Relationship)
		missing = make(map[string]bool)
		prefix  = relsPrefix(src.doc.Root())
	)
	collect := func(e *etree.Element) {
		for _, a := range e.Attr {
			if a.Space != prefix || a.Value == "" {
				continue
			}
			refs = append(refs, ref{el: e, key: a.FullKey(), id: a.Value})
		}
	}
	collect(el)
	for _, e := range el.FindElements(".//*") {
		collect(e)
	}

	for _, r := range refs {
		if _, done := ids[r.id]; done {
			continue
		}
		if _, done := planned[r.id]; done || missing[r.id] {
			continue
		}
		rel, ok := src.rels.Get(r.id)
		if !ok {
			return nil, fmt.Errorf("%w: relationship %s not found in %s", ErrCloneIntegrity, r.id, src.part)
		}
		if excluded[rel.Type] {
			return nil, fmt.Errorf("%w: relationship %s points at %s", ErrCloneIntegrity, r.id, rel.Type)
		}
		if !rel.External {
			target := src.rels.Part(rel)
			if !d.pkg.Has(target) {
				if rel.Type == RelTypeSlide {
					missing[r.id] = true
					dropped = append(dropped, target)
					continue
				}
				return nil, fmt.Errorf("%w: target %s of %s is missing", ErrCloneIntegrity, target, r.id)
			}
			rel.Target = relative(dst.part, target)
		}
		planned[r.id] = rel
		order = append(order, r.id)
	}

	for _, id := range order {
		ids[id] = dst.rels.Add(planned[id])
	}
	for _, r := range refs {
		if !missing[r.id] {
			r.el.CreateAttr(r.key, ids[r.id])
			continue
		}
		if parent := r.el.Parent(); parent != nil && r.el != el {
			parent.RemoveChild(r.el)
		} else {
			r.el.RemoveAttr(r.key)
		}
	}
	return dropped, nil
}

// relsPrefix returns prefix bound to the relationships namespace.
func relsPrefix(root *etree.Element) string {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == nsOfficeRels {
			return a.Key
		}
	}
	return "r"
}

// copyNamespaces declares on dst the namespaces and ignorable list of src.
func copyNamespaces(src, dst *etree.Element) {
	for _, a := range src.Attr {
		if a.Space != "xmlns" && a.FullKey() != "xmlns" && a.Key != "Ignorable" {
			continue
		}
		if dst.SelectAttr(a.FullKey()) == nil {
			dst.CreateAttr(a.FullKey(), a.Value)
		}
	}
}
