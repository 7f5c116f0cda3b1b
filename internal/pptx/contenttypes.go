package pptx

import (
	"strings"

	"github.com/beevik/etree"
)

const (
	ContentTypeSlide = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ContentTypePNG   = "image/png"
)

func (p *Package) contentTypes() (*etree.Element, error) {
	doc, err := p.XML(contentTypesPart)
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

// setOverride registers content type of part.
func (p *Package) setOverride(part, contentType string) error {
	root, err := p.contentTypes()
	if err != nil {
		return err
	}
	name := "/" + part
	for _, el := range root.SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == name {
			el.CreateAttr("ContentType", contentType)
			return nil
		}
	}
	el := root.CreateElement("Override")
	el.CreateAttr("PartName", name)
	el.CreateAttr("ContentType", contentType)
	return nil
}

func (p *Package) removeOverride(part string) error {
	root, err := p.contentTypes()
	if err != nil {
		return err
	}
	name := "/" + part
	for _, el := range root.SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == name {
			root.RemoveChild(el)
		}
	}
	return nil
}

// ensureDefault registers content type for file extension.
func (p *Package) ensureDefault(ext, contentType string) error {
	root, err := p.contentTypes()
	if err != nil {
		return err
	}
	for _, el := range root.SelectElements("Default") {
		if strings.EqualFold(el.SelectAttrValue("Extension", ""), ext) {
			return nil
		}
	}
	el := etree.NewElement("Default")
	el.CreateAttr("Extension", ext)
	el.CreateAttr("ContentType", contentType)
	root.InsertChildAt(0, el)
	return nil
}
