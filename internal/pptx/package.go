package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"
)

const contentTypesPart = "[Content_Types].xml"

// Package is an OPC container held in memory.
// Raw part bytes are never modified in place, parsed XML parts are cached
// and serialized back on Write.
type Package struct {
	names []string
	parts map[string][]byte
	xml   map[string]*etree.Document
}

// Open reads package from file.
func Open(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Read(data)
}

// Read package from zip bytes.
func Read(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	p := &Package{
		parts: make(map[string][]byte, len(zr.File)),
		xml:   make(map[string]*etree.Document),
	}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		p.names = append(p.names, f.Name)
		p.parts[f.Name] = b
	}
	if _, ok := p.parts[contentTypesPart]; !ok {
		return nil, fmt.Errorf("missing %s", contentTypesPart)
	}
	return p, nil
}

// Clone returns a structurally independent copy of the package.
func (p *Package) Clone() (*Package, error) {
	c := &Package{
		names: append([]string(nil), p.names...),
		parts: make(map[string][]byte, len(p.parts)),
		xml:   make(map[string]*etree.Document),
	}
	for name, b := range p.parts {
		c.parts[name] = b
	}
	for name, doc := range p.xml {
		b, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", name, err)
		}
		c.parts[name] = b
	}
	return c, nil
}

// Names of all parts in write order.
func (p *Package) Names() []string {
	return append([]string(nil), p.names...)
}

// Has returns true if part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Bytes returns current content of part.
func (p *Package) Bytes(name string) ([]byte, bool) {
	if doc, ok := p.xml[name]; ok {
		b, err := doc.WriteToBytes()
		return b, err == nil
	}
	b, ok := p.parts[name]
	return b, ok
}

// XML returns parsed part. The document is cached, changes to it are
// written with the package.
func (p *Package) XML(name string) (*etree.Document, error) {
	if doc, ok := p.xml[name]; ok {
		return doc, nil
	}
	b, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	p.xml[name] = doc
	return doc, nil
}

// Put sets raw content of part.
func (p *Package) Put(name string, data []byte) {
	delete(p.xml, name)
	p.add(name, data)
}

// PutXML sets parsed content of part.
func (p *Package) PutXML(name string, doc *etree.Document) {
	p.add(name, nil)
	p.xml[name] = doc
}

// Delete removes part.
func (p *Package) Delete(name string) {
	if _, ok := p.parts[name]; !ok {
		return
	}
	delete(p.parts, name)
	delete(p.xml, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

func (p *Package) add(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// Write package as zip. Content types part goes first.
func (p *Package) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	names := make([]string, 0, len(p.names))
	names = append(names, contentTypesPart)
	for _, n := range p.names {
		if n != contentTypesPart {
			names = append(names, n)
		}
	}
	for _, name := range names {
		b, ok := p.Bytes(name)
		if !ok {
			return fmt.Errorf("serialize %s", name)
		}
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err = fw.Write(b); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Save package to file.
func (p *Package) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err = p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// relsPart returns name of relationships part for part.
func relsPart(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// resolve target of relationship owned by part to absolute part name.
func resolve(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(part), target)
}

// relative returns target of part as seen from owner part.
func relative(owner, part string) string {
	from := strings.Split(path.Dir(owner), "/")
	to := strings.Split(part, "/")
	if path.Dir(owner) == "." {
		from = nil
	}
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for j := i; j < len(from); j++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}
