package path

import (
	"fmt"
	"os"
	"path/filepath"
)

// Builder path.
type Builder struct {
	templateDir string
	tmpDir      string
	uuidFunc    func() string
}

// NewBuilder ...
func NewBuilder(
	templateDir string,
	tmpDir string,
	uuidFunc func() string,
) (*Builder, error) {
	if _, err := os.Stat(templateDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("path %s is not exist", templateDir)
	}
	if _, err := os.Stat(tmpDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("path %s is not exist", tmpDir)
	}

	return &Builder{
		templateDir: filepath.Clean(templateDir),
		tmpDir:      filepath.Clean(tmpDir),
		uuidFunc:    uuidFunc,
	}, nil
}

// Template returns path to template by name.
func (b *Builder) Template(name string) string {
	return filepath.Join(b.templateDir, name)
}

// WorkDir creates an empty directory for one batch and returns its path.
func (b *Builder) WorkDir() (string, error) {
	dir := filepath.Join(b.tmpDir, "brochure-"+b.uuidFunc())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// File returns path of numbered file inside dir: qr_0001.png.
func (b *Builder) File(dir, prefix string, n int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%04d.%s", prefix, n, ext))
}
