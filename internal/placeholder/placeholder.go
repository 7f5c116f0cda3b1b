package placeholder

import (
	"regexp"
)

// Placeholder finds {{NAME}} markers in slide text.
type Placeholder struct {
	markerReg      *regexp.Regexp
	wholeMarkerReg *regexp.Regexp
}

// New ...
func New() (p *Placeholder, err error) {
	p = &Placeholder{}
	if p.markerReg, err = regexp.Compile(markerRegexp); err != nil {
		return
	}
	p.wholeMarkerReg, err = regexp.Compile(wholeMarkerRegexp)
	return
}

// Is returns true if str is exactly one marker.
func (p *Placeholder) Is(str string) bool {
	return p.wholeMarkerReg.MatchString(str)
}

// Token returns marker text for name.
func (p *Placeholder) Token(name string) string {
	return "{{" + name + "}}"
}

// Names returns names of markers found in text in order of first appearance.
func (p *Placeholder) Names(text string) (names []string) {
	seen := make(map[string]bool)
	for _, m := range p.markerReg.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return
}
