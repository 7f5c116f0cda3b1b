package pptx

import (
	"strings"

	"github.com/beevik/etree"
)

// ReplaceMode selects how marker text is substituted.
type ReplaceMode int

const (
	// ReplaceRuns rewrites only the runs carrying the token, formatting of
	// the runs and surrounding text is preserved.
	ReplaceRuns ReplaceMode = iota
	// ReplaceWholeBox clears the text body and writes the value as a single
	// run. Lossy: any other text of the shape is dropped.
	ReplaceWholeBox
)

// ParseReplaceMode maps config value to mode.
func ParseReplaceMode(s string) (ReplaceMode, bool) {
	switch strings.ToLower(s) {
	case "", "runs":
		return ReplaceRuns, true
	case "wholebox":
		return ReplaceWholeBox, true
	}
	return ReplaceRuns, false
}

// Replacement summarizes a Replace call.
type Replacement struct {
	// Shapes whose text changed.
	Shapes int
	// Occurrences of the token replaced.
	Occurrences int
	// Unmatched counts shapes containing the token where no run-level
	// replacement was possible. Their text is left untouched.
	Unmatched int
}

// Changed returns true if at least one token was replaced.
func (r Replacement) Changed() bool {
	return r.Occurrences > 0
}

// Find returns first shape in walk order whose text contains token.
func Find(shapes []Shape, token string) (Shape, bool) {
	for sh := range Walk(shapes) {
		if sh.HasText() && strings.Contains(sh.Text(), token) {
			return sh, true
		}
	}
	return Shape{}, false
}

// Replace substitutes token with value in every shape containing it.
func Replace(shapes []Shape, token, value string, mode ReplaceMode) (res Replacement) {
	if token == "" {
		return
	}
	for sh := range Walk(shapes) {
		if !sh.HasText() {
			continue
		}
		text := sh.Text()
		if !strings.Contains(text, token) {
			continue
		}
		txBody := sh.el.SelectElement("p:txBody")
		if mode == ReplaceWholeBox {
			res.Occurrences += strings.Count(text, token)
			res.Shapes++
			replaceWholeBox(txBody, value)
			continue
		}
		n := 0
		for _, p := range txBody.SelectElements("a:p") {
			n += replaceInParagraph(p, token, value)
		}
		if n == 0 {
			res.Unmatched++
			continue
		}
		res.Occurrences += n
		res.Shapes++
	}
	return
}

type run struct {
	el   *etree.Element
	t    *etree.Element
	text string
}

// segments splits paragraph runs at line breaks.
func segments(p *etree.Element) [][]*run {
	var (
		res [][]*run
		cur []*run
	)
	for _, el := range p.ChildElements() {
		switch el.Tag {
		case "r", "fld":
			t := el.SelectElement("a:t")
			if t == nil {
				continue
			}
			cur = append(cur, &run{el: el, t: t, text: t.Text()})
		case "br":
			if len(cur) > 0 {
				res = append(res, cur)
			}
			cur = nil
		}
	}
	if len(cur) > 0 {
		res = append(res, cur)
	}
	return res
}

func replaceInParagraph(p *etree.Element, token, value string) (n int) {
	for _, seg := range segments(p) {
		n += replaceInSegment(p, seg, token, value)
	}
	return
}

// replaceInSegment replaces every token in consecutive runs. A token spanning
// several runs is collapsed into the first of them, the consumed runs are
// dropped and the tail of the last one is kept in the first.
func replaceInSegment(p *etree.Element, runs []*run, token, value string) (n int) {
	from := 0
	for {
		var b strings.Builder
		for _, r := range runs {
			b.WriteString(r.text)
		}
		joined := b.String()
		if from > len(joined) {
			return
		}
		i := strings.Index(joined[from:], token)
		if i < 0 {
			return
		}
		start := from + i
		end := start + len(token)
		first, firstOff := locate(runs, start)
		last, lastOff := locate(runs, end-1)
		lastOff++

		head := runs[first].text[:firstOff]
		tail := runs[last].text[lastOff:]
		runs[first].text = head + value + tail
		runs[first].t.SetText(runs[first].text)
		for _, r := range runs[first+1 : last+1] {
			p.RemoveChild(r.el)
		}
		runs = append(runs[:first+1], runs[last+1:]...)

		from = start + len(value)
		n++
	}
}

// locate returns run index and offset within the run of byte position pos.
func locate(runs []*run, pos int) (int, int) {
	acc := 0
	for i, r := range runs {
		if pos < acc+len(r.text) {
			return i, pos - acc
		}
		acc += len(r.text)
	}
	return len(runs) - 1, len(runs[len(runs)-1].text)
}

// replaceWholeBox keeps body properties, the first paragraph properties and
// the first run properties, everything else is replaced by value.
func replaceWholeBox(txBody *etree.Element, value string) {
	var pPr, rPr *etree.Element
	paragraphs := txBody.SelectElements("a:p")
	for _, p := range paragraphs {
		if pPr == nil {
			if el := p.SelectElement("a:pPr"); el != nil {
				pPr = el.Copy()
			}
		}
		if rPr == nil {
			if el := p.FindElement("./a:r/a:rPr"); el != nil {
				rPr = el.Copy()
			}
		}
		txBody.RemoveChild(p)
	}

	p := txBody.CreateElement("a:p")
	if pPr != nil {
		p.AddChild(pPr)
	}
	r := p.CreateElement("a:r")
	if rPr != nil {
		r.AddChild(rPr)
	}
	r.CreateElement("a:t").SetText(value)
}
