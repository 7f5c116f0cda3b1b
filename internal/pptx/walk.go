package pptx

import "iter"

// maxGroupDepth bounds descent into nested groups.
const maxGroupDepth = 64

// Walk yields every shape depth-first in encounter order, descending into
// groups. Groups nested deeper than maxGroupDepth are yielded but not entered.
func Walk(shapes []Shape) iter.Seq[Shape] {
	return func(yield func(Shape) bool) {
		walk(shapes, 0, yield)
	}
}

func walk(shapes []Shape, depth int, yield func(Shape) bool) bool {
	for _, sh := range shapes {
		if !yield(sh) {
			return false
		}
		if depth >= maxGroupDepth {
			continue
		}
		if children, ok := sh.AsGroup(); ok {
			if !walk(children, depth+1, yield) {
				return false
			}
		}
	}
	return true
}
